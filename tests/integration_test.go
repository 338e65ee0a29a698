package tests

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/resto-ops/internal/adapter/storage"
	"github.com/rl1809/resto-ops/internal/core/domain"
	"github.com/rl1809/resto-ops/internal/core/service"
)

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type testEnv struct {
	mysql     *sql.DB
	redis     *redis.Client
	db        *storage.MySQLAdapter
	cache     *storage.RedisAdapter
	registry  *service.TableRegistry
	scheduler *service.ReservationScheduler
	lifecycle *service.OrderLifecycle
	ledger    *service.StockLedger
	cleanup   func()
}

func setupTestEnv(t *testing.T) *testEnv {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/restoops?parseTime=true"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	dbAdapter := storage.NewMySQLAdapter(db)
	cacheAdapter := storage.NewRedisAdapter(rdb)

	clock := realClock{}
	registry := service.NewTableRegistry(dbAdapter, clock)

	return &testEnv{
		mysql:     db,
		redis:     rdb,
		db:        dbAdapter,
		cache:     cacheAdapter,
		registry:  registry,
		scheduler: service.NewReservationScheduler(registry, dbAdapter, clock),
		lifecycle: service.NewOrderLifecycle(registry, dbAdapter, clock),
		ledger:    service.NewStockLedger(clock),
		cleanup: func() {
			rdb.Close()
			db.Close()
		},
	}
}

func (e *testEnv) seedTable(t *testing.T, number int64, capacity int) *domain.Table {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	table := &domain.Table{Number: number, Capacity: capacity, IsAvailable: true, CreatedAt: now, UpdatedAt: now}
	if err := e.db.SaveTable(context.Background(), table); err != nil {
		t.Fatalf("seed table: %v", err)
	}
	if err := e.cache.SetAvailability(context.Background(), number, true); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	return table
}

// nextValidSlot returns a dinner slot two days out, which satisfies every
// reservation timing rule regardless of when the test runs.
func nextValidSlot() time.Time {
	d := time.Now().AddDate(0, 0, 2)
	return time.Date(d.Year(), d.Month(), d.Day(), 15, 0, 0, 0, d.Location())
}

func TestReservationFlow(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	env.seedTable(t, 9201, 6)
	env.mysql.ExecContext(ctx, `DELETE FROM reservations WHERE table_number = ?`, 9201)

	res := &domain.Reservation{
		Name:            "flow-" + uuid.NewString(),
		Email:           "flow@example.com",
		PhoneNumber:     "555-0101",
		CustomerNumber:  5,
		ReservationDate: nextValidSlot(),
	}

	if err := env.scheduler.Create(ctx, res); err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	if res.TableNumber == nil {
		t.Fatal("expected a table assignment")
	}

	assigned, err := env.db.GetTable(ctx, *res.TableNumber)
	if err != nil || assigned == nil {
		t.Fatalf("load assigned table: %v", err)
	}
	if assigned.Capacity < res.CustomerNumber {
		t.Errorf("assigned table capacity %d below party size %d", assigned.Capacity, res.CustomerNumber)
	}

	if err := env.db.SaveReservation(ctx, res); err != nil {
		t.Fatalf("save reservation: %v", err)
	}
	if res.ID == 0 {
		t.Fatal("expected persisted reservation ID")
	}

	if err := env.scheduler.Cancel(res); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := env.db.SaveReservation(ctx, res); err != nil {
		t.Fatalf("save cancelled reservation: %v", err)
	}
	if err := env.scheduler.Cancel(res); err == nil {
		t.Fatal("expected second cancel to fail")
	}
}

func TestOrderFlow(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	table := env.seedTable(t, 9202, 4)

	claimed, err := env.cache.ClaimTable(ctx, table.Number)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !claimed {
		t.Fatal("expected claim to succeed")
	}

	order, err := env.lifecycle.Init(table)
	if err != nil {
		t.Fatalf("init order: %v", err)
	}
	if err := env.lifecycle.ReconcileItems(order, []domain.OrderItem{
		{MenuItemID: 1, Quantity: 2},
		{MenuItemID: 2, Quantity: 1, Notes: "extra cheese"},
	}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if err := env.db.SaveOrder(ctx, order); err != nil {
		t.Fatalf("save order: %v", err)
	}
	if err := env.db.SaveTable(ctx, table); err != nil {
		t.Fatalf("save table: %v", err)
	}

	loaded, err := env.db.GetOrder(ctx, order.ID)
	if err != nil || loaded == nil {
		t.Fatalf("load order: %v", err)
	}
	if len(loaded.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(loaded.Items))
	}
	for _, item := range loaded.Items {
		if item.ID == 0 {
			t.Error("persisted item without identity")
		}
	}

	if err := env.lifecycle.End(loaded, table); err != nil {
		t.Fatalf("end order: %v", err)
	}
	if !table.IsAvailable {
		t.Error("table should be available after end")
	}
	if err := env.db.SaveOrder(ctx, loaded); err != nil {
		t.Fatalf("save ended order: %v", err)
	}
	if err := env.cache.ReleaseTable(ctx, table.Number); err != nil {
		t.Fatalf("release: %v", err)
	}

	if err := env.lifecycle.End(loaded, table); err == nil {
		t.Fatal("expected second end to fail")
	}
}

func TestStockFlow(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	ingredientID := int64(9300)
	now := time.Now().UTC().Truncate(time.Microsecond)

	env.mysql.ExecContext(ctx, `DELETE FROM stocks WHERE ingredient_id = ?`, ingredientID)
	result, err := env.mysql.ExecContext(ctx, `
		INSERT INTO stocks (ingredient_id, total_stock, optimal_stock_quantity, created_at, updated_at)
		VALUES (?, 5, 30, ?, ?)`, ingredientID, now, now)
	if err != nil {
		t.Fatalf("seed stock: %v", err)
	}
	stockID, _ := result.LastInsertId()
	env.mysql.ExecContext(ctx, `DELETE FROM stock_transactions WHERE stock_id = ?`, stockID)

	stock, err := env.db.GetStockByIngredient(ctx, ingredientID)
	if err != nil || stock == nil {
		t.Fatalf("load stock: %v", err)
	}

	in := domain.StockTransaction{Type: domain.TransactionIn, Quantity: 10, EmployeeName: "it"}
	if err := env.ledger.ValidateTransaction(stock, in); err != nil {
		t.Fatalf("validate in: %v", err)
	}
	if err := env.ledger.ApplyTransaction(stock, in); err != nil {
		t.Fatalf("apply in: %v", err)
	}

	out := domain.StockTransaction{Type: domain.TransactionOut, Quantity: 10, EmployeeName: "it"}
	if err := env.ledger.ValidateTransaction(stock, out); err != nil {
		t.Fatalf("validate out: %v", err)
	}
	if err := env.ledger.ApplyTransaction(stock, out); err != nil {
		t.Fatalf("apply out: %v", err)
	}

	if err := env.db.SaveStock(ctx, stock); err != nil {
		t.Fatalf("save stock: %v", err)
	}

	loaded, _ := env.db.GetStockByIngredient(ctx, ingredientID)
	if loaded.TotalStock != 5 {
		t.Errorf("expected balance back at 5, got %d", loaded.TotalStock)
	}
	if len(loaded.Transactions) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(loaded.Transactions))
	}
	if loaded.Transactions[0].Type != domain.TransactionIn || loaded.Transactions[1].Type != domain.TransactionOut {
		t.Error("history entries out of order")
	}

	loaded.Reset(time.Now().UTC().Truncate(time.Microsecond))
	if err := env.db.ClearStock(ctx, loaded); err != nil {
		t.Fatalf("clear stock: %v", err)
	}
	cleared, _ := env.db.GetStockByIngredient(ctx, ingredientID)
	if cleared.TotalStock != 0 || len(cleared.Transactions) != 0 {
		t.Error("expected stock to be reset")
	}
}
