package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/resto-ops/internal/adapter/handler"
	"github.com/rl1809/resto-ops/internal/adapter/storage"
	"github.com/rl1809/resto-ops/internal/core/service"
)

const (
	defaultHTTPPort  = ":8080"
	defaultMySQLDSN  = "root:root@tcp(localhost:3306)/restoops?parseTime=true"
	defaultRedisAddr = "localhost:6379"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", getenv("MYSQL_DSN", defaultMySQLDSN))
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Println("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     getenv("REDIS_ADDR", defaultRedisAddr),
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	log.Println("connected to redis")

	// Initialize adapters
	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)

	// Initialize core services
	clock := systemClock{}
	registry := service.NewTableRegistry(mysqlAdapter, clock)
	scheduler := service.NewReservationScheduler(registry, mysqlAdapter, clock)
	lifecycle := service.NewOrderLifecycle(registry, mysqlAdapter, clock)
	ledger := service.NewStockLedger(clock)

	// Warm the availability cache from the database
	tables, err := mysqlAdapter.ListTables(ctx)
	if err != nil {
		log.Fatalf("failed to list tables: %v", err)
	}
	for _, t := range tables {
		if err := redisAdapter.SetAvailability(ctx, t.Number, t.IsAvailable); err != nil {
			log.Fatalf("failed to warm availability cache: %v", err)
		}
	}
	log.Printf("warmed availability cache for %d tables", len(tables))

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(
		scheduler, lifecycle, ledger,
		mysqlAdapter, mysqlAdapter, mysqlAdapter, mysqlAdapter, redisAdapter,
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", httpHandler.HealthCheck)
	mux.HandleFunc("/api/reservations", httpHandler.CreateReservation)
	mux.HandleFunc("/api/reservations/cancel", httpHandler.CancelReservation)
	mux.HandleFunc("/api/orders", httpHandler.OpenOrder)
	mux.HandleFunc("/api/orders/items", httpHandler.ReconcileItems)
	mux.HandleFunc("/api/orders/deliver", httpHandler.MarkDelivered)
	mux.HandleFunc("/api/orders/close", httpHandler.CloseOrder)
	mux.HandleFunc("/api/orders/pending", httpHandler.PendingDeliveries)
	mux.HandleFunc("/api/stock/transactions", httpHandler.RecordStockTransaction)
	mux.HandleFunc("/api/stock/reset", httpHandler.ResetStock)

	httpServer := &http.Server{
		Addr:    getenv("HTTP_PORT", defaultHTTPPort),
		Handler: mux,
	}

	go func() {
		log.Printf("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	rdb.Close()
	db.Close()
	log.Println("connections closed")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
