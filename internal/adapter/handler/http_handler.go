package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/resto-ops/internal/core/domain"
	"github.com/rl1809/resto-ops/internal/core/service"
	"github.com/rl1809/resto-ops/internal/port"
)

// HTTPHandler is the thin CRUD surface over the core services. It loads
// aggregates, invokes the core, persists the result, and maps domain error
// kinds onto HTTP statuses. No business rules live here.
type HTTPHandler struct {
	scheduler *service.ReservationScheduler
	lifecycle *service.OrderLifecycle
	ledger    *service.StockLedger

	tables       port.TableRepository
	reservations port.ReservationRepository
	orders       port.OrderRepository
	stocks       port.StockRepository
	cache        port.AvailabilityCache
}

func NewHTTPHandler(
	scheduler *service.ReservationScheduler,
	lifecycle *service.OrderLifecycle,
	ledger *service.StockLedger,
	tables port.TableRepository,
	reservations port.ReservationRepository,
	orders port.OrderRepository,
	stocks port.StockRepository,
	cache port.AvailabilityCache,
) *HTTPHandler {
	return &HTTPHandler{
		scheduler:    scheduler,
		lifecycle:    lifecycle,
		ledger:       ledger,
		tables:       tables,
		reservations: reservations,
		orders:       orders,
		stocks:       stocks,
		cache:        cache,
	}
}

type createReservationRequest struct {
	RequestID       string `json:"request_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	CustomerNumber  int    `json:"customer_number"`
	ReservationDate string `json:"reservation_date"`
}

type createReservationResponse struct {
	ID          int64  `json:"id"`
	TableNumber int64  `json:"table_number"`
	Status      string `json:"status"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *HTTPHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "invalid request body"})
		return
	}

	date, err := time.Parse(time.RFC3339, req.ReservationDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "reservation_date must be RFC3339"})
		return
	}

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	ok, err := h.cache.SetIdempotency(r.Context(), "reservation:"+req.RequestID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusConflict, statusResponse{Message: "duplicate request"})
		return
	}

	res := &domain.Reservation{
		Name:            req.Name,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		CustomerNumber:  req.CustomerNumber,
		ReservationDate: date,
	}

	if err := h.scheduler.Create(r.Context(), res); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.reservations.SaveReservation(r.Context(), res); err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, createReservationResponse{
		ID:          res.ID,
		TableNumber: *res.TableNumber,
		Status:      string(res.Status),
	})
}

func (h *HTTPHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "invalid request body"})
		return
	}

	res, err := h.reservations.GetReservation(r.Context(), req.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}
	if res == nil {
		writeJSON(w, http.StatusNotFound, statusResponse{Message: "reservation not found"})
		return
	}

	if err := h.scheduler.Cancel(res); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.reservations.SaveReservation(r.Context(), res); err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "reservation cancelled"})
}

func (h *HTTPHandler) OpenOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		TableNumber int64 `json:"table_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "invalid request body"})
		return
	}

	table, err := h.tables.GetTable(r.Context(), req.TableNumber)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}
	if table == nil {
		writeJSON(w, http.StatusNotFound, statusResponse{Message: "table not found"})
		return
	}

	claimed, err := h.cache.ClaimTable(r.Context(), table.Number)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}
	if !claimed {
		writeJSON(w, http.StatusConflict, statusResponse{Message: "table is already occupied"})
		return
	}

	order, err := h.lifecycle.Init(table)
	if err != nil {
		h.cache.ReleaseTable(r.Context(), table.Number)
		writeDomainError(w, err)
		return
	}

	if err := h.orders.SaveOrder(r.Context(), order); err != nil {
		h.cache.ReleaseTable(r.Context(), table.Number)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}
	if err := h.tables.SaveTable(r.Context(), table); err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"order_id":     order.ID,
		"table_number": order.TableNumber,
		"status":       order.Status,
	})
}

type reconcileItemsRequest struct {
	OrderID int64 `json:"order_id"`
	Items   []struct {
		ID          int64  `json:"id"`
		MenuItemID  int64  `json:"menu_item_id"`
		MenuExtraID *int64 `json:"menu_extra_id"`
		Quantity    int    `json:"quantity"`
		Notes       string `json:"notes"`
	} `json:"items"`
}

func (h *HTTPHandler) ReconcileItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req reconcileItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "invalid request body"})
		return
	}

	order, err := h.orders.GetOrder(r.Context(), req.OrderID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}
	if order == nil {
		writeJSON(w, http.StatusNotFound, statusResponse{Message: "order not found"})
		return
	}

	desired := make([]domain.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		desired = append(desired, domain.OrderItem{
			ID:          it.ID,
			MenuItemID:  it.MenuItemID,
			MenuExtraID: it.MenuExtraID,
			Quantity:    it.Quantity,
			Notes:       it.Notes,
		})
	}

	if err := h.lifecycle.ReconcileItems(order, desired); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.orders.SaveOrder(r.Context(), order); err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "items reconciled"})
}

func (h *HTTPHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		OrderID int64 `json:"order_id"`
		ItemID  int64 `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "invalid request body"})
		return
	}

	order, err := h.orders.GetOrder(r.Context(), req.OrderID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}
	if order == nil {
		writeJSON(w, http.StatusNotFound, statusResponse{Message: "order not found"})
		return
	}

	if err := h.lifecycle.MarkDelivered(order, req.ItemID); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.orders.SaveOrder(r.Context(), order); err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "item delivered"})
}

func (h *HTTPHandler) CloseOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		OrderID int64 `json:"order_id"`
		Cancel  bool  `json:"cancel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "invalid request body"})
		return
	}

	order, err := h.orders.GetOrder(r.Context(), req.OrderID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}
	if order == nil {
		writeJSON(w, http.StatusNotFound, statusResponse{Message: "order not found"})
		return
	}

	table, err := h.tables.GetTable(r.Context(), order.TableNumber)
	if err != nil || table == nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}

	if req.Cancel {
		err = h.lifecycle.Cancel(order, table)
	} else {
		err = h.lifecycle.End(order, table)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.orders.SaveOrder(r.Context(), order); err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}
	if err := h.tables.SaveTable(r.Context(), table); err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}
	h.cache.ReleaseTable(r.Context(), table.Number)

	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "order closed"})
}

func (h *HTTPHandler) PendingDeliveries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pending, err := h.lifecycle.ItemsPendingDelivery(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}

	type pendingItem struct {
		OrderID     int64 `json:"order_id"`
		TableNumber int64 `json:"table_number"`
		ItemID      int64 `json:"item_id"`
		MenuItemID  int64 `json:"menu_item_id"`
		Quantity    int   `json:"quantity"`
	}

	out := make([]pendingItem, 0, len(pending))
	for _, p := range pending {
		out = append(out, pendingItem{
			OrderID:     p.OrderID,
			TableNumber: p.TableNumber,
			ItemID:      p.Item.ID,
			MenuItemID:  p.Item.MenuItemID,
			Quantity:    p.Item.Quantity,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

type stockTransactionRequest struct {
	IngredientID int64  `json:"ingredient_id"`
	Type         string `json:"type"`
	Quantity     int    `json:"quantity"`
	EmployeeName string `json:"employee_name"`
	ExpiresAt    string `json:"expires_at,omitempty"`
}

func (h *HTTPHandler) RecordStockTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req stockTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "invalid request body"})
		return
	}

	stock, err := h.stocks.GetStockByIngredient(r.Context(), req.IngredientID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}
	if stock == nil {
		writeJSON(w, http.StatusNotFound, statusResponse{Message: "stock not found"})
		return
	}

	tx := domain.StockTransaction{
		Type:         domain.TransactionType(req.Type),
		Quantity:     req.Quantity,
		EmployeeName: req.EmployeeName,
	}
	if req.ExpiresAt != "" {
		expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, statusResponse{Message: "expires_at must be RFC3339"})
			return
		}
		tx.ExpiresAt = &expiresAt
	}

	if err := h.ledger.ValidateTransaction(stock, tx); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.ledger.ApplyTransaction(stock, tx); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.stocks.SaveStock(r.Context(), stock); err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_stock": stock.TotalStock,
		"reference":   stock.Transactions[len(stock.Transactions)-1].Reference,
	})
}

func (h *HTTPHandler) ResetStock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		IngredientID int64 `json:"ingredient_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "invalid request body"})
		return
	}

	stock, err := h.stocks.GetStockByIngredient(r.Context(), req.IngredientID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}
	if stock == nil {
		writeJSON(w, http.StatusNotFound, statusResponse{Message: "stock not found"})
		return
	}

	h.ledger.Clear(stock)
	if err := h.stocks.ClearStock(r.Context(), stock); err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "stock reset"})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeDomainError maps the core error kinds onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch derr.Kind {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindInvariant:
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, statusResponse{Message: derr.Reason})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
