package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/comedor-pos/api/internal/database"
	"github.com/comedor-pos/api/internal/enum"
	"github.com/comedor-pos/api/internal/events"
	"github.com/comedor-pos/api/internal/middleware"
	"github.com/comedor-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderStore defines the database methods needed by order read/update handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListOrderItemAdditionsByOrderItem(ctx context.Context, orderItemID uuid.UUID) ([]database.OrderItemAddition, error)
	ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.Payment, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	AssignDeliveryPerson(ctx context.Context, arg database.AssignDeliveryPersonParams) (database.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	pub   events.Publisher
	loc   *time.Location
}

// NewOrderHandler creates a new OrderHandler. The date filter is read in loc.
func NewOrderHandler(svc OrderServicer, store OrderStore, pub events.Publisher, loc *time.Location) *OrderHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderHandler{svc: svc, store: store, pub: pub, loc: loc}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Patch("/{id}/delivery-person", h.AssignDeliveryPerson)
	r.Delete("/{id}", h.Cancel)
}

// --- Request / Response types ---

type createOrderRequest struct {
	OrderType        string                   `json:"order_type"`
	Meal             string                   `json:"meal"`
	TableNumber      string                   `json:"table_number"`
	CustomerName     string                   `json:"customer_name"`
	CustomerPhone    string                   `json:"customer_phone"`
	DeliveryAddress  string                   `json:"delivery_address"`
	DeliveryPersonID string                   `json:"delivery_person_id"`
	Notes            string                   `json:"notes"`
	Items            []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	MenuItemID string                       `json:"menu_item_id"`
	Quantity   int32                        `json:"quantity"`
	Notes      string                       `json:"notes"`
	Additions  []createOrderAdditionRequest `json:"additions"`
}

type createOrderAdditionRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int32  `json:"quantity"`
}

type orderResponse struct {
	ID               uuid.UUID           `json:"id"`
	BusinessDate     string              `json:"business_date"`
	OrderNumber      string              `json:"order_number"`
	OrderType        string              `json:"order_type"`
	Meal             string              `json:"meal"`
	Status           string              `json:"status"`
	TableNumber      *string             `json:"table_number"`
	CustomerName     *string             `json:"customer_name"`
	CustomerPhone    *string             `json:"customer_phone"`
	DeliveryAddress  *string             `json:"delivery_address"`
	DeliveryPersonID *string             `json:"delivery_person_id"`
	Notes            *string             `json:"notes"`
	Subtotal         string              `json:"subtotal"`
	DeliveryFee      string              `json:"delivery_fee"`
	TotalAmount      string              `json:"total_amount"`
	CreatedBy        uuid.UUID           `json:"created_by"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	CompletedAt      *time.Time          `json:"completed_at"`
	Items            []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID         uuid.UUID                   `json:"id"`
	MenuItemID uuid.UUID                   `json:"menu_item_id"`
	Name       string                      `json:"name"`
	Category   string                      `json:"category"`
	Quantity   int32                       `json:"quantity"`
	UnitPrice  string                      `json:"unit_price"`
	Subtotal   string                      `json:"subtotal"`
	Notes      *string                     `json:"notes"`
	Additions  []orderItemAdditionResponse `json:"additions"`
}

type orderItemAdditionResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Quantity   int32     `json:"quantity"`
	UnitPrice  string    `json:"unit_price"`
}

type paymentResponse struct {
	ID              uuid.UUID `json:"id"`
	OrderID         uuid.UUID `json:"order_id"`
	PaymentMethod   string    `json:"payment_method"`
	Amount          string    `json:"amount"`
	AmountReceived  *string   `json:"amount_received"`
	ChangeAmount    *string   `json:"change_amount"`
	ReferenceNumber *string   `json:"reference_number"`
	ProcessedBy     uuid.UUID `json:"processed_by"`
	ProcessedAt     time.Time `json:"processed_at"`
}

type orderDetailResponse struct {
	orderResponse
	Payments   []paymentResponse `json:"payments"`
	AmountPaid string            `json:"amount_paid"`
	BalanceDue string            `json:"balance_due"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type assignDeliveryPersonRequest struct {
	DeliveryPersonID string `json:"delivery_person_id"`
}

type orderStatusEvent struct {
	Order          orderResponse `json:"order"`
	PreviousStatus string        `json:"previous_status,omitempty"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.OrderType == "" || req.Meal == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order_type and meal are required"})
		return
	}

	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}

	for i, item := range req.Items {
		if item.MenuItemID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "menu_item_id is required"),
			})
			return
		}
		if item.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "quantity must be > 0"),
			})
			return
		}
	}

	svcItems := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		adds := make([]service.CreateOrderItemAdditionRequest, len(item.Additions))
		for j, a := range item.Additions {
			adds[j] = service.CreateOrderItemAdditionRequest{
				MenuItemID: a.MenuItemID,
				Quantity:   a.Quantity,
			}
		}
		svcItems[i] = service.CreateOrderItemRequest{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Notes:      item.Notes,
			Additions:  adds,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		CreatedBy:        claims.UserID,
		OrderType:        req.OrderType,
		Meal:             req.Meal,
		TableNumber:      req.TableNumber,
		CustomerName:     req.CustomerName,
		CustomerPhone:    req.CustomerPhone,
		DeliveryAddress:  req.DeliveryAddress,
		DeliveryPersonID: req.DeliveryPersonID,
		Notes:            req.Notes,
		Items:            svcItems,
	})
	if err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(result)
	publish(r.Context(), h.pub, enum.TopicOrders, enum.EventOrderCreated, orderStatusEvent{Order: resp})
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	q := r.URL.Query()

	params := database.ListOrdersParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	}

	if s := q.Get("status"); s != "" {
		if !isValidOrderStatus(database.OrderStatus(s)) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		params.Status = database.NullOrderStatus{OrderStatus: database.OrderStatus(s), Valid: true}
	}
	if s := q.Get("type"); s != "" {
		if !isValidOrderType(database.OrderType(s)) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid type"})
			return
		}
		params.OrderType = database.NullOrderType{OrderType: database.OrderType(s), Valid: true}
	}
	if s := q.Get("meal"); s != "" {
		if m := database.Meal(s); m != database.MealBREAKFAST && m != database.MealLUNCH {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid meal"})
			return
		}
		params.Meal = database.NullMeal{Meal: database.Meal(s), Valid: true}
	}
	if s := q.Get("date"); s != "" {
		t, err := parseDate(s, h.loc)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
			return
		}
		params.BusinessDate = pgtype.Date{Time: t, Valid: true}
	}
	if s := q.Get("delivery_person_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid delivery_person_id"})
			return
		}
		params.DeliveryPersonID = pgtype.UUID{Bytes: id, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}

	writeJSON(w, http.StatusOK, orderListResponse{
		Orders: resp,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	itemResponses := make([]orderItemResponse, len(items))
	for i, item := range items {
		adds, err := h.store.ListOrderItemAdditionsByOrderItem(r.Context(), item.ID)
		if err != nil {
			log.Printf("ERROR: list order item additions: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		itemResponses[i] = dbOrderItemToResponse(item, adds)
	}

	payments, err := h.store.ListPaymentsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list payments: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	paid := decimal.Zero
	paymentResps := make([]paymentResponse, len(payments))
	for i, p := range payments {
		paymentResps[i] = dbPaymentToResponse(p)
		paid = paid.Add(numericToDecimal(p.Amount))
	}

	balance := numericToDecimal(order.TotalAmount).Sub(paid)
	if balance.IsNegative() || order.Status == database.OrderStatusCANCELLED {
		balance = decimal.Zero
	}

	orderResp := dbOrderToResponse(order)
	orderResp.Items = itemResponses

	writeJSON(w, http.StatusOK, orderDetailResponse{
		orderResponse: orderResp,
		Payments:      paymentResps,
		AmountPaid:    paid.StringFixed(2),
		BalanceDue:    balance.StringFixed(2),
	})
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	newStatus := database.OrderStatus(req.Status)
	if !isValidOrderStatus(newStatus) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	current, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order for status update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := validateStatusTransition(current.Status, newStatus); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:             orderID,
		Status:         newStatus,
		ExpectedStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Status changed between read and write.
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order status changed, please retry"})
			return
		}
		log.Printf("ERROR: update order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(updated)
	eventType := enum.EventOrderUpdated
	if newStatus == database.OrderStatusCANCELLED {
		eventType = enum.EventOrderCancelled
	}
	publish(r.Context(), h.pub, enum.TopicOrders, eventType, orderStatusEvent{Order: resp, PreviousStatus: string(current.Status)})
	writeJSON(w, http.StatusOK, resp)
}

// AssignDeliveryPerson handles PATCH /orders/{id}/delivery-person.
// An empty delivery_person_id unassigns.
func (h *OrderHandler) AssignDeliveryPerson(w http.ResponseWriter, r *http.Request) {
	orderID, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req assignDeliveryPersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var person pgtype.UUID
	if req.DeliveryPersonID != "" {
		personID, err := uuid.Parse(req.DeliveryPersonID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid delivery_person_id"})
			return
		}
		user, err := h.store.GetUserByID(r.Context(), personID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("ERROR: get delivery person: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		if err != nil || user.Role != enum.UserRoleDelivery {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": service.ErrInvalidDeliveryPerson.Error()})
			return
		}
		person = pgtype.UUID{Bytes: personID, Valid: true}
	}

	updated, err := h.store.AssignDeliveryPerson(r.Context(), database.AssignDeliveryPersonParams{
		ID:               orderID,
		DeliveryPersonID: person,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.explainNoRows(w, r, orderID, "assign")
			return
		}
		log.Printf("ERROR: assign delivery person: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(updated)
	publish(r.Context(), h.pub, enum.TopicOrders, enum.EventOrderUpdated, orderStatusEvent{Order: resp})
	writeJSON(w, http.StatusOK, resp)
}

// Cancel handles DELETE /orders/{id}.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	// The query only updates orders that are not COMPLETED or CANCELLED.
	cancelled, err := h.store.CancelOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.explainNoRows(w, r, orderID, "cancel")
			return
		}
		log.Printf("ERROR: cancel order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(cancelled)
	publish(r.Context(), h.pub, enum.TopicOrders, enum.EventOrderCancelled, orderStatusEvent{Order: resp})
	writeJSON(w, http.StatusOK, resp)
}

// explainNoRows re-reads an order after a guarded update matched nothing and
// answers 404 or 409 accordingly.
func (h *OrderHandler) explainNoRows(w http.ResponseWriter, r *http.Request, orderID uuid.UUID, action string) {
	current, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order for %s: %v", action, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	switch {
	case current.Status == database.OrderStatusCOMPLETED:
		writeJSON(w, http.StatusConflict, map[string]string{"error": "order is already completed"})
	case current.Status == database.OrderStatusCANCELLED:
		writeJSON(w, http.StatusConflict, map[string]string{"error": "order is already cancelled"})
	case action == "assign" && current.OrderType != database.OrderTypeDELIVERY:
		writeJSON(w, http.StatusConflict, map[string]string{"error": "only DELIVERY orders have a delivery person"})
	default:
		writeJSON(w, http.StatusConflict, map[string]string{"error": "order changed, please retry"})
	}
}

// --- Helpers ---

func formatItemError(idx int, msg string) string {
	return "items[" + strconv.Itoa(idx) + "]: " + msg
}

// isValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidOrderType) ||
		errors.Is(err, service.ErrInvalidMeal) ||
		errors.Is(err, service.ErrTableNumberRequired) ||
		errors.Is(err, service.ErrDeliveryAddressRequired) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidMenuItemID) ||
		errors.Is(err, service.ErrMenuItemNotFound) ||
		errors.Is(err, service.ErrMenuItemUnavailable) ||
		errors.Is(err, service.ErrMealMismatch) ||
		errors.Is(err, service.ErrNotAnAddition) ||
		errors.Is(err, service.ErrInvalidDeliveryPerson)
}

func toOrderResponse(result *service.CreateOrderResult) orderResponse {
	resp := dbOrderToResponse(result.Order)
	resp.Items = make([]orderItemResponse, len(result.Items))
	for i, ir := range result.Items {
		resp.Items[i] = dbOrderItemToResponse(ir.Item, ir.Additions)
	}
	return resp
}

func dbOrderToResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		OrderType:        string(o.OrderType),
		Meal:             string(o.Meal),
		Status:           string(o.Status),
		TableNumber:      textPtr(o.TableNumber),
		CustomerName:     textPtr(o.CustomerName),
		CustomerPhone:    textPtr(o.CustomerPhone),
		DeliveryAddress:  textPtr(o.DeliveryAddress),
		DeliveryPersonID: uuidPtr(o.DeliveryPersonID),
		Notes:            textPtr(o.Notes),
		Subtotal:         numericToString(o.Subtotal),
		DeliveryFee:      numericToString(o.DeliveryFee),
		TotalAmount:      numericToString(o.TotalAmount),
		CreatedBy:        o.CreatedBy,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		CompletedAt:      timePtr(o.CompletedAt),
	}
	if o.BusinessDate.Valid {
		resp.BusinessDate = o.BusinessDate.Time.Format(dateLayout)
	}
	return resp
}

func dbOrderItemToResponse(item database.OrderItem, adds []database.OrderItemAddition) orderItemResponse {
	resp := orderItemResponse{
		ID:         item.ID,
		MenuItemID: item.MenuItemID,
		Name:       item.Name,
		Category:   string(item.Category),
		Quantity:   item.Quantity,
		UnitPrice:  numericToString(item.UnitPrice),
		Subtotal:   numericToString(item.Subtotal),
		Notes:      textPtr(item.Notes),
		Additions:  make([]orderItemAdditionResponse, len(adds)),
	}
	for i, a := range adds {
		resp.Additions[i] = orderItemAdditionResponse{
			ID:         a.ID,
			MenuItemID: a.MenuItemID,
			Name:       a.Name,
			Quantity:   a.Quantity,
			UnitPrice:  numericToString(a.UnitPrice),
		}
	}
	return resp
}

func dbPaymentToResponse(p database.Payment) paymentResponse {
	resp := paymentResponse{
		ID:              p.ID,
		OrderID:         p.OrderID,
		PaymentMethod:   string(p.PaymentMethod),
		Amount:          numericToString(p.Amount),
		ReferenceNumber: textPtr(p.ReferenceNumber),
		ProcessedBy:     p.ProcessedBy,
		ProcessedAt:     p.ProcessedAt,
	}
	if p.AmountReceived.Valid {
		s := numericToString(p.AmountReceived)
		resp.AmountReceived = &s
	}
	if p.ChangeAmount.Valid {
		s := numericToString(p.ChangeAmount)
		resp.ChangeAmount = &s
	}
	return resp
}

func isValidOrderStatus(s database.OrderStatus) bool {
	switch s {
	case database.OrderStatusPENDING,
		database.OrderStatusPREPARING,
		database.OrderStatusREADY,
		database.OrderStatusDELIVERED,
		database.OrderStatusCOMPLETED,
		database.OrderStatusCANCELLED:
		return true
	}
	return false
}

func isValidOrderType(t database.OrderType) bool {
	switch t {
	case database.OrderTypeTABLE, database.OrderTypeTAKEAWAY, database.OrderTypeDELIVERY:
		return true
	}
	return false
}

// allowedTransitions defines manual status transitions.
// COMPLETED is reached only through payments.
var allowedTransitions = map[database.OrderStatus][]database.OrderStatus{
	database.OrderStatusPENDING:   {database.OrderStatusPREPARING, database.OrderStatusCANCELLED},
	database.OrderStatusPREPARING: {database.OrderStatusREADY, database.OrderStatusCANCELLED},
	database.OrderStatusREADY:     {database.OrderStatusDELIVERED, database.OrderStatusCANCELLED},
}

// validateStatusTransition checks if the transition from current to next is allowed.
func validateStatusTransition(current, next database.OrderStatus) error {
	allowed, ok := allowedTransitions[current]
	if !ok {
		return fmt.Errorf("cannot transition from %s", current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("cannot transition from %s to %s", current, next)
}
