package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/comedor-pos/api/internal/database"
	"github.com/comedor-pos/api/internal/enum"
	"github.com/comedor-pos/api/internal/handler"
	"github.com/comedor-pos/api/internal/middleware"
	"github.com/comedor-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mock OrderServicer ---

type mockOrderService struct {
	createFn func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
	return m.createFn(ctx, req)
}

// --- Mock OrderStore ---

type mockOrderStore struct {
	orders    map[uuid.UUID]database.Order
	items     map[uuid.UUID][]database.OrderItem
	additions map[uuid.UUID][]database.OrderItemAddition
	payments  map[uuid.UUID][]database.Payment
	users     map[uuid.UUID]database.User

	lastList database.ListOrdersParams
	// raceStatus, when set, is applied just before UpdateOrderStatus runs.
	raceStatus database.OrderStatus
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{
		orders:    make(map[uuid.UUID]database.Order),
		items:     make(map[uuid.UUID][]database.OrderItem),
		additions: make(map[uuid.UUID][]database.OrderItemAddition),
		payments:  make(map[uuid.UUID][]database.Payment),
		users:     make(map[uuid.UUID]database.User),
	}
}

func (m *mockOrderStore) GetOrder(_ context.Context, id uuid.UUID) (database.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *mockOrderStore) ListOrders(_ context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	m.lastList = arg
	var out []database.Order
	for _, o := range m.orders {
		if arg.Status.Valid && o.Status != arg.Status.OrderStatus {
			continue
		}
		if arg.OrderType.Valid && o.OrderType != arg.OrderType.OrderType {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *mockOrderStore) ListOrderItemsByOrder(_ context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	return m.items[orderID], nil
}

func (m *mockOrderStore) ListOrderItemAdditionsByOrderItem(_ context.Context, orderItemID uuid.UUID) ([]database.OrderItemAddition, error) {
	return m.additions[orderItemID], nil
}

func (m *mockOrderStore) ListPaymentsByOrder(_ context.Context, orderID uuid.UUID) ([]database.Payment, error) {
	return m.payments[orderID], nil
}

func (m *mockOrderStore) UpdateOrderStatus(_ context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	if m.raceStatus != "" {
		o.Status = m.raceStatus
		m.orders[arg.ID] = o
	}
	if o.Status != arg.ExpectedStatus {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Status = arg.Status
	m.orders[arg.ID] = o
	return o, nil
}

func (m *mockOrderStore) AssignDeliveryPerson(_ context.Context, arg database.AssignDeliveryPersonParams) (database.Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok || o.OrderType != database.OrderTypeDELIVERY ||
		o.Status == database.OrderStatusCOMPLETED || o.Status == database.OrderStatusCANCELLED {
		return database.Order{}, pgx.ErrNoRows
	}
	o.DeliveryPersonID = arg.DeliveryPersonID
	m.orders[arg.ID] = o
	return o, nil
}

func (m *mockOrderStore) CancelOrder(_ context.Context, id uuid.UUID) (database.Order, error) {
	o, ok := m.orders[id]
	if !ok || o.Status == database.OrderStatusCOMPLETED || o.Status == database.OrderStatusCANCELLED {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Status = database.OrderStatusCANCELLED
	m.orders[id] = o
	return o, nil
}

func (m *mockOrderStore) GetUserByID(_ context.Context, id uuid.UUID) (database.User, error) {
	u, ok := m.users[id]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockOrderStore) addOrder(orderType database.OrderType, status database.OrderStatus, total string) database.Order {
	now := time.Now()
	o := database.Order{
		ID:           uuid.New(),
		BusinessDate: pgtype.Date{Time: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), Valid: true},
		OrderNumber:  fmt.Sprintf("ORD-%03d", len(m.orders)+1),
		OrderType:    orderType,
		Meal:         database.MealLUNCH,
		Status:       status,
		Subtotal:     testNumeric(total),
		DeliveryFee:  testNumeric("0"),
		TotalAmount:  testNumeric(total),
		CreatedBy:    uuid.New(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.orders[o.ID] = o
	return o
}

// --- Router setup ---

func setupOrderRouter(svc *mockOrderService, store *mockOrderStore, pub *recordingPublisher) *chi.Mux {
	h := handler.NewOrderHandler(svc, store, pub, time.UTC)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/orders", h.RegisterRoutes)
	return r
}

func testOrderResult(userID uuid.UUID) *service.CreateOrderResult {
	orderID := uuid.New()
	itemID := uuid.New()
	now := time.Now()

	return &service.CreateOrderResult{
		Order: database.Order{
			ID:           orderID,
			BusinessDate: pgtype.Date{Time: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), Valid: true},
			OrderNumber:  "ORD-001",
			OrderType:    database.OrderTypeTABLE,
			Meal:         database.MealLUNCH,
			Status:       database.OrderStatusPENDING,
			TableNumber:  pgtype.Text{String: "4", Valid: true},
			Subtotal:     testNumeric("30000"),
			DeliveryFee:  testNumeric("0"),
			TotalAmount:  testNumeric("30000"),
			CreatedBy:    userID,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		Items: []service.OrderItemResult{
			{
				Item: database.OrderItem{
					ID:         itemID,
					OrderID:    orderID,
					MenuItemID: uuid.New(),
					Name:       "Bandeja paisa",
					Category:   database.MenuCategoryDISH,
					Quantity:   2,
					UnitPrice:  testNumeric("13000"),
					Subtotal:   testNumeric("30000"),
				},
				Additions: []database.OrderItemAddition{
					{ID: uuid.New(), OrderItemID: itemID, MenuItemID: uuid.New(), Name: "Huevo", Quantity: 2, UnitPrice: testNumeric("2000")},
				},
			},
		},
	}
}

// --- Create tests ---

func TestOrderCreate_HappyPath(t *testing.T) {
	claims := testClaims(enum.UserRoleWaiter)
	pub := &recordingPublisher{}
	addID := uuid.New().String()

	svc := &mockOrderService{
		createFn: func(_ context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			if req.CreatedBy != claims.UserID {
				t.Errorf("created_by: got %v, want %v", req.CreatedBy, claims.UserID)
			}
			if req.OrderType != "TABLE" || req.Meal != "LUNCH" || req.TableNumber != "4" {
				t.Errorf("unexpected request: %+v", req)
			}
			if len(req.Items) != 1 || len(req.Items[0].Additions) != 1 || req.Items[0].Additions[0].MenuItemID != addID {
				t.Errorf("items not passed through: %+v", req.Items)
			}
			return testOrderResult(claims.UserID), nil
		},
	}
	router := setupOrderRouter(svc, newMockOrderStore(), pub)

	rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{
		"order_type":   "TABLE",
		"meal":         "LUNCH",
		"table_number": "4",
		"items": []map[string]interface{}{
			{"menu_item_id": uuid.New().String(), "quantity": 2, "additions": []map[string]interface{}{
				{"menu_item_id": addID, "quantity": 2},
			}},
		},
	}, claims)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeMap(t, rr)
	if resp["order_number"] != "ORD-001" {
		t.Errorf("order_number: got %v", resp["order_number"])
	}
	if resp["total_amount"] != "30000.00" {
		t.Errorf("total_amount: got %v, want 30000.00", resp["total_amount"])
	}
	if resp["business_date"] != "2026-03-14" {
		t.Errorf("business_date: got %v", resp["business_date"])
	}
	items := resp["items"].([]interface{})
	adds := items[0].(map[string]interface{})["additions"].([]interface{})
	if len(adds) != 1 {
		t.Errorf("expected 1 addition, got %d", len(adds))
	}
	if !pub.has(enum.TopicOrders, enum.EventOrderCreated) {
		t.Errorf("expected order.created event, got %v", pub.types())
	}
}

func TestOrderCreate_RequestValidation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing order_type", map[string]interface{}{"meal": "LUNCH", "items": []map[string]interface{}{{"menu_item_id": "x", "quantity": 1}}}},
		{"missing meal", map[string]interface{}{"order_type": "TAKEAWAY", "items": []map[string]interface{}{{"menu_item_id": "x", "quantity": 1}}}},
		{"empty items", map[string]interface{}{"order_type": "TAKEAWAY", "meal": "LUNCH", "items": []map[string]interface{}{}}},
		{"missing menu_item_id", map[string]interface{}{"order_type": "TAKEAWAY", "meal": "LUNCH", "items": []map[string]interface{}{{"quantity": 1}}}},
		{"zero quantity", map[string]interface{}{"order_type": "TAKEAWAY", "meal": "LUNCH", "items": []map[string]interface{}{{"menu_item_id": "x", "quantity": 0}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderService{createFn: func(context.Context, service.CreateOrderRequest) (*service.CreateOrderResult, error) {
				t.Fatal("service must not be called")
				return nil, nil
			}}
			router := setupOrderRouter(svc, newMockOrderStore(), &recordingPublisher{})
			rr := doAuthRequest(t, router, "POST", "/orders", tt.body, testClaims(enum.UserRoleWaiter))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestOrderCreate_ServiceValidationErrors(t *testing.T) {
	errs := []error{
		service.ErrTableNumberRequired,
		service.ErrDeliveryAddressRequired,
		fmt.Errorf("item[0]: %w", service.ErrMenuItemUnavailable),
		fmt.Errorf("item[0].additions[0]: %w", service.ErrNotAnAddition),
		fmt.Errorf("item[1]: %w", service.ErrMealMismatch),
		service.ErrInvalidDeliveryPerson,
	}
	for _, svcErr := range errs {
		t.Run(svcErr.Error(), func(t *testing.T) {
			svc := &mockOrderService{createFn: func(context.Context, service.CreateOrderRequest) (*service.CreateOrderResult, error) {
				return nil, svcErr
			}}
			pub := &recordingPublisher{}
			router := setupOrderRouter(svc, newMockOrderStore(), pub)
			rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{
				"order_type": "TAKEAWAY", "meal": "LUNCH",
				"items": []map[string]interface{}{{"menu_item_id": uuid.New().String(), "quantity": 1}},
			}, testClaims(enum.UserRoleWaiter))

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
			}
			if resp := decodeMap(t, rr); resp["error"] != svcErr.Error() {
				t.Errorf("error: got %v, want %q", resp["error"], svcErr.Error())
			}
			if len(pub.types()) != 0 {
				t.Errorf("no event expected on failure, got %v", pub.types())
			}
		})
	}
}

func TestOrderCreate_ServiceInternalError(t *testing.T) {
	svc := &mockOrderService{createFn: func(context.Context, service.CreateOrderRequest) (*service.CreateOrderResult, error) {
		return nil, errors.New("connection reset")
	}}
	router := setupOrderRouter(svc, newMockOrderStore(), &recordingPublisher{})

	rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{
		"order_type": "TAKEAWAY", "meal": "LUNCH",
		"items": []map[string]interface{}{{"menu_item_id": uuid.New().String(), "quantity": 1}},
	}, testClaims(enum.UserRoleWaiter))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	if resp := decodeMap(t, rr); resp["error"] != "internal server error" {
		t.Errorf("internal errors must not leak: %v", resp["error"])
	}
}

// --- List tests ---

func TestOrderList_FiltersAndPagination(t *testing.T) {
	store := newMockOrderStore()
	store.addOrder(database.OrderTypeDELIVERY, database.OrderStatusPENDING, "20000")
	store.addOrder(database.OrderTypeTABLE, database.OrderStatusPENDING, "15000")
	router := setupOrderRouter(&mockOrderService{}, store, &recordingPublisher{})
	personID := uuid.New()

	rr := doAuthRequest(t, router, "GET",
		"/orders?type=DELIVERY&status=PENDING&meal=LUNCH&date=2026-03-14&delivery_person_id="+personID.String()+"&limit=500&offset=5",
		nil, testClaims(enum.UserRoleAdmin))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	p := store.lastList
	if p.Limit != 100 || p.Offset != 5 {
		t.Errorf("pagination: got limit=%d offset=%d, want 100/5", p.Limit, p.Offset)
	}
	if !p.BusinessDate.Valid || p.BusinessDate.Time.Format("2006-01-02") != "2026-03-14" {
		t.Errorf("business date filter: got %+v", p.BusinessDate)
	}
	if !p.DeliveryPersonID.Valid || uuid.UUID(p.DeliveryPersonID.Bytes) != personID {
		t.Errorf("delivery person filter: got %+v", p.DeliveryPersonID)
	}
	if !p.Meal.Valid || p.Meal.Meal != database.MealLUNCH {
		t.Errorf("meal filter: got %+v", p.Meal)
	}

	resp := decodeMap(t, rr)
	if orders := resp["orders"].([]interface{}); len(orders) != 1 {
		t.Errorf("expected 1 delivery order, got %d", len(orders))
	}
}

func TestOrderList_InvalidFilters(t *testing.T) {
	for _, q := range []string{"status=NEW", "type=DINE_IN", "meal=ALL_DAY", "date=14-03-2026", "delivery_person_id=nope"} {
		t.Run(q, func(t *testing.T) {
			router := setupOrderRouter(&mockOrderService{}, newMockOrderStore(), &recordingPublisher{})
			rr := doAuthRequest(t, router, "GET", "/orders?"+q, nil, testClaims(enum.UserRoleAdmin))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestOrderList_NoAuth(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, newMockOrderStore(), &recordingPublisher{})
	rr := doRequest(t, router, "GET", "/orders", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

// --- Get tests ---

func TestOrderGet_BalanceDue(t *testing.T) {
	store := newMockOrderStore()
	o := store.addOrder(database.OrderTypeTAKEAWAY, database.OrderStatusREADY, "30000")
	itemID := uuid.New()
	store.items[o.ID] = []database.OrderItem{{ID: itemID, OrderID: o.ID, Name: "Ajiaco", Category: database.MenuCategoryDISH, Quantity: 1, UnitPrice: testNumeric("30000"), Subtotal: testNumeric("30000")}}
	store.payments[o.ID] = []database.Payment{
		{ID: uuid.New(), OrderID: o.ID, PaymentMethod: database.PaymentMethodNEQUI, Amount: testNumeric("10000"), ProcessedAt: time.Now()},
		{ID: uuid.New(), OrderID: o.ID, PaymentMethod: database.PaymentMethodCASH, Amount: testNumeric("5000"),
			AmountReceived: testNumeric("10000"), ChangeAmount: testNumeric("5000"), ProcessedAt: time.Now()},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &recordingPublisher{})

	rr := doAuthRequest(t, router, "GET", "/orders/"+o.ID.String(), nil, testClaims(enum.UserRoleWaiter))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	resp := decodeMap(t, rr)
	if resp["amount_paid"] != "15000.00" {
		t.Errorf("amount_paid: got %v, want 15000.00", resp["amount_paid"])
	}
	if resp["balance_due"] != "15000.00" {
		t.Errorf("balance_due: got %v, want 15000.00", resp["balance_due"])
	}
	payments := resp["payments"].([]interface{})
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(payments))
	}
	if cash := payments[1].(map[string]interface{}); cash["change_amount"] != "5000.00" {
		t.Errorf("change_amount: got %v", cash["change_amount"])
	}
	if items := resp["items"].([]interface{}); len(items) != 1 {
		t.Errorf("expected 1 item, got %d", len(items))
	}
}

func TestOrderGet_NotFound(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, newMockOrderStore(), &recordingPublisher{})
	rr := doAuthRequest(t, router, "GET", "/orders/"+uuid.New().String(), nil, testClaims(enum.UserRoleWaiter))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestOrderGet_InvalidID(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, newMockOrderStore(), &recordingPublisher{})
	rr := doAuthRequest(t, router, "GET", "/orders/not-a-uuid", nil, testClaims(enum.UserRoleWaiter))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Status tests ---

func TestOrderUpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to  database.OrderStatus
		wantCode  int
		wantEvent string
	}{
		{database.OrderStatusPENDING, database.OrderStatusPREPARING, http.StatusOK, enum.EventOrderUpdated},
		{database.OrderStatusPREPARING, database.OrderStatusREADY, http.StatusOK, enum.EventOrderUpdated},
		{database.OrderStatusREADY, database.OrderStatusDELIVERED, http.StatusOK, enum.EventOrderUpdated},
		{database.OrderStatusREADY, database.OrderStatusCANCELLED, http.StatusOK, enum.EventOrderCancelled},
		{database.OrderStatusPENDING, database.OrderStatusREADY, http.StatusConflict, ""},
		{database.OrderStatusDELIVERED, database.OrderStatusCOMPLETED, http.StatusConflict, ""},
		{database.OrderStatusCOMPLETED, database.OrderStatusPENDING, http.StatusConflict, ""},
		{database.OrderStatusCANCELLED, database.OrderStatusPREPARING, http.StatusConflict, ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			store := newMockOrderStore()
			o := store.addOrder(database.OrderTypeTABLE, tt.from, "10000")
			pub := &recordingPublisher{}
			router := setupOrderRouter(&mockOrderService{}, store, pub)

			rr := doAuthRequest(t, router, "PATCH", "/orders/"+o.ID.String()+"/status",
				map[string]string{"status": string(tt.to)}, testClaims(enum.UserRoleKitchen))
			if rr.Code != tt.wantCode {
				t.Fatalf("status: got %d, want %d; body: %s", rr.Code, tt.wantCode, rr.Body.String())
			}
			if tt.wantEvent != "" {
				if store.orders[o.ID].Status != tt.to {
					t.Errorf("stored status: got %s, want %s", store.orders[o.ID].Status, tt.to)
				}
				if !pub.has(enum.TopicOrders, tt.wantEvent) {
					t.Errorf("expected %s event, got %v", tt.wantEvent, pub.types())
				}
			} else if store.orders[o.ID].Status != tt.from {
				t.Error("status changed on rejected transition")
			}
		})
	}
}

func TestOrderUpdateStatus_ConcurrentChange(t *testing.T) {
	store := newMockOrderStore()
	o := store.addOrder(database.OrderTypeTABLE, database.OrderStatusPENDING, "10000")
	store.raceStatus = database.OrderStatusCANCELLED
	router := setupOrderRouter(&mockOrderService{}, store, &recordingPublisher{})

	rr := doAuthRequest(t, router, "PATCH", "/orders/"+o.ID.String()+"/status",
		map[string]string{"status": "PREPARING"}, testClaims(enum.UserRoleKitchen))
	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestOrderUpdateStatus_InvalidStatus(t *testing.T) {
	store := newMockOrderStore()
	o := store.addOrder(database.OrderTypeTABLE, database.OrderStatusPENDING, "10000")
	router := setupOrderRouter(&mockOrderService{}, store, &recordingPublisher{})

	rr := doAuthRequest(t, router, "PATCH", "/orders/"+o.ID.String()+"/status",
		map[string]string{"status": "SERVED"}, testClaims(enum.UserRoleKitchen))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Delivery person tests ---

func TestOrderAssignDeliveryPerson(t *testing.T) {
	store := newMockOrderStore()
	o := store.addOrder(database.OrderTypeDELIVERY, database.OrderStatusREADY, "25000")
	rider := database.User{ID: uuid.New(), Role: enum.UserRoleDelivery, IsActive: true}
	store.users[rider.ID] = rider
	pub := &recordingPublisher{}
	router := setupOrderRouter(&mockOrderService{}, store, pub)

	rr := doAuthRequest(t, router, "PATCH", "/orders/"+o.ID.String()+"/delivery-person",
		map[string]string{"delivery_person_id": rider.ID.String()}, testClaims(enum.UserRoleWaiter))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if resp := decodeMap(t, rr); resp["delivery_person_id"] != rider.ID.String() {
		t.Errorf("delivery_person_id: got %v", resp["delivery_person_id"])
	}
	if !pub.has(enum.TopicOrders, enum.EventOrderUpdated) {
		t.Errorf("expected order.updated, got %v", pub.types())
	}
}

func TestOrderAssignDeliveryPerson_Rejections(t *testing.T) {
	waiter := database.User{ID: uuid.New(), Role: enum.UserRoleWaiter, IsActive: true}
	rider := database.User{ID: uuid.New(), Role: enum.UserRoleDelivery, IsActive: true}

	tests := []struct {
		name      string
		orderType database.OrderType
		status    database.OrderStatus
		person    uuid.UUID
		wantCode  int
	}{
		{"not a delivery user", database.OrderTypeDELIVERY, database.OrderStatusPENDING, waiter.ID, http.StatusBadRequest},
		{"unknown user", database.OrderTypeDELIVERY, database.OrderStatusPENDING, uuid.New(), http.StatusBadRequest},
		{"table order", database.OrderTypeTABLE, database.OrderStatusPENDING, rider.ID, http.StatusConflict},
		{"completed order", database.OrderTypeDELIVERY, database.OrderStatusCOMPLETED, rider.ID, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockOrderStore()
			store.users[waiter.ID] = waiter
			store.users[rider.ID] = rider
			o := store.addOrder(tt.orderType, tt.status, "25000")
			router := setupOrderRouter(&mockOrderService{}, store, &recordingPublisher{})

			rr := doAuthRequest(t, router, "PATCH", "/orders/"+o.ID.String()+"/delivery-person",
				map[string]string{"delivery_person_id": tt.person.String()}, testClaims(enum.UserRoleAdmin))
			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d; body: %s", rr.Code, tt.wantCode, rr.Body.String())
			}
		})
	}
}

// --- Cancel tests ---

func TestOrderCancel(t *testing.T) {
	store := newMockOrderStore()
	o := store.addOrder(database.OrderTypeTABLE, database.OrderStatusPREPARING, "10000")
	pub := &recordingPublisher{}
	router := setupOrderRouter(&mockOrderService{}, store, pub)

	rr := doAuthRequest(t, router, "DELETE", "/orders/"+o.ID.String(), nil, testClaims(enum.UserRoleWaiter))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if store.orders[o.ID].Status != database.OrderStatusCANCELLED {
		t.Errorf("status: got %s, want CANCELLED", store.orders[o.ID].Status)
	}
	if !pub.has(enum.TopicOrders, enum.EventOrderCancelled) {
		t.Errorf("expected order.cancelled, got %v", pub.types())
	}
}

func TestOrderCancel_Conflicts(t *testing.T) {
	for _, status := range []database.OrderStatus{database.OrderStatusCOMPLETED, database.OrderStatusCANCELLED} {
		t.Run(string(status), func(t *testing.T) {
			store := newMockOrderStore()
			o := store.addOrder(database.OrderTypeTABLE, status, "10000")
			router := setupOrderRouter(&mockOrderService{}, store, &recordingPublisher{})

			rr := doAuthRequest(t, router, "DELETE", "/orders/"+o.ID.String(), nil, testClaims(enum.UserRoleWaiter))
			if rr.Code != http.StatusConflict {
				t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
			}
		})
	}
}

func TestOrderCancel_NotFound(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, newMockOrderStore(), &recordingPublisher{})
	rr := doAuthRequest(t, router, "DELETE", "/orders/"+uuid.New().String(), nil, testClaims(enum.UserRoleWaiter))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
