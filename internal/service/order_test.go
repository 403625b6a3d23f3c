package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/comedor-pos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr   error
	rollbackErr error
	committed   bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	m.committed = m.commitErr == nil
	return m.commitErr
}
func (m *mockTx) Rollback(ctx context.Context) error { return m.rollbackErr }
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockTxBeginner implements TxBeginner.
type mockTxBeginner struct {
	tx  pgx.Tx
	err error
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.tx, m.err
}

// mockOrderStore implements OrderStore with configurable behavior.
type mockOrderStore struct {
	getNextOrderNumberFn func(ctx context.Context, businessDate pgtype.Date) (int32, error)
	getMenuItemFn        func(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	getUserByIDFn        func(ctx context.Context, id uuid.UUID) (database.User, error)
	createOrderFn        func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	createOrderItemFn    func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	createAdditionFn     func(ctx context.Context, arg database.CreateOrderItemAdditionParams) (database.OrderItemAddition, error)
}

func (m *mockOrderStore) GetNextOrderNumber(ctx context.Context, businessDate pgtype.Date) (int32, error) {
	return m.getNextOrderNumberFn(ctx, businessDate)
}
func (m *mockOrderStore) GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error) {
	return m.getMenuItemFn(ctx, id)
}
func (m *mockOrderStore) GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error) {
	return m.getUserByIDFn(ctx, id)
}
func (m *mockOrderStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	return m.createOrderFn(ctx, arg)
}
func (m *mockOrderStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	return m.createOrderItemFn(ctx, arg)
}
func (m *mockOrderStore) CreateOrderItemAddition(ctx context.Context, arg database.CreateOrderItemAdditionParams) (database.OrderItemAddition, error) {
	return m.createAdditionFn(ctx, arg)
}

// --- Test helpers ---

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func numericEquals(n pgtype.Numeric, expected string) bool {
	d := numericToDecimal(n)
	exp, _ := decimal.NewFromString(expected)
	return d.Equal(exp)
}

var bogota = time.FixedZone("COT", -5*60*60)

// newTestService creates an OrderService with mocked dependencies and a fixed clock.
func newTestService(store *mockOrderStore, fee string) (*OrderService, *mockTx) {
	tx := &mockTx{}
	pool := &mockTxBeginner{tx: tx}
	newStore := func(db database.DBTX) OrderStore { return store }
	svc := NewOrderService(pool, newStore, decimal.RequireFromString(fee), bogota)
	// 02:30 UTC on the 15th is still the 14th in Bogota.
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 2, 30, 0, 0, time.UTC) }
	return svc, tx
}

// catalog is an in-memory menu used by defaultStore.
type catalog map[uuid.UUID]database.MenuItem

func (c catalog) add(name string, category database.MenuCategory, meal database.Meal, price string) uuid.UUID {
	id := uuid.New()
	c[id] = database.MenuItem{
		ID:          id,
		Name:        name,
		Category:    category,
		Meal:        meal,
		Price:       makeNumeric(price),
		IsAvailable: true,
		IsActive:    true,
	}
	return id
}

// defaultStore returns a mockOrderStore backed by the given catalog.
// Individual tests override the functions they care about.
func defaultStore(menu catalog) *mockOrderStore {
	return &mockOrderStore{
		getNextOrderNumberFn: func(ctx context.Context, businessDate pgtype.Date) (int32, error) {
			return 1, nil
		},
		getMenuItemFn: func(ctx context.Context, id uuid.UUID) (database.MenuItem, error) {
			if item, ok := menu[id]; ok {
				return item, nil
			}
			return database.MenuItem{}, pgx.ErrNoRows
		},
		getUserByIDFn: func(ctx context.Context, id uuid.UUID) (database.User, error) {
			return database.User{}, pgx.ErrNoRows
		},
		createOrderFn: func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
			return database.Order{
				ID:               uuid.New(),
				BusinessDate:     arg.BusinessDate,
				OrderNumber:      arg.OrderNumber,
				OrderType:        arg.OrderType,
				Meal:             arg.Meal,
				Status:           database.OrderStatusPENDING,
				TableNumber:      arg.TableNumber,
				DeliveryAddress:  arg.DeliveryAddress,
				DeliveryPersonID: arg.DeliveryPersonID,
				Subtotal:         arg.Subtotal,
				DeliveryFee:      arg.DeliveryFee,
				TotalAmount:      arg.TotalAmount,
				CreatedBy:        arg.CreatedBy,
			}, nil
		},
		createOrderItemFn: func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
			return database.OrderItem{
				ID:         uuid.New(),
				OrderID:    arg.OrderID,
				MenuItemID: arg.MenuItemID,
				Name:       arg.Name,
				Category:   arg.Category,
				Quantity:   arg.Quantity,
				UnitPrice:  arg.UnitPrice,
				Subtotal:   arg.Subtotal,
				Notes:      arg.Notes,
			}, nil
		},
		createAdditionFn: func(ctx context.Context, arg database.CreateOrderItemAdditionParams) (database.OrderItemAddition, error) {
			return database.OrderItemAddition{
				ID:          uuid.New(),
				OrderItemID: arg.OrderItemID,
				MenuItemID:  arg.MenuItemID,
				Name:        arg.Name,
				Quantity:    arg.Quantity,
				UnitPrice:   arg.UnitPrice,
			}, nil
		},
	}
}

func takeawayReq(meal string, items ...CreateOrderItemRequest) CreateOrderRequest {
	return CreateOrderRequest{
		CreatedBy: uuid.New(),
		OrderType: "TAKEAWAY",
		Meal:      meal,
		Items:     items,
	}
}

// =====================
// Validation tests
// =====================

func TestCreateOrder_ValidationErrors(t *testing.T) {
	menu := catalog{}
	lunch := menu.add("Bandeja paisa", database.MenuCategoryDISH, database.MealLUNCH, "25000")
	line := CreateOrderItemRequest{MenuItemID: lunch.String(), Quantity: 1}

	tests := []struct {
		name string
		req  CreateOrderRequest
		want error
	}{
		{"invalid order type", CreateOrderRequest{OrderType: "DINE_IN", Meal: "LUNCH", Items: []CreateOrderItemRequest{line}}, ErrInvalidOrderType},
		{"invalid meal", CreateOrderRequest{OrderType: "TAKEAWAY", Meal: "DINNER", Items: []CreateOrderItemRequest{line}}, ErrInvalidMeal},
		{"all day is not an order meal", CreateOrderRequest{OrderType: "TAKEAWAY", Meal: "ALL_DAY", Items: []CreateOrderItemRequest{line}}, ErrInvalidMeal},
		{"empty items", CreateOrderRequest{OrderType: "TAKEAWAY", Meal: "LUNCH"}, ErrEmptyItems},
		{"table without number", CreateOrderRequest{OrderType: "TABLE", Meal: "LUNCH", TableNumber: "  ", Items: []CreateOrderItemRequest{line}}, ErrTableNumberRequired},
		{"delivery without address", CreateOrderRequest{OrderType: "DELIVERY", Meal: "LUNCH", Items: []CreateOrderItemRequest{line}}, ErrDeliveryAddressRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(defaultStore(menu), "0")
			_, err := svc.CreateOrder(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got: %v", tt.want, err)
			}
		})
	}
}

func TestCreateOrder_LineErrors(t *testing.T) {
	menu := catalog{}
	lunch := menu.add("Bandeja paisa", database.MenuCategoryDISH, database.MealLUNCH, "25000")
	breakfast := menu.add("Calentado", database.MenuCategoryDISH, database.MealBREAKFAST, "12000")
	drink := menu.add("Limonada", database.MenuCategoryDRINK, database.MealALLDAY, "5000")
	soldOut := menu.add("Sancocho", database.MenuCategoryDISH, database.MealLUNCH, "20000")
	item := menu[soldOut]
	item.IsAvailable = false
	menu[soldOut] = item

	tests := []struct {
		name string
		line CreateOrderItemRequest
		want error
	}{
		{"zero quantity", CreateOrderItemRequest{MenuItemID: lunch.String(), Quantity: 0}, ErrInvalidQuantity},
		{"missing menu item id", CreateOrderItemRequest{MenuItemID: "", Quantity: 1}, ErrInvalidMenuItemID},
		{"unknown menu item", CreateOrderItemRequest{MenuItemID: uuid.New().String(), Quantity: 1}, ErrMenuItemNotFound},
		{"unavailable item", CreateOrderItemRequest{MenuItemID: soldOut.String(), Quantity: 1}, ErrMenuItemUnavailable},
		{"breakfast item on lunch order", CreateOrderItemRequest{MenuItemID: breakfast.String(), Quantity: 1}, ErrMealMismatch},
		{"addition that is not an ADDITION", CreateOrderItemRequest{
			MenuItemID: lunch.String(), Quantity: 1,
			Additions: []CreateOrderItemAdditionRequest{{MenuItemID: drink.String(), Quantity: 1}},
		}, ErrNotAnAddition},
		{"addition with zero quantity", CreateOrderItemRequest{
			MenuItemID: lunch.String(), Quantity: 1,
			Additions: []CreateOrderItemAdditionRequest{{MenuItemID: drink.String(), Quantity: 0}},
		}, ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, tx := newTestService(defaultStore(menu), "0")
			_, err := svc.CreateOrder(context.Background(), takeawayReq("LUNCH", tt.line))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got: %v", tt.want, err)
			}
			if tx.committed {
				t.Error("transaction must not commit on validation failure")
			}
		})
	}
}

func TestCreateOrder_InvalidDeliveryPerson(t *testing.T) {
	menu := catalog{}
	lunch := menu.add("Bandeja paisa", database.MenuCategoryDISH, database.MealLUNCH, "25000")
	waiterID := uuid.New()

	store := defaultStore(menu)
	store.getUserByIDFn = func(ctx context.Context, id uuid.UUID) (database.User, error) {
		if id == waiterID {
			return database.User{ID: id, Role: "WAITER", IsActive: true}, nil
		}
		return database.User{}, pgx.ErrNoRows
	}
	svc, _ := newTestService(store, "3000")

	for _, raw := range []string{"not-a-uuid", uuid.New().String(), waiterID.String()} {
		req := CreateOrderRequest{
			OrderType:        "DELIVERY",
			Meal:             "LUNCH",
			DeliveryAddress:  "Calle 10 # 5-20",
			DeliveryPersonID: raw,
			Items:            []CreateOrderItemRequest{{MenuItemID: lunch.String(), Quantity: 1}},
		}
		if _, err := svc.CreateOrder(context.Background(), req); !errors.Is(err, ErrInvalidDeliveryPerson) {
			t.Errorf("%s: expected ErrInvalidDeliveryPerson, got: %v", raw, err)
		}
	}
}

// =====================
// Pricing tests
// =====================

func TestCreateOrder_BasicPrice(t *testing.T) {
	menu := catalog{}
	lunch := menu.add("Bandeja paisa", database.MenuCategoryDISH, database.MealLUNCH, "25000")

	var captured database.CreateOrderParams
	store := defaultStore(menu)
	inner := store.createOrderFn
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		captured = arg
		return inner(ctx, arg)
	}

	svc, tx := newTestService(store, "3000")
	result, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		CreatedBy:   uuid.New(),
		OrderType:   "TABLE",
		Meal:        "LUNCH",
		TableNumber: "4",
		Items:       []CreateOrderItemRequest{{MenuItemID: lunch.String(), Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tx.committed {
		t.Error("expected commit")
	}

	if !numericEquals(captured.Subtotal, "50000") {
		t.Errorf("subtotal: got %s, want 50000", numericToDecimal(captured.Subtotal))
	}
	// Only DELIVERY orders carry a delivery fee.
	if !numericEquals(captured.DeliveryFee, "0") {
		t.Errorf("delivery fee: got %s, want 0", numericToDecimal(captured.DeliveryFee))
	}
	if !numericEquals(captured.TotalAmount, "50000") {
		t.Errorf("total: got %s, want 50000", numericToDecimal(captured.TotalAmount))
	}
	if captured.TableNumber.String != "4" {
		t.Errorf("table number: got %q", captured.TableNumber.String)
	}

	if len(result.Items) != 1 {
		t.Fatalf("items: got %d, want 1", len(result.Items))
	}
	item := result.Items[0].Item
	if item.Name != "Bandeja paisa" || item.Category != database.MenuCategoryDISH {
		t.Errorf("snapshot: got %s/%s", item.Name, item.Category)
	}
	if !numericEquals(item.UnitPrice, "25000") {
		t.Errorf("unit price: got %s", numericToDecimal(item.UnitPrice))
	}
}

func TestCreateOrder_WithAdditions(t *testing.T) {
	menu := catalog{}
	lunch := menu.add("Corrientazo", database.MenuCategoryDISH, database.MealLUNCH, "15000")
	egg := menu.add("Huevo", database.MenuCategoryADDITION, database.MealALLDAY, "2000")
	cheese := menu.add("Queso", database.MenuCategoryADDITION, database.MealLUNCH, "3000")

	svc, _ := newTestService(defaultStore(menu), "0")
	result, err := svc.CreateOrder(context.Background(), takeawayReq("LUNCH", CreateOrderItemRequest{
		MenuItemID: lunch.String(),
		Quantity:   2,
		Additions: []CreateOrderItemAdditionRequest{
			{MenuItemID: egg.String(), Quantity: 2},
			{MenuItemID: cheese.String(), Quantity: 1},
		},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 15000*2 + 2000*2 + 3000*1 = 37000
	if !numericEquals(result.Items[0].Item.Subtotal, "37000") {
		t.Errorf("line subtotal: got %s, want 37000", numericToDecimal(result.Items[0].Item.Subtotal))
	}
	if !numericEquals(result.Order.TotalAmount, "37000") {
		t.Errorf("total: got %s, want 37000", numericToDecimal(result.Order.TotalAmount))
	}
	adds := result.Items[0].Additions
	if len(adds) != 2 {
		t.Fatalf("additions: got %d, want 2", len(adds))
	}
	if adds[0].Name != "Huevo" || !numericEquals(adds[0].UnitPrice, "2000") {
		t.Errorf("addition snapshot: got %s %s", adds[0].Name, numericToDecimal(adds[0].UnitPrice))
	}
}

func TestCreateOrder_MultipleItemsWithAllDayDrink(t *testing.T) {
	menu := catalog{}
	breakfast := menu.add("Calentado", database.MenuCategoryDISH, database.MealBREAKFAST, "12000")
	coffee := menu.add("Tinto", database.MenuCategoryDRINK, database.MealALLDAY, "1500")

	svc, _ := newTestService(defaultStore(menu), "0")
	result, err := svc.CreateOrder(context.Background(), takeawayReq("BREAKFAST",
		CreateOrderItemRequest{MenuItemID: breakfast.String(), Quantity: 1},
		CreateOrderItemRequest{MenuItemID: coffee.String(), Quantity: 3, Notes: "sin azucar"},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 12000 + 1500*3 = 16500
	if !numericEquals(result.Order.Subtotal, "16500") {
		t.Errorf("subtotal: got %s, want 16500", numericToDecimal(result.Order.Subtotal))
	}
	if result.Order.Meal != database.MealBREAKFAST {
		t.Errorf("meal: got %s", result.Order.Meal)
	}
	if result.Items[1].Item.Notes.String != "sin azucar" {
		t.Errorf("notes: got %q", result.Items[1].Item.Notes.String)
	}
}

func TestCreateOrder_DeliveryAddsFee(t *testing.T) {
	menu := catalog{}
	lunch := menu.add("Bandeja paisa", database.MenuCategoryDISH, database.MealLUNCH, "25000")
	riderID := uuid.New()

	store := defaultStore(menu)
	store.getUserByIDFn = func(ctx context.Context, id uuid.UUID) (database.User, error) {
		return database.User{ID: id, Role: "DELIVERY", IsActive: true}, nil
	}

	svc, _ := newTestService(store, "3000")
	result, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		CreatedBy:        uuid.New(),
		OrderType:        "DELIVERY",
		Meal:             "LUNCH",
		DeliveryAddress:  "Carrera 7 # 45-10",
		DeliveryPersonID: riderID.String(),
		TableNumber:      "9",
		Items:            []CreateOrderItemRequest{{MenuItemID: lunch.String(), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !numericEquals(result.Order.DeliveryFee, "3000") {
		t.Errorf("delivery fee: got %s, want 3000", numericToDecimal(result.Order.DeliveryFee))
	}
	if !numericEquals(result.Order.TotalAmount, "28000") {
		t.Errorf("total: got %s, want 28000", numericToDecimal(result.Order.TotalAmount))
	}
	if !result.Order.DeliveryPersonID.Valid || uuid.UUID(result.Order.DeliveryPersonID.Bytes) != riderID {
		t.Errorf("delivery person not set")
	}
	if result.Order.TableNumber.Valid {
		t.Error("table number should be dropped for delivery orders")
	}
}

// =====================
// Order number tests
// =====================

func TestCreateOrder_OrderNumberAndBusinessDate(t *testing.T) {
	menu := catalog{}
	lunch := menu.add("Bandeja paisa", database.MenuCategoryDISH, database.MealLUNCH, "25000")

	var gotDate pgtype.Date
	store := defaultStore(menu)
	store.getNextOrderNumberFn = func(ctx context.Context, businessDate pgtype.Date) (int32, error) {
		gotDate = businessDate
		return 42, nil
	}

	svc, _ := newTestService(store, "0")
	result, err := svc.CreateOrder(context.Background(), takeawayReq("LUNCH", CreateOrderItemRequest{MenuItemID: lunch.String(), Quantity: 1}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Order.OrderNumber != "ORD-042" {
		t.Errorf("order number: got %s, want ORD-042", result.Order.OrderNumber)
	}
	if got := gotDate.Time.Format("2006-01-02"); got != "2026-03-14" {
		t.Errorf("business date: got %s, want 2026-03-14", got)
	}
}

func TestCreateOrder_RetryOnUniqueViolation(t *testing.T) {
	menu := catalog{}
	lunch := menu.add("Bandeja paisa", database.MenuCategoryDISH, database.MealLUNCH, "25000")
	store := defaultStore(menu)

	inner := store.createOrderFn
	createCallCount := 0
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		createCallCount++
		if createCallCount == 1 {
			return database.Order{}, &pgconn.PgError{
				Code:           "23505",
				ConstraintName: "orders_business_date_order_number_key",
			}
		}
		return inner(ctx, arg)
	}

	orderNumCallCount := 0
	store.getNextOrderNumberFn = func(ctx context.Context, businessDate pgtype.Date) (int32, error) {
		orderNumCallCount++
		return int32(orderNumCallCount), nil
	}

	svc, _ := newTestService(store, "0")
	result, err := svc.CreateOrder(context.Background(), takeawayReq("LUNCH", CreateOrderItemRequest{MenuItemID: lunch.String(), Quantity: 1}))
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if result.Order.OrderNumber != "ORD-002" {
		t.Errorf("order number: got %s, want ORD-002", result.Order.OrderNumber)
	}
	if createCallCount != 2 {
		t.Errorf("expected 2 CreateOrder calls (1 fail + 1 success), got %d", createCallCount)
	}
}

func TestCreateOrder_RetryExhausted(t *testing.T) {
	menu := catalog{}
	lunch := menu.add("Bandeja paisa", database.MenuCategoryDISH, database.MealLUNCH, "25000")
	store := defaultStore(menu)

	calls := 0
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		calls++
		return database.Order{}, &pgconn.PgError{
			Code:           "23505",
			ConstraintName: "orders_business_date_order_number_key",
		}
	}

	svc, _ := newTestService(store, "0")
	_, err := svc.CreateOrder(context.Background(), takeawayReq("LUNCH", CreateOrderItemRequest{MenuItemID: lunch.String(), Quantity: 1}))
	if err == nil {
		t.Fatal("expected error after exhausting retries, got nil")
	}
	if !strings.Contains(err.Error(), "create order") {
		t.Errorf("expected 'create order' in error message, got: %v", err)
	}
	if calls != maxOrderNumberRetries {
		t.Errorf("calls: got %d, want %d", calls, maxOrderNumberRetries)
	}
}

func TestCreateOrder_NonUniqueErrorNotRetried(t *testing.T) {
	menu := catalog{}
	lunch := menu.add("Bandeja paisa", database.MenuCategoryDISH, database.MealLUNCH, "25000")
	store := defaultStore(menu)

	callCount := 0
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		callCount++
		return database.Order{}, &pgconn.PgError{Code: "23503", ConstraintName: "orders_created_by_fkey"}
	}

	svc, _ := newTestService(store, "0")
	_, err := svc.CreateOrder(context.Background(), takeawayReq("LUNCH", CreateOrderItemRequest{MenuItemID: lunch.String(), Quantity: 1}))
	if err == nil {
		t.Fatal("expected error")
	}
	if callCount != 1 {
		t.Errorf("expected 1 call (no retry), got %d", callCount)
	}
}

func TestCreateOrder_BeginError(t *testing.T) {
	menu := catalog{}
	lunch := menu.add("Bandeja paisa", database.MenuCategoryDISH, database.MealLUNCH, "25000")
	store := defaultStore(menu)

	svc := NewOrderService(&mockTxBeginner{err: errors.New("pool closed")}, func(database.DBTX) OrderStore { return store }, decimal.Zero, nil)
	_, err := svc.CreateOrder(context.Background(), takeawayReq("LUNCH", CreateOrderItemRequest{MenuItemID: lunch.String(), Quantity: 1}))
	if err == nil || !strings.Contains(err.Error(), "begin tx") {
		t.Fatalf("expected begin tx error, got: %v", err)
	}
}

func TestBusinessDate(t *testing.T) {
	got := BusinessDate(time.Date(2026, 1, 1, 4, 59, 0, 0, time.UTC), bogota)
	if got.Format("2006-01-02") != "2025-12-31" {
		t.Errorf("got %s, want 2025-12-31", got.Format("2006-01-02"))
	}
	if got.Hour() != 0 || got.Location() != bogota {
		t.Errorf("expected midnight in location, got %v", got)
	}
}
