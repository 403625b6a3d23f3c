package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comedor-pos/api/internal/database"
	"github.com/comedor-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const maxOrderNumberRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyItems              = errors.New("items are required")
	ErrInvalidOrderType        = errors.New("invalid order_type")
	ErrInvalidMeal             = errors.New("invalid meal")
	ErrTableNumberRequired     = errors.New("table_number is required for TABLE orders")
	ErrDeliveryAddressRequired = errors.New("delivery_address is required for DELIVERY orders")
	ErrInvalidQuantity         = errors.New("quantity must be > 0")
	ErrInvalidMenuItemID       = errors.New("invalid menu_item_id")
	ErrMenuItemNotFound        = errors.New("menu item not found")
	ErrMenuItemUnavailable     = errors.New("menu item is not available")
	ErrMealMismatch            = errors.New("menu item is not served for this meal")
	ErrNotAnAddition           = errors.New("additions must be ADDITION items")
	ErrInvalidDeliveryPerson   = errors.New("delivery_person_id must reference an active DELIVERY user")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetNextOrderNumber(ctx context.Context, businessDate pgtype.Date) (int32, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	CreateOrderItemAddition(ctx context.Context, arg database.CreateOrderItemAdditionParams) (database.OrderItemAddition, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the raw input for creating an order.
type CreateOrderRequest struct {
	CreatedBy        uuid.UUID
	OrderType        string
	Meal             string
	TableNumber      string
	CustomerName     string
	CustomerPhone    string
	DeliveryAddress  string
	DeliveryPersonID string
	Notes            string
	Items            []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single line in the order.
type CreateOrderItemRequest struct {
	MenuItemID string
	Quantity   int32
	Notes      string
	Additions  []CreateOrderItemAdditionRequest
}

// CreateOrderItemAdditionRequest is an extra attached to a line.
type CreateOrderItemAdditionRequest struct {
	MenuItemID string
	Quantity   int32
}

// CreateOrderResult is the full created order with items.
type CreateOrderResult struct {
	Order database.Order
	Items []OrderItemResult
}

// OrderItemResult is an item with its additions.
type OrderItemResult struct {
	Item      database.OrderItem
	Additions []database.OrderItemAddition
}

// OrderService handles order business logic.
type OrderService struct {
	pool        TxBeginner
	newStore    NewOrderStore
	deliveryFee decimal.Decimal
	loc         *time.Location
	now         func() time.Time
}

// NewOrderService creates a new OrderService. Business dates are computed in loc.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, deliveryFee decimal.Decimal, loc *time.Location) *OrderService {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderService{
		pool:        pool,
		newStore:    newStore,
		deliveryFee: deliveryFee,
		loc:         loc,
		now:         time.Now,
	}
}

// BusinessDate returns today's date in the service location.
func (s *OrderService) BusinessDate() time.Time {
	return BusinessDate(s.now(), s.loc)
}

// BusinessDate truncates t to midnight of its calendar day in loc.
func BusinessDate(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

type additionInfo struct {
	menuItemID uuid.UUID
	name       string
	quantity   int32
	unitPrice  decimal.Decimal
}

type processedItem struct {
	params    database.CreateOrderItemParams
	additions []additionInfo
}

// CreateOrder validates, prices from the catalog, and creates an order atomically.
// Retries up to maxOrderNumberRetries times when two transactions race for the
// same order number.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	orderType, err := validateOrderType(req.OrderType)
	if err != nil {
		return nil, err
	}
	meal, err := validateOrderMeal(req.Meal)
	if err != nil {
		return nil, err
	}

	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	switch orderType {
	case database.OrderTypeTABLE:
		if strings.TrimSpace(req.TableNumber) == "" {
			return nil, ErrTableNumberRequired
		}
	case database.OrderTypeDELIVERY:
		if strings.TrimSpace(req.DeliveryAddress) == "" {
			return nil, ErrDeliveryAddressRequired
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req, orderType, meal)
		if err == nil {
			return result, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// isOrderNumberConflict checks for a unique violation on the per-day order number.
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_business_date_order_number_key"
	}
	return false
}

func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest, orderType database.OrderType, meal database.Meal) (*CreateOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	businessDate := pgtype.Date{Time: s.BusinessDate(), Valid: true}
	nextNum, err := store.GetNextOrderNumber(ctx, businessDate)
	if err != nil {
		return nil, fmt.Errorf("get next order number: %w", err)
	}
	orderNumber := fmt.Sprintf("ORD-%03d", nextNum)

	// --- Normalize lines against the catalog ---
	orderSubtotal := decimal.Zero
	var items []processedItem

	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		menuItem, err := lookupMenuItem(ctx, store, item.MenuItemID, meal)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}

		unitPrice := numericToDecimal(menuItem.Price)

		additionsTotal := decimal.Zero
		var additions []additionInfo
		for j, add := range item.Additions {
			if add.Quantity <= 0 {
				return nil, fmt.Errorf("item[%d].additions[%d]: %w", i, j, ErrInvalidQuantity)
			}
			addItem, err := lookupMenuItem(ctx, store, add.MenuItemID, meal)
			if err != nil {
				return nil, fmt.Errorf("item[%d].additions[%d]: %w", i, j, err)
			}
			if addItem.Category != database.MenuCategoryADDITION {
				return nil, fmt.Errorf("item[%d].additions[%d]: %w", i, j, ErrNotAnAddition)
			}
			addPrice := numericToDecimal(addItem.Price)
			additionsTotal = additionsTotal.Add(addPrice.Mul(decimal.NewFromInt32(add.Quantity)))
			additions = append(additions, additionInfo{
				menuItemID: addItem.ID,
				name:       addItem.Name,
				quantity:   add.Quantity,
				unitPrice:  addPrice,
			})
		}

		// line subtotal = unit_price * quantity + additions
		lineSubtotal := unitPrice.Mul(decimal.NewFromInt32(item.Quantity)).Add(additionsTotal)
		orderSubtotal = orderSubtotal.Add(lineSubtotal)

		items = append(items, processedItem{
			params: database.CreateOrderItemParams{
				MenuItemID: menuItem.ID,
				Name:       menuItem.Name,
				Category:   menuItem.Category,
				Quantity:   item.Quantity,
				UnitPrice:  decimalToNumeric(unitPrice),
				Subtotal:   decimalToNumeric(lineSubtotal),
				Notes:      optionalText(item.Notes),
			},
			additions: additions,
		})
	}

	deliveryFee := decimal.Zero
	deliveryAddress := pgtype.Text{}
	deliveryPersonID := pgtype.UUID{}
	if orderType == database.OrderTypeDELIVERY {
		deliveryFee = s.deliveryFee
		deliveryAddress = optionalText(req.DeliveryAddress)
		if req.DeliveryPersonID != "" {
			id, err := validateDeliveryPerson(ctx, store, req.DeliveryPersonID)
			if err != nil {
				return nil, err
			}
			deliveryPersonID = pgtype.UUID{Bytes: id, Valid: true}
		}
	}

	tableNumber := pgtype.Text{}
	if orderType == database.OrderTypeTABLE {
		tableNumber = optionalText(req.TableNumber)
	}

	totalAmount := orderSubtotal.Add(deliveryFee)

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		BusinessDate:     businessDate,
		OrderNumber:      orderNumber,
		OrderType:        orderType,
		Meal:             meal,
		TableNumber:      tableNumber,
		CustomerName:     optionalText(req.CustomerName),
		CustomerPhone:    optionalText(req.CustomerPhone),
		DeliveryAddress:  deliveryAddress,
		DeliveryPersonID: deliveryPersonID,
		Notes:            optionalText(req.Notes),
		Subtotal:         decimalToNumeric(orderSubtotal),
		DeliveryFee:      decimalToNumeric(deliveryFee),
		TotalAmount:      decimalToNumeric(totalAmount),
		CreatedBy:        req.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var itemResults []OrderItemResult
	for _, pi := range items {
		pi.params.OrderID = order.ID
		item, err := store.CreateOrderItem(ctx, pi.params)
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}

		addResults := []database.OrderItemAddition{}
		for _, add := range pi.additions {
			oia, err := store.CreateOrderItemAddition(ctx, database.CreateOrderItemAdditionParams{
				OrderItemID: item.ID,
				MenuItemID:  add.menuItemID,
				Name:        add.name,
				Quantity:    add.quantity,
				UnitPrice:   decimalToNumeric(add.unitPrice),
			})
			if err != nil {
				return nil, fmt.Errorf("create order item addition: %w", err)
			}
			addResults = append(addResults, oia)
		}

		itemResults = append(itemResults, OrderItemResult{
			Item:      item,
			Additions: addResults,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{
		Order: order,
		Items: itemResults,
	}, nil
}

// lookupMenuItem loads a sellable catalog entry for the given meal.
func lookupMenuItem(ctx context.Context, store OrderStore, rawID string, meal database.Meal) (database.MenuItem, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return database.MenuItem{}, ErrInvalidMenuItemID
	}
	item, err := store.GetMenuItem(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.MenuItem{}, ErrMenuItemNotFound
		}
		return database.MenuItem{}, fmt.Errorf("get menu item: %w", err)
	}
	if !item.IsAvailable {
		return database.MenuItem{}, ErrMenuItemUnavailable
	}
	if item.Meal != database.MealALLDAY && item.Meal != meal {
		return database.MenuItem{}, ErrMealMismatch
	}
	return item, nil
}

func validateDeliveryPerson(ctx context.Context, store OrderStore, rawID string) (uuid.UUID, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, ErrInvalidDeliveryPerson
	}
	user, err := store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrInvalidDeliveryPerson
		}
		return uuid.Nil, fmt.Errorf("get delivery person: %w", err)
	}
	if user.Role != enum.UserRoleDelivery {
		return uuid.Nil, ErrInvalidDeliveryPerson
	}
	return id, nil
}

// --- Helpers ---

func validateOrderType(s string) (database.OrderType, error) {
	switch t := database.OrderType(s); t {
	case database.OrderTypeTABLE, database.OrderTypeTAKEAWAY, database.OrderTypeDELIVERY:
		return t, nil
	}
	return "", ErrInvalidOrderType
}

// validateOrderMeal accepts the meals an order can be placed for. ALL_DAY only
// applies to catalog items.
func validateOrderMeal(s string) (database.Meal, error) {
	switch m := database.Meal(s); m {
	case database.MealBREAKFAST, database.MealLUNCH:
		return m, nil
	}
	return "", ErrInvalidMeal
}

func optionalText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

// quantityToNumeric keeps the three decimals used for stock counts.
func quantityToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(3))
	return n
}
