package database

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ExpenseCategory string

const (
	ExpenseCategorySUPPLIES  ExpenseCategory = "SUPPLIES"
	ExpenseCategoryPAYROLL   ExpenseCategory = "PAYROLL"
	ExpenseCategoryRENT      ExpenseCategory = "RENT"
	ExpenseCategoryUTILITIES ExpenseCategory = "UTILITIES"
	ExpenseCategoryOTHER     ExpenseCategory = "OTHER"
)

func (e *ExpenseCategory) Scan(src interface{}) error {
	s, err := scanEnumText(src, "ExpenseCategory")
	*e = ExpenseCategory(s)
	return err
}

type Meal string

const (
	MealBREAKFAST Meal = "BREAKFAST"
	MealLUNCH     Meal = "LUNCH"
	MealALLDAY    Meal = "ALL_DAY"
)

func (e *Meal) Scan(src interface{}) error {
	s, err := scanEnumText(src, "Meal")
	*e = Meal(s)
	return err
}

type NullMeal struct {
	Meal  Meal
	Valid bool // Valid is true if Meal is not NULL
}

func (ns *NullMeal) Scan(value interface{}) error {
	if value == nil {
		ns.Meal, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.Meal.Scan(value)
}

func (ns NullMeal) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.Meal), nil
}

type MenuCategory string

const (
	MenuCategoryDISH     MenuCategory = "DISH"
	MenuCategoryDRINK    MenuCategory = "DRINK"
	MenuCategoryADDITION MenuCategory = "ADDITION"
)

func (e *MenuCategory) Scan(src interface{}) error {
	s, err := scanEnumText(src, "MenuCategory")
	*e = MenuCategory(s)
	return err
}

type NullMenuCategory struct {
	MenuCategory MenuCategory
	Valid        bool // Valid is true if MenuCategory is not NULL
}

func (ns *NullMenuCategory) Scan(value interface{}) error {
	if value == nil {
		ns.MenuCategory, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.MenuCategory.Scan(value)
}

func (ns NullMenuCategory) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.MenuCategory), nil
}

type MovementKind string

const (
	MovementKindIN     MovementKind = "IN"
	MovementKindOUT    MovementKind = "OUT"
	MovementKindADJUST MovementKind = "ADJUST"
)

func (e *MovementKind) Scan(src interface{}) error {
	s, err := scanEnumText(src, "MovementKind")
	*e = MovementKind(s)
	return err
}

type OrderStatus string

const (
	OrderStatusPENDING   OrderStatus = "PENDING"
	OrderStatusPREPARING OrderStatus = "PREPARING"
	OrderStatusREADY     OrderStatus = "READY"
	OrderStatusDELIVERED OrderStatus = "DELIVERED"
	OrderStatusCOMPLETED OrderStatus = "COMPLETED"
	OrderStatusCANCELLED OrderStatus = "CANCELLED"
)

func (e *OrderStatus) Scan(src interface{}) error {
	s, err := scanEnumText(src, "OrderStatus")
	*e = OrderStatus(s)
	return err
}

type NullOrderStatus struct {
	OrderStatus OrderStatus
	Valid       bool // Valid is true if OrderStatus is not NULL
}

func (ns *NullOrderStatus) Scan(value interface{}) error {
	if value == nil {
		ns.OrderStatus, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.OrderStatus.Scan(value)
}

func (ns NullOrderStatus) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.OrderStatus), nil
}

type OrderType string

const (
	OrderTypeTABLE    OrderType = "TABLE"
	OrderTypeTAKEAWAY OrderType = "TAKEAWAY"
	OrderTypeDELIVERY OrderType = "DELIVERY"
)

func (e *OrderType) Scan(src interface{}) error {
	s, err := scanEnumText(src, "OrderType")
	*e = OrderType(s)
	return err
}

type NullOrderType struct {
	OrderType OrderType
	Valid     bool // Valid is true if OrderType is not NULL
}

func (ns *NullOrderType) Scan(value interface{}) error {
	if value == nil {
		ns.OrderType, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.OrderType.Scan(value)
}

func (ns NullOrderType) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.OrderType), nil
}

type PaymentMethod string

const (
	PaymentMethodCASH      PaymentMethod = "CASH"
	PaymentMethodNEQUI     PaymentMethod = "NEQUI"
	PaymentMethodDAVIPLATA PaymentMethod = "DAVIPLATA"
	PaymentMethodCARD      PaymentMethod = "CARD"
)

func (e *PaymentMethod) Scan(src interface{}) error {
	s, err := scanEnumText(src, "PaymentMethod")
	*e = PaymentMethod(s)
	return err
}

type NullPaymentMethod struct {
	PaymentMethod PaymentMethod
	Valid         bool // Valid is true if PaymentMethod is not NULL
}

func (ns *NullPaymentMethod) Scan(value interface{}) error {
	if value == nil {
		ns.PaymentMethod, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.PaymentMethod.Scan(value)
}

func (ns NullPaymentMethod) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.PaymentMethod), nil
}

type TaskPriority string

const (
	TaskPriorityLOW    TaskPriority = "LOW"
	TaskPriorityNORMAL TaskPriority = "NORMAL"
	TaskPriorityHIGH   TaskPriority = "HIGH"
)

func (e *TaskPriority) Scan(src interface{}) error {
	s, err := scanEnumText(src, "TaskPriority")
	*e = TaskPriority(s)
	return err
}

type TaskStatus string

const (
	TaskStatusPENDING    TaskStatus = "PENDING"
	TaskStatusINPROGRESS TaskStatus = "IN_PROGRESS"
	TaskStatusDONE       TaskStatus = "DONE"
)

func (e *TaskStatus) Scan(src interface{}) error {
	s, err := scanEnumText(src, "TaskStatus")
	*e = TaskStatus(s)
	return err
}

type NullTaskStatus struct {
	TaskStatus TaskStatus
	Valid      bool // Valid is true if TaskStatus is not NULL
}

func (ns *NullTaskStatus) Scan(value interface{}) error {
	if value == nil {
		ns.TaskStatus, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.TaskStatus.Scan(value)
}

func (ns NullTaskStatus) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.TaskStatus), nil
}

func scanEnumText(src interface{}, name string) (string, error) {
	switch s := src.(type) {
	case []byte:
		return string(s), nil
	case string:
		return s, nil
	}
	return "", fmt.Errorf("unsupported scan type for %s: %T", name, src)
}

type Expense struct {
	ID            uuid.UUID         `json:"id"`
	ExpenseDate   pgtype.Date       `json:"expense_date"`
	Category      ExpenseCategory   `json:"category"`
	Description   string            `json:"description"`
	Amount        pgtype.Numeric    `json:"amount"`
	PaymentMethod NullPaymentMethod `json:"payment_method"`
	CreatedBy     uuid.UUID         `json:"created_by"`
	CreatedAt     time.Time         `json:"created_at"`
}

type InventoryItem struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Unit        string         `json:"unit"`
	Quantity    pgtype.Numeric `json:"quantity"`
	MinQuantity pgtype.Numeric `json:"min_quantity"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type InventoryMovement struct {
	ID        uuid.UUID      `json:"id"`
	ItemID    uuid.UUID      `json:"item_id"`
	Kind      MovementKind   `json:"kind"`
	Quantity  pgtype.Numeric `json:"quantity"`
	Reason    pgtype.Text    `json:"reason"`
	CreatedBy uuid.UUID      `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
}

type MenuItem struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Category    MenuCategory   `json:"category"`
	Meal        Meal           `json:"meal"`
	Price       pgtype.Numeric `json:"price"`
	Description pgtype.Text    `json:"description"`
	IsAvailable bool           `json:"is_available"`
	SortOrder   int32          `json:"sort_order"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type Order struct {
	ID               uuid.UUID          `json:"id"`
	BusinessDate     pgtype.Date        `json:"business_date"`
	OrderNumber      string             `json:"order_number"`
	OrderType        OrderType          `json:"order_type"`
	Meal             Meal               `json:"meal"`
	Status           OrderStatus        `json:"status"`
	TableNumber      pgtype.Text        `json:"table_number"`
	CustomerName     pgtype.Text        `json:"customer_name"`
	CustomerPhone    pgtype.Text        `json:"customer_phone"`
	DeliveryAddress  pgtype.Text        `json:"delivery_address"`
	DeliveryPersonID pgtype.UUID        `json:"delivery_person_id"`
	Notes            pgtype.Text        `json:"notes"`
	Subtotal         pgtype.Numeric     `json:"subtotal"`
	DeliveryFee      pgtype.Numeric     `json:"delivery_fee"`
	TotalAmount      pgtype.Numeric     `json:"total_amount"`
	CreatedBy        uuid.UUID          `json:"created_by"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	CompletedAt      pgtype.Timestamptz `json:"completed_at"`
}

type OrderItem struct {
	ID         uuid.UUID      `json:"id"`
	OrderID    uuid.UUID      `json:"order_id"`
	MenuItemID uuid.UUID      `json:"menu_item_id"`
	Name       string         `json:"name"`
	Category   MenuCategory   `json:"category"`
	Quantity   int32          `json:"quantity"`
	UnitPrice  pgtype.Numeric `json:"unit_price"`
	Subtotal   pgtype.Numeric `json:"subtotal"`
	Notes      pgtype.Text    `json:"notes"`
	CreatedAt  time.Time      `json:"created_at"`
}

type OrderItemAddition struct {
	ID          uuid.UUID      `json:"id"`
	OrderItemID uuid.UUID      `json:"order_item_id"`
	MenuItemID  uuid.UUID      `json:"menu_item_id"`
	Name        string         `json:"name"`
	Quantity    int32          `json:"quantity"`
	UnitPrice   pgtype.Numeric `json:"unit_price"`
}

type Payment struct {
	ID              uuid.UUID      `json:"id"`
	OrderID         uuid.UUID      `json:"order_id"`
	PaymentMethod   PaymentMethod  `json:"payment_method"`
	Amount          pgtype.Numeric `json:"amount"`
	AmountReceived  pgtype.Numeric `json:"amount_received"`
	ChangeAmount    pgtype.Numeric `json:"change_amount"`
	ReferenceNumber pgtype.Text    `json:"reference_number"`
	ProcessedBy     uuid.UUID      `json:"processed_by"`
	ProcessedAt     time.Time      `json:"processed_at"`
}

type Task struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	Description pgtype.Text        `json:"description"`
	AssigneeID  uuid.UUID          `json:"assignee_id"`
	Status      TaskStatus         `json:"status"`
	Priority    TaskPriority       `json:"priority"`
	DueDate     pgtype.Date        `json:"due_date"`
	CreatedBy   uuid.UUID          `json:"created_by"`
	CompletedAt pgtype.Timestamptz `json:"completed_at"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type User struct {
	ID             uuid.UUID   `json:"id"`
	Email          string      `json:"email"`
	HashedPassword string      `json:"hashed_password"`
	FullName       string      `json:"full_name"`
	Role           string      `json:"role"`
	Phone          pgtype.Text `json:"phone"`
	IsActive       bool        `json:"is_active"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
