package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, business_date, order_number, order_type, meal, status, table_number,
    customer_name, customer_phone, delivery_address, delivery_person_id, notes,
    subtotal, delivery_fee, total_amount, created_by, created_at, updated_at, completed_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.BusinessDate,
		&i.OrderNumber,
		&i.OrderType,
		&i.Meal,
		&i.Status,
		&i.TableNumber,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.DeliveryAddress,
		&i.DeliveryPersonID,
		&i.Notes,
		&i.Subtotal,
		&i.DeliveryFee,
		&i.TotalAmount,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
	)
	return i, err
}

const getNextOrderNumber = `-- name: GetNextOrderNumber :one
SELECT (COALESCE(MAX(CAST(SUBSTRING(order_number FROM 5) AS INTEGER)), 0) + 1)::integer AS next_number
FROM orders
WHERE business_date = $1`

// GetNextOrderNumber returns the next sequence number for the business date.
// Order numbers look like ORD-001; the numeric suffix starts at offset 5.
func (q *Queries) GetNextOrderNumber(ctx context.Context, businessDate pgtype.Date) (int32, error) {
	row := q.db.QueryRow(ctx, getNextOrderNumber, businessDate)
	var next int32
	err := row.Scan(&next)
	return next, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (
    business_date, order_number, order_type, meal, table_number, customer_name,
    customer_phone, delivery_address, delivery_person_id, notes, subtotal,
    delivery_fee, total_amount, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	BusinessDate     pgtype.Date    `json:"business_date"`
	OrderNumber      string         `json:"order_number"`
	OrderType        OrderType      `json:"order_type"`
	Meal             Meal           `json:"meal"`
	TableNumber      pgtype.Text    `json:"table_number"`
	CustomerName     pgtype.Text    `json:"customer_name"`
	CustomerPhone    pgtype.Text    `json:"customer_phone"`
	DeliveryAddress  pgtype.Text    `json:"delivery_address"`
	DeliveryPersonID pgtype.UUID    `json:"delivery_person_id"`
	Notes            pgtype.Text    `json:"notes"`
	Subtotal         pgtype.Numeric `json:"subtotal"`
	DeliveryFee      pgtype.Numeric `json:"delivery_fee"`
	TotalAmount      pgtype.Numeric `json:"total_amount"`
	CreatedBy        uuid.UUID      `json:"created_by"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.BusinessDate,
		arg.OrderNumber,
		arg.OrderType,
		arg.Meal,
		arg.TableNumber,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.DeliveryAddress,
		arg.DeliveryPersonID,
		arg.Notes,
		arg.Subtotal,
		arg.DeliveryFee,
		arg.TotalAmount,
		arg.CreatedBy,
	)
	return scanOrder(row)
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (order_id, menu_item_id, name, category, quantity, unit_price, subtotal, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, order_id, menu_item_id, name, category, quantity, unit_price, subtotal, notes, created_at`

type CreateOrderItemParams struct {
	OrderID    uuid.UUID      `json:"order_id"`
	MenuItemID uuid.UUID      `json:"menu_item_id"`
	Name       string         `json:"name"`
	Category   MenuCategory   `json:"category"`
	Quantity   int32          `json:"quantity"`
	UnitPrice  pgtype.Numeric `json:"unit_price"`
	Subtotal   pgtype.Numeric `json:"subtotal"`
	Notes      pgtype.Text    `json:"notes"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.MenuItemID,
		arg.Name,
		arg.Category,
		arg.Quantity,
		arg.UnitPrice,
		arg.Subtotal,
		arg.Notes,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.MenuItemID,
		&i.Name,
		&i.Category,
		&i.Quantity,
		&i.UnitPrice,
		&i.Subtotal,
		&i.Notes,
		&i.CreatedAt,
	)
	return i, err
}

const createOrderItemAddition = `-- name: CreateOrderItemAddition :one
INSERT INTO order_item_additions (order_item_id, menu_item_id, name, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_item_id, menu_item_id, name, quantity, unit_price`

type CreateOrderItemAdditionParams struct {
	OrderItemID uuid.UUID      `json:"order_item_id"`
	MenuItemID  uuid.UUID      `json:"menu_item_id"`
	Name        string         `json:"name"`
	Quantity    int32          `json:"quantity"`
	UnitPrice   pgtype.Numeric `json:"unit_price"`
}

func (q *Queries) CreateOrderItemAddition(ctx context.Context, arg CreateOrderItemAdditionParams) (OrderItemAddition, error) {
	row := q.db.QueryRow(ctx, createOrderItemAddition,
		arg.OrderItemID,
		arg.MenuItemID,
		arg.Name,
		arg.Quantity,
		arg.UnitPrice,
	)
	var i OrderItemAddition
	err := row.Scan(
		&i.ID,
		&i.OrderItemID,
		&i.MenuItemID,
		&i.Name,
		&i.Quantity,
		&i.UnitPrice,
	)
	return i, err
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + ` FROM orders
WHERE id = $1`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	return scanOrder(row)
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT ` + orderColumns + ` FROM orders
WHERE id = $1
FOR NO KEY UPDATE`

func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderForUpdate, id)
	return scanOrder(row)
}

const listOrders = `-- name: ListOrders :many
SELECT ` + orderColumns + ` FROM orders
WHERE ($1::text IS NULL OR status = $1)
  AND ($2::text IS NULL OR order_type = $2)
  AND ($3::text IS NULL OR meal = $3)
  AND ($4::date IS NULL OR business_date = $4)
  AND ($5::uuid IS NULL OR delivery_person_id = $5)
ORDER BY created_at DESC
LIMIT $6 OFFSET $7`

type ListOrdersParams struct {
	Status           NullOrderStatus `json:"status"`
	OrderType        NullOrderType   `json:"order_type"`
	Meal             NullMeal        `json:"meal"`
	BusinessDate     pgtype.Date     `json:"business_date"`
	DeliveryPersonID pgtype.UUID     `json:"delivery_person_id"`
	Limit            int32           `json:"limit"`
	Offset           int32           `json:"offset"`
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.Status,
		arg.OrderType,
		arg.Meal,
		arg.BusinessDate,
		arg.DeliveryPersonID,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderItemsByOrder = `-- name: ListOrderItemsByOrder :many
SELECT id, order_id, menu_item_id, name, category, quantity, unit_price, subtotal, notes, created_at
FROM order_items
WHERE order_id = $1
ORDER BY created_at, id`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.MenuItemID,
			&i.Name,
			&i.Category,
			&i.Quantity,
			&i.UnitPrice,
			&i.Subtotal,
			&i.Notes,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderItemAdditionsByOrderItem = `-- name: ListOrderItemAdditionsByOrderItem :many
SELECT id, order_item_id, menu_item_id, name, quantity, unit_price
FROM order_item_additions
WHERE order_item_id = $1
ORDER BY name`

func (q *Queries) ListOrderItemAdditionsByOrderItem(ctx context.Context, orderItemID uuid.UUID) ([]OrderItemAddition, error) {
	rows, err := q.db.Query(ctx, listOrderItemAdditionsByOrderItem, orderItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItemAddition{}
	for rows.Next() {
		var i OrderItemAddition
		if err := rows.Scan(
			&i.ID,
			&i.OrderItemID,
			&i.MenuItemID,
			&i.Name,
			&i.Quantity,
			&i.UnitPrice,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID             uuid.UUID   `json:"id"`
	Status         OrderStatus `json:"status"`
	ExpectedStatus OrderStatus `json:"expected_status"`
}

// UpdateOrderStatus only matches when the row still has ExpectedStatus.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status, arg.ExpectedStatus)
	return scanOrder(row)
}

const assignDeliveryPerson = `-- name: AssignDeliveryPerson :one
UPDATE orders SET delivery_person_id = $2, updated_at = now()
WHERE id = $1
  AND order_type = 'DELIVERY'
  AND status NOT IN ('COMPLETED', 'CANCELLED')
RETURNING ` + orderColumns

type AssignDeliveryPersonParams struct {
	ID               uuid.UUID   `json:"id"`
	DeliveryPersonID pgtype.UUID `json:"delivery_person_id"`
}

func (q *Queries) AssignDeliveryPerson(ctx context.Context, arg AssignDeliveryPersonParams) (Order, error) {
	row := q.db.QueryRow(ctx, assignDeliveryPerson, arg.ID, arg.DeliveryPersonID)
	return scanOrder(row)
}

const cancelOrder = `-- name: CancelOrder :one
UPDATE orders SET status = 'CANCELLED', updated_at = now()
WHERE id = $1 AND status NOT IN ('COMPLETED', 'CANCELLED')
RETURNING ` + orderColumns

func (q *Queries) CancelOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, cancelOrder, id)
	return scanOrder(row)
}

const completeOrder = `-- name: CompleteOrder :one
UPDATE orders SET status = 'COMPLETED', completed_at = now(), updated_at = now()
WHERE id = $1 AND status <> 'CANCELLED'
RETURNING ` + orderColumns

func (q *Queries) CompleteOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, completeOrder, id)
	return scanOrder(row)
}
