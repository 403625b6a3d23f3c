package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listDashboardOrders = `-- name: ListDashboardOrders :many
SELECT o.id, o.business_date, o.order_type, o.meal, o.status,
       o.delivery_person_id, u.full_name AS delivery_person_name,
       o.delivery_fee, o.total_amount
FROM orders o
LEFT JOIN users u ON u.id = o.delivery_person_id
WHERE o.business_date >= $1 AND o.business_date <= $2
ORDER BY o.business_date, o.created_at`

type ListDashboardOrdersParams struct {
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
}

type ListDashboardOrdersRow struct {
	ID                 uuid.UUID      `json:"id"`
	BusinessDate       pgtype.Date    `json:"business_date"`
	OrderType          OrderType      `json:"order_type"`
	Meal               Meal           `json:"meal"`
	Status             OrderStatus    `json:"status"`
	DeliveryPersonID   pgtype.UUID    `json:"delivery_person_id"`
	DeliveryPersonName pgtype.Text    `json:"delivery_person_name"`
	DeliveryFee        pgtype.Numeric `json:"delivery_fee"`
	TotalAmount        pgtype.Numeric `json:"total_amount"`
}

// ListDashboardOrders returns every order (cancelled included) whose business
// date falls in [StartDate, EndDate].
func (q *Queries) ListDashboardOrders(ctx context.Context, arg ListDashboardOrdersParams) ([]ListDashboardOrdersRow, error) {
	rows, err := q.db.Query(ctx, listDashboardOrders, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListDashboardOrdersRow{}
	for rows.Next() {
		var i ListDashboardOrdersRow
		if err := rows.Scan(
			&i.ID,
			&i.BusinessDate,
			&i.OrderType,
			&i.Meal,
			&i.Status,
			&i.DeliveryPersonID,
			&i.DeliveryPersonName,
			&i.DeliveryFee,
			&i.TotalAmount,
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

const listDashboardPayments = `-- name: ListDashboardPayments :many
SELECT p.order_id, p.payment_method, p.amount
FROM payments p
JOIN orders o ON o.id = p.order_id
WHERE o.business_date >= $1 AND o.business_date <= $2
  AND o.status <> 'CANCELLED'`

type ListDashboardPaymentsParams struct {
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
}

type ListDashboardPaymentsRow struct {
	OrderID       uuid.UUID      `json:"order_id"`
	PaymentMethod PaymentMethod  `json:"payment_method"`
	Amount        pgtype.Numeric `json:"amount"`
}

func (q *Queries) ListDashboardPayments(ctx context.Context, arg ListDashboardPaymentsParams) ([]ListDashboardPaymentsRow, error) {
	rows, err := q.db.Query(ctx, listDashboardPayments, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListDashboardPaymentsRow{}
	for rows.Next() {
		var i ListDashboardPaymentsRow
		if err := rows.Scan(&i.OrderID, &i.PaymentMethod, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTopMenuItems = `-- name: GetTopMenuItems :many
SELECT oi.menu_item_id, oi.name,
       SUM(oi.quantity)::bigint AS quantity_sold,
       SUM(oi.subtotal)::numeric(12,2) AS revenue
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.business_date >= $1 AND o.business_date <= $2
  AND o.status <> 'CANCELLED'
GROUP BY oi.menu_item_id, oi.name
ORDER BY quantity_sold DESC, revenue DESC
LIMIT $3`

type GetTopMenuItemsParams struct {
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
	Limit     int32       `json:"limit"`
}

type GetTopMenuItemsRow struct {
	MenuItemID   uuid.UUID      `json:"menu_item_id"`
	Name         string         `json:"name"`
	QuantitySold int64          `json:"quantity_sold"`
	Revenue      pgtype.Numeric `json:"revenue"`
}

func (q *Queries) GetTopMenuItems(ctx context.Context, arg GetTopMenuItemsParams) ([]GetTopMenuItemsRow, error) {
	rows, err := q.db.Query(ctx, getTopMenuItems, arg.StartDate, arg.EndDate, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetTopMenuItemsRow{}
	for rows.Next() {
		var i GetTopMenuItemsRow
		if err := rows.Scan(&i.MenuItemID, &i.Name, &i.QuantitySold, &i.Revenue); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
