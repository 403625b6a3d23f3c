package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createPayment = `-- name: CreatePayment :one
INSERT INTO payments (order_id, payment_method, amount, amount_received, change_amount, reference_number, processed_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, order_id, payment_method, amount, amount_received, change_amount, reference_number, processed_by, processed_at`

type CreatePaymentParams struct {
	OrderID         uuid.UUID      `json:"order_id"`
	PaymentMethod   PaymentMethod  `json:"payment_method"`
	Amount          pgtype.Numeric `json:"amount"`
	AmountReceived  pgtype.Numeric `json:"amount_received"`
	ChangeAmount    pgtype.Numeric `json:"change_amount"`
	ReferenceNumber pgtype.Text    `json:"reference_number"`
	ProcessedBy     uuid.UUID      `json:"processed_by"`
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	row := q.db.QueryRow(ctx, createPayment,
		arg.OrderID,
		arg.PaymentMethod,
		arg.Amount,
		arg.AmountReceived,
		arg.ChangeAmount,
		arg.ReferenceNumber,
		arg.ProcessedBy,
	)
	var i Payment
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.PaymentMethod,
		&i.Amount,
		&i.AmountReceived,
		&i.ChangeAmount,
		&i.ReferenceNumber,
		&i.ProcessedBy,
		&i.ProcessedAt,
	)
	return i, err
}

const listPaymentsByOrder = `-- name: ListPaymentsByOrder :many
SELECT id, order_id, payment_method, amount, amount_received, change_amount, reference_number, processed_by, processed_at
FROM payments
WHERE order_id = $1
ORDER BY processed_at`

func (q *Queries) ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]Payment, error) {
	rows, err := q.db.Query(ctx, listPaymentsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Payment{}
	for rows.Next() {
		var i Payment
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.PaymentMethod,
			&i.Amount,
			&i.AmountReceived,
			&i.ChangeAmount,
			&i.ReferenceNumber,
			&i.ProcessedBy,
			&i.ProcessedAt,
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

const sumPaymentsByOrder = `-- name: SumPaymentsByOrder :one
SELECT COALESCE(SUM(amount), 0)::numeric(12,2) AS total_paid
FROM payments
WHERE order_id = $1`

func (q *Queries) SumPaymentsByOrder(ctx context.Context, orderID uuid.UUID) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumPaymentsByOrder, orderID)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}
