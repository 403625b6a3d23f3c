package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createExpense = `-- name: CreateExpense :one
INSERT INTO expenses (expense_date, category, description, amount, payment_method, created_by)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, expense_date, category, description, amount, payment_method, created_by, created_at`

type CreateExpenseParams struct {
	ExpenseDate   pgtype.Date       `json:"expense_date"`
	Category      ExpenseCategory   `json:"category"`
	Description   string            `json:"description"`
	Amount        pgtype.Numeric    `json:"amount"`
	PaymentMethod NullPaymentMethod `json:"payment_method"`
	CreatedBy     uuid.UUID         `json:"created_by"`
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRow(ctx, createExpense,
		arg.ExpenseDate,
		arg.Category,
		arg.Description,
		arg.Amount,
		arg.PaymentMethod,
		arg.CreatedBy,
	)
	var i Expense
	err := row.Scan(
		&i.ID,
		&i.ExpenseDate,
		&i.Category,
		&i.Description,
		&i.Amount,
		&i.PaymentMethod,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const listExpenses = `-- name: ListExpenses :many
SELECT id, expense_date, category, description, amount, payment_method, created_by, created_at
FROM expenses
WHERE expense_date >= $1 AND expense_date <= $2
ORDER BY expense_date DESC, created_at DESC`

type ListExpensesParams struct {
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
}

// ListExpenses returns expenses dated within [StartDate, EndDate], both inclusive.
func (q *Queries) ListExpenses(ctx context.Context, arg ListExpensesParams) ([]Expense, error) {
	rows, err := q.db.Query(ctx, listExpenses, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Expense{}
	for rows.Next() {
		var i Expense
		if err := rows.Scan(
			&i.ID,
			&i.ExpenseDate,
			&i.Category,
			&i.Description,
			&i.Amount,
			&i.PaymentMethod,
			&i.CreatedBy,
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

const deleteExpense = `-- name: DeleteExpense :one
DELETE FROM expenses WHERE id = $1
RETURNING id`

func (q *Queries) DeleteExpense(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteExpense, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}
