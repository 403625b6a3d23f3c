package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, name, category, meal, price, description, is_available, sort_order, is_active, created_at, updated_at`

func scanMenuItem(row interface{ Scan(dest ...any) error }) (MenuItem, error) {
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Category,
		&i.Meal,
		&i.Price,
		&i.Description,
		&i.IsAvailable,
		&i.SortOrder,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createMenuItem = `-- name: CreateMenuItem :one
INSERT INTO menu_items (name, category, meal, price, description, is_available, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + menuItemColumns

type CreateMenuItemParams struct {
	Name        string         `json:"name"`
	Category    MenuCategory   `json:"category"`
	Meal        Meal           `json:"meal"`
	Price       pgtype.Numeric `json:"price"`
	Description pgtype.Text    `json:"description"`
	IsAvailable bool           `json:"is_available"`
	SortOrder   int32          `json:"sort_order"`
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.Name,
		arg.Category,
		arg.Meal,
		arg.Price,
		arg.Description,
		arg.IsAvailable,
		arg.SortOrder,
	)
	return scanMenuItem(row)
}

const getMenuItem = `-- name: GetMenuItem :one
SELECT ` + menuItemColumns + ` FROM menu_items
WHERE id = $1 AND is_active = true`

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	row := q.db.QueryRow(ctx, getMenuItem, id)
	return scanMenuItem(row)
}

const listMenuItems = `-- name: ListMenuItems :many
SELECT ` + menuItemColumns + ` FROM menu_items
WHERE is_active = true
  AND ($1::text IS NULL OR category = $1)
  AND ($2::text IS NULL OR meal = $2 OR meal = 'ALL_DAY')
  AND (NOT $3::boolean OR is_available = true)
ORDER BY category, sort_order, name`

type ListMenuItemsParams struct {
	Category      NullMenuCategory `json:"category"`
	Meal          NullMeal         `json:"meal"`
	AvailableOnly bool             `json:"available_only"`
}

// ListMenuItems returns the active catalog. A meal filter also matches ALL_DAY items.
func (q *Queries) ListMenuItems(ctx context.Context, arg ListMenuItemsParams) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems, arg.Category, arg.Meal, arg.AvailableOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MenuItem{}
	for rows.Next() {
		i, err := scanMenuItem(rows)
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

const updateMenuItem = `-- name: UpdateMenuItem :one
UPDATE menu_items
SET name = $2,
    category = $3,
    meal = $4,
    price = $5,
    description = $6,
    sort_order = $7,
    updated_at = now()
WHERE id = $1 AND is_active = true
RETURNING ` + menuItemColumns

type UpdateMenuItemParams struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Category    MenuCategory   `json:"category"`
	Meal        Meal           `json:"meal"`
	Price       pgtype.Numeric `json:"price"`
	Description pgtype.Text    `json:"description"`
	SortOrder   int32          `json:"sort_order"`
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem,
		arg.ID,
		arg.Name,
		arg.Category,
		arg.Meal,
		arg.Price,
		arg.Description,
		arg.SortOrder,
	)
	return scanMenuItem(row)
}

const setMenuItemAvailability = `-- name: SetMenuItemAvailability :one
UPDATE menu_items SET is_available = $2, updated_at = now()
WHERE id = $1 AND is_active = true
RETURNING ` + menuItemColumns

type SetMenuItemAvailabilityParams struct {
	ID          uuid.UUID `json:"id"`
	IsAvailable bool      `json:"is_available"`
}

func (q *Queries) SetMenuItemAvailability(ctx context.Context, arg SetMenuItemAvailabilityParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, setMenuItemAvailability, arg.ID, arg.IsAvailable)
	return scanMenuItem(row)
}

const softDeleteMenuItem = `-- name: SoftDeleteMenuItem :one
UPDATE menu_items SET is_active = false, updated_at = now()
WHERE id = $1 AND is_active = true
RETURNING id`

func (q *Queries) SoftDeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, softDeleteMenuItem, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}
