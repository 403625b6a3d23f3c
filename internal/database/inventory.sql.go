package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const inventoryItemColumns = `id, name, unit, quantity, min_quantity, created_at, updated_at`

func scanInventoryItem(row interface{ Scan(dest ...any) error }) (InventoryItem, error) {
	var i InventoryItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Unit,
		&i.Quantity,
		&i.MinQuantity,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createInventoryItem = `-- name: CreateInventoryItem :one
INSERT INTO inventory_items (name, unit, quantity, min_quantity)
VALUES ($1, $2, $3, $4)
RETURNING ` + inventoryItemColumns

type CreateInventoryItemParams struct {
	Name        string         `json:"name"`
	Unit        string         `json:"unit"`
	Quantity    pgtype.Numeric `json:"quantity"`
	MinQuantity pgtype.Numeric `json:"min_quantity"`
}

func (q *Queries) CreateInventoryItem(ctx context.Context, arg CreateInventoryItemParams) (InventoryItem, error) {
	row := q.db.QueryRow(ctx, createInventoryItem, arg.Name, arg.Unit, arg.Quantity, arg.MinQuantity)
	return scanInventoryItem(row)
}

const getInventoryItem = `-- name: GetInventoryItem :one
SELECT ` + inventoryItemColumns + ` FROM inventory_items
WHERE id = $1`

func (q *Queries) GetInventoryItem(ctx context.Context, id uuid.UUID) (InventoryItem, error) {
	row := q.db.QueryRow(ctx, getInventoryItem, id)
	return scanInventoryItem(row)
}

const getInventoryItemForUpdate = `-- name: GetInventoryItemForUpdate :one
SELECT ` + inventoryItemColumns + ` FROM inventory_items
WHERE id = $1
FOR UPDATE`

func (q *Queries) GetInventoryItemForUpdate(ctx context.Context, id uuid.UUID) (InventoryItem, error) {
	row := q.db.QueryRow(ctx, getInventoryItemForUpdate, id)
	return scanInventoryItem(row)
}

const listInventoryItems = `-- name: ListInventoryItems :many
SELECT ` + inventoryItemColumns + ` FROM inventory_items
WHERE (NOT $1::boolean OR quantity <= min_quantity)
ORDER BY name`

func (q *Queries) ListInventoryItems(ctx context.Context, lowStockOnly bool) ([]InventoryItem, error) {
	rows, err := q.db.Query(ctx, listInventoryItems, lowStockOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []InventoryItem{}
	for rows.Next() {
		i, err := scanInventoryItem(rows)
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

const updateInventoryItem = `-- name: UpdateInventoryItem :one
UPDATE inventory_items
SET name = $2, unit = $3, min_quantity = $4, updated_at = now()
WHERE id = $1
RETURNING ` + inventoryItemColumns

type UpdateInventoryItemParams struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Unit        string         `json:"unit"`
	MinQuantity pgtype.Numeric `json:"min_quantity"`
}

func (q *Queries) UpdateInventoryItem(ctx context.Context, arg UpdateInventoryItemParams) (InventoryItem, error) {
	row := q.db.QueryRow(ctx, updateInventoryItem, arg.ID, arg.Name, arg.Unit, arg.MinQuantity)
	return scanInventoryItem(row)
}

const setInventoryQuantity = `-- name: SetInventoryQuantity :one
UPDATE inventory_items SET quantity = $2, updated_at = now()
WHERE id = $1
RETURNING ` + inventoryItemColumns

type SetInventoryQuantityParams struct {
	ID       uuid.UUID      `json:"id"`
	Quantity pgtype.Numeric `json:"quantity"`
}

func (q *Queries) SetInventoryQuantity(ctx context.Context, arg SetInventoryQuantityParams) (InventoryItem, error) {
	row := q.db.QueryRow(ctx, setInventoryQuantity, arg.ID, arg.Quantity)
	return scanInventoryItem(row)
}

const deleteInventoryItem = `-- name: DeleteInventoryItem :one
DELETE FROM inventory_items WHERE id = $1
RETURNING id`

func (q *Queries) DeleteInventoryItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteInventoryItem, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}

const createInventoryMovement = `-- name: CreateInventoryMovement :one
INSERT INTO inventory_movements (item_id, kind, quantity, reason, created_by)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, item_id, kind, quantity, reason, created_by, created_at`

type CreateInventoryMovementParams struct {
	ItemID    uuid.UUID      `json:"item_id"`
	Kind      MovementKind   `json:"kind"`
	Quantity  pgtype.Numeric `json:"quantity"`
	Reason    pgtype.Text    `json:"reason"`
	CreatedBy uuid.UUID      `json:"created_by"`
}

func (q *Queries) CreateInventoryMovement(ctx context.Context, arg CreateInventoryMovementParams) (InventoryMovement, error) {
	row := q.db.QueryRow(ctx, createInventoryMovement,
		arg.ItemID,
		arg.Kind,
		arg.Quantity,
		arg.Reason,
		arg.CreatedBy,
	)
	var i InventoryMovement
	err := row.Scan(
		&i.ID,
		&i.ItemID,
		&i.Kind,
		&i.Quantity,
		&i.Reason,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const listInventoryMovements = `-- name: ListInventoryMovements :many
SELECT id, item_id, kind, quantity, reason, created_by, created_at
FROM inventory_movements
WHERE item_id = $1
ORDER BY created_at DESC
LIMIT $2`

type ListInventoryMovementsParams struct {
	ItemID uuid.UUID `json:"item_id"`
	Limit  int32     `json:"limit"`
}

func (q *Queries) ListInventoryMovements(ctx context.Context, arg ListInventoryMovementsParams) ([]InventoryMovement, error) {
	rows, err := q.db.Query(ctx, listInventoryMovements, arg.ItemID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []InventoryMovement{}
	for rows.Next() {
		var i InventoryMovement
		if err := rows.Scan(
			&i.ID,
			&i.ItemID,
			&i.Kind,
			&i.Quantity,
			&i.Reason,
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
