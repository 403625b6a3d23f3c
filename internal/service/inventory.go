package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/comedor-pos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Errors returned by the inventory service.
var (
	ErrInvalidMovementKind     = errors.New("kind must be IN, OUT or ADJUST")
	ErrInvalidMovementQuantity = errors.New("invalid quantity")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrInventoryItemNotFound   = errors.New("inventory item not found")
)

// InventoryStore defines the DB methods needed to apply stock movements.
// Satisfied by *database.Queries.
type InventoryStore interface {
	GetInventoryItemForUpdate(ctx context.Context, id uuid.UUID) (database.InventoryItem, error)
	SetInventoryQuantity(ctx context.Context, arg database.SetInventoryQuantityParams) (database.InventoryItem, error)
	CreateInventoryMovement(ctx context.Context, arg database.CreateInventoryMovementParams) (database.InventoryMovement, error)
}

type NewInventoryStore func(db database.DBTX) InventoryStore

type MovementRequest struct {
	ItemID    uuid.UUID
	Kind      string
	Quantity  string
	Reason    string
	CreatedBy uuid.UUID
}

type MovementResult struct {
	Item     database.InventoryItem
	Movement database.InventoryMovement
	LowStock bool
}

type InventoryService struct {
	pool     TxBeginner
	newStore NewInventoryStore
}

func NewInventoryService(pool TxBeginner, newStore NewInventoryStore) *InventoryService {
	return &InventoryService{pool: pool, newStore: newStore}
}

// Apply locks the item row, computes the new count and records the movement
// with its signed delta, all in one transaction.
func (s *InventoryService) Apply(ctx context.Context, req MovementRequest) (*MovementResult, error) {
	kind := database.MovementKind(req.Kind)
	switch kind {
	case database.MovementKindIN, database.MovementKindOUT, database.MovementKindADJUST:
	default:
		return nil, ErrInvalidMovementKind
	}

	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil || !qty.Equal(qty.Truncate(3)) {
		return nil, ErrInvalidMovementQuantity
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	item, err := store.GetInventoryItemForUpdate(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInventoryItemNotFound
		}
		return nil, fmt.Errorf("lock inventory item: %w", err)
	}

	next, delta, err := nextQuantity(kind, numericToDecimal(item.Quantity), qty)
	if err != nil {
		return nil, err
	}

	updated, err := store.SetInventoryQuantity(ctx, database.SetInventoryQuantityParams{
		ID:       item.ID,
		Quantity: quantityToNumeric(next),
	})
	if err != nil {
		return nil, fmt.Errorf("set inventory quantity: %w", err)
	}

	movement, err := store.CreateInventoryMovement(ctx, database.CreateInventoryMovementParams{
		ItemID:    item.ID,
		Kind:      kind,
		Quantity:  quantityToNumeric(delta),
		Reason:    optionalText(req.Reason),
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create inventory movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &MovementResult{
		Item:     updated,
		Movement: movement,
		LowStock: IsLowStock(updated),
	}, nil
}

// nextQuantity returns the resulting count and the signed change.
// IN and OUT take a positive amount; ADJUST takes the absolute count.
func nextQuantity(kind database.MovementKind, current, qty decimal.Decimal) (next, delta decimal.Decimal, err error) {
	switch kind {
	case database.MovementKindIN:
		if !qty.IsPositive() {
			return current, decimal.Zero, ErrInvalidMovementQuantity
		}
		return current.Add(qty), qty, nil
	case database.MovementKindOUT:
		if !qty.IsPositive() {
			return current, decimal.Zero, ErrInvalidMovementQuantity
		}
		next = current.Sub(qty)
		if next.IsNegative() {
			return current, decimal.Zero, ErrInsufficientStock
		}
		return next, qty.Neg(), nil
	case database.MovementKindADJUST:
		if qty.IsNegative() {
			return current, decimal.Zero, ErrInvalidMovementQuantity
		}
		return qty, qty.Sub(current), nil
	}
	return current, decimal.Zero, ErrInvalidMovementKind
}

// IsLowStock reports whether the item is at or below its minimum.
func IsLowStock(item database.InventoryItem) bool {
	return numericToDecimal(item.Quantity).LessThanOrEqual(numericToDecimal(item.MinQuantity))
}
