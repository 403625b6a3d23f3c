package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/comedor-pos/api/internal/database"
	"github.com/comedor-pos/api/internal/enum"
	"github.com/comedor-pos/api/internal/events"
	"github.com/comedor-pos/api/internal/middleware"
	"github.com/comedor-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const defaultMovementLimit = 50

// InventoryStore defines the database methods needed by inventory handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type InventoryStore interface {
	ListInventoryItems(ctx context.Context, lowStockOnly bool) ([]database.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id uuid.UUID) (database.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, arg database.CreateInventoryItemParams) (database.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, arg database.UpdateInventoryItemParams) (database.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	ListInventoryMovements(ctx context.Context, arg database.ListInventoryMovementsParams) ([]database.InventoryMovement, error)
}

// InventoryServicer applies stock movements.
// Satisfied by *service.InventoryService.
type InventoryServicer interface {
	Apply(ctx context.Context, req service.MovementRequest) (*service.MovementResult, error)
}

// InventoryHandler handles stock endpoints.
type InventoryHandler struct {
	store InventoryStore
	svc   InventoryServicer
	pub   events.Publisher
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(store InventoryStore, svc InventoryServicer, pub events.Publisher) *InventoryHandler {
	return &InventoryHandler{store: store, svc: svc, pub: pub}
}

// RegisterReadRoutes registers the endpoints kitchen staff may use.
func (h *InventoryHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/movements", h.ListMovements)
	r.Post("/{id}/movements", h.AddMovement)
}

// RegisterWriteRoutes registers the ADMIN-only item management endpoints.
func (h *InventoryHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type inventoryItemRequest struct {
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	Quantity    string `json:"quantity"`
	MinQuantity string `json:"min_quantity"`
}

type movementRequest struct {
	Kind     string `json:"kind"`
	Quantity string `json:"quantity"`
	Reason   string `json:"reason"`
}

type inventoryItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Unit        string    `json:"unit"`
	Quantity    string    `json:"quantity"`
	MinQuantity string    `json:"min_quantity"`
	LowStock    bool      `json:"low_stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type movementResponse struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	Kind      string    `json:"kind"`
	Quantity  string    `json:"quantity"`
	Reason    *string   `json:"reason"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type movementResultResponse struct {
	Item     inventoryItemResponse `json:"item"`
	Movement movementResponse      `json:"movement"`
}

func toInventoryItemResponse(i database.InventoryItem) inventoryItemResponse {
	return inventoryItemResponse{
		ID:          i.ID,
		Name:        i.Name,
		Unit:        i.Unit,
		Quantity:    quantityToString(i.Quantity),
		MinQuantity: quantityToString(i.MinQuantity),
		LowStock:    service.IsLowStock(i),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func toMovementResponse(m database.InventoryMovement) movementResponse {
	return movementResponse{
		ID:        m.ID,
		ItemID:    m.ItemID,
		Kind:      string(m.Kind),
		Quantity:  quantityToString(m.Quantity),
		Reason:    textPtr(m.Reason),
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}

// --- Handlers ---

// List returns all stock items, or only those at or below their minimum with low_stock=true.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListInventoryItems(r.Context(), r.URL.Query().Get("low_stock") == "true")
	if err != nil {
		log.Printf("ERROR: list inventory items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]inventoryItemResponse, len(items))
	for i, it := range items {
		resp[i] = toInventoryItemResponse(it)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns one stock item.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid inventory item ID"})
		return
	}

	item, err := h.store.GetInventoryItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "inventory item not found"})
			return
		}
		log.Printf("ERROR: get inventory item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toInventoryItemResponse(item))
}

// Create adds a stock item with its opening count.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req inventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	if req.Name == "" || req.Unit == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and unit are required"})
		return
	}

	qty, err := parseQuantity(req.Quantity)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
		return
	}
	minQty, err := parseQuantity(req.MinQuantity)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid min_quantity"})
		return
	}

	item, err := h.store.CreateInventoryItem(r.Context(), database.CreateInventoryItemParams{
		Name:        req.Name,
		Unit:        req.Unit,
		Quantity:    quantityToNumeric(qty),
		MinQuantity: quantityToNumeric(minQty),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "inventory item name already exists"})
			return
		}
		log.Printf("ERROR: create inventory item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toInventoryItemResponse(item)
	h.publishItem(r.Context(), resp)
	writeJSON(w, http.StatusCreated, resp)
}

// Update changes name, unit and minimum. Counts only move through movements.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid inventory item ID"})
		return
	}

	var req inventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	if req.Name == "" || req.Unit == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and unit are required"})
		return
	}
	minQty, err := parseQuantity(req.MinQuantity)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid min_quantity"})
		return
	}

	item, err := h.store.UpdateInventoryItem(r.Context(), database.UpdateInventoryItemParams{
		ID:          id,
		Name:        req.Name,
		Unit:        req.Unit,
		MinQuantity: quantityToNumeric(minQty),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "inventory item not found"})
			return
		}
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "inventory item name already exists"})
			return
		}
		log.Printf("ERROR: update inventory item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toInventoryItemResponse(item)
	h.publishItem(r.Context(), resp)
	writeJSON(w, http.StatusOK, resp)
}

// Delete removes a stock item and its movement history.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid inventory item ID"})
		return
	}

	if _, err := h.store.DeleteInventoryItem(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "inventory item not found"})
			return
		}
		log.Printf("ERROR: delete inventory item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	publish(r.Context(), h.pub, enum.TopicInventory, enum.EventInventoryUpdated, map[string]string{"action": "deleted", "id": id.String()})
	w.WriteHeader(http.StatusNoContent)
}

// AddMovement handles POST /inventory/{id}/movements.
func (h *InventoryHandler) AddMovement(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid inventory item ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.Apply(r.Context(), service.MovementRequest{
		ItemID:    id,
		Kind:      req.Kind,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		CreatedBy: claims.UserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMovementKind), errors.Is(err, service.ErrInvalidMovementQuantity):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrInventoryItemNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrInsufficientStock):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: apply inventory movement: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := movementResultResponse{
		Item:     toInventoryItemResponse(result.Item),
		Movement: toMovementResponse(result.Movement),
	}
	publish(r.Context(), h.pub, enum.TopicInventory, enum.EventInventoryUpdated, resp)
	if result.LowStock {
		publish(r.Context(), h.pub, enum.TopicInventory, enum.EventInventoryLowStock, resp.Item)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ListMovements returns the latest movements of an item, newest first.
func (h *InventoryHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid inventory item ID"})
		return
	}

	limit := defaultMovementLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}

	if _, err := h.store.GetInventoryItem(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "inventory item not found"})
			return
		}
		log.Printf("ERROR: get inventory item for movements: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	moves, err := h.store.ListInventoryMovements(r.Context(), database.ListInventoryMovementsParams{
		ItemID: id,
		Limit:  int32(limit),
	})
	if err != nil {
		log.Printf("ERROR: list inventory movements: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]movementResponse, len(moves))
	for i, m := range moves {
		resp[i] = toMovementResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *InventoryHandler) publishItem(ctx context.Context, item inventoryItemResponse) {
	publish(ctx, h.pub, enum.TopicInventory, enum.EventInventoryUpdated, map[string]interface{}{"item": item})
	if item.LowStock {
		publish(ctx, h.pub, enum.TopicInventory, enum.EventInventoryLowStock, item)
	}
}

// parseQuantity accepts an empty string as zero; negatives are rejected.
func parseQuantity(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("negative quantity")
	}
	if !fitsPlaces(d, quantityPlaces) {
		return decimal.Zero, errors.New("too many decimals")
	}
	return d, nil
}
