package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/comedor-pos/api/internal/database"
	"github.com/comedor-pos/api/internal/enum"
	"github.com/comedor-pos/api/internal/events"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenuItems(ctx context.Context, arg database.ListMenuItemsParams) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	SetMenuItemAvailability(ctx context.Context, arg database.SetMenuItemAvailabilityParams) (database.MenuItem, error)
	SoftDeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// MenuHandler handles menu catalog endpoints.
type MenuHandler struct {
	store MenuStore
	pub   events.Publisher
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore, pub events.Publisher) *MenuHandler {
	return &MenuHandler{store: store, pub: pub}
}

// RegisterReadRoutes registers the menu endpoints every role may call.
func (h *MenuHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterWriteRoutes registers the ADMIN-only menu endpoints.
func (h *MenuHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/availability", h.SetAvailability)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type menuItemRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Meal        string `json:"meal"`
	Price       string `json:"price"`
	Description string `json:"description"`
	IsAvailable *bool  `json:"is_available"`
	SortOrder   int32  `json:"sort_order"`
}

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

type menuItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Meal        string    `json:"meal"`
	Price       string    `json:"price"`
	Description *string   `json:"description"`
	IsAvailable bool      `json:"is_available"`
	SortOrder   int32     `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type menuEventPayload struct {
	Action string           `json:"action"`
	Item   menuItemResponse `json:"item"`
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          m.ID,
		Name:        m.Name,
		Category:    string(m.Category),
		Meal:        string(m.Meal),
		Price:       numericToString(m.Price),
		Description: textPtr(m.Description),
		IsAvailable: m.IsAvailable,
		SortOrder:   m.SortOrder,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// --- Handlers ---

// List returns active menu items. Filters: category, meal, available=true.
// A meal filter also matches ALL_DAY items.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := database.ListMenuItemsParams{AvailableOnly: q.Get("available") == "true"}

	if s := q.Get("category"); s != "" {
		if !isValidMenuCategory(s) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
			return
		}
		params.Category = database.NullMenuCategory{MenuCategory: database.MenuCategory(s), Valid: true}
	}
	if s := q.Get("meal"); s != "" {
		if !isValidMenuMeal(s) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid meal"})
			return
		}
		params.Meal = database.NullMeal{Meal: database.Meal(s), Valid: true}
	}

	items, err := h.store.ListMenuItems(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toMenuItemResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single active menu item.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: get menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Create adds a menu item. Items are available unless is_available=false.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, msg := validateMenuItemRequest(&req)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		Name:        req.Name,
		Category:    database.MenuCategory(req.Category),
		Meal:        database.Meal(req.Meal),
		Price:       price,
		Description: optionalText(req.Description),
		IsAvailable: available,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toMenuItemResponse(item)
	publish(r.Context(), h.pub, enum.TopicMenu, enum.EventMenuUpdated, menuEventPayload{Action: "created", Item: resp})
	writeJSON(w, http.StatusCreated, resp)
}

// Update replaces a menu item's editable fields. Availability has its own endpoint.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, msg := validateMenuItemRequest(&req)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:          id,
		Name:        req.Name,
		Category:    database.MenuCategory(req.Category),
		Meal:        database.Meal(req.Meal),
		Price:       price,
		Description: optionalText(req.Description),
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toMenuItemResponse(item)
	publish(r.Context(), h.pub, enum.TopicMenu, enum.EventMenuUpdated, menuEventPayload{Action: "updated", Item: resp})
	writeJSON(w, http.StatusOK, resp)
}

// SetAvailability toggles whether an item can be ordered (e.g. sold out).
func (h *MenuHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.IsAvailable == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "is_available is required"})
		return
	}

	item, err := h.store.SetMenuItemAvailability(r.Context(), database.SetMenuItemAvailabilityParams{
		ID:          id,
		IsAvailable: *req.IsAvailable,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: set menu item availability: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toMenuItemResponse(item)
	publish(r.Context(), h.pub, enum.TopicMenu, enum.EventMenuUpdated, menuEventPayload{Action: "availability", Item: resp})
	writeJSON(w, http.StatusOK, resp)
}

// Delete soft-deletes a menu item. Past orders keep their snapshot.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	if _, err := h.store.SoftDeleteMenuItem(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	publish(r.Context(), h.pub, enum.TopicMenu, enum.EventMenuUpdated, map[string]string{"action": "deleted", "id": id.String()})
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// validateMenuItemRequest normalizes req in place and returns the parsed
// price, or a client-facing error message.
func validateMenuItemRequest(req *menuItemRequest) (pgtype.Numeric, string) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Category == "" || req.Meal == "" || req.Price == "" {
		return pgtype.Numeric{}, "name, category, meal, and price are required"
	}
	if !isValidMenuCategory(req.Category) {
		return pgtype.Numeric{}, "invalid category"
	}
	if !isValidMenuMeal(req.Meal) {
		return pgtype.Numeric{}, "invalid meal"
	}

	d, err := decimal.NewFromString(req.Price)
	if err != nil {
		return pgtype.Numeric{}, "invalid price"
	}
	if d.IsNegative() {
		return pgtype.Numeric{}, "price must not be negative"
	}
	if !fitsPlaces(d, moneyPlaces) {
		return pgtype.Numeric{}, "price must have at most 2 decimals"
	}
	return decimalToNumeric(d), ""
}

func isValidMenuCategory(s string) bool {
	switch database.MenuCategory(s) {
	case database.MenuCategoryDISH, database.MenuCategoryDRINK, database.MenuCategoryADDITION:
		return true
	}
	return false
}

func isValidMenuMeal(s string) bool {
	switch database.Meal(s) {
	case database.MealBREAKFAST, database.MealLUNCH, database.MealALLDAY:
		return true
	}
	return false
}
