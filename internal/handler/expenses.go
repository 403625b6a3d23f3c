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
	"github.com/comedor-pos/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ExpenseStore defines the database methods needed by expense handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, arg database.CreateExpenseParams) (database.Expense, error)
	ListExpenses(ctx context.Context, arg database.ListExpensesParams) ([]database.Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// ExpenseHandler handles the ADMIN expense ledger.
type ExpenseHandler struct {
	store ExpenseStore
	pub   events.Publisher
	loc   *time.Location
	now   func() time.Time
}

// NewExpenseHandler creates a new ExpenseHandler. Dates are read in loc.
func NewExpenseHandler(store ExpenseStore, pub events.Publisher, loc *time.Location) *ExpenseHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ExpenseHandler{store: store, pub: pub, loc: loc, now: time.Now}
}

// RegisterRoutes registers expense endpoints. Expected to be mounted at /expenses.
func (h *ExpenseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createExpenseRequest struct {
	ExpenseDate   string `json:"expense_date"`
	Category      string `json:"category"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
}

type expenseResponse struct {
	ID            uuid.UUID `json:"id"`
	ExpenseDate   string    `json:"expense_date"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Amount        string    `json:"amount"`
	PaymentMethod *string   `json:"payment_method"`
	CreatedBy     uuid.UUID `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

type expenseListResponse struct {
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Total     string            `json:"total"`
	Expenses  []expenseResponse `json:"expenses"`
}

func toExpenseResponse(e database.Expense) expenseResponse {
	resp := expenseResponse{
		ID:          e.ID,
		Category:    string(e.Category),
		Description: e.Description,
		Amount:      numericToString(e.Amount),
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
	if e.ExpenseDate.Valid {
		resp.ExpenseDate = e.ExpenseDate.Time.Format(dateLayout)
	}
	if e.PaymentMethod.Valid {
		s := string(e.PaymentMethod.PaymentMethod)
		resp.PaymentMethod = &s
	}
	return resp
}

// --- Handlers ---

// List returns expenses between start_date and end_date (inclusive, default today).
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r, h.loc, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	expenses, err := h.store.ListExpenses(r.Context(), database.ListExpensesParams{
		StartDate: pgtype.Date{Time: start, Valid: true},
		EndDate:   pgtype.Date{Time: end, Valid: true},
	})
	if err != nil {
		log.Printf("ERROR: list expenses: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	total := decimal.Zero
	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toExpenseResponse(e)
		total = total.Add(numericToDecimal(e.Amount))
	}

	writeJSON(w, http.StatusOK, expenseListResponse{
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		Total:     total.StringFixed(2),
		Expenses:  resp,
	})
}

// Create records an expense. expense_date defaults to today.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Description = strings.TrimSpace(req.Description)
	if req.Category == "" || req.Description == "" || req.Amount == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category, description, and amount are required"})
		return
	}

	if !isValidExpenseCategory(database.ExpenseCategory(req.Category)) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be positive"})
		return
	}
	if !fitsPlaces(amount, moneyPlaces) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must have at most 2 decimals"})
		return
	}

	var method database.NullPaymentMethod
	if req.PaymentMethod != "" {
		pm := database.PaymentMethod(req.PaymentMethod)
		if !isValidPaymentMethod(pm) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment_method"})
			return
		}
		method = database.NullPaymentMethod{PaymentMethod: pm, Valid: true}
	}

	date := h.now().In(h.loc)
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, h.loc)
	if req.ExpenseDate != "" {
		if date, err = parseDate(req.ExpenseDate, h.loc); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid expense_date format, use YYYY-MM-DD"})
			return
		}
	}

	expense, err := h.store.CreateExpense(r.Context(), database.CreateExpenseParams{
		ExpenseDate:   pgtype.Date{Time: date, Valid: true},
		Category:      database.ExpenseCategory(req.Category),
		Description:   req.Description,
		Amount:        decimalToNumeric(amount),
		PaymentMethod: method,
		CreatedBy:     claims.UserID,
	})
	if err != nil {
		log.Printf("ERROR: create expense: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toExpenseResponse(expense)
	publish(r.Context(), h.pub, enum.TopicDashboard, enum.EventExpenseUpdated, map[string]interface{}{"action": "created", "expense": resp})
	writeJSON(w, http.StatusCreated, resp)
}

// Delete removes an expense.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid expense ID"})
		return
	}

	if _, err := h.store.DeleteExpense(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "expense not found"})
			return
		}
		log.Printf("ERROR: delete expense: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	publish(r.Context(), h.pub, enum.TopicDashboard, enum.EventExpenseUpdated, map[string]string{"action": "deleted", "id": id.String()})
	w.WriteHeader(http.StatusNoContent)
}

func isValidExpenseCategory(c database.ExpenseCategory) bool {
	switch c {
	case database.ExpenseCategorySUPPLIES, database.ExpenseCategoryPAYROLL,
		database.ExpenseCategoryRENT, database.ExpenseCategoryUTILITIES,
		database.ExpenseCategoryOTHER:
		return true
	}
	return false
}
