package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/comedor-pos/api/internal/auth"
	"github.com/comedor-pos/api/internal/database"
	"github.com/comedor-pos/api/internal/enum"
	"github.com/comedor-pos/api/internal/events"
	"github.com/comedor-pos/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// TaskStore defines the database methods needed by task handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type TaskStore interface {
	CreateTask(ctx context.Context, arg database.CreateTaskParams) (database.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (database.Task, error)
	ListTasks(ctx context.Context, arg database.ListTasksParams) ([]database.Task, error)
	UpdateTask(ctx context.Context, arg database.UpdateTaskParams) (database.Task, error)
	UpdateTaskStatus(ctx context.Context, arg database.UpdateTaskStatusParams) (database.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
}

// TaskHandler handles staff task endpoints.
type TaskHandler struct {
	store TaskStore
	pub   events.Publisher
	loc   *time.Location
}

// NewTaskHandler creates a new TaskHandler. Due dates are read in loc.
func NewTaskHandler(store TaskStore, pub events.Publisher, loc *time.Location) *TaskHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TaskHandler{store: store, pub: pub, loc: loc}
}

// RegisterReadRoutes registers the endpoints every role may call.
func (h *TaskHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
}

// RegisterWriteRoutes registers the ADMIN-only task endpoints.
func (h *TaskHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssigneeID  string `json:"assignee_id"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

type taskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	AssigneeID  uuid.UUID  `json:"assignee_id"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *string    `json:"due_date"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toTaskResponse(t database.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: textPtr(t.Description),
		AssigneeID:  t.AssigneeID,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     datePtr(t.DueDate),
		CreatedBy:   t.CreatedBy,
		CompletedAt: timePtr(t.CompletedAt),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// --- Handlers ---

// List returns tasks. ADMIN sees everything and may filter by assignee_id;
// other roles only see their own tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var params database.ListTasksParams
	q := r.URL.Query()

	if claims.Role == enum.UserRoleAdmin {
		if s := q.Get("assignee_id"); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid assignee_id"})
				return
			}
			params.AssigneeID = pgtype.UUID{Bytes: id, Valid: true}
		}
	} else {
		params.AssigneeID = pgtype.UUID{Bytes: claims.UserID, Valid: true}
	}

	if s := q.Get("status"); s != "" {
		if !isValidTaskStatus(database.TaskStatus(s)) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		params.Status = database.NullTaskStatus{TaskStatus: database.TaskStatus(s), Valid: true}
	}

	tasks, err := h.store.ListTasks(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list tasks: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		resp[i] = toTaskResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns one task to its assignee or an ADMIN.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	task, ok := h.loadVisibleTask(w, r, claims)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

// Create assigns a new task.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	fields, msg, err := h.validateTaskRequest(r.Context(), &req)
	if err != nil {
		log.Printf("ERROR: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	task, err := h.store.CreateTask(r.Context(), database.CreateTaskParams{
		Title:       req.Title,
		Description: optionalText(req.Description),
		AssigneeID:  fields.assignee,
		Priority:    fields.priority,
		DueDate:     fields.dueDate,
		CreatedBy:   claims.UserID,
	})
	if err != nil {
		log.Printf("ERROR: create task: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toTaskResponse(task)
	publish(r.Context(), h.pub, enum.TopicTasks, enum.EventTaskUpdated, map[string]interface{}{"action": "created", "task": resp})
	writeJSON(w, http.StatusCreated, resp)
}

// Update edits a task's details. Status moves through UpdateStatus.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task ID"})
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	fields, msg, err := h.validateTaskRequest(r.Context(), &req)
	if err != nil {
		log.Printf("ERROR: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	task, err := h.store.UpdateTask(r.Context(), database.UpdateTaskParams{
		ID:          id,
		Title:       req.Title,
		Description: optionalText(req.Description),
		AssigneeID:  fields.assignee,
		Priority:    fields.priority,
		DueDate:     fields.dueDate,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
			return
		}
		log.Printf("ERROR: update task: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toTaskResponse(task)
	publish(r.Context(), h.pub, enum.TopicTasks, enum.EventTaskUpdated, map[string]interface{}{"action": "updated", "task": resp})
	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus handles PATCH /tasks/{id}/status for the assignee or an ADMIN.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req taskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	next := database.TaskStatus(req.Status)
	if !isValidTaskStatus(next) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	current, ok := h.loadVisibleTask(w, r, claims)
	if !ok {
		return
	}

	if err := validateTaskTransition(current.Status, next, claims.Role == enum.UserRoleAdmin); err != nil {
		status := http.StatusConflict
		if errors.Is(err, errTaskReopenForbidden) {
			status = http.StatusForbidden
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	task, err := h.store.UpdateTaskStatus(r.Context(), database.UpdateTaskStatusParams{
		ID:             current.ID,
		Status:         next,
		ExpectedStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "task status changed, please retry"})
			return
		}
		log.Printf("ERROR: update task status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toTaskResponse(task)
	publish(r.Context(), h.pub, enum.TopicTasks, enum.EventTaskUpdated, map[string]interface{}{"action": "status", "task": resp})
	writeJSON(w, http.StatusOK, resp)
}

// Delete removes a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task ID"})
		return
	}

	if _, err := h.store.DeleteTask(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
			return
		}
		log.Printf("ERROR: delete task: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	publish(r.Context(), h.pub, enum.TopicTasks, enum.EventTaskUpdated, map[string]string{"action": "deleted", "id": id.String()})
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

type taskFields struct {
	assignee uuid.UUID
	priority database.TaskPriority
	dueDate  pgtype.Date
}

func (h *TaskHandler) validateTaskRequest(ctx context.Context, req *taskRequest) (taskFields, string, error) {
	var f taskFields

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.AssigneeID == "" {
		return f, "title and assignee_id are required", nil
	}

	assignee, err := uuid.Parse(req.AssigneeID)
	if err != nil {
		return f, "invalid assignee_id", nil
	}
	if _, err := h.store.GetUserByID(ctx, assignee); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return f, "assignee must be an active user", nil
		}
		return f, "", fmt.Errorf("get task assignee: %w", err)
	}
	f.assignee = assignee

	f.priority = database.TaskPriorityNORMAL
	if req.Priority != "" {
		f.priority = database.TaskPriority(req.Priority)
		switch f.priority {
		case database.TaskPriorityLOW, database.TaskPriorityNORMAL, database.TaskPriorityHIGH:
		default:
			return f, "invalid priority", nil
		}
	}

	if req.DueDate != "" {
		d, err := parseDate(req.DueDate, h.loc)
		if err != nil {
			return f, "invalid due_date format, use YYYY-MM-DD", nil
		}
		f.dueDate = pgtype.Date{Time: d, Valid: true}
	}
	return f, "", nil
}

// loadVisibleTask fetches the task in the URL. Non-admins get 404 for tasks
// assigned to someone else.
func (h *TaskHandler) loadVisibleTask(w http.ResponseWriter, r *http.Request, claims *auth.Claims) (database.Task, bool) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task ID"})
		return database.Task{}, false
	}

	task, err := h.store.GetTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
			return database.Task{}, false
		}
		log.Printf("ERROR: get task: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return database.Task{}, false
	}

	if claims.Role != enum.UserRoleAdmin && task.AssigneeID != claims.UserID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return database.Task{}, false
	}
	return task, true
}

func isValidTaskStatus(s database.TaskStatus) bool {
	switch s {
	case database.TaskStatusPENDING, database.TaskStatusINPROGRESS, database.TaskStatusDONE:
		return true
	}
	return false
}

var errTaskReopenForbidden = errors.New("only an admin can reopen a task")

var taskTransitions = map[database.TaskStatus][]database.TaskStatus{
	database.TaskStatusPENDING:    {database.TaskStatusINPROGRESS},
	database.TaskStatusINPROGRESS: {database.TaskStatusDONE, database.TaskStatusPENDING},
}

// validateTaskTransition allows DONE→PENDING only for admins.
func validateTaskTransition(current, next database.TaskStatus, isAdmin bool) error {
	if current == database.TaskStatusDONE && next == database.TaskStatusPENDING {
		if isAdmin {
			return nil
		}
		return errTaskReopenForbidden
	}
	for _, s := range taskTransitions[current] {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("cannot transition from %s to %s", current, next)
}
