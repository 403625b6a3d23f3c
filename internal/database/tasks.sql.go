package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const taskColumns = `id, title, description, assignee_id, status, priority, due_date, created_by, completed_at, created_at, updated_at`

func scanTask(row interface{ Scan(dest ...any) error }) (Task, error) {
	var i Task
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.AssigneeID,
		&i.Status,
		&i.Priority,
		&i.DueDate,
		&i.CreatedBy,
		&i.CompletedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createTask = `-- name: CreateTask :one
INSERT INTO tasks (title, description, assignee_id, priority, due_date, created_by)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + taskColumns

type CreateTaskParams struct {
	Title       string       `json:"title"`
	Description pgtype.Text  `json:"description"`
	AssigneeID  uuid.UUID    `json:"assignee_id"`
	Priority    TaskPriority `json:"priority"`
	DueDate     pgtype.Date  `json:"due_date"`
	CreatedBy   uuid.UUID    `json:"created_by"`
}

func (q *Queries) CreateTask(ctx context.Context, arg CreateTaskParams) (Task, error) {
	row := q.db.QueryRow(ctx, createTask,
		arg.Title,
		arg.Description,
		arg.AssigneeID,
		arg.Priority,
		arg.DueDate,
		arg.CreatedBy,
	)
	return scanTask(row)
}

const getTask = `-- name: GetTask :one
SELECT ` + taskColumns + ` FROM tasks
WHERE id = $1`

func (q *Queries) GetTask(ctx context.Context, id uuid.UUID) (Task, error) {
	row := q.db.QueryRow(ctx, getTask, id)
	return scanTask(row)
}

const listTasks = `-- name: ListTasks :many
SELECT ` + taskColumns + ` FROM tasks
WHERE ($1::uuid IS NULL OR assignee_id = $1)
  AND ($2::text IS NULL OR status = $2)
ORDER BY
    CASE status WHEN 'IN_PROGRESS' THEN 0 WHEN 'PENDING' THEN 1 ELSE 2 END,
    CASE priority WHEN 'HIGH' THEN 0 WHEN 'NORMAL' THEN 1 ELSE 2 END,
    due_date NULLS LAST,
    created_at`

type ListTasksParams struct {
	AssigneeID pgtype.UUID    `json:"assignee_id"`
	Status     NullTaskStatus `json:"status"`
}

func (q *Queries) ListTasks(ctx context.Context, arg ListTasksParams) ([]Task, error) {
	rows, err := q.db.Query(ctx, listTasks, arg.AssigneeID, arg.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Task{}
	for rows.Next() {
		i, err := scanTask(rows)
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

const updateTask = `-- name: UpdateTask :one
UPDATE tasks
SET title = $2, description = $3, assignee_id = $4, priority = $5, due_date = $6, updated_at = now()
WHERE id = $1
RETURNING ` + taskColumns

type UpdateTaskParams struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description pgtype.Text  `json:"description"`
	AssigneeID  uuid.UUID    `json:"assignee_id"`
	Priority    TaskPriority `json:"priority"`
	DueDate     pgtype.Date  `json:"due_date"`
}

func (q *Queries) UpdateTask(ctx context.Context, arg UpdateTaskParams) (Task, error) {
	row := q.db.QueryRow(ctx, updateTask,
		arg.ID,
		arg.Title,
		arg.Description,
		arg.AssigneeID,
		arg.Priority,
		arg.DueDate,
	)
	return scanTask(row)
}

const updateTaskStatus = `-- name: UpdateTaskStatus :one
UPDATE tasks
SET status = $2,
    completed_at = CASE WHEN $2 = 'DONE' THEN now() ELSE NULL END,
    updated_at = now()
WHERE id = $1 AND status = $3
RETURNING ` + taskColumns

type UpdateTaskStatusParams struct {
	ID             uuid.UUID  `json:"id"`
	Status         TaskStatus `json:"status"`
	ExpectedStatus TaskStatus `json:"expected_status"`
}

func (q *Queries) UpdateTaskStatus(ctx context.Context, arg UpdateTaskStatusParams) (Task, error) {
	row := q.db.QueryRow(ctx, updateTaskStatus, arg.ID, arg.Status, arg.ExpectedStatus)
	return scanTask(row)
}

const deleteTask = `-- name: DeleteTask :one
DELETE FROM tasks WHERE id = $1
RETURNING id`

func (q *Queries) DeleteTask(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteTask, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}
