package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/student-portal/internal/apperror"
	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/repository"
)

var _ repository.TodoRepository = (*TodoDB)(nil)

// TodoDB is the todo_tasks table. Every query filters on user_id.
type TodoDB struct {
	conn *sql.DB
}

// Create inserts a new task for task.UserID and sets its ID and timestamps.
//
// xid IDs are 20 URL-safe characters and sort by creation time, which is
// all a form hidden field needs.
func (t *TodoDB) Create(ctx context.Context, task *model.TodoTask) error {
	task.ID = xid.New().String()
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := t.conn.ExecContext(ctx,
		`INSERT INTO todo_tasks (id, user_id, name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		task.ID,
		task.UserID,
		task.Name,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating todo task: %w", err)
	}

	return nil
}

// GetByID returns the task only if userID owns it.
func (t *TodoDB) GetByID(ctx context.Context, userID, id string) (*model.TodoTask, error) {
	var task model.TodoTask

	err := t.conn.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at, updated_at
		 FROM todo_tasks
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&task.ID, &task.UserID, &task.Name, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("todo task", id)
		}
		return nil, fmt.Errorf("sqlite: getting todo task %s: %w", id, err)
	}

	return &task, nil
}

// List returns the user's tasks in insertion order.
func (t *TodoDB) List(ctx context.Context, userID string) ([]model.TodoTask, error) {
	rows, err := t.conn.QueryContext(ctx,
		`SELECT id, user_id, name, created_at, updated_at
		 FROM todo_tasks
		 WHERE user_id = ?
		 ORDER BY rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing todo tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.TodoTask, 0)
	for rows.Next() {
		var task model.TodoTask
		if err := rows.Scan(&task.ID, &task.UserID, &task.Name, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning todo task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating todo tasks: %w", err)
	}

	return tasks, nil
}

// Update renames the task. The WHERE clause carries the owner, so a task
// of another user reports NotFound and stays untouched.
func (t *TodoDB) Update(ctx context.Context, task *model.TodoTask) error {
	task.UpdatedAt = time.Now()

	result, err := t.conn.ExecContext(ctx,
		`UPDATE todo_tasks SET name = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		task.Name,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating todo task %s: %w", task.ID, err)
	}

	return rowsAffectedOrNotFound(result, apperror.NotFound("todo task", task.ID))
}

func (t *TodoDB) Delete(ctx context.Context, userID, id string) error {
	result, err := t.conn.ExecContext(ctx,
		`DELETE FROM todo_tasks WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting todo task %s: %w", id, err)
	}

	return rowsAffectedOrNotFound(result, apperror.NotFound("todo task", id))
}
