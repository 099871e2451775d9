package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/GophTasks/internal/models"
)

const (
	listTasksQuery = `SELECT id, title, description, status, user_id FROM tasks
		WHERE user_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR position($3 in lower(title)) > 0 OR position($3 in lower(description)) > 0)
		ORDER BY id DESC`
	getTaskQuery    = `SELECT id, title, description, status, user_id FROM tasks WHERE id = $1 AND user_id = $2`
	createTaskQuery = `INSERT INTO tasks (user_id, title, description, status) VALUES ($1, $2, $3, $4) RETURNING id`
	updateTaskQuery = `UPDATE tasks SET status = $1, updated_at = now() WHERE id = $2 AND user_id = $3
		RETURNING id, title, description, status, user_id`
	deleteTaskQuery = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
)

// PostgresTaskRepository stores tasks in a PostgreSQL database. Every
// operation is scoped to the owning user; rows of other users behave as if
// they did not exist.
type PostgresTaskRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresTaskRepository creates a PostgresTaskRepository using the provided *sql.DB.
func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{DB: db}
}

// ListTasks returns the user's tasks, newest first, narrowed by filter.
// filter.Search is matched case-insensitively against title and description.
func (r *PostgresTaskRepository) ListTasks(ctx context.Context, userID int64, filter models.TaskFilter) ([]models.Task, error) {
	rows, err := r.DB.QueryContext(ctx, listTasksQuery, userID, string(filter.Status), normalizeSearch(filter.Search))
	if err != nil {
		return nil, fmt.Errorf("ListTasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListTasks: %w", err)
	}
	return tasks, nil
}

// GetTask loads one of the user's tasks.
func (r *PostgresTaskRepository) GetTask(ctx context.Context, userID, id int64) (models.Task, error) {
	var t models.Task
	err := r.DB.QueryRowContext(ctx, getTaskQuery, id, userID).
		Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("GetTask: %w", err)
	}
	return t, nil
}

// CreateTask inserts an OPEN task for the user.
func (r *PostgresTaskRepository) CreateTask(ctx context.Context, userID int64, title, description string) (models.Task, error) {
	t := models.Task{Title: title, Description: description, Status: models.StatusOpen, UserID: userID}
	err := r.DB.QueryRowContext(ctx, createTaskQuery, userID, title, description, string(models.StatusOpen)).Scan(&t.ID)
	if err != nil {
		return models.Task{}, fmt.Errorf("CreateTask: %w", err)
	}
	return t, nil
}

// UpdateStatus sets the status of one of the user's tasks and returns the
// updated row.
func (r *PostgresTaskRepository) UpdateStatus(ctx context.Context, userID, id int64, status models.Status) (models.Task, error) {
	var t models.Task
	err := r.DB.QueryRowContext(ctx, updateTaskQuery, string(status), id, userID).
		Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("UpdateStatus: %w", err)
	}
	return t, nil
}

// DeleteTask removes one of the user's tasks.
func (r *PostgresTaskRepository) DeleteTask(ctx context.Context, userID, id int64) error {
	res, err := r.DB.ExecContext(ctx, deleteTaskQuery, id, userID)
	if err != nil {
		return fmt.Errorf("DeleteTask: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteTask: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
