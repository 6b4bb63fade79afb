package db

import (
	"context"
	"database/sql"

	"github.com/tgienger/taskdeck/internal/models"
)

const taskColumns = "id, title, description, status, priority, due_date, project_id"

// CreateTask inserts a task. It returns false when the id already exists.
func (db *DB) CreateTask(ctx context.Context, t models.Task) (bool, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), dueValue(t), t.ProjectID)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// GetTask retrieves a task by ID
func (db *DB) GetTask(ctx context.Context, id string) (*models.Task, error) {
	row := db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasks returns tasks in creation order. An empty projectID lists every task.
func (db *DB) ListTasks(ctx context.Context, projectID string) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	var args []any
	if projectID != "" {
		query += " WHERE project_id = ?"
		args = append(args, projectID)
	}
	query += " ORDER BY created_at, rowid"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask replaces every field of a task. It returns false when the id is unknown.
func (db *DB) UpdateTask(ctx context.Context, t models.Task) (bool, error) {
	result, err := db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, project_id = ?
		WHERE id = ?
	`, t.Title, t.Description, string(t.Status), string(t.Priority), dueValue(t), t.ProjectID, t.ID)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// DeleteTask deletes a task. It returns false when the id is unknown.
func (db *DB) DeleteTask(ctx context.Context, id string) (bool, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	return affected(result)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (models.Task, error) {
	var (
		t        models.Task
		status   string
		priority string
		due      sql.NullString
	)
	if err := s.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &due, &t.ProjectID); err != nil {
		return t, err
	}
	t.Status = models.Status(status)
	t.Priority = models.Priority(priority)
	if due.Valid && due.String != "" {
		d, err := models.ParseInstant(due.String)
		if err != nil {
			return t, err
		}
		t.DueDate = &d
	}
	return t, nil
}

func dueValue(t models.Task) any {
	if t.DueDate == nil {
		return nil
	}
	return models.FormatInstant(*t.DueDate)
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
