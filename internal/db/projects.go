package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/tgienger/taskdeck/internal/models"
)

const projectColumns = "id, name, description, color, created_at, updated_at"

// CreateProject creates a new project, assigning an id when it has none
func (db *DB) CreateProject(ctx context.Context, p models.Project) (*models.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, color, created_at) VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.Color, p.CreatedAt)
	if err != nil {
		return nil, err
	}

	return db.GetProject(ctx, p.ID)
}

// GetProject retrieves a project by ID. A missing project yields sql.ErrNoRows.
func (db *DB) GetProject(ctx context.Context, id string) (*models.Project, error) {
	row := db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	p, err := scanProject(row)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns all projects, oldest first
func (db *DB) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+projectColumns+" FROM projects ORDER BY created_at, rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateProject saves name, description and color and stamps updated_at
func (db *DB) UpdateProject(ctx context.Context, p models.Project) (*models.Project, error) {
	result, err := db.ExecContext(ctx, `
		UPDATE projects SET name = ?, description = ?, color = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Description, p.Color, time.Now().UTC(), p.ID)
	if err != nil {
		return nil, err
	}
	if ok, err := affected(result); err != nil {
		return nil, err
	} else if !ok {
		return nil, sql.ErrNoRows
	}
	return db.GetProject(ctx, p.ID)
}

// DeleteProject deletes a project. Its tasks are kept.
func (db *DB) DeleteProject(ctx context.Context, id string) (bool, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	return affected(result)
}

func scanProject(s scanner) (models.Project, error) {
	var (
		p       models.Project
		updated sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.CreatedAt, &updated); err != nil {
		return p, err
	}
	if updated.Valid {
		u := updated.Time
		p.UpdatedAt = &u
	}
	return p, nil
}
