package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/models"
)

// Local serves the contract from the SQLite store. The logged-in user id is
// kept in the settings table so a restart can rehydrate the session.
type Local struct {
	db *db.DB
}

func NewLocal(database *db.DB) *Local {
	return &Local{db: database}
}

func (l *Local) ListTasks(ctx context.Context, scope models.Scope) ([]models.Task, error) {
	return l.db.ListTasks(ctx, scope.ProjectID)
}

func (l *Local) CreateTask(ctx context.Context, task models.Task) (bool, error) {
	return l.db.CreateTask(ctx, task)
}

func (l *Local) UpdateTask(ctx context.Context, task models.Task) (bool, error) {
	return l.db.UpdateTask(ctx, task)
}

func (l *Local) DeleteTask(ctx context.Context, id string) (bool, error) {
	return l.db.DeleteTask(ctx, id)
}

func (l *Local) ListProjects(ctx context.Context) ([]models.Project, error) {
	return l.db.ListProjects(ctx)
}

func (l *Local) GetProject(ctx context.Context, id string) (*models.Project, error) {
	p, err := l.db.GetProject(ctx, id)
	return p, notFound(err)
}

func (l *Local) CreateProject(ctx context.Context, project models.Project) (*models.Project, error) {
	project.ID = ""
	return l.db.CreateProject(ctx, project)
}

func (l *Local) UpdateProject(ctx context.Context, project models.Project) (*models.Project, error) {
	p, err := l.db.UpdateProject(ctx, project)
	return p, notFound(err)
}

func (l *Local) DeleteProject(ctx context.Context, id string) (bool, error) {
	return l.db.DeleteProject(ctx, id)
}

func (l *Local) CurrentUser(ctx context.Context) (*models.User, error) {
	id, err := l.db.GetSetting(db.KeyCurrentUserID)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrUnauthenticated
	}
	u, err := l.db.GetUser(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnauthenticated
	}
	return u, err
}

func (l *Local) UpdateUser(ctx context.Context, patch models.UserPatch) (bool, error) {
	id, err := l.db.GetSetting(db.KeyCurrentUserID)
	if err != nil || id == "" {
		return false, err
	}
	return l.db.UpdateUser(ctx, id, patch)
}

func (l *Local) ValidateCredentials(ctx context.Context, username, password string) (bool, error) {
	u, err := l.db.Authenticate(ctx, username, password)
	if err != nil || u == nil {
		return false, err
	}
	if err := l.db.SetSetting(db.KeyCurrentUserID, u.ID); err != nil {
		return false, fmt.Errorf("remember user: %w", err)
	}
	return true, nil
}

func (l *Local) RegisterUser(ctx context.Context, reg models.Registration) (bool, error) {
	return l.db.CreateUser(ctx, newUser(reg), reg.Password)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
