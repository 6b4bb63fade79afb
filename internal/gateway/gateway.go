// Package gateway is the boundary between the client and wherever tasks,
// projects and users live. Backends: an in-memory mock with artificial
// latency, the local SQLite store, an HTTP client for taskdeck-server and a
// Redis read cache that wraps any of them.
package gateway

import (
	"context"
	"errors"

	"github.com/tgienger/taskdeck/internal/models"
)

var (
	// ErrNotFound is returned when a project id does not resolve
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated is returned when there is no current user
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Gateway is the remote-data contract. Boolean results report whether the
// backend accepted the operation; errors are transport or unexpected failures.
type Gateway interface {
	ListTasks(ctx context.Context, scope models.Scope) ([]models.Task, error)
	CreateTask(ctx context.Context, task models.Task) (bool, error)
	UpdateTask(ctx context.Context, task models.Task) (bool, error)
	DeleteTask(ctx context.Context, id string) (bool, error)

	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	CreateProject(ctx context.Context, project models.Project) (*models.Project, error)
	UpdateProject(ctx context.Context, project models.Project) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) (bool, error)

	CurrentUser(ctx context.Context) (*models.User, error)
	UpdateUser(ctx context.Context, patch models.UserPatch) (bool, error)
	ValidateCredentials(ctx context.Context, username, password string) (bool, error)
	RegisterUser(ctx context.Context, reg models.Registration) (bool, error)
}

// newUser maps a registration onto the user record it creates
func newUser(reg models.Registration) models.User {
	return models.User{
		Username:  reg.Username,
		Email:     reg.Email,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
	}
}
