// Package server is the JSON API the http gateway backend talks to
package server

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/tgienger/taskdeck/internal/gateway"
	"github.com/tgienger/taskdeck/internal/models"
)

const maxBodyBytes = 1 << 20

// Store is the persistence the API serves from. *db.DB satisfies it.
type Store interface {
	ListTasks(ctx context.Context, projectID string) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	CreateTask(ctx context.Context, t models.Task) (bool, error)
	UpdateTask(ctx context.Context, t models.Task) (bool, error)
	DeleteTask(ctx context.Context, id string) (bool, error)

	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	CreateProject(ctx context.Context, p models.Project) (*models.Project, error)
	UpdateProject(ctx context.Context, p models.Project) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) (bool, error)

	CreateUser(ctx context.Context, u models.User, password string) (bool, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (bool, error)
}

// Issuer signs tokens for authenticated users
type Issuer interface {
	Issue(userID string) (string, error)
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Store, auth *Auth, logger *log.Logger) {
	e.Use(requestLogger(logger))

	e.GET("/healthz", healthz())
	e.POST("/api/session", postSession(store, auth, logger))
	e.POST("/api/users", postUsers(store, logger))

	g := e.Group("/api", requireUser(auth))
	g.GET("/user", getUser(store, logger))
	g.PATCH("/user", patchUser(store, logger))

	g.GET("/tasks", getTasks(store, logger))
	g.GET("/tasks/:id", getTask(store, logger))
	g.POST("/tasks", postTask(store, logger))
	g.PUT("/tasks/:id", putTask(store, logger))
	g.DELETE("/tasks/:id", deleteTask(store, logger))

	g.GET("/projects", getProjects(store, logger))
	g.GET("/projects/:id", getProject(store, logger))
	g.POST("/projects", postProject(store, logger))
	g.PUT("/projects/:id", putProject(store, logger))
	g.DELETE("/projects/:id", deleteProject(store, logger))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// decode reads a JSON body with sonic, limited to maxBodyBytes
func decode(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, maxBodyBytes)
	return sonic.ConfigStd.NewDecoder(lr).Decode(v)
}

func internalError(c echo.Context, logger *log.Logger, op string, err error) error {
	logger.WithError(err).WithField("op", op).Error("request failed")
	return c.String(http.StatusInternalServerError, err.Error())
}

func postSession(store Store, issuer Issuer, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req gateway.SessionRequest
		if err := decode(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid json")
		}
		u, err := store.Authenticate(c.Request().Context(), strings.TrimSpace(req.Username), req.Password)
		if err != nil {
			return internalError(c, logger, "authenticate", err)
		}
		if u == nil {
			return c.String(http.StatusUnauthorized, "invalid credentials")
		}
		token, err := issuer.Issue(u.ID)
		if err != nil {
			return internalError(c, logger, "issue token", err)
		}
		logger.WithField("user", u.ID).Info("session created")
		return c.JSON(http.StatusOK, gateway.SessionResponse{Token: token})
	}
}

func postUsers(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var reg models.Registration
		if err := decode(c, &reg); err != nil {
			return c.String(http.StatusBadRequest, "invalid json")
		}
		reg.Username = strings.TrimSpace(reg.Username)
		reg.Email = strings.TrimSpace(reg.Email)
		if err := validate.Struct(reg); err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		u := models.User{
			Username:  reg.Username,
			Email:     reg.Email,
			FirstName: reg.FirstName,
			LastName:  reg.LastName,
		}
		ok, err := store.CreateUser(c.Request().Context(), u, reg.Password)
		if err != nil {
			return internalError(c, logger, "create user", err)
		}
		if !ok {
			return c.String(http.StatusConflict, "username taken")
		}
		return c.NoContent(http.StatusCreated)
	}
}

func getUser(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := store.GetUser(c.Request().Context(), userID(c))
		if errors.Is(err, sql.ErrNoRows) {
			return c.String(http.StatusUnauthorized, "unknown user")
		}
		if err != nil {
			return internalError(c, logger, "get user", err)
		}
		return c.JSON(http.StatusOK, u)
	}
}

func patchUser(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var patch models.UserPatch
		if err := decode(c, &patch); err != nil {
			return c.String(http.StatusBadRequest, "invalid json")
		}
		ok, err := store.UpdateUser(c.Request().Context(), userID(c), patch)
		if err != nil {
			return internalError(c, logger, "update user", err)
		}
		if !ok {
			return c.NoContent(http.StatusNotFound)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func getTasks(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		tasks, err := store.ListTasks(c.Request().Context(), c.QueryParam("projectId"))
		if err != nil {
			return internalError(c, logger, "list tasks", err)
		}
		if tasks == nil {
			tasks = []models.Task{}
		}
		return c.JSON(http.StatusOK, gateway.TasksResponse{Tasks: tasks})
	}
}

func postTask(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var t models.Task
		if err := decode(c, &t); err != nil {
			return c.String(http.StatusBadRequest, "invalid task")
		}
		if t.ID == "" || strings.TrimSpace(t.Title) == "" {
			return c.String(http.StatusBadRequest, "id and title are required")
		}
		if t.Status == "" {
			t.Status = models.StatusPending
		}
		if t.Priority == "" {
			t.Priority = models.PriorityNone
		}
		ok, err := store.CreateTask(c.Request().Context(), t)
		if err != nil {
			return internalError(c, logger, "create task", err)
		}
		if !ok {
			return c.NoContent(http.StatusConflict)
		}
		return c.NoContent(http.StatusCreated)
	}
}

func getTask(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		t, err := store.GetTask(c.Request().Context(), c.Param("id"))
		if errors.Is(err, sql.ErrNoRows) {
			return c.NoContent(http.StatusNotFound)
		}
		if err != nil {
			return internalError(c, logger, "get task", err)
		}
		return c.JSON(http.StatusOK, t)
	}
}

// putTask replaces a task. Status and priority left out of the body keep
// their stored values.
func putTask(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		existing, err := store.GetTask(ctx, c.Param("id"))
		if errors.Is(err, sql.ErrNoRows) {
			return c.NoContent(http.StatusNotFound)
		}
		if err != nil {
			return internalError(c, logger, "get task", err)
		}

		var t models.Task
		if err := decode(c, &t); err != nil {
			return c.String(http.StatusBadRequest, "invalid task")
		}
		if strings.TrimSpace(t.Title) == "" {
			return c.String(http.StatusBadRequest, "title is required")
		}
		t.ID = existing.ID
		if t.Status == "" {
			t.Status = existing.Status
		}
		if t.Priority == "" {
			t.Priority = existing.Priority
		}
		ok, err := store.UpdateTask(ctx, t)
		if err != nil {
			return internalError(c, logger, "update task", err)
		}
		if !ok {
			return c.NoContent(http.StatusNotFound)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func deleteTask(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ok, err := store.DeleteTask(c.Request().Context(), c.Param("id"))
		if err != nil {
			return internalError(c, logger, "delete task", err)
		}
		if !ok {
			return c.NoContent(http.StatusNotFound)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func getProjects(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		projects, err := store.ListProjects(c.Request().Context())
		if err != nil {
			return internalError(c, logger, "list projects", err)
		}
		if projects == nil {
			projects = []models.Project{}
		}
		return c.JSON(http.StatusOK, gateway.ProjectsResponse{Projects: projects})
	}
}

func getProject(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := store.GetProject(c.Request().Context(), c.Param("id"))
		if errors.Is(err, sql.ErrNoRows) {
			return c.NoContent(http.StatusNotFound)
		}
		if err != nil {
			return internalError(c, logger, "get project", err)
		}
		return c.JSON(http.StatusOK, p)
	}
}

func postProject(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var p models.Project
		if err := decode(c, &p); err != nil {
			return c.String(http.StatusBadRequest, "invalid project")
		}
		if strings.TrimSpace(p.Name) == "" {
			return c.String(http.StatusBadRequest, "name is required")
		}
		p.ID = ""
		created, err := store.CreateProject(c.Request().Context(), p)
		if err != nil {
			return internalError(c, logger, "create project", err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

func putProject(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var p models.Project
		if err := decode(c, &p); err != nil {
			return c.String(http.StatusBadRequest, "invalid project")
		}
		p.ID = c.Param("id")
		updated, err := store.UpdateProject(c.Request().Context(), p)
		if errors.Is(err, sql.ErrNoRows) {
			return c.NoContent(http.StatusNotFound)
		}
		if err != nil {
			return internalError(c, logger, "update project", err)
		}
		return c.JSON(http.StatusOK, updated)
	}
}

func deleteProject(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ok, err := store.DeleteProject(c.Request().Context(), c.Param("id"))
		if err != nil {
			return internalError(c, logger, "delete project", err)
		}
		if !ok {
			return c.NoContent(http.StatusNotFound)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
