package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bytedance/sonic"

	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/models"
)

// Wire types shared with taskdeck-server

type SessionRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Token string `json:"token"`
}

type TasksResponse struct {
	Tasks []models.Task `json:"tasks"`
}

type ProjectsResponse struct {
	Projects []models.Project `json:"projects"`
}

// TokenStore persists the bearer token between runs
type TokenStore interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// HTTP talks JSON to taskdeck-server
type HTTP struct {
	BaseURL string
	Client  *http.Client
	tokens  TokenStore
}

// NewHTTP creates a client for the server at baseURL
func NewHTTP(baseURL string, tokens TokenStore) *HTTP {
	return &HTTP{BaseURL: baseURL, Client: &http.Client{}, tokens: tokens}
}

// StatusError is returned for responses the contract has no answer for
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

func (h *HTTP) ListTasks(ctx context.Context, scope models.Scope) ([]models.Task, error) {
	path := "/api/tasks"
	if !scope.IsAll() {
		path += "?projectId=" + url.QueryEscape(scope.ProjectID)
	}
	var resp TasksResponse
	if _, err := h.do(ctx, http.MethodGet, path, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		resp.Tasks = []models.Task{}
	}
	return resp.Tasks, nil
}

func (h *HTTP) CreateTask(ctx context.Context, task models.Task) (bool, error) {
	return h.accepted(ctx, http.MethodPost, "/api/tasks", task, http.StatusCreated, http.StatusConflict)
}

func (h *HTTP) UpdateTask(ctx context.Context, task models.Task) (bool, error) {
	return h.accepted(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(task.ID), task, http.StatusNoContent, http.StatusNotFound)
}

func (h *HTTP) DeleteTask(ctx context.Context, id string) (bool, error) {
	return h.accepted(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, http.StatusNoContent, http.StatusNotFound)
}

func (h *HTTP) ListProjects(ctx context.Context) ([]models.Project, error) {
	var resp ProjectsResponse
	if _, err := h.do(ctx, http.MethodGet, "/api/projects", nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	if resp.Projects == nil {
		resp.Projects = []models.Project{}
	}
	return resp.Projects, nil
}

func (h *HTTP) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	code, err := h.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(id), nil, &p, http.StatusOK, http.StatusNotFound)
	if err != nil {
		return nil, err
	}
	if code == http.StatusNotFound {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (h *HTTP) CreateProject(ctx context.Context, project models.Project) (*models.Project, error) {
	var p models.Project
	if _, err := h.do(ctx, http.MethodPost, "/api/projects", project, &p, http.StatusCreated); err != nil {
		return nil, err
	}
	return &p, nil
}

func (h *HTTP) UpdateProject(ctx context.Context, project models.Project) (*models.Project, error) {
	var p models.Project
	code, err := h.do(ctx, http.MethodPut, "/api/projects/"+url.PathEscape(project.ID), project, &p, http.StatusOK, http.StatusNotFound)
	if err != nil {
		return nil, err
	}
	if code == http.StatusNotFound {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (h *HTTP) DeleteProject(ctx context.Context, id string) (bool, error) {
	return h.accepted(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil, http.StatusNoContent, http.StatusNotFound)
}

func (h *HTTP) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if _, err := h.do(ctx, http.MethodGet, "/api/user", nil, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

func (h *HTTP) UpdateUser(ctx context.Context, patch models.UserPatch) (bool, error) {
	return h.accepted(ctx, http.MethodPatch, "/api/user", patch, http.StatusNoContent, http.StatusNotFound)
}

func (h *HTTP) ValidateCredentials(ctx context.Context, username, password string) (bool, error) {
	var resp SessionResponse
	code, err := h.do(ctx, http.MethodPost, "/api/session", SessionRequest{Username: username, Password: password}, &resp, http.StatusOK)
	if errors.Is(err, ErrUnauthenticated) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if code != http.StatusOK || resp.Token == "" {
		return false, nil
	}
	if err := h.tokens.SetSetting(db.KeyAPIToken, resp.Token); err != nil {
		return false, fmt.Errorf("store token: %w", err)
	}
	return true, nil
}

func (h *HTTP) RegisterUser(ctx context.Context, reg models.Registration) (bool, error) {
	return h.accepted(ctx, http.MethodPost, "/api/users", reg, http.StatusCreated, http.StatusConflict, http.StatusBadRequest)
}

// accepted maps the first status to true and the rest to false
func (h *HTTP) accepted(ctx context.Context, method, path string, body any, ok int, rejected ...int) (bool, error) {
	code, err := h.do(ctx, method, path, body, nil, append([]int{ok}, rejected...)...)
	if err != nil {
		return false, err
	}
	return code == ok, nil
}

// do sends a request and decodes the body into out when the status is the
// first expected one. 401 becomes ErrUnauthenticated; any status not listed
// in expect is a StatusError.
func (h *HTTP) do(ctx context.Context, method, path string, body, out any, expect ...int) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, h.BaseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	token, err := h.tokens.GetSetting(db.KeyAPIToken)
	if err != nil {
		return 0, fmt.Errorf("load token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return resp.StatusCode, ErrUnauthenticated
	}
	for i, code := range expect {
		if resp.StatusCode != code {
			continue
		}
		if i == 0 && out != nil {
			if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(out); err != nil {
				return resp.StatusCode, fmt.Errorf("%s %s: decode: %w", method, path, err)
			}
		}
		return resp.StatusCode, nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return resp.StatusCode, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
}
