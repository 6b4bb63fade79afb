package gateway

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tgienger/taskdeck/internal/models"
)

// Demo account seeded into the memory backend
const (
	DemoUsername = "demo"
	DemoPassword = "password123"
)

// Memory is the reference mock backend. Every call waits for the configured
// latency before touching the in-memory data.
type Memory struct {
	latency time.Duration

	mu        sync.Mutex
	tasks     []models.Task
	projects  []models.Project
	users     []models.User
	currentID string
}

// NewMemory returns a mock seeded with two tasks, one project and the demo user
func NewMemory(latency time.Duration) *Memory {
	m := &Memory{latency: latency}
	m.seed()
	return m
}

// NewEmptyMemory returns a mock with no data and no latency
func NewEmptyMemory() *Memory {
	return &Memory{}
}

func (m *Memory) seed() {
	groceries := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	report := time.Date(2025, 6, 29, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	demo := models.User{
		ID:        uuid.NewString(),
		Username:  DemoUsername,
		Email:     "demo@taskdeck.dev",
		Password:  DemoPassword,
		FirstName: "Demo",
		LastName:  "User",
		Bio:       "Just here to try things out.",
		CreatedAt: created,
	}
	m.users = []models.User{demo}
	// getUser on the mock always answers with the demo account until someone logs in
	m.currentID = demo.ID

	personal := models.Project{
		ID:          uuid.NewString(),
		Name:        "Personal",
		Description: "Errands and chores",
		Color:       models.DefaultProjectColor,
		CreatedAt:   created,
	}
	m.projects = []models.Project{personal}

	m.tasks = []models.Task{
		{
			ID:          "1",
			Title:       "Buy groceries",
			Description: "Milk, bread, eggs, and butter",
			Status:      models.StatusPending,
			Priority:    models.PriorityNone,
			DueDate:     &groceries,
			ProjectID:   personal.ID,
		},
		{
			ID:       "2",
			Title:    "Finish project report",
			Status:   models.StatusCompleted,
			Priority: models.PriorityCritical,
			DueDate:  &report,
		},
	}
}

func (m *Memory) wait(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (m *Memory) ListTasks(ctx context.Context, scope models.Scope) ([]models.Task, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Task{}
	for _, t := range m.tasks {
		if scope.Contains(t) {
			out = append(out, cloneTask(t))
		}
	}
	return out, nil
}

func (m *Memory) CreateTask(ctx context.Context, task models.Task) (bool, error) {
	if err := m.wait(ctx); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if m.taskIndex(task.ID) >= 0 {
		return false, nil
	}
	m.tasks = append(m.tasks, cloneTask(task))
	return true, nil
}

func (m *Memory) UpdateTask(ctx context.Context, task models.Task) (bool, error) {
	if err := m.wait(ctx); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.taskIndex(task.ID)
	if i < 0 {
		return false, nil
	}
	m.tasks[i] = cloneTask(task)
	return true, nil
}

func (m *Memory) DeleteTask(ctx context.Context, id string) (bool, error) {
	if err := m.wait(ctx); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.taskIndex(id)
	if i < 0 {
		return false, nil
	}
	m.tasks = slices.Delete(m.tasks, i, i+1)
	return true, nil
}

func (m *Memory) ListProjects(ctx context.Context) ([]models.Project, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.projects), nil
}

func (m *Memory) GetProject(ctx context.Context, id string) (*models.Project, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.projectIndex(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	p := m.projects[i]
	return &p, nil
}

func (m *Memory) CreateProject(ctx context.Context, project models.Project) (*models.Project, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if project.ID == "" || m.projectIndex(project.ID) >= 0 {
		project.ID = uuid.NewString()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}
	project.UpdatedAt = nil
	m.projects = append(m.projects, project)
	return &project, nil
}

func (m *Memory) UpdateProject(ctx context.Context, project models.Project) (*models.Project, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.projectIndex(project.ID)
	if i < 0 {
		return nil, ErrNotFound
	}
	now := time.Now().UTC()
	stored := m.projects[i]
	stored.Name = project.Name
	stored.Description = project.Description
	stored.Color = project.Color
	stored.UpdatedAt = &now
	m.projects[i] = stored
	return &stored, nil
}

func (m *Memory) DeleteProject(ctx context.Context, id string) (bool, error) {
	if err := m.wait(ctx); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.projectIndex(id)
	if i < 0 {
		return false, nil
	}
	m.projects = slices.Delete(m.projects, i, i+1)
	return true, nil
}

func (m *Memory) CurrentUser(ctx context.Context) (*models.User, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.userIndex(m.currentID)
	if i < 0 {
		return nil, ErrUnauthenticated
	}
	u := m.users[i]
	u.Password = ""
	return &u, nil
}

func (m *Memory) UpdateUser(ctx context.Context, patch models.UserPatch) (bool, error) {
	if err := m.wait(ctx); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.userIndex(m.currentID)
	if i < 0 {
		return false, nil
	}
	patch.Apply(&m.users[i])
	return true, nil
}

func (m *Memory) ValidateCredentials(ctx context.Context, username, password string) (bool, error) {
	if err := m.wait(ctx); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username && u.Password == password {
			m.currentID = u.ID
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) RegisterUser(ctx context.Context, reg models.Registration) (bool, error) {
	if err := m.wait(ctx); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == reg.Username {
			return false, nil
		}
	}
	u := newUser(reg)
	u.ID = uuid.NewString()
	u.Password = reg.Password
	u.CreatedAt = time.Now().UTC()
	m.users = append(m.users, u)
	return true, nil
}

func (m *Memory) taskIndex(id string) int {
	return slices.IndexFunc(m.tasks, func(t models.Task) bool { return t.ID == id })
}

func (m *Memory) projectIndex(id string) int {
	return slices.IndexFunc(m.projects, func(p models.Project) bool { return p.ID == id })
}

func (m *Memory) userIndex(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(m.users, func(u models.User) bool { return u.ID == id })
}

// cloneTask copies the due date so callers never share the pointer
func cloneTask(t models.Task) models.Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}
