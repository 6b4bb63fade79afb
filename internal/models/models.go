package models

import (
	"encoding/json"
	"time"
)

// Project represents a named grouping of tasks
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Color       string     `json:"color,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// DefaultProjectColor is used for new projects
const DefaultProjectColor = "#4f46e5"

// FallbackProjectColor is shown for projects without a color
const FallbackProjectColor = "#CBD5E1"

// DisplayColor returns the project's color or the fallback
func (p Project) DisplayColor() string {
	if p.Color == "" {
		return FallbackProjectColor
	}
	return p.Color
}

// Task represents a single task
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time // nil when the task has no due date
	ProjectID   string     // empty when not part of a project
}

type taskJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"dueDate,omitempty"`
	ProjectID   string   `json:"projectId,omitempty"`
}

// MarshalJSON encodes the due date as an ISO-8601 instant
func (t Task) MarshalJSON() ([]byte, error) {
	out := taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		ProjectID:   t.ProjectID,
	}
	if t.DueDate != nil {
		out.DueDate = FormatInstant(*t.DueDate)
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts full instants and date-only due dates
func (t *Task) UnmarshalJSON(data []byte) error {
	var in taskJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*t = Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		ProjectID:   in.ProjectID,
	}
	if in.DueDate != "" {
		due, err := ParseInstant(in.DueDate)
		if err != nil {
			return err
		}
		t.DueDate = &due
	}
	return nil
}

// User is the authenticated account. Password is an opaque credential and
// is never rendered or encoded.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayName returns "First Last", falling back to the username
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

// UserPatch is a partial user update; nil fields are left unchanged
type UserPatch struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p UserPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Bio == nil && p.Avatar == nil
}

// Apply copies the set fields onto u
func (p UserPatch) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
}

// Registration carries the fields of a new account
type Registration struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=20"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// Scope selects which tasks a list shows: all of them, or one project's
type Scope struct {
	ProjectID string
}

// AllTasks is the dashboard scope
var AllTasks = Scope{}

// ProjectScope returns the scope of a single project
func ProjectScope(projectID string) Scope {
	return Scope{ProjectID: projectID}
}

// IsAll reports whether the scope covers every task
func (s Scope) IsAll() bool {
	return s.ProjectID == ""
}

// Contains reports whether the task belongs in the scope
func (s Scope) Contains(t Task) bool {
	return s.IsAll() || t.ProjectID == s.ProjectID
}

func (s Scope) String() string {
	if s.IsAll() {
		return "all"
	}
	return "project:" + s.ProjectID
}
