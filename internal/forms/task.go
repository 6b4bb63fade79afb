package forms

import (
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/taskdeck/internal/models"
)

// TimeSlots lists the 48 half-hour due times, 00:00 through 23:30
func TimeSlots() []string {
	slots := make([]string, 0, 48)
	for m := 0; m < 24*60; m += 30 {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

// IsTimeSlot reports whether s is one of TimeSlots
func IsTimeSlot(s string) bool {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return false
	}
	return t.Minute()%30 == 0
}

// TaskForm maps the task form fields to a Task. With no initial record it
// creates; with one it edits, keeping id, status and project.
type TaskForm struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	DueDate     string          `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	DueTime     string          `json:"dueTime" validate:"omitempty,timeslot"`

	// Location is the zone the date and time are read in
	Location *time.Location `json:"-" validate:"-"`

	initial   *models.Task
	projectID string

	// date and time fields as pre-populated from initial
	shownDate, shownTime string
}

// NewTaskForm returns an empty create form
func NewTaskForm() *TaskForm {
	return &TaskForm{Priority: models.PriorityNone, Location: time.Local}
}

// NewProjectTaskForm returns a create form that files the task under projectID
func NewProjectTaskForm(projectID string) *TaskForm {
	f := NewTaskForm()
	f.projectID = projectID
	return f
}

// EditTaskForm returns a form pre-populated from t. The due time field shows
// the half-hour slot at or before the due time; the exact instant is kept
// unless the date or time is changed.
func EditTaskForm(t models.Task, loc *time.Location) *TaskForm {
	if loc == nil {
		loc = time.Local
	}
	f := &TaskForm{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Location:    loc,
		initial:     &t,
	}
	if f.Priority == "" {
		f.Priority = models.PriorityNone
	}
	if t.DueDate != nil {
		local := t.DueDate.In(loc)
		f.DueDate = local.Format(time.DateOnly)
		f.DueTime = fmt.Sprintf("%02d:%02d", local.Hour(), local.Minute()-local.Minute()%30)
		f.shownDate, f.shownTime = f.DueDate, f.DueTime
	}
	return f
}

// Editing reports whether the form edits an existing task
func (f *TaskForm) Editing() bool {
	return f.initial != nil
}

// Initial returns the record being edited, or nil
func (f *TaskForm) Initial() *models.Task {
	return f.initial
}

func (f *TaskForm) Heading() string {
	if f.Editing() {
		return "Edit Task"
	}
	return "New Task"
}

func (f *TaskForm) SubmitLabel() string {
	if f.Editing() {
		return "Save Changes"
	}
	return "Create"
}

var taskLabels = map[string]string{"title": "Title", "dueDate": "Due date", "dueTime": "Due time"}

// Validate checks the fields without building a task
func (f *TaskForm) Validate() error {
	trimmed := *f
	trimmed.Title = strings.TrimSpace(f.Title)
	return check(trimmed, taskLabels, nil)
}

// Submit builds the task. New tasks have no id and start PENDING; edits
// keep the original id, status and project.
func (f *TaskForm) Submit() (models.Task, error) {
	if err := f.Validate(); err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		Title:       strings.TrimSpace(f.Title),
		Description: f.Description,
		Priority:    f.Priority,
		Status:      models.StatusPending,
		ProjectID:   f.projectID,
	}
	if task.Priority == "" {
		task.Priority = models.PriorityNone
	}
	if f.initial != nil {
		task.ID = f.initial.ID
		task.Status = f.initial.Status
		task.ProjectID = f.initial.ProjectID
	}

	due, err := f.dueInstant()
	if err != nil {
		return models.Task{}, err
	}
	task.DueDate = due
	return task, nil
}

// dueInstant combines date and time in the form's zone. A time without a
// date is ignored.
func (f *TaskForm) dueInstant() (*time.Time, error) {
	if f.DueDate == "" {
		return nil, nil
	}
	if f.initial != nil && f.initial.DueDate != nil && f.DueDate == f.shownDate && f.DueTime == f.shownTime {
		due := *f.initial.DueDate
		return &due, nil
	}
	slot := f.DueTime
	if slot == "" {
		slot = "00:00"
	}
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", f.DueDate+" "+slot, loc)
	if err != nil {
		return nil, FieldErrors{"dueDate": "Use the YYYY-MM-DD format"}
	}
	return &t, nil
}

// CyclePriority moves to the next priority, wrapping after Critical
func (f *TaskForm) CyclePriority(delta int) {
	n := len(models.Priorities)
	i := f.Priority.Rank()
	if i < 0 {
		i = 0
	}
	f.Priority = models.Priorities[((i+delta)%n+n)%n]
}

// CycleTime moves the due time through the slots. The first step from an
// empty time selects 00:00 or 23:30; stepping past either end clears it.
func (f *TaskForm) CycleTime(delta int) {
	slots := TimeSlots()
	i := -1
	for j, s := range slots {
		if s == f.DueTime {
			i = j
			break
		}
	}
	switch {
	case i < 0 && delta > 0:
		f.DueTime = slots[0]
	case i < 0:
		f.DueTime = slots[len(slots)-1]
	case i+delta < 0 || i+delta >= len(slots):
		f.DueTime = ""
	default:
		f.DueTime = slots[i+delta]
	}
}
