package views

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskdeck/internal/forms"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/tasks"
	"github.com/tgienger/taskdeck/internal/ui/keys"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

// focus order inside the task form
const (
	taskFocusTitle = iota
	taskFocusDesc
	taskFocusPriority
	taskFocusDate
	taskFocusTime
	taskFocusSave
	taskFocusCount
)

// taskFormDone is returned by taskForm.update when the overlay should close.
// submitted is nil on cancel.
type taskFormDone struct {
	submitted *models.Task
}

// taskForm is the create/edit overlay on top of a task grid
type taskForm struct {
	form   *forms.TaskForm
	title  textinput.Model
	desc   textarea.Model
	date   textinput.Model
	focus  int
	errors forms.FieldErrors
	styles *styles.Styles
	keys   keys.KeyMap
}

func newTaskForm(f *forms.TaskForm, s *styles.Styles) *taskForm {
	title := newInput("Task title", 200)
	title.SetValue(f.Title)

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 1000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false
	desc.SetValue(f.Description)

	date := newInput("YYYY-MM-DD", 10)
	date.SetValue(f.DueDate)

	tf := &taskForm{
		form:   f,
		title:  title,
		desc:   desc,
		date:   date,
		styles: s,
		keys:   keys.DefaultKeyMap(),
	}
	tf.updateFocus()
	return tf
}

func (f *taskForm) setWidth(w int) {
	f.desc.SetWidth(w)
}

func (f *taskForm) updateFocus() tea.Cmd {
	f.title.Blur()
	f.desc.Blur()
	f.date.Blur()
	switch f.focus {
	case taskFocusTitle:
		return f.title.Focus()
	case taskFocusDesc:
		return f.desc.Focus()
	case taskFocusDate:
		return f.date.Focus()
	}
	return nil
}

func (f *taskForm) sync() {
	f.form.Title = f.title.Value()
	f.form.Description = f.desc.Value()
	f.form.DueDate = f.date.Value()
}

// update handles a key. A non-nil done means the overlay closes.
func (f *taskForm) update(msg tea.KeyMsg) (*taskFormDone, tea.Cmd) {
	switch {
	case key.Matches(msg, f.keys.Back):
		return &taskFormDone{}, nil

	case key.Matches(msg, f.keys.Save):
		return f.submit()

	case key.Matches(msg, f.keys.Tab):
		f.focus = (f.focus + 1) % taskFocusCount
		return nil, f.updateFocus()

	case key.Matches(msg, f.keys.ShiftTab):
		f.focus = (f.focus + taskFocusCount - 1) % taskFocusCount
		return nil, f.updateFocus()

	case key.Matches(msg, f.keys.Enter):
		switch f.focus {
		case taskFocusSave:
			return f.submit()
		case taskFocusDesc:
			// newline in the textarea
		default:
			f.focus++
			return nil, f.updateFocus()
		}

	case msg.String() == "left", msg.String() == "right":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		switch f.focus {
		case taskFocusPriority:
			f.form.CyclePriority(delta)
			return nil, nil
		case taskFocusTime:
			f.form.CycleTime(delta)
			delete(f.errors, "dueTime")
			return nil, nil
		}
	}

	var cmd tea.Cmd
	switch f.focus {
	case taskFocusTitle:
		f.title, cmd = f.title.Update(msg)
		delete(f.errors, "title")
	case taskFocusDesc:
		f.desc, cmd = f.desc.Update(msg)
	case taskFocusDate:
		f.date, cmd = f.date.Update(msg)
		delete(f.errors, "dueDate")
	}
	return nil, cmd
}

func (f *taskForm) submit() (*taskFormDone, tea.Cmd) {
	f.sync()
	task, err := f.form.Submit()
	if err != nil {
		var fe forms.FieldErrors
		if errors.As(err, &fe) {
			f.errors = fe
		} else {
			f.errors = forms.FieldErrors{"title": err.Error()}
		}
		return nil, nil
	}
	return &taskFormDone{submitted: &task}, nil
}

func (f *taskForm) view(width, height int) string {
	s := f.styles
	inputWidth := clamp(styles.ContentWidth(width)-10, 20, 50)

	descStyle := s.Input
	if f.focus == taskFocusDesc {
		descStyle = s.InputFocused
	}

	priority := f.form.Priority
	priorityLine := lipgloss.JoinHorizontal(lipgloss.Center,
		"◀ ",
		s.Badge.Background(lipgloss.Color(tasks.PriorityColor(priority))).Render(string(priority)),
		" ▶",
	)
	if f.focus == taskFocusPriority {
		priorityLine = s.InputFocused.Render(priorityLine)
	} else {
		priorityLine = s.Input.Render(priorityLine)
	}

	slot := f.form.DueTime
	if slot == "" {
		slot = "--:--"
	}
	timeLine := "◀ " + slot + " ▶"
	if f.focus == taskFocusTime {
		timeLine = s.InputFocused.Render(timeLine)
	} else {
		timeLine = s.Input.Render(timeLine)
	}

	rows := []string{
		s.Title.Render(f.form.Heading()),
		"",
		field(s, "Title", f.title, f.focus == taskFocusTitle, inputWidth, f.errors["title"]),
		s.Label.Render("Description"),
		descStyle.Render(f.desc.View()),
		s.Label.Render("Priority"),
		priorityLine,
		field(s, "Due date", f.date, f.focus == taskFocusDate, inputWidth, f.errors["dueDate"]),
		s.Label.Render("Due time"),
		timeLine,
	}
	if msg := f.errors["dueTime"]; msg != "" {
		rows = append(rows, s.FieldError.Render(msg))
	}
	rows = append(rows,
		"",
		button(s, f.form.SubmitLabel(), f.focus == taskFocusSave),
		"",
		s.TitleMuted.Render("Tab: next • ←/→: change • Ctrl+S: save • Esc: cancel"),
	)
	return centered(s.Popup.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)), width, height)
}
