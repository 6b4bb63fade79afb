package views

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskdeck/internal/forms"
	"github.com/tgienger/taskdeck/internal/gateway"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/notify"
	"github.com/tgienger/taskdeck/internal/ui/keys"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

const (
	projectFocusName = iota
	projectFocusDesc
	projectFocusColor
	projectFocusSave
	projectFocusCount
)

// projectSavedMsg carries the result of a create or update
type projectSavedMsg struct {
	Project *models.Project
	Created bool
	Err     error
}

// projectDeletedMsg carries the result of a delete
type projectDeletedMsg struct {
	ID  string
	OK  bool
	Err error
}

// projectForm is the create/edit overlay for projects
type projectForm struct {
	form   *forms.ProjectForm
	inputs []textinput.Model
	focus  int
	errors forms.FieldErrors
	saving bool
	styles *styles.Styles
	keys   keys.KeyMap
}

func newProjectForm(f *forms.ProjectForm, s *styles.Styles) *projectForm {
	name := newInput("Project name", 100)
	name.SetValue(f.Name)
	desc := newInput("Description (optional)", 200)
	desc.SetValue(f.Description)
	color := newInput(models.DefaultProjectColor, 7)
	color.SetValue(f.Color)

	pf := &projectForm{
		form:   f,
		inputs: []textinput.Model{name, desc, color},
		styles: s,
		keys:   keys.DefaultKeyMap(),
	}
	focusOnly(pf.inputs, 0)
	return pf
}

// update handles a key. It returns closed when the overlay should go away
// and the command to run.
func (f *projectForm) update(msg tea.KeyMsg, gw gateway.Gateway, timeout time.Duration) (closed bool, cmd tea.Cmd) {
	if f.saving {
		return false, nil
	}
	switch {
	case key.Matches(msg, f.keys.Back):
		return true, nil
	case key.Matches(msg, f.keys.Save):
		return false, f.submit(gw, timeout)
	case key.Matches(msg, f.keys.Tab):
		f.focus = (f.focus + 1) % projectFocusCount
		return false, focusOnly(f.inputs, f.focus)
	case key.Matches(msg, f.keys.ShiftTab):
		f.focus = (f.focus + projectFocusCount - 1) % projectFocusCount
		return false, focusOnly(f.inputs, f.focus)
	case key.Matches(msg, f.keys.Enter):
		if f.focus == projectFocusSave {
			return false, f.submit(gw, timeout)
		}
		f.focus++
		return false, focusOnly(f.inputs, f.focus)
	}

	if f.focus < len(f.inputs) {
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
		delete(f.errors, []string{"name", "description", "color"}[f.focus])
	}
	return false, cmd
}

func (f *projectForm) submit(gw gateway.Gateway, timeout time.Duration) tea.Cmd {
	f.form.Name = f.inputs[projectFocusName].Value()
	f.form.Description = f.inputs[projectFocusDesc].Value()
	f.form.Color = f.inputs[projectFocusColor].Value()

	p, err := f.form.Submit()
	if err != nil {
		var fe forms.FieldErrors
		if errors.As(err, &fe) {
			f.errors = fe
		}
		return nil
	}
	f.saving = true
	editing := f.form.Editing()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if editing {
			saved, err := gw.UpdateProject(ctx, p)
			return projectSavedMsg{Project: saved, Err: err}
		}
		saved, err := gw.CreateProject(ctx, p)
		return projectSavedMsg{Project: saved, Created: true, Err: err}
	}
}

// saved applies a save result and returns the notice to show
func (f *projectForm) saved(msg projectSavedMsg) tea.Cmd {
	f.saving = false
	switch {
	case msg.Err != nil || msg.Project == nil:
		return notice(notify.NewError(notify.ProjectSaveFailed))
	case msg.Created:
		return notice(notify.NewSuccess(notify.ProjectCreated))
	}
	return notice(notify.NewSuccess(notify.ProjectSaved))
}

func (f *projectForm) view(width, height int) string {
	s := f.styles
	inputWidth := clamp(styles.ContentWidth(width)-10, 20, 50)

	color := f.inputs[projectFocusColor].Value()
	if color == "" {
		color = models.FallbackProjectColor
	}

	label := "Create"
	if f.form.Editing() {
		label = "Save"
	}
	if f.saving {
		label = "Saving..."
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(f.form.Heading()),
		"",
		field(s, "Name", f.inputs[projectFocusName], f.focus == projectFocusName, inputWidth, f.errors["name"]),
		field(s, "Description", f.inputs[projectFocusDesc], f.focus == projectFocusDesc, inputWidth, f.errors["description"]),
		field(s, "Color "+styles.Swatch(color), f.inputs[projectFocusColor], f.focus == projectFocusColor, inputWidth, f.errors["color"]),
		"",
		button(s, label, f.focus == projectFocusSave),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)
	return centered(s.Popup.Render(content), width, height)
}

// deleteProject issues the gateway delete
func deleteProject(gw gateway.Gateway, timeout time.Duration, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		ok, err := gw.DeleteProject(ctx, id)
		return projectDeletedMsg{ID: id, OK: ok, Err: err}
	}
}

func renderProjectDeleteConfirm(s *styles.Styles, name string, width, height int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Project?"),
		"",
		s.TitleMuted.Render("Are you sure you want to delete \""+name+"\"?"),
		s.TitleMuted.Render("Its tasks are kept."),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	return centered(content, width, height)
}
