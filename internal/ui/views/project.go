package views

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/forms"
	"github.com/tgienger/taskdeck/internal/gateway"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/notify"
	"github.com/tgienger/taskdeck/internal/ui/keys"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

type projectLoadedMsg struct {
	id      string
	project *models.Project
	err     error
}

// ProjectView shows one project and its tasks
type ProjectView struct {
	deps    Deps
	id      string
	project *models.Project
	loading bool
	missing bool
	failed  bool
	tasks   *TaskListView
	styles  *styles.Styles
	keys    keys.KeyMap
	width   int
	height  int

	form             *projectForm
	confirmingDelete bool
}

func NewProjectView(deps Deps, id string) *ProjectView {
	tasks := NewTaskListView(deps, models.ProjectScope(id), "Tasks")
	tasks.SetEmpty("No tasks in this project yet.")
	tasks.SetBack(ShowProjects{})
	return &ProjectView{
		deps:    deps,
		id:      id,
		loading: true,
		tasks:   tasks,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
	}
}

// ID is the project this view was opened for
func (v *ProjectView) ID() string { return v.id }

func (v *ProjectView) Init() tea.Cmd {
	return tea.Batch(v.load(), v.tasks.Init())
}

func (v *ProjectView) load() tea.Cmd {
	gw, id, timeout := v.deps.Gateway, v.id, v.deps.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		p, err := gw.GetProject(ctx, id)
		return projectLoadedMsg{id: id, project: p, err: err}
	}
}

func (v *ProjectView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		_, cmd := v.tasks.Update(tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-4, 0)})
		return v, cmd

	case projectLoadedMsg:
		if msg.id != v.id {
			return v, nil
		}
		v.loading = false
		switch {
		case errors.Is(msg.err, gateway.ErrNotFound):
			v.missing = true
			if v.deps.Settings != nil {
				_ = v.deps.Settings.SetSetting(db.KeyLastProjectID, "")
			}
		case msg.err != nil:
			v.failed = true
			if v.deps.Logger != nil {
				v.deps.Logger.WithError(msg.err).WithField("project", v.id).Error("load project")
			}
		default:
			v.project = msg.project
			v.tasks.SetHeading(msg.project.Name)
		}
		return v, nil

	case projectSavedMsg:
		if v.form == nil {
			return v, nil
		}
		cmd := v.form.saved(msg)
		if msg.Err == nil && msg.Project != nil {
			v.form = nil
			v.project = msg.Project
			v.tasks.SetHeading(msg.Project.Name)
		}
		return v, cmd

	case projectDeletedMsg:
		if msg.ID != v.id {
			return v, nil
		}
		if !msg.OK || msg.Err != nil {
			if msg.Err != nil && v.deps.Logger != nil {
				v.deps.Logger.WithError(msg.Err).WithField("project", msg.ID).Error("delete project")
			}
			return v, notice(notify.NewError(notify.ProjectDeleteFailed))
		}
		if v.deps.Settings != nil {
			_ = v.deps.Settings.SetSetting(db.KeyLastProjectID, "")
		}
		return v, tea.Batch(notice(notify.NewSuccess(notify.ProjectDeleted)), navigate(ShowDashboard{}))

	case tea.KeyMsg:
		if v.confirmingDelete {
			switch msg.String() {
			case "y", "Y":
				v.confirmingDelete = false
				return v, deleteProject(v.deps.Gateway, v.deps.Timeout, v.id)
			case "n", "N", "esc":
				v.confirmingDelete = false
			}
			return v, nil
		}
		if v.form != nil {
			closed, cmd := v.form.update(msg, v.deps.Gateway, v.deps.Timeout)
			if closed {
				v.form = nil
			}
			return v, cmd
		}
		if v.missing || v.failed {
			switch {
			case key.Matches(msg, v.keys.Quit):
				return v, tea.Quit
			case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
				return v, navigate(ShowProjects{})
			}
			return v, nil
		}
		if v.project != nil && !v.tasks.Overlay() {
			switch {
			case key.Matches(msg, v.keys.EditProject):
				v.form = newProjectForm(forms.EditProjectForm(*v.project), v.styles)
				return v, v.form.inputs[0].Focus()
			case key.Matches(msg, v.keys.DeleteProject):
				v.confirmingDelete = true
				return v, nil
			}
		}
	}

	_, cmd := v.tasks.Update(msg)
	return v, cmd
}

func (v *ProjectView) View() string {
	s := v.styles
	switch {
	case v.confirmingDelete && v.project != nil:
		return renderProjectDeleteConfirm(s, v.project.Name, v.width, v.height)
	case v.form != nil:
		return v.form.view(v.width, v.height)
	case v.missing:
		return centered(lipgloss.JoinVertical(lipgloss.Center,
			s.Title.Render("Project not found"),
			"",
			s.TitleMuted.Render("Press esc to go back to your projects"),
		), v.width, v.height)
	case v.failed:
		return centered(lipgloss.JoinVertical(lipgloss.Center,
			s.FieldError.Render("Failed to load project"),
			"",
			s.TitleMuted.Render("Press esc to go back to your projects"),
		), v.width, v.height)
	case v.loading:
		return s.TitleMuted.Render("Loading...")
	}

	if v.tasks.Overlay() {
		return v.tasks.View()
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.Swatch(v.project.DisplayColor()), " ",
		s.Title.Render(v.project.Name),
	)
	desc := s.TitleMuted.Render(v.project.Description)
	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		desc,
		"",
		v.tasks.Body(),
		"",
		s.Help.Render(s.HelpKey.Render("E")+" edit project • "+s.HelpKey.Render("D")+" delete project • "+s.HelpKey.Render("esc")+" projects • "+s.HelpKey.Render("?")+" help"),
	)
	return styles.CenterView(content, v.width, v.height)
}
