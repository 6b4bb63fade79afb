package views

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskdeck/internal/forms"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/notify"
	"github.com/tgienger/taskdeck/internal/ui/keys"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

// projectItem is a row in the project list. The dashboard row has no project.
type projectItem struct {
	project   models.Project
	dashboard bool
}

func (i projectItem) Title() string {
	if i.dashboard {
		return "Dashboard"
	}
	return i.project.Name
}

func (i projectItem) Description() string {
	if i.dashboard {
		return "All tasks"
	}
	return i.project.Description
}

func (i projectItem) FilterValue() string { return i.Title() }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	dot := "⌂"
	if !p.dashboard {
		dot = styles.Swatch(p.project.DisplayColor())
	}
	title := titleStyle.Render(dot + " " + p.Title())
	desc := descStyle.Render(p.Description())

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

type projectsLoadedMsg struct {
	projects []models.Project
	err      error
}

// ProjectListView is the project sidebar: a dashboard entry followed by the
// user's projects
type ProjectListView struct {
	deps     Deps
	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	loaded   bool
	failed   bool
	count    int

	form             *projectForm
	confirmingDelete bool
	deleteTarget     models.Project

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

func NewProjectListView(deps Deps) *ProjectListView {
	s := styles.NewStyles()

	// Setup custom delegate
	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{projectItem{dashboard: true}}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		deps:     deps,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	return v.loadProjects
}

func (v *ProjectListView) loadProjects() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), v.deps.Timeout)
	defer cancel()
	projects, err := v.deps.Gateway.ListProjects(ctx)
	return projectsLoadedMsg{projects: projects, err: err}
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		// Use content width (capped at MaxWidth) for internal layout
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case projectsLoadedMsg:
		v.loaded = true
		if msg.err != nil {
			v.failed = true
			if v.deps.Logger != nil {
				v.deps.Logger.WithError(msg.err).Error("load projects")
			}
			return v, notice(notify.NewError(notify.ProjectsLoadFailed))
		}
		v.failed = false
		v.count = len(msg.projects)
		items := make([]list.Item, 0, len(msg.projects)+1)
		items = append(items, projectItem{dashboard: true})
		for _, p := range msg.projects {
			items = append(items, projectItem{project: p})
		}
		return v, v.list.SetItems(items)

	case projectSavedMsg:
		if v.form == nil {
			return v, nil
		}
		cmd := v.form.saved(msg)
		if msg.Err != nil || msg.Project == nil {
			return v, cmd
		}
		v.form = nil
		if msg.Created {
			return v, tea.Batch(cmd, navigate(OpenProject{ID: msg.Project.ID}))
		}
		return v, tea.Batch(cmd, v.loadProjects)

	case projectDeletedMsg:
		if !msg.OK || msg.Err != nil {
			if msg.Err != nil && v.deps.Logger != nil {
				v.deps.Logger.WithError(msg.Err).WithField("project", msg.ID).Error("delete project")
			}
			return v, notice(notify.NewError(notify.ProjectDeleteFailed))
		}
		return v, tea.Batch(notice(notify.NewSuccess(notify.ProjectDeleted)), v.loadProjects)

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.form != nil {
			closed, cmd := v.form.update(msg, v.deps.Gateway, v.deps.Timeout)
			if closed {
				v.form = nil
			}
			return v, cmd
		}

		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, navigate(ShowDashboard{})
		case key.Matches(msg, v.keys.New):
			v.form = newProjectForm(forms.NewProjectForm(), v.styles)
			return v, v.form.inputs[0].Focus()
		case key.Matches(msg, v.keys.Edit):
			if item, ok := v.list.SelectedItem().(projectItem); ok && !item.dashboard {
				v.form = newProjectForm(forms.EditProjectForm(item.project), v.styles)
				return v, v.form.inputs[0].Focus()
			}
			return v, nil
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Profile):
			return v, navigate(ShowProfile{})
		case key.Matches(msg, v.keys.Logout):
			return v, navigate(Logout{})
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				if item.dashboard {
					return v, navigate(ShowDashboard{})
				}
				return v, navigate(OpenProject{ID: item.project.ID})
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok && !item.dashboard {
				v.confirmingDelete = true
				v.deleteTarget = item.project
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		return v, deleteProject(v.deps.Gateway, v.deps.Timeout, v.deleteTarget.ID)
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

// View renders the view
func (v *ProjectListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return renderProjectDeleteConfirm(v.styles, v.deleteTarget.Name, v.width, v.height)
	}

	if v.form != nil {
		return v.form.view(v.width, v.height)
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	content := v.list.View()
	switch {
	case v.failed:
		content += "\n" + v.styles.FieldError.Render("Failed to load Projects :(")
	case v.count == 0:
		content += "\n" + v.renderEmpty()
	}
	content += "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	return lipgloss.JoinVertical(lipgloss.Left,
		s.TitleMuted.Render("No projects yet"),
		s.TitleMuted.Render("Press 'n' to create your first project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)
}

func (v *ProjectListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s edit • %s del • %s dashboard • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *ProjectListView) renderHelpPopup() string {
	s := v.styles

	helpItems := []string{
		s.HelpKey.Render("↵") + "      open project",
		s.HelpKey.Render("n") + "      new project",
		s.HelpKey.Render("e") + "      edit project",
		s.HelpKey.Render("d") + "      delete project",
		s.HelpKey.Render("/") + "      filter",
		s.HelpKey.Render("u") + "      profile",
		s.HelpKey.Render("esc") + "    dashboard",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)
	return centered(s.Popup.Render(content), v.width, v.height)
}
