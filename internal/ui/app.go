package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/notify"
	"github.com/tgienger/taskdeck/internal/tasks"
	"github.com/tgienger/taskdeck/internal/ui/styles"
	"github.com/tgienger/taskdeck/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewLoading View = iota
	ViewLogin
	ViewRegister
	ViewDashboard
	ViewProjects
	ViewProject
	ViewProfile
)

var viewNames = map[View]string{
	ViewLoading:   "Loading",
	ViewLogin:     "Login",
	ViewRegister:  "Register",
	ViewDashboard: "Dashboard",
	ViewProjects:  "Projects",
	ViewProject:   "Project",
	ViewProfile:   "Profile",
}

func (v View) String() string { return viewNames[v] }

type rehydratedMsg struct{ err error }

type loggedOutMsg struct{ err error }

type App struct {
	deps        views.Deps
	currentView View

	login     *views.LoginView
	register  *views.RegisterView
	dashboard *views.TaskListView
	projects  *views.ProjectListView
	project   *views.ProjectView
	profile   *views.ProfileView

	toast    *notify.Notice
	toastSeq int

	styles *styles.Styles
	width  int
	height int
}

// Creates a new application
func NewApp(deps views.Deps) *App {
	return &App{
		deps:        deps,
		currentView: ViewLoading,
		styles:      styles.NewStyles(),
	}
}

// CurrentView reports which screen is showing
func (a *App) CurrentView() View { return a.currentView }

// Toast returns the notice on screen, or nil
func (a *App) Toast() *notify.Notice { return a.toast }

func (a *App) Init() tea.Cmd {
	store, timeout := a.deps.Session, a.deps.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return rehydratedMsg{err: store.Rehydrate(ctx)}
	}
}

// resize replays the window size to a freshly built view
func (a *App) resize() tea.Cmd {
	w, h := a.width, a.height
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: w, Height: h}
	}
}

func (a *App) showLogin() tea.Cmd {
	a.currentView = ViewLogin
	a.login = views.NewLoginView(a.deps)
	a.dashboard, a.projects, a.project, a.profile = nil, nil, nil, nil
	return tea.Batch(a.login.Init(), a.resize())
}

func (a *App) showDashboard() tea.Cmd {
	a.currentView = ViewDashboard
	a.setLastProject("")
	if a.dashboard != nil {
		return tea.Batch(a.dashboard.List().Load(), a.resize())
	}
	a.dashboard = views.NewTaskListView(a.deps, models.AllTasks, "Dashboard")
	return tea.Batch(a.dashboard.Init(), a.resize())
}

func (a *App) openProject(id string) tea.Cmd {
	a.currentView = ViewProject
	a.project = views.NewProjectView(a.deps, id)

	// Save as last opened project
	a.setLastProject(id)

	return tea.Batch(a.project.Init(), a.resize())
}

func (a *App) setLastProject(id string) {
	if a.deps.Settings == nil {
		return
	}
	if err := a.deps.Settings.SetSetting(db.KeyLastProjectID, id); err != nil && a.deps.Logger != nil {
		a.deps.Logger.WithError(err).Warn("persist last project")
	}
}

// afterLogin reopens the last project, or the dashboard
func (a *App) afterLogin() tea.Cmd {
	if a.deps.Settings != nil {
		if id, err := a.deps.Settings.GetSetting(db.KeyLastProjectID); err == nil && id != "" {
			return a.openProject(id)
		}
	}
	return a.showDashboard()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case rehydratedMsg:
		if msg.err != nil && a.deps.Logger != nil {
			a.deps.Logger.WithError(msg.err).Warn("rehydrate session")
		}
		if a.deps.Session.Authenticated() {
			return a, a.afterLogin()
		}
		return a, a.showLogin()

	case notify.Msg:
		n := msg.Notice
		a.toast = &n
		a.toastSeq++
		seq := a.toastSeq
		return a, tea.Tick(notify.Duration, func(time.Time) tea.Msg {
			return notify.ExpiredMsg{Seq: seq}
		})

	case notify.ExpiredMsg:
		if msg.Seq == a.toastSeq {
			a.toast = nil
		}
		return a, nil

	case views.ShowLogin:
		return a, a.showLogin()

	case views.ShowRegister:
		a.currentView = ViewRegister
		a.register = views.NewRegisterView(a.deps)
		return a, tea.Batch(a.register.Init(), a.resize())

	case views.ShowDashboard:
		return a, a.showDashboard()

	case views.ShowProjects:
		a.currentView = ViewProjects
		a.projects = views.NewProjectListView(a.deps)
		return a, tea.Batch(a.projects.Init(), a.resize())

	case views.OpenProject:
		return a, a.openProject(msg.ID)

	case views.ShowProfile:
		a.currentView = ViewProfile
		a.profile = views.NewProfileView(a.deps)
		return a, tea.Batch(a.profile.Init(), a.resize())

	case views.Logout:
		store, timeout := a.deps.Session, a.deps.Timeout
		return a, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return loggedOutMsg{err: store.Logout(ctx)}
		}

	case loggedOutMsg:
		if msg.err != nil && a.deps.Logger != nil {
			a.deps.Logger.WithError(msg.err).Warn("logout")
		}
		return a, tea.Batch(a.showLogin(), noticeCmd(notify.NewInfo(notify.LoggedOut)))

	case tasks.LoadedMsg, tasks.CreatedMsg, tasks.DeletedMsg, tasks.UpdatedMsg:
		// results reach the list that issued them even after navigating away
		var cmds []tea.Cmd
		if a.dashboard != nil {
			_, cmd := a.dashboard.Update(msg)
			cmds = append(cmds, cmd)
		}
		if a.project != nil {
			_, cmd := a.project.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	if m := a.active(); m != nil {
		_, cmd = m.Update(msg)
	}
	return a, cmd
}

func (a *App) active() tea.Model {
	switch {
	case a.currentView == ViewLogin && a.login != nil:
		return a.login
	case a.currentView == ViewRegister && a.register != nil:
		return a.register
	case a.currentView == ViewDashboard && a.dashboard != nil:
		return a.dashboard
	case a.currentView == ViewProjects && a.projects != nil:
		return a.projects
	case a.currentView == ViewProject && a.project != nil:
		return a.project
	case a.currentView == ViewProfile && a.profile != nil:
		return a.profile
	}
	return nil
}

func (a *App) View() string {
	var body string
	if m := a.active(); m != nil {
		body = m.View()
	} else {
		body = lipgloss.Place(max(a.width, 1), max(a.height, 1), lipgloss.Center, lipgloss.Center,
			a.styles.TitleMuted.Render("Loading..."))
	}
	return a.styles.App.Render(lipgloss.JoinVertical(lipgloss.Left, a.statusLine(), body))
}

// statusLine shows the toast when there is one, otherwise the app name, the
// screen and the signed-in user
func (a *App) statusLine() string {
	if a.toast != nil {
		return a.styles.Toast(a.toast.Level).Render(a.toast.Text)
	}
	status := a.currentView.String()
	if a.deps.Session != nil {
		if u := a.deps.Session.User(); u != nil {
			status += " • @" + u.Username
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		a.styles.TitleBar.Render("taskdeck"),
		a.styles.StatusBar.Render(status),
	)
}

func noticeCmd(n notify.Notice) tea.Cmd {
	return func() tea.Msg { return notify.Msg{Notice: n} }
}
