package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/forms"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/tasks"
	"github.com/tgienger/taskdeck/internal/ui/keys"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

// TaskListView renders a TaskList as a column of cards with the task form
// and delete confirmation as overlays
type TaskListView struct {
	deps   Deps
	list   *tasks.TaskList
	styles *styles.Styles
	keys   keys.KeyMap

	heading string
	empty   string
	back    tea.Msg // sent on esc; nil means esc does nothing

	width  int
	height int

	cursor  int
	scrollY int

	form             *taskForm
	confirmingDelete bool
	deleteTarget     models.Task

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewTaskListView creates a grid for scope. The stored sort key is applied
// when present.
func NewTaskListView(deps Deps, scope models.Scope, heading string) *TaskListView {
	sortKey := models.SortByDueDate
	if deps.Settings != nil {
		if stored, err := deps.Settings.GetSetting(db.KeySortKey); err == nil && stored != "" {
			if k, err := models.ParseSortKey(stored); err == nil {
				sortKey = k
			}
		}
	}
	list := tasks.NewTaskList(deps.Gateway, scope, tasks.Options{
		Timeout: deps.Timeout,
		Sort:    deps.Sort,
		SortKey: sortKey,
		Logger:  deps.Logger,
	})
	return &TaskListView{
		deps:    deps,
		list:    list,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
		heading: heading,
		empty:   "No Tasks Found. Create One!",
	}
}

// SetBack sets the message sent when esc is pressed
func (v *TaskListView) SetBack(msg tea.Msg) { v.back = msg }

// SetEmpty sets the text shown when the list has no tasks
func (v *TaskListView) SetEmpty(text string) { v.empty = text }

func (v *TaskListView) SetHeading(h string) { v.heading = h }

// List exposes the view-model
func (v *TaskListView) List() *tasks.TaskList { return v.list }

// Overlay reports whether the form or a confirmation is open
func (v *TaskListView) Overlay() bool {
	return v.form != nil || v.confirmingDelete || v.showHelpPopup
}

func (v *TaskListView) Init() tea.Cmd {
	return v.list.Load()
}

func (v *TaskListView) now() time.Time {
	if v.deps.Now != nil {
		return v.deps.Now()
	}
	return time.Now()
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		if v.form != nil {
			v.form.setWidth(clamp(styles.ContentWidth(v.width)-10, 20, 50))
		}
		return v, nil

	case tasks.LoadedMsg, tasks.CreatedMsg, tasks.DeletedMsg, tasks.UpdatedMsg:
		cmd := v.list.Update(msg)
		v.clampCursor()
		return v, cmd

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
			return v.updateForm(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sorted := v.list.Sorted()

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		if v.back != nil {
			return v, navigate(v.back)
		}
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(sorted)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		return v, v.openForm(v.newForm())

	case key.Matches(msg, v.keys.Edit), key.Matches(msg, v.keys.Enter):
		if len(sorted) == 0 {
			return v, nil
		}
		t := sorted[v.cursor]
		if !v.list.StartEdit(t.ID) {
			return v, nil
		}
		return v, v.openForm(forms.EditTaskForm(t, time.Local))

	case key.Matches(msg, v.keys.Delete):
		if len(sorted) > 0 {
			v.confirmingDelete = true
			v.deleteTarget = sorted[v.cursor]
		}
		return v, nil

	case key.Matches(msg, v.keys.Status):
		if len(sorted) > 0 {
			return v, v.list.CycleStatus(sorted[v.cursor].ID)
		}
		return v, nil

	case key.Matches(msg, v.keys.Sort):
		next := v.list.SortKey().Next()
		v.list.SetSortKey(next)
		v.cursor, v.scrollY = 0, 0
		if v.deps.Settings != nil {
			if err := v.deps.Settings.SetSetting(db.KeySortKey, string(next)); err != nil && v.deps.Logger != nil {
				v.deps.Logger.WithError(err).Warn("persist sort key")
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.list.Load()

	case key.Matches(msg, v.keys.Projects):
		return v, navigate(ShowProjects{})

	case key.Matches(msg, v.keys.Profile):
		return v, navigate(ShowProfile{})

	case key.Matches(msg, v.keys.Logout):
		return v, navigate(Logout{})

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) newForm() *forms.TaskForm {
	scope := v.list.Scope()
	if scope.IsAll() {
		return forms.NewTaskForm()
	}
	return forms.NewProjectTaskForm(scope.ProjectID)
}

func (v *TaskListView) openForm(f *forms.TaskForm) tea.Cmd {
	v.form = newTaskForm(f, v.styles)
	v.form.setWidth(clamp(styles.ContentWidth(v.width)-10, 20, 50))
	return v.form.updateFocus()
}

func (v *TaskListView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	done, cmd := v.form.update(msg)
	if done == nil {
		return v, cmd
	}
	editing := v.form.form.Editing()
	v.form = nil
	if done.submitted == nil {
		v.list.CancelEdit()
		return v, nil
	}
	if editing {
		return v, v.list.UpdateTask(*done.submitted)
	}
	return v, v.list.CreateTask(*done.submitted)
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		cmd := v.list.DeleteTask(v.deleteTarget.ID)
		v.clampCursor()
		return v, cmd
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) clampCursor() {
	if n := v.list.Len(); v.cursor >= n {
		v.cursor = max(0, n-1)
	}
	v.ensureVisible()
}

// each card is 4 lines plus a margin line
const cardHeight = 5

func (v *TaskListView) visibleCards() int {
	return max((v.height-8)/cardHeight, 1)
}

func (v *TaskListView) ensureVisible() {
	visible := v.visibleCards()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.form != nil {
		return v.form.view(v.width, v.height)
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderCards())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())
	return styles.CenterView(b.String(), v.width, v.height)
}

// Body renders the header and cards without centering, for embedding
func (v *TaskListView) Body() string {
	return v.renderHeader() + "\n\n" + v.renderCards()
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	sortBtn := s.Button.Render("Sort: " + v.list.SortKey().Label() + " ▼")
	title := s.Title.Render(v.heading)
	count := s.TitleMuted.Render(fmt.Sprintf("%d tasks", v.list.Len()))
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", count),
		sortBtn,
	)
}

func (v *TaskListView) renderCards() string {
	s := v.styles
	if v.list.Loading() && v.list.Len() == 0 {
		return s.TitleMuted.Render("Loading Tasks...")
	}
	sorted := v.list.Sorted()
	if len(sorted) == 0 {
		return s.TitleMuted.Render(v.empty)
	}

	end := min(v.scrollY+v.visibleCards(), len(sorted))
	var cards []string
	for i := v.scrollY; i < end; i++ {
		cards = append(cards, v.renderCard(sorted[i], i == v.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (v *TaskListView) renderCard(t models.Task, selected bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-6, 20)

	cardStyle := s.Card
	if selected {
		cardStyle = s.CardSelected
	}
	cardStyle = cardStyle.BorderForeground(lipgloss.Color(tasks.PriorityColor(t.Priority))).Width(width)

	titleStyle := s.TaskTitle
	if t.Status == models.StatusCompleted {
		titleStyle = s.Completed
	}
	badge := s.Badge.Background(lipgloss.Color(tasks.PriorityColor(t.Priority))).Render(string(t.Priority))
	top := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render(tasks.Truncate(t.Title, tasks.MaxTitleLength)), "  ", badge,
	)

	desc := s.TaskDesc.Render(tasks.Truncate(t.Description, tasks.MaxDescriptionLength))
	meta := s.TitleMuted.Render(t.Status.Label() + " • " + tasks.TimeLeft(t.DueDate, v.now()))

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, top, desc, meta))
}

func (v *TaskListView) renderHelp() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 60 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	k := v.keys
	return shortHelp(s, k.New, k.Edit, k.Delete, k.Status, k.Sort, k.Projects, k.Quit)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles

	helpItems := []string{
		s.HelpKey.Render("↑/↓") + "      move",
		s.HelpKey.Render("n") + "        new task",
		s.HelpKey.Render("e/↵") + "      edit task",
		s.HelpKey.Render("d") + "        delete task",
		s.HelpKey.Render("space") + "    cycle status",
		s.HelpKey.Render("s") + "        change sort",
		s.HelpKey.Render("r") + "        refresh",
		s.HelpKey.Render("p") + "        projects",
		s.HelpKey.Render("u") + "        profile",
		s.HelpKey.Render("ctrl+l") + "   log out",
		s.HelpKey.Render("q") + "        quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)
	return centered(s.Popup.Render(content), v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q will be removed.", tasks.Truncate(v.deleteTarget.Title, tasks.MaxTitleLength))),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	return centered(content, v.width, v.height)
}
