package views

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskdeck/internal/forms"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/notify"
	"github.com/tgienger/taskdeck/internal/ui/keys"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

type profileLoadedMsg struct {
	user *models.User
	err  error
}

type profileSavedMsg struct {
	user models.User
	ok   bool
	err  error
}

var profileFields = []struct{ name, label string }{
	{"firstName", "First name"},
	{"lastName", "Last name"},
	{"email", "Email"},
	{"bio", "Bio"},
}

// ProfileView shows the current user and edits name, email and bio
type ProfileView struct {
	deps    Deps
	user    *models.User
	loading bool
	failed  bool
	styles  *styles.Styles
	keys    keys.KeyMap
	width   int
	height  int

	editing bool
	saving  bool
	form    *forms.ProfileForm
	inputs  []textinput.Model
	focus   int
	errors  forms.FieldErrors
}

func NewProfileView(deps Deps) *ProfileView {
	return &ProfileView{
		deps:    deps,
		loading: true,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
	}
}

func (v *ProfileView) Init() tea.Cmd {
	gw, timeout := v.deps.Gateway, v.deps.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		u, err := gw.CurrentUser(ctx)
		return profileLoadedMsg{user: u, err: err}
	}
}

func (v *ProfileView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case profileLoadedMsg:
		v.loading = false
		if msg.err != nil || msg.user == nil {
			v.failed = true
			if msg.err != nil && v.deps.Logger != nil {
				v.deps.Logger.WithError(msg.err).Error("load profile")
			}
			return v, notice(notify.NewError(notify.ProfileLoadFailed))
		}
		v.user = msg.user
		return v, nil

	case profileSavedMsg:
		v.saving = false
		if !msg.ok || msg.err != nil {
			if msg.err != nil && v.deps.Logger != nil {
				v.deps.Logger.WithError(msg.err).Error("update profile")
			}
			return v, notice(notify.NewError(notify.ProfileUpdateFailed))
		}
		v.editing = false
		u := msg.user
		v.user = &u
		if v.deps.Session != nil {
			v.deps.Session.SetUser(&u)
		}
		return v, notice(notify.NewSuccess(notify.ProfileUpdated))

	case tea.KeyMsg:
		if v.editing {
			return v.updateEditing(msg)
		}
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, navigate(ShowDashboard{})
		case key.Matches(msg, v.keys.Projects):
			return v, navigate(ShowProjects{})
		case key.Matches(msg, v.keys.Logout):
			return v, navigate(Logout{})
		case key.Matches(msg, v.keys.Edit):
			if v.user != nil {
				return v, v.startEdit()
			}
		}
	}
	return v, nil
}

func (v *ProfileView) startEdit() tea.Cmd {
	u := *v.user
	v.form = forms.NewProfileForm(u)
	values := []string{u.FirstName, u.LastName, u.Email, u.Bio}
	v.inputs = make([]textinput.Model, len(profileFields))
	for i, f := range profileFields {
		v.inputs[i] = newInput(f.label, 200)
		v.inputs[i].SetValue(values[i])
	}
	v.errors = nil
	v.focus = 0
	v.editing = true
	return focusOnly(v.inputs, 0)
}

func (v *ProfileView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.saving {
		return v, nil
	}
	fields := len(v.inputs) + 1
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil
	case key.Matches(msg, v.keys.Tab):
		v.focus = (v.focus + 1) % fields
		return v, focusOnly(v.inputs, v.focus)
	case key.Matches(msg, v.keys.ShiftTab):
		v.focus = (v.focus + fields - 1) % fields
		return v, focusOnly(v.inputs, v.focus)
	case key.Matches(msg, v.keys.Save):
		return v, v.save()
	case key.Matches(msg, v.keys.Enter):
		if v.focus == len(v.inputs) {
			return v, v.save()
		}
		v.focus++
		return v, focusOnly(v.inputs, v.focus)
	}

	if v.focus >= len(v.inputs) {
		return v, nil
	}
	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	delete(v.errors, profileFields[v.focus].name)
	return v, cmd
}

func (v *ProfileView) save() tea.Cmd {
	v.form.FirstName = v.inputs[0].Value()
	v.form.LastName = v.inputs[1].Value()
	v.form.Email = v.inputs[2].Value()
	v.form.Bio = v.inputs[3].Value()

	patch, err := v.form.Patch()
	if err != nil {
		var fe forms.FieldErrors
		if errors.As(err, &fe) {
			v.errors = fe
		}
		return nil
	}
	if patch.Empty() {
		v.editing = false
		return nil
	}

	v.saving = true
	updated := *v.user
	patch.Apply(&updated)
	gw, timeout := v.deps.Gateway, v.deps.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		ok, err := gw.UpdateUser(ctx, patch)
		return profileSavedMsg{user: updated, ok: ok, err: err}
	}
}

func (v *ProfileView) View() string {
	s := v.styles
	switch {
	case v.loading:
		return s.TitleMuted.Render("Loading...")
	case v.failed:
		return centered(lipgloss.JoinVertical(lipgloss.Center,
			s.FieldError.Render("Failed to load profile"),
			"",
			s.TitleMuted.Render("Press esc to go back"),
		), v.width, v.height)
	case v.editing:
		return v.renderEdit()
	}

	u := v.user
	row := func(label, value string) string {
		if value == "" {
			value = "-"
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, s.Label.Width(14).Render(label), value)
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(u.DisplayName()),
		s.TitleMuted.Render("@"+u.Username),
		"",
		row("Email", u.Email),
		row("First name", u.FirstName),
		row("Last name", u.LastName),
		row("Bio", u.Bio),
		row("Avatar", u.Avatar),
		row("Member since", u.CreatedAt.Local().Format("January 2, 2006")),
		"",
		s.Help.Render(s.HelpKey.Render("e")+" edit • "+s.HelpKey.Render("esc")+" dashboard • "+s.HelpKey.Render("ctrl+l")+" log out"),
	)
	return centered(content, v.width, v.height)
}

func (v *ProfileView) renderEdit() string {
	s := v.styles
	width := clamp(styles.ContentWidth(v.width)-10, 20, 50)
	rows := []string{s.Title.Render("Edit Profile"), ""}
	for i, f := range profileFields {
		rows = append(rows, field(s, f.label, v.inputs[i], v.focus == i, width, v.errors[f.name]))
	}
	label := "Save"
	if v.saving {
		label = "Saving..."
	}
	rows = append(rows,
		"",
		button(s, label, v.focus == len(v.inputs)),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)
	return centered(s.Popup.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)), v.width, v.height)
}
