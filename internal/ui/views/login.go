package views

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskdeck/internal/forms"
	"github.com/tgienger/taskdeck/internal/ui/keys"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

const (
	loginUsername = iota
	loginPassword
	loginSubmit
	loginFields
)

// LoginView is the sign-in screen
type LoginView struct {
	deps   Deps
	form   *forms.LoginForm
	inputs []textinput.Model
	focus  int
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int
}

func NewLoginView(deps Deps) *LoginView {
	username := newInput("Username", 64)
	password := newInput("Password", 64)
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	v := &LoginView{
		deps:   deps,
		form:   forms.NewLoginForm(),
		inputs: []textinput.Model{username, password},
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
	focusOnly(v.inputs, 0)
	return v
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case forms.LoggedInMsg:
		ok, cmd := v.form.Done(msg)
		v.inputs[loginPassword].SetValue(v.form.Password)
		if ok {
			return v, tea.Batch(cmd, navigate(ShowDashboard{}))
		}
		v.focus = loginPassword
		return v, tea.Batch(cmd, focusOnly(v.inputs, v.focus))

	case tea.KeyMsg:
		if v.form.Loading() {
			return v, nil
		}
		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit
		case key.Matches(msg, v.keys.Register):
			return v, navigate(ShowRegister{})
		case key.Matches(msg, v.keys.Tab), key.Matches(msg, v.keys.Down):
			v.focus = (v.focus + 1) % loginFields
			return v, focusOnly(v.inputs, v.focus)
		case key.Matches(msg, v.keys.ShiftTab), key.Matches(msg, v.keys.Up):
			v.focus = (v.focus + loginFields - 1) % loginFields
			return v, focusOnly(v.inputs, v.focus)
		case key.Matches(msg, v.keys.Save):
			return v, v.submit()
		case key.Matches(msg, v.keys.Enter):
			if v.focus == loginSubmit || v.focus == loginPassword {
				return v, v.submit()
			}
			v.focus++
			return v, focusOnly(v.inputs, v.focus)
		}
	}

	if v.focus < len(v.inputs) {
		var cmd tea.Cmd
		v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *LoginView) submit() tea.Cmd {
	v.form.Username = v.inputs[loginUsername].Value()
	v.form.Password = v.inputs[loginPassword].Value()
	return v.form.Submit(v.deps.Session, v.deps.Timeout)
}

func (v *LoginView) View() string {
	s := v.styles
	width := clamp(styles.ContentWidth(v.width)-10, 20, 40)

	label := "Log In"
	if v.form.Loading() {
		label = "Logging in..."
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Welcome to taskdeck"),
		"",
		field(s, "Username", v.inputs[loginUsername], v.focus == loginUsername, width, v.form.Error("username")),
		"",
		field(s, "Password", v.inputs[loginPassword], v.focus == loginPassword, width, v.form.Error("password")),
		"",
		button(s, label, v.focus == loginSubmit),
		"",
		s.TitleMuted.Render("Tab: next • Enter: log in • Ctrl+R: create an account"),
	)
	return centered(form, v.width, v.height)
}
