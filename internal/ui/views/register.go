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

type registerField struct {
	name  string
	label string
	set   func(f *forms.RegisterForm, v string)
}

var registerFields = []registerField{
	{"firstName", "First name", (*forms.RegisterForm).SetFirstName},
	{"lastName", "Last name", (*forms.RegisterForm).SetLastName},
	{"username", "Username", (*forms.RegisterForm).SetUsername},
	{"email", "Email", (*forms.RegisterForm).SetEmail},
	{"password", "Password", (*forms.RegisterForm).SetPassword},
	{"confirmPassword", "Confirm password", (*forms.RegisterForm).SetConfirmPassword},
}

// RegisterView is the account creation screen
type RegisterView struct {
	deps   Deps
	form   *forms.RegisterForm
	inputs []textinput.Model
	focus  int // len(inputs) is the submit button
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int
}

func NewRegisterView(deps Deps) *RegisterView {
	inputs := make([]textinput.Model, len(registerFields))
	for i, f := range registerFields {
		inputs[i] = newInput(f.label, 64)
		if f.name == "password" || f.name == "confirmPassword" {
			inputs[i].EchoMode = textinput.EchoPassword
			inputs[i].EchoCharacter = '•'
		}
	}
	v := &RegisterView{
		deps:   deps,
		form:   forms.NewRegisterForm(),
		inputs: inputs,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
	focusOnly(v.inputs, 0)
	return v
}

func (v *RegisterView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *RegisterView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	fields := len(v.inputs) + 1

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case forms.RegisteredMsg:
		ok, cmd := v.form.Done(msg)
		if ok {
			return v, tea.Batch(cmd, navigate(ShowLogin{}))
		}
		return v, cmd

	case tea.KeyMsg:
		if v.form.Loading() {
			return v, nil
		}
		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, navigate(ShowLogin{})
		case key.Matches(msg, v.keys.Tab), key.Matches(msg, v.keys.Down):
			v.focus = (v.focus + 1) % fields
			return v, focusOnly(v.inputs, v.focus)
		case key.Matches(msg, v.keys.ShiftTab), key.Matches(msg, v.keys.Up):
			v.focus = (v.focus + fields - 1) % fields
			return v, focusOnly(v.inputs, v.focus)
		case key.Matches(msg, v.keys.Save):
			return v, v.form.Submit(v.deps.Gateway, v.deps.Timeout)
		case key.Matches(msg, v.keys.Enter):
			if v.focus == len(v.inputs) {
				return v, v.form.Submit(v.deps.Gateway, v.deps.Timeout)
			}
			v.focus++
			return v, focusOnly(v.inputs, v.focus)
		}
	}

	if v.focus >= len(v.inputs) {
		return v, nil
	}
	before := v.inputs[v.focus].Value()
	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	if after := v.inputs[v.focus].Value(); after != before {
		registerFields[v.focus].set(v.form, after)
	}
	return v, cmd
}

func (v *RegisterView) View() string {
	s := v.styles
	width := clamp(styles.ContentWidth(v.width)-10, 20, 40)

	rows := []string{s.Title.Render("Create an account"), ""}
	for i, f := range registerFields {
		rows = append(rows, field(s, f.label, v.inputs[i], v.focus == i, width, v.form.Error(f.name)))
	}

	label := "Register"
	if v.form.Loading() {
		label = "Registering..."
	}
	rows = append(rows,
		"",
		button(s, label, v.focus == len(v.inputs)),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: register • Esc: back to login"),
	)
	return centered(lipgloss.JoinVertical(lipgloss.Left, rows...), v.width, v.height)
}
