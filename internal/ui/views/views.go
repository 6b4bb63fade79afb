package views

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/tgienger/taskdeck/internal/gateway"
	"github.com/tgienger/taskdeck/internal/notify"
	"github.com/tgienger/taskdeck/internal/session"
	"github.com/tgienger/taskdeck/internal/tasks"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

// Settings persists small bits of client state between runs
type Settings interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// Deps is what every view is built from
type Deps struct {
	Gateway  gateway.Gateway
	Session  *session.Store
	Settings Settings
	Timeout  time.Duration
	Sort     tasks.SortOptions
	Logger   *log.Logger
	Now      func() time.Time
}

// Navigation messages handled by the app
type (
	ShowLogin     struct{}
	ShowRegister  struct{}
	ShowDashboard struct{}
	ShowProjects  struct{}
	ShowProfile   struct{}
	OpenProject   struct{ ID string }
	Logout        struct{}
)

func navigate(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func notice(n notify.Notice) tea.Cmd {
	return func() tea.Msg { return notify.Msg{Notice: n} }
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

// focusOnly focuses inputs[idx] and blurs the rest. An idx past the end
// leaves every input blurred (the submit button has focus).
func focusOnly(inputs []textinput.Model, idx int) tea.Cmd {
	for i := range inputs {
		inputs[i].Blur()
	}
	if idx >= 0 && idx < len(inputs) {
		return inputs[idx].Focus()
	}
	return nil
}

// field renders a labelled input with its inline error
func field(s *styles.Styles, label string, in textinput.Model, focused bool, width int, errMsg string) string {
	style := s.Input
	if focused {
		style = s.InputFocused
	}
	parts := []string{s.Label.Render(label), style.Width(width).Render(in.View())}
	if errMsg != "" {
		parts = append(parts, s.FieldError.Render(errMsg))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func button(s *styles.Styles, label string, focused bool) string {
	if focused {
		return s.ButtonFocused.Render(" " + label + " ")
	}
	return s.Button.Render(" " + label + " ")
}

// shortHelp renders one line of key hints from the bindings' help text
func shortHelp(s *styles.Styles, bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, s.HelpKey.Render(h.Key)+" "+s.HelpDesc.Render(h.Desc))
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

// centered places content in the middle of the content area
func centered(content string, width, height int) string {
	contentWidth := styles.ContentWidth(width)
	placed := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(placed, width, height)
}
