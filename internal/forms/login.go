package forms

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/taskdeck/internal/notify"
)

// Authenticator is the part of the session store the login form needs
type Authenticator interface {
	Login(ctx context.Context, username, password string) (bool, error)
}

// LoggedInMsg carries the result of a login attempt
type LoggedInMsg struct {
	OK  bool
	Err error
}

type LoginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`

	loading bool
	errors  FieldErrors
}

func NewLoginForm() *LoginForm {
	return &LoginForm{}
}

func (f *LoginForm) Loading() bool { return f.loading }

func (f *LoginForm) Error(field string) string { return f.errors[field] }

// Submit starts a login through auth when both fields are filled
func (f *LoginForm) Submit(auth Authenticator, timeout time.Duration) tea.Cmd {
	if f.loading {
		return nil
	}
	f.Username = strings.TrimSpace(f.Username)
	if err := check(*f, map[string]string{"username": "Username", "password": "Password"}, nil); err != nil {
		if fe, ok := err.(FieldErrors); ok {
			f.errors = fe
		}
		return nil
	}
	f.errors = nil
	f.loading = true

	username, password := f.Username, f.Password
	return tea.Batch(
		notice(notify.NewInfo(notify.LoggingIn)),
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			ok, err := auth.Login(ctx, username, password)
			return LoggedInMsg{OK: ok, Err: err}
		},
	)
}

// Done applies the login result. On failure the password is cleared.
func (f *LoginForm) Done(msg LoggedInMsg) (bool, tea.Cmd) {
	f.loading = false
	if msg.OK && msg.Err == nil {
		return true, notice(notify.NewSuccess(notify.LoginSucceeded))
	}
	f.Password = ""
	return false, notice(notify.NewError(notify.LoginFailed))
}
