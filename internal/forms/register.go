package forms

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/taskdeck/internal/gateway"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/notify"
)

// Inline registration messages
const (
	PasswordLengthError = "Password must be between 8 and 20 characters"
	PasswordMatchError  = "Passwords do not match"
)

// ErrPasswordMismatch is returned by Validate when the confirmation differs
var ErrPasswordMismatch = errors.New("passwords do not match")

// RegisteredMsg carries the gateway's answer to a registration
type RegisteredMsg struct {
	OK  bool
	Err error
}

// RegisterForm validates password fields as they change and submits the
// registration through the gateway
type RegisterForm struct {
	reg     models.Registration
	errors  FieldErrors
	loading bool
}

func NewRegisterForm() *RegisterForm {
	return &RegisterForm{errors: FieldErrors{}}
}

func (f *RegisterForm) Registration() models.Registration { return f.reg }

func (f *RegisterForm) SetFirstName(v string) {
	f.reg.FirstName = v
	delete(f.errors, "firstName")
}

func (f *RegisterForm) SetLastName(v string) {
	f.reg.LastName = v
	delete(f.errors, "lastName")
}

func (f *RegisterForm) SetUsername(v string) {
	f.reg.Username = v
	delete(f.errors, "username")
}

func (f *RegisterForm) SetEmail(v string) {
	f.reg.Email = v
	delete(f.errors, "email")
}

// SetPassword stores the password and re-checks its length and the
// confirmation
func (f *RegisterForm) SetPassword(v string) {
	f.reg.Password = v
	if n := len([]rune(v)); n < 8 || n > 20 {
		f.errors["password"] = PasswordLengthError
	} else {
		delete(f.errors, "password")
	}
	if f.reg.ConfirmPassword != "" {
		f.checkMatch()
	}
}

// SetConfirmPassword stores the confirmation and checks it against the password
func (f *RegisterForm) SetConfirmPassword(v string) {
	f.reg.ConfirmPassword = v
	f.checkMatch()
}

func (f *RegisterForm) checkMatch() {
	if f.reg.ConfirmPassword != f.reg.Password {
		f.errors["confirmPassword"] = PasswordMatchError
	} else {
		delete(f.errors, "confirmPassword")
	}
}

// Error returns the inline message for field, or ""
func (f *RegisterForm) Error(field string) string {
	return f.errors[field]
}

func (f *RegisterForm) Loading() bool { return f.loading }

var registerLabels = map[string]string{
	"firstName":       "First name",
	"lastName":        "Last name",
	"username":        "Username",
	"email":           "Email",
	"password":        "Password",
	"confirmPassword": "Confirm password",
}

// Validate checks the whole form. A password mismatch is reported as
// ErrPasswordMismatch before anything else; other failures are FieldErrors.
func (f *RegisterForm) Validate() error {
	if f.reg.Password != f.reg.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return check(f.reg, registerLabels, map[string]string{
		"password":        PasswordLengthError,
		"confirmPassword": PasswordMatchError,
	})
}

// Submit validates and, when the form is complete, starts the gateway call.
// A mismatch produces the error notice; missing fields are reported inline.
// Nothing is sent in either case.
func (f *RegisterForm) Submit(gw gateway.Gateway, timeout time.Duration) tea.Cmd {
	if f.loading {
		return nil
	}
	err := f.Validate()
	if errors.Is(err, ErrPasswordMismatch) {
		f.errors["confirmPassword"] = PasswordMatchError
		return notice(notify.NewError(notify.PasswordsDontMatch))
	}
	var fieldErrs FieldErrors
	if errors.As(err, &fieldErrs) {
		for k, v := range fieldErrs {
			f.errors[k] = v
		}
		return nil
	}
	if err != nil {
		return notice(notify.NewError(notify.RegisterFailed))
	}

	f.loading = true
	reg := f.reg
	return tea.Batch(
		notice(notify.NewInfo(notify.Registering)),
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			ok, err := gw.RegisterUser(ctx, reg)
			return RegisteredMsg{OK: ok, Err: err}
		},
	)
}

// Done applies the gateway's answer. It reports whether registration
// succeeded and returns the notice to show.
func (f *RegisterForm) Done(msg RegisteredMsg) (bool, tea.Cmd) {
	f.loading = false
	if msg.OK && msg.Err == nil {
		return true, notice(notify.NewSuccess(notify.Registered))
	}
	return false, notice(notify.NewError(notify.RegisterFailed))
}

func notice(n notify.Notice) tea.Cmd {
	return func() tea.Msg { return notify.Msg{Notice: n} }
}
