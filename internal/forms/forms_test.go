package forms

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/taskdeck/internal/gateway"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/notify"
)

func TestTimeSlots(t *testing.T) {
	slots := TimeSlots()
	if len(slots) != 48 || slots[0] != "00:00" || slots[1] != "00:30" || slots[47] != "23:30" {
		t.Fatalf("unexpected slots %v", slots)
	}
	for _, s := range slots {
		if !IsTimeSlot(s) {
			t.Fatalf("%s rejected", s)
		}
	}
	for _, s := range []string{"", "24:00", "12:15", "9:30", "noon"} {
		if IsTimeSlot(s) {
			t.Fatalf("%q accepted", s)
		}
	}
}

func TestTaskFormCreateWithoutDueDate(t *testing.T) {
	f := NewTaskForm()
	f.Title = "New Task"
	f.Priority = models.PriorityMedium

	got, err := f.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	want := models.Task{Title: "New Task", Description: "", Status: models.StatusPending, Priority: models.PriorityMedium}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestTaskFormTimeWithoutDateIgnored(t *testing.T) {
	f := NewTaskForm()
	f.Title = "x"
	f.DueTime = "14:30"
	got, err := f.Submit()
	if err != nil || got.DueDate != nil {
		t.Fatalf("expected no due date, got %v %v", got.DueDate, err)
	}
}

func TestTaskFormComposesLocalInstant(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	f := NewTaskForm()
	f.Location = loc
	f.Title = "Report"
	f.DueDate = "2025-12-31"
	f.DueTime = "14:30"

	got, err := f.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if models.FormatInstant(*got.DueDate) != "2025-12-31T12:30:00.000Z" {
		t.Fatalf("unexpected instant %s", models.FormatInstant(*got.DueDate))
	}

	f.DueTime = ""
	got, _ = f.Submit()
	if models.FormatInstant(*got.DueDate) != "2025-12-30T22:00:00.000Z" {
		t.Fatalf("missing time should default to midnight, got %s", models.FormatInstant(*got.DueDate))
	}
}

func TestTaskFormValidation(t *testing.T) {
	f := NewTaskForm()
	f.Title = "   "
	f.DueDate = "31/12/2025"
	f.DueTime = "14:15"

	_, err := f.Submit()
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if fe["title"] != "Title is required" {
		t.Fatalf("unexpected title error %q", fe["title"])
	}
	if fe["dueDate"] == "" || fe["dueTime"] == "" {
		t.Fatalf("expected date and time errors, got %v", fe)
	}
}

func TestTaskFormEditKeepsIdentity(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	due := time.Date(2025, 7, 1, 19, 45, 0, 0, time.UTC)
	orig := models.Task{ID: "t1", Title: "Old", Status: models.StatusInProgress, Priority: models.PriorityHigh, DueDate: &due, ProjectID: "p1"}

	f := EditTaskForm(orig, loc)
	if !f.Editing() || f.Heading() != "Edit Task" || f.SubmitLabel() != "Save Changes" {
		t.Fatal("form not in edit mode")
	}
	if f.DueDate != "2025-07-01" || f.DueTime != "14:30" {
		t.Fatalf("unexpected pre-population %q %q", f.DueDate, f.DueTime)
	}

	f.Title = "New"
	got, err := f.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.ID != "t1" || got.Status != models.StatusInProgress || got.ProjectID != "p1" || got.Title != "New" {
		t.Fatalf("identity not preserved: %+v", got)
	}
}

func TestTaskFormEditKeepsExactDueTime(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	due := time.Date(2025, 7, 1, 19, 45, 0, 0, time.UTC)
	orig := models.Task{ID: "t1", Title: "Old", Status: models.StatusPending, DueDate: &due}

	f := EditTaskForm(orig, loc)
	f.Title = "Renamed"
	got, err := f.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("untouched due date moved: %v", got.DueDate)
	}

	f = EditTaskForm(orig, loc)
	f.CycleTime(1)
	got, _ = f.Submit()
	want := time.Date(2025, 7, 1, 15, 0, 0, 0, loc)
	if got.DueDate == nil || !got.DueDate.Equal(want) {
		t.Fatalf("changed time not applied: %v", got.DueDate)
	}

	f = EditTaskForm(orig, loc)
	f.DueDate = "2025-07-02"
	got, _ = f.Submit()
	want = time.Date(2025, 7, 2, 14, 30, 0, 0, loc)
	if got.DueDate == nil || !got.DueDate.Equal(want) {
		t.Fatalf("changed date not applied: %v", got.DueDate)
	}
}

func TestProjectTaskForm(t *testing.T) {
	f := NewProjectTaskForm("p9")
	f.Title = "Scoped"
	got, _ := f.Submit()
	if got.ProjectID != "p9" {
		t.Fatalf("project not assigned: %+v", got)
	}
}

func TestTaskFormCycling(t *testing.T) {
	f := NewTaskForm()
	f.CyclePriority(-1)
	if f.Priority != models.PriorityCritical {
		t.Fatalf("None-1 should wrap to Critical, got %s", f.Priority)
	}
	f.CyclePriority(1)
	if f.Priority != models.PriorityNone {
		t.Fatalf("Critical+1 should wrap to None, got %s", f.Priority)
	}

	f.CycleTime(1)
	if f.DueTime != "00:00" {
		t.Fatalf("first step should pick 00:00, got %q", f.DueTime)
	}
	f.CycleTime(1)
	if f.DueTime != "00:30" {
		t.Fatalf("got %q", f.DueTime)
	}
	f.CycleTime(-2)
	if f.DueTime != "" {
		t.Fatalf("stepping before 00:00 should clear, got %q", f.DueTime)
	}
}

func TestRegisterPasswordLength(t *testing.T) {
	f := NewRegisterForm()
	f.SetPassword("short")
	if f.Error("password") != PasswordLengthError {
		t.Fatalf("expected length error, got %q", f.Error("password"))
	}
	f.SetPassword("validpassword123")
	if f.Error("password") != "" {
		t.Fatalf("expected no error, got %q", f.Error("password"))
	}
	f.SetPassword("this-password-is-too-long")
	if f.Error("password") != PasswordLengthError {
		t.Fatal("21+ characters accepted")
	}
}

func TestRegisterPasswordMatch(t *testing.T) {
	f := NewRegisterForm()
	f.SetPassword("password123")
	f.SetConfirmPassword("different123")
	if f.Error("confirmPassword") != PasswordMatchError {
		t.Fatalf("expected mismatch, got %q", f.Error("confirmPassword"))
	}
	f.SetConfirmPassword("password123")
	if f.Error("confirmPassword") != "" {
		t.Fatal("mismatch not cleared")
	}
	f.SetPassword("password124")
	if f.Error("confirmPassword") != PasswordMatchError {
		t.Fatal("changing the password should re-check the confirmation")
	}
}

type recordingGateway struct {
	gateway.Gateway
	calls int
	ok    bool
}

func (r *recordingGateway) RegisterUser(context.Context, models.Registration) (bool, error) {
	r.calls++
	return r.ok, nil
}

// collect runs cmd and flattens batches into their messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func fillRegistration(f *RegisterForm) {
	f.SetFirstName("Ada")
	f.SetLastName("Lovelace")
	f.SetUsername("ada")
	f.SetEmail("ada@example.com")
	f.SetPassword("password123")
	f.SetConfirmPassword("password123")
}

func TestRegisterSubmitMismatch(t *testing.T) {
	gw := &recordingGateway{}
	f := NewRegisterForm()
	fillRegistration(f)
	f.SetConfirmPassword("different123")

	msgs := collect(f.Submit(gw, time.Second))
	if gw.calls != 0 {
		t.Fatal("gateway called despite mismatch")
	}
	if len(msgs) != 1 || msgs[0].(notify.Msg).Notice.Text != "Passwords dont match" {
		t.Fatalf("unexpected messages %+v", msgs)
	}
}

func TestRegisterSubmitMissingFields(t *testing.T) {
	gw := &recordingGateway{}
	f := NewRegisterForm()
	f.SetPassword("password123")
	f.SetConfirmPassword("password123")

	if cmd := f.Submit(gw, time.Second); cmd != nil {
		t.Fatal("incomplete form produced a command")
	}
	if gw.calls != 0 {
		t.Fatal("gateway called for incomplete form")
	}
	if f.Error("firstName") != "First name is required" || f.Error("email") == "" {
		t.Fatalf("missing inline errors: %q %q", f.Error("firstName"), f.Error("email"))
	}
	f.SetFirstName("Ada")
	if f.Error("firstName") != "" {
		t.Fatal("error not cleared on edit")
	}
}

func TestRegisterSubmit(t *testing.T) {
	for _, ok := range []bool{true, false} {
		gw := &recordingGateway{ok: ok}
		f := NewRegisterForm()
		fillRegistration(f)

		msgs := collect(f.Submit(gw, time.Second))
		if !f.Loading() {
			t.Fatal("loading not set during the call")
		}
		if gw.calls != 1 {
			t.Fatalf("expected one gateway call, got %d", gw.calls)
		}
		var result RegisteredMsg
		for _, m := range msgs {
			if r, isResult := m.(RegisteredMsg); isResult {
				result = r
			}
		}
		done, cmd := f.Done(result)
		if f.Loading() {
			t.Fatal("loading not cleared")
		}
		text := cmd().(notify.Msg).Notice.Text
		if ok && (!done || text != "Registration Successful") {
			t.Fatalf("success: done=%v text=%q", done, text)
		}
		if !ok && (done || text != "Registration Failed :(") {
			t.Fatalf("failure: done=%v text=%q", done, text)
		}
	}
}

type fakeAuth struct{ ok bool }

func (a fakeAuth) Login(context.Context, string, string) (bool, error) { return a.ok, nil }

func TestLoginForm(t *testing.T) {
	f := NewLoginForm()
	if cmd := f.Submit(fakeAuth{ok: true}, time.Second); cmd != nil {
		t.Fatal("empty form submitted")
	}
	if f.Error("username") == "" || f.Error("password") == "" {
		t.Fatal("missing inline errors")
	}

	f.Username = " demo "
	f.Password = "wrong"
	msgs := collect(f.Submit(fakeAuth{ok: false}, time.Second))
	if len(msgs) != 2 || msgs[0].(notify.Msg).Notice.Text != "Logging in..." {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	done, cmd := f.Done(msgs[1].(LoggedInMsg))
	if done || cmd().(notify.Msg).Notice.Text != "Invalid Credentials" || f.Password != "" {
		t.Fatal("failed login handled wrongly")
	}

	f.Password = "password123"
	msgs = collect(f.Submit(fakeAuth{ok: true}, time.Second))
	done, cmd = f.Done(msgs[1].(LoggedInMsg))
	if !done || cmd().(notify.Msg).Notice.Text != "Welcome Back!" {
		t.Fatal("successful login handled wrongly")
	}
}

func TestProjectForm(t *testing.T) {
	f := NewProjectForm()
	if _, err := f.Submit(); err == nil {
		t.Fatal("empty name accepted")
	}
	f.Name = "Work"
	f.Color = "blue"
	if _, err := f.Submit(); err == nil {
		t.Fatal("non-hex color accepted")
	}
	f.Color = ""
	p, err := f.Submit()
	if err != nil || p.Color != models.DefaultProjectColor || p.Name != "Work" {
		t.Fatalf("unexpected project %+v %v", p, err)
	}

	edit := EditProjectForm(models.Project{ID: "p1", Name: "Old", Color: "#ffffff"})
	edit.Name = "New"
	p, _ = edit.Submit()
	if p.ID != "p1" || p.Name != "New" || p.Color != "#ffffff" {
		t.Fatalf("edit lost identity: %+v", p)
	}
}

func TestProfilePatch(t *testing.T) {
	f := NewProfileForm(models.User{FirstName: "Ada", Email: "ada@example.com"})
	p, err := f.Patch()
	if err != nil || !p.Empty() {
		t.Fatalf("unchanged form produced patch %+v %v", p, err)
	}
	f.Bio = "Mathematician"
	f.Email = "not-an-email"
	if _, err := f.Patch(); err == nil {
		t.Fatal("invalid email accepted")
	}
	f.Email = "ada@example.com"
	p, _ = f.Patch()
	if p.Bio == nil || *p.Bio != "Mathematician" || p.Email != nil || p.FirstName != nil {
		t.Fatalf("unexpected patch %+v", p)
	}
}
