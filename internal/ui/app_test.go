package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/gateway"
	"github.com/tgienger/taskdeck/internal/logging"
	"github.com/tgienger/taskdeck/internal/notify"
	"github.com/tgienger/taskdeck/internal/session"
	"github.com/tgienger/taskdeck/internal/ui/views"
)

type mapSettings map[string]string

func (m mapSettings) GetSetting(key string) (string, error) { return m[key], nil }

func (m mapSettings) SetSetting(key, value string) error {
	m[key] = value
	return nil
}

func newTestApp(t *testing.T, marked bool, settings mapSettings) *App {
	t.Helper()
	gw := gateway.NewMemory(0)
	marker := &session.MemoryMarker{}
	if marked {
		if err := marker.SetSession(); err != nil {
			t.Fatal(err)
		}
	}
	logger := logging.Discard()
	return NewApp(views.Deps{
		Gateway:  gw,
		Session:  session.New(gw, marker, logger),
		Settings: settings,
		Timeout:  time.Second,
		Logger:   logger,
	})
}

// rehydrate runs the startup command and feeds its result back
func rehydrate(t *testing.T, a *App) {
	t.Helper()
	msg := a.Init()()
	if _, ok := msg.(rehydratedMsg); !ok {
		t.Fatalf("expected rehydratedMsg, got %T", msg)
	}
	a.Update(msg)
}

func TestAppStartsAtLoginWithoutSession(t *testing.T) {
	a := newTestApp(t, false, mapSettings{})
	if a.CurrentView() != ViewLoading {
		t.Fatalf("expected loading view first, got %v", a.CurrentView())
	}
	rehydrate(t, a)
	if a.CurrentView() != ViewLogin {
		t.Fatalf("expected login view, got %v", a.CurrentView())
	}
}

func TestAppRestoresSession(t *testing.T) {
	a := newTestApp(t, true, mapSettings{})
	rehydrate(t, a)
	if a.CurrentView() != ViewDashboard {
		t.Fatalf("expected dashboard, got %v", a.CurrentView())
	}
	if a.deps.Session.User() == nil {
		t.Fatal("expected the stored user to be loaded")
	}
}

func TestAppReopensLastProject(t *testing.T) {
	settings := mapSettings{db.KeyLastProjectID: "p-1"}
	a := newTestApp(t, true, settings)
	rehydrate(t, a)
	if a.CurrentView() != ViewProject {
		t.Fatalf("expected project view, got %v", a.CurrentView())
	}
	if a.project.ID() != "p-1" {
		t.Fatalf("opened wrong project: %q", a.project.ID())
	}
}

func TestAppNavigation(t *testing.T) {
	settings := mapSettings{}
	a := newTestApp(t, true, settings)
	rehydrate(t, a)

	a.Update(views.ShowProjects{})
	if a.CurrentView() != ViewProjects {
		t.Fatalf("expected projects, got %v", a.CurrentView())
	}
	a.Update(views.OpenProject{ID: "abc"})
	if a.CurrentView() != ViewProject || settings[db.KeyLastProjectID] != "abc" {
		t.Fatalf("expected project abc to be open and remembered, got %v %q", a.CurrentView(), settings[db.KeyLastProjectID])
	}
	a.Update(views.ShowDashboard{})
	if a.CurrentView() != ViewDashboard || settings[db.KeyLastProjectID] != "" {
		t.Fatal("dashboard should clear the last project")
	}
	a.Update(views.ShowProfile{})
	if a.CurrentView() != ViewProfile {
		t.Fatalf("expected profile, got %v", a.CurrentView())
	}
}

func TestAppLogout(t *testing.T) {
	a := newTestApp(t, true, mapSettings{})
	rehydrate(t, a)

	_, cmd := a.Update(views.Logout{})
	msg := cmd()
	if _, ok := msg.(loggedOutMsg); !ok {
		t.Fatalf("expected loggedOutMsg, got %T", msg)
	}
	a.Update(msg)
	if a.CurrentView() != ViewLogin {
		t.Fatalf("expected login after logout, got %v", a.CurrentView())
	}
	if a.deps.Session.Authenticated() {
		t.Fatal("session should be cleared")
	}
	if a.dashboard != nil {
		t.Fatal("signed-in views should be dropped")
	}
}

func TestAppToastExpiry(t *testing.T) {
	a := newTestApp(t, false, mapSettings{})

	a.Update(notify.Msg{Notice: notify.NewSuccess(notify.TaskCreated)})
	first := a.toastSeq
	a.Update(notify.Msg{Notice: notify.NewError(notify.TaskDeleteFailed)})
	if a.Toast() == nil || a.Toast().Text != notify.TaskDeleteFailed {
		t.Fatalf("expected latest notice on screen, got %#v", a.Toast())
	}

	// an older timer must not hide the newer notice
	a.Update(notify.ExpiredMsg{Seq: first})
	if a.Toast() == nil {
		t.Fatal("stale expiry cleared the toast")
	}
	a.Update(notify.ExpiredMsg{Seq: a.toastSeq})
	if a.Toast() != nil {
		t.Fatal("expected the toast to expire")
	}
}

func TestAppCtrlCQuits(t *testing.T) {
	a := newTestApp(t, false, mapSettings{})
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected quit")
	}
}

func TestAppStatusLine(t *testing.T) {
	a := newTestApp(t, true, mapSettings{})
	rehydrate(t, a)
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	line := a.statusLine()
	if !strings.Contains(line, "Dashboard") || !strings.Contains(line, "@"+gateway.DemoUsername) {
		t.Fatalf("status line missing screen or user: %q", line)
	}

	a.Update(notify.Msg{Notice: notify.NewSuccess(notify.TaskCreated)})
	if line := a.statusLine(); !strings.Contains(line, notify.TaskCreated) {
		t.Fatalf("toast should replace the status line, got %q", line)
	}
	if !strings.Contains(a.View(), notify.TaskCreated) {
		t.Fatal("toast not rendered")
	}
}
