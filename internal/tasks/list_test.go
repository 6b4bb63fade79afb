package tasks

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/tgienger/taskdeck/internal/gateway"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/notify"
)

// stubGateway answers task calls with fixed results
type stubGateway struct {
	gateway.Gateway
	tasks   []models.Task
	listErr error
	ok      bool
	err     error
}

func (s *stubGateway) ListTasks(context.Context, models.Scope) ([]models.Task, error) {
	return s.tasks, s.listErr
}

func (s *stubGateway) CreateTask(context.Context, models.Task) (bool, error) { return s.ok, s.err }

func (s *stubGateway) UpdateTask(context.Context, models.Task) (bool, error) { return s.ok, s.err }

func (s *stubGateway) DeleteTask(context.Context, string) (bool, error) { return s.ok, s.err }

func newList(t *testing.T, gw gateway.Gateway) *TaskList {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return NewTaskList(gw, models.AllTasks, Options{Logger: logger})
}

// run executes cmd, feeds the result back and returns the notice, if any
func run(t *testing.T, l *TaskList, cmd tea.Cmd) *notify.Notice {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	next := l.Update(cmd())
	if next == nil {
		return nil
	}
	msg, ok := next().(notify.Msg)
	if !ok {
		t.Fatalf("expected notify.Msg")
	}
	return &msg.Notice
}

func loaded(t *testing.T, gw gateway.Gateway) *TaskList {
	t.Helper()
	l := newList(t, gw)
	if n := run(t, l, l.Load()); n != nil {
		t.Fatalf("unexpected notice %+v", n)
	}
	return l
}

func TestLoad(t *testing.T) {
	l := newList(t, gateway.NewMemory(0))
	cmd := l.Load()
	if !l.Loading() {
		t.Fatal("Load should set loading")
	}
	run(t, l, cmd)
	if l.Loading() || l.Len() != 2 {
		t.Fatalf("loading=%v len=%d", l.Loading(), l.Len())
	}
}

func TestLoadFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	l := NewTaskList(&stubGateway{listErr: errors.New("timeout")}, models.AllTasks, Options{Logger: logger})

	n := run(t, l, l.Load())
	if n == nil || n.Level != notify.Error || n.Text != "Failed to load tasks" {
		t.Fatalf("unexpected notice %+v", n)
	}
	if l.Loading() || l.Len() != 0 {
		t.Fatalf("loading=%v len=%d", l.Loading(), l.Len())
	}
	if len(hook.Entries) == 0 {
		t.Fatal("load failure not logged")
	}
}

func TestCreateSuccess(t *testing.T) {
	gw := gateway.NewEmptyMemory()
	l := loaded(t, gw)

	cmd := l.CreateTask(models.Task{Title: "New Task", Priority: models.PriorityMedium})
	if l.Len() != 1 {
		t.Fatal("task not added before the gateway answered")
	}
	added := l.Tasks()[0]
	if added.ID == "" || added.Status != models.StatusPending {
		t.Fatalf("unexpected optimistic task %+v", added)
	}

	n := run(t, l, cmd)
	if n == nil || n.Level != notify.Success || n.Text != "Task Created!" {
		t.Fatalf("unexpected notice %+v", n)
	}
	stored, _ := gw.ListTasks(context.Background(), models.AllTasks)
	if len(stored) != 1 || stored[0].ID != added.ID {
		t.Fatalf("gateway got %+v", stored)
	}
}

func TestCreateAssignsFreshIDs(t *testing.T) {
	l := loaded(t, gateway.NewEmptyMemory())
	l.CreateTask(models.Task{ID: "same", Title: "one"})
	l.CreateTask(models.Task{ID: "same", Title: "two"})
	got := l.Tasks()
	if got[0].ID == got[1].ID || got[0].ID == "same" {
		t.Fatalf("ids not regenerated: %q %q", got[0].ID, got[1].ID)
	}
}

func TestCreateRollback(t *testing.T) {
	for name, gw := range map[string]*stubGateway{
		"rejected": {ok: false},
		"error":    {err: errors.New("boom")},
	} {
		l := loaded(t, gw)
		n := run(t, l, l.CreateTask(models.Task{Title: "Doomed"}))
		if n == nil || n.Level != notify.Error || n.Text != "Failed to create task" {
			t.Fatalf("%s: unexpected notice %+v", name, n)
		}
		if l.Len() != 0 {
			t.Fatalf("%s: failed create left %d tasks", name, l.Len())
		}
	}
}

func TestDeleteIsImmediate(t *testing.T) {
	for name, tc := range map[string]struct {
		gw       *stubGateway
		wantText string
		wantLen  int
	}{
		"success":  {&stubGateway{ok: true}, "Task deleted successfully", 2},
		"rejected": {&stubGateway{ok: false}, "Failed to delete task", 3},
		"error":    {&stubGateway{err: errors.New("boom")}, "Failed to delete task", 3},
	} {
		tc.gw.tasks = []models.Task{{ID: "1"}, {ID: "2"}, {ID: "3"}}
		l := loaded(t, tc.gw)

		cmd := l.DeleteTask("2")
		if _, ok := l.Find("2"); ok || l.Len() != 2 {
			t.Fatalf("%s: task not removed before the gateway answered", name)
		}

		n := run(t, l, cmd)
		if n == nil || n.Text != tc.wantText {
			t.Fatalf("%s: unexpected notice %+v", name, n)
		}
		if l.Len() != tc.wantLen {
			t.Fatalf("%s: len=%d want %d", name, l.Len(), tc.wantLen)
		}
		if tc.wantLen == 3 {
			if got := l.Tasks()[1].ID; got != "2" {
				t.Fatalf("%s: task re-inserted at wrong position: %v", name, l.Tasks())
			}
		}
	}
}

func TestDeleteUnknown(t *testing.T) {
	l := loaded(t, gateway.NewEmptyMemory())
	if cmd := l.DeleteTask("nope"); cmd != nil {
		t.Fatal("delete of unknown id should be a no-op")
	}
}

func TestUpdateSuccess(t *testing.T) {
	gw := gateway.NewMemory(0)
	l := loaded(t, gw)

	if !l.StartEdit("1") {
		t.Fatal("StartEdit failed")
	}
	task := *l.Editing()
	task.Title = "Buy more groceries"
	cmd := l.UpdateTask(task)
	if got, _ := l.Find("1"); got.Title != "Buy more groceries" {
		t.Fatal("update not applied optimistically")
	}

	n := run(t, l, cmd)
	if n == nil || n.Text != "Task updated successfully" {
		t.Fatalf("unexpected notice %+v", n)
	}
	if l.Editing() != nil {
		t.Fatal("editing state not cleared")
	}
}

func TestUpdateRollback(t *testing.T) {
	gw := &stubGateway{tasks: []models.Task{{ID: "1", Title: "Original"}}, ok: false}
	l := loaded(t, gw)
	l.StartEdit("1")

	n := run(t, l, l.UpdateTask(models.Task{ID: "1", Title: "Changed"}))
	if n == nil || n.Level != notify.Error || n.Text != "Failed to update task" {
		t.Fatalf("unexpected notice %+v", n)
	}
	if got, _ := l.Find("1"); got.Title != "Original" {
		t.Fatalf("rollback failed: %+v", got)
	}
	if l.Editing() != nil {
		t.Fatal("editing state not cleared on failure")
	}
}

func TestUpdateRollbackDoesNotClobberLaterEdit(t *testing.T) {
	gw := &stubGateway{tasks: []models.Task{{ID: "1", Title: "Original"}}, ok: false}
	l := loaded(t, gw)

	first := l.UpdateTask(models.Task{ID: "1", Title: "First"})
	l.UpdateTask(models.Task{ID: "1", Title: "Second"})
	l.Update(first())

	if got, _ := l.Find("1"); got.Title != "Second" {
		t.Fatalf("stale rollback overwrote newer edit: %+v", got)
	}
}

func TestCycleStatus(t *testing.T) {
	gw := &stubGateway{tasks: []models.Task{{ID: "1", Status: models.StatusCompleted}}, ok: true}
	l := loaded(t, gw)

	run(t, l, l.CycleStatus("1"))
	if got, _ := l.Find("1"); got.Status != models.StatusPending {
		t.Fatalf("COMPLETED should cycle to PENDING, got %s", got.Status)
	}
	run(t, l, l.CycleStatus("1"))
	if got, _ := l.Find("1"); got.Status != models.StatusInProgress {
		t.Fatalf("PENDING should cycle to IN_PROGRESS, got %s", got.Status)
	}
}

func TestStaleResultsIgnored(t *testing.T) {
	gw := &stubGateway{tasks: []models.Task{{ID: "1"}}, ok: false}
	l := loaded(t, gw)

	cmd := l.DeleteTask("1")
	oldLoad := l.Load()
	l.SetScope(models.ProjectScope("p1"))

	if next := l.Update(cmd()); next != nil {
		t.Fatal("result from an old generation produced a notice")
	}
	if l.Len() != 0 {
		t.Fatal("stale rollback re-inserted into the new scope")
	}
	if next := l.Update(oldLoad()); next != nil || l.Len() != 0 {
		t.Fatal("stale load applied")
	}
}

func TestOlderLoadIgnored(t *testing.T) {
	gw := &stubGateway{tasks: []models.Task{{ID: "1"}}}
	l := newList(t, gw)
	first := l.Load()
	second := l.Load()

	gw.tasks = nil
	l.Update(first())
	if !l.Loading() {
		t.Fatal("superseded load cleared the loading flag")
	}
	l.Update(second())
	if l.Loading() {
		t.Fatal("latest load did not clear the loading flag")
	}
}

func TestLoadInFlightKeepsDelete(t *testing.T) {
	gw := gateway.NewMemory(0)
	l := loaded(t, gw)

	load := l.Load()
	del := l.DeleteTask("1")
	// the load answers before the delete reaches the gateway
	l.Update(load())
	if _, ok := l.Find("1"); ok {
		t.Fatal("load resurrected a deleted task")
	}
	if n := run(t, l, del); n == nil || n.Text != notify.TaskDeleted {
		t.Fatalf("unexpected notice %+v", n)
	}
	if _, ok := l.Find("1"); ok || l.Len() != 1 {
		t.Fatalf("task back after delete, len=%d", l.Len())
	}
}

func TestLoadInFlightKeepsCreate(t *testing.T) {
	gw := gateway.NewMemory(0)
	l := loaded(t, gw)

	load := l.Load()
	create := l.CreateTask(models.Task{Title: "New Task"})
	l.Update(load())
	if l.Len() != 3 {
		t.Fatalf("load dropped the pending task, len=%d", l.Len())
	}
	if n := run(t, l, create); n == nil || n.Text != notify.TaskCreated {
		t.Fatalf("unexpected notice %+v", n)
	}
	stored, err := gw.ListTasks(context.Background(), models.AllTasks)
	if err != nil {
		t.Fatal(err)
	}
	if l.Len() != len(stored) {
		t.Fatalf("list has %d tasks, gateway has %d", l.Len(), len(stored))
	}

	// once settled, a fresh load is taken as is
	run(t, l, l.Load())
	if l.Len() != 3 {
		t.Fatalf("reload lost the created task, len=%d", l.Len())
	}
}

func TestLoadInFlightKeepsUpdate(t *testing.T) {
	gw := gateway.NewMemory(0)
	l := loaded(t, gw)

	task, _ := l.Find("1")
	task.Title = "Buy more groceries"
	load := l.Load()
	update := l.UpdateTask(task)
	l.Update(load())
	if got, _ := l.Find("1"); got.Title != "Buy more groceries" {
		t.Fatalf("load reverted the pending edit: %q", got.Title)
	}
	run(t, l, update)
	if got, _ := l.Find("1"); got.Title != "Buy more groceries" {
		t.Fatalf("edit lost after update result: %q", got.Title)
	}
}

func TestLoadInFlightFailedCreateRollsBack(t *testing.T) {
	gw := &stubGateway{tasks: []models.Task{{ID: "1"}}, ok: false}
	l := loaded(t, gw)

	load := l.Load()
	create := l.CreateTask(models.Task{Title: "x"})
	l.Update(load())
	if l.Len() != 2 {
		t.Fatalf("expected pending task kept, len=%d", l.Len())
	}
	if n := run(t, l, create); n == nil || n.Text != notify.TaskCreateFailed {
		t.Fatalf("unexpected notice %+v", n)
	}
	run(t, l, l.Load())
	if l.Len() != 1 {
		t.Fatalf("rolled back task reappeared, len=%d", l.Len())
	}
}

func TestSortedUsesKey(t *testing.T) {
	gw := &stubGateway{tasks: []models.Task{
		{ID: "low", Title: "b", Priority: models.PriorityLow},
		{ID: "crit", Title: "a", Priority: models.PriorityCritical},
	}}
	l := loaded(t, gw)
	l.SetSortKey(models.SortByPriority)
	if got := l.Sorted(); got[0].ID != "crit" {
		t.Fatalf("unexpected order %v", ids(got))
	}
	if got := l.Tasks(); got[0].ID != "low" {
		t.Fatal("Sorted reordered the collection")
	}
}
