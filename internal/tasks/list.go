package tasks

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tgienger/taskdeck/internal/gateway"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/notify"
)

// Result messages. Gen ties a result to the list generation that issued it;
// results from an older generation are dropped.
type (
	LoadedMsg struct {
		Gen   int
		Seq   int
		Tasks []models.Task
		Err   error
	}

	CreatedMsg struct {
		Gen  int
		Task models.Task
		OK   bool
		Err  error
	}

	DeletedMsg struct {
		Gen   int
		Task  models.Task
		Index int
		OK    bool
		Err   error
	}

	UpdatedMsg struct {
		Gen      int
		Rev      int
		Task     models.Task
		Previous models.Task
		OK       bool
		Err      error
	}
)

// generation is shared by every list; a result only matches the list that
// issued it
var generation atomic.Int64

func nextGen() int { return int(generation.Add(1)) }

// Options configures a TaskList
type Options struct {
	Timeout time.Duration
	Sort    SortOptions
	SortKey models.SortKey
	Logger  *log.Logger
}

// TaskList is the view-model behind a task grid. Mutations are applied to
// the in-memory collection right away and the gateway call runs as a
// tea.Cmd; Update reconciles the result and rolls back on failure.
type TaskList struct {
	gw      gateway.Gateway
	log     *log.Logger
	timeout time.Duration
	sort    SortOptions

	scope   models.Scope
	gen     int
	loadSeq int
	loading bool
	tasks   []models.Task
	editing *models.Task
	sortKey models.SortKey
	revs    map[string]int

	// mutations whose gateway result has not arrived yet; a load that
	// lands in the meantime is reconciled against them
	creating map[string]models.Task
	updating map[string]models.Task
	deleting map[string]bool
}

// NewTaskList returns an empty list for scope. Call Load to fill it.
func NewTaskList(gw gateway.Gateway, scope models.Scope, opts Options) *TaskList {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.SortKey == "" {
		opts.SortKey = models.SortByDueDate
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	return &TaskList{
		gw:      gw,
		log:     opts.Logger,
		timeout: opts.Timeout,
		sort:    opts.Sort,
		scope:   scope,
		gen:     nextGen(),
		tasks:   []models.Task{},
		sortKey: opts.SortKey,
		revs:    map[string]int{},

		creating: map[string]models.Task{},
		updating: map[string]models.Task{},
		deleting: map[string]bool{},
	}
}

func (l *TaskList) Scope() models.Scope { return l.scope }

func (l *TaskList) Loading() bool { return l.loading }

func (l *TaskList) Len() int { return len(l.tasks) }

func (l *TaskList) SortKey() models.SortKey { return l.sortKey }

func (l *TaskList) SetSortKey(k models.SortKey) { l.sortKey = k }

// Tasks returns the collection in insertion order
func (l *TaskList) Tasks() []models.Task {
	return slices.Clone(l.tasks)
}

// Sorted returns the collection ordered by the current sort key
func (l *TaskList) Sorted() []models.Task {
	return Sort(l.tasks, l.sortKey, l.sort)
}

// Find returns the task with id
func (l *TaskList) Find(id string) (models.Task, bool) {
	i := l.index(id)
	if i < 0 {
		return models.Task{}, false
	}
	return l.tasks[i], true
}

// Editing returns the task being edited, or nil
func (l *TaskList) Editing() *models.Task {
	return l.editing
}

// StartEdit marks the task with id as being edited
func (l *TaskList) StartEdit(id string) bool {
	t, ok := l.Find(id)
	if !ok {
		return false
	}
	l.editing = &t
	return true
}

func (l *TaskList) CancelEdit() {
	l.editing = nil
}

// SetScope switches the list to another scope. In-flight results for the
// old scope are discarded.
func (l *TaskList) SetScope(scope models.Scope) tea.Cmd {
	l.scope = scope
	l.gen = nextGen()
	l.tasks = []models.Task{}
	l.editing = nil
	l.revs = map[string]int{}
	l.creating = map[string]models.Task{}
	l.updating = map[string]models.Task{}
	l.deleting = map[string]bool{}
	return l.Load()
}

// Load fetches the tasks for the scope
func (l *TaskList) Load() tea.Cmd {
	l.loading = true
	l.loadSeq++
	gen, seq, scope := l.gen, l.loadSeq, l.scope
	return l.call(func(ctx context.Context) tea.Msg {
		tasks, err := l.gw.ListTasks(ctx, scope)
		return LoadedMsg{Gen: gen, Seq: seq, Tasks: tasks, Err: err}
	})
}

// CreateTask assigns an id to draft, adds it optimistically and sends it to
// the gateway
func (l *TaskList) CreateTask(draft models.Task) tea.Cmd {
	task := draft
	task.ID = uuid.NewString()
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	if task.Priority == "" {
		task.Priority = models.PriorityNone
	}
	l.tasks = append(l.tasks, task)
	l.creating[task.ID] = task

	gen := l.gen
	return l.call(func(ctx context.Context) tea.Msg {
		ok, err := l.gw.CreateTask(ctx, task)
		return CreatedMsg{Gen: gen, Task: task, OK: ok, Err: err}
	})
}

// DeleteTask removes the task immediately and asks the gateway to delete it
func (l *TaskList) DeleteTask(id string) tea.Cmd {
	i := l.index(id)
	if i < 0 {
		return nil
	}
	task := l.tasks[i]
	l.tasks = slices.Delete(l.tasks, i, i+1)
	l.deleting[id] = true
	if l.editing != nil && l.editing.ID == id {
		l.editing = nil
	}

	gen := l.gen
	return l.call(func(ctx context.Context) tea.Msg {
		ok, err := l.gw.DeleteTask(ctx, task.ID)
		return DeletedMsg{Gen: gen, Task: task, Index: i, OK: ok, Err: err}
	})
}

// UpdateTask replaces the task in place and sends the full record to the gateway
func (l *TaskList) UpdateTask(task models.Task) tea.Cmd {
	i := l.index(task.ID)
	if i < 0 {
		l.editing = nil
		return nil
	}
	previous := l.tasks[i]
	l.tasks[i] = task
	l.revs[task.ID]++
	l.updating[task.ID] = task

	gen, rev := l.gen, l.revs[task.ID]
	return l.call(func(ctx context.Context) tea.Msg {
		ok, err := l.gw.UpdateTask(ctx, task)
		return UpdatedMsg{Gen: gen, Rev: rev, Task: task, Previous: previous, OK: ok, Err: err}
	})
}

// CycleStatus advances the task to its next status
func (l *TaskList) CycleStatus(id string) tea.Cmd {
	t, ok := l.Find(id)
	if !ok {
		return nil
	}
	t.Status = t.Status.Next()
	return l.UpdateTask(t)
}

// Update applies a result message. It returns a command carrying the
// notice to show, or nil when msg is not for this list.
func (l *TaskList) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Gen != l.gen || msg.Seq != l.loadSeq {
			return nil
		}
		l.loading = false
		if msg.Err != nil {
			l.log.WithError(msg.Err).WithField("scope", l.scope.String()).Error("load tasks")
			l.tasks = []models.Task{}
			return notice(notify.NewError(notify.TasksLoadFailed))
		}
		l.tasks = l.reconcile(msg.Tasks)
		l.log.WithFields(log.Fields{"scope": l.scope.String(), "count": len(l.tasks)}).Debug("tasks loaded")
		return nil

	case CreatedMsg:
		if msg.Gen != l.gen {
			return nil
		}
		delete(l.creating, msg.Task.ID)
		if msg.OK && msg.Err == nil {
			return notice(notify.NewSuccess(notify.TaskCreated))
		}
		l.logFailure("create task", msg.Task.ID, msg.Err)
		if i := l.index(msg.Task.ID); i >= 0 {
			l.tasks = slices.Delete(l.tasks, i, i+1)
		}
		return notice(notify.NewError(notify.TaskCreateFailed))

	case DeletedMsg:
		if msg.Gen != l.gen {
			return nil
		}
		delete(l.deleting, msg.Task.ID)
		if msg.OK && msg.Err == nil {
			return notice(notify.NewSuccess(notify.TaskDeleted))
		}
		l.logFailure("delete task", msg.Task.ID, msg.Err)
		if l.index(msg.Task.ID) < 0 {
			at := min(max(msg.Index, 0), len(l.tasks))
			l.tasks = slices.Insert(l.tasks, at, msg.Task)
		}
		return notice(notify.NewError(notify.TaskDeleteFailed))

	case UpdatedMsg:
		if msg.Gen != l.gen {
			return nil
		}
		l.editing = nil
		latest := l.revs[msg.Task.ID] == msg.Rev
		if latest {
			delete(l.updating, msg.Task.ID)
		}
		if msg.OK && msg.Err == nil {
			return notice(notify.NewSuccess(notify.TaskUpdated))
		}
		l.logFailure("update task", msg.Task.ID, msg.Err)
		// a later edit of the same task wins over this rollback
		if latest {
			if i := l.index(msg.Task.ID); i >= 0 {
				l.tasks[i] = msg.Previous
			}
		}
		return notice(notify.NewError(notify.TaskUpdateFailed))
	}
	return nil
}

// reconcile applies the pending mutations to a freshly loaded collection
func (l *TaskList) reconcile(loaded []models.Task) []models.Task {
	out := make([]models.Task, 0, len(loaded)+len(l.creating))
	seen := make(map[string]bool, len(loaded))
	for _, t := range loaded {
		seen[t.ID] = true
		if l.deleting[t.ID] {
			continue
		}
		if u, ok := l.updating[t.ID]; ok {
			t = u
		}
		out = append(out, t)
	}
	for _, t := range l.tasks {
		if _, ok := l.creating[t.ID]; !ok || seen[t.ID] {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (l *TaskList) call(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	timeout := l.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fn(ctx)
	}
}

func (l *TaskList) logFailure(op, id string, err error) {
	entry := l.log.WithFields(log.Fields{"op": op, "task": id, "scope": l.scope.String()})
	if err != nil {
		entry.WithError(err).Error("gateway call failed")
		return
	}
	entry.Warn("gateway rejected change")
}

func (l *TaskList) index(id string) int {
	return slices.IndexFunc(l.tasks, func(t models.Task) bool { return t.ID == id })
}

func notice(n notify.Notice) tea.Cmd {
	return func() tea.Msg { return notify.Msg{Notice: n} }
}
