package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tgienger/taskdeck/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "taskdeck.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSettings(t *testing.T) {
	database := openTestDB(t)

	v, err := database.GetSetting(KeySortKey)
	if err != nil || v != "" {
		t.Fatalf("expected empty setting, got %q %v", v, err)
	}
	if err := database.SetSetting(KeySortKey, "title"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := database.SetSetting(KeySortKey, "priority"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if v, _ := database.GetSetting(KeySortKey); v != "priority" {
		t.Fatalf("expected upsert, got %q", v)
	}
}

func TestSessionMarker(t *testing.T) {
	database := openTestDB(t)

	if ok, err := database.HasSession(); err != nil || ok {
		t.Fatalf("fresh database has session: %v %v", ok, err)
	}
	if err := database.SetSession(); err != nil {
		t.Fatalf("SetSession: %v", err)
	}
	if ok, _ := database.HasSession(); !ok {
		t.Fatal("marker not persisted")
	}
	if err := database.ClearSession(); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	if ok, _ := database.HasSession(); ok {
		t.Fatal("marker not cleared")
	}
}

func TestClearSessionForgetsCredentials(t *testing.T) {
	database := openTestDB(t)
	for key, value := range map[string]string{
		KeySession:       "true",
		KeyAPIToken:      "header.payload.signature",
		KeyCurrentUserID: "user-1",
		KeySortKey:       "priority",
	} {
		if err := database.SetSetting(key, value); err != nil {
			t.Fatalf("SetSetting(%s): %v", key, err)
		}
	}

	if err := database.ClearSession(); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	for _, key := range []string{KeySession, KeyAPIToken, KeyCurrentUserID} {
		if v, err := database.GetSetting(key); err != nil || v != "" {
			t.Fatalf("%s still set: %q %v", key, v, err)
		}
	}
	if v, _ := database.GetSetting(KeySortKey); v != "priority" {
		t.Fatalf("ClearSession removed an unrelated setting: %q", v)
	}
}

func TestTaskCRUD(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	due := time.Date(2025, 12, 31, 14, 30, 0, 0, time.UTC)

	task := models.Task{
		ID:       "t1",
		Title:    "Write report",
		Status:   models.StatusPending,
		Priority: models.PriorityHigh,
		DueDate:  &due,
	}
	ok, err := database.CreateTask(ctx, task)
	if err != nil || !ok {
		t.Fatalf("CreateTask: %v %v", ok, err)
	}
	if ok, _ := database.CreateTask(ctx, task); ok {
		t.Fatal("duplicate id accepted")
	}
	if ok, _ := database.CreateTask(ctx, models.Task{ID: "t2", Title: "Other", Status: models.StatusPending, Priority: models.PriorityNone, ProjectID: "p1"}); !ok {
		t.Fatal("second task rejected")
	}

	all, err := database.ListTasks(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("ListTasks all: %d %v", len(all), err)
	}
	if all[0].DueDate == nil || !all[0].DueDate.Equal(due) {
		t.Fatalf("due date not round-tripped: %v", all[0].DueDate)
	}
	if all[1].DueDate != nil {
		t.Fatalf("expected nil due date, got %v", all[1].DueDate)
	}
	scoped, _ := database.ListTasks(ctx, "p1")
	if len(scoped) != 1 || scoped[0].ID != "t2" {
		t.Fatalf("unexpected project tasks %+v", scoped)
	}

	task.Status = models.StatusCompleted
	task.DueDate = nil
	if ok, err := database.UpdateTask(ctx, task); err != nil || !ok {
		t.Fatalf("UpdateTask: %v %v", ok, err)
	}
	got, err := database.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Status != models.StatusCompleted || got.DueDate != nil {
		t.Fatalf("update not applied: %+v", got)
	}
	if ok, _ := database.UpdateTask(ctx, models.Task{ID: "missing"}); ok {
		t.Fatal("update of unknown id reported success")
	}

	if ok, _ := database.DeleteTask(ctx, "t1"); !ok {
		t.Fatal("delete failed")
	}
	if ok, _ := database.DeleteTask(ctx, "t1"); ok {
		t.Fatal("second delete reported success")
	}
}

func TestProjectCRUD(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	p, err := database.CreateProject(ctx, models.Project{Name: "Home", Color: models.DefaultProjectColor})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if p.ID == "" || p.CreatedAt.IsZero() || p.UpdatedAt != nil {
		t.Fatalf("unexpected project %+v", p)
	}
	if _, err := database.CreateTask(ctx, models.Task{ID: "t1", Title: "Dishes", Status: models.StatusPending, Priority: models.PriorityLow, ProjectID: p.ID}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	p.Name = "House"
	updated, err := database.UpdateProject(ctx, *p)
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if updated.Name != "House" || updated.UpdatedAt == nil {
		t.Fatalf("update not applied: %+v", updated)
	}
	if _, err := database.UpdateProject(ctx, models.Project{ID: "nope"}); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}

	if ok, _ := database.DeleteProject(ctx, p.ID); !ok {
		t.Fatal("delete failed")
	}
	if _, err := database.GetProject(ctx, p.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
	tasks, _ := database.ListTasks(ctx, p.ID)
	if len(tasks) != 1 {
		t.Fatalf("project delete should not cascade, got %d tasks", len(tasks))
	}
}

func TestUsers(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	ok, err := database.CreateUser(ctx, models.User{Username: "ada", Email: "ada@example.com", FirstName: "Ada"}, "password123")
	if err != nil || !ok {
		t.Fatalf("CreateUser: %v %v", ok, err)
	}
	if ok, _ := database.CreateUser(ctx, models.User{Username: "ada", Email: "x@example.com"}, "password123"); ok {
		t.Fatal("duplicate username accepted")
	}

	if u, err := database.Authenticate(ctx, "ada", "wrong-password"); err != nil || u != nil {
		t.Fatalf("wrong password authenticated: %v %v", u, err)
	}
	if u, err := database.Authenticate(ctx, "nobody", "password123"); err != nil || u != nil {
		t.Fatalf("unknown user authenticated: %v %v", u, err)
	}
	u, err := database.Authenticate(ctx, "ada", "password123")
	if err != nil || u == nil {
		t.Fatalf("Authenticate: %v %v", u, err)
	}
	if u.Password != "" {
		t.Fatal("password hash leaked into user")
	}

	bio := "Analyst"
	if ok, err := database.UpdateUser(ctx, u.ID, models.UserPatch{Bio: &bio}); err != nil || !ok {
		t.Fatalf("UpdateUser: %v %v", ok, err)
	}
	got, _ := database.GetUser(ctx, u.ID)
	if got.Bio != "Analyst" || got.FirstName != "Ada" {
		t.Fatalf("patch not applied: %+v", got)
	}
	if ok, _ := database.UpdateUser(ctx, "missing", models.UserPatch{Bio: &bio}); ok {
		t.Fatal("update of unknown user reported success")
	}
}
