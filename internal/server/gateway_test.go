package server

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/gateway"
	"github.com/tgienger/taskdeck/internal/models"
)

// The http gateway against a live server, both backed by real SQLite files
func TestHTTPGatewayRoundTrip(t *testing.T) {
	e, _, _ := newTestServer(t)
	srv := httptest.NewServer(e)
	defer srv.Close()

	client := openStore(t)
	gw := gateway.NewHTTP(srv.URL, client)
	ctx := context.Background()

	if _, err := gw.CurrentUser(ctx); !errors.Is(err, gateway.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated before login, got %v", err)
	}

	reg := models.Registration{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Username:        "ada",
		Email:           "ada@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	}
	if ok, err := gw.RegisterUser(ctx, reg); err != nil || !ok {
		t.Fatalf("RegisterUser: %v %v", ok, err)
	}
	if ok, err := gw.RegisterUser(ctx, reg); err != nil || ok {
		t.Fatalf("duplicate RegisterUser: %v %v", ok, err)
	}

	if ok, err := gw.ValidateCredentials(ctx, "ada", "nope-nope"); err != nil || ok {
		t.Fatalf("bad credentials: %v %v", ok, err)
	}
	if ok, err := gw.ValidateCredentials(ctx, "ada", "password123"); err != nil || !ok {
		t.Fatalf("ValidateCredentials: %v %v", ok, err)
	}
	if token, _ := client.GetSetting(db.KeyAPIToken); token == "" {
		t.Fatal("token not persisted")
	}

	u, err := gw.CurrentUser(ctx)
	if err != nil || u.Username != "ada" {
		t.Fatalf("CurrentUser: %#v %v", u, err)
	}
	bio := "Analyst"
	if ok, err := gw.UpdateUser(ctx, models.UserPatch{Bio: &bio}); err != nil || !ok {
		t.Fatalf("UpdateUser: %v %v", ok, err)
	}

	p, err := gw.CreateProject(ctx, models.Project{Name: "Engine", Color: "#4f46e5"})
	if err != nil || p.ID == "" {
		t.Fatalf("CreateProject: %#v %v", p, err)
	}
	if _, err := gw.GetProject(ctx, "missing"); !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	task := models.Task{ID: "t1", Title: "Note G", Status: models.StatusPending, Priority: models.PriorityCritical, ProjectID: p.ID}
	if ok, err := gw.CreateTask(ctx, task); err != nil || !ok {
		t.Fatalf("CreateTask: %v %v", ok, err)
	}
	if ok, err := gw.CreateTask(ctx, task); err != nil || ok {
		t.Fatalf("duplicate CreateTask: %v %v", ok, err)
	}

	tasks, err := gw.ListTasks(ctx, models.ProjectScope(p.ID))
	if err != nil || len(tasks) != 1 || tasks[0].Title != "Note G" {
		t.Fatalf("ListTasks: %#v %v", tasks, err)
	}

	task.Status = models.StatusCompleted
	if ok, err := gw.UpdateTask(ctx, task); err != nil || !ok {
		t.Fatalf("UpdateTask: %v %v", ok, err)
	}
	if ok, err := gw.DeleteTask(ctx, "t1"); err != nil || !ok {
		t.Fatalf("DeleteTask: %v %v", ok, err)
	}
	if ok, err := gw.DeleteTask(ctx, "t1"); err != nil || ok {
		t.Fatalf("second DeleteTask: %v %v", ok, err)
	}
	if ok, err := gw.DeleteProject(ctx, p.ID); err != nil || !ok {
		t.Fatalf("DeleteProject: %v %v", ok, err)
	}
}
