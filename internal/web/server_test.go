package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dohr-michael/todolist/internal/tasks"
)

func newTestServer(t *testing.T, reportMissing bool) *Server {
	t.Helper()
	return NewServer(Options{
		Host:          "localhost",
		Port:          0,
		StorePath:     filepath.Join(t.TempDir(), "todo_data.json"),
		Title:         "To-Do List",
		ReportMissing: reportMissing,
	})
}

func post(t *testing.T, srv *Server, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("POST %v: status %d", form, w.Code)
	}
	return w
}

func storedTasks(t *testing.T, srv *Server) []tasks.Task {
	t.Helper()
	store := tasks.NewStore(srv.opts.StorePath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return store.ListTasks()
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status %q, got %q", "ok", body["status"])
	}
}

func TestIndexGet(t *testing.T) {
	srv := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "No tasks yet") {
		t.Error("expected empty placeholder")
	}
}

func TestIndexGetDoesNotMutate(t *testing.T) {
	srv := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/?add_task=&title=sneaky", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if _, err := os.Stat(srv.opts.StorePath); !os.IsNotExist(err) {
		t.Error("GET must not write the task file")
	}
}

func TestAddToggleDeleteFlow(t *testing.T) {
	srv := newTestServer(t, false)

	w := post(t, srv, url.Values{"add_task": {""}, "title": {"Buy milk"}, "description": {""}})
	body := w.Body.String()
	if !strings.Contains(body, "task added") || !strings.Contains(body, "alert-success") {
		t.Error("expected success banner after add")
	}
	if !strings.Contains(body, "Buy milk") {
		t.Error("expected new task in page")
	}

	list := storedTasks(t, srv)
	if len(list) != 1 || list[0].Title != "Buy milk" || list[0].Completed {
		t.Fatalf("stored = %+v", list)
	}
	id := list[0].ID

	w = post(t, srv, url.Values{"toggle_task": {""}, "task_id": {id}})
	if strings.Contains(w.Body.String(), "alert-dismissible") {
		t.Error("toggle should not show a banner")
	}
	if !strings.Contains(w.Body.String(), "Total tasks: 1 | Completed: 1") {
		t.Error("footer should count the completed task")
	}
	if !storedTasks(t, srv)[0].Completed {
		t.Error("toggle not persisted")
	}

	w = post(t, srv, url.Values{"delete_task": {""}, "task_id": {id}})
	if !strings.Contains(w.Body.String(), "task deleted") {
		t.Error("expected delete banner")
	}
	if len(storedTasks(t, srv)) != 0 {
		t.Error("delete not persisted")
	}
}

func TestAddEmptyTitleShowsError(t *testing.T) {
	srv := newTestServer(t, false)

	w := post(t, srv, url.Values{"add_task": {""}, "title": {"  "}})
	body := w.Body.String()
	if !strings.Contains(body, "alert-danger") || !strings.Contains(body, "title must not be empty") {
		t.Error("expected error banner")
	}
	if len(storedTasks(t, srv)) != 0 {
		t.Error("empty title must not create a task")
	}
}

func TestUnknownIDReporting(t *testing.T) {
	quiet := newTestServer(t, false)
	w := post(t, quiet, url.Values{"delete_task": {""}, "task_id": {"task_missing"}})
	if strings.Contains(w.Body.String(), "alert-dismissible") {
		t.Error("unknown id should be silent by default")
	}

	loud := newTestServer(t, true)
	w = post(t, loud, url.Values{"toggle_task": {""}, "task_id": {"task_missing"}})
	if !strings.Contains(w.Body.String(), "task not found") {
		t.Error("expected not-found banner when reporting is enabled")
	}
}

func TestLoadFailureSkipsMutation(t *testing.T) {
	// A directory at the store path cannot be read as a file.
	dir := t.TempDir()
	srv := NewServer(Options{StorePath: dir, Title: "To-Do List"})

	w := post(t, srv, url.Values{"add_task": {""}, "title": {"A"}})
	body := w.Body.String()
	if !strings.Contains(body, "could not load tasks") {
		t.Error("expected load failure banner")
	}
	if strings.Contains(body, "task added") {
		t.Error("mutation must be skipped after a failed load")
	}
}

func TestStoreOptionsApplied(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	srv := NewServer(Options{
		StorePath:    filepath.Join(t.TempDir(), "todo_data.json"),
		Title:        "To-Do List",
		StoreOptions: []tasks.Option{tasks.WithClock(func() time.Time { return fixed })},
	})

	w := post(t, srv, url.Values{"add_task": {""}, "title": {"A"}})
	if !strings.Contains(w.Body.String(), "Created: 2024-01-02 03:04:05") {
		t.Error("expected timestamp from the configured clock")
	}
}

func TestFailedSaveIsNotRendered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo_data.json")
	seed := tasks.NewStore(path)
	kept, err := seed.AddTask("Kept", "")
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	srv := NewServer(Options{
		StorePath: path,
		Title:     "To-Do List",
		StoreOptions: []tasks.Option{tasks.WithWriter(func(string, []byte) error {
			return errors.New("disk full")
		})},
	})

	tests := []struct {
		name   string
		form   url.Values
		absent string
	}{
		{"add", url.Values{"add_task": {""}, "title": {"Ghost"}}, "Ghost"},
		{"toggle", url.Values{"toggle_task": {""}, "task_id": {kept.ID}}, `id="task-` + kept.ID + `" checked`},
		{"delete", url.Values{"delete_task": {""}, "task_id": {kept.ID}}, "No tasks yet"},
	}
	for _, tt := range tests {
		body := post(t, srv, tt.form).Body.String()
		if !strings.Contains(body, "could not save tasks") {
			t.Errorf("%s: expected save failure banner", tt.name)
		}
		if strings.Contains(body, tt.absent) {
			t.Errorf("%s: page shows a change that was never saved (%q)", tt.name, tt.absent)
		}
		if !strings.Contains(body, "Kept") || !strings.Contains(body, "Total tasks: 1 | Completed: 0") {
			t.Errorf("%s: page should show the persisted state", tt.name)
		}
	}
}

func TestLogsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	srv := newTestServer(t, false)
	post(t, srv, url.Values{"add_task": {""}, "title": {"A"}})

	out := buf.String()
	if !strings.Contains(out, "task added") {
		t.Fatalf("missing add log line:\n%s", out)
	}
	if !strings.Contains(out, "request_id=") || strings.Contains(out, `request_id=""`) {
		t.Errorf("log line lacks a request id:\n%s", out)
	}
}
