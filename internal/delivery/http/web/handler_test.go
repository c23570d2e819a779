package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-web/internal/models"
	"github.com/adanyl0v/go-todo-web/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, svc services.TaskService) *gin.Engine {
	t.Helper()
	router, err := NewRouter(zerolog.Nop(), New(zerolog.Nop(), svc))
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return router
}

func newTestService() services.TaskService {
	return services.NewMemoryTaskService(zerolog.Nop())
}

func mustCreate(t *testing.T, svc services.TaskService, params services.CreateTaskParams) *models.Task {
	t.Helper()
	task, err := svc.CreateTask(context.Background(), params)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func mustGet(t *testing.T, svc services.TaskService, id string) *models.Task {
	t.Helper()
	task, err := svc.GetTask(context.Background(), id)
	if err != nil {
		t.Fatalf("get task %s: %v", id, err)
	}
	return task
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	assertStatus(t, rec, http.StatusFound)
	if got := rec.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}

// assertAppearsInOrder checks that every needle occurs in body, each after the previous one.
func assertAppearsInOrder(t *testing.T, body string, needles ...string) {
	t.Helper()
	offset := 0
	for _, needle := range needles {
		i := strings.Index(body[offset:], needle)
		if i < 0 {
			t.Fatalf("expected %q after offset %d in body", needle, offset)
		}
		offset += i + len(needle)
	}
}

func TestHomeListsTasksWithPosition(t *testing.T) {
	svc := newTestService()
	a := mustCreate(t, svc, services.CreateTaskParams{Title: "Task A"})
	b := mustCreate(t, svc, services.CreateTaskParams{Title: "Task B"})
	mustCreate(t, svc, services.CreateTaskParams{Title: "Task C", IsDone: true})
	if _, err := svc.BulkUpdatePositions(context.Background(), []services.PositionUpdate{
		{ID: a.ID, Position: 0},
		{ID: b.ID, Position: 1},
	}); err != nil {
		t.Fatalf("bulk update: %v", err)
	}

	rec := serve(newTestRouter(t, svc), httptest.NewRequest(http.MethodGet, "/", nil))

	assertStatus(t, rec, http.StatusOK)
	assertAppearsInOrder(t, rec.Body.String(), "Task A", "Task B", "Task C")
}

func TestTaskListIgnoresPosition(t *testing.T) {
	svc := newTestService()
	later := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	sooner := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	first := mustCreate(t, svc, services.CreateTaskParams{Title: "Later", DueDate: &later})
	second := mustCreate(t, svc, services.CreateTaskParams{Title: "Sooner", DueDate: &sooner})
	if _, err := svc.BulkUpdatePositions(context.Background(), []services.PositionUpdate{
		{ID: first.ID, Position: 0},
		{ID: second.ID, Position: 10},
	}); err != nil {
		t.Fatalf("bulk update: %v", err)
	}
	router := newTestRouter(t, svc)

	home := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	assertStatus(t, home, http.StatusOK)
	assertAppearsInOrder(t, home.Body.String(), "Later", "Sooner")

	list := serve(router, httptest.NewRequest(http.MethodGet, "/tasks/", nil))
	assertStatus(t, list, http.StatusOK)
	assertAppearsInOrder(t, list.Body.String(), "Sooner", "Later")
}

func TestCreateTaskRedirects(t *testing.T) {
	svc := newTestService()
	router := newTestRouter(t, svc)

	rec := serve(router, postForm("/", url.Values{
		"title":       {"  New Task  "},
		"description": {""},
		"is_done":     {"False"},
		"due_date":    {"2024-06-01"},
	}))
	assertRedirect(t, rec, "/")

	tasks, _ := svc.ListTasks(context.Background())
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	task := tasks[0]
	if task.Title != "New Task" || task.IsDone || task.Position != 0 {
		t.Fatalf("unexpected task %+v", task)
	}
	if models.FormatDate(task.DueDate) != "2024-06-01" {
		t.Fatalf("unexpected due date %v", task.DueDate)
	}

	rec = serve(router, postForm("/tasks/", url.Values{"title": {"From list"}}))
	assertRedirect(t, rec, "/tasks/")
}

func TestCreateTaskCheckboxValues(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"on", true},
		{"true", true},
		{"1", true},
		{"off", false},
		{"False", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			svc := newTestService()
			rec := serve(newTestRouter(t, svc), postForm("/", url.Values{
				"title":   {"Checkbox"},
				"is_done": {tt.value},
			}))
			assertRedirect(t, rec, "/")

			tasks, _ := svc.ListTasks(context.Background())
			if len(tasks) != 1 {
				t.Fatalf("expected 1 task, got %d", len(tasks))
			}
			if tasks[0].IsDone != tt.want {
				t.Fatalf("is_done=%q: expected %v, got %v", tt.value, tt.want, tasks[0].IsDone)
			}
		})
	}
}

func TestCreateTaskInvalidFormRerenders(t *testing.T) {
	tests := []struct {
		name    string
		values  url.Values
		message string
	}{
		{"blank title", url.Values{"title": {"   "}}, "This field is required."},
		{"missing title", url.Values{"description": {"x"}}, "This field is required."},
		{"long title", url.Values{"title": {strings.Repeat("x", 256)}}, "at most 255 characters"},
		{"bad date", url.Values{"title": {"ok"}, "due_date": {"tomorrow"}}, "Enter a valid date."},
		{"bad checkbox", url.Values{"title": {"ok"}, "is_done": {"maybe"}}, "Enter a valid value."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			rec := serve(newTestRouter(t, svc), postForm("/", tt.values))

			assertStatus(t, rec, http.StatusOK)
			if !strings.Contains(rec.Body.String(), tt.message) {
				t.Fatalf("expected %q in body", tt.message)
			}
			tasks, _ := svc.ListTasks(context.Background())
			if len(tasks) != 0 {
				t.Fatalf("expected no tasks, got %d", len(tasks))
			}
		})
	}
}

func TestEditTask(t *testing.T) {
	svc := newTestService()
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	task := mustCreate(t, svc, services.CreateTaskParams{Title: "Old title", DueDate: &due})
	router := newTestRouter(t, svc)
	path := "/task/" + task.ID + "/edit/"

	rec := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
	assertStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `value="Old title"`) {
		t.Fatal("expected form to be pre-filled")
	}

	rec = serve(router, postForm(path, url.Values{"title": {"   "}}))
	assertStatus(t, rec, http.StatusOK)
	if got := mustGet(t, svc, task.ID); got.Title != "Old title" {
		t.Fatalf("invalid form must not mutate, got %q", got.Title)
	}

	rec = serve(router, postForm(path, url.Values{
		"title":       {"New title"},
		"description": {"details"},
		"is_done":     {"true"},
	}))
	assertRedirect(t, rec, "/")

	got := mustGet(t, svc, task.ID)
	if got.Title != "New title" || got.Description != "details" || !got.IsDone {
		t.Fatalf("unexpected task %+v", got)
	}
	if got.DueDate != nil {
		t.Fatalf("expected due date to be cleared, got %v", got.DueDate)
	}
	if !got.UpdatedAt.After(task.UpdatedAt) {
		t.Fatal("expected updated_at to increase")
	}
}

func TestDeleteTask(t *testing.T) {
	svc := newTestService()
	task := mustCreate(t, svc, services.CreateTaskParams{Title: "Doomed"})
	router := newTestRouter(t, svc)
	path := "/task/" + task.ID + "/delete/"

	rec := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
	assertStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Doomed") {
		t.Fatal("expected confirmation to name the task")
	}
	mustGet(t, svc, task.ID)

	rec = serve(router, postForm(path, nil))
	assertRedirect(t, rec, "/")

	if _, err := svc.GetTask(context.Background(), task.ID); !errors.Is(err, services.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestToggleTaskDone(t *testing.T) {
	svc := newTestService()
	task := mustCreate(t, svc, services.CreateTaskParams{Title: "Toggle me"})
	router := newTestRouter(t, svc)
	path := "/task/" + task.ID + "/toggle-done/"

	assertRedirect(t, serve(router, httptest.NewRequest(http.MethodGet, path, nil)), "/")
	if !mustGet(t, svc, task.ID).IsDone {
		t.Fatal("expected task to be done")
	}

	assertRedirect(t, serve(router, httptest.NewRequest(http.MethodGet, path, nil)), "/")
	if mustGet(t, svc, task.ID).IsDone {
		t.Fatal("expected task to be undone")
	}
}

func TestUnknownTaskIsNotFound(t *testing.T) {
	router := newTestRouter(t, newTestService())

	for _, path := range []string{
		"/task/999/edit/",
		"/task/999/delete/",
		"/task/999/toggle-done/",
		"/task/abc/edit/",
	} {
		rec := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		assertStatus(t, rec, http.StatusNotFound)
	}

	rec := serve(router, postForm("/task/999/delete/", nil))
	assertStatus(t, rec, http.StatusNotFound)
}

func TestMethodsNotAllowed(t *testing.T) {
	router := newTestRouter(t, newTestService())

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/task/reorder/", nil))
	assertStatus(t, rec, http.StatusMethodNotAllowed)
	if got := rec.Header().Get("Allow"); got != http.MethodPost {
		t.Fatalf("expected Allow: POST, got %q", got)
	}

	rec = serve(router, httptest.NewRequest(http.MethodPut, "/", nil))
	assertStatus(t, rec, http.StatusMethodNotAllowed)

	rec = serve(router, httptest.NewRequest(http.MethodPost, "/task/1/toggle-done/", nil))
	assertStatus(t, rec, http.StatusMethodNotAllowed)
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(t, newTestService())

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assertStatus(t, rec, http.StatusOK)
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = serve(router, req)
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHealth(t *testing.T) {
	rec := serve(newTestRouter(t, newTestService()), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assertStatus(t, rec, http.StatusOK)
	if got := decodeBody(t, rec)["status"]; got != "ok" {
		t.Fatalf("expected ok, got %q", got)
	}
}
