package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"dayline/internal/config"
	"dayline/internal/dates"
	"dayline/internal/db"
	"dayline/internal/domain"
	"dayline/internal/engine"
	"dayline/internal/migrate"
	"dayline/internal/store"
)

type testServer struct {
	URL    string
	engine engine.Engine
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	workspace := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Default("tester")
	st := store.New(domain.Counters{DailyGoal: cfg.Profile.DailyGoal})
	e := engine.New(conn, st, cfg)
	e.Clock = dates.Fixed(time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local))
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	handler, err := New(Config{Engine: e, BasePath: "/v0"})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		engine: e,
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			e.Flush()
			conn.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func TestHealth(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/health", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health status %d: %s", res.StatusCode, string(data))
	}
}

func TestToggleTaskCounts(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/tasks", map[string]any{"text": "write report"})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create task status %d: %s", res.StatusCode, string(data))
	}
	var created TaskResponse
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/tasks/"+created.ID+"/toggle", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("toggle status %d: %s", res.StatusCode, string(data))
	}
	var status StatusResponse
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if status.TodayCompleted != 1 {
		t.Fatalf("today_completed = %d, want 1", status.TodayCompleted)
	}
	if status.FocusID != "" {
		t.Fatalf("focus not cleared on completion: %q", status.FocusID)
	}

	// Un-completing never rolls the counter back.
	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/tasks/"+created.ID+"/toggle", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("second toggle status %d: %s", res.StatusCode, string(data))
	}
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if status.TodayCompleted != 1 {
		t.Fatalf("today_completed after reopen = %d, want 1", status.TodayCompleted)
	}
}

func TestToggleUnknownTask(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks/nope/toggle", nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d: %s", res.StatusCode, string(data))
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if envelope.Error.Code != "not_found" {
		t.Fatalf("error code %q, want not_found", envelope.Error.Code)
	}
}

func TestGoalToggleDoesNotCount(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/courses", map[string]any{"name": "Algorithms"})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create course status %d: %s", res.StatusCode, string(data))
	}
	var course CourseResponse
	if err := json.Unmarshal(data, &course); err != nil {
		t.Fatalf("unmarshal course: %v", err)
	}
	if len(course.Categories) == 0 {
		t.Fatalf("course has no seeded categories")
	}
	catID := course.Categories[0].ID

	res, data = doJSON(t, client, http.MethodPost,
		srv.URL+"/v0/courses/"+course.ID+"/categories/"+catID+"/goals",
		map[string]any{"title": "Week 1"})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create goal status %d: %s", res.StatusCode, string(data))
	}
	var goal GoalResponse
	if err := json.Unmarshal(data, &goal); err != nil {
		t.Fatalf("unmarshal goal: %v", err)
	}

	res, data = doJSON(t, client, http.MethodPost,
		srv.URL+"/v0/courses/"+course.ID+"/categories/"+catID+"/goals/"+goal.ID+"/toggle", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("toggle goal status %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/status", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", res.StatusCode, string(data))
	}
	var status StatusResponse
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if status.TodayCompleted != 0 {
		t.Fatalf("goal toggle fed the counter: today_completed = %d", status.TodayCompleted)
	}
}

func TestConvertGoalLinksTask(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()

	_, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/courses", map[string]any{"name": "Databases"})
	var course CourseResponse
	if err := json.Unmarshal(data, &course); err != nil {
		t.Fatalf("unmarshal course: %v", err)
	}
	catID := course.Categories[0].ID
	_, data = doJSON(t, client, http.MethodPost,
		srv.URL+"/v0/courses/"+course.ID+"/categories/"+catID+"/goals",
		map[string]any{"title": "Normalization"})
	var goal GoalResponse
	if err := json.Unmarshal(data, &goal); err != nil {
		t.Fatalf("unmarshal goal: %v", err)
	}

	res, data := doJSON(t, client, http.MethodPost,
		srv.URL+"/v0/courses/"+course.ID+"/categories/"+catID+"/goals/"+goal.ID+"/convert", nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("convert status %d: %s", res.StatusCode, string(data))
	}
	var task TaskResponse
	if err := json.Unmarshal(data, &task); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	if task.LinkedGoalID != goal.ID {
		t.Fatalf("task not linked to goal: %q", task.LinkedGoalID)
	}
	if task.Text != "[Databases - "+course.Categories[0].Name+"] Normalization" {
		t.Fatalf("unexpected task text %q", task.Text)
	}

	// Completing the task mirrors into the goal.
	doJSON(t, client, http.MethodPost, srv.URL+"/v0/tasks/"+task.ID+"/toggle", nil)
	_, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/courses", nil)
	var courses []CourseResponse
	if err := json.Unmarshal(data, &courses); err != nil {
		t.Fatalf("unmarshal courses: %v", err)
	}
	if !courses[0].Categories[0].Goals[0].Completed {
		t.Fatalf("goal not mirrored on task completion")
	}
}

func TestSetDailyGoalBounds(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPut, srv.URL+"/v0/profile/daily-goal", map[string]any{"daily_goal": 0})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, client, http.MethodPut, srv.URL+"/v0/profile/daily-goal", map[string]any{"daily_goal": 3})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", res.StatusCode, string(data))
	}
	var status StatusResponse
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if status.DailyGoal != 3 {
		t.Fatalf("daily_goal = %d, want 3", status.DailyGoal)
	}
}

func TestSnapshotEchoDiscarded(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()

	doJSON(t, client, http.MethodPost, srv.URL+"/v0/tasks", map[string]any{"text": "own work"})

	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/v0/snapshot", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get snapshot status %d: %s", res.StatusCode, string(data))
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}

	// Pushing back our own snapshot is an echo and must be discarded.
	res, data = doJSON(t, client, http.MethodPut, srv.URL+"/v0/snapshot", snap)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("put snapshot status %d: %s", res.StatusCode, string(data))
	}
	var applied ApplySnapshotResponse
	if err := json.Unmarshal(data, &applied); err != nil {
		t.Fatalf("unmarshal apply response: %v", err)
	}
	if applied.Applied {
		t.Fatalf("echo snapshot was applied")
	}

	// A genuinely newer revision from another session wins.
	remote := snap
	remote.Revision = snap.Revision + 10
	remote.Todos = append(remote.Todos, domain.Task{ID: "remote-1", Text: "from elsewhere", CreatedAt: "2024-05-06T09:00:00Z"})
	res, data = doJSON(t, client, http.MethodPut, srv.URL+"/v0/snapshot", remote)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("put remote snapshot status %d: %s", res.StatusCode, string(data))
	}
	if err := json.Unmarshal(data, &applied); err != nil {
		t.Fatalf("unmarshal apply response: %v", err)
	}
	if !applied.Applied {
		t.Fatalf("newer remote snapshot was discarded")
	}

	_, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/tasks", nil)
	var tasks []TaskResponse
	if err := json.Unmarshal(data, &tasks); err != nil {
		t.Fatalf("unmarshal tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("task count after remote apply = %d, want 2", len(tasks))
	}
}

func TestEventsEndpoint(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()

	_, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/tasks", map[string]any{"text": "log me"})
	var created TaskResponse
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	doJSON(t, client, http.MethodPost, srv.URL+"/v0/tasks/"+created.ID+"/toggle", nil)

	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/v0/events?type=task.completed", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("events status %d: %s", res.StatusCode, string(data))
	}
	var events []EventResponse
	if err := json.Unmarshal(data, &events); err != nil {
		t.Fatalf("unmarshal events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("event count = %d, want 1", len(events))
	}
	if events[0].EntityID != created.ID {
		t.Fatalf("event entity %q, want %q", events[0].EntityID, created.ID)
	}
}
