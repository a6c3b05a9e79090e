package daylinesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Dayline HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Task represents the API task model.
type Task struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Completed    bool   `json:"completed"`
	CreatedAt    string `json:"created_at"`
	LinkedGoalID string `json:"linked_goal_id,omitempty"`
}

// Status is the daily-goal/streak summary.
type Status struct {
	TodayCompleted int    `json:"today_completed"`
	DailyGoal      int    `json:"daily_goal"`
	Streak         int    `json:"streak"`
	GoalMet        bool   `json:"goal_met"`
	FocusID        string `json:"focus_id,omitempty"`
}

// Event represents a log entry.
type Event struct {
	ID         int64          `json:"id"`
	TS         string         `json:"ts"`
	Type       string         `json:"type"`
	EntityKind string         `json:"entity_kind"`
	EntityID   string         `json:"entity_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Snapshot is the full persisted document.
type Snapshot struct {
	Todos               []Task   `json:"todos"`
	Courses             []Course `json:"courses"`
	FocusID             string   `json:"focus_id,omitempty"`
	DailyGoal           int      `json:"daily_goal"`
	Streak              int      `json:"streak"`
	LastCompletionDate  string   `json:"last_completion_date,omitempty"`
	TodayCompletedCount int      `json:"today_completed_count"`
	LastResetDate       string   `json:"last_reset_date,omitempty"`
	Revision            int64    `json:"revision"`
	LastUpdated         string   `json:"last_updated,omitempty"`
}

// Course is a goal container with categories.
type Course struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
}

// Category groups goals inside a course.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Goals []Goal `json:"goals"`
}

// Goal is a course goal.
type Goal struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Completed    bool   `json:"completed"`
	LinkedTaskID string `json:"linked_task_id,omitempty"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, text string) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodPost, "v0/tasks", map[string]any{"text": text}, &resp)
	return resp, err
}

// ListTasks returns all tasks.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var resp []Task
	err := c.do(ctx, http.MethodGet, "v0/tasks", nil, &resp)
	return resp, err
}

// ToggleTask flips a task's completion and returns the reconciled status.
func (c *Client) ToggleTask(ctx context.Context, id string) (Status, error) {
	var resp Status
	endpoint := fmt.Sprintf("v0/tasks/%s/toggle", url.PathEscape(id))
	err := c.do(ctx, http.MethodPost, endpoint, nil, &resp)
	return resp, err
}

// Status returns today's progress and the streak.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var resp Status
	err := c.do(ctx, http.MethodGet, "v0/status", nil, &resp)
	return resp, err
}

// GetSnapshot returns the full state document.
func (c *Client) GetSnapshot(ctx context.Context) (Snapshot, error) {
	var resp Snapshot
	err := c.do(ctx, http.MethodGet, "v0/snapshot", nil, &resp)
	return resp, err
}

// ApplySnapshot pushes a snapshot from another session. The server
// discards echoes of its own saves; applied reports whether it took.
func (c *Client) ApplySnapshot(ctx context.Context, snap Snapshot) (bool, error) {
	var resp struct {
		Applied bool `json:"applied"`
	}
	err := c.do(ctx, http.MethodPut, "v0/snapshot", snap, &resp)
	return resp.Applied, err
}

// SetDailyGoal sets the daily completion goal (1-50).
func (c *Client) SetDailyGoal(ctx context.Context, goal int) (Status, error) {
	var resp Status
	err := c.do(ctx, http.MethodPut, "v0/profile/daily-goal", map[string]any{"daily_goal": goal}, &resp)
	return resp, err
}

// Events returns recent events.
func (c *Client) Events(ctx context.Context, limit int) ([]Event, error) {
	endpoint := "v0/events"
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var resp []Event
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
