package server

import (
	"encoding/json"

	"dayline/internal/domain"
)

// Request payloads

type CreateTaskRequest struct {
	Text  string  `json:"text"`
	Days  *int    `json:"days,omitempty"`
	Color *string `json:"color,omitempty"`
}

type UpdateTaskRequest struct {
	Text  *string `json:"text,omitempty"`
	Days  *int    `json:"days,omitempty"`
	Color *string `json:"color,omitempty"`
}

type SetFocusRequest struct {
	TaskID string `json:"task_id"`
}

type SetDailyGoalRequest struct {
	DailyGoal int `json:"daily_goal" minimum:"1" maximum:"50"`
}

type CreateCourseRequest struct {
	Name string `json:"name,omitempty"`
}

type UpdateCourseRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

type CreateGoalRequest struct {
	Title string `json:"title"`
}

type UpdateGoalRequest struct {
	Title    *string               `json:"title,omitempty"`
	Subtitle *string               `json:"subtitle,omitempty"`
	PDF      *domain.PDFAttachment `json:"pdf_attachment,omitempty"`
}

// Response payloads

type TaskResponse struct {
	ID               string  `json:"id"`
	Text             string  `json:"text"`
	Days             int     `json:"days,omitempty"`
	Color            string  `json:"color,omitempty"`
	Completed        bool    `json:"completed"`
	CreatedAt        string  `json:"created_at" format:"date-time"`
	CompletedAt      *string `json:"completed_at,omitempty" format:"date-time"`
	LinkedGoalID     string  `json:"linked_goal_id,omitempty"`
	LinkedCourseID   string  `json:"linked_course_id,omitempty"`
	LinkedCategoryID string  `json:"linked_category_id,omitempty"`
}

type GoalResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle,omitempty"`
	Completed    bool   `json:"completed"`
	LinkedTaskID string `json:"linked_task_id,omitempty"`
	HasPDF       bool   `json:"has_pdf"`
	PDFName      string `json:"pdf_name,omitempty"`
}

type CategoryResponse struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Goals []GoalResponse `json:"goals"`
}

type CourseResponse struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Color      string             `json:"color,omitempty"`
	Categories []CategoryResponse `json:"categories"`
}

type StatusResponse struct {
	TodayCompleted int    `json:"today_completed"`
	DailyGoal      int    `json:"daily_goal"`
	Streak         int    `json:"streak"`
	GoalMet        bool   `json:"goal_met"`
	FocusID        string `json:"focus_id,omitempty"`
}

type EventResponse struct {
	ID         int64           `json:"id"`
	TS         string          `json:"ts" format:"date-time"`
	Type       string          `json:"type"`
	EntityKind string          `json:"entity_kind"`
	EntityID   string          `json:"entity_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type ApplySnapshotResponse struct {
	Applied  bool  `json:"applied"`
	Revision int64 `json:"revision"`
}

func taskResponse(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:               t.ID,
		Text:             t.Text,
		Days:             t.Days,
		Color:            t.Color,
		Completed:        t.Completed,
		CreatedAt:        t.CreatedAt,
		CompletedAt:      t.CompletedAt,
		LinkedGoalID:     t.LinkedGoalID,
		LinkedCourseID:   t.LinkedCourseID,
		LinkedCategoryID: t.LinkedCategoryID,
	}
}

func mapTasks(tasks []domain.Task) []TaskResponse {
	res := []TaskResponse{}
	for _, t := range tasks {
		res = append(res, taskResponse(t))
	}
	return res
}

func goalResponse(g domain.Goal) GoalResponse {
	res := GoalResponse{
		ID:           g.ID,
		Title:        g.Title,
		Subtitle:     g.Subtitle,
		Completed:    g.Completed,
		LinkedTaskID: g.LinkedTaskID,
	}
	if g.PDF != nil {
		res.HasPDF = true
		res.PDFName = g.PDF.Name
	}
	return res
}

func categoryResponse(cat domain.Category) CategoryResponse {
	res := CategoryResponse{ID: cat.ID, Name: cat.Name, Goals: []GoalResponse{}}
	for _, g := range cat.Goals {
		res.Goals = append(res.Goals, goalResponse(g))
	}
	return res
}

func courseResponse(c domain.Course) CourseResponse {
	res := CourseResponse{ID: c.ID, Name: c.Name, Color: c.Color, Categories: []CategoryResponse{}}
	for _, cat := range c.Categories {
		res.Categories = append(res.Categories, categoryResponse(cat))
	}
	return res
}

func mapCourses(courses []domain.Course) []CourseResponse {
	res := []CourseResponse{}
	for _, c := range courses {
		res = append(res, courseResponse(c))
	}
	return res
}

func eventResponse(evt domain.Event) EventResponse {
	res := EventResponse{
		ID:         evt.ID,
		TS:         evt.TS,
		Type:       evt.Type,
		EntityKind: evt.EntityKind,
		EntityID:   evt.EntityID,
	}
	if evt.Payload != "" && json.Valid([]byte(evt.Payload)) {
		res.Payload = json.RawMessage(evt.Payload)
	}
	return res
}
