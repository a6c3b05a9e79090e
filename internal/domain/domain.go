package domain

type Task struct {
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

type Course struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Color      string     `json:"color,omitempty"`
	Categories []Category `json:"categories"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Goals []Goal `json:"goals"`
}

type Goal struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Subtitle     string         `json:"subtitle,omitempty"`
	Completed    bool           `json:"completed"`
	LinkedTaskID string         `json:"linked_task_id,omitempty"`
	PDF          *PDFAttachment `json:"pdf_attachment,omitempty"`
}

// PDFAttachment is carried opaquely through snapshots; the service never
// inspects the payload.
type PDFAttachment struct {
	Name string `json:"name"`
	Data string `json:"data,omitempty"`
}

// Counters is the daily-goal/streak scalar state. TodayCompletedCount is
// only meaningful while LastResetDate equals the current calendar day.
type Counters struct {
	DailyGoal           int    `json:"daily_goal"`
	Streak              int    `json:"streak"`
	LastCompletionDate  string `json:"last_completion_date,omitempty" format:"date-time"`
	TodayCompletedCount int    `json:"today_completed_count"`
	LastResetDate       string `json:"last_reset_date,omitempty"`
}

// Snapshot is the persisted document for a profile. Revision increases
// monotonically with every locally-issued save and gates remote echoes.
type Snapshot struct {
	Todos               []Task   `json:"todos"`
	Courses             []Course `json:"courses"`
	FocusID             string   `json:"focus_id,omitempty"`
	DailyGoal           int      `json:"daily_goal"`
	Streak              int      `json:"streak"`
	LastCompletionDate  string   `json:"last_completion_date,omitempty" format:"date-time"`
	TodayCompletedCount int      `json:"today_completed_count"`
	LastResetDate       string   `json:"last_reset_date,omitempty"`
	Revision            int64    `json:"revision"`
	LastUpdated         string   `json:"last_updated,omitempty" format:"date-time"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	Payload    string `json:"payload_json"`
}
