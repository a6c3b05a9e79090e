// Package engine is the completion coordinator: every user action enters
// here, mutates the in-memory store synchronously, feeds the streak
// machinery when a task newly completes, then persists and notifies
// asynchronously.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"dayline/internal/config"
	"dayline/internal/dates"
	"dayline/internal/domain"
	"dayline/internal/events"
	"dayline/internal/repo"
	"dayline/internal/store"
	"dayline/internal/streak"
)

type Engine struct {
	Store  *store.Store
	Repo   repo.Repo
	Events events.Writer
	Config *config.Config
	Clock  dates.Clock

	// Notify receives celebration messages; nil disables them.
	Notify func(message string)
	// OnChange is the render signal, fired after every accepted mutation.
	OnChange func()

	saves *sync.WaitGroup
}

func New(conn *sql.DB, st *store.Store, cfg *config.Config) Engine {
	return Engine{
		Store:  st,
		Repo:   repo.Repo{DB: conn},
		Events: events.Writer{DB: conn},
		Config: cfg,
		saves:  &sync.WaitGroup{},
	}
}

func (e Engine) profileID() string {
	if e.Config != nil && e.Config.Profile.ID != "" {
		return e.Config.Profile.ID
	}
	return "local"
}

func (e Engine) defaultDailyGoal() int {
	if e.Config != nil && e.Config.Profile.DailyGoal >= config.MinDailyGoal && e.Config.Profile.DailyGoal <= config.MaxDailyGoal {
		return e.Config.Profile.DailyGoal
	}
	return 5
}

// persist saves the current snapshot fire-and-forget: the in-memory state
// stays authoritative for the session and a failed save is only logged.
// notify=false is used for silent background resets.
func (e Engine) persist(notify bool) {
	snap := e.Store.SnapshotForSave(e.Clock.Time().UTC().Format(time.RFC3339))
	profileID := e.profileID()
	e.saves.Add(1)
	go func() {
		defer e.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Repo.SaveSnapshot(ctx, profileID, snap); err != nil {
			log.Printf("save snapshot failed: %v", err)
		}
	}()
	if notify && e.OnChange != nil {
		e.OnChange()
	}
}

// Flush waits for in-flight saves; CLI commands call it before exit.
func (e Engine) Flush() {
	e.saves.Wait()
}

func (e Engine) appendEvent(ctx context.Context, evtType, entityKind, entityID string, payload events.EventPayload) {
	if err := e.Events.Append(ctx, evtType, entityKind, entityID, payload); err != nil {
		log.Printf("append event %s failed: %v", evtType, err)
	}
}

// TaskCreateOptions are parameters for adding a task.
type TaskCreateOptions struct {
	Text  string
	Days  int
	Color string
}

func (e Engine) AddTask(ctx context.Context, opts TaskCreateOptions) (domain.Task, error) {
	if opts.Text == "" {
		return domain.Task{}, errors.New("text is required")
	}
	t := domain.Task{
		ID:        uuid.New().String(),
		Text:      opts.Text,
		Days:      opts.Days,
		Color:     opts.Color,
		CreatedAt: e.Clock.Time().Format(time.RFC3339),
	}
	e.Store.Update(func(st *store.State) {
		st.Tasks = append(st.Tasks, t)
		if st.FocusID == "" {
			st.FocusID = t.ID
		}
	})
	e.appendEvent(ctx, "task.created", "task", t.ID, events.EventPayload{"text": t.Text})
	e.persist(true)
	return t, nil
}

// TaskUpdateOptions applies only the named fields.
type TaskUpdateOptions struct {
	Text  *string
	Days  *int
	Color *string
}

func (e Engine) UpdateTask(ctx context.Context, id string, opts TaskUpdateOptions) (domain.Task, bool) {
	var (
		out   domain.Task
		found bool
	)
	e.Store.Update(func(st *store.State) {
		t := st.FindTask(id)
		if t == nil {
			return
		}
		if opts.Text != nil {
			t.Text = *opts.Text
		}
		if opts.Days != nil {
			t.Days = *opts.Days
		}
		if opts.Color != nil {
			t.Color = *opts.Color
		}
		out, found = *t, true
	})
	if !found {
		return domain.Task{}, false
	}
	e.persist(true)
	return out, true
}

// ToggleTask flips a task's completion. A stale id is a silent no-op —
// callers may race with deletion. On false→true the completion feeds the
// daily counter and streak; on true→false nothing is rolled back: the
// counters are monotonic per day, so undoing a completion does not
// subtract from the count or the streak.
func (e Engine) ToggleTask(ctx context.Context, id string) bool {
	var (
		found     bool
		completed bool
		reset     bool
		upd       streak.Update
		streakErr error
	)
	e.Store.Update(func(st *store.State) {
		t := st.FindTask(id)
		if t == nil {
			return
		}
		found = true
		t.Completed = !t.Completed
		completed = t.Completed
		if t.Completed {
			now := e.Clock.Time().Format(time.RFC3339)
			t.CompletedAt = &now
			if st.FocusID == t.ID {
				st.FocusID = ""
			}
			reset = streak.ReconcileDailyCounter(&st.Counters, e.Clock)
			if streakErr = streak.RecordCompletion(&st.Counters, e.Clock); streakErr == nil {
				upd, streakErr = streak.UpdateStreak(&st.Counters, e.Clock)
			}
		} else {
			t.CompletedAt = nil
		}
		// One-hop mirror to the linked goal: plain field assignment, never
		// a recursive ToggleGoal, so propagation cannot loop.
		if t.LinkedGoalID != "" {
			if g := st.FindGoal(t.LinkedCourseID, t.LinkedCategoryID, t.LinkedGoalID); g != nil {
				g.Completed = t.Completed
			}
		}
	})
	if !found {
		return false
	}
	if streakErr != nil {
		log.Printf("streak update failed: %v", streakErr)
	}
	if reset {
		e.appendEvent(ctx, "counter.reset", "counters", "", nil)
	}
	if completed {
		e.appendEvent(ctx, "task.completed", "task", id, nil)
		if upd.GoalMet {
			if upd.Streak > 1 {
				e.appendEvent(ctx, "streak.extended", "counters", "", events.EventPayload{"streak": upd.Streak})
				e.celebrate(fmt.Sprintf("🔥 %d day streak! Keep it up!", upd.Streak))
			} else {
				e.appendEvent(ctx, "streak.started", "counters", "", nil)
			}
		}
	} else {
		e.appendEvent(ctx, "task.reopened", "task", id, nil)
	}
	e.persist(true)
	return true
}

func (e Engine) celebrate(msg string) {
	if e.Notify == nil {
		return
	}
	if e.Config != nil && !e.Config.Celebrations {
		return
	}
	e.Notify(msg)
}

func (e Engine) DeleteTask(ctx context.Context, id string) bool {
	var found bool
	e.Store.Update(func(st *store.State) {
		for i := range st.Tasks {
			if st.Tasks[i].ID == id {
				st.Tasks = append(st.Tasks[:i], st.Tasks[i+1:]...)
				found = true
				break
			}
		}
		if st.FocusID == id {
			st.FocusID = ""
		}
	})
	if !found {
		return false
	}
	e.appendEvent(ctx, "task.deleted", "task", id, nil)
	e.persist(true)
	return true
}

// RestoreTask reopens a completed task without touching the counters.
func (e Engine) RestoreTask(ctx context.Context, id string) bool {
	var restored bool
	e.Store.Update(func(st *store.State) {
		t := st.FindTask(id)
		if t == nil || !t.Completed {
			return
		}
		t.Completed = false
		t.CompletedAt = nil
		restored = true
	})
	if !restored {
		return false
	}
	e.appendEvent(ctx, "task.reopened", "task", id, nil)
	e.persist(true)
	return true
}

func (e Engine) SetFocus(ctx context.Context, id string) bool {
	var found bool
	e.Store.Update(func(st *store.State) {
		if st.FindTask(id) == nil {
			return
		}
		st.FocusID = id
		found = true
	})
	if !found {
		return false
	}
	e.appendEvent(ctx, "focus.set", "task", id, nil)
	e.persist(true)
	return true
}

func (e Engine) ClearFocus(ctx context.Context) {
	e.Store.Update(func(st *store.State) { st.FocusID = "" })
	e.appendEvent(ctx, "focus.cleared", "task", "", nil)
	e.persist(true)
}

// RandomFocus picks a random active task as the focus.
func (e Engine) RandomFocus(ctx context.Context) (domain.Task, bool) {
	var (
		picked domain.Task
		found  bool
	)
	e.Store.Update(func(st *store.State) {
		var active []domain.Task
		for _, t := range st.Tasks {
			if !t.Completed {
				active = append(active, t)
			}
		}
		if len(active) == 0 {
			return
		}
		picked = active[rand.Intn(len(active))]
		st.FocusID = picked.ID
		found = true
	})
	if !found {
		return domain.Task{}, false
	}
	e.appendEvent(ctx, "focus.set", "task", picked.ID, nil)
	e.persist(true)
	return picked, true
}

// SetDailyGoal rejects out-of-range values before the store is touched.
func (e Engine) SetDailyGoal(ctx context.Context, goal int) error {
	if goal < config.MinDailyGoal || goal > config.MaxDailyGoal {
		return fmt.Errorf("daily goal must be between %d and %d", config.MinDailyGoal, config.MaxDailyGoal)
	}
	e.Store.Update(func(st *store.State) { st.Counters.DailyGoal = goal })
	e.appendEvent(ctx, "profile.updated", "counters", "", events.EventPayload{"daily_goal": goal})
	e.persist(true)
	return nil
}

func (e Engine) AddCourse(ctx context.Context, name string) domain.Course {
	if name == "" {
		name = "New Course"
	}
	c := domain.Course{
		ID:    uuid.New().String(),
		Name:  name,
		Color: "blue",
		Categories: []domain.Category{
			{ID: uuid.New().String(), Name: "Lectures", Goals: []domain.Goal{}},
			{ID: uuid.New().String(), Name: "Assignments", Goals: []domain.Goal{}},
		},
	}
	e.Store.Update(func(st *store.State) {
		st.Courses = append(st.Courses, c)
	})
	e.appendEvent(ctx, "course.created", "course", c.ID, events.EventPayload{"name": c.Name})
	e.persist(true)
	return c
}

// CourseUpdateOptions applies only the named fields.
type CourseUpdateOptions struct {
	Name  *string
	Color *string
}

func (e Engine) UpdateCourse(ctx context.Context, id string, opts CourseUpdateOptions) (domain.Course, bool) {
	var (
		out   domain.Course
		found bool
	)
	e.Store.Update(func(st *store.State) {
		c := st.FindCourse(id)
		if c == nil {
			return
		}
		if opts.Name != nil {
			c.Name = *opts.Name
		}
		if opts.Color != nil {
			c.Color = *opts.Color
		}
		out, found = *c, true
	})
	if !found {
		return domain.Course{}, false
	}
	e.persist(true)
	return out, true
}

func (e Engine) DeleteCourse(ctx context.Context, id string) bool {
	var found bool
	e.Store.Update(func(st *store.State) {
		for i := range st.Courses {
			if st.Courses[i].ID == id {
				st.Courses = append(st.Courses[:i], st.Courses[i+1:]...)
				found = true
				return
			}
		}
	})
	if !found {
		return false
	}
	e.appendEvent(ctx, "course.deleted", "course", id, nil)
	e.persist(true)
	return true
}

func (e Engine) AddCategory(ctx context.Context, courseID, name string) (domain.Category, bool) {
	cat := domain.Category{ID: uuid.New().String(), Name: name, Goals: []domain.Goal{}}
	var found bool
	e.Store.Update(func(st *store.State) {
		c := st.FindCourse(courseID)
		if c == nil {
			return
		}
		c.Categories = append(c.Categories, cat)
		found = true
	})
	if !found {
		return domain.Category{}, false
	}
	e.persist(true)
	return cat, true
}

func (e Engine) DeleteCategory(ctx context.Context, courseID, categoryID string) bool {
	var found bool
	e.Store.Update(func(st *store.State) {
		c := st.FindCourse(courseID)
		if c == nil {
			return
		}
		for i := range c.Categories {
			if c.Categories[i].ID == categoryID {
				c.Categories = append(c.Categories[:i], c.Categories[i+1:]...)
				found = true
				return
			}
		}
	})
	if !found {
		return false
	}
	e.persist(true)
	return true
}

func (e Engine) AddGoal(ctx context.Context, courseID, categoryID, title string) (domain.Goal, bool) {
	g := domain.Goal{ID: uuid.New().String(), Title: title}
	var found bool
	e.Store.Update(func(st *store.State) {
		cat := st.FindCategory(courseID, categoryID)
		if cat == nil {
			return
		}
		cat.Goals = append(cat.Goals, g)
		found = true
	})
	if !found {
		return domain.Goal{}, false
	}
	e.appendEvent(ctx, "goal.created", "goal", g.ID, nil)
	e.persist(true)
	return g, true
}

// GoalUpdateOptions applies only the named fields. PDF attaches or (with
// an explicit nil) detaches the opaque attachment.
type GoalUpdateOptions struct {
	Title    *string
	Subtitle *string
	PDF      **domain.PDFAttachment
}

func (e Engine) UpdateGoal(ctx context.Context, courseID, categoryID, goalID string, opts GoalUpdateOptions) (domain.Goal, bool) {
	var (
		out   domain.Goal
		found bool
	)
	e.Store.Update(func(st *store.State) {
		g := st.FindGoal(courseID, categoryID, goalID)
		if g == nil {
			return
		}
		if opts.Title != nil {
			g.Title = *opts.Title
		}
		if opts.Subtitle != nil {
			g.Subtitle = *opts.Subtitle
		}
		if opts.PDF != nil {
			g.PDF = *opts.PDF
		}
		out, found = *g, true
	})
	if !found {
		return domain.Goal{}, false
	}
	e.persist(true)
	return out, true
}

func (e Engine) DeleteGoal(ctx context.Context, courseID, categoryID, goalID string) bool {
	var found bool
	e.Store.Update(func(st *store.State) {
		cat := st.FindCategory(courseID, categoryID)
		if cat == nil {
			return
		}
		for i := range cat.Goals {
			if cat.Goals[i].ID == goalID {
				cat.Goals = append(cat.Goals[:i], cat.Goals[i+1:]...)
				found = true
				return
			}
		}
	})
	if !found {
		return false
	}
	e.appendEvent(ctx, "goal.deleted", "goal", goalID, nil)
	e.persist(true)
	return true
}

// ToggleGoal flips a goal's completion and mirrors it to the linked task
// with a plain field assignment — one hop, no recursion, and no feed into
// the daily counter or streak. Only task-originated completions count
// toward the daily goal; this asymmetry keeps linked goals from
// double-counting.
func (e Engine) ToggleGoal(ctx context.Context, courseID, categoryID, goalID string) bool {
	var (
		found     bool
		completed bool
	)
	e.Store.Update(func(st *store.State) {
		g := st.FindGoal(courseID, categoryID, goalID)
		if g == nil {
			return
		}
		found = true
		g.Completed = !g.Completed
		completed = g.Completed
		if g.LinkedTaskID != "" {
			if t := st.FindTask(g.LinkedTaskID); t != nil {
				t.Completed = g.Completed
				if t.Completed {
					if st.FocusID == t.ID {
						st.FocusID = ""
					}
				} else {
					t.CompletedAt = nil
				}
			}
		}
	})
	if !found {
		return false
	}
	e.appendEvent(ctx, "goal.toggled", "goal", goalID, events.EventPayload{"completed": completed})
	e.persist(true)
	return true
}

// ConvertGoal creates a task from a goal and links the pair. The new task
// carries the goal's completed state; the conversion itself never counts
// as a completion.
func (e Engine) ConvertGoal(ctx context.Context, courseID, categoryID, goalID string) (domain.Task, bool) {
	var (
		t     domain.Task
		found bool
	)
	e.Store.Update(func(st *store.State) {
		c := st.FindCourse(courseID)
		if c == nil {
			return
		}
		cat := st.FindCategory(courseID, categoryID)
		if cat == nil {
			return
		}
		g := st.FindGoal(courseID, categoryID, goalID)
		if g == nil {
			return
		}
		t = domain.Task{
			ID:               uuid.New().String(),
			Text:             fmt.Sprintf("[%s - %s] %s", c.Name, cat.Name, g.Title),
			Color:            c.Color,
			Completed:        g.Completed,
			CreatedAt:        e.Clock.Time().Format(time.RFC3339),
			LinkedGoalID:     g.ID,
			LinkedCourseID:   c.ID,
			LinkedCategoryID: cat.ID,
		}
		st.Tasks = append(st.Tasks, t)
		g.LinkedTaskID = t.ID
		found = true
	})
	if !found {
		return domain.Task{}, false
	}
	e.appendEvent(ctx, "goal.converted", "goal", goalID, events.EventPayload{"task_id": t.ID})
	e.persist(true)
	return t, true
}

// Load pulls the profile's snapshot into the store — remote is
// authoritative on load — then lazily expires the streak and reconciles
// the daily counter. Runs once per session.
func (e Engine) Load(ctx context.Context) error {
	snap, err := e.Repo.LoadSnapshot(ctx, e.profileID())
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		snap = domain.Snapshot{DailyGoal: e.defaultDailyGoal()}
	}
	if snap.DailyGoal < config.MinDailyGoal || snap.DailyGoal > config.MaxDailyGoal {
		snap.DailyGoal = e.defaultDailyGoal()
	}
	e.Store.Replace(snap)
	var expired, reset bool
	e.Store.Update(func(st *store.State) {
		expired = streak.CheckExpiration(&st.Counters, e.Clock)
		reset = streak.ReconcileDailyCounter(&st.Counters, e.Clock)
	})
	if expired {
		e.appendEvent(ctx, "streak.expired", "counters", "", nil)
	}
	if reset {
		e.appendEvent(ctx, "counter.reset", "counters", "", nil)
	}
	// Persist the reset immediately so the previous day's count is not
	// resurrected by a later load; silent, nothing user-visible changed.
	e.persist(false)
	return nil
}

// ApplyRemote applies a snapshot pushed by another session. Echoes of our
// own saves — revision at or below the highest locally issued — are
// discarded.
func (e Engine) ApplyRemote(ctx context.Context, snap domain.Snapshot) bool {
	if !e.Store.ApplyRemote(snap) {
		return false
	}
	var expired bool
	e.Store.Update(func(st *store.State) {
		expired = streak.CheckExpiration(&st.Counters, e.Clock)
	})
	if expired {
		e.appendEvent(ctx, "streak.expired", "counters", "", nil)
	}
	e.appendEvent(ctx, "snapshot.applied", "snapshot", "", events.EventPayload{"revision": snap.Revision})
	if e.OnChange != nil {
		e.OnChange()
	}
	return true
}

// Status is the reconciled daily-goal/streak summary.
type Status struct {
	TodayCompleted int    `json:"today_completed"`
	DailyGoal      int    `json:"daily_goal"`
	Streak         int    `json:"streak"`
	GoalMet        bool   `json:"goal_met"`
	FocusID        string `json:"focus_id,omitempty"`
}

// Status reads the counters after reconciliation; the count is never
// served for a stale day.
func (e Engine) Status(ctx context.Context) Status {
	var (
		s     Status
		reset bool
	)
	e.Store.Update(func(st *store.State) {
		streak.CheckExpiration(&st.Counters, e.Clock)
		reset = streak.ReconcileDailyCounter(&st.Counters, e.Clock)
		s = Status{
			TodayCompleted: st.Counters.TodayCompletedCount,
			DailyGoal:      st.Counters.DailyGoal,
			Streak:         st.Counters.Streak,
			GoalMet:        st.Counters.TodayCompletedCount >= st.Counters.DailyGoal,
			FocusID:        st.FocusID,
		}
	})
	if reset {
		e.appendEvent(ctx, "counter.reset", "counters", "", nil)
		e.persist(false)
	}
	return s
}

// Snapshot returns an immutable view of the full state for rendering.
func (e Engine) Snapshot() domain.Snapshot {
	return e.Store.Snapshot()
}
