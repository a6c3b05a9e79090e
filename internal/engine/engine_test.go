package engine_test

import (
	"context"
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

type testEnv struct {
	Engine engine.Engine
	Ctx    context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Default("tester")
	st := store.New(domain.Counters{DailyGoal: cfg.Profile.DailyGoal})
	eng := engine.New(conn, st, cfg)
	eng.Clock = dates.Fixed(time.Date(2024, 5, 6, 10, 0, 0, 0, time.Local))
	return &testEnv{Engine: eng, Ctx: context.Background()}
}

func (env *testEnv) setClock(t time.Time) {
	env.Engine.Clock = dates.Fixed(t)
}

func (env *testEnv) counters(t *testing.T) domain.Counters {
	t.Helper()
	env.Engine.Flush()
	snap := env.Engine.Snapshot()
	return domain.Counters{
		DailyGoal:           snap.DailyGoal,
		Streak:              snap.Streak,
		LastCompletionDate:  snap.LastCompletionDate,
		TodayCompletedCount: snap.TodayCompletedCount,
		LastResetDate:       snap.LastResetDate,
	}
}

func TestToggleTaskCompletesAndCounts(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Engine.AddTask(env.Ctx, engine.TaskCreateOptions{Text: "write notes"})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if env.Engine.Snapshot().FocusID != task.ID {
		t.Fatalf("first task should become focus")
	}
	if !env.Engine.ToggleTask(env.Ctx, task.ID) {
		t.Fatalf("toggle should find the task")
	}
	snap := env.Engine.Snapshot()
	if !snap.Todos[0].Completed || snap.Todos[0].CompletedAt == nil {
		t.Fatalf("task not completed: %+v", snap.Todos[0])
	}
	if snap.FocusID != "" {
		t.Fatalf("completing the focus task must clear focus")
	}
	if snap.TodayCompletedCount != 1 {
		t.Fatalf("count: %d", snap.TodayCompletedCount)
	}
}

func TestToggleMissingTaskIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	if env.Engine.ToggleTask(env.Ctx, "stale-id") {
		t.Fatalf("stale id must be a silent no-op")
	}
	if c := env.counters(t); c.TodayCompletedCount != 0 {
		t.Fatalf("no-op must not count: %+v", c)
	}
}

func TestUncompleteDoesNotRollBackCounters(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Engine.SetDailyGoal(env.Ctx, 1); err != nil {
		t.Fatal(err)
	}
	task, _ := env.Engine.AddTask(env.Ctx, engine.TaskCreateOptions{Text: "a"})
	env.Engine.ToggleTask(env.Ctx, task.ID)
	before := env.counters(t)
	if before.Streak != 1 || before.TodayCompletedCount != 1 {
		t.Fatalf("setup: %+v", before)
	}
	env.Engine.ToggleTask(env.Ctx, task.ID) // undo
	after := env.counters(t)
	if after.Streak != 1 || after.TodayCompletedCount != 1 {
		t.Fatalf("undo must not roll back counters: %+v", after)
	}
	snap := env.Engine.Snapshot()
	if snap.Todos[0].Completed || snap.Todos[0].CompletedAt != nil {
		t.Fatalf("task should be reopened: %+v", snap.Todos[0])
	}
}

func TestLinkedTaskMirrorsToGoal(t *testing.T) {
	env := newTestEnv(t)
	course := env.Engine.AddCourse(env.Ctx, "Algorithms")
	catID := course.Categories[0].ID
	goal, ok := env.Engine.AddGoal(env.Ctx, course.ID, catID, "week 1 reading")
	if !ok {
		t.Fatalf("add goal")
	}
	task, ok := env.Engine.ConvertGoal(env.Ctx, course.ID, catID, goal.ID)
	if !ok {
		t.Fatalf("convert goal")
	}

	env.Engine.ToggleTask(env.Ctx, task.ID)
	snap := env.Engine.Snapshot()
	if !snap.Courses[0].Categories[0].Goals[0].Completed {
		t.Fatalf("goal must mirror task completion")
	}

	env.Engine.ToggleTask(env.Ctx, task.ID)
	snap = env.Engine.Snapshot()
	if snap.Courses[0].Categories[0].Goals[0].Completed {
		t.Fatalf("goal must mirror task reopen")
	}
}

func TestGoalToggleMirrorsButNeverCounts(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Engine.SetDailyGoal(env.Ctx, 1); err != nil {
		t.Fatal(err)
	}
	course := env.Engine.AddCourse(env.Ctx, "Algorithms")
	catID := course.Categories[0].ID
	goal, _ := env.Engine.AddGoal(env.Ctx, course.ID, catID, "exercise sheet")
	task, _ := env.Engine.ConvertGoal(env.Ctx, course.ID, catID, goal.ID)

	if !env.Engine.ToggleGoal(env.Ctx, course.ID, catID, goal.ID) {
		t.Fatalf("toggle goal")
	}
	snap := env.Engine.Snapshot()
	if !snap.Todos[0].Completed {
		t.Fatalf("linked task must mirror goal completion")
	}
	c := env.counters(t)
	if c.TodayCompletedCount != 0 || c.Streak != 0 {
		t.Fatalf("goal-originated completion must not feed the streak: %+v", c)
	}
	_ = task

	// unlinked goal, same rule
	lone, _ := env.Engine.AddGoal(env.Ctx, course.ID, catID, "read appendix")
	env.Engine.ToggleGoal(env.Ctx, course.ID, catID, lone.ID)
	if c := env.counters(t); c.TodayCompletedCount != 0 {
		t.Fatalf("unlinked goal toggle must not count: %+v", c)
	}
}

func TestToggleGoalMissingLevelsAreNoOps(t *testing.T) {
	env := newTestEnv(t)
	course := env.Engine.AddCourse(env.Ctx, "Algorithms")
	catID := course.Categories[0].ID
	goal, _ := env.Engine.AddGoal(env.Ctx, course.ID, catID, "g")
	if env.Engine.ToggleGoal(env.Ctx, "gone", catID, goal.ID) {
		t.Fatalf("missing course must abort")
	}
	if env.Engine.ToggleGoal(env.Ctx, course.ID, "gone", goal.ID) {
		t.Fatalf("missing category must abort")
	}
	if env.Engine.ToggleGoal(env.Ctx, course.ID, catID, "gone") {
		t.Fatalf("missing goal must abort")
	}
}

func TestConvertGoalCarriesCompletion(t *testing.T) {
	env := newTestEnv(t)
	course := env.Engine.AddCourse(env.Ctx, "Algorithms")
	catID := course.Categories[0].ID
	goal, _ := env.Engine.AddGoal(env.Ctx, course.ID, catID, "lab 2")
	env.Engine.ToggleGoal(env.Ctx, course.ID, catID, goal.ID)

	task, ok := env.Engine.ConvertGoal(env.Ctx, course.ID, catID, goal.ID)
	if !ok || !task.Completed {
		t.Fatalf("converted task must carry completed state: %+v", task)
	}
	if c := env.counters(t); c.TodayCompletedCount != 0 {
		t.Fatalf("conversion is not a completion: %+v", c)
	}
	snap := env.Engine.Snapshot()
	if snap.Courses[0].Categories[0].Goals[0].LinkedTaskID != task.ID {
		t.Fatalf("goal must link back to task")
	}
}

func TestSetDailyGoalBounds(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Engine.SetDailyGoal(env.Ctx, 0); err == nil {
		t.Fatalf("0 must be rejected")
	}
	if err := env.Engine.SetDailyGoal(env.Ctx, 51); err == nil {
		t.Fatalf("51 must be rejected")
	}
	if err := env.Engine.SetDailyGoal(env.Ctx, 50); err != nil {
		t.Fatalf("50 must be accepted: %v", err)
	}
	if c := env.counters(t); c.DailyGoal != 50 {
		t.Fatalf("daily goal not applied: %+v", c)
	}
}

func TestStreakAcrossDaysThroughToggles(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Engine.SetDailyGoal(env.Ctx, 2); err != nil {
		t.Fatal(err)
	}
	mon := time.Date(2024, 5, 6, 9, 0, 0, 0, time.Local)
	tue := mon.AddDate(0, 0, 1)

	env.setClock(mon)
	a, _ := env.Engine.AddTask(env.Ctx, engine.TaskCreateOptions{Text: "a"})
	b, _ := env.Engine.AddTask(env.Ctx, engine.TaskCreateOptions{Text: "b"})
	env.Engine.ToggleTask(env.Ctx, a.ID)
	if c := env.counters(t); c.Streak != 0 || c.TodayCompletedCount != 1 {
		t.Fatalf("after A: %+v", c)
	}
	env.Engine.ToggleTask(env.Ctx, b.ID)
	if c := env.counters(t); c.Streak != 1 || c.TodayCompletedCount != 2 {
		t.Fatalf("after B: %+v", c)
	}

	env.setClock(tue)
	c1, _ := env.Engine.AddTask(env.Ctx, engine.TaskCreateOptions{Text: "c"})
	d1, _ := env.Engine.AddTask(env.Ctx, engine.TaskCreateOptions{Text: "d"})
	env.Engine.ToggleTask(env.Ctx, c1.ID)
	if c := env.counters(t); c.Streak != 1 || c.TodayCompletedCount != 1 {
		t.Fatalf("Tuesday first: %+v", c)
	}
	env.Engine.ToggleTask(env.Ctx, d1.ID)
	if c := env.counters(t); c.Streak != 2 || c.TodayCompletedCount != 2 {
		t.Fatalf("Tuesday second: %+v", c)
	}
}

func TestLoadExpiresStaleStreak(t *testing.T) {
	env := newTestEnv(t)
	old := time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local)
	snap := domain.Snapshot{
		DailyGoal:          2,
		Streak:             6,
		LastCompletionDate: old.Format(time.RFC3339),
		LastResetDate:      dates.DayString(old),
		Revision:           3,
	}
	if err := env.Engine.Repo.SaveSnapshot(env.Ctx, "tester", snap); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
	if err := env.Engine.Load(env.Ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	c := env.counters(t)
	if c.Streak != 0 {
		t.Fatalf("streak must expire on load: %+v", c)
	}
	if c.TodayCompletedCount != 0 || c.LastResetDate != "2024-05-06" {
		t.Fatalf("counter must be reconciled on load: %+v", c)
	}
}

func TestLoadWithoutSnapshotUsesDefaults(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Engine.Load(env.Ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if c := env.counters(t); c.DailyGoal != 5 {
		t.Fatalf("default daily goal: %+v", c)
	}
}

func TestApplyRemoteDiscardsOwnEcho(t *testing.T) {
	env := newTestEnv(t)
	task, _ := env.Engine.AddTask(env.Ctx, engine.TaskCreateOptions{Text: "local"})
	env.Engine.Flush()

	echo, err := env.Engine.Repo.LoadSnapshot(env.Ctx, "tester")
	if err != nil {
		t.Fatalf("load saved snapshot: %v", err)
	}
	if env.Engine.ApplyRemote(env.Ctx, echo) {
		t.Fatalf("echo of our own save must be discarded")
	}
	if len(env.Engine.Snapshot().Todos) != 1 {
		t.Fatalf("state clobbered by echo")
	}

	remote := echo
	remote.Revision = echo.Revision + 5
	remote.Todos = append(remote.Todos, domain.Task{ID: "from-other-session", Text: "remote"})
	if !env.Engine.ApplyRemote(env.Ctx, remote) {
		t.Fatalf("newer remote snapshot must be accepted")
	}
	snap := env.Engine.Snapshot()
	if len(snap.Todos) != 2 {
		t.Fatalf("remote state not applied: %d todos", len(snap.Todos))
	}
	_ = task
}

func TestOverlappingSavesBothSuppressed(t *testing.T) {
	env := newTestEnv(t)
	a, _ := env.Engine.AddTask(env.Ctx, engine.TaskCreateOptions{Text: "a"})
	b, _ := env.Engine.AddTask(env.Ctx, engine.TaskCreateOptions{Text: "b"})
	env.Engine.Flush()

	// simulate both saves echoing back, out of order
	snap := env.Engine.Snapshot()
	second := snap
	first := snap
	first.Revision = snap.Revision - 1
	if env.Engine.ApplyRemote(env.Ctx, second) || env.Engine.ApplyRemote(env.Ctx, first) {
		t.Fatalf("every echo of a locally-issued save must be discarded")
	}
	_, _ = a, b
}

func TestRestoreTask(t *testing.T) {
	env := newTestEnv(t)
	task, _ := env.Engine.AddTask(env.Ctx, engine.TaskCreateOptions{Text: "a"})
	if env.Engine.RestoreTask(env.Ctx, task.ID) {
		t.Fatalf("restoring an active task is a no-op")
	}
	env.Engine.ToggleTask(env.Ctx, task.ID)
	if !env.Engine.RestoreTask(env.Ctx, task.ID) {
		t.Fatalf("restore should reopen a completed task")
	}
	snap := env.Engine.Snapshot()
	if snap.Todos[0].Completed {
		t.Fatalf("task still completed after restore")
	}
	if c := env.counters(t); c.TodayCompletedCount != 1 {
		t.Fatalf("restore must not roll back the counter: %+v", c)
	}
}

func TestDeleteTaskClearsFocus(t *testing.T) {
	env := newTestEnv(t)
	task, _ := env.Engine.AddTask(env.Ctx, engine.TaskCreateOptions{Text: "a"})
	if !env.Engine.DeleteTask(env.Ctx, task.ID) {
		t.Fatalf("delete")
	}
	if env.Engine.Snapshot().FocusID != "" {
		t.Fatalf("deleting the focus task must clear focus")
	}
	if env.Engine.DeleteTask(env.Ctx, task.ID) {
		t.Fatalf("double delete must be a no-op")
	}
}

func TestCelebrationOnExtendedStreak(t *testing.T) {
	env := newTestEnv(t)
	var msgs []string
	env.Engine.Notify = func(m string) { msgs = append(msgs, m) }
	if err := env.Engine.SetDailyGoal(env.Ctx, 1); err != nil {
		t.Fatal(err)
	}
	mon := time.Date(2024, 5, 6, 9, 0, 0, 0, time.Local)
	env.setClock(mon)
	a, _ := env.Engine.AddTask(env.Ctx, engine.TaskCreateOptions{Text: "a"})
	env.Engine.ToggleTask(env.Ctx, a.ID)
	if len(msgs) != 0 {
		t.Fatalf("a streak of 1 is not celebrated: %v", msgs)
	}
	env.setClock(mon.AddDate(0, 0, 1))
	b, _ := env.Engine.AddTask(env.Ctx, engine.TaskCreateOptions{Text: "b"})
	env.Engine.ToggleTask(env.Ctx, b.ID)
	if len(msgs) != 1 {
		t.Fatalf("expected one celebration, got %v", msgs)
	}
}

func TestStatusReconcilesBeforeRead(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Engine.SetDailyGoal(env.Ctx, 1); err != nil {
		t.Fatal(err)
	}
	mon := time.Date(2024, 5, 6, 9, 0, 0, 0, time.Local)
	env.setClock(mon)
	a, _ := env.Engine.AddTask(env.Ctx, engine.TaskCreateOptions{Text: "a"})
	env.Engine.ToggleTask(env.Ctx, a.ID)

	env.setClock(mon.AddDate(0, 0, 1))
	s := env.Engine.Status(env.Ctx)
	if s.TodayCompleted != 0 || s.GoalMet {
		t.Fatalf("status must reconcile to the new day: %+v", s)
	}
	if s.Streak != 1 {
		t.Fatalf("yesterday's streak survives into today: %+v", s)
	}
}

func TestEventsAppendedOnStateChanges(t *testing.T) {
	env := newTestEnv(t)
	task, _ := env.Engine.AddTask(env.Ctx, engine.TaskCreateOptions{Text: "a"})
	env.Engine.ToggleTask(env.Ctx, task.ID)
	env.Engine.Flush()
	evts, err := env.Engine.Repo.LatestEvents(env.Ctx, 10, "", "")
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	if len(evts) < 2 {
		t.Fatalf("expected created+completed events, got %d", len(evts))
	}
}
