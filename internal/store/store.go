// Package store holds the in-memory entity state for a session. The
// store is the single writer: every mutation runs inside Update under one
// lock, so a handler always completes before the next begins.
package store

import (
	"sync"

	"dayline/internal/domain"
)

// State is the mutable session state. It is only ever touched inside
// Update/View closures.
type State struct {
	Tasks    []domain.Task
	Courses  []domain.Course
	FocusID  string
	Counters domain.Counters
}

type Store struct {
	mu    sync.Mutex
	state State
	// localRev is the highest snapshot revision this session has issued;
	// remote snapshots at or below it are echoes of our own saves.
	localRev int64
}

func New(defaults domain.Counters) *Store {
	return &Store{state: State{Counters: defaults}}
}

// Update runs fn with exclusive access to the state.
func (s *Store) Update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// View runs fn with shared read access. fn must not mutate the state.
func (s *Store) View(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// FindTask returns the task with the given id, or nil for stale ids.
func (st *State) FindTask(id string) *domain.Task {
	for i := range st.Tasks {
		if st.Tasks[i].ID == id {
			return &st.Tasks[i]
		}
	}
	return nil
}

// FindCourse returns the course with the given id, or nil.
func (st *State) FindCourse(id string) *domain.Course {
	for i := range st.Courses {
		if st.Courses[i].ID == id {
			return &st.Courses[i]
		}
	}
	return nil
}

// FindCategory walks course→category, returning nil when any level is
// missing.
func (st *State) FindCategory(courseID, categoryID string) *domain.Category {
	c := st.FindCourse(courseID)
	if c == nil {
		return nil
	}
	for i := range c.Categories {
		if c.Categories[i].ID == categoryID {
			return &c.Categories[i]
		}
	}
	return nil
}

// FindGoal walks course→category→goal, returning nil when any level is
// missing.
func (st *State) FindGoal(courseID, categoryID, goalID string) *domain.Goal {
	cat := st.FindCategory(courseID, categoryID)
	if cat == nil {
		return nil
	}
	for i := range cat.Goals {
		if cat.Goals[i].ID == goalID {
			return &cat.Goals[i]
		}
	}
	return nil
}

// Snapshot returns a deep copy of the current state at the current
// revision, suitable for rendering or serialization.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(s.localRev)
}

// SnapshotForSave bumps the local revision and returns the state stamped
// with it. Each save gets a strictly increasing revision so its echo can
// be recognized later, even when saves overlap.
func (s *Store) SnapshotForSave(lastUpdated string) domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.localRev++
	snap := s.snapshotLocked(s.localRev)
	snap.LastUpdated = lastUpdated
	return snap
}

// LocalRevision reports the highest revision issued by this session.
func (s *Store) LocalRevision() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localRev
}

// Replace overwrites the state wholesale from a snapshot (remote is
// authoritative on load).
func (s *Store) Replace(snap domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(snap)
}

// ApplyRemote replaces the state unless the snapshot is an echo of a
// locally-issued save, in which case it is discarded and false returned.
func (s *Store) ApplyRemote(snap domain.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Revision <= s.localRev {
		return false
	}
	s.replaceLocked(snap)
	return true
}

func (s *Store) replaceLocked(snap domain.Snapshot) {
	s.state = State{
		Tasks:   cloneTasks(snap.Todos),
		Courses: cloneCourses(snap.Courses),
		FocusID: snap.FocusID,
		Counters: domain.Counters{
			DailyGoal:           snap.DailyGoal,
			Streak:              snap.Streak,
			LastCompletionDate:  snap.LastCompletionDate,
			TodayCompletedCount: snap.TodayCompletedCount,
			LastResetDate:       snap.LastResetDate,
		},
	}
	if snap.Revision > s.localRev {
		s.localRev = snap.Revision
	}
}

func (s *Store) snapshotLocked(rev int64) domain.Snapshot {
	st := &s.state
	return domain.Snapshot{
		Todos:               cloneTasks(st.Tasks),
		Courses:             cloneCourses(st.Courses),
		FocusID:             st.FocusID,
		DailyGoal:           st.Counters.DailyGoal,
		Streak:              st.Counters.Streak,
		LastCompletionDate:  st.Counters.LastCompletionDate,
		TodayCompletedCount: st.Counters.TodayCompletedCount,
		LastResetDate:       st.Counters.LastResetDate,
		Revision:            rev,
	}
}

func cloneTasks(in []domain.Task) []domain.Task {
	out := make([]domain.Task, len(in))
	copy(out, in)
	for i := range out {
		if in[i].CompletedAt != nil {
			v := *in[i].CompletedAt
			out[i].CompletedAt = &v
		}
	}
	return out
}

func cloneCourses(in []domain.Course) []domain.Course {
	out := make([]domain.Course, len(in))
	for i, c := range in {
		cc := c
		cc.Categories = make([]domain.Category, len(c.Categories))
		for j, cat := range c.Categories {
			ccat := cat
			ccat.Goals = make([]domain.Goal, len(cat.Goals))
			copy(ccat.Goals, cat.Goals)
			for k := range ccat.Goals {
				if cat.Goals[k].PDF != nil {
					pdf := *cat.Goals[k].PDF
					ccat.Goals[k].PDF = &pdf
				}
			}
			cc.Categories[j] = ccat
		}
		out[i] = cc
	}
	return out
}
