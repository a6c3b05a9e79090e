// Package streak implements the daily-goal counter and streak state
// machine. All functions are pure over domain.Counters plus a clock; the
// coordinator decides when they run and what to do with the outcome.
package streak

import (
	"errors"
	"time"

	"dayline/internal/dates"
	"dayline/internal/domain"
)

// ErrNilCounters marks a programmer error; counters are never optional.
var ErrNilCounters = errors.New("streak: nil counters")

// ReconcileDailyCounter zeroes TodayCompletedCount when the calendar day
// moved past LastResetDate. Idempotent within a day. Must run before any
// read of or increment to the counter so a stale day's count never leaks
// into today.
func ReconcileDailyCounter(c *domain.Counters, clock dates.Clock) bool {
	if c == nil {
		return false
	}
	today := clock.Today()
	if c.LastResetDate == today {
		return false
	}
	c.TodayCompletedCount = 0
	c.LastResetDate = today
	return true
}

// RecordCompletion attributes one newly completed task to today. Callers
// invoke it exactly once per false→true task transition — never for
// goal-only completions and never for un-completion.
func RecordCompletion(c *domain.Counters, clock dates.Clock) error {
	if c == nil {
		return ErrNilCounters
	}
	ReconcileDailyCounter(c, clock)
	c.TodayCompletedCount++
	return nil
}

// Update reports what UpdateStreak changed.
type Update struct {
	// GoalMet is true when this call newly satisfied the daily goal; the
	// streak advances at most once per calendar day.
	GoalMet bool
	Streak  int
}

// UpdateStreak runs after RecordCompletion. When today's count reaches the
// daily goal for the first time today, the streak extends (consecutive
// day) or restarts at 1 (gap or first ever), and LastCompletionDate is
// stamped with the full timestamp.
func UpdateStreak(c *domain.Counters, clock dates.Clock) (Update, error) {
	if c == nil {
		return Update{}, ErrNilCounters
	}
	ReconcileDailyCounter(c, clock)
	if c.TodayCompletedCount < c.DailyGoal {
		return Update{Streak: c.Streak}, nil
	}
	today := clock.Today()
	lastDay := dates.DayOf(c.LastCompletionDate)
	if lastDay == today {
		// Goal already recorded as met today; completions past the goal
		// must not re-increment the streak.
		return Update{Streak: c.Streak}, nil
	}
	if lastDay != "" && lastDay == clock.Yesterday() {
		c.Streak++
	} else {
		c.Streak = 1
	}
	c.LastCompletionDate = clock.Time().Format(time.RFC3339)
	return Update{GoalMet: true, Streak: c.Streak}, nil
}

// CheckExpiration lazily breaks the streak on load/resume: a last
// completion older than yesterday means a full day was missed. There is
// no background timer; expiry is evaluated opportunistically.
func CheckExpiration(c *domain.Counters, clock dates.Clock) bool {
	if c == nil || c.LastCompletionDate == "" {
		return false
	}
	lastDay := dates.DayOf(c.LastCompletionDate)
	if lastDay == clock.Today() || lastDay == clock.Yesterday() {
		return false
	}
	if c.Streak == 0 {
		return false
	}
	c.Streak = 0
	return true
}
