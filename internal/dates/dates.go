package dates

import "time"

const dayLayout = "2006-01-02"

// Clock supplies the current moment for all streak math. The zero value
// uses the wall clock; tests swap Now for a fixed time.
type Clock struct {
	Now func() time.Time
}

func (c Clock) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Time returns the current moment.
func (c Clock) Time() time.Time { return c.now() }

// Today returns the current calendar day in the device-local timezone.
func (c Clock) Today() string { return DayString(c.now()) }

// Yesterday returns the previous calendar day.
func (c Clock) Yesterday() string { return DayString(c.now().AddDate(0, 0, -1)) }

// DayString formats a time as its calendar day.
func DayString(t time.Time) string {
	return t.Format(dayLayout)
}

// DayOf maps an RFC3339 timestamp to its calendar day, or "" when the
// value is empty or unparseable.
func DayOf(rfc3339 string) string {
	if rfc3339 == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return ""
	}
	return DayString(t.Local())
}

// Fixed returns a clock pinned to t.
func Fixed(t time.Time) Clock {
	return Clock{Now: func() time.Time { return t }}
}
