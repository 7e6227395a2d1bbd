// Package time contains time related helpers
package time

import "time"

// Clock returns the current time; services take one so tests can pin it
type Clock func() time.Time

// Now returns c(), or time.Now when c is nil
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// Fixed returns a Clock stuck at t
func Fixed(t time.Time) Clock { return func() time.Time { return t } }

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Format renders t in loc with layout, "" for nil. A nil loc means UTC
func Format(t *time.Time, loc *time.Location, layout string) string {
	if t == nil {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(layout)
}

// LoadLocation resolves an IANA zone name, falling back to UTC for blank or unknown names
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
