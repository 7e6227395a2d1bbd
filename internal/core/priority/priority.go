// Package priority ranks domains for re-polling.
//
// Calculate is a decision table over availability and days to expiration.
// Higher priority means the domain should be fetched sooner.
package priority

import "time"

// Availability is the registry status of a domain
type Availability int

const (
	// Unavailable means the domain is registered
	Unavailable Availability = iota
	// Available means anyone can register it
	Available
)

const (
	// RecentlyReadPriority is assigned to domains read in the last RecentlyReadDays days
	RecentlyReadPriority = -1
	// FallbackPriority is assigned when no band matches
	FallbackPriority = -2
	// RecentlyReadDays is the short-circuit threshold
	RecentlyReadDays = 3
	// DaysCap bounds DaysSince
	DaysCap = 180
	// UnknownExpire marks a registered domain with no expiration date
	UnknownExpire = int(^uint(0) >> 1)

	day = 24 * time.Hour
)

// Input is the observed temporal state of a domain.
// ExpireDays is days since expiration, negative while it has not expired yet.
type Input struct {
	ExpireDays   int
	ReadedDays   int
	UpdatedDays  int
	Availability Availability
}

// Score is what the caller persists on the domain
type Score struct {
	Priority    int
	NextCheckAt time.Time
	Band        string
}

type band struct {
	name      string
	min, max  int
	base      int
	coef      int
	threshold int
	steep     int
	next      time.Duration
}

// bands over ExpireDays for registered domains, highest urgency first.
// 46..94 is the window in which an expired domain is actually released.
var bands = []band{
	{"drop-window", 46, 94, 1_000_000, 10, 7, 50, 3 * day},
	{"grace", 31, 45, 500_000, 5, 10, 40, 5 * day},
	{"expiring", -25, 30, 100_000, 2, 15, 30, 7 * day},
	{"upcoming", -90, -26, 10_000, 1, 20, 20, 10 * day},
	{"settled", -3650, -91, 0, 0, 30, 10, 25 * day},
	{"overdue", 95, 180, 2_000, 0, 30, 10, 15 * day},
	{"stale", 181, 3650, 0, 0, 0, 5, 25 * day},
}

// Calculate scores in at now; it never panics and NextCheckAt is never before now
func Calculate(in Input, now time.Time) Score {
	if in.ReadedDays <= RecentlyReadDays {
		return Score{Priority: RecentlyReadPriority, NextCheckAt: now.Add(day), Band: "recent"}
	}
	if in.Availability == Available {
		return Score{
			Priority:    in.ReadedDays*100 + in.UpdatedDays,
			NextCheckAt: now.Add(90 * day),
			Band:        "available",
		}
	}
	for _, b := range bands {
		if in.ExpireDays < b.min || in.ExpireDays > b.max {
			continue
		}
		return Score{
			Priority:    b.base + in.ExpireDays*b.coef + readedWeight(in.ReadedDays, b) + in.UpdatedDays,
			NextCheckAt: now.Add(b.next),
			Band:        b.name,
		}
	}
	return Score{Priority: FallbackPriority, NextCheckAt: now.Add(day), Band: "fallback"}
}

// readedWeight rewards unread days steeply up to the band threshold, then flat
func readedWeight(r int, b band) int {
	steep := min(r, b.threshold)
	return steep*b.steep + max(0, r-b.threshold)*5
}

// DaysSince returns whole days from t to now clamped to [0, limit].
// A nil t yields ifNil; callers pass DaysCap for reads so never-read domains are due, and 0 for updates.
func DaysSince(t *time.Time, now time.Time, limit, ifNil int) int {
	if t == nil {
		return ifNil
	}
	d := int(now.Sub(*t) / day)
	return max(0, min(d, limit))
}

// ExpireDays returns days since expire, negative before it, or UnknownExpire for nil
func ExpireDays(expire *time.Time, now time.Time) int {
	if expire == nil {
		return UnknownExpire
	}
	return int(now.Sub(*expire) / day)
}
