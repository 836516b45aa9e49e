// Package analytics holds the pure aggregation routines behind the admin
// dashboard charts: time buckets, bucket assignment, ratios and deltas,
// satisfaction distribution and reply latency sampling.
//
// Nothing in this package touches the database. Callers fetch rows, convert
// them to Event or RoleEvent values once, and fold them into freshly built
// buckets on every request.
package analytics

import (
	"fmt"
	"strings"
	"time"
)

// Window is a reporting period paired with its bucket granularity.
type Window int

const (
	// Last24Hours is 24 hourly buckets ending with the current hour.
	Last24Hours Window = iota + 1
	// Last7Days is 7 daily buckets ending with today.
	Last7Days
	// Last30Days is 30 daily buckets ending with today.
	Last30Days
	// Last8Weeks is 8 seven-day buckets, the last one ending with today.
	Last8Weeks
	// Last6Months is the current calendar month and the five before it.
	Last6Months
)

// String returns the window's short name.
func (w Window) String() string {
	switch w {
	case Last24Hours:
		return "24h"
	case Last7Days:
		return "7d"
	case Last30Days:
		return "30d"
	case Last8Weeks:
		return "8w"
	case Last6Months:
		return "6m"
	}
	return fmt.Sprintf("window(%d)", int(w))
}

// Valid reports whether w is one of the enumerated windows.
func (w Window) Valid() bool {
	return w >= Last24Hours && w <= Last6Months
}

// BucketCount is the number of buckets BuildBuckets produces for w.
func (w Window) BucketCount() int {
	switch w {
	case Last24Hours:
		return 24
	case Last7Days:
		return 7
	case Last30Days:
		return 30
	case Last8Weeks:
		return 8
	case Last6Months:
		return 6
	}
	return 0
}

// Bucket is a half-open time interval [Start, End) with an accumulated total.
type Bucket struct {
	Label string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Total float64   `json:"value"`
}

// Contains reports whether t falls inside the bucket.
func (b Bucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// Point is one chart sample as rendered by the dashboard.
type Point struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// BuildBuckets returns the ordered, zeroed buckets covering window as seen
// from now. Calendar boundaries (hours, midnights, month starts) are taken
// in now's location, so callers pass now.In(dashboardLocation).
//
// An invalid window yields nil.
func BuildBuckets(now time.Time, window Window) []Bucket {
	var buckets []Bucket
	switch window {
	case Last24Hours:
		buckets = hourlyBuckets(now, 24)
	case Last7Days:
		buckets = dailyBuckets(now, 7, "Mon")
	case Last30Days:
		buckets = dailyBuckets(now, 30, "Jan 2")
	case Last8Weeks:
		buckets = weeklyBuckets(now, 8)
	case Last6Months:
		buckets = monthlyBuckets(now, 6)
	default:
		return nil
	}
	uniqueLabels(buckets)
	return buckets
}

// Span returns the overall [start, end) interval covered by buckets.
func Span(buckets []Bucket) (start, end time.Time) {
	if len(buckets) == 0 {
		return time.Time{}, time.Time{}
	}
	return buckets[0].Start, buckets[len(buckets)-1].End
}

// Series converts buckets into chart points, preserving order.
func Series(buckets []Bucket) []Point {
	points := make([]Point, len(buckets))
	for i, b := range buckets {
		points[i] = Point{Name: b.Label, Value: b.Total}
	}
	return points
}

// hourlyBuckets steps in absolute time from the start of the local hour
// containing now, so DST transitions never produce gaps or overlaps.
func hourlyBuckets(now time.Time, n int) []Bucket {
	sinceHour := time.Duration(now.Minute())*time.Minute +
		time.Duration(now.Second())*time.Second +
		time.Duration(now.Nanosecond())
	current := now.Add(-sinceHour)
	first := current.Add(-time.Duration(n-1) * time.Hour)

	buckets := make([]Bucket, n)
	for i := range buckets {
		start := first.Add(time.Duration(i) * time.Hour)
		buckets[i] = Bucket{
			Label: start.Format("3 PM"),
			Start: start,
			End:   start.Add(time.Hour),
		}
	}
	return buckets
}

func dailyBuckets(now time.Time, n int, layout string) []Bucket {
	buckets := make([]Bucket, n)
	for i := range buckets {
		offset := i - (n - 1)
		start := dayStart(now, offset)
		buckets[i] = Bucket{
			Label: start.Format(layout),
			Start: start,
			End:   dayStart(now, offset+1),
		}
	}
	return buckets
}

func weeklyBuckets(now time.Time, n int) []Bucket {
	buckets := make([]Bucket, n)
	for i := range buckets {
		// The week ending (n-1-i) weeks before today.
		lastDay := -(n - 1 - i) * 7
		start := dayStart(now, lastDay-6)
		buckets[i] = Bucket{
			Label: fmt.Sprintf("%d/%d", int(start.Month()), start.Day()),
			Start: start,
			End:   dayStart(now, lastDay+1),
		}
	}
	return buckets
}

func monthlyBuckets(now time.Time, n int) []Bucket {
	buckets := make([]Bucket, n)
	for i := range buckets {
		offset := i - (n - 1)
		start := monthStart(now, offset)
		buckets[i] = Bucket{
			Label: start.Format("Jan"),
			Start: start,
			End:   monthStart(now, offset+1),
		}
	}
	return buckets
}

// dayStart returns local midnight of the day offset days from now.
// time.Date normalizes out-of-range days across month and year ends.
func dayStart(now time.Time, offset int) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+offset, 0, 0, 0, 0, now.Location())
}

// monthStart returns local midnight on the first of the month offset
// months from now.
func monthStart(now time.Time, offset int) time.Time {
	return time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, now.Location())
}

// uniqueLabels disambiguates repeated labels, which only happens for hourly
// buckets when a DST fall-back repeats a wall-clock hour.
func uniqueLabels(buckets []Bucket) {
	if !hasDuplicateLabels(buckets) {
		return
	}
	counts := labelCounts(buckets)
	for i := range buckets {
		if counts[buckets[i].Label] > 1 {
			buckets[i].Label += " " + buckets[i].Start.Format("MST")
		}
	}
	if !hasDuplicateLabels(buckets) {
		return
	}
	seen := make(map[string]int, len(buckets))
	for i := range buckets {
		label := buckets[i].Label
		seen[label]++
		if n := seen[label]; n > 1 {
			buckets[i].Label = fmt.Sprintf("%s (%d)", strings.TrimSpace(label), n)
		}
	}
}

func labelCounts(buckets []Bucket) map[string]int {
	counts := make(map[string]int, len(buckets))
	for _, b := range buckets {
		counts[b.Label]++
	}
	return counts
}

func hasDuplicateLabels(buckets []Bucket) bool {
	for _, n := range labelCounts(buckets) {
		if n > 1 {
			return true
		}
	}
	return false
}
