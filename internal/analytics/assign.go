package analytics

import "time"

// Event is a timestamped row folded into buckets. A nil Amount counts the
// event once; otherwise Amount is added.
type Event struct {
	At     time.Time
	Amount *float64
}

// Weight is the value the event contributes to its bucket.
func (e Event) Weight() float64 {
	if e.Amount == nil {
		return 1
	}
	return *e.Amount
}

// Amount returns a pointer to v, for building amount-carrying events.
func Amount(v float64) *float64 {
	return &v
}

// Assign adds each event's weight to the first bucket containing its
// timestamp. Events outside every bucket are dropped.
//
// Assign accumulates into buckets, so running it twice over the same
// events double-counts; build fresh buckets for every call.
func Assign(buckets []Bucket, events []Event) {
	for _, e := range events {
		for i := range buckets {
			if buckets[i].Contains(e.At) {
				buckets[i].Total += e.Weight()
				break
			}
		}
	}
}

// Aggregate builds the buckets for window, folds events into them, and
// returns the resulting chart series.
func Aggregate(now time.Time, window Window, events []Event) []Point {
	buckets := BuildBuckets(now, window)
	Assign(buckets, events)
	return Series(buckets)
}
