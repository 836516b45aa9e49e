package analytics

import (
	"fmt"
	"time"
)

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MaxReplyGap is the longest user-to-assistant gap still treated as a
// reply. Longer gaps are session breaks, not response times.
const MaxReplyGap = time.Hour

// RoleEvent is one message in a chronologically ordered conversation log.
type RoleEvent struct {
	At      time.Time
	Role    Role
	OwnerID string
}

// Latency summarizes reply samples.
type Latency struct {
	AverageSeconds float64 `json:"average_seconds"`
	SampleCount    int     `json:"sample_count"`
}

// String formats the average the way the dashboard shows it: "2.4s", or
// "0s" when nothing was sampled.
func (l Latency) String() string {
	if l.SampleCount == 0 {
		return "0s"
	}
	return fmt.Sprintf("%.1fs", l.AverageSeconds)
}

// ReplySamples pairs each user message with the next assistant message
// from the same owner and returns the gaps. A pending user message is
// replaced by any later user message, and consumed by the first matching
// assistant reply whether or not that gap is kept. Gaps of MaxReplyGap or
// more, and negative gaps from out-of-order input, are discarded.
func ReplySamples(events []RoleEvent) []time.Duration {
	var (
		samples []time.Duration
		pending *RoleEvent
	)
	for i := range events {
		e := &events[i]
		switch e.Role {
		case RoleUser:
			pending = e
		case RoleAssistant:
			if pending == nil || pending.OwnerID != e.OwnerID {
				continue
			}
			gap := e.At.Sub(pending.At)
			if gap >= 0 && gap < MaxReplyGap {
				samples = append(samples, gap)
			}
			pending = nil
		}
	}
	return samples
}

// ResponseTime averages the reply samples found in events.
func ResponseTime(events []RoleEvent) Latency {
	return Summarize(ReplySamples(events))
}

// Summarize averages samples in seconds.
func Summarize(samples []time.Duration) Latency {
	if len(samples) == 0 {
		return Latency{}
	}
	var total time.Duration
	for _, s := range samples {
		total += s
	}
	return Latency{
		AverageSeconds: total.Seconds() / float64(len(samples)),
		SampleCount:    len(samples),
	}
}

// LatencyBand is one range of a response-time histogram.
type LatencyBand struct {
	Label      string `json:"label"`
	Percentage string `json:"percentage"`
}

var latencyBands = []struct {
	label string
	upper time.Duration // exclusive; zero means unbounded
}{
	{"< 1s", time.Second},
	{"1-3s", 3 * time.Second},
	{"3-5s", 5 * time.Second},
	{"> 5s", 0},
}

// Breakdown groups samples into the dashboard's response-time bands, with
// one-decimal percentages such as "67.3%".
func Breakdown(samples []time.Duration) []LatencyBand {
	counts := make([]int, len(latencyBands))
	for _, s := range samples {
		for i, band := range latencyBands {
			if band.upper == 0 || s < band.upper {
				counts[i]++
				break
			}
		}
	}

	bands := make([]LatencyBand, len(latencyBands))
	for i, band := range latencyBands {
		pct := RatioWith(float64(counts[i]), float64(len(samples)), 100, 1)
		bands[i] = LatencyBand{Label: band.label, Percentage: fmt.Sprintf("%.1f%%", pct)}
	}
	return bands
}
