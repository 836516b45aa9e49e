package dashboard

import (
	"sort"
	"strings"
	"time"

	"github.com/MJServices/neural-admin-panel/internal/analytics"
	"github.com/MJServices/neural-admin-panel/internal/models"
)

// Defaults applied to missing row fields when shaping responses.
const (
	UnknownUser        = "Unknown User"
	DefaultCategory    = "General"
	DefaultStatus      = "Draft"
	DefaultDescription = "No description available"
	AllArticles        = "All Articles"
)

func stringOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func floatOr(f *float64, fallback float64) float64 {
	if f == nil {
		return fallback
	}
	return *f
}

func displayName(name *string) string {
	return stringOr(name, UnknownUser)
}

// bondScores replaces missing scores with 0.
func bondScores(raw []*float64) []float64 {
	scores := make([]float64, len(raw))
	for i, s := range raw {
		scores[i] = floatOr(s, 0)
	}
	return scores
}

// isVerified treats anything but the free tier as verified; a missing tier
// is the free tier.
func isVerified(tier *string) bool {
	return stringOr(tier, models.DefaultSubscriptionTier) != models.DefaultSubscriptionTier
}

func articleCategory(tags []string) string {
	if len(tags) == 0 {
		return DefaultCategory
	}
	return tags[0]
}

func summariesByID(list []models.ProfileSummary) map[string]models.ProfileSummary {
	m := make(map[string]models.ProfileSummary, len(list))
	for _, p := range list {
		m[p.ID] = p
	}
	return m
}

// uniqueUserIDs returns the distinct non-empty ids in first-seen order.
func uniqueUserIDs[T any](rows []T, id func(T) string) []string {
	seen := make(map[string]bool, len(rows))
	var ids []string
	for _, r := range rows {
		v := id(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		ids = append(ids, v)
	}
	return ids
}

func messageEvents(messages []models.Message) []analytics.Event {
	events := make([]analytics.Event, len(messages))
	for i, m := range messages {
		events[i] = analytics.Event{At: m.CreatedAt}
	}
	return events
}

func xpEvents(logs []models.XPLog) []analytics.Event {
	events := make([]analytics.Event, len(logs))
	for i, l := range logs {
		events[i] = analytics.Event{At: l.CreatedAt, Amount: analytics.Amount(float64(l.Amount))}
	}
	return events
}

// roleEvents converts messages fetched newest first into latency events in
// chronological order. Messages sharing a timestamp end up in the reverse
// of their fetch order, so a reply stored in the same instant as its
// prompt still follows it.
func roleEvents(newestFirst []models.Message) []analytics.RoleEvent {
	n := len(newestFirst)
	events := make([]analytics.RoleEvent, n)
	for i, m := range newestFirst {
		events[n-1-i] = analytics.RoleEvent{At: m.CreatedAt, Role: analytics.Role(m.Role), OwnerID: m.UserID}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].At.Before(events[j].At) })
	return events
}

// normalizeQueryText folds a user message into the key used to group
// similar questions.
func normalizeQueryText(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.Trim(s, " ?!.,;:\"'")
}

func dateLabel(t *time.Time, fallback time.Time, loc *time.Location) string {
	if t == nil {
		return fallback.In(loc).Format("1/2/2006")
	}
	return t.In(loc).Format("1/2/2006")
}
