package dashboard

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/MJServices/neural-admin-panel/internal/analytics"
	"github.com/MJServices/neural-admin-panel/internal/db"
	"github.com/MJServices/neural-admin-panel/internal/models"
)

// Insights supplies the dashboard figures that have no dedicated table:
// question topics, reply-time bands and article engagement.
type Insights interface {
	TopQueries(ctx context.Context) ([]TopQuery, error)
	ResponseTimeBreakdown(ctx context.Context) ([]analytics.LatencyBand, error)
	ArticleEngagement(posts []models.BlogPost) map[string]Engagement
}

const (
	topQueryCount = 5
	// querySampleSize is how many recent user messages LiveInsights groups
	// into topics.
	querySampleSize = 500
	// latencySampleSize is how many recent messages reply times are
	// measured over.
	latencySampleSize = 100
)

// LiveInsights derives insights from stored messages.
type LiveInsights struct {
	store Store
}

// NewLiveInsights returns insights computed from store.
func NewLiveInsights(store Store) *LiveInsights {
	return &LiveInsights{store: store}
}

// TopQueries groups the most recent user messages by normalized text and
// returns the most frequent ones. Percentages are of the sampled messages.
func (l *LiveInsights) TopQueries(ctx context.Context) ([]TopQuery, error) {
	messages, err := l.store.ListMessages(ctx, db.MessageQuery{
		Role:   models.RoleUser,
		Newest: true,
		Limit:  querySampleSize,
	})
	if err != nil {
		return nil, err
	}
	return rankQueries(messages, topQueryCount), nil
}

func rankQueries(messages []models.Message, n int) []TopQuery {
	type group struct {
		text  string
		count int
		first int
	}
	groups := make(map[string]*group)
	sampled := 0
	for i, m := range messages {
		key := normalizeQueryText(m.Content)
		if key == "" {
			continue
		}
		sampled++
		g, ok := groups[key]
		if !ok {
			g = &group{text: key, first: i}
			groups[key] = g
		}
		g.count++
	}

	ranked := make([]*group, 0, len(groups))
	for _, g := range groups {
		ranked = append(ranked, g)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].first < ranked[j].first
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	queries := make([]TopQuery, len(ranked))
	for i, g := range ranked {
		queries[i] = TopQuery{
			Rank:       i + 1,
			Text:       g.text,
			Count:      fmt.Sprintf("%d queries", g.count),
			Percentage: int(analytics.RatioWith(float64(g.count), float64(sampled), 100, 0)),
		}
	}
	return queries
}

// ResponseTimeBreakdown bands the reply times found in recent messages.
func (l *LiveInsights) ResponseTimeBreakdown(ctx context.Context) ([]analytics.LatencyBand, error) {
	messages, err := l.store.ListMessages(ctx, db.MessageQuery{Newest: true, Limit: latencySampleSize})
	if err != nil {
		return nil, err
	}
	return analytics.Breakdown(analytics.ReplySamples(roleEvents(messages))), nil
}

// ArticleEngagement reports zero engagement: views and votes are not
// tracked yet.
func (l *LiveInsights) ArticleEngagement(posts []models.BlogPost) map[string]Engagement {
	return make(map[string]Engagement, 0)
}

// PlaceholderInsights serves fixed sample figures, for demos and for
// databases without message history.
type PlaceholderInsights struct{}

var placeholderQueries = []TopQuery{
	{Rank: 1, Text: "Password Reset", Count: "324 queries", Percentage: 25},
	{Rank: 2, Text: "Account Setting", Count: "255 queries", Percentage: 20},
	{Rank: 3, Text: "Technical Support", Count: "234 queries", Percentage: 18},
	{Rank: 4, Text: "Billing Questions", Count: "200 queries", Percentage: 15},
	{Rank: 5, Text: "Feature request", Count: "120 queries", Percentage: 10},
}

var placeholderBands = []analytics.LatencyBand{
	{Label: "< 1s", Percentage: "67.3%"},
	{Label: "1-3s", Percentage: "19.1%"},
	{Label: "3-5s", Percentage: "9.2%"},
	{Label: "> 5s", Percentage: "4.4%"},
}

func (PlaceholderInsights) TopQueries(context.Context) ([]TopQuery, error) {
	return append([]TopQuery(nil), placeholderQueries...), nil
}

func (PlaceholderInsights) ResponseTimeBreakdown(context.Context) ([]analytics.LatencyBand, error) {
	return append([]analytics.LatencyBand(nil), placeholderBands...), nil
}

// ArticleEngagement derives stable sample figures from each article id:
// 500-5499 views and 70-99% helpful.
func (PlaceholderInsights) ArticleEngagement(posts []models.BlogPost) map[string]Engagement {
	out := make(map[string]Engagement, len(posts))
	for _, p := range posts {
		h := fnv.New32a()
		h.Write([]byte(p.ID))
		sum := h.Sum32()
		out[p.ID] = Engagement{
			Views:          500 + int(sum%5000),
			HelpfulPercent: 70 + int((sum/5000)%30),
		}
	}
	return out
}

var (
	_ Insights = (*LiveInsights)(nil)
	_ Insights = PlaceholderInsights{}
)
