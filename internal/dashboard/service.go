// Package dashboard implements the admin dashboard's read and write
// operations on top of the database and the aggregation routines in
// package analytics.
//
// Read operations fan out their independent queries and degrade a failed
// query to its zero value instead of failing the whole response. Write
// operations validate their input and return errors.
package dashboard

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/MJServices/neural-admin-panel/internal/analytics"
	"github.com/MJServices/neural-admin-panel/internal/db"
	"github.com/MJServices/neural-admin-panel/internal/models"
)

const (
	activeWindow = 7 * 24 * time.Hour
	// conversationSample is how many recent messages are grouped into
	// conversations.
	conversationSample = 100
	// authorMatchLimit caps the profiles whose messages match a
	// conversation search by author name.
	authorMatchLimit = 20
)

// Config configures a Service.
type Config struct {
	// Location is the dashboard time zone used for day and month
	// boundaries. Defaults to UTC.
	Location *time.Location
	// Insights defaults to LiveInsights over the store.
	Insights Insights
	// Snapshots stores export backups; nil disables backups.
	Snapshots SnapshotStore
	// BackupRetention is how many snapshots CreateBackup keeps. Zero keeps
	// all of them.
	BackupRetention int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service serves the dashboard. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	store     Store
	insights  Insights
	snapshots SnapshotStore
	retention int
	loc       *time.Location
	now       func() time.Time
}

// NewService returns a Service reading from store.
func NewService(store Store, cfg Config) *Service {
	s := &Service{
		store:     store,
		insights:  cfg.Insights,
		snapshots: cfg.Snapshots,
		retention: cfg.BackupRetention,
		loc:       cfg.Location,
		now:       cfg.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.insights == nil {
		s.insights = NewLiveInsights(store)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Location returns the dashboard time zone.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

// monthStart returns local midnight on the first of now's month, offset
// by the given number of months.
func monthStart(now time.Time, offset int) time.Time {
	return time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, now.Location())
}

// responseRate is assistant replies per user message as a percentage.
func responseRate(total, assistant int) float64 {
	return analytics.Ratio(float64(assistant), float64(total-assistant))
}

// DashboardStats returns the headline numbers of the home page.
func (s *Service) DashboardStats(ctx context.Context) Stats {
	now := s.clock()
	var (
		stats     Stats
		assistant int
	)

	sec := newSections(ctx, "stats")
	sec.run("total_users", func(ctx context.Context) (err error) {
		stats.TotalUsers, err = s.store.CountUsers(ctx)
		return err
	})
	sec.run("total_messages", func(ctx context.Context) (err error) {
		stats.TotalMessages, err = s.store.CountMessages(ctx, db.MessageFilter{})
		return err
	})
	sec.run("assistant_messages", func(ctx context.Context) (err error) {
		assistant, err = s.store.CountMessages(ctx, db.MessageFilter{Role: models.RoleAssistant})
		return err
	})
	sec.run("new_users", func(ctx context.Context) (err error) {
		stats.NewUsers, err = s.store.CountUsersSince(ctx, monthStart(now, 0))
		return err
	})
	sec.run("active_users", func(ctx context.Context) (err error) {
		stats.ActiveUsers, err = s.store.CountProfiles(ctx, db.ProfileFilter{ActiveFrom: now.Add(-activeWindow)})
		return err
	})
	sec.wait()

	stats.ResponseRate = responseRate(stats.TotalMessages, assistant)
	return stats
}

// clampLimit returns def for a missing limit and caps the rest at
// MaxPageSize.
func clampLimit(limit, def int) int {
	switch {
	case limit <= 0:
		return def
	case limit > MaxPageSize:
		return MaxPageSize
	}
	return limit
}

// RecentActivities returns the latest XP awards, newest first. limit is
// capped at MaxPageSize.
func (s *Service) RecentActivities(ctx context.Context, limit int) []Activity {
	limit = clampLimit(limit, DefaultActivityLimit)
	activities := make([]Activity, 0, limit)

	logs, err := s.store.ListXPLogs(ctx, db.XPLogQuery{Newest: true, Limit: limit})
	if err != nil {
		degrade(ctx, "activities", "xp_logs", err)
		return activities
	}

	profiles := s.profileSummaries(ctx, "activities",
		uniqueUserIDs(logs, func(l models.XPLog) string { return l.UserID }))

	for _, l := range logs {
		p := profiles[l.UserID]
		activities = append(activities, Activity{
			ID:     l.ID,
			User:   displayName(p.FullName),
			Avatar: stringOr(p.AvatarURL, ""),
			Action: formatXPAction(l),
			Time:   l.CreatedAt,
			Status: "completed",
		})
	}
	return activities
}

func formatXPAction(l models.XPLog) string {
	return "Earned " + strconv.Itoa(l.Amount) + " XP from " + l.Source
}

// profileSummaries looks up ids, degrading to an empty map on failure.
func (s *Service) profileSummaries(ctx context.Context, endpoint string, ids []string) map[string]models.ProfileSummary {
	if len(ids) == 0 {
		return map[string]models.ProfileSummary{}
	}
	list, err := s.store.GetProfileSummaries(ctx, ids)
	if err != nil {
		degrade(ctx, endpoint, "profiles", err)
		return map[string]models.ProfileSummary{}
	}
	return summariesByID(list)
}

// Conversations returns each user's latest message among the most recent
// messages, newest conversation first. A non-empty query keeps messages
// whose content matches it or whose author's name matches it. limit is
// capped at MaxPageSize.
func (s *Service) Conversations(ctx context.Context, limit int, query string) []Conversation {
	limit = clampLimit(limit, DefaultConversationCap)
	conversations := make([]Conversation, 0, limit)

	q := db.MessageQuery{Newest: true, Limit: conversationSample, Search: query}
	if query != "" {
		ids, err := s.store.SearchProfileIDs(ctx, query, authorMatchLimit)
		if err != nil {
			degrade(ctx, "conversations", "author_search", err)
		}
		q.AuthorIDs = ids
	}

	messages, err := s.store.ListMessages(ctx, q)
	if err != nil {
		degrade(ctx, "conversations", "messages", err)
		return conversations
	}

	var latest []models.Message
	seen := make(map[string]bool)
	for _, m := range messages {
		if m.UserID == "" || seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		latest = append(latest, m)
		if len(latest) == limit {
			break
		}
	}

	profiles := s.profileSummaries(ctx, "conversations",
		uniqueUserIDs(latest, func(m models.Message) string { return m.UserID }))

	for _, m := range latest {
		p := profiles[m.UserID]
		bond := floatOr(p.BondScore, 0)
		conversations = append(conversations, Conversation{
			ID:        m.UserID,
			User:      displayName(p.FullName),
			Avatar:    stringOr(p.AvatarURL, ""),
			Message:   m.Content,
			Time:      m.CreatedAt,
			Status:    "active",
			Rating:    analytics.StarRating(bond),
			BondScore: bond,
		})
	}
	return conversations
}

// Messages returns a user's transcript, oldest first.
func (s *Service) Messages(ctx context.Context, userID string) ([]models.Message, error) {
	if err := validateID("user id", userID); err != nil {
		return nil, err
	}
	messages, err := s.store.ListMessages(ctx, db.MessageQuery{UserID: userID})
	if err != nil {
		degrade(ctx, "messages", "messages", err)
		return []models.Message{}, nil
	}
	return messages, nil
}

// Users returns a page of profiles, newest member first.
func (s *Service) Users(ctx context.Context, p UserListParams) (UsersPage, error) {
	if err := validate(p); err != nil {
		return UsersPage{}, err
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageSize
	}

	page := UsersPage{Data: []UserRow{}}
	profiles, total, err := s.store.ListProfiles(ctx, db.ProfileQuery{Search: p.Query, Limit: p.Limit, Offset: p.Offset})
	if err != nil {
		degrade(ctx, "users", "profiles", err)
		return page, nil
	}
	for _, prof := range profiles {
		page.Data = append(page.Data, UserRow{Profile: prof, IsVerified: isVerified(prof.SubscriptionTier)})
	}
	page.Count = total
	return page, nil
}

// UserPageStats returns the summary strip of the users page.
func (s *Service) UserPageStats(ctx context.Context) UserPageStats {
	now := s.clock()
	var (
		stats  UserPageStats
		scores []*float64
	)

	sec := newSections(ctx, "user_stats")
	sec.run("total_users", func(ctx context.Context) (err error) {
		stats.TotalUsers, err = s.store.CountProfiles(ctx, db.ProfileFilter{})
		return err
	})
	sec.run("active_users", func(ctx context.Context) (err error) {
		stats.ActiveUsers, err = s.store.CountProfiles(ctx, db.ProfileFilter{EverActive: true})
		return err
	})
	sec.run("new_users", func(ctx context.Context) (err error) {
		stats.NewUsers, err = s.store.CountProfiles(ctx, db.ProfileFilter{MemberFrom: monthStart(now, 0)})
		return err
	})
	sec.run("satisfaction", func(ctx context.Context) (err error) {
		scores, err = s.store.ListBondScores(ctx)
		return err
	})
	sec.wait()

	stats.AvgSatisfaction = analytics.AverageRating(bondScores(scores))
	return stats
}

// PerformanceData sums XP awarded per bucket of window, which must be
// Last24Hours, Last7Days or Last30Days.
func (s *Service) PerformanceData(ctx context.Context, window analytics.Window) []analytics.Point {
	buckets := analytics.BuildBuckets(s.clock(), window)
	start, _ := analytics.Span(buckets)

	logs, err := s.store.ListXPLogs(ctx, db.XPLogQuery{Since: start})
	if err != nil {
		degrade(ctx, "performance", "xp_logs", err)
	} else {
		analytics.Assign(buckets, xpEvents(logs))
	}
	return analytics.Series(buckets)
}

// UsageTrends counts messages per bucket of window.
func (s *Service) UsageTrends(ctx context.Context, window analytics.Window) []analytics.Point {
	return s.messageTrend(ctx, "usage_trends", window)
}

func (s *Service) messageTrend(ctx context.Context, endpoint string, window analytics.Window) []analytics.Point {
	buckets := analytics.BuildBuckets(s.clock(), window)
	start, end := analytics.Span(buckets)

	messages, err := s.store.ListMessages(ctx, db.MessageQuery{Since: start, Before: end})
	if err != nil {
		degrade(ctx, endpoint, "messages", err)
	} else {
		analytics.Assign(buckets, messageEvents(messages))
	}
	return analytics.Series(buckets)
}

// AnalyticsData backs the analytics page.
func (s *Service) AnalyticsData(ctx context.Context) AnalyticsData {
	var (
		data      AnalyticsData
		assistant int
		scores    []*float64
		recent    []models.Message
	)

	sec := newSections(ctx, "analytics")
	sec.run("interactions", func(ctx context.Context) (err error) {
		data.Overview.TotalInteraction, err = s.store.CountMessages(ctx, db.MessageFilter{})
		return err
	})
	sec.run("active_users", func(ctx context.Context) (err error) {
		data.Overview.ActiveUsers, err = s.store.CountProfiles(ctx, db.ProfileFilter{EverActive: true})
		return err
	})
	sec.run("assistant_messages", func(ctx context.Context) (err error) {
		assistant, err = s.store.CountMessages(ctx, db.MessageFilter{Role: models.RoleAssistant})
		return err
	})
	sec.run("satisfaction", func(ctx context.Context) (err error) {
		scores, err = s.store.ListBondScores(ctx)
		return err
	})
	sec.run("response_time", func(ctx context.Context) (err error) {
		recent, err = s.store.ListMessages(ctx, db.MessageQuery{Newest: true, Limit: latencySampleSize})
		return err
	})
	sec.run("usage_trends", func(ctx context.Context) error {
		data.UsageTrends = s.messageTrend(ctx, "analytics", analytics.Last7Days)
		return nil
	})
	sec.run("top_queries", func(ctx context.Context) (err error) {
		data.TopQueries, err = s.insights.TopQueries(ctx)
		return err
	})
	sec.run("response_bands", func(ctx context.Context) (err error) {
		data.ResponseTime, err = s.insights.ResponseTimeBreakdown(ctx)
		return err
	})
	sec.wait()

	normalized := bondScores(scores)
	avg := analytics.AverageRating(normalized)
	data.Overview.ResponseRate = responseRate(data.Overview.TotalInteraction, assistant)
	data.Overview.AvgResponseTime = analytics.ResponseTime(roleEvents(recent)).String()
	data.Overview.AvgSatisfaction = avg
	data.Satisfaction = Satisfaction{
		Avg:          avg,
		Total:        len(normalized),
		Distribution: analytics.Distribution(normalized),
	}
	if data.TopQueries == nil {
		data.TopQueries = []TopQuery{}
	}
	if data.ResponseTime == nil {
		data.ResponseTime = analytics.Breakdown(nil)
	}
	return data
}

// KnowledgeBaseStats compares the current calendar month with the
// previous one.
func (s *Service) KnowledgeBaseStats(ctx context.Context) KnowledgeBaseStats {
	now := s.clock()
	cur, prev := monthStart(now, 0), monthStart(now, -1)

	var (
		curTotal, prevTotal         int
		curActive, prevActive       int
		curAssistant, prevAssistant int
		curSample, prevSample       []models.Message
	)

	sec := newSections(ctx, "knowledge_base")
	sec.run("interactions", func(ctx context.Context) (err error) {
		curTotal, err = s.store.CountMessages(ctx, db.MessageFilter{From: cur})
		return err
	})
	sec.run("prev_interactions", func(ctx context.Context) (err error) {
		prevTotal, err = s.store.CountMessages(ctx, db.MessageFilter{From: prev, To: cur})
		return err
	})
	sec.run("active_users", func(ctx context.Context) (err error) {
		curActive, err = s.store.CountProfiles(ctx, db.ProfileFilter{ActiveFrom: cur})
		return err
	})
	sec.run("prev_active_users", func(ctx context.Context) (err error) {
		prevActive, err = s.store.CountProfiles(ctx, db.ProfileFilter{ActiveFrom: prev, ActiveTo: cur})
		return err
	})
	sec.run("assistant_messages", func(ctx context.Context) (err error) {
		curAssistant, err = s.store.CountMessages(ctx, db.MessageFilter{Role: models.RoleAssistant, From: cur})
		return err
	})
	sec.run("prev_assistant_messages", func(ctx context.Context) (err error) {
		prevAssistant, err = s.store.CountMessages(ctx, db.MessageFilter{Role: models.RoleAssistant, From: prev, To: cur})
		return err
	})
	sec.run("response_time", func(ctx context.Context) (err error) {
		curSample, err = s.store.ListMessages(ctx, db.MessageQuery{Newest: true, Limit: latencySampleSize})
		return err
	})
	sec.run("prev_response_time", func(ctx context.Context) (err error) {
		prevSample, err = s.store.ListMessages(ctx, db.MessageQuery{Before: cur, Newest: true, Limit: latencySampleSize})
		return err
	})
	sec.wait()

	rate := responseRate(curTotal, curAssistant)
	prevRate := responseRate(prevTotal, prevAssistant)

	latency := analytics.ResponseTime(roleEvents(curSample))
	prevLatency := analytics.ResponseTime(roleEvents(prevSample))
	var latencyChange float64
	if latency.SampleCount > 0 && prevLatency.SampleCount > 0 {
		latencyChange = analytics.Change(
			analytics.Round(latency.AverageSeconds, 1),
			analytics.Round(prevLatency.AverageSeconds, 1))
	}

	return KnowledgeBaseStats{
		TotalInteraction:       curTotal,
		TotalInteractionChange: analytics.Delta(float64(curTotal), float64(prevTotal)),
		ActiveUsers:            curActive,
		ActiveUsersChange:      analytics.Delta(float64(curActive), float64(prevActive)),
		ResponseRate:           rate,
		ResponseRateChange:     analytics.Change(rate, prevRate),
		AvgResponseTime:        latency.String(),
		AvgResponseTimeChange:  latencyChange,
	}
}

// Articles returns a page of knowledge-base articles. Sorting by views or
// helpfulness reorders the newest-first page only.
func (s *Service) Articles(ctx context.Context, p ArticleListParams) (ArticlesPage, error) {
	if err := validate(p); err != nil {
		return ArticlesPage{}, err
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}

	sortBy := db.ArticleSortNewest
	if p.Sort == "oldest" {
		sortBy = db.ArticleSortOldest
	}

	page := ArticlesPage{Data: []Article{}}
	posts, total, err := s.store.ListArticles(ctx, db.ArticleQuery{
		Search: p.Query,
		Tag:    articleCategoryFilter(p.Category),
		Status: articleStatusFilter(p.Status),
		Sort:   sortBy,
		Limit:  p.Limit,
		Offset: (p.Page - 1) * p.Limit,
	})
	if err != nil {
		degrade(ctx, "articles", "blog_posts", err)
		return page, nil
	}

	now := s.clock()
	engagement := s.insights.ArticleEngagement(posts)
	for _, post := range posts {
		e := engagement[post.ID]
		updated := post.UpdatedAt
		if updated == nil {
			updated = post.CreatedAt
		}
		page.Data = append(page.Data, Article{
			ID:             post.ID,
			Title:          post.Title,
			Category:       articleCategory(post.Tags),
			Status:         stringOr(post.Status, DefaultStatus),
			Views:          e.Views,
			HelpfulPercent: e.HelpfulPercent,
			Helpful:        strconv.Itoa(e.HelpfulPercent) + "%",
			LastUpdate:     dateLabel(updated, now, s.loc),
			Description:    stringOr(post.Excerpt, DefaultDescription),
		})
	}

	switch p.Sort {
	case "views":
		sort.SliceStable(page.Data, func(i, j int) bool { return page.Data[i].Views > page.Data[j].Views })
	case "helpful":
		sort.SliceStable(page.Data, func(i, j int) bool { return page.Data[i].HelpfulPercent > page.Data[j].HelpfulPercent })
	}
	page.Total = total
	return page, nil
}

// Categories lists "All Articles" with the article total, then every tag
// with its article count in first-seen order.
func (s *Service) Categories(ctx context.Context) []Category {
	categories := []Category{{Name: AllArticles}}

	tagLists, err := s.store.ListArticleTags(ctx)
	if err != nil {
		degrade(ctx, "categories", "blog_posts", err)
		return categories
	}

	index := map[string]int{AllArticles: 0}
	for _, tags := range tagLists {
		categories[0].Count++
		for _, tag := range tags {
			i, ok := index[tag]
			if !ok {
				i = len(categories)
				index[tag] = i
				categories = append(categories, Category{Name: tag})
			}
			categories[i].Count++
		}
	}
	return categories
}
