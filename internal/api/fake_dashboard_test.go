package api

import (
	"context"

	"github.com/MJServices/neural-admin-panel/internal/analytics"
	"github.com/MJServices/neural-admin-panel/internal/dashboard"
	"github.com/MJServices/neural-admin-panel/internal/models"
	"github.com/MJServices/neural-admin-panel/internal/storage"
)

// fakeDashboard returns canned values and records the arguments it was
// called with. err is returned by every method that can fail.
type fakeDashboard struct {
	err error

	stats    dashboard.Stats
	export   []byte
	snapshot storage.SnapshotInfo

	gotLimit    int
	gotQuery    string
	gotUsers    dashboard.UserListParams
	gotArticles dashboard.ArticleListParams
	gotWindow   analytics.Window
	gotID       string
	gotArticle  dashboard.ArticleUpdate
	gotSettings dashboard.SettingsUpdate
	gotEnabled  *bool
	gotKey      string
}

var _ Dashboard = (*fakeDashboard)(nil)

func (f *fakeDashboard) DashboardStats(context.Context) dashboard.Stats { return f.stats }

func (f *fakeDashboard) RecentActivities(_ context.Context, limit int) []dashboard.Activity {
	f.gotLimit = limit
	return []dashboard.Activity{}
}

func (f *fakeDashboard) Conversations(_ context.Context, limit int, query string) []dashboard.Conversation {
	f.gotLimit, f.gotQuery = limit, query
	return []dashboard.Conversation{}
}

func (f *fakeDashboard) Messages(_ context.Context, userID string) ([]models.Message, error) {
	f.gotID = userID
	return []models.Message{}, f.err
}

func (f *fakeDashboard) Users(_ context.Context, p dashboard.UserListParams) (dashboard.UsersPage, error) {
	f.gotUsers = p
	return dashboard.UsersPage{Data: []dashboard.UserRow{}}, f.err
}

func (f *fakeDashboard) UserPageStats(context.Context) dashboard.UserPageStats {
	return dashboard.UserPageStats{}
}

func (f *fakeDashboard) PerformanceData(_ context.Context, w analytics.Window) []analytics.Point {
	f.gotWindow = w
	return []analytics.Point{}
}

func (f *fakeDashboard) UsageTrends(_ context.Context, w analytics.Window) []analytics.Point {
	f.gotWindow = w
	return []analytics.Point{}
}

func (f *fakeDashboard) AnalyticsData(context.Context) dashboard.AnalyticsData {
	return dashboard.AnalyticsData{}
}

func (f *fakeDashboard) KnowledgeBaseStats(context.Context) dashboard.KnowledgeBaseStats {
	return dashboard.KnowledgeBaseStats{}
}

func (f *fakeDashboard) Articles(_ context.Context, p dashboard.ArticleListParams) (dashboard.ArticlesPage, error) {
	f.gotArticles = p
	return dashboard.ArticlesPage{Data: []dashboard.Article{}}, f.err
}

func (f *fakeDashboard) Categories(context.Context) []dashboard.Category {
	return []dashboard.Category{{Name: "All Articles", Active: true}}
}

func (f *fakeDashboard) Settings(context.Context) (*models.AdminSettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.AdminSettings{ID: "default"}, nil
}

func (f *fakeDashboard) DeleteUser(_ context.Context, id string) error {
	f.gotID = id
	return f.err
}

func (f *fakeDashboard) DeleteArticle(_ context.Context, id string) error {
	f.gotID = id
	return f.err
}

func (f *fakeDashboard) UpdateArticle(_ context.Context, id string, u dashboard.ArticleUpdate) error {
	f.gotID, f.gotArticle = id, u
	return f.err
}

func (f *fakeDashboard) UpdateSettings(_ context.Context, u dashboard.SettingsUpdate) error {
	f.gotSettings = u
	return f.err
}

func (f *fakeDashboard) ResetSettings(context.Context) error { return f.err }

func (f *fakeDashboard) ToggleAutoBackup(_ context.Context, enabled bool) error {
	f.gotEnabled = &enabled
	return f.err
}

func (f *fakeDashboard) ExportAllData(context.Context) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.export, nil
}

func (f *fakeDashboard) CreateBackup(context.Context) (storage.SnapshotInfo, error) {
	if f.err != nil {
		return storage.SnapshotInfo{}, f.err
	}
	return f.snapshot, nil
}

func (f *fakeDashboard) Backups(context.Context) ([]storage.SnapshotInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []storage.SnapshotInfo{f.snapshot}, nil
}

func (f *fakeDashboard) DownloadBackup(_ context.Context, key string) ([]byte, error) {
	f.gotKey = key
	if f.err != nil {
		return nil, f.err
	}
	return f.export, nil
}
