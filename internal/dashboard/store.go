package dashboard

import (
	"context"
	"time"

	"github.com/MJServices/neural-admin-panel/internal/db"
	"github.com/MJServices/neural-admin-panel/internal/models"
	"github.com/MJServices/neural-admin-panel/internal/storage"
)

// Store is the data access the dashboard needs. *db.DB implements it.
type Store interface {
	CountUsers(ctx context.Context) (int, error)
	CountUsersSince(ctx context.Context, since time.Time) (int, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	CountProfiles(ctx context.Context, f db.ProfileFilter) (int, error)
	ListProfiles(ctx context.Context, q db.ProfileQuery) ([]models.Profile, int, error)
	SearchProfileIDs(ctx context.Context, name string, limit int) ([]string, error)
	GetProfileSummaries(ctx context.Context, ids []string) ([]models.ProfileSummary, error)
	ListBondScores(ctx context.Context) ([]*float64, error)
	DeleteProfile(ctx context.Context, id string) error

	CountMessages(ctx context.Context, f db.MessageFilter) (int, error)
	ListMessages(ctx context.Context, q db.MessageQuery) ([]models.Message, error)

	ListXPLogs(ctx context.Context, q db.XPLogQuery) ([]models.XPLog, error)

	ListArticles(ctx context.Context, q db.ArticleQuery) ([]models.BlogPost, int, error)
	ListArticleTags(ctx context.Context) ([][]string, error)
	DeleteArticle(ctx context.Context, id string) error
	UpdateArticle(ctx context.Context, id string, patch models.ArticlePatch) error

	GetSettings(ctx context.Context) (*models.AdminSettings, error)
	InsertSettings(ctx context.Context, p models.SettingsPatch) (*models.AdminSettings, error)
	UpdateSettings(ctx context.Context, id string, p models.SettingsPatch) error
	SetAutoBackup(ctx context.Context, id string, enabled bool) error
}

// SnapshotStore keeps export snapshots. *storage.Snapshots implements it.
type SnapshotStore interface {
	Save(ctx context.Context, doc []byte, now time.Time) (storage.SnapshotInfo, error)
	Load(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context) ([]storage.SnapshotInfo, error)
	Prune(ctx context.Context, keep int) (int, error)
}

var (
	_ Store         = (*db.DB)(nil)
	_ SnapshotStore = (*storage.Snapshots)(nil)
)
