package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/MJServices/neural-admin-panel/internal/db"
	"github.com/MJServices/neural-admin-panel/internal/models"
	"github.com/MJServices/neural-admin-panel/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestStore_Integration(t *testing.T) {
	env := testutil.SetupTestEnvironment(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("profiles", func(t *testing.T) {
		env.CleanDB(t)
		alice := env.CreateProfile(t, testutil.ProfileFixture{
			Name: "Alice Smith", Email: "alice@example.com", BondScore: ptr(82.0),
			LastActiveAt: ptr(now.Add(-time.Hour)), MemberSince: now.Add(-48 * time.Hour), Tier: "pro",
		})
		env.CreateProfile(t, testutil.ProfileFixture{Name: "Bob Jones", MemberSince: now.Add(-24 * time.Hour)})

		total, err := env.DB.CountProfiles(ctx, db.ProfileFilter{})
		if err != nil || total != 2 {
			t.Fatalf("CountProfiles = %d, %v; want 2", total, err)
		}
		active, err := env.DB.CountProfiles(ctx, db.ProfileFilter{EverActive: true})
		if err != nil || active != 1 {
			t.Errorf("CountProfiles(EverActive) = %d, %v; want 1", active, err)
		}

		page, count, err := env.DB.ListProfiles(ctx, db.ProfileQuery{Search: "ALICE", Limit: 10})
		if err != nil {
			t.Fatalf("ListProfiles: %v", err)
		}
		if count != 1 || len(page) != 1 || page[0].ID != alice {
			t.Errorf("ListProfiles(ALICE) = %d rows, total %d; want alice only", len(page), count)
		}

		newestFirst, _, err := env.DB.ListProfiles(ctx, db.ProfileQuery{})
		if err != nil {
			t.Fatalf("ListProfiles: %v", err)
		}
		if len(newestFirst) != 2 || newestFirst[0].FullName == nil || *newestFirst[0].FullName != "Bob Jones" {
			t.Errorf("ListProfiles order: first = %v, want Bob Jones", newestFirst[0].FullName)
		}

		ids, err := env.DB.SearchProfileIDs(ctx, "smith", 20)
		if err != nil || !cmp.Equal(ids, []string{alice}) {
			t.Errorf("SearchProfileIDs(smith) = %v, %v; want [%s]", ids, err, alice)
		}

		summaries, err := env.DB.GetProfileSummaries(ctx, []string{alice, uuid.NewString()})
		if err != nil || len(summaries) != 1 || summaries[0].BondScore == nil || *summaries[0].BondScore != 82 {
			t.Errorf("GetProfileSummaries = %+v, %v; want alice with score 82", summaries, err)
		}

		scores, err := env.DB.ListBondScores(ctx)
		if err != nil || len(scores) != 2 {
			t.Errorf("ListBondScores = %d scores, %v; want 2", len(scores), err)
		}

		if err := env.DB.DeleteProfile(ctx, alice); err != nil {
			t.Fatalf("DeleteProfile: %v", err)
		}
		if err := env.DB.DeleteProfile(ctx, alice); !errors.Is(err, db.ErrUserNotFound) {
			t.Errorf("second DeleteProfile error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("users", func(t *testing.T) {
		env.CleanDB(t)
		env.CreateProfile(t, testutil.ProfileFixture{Name: "Old", MemberSince: now.AddDate(0, -2, 0)})
		env.CreateProfile(t, testutil.ProfileFixture{Name: "New", MemberSince: now})

		total, err := env.DB.CountUsers(ctx)
		if err != nil || total != 2 {
			t.Errorf("CountUsers = %d, %v; want 2", total, err)
		}
		recent, err := env.DB.CountUsersSince(ctx, now.AddDate(0, 0, -1))
		if err != nil || recent != 1 {
			t.Errorf("CountUsersSince = %d, %v; want 1", recent, err)
		}
		users, err := env.DB.ListUsers(ctx)
		if err != nil || len(users) != 2 || *users[0].FullName != "Old" {
			t.Errorf("ListUsers = %d users, %v; want Old first", len(users), err)
		}
	})

	t.Run("messages", func(t *testing.T) {
		env.CleanDB(t)
		user := env.CreateProfile(t, testutil.ProfileFixture{Name: "Carol"})
		env.CreateMessage(t, user, models.RoleUser, "How do I reset 100% of my password?", now.Add(-3*time.Minute))
		env.CreateMessage(t, user, models.RoleAssistant, "Open settings.", now.Add(-2*time.Minute))
		env.CreateMessage(t, user, models.RoleUser, "Thanks", now.Add(-time.Minute))

		n, err := env.DB.CountMessages(ctx, db.MessageFilter{Role: models.RoleAssistant})
		if err != nil || n != 1 {
			t.Errorf("CountMessages(assistant) = %d, %v; want 1", n, err)
		}

		transcript, err := env.DB.ListMessages(ctx, db.MessageQuery{UserID: user})
		if err != nil || len(transcript) != 3 || transcript[0].Content != "How do I reset 100% of my password?" {
			t.Errorf("ListMessages(transcript) = %+v, %v", transcript, err)
		}

		literal, err := env.DB.ListMessages(ctx, db.MessageQuery{Search: "100%"})
		if err != nil || len(literal) != 1 {
			t.Errorf("ListMessages(search 100%%) = %d, %v; want 1", len(literal), err)
		}

		byAuthor, err := env.DB.ListMessages(ctx, db.MessageQuery{Search: "zzz", AuthorIDs: []string{user}, Newest: true, Limit: 2})
		if err != nil || len(byAuthor) != 2 || byAuthor[0].Content != "Thanks" {
			t.Errorf("ListMessages(author match) = %+v, %v; want newest 2", byAuthor, err)
		}
	})

	t.Run("xp logs", func(t *testing.T) {
		env.CleanDB(t)
		user := env.CreateProfile(t, testutil.ProfileFixture{Name: "Dan"})
		env.CreateXPLog(t, user, 10, "chat", now.Add(-48*time.Hour))
		env.CreateXPLog(t, user, 25, "quiz", now.Add(-time.Hour))

		logs, err := env.DB.ListXPLogs(ctx, db.XPLogQuery{Newest: true, Limit: 1})
		if err != nil || len(logs) != 1 || logs[0].Source != "quiz" {
			t.Errorf("ListXPLogs(newest) = %+v, %v; want quiz", logs, err)
		}
		recent, err := env.DB.ListXPLogs(ctx, db.XPLogQuery{Since: now.Add(-24 * time.Hour)})
		if err != nil || len(recent) != 1 || recent[0].Amount != 25 {
			t.Errorf("ListXPLogs(since) = %+v, %v; want one award of 25", recent, err)
		}
	})

	t.Run("articles", func(t *testing.T) {
		env.CleanDB(t)
		first := env.CreateArticle(t, "Reset your password", "published", []string{"Account"}, now.Add(-2*time.Hour))
		env.CreateArticle(t, "Billing FAQ", "draft", []string{"Billing"}, now.Add(-time.Hour))
		env.CreateArticle(t, "Untagged", "", nil, now)

		page, total, err := env.DB.ListArticles(ctx, db.ArticleQuery{Sort: db.ArticleSortOldest, Limit: 2})
		if err != nil || total != 3 || len(page) != 2 || page[0].ID != first {
			t.Errorf("ListArticles(oldest) = %d rows, total %d, %v", len(page), total, err)
		}

		tagged, total, err := env.DB.ListArticles(ctx, db.ArticleQuery{Tag: "Billing", Status: "draft"})
		if err != nil || total != 1 || tagged[0].Title != "Billing FAQ" {
			t.Errorf("ListArticles(Billing, draft) = %+v, %d, %v", tagged, total, err)
		}

		tags, err := env.DB.ListArticleTags(ctx)
		want := [][]string{{"Account"}, {"Billing"}, {}}
		if err != nil || !cmp.Equal(tags, want) {
			t.Errorf("ListArticleTags = %v, %v; want %v", tags, err, want)
		}

		err = env.DB.UpdateArticle(ctx, first, models.ArticlePatch{Title: ptr("Reset password"), Tags: []string{"Security"}, Status: ptr("draft")})
		if err != nil {
			t.Fatalf("UpdateArticle: %v", err)
		}
		updated, _, _ := env.DB.ListArticles(ctx, db.ArticleQuery{Tag: "Security"})
		if len(updated) != 1 || updated[0].Title != "Reset password" || *updated[0].Status != "draft" {
			t.Errorf("after update = %+v", updated)
		}

		if err := env.DB.UpdateArticle(ctx, uuid.NewString(), models.ArticlePatch{}); !errors.Is(err, db.ErrArticleNotFound) {
			t.Errorf("UpdateArticle(missing) error = %v, want ErrArticleNotFound", err)
		}
		if err := env.DB.DeleteArticle(ctx, first); err != nil {
			t.Errorf("DeleteArticle: %v", err)
		}
		if err := env.DB.DeleteArticle(ctx, first); !errors.Is(err, db.ErrArticleNotFound) {
			t.Errorf("second DeleteArticle error = %v, want ErrArticleNotFound", err)
		}
	})

	t.Run("settings", func(t *testing.T) {
		env.CleanDB(t)
		if _, err := env.DB.GetSettings(ctx); !errors.Is(err, db.ErrSettingsNotFound) {
			t.Fatalf("GetSettings on empty table error = %v, want ErrSettingsNotFound", err)
		}

		created, err := env.DB.InsertSettings(ctx, models.SettingsPatch{OrganizationName: ptr("Acme"), BotTemperature: ptr(0.7)})
		if err != nil {
			t.Fatalf("InsertSettings: %v", err)
		}
		if err := env.DB.UpdateSettings(ctx, created.ID, models.SettingsPatch{AdminEmail: ptr("ops@acme.io")}); err != nil {
			t.Fatalf("UpdateSettings: %v", err)
		}
		if err := env.DB.SetAutoBackup(ctx, created.ID, true); err != nil {
			t.Fatalf("SetAutoBackup: %v", err)
		}

		got, err := env.DB.GetSettings(ctx)
		if err != nil {
			t.Fatalf("GetSettings: %v", err)
		}
		if *got.OrganizationName != "Acme" || *got.AdminEmail != "ops@acme.io" || !got.AutoBackupEnabled {
			t.Errorf("settings = %+v", got)
		}

		if err := env.DB.SetAutoBackup(ctx, uuid.NewString(), true); !errors.Is(err, db.ErrSettingsNotFound) {
			t.Errorf("SetAutoBackup(missing) error = %v, want ErrSettingsNotFound", err)
		}
	})
}
