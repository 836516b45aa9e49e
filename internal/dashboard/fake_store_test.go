package dashboard

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MJServices/neural-admin-panel/internal/db"
	"github.com/MJServices/neural-admin-panel/internal/models"
	"github.com/MJServices/neural-admin-panel/internal/storage"
)

// fakeStore is an in-memory Store. Methods named in fail return that error.
type fakeStore struct {
	users    []models.User
	profiles []models.Profile
	messages []models.Message
	xpLogs   []models.XPLog
	posts    []models.BlogPost
	settings *models.AdminSettings
	fail     map[string]error

	mu              sync.Mutex
	messageQueries  []db.MessageQuery
	xpQueries       []db.XPLogQuery
	articleQueries  []db.ArticleQuery
	articlePatches  map[string]models.ArticlePatch
	settingsUpdates []models.SettingsPatch
	inserted        []models.SettingsPatch
	autoBackup      map[string]bool
}

func (f *fakeStore) err(method string) error {
	return f.fail[method]
}

func (f *fakeStore) CountUsers(ctx context.Context) (int, error) {
	if err := f.err("CountUsers"); err != nil {
		return 0, err
	}
	return len(f.users), nil
}

func (f *fakeStore) CountUsersSince(ctx context.Context, since time.Time) (int, error) {
	if err := f.err("CountUsersSince"); err != nil {
		return 0, err
	}
	n := 0
	for _, u := range f.users {
		if u.MemberSince != nil && !u.MemberSince.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := f.err("ListUsers"); err != nil {
		return nil, err
	}
	return append([]models.User{}, f.users...), nil
}

func profileMatches(p models.Profile, flt db.ProfileFilter) bool {
	if flt.EverActive && p.LastActiveAt == nil {
		return false
	}
	if !flt.ActiveFrom.IsZero() && (p.LastActiveAt == nil || p.LastActiveAt.Before(flt.ActiveFrom)) {
		return false
	}
	if !flt.ActiveTo.IsZero() && (p.LastActiveAt == nil || !p.LastActiveAt.Before(flt.ActiveTo)) {
		return false
	}
	if !flt.MemberFrom.IsZero() && (p.MemberSince == nil || p.MemberSince.Before(flt.MemberFrom)) {
		return false
	}
	return true
}

func (f *fakeStore) CountProfiles(ctx context.Context, flt db.ProfileFilter) (int, error) {
	if err := f.err("CountProfiles"); err != nil {
		return 0, err
	}
	n := 0
	for _, p := range f.profiles {
		if profileMatches(p, flt) {
			n++
		}
	}
	return n, nil
}

func containsFold(s *string, sub string) bool {
	return s != nil && strings.Contains(strings.ToLower(*s), strings.ToLower(sub))
}

func page[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func (f *fakeStore) ListProfiles(ctx context.Context, q db.ProfileQuery) ([]models.Profile, int, error) {
	if err := f.err("ListProfiles"); err != nil {
		return nil, 0, err
	}
	var out []models.Profile
	for _, p := range f.profiles {
		if q.Search == "" || containsFold(p.FullName, q.Search) || containsFold(p.Email, q.Search) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].MemberSince, out[j].MemberSince
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	return page(out, q.Limit, q.Offset), len(out), nil
}

func (f *fakeStore) SearchProfileIDs(ctx context.Context, name string, limit int) ([]string, error) {
	if err := f.err("SearchProfileIDs"); err != nil {
		return nil, err
	}
	var ids []string
	for _, p := range f.profiles {
		if containsFold(p.FullName, name) {
			ids = append(ids, p.ID)
		}
	}
	return page(ids, limit, 0), nil
}

func (f *fakeStore) GetProfileSummaries(ctx context.Context, ids []string) ([]models.ProfileSummary, error) {
	if err := f.err("GetProfileSummaries"); err != nil {
		return nil, err
	}
	want := make(map[string]bool)
	for _, id := range ids {
		want[id] = true
	}
	var out []models.ProfileSummary
	for _, p := range f.profiles {
		if want[p.ID] {
			out = append(out, models.ProfileSummary{ID: p.ID, FullName: p.FullName, AvatarURL: p.AvatarURL, BondScore: p.BondScore})
		}
	}
	return out, nil
}

func (f *fakeStore) ListBondScores(ctx context.Context) ([]*float64, error) {
	if err := f.err("ListBondScores"); err != nil {
		return nil, err
	}
	scores := make([]*float64, len(f.profiles))
	for i, p := range f.profiles {
		scores[i] = p.BondScore
	}
	return scores, nil
}

func (f *fakeStore) DeleteProfile(ctx context.Context, id string) error {
	if err := f.err("DeleteProfile"); err != nil {
		return err
	}
	for _, p := range f.profiles {
		if p.ID == id {
			return nil
		}
	}
	return db.ErrUserNotFound
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

func (f *fakeStore) CountMessages(ctx context.Context, flt db.MessageFilter) (int, error) {
	if err := f.err("CountMessages"); err != nil {
		return 0, err
	}
	n := 0
	for _, m := range f.messages {
		if (flt.Role == "" || m.Role == flt.Role) && inRange(m.CreatedAt, flt.From, flt.To) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListMessages(ctx context.Context, q db.MessageQuery) ([]models.Message, error) {
	f.mu.Lock()
	f.messageQueries = append(f.messageQueries, q)
	f.mu.Unlock()
	if err := f.err("ListMessages"); err != nil {
		return nil, err
	}

	authors := make(map[string]bool)
	for _, id := range q.AuthorIDs {
		authors[id] = true
	}
	var out []models.Message
	for _, m := range f.messages {
		if q.UserID != "" && m.UserID != q.UserID {
			continue
		}
		if q.Role != "" && m.Role != q.Role {
			continue
		}
		if !inRange(m.CreatedAt, q.Since, q.Before) {
			continue
		}
		if q.Search != "" && !containsFold(&m.Content, q.Search) && !authors[m.UserID] {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Newest {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return page(out, q.Limit, 0), nil
}

func (f *fakeStore) ListXPLogs(ctx context.Context, q db.XPLogQuery) ([]models.XPLog, error) {
	f.mu.Lock()
	f.xpQueries = append(f.xpQueries, q)
	f.mu.Unlock()
	if err := f.err("ListXPLogs"); err != nil {
		return nil, err
	}
	var out []models.XPLog
	for _, l := range f.xpLogs {
		if inRange(l.CreatedAt, q.Since, time.Time{}) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Newest {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return page(out, q.Limit, 0), nil
}

func (f *fakeStore) ListArticles(ctx context.Context, q db.ArticleQuery) ([]models.BlogPost, int, error) {
	f.mu.Lock()
	f.articleQueries = append(f.articleQueries, q)
	f.mu.Unlock()
	if err := f.err("ListArticles"); err != nil {
		return nil, 0, err
	}
	var out []models.BlogPost
	for _, p := range f.posts {
		if q.Search != "" && !containsFold(&p.Title, q.Search) {
			continue
		}
		if q.Tag != "" && !hasTag(p.Tags, q.Tag) {
			continue
		}
		if q.Status != "" && (p.Status == nil || *p.Status != q.Status) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Sort == db.ArticleSortOldest {
			return out[i].CreatedAt.Before(*out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(*out[j].CreatedAt)
	})
	return page(out, q.Limit, q.Offset), len(out), nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (f *fakeStore) ListArticleTags(ctx context.Context) ([][]string, error) {
	if err := f.err("ListArticleTags"); err != nil {
		return nil, err
	}
	out := make([][]string, len(f.posts))
	for i, p := range f.posts {
		out[i] = p.Tags
	}
	return out, nil
}

func (f *fakeStore) findPost(id string) bool {
	for _, p := range f.posts {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (f *fakeStore) DeleteArticle(ctx context.Context, id string) error {
	if err := f.err("DeleteArticle"); err != nil {
		return err
	}
	if !f.findPost(id) {
		return db.ErrArticleNotFound
	}
	return nil
}

func (f *fakeStore) UpdateArticle(ctx context.Context, id string, patch models.ArticlePatch) error {
	if err := f.err("UpdateArticle"); err != nil {
		return err
	}
	if !f.findPost(id) {
		return db.ErrArticleNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.articlePatches == nil {
		f.articlePatches = make(map[string]models.ArticlePatch)
	}
	f.articlePatches[id] = patch
	return nil
}

func (f *fakeStore) GetSettings(ctx context.Context) (*models.AdminSettings, error) {
	if err := f.err("GetSettings"); err != nil {
		return nil, err
	}
	if f.settings == nil {
		return nil, db.ErrSettingsNotFound
	}
	s := *f.settings
	return &s, nil
}

func (f *fakeStore) InsertSettings(ctx context.Context, p models.SettingsPatch) (*models.AdminSettings, error) {
	if err := f.err("InsertSettings"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, p)
	f.settings = &models.AdminSettings{
		ID:               "5b0c7f64-1d2e-4c3b-9a8f-7e6d5c4b3a21",
		OrganizationName: p.OrganizationName,
		AdminEmail:       p.AdminEmail,
		TimeZone:         p.TimeZone,
		Language:         p.Language,
	}
	s := *f.settings
	return &s, nil
}

func (f *fakeStore) UpdateSettings(ctx context.Context, id string, p models.SettingsPatch) error {
	if err := f.err("UpdateSettings"); err != nil {
		return err
	}
	if f.settings == nil || f.settings.ID != id {
		return db.ErrSettingsNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settingsUpdates = append(f.settingsUpdates, p)
	return nil
}

func (f *fakeStore) SetAutoBackup(ctx context.Context, id string, enabled bool) error {
	if err := f.err("SetAutoBackup"); err != nil {
		return err
	}
	if f.settings == nil || f.settings.ID != id {
		return db.ErrSettingsNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.autoBackup == nil {
		f.autoBackup = make(map[string]bool)
	}
	f.autoBackup[id] = enabled
	return nil
}

// fakeSnapshots keeps snapshots in memory without compression.
type fakeSnapshots struct {
	mu   sync.Mutex
	docs map[string][]byte
	list []storage.SnapshotInfo
}

func (f *fakeSnapshots) Save(ctx context.Context, doc []byte, now time.Time) (storage.SnapshotInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs == nil {
		f.docs = make(map[string][]byte)
	}
	info := storage.SnapshotInfo{
		Key:       "exports/" + now.UTC().Format("20060102T150405Z") + ".json.zst",
		CreatedAt: now.UTC(),
		Size:      int64(len(doc)),
	}
	f.docs[info.Key] = doc
	f.list = append([]storage.SnapshotInfo{info}, f.list...)
	return info, nil
}

func (f *fakeSnapshots) Load(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return doc, nil
}

func (f *fakeSnapshots) List(ctx context.Context) ([]storage.SnapshotInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]storage.SnapshotInfo{}, f.list...), nil
}

func (f *fakeSnapshots) Prune(ctx context.Context, keep int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if keep <= 0 || len(f.list) <= keep {
		return 0, nil
	}
	removed := f.list[keep:]
	for _, info := range removed {
		delete(f.docs, info.Key)
	}
	f.list = f.list[:keep]
	return len(removed), nil
}

var (
	_ Store         = (*fakeStore)(nil)
	_ SnapshotStore = (*fakeSnapshots)(nil)
)
