package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/MJServices/neural-admin-panel/internal/models"
)

// ProfileFixture describes a profile row to insert. Zero fields are stored
// as NULL except MemberSince, which defaults to now.
type ProfileFixture struct {
	Name         string
	Email        string
	BondScore    *float64
	LastActiveAt *time.Time
	MemberSince  time.Time
	Tier         string
}

// CreateProfile inserts a profile and its matching users row and returns
// the shared id.
func (e *TestEnvironment) CreateProfile(t *testing.T, p ProfileFixture) string {
	t.Helper()
	id := uuid.NewString()
	if p.MemberSince.IsZero() {
		p.MemberSince = time.Now().UTC()
	}

	_, err := e.DB.Exec(e.Ctx,
		`INSERT INTO users (id, email, full_name, member_since, bond_score) VALUES ($1, $2, $3, $4, $5)`,
		id, nullString(p.Email), nullString(p.Name), p.MemberSince, p.BondScore)
	if err != nil {
		t.Fatalf("failed to insert user: %v", err)
	}
	_, err = e.DB.Exec(e.Ctx,
		`INSERT INTO profiles (id, email, full_name, member_since, bond_score, last_active_at, subscription_tier)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, nullString(p.Email), nullString(p.Name), p.MemberSince, p.BondScore, p.LastActiveAt, nullString(p.Tier))
	if err != nil {
		t.Fatalf("failed to insert profile: %v", err)
	}
	return id
}

// CreateMessage inserts a chat message and returns its id
func (e *TestEnvironment) CreateMessage(t *testing.T, userID string, role models.MessageRole, content string, at time.Time) string {
	t.Helper()
	id := uuid.NewString()
	_, err := e.DB.Exec(e.Ctx,
		`INSERT INTO messages (id, user_id, content, role, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, userID, content, string(role), at)
	if err != nil {
		t.Fatalf("failed to insert message: %v", err)
	}
	return id
}

// CreateXPLog inserts an experience point award
func (e *TestEnvironment) CreateXPLog(t *testing.T, userID string, amount int, source string, at time.Time) {
	t.Helper()
	_, err := e.DB.Exec(e.Ctx,
		`INSERT INTO xp_logs (user_id, amount, source, created_at) VALUES ($1, $2, $3, $4)`,
		userID, amount, source, at)
	if err != nil {
		t.Fatalf("failed to insert xp log: %v", err)
	}
}

// CreateArticle inserts a blog post and returns its id. status may be
// empty to store NULL.
func (e *TestEnvironment) CreateArticle(t *testing.T, title, status string, tags []string, createdAt time.Time) string {
	t.Helper()
	id := uuid.NewString()
	_, err := e.DB.Exec(e.Ctx,
		`INSERT INTO blog_posts (id, title, slug, status, tags, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		id, title, fmt.Sprintf("post-%s", id[:8]), nullString(status), pq.Array(tags), createdAt)
	if err != nil {
		t.Fatalf("failed to insert article: %v", err)
	}
	return id
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
