package db

import (
	"time"

	"github.com/MJServices/neural-admin-panel/internal/models"
)

// ProfileFilter narrows a profile count. Zero fields are ignored.
type ProfileFilter struct {
	// EverActive keeps profiles with any last_active_at.
	EverActive bool
	// ActiveFrom and ActiveTo bound last_active_at to [ActiveFrom, ActiveTo).
	ActiveFrom time.Time
	ActiveTo   time.Time
	// MemberFrom keeps profiles with member_since >= MemberFrom.
	MemberFrom time.Time
}

// ProfileQuery pages through profiles newest member first
type ProfileQuery struct {
	// Search matches full_name or email, case-insensitively.
	Search string
	// Limit <= 0 returns every row.
	Limit  int
	Offset int
}

// MessageFilter narrows a message count. Zero fields are ignored.
type MessageFilter struct {
	Role models.MessageRole
	From time.Time // inclusive
	To   time.Time // exclusive
}

// MessageQuery selects messages. Zero fields are ignored.
type MessageQuery struct {
	UserID string
	Role   models.MessageRole
	Since  time.Time // inclusive
	Before time.Time // exclusive
	// Search matches content, case-insensitively. When AuthorIDs is also
	// set, messages from those authors match too.
	Search    string
	AuthorIDs []string
	// Newest orders by created_at descending instead of ascending.
	Newest bool
	// Limit <= 0 returns every row.
	Limit int
}

// XPLogQuery selects experience point logs. Zero fields are ignored.
type XPLogQuery struct {
	Since  time.Time
	Newest bool
	Limit  int
}

// ArticleSort orders article listings
type ArticleSort string

const (
	ArticleSortNewest ArticleSort = "newest"
	ArticleSortOldest ArticleSort = "oldest"
)

// ArticleQuery pages through blog posts
type ArticleQuery struct {
	// Search matches the title, case-insensitively.
	Search string
	// Tag keeps posts whose tags contain it.
	Tag string
	// Status keeps posts with exactly this status.
	Status string
	Sort   ArticleSort
	Limit  int
	Offset int
}
