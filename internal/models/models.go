package models

import (
	"encoding/json"
	"time"
)

// MessageRole is the author of a chat message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// DefaultSubscriptionTier is assumed when a profile has no tier recorded
const DefaultSubscriptionTier = "free"

// User is an account row from the users table.
// Nullable columns are pointers; the dashboard normalizes them once when
// shaping responses.
type User struct {
	ID                 string     `json:"id"`
	Email              *string    `json:"email"`
	FullName           *string    `json:"full_name"`
	AvatarURL          *string    `json:"avatar_url"`
	Age                *int       `json:"age"`
	Location           *string    `json:"location"`
	MemberSince        *time.Time `json:"member_since"`
	IsVerified         *bool      `json:"is_verified"`
	IsPremium          *bool      `json:"is_premium"`
	Level              *int       `json:"level"`
	BondScore          *float64   `json:"bond_score"`
	Bio                *string    `json:"bio"`
	IsAdult            *bool      `json:"is_adult"`
	ConversationsCount *int       `json:"conversations_count"`
	DaysActive         *int       `json:"days_active"`
}

// Profile is the app-facing profile of a user (profiles table)
type Profile struct {
	ID                 string     `json:"id"`
	Email              *string    `json:"email"`
	FullName           *string    `json:"full_name"`
	AvatarURL          *string    `json:"avatar_url"`
	Age                *int       `json:"age"`
	Location           *string    `json:"location"`
	Bio                *string    `json:"bio"`
	MemberSince        *time.Time `json:"member_since"`
	ConversationsCount *int       `json:"conversations_count"`
	DaysActive         *int       `json:"days_active"`
	Level              *int       `json:"level"`
	BondScore          *float64   `json:"bond_score"`
	LastActiveAt       *time.Time `json:"last_active_at"`
	CurrentStreak      *int       `json:"current_streak"`
	TotalXP            *int       `json:"total_xp"`
	SubscriptionTier   *string    `json:"subscription_tier"`
	UpdatedAt          *time.Time `json:"updated_at"`
}

// ProfileSummary is the subset of a profile shown next to activity rows
type ProfileSummary struct {
	ID        string
	FullName  *string
	AvatarURL *string
	BondScore *float64
}

// Message is a single chat message between a user and the assistant
type Message struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Content   string      `json:"content"`
	Role      MessageRole `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// XPLog records experience points awarded to a user
type XPLog struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Amount    int             `json:"amount"`
	Source    string          `json:"source"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// BlogPost is a knowledge-base article
type BlogPost struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     *string    `json:"content"`
	Excerpt     *string    `json:"excerpt"`
	CoverImage  *string    `json:"cover_image"`
	AuthorID    *string    `json:"author_id"`
	Status      *string    `json:"status"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	Tags        []string   `json:"tags"`
}

// ArticlePatch holds the article columns an admin may change.
// Nil fields are left untouched.
type ArticlePatch struct {
	Title   *string
	Excerpt *string
	Tags    []string
	Status  *string
}

// AdminSettings is the single organization-wide settings row
type AdminSettings struct {
	ID                string     `json:"id"`
	OrganizationName  *string    `json:"organization_name"`
	AdminEmail        *string    `json:"admin_email"`
	TimeZone          *string    `json:"time_zone"`
	Language          *string    `json:"language"`
	BotName           *string    `json:"bot_name"`
	BotModel          *string    `json:"bot_model"`
	BotTemperature    *float64   `json:"bot_temperature"`
	SystemPrompt      *string    `json:"system_prompt"`
	OpenAIAPIKey      *string    `json:"openai_api_key"`
	WebhookURL        *string    `json:"webhook_url"`
	TwoFactorEnabled  *bool      `json:"two_factor_enabled"`
	AutoBackupEnabled bool       `json:"auto_backup_enabled"`
	UpdatedAt         *time.Time `json:"updated_at"`
}

// SettingsPatch lists the settings columns to write. Nil fields are left
// untouched.
type SettingsPatch struct {
	OrganizationName *string
	AdminEmail       *string
	TimeZone         *string
	Language         *string
	BotName          *string
	BotModel         *string
	BotTemperature   *float64
	SystemPrompt     *string
	OpenAIAPIKey     *string
	WebhookURL       *string
	TwoFactorEnabled *bool
}
