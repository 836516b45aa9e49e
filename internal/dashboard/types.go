package dashboard

import (
	"errors"
	"time"

	"github.com/MJServices/neural-admin-panel/internal/analytics"
	"github.com/MJServices/neural-admin-panel/internal/models"
)

var (
	// ErrStorageDisabled is returned by backup operations when no object
	// storage is configured.
	ErrStorageDisabled = errors.New("backup storage is not configured")

	ErrInvalidRange  = errors.New("invalid range: must be 1D, 7D or 30D")
	ErrInvalidPeriod = errors.New("invalid period: must be Daily, Weekly or Monthly")
)

// Result is the outcome of a write, as returned to the dashboard
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Stats is the headline numbers on the dashboard home page
type Stats struct {
	TotalUsers    int     `json:"totalUsers"`
	TotalMessages int     `json:"totalMessages"`
	NewUsers      int     `json:"newUsers"`
	ActiveUsers   int     `json:"activeUsers"`
	ResponseRate  float64 `json:"responseRate"`
}

// Activity is one entry of the recent activity feed
type Activity struct {
	ID     string    `json:"id"`
	User   string    `json:"user"`
	Avatar string    `json:"avatar"`
	Action string    `json:"action"`
	Time   time.Time `json:"time"`
	Status string    `json:"status"`
}

// Conversation is a user's latest message in the conversation list
type Conversation struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Avatar    string    `json:"avatar"`
	Message   string    `json:"message"`
	Time      time.Time `json:"time"`
	Status    string    `json:"status"`
	Rating    int       `json:"rating"`
	BondScore float64   `json:"bond_score"`
}

// UserRow is a profile as listed on the users page
type UserRow struct {
	models.Profile
	IsVerified bool `json:"is_verified"`
}

// UsersPage is one page of the users table
type UsersPage struct {
	Data  []UserRow `json:"data"`
	Count int       `json:"count"`
}

// UserPageStats is the summary strip above the users table
type UserPageStats struct {
	TotalUsers      int     `json:"totalUsers"`
	ActiveUsers     int     `json:"activeUsers"`
	NewUsers        int     `json:"newUsers"`
	AvgSatisfaction float64 `json:"avgSatisfaction"`
}

// AnalyticsOverview is the top row of the analytics page
type AnalyticsOverview struct {
	TotalInteraction int     `json:"totalInteraction"`
	ActiveUsers      int     `json:"activeUsers"`
	ResponseRate     float64 `json:"responseRate"`
	AvgResponseTime  string  `json:"avgResponseTime"`
	AvgSatisfaction  float64 `json:"avgSatisfaction"`
}

// TopQuery is one of the most frequent user questions
type TopQuery struct {
	Rank       int    `json:"rank"`
	Text       string `json:"text"`
	Count      string `json:"count"`
	Percentage int    `json:"percentage"`
}

// Satisfaction summarizes bond scores as star ratings
type Satisfaction struct {
	Avg          float64               `json:"avg"`
	Total        int                   `json:"total"`
	Distribution []analytics.StarShare `json:"distribution"`
}

// AnalyticsData backs the analytics page
type AnalyticsData struct {
	Overview     AnalyticsOverview       `json:"overview"`
	UsageTrends  []analytics.Point       `json:"usageTrends"`
	TopQueries   []TopQuery              `json:"topQueries"`
	Satisfaction Satisfaction            `json:"satisfaction"`
	ResponseTime []analytics.LatencyBand `json:"responseTime"`
}

// KnowledgeBaseStats compares this month against the previous one
type KnowledgeBaseStats struct {
	TotalInteraction       int     `json:"totalInteraction"`
	TotalInteractionChange float64 `json:"totalInteractionChange"`
	ActiveUsers            int     `json:"activeUsers"`
	ActiveUsersChange      float64 `json:"activeUsersChange"`
	ResponseRate           float64 `json:"responseRate"`
	ResponseRateChange     float64 `json:"responseRateChange"`
	AvgResponseTime        string  `json:"avgResponseTime"`
	AvgResponseTimeChange  float64 `json:"avgResponseTimeChange"`
}

// Article is a knowledge-base article as listed in the article table
type Article struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Category       string `json:"category"`
	Status         string `json:"status"`
	Views          int    `json:"views"`
	HelpfulPercent int    `json:"helpfulRaw"`
	Helpful        string `json:"helpful"`
	LastUpdate     string `json:"lastUpdate"`
	Description    string `json:"description"`
}

// ArticlesPage is one page of the article table
type ArticlesPage struct {
	Data  []Article `json:"data"`
	Total int       `json:"total"`
}

// Category is an article tag with its article count
type Category struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Active bool   `json:"active"`
}

// Engagement is how readers interact with an article
type Engagement struct {
	Views          int
	HelpfulPercent int
}

// ExportDocument is the full data export
type ExportDocument struct {
	Users     []models.User    `json:"users"`
	Profiles  []models.Profile `json:"profiles"`
	Messages  []models.Message `json:"messages"`
	Timestamp string           `json:"timestamp"`
}
