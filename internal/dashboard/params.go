package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MJServices/neural-admin-panel/internal/analytics"
	"github.com/MJServices/neural-admin-panel/internal/models"
	"github.com/MJServices/neural-admin-panel/internal/validation"
)

// ErrInvalidInput wraps every validation failure returned by Service.
var ErrInvalidInput = errors.New("invalid input")

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

func validate(v interface{}) error {
	if err := validation.Struct(v); err != nil {
		return invalid(err)
	}
	return nil
}

const (
	DefaultPageSize        = 10
	DefaultActivityLimit   = 5
	DefaultConversationCap = 10
	MaxPageSize            = 100
)

// PerformanceRange selects the performance chart window
type PerformanceRange string

const (
	Range1D  PerformanceRange = "1D"
	Range7D  PerformanceRange = "7D"
	Range30D PerformanceRange = "30D"
)

// ParsePerformanceRange maps "1D", "7D" or "30D" to its window. An empty
// range means 7D.
func ParsePerformanceRange(s string) (analytics.Window, error) {
	switch PerformanceRange(s) {
	case Range1D:
		return analytics.Last24Hours, nil
	case Range7D, "":
		return analytics.Last7Days, nil
	case Range30D:
		return analytics.Last30Days, nil
	}
	return 0, ErrInvalidRange
}

// ParseUsagePeriod maps "Daily", "Weekly" or "Monthly" to its window. An
// empty period means Daily.
func ParseUsagePeriod(s string) (analytics.Window, error) {
	switch s {
	case "Daily", "":
		return analytics.Last7Days, nil
	case "Weekly":
		return analytics.Last8Weeks, nil
	case "Monthly":
		return analytics.Last6Months, nil
	}
	return 0, ErrInvalidPeriod
}

// UserListParams pages through the users table
type UserListParams struct {
	Limit  int    `json:"limit" validate:"gte=0,lte=100"`
	Offset int    `json:"offset" validate:"gte=0"`
	Query  string `json:"query" validate:"max=200"`
}

// ArticleListParams filters, sorts and pages the article table
type ArticleListParams struct {
	Query    string `json:"query" validate:"max=200"`
	Category string `json:"category" validate:"max=100"`
	// Status is "All", "Published" or "Draft"; empty means All.
	Status string `json:"status" validate:"omitempty,oneof=All Published Draft"`
	Sort   string `json:"sort" validate:"omitempty,oneof=newest oldest views helpful"`
	Page   int    `json:"page" validate:"gte=0"`
	Limit  int    `json:"limit" validate:"gte=0,lte=100"`
}

// ArticleUpdate is the set of article fields an admin may edit. Nil
// fields are left unchanged.
type ArticleUpdate struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Status      *string `json:"status" validate:"omitempty,oneof=published draft Published Draft"`
}

// patch maps the update onto blog_posts columns. The category becomes the
// article's only tag; an empty category or status is ignored.
func (u ArticleUpdate) patch() models.ArticlePatch {
	p := models.ArticlePatch{
		Title:   u.Title,
		Excerpt: u.Description,
	}
	if u.Category != nil && *u.Category != "" {
		p.Tags = []string{*u.Category}
	}
	if u.Status != nil && *u.Status != "" {
		status := strings.ToLower(*u.Status)
		p.Status = &status
	}
	return p
}

// SettingsUpdate is the editable part of the organization settings. Nil
// fields are left unchanged.
type SettingsUpdate struct {
	OrganizationName *string  `json:"organization_name" validate:"omitempty,max=200"`
	AdminEmail       *string  `json:"admin_email" validate:"omitempty,admin_email"`
	TimeZone         *string  `json:"time_zone" validate:"omitempty,timezone"`
	Language         *string  `json:"language" validate:"omitempty,max=50"`
	BotName          *string  `json:"bot_name" validate:"omitempty,max=100"`
	BotModel         *string  `json:"bot_model" validate:"omitempty,max=100"`
	BotTemperature   *float64 `json:"bot_temperature" validate:"omitempty,gte=0,lte=2"`
	SystemPrompt     *string  `json:"system_prompt" validate:"omitempty,max=10000"`
	OpenAIAPIKey     *string  `json:"openai_api_key" validate:"omitempty,max=500"`
	WebhookURL       *string  `json:"webhook_url" validate:"omitempty,max=2000"`
	TwoFactorEnabled *bool    `json:"two_factor_enabled"`
}

func (u SettingsUpdate) patch() models.SettingsPatch {
	if u.AdminEmail != nil {
		u.AdminEmail = ptr(validation.NormalizeEmail(*u.AdminEmail))
	}
	return models.SettingsPatch{
		OrganizationName: u.OrganizationName,
		AdminEmail:       u.AdminEmail,
		TimeZone:         u.TimeZone,
		Language:         u.Language,
		BotName:          u.BotName,
		BotModel:         u.BotModel,
		BotTemperature:   u.BotTemperature,
		SystemPrompt:     u.SystemPrompt,
		OpenAIAPIKey:     u.OpenAIAPIKey,
		WebhookURL:       u.WebhookURL,
		TwoFactorEnabled: u.TwoFactorEnabled,
	}
}

func ptr[T any](v T) *T { return &v }

// defaultSettings is written when no settings row exists yet.
func defaultSettings() models.SettingsPatch {
	return models.SettingsPatch{
		OrganizationName: ptr("Noural Bond Admin"),
		AdminEmail:       ptr("admin@gmail.com"),
		TimeZone:         ptr("UTC"),
		Language:         ptr("English (US)"),
		BotName:          ptr("Noural Bot"),
		BotModel:         ptr("GPT-4"),
		BotTemperature:   ptr(0.7),
		SystemPrompt:     ptr("You are a helpful assistant."),
		OpenAIAPIKey:     ptr(""),
		WebhookURL:       ptr(""),
		TwoFactorEnabled: ptr(false),
	}
}

// resetSettings restores the general section only; bot and security
// settings are kept.
func resetSettings() models.SettingsPatch {
	d := defaultSettings()
	return models.SettingsPatch{
		OrganizationName: d.OrganizationName,
		AdminEmail:       d.AdminEmail,
		TimeZone:         d.TimeZone,
		Language:         d.Language,
	}
}

// fallbackSettingsID marks settings that exist only in memory because the
// row could not be created.
const fallbackSettingsID = "default"

func fallbackSettings() *models.AdminSettings {
	d := defaultSettings()
	return &models.AdminSettings{
		ID:               fallbackSettingsID,
		OrganizationName: d.OrganizationName,
		AdminEmail:       d.AdminEmail,
		TimeZone:         d.TimeZone,
		Language:         d.Language,
		BotName:          d.BotName,
		BotModel:         d.BotModel,
		BotTemperature:   d.BotTemperature,
		SystemPrompt:     d.SystemPrompt,
		OpenAIAPIKey:     d.OpenAIAPIKey,
		WebhookURL:       d.WebhookURL,
		TwoFactorEnabled: d.TwoFactorEnabled,
	}
}

// articleStatusFilter maps the dashboard's status filter to a stored
// status; "" means no filter.
func articleStatusFilter(status string) string {
	switch status {
	case "", "All":
		return ""
	case "Published":
		return "published"
	}
	return "draft"
}

func articleCategoryFilter(category string) string {
	if category == AllArticles {
		return ""
	}
	return category
}

func validateID(name, id string) error {
	if err := validation.ValidateID(name, id); err != nil {
		return invalid(err)
	}
	return nil
}
