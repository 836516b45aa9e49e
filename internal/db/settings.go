package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MJServices/neural-admin-panel/internal/models"
)

const settingsColumns = `id, organization_name, admin_email, time_zone, language, bot_name,
	bot_model, bot_temperature, system_prompt, openai_api_key, webhook_url,
	two_factor_enabled, auto_backup_enabled, updated_at`

func scanSettings(row rowScanner) (*models.AdminSettings, error) {
	var s models.AdminSettings
	err := row.Scan(
		&s.ID, &s.OrganizationName, &s.AdminEmail, &s.TimeZone, &s.Language, &s.BotName,
		&s.BotModel, &s.BotTemperature, &s.SystemPrompt, &s.OpenAIAPIKey, &s.WebhookURL,
		&s.TwoFactorEnabled, &s.AutoBackupEnabled, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// settingsAssignments returns column/value pairs for the non-nil fields of p.
func settingsAssignments(p models.SettingsPatch) ([]string, []interface{}) {
	var cols []string
	var vals []interface{}
	add := func(col string, set bool, v interface{}) {
		if set {
			cols = append(cols, col)
			vals = append(vals, v)
		}
	}
	add("organization_name", p.OrganizationName != nil, p.OrganizationName)
	add("admin_email", p.AdminEmail != nil, p.AdminEmail)
	add("time_zone", p.TimeZone != nil, p.TimeZone)
	add("language", p.Language != nil, p.Language)
	add("bot_name", p.BotName != nil, p.BotName)
	add("bot_model", p.BotModel != nil, p.BotModel)
	add("bot_temperature", p.BotTemperature != nil, p.BotTemperature)
	add("system_prompt", p.SystemPrompt != nil, p.SystemPrompt)
	add("openai_api_key", p.OpenAIAPIKey != nil, p.OpenAIAPIKey)
	add("webhook_url", p.WebhookURL != nil, p.WebhookURL)
	add("two_factor_enabled", p.TwoFactorEnabled != nil, p.TwoFactorEnabled)
	return cols, vals
}

// GetSettings returns the settings row. The table is expected to hold a
// single row; if several exist the oldest wins.
func (db *DB) GetSettings(ctx context.Context) (*models.AdminSettings, error) {
	ctx, span := tracer.Start(ctx, "db.get_settings")
	defer span.End()

	query := `SELECT ` + settingsColumns + ` FROM admin_settings ORDER BY updated_at ASC NULLS FIRST, id LIMIT 1`
	s, err := scanSettings(db.conn.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return s, nil
}

// InsertSettings creates the settings row from the non-nil fields of p
func (db *DB) InsertSettings(ctx context.Context, p models.SettingsPatch) (*models.AdminSettings, error) {
	ctx, span := tracer.Start(ctx, "db.insert_settings")
	defer span.End()

	cols, vals := settingsAssignments(p)
	cols = append(cols, "updated_at")
	pb := newParamBuilder()
	placeholders := make([]string, 0, len(cols))
	for _, v := range vals {
		placeholders = append(placeholders, pb.add(v))
	}
	placeholders = append(placeholders, "NOW()")

	query := fmt.Sprintf(`INSERT INTO admin_settings (%s) VALUES (%s) RETURNING %s`,
		strings.Join(cols, ", "), strings.Join(placeholders, ", "), settingsColumns)

	s, err := scanSettings(db.conn.QueryRowContext(ctx, query, pb.args...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to insert settings: %w", err)
	}
	span.SetAttributes(attribute.String("settings.id", s.ID))
	return s, nil
}

// UpdateSettings writes the non-nil fields of p to the row with the given id
func (db *DB) UpdateSettings(ctx context.Context, id string, p models.SettingsPatch) error {
	ctx, span := tracer.Start(ctx, "db.update_settings",
		trace.WithAttributes(attribute.String("settings.id", id)))
	defer span.End()

	cols, vals := settingsAssignments(p)
	pb := newParamBuilder()
	sets := make([]string, 0, len(cols)+1)
	for i, col := range cols {
		sets = append(sets, col+" = "+pb.add(vals[i]))
	}
	sets = append(sets, "updated_at = NOW()")
	query := `UPDATE admin_settings SET ` + strings.Join(sets, ", ") + ` WHERE id = ` + pb.add(id)

	return db.execSettingsUpdate(ctx, span, query, pb.args)
}

// SetAutoBackup persists the auto-backup flag on the row with the given id
func (db *DB) SetAutoBackup(ctx context.Context, id string, enabled bool) error {
	ctx, span := tracer.Start(ctx, "db.set_auto_backup",
		trace.WithAttributes(
			attribute.String("settings.id", id),
			attribute.Bool("settings.auto_backup", enabled),
		))
	defer span.End()

	query := `UPDATE admin_settings SET auto_backup_enabled = $1, updated_at = NOW() WHERE id = $2`
	return db.execSettingsUpdate(ctx, span, query, []interface{}{enabled, id})
}

func (db *DB) execSettingsUpdate(ctx context.Context, span trace.Span, query string, args []interface{}) error {
	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update settings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSettingsNotFound
	}
	return nil
}
