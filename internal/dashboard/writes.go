package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MJServices/neural-admin-panel/internal/db"
	"github.com/MJServices/neural-admin-panel/internal/logger"
	"github.com/MJServices/neural-admin-panel/internal/metrics"
	"github.com/MJServices/neural-admin-panel/internal/models"
	"github.com/MJServices/neural-admin-panel/internal/storage"
)

// exportTimestampLayout matches JavaScript's Date.toISOString.
const exportTimestampLayout = "2006-01-02T15:04:05.000Z"

// DeleteUser removes a user's profile. Returns db.ErrUserNotFound if there
// is none.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := validateID("user id", id); err != nil {
		return err
	}
	return s.store.DeleteProfile(ctx, id)
}

// DeleteArticle removes an article. Returns db.ErrArticleNotFound if there
// is none.
func (s *Service) DeleteArticle(ctx context.Context, id string) error {
	if err := validateID("article id", id); err != nil {
		return err
	}
	return s.store.DeleteArticle(ctx, id)
}

// UpdateArticle applies u to an article and bumps its updated_at.
func (s *Service) UpdateArticle(ctx context.Context, id string, u ArticleUpdate) error {
	if err := validateID("article id", id); err != nil {
		return err
	}
	if err := validate(u); err != nil {
		return err
	}
	return s.store.UpdateArticle(ctx, id, u.patch())
}

// Settings returns the organization settings, creating the default row on
// first use. If the row cannot be created the defaults are returned
// unsaved, with ID "default".
func (s *Service) Settings(ctx context.Context) (*models.AdminSettings, error) {
	settings, err := s.store.GetSettings(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, db.ErrSettingsNotFound) {
		return nil, err
	}

	settings, err = s.store.InsertSettings(ctx, defaultSettings())
	if err != nil {
		logger.Ctx(ctx).Error("failed to create default settings", "error", err)
		return fallbackSettings(), nil
	}
	return settings, nil
}

// writeSettings updates the settings row, or creates it from p when none
// exists yet.
func (s *Service) writeSettings(ctx context.Context, p models.SettingsPatch) error {
	current, err := s.store.GetSettings(ctx)
	switch {
	case errors.Is(err, db.ErrSettingsNotFound):
		_, err = s.store.InsertSettings(ctx, p)
		return err
	case err != nil:
		return err
	}
	return s.store.UpdateSettings(ctx, current.ID, p)
}

// UpdateSettings saves the non-nil fields of u.
func (s *Service) UpdateSettings(ctx context.Context, u SettingsUpdate) error {
	if err := validate(u); err != nil {
		return err
	}
	return s.writeSettings(ctx, u.patch())
}

// ResetSettings restores the organization name, admin email, time zone and
// language to their defaults.
func (s *Service) ResetSettings(ctx context.Context) error {
	return s.writeSettings(ctx, resetSettings())
}

// ToggleAutoBackup persists the auto-backup preference. Nothing schedules
// backups; the flag is read by whoever runs them.
func (s *Service) ToggleAutoBackup(ctx context.Context, enabled bool) error {
	current, err := s.store.GetSettings(ctx)
	if errors.Is(err, db.ErrSettingsNotFound) {
		current, err = s.store.InsertSettings(ctx, defaultSettings())
	}
	if err != nil {
		return err
	}
	return s.store.SetAutoBackup(ctx, current.ID, enabled)
}

// exportDocument gathers every user, profile and message. A table that
// cannot be read is exported empty.
func (s *Service) exportDocument(ctx context.Context) ExportDocument {
	doc := ExportDocument{
		Users:     []models.User{},
		Profiles:  []models.Profile{},
		Messages:  []models.Message{},
		Timestamp: s.now().UTC().Format(exportTimestampLayout),
	}

	sec := newSections(ctx, "export")
	sec.run("users", func(ctx context.Context) error {
		users, err := s.store.ListUsers(ctx)
		if err == nil {
			doc.Users = users
		}
		return err
	})
	sec.run("profiles", func(ctx context.Context) error {
		profiles, _, err := s.store.ListProfiles(ctx, db.ProfileQuery{})
		if err == nil {
			doc.Profiles = profiles
		}
		return err
	})
	sec.run("messages", func(ctx context.Context) error {
		messages, err := s.store.ListMessages(ctx, db.MessageQuery{})
		if err == nil {
			doc.Messages = messages
		}
		return err
	})
	sec.wait()
	return doc
}

// ExportAllData renders the full export as indented JSON.
func (s *Service) ExportAllData(ctx context.Context) ([]byte, error) {
	out, err := json.MarshalIndent(s.exportDocument(ctx), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return out, nil
}

// BackupsEnabled reports whether snapshot storage is configured.
func (s *Service) BackupsEnabled() bool {
	return s.snapshots != nil
}

// CreateBackup stores the current export as a snapshot.
func (s *Service) CreateBackup(ctx context.Context) (storage.SnapshotInfo, error) {
	if s.snapshots == nil {
		return storage.SnapshotInfo{}, ErrStorageDisabled
	}
	doc, err := s.ExportAllData(ctx)
	if err != nil {
		return storage.SnapshotInfo{}, err
	}
	info, err := s.snapshots.Save(ctx, doc, s.now())
	if err != nil {
		return storage.SnapshotInfo{}, fmt.Errorf("failed to save backup: %w", err)
	}
	metrics.SnapshotBytes.Observe(float64(info.Size))
	logger.Ctx(ctx).Info("backup created", "key", info.Key, "bytes", info.Size)

	// The new backup is already stored, so a failed prune only leaves
	// extra snapshots behind.
	if removed, err := s.snapshots.Prune(ctx, s.retention); err != nil {
		logger.Ctx(ctx).Warn("failed to prune old backups", "error", err, "removed", removed)
	} else if removed > 0 {
		logger.Ctx(ctx).Info("pruned old backups", "removed", removed, "retention", s.retention)
	}
	return info, nil
}

// Backups lists stored snapshots, newest first.
func (s *Service) Backups(ctx context.Context) ([]storage.SnapshotInfo, error) {
	if s.snapshots == nil {
		return nil, ErrStorageDisabled
	}
	return s.snapshots.List(ctx)
}

// DownloadBackup returns the JSON document stored under key.
func (s *Service) DownloadBackup(ctx context.Context, key string) ([]byte, error) {
	if s.snapshots == nil {
		return nil, ErrStorageDisabled
	}
	return s.snapshots.Load(ctx, key)
}
