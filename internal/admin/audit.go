package admin

import (
	"context"

	"github.com/MJServices/neural-admin-panel/internal/clientip"
	"github.com/MJServices/neural-admin-panel/internal/logger"
	"github.com/MJServices/neural-admin-panel/internal/metrics"
)

// AdminAction represents the type of admin action performed
type AdminAction string

const (
	ActionUserDelete       AdminAction = "user.delete"
	ActionArticleUpdate    AdminAction = "article.update"
	ActionArticleDelete    AdminAction = "article.delete"
	ActionSettingsUpdate   AdminAction = "settings.update"
	ActionSettingsReset    AdminAction = "settings.reset"
	ActionAutoBackupToggle AdminAction = "settings.auto_backup"
	ActionDataExport       AdminAction = "data.export"
	ActionBackupCreate     AdminAction = "backup.create"
	ActionBackupDownload   AdminAction = "backup.download"
)

// AuditLog records an admin action and its outcome. Every admin write and
// every data export goes through it.
func AuditLog(ctx context.Context, action AdminAction, err error, details map[string]interface{}) {
	metrics.RecordAdminAction(string(action), err)

	adminName, ok := NameFromContext(ctx)
	if !ok {
		adminName = "unknown"
	}

	logArgs := []interface{}{
		"audit", true, // marker for filtering audit logs
		"action", string(action),
		"admin", adminName,
		"client_ip", clientip.FromContext(ctx).Primary,
		"success", err == nil,
	}
	if err != nil {
		logArgs = append(logArgs, "error", err.Error())
	}
	for k, v := range details {
		logArgs = append(logArgs, k, v)
	}

	log := logger.Ctx(ctx)
	if err != nil {
		log.Warn("ADMIN_AUDIT", logArgs...)
		return
	}
	log.Info("ADMIN_AUDIT", logArgs...)
}
