package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/MJServices/neural-admin-panel/internal/admin"
)

// writeDocument sends a JSON export as a file download.
func writeDocument(w http.ResponseWriter, filename string, doc []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.dash.ExportAllData(r.Context())
	admin.AuditLog(r.Context(), admin.ActionDataExport, err, map[string]interface{}{"bytes": len(doc)})
	if err != nil {
		respondServiceError(w, r, err, "Failed to export data")
		return
	}
	writeDocument(w, "admin-export-"+time.Now().UTC().Format("2006-01-02")+".json", doc)
}

func (s *Server) handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	info, err := s.dash.CreateBackup(r.Context())
	admin.AuditLog(r.Context(), admin.ActionBackupCreate, err, map[string]interface{}{"key": info.Key})
	if err != nil {
		respondServiceError(w, r, err, "Failed to create backup")
		return
	}
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := s.dash.Backups(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to list backups")
		return
	}
	respondJSON(w, http.StatusOK, backups)
}

func (s *Server) handleDownloadBackup(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		respondError(w, http.StatusBadRequest, "key is required")
		return
	}

	doc, err := s.dash.DownloadBackup(r.Context(), key)
	admin.AuditLog(r.Context(), admin.ActionBackupDownload, err, map[string]interface{}{"key": key})
	if err != nil {
		respondServiceError(w, r, err, "Failed to download backup")
		return
	}
	writeDocument(w, "admin-backup.json", doc)
}
