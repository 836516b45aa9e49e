package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MJServices/neural-admin-panel/internal/admin"
	"github.com/MJServices/neural-admin-panel/internal/dashboard"
)

// decodeBody decodes the JSON request body into v, writing the failure
// response itself. It reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondJSON(w, http.StatusRequestEntityTooLarge, dashboard.Result{Error: "Request body too large"})
			return false
		}
		respondJSON(w, http.StatusBadRequest, dashboard.Result{Error: "Invalid request body"})
		return false
	}
	return true
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.dash.DeleteUser(r.Context(), id)
	admin.AuditLog(r.Context(), admin.ActionUserDelete, err, map[string]interface{}{"user_id": id})
	respondResult(w, r, err, "Failed to delete user")
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.dash.DeleteArticle(r.Context(), id)
	admin.AuditLog(r.Context(), admin.ActionArticleDelete, err, map[string]interface{}{"article_id": id})
	respondResult(w, r, err, "Failed to delete article")
}

func (s *Server) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var update dashboard.ArticleUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	err := s.dash.UpdateArticle(r.Context(), id, update)
	admin.AuditLog(r.Context(), admin.ActionArticleUpdate, err, map[string]interface{}{
		"article_id": id,
		"fields":     articleFields(update),
	})
	respondResult(w, r, err, "Failed to update article")
}

// articleFields names the fields present in an article update.
func articleFields(u dashboard.ArticleUpdate) []string {
	var fields []string
	if u.Title != nil {
		fields = append(fields, "title")
	}
	if u.Description != nil {
		fields = append(fields, "description")
	}
	if u.Category != nil {
		fields = append(fields, "category")
	}
	if u.Status != nil {
		fields = append(fields, "status")
	}
	return fields
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var update dashboard.SettingsUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	err := s.dash.UpdateSettings(r.Context(), update)
	// The API key itself never reaches the audit log.
	admin.AuditLog(r.Context(), admin.ActionSettingsUpdate, err, map[string]interface{}{
		"openai_api_key_changed": update.OpenAIAPIKey != nil,
	})
	respondResult(w, r, err, "Failed to update settings")
}

func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	err := s.dash.ResetSettings(r.Context())
	admin.AuditLog(r.Context(), admin.ActionSettingsReset, err, nil)
	respondResult(w, r, err, "Failed to reset settings")
}

type autoBackupRequest struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) handleToggleAutoBackup(w http.ResponseWriter, r *http.Request) {
	var req autoBackupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		respondJSON(w, http.StatusBadRequest, dashboard.Result{Error: "enabled is required"})
		return
	}

	err := s.dash.ToggleAutoBackup(r.Context(), *req.Enabled)
	admin.AuditLog(r.Context(), admin.ActionAutoBackupToggle, err, map[string]interface{}{"enabled": *req.Enabled})
	respondResult(w, r, err, "Failed to update auto backup")
}
