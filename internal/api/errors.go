package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MJServices/neural-admin-panel/internal/dashboard"
	"github.com/MJServices/neural-admin-panel/internal/db"
	"github.com/MJServices/neural-admin-panel/internal/logger"
	"github.com/MJServices/neural-admin-panel/internal/storage"
)

// statusFor maps a service error to the status and message shown to the
// client. Unrecognized errors become a 500 with the generic message.
func statusFor(err error, generic string) (int, string) {
	switch {
	case errors.Is(err, dashboard.ErrInvalidInput),
		errors.Is(err, dashboard.ErrInvalidRange),
		errors.Is(err, dashboard.ErrInvalidPeriod):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, db.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, db.ErrArticleNotFound):
		return http.StatusNotFound, "Article not found"
	case errors.Is(err, storage.ErrObjectNotFound):
		return http.StatusNotFound, "Backup not found"
	case errors.Is(err, dashboard.ErrStorageDisabled):
		return http.StatusServiceUnavailable, err.Error()
	}
	return http.StatusInternalServerError, generic
}

// respondServiceError writes the error response for a failed read.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, generic string) {
	status, msg := statusFor(err, generic)
	if status == http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error(generic, "error", err)
	}
	respondError(w, status, msg)
}

// respondResult writes the dashboard.Result of a write.
func respondResult(w http.ResponseWriter, r *http.Request, err error, generic string) {
	if err == nil {
		respondJSON(w, http.StatusOK, dashboard.Result{Success: true})
		return
	}
	status, msg := statusFor(err, generic)
	if status == http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error(generic, "error", err)
	}
	respondJSON(w, status, dashboard.Result{Success: false, Error: msg})
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}
