package api

import (
	"mime"
	"net/http"

	"github.com/MJServices/neural-admin-panel/internal/logger"
)

// validateContentType requires application/json on write requests that
// carry a body.
func validateContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.Ctx(r.Context())
		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			log.Info("request missing Content-Type header")
			respondError(w, http.StatusUnsupportedMediaType, "Content-Type header required")
			return
		}
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/json" {
			log.Info("request with invalid Content-Type", "content_type", contentType)
			respondError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}
