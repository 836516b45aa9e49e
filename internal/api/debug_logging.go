package api

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/MJServices/neural-admin-panel/internal/logger"
)

// maxDebugBodySize truncates logged bodies
const maxDebugBodySize = 8 * 1024

// debugLoggingMiddleware logs request and response bodies at debug level.
// Settings bodies carry credentials and are never logged. Must run after
// decompressMiddleware.
func debugLoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !logger.IsDebug() || strings.Contains(r.URL.Path, "/settings") {
				next.ServeHTTP(w, r)
				return
			}
			log := logger.Ctx(r.Context())

			if r.Body != nil && r.ContentLength != 0 {
				body, _ := io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewReader(body))
				logged, truncated := truncateBody(body)
				log.Debug("request body", "body", logged, "truncated", truncated)
			}

			capture := &responseCapture{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)

			logged, truncated := truncateBody(capture.body.Bytes())
			log.Debug("response body",
				"status", capture.status,
				"body", logged,
				"truncated", truncated || capture.overflow,
			)
		})
	}
}

func truncateBody(b []byte) (string, bool) {
	if len(b) > maxDebugBodySize {
		return string(b[:maxDebugBodySize]), true
	}
	return string(b), false
}

// responseCapture keeps the first maxDebugBodySize bytes written
type responseCapture struct {
	http.ResponseWriter
	body     bytes.Buffer
	status   int
	overflow bool
}

func (w *responseCapture) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseCapture) Write(b []byte) (int, error) {
	if room := maxDebugBodySize - w.body.Len(); room > 0 {
		if len(b) > room {
			w.body.Write(b[:room])
			w.overflow = true
		} else {
			w.body.Write(b)
		}
	} else if len(b) > 0 {
		w.overflow = true
	}
	return w.ResponseWriter.Write(b)
}
