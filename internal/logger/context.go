package logger

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey struct{}

// Middleware creates a request-scoped logger with req_id, method and path
// and stores it in context.
// Must be placed after chi's RequestID middleware.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := slog.Default().With("method", r.Method, "path", r.URL.Path)
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			l = l.With("req_id", reqID)
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, l)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Ctx retrieves the request-scoped logger from context.
// Falls back to the default logger if not found.
func Ctx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// With returns a context whose logger carries the extra fields.
func With(ctx context.Context, args ...any) context.Context {
	return context.WithValue(ctx, ctxKey{}, Ctx(ctx).With(args...))
}
