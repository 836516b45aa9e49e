package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/MJServices/neural-admin-panel/internal/logger"
)

type contextKey struct{}

// WithName returns ctx carrying the authenticated admin's token name.
func WithName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, contextKey{}, name)
}

// NameFromContext returns the authenticated admin's token name.
func NameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(contextKey{}).(string)
	return name, ok && name != ""
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Middleware rejects requests without a valid admin bearer token and
// records the admin's name in the request context and logger.
func Middleware(tokens Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := bearerToken(r)
			if secret == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				http.Error(w, "Not authenticated", http.StatusUnauthorized)
				return
			}
			name, ok := tokens.Match(secret)
			if !ok {
				logger.Ctx(r.Context()).Warn("rejected admin token", "path", r.URL.Path)
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin", error="invalid_token"`)
				http.Error(w, "Not authenticated", http.StatusUnauthorized)
				return
			}

			ctx := WithName(r.Context(), name)
			ctx = logger.With(ctx, "admin", name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
