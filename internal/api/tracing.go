package api

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/MJServices/neural-admin-panel/internal/admin"
	"github.com/MJServices/neural-admin-panel/internal/clientip"
)

// spanEnricher tags the request span with the authenticated admin and
// the resolved client address. Runs after admin.Middleware.
func spanEnricher(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := trace.SpanFromContext(r.Context())
		if name, ok := admin.NameFromContext(r.Context()); ok {
			span.SetAttributes(attribute.String("admin.name", name))
		}
		if ip := clientip.FromRequest(r).Primary; ip != "" {
			span.SetAttributes(attribute.String("client.address", ip))
		}
		next.ServeHTTP(w, r)
	})
}
