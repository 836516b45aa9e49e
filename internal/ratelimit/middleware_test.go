package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/MJServices/neural-admin-panel/internal/clientip"
	"github.com/MJServices/neural-admin-panel/internal/metrics"
)

type keyRecorder struct {
	allow bool
	keys  []string
}

func (k *keyRecorder) Allow(_ context.Context, key string) bool {
	k.keys = append(k.keys, key)
	return k.allow
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		allow      bool
		wantStatus int
	}{
		{"allowed", true, http.StatusOK},
		{"rejected", false, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := &keyRecorder{allow: tt.allow}
			before := testutil.ToFloat64(metrics.RateLimitRejections)

			h := clientip.Middleware(true)(Middleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			req.Header.Set("Fly-Client-IP", "203.0.113.9")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if len(limiter.keys) != 1 || limiter.keys[0] != "10.0.0.1|203.0.113.9" {
				t.Errorf("limiter keys = %v, want [10.0.0.1|203.0.113.9]", limiter.keys)
			}

			rejected := testutil.ToFloat64(metrics.RateLimitRejections) - before
			if tt.allow && rejected != 0 {
				t.Errorf("rejections increased by %v for allowed request", rejected)
			}
			if !tt.allow {
				if rejected != 1 {
					t.Errorf("rejections increased by %v, want 1", rejected)
				}
				if got := rec.Header().Get("Retry-After"); got != "1" {
					t.Errorf("Retry-After = %q, want 1", got)
				}
			}
		})
	}
}
