package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/MJServices/neural-admin-panel/internal/logger"
)

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	restore := logger.SetOutputForTest(&buf, slog.LevelDebug)
	defer restore()

	h := newTestHandler(t, &fakeDashboard{})

	serve(h, adminRequest(http.MethodPatch, "/api/v1/admin/articles/a-1", strings.NewReader(`{"title":"Logged title"}`)))
	if !strings.Contains(buf.String(), "Logged title") {
		t.Errorf("article body not logged at debug level:\n%s", buf.String())
	}

	buf.Reset()
	serve(h, adminRequest(http.MethodPut, "/api/v1/admin/settings", strings.NewReader(`{"openai_api_key":"sk-hidden"}`)))
	if strings.Contains(buf.String(), "sk-hidden") {
		t.Errorf("settings body was logged:\n%s", buf.String())
	}
}

func TestTruncateBody(t *testing.T) {
	long := bytes.Repeat([]byte("a"), maxDebugBodySize+10)
	got, truncated := truncateBody(long)
	if len(got) != maxDebugBodySize || !truncated {
		t.Errorf("truncateBody(long) = %d bytes, %v; want %d, true", len(got), truncated, maxDebugBodySize)
	}
	if got, truncated := truncateBody([]byte("short")); got != "short" || truncated {
		t.Errorf("truncateBody(short) = %q, %v", got, truncated)
	}
}
