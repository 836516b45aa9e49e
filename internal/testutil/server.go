package testutil

import (
	"net/http/httptest"
	"testing"

	"github.com/MJServices/neural-admin-panel/internal/admin"
	"github.com/MJServices/neural-admin-panel/internal/api"
	"github.com/MJServices/neural-admin-panel/internal/dashboard"
	"github.com/MJServices/neural-admin-panel/internal/storage"
)

// AdminToken is the bearer token accepted by servers from StartTestServer
const AdminToken = "integration-admin-token-0001"

// TestServer is the full admin API backed by the test environment
type TestServer struct {
	*httptest.Server
	Env     *TestEnvironment
	Service *dashboard.Service
}

// StartTestServer serves the admin API over the environment's database
// and object storage. The server is closed when the test ends.
func StartTestServer(t *testing.T, env *TestEnvironment) *TestServer {
	t.Helper()

	svc := dashboard.NewService(env.DB, dashboard.Config{
		Snapshots: storage.NewSnapshots(env.Storage),
	})
	tokens, err := admin.ParseTokens("integration:" + AdminToken)
	if err != nil {
		t.Fatalf("failed to parse admin token: %v", err)
	}
	srv, err := api.NewServer(svc, env.DB, api.Config{Tokens: tokens, Version: "test"})
	if err != nil {
		t.Fatalf("failed to create API server: %v", err)
	}

	ts := httptest.NewServer(srv.SetupRoutes())
	t.Cleanup(ts.Close)
	return &TestServer{Server: ts, Env: env, Service: svc}
}
