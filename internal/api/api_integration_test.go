package api_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/MJServices/neural-admin-panel/internal/dashboard"
	"github.com/MJServices/neural-admin-panel/internal/models"
	"github.com/MJServices/neural-admin-panel/internal/storage"
	"github.com/MJServices/neural-admin-panel/internal/testutil"
)

func TestAdminAPI_Integration(t *testing.T) {
	env := testutil.SetupTestEnvironment(t)
	ts := testutil.StartTestServer(t, env)
	client := testutil.NewTestClient(t, ts)

	t.Run("rejects missing token", func(t *testing.T) {
		resp, err := client.WithToken("").Get("/api/v1/admin/stats")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		testutil.RequireStatus(t, resp, http.StatusUnauthorized)
		resp.Body.Close()
	})

	t.Run("stats and conversations", func(t *testing.T) {
		env.CleanDB(t)
		now := time.Now().UTC()
		user := env.CreateProfile(t, testutil.ProfileFixture{Name: "Alice", LastActiveAt: &now})
		env.CreateMessage(t, user, models.RoleUser, "Hi there", now.Add(-2*time.Minute))
		env.CreateMessage(t, user, models.RoleAssistant, "Hello!", now.Add(-time.Minute))

		resp, err := client.Get("/api/v1/admin/stats")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		testutil.RequireStatus(t, resp, http.StatusOK)
		var stats dashboard.Stats
		testutil.ParseJSON(t, resp, &stats)
		want := dashboard.Stats{TotalUsers: 1, TotalMessages: 2, NewUsers: 1, ActiveUsers: 1, ResponseRate: 100}
		if stats != want {
			t.Errorf("stats = %+v, want %+v", stats, want)
		}

		resp, err = client.Get("/api/v1/admin/conversations")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		testutil.RequireStatus(t, resp, http.StatusOK)
		var convs []dashboard.Conversation
		testutil.ParseJSON(t, resp, &convs)
		if len(convs) != 1 || convs[0].User != "Alice" || convs[0].Message != "Hello!" {
			t.Errorf("conversations = %+v, want Alice's latest message", convs)
		}
	})

	t.Run("oversized limits are capped", func(t *testing.T) {
		for _, path := range []string{
			"/api/v1/admin/activities?limit=17179869184",
			"/api/v1/admin/conversations?limit=9223372036854775807",
		} {
			resp, err := client.Get(path)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			testutil.RequireStatus(t, resp, http.StatusOK)
			var rows []json.RawMessage
			testutil.ParseJSON(t, resp, &rows)
			if len(rows) > dashboard.MaxPageSize {
				t.Errorf("%s returned %d rows, want at most %d", path, len(rows), dashboard.MaxPageSize)
			}
		}
	})

	t.Run("settings round trip", func(t *testing.T) {
		env.CleanDB(t)

		resp, err := client.Put("/api/v1/admin/settings", map[string]interface{}{
			"organization_name": "Acme",
			"admin_email":       "Ops@ACME.io",
		})
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		testutil.RequireStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		resp, err = client.Get("/api/v1/admin/settings")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		var settings models.AdminSettings
		testutil.ParseJSON(t, resp, &settings)
		if settings.OrganizationName == nil || *settings.OrganizationName != "Acme" {
			t.Errorf("organization_name = %v, want Acme", settings.OrganizationName)
		}
		if settings.AdminEmail == nil || *settings.AdminEmail != "Ops@acme.io" {
			t.Errorf("admin_email = %v, want Ops@acme.io", settings.AdminEmail)
		}

		resp, err = client.Put("/api/v1/admin/settings", map[string]interface{}{"bot_temperature": 3})
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		testutil.RequireStatus(t, resp, http.StatusBadRequest)
		resp.Body.Close()
	})

	t.Run("backup round trip", func(t *testing.T) {
		env.CleanDB(t)
		env.CreateProfile(t, testutil.ProfileFixture{Name: "Backed Up"})

		resp, err := client.Post("/api/v1/admin/backups", nil)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		testutil.RequireStatus(t, resp, http.StatusCreated)
		var info storage.SnapshotInfo
		testutil.ParseJSON(t, resp, &info)

		resp, err = client.Get("/api/v1/admin/backups")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		var list []storage.SnapshotInfo
		testutil.ParseJSON(t, resp, &list)
		if len(list) == 0 || list[0].Key != info.Key {
			t.Fatalf("backups = %+v, want newest %s", list, info.Key)
		}

		resp, err = client.Get("/api/v1/admin/backups/download?key=" + url.QueryEscape(info.Key))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		testutil.RequireStatus(t, resp, http.StatusOK)
		var doc dashboard.ExportDocument
		testutil.ParseJSON(t, resp, &doc)
		if len(doc.Profiles) != 1 || *doc.Profiles[0].FullName != "Backed Up" {
			t.Errorf("backup profiles = %+v", doc.Profiles)
		}

		resp, err = client.Get("/api/v1/admin/backups/download?key=exports/missing.json.zst")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		testutil.RequireStatus(t, resp, http.StatusNotFound)
		resp.Body.Close()
	})

	t.Run("export", func(t *testing.T) {
		resp, err := client.Get("/api/v1/admin/export")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		testutil.RequireStatus(t, resp, http.StatusOK)
		var doc map[string]json.RawMessage
		testutil.ParseJSON(t, resp, &doc)
		for _, key := range []string{"users", "profiles", "messages", "timestamp"} {
			if _, ok := doc[key]; !ok {
				t.Errorf("export missing %q", key)
			}
		}
	})
}
