// Package testutil starts PostgreSQL and MinIO containers and seeds them
// for integration tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/MJServices/neural-admin-panel/internal/db"
	"github.com/MJServices/neural-admin-panel/internal/storage"
)

// TestEnvironment holds test infrastructure (PostgreSQL + MinIO containers)
type TestEnvironment struct {
	DB                *db.DB
	DSN               string
	Storage           *storage.S3Storage
	PostgresContainer *postgres.PostgresContainer
	MinioContainer    *minio.MinioContainer
	Ctx               context.Context
}

// SetupTestEnvironment starts PostgreSQL and MinIO, applies migrations and
// creates the test bucket. Containers are terminated when the test ends.
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	t.Log("Starting PostgreSQL container...")
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("admin_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	env := &TestEnvironment{PostgresContainer: postgresContainer, Ctx: ctx}
	t.Cleanup(func() { env.Cleanup(t) })

	env.DSN, err = postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get postgres connection string: %v", err)
	}
	if err := db.Migrate(env.DSN); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	env.DB, err = db.Connect(env.DSN)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	t.Log("Starting MinIO container...")
	env.MinioContainer, err = minio.Run(ctx,
		"minio/minio:latest",
		minio.WithUsername("minioadmin"),
		minio.WithPassword("minioadmin"),
	)
	if err != nil {
		t.Fatalf("Failed to start minio container: %v", err)
	}
	endpoint, err := env.MinioContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get minio endpoint: %v", err)
	}

	// MinIO accepts connections before it serves bucket requests.
	const maxRetries = 10
	for i := 0; i < maxRetries; i++ {
		env.Storage, err = storage.NewS3Storage(ctx, storage.S3Config{
			Endpoint:        endpoint,
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			BucketName:      "admin-test",
			CreateBucket:    true,
		})
		if err == nil {
			break
		}
		t.Logf("MinIO not ready yet, retrying... (%d/%d)", i+1, maxRetries)
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("Failed to create S3 storage after %d retries: %v", maxRetries, err)
	}

	return env
}

// Cleanup stops containers and closes connections
func (e *TestEnvironment) Cleanup(t *testing.T) {
	t.Helper()

	if e.DB != nil {
		if err := e.DB.Close(); err != nil {
			t.Logf("Warning: failed to close database: %v", err)
		}
	}
	if e.PostgresContainer != nil {
		if err := e.PostgresContainer.Terminate(e.Ctx); err != nil {
			t.Logf("Warning: failed to terminate postgres container: %v", err)
		}
	}
	if e.MinioContainer != nil {
		if err := e.MinioContainer.Terminate(e.Ctx); err != nil {
			t.Logf("Warning: failed to terminate minio container: %v", err)
		}
	}
}

// CleanDB truncates every dashboard table
func (e *TestEnvironment) CleanDB(t *testing.T) {
	t.Helper()
	_, err := e.DB.Exec(e.Ctx, `TRUNCATE TABLE messages, xp_logs, blog_posts, admin_settings, profiles, users`)
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}
