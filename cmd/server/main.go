package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/MJServices/neural-admin-panel/internal/api"
	"github.com/MJServices/neural-admin-panel/internal/dashboard"
	"github.com/MJServices/neural-admin-panel/internal/db"
	"github.com/MJServices/neural-admin-panel/internal/logger"
	"github.com/MJServices/neural-admin-panel/internal/ratelimit"
	"github.com/MJServices/neural-admin-panel/internal/storage"
)

var version string

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env file", "error", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate()
		return
	}

	// Access via: ssh -L 6060:127.0.0.1:6060
	if os.Getenv("ENABLE_PPROF") == "true" {
		go startPprofServer()
	}

	// Configured via OTEL_SERVICE_NAME, OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_HEADERS
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry()
	if err != nil {
		logger.Warn("failed to configure OpenTelemetry", "error", err)
		// Non-fatal: continue without tracing if OTEL env vars not set
	} else {
		defer otelShutdown()
	}

	config, err := loadConfig(os.Getenv)
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStartup()

	database, err := db.ConnectWithRetry(startupCtx, config.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer database.Close()

	svcConfig := dashboard.Config{Location: config.Location}
	if config.PlaceholderData {
		svcConfig.Insights = dashboard.PlaceholderInsights{}
		logger.Info("using placeholder insight figures")
	}

	if config.S3Config != nil {
		store, err := storage.NewS3Storage(startupCtx, *config.S3Config)
		if err != nil {
			logger.Fatal("failed to initialize storage", "error", err)
		}
		svcConfig.Snapshots = storage.NewSnapshots(store)
		svcConfig.BackupRetention = config.BackupRetention
		logger.Info("export backups enabled",
			"bucket", config.S3Config.BucketName,
			"retention", config.BackupRetention,
		)
	} else {
		logger.Info("export backups disabled (S3_ENDPOINT not set)")
	}

	svc := dashboard.NewService(database, svcConfig)

	limiter := ratelimit.NewInMemoryLimiter(config.RateLimitRPS, config.RateLimitBurst)
	defer limiter.Stop()

	server, err := api.NewServer(svc, database, api.Config{
		AllowedOrigins:    config.AllowedOrigins,
		Tokens:            config.AdminTokens,
		Limiter:           limiter,
		TrustProxyHeaders: config.TrustProxyHeaders,
		Version:           version,
	})
	if err != nil {
		logger.Fatal("failed to create API server", "error", err)
	}

	handler := otelhttp.NewHandler(server.SetupRoutes(), "neural-admin")

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			"port", config.Port,
			"version", version,
			"timezone", config.Location.String(),
			"admin_tokens", config.AdminTokens.Len(),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

// runMigrate applies pending migrations and exits.
func runMigrate() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("missing required env var", "var", "DATABASE_URL")
	}
	if err := db.Migrate(databaseURL); err != nil {
		logger.Fatal("migration failed", "error", err)
	}
}

// startPprofServer starts a pprof debug server on localhost:6060. It is
// only reachable from the host itself.
func startPprofServer() {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	mux.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/debug/pprof/allocs", pprof.Handler("allocs"))

	addr := "127.0.0.1:6060"
	logger.Info("pprof debug server starting", "addr", addr)

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("pprof server failed", "error", err)
	}
}
