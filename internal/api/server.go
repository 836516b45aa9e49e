// Package api serves the admin dashboard over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"filippo.io/csrf"
	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MJServices/neural-admin-panel/internal/admin"
	"github.com/MJServices/neural-admin-panel/internal/analytics"
	"github.com/MJServices/neural-admin-panel/internal/clientip"
	"github.com/MJServices/neural-admin-panel/internal/dashboard"
	"github.com/MJServices/neural-admin-panel/internal/logger"
	"github.com/MJServices/neural-admin-panel/internal/models"
	"github.com/MJServices/neural-admin-panel/internal/ratelimit"
	"github.com/MJServices/neural-admin-panel/internal/storage"
)

// maxBodyBytes caps decoded request bodies
const maxBodyBytes = 1 << 20

// Dashboard is the admin dashboard the handlers serve.
// *dashboard.Service implements it.
type Dashboard interface {
	DashboardStats(ctx context.Context) dashboard.Stats
	RecentActivities(ctx context.Context, limit int) []dashboard.Activity
	Conversations(ctx context.Context, limit int, query string) []dashboard.Conversation
	Messages(ctx context.Context, userID string) ([]models.Message, error)
	Users(ctx context.Context, p dashboard.UserListParams) (dashboard.UsersPage, error)
	UserPageStats(ctx context.Context) dashboard.UserPageStats
	PerformanceData(ctx context.Context, window analytics.Window) []analytics.Point
	UsageTrends(ctx context.Context, window analytics.Window) []analytics.Point
	AnalyticsData(ctx context.Context) dashboard.AnalyticsData
	KnowledgeBaseStats(ctx context.Context) dashboard.KnowledgeBaseStats
	Articles(ctx context.Context, p dashboard.ArticleListParams) (dashboard.ArticlesPage, error)
	Categories(ctx context.Context) []dashboard.Category
	Settings(ctx context.Context) (*models.AdminSettings, error)

	DeleteUser(ctx context.Context, id string) error
	DeleteArticle(ctx context.Context, id string) error
	UpdateArticle(ctx context.Context, id string, u dashboard.ArticleUpdate) error
	UpdateSettings(ctx context.Context, u dashboard.SettingsUpdate) error
	ResetSettings(ctx context.Context) error
	ToggleAutoBackup(ctx context.Context, enabled bool) error

	ExportAllData(ctx context.Context) ([]byte, error)
	CreateBackup(ctx context.Context) (storage.SnapshotInfo, error)
	Backups(ctx context.Context) ([]storage.SnapshotInfo, error)
	DownloadBackup(ctx context.Context, key string) ([]byte, error)
}

var _ Dashboard = (*dashboard.Service)(nil)

// Pinger reports database reachability for /health
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the HTTP-facing settings of the server
type Config struct {
	AllowedOrigins    []string
	Tokens            admin.Tokens
	Limiter           ratelimit.Limiter
	TrustProxyHeaders bool
	Version           string
}

// Server holds dependencies for API handlers
type Server struct {
	dash    Dashboard
	db      Pinger
	cfg     Config
	origins *csrf.Protection
}

// NewServer creates a new API server. db may be nil, in which case
// /health does not check the database.
func NewServer(dash Dashboard, db Pinger, cfg Config) (*Server, error) {
	origins := csrf.New()
	for _, origin := range cfg.AllowedOrigins {
		if err := origins.AddTrustedOrigin(origin); err != nil {
			return nil, fmt.Errorf("invalid allowed origin %q: %w", origin, err)
		}
	}
	return &Server{dash: dash, db: db, cfg: cfg, origins: origins}, nil
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(clientip.Middleware(s.cfg.TrustProxyHeaders))
	r.Use(logger.Middleware)
	r.Use(requestMetrics)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Content-Encoding"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	compressor := middleware.NewCompressor(5, "application/json")
	compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	r.Use(compressor.Handler)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/admin", func(r chi.Router) {
		if s.cfg.Limiter != nil {
			r.Use(ratelimit.Middleware(s.cfg.Limiter))
		}
		r.Use(admin.Middleware(s.cfg.Tokens))
		r.Use(spanEnricher)
		r.Use(s.origins.Handler)
		r.Use(decompressMiddleware())
		r.Use(middleware.RequestSize(maxBodyBytes))
		r.Use(validateContentType)
		r.Use(debugLoggingMiddleware())

		r.Get("/stats", s.handleStats)
		r.Get("/activities", s.handleActivities)
		r.Get("/conversations", s.handleConversations)
		r.Get("/conversations/{userId}/messages", s.handleMessages)

		r.Get("/users", s.handleUsers)
		r.Get("/users/stats", s.handleUserStats)
		r.Delete("/users/{id}", s.handleDeleteUser)

		r.Get("/performance", s.handlePerformance)
		r.Get("/analytics", s.handleAnalytics)
		r.Get("/analytics/usage-trends", s.handleUsageTrends)

		r.Get("/knowledge-base/stats", s.handleKnowledgeBaseStats)
		r.Get("/articles", s.handleArticles)
		r.Get("/articles/categories", s.handleCategories)
		r.Patch("/articles/{id}", s.handleUpdateArticle)
		r.Delete("/articles/{id}", s.handleDeleteArticle)

		r.Get("/settings", s.handleSettings)
		r.Put("/settings", s.handleUpdateSettings)
		r.Post("/settings/reset", s.handleResetSettings)
		r.Put("/settings/auto-backup", s.handleToggleAutoBackup)

		r.Get("/export", s.handleExport)
		r.Post("/backups", s.handleCreateBackup)
		r.Get("/backups", s.handleListBackups)
		r.Get("/backups/download", s.handleDownloadBackup)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			logger.Ctx(r.Context()).Error("health check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.cfg.Version,
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
