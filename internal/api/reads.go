package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MJServices/neural-admin-panel/internal/dashboard"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.dash.DashboardStats(r.Context()))
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.dash.RecentActivities(r.Context(), limit))
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.dash.Conversations(r.Context(), limit, r.URL.Query().Get("query")))
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.dash.Messages(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to load messages")
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := s.dash.Users(r.Context(), dashboard.UserListParams{
		Limit:  limit,
		Offset: offset,
		Query:  r.URL.Query().Get("query"),
	})
	if err != nil {
		respondServiceError(w, r, err, "Failed to load users")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.dash.UserPageStats(r.Context()))
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	window, err := dashboard.ParsePerformanceRange(r.URL.Query().Get("range"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to load performance data")
		return
	}
	respondJSON(w, http.StatusOK, s.dash.PerformanceData(r.Context(), window))
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.dash.AnalyticsData(r.Context()))
}

func (s *Server) handleUsageTrends(w http.ResponseWriter, r *http.Request) {
	window, err := dashboard.ParseUsagePeriod(r.URL.Query().Get("period"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to load usage trends")
		return
	}
	respondJSON(w, http.StatusOK, s.dash.UsageTrends(r.Context(), window))
}

func (s *Server) handleKnowledgeBaseStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.dash.KnowledgeBaseStats(r.Context()))
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	articles, err := s.dash.Articles(r.Context(), dashboard.ArticleListParams{
		Query:    q.Get("query"),
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Sort:     q.Get("sort"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondServiceError(w, r, err, "Failed to load articles")
		return
	}
	respondJSON(w, http.StatusOK, articles)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.dash.Categories(r.Context()))
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.dash.Settings(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to load settings")
		return
	}
	respondJSON(w, http.StatusOK, settings)
}
