package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
)

const (
	userURLParam    = "user"
	countQueryParam = "count"
	maxFeatured     = 30
)

// Health reports that the server is up.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetStats is the http handler for Estimator.Stats
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userParam(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.provider.Stats(r.Context(), user))
}

// GetCommits is the http handler for Estimator.CommitBreakdown
func (s *Server) GetCommits(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userParam(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.provider.CommitBreakdown(r.Context(), user))
}

// GetFeatured is the http handler for Estimator.FeaturedRepos
func (s *Server) GetFeatured(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userParam(w, r)
	if !ok {
		return
	}

	count := 0
	if countStr := r.URL.Query().Get(countQueryParam); countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil || n <= 0 || n > maxFeatured {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "count must be between 1 and 30"})
			return
		}
		count = n
	}
	s.writeJSON(w, http.StatusOK, s.provider.FeaturedRepos(r.Context(), user, count))
}

// GetProfile is the http handler for Estimator.Profile
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userParam(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.provider.Profile(r.Context(), user))
}

// NotFoundHandler answers unknown routes.
func (s *Server) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
}

func (s *Server) userParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	user := strings.TrimSpace(chi.URLParam(r, userURLParam))
	if user == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid user"})
		return "", false
	}
	return user, true
}

// writeJSON encodes v. Estimates depend on the time of the request, so
// responses must not be cached.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed-encoding-json")
	}
}
