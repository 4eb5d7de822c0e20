package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/replaystats/internal/adapters/repository"
)

type matchItem struct {
	GameID    string                           `json:"game_id"`
	Map       string                           `json:"map"`
	Mode      string                           `json:"mode"`
	Processed time.Time                        `json:"processed"`
	Players   map[string]repository.PlayerLine `json:"players"`
}

type matchesResponse struct {
	Matches []matchItem `json:"matches"`
	Count   int         `json:"count"`
}

// handleMatches handles GET /matches?limit=N.
func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	n, err := s.limit(r, defaultListLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	matches, err := s.deps.Matches(r.Context(), n)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := matchesResponse{Matches: make([]matchItem, 0, len(matches)), Count: len(matches)}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, matchItem{
			GameID:    m.GameID,
			Map:       m.Map,
			Mode:      m.Mode,
			Processed: m.Processed,
			Players:   m.Players,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleMatch handles GET /matches/{gameID} and returns the stored summary
// document untouched.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	m, err := s.deps.Match(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(m.Summary)
}
