package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/replaystats/internal/adapters/repository"
)

const defaultLeaderboardLimit = 10

type leaderboardResponse struct {
	Players []repository.Career `json:"players"`
}

// handleLeaderboard handles GET /leaderboard?limit=N.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	n, err := s.limit(r, defaultLeaderboardLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	careers, err := s.deps.Leaderboard(r.Context(), n)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if careers == nil {
		careers = []repository.Career{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Players: careers})
}

// handlePlayer handles GET /players/{username}.
func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Player(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
