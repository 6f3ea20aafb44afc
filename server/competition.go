package server

import (
	"net/http"
	"strings"
)

// HandleCompetitionStart stamps the competition start time (POST)
func (s *ArenaServer) HandleCompetitionStart(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	comp, err := s.comps.Start()
	if err != nil {
		writeFailure(w, s.logger, err)
		return
	}
	s.logger.Infow("Competition started", "competition_id", comp.ID)
	writeSuccess(w, comp)
}

// HandleCompetitionCurrent returns the current competition row, creating
// it on first access (GET).
func (s *ArenaServer) HandleCompetitionCurrent(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	comp, err := s.comps.Current()
	if err != nil {
		writeFailure(w, s.logger, err)
		return
	}
	writeSuccess(w, comp)
}

// HandleCompetitionStats returns the dashboard stats payload for one
// competition (GET /api/competition/stats/{id}).
func (s *ArenaServer) HandleCompetitionStats(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	id, ok := parseID(w, s, strings.TrimPrefix(r.URL.Path, "/api/competition/stats/"))
	if !ok {
		return
	}

	stats, err := s.stats.Stats(id)
	if err != nil {
		writeFailure(w, s.logger, err)
		return
	}
	writeSuccess(w, stats)
}
