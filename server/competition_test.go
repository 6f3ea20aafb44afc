package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanhai/arena/competition"
	"github.com/nanhai/arena/internal/util"
)

func TestHandleCompetitionCurrent_CreatesOnFirstAccess(t *testing.T) {
	s := newTestServer(t)

	code, env := doRequest(t, s, http.MethodGet, "/api/competition/current", nil)
	require.Equal(t, http.StatusOK, code)

	var comp competition.Competition
	decodeData(t, env, &comp)
	require.NotZero(t, comp.ID)
	assert.Equal(t, competition.DefaultTotalCases, comp.TotalCases)
}

func TestHandleCompetitionStart(t *testing.T) {
	s := newTestServer(t)

	code, env := doRequest(t, s, http.MethodPost, "/api/competition/start", nil)
	require.Equal(t, http.StatusOK, code)

	var comp competition.Competition
	decodeData(t, env, &comp)
	require.NotNil(t, comp.StartTime)
}

func TestHandleCompetitionStats(t *testing.T) {
	s := newTestServer(t)
	u1 := seedTestUser(t, s, "a", "00000001", competition.GroupAI, "AI-1小组")
	seedTestUser(t, s, "b", "00000002", competition.GroupNonAI, "非AI-1小组")

	_, err := s.submissions.Create(u1.ID, "m", util.Ptr(20), util.Ptr(120))
	require.NoError(t, err)

	comp, err := s.comps.Current()
	require.NoError(t, err)

	code, env := doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/competition/stats/%d", comp.ID), nil)
	require.Equal(t, http.StatusOK, code)

	var stats competition.Stats
	decodeData(t, env, &stats)
	assert.Equal(t, "AI编程大赛", stats.CompetitionName)
	assert.Equal(t, "RUNNING", stats.Status)
	assert.Equal(t, 2, stats.TotalParticipants)
	assert.Equal(t, 1, stats.AITotalCount)
	// One AI member with a perfect best out of one member's 20 cases
	assert.InDelta(t, 100.0, stats.AIPassRate, 0.001)
	require.Len(t, stats.Top3Rankings, 1)
	assert.Equal(t, u1.ID, stats.Top3Rankings[0].UserID)
	assert.Len(t, stats.SubGroupStats, 6)
}

func TestHandleCompetitionStats_NotFound(t *testing.T) {
	s := newTestServer(t)

	code, _ := doRequest(t, s, http.MethodGet, "/api/competition/stats/999", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
