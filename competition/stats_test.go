package competition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanhai/arena/errors"
	arenatest "github.com/nanhai/arena/internal/testing"
	"github.com/nanhai/arena/internal/util"
)

func TestCompetitionStore_Current(t *testing.T) {
	store := NewCompetitionStore(arenatest.CreateTestDB(t))

	comp, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, DefaultTotalCases, comp.TotalCases, "lazily created row carries the default case count")

	again, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, comp.ID, again.ID, "second call reuses the same row")
}

func TestCompetitionStore_Start(t *testing.T) {
	store := NewCompetitionStore(arenatest.CreateTestDB(t))

	comp, err := store.Start()
	require.NoError(t, err)
	require.NotNil(t, comp.StartTime)
}

func TestCompetitionStore_GetByID_NotFound(t *testing.T) {
	store := NewCompetitionStore(arenatest.CreateTestDB(t))

	_, err := store.GetByID(42)
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name     string
		seconds  *float64
		expected string
	}{
		{"nil", nil, "0:00"},
		{"zero", util.Ptr(0.0), "0:00"},
		{"under a minute", util.Ptr(45.0), "0:45"},
		{"exact minutes", util.Ptr(120.0), "2:00"},
		{"minutes and seconds", util.Ptr(150.0), "2:30"},
		{"fraction truncated", util.Ptr(89.9), "1:29"},
		{"over ten minutes", util.Ptr(661.0), "11:01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTime(tt.seconds))
		})
	}
}

func TestStatsService_Stats(t *testing.T) {
	db := arenatest.CreateTestDB(t)
	users := NewUserStore(db)
	subs := NewSubmissionStore(db)
	comps := NewCompetitionStore(db)
	svc := NewStatsService(users, subs, comps, nil)

	comp, err := comps.Current()
	require.NoError(t, err)

	// Two AI members in different sub-groups, one non-AI member
	u1 := seedUser(t, db, "甲", "00000001", GroupAI, "AI-1小组")
	u2 := seedUser(t, db, "乙", "00000002", GroupAI, "AI-2小组")
	seedUser(t, db, "丙", "00000003", GroupNonAI, "非AI-1小组")

	// u1: best 20 (full pass at 120s), u2: best 10, u3: no submissions
	_, err = subs.Create(u1, "b", util.Ptr(20), util.Ptr(120))
	require.NoError(t, err)
	_, err = subs.Create(u1, "b", util.Ptr(5), util.Ptr(600))
	require.NoError(t, err)
	_, err = subs.Create(u2, "b", util.Ptr(10), util.Ptr(300))
	require.NoError(t, err)

	stats, err := svc.Stats(comp.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalParticipants)
	assert.Equal(t, 2, stats.AITotalCount)
	assert.Equal(t, 1, stats.NonAITotalCount)
	assert.Equal(t, DefaultTotalCases, stats.TotalCases)

	// Overall: (20+10) / (3*20) = 50%
	assert.InDelta(t, 50.0, stats.OverallPassRate, 0.001)
	// AI: (20+10) / (2*20) = 75%
	assert.InDelta(t, 75.0, stats.AIPassRate, 0.001)
	assert.InDelta(t, 0.0, stats.NonAIPassRate, 0.001)
	assert.Equal(t, 30, stats.AISuccessCount)

	// Only u1's full pass feeds the AI average time
	assert.Equal(t, "2:00", stats.AIAverageTime)
	assert.Equal(t, "0:00", stats.NonAIAverageTime)

	require.Len(t, stats.Top3Rankings, 1)
	assert.Equal(t, u1, stats.Top3Rankings[0].UserID)
	assert.Equal(t, "甲", stats.Top3Rankings[0].Username)
	assert.Equal(t, 1, stats.Top3Rankings[0].Rank)

	// All six fixed sub-groups are present and ranked
	require.Len(t, stats.SubGroupStats, 6)
	assert.Equal(t, "AI-1小组", stats.SubGroupStats[0].SubGroupName)
	assert.Equal(t, 1, stats.SubGroupStats[0].Rank)
	// AI-1: 20/(1*20) = 100%
	assert.InDelta(t, 100.0, stats.SubGroupStats[0].PassRate, 0.001)
	assert.Equal(t, "2:00", stats.SubGroupStats[0].AverageTime)
	// AI-2: 10/(1*20) = 50%
	assert.Equal(t, "AI-2小组", stats.SubGroupStats[1].SubGroupName)
	assert.InDelta(t, 50.0, stats.SubGroupStats[1].PassRate, 0.001)
	assert.Equal(t, noData, stats.SubGroupStats[1].AverageTime)
}

func TestStatsService_Stats_RateRounding(t *testing.T) {
	db := arenatest.CreateTestDB(t)
	users := NewUserStore(db)
	subs := NewSubmissionStore(db)
	comps := NewCompetitionStore(db)
	svc := NewStatsService(users, subs, comps, nil)

	comp, err := comps.Current()
	require.NoError(t, err)

	// 3 members, best sum 20: 20/(3*20)*100 = 33.333... -> 33.33
	u1 := seedUser(t, db, "a", "00000001", GroupAI, "AI-1小组")
	seedUser(t, db, "b", "00000002", GroupAI, "AI-1小组")
	seedUser(t, db, "c", "00000003", GroupAI, "AI-1小组")

	_, err = subs.Create(u1, "b", util.Ptr(20), util.Ptr(60))
	require.NoError(t, err)

	stats, err := svc.Stats(comp.ID)
	require.NoError(t, err)
	assert.Equal(t, 33.33, stats.OverallPassRate)
	assert.Equal(t, 33.33, stats.AIPassRate)
}

func TestStatsService_Stats_UnknownCompetition(t *testing.T) {
	db := arenatest.CreateTestDB(t)
	svc := NewStatsService(NewUserStore(db), NewSubmissionStore(db), NewCompetitionStore(db), nil)

	_, err := svc.Stats(777)
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestStatsService_FullPassByGroup(t *testing.T) {
	db := arenatest.CreateTestDB(t)
	users := NewUserStore(db)
	subs := NewSubmissionStore(db)
	svc := NewStatsService(users, subs, NewCompetitionStore(db), nil)

	u1 := seedUser(t, db, "a", "00000001", GroupAI, "AI-1小组")
	u2 := seedUser(t, db, "b", "00000002", GroupAI, "AI-2小组")

	_, err := subs.Create(u1, "b", util.Ptr(20), util.Ptr(500))
	require.NoError(t, err)
	_, err = subs.Create(u2, "b", util.Ptr(20), util.Ptr(100))
	require.NoError(t, err)

	ranks, err := svc.FullPassByGroup(GroupAI, 20)
	require.NoError(t, err)
	require.Len(t, ranks, 2)
	// Ordered by earliest full-pass submission: u1 submitted first
	assert.Equal(t, u1, ranks[0].UserID)
	assert.Equal(t, "a", ranks[0].Username)
	assert.Equal(t, u2, ranks[1].UserID)
}
