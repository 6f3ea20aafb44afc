package competition

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
)

// noData is shown for sub-groups that have no full-pass submissions yet
const noData = "暂无数据"

// StatsService assembles the dashboard stats payload from the stores
type StatsService struct {
	users       *UserStore
	submissions *SubmissionStore
	comps       *CompetitionStore
	logger      *zap.SugaredLogger
}

// NewStatsService creates a stats service over the given stores
func NewStatsService(users *UserStore, submissions *SubmissionStore, comps *CompetitionStore, logger *zap.SugaredLogger) *StatsService {
	return &StatsService{
		users:       users,
		submissions: submissions,
		comps:       comps,
		logger:      logger,
	}
}

// Stats computes the full dashboard payload for a competition.
//
// Pass rates are the sum of each member's best passed count divided by
// members times total cases, as a percentage rounded to two decimals.
func (svc *StatsService) Stats(competitionID int64) (*Stats, error) {
	comp, err := svc.comps.GetByID(competitionID)
	if err != nil {
		return nil, err
	}

	totalCases := comp.TotalCases
	if totalCases <= 0 {
		totalCases = DefaultTotalCases
	}

	stats := &Stats{
		CompetitionID:   comp.ID,
		CompetitionName: "AI编程大赛",
		Status:          "RUNNING",
		TotalCases:      totalCases,
	}
	if comp.StartTime != nil {
		stats.StartTime = comp.StartTime.Format("2006-01-02T15:04:05")
	}

	totalUsers, err := svc.users.CountActive()
	if err != nil {
		return nil, err
	}
	aiUsers, err := svc.users.CountByGroup(GroupAI)
	if err != nil {
		return nil, err
	}
	nonAIUsers, err := svc.users.CountByGroup(GroupNonAI)
	if err != nil {
		return nil, err
	}
	stats.TotalParticipants = totalUsers
	stats.AITotalCount = aiUsers
	stats.NonAITotalCount = nonAIUsers

	allSum, err := svc.submissions.MaxPassedSum()
	if err != nil {
		return nil, err
	}
	stats.OverallPassRate = passRate(allSum, totalUsers, totalCases)

	aiSum, err := svc.submissions.MaxPassedSumByGroup(GroupAI)
	if err != nil {
		return nil, err
	}
	stats.AIPassRate = passRate(aiSum, aiUsers, totalCases)
	stats.AISuccessCount = aiSum

	nonAISum, err := svc.submissions.MaxPassedSumByGroup(GroupNonAI)
	if err != nil {
		return nil, err
	}
	stats.NonAIPassRate = passRate(nonAISum, nonAIUsers, totalCases)
	stats.NonAISuccessCount = nonAISum

	aiAvg, err := svc.submissions.FullPassAverageTimeByGroup(GroupAI, totalCases)
	if err != nil {
		return nil, err
	}
	stats.AIAverageTime = FormatTime(aiAvg)

	nonAIAvg, err := svc.submissions.FullPassAverageTimeByGroup(GroupNonAI, totalCases)
	if err != nil {
		return nil, err
	}
	stats.NonAIAverageTime = FormatTime(nonAIAvg)

	top3, err := svc.Top3(totalCases)
	if err != nil {
		return nil, err
	}
	stats.Top3Rankings = top3

	subGroups, err := svc.subGroupStats(totalCases)
	if err != nil {
		return nil, err
	}
	stats.SubGroupStats = subGroups

	return stats, nil
}

// Top3 returns the first three full-pass submissions by submit time,
// with user details attached.
func (svc *StatsService) Top3(totalCases int) ([]UserRank, error) {
	subs, err := svc.submissions.ListFullPassOrderedBySubmitTime(totalCases, 3)
	if err != nil {
		return nil, err
	}

	ranks := make([]UserRank, 0, len(subs))
	for i, sub := range subs {
		rank := UserRank{
			UserID:         sub.UserID,
			CompletionTime: sub.CompletionTime,
			Rank:           i + 1,
		}
		t := sub.SubmitTime
		rank.SubmitTime = &t

		user, err := svc.users.GetByID(sub.UserID)
		if err == nil {
			rank.Username = user.UserName
			rank.GroupType = user.GroupType
			rank.SubGroup = user.SubGroup
		} else if svc.logger != nil {
			svc.logger.Warnw("Failed to attach user to ranking",
				"user_id", sub.UserID,
				"error", err)
		}

		ranks = append(ranks, rank)
	}
	return ranks, nil
}

// FullPassByGroup lists each group member who reached a full pass with
// their best time, ordered by earliest full-pass submission.
func (svc *StatsService) FullPassByGroup(groupType string, totalCases int) ([]UserRank, error) {
	entries, err := svc.submissions.FullPassUsersByGroup(groupType, totalCases)
	if err != nil {
		return nil, err
	}

	ranks := make([]UserRank, 0, len(entries))
	for _, entry := range entries {
		rank := UserRank{
			UserID:         entry.UserID,
			CompletionTime: entry.MinTime,
			SubmitTime:     entry.MinSubmitTime,
		}
		user, err := svc.users.GetByID(entry.UserID)
		if err == nil {
			rank.Username = user.UserName
			rank.GroupType = user.GroupType
			rank.SubGroup = user.SubGroup
		}
		ranks = append(ranks, rank)
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		a, b := ranks[i].SubmitTime, ranks[j].SubmitTime
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})

	return ranks, nil
}

func (svc *StatsService) subGroupStats(totalCases int) ([]SubGroupStats, error) {
	type subGroupRow struct {
		stats      SubGroupStats
		avgSeconds float64
	}

	var rows []subGroupRow
	collect := func(name, groupType string) error {
		userCount, err := svc.users.CountBySubGroup(name)
		if err != nil {
			return err
		}
		maxPassedSum, err := svc.submissions.MaxPassedSumBySubGroup(name)
		if err != nil {
			return err
		}
		fullPassCount, err := svc.submissions.FullPassUserCountBySubGroup(name, totalCases)
		if err != nil {
			return err
		}
		avgTime, err := svc.submissions.FullPassAverageTimeBySubGroup(name, totalCases)
		if err != nil {
			return err
		}

		row := subGroupRow{
			stats: SubGroupStats{
				SubGroupName: name,
				GroupType:    groupType,
				UserCount:    userCount,
				PassedCount:  fullPassCount,
				PassRate:     passRate(maxPassedSum, userCount, totalCases),
			},
			avgSeconds: math.MaxFloat64,
		}
		if avgTime != nil {
			row.stats.AverageTime = FormatTime(avgTime)
			row.avgSeconds = *avgTime
		} else {
			row.stats.AverageTime = noData
		}
		rows = append(rows, row)
		return nil
	}

	for _, name := range AISubGroups {
		if err := collect(name, GroupAI); err != nil {
			return nil, err
		}
	}
	for _, name := range NonAISubGroups {
		if err := collect(name, GroupNonAI); err != nil {
			return nil, err
		}
	}

	// Rank by pass rate, ties broken by shorter average time
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].stats.PassRate != rows[j].stats.PassRate {
			return rows[i].stats.PassRate > rows[j].stats.PassRate
		}
		return rows[i].avgSeconds < rows[j].avgSeconds
	})

	result := make([]SubGroupStats, len(rows))
	for i, row := range rows {
		row.stats.Rank = i + 1
		result[i] = row.stats
	}
	return result, nil
}

// passRate converts a best-passed sum into a percentage of the group's
// possible total, rounded to two decimals. Zero members means zero rate.
func passRate(sum, members, totalCases int) float64 {
	if members <= 0 {
		return 0
	}
	rate := float64(sum) / float64(members*totalCases) * 100
	return math.Round(rate*100) / 100
}

// FormatTime renders seconds as m:ss. Nil or zero renders as 0:00.
func FormatTime(seconds *float64) string {
	if seconds == nil || *seconds == 0 {
		return "0:00"
	}
	mins := int(*seconds) / 60
	secs := int(*seconds) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}
