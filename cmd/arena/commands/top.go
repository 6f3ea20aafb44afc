package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nanhai/arena/competition"
	"github.com/nanhai/arena/logger"
)

// TopCmd prints the current top-3 full-pass board
var TopCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the current top-3 board",
	Long:  "Print the first three participants to pass every case, ordered by submission time",
	RunE:  runTop,
}

func runTop(cmd *cobra.Command, args []string) error {
	database, _, err := openConfiguredDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	users := competition.NewUserStore(database)
	submissions := competition.NewSubmissionStore(database)
	comps := competition.NewCompetitionStore(database)
	stats := competition.NewStatsService(users, submissions, comps, logger.Logger)

	totalCases, err := comps.TotalCases()
	if err != nil {
		return err
	}

	ranks, err := stats.Top3(totalCases)
	if err != nil {
		return err
	}

	if len(ranks) == 0 {
		pterm.Info.Println("No full-pass submissions yet")
		return nil
	}

	rows := pterm.TableData{{"Rank", "Participant", "Group", "Time", "Submitted"}}
	for _, rank := range ranks {
		completion := "-"
		if rank.CompletionTime != nil {
			seconds := float64(*rank.CompletionTime)
			completion = competition.FormatTime(&seconds)
		}
		submitted := "-"
		if rank.SubmitTime != nil {
			submitted = rank.SubmitTime.Format("2006-01-02 15:04:05")
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", rank.Rank),
			rank.Username,
			rank.GroupType,
			completion,
			submitted,
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
