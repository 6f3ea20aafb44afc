// Package competition holds the leaderboard domain: participants,
// submissions, the current competition row and the aggregated stats
// served to the dashboard.
package competition

import "time"

// Soft delete flag values on the users table
const (
	NotDeleted = "N"
	Deleted    = "Y"
)

// Group names are fixed by the competition format
const (
	GroupAI    = "AI组"
	GroupNonAI = "非AI组"
)

// Sub-groups within each group, in display order
var (
	AISubGroups    = []string{"AI-1小组", "AI-2小组", "AI-3小组", "AI-4小组"}
	NonAISubGroups = []string{"非AI-1小组", "非AI-2小组"}
)

// DefaultTotalCases is the case count used when the competition row
// does not carry one.
const DefaultTotalCases = 20

// User is a competition participant
type User struct {
	ID          int64     `json:"id"`
	UserName    string    `json:"userName"`
	EmployID    string    `json:"employId"`
	UserEngName string    `json:"userEngName,omitempty"`
	GroupType   string    `json:"groupType,omitempty"`
	SubGroup    string    `json:"subGroup,omitempty"`
	IsDeleted   string    `json:"isDeleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Submission is one scored attempt. Passed and CompletionTime stay nil
// until the build pipeline resolves the run's report.
type Submission struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	Branch         string    `json:"branch"`
	Passed         *int      `json:"passed"`
	CompletionTime *int      `json:"completionTime"`
	SubmitTime     time.Time `json:"submitTime"`
}

// Competition is the single current competition row
type Competition struct {
	ID         int64      `json:"id"`
	StartTime  *time.Time `json:"startTime"`
	TotalCases int        `json:"totalCases"`
}

// UserRank is one leaderboard entry
type UserRank struct {
	UserID         int64      `json:"userId"`
	Username       string     `json:"username"`
	GroupType      string     `json:"groupType,omitempty"`
	SubGroup       string     `json:"subGroup,omitempty"`
	CompletionTime *int       `json:"completionTime"`
	SubmitTime     *time.Time `json:"submitTime"`
	Rank           int        `json:"rank,omitempty"`
}

// SubGroupStats is one row of the sub-group ranking table
type SubGroupStats struct {
	SubGroupName string  `json:"subGroupName"`
	GroupType    string  `json:"groupType"`
	UserCount    int     `json:"userCount"`
	PassedCount  int     `json:"passedCount"`
	PassRate     float64 `json:"passRate"`
	AverageTime  string  `json:"averageTime"`
	Rank         int     `json:"rank"`
}

// Stats is the full dashboard payload
type Stats struct {
	CompetitionID       int64           `json:"competitionId"`
	CompetitionName     string          `json:"competitionName"`
	Status              string          `json:"status"`
	StartTime           string          `json:"startTime,omitempty"`
	RemainingTime       int             `json:"remainingTime"`
	TotalCases          int             `json:"totalCases"`
	TotalParticipants   int             `json:"totalParticipants"`
	OverallPassRate     float64         `json:"overallPassRate"`
	AIPassRate          float64         `json:"aiPassRate"`
	NonAIPassRate       float64         `json:"nonAiPassRate"`
	AISubmissionRate    float64         `json:"aiSubmissionRate"`
	NonAISubmissionRate float64         `json:"nonAiSubmissionRate"`
	AITotalCount        int             `json:"aiTotalCount"`
	NonAITotalCount     int             `json:"nonAiTotalCount"`
	AISuccessCount      int             `json:"aiSuccessCount"`
	NonAISuccessCount   int             `json:"nonAiSuccessCount"`
	AIAverageTime       string          `json:"aiAverageTime"`
	NonAIAverageTime    string          `json:"nonAiAverageTime"`
	Top3Rankings        []UserRank      `json:"top3Rankings"`
	SubGroupStats       []SubGroupStats `json:"subGroupStats"`
}
