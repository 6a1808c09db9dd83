package domain

import "time"

// Battle scoring profiles.
const (
	BattleComprehensive = "comprehensive"
	BattleTechnical     = "technical"
	BattleSocial        = "social"
	BattleActivity      = "activity"
)

// Score is the weighted composite score of one participant under one
// scoring profile. Total is always the sum of the four capped sub-terms.
type Score struct {
	Total       float64        `json:"total"`
	Activity    float64        `json:"activity"`
	Quality     float64        `json:"quality"`
	Impact      float64        `json:"impact"`
	Consistency float64        `json:"consistency"`
	Breakdown   map[string]any `json:"breakdown"`
}

// Participant couples a username with its analysis and battle score.
type Participant struct {
	Username        string           `json:"username"`
	ProfileAnalysis *ProfileAnalysis `json:"profile_analysis"`
	BattleScore     *Score           `json:"battle_score"`
	Rank            int              `json:"rank"`
}

// Comparison is a single head-to-head metric between the top two.
type Comparison struct {
	Metric            string `json:"metric"`
	Winner            string `json:"winner"`
	Participant1Value any    `json:"participant1_value"`
	Participant2Value any    `json:"participant2_value"`
	Difference        string `json:"difference"`
}

// BattleRequest is the inbound battle payload.
type BattleRequest struct {
	Usernames       []string `json:"usernames"`
	BattleType      string   `json:"battle_type"`
	IncludeInsights bool     `json:"include_insights"`
}

// BattleResult is a ranked battle outcome.
type BattleResult struct {
	BattleID        string              `json:"battle_id"`
	Participants    []*Participant      `json:"participants"`
	Winner          string              `json:"winner"`
	Comparisons     []Comparison        `json:"comparisons"`
	Insights        []string            `json:"insights"`
	Recommendations map[string][]string `json:"recommendations"`
	BattleTimestamp time.Time           `json:"battle_timestamp"`
}

// LeaderboardEntry is one row of the multi-battle leaderboard.
type LeaderboardEntry struct {
	Rank           int     `json:"rank"`
	Username       string  `json:"username"`
	TotalScore     float64 `json:"total_score"`
	TechnicalScore float64 `json:"technical_score"`
	SocialScore    float64 `json:"social_score"`
	ActivityScore  float64 `json:"activity_score"`
}

// MultiBattleResult is a multi-user battle with per-category breakdowns.
type MultiBattleResult struct {
	BattleID        string             `json:"battle_id"`
	Participants    []*Participant     `json:"participants"`
	Leaderboard     []LeaderboardEntry `json:"leaderboard"`
	CategoryWinners map[string]string  `json:"category_winners"`
	OverallInsights []string           `json:"overall_insights"`
	BattleTimestamp time.Time          `json:"battle_timestamp"`
}
