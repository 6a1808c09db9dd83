package scoring

import (
	"math"
	"sort"

	"github.com/gitsphere/gitsphere-backend/internal/domain"
)

// Engine derives weighted composite battle scores from profile analyses
// and ranks participants. It holds no state; a score is a pure function
// of one analysis and one scoring profile.
type Engine struct{}

// NewEngine creates a scoring engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Score computes the composite score for one analysis under the given
// battle type. The total is always the sum of four non-negative sub-terms,
// each capped independently.
func (e *Engine) Score(a *domain.ProfileAnalysis, battleType string) *domain.Score {
	stats := a.Stats
	activity := a.ActivityMetrics
	languages := a.LanguageStats
	profile := a.Profile

	var activityScore, quality, impact, consistency float64

	switch battleType {
	case domain.BattleTechnical:
		// Technical skill and code quality.
		quality = capAt(float64(stats.TotalStars)/200*40, 40)
		consistency = capAt(languages.LanguageDiversityScore*100*30, 30)
		activityScore = capAt(float64(stats.TotalRepos)/30*20, 20)
		impact = capAt(stats.AvgStarsPerRepo*10, 10)

	case domain.BattleSocial:
		// Community engagement and network.
		impact = capAt(float64(profile.Followers)/100*50, 50)
		quality = capAt(stats.FollowerToFollowingRatio*20, 20)
		activityScore = capAt(float64(activity.RecentCommits)/100*20, 20)
		consistency = capAt(float64(len(a.TopRepositories))*2, 10)

	case domain.BattleActivity:
		// Coding activity and consistency.
		activityScore = capAt(float64(activity.RecentCommits)/50*40, 40)
		consistency = capAt(float64(activity.ActiveDays)/30*30, 30)
		quality = capAt(float64(stats.TotalRepos)/20*20, 20)
		impact = capAt(float64(activity.TotalCommits)/500*10, 10)

	default:
		// Comprehensive: balanced across all areas.
		activityScore = capAt(float64(stats.TotalRepos)/20*25, 25)
		quality = capAt(float64(stats.TotalStars)/100*30, 30)
		impact = capAt(float64(profile.Followers)/50*25, 25)
		consistency = capAt(languages.LanguageDiversityScore*100*20, 20)
	}

	return &domain.Score{
		Total:       round2(activityScore + quality + impact + consistency),
		Activity:    round2(activityScore),
		Quality:     round2(quality),
		Impact:      round2(impact),
		Consistency: round2(consistency),
		Breakdown: map[string]any{
			"repos":          stats.TotalRepos,
			"stars":          stats.TotalStars,
			"followers":      profile.Followers,
			"languages":      len(languages.Languages),
			"recent_commits": activity.RecentCommits,
			"account_age":    stats.AccountAgeDays,
		},
	}
}

// Rank sorts participants descending by total score and assigns 1-based
// ranks by position. The sort is stable, so ties keep their input order.
func (e *Engine) Rank(participants []*domain.Participant) {
	sort.SliceStable(participants, func(i, j int) bool {
		return participants[i].BattleScore.Total > participants[j].BattleScore.Total
	})
	for i, p := range participants {
		p.Rank = i + 1
	}
}

// CategoryWinner returns the username with the highest score, scanning in
// the given order so ties go to the first-seen participant.
func (e *Engine) CategoryWinner(order []string, scores map[string]float64) string {
	winner := ""
	for _, username := range order {
		if winner == "" || scores[username] > scores[winner] {
			winner = username
		}
	}
	return winner
}

func capAt(v, limit float64) float64 { return math.Min(v, limit) }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
