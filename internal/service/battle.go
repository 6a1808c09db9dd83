package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gitsphere/gitsphere-backend/internal/domain"
	"github.com/gitsphere/gitsphere-backend/internal/port"
	"github.com/gitsphere/gitsphere-backend/internal/scoring"
)

// BattleService orchestrates profile battles: it analyzes every
// participant, scores them through the engine, and ranks the survivors.
type BattleService struct {
	profiles *ProfileService
	engine   *scoring.Engine
}

// NewBattleService creates a battle service.
func NewBattleService(profiles *ProfileService, engine *scoring.Engine) *BattleService {
	return &BattleService{profiles: profiles, engine: engine}
}

// analyzeParticipants analyzes each username, dropping the ones that fail
// entirely. The battle itself fails unless at least two survive.
func (s *BattleService) analyzeParticipants(ctx context.Context, usernames []string, ghToken string) ([]*domain.ProfileAnalysis, []string, error) {
	var analyses []*domain.ProfileAnalysis
	var survivors []string
	for _, username := range usernames {
		analysis, err := s.profiles.AnalyzeProfile(ctx, username, ghToken)
		if err != nil {
			slog.Warn("participant analysis failed, dropping from battle", "username", username, "error", err)
			continue
		}
		analyses = append(analyses, analysis)
		survivors = append(survivors, username)
	}
	if len(analyses) < 2 {
		return nil, nil, fmt.Errorf("%w: at least 2 valid profiles required for battle", port.ErrValidation)
	}
	return analyses, survivors, nil
}

// ConductBattle runs a battle under one scoring profile.
func (s *BattleService) ConductBattle(ctx context.Context, req domain.BattleRequest, ghToken string) (*domain.BattleResult, error) {
	battleID := uuid.New().String()[:8]

	analyses, usernames, err := s.analyzeParticipants(ctx, req.Usernames, ghToken)
	if err != nil {
		return nil, err
	}

	participants := make([]*domain.Participant, len(analyses))
	for i, analysis := range analyses {
		participants[i] = &domain.Participant{
			Username:        usernames[i],
			ProfileAnalysis: analysis,
			BattleScore:     s.engine.Score(analysis, req.BattleType),
		}
	}
	s.engine.Rank(participants)

	insights := []string{}
	if req.IncludeInsights {
		insights = battleInsights(participants)
	}

	return &domain.BattleResult{
		BattleID:        battleID,
		Participants:    participants,
		Winner:          participants[0].Username,
		Comparisons:     createComparisons(participants),
		Insights:        insights,
		Recommendations: battleRecommendations(participants),
		BattleTimestamp: time.Now().UTC(),
	}, nil
}

// MultiUserBattle runs all four scoring profiles per participant and
// builds a leaderboard with per-category winners.
func (s *BattleService) MultiUserBattle(ctx context.Context, usernames []string, ghToken string) (*domain.MultiBattleResult, error) {
	battleID := uuid.New().String()[:8]

	analyses, survivors, err := s.analyzeParticipants(ctx, usernames, ghToken)
	if err != nil {
		return nil, err
	}

	categories := []string{
		domain.BattleTechnical,
		domain.BattleSocial,
		domain.BattleActivity,
		domain.BattleComprehensive,
	}
	categoryScores := map[string]map[string]float64{}
	for _, cat := range categories {
		categoryScores[cat] = map[string]float64{}
	}

	participants := make([]*domain.Participant, len(analyses))
	for i, analysis := range analyses {
		username := survivors[i]
		for _, cat := range categories {
			categoryScores[cat][username] = s.engine.Score(analysis, cat).Total
		}
		// Comprehensive drives the overall ranking.
		participants[i] = &domain.Participant{
			Username:        username,
			ProfileAnalysis: analysis,
			BattleScore:     s.engine.Score(analysis, domain.BattleComprehensive),
		}
	}
	s.engine.Rank(participants)

	leaderboard := make([]domain.LeaderboardEntry, len(participants))
	for i, p := range participants {
		leaderboard[i] = domain.LeaderboardEntry{
			Rank:           p.Rank,
			Username:       p.Username,
			TotalScore:     p.BattleScore.Total,
			TechnicalScore: categoryScores[domain.BattleTechnical][p.Username],
			SocialScore:    categoryScores[domain.BattleSocial][p.Username],
			ActivityScore:  categoryScores[domain.BattleActivity][p.Username],
		}
	}

	categoryWinners := map[string]string{}
	for _, cat := range categories {
		categoryWinners[cat] = s.engine.CategoryWinner(survivors, categoryScores[cat])
	}

	overallInsights := []string{
		fmt.Sprintf("Battle completed with %d participants", len(participants)),
		fmt.Sprintf("Overall winner: %s with %.1f points", participants[0].Username, participants[0].BattleScore.Total),
		fmt.Sprintf("Technical leader: %s", categoryWinners[domain.BattleTechnical]),
		fmt.Sprintf("Social leader: %s", categoryWinners[domain.BattleSocial]),
		fmt.Sprintf("Activity leader: %s", categoryWinners[domain.BattleActivity]),
	}

	return &domain.MultiBattleResult{
		BattleID:        battleID,
		Participants:    participants,
		Leaderboard:     leaderboard,
		CategoryWinners: categoryWinners,
		OverallInsights: overallInsights,
		BattleTimestamp: time.Now().UTC(),
	}, nil
}

// createComparisons compares the top two participants head to head.
func createComparisons(participants []*domain.Participant) []domain.Comparison {
	if len(participants) < 2 {
		return []domain.Comparison{}
	}
	p1, p2 := participants[0], participants[1]

	pick := func(diff int) string {
		if diff > 0 {
			return p1.Username
		}
		return p2.Username
	}
	abs := func(v int) int {
		if v < 0 {
			return -v
		}
		return v
	}

	repoDiff := p1.ProfileAnalysis.Stats.TotalRepos - p2.ProfileAnalysis.Stats.TotalRepos
	starsDiff := p1.ProfileAnalysis.Stats.TotalStars - p2.ProfileAnalysis.Stats.TotalStars
	followersDiff := p1.ProfileAnalysis.Profile.Followers - p2.ProfileAnalysis.Profile.Followers

	return []domain.Comparison{
		{
			Metric:            "Repository Count",
			Winner:            pick(repoDiff),
			Participant1Value: p1.ProfileAnalysis.Stats.TotalRepos,
			Participant2Value: p2.ProfileAnalysis.Stats.TotalRepos,
			Difference:        fmt.Sprintf("%d more repositories", abs(repoDiff)),
		},
		{
			Metric:            "Total Stars",
			Winner:            pick(starsDiff),
			Participant1Value: p1.ProfileAnalysis.Stats.TotalStars,
			Participant2Value: p2.ProfileAnalysis.Stats.TotalStars,
			Difference:        fmt.Sprintf("%d more stars", abs(starsDiff)),
		},
		{
			Metric:            "Followers",
			Winner:            pick(followersDiff),
			Participant1Value: p1.ProfileAnalysis.Profile.Followers,
			Participant2Value: p2.ProfileAnalysis.Profile.Followers,
			Difference:        fmt.Sprintf("%d more followers", abs(followersDiff)),
		},
	}
}

func battleInsights(participants []*domain.Participant) []string {
	winner := participants[0]
	insights := []string{
		fmt.Sprintf("%s wins with a score of %.1f", winner.Username, winner.BattleScore.Total),
	}
	if winner.BattleScore.Quality > 30 {
		insights = append(insights, fmt.Sprintf("%s excels in code quality with %v total stars",
			winner.Username, winner.BattleScore.Breakdown["stars"]))
	}
	if winner.BattleScore.Impact > 20 {
		insights = append(insights, fmt.Sprintf("%s has strong community impact with %v followers",
			winner.Username, winner.BattleScore.Breakdown["followers"]))
	}
	return insights
}

func battleRecommendations(participants []*domain.Participant) map[string][]string {
	recommendations := map[string][]string{}
	for _, p := range participants {
		recs := []string{}
		if p.BattleScore.Activity < 20 {
			recs = append(recs, "Increase repository activity and create more public projects")
		}
		if p.BattleScore.Quality < 25 {
			recs = append(recs, "Focus on creating higher-quality repositories that attract more stars")
		}
		recommendations[p.Username] = recs
	}
	return recommendations
}
