package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gitsphere/gitsphere-backend/internal/domain"
	"github.com/gitsphere/gitsphere-backend/internal/port"
)

const (
	reposPageSize    = 100
	recentWindowDays = 30
	topRepoLimit     = 5
)

// ProfileService aggregates a user's GitHub data into a derived analysis.
type ProfileService struct {
	client    port.GitHubClient
	pageDelay time.Duration
}

// NewProfileService creates a profile service backed by the given client.
func NewProfileService(client port.GitHubClient) *ProfileService {
	return &ProfileService{client: client, pageDelay: 100 * time.Millisecond}
}

// GetProfile fetches the user profile.
func (s *ProfileService) GetProfile(ctx context.Context, username, ghToken string) (*domain.Profile, error) {
	var p domain.Profile
	if err := s.client.Get(ctx, "/users/"+username, nil, ghToken, &p); err != nil {
		return nil, fmt.Errorf("fetch profile %s: %w", username, err)
	}
	return &p, nil
}

// GetRepositories pages through all of the user's repositories. A page
// shorter than the page size terminates the listing, so an empty account
// or a short final page never loops. A brief pause between pages keeps
// the call pattern under the API rate limit.
func (s *ProfileService) GetRepositories(ctx context.Context, username, ghToken string) ([]domain.ProfileRepository, error) {
	var all []domain.ProfileRepository
	for page := 1; ; page++ {
		q := url.Values{
			"page":      {strconv.Itoa(page)},
			"per_page":  {strconv.Itoa(reposPageSize)},
			"sort":      {"updated"},
			"direction": {"desc"},
		}
		var batch []domain.ProfileRepository
		if err := s.client.Get(ctx, "/users/"+username+"/repos", q, ghToken, &batch); err != nil {
			return nil, fmt.Errorf("fetch repos %s page %d: %w", username, page, err)
		}
		all = append(all, batch...)
		if len(batch) < reposPageSize {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.pageDelay):
		}
	}
	return all, nil
}

// GetEvents fetches the user's recent public activity events.
func (s *ProfileService) GetEvents(ctx context.Context, username, ghToken string) ([]domain.Event, error) {
	q := url.Values{"per_page": {"100"}}
	var events []domain.Event
	if err := s.client.Get(ctx, "/users/"+username+"/events", q, ghToken, &events); err != nil {
		return nil, fmt.Errorf("fetch events %s: %w", username, err)
	}
	return events, nil
}

// AnalyzeProfile runs the three sub-fetches concurrently and folds the
// results into a fresh analysis. The profile fetch is mandatory; a failed
// repository or event fetch degrades to an empty list. No sub-fetch
// failure cancels its siblings.
func (s *ProfileService) AnalyzeProfile(ctx context.Context, username, ghToken string) (*domain.ProfileAnalysis, error) {
	var (
		profile    *domain.Profile
		profileErr error
		repos      []domain.ProfileRepository
		reposErr   error
		events     []domain.Event
		eventsErr  error
	)

	var g errgroup.Group
	g.Go(func() error {
		profile, profileErr = s.GetProfile(ctx, username, ghToken)
		return nil
	})
	g.Go(func() error {
		repos, reposErr = s.GetRepositories(ctx, username, ghToken)
		return nil
	})
	g.Go(func() error {
		events, eventsErr = s.GetEvents(ctx, username, ghToken)
		return nil
	})
	_ = g.Wait()

	if profileErr != nil {
		return nil, profileErr
	}
	if reposErr != nil {
		slog.Warn("repository fetch failed, using empty list", "username", username, "error", reposErr)
		repos = nil
	}
	if eventsErr != nil {
		slog.Warn("event fetch failed, using empty list", "username", username, "error", eventsErr)
		events = nil
	}

	return &domain.ProfileAnalysis{
		Profile:           profile,
		Repositories:      repos,
		Stats:             calculateProfileStats(profile, repos),
		LanguageStats:     calculateLanguageStats(repos),
		ActivityMetrics:   calculateActivityMetrics(events),
		TopRepositories:   topRepositories(repos, topRepoLimit),
		AnalysisTimestamp: time.Now().UTC(),
	}, nil
}

func calculateProfileStats(profile *domain.Profile, repos []domain.ProfileRepository) domain.ProfileStats {
	var totalStars, totalForks int
	for _, r := range repos {
		totalStars += r.StargazersCount
		totalForks += r.ForksCount
	}

	avgStars := 0.0
	if len(repos) > 0 {
		avgStars = float64(totalStars) / float64(len(repos))
	}

	// Following is floored at 1 so the ratio never divides by zero.
	following := profile.Following
	if following < 1 {
		following = 1
	}
	ratio := float64(profile.Followers) / float64(following)

	accountAge := int(time.Since(profile.CreatedAt).Hours() / 24)

	return domain.ProfileStats{
		TotalStars:               totalStars,
		TotalForks:               totalForks,
		TotalRepos:               len(repos),
		AvgStarsPerRepo:          round2(avgStars),
		FollowerToFollowingRatio: round2(ratio),
		AccountAgeDays:           accountAge,
	}
}

func calculateLanguageStats(repos []domain.ProfileRepository) domain.LanguageStats {
	counts := map[string]int{}
	firstSeen := map[string]int{}
	withLanguage := 0
	for i, r := range repos {
		if r.Language == "" {
			continue
		}
		withLanguage++
		if _, ok := counts[r.Language]; !ok {
			firstSeen[r.Language] = i
		}
		counts[r.Language]++
	}

	// Primary language is the histogram argmax, ties broken by whichever
	// language appeared first in the input.
	primary := ""
	for lang, n := range counts {
		if primary == "" || n > counts[primary] ||
			(n == counts[primary] && firstSeen[lang] < firstSeen[primary]) {
			primary = lang
		}
	}

	diversity := 0.0
	if withLanguage > 0 {
		diversity = float64(len(counts)) / float64(withLanguage)
	}

	return domain.LanguageStats{
		Languages:              counts,
		PrimaryLanguage:        primary,
		LanguageDiversityScore: round3(diversity),
	}
}

func calculateActivityMetrics(events []domain.Event) domain.ProfileActivity {
	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -recentWindowDays)

	totalCommits := 0
	recentCommits := 0
	activeDates := map[string]struct{}{}

	for _, e := range events {
		if e.Type == "PushEvent" {
			totalCommits += len(e.Payload.Commits)
		}

		// Unparseable event dates are skipped, never fatal.
		ts, err := time.Parse(time.RFC3339, e.CreatedAt)
		if err != nil {
			continue
		}
		if ts.Before(cutoff) {
			continue
		}
		if e.Type == "PushEvent" {
			recentCommits += len(e.Payload.Commits)
		}
		activeDates[ts.UTC().Format("2006-01-02")] = struct{}{}
	}

	return domain.ProfileActivity{
		TotalCommits:       totalCommits,
		RecentCommits:      recentCommits,
		ContributionStreak: len(activeDates),
		ActiveDays:         len(activeDates),
	}
}

// topRepositories returns the top n repos by stars, descending, ties kept
// in input order.
func topRepositories(repos []domain.ProfileRepository, n int) []domain.ProfileRepository {
	top := make([]domain.ProfileRepository, len(repos))
	copy(top, repos)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].StargazersCount > top[j].StargazersCount
	})
	if len(top) > n {
		top = top[:n]
	}
	return top
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
