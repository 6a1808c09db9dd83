package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitsphere/gitsphere-backend/internal/domain"
)

func TestProfileInsights(t *testing.T) {
	svc := NewProfileService(newFakeGitHub())

	t.Run("strong profile collects strengths", func(t *testing.T) {
		insights := svc.GenerateInsights(&domain.ProfileAnalysis{
			Profile: &domain.Profile{Login: "octocat"},
			Repositories: []domain.ProfileRepository{
				repoFixture("a", "Go", 100), repoFixture("b", "Rust", 50),
				repoFixture("c", "Go", 20), repoFixture("d", "Python", 10),
				repoFixture("e", "Go", 5),
			},
			Stats: domain.ProfileStats{
				TotalStars:               185,
				AvgStarsPerRepo:          37,
				FollowerToFollowingRatio: 5,
				AccountAgeDays:           6 * 365,
			},
			LanguageStats: domain.LanguageStats{
				PrimaryLanguage:        "Go",
				Languages:              map[string]int{"Go": 3, "Rust": 1, "Python": 1},
				LanguageDiversityScore: 0.6,
			},
			ActivityMetrics: domain.ProfileActivity{RecentCommits: 80},
		})

		assert.Equal(t, "Backend Developer", insights.DeveloperType)
		assert.Equal(t, "Expert", insights.ExperienceLevel)
		assert.Len(t, insights.Strengths, 4)
		assert.Empty(t, insights.AreasForImprovement)
		assert.NotEmpty(t, insights.Recommendations)
	})

	t.Run("sparse profile collects improvement areas", func(t *testing.T) {
		insights := svc.GenerateInsights(&domain.ProfileAnalysis{
			Profile:       &domain.Profile{Login: "newbie"},
			Stats:         domain.ProfileStats{AccountAgeDays: 100},
			LanguageStats: domain.LanguageStats{},
		})

		assert.Equal(t, "Multi-language Developer", insights.DeveloperType)
		assert.Equal(t, "Beginner", insights.ExperienceLevel)
		assert.Empty(t, insights.Strengths)
		assert.Len(t, insights.AreasForImprovement, 3)
	})

	t.Run("frontend primary language maps to frontend type", func(t *testing.T) {
		insights := svc.GenerateInsights(&domain.ProfileAnalysis{
			Profile:       &domain.Profile{Login: "fe"},
			Stats:         domain.ProfileStats{AccountAgeDays: 4 * 365},
			LanguageStats: domain.LanguageStats{PrimaryLanguage: "TypeScript", Languages: map[string]int{"TypeScript": 3}},
		})
		assert.Equal(t, "Frontend Developer", insights.DeveloperType)
		assert.Equal(t, "Advanced", insights.ExperienceLevel)
	})
}

func TestRepositoryInsights(t *testing.T) {
	svc := NewRepositoryService(newFakeGitHub())
	resolution := 2.0

	t.Run("healthy repository collects strengths", func(t *testing.T) {
		insights := svc.GenerateInsights(&domain.RepositoryAnalysis{
			Repository: &domain.RepositoryInfo{
				StargazersCount: 200,
				ForksCount:      40,
				CreatedAt:       time.Now().UTC().AddDate(-4, 0, 0),
			},
			Languages: map[string]int{"Go": 5000, "Makefile": 200},
			CodeQuality: domain.CodeQualityMetrics{
				HasReadme:            true,
				HasLicense:           true,
				HasTests:             true,
				HasContributingGuide: true,
				TestCoverageEstimate: 80,
			},
			ActivityMetrics: domain.RepoActivity{
				RecentCommits30Days:        25,
				CommitFrequency:            0.5,
				ContributorCount:           10,
				IssueResolutionRate:        90,
				AvgIssueResolutionTimeDays: &resolution,
			},
			HealthAssessment: domain.RepositoryHealth{
				HealthScore:         95,
				MaintenanceStatus:   domain.MaintenanceActive,
				CommunityEngagement: 90,
			},
		})

		assert.Len(t, insights.Strengths, 7)
		assert.Empty(t, insights.Concerns)
		assert.Equal(t, []string{"Go", "Makefile"}, insights.TechnologyStack)
		assert.Equal(t, "Systems/Enterprise", insights.ProjectType)
		assert.Equal(t, "Established", insights.MaturityLevel)
		// The standing maintenance recommendation is always present.
		require.NotEmpty(t, insights.Recommendations)
		assert.Equal(t, "Regular updates and issue management to maintain project health", insights.Recommendations[len(insights.Recommendations)-1])
	})

	t.Run("neglected repository collects concerns", func(t *testing.T) {
		insights := svc.GenerateInsights(&domain.RepositoryAnalysis{
			Repository: &domain.RepositoryInfo{
				OpenIssuesCount: 30,
				CreatedAt:       time.Now().UTC().AddDate(0, -1, 0),
			},
			Languages:        map[string]int{"Python": 1000},
			CodeQuality:      domain.CodeQualityMetrics{},
			ActivityMetrics:  domain.RepoActivity{IssueResolutionRate: 10},
			HealthAssessment: domain.RepositoryHealth{HealthScore: 20, MaintenanceStatus: domain.MaintenanceDeprecated},
		})

		assert.Empty(t, insights.Strengths)
		assert.Len(t, insights.Concerns, 7)
		assert.Equal(t, "Data Science/Analytics", insights.ProjectType)
		assert.Equal(t, "Early Stage", insights.MaturityLevel)
		assert.Contains(t, insights.Concerns, "Missing README documentation")
	})

	t.Run("unknown maturity without creation date", func(t *testing.T) {
		insights := svc.GenerateInsights(&domain.RepositoryAnalysis{
			Repository:       &domain.RepositoryInfo{},
			HealthAssessment: domain.RepositoryHealth{CommunityEngagement: 50, HealthScore: 60},
			ActivityMetrics:  domain.RepoActivity{RecentCommits30Days: 20, IssueResolutionRate: 80},
			CodeQuality:      domain.CodeQualityMetrics{HasReadme: true, HasLicense: true, HasTests: true, HasContributingGuide: true, TestCoverageEstimate: 50},
		})
		assert.Equal(t, "Unknown", insights.MaturityLevel)
		assert.Equal(t, "Software Library/Tool", insights.ProjectType)
	})
}

func TestTopLanguages(t *testing.T) {
	langs := map[string]int{
		"Go": 5000, "Python": 3000, "Rust": 3000, "Shell": 100,
		"Makefile": 50, "Dockerfile": 25, "HTML": 10,
	}

	top := topLanguages(langs, 5)
	require.Len(t, top, 5)
	assert.Equal(t, "Go", top[0])
	// Equal byte counts fall back to name order.
	assert.Equal(t, []string{"Python", "Rust"}, top[1:3])
	assert.Equal(t, "Shell", top[3])
	assert.Equal(t, "Makefile", top[4])
}
