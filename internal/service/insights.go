package service

import (
	"sort"
	"time"

	"github.com/gitsphere/gitsphere-backend/internal/domain"
)

// GenerateInsights derives templated observations from a profile analysis.
func (s *ProfileService) GenerateInsights(a *domain.ProfileAnalysis) *domain.ProfileInsights {
	strengths := []string{}
	improvements := []string{}

	languages := a.LanguageStats.Languages
	primary := a.LanguageStats.PrimaryLanguage

	developerType := "Multi-language Developer"
	if primary != "" {
		_, hasJS := languages["JavaScript"]
		_, hasPy := languages["Python"]
		switch {
		case oneOf(primary, "JavaScript", "TypeScript", "HTML", "CSS"):
			developerType = "Frontend Developer"
		case oneOf(primary, "Python", "Java", "C++", "Go", "Rust"):
			developerType = "Backend Developer"
		case hasJS && hasPy:
			developerType = "Full-stack Developer"
		case oneOf(primary, "R", "Julia"):
			developerType = "Data Scientist"
		default:
			developerType = primary + " Developer"
		}
	}

	experienceLevel := "Expert"
	switch years := float64(a.Stats.AccountAgeDays) / 365; {
	case years < 1:
		experienceLevel = "Beginner"
	case years < 3:
		experienceLevel = "Intermediate"
	case years < 5:
		experienceLevel = "Advanced"
	}

	if a.Stats.TotalStars > 100 {
		strengths = append(strengths, "High-quality repositories with good community engagement")
	}
	if a.LanguageStats.LanguageDiversityScore > 0.3 {
		strengths = append(strengths, "Diverse programming language skills")
	}
	if a.ActivityMetrics.RecentCommits > 50 {
		strengths = append(strengths, "Highly active contributor")
	}
	if a.Stats.FollowerToFollowingRatio > 2 {
		strengths = append(strengths, "Strong developer network and influence")
	}

	if a.Stats.AvgStarsPerRepo < 1 {
		improvements = append(improvements, "Focus on creating more impactful repositories")
	}
	if a.ActivityMetrics.RecentCommits < 10 {
		improvements = append(improvements, "Increase coding activity and consistency")
	}
	if len(a.Repositories) < 5 {
		improvements = append(improvements, "Build more public repositories to showcase skills")
	}

	return &domain.ProfileInsights{
		Strengths:           strengths,
		AreasForImprovement: improvements,
		DeveloperType:       developerType,
		ExperienceLevel:     experienceLevel,
		Recommendations: []string{
			"Document your projects with comprehensive READMEs",
			"Contribute to open source projects in your area of expertise",
			"Engage with the developer community through issues and discussions",
		},
	}
}

// GenerateInsights derives templated observations from a repository
// analysis.
func (s *RepositoryService) GenerateInsights(a *domain.RepositoryAnalysis) *domain.RepositoryInsights {
	strengths := []string{}
	concerns := []string{}
	recommendations := []string{}

	repo := a.Repository
	health := a.HealthAssessment
	quality := a.CodeQuality
	activity := a.ActivityMetrics

	if repo.StargazersCount > 50 {
		strengths = append(strengths, "High community interest and adoption")
	}
	if activity.ContributorCount > 5 {
		strengths = append(strengths, "Active contributor community")
	}
	if quality.HasReadme && quality.HasLicense {
		strengths = append(strengths, "Well-documented with proper licensing")
	}
	if health.MaintenanceStatus == domain.MaintenanceActive || health.MaintenanceStatus == domain.MaintenanceMaintained {
		strengths = append(strengths, "Actively maintained and updated")
	}
	if quality.TestCoverageEstimate > 70 {
		strengths = append(strengths, "Good test coverage indicating quality focus")
	}
	if activity.CommitFrequency > 0.1 {
		strengths = append(strengths, "Consistent development activity")
	}
	if repo.ForksCount > 20 {
		strengths = append(strengths, "Community engagement through forks")
	}

	if activity.RecentCommits30Days < 5 {
		concerns = append(concerns, "Low recent activity - may be inactive")
	}
	if !quality.HasTests {
		concerns = append(concerns, "No visible test files - testing coverage unclear")
	}
	if activity.IssueResolutionRate < 50 {
		concerns = append(concerns, "Low issue resolution rate")
	}
	if repo.OpenIssuesCount > 20 {
		concerns = append(concerns, "High number of open issues")
	}
	if !quality.HasReadme {
		concerns = append(concerns, "Missing README documentation")
	}
	if !quality.HasLicense {
		concerns = append(concerns, "No license specified - unclear usage rights")
	}
	if health.HealthScore < 50 {
		concerns = append(concerns, "Overall repository health needs improvement")
	}
	if activity.AvgIssueResolutionTimeDays != nil && *activity.AvgIssueResolutionTimeDays > 30 {
		concerns = append(concerns, "Slow issue resolution (>30 days average)")
	}

	if !quality.HasContributingGuide {
		recommendations = append(recommendations, "Add a CONTRIBUTING.md file to help new contributors")
	}
	if !quality.HasLicense {
		recommendations = append(recommendations, "Add a license to clarify usage rights")
	}
	if quality.TestCoverageEstimate < 30 {
		recommendations = append(recommendations, "Improve test coverage to ensure code quality")
	}
	if activity.RecentCommits30Days < 10 {
		recommendations = append(recommendations, "Increase development activity with more frequent commits")
	}
	if repo.OpenIssuesCount > 10 {
		recommendations = append(recommendations, "Address open issues to improve user experience")
	}
	if !quality.HasReadme {
		recommendations = append(recommendations, "Create comprehensive README with setup and usage instructions")
	}
	if health.CommunityEngagement < 30 {
		recommendations = append(recommendations, "Engage more with the community through discussions and collaborations")
	}
	recommendations = append(recommendations, "Regular updates and issue management to maintain project health")

	// Top languages by byte count as the tech stack.
	techStack := topLanguages(a.Languages, 5)

	projectType := "Software Library/Tool"
	if len(techStack) > 0 {
		switch techStack[0] {
		case "JavaScript", "TypeScript", "HTML", "CSS":
			projectType = "Web Development"
		case "Python", "R":
			projectType = "Data Science/Analytics"
		case "Java", "C++", "C#", "Go":
			projectType = "Systems/Enterprise"
		}
	}

	maturity := "Unknown"
	if !repo.CreatedAt.IsZero() {
		switch age := int(time.Since(repo.CreatedAt).Hours() / 24); {
		case age < 90:
			maturity = "Early Stage"
		case age < 365:
			maturity = "Growing"
		case age < 3*365:
			maturity = "Mature"
		default:
			maturity = "Established"
		}
	}

	return &domain.RepositoryInsights{
		Strengths:       strengths,
		Concerns:        concerns,
		Recommendations: recommendations,
		TechnologyStack: techStack,
		ProjectType:     projectType,
		MaturityLevel:   maturity,
	}
}

func oneOf(v string, candidates ...string) bool {
	for _, c := range candidates {
		if v == c {
			return true
		}
	}
	return false
}

func topLanguages(langs map[string]int, n int) []string {
	type entry struct {
		name  string
		bytes int
	}
	entries := make([]entry, 0, len(langs))
	for name, b := range langs {
		entries = append(entries, entry{name, b})
	}
	// Largest first, names as tiebreak so output is deterministic.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].bytes != entries[j].bytes {
			return entries[i].bytes > entries[j].bytes
		}
		return entries[i].name < entries[j].name
	})
	names := make([]string, 0, n)
	for _, e := range entries {
		if len(names) == n {
			break
		}
		names = append(names, e.name)
	}
	return names
}
