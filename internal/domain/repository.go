package domain

import "time"

// RepositoryInfo is the /repos/{owner}/{repo} record.
type RepositoryInfo struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Language        string    `json:"language"`
	DefaultBranch   string    `json:"default_branch"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	WatchersCount   int       `json:"watchers_count"`
	Size            int       `json:"size"`
	OpenIssuesCount int       `json:"open_issues_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	PushedAt        time.Time `json:"pushed_at"`
	Topics          []string  `json:"topics"`
}

// Contributor is one entry from /repos/{owner}/{repo}/contributors.
type Contributor struct {
	Login         string `json:"login"`
	ID            int64  `json:"id"`
	AvatarURL     string `json:"avatar_url"`
	Contributions int    `json:"contributions"`
	HTMLURL       string `json:"html_url"`
}

// Commit is a flattened commit from /repos/{owner}/{repo}/commits.
type Commit struct {
	SHA     string         `json:"sha"`
	Author  map[string]any `json:"author"`
	Message string         `json:"message"`
	Date    time.Time      `json:"date"`
}

// Issue is one entry from /repos/{owner}/{repo}/issues.
type Issue struct {
	ID        int64          `json:"id"`
	Number    int            `json:"number"`
	Title     string         `json:"title"`
	State     string         `json:"state"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	ClosedAt  *time.Time     `json:"closed_at,omitempty"`
	User      map[string]any `json:"user"`
	Labels    []any          `json:"labels"`
}

// TreeEntry is one node in the repository file tree.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "blob" or "tree"
	Size int    `json:"size"`
	Mode string `json:"mode,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Tree is the recursive file listing of a repository. Analyses that could
// not resolve a tree carry an empty (never nil-checked) entry list.
type Tree struct {
	Entries []TreeEntry `json:"tree"`
}

// CodeQualityMetrics are filename-derived quality signals.
type CodeQualityMetrics struct {
	TotalLines           int     `json:"total_lines"`
	DocumentationCover   float64 `json:"documentation_coverage"`
	TestCoverageEstimate float64 `json:"test_coverage_estimate"`
	HasReadme            bool    `json:"has_readme"`
	HasLicense           bool    `json:"has_license"`
	HasContributingGuide bool    `json:"has_contributing_guide"`
	HasTests             bool    `json:"has_tests"`
}

// RepoActivity holds commit and issue activity metrics for a repository.
type RepoActivity struct {
	TotalCommits               int      `json:"total_commits"`
	RecentCommits30Days        int      `json:"recent_commits_30_days"`
	CommitFrequency            float64  `json:"commit_frequency"` // commits per day
	ContributorCount           int      `json:"contributor_count"`
	IssueResolutionRate        float64  `json:"issue_resolution_rate"`
	AvgIssueResolutionTimeDays *float64 `json:"average_issue_resolution_time"`
}

// Maintenance status buckets by days since last update.
const (
	MaintenanceActive     = "Active"
	MaintenanceMaintained = "Maintained"
	MaintenanceInactive   = "Inactive"
	MaintenanceDeprecated = "Deprecated"
)

// RepositoryHealth is the composite health assessment.
type RepositoryHealth struct {
	HealthScore         float64 `json:"health_score"`
	MaintenanceStatus   string  `json:"maintenance_status"`
	CommunityEngagement float64 `json:"community_engagement"`
	CodeQualityScore    float64 `json:"code_quality_score"`
}

// RepositoryAnalysis is the full derived snapshot for one repository.
type RepositoryAnalysis struct {
	Repository        *RepositoryInfo    `json:"repository"`
	Languages         map[string]int     `json:"languages"`
	Contributors      []Contributor      `json:"contributors"`
	RecentCommits     []Commit           `json:"recent_commits"`
	IssuesSummary     map[string]int     `json:"issues_summary"`
	CodeQuality       CodeQualityMetrics `json:"code_quality"`
	ActivityMetrics   RepoActivity       `json:"activity_metrics"`
	HealthAssessment  RepositoryHealth   `json:"health_assessment"`
	AnalysisTimestamp time.Time          `json:"analysis_timestamp"`
}

// RepositoryInsights are templated observations about a repository.
type RepositoryInsights struct {
	Strengths       []string `json:"strengths"`
	Concerns        []string `json:"concerns"`
	Recommendations []string `json:"recommendations"`
	TechnologyStack []string `json:"technology_stack"`
	ProjectType     string   `json:"project_type"`
	MaturityLevel   string   `json:"maturity_level"`
}
