package domain

import "time"

// Profile is a GitHub user profile as returned by /users/{username}.
type Profile struct {
	Login       string    `json:"login"`
	ID          int64     `json:"id"`
	AvatarURL   string    `json:"avatar_url"`
	Name        string    `json:"name"`
	Company     string    `json:"company"`
	Blog        string    `json:"blog"`
	Location    string    `json:"location"`
	Email       string    `json:"email"`
	Bio         string    `json:"bio"`
	PublicRepos int       `json:"public_repos"`
	PublicGists int       `json:"public_gists"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	HTMLURL     string    `json:"html_url"`
}

// ProfileRepository is one entry from /users/{username}/repos.
type ProfileRepository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	Language        string    `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	Size            int       `json:"size"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	PushedAt        time.Time `json:"pushed_at"`
	Topics          []string  `json:"topics"`
}

// Event is a public activity event from /users/{username}/events.
// CreatedAt stays a string: a date that fails to parse is skipped during
// metric derivation rather than failing the whole analysis.
type Event struct {
	Type      string       `json:"type"`
	CreatedAt string       `json:"created_at"`
	Payload   EventPayload `json:"payload"`
}

// EventPayload carries the commits embedded in push events.
type EventPayload struct {
	Commits []EventCommit `json:"commits"`
}

// EventCommit is one commit reference inside a push event payload.
type EventCommit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

// ProfileStats are aggregate numbers derived from a profile and its repos.
type ProfileStats struct {
	TotalStars               int     `json:"total_stars"`
	TotalForks               int     `json:"total_forks"`
	TotalRepos               int     `json:"total_repos"`
	AvgStarsPerRepo          float64 `json:"avg_stars_per_repo"`
	FollowerToFollowingRatio float64 `json:"follower_to_following_ratio"`
	AccountAgeDays           int     `json:"account_age_days"`
}

// LanguageStats is the language histogram over a user's repositories.
type LanguageStats struct {
	Languages              map[string]int `json:"languages"`
	PrimaryLanguage        string         `json:"primary_language,omitempty"`
	LanguageDiversityScore float64        `json:"language_diversity_score"`
}

// ProfileActivity holds activity metrics reconstructed from events.
type ProfileActivity struct {
	TotalCommits       int `json:"total_commits"`
	RecentCommits      int `json:"recent_commits"`
	ContributionStreak int `json:"contribution_streak"`
	ActiveDays         int `json:"active_days"`
}

// ProfileAnalysis is the full derived snapshot for one user. It is built
// fresh per request and never mutated after construction.
type ProfileAnalysis struct {
	Profile           *Profile            `json:"profile"`
	Repositories      []ProfileRepository `json:"repositories"`
	Stats             ProfileStats        `json:"stats"`
	LanguageStats     LanguageStats       `json:"language_stats"`
	ActivityMetrics   ProfileActivity     `json:"activity_metrics"`
	TopRepositories   []ProfileRepository `json:"top_repositories"`
	AnalysisTimestamp time.Time           `json:"analysis_timestamp"`
}

// ProfileInsights are templated observations about a profile analysis.
type ProfileInsights struct {
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
	DeveloperType       string   `json:"developer_type"`
	ExperienceLevel     string   `json:"experience_level"`
	Recommendations     []string `json:"recommendations"`
}
