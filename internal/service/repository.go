package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/gitsphere/gitsphere-backend/internal/domain"
	"github.com/gitsphere/gitsphere-backend/internal/port"
)

const (
	contributorLimit = 20
	commitFetchLimit = 30
	issueFetchLimit  = 100
)

// RepositoryService aggregates a repository's GitHub data into a derived
// analysis.
type RepositoryService struct {
	client port.GitHubClient
}

// NewRepositoryService creates a repository service backed by the client.
func NewRepositoryService(client port.GitHubClient) *RepositoryService {
	return &RepositoryService{client: client}
}

// GetRepositoryInfo fetches the base repository record.
func (s *RepositoryService) GetRepositoryInfo(ctx context.Context, owner, repo, ghToken string) (*domain.RepositoryInfo, error) {
	var info domain.RepositoryInfo
	if err := s.client.Get(ctx, "/repos/"+owner+"/"+repo, nil, ghToken, &info); err != nil {
		return nil, fmt.Errorf("fetch repo %s/%s: %w", owner, repo, err)
	}
	return &info, nil
}

// GetLanguages fetches the byte-weighted language histogram.
func (s *RepositoryService) GetLanguages(ctx context.Context, owner, repo, ghToken string) (map[string]int, error) {
	langs := map[string]int{}
	if err := s.client.Get(ctx, "/repos/"+owner+"/"+repo+"/languages", nil, ghToken, &langs); err != nil {
		return nil, fmt.Errorf("fetch languages %s/%s: %w", owner, repo, err)
	}
	return langs, nil
}

// GetContributors fetches the top contributors, capped at 20.
func (s *RepositoryService) GetContributors(ctx context.Context, owner, repo, ghToken string) ([]domain.Contributor, error) {
	var contributors []domain.Contributor
	if err := s.client.Get(ctx, "/repos/"+owner+"/"+repo+"/contributors", nil, ghToken, &contributors); err != nil {
		return nil, fmt.Errorf("fetch contributors %s/%s: %w", owner, repo, err)
	}
	if len(contributors) > contributorLimit {
		contributors = contributors[:contributorLimit]
	}
	return contributors, nil
}

// GetRecentCommits fetches up to limit recent commits, flattened into the
// domain shape.
func (s *RepositoryService) GetRecentCommits(ctx context.Context, owner, repo, ghToken string, limit int) ([]domain.Commit, error) {
	q := url.Values{"per_page": {strconv.Itoa(limit)}}
	var raw []struct {
		SHA    string         `json:"sha"`
		Author map[string]any `json:"author"`
		Commit struct {
			Message string `json:"message"`
			Author  struct {
				Date time.Time `json:"date"`
			} `json:"author"`
		} `json:"commit"`
	}
	if err := s.client.Get(ctx, "/repos/"+owner+"/"+repo+"/commits", q, ghToken, &raw); err != nil {
		return nil, fmt.Errorf("fetch commits %s/%s: %w", owner, repo, err)
	}

	commits := make([]domain.Commit, 0, len(raw))
	for _, c := range raw {
		commits = append(commits, domain.Commit{
			SHA:     c.SHA,
			Author:  c.Author,
			Message: c.Commit.Message,
			Date:    c.Commit.Author.Date,
		})
	}
	return commits, nil
}

// GetIssues fetches up to 100 issues across all states.
func (s *RepositoryService) GetIssues(ctx context.Context, owner, repo, ghToken string) ([]domain.Issue, error) {
	q := url.Values{"state": {"all"}, "per_page": {strconv.Itoa(issueFetchLimit)}}
	var issues []domain.Issue
	if err := s.client.Get(ctx, "/repos/"+owner+"/"+repo+"/issues", q, ghToken, &issues); err != nil {
		return nil, fmt.Errorf("fetch issues %s/%s: %w", owner, repo, err)
	}
	return issues, nil
}

// GetFileContent fetches and decodes a single file via the contents API.
// Binary content is replaced with a size marker.
func (s *RepositoryService) GetFileContent(ctx context.Context, owner, repo, path, ghToken string) (string, error) {
	var file struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
		Size     int    `json:"size"`
	}
	if err := s.client.Get(ctx, "/repos/"+owner+"/"+repo+"/contents/"+path, nil, ghToken, &file); err != nil {
		return "", err
	}
	if file.Encoding != "base64" {
		return "", fmt.Errorf("%w: unexpected encoding %q for %s", port.ErrNotFound, file.Encoding, path)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	if !utf8.Valid(decoded) {
		return fmt.Sprintf("[Binary file - %d bytes]", file.Size), nil
	}
	return string(decoded), nil
}

// GetTree resolves the repository's recursive file tree. The primary path
// asks for the git tree of the default branch; a 404 there falls back to
// a contents-API walk, and an empty tree if the walk fails too. Non-404
// errors from the primary path propagate.
func (s *RepositoryService) GetTree(ctx context.Context, owner, repo, ghToken string) (*domain.Tree, error) {
	info, err := s.GetRepositoryInfo(ctx, owner, repo, ghToken)
	if err != nil {
		return nil, err
	}
	branch := info.DefaultBranch
	if branch == "" {
		branch = "main"
	}

	q := url.Values{"recursive": {"1"}}
	var tree domain.Tree
	err = s.client.Get(ctx, "/repos/"+owner+"/"+repo+"/git/trees/"+branch, q, ghToken, &tree)
	if err == nil {
		return &tree, nil
	}
	if !errors.Is(err, port.ErrNotFound) {
		return nil, err
	}

	fallback, walkErr := s.treeFromContents(ctx, owner, repo, "", ghToken)
	if walkErr != nil {
		slog.Warn("contents walk failed, using empty tree", "repo", owner+"/"+repo, "error", walkErr)
		return &domain.Tree{Entries: []domain.TreeEntry{}}, nil
	}
	return fallback, nil
}

// treeFromContents rebuilds a tree by walking the contents API depth
// first, one call per directory.
func (s *RepositoryService) treeFromContents(ctx context.Context, owner, repo, path, ghToken string) (*domain.Tree, error) {
	apiPath := "/repos/" + owner + "/" + repo + "/contents"
	if path != "" {
		apiPath += "/" + path
	}

	var items []struct {
		Path string `json:"path"`
		Type string `json:"type"`
		Size int    `json:"size"`
		URL  string `json:"url"`
	}
	if err := s.client.Get(ctx, apiPath, nil, ghToken, &items); err != nil {
		return nil, err
	}

	tree := &domain.Tree{Entries: []domain.TreeEntry{}}
	for _, item := range items {
		entry := domain.TreeEntry{
			Path: item.Path,
			Size: item.Size,
			URL:  item.URL,
		}
		if item.Type == "dir" {
			entry.Type = "tree"
			entry.Mode = "040000"
		} else {
			entry.Type = "blob"
			entry.Mode = "100644"
		}
		tree.Entries = append(tree.Entries, entry)

		if item.Type == "dir" {
			subtree, err := s.treeFromContents(ctx, owner, repo, item.Path, ghToken)
			if err != nil {
				return nil, err
			}
			tree.Entries = append(tree.Entries, subtree.Entries...)
		}
	}
	return tree, nil
}

// AnalyzeRepository runs all sub-fetches concurrently and folds them into
// a fresh analysis. Only the repository info fetch is fatal; every other
// sub-fetch degrades to an empty default. No failure cancels siblings.
func (s *RepositoryService) AnalyzeRepository(ctx context.Context, owner, repo, ghToken string) (*domain.RepositoryAnalysis, error) {
	var (
		info    *domain.RepositoryInfo
		infoErr error

		languages    map[string]int
		contributors []domain.Contributor
		commits      []domain.Commit
		issues       []domain.Issue
		tree         *domain.Tree
	)

	var g errgroup.Group
	g.Go(func() error {
		info, infoErr = s.GetRepositoryInfo(ctx, owner, repo, ghToken)
		return nil
	})
	g.Go(func() error {
		langs, err := s.GetLanguages(ctx, owner, repo, ghToken)
		if err == nil {
			languages = langs
		}
		return nil
	})
	g.Go(func() error {
		c, err := s.GetContributors(ctx, owner, repo, ghToken)
		if err == nil {
			contributors = c
		}
		return nil
	})
	g.Go(func() error {
		c, err := s.GetRecentCommits(ctx, owner, repo, ghToken, commitFetchLimit)
		if err == nil {
			commits = c
		}
		return nil
	})
	g.Go(func() error {
		i, err := s.GetIssues(ctx, owner, repo, ghToken)
		if err == nil {
			issues = i
		}
		return nil
	})
	g.Go(func() error {
		t, err := s.GetTree(ctx, owner, repo, ghToken)
		if err == nil {
			tree = t
		}
		return nil
	})
	_ = g.Wait()

	if infoErr != nil {
		return nil, fmt.Errorf("%w: repository %s/%s not found or inaccessible", port.ErrNotFound, owner, repo)
	}
	if languages == nil {
		languages = map[string]int{}
	}
	if tree == nil {
		tree = &domain.Tree{Entries: []domain.TreeEntry{}}
	}

	quality := analyzeCodeQuality(tree)
	activity := calculateRepoActivity(commits, contributors, issues)
	health := assessRepositoryHealth(info, activity, quality)

	open, closed := 0, 0
	for _, i := range issues {
		if i.State == "closed" {
			closed++
		} else {
			open++
		}
	}

	recent := commits
	if len(recent) > 10 {
		recent = recent[:10]
	}

	return &domain.RepositoryAnalysis{
		Repository:        info,
		Languages:         languages,
		Contributors:      contributors,
		RecentCommits:     recent,
		IssuesSummary:     map[string]int{"total": len(issues), "open": open, "closed": closed},
		CodeQuality:       quality,
		ActivityMetrics:   activity,
		HealthAssessment:  health,
		AnalysisTimestamp: time.Now().UTC(),
	}, nil
}

var (
	docExtensions  = []string{".md", ".rst", ".txt", ".doc"}
	codeExtensions = []string{".py", ".js", ".java", ".cpp", ".c", ".go", ".rs"}
)

// analyzeCodeQuality infers quality signals from the filenames present in
// the tree. All matching is case-insensitive substring matching.
func analyzeCodeQuality(tree *domain.Tree) domain.CodeQualityMetrics {
	totalLines := 0
	var names []string
	for _, entry := range tree.Entries {
		if entry.Type == "blob" {
			totalLines += entry.Size
		}
		names = append(names, strings.ToLower(entry.Path))
	}

	anyContains := func(subs ...string) bool {
		for _, name := range names {
			for _, sub := range subs {
				if strings.Contains(name, sub) {
					return true
				}
			}
		}
		return false
	}
	countSuffix := func(exts []string) int {
		n := 0
		for _, name := range names {
			for _, ext := range exts {
				if strings.HasSuffix(name, ext) {
					n++
					break
				}
			}
		}
		return n
	}

	docFiles := countSuffix(docExtensions)
	codeFiles := countSuffix(codeExtensions)
	denom := codeFiles
	if denom < 1 {
		denom = 1
	}

	testFiles := 0
	for _, name := range names {
		if strings.Contains(name, "test") || strings.Contains(name, "spec") {
			testFiles++
		}
	}

	return domain.CodeQualityMetrics{
		TotalLines:           totalLines,
		DocumentationCover:   round2(math.Min(float64(docFiles)/float64(denom)*100, 100)),
		TestCoverageEstimate: round2(math.Min(float64(testFiles)/float64(denom)*100, 100)),
		HasReadme:            anyContains("readme"),
		HasLicense:           anyContains("license", "licence"),
		HasContributingGuide: anyContains("contributing"),
		HasTests:             anyContains("test", "spec"),
	}
}

func calculateRepoActivity(commits []domain.Commit, contributors []domain.Contributor, issues []domain.Issue) domain.RepoActivity {
	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -recentWindowDays)

	recentCount := 0
	for _, c := range commits {
		if !c.Date.Before(cutoff) {
			recentCount++
		}
	}

	frequency := 0.0
	if len(commits) > 0 {
		oldest := commits[0].Date
		for _, c := range commits[1:] {
			if c.Date.Before(oldest) {
				oldest = c.Date
			}
		}
		days := int(now.Sub(oldest).Hours() / 24)
		if days < 1 {
			days = 1
		}
		frequency = float64(len(commits)) / float64(days)
	}

	closed := make([]domain.Issue, 0, len(issues))
	for _, i := range issues {
		if i.State == "closed" {
			closed = append(closed, i)
		}
	}

	total := len(issues)
	if total < 1 {
		total = 1
	}
	resolutionRate := float64(len(closed)) / float64(total) * 100

	var resolutionDays []float64
	for _, i := range closed {
		if i.ClosedAt != nil {
			resolutionDays = append(resolutionDays, i.ClosedAt.Sub(i.CreatedAt).Hours()/24)
		}
	}
	var avgResolution *float64
	if len(resolutionDays) > 0 {
		sum := 0.0
		for _, d := range resolutionDays {
			sum += d
		}
		v := round2(sum / float64(len(resolutionDays)))
		avgResolution = &v
	}

	return domain.RepoActivity{
		TotalCommits:               len(commits),
		RecentCommits30Days:        recentCount,
		CommitFrequency:            round3(frequency),
		ContributorCount:           len(contributors),
		IssueResolutionRate:        round2(resolutionRate),
		AvgIssueResolutionTimeDays: avgResolution,
	}
}

// assessRepositoryHealth combines three independently capped bands:
// activity (30), community (30) and quality (40).
func assessRepositoryHealth(info *domain.RepositoryInfo, activity domain.RepoActivity, quality domain.CodeQualityMetrics) domain.RepositoryHealth {
	activityScore := math.Min(activity.CommitFrequency*10, 30)
	communityScore := math.Min(float64(info.StargazersCount)/10+float64(activity.ContributorCount)*2, 30)

	qualityScore := 0.0
	if quality.HasReadme {
		qualityScore += 20
	}
	if quality.HasLicense {
		qualityScore += 10
	}
	if quality.HasTests {
		qualityScore += 5
	}
	if quality.HasContributingGuide {
		qualityScore += 5
	}

	status := domain.MaintenanceDeprecated
	switch days := int(time.Since(info.UpdatedAt).Hours() / 24); {
	case days <= 30:
		status = domain.MaintenanceActive
	case days <= 180:
		status = domain.MaintenanceMaintained
	case days <= 365:
		status = domain.MaintenanceInactive
	}

	return domain.RepositoryHealth{
		HealthScore:         round2(activityScore + communityScore + qualityScore),
		MaintenanceStatus:   status,
		CommunityEngagement: round2(communityScore * 100 / 30),
		CodeQualityScore:    round2(qualityScore * 100 / 40),
	}
}
