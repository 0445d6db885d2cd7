package main

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/go-github/v58/github"
	"golang.org/x/oauth2"
)

type IssueLabel struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// IssueRecord is the flat issue shape passed through the pipeline. The record
// itself is immutable once fetched; downstream stages annotate Complexity and
// PersonalizedScore.
type IssueRecord struct {
	Title         string       `json:"title"`
	Body          string       `json:"body"`
	Labels        []IssueLabel `json:"labels"`
	Comments      int          `json:"comments"`
	HTMLURL       string       `json:"html_url"`
	RepositoryURL string       `json:"repository_url"`
	Number        int          `json:"number"`
	Language      string       `json:"language,omitempty"`

	Complexity        *ComplexityAssessment `json:"complexity,omitempty"`
	PersonalizedScore float64               `json:"personalized_score,omitempty"`
}

func (r IssueRecord) LabelNames() []string {
	names := make([]string, len(r.Labels))
	for i, label := range r.Labels {
		names[i] = label.Name
	}
	return names
}

func (r IssueRecord) RepositoryName() string {
	owner, repo, err := SplitRepositoryURL(r.RepositoryURL)
	if err != nil {
		return ""
	}
	return owner + "/" + repo
}

type IssueSearchResult struct {
	Issues     []IssueRecord
	TotalCount int
}

type RepositoryGroup struct {
	Owner         string
	Repo          string
	RepositoryURL string
	Issues        []IssueRecord
}

type RepositoryGroupResult struct {
	Repositories []RepositoryGroup
	TotalCount   int
}

type RepositoryInfo struct {
	Name        string
	FullName    string
	Description string
	HTMLURL     string
	Language    string
	Stars       int
	OpenIssues  int
	UpdatedAt   string
	HasWiki     bool
	HasIssues   bool
}

var goodFirstIssueLabels = []string{
	"good first issue", "good-first-issue", "beginner", "easy", "starter",
}

type GitHubService struct {
	client *github.Client
	logger *Logger
}

func NewGitHubService(ctx context.Context, token string, logger *Logger) *GitHubService {
	var client *github.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = github.NewClient(oauth2.NewClient(ctx, ts))
	} else {
		client = github.NewClient(nil)
	}

	return &GitHubService{client: client, logger: logger}
}

// BuildGoodFirstIssueQuery builds the repository-scoped search query for
// beginner-labelled open issues.
func BuildGoodFirstIssueQuery(owner, repo string) string {
	labelTerms := make([]string, len(goodFirstIssueLabels))
	for i, label := range goodFirstIssueLabels {
		labelTerms[i] = fmt.Sprintf("label:%q", label)
	}
	return fmt.Sprintf("repo:%s/%s is:issue is:open (%s)", owner, repo, strings.Join(labelTerms, " OR "))
}

func BuildPopularIssueQuery(language string) string {
	query := `label:"good first issue" is:issue is:open`
	if language != "" {
		query = fmt.Sprintf("language:%s %s", language, query)
	}
	return query
}

func (s *GitHubService) FetchGoodFirstIssues(ctx context.Context, owner, repo string, page, perPage int) (*IssueSearchResult, error) {
	query := BuildGoodFirstIssueQuery(owner, repo)
	opts := &github.SearchOptions{
		Sort:  "created",
		Order: "desc",
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	result, resp, err := s.client.Search.Issues(ctx, query, opts)
	if err != nil {
		return nil, searchError(resp, err)
	}

	issues := make([]IssueRecord, 0, len(result.Issues))
	for _, issue := range result.Issues {
		issues = append(issues, toIssueRecord(issue))
	}

	return &IssueSearchResult{
		Issues:     issues,
		TotalCount: result.GetTotal(),
	}, nil
}

// FetchPopularReposWithGoodFirstIssues performs a global search (optionally
// language-scoped), groups results by repository and returns at most perPage
// grouped repositories.
func (s *GitHubService) FetchPopularReposWithGoodFirstIssues(ctx context.Context, language string, page, perPage int) (*RepositoryGroupResult, error) {
	query := BuildPopularIssueQuery(language)
	opts := &github.SearchOptions{
		Sort:  "updated",
		Order: "desc",
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: perPage * 2,
		},
	}

	result, resp, err := s.client.Search.Issues(ctx, query, opts)
	if err != nil {
		return nil, searchError(resp, err)
	}

	issues := make([]IssueRecord, 0, len(result.Issues))
	for _, issue := range result.Issues {
		issues = append(issues, toIssueRecord(issue))
	}

	return &RepositoryGroupResult{
		Repositories: GroupIssuesByRepository(issues, perPage),
		TotalCount:   result.GetTotal(),
	}, nil
}

// GroupIssuesByRepository groups issues by their repository URL, preserving
// first-seen order and deduplicating repositories. At most maxRepos groups
// are returned.
func GroupIssuesByRepository(issues []IssueRecord, maxRepos int) []RepositoryGroup {
	groups := make(map[string]*RepositoryGroup)
	var order []string

	for _, issue := range issues {
		key := issue.RepositoryURL
		group, ok := groups[key]
		if !ok {
			owner, repo, err := SplitRepositoryURL(key)
			if err != nil {
				continue
			}
			group = &RepositoryGroup{
				Owner:         owner,
				Repo:          repo,
				RepositoryURL: key,
			}
			groups[key] = group
			order = append(order, key)
		}
		group.Issues = append(group.Issues, issue)
	}

	if maxRepos > 0 && len(order) > maxRepos {
		order = order[:maxRepos]
	}

	result := make([]RepositoryGroup, 0, len(order))
	for _, key := range order {
		result = append(result, *groups[key])
	}
	return result
}

func (s *GitHubService) GetIssue(ctx context.Context, owner, repo string, number int) (*IssueRecord, error) {
	issue, resp, err := s.client.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, searchError(resp, err)
	}
	record := toIssueRecord(issue)
	return &record, nil
}

func (s *GitHubService) GetRepository(ctx context.Context, owner, repo string) (*RepositoryInfo, error) {
	repository, resp, err := s.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, searchError(resp, err)
	}

	return &RepositoryInfo{
		Name:        repository.GetName(),
		FullName:    repository.GetFullName(),
		Description: repository.GetDescription(),
		HTMLURL:     repository.GetHTMLURL(),
		Language:    repository.GetLanguage(),
		Stars:       repository.GetStargazersCount(),
		OpenIssues:  repository.GetOpenIssuesCount(),
		UpdatedAt:   repository.GetUpdatedAt().Format("2006-01-02T15:04:05Z07:00"),
		HasWiki:     repository.GetHasWiki(),
		HasIssues:   repository.GetHasIssues(),
	}, nil
}

func (s *GitHubService) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	readme, resp, err := s.client.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		return "", searchError(resp, err)
	}
	content, err := readme.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode readme: %w", err)
	}
	return content, nil
}

func (s *GitHubService) GetLanguages(ctx context.Context, owner, repo string) (map[string]int, error) {
	languages, resp, err := s.client.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		return nil, searchError(resp, err)
	}
	return languages, nil
}

func toIssueRecord(issue *github.Issue) IssueRecord {
	labels := make([]IssueLabel, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, IssueLabel{
			Name:  label.GetName(),
			Color: label.GetColor(),
		})
	}

	return IssueRecord{
		Title:         issue.GetTitle(),
		Body:          issue.GetBody(),
		Labels:        labels,
		Comments:      issue.GetComments(),
		HTMLURL:       issue.GetHTMLURL(),
		RepositoryURL: issue.GetRepositoryURL(),
		Number:        issue.GetNumber(),
	}
}

func searchError(resp *github.Response, err error) error {
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if ghErr, ok := err.(*github.ErrorResponse); ok {
		return APIError{StatusCode: status, Message: ghErr.Message}
	}
	if status != 0 {
		return APIError{StatusCode: status, Message: err.Error()}
	}
	return fmt.Errorf("github request failed: %w", err)
}

var issueURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/issues/(\d+)`)

// ParseIssueURL extracts owner, repo and issue number from a GitHub issue URL.
func ParseIssueURL(url string) (owner, repo string, number int, err error) {
	matches := issueURLPattern.FindStringSubmatch(url)
	if len(matches) != 4 {
		return "", "", 0, fmt.Errorf("invalid GitHub issue URL: %s", url)
	}
	fmt.Sscanf(matches[3], "%d", &number)
	return matches[1], matches[2], number, nil
}

var (
	repoURLPattern = regexp.MustCompile(`github\.com(?:/repos)?/([^/]+)/([^/]+)`)
	ownerRepoSlug  = regexp.MustCompile(`^([^/\s]+)/([^/\s]+)$`)
)

// SplitRepositoryURL extracts owner and repo from an API repository URL, an
// HTML repository URL, or a bare owner/name slug.
func SplitRepositoryURL(url string) (owner, repo string, err error) {
	matches := repoURLPattern.FindStringSubmatch(url)
	if len(matches) != 3 {
		matches = ownerRepoSlug.FindStringSubmatch(url)
	}
	if len(matches) != 3 {
		return "", "", fmt.Errorf("invalid GitHub repository URL: %s", url)
	}
	repo = strings.TrimSuffix(matches[2], "/")
	return matches[1], repo, nil
}
