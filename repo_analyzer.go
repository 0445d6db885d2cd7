package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RepositoryAssessment is ephemeral and recomputed per request.
type RepositoryAssessment struct {
	TechStack               []string `json:"techStack"`
	Complexity              int      `json:"complexity"`
	ContributorFriendliness int      `json:"contributorFriendliness"`
	MainLanguage            string   `json:"mainLanguage"`
	HasGoodDocumentation    bool     `json:"hasGoodDocumentation"`
	HasTests                bool     `json:"hasTests"`
	ActivelyMaintained      bool     `json:"activelyMaintained"`
}

type RepositoryAnalyzer struct {
	github *GitHubService
	llm    CompletionClient
	logger *Logger
	now    func() time.Time
}

func NewRepositoryAnalyzer(gh *GitHubService, llm CompletionClient, logger *Logger) *RepositoryAnalyzer {
	return &RepositoryAnalyzer{
		github: gh,
		llm:    llm,
		logger: logger,
		now:    time.Now,
	}
}

const repositorySystemPrompt = "You are an expert at analyzing software repositories to assess their suitability for new contributors. Respond with JSON only."

// AnalyzeRepository rates a repository for contributor friendliness. Any
// failure after the metadata fetch falls back to a deterministic assessment
// derived from the metadata alone.
func (a *RepositoryAnalyzer) AnalyzeRepository(ctx context.Context, owner, repo string) (*RepositoryAssessment, error) {
	if !a.llm.IsConfigured() {
		return nil, ConfigError{Field: "OPENAI_API_KEY", Message: "not configured"}
	}

	info, err := a.github.GetRepository(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	assessment, err := a.analyzeWithLLM(ctx, info, owner, repo)
	if err != nil {
		a.logger.WithField("repo", owner+"/"+repo).Warn("repository analysis failed, using fallback: %v", err)
		fallback := a.fallbackAssessment(info)
		return &fallback, nil
	}

	return assessment, nil
}

func (a *RepositoryAnalyzer) analyzeWithLLM(ctx context.Context, info *RepositoryInfo, owner, repo string) (*RepositoryAssessment, error) {
	readme, err := a.github.GetReadme(ctx, owner, repo)
	if err != nil {
		readme = ""
	}

	languages, err := a.github.GetLanguages(ctx, owner, repo)
	if err != nil {
		languages = map[string]int{}
	}

	prompt := buildRepositoryPrompt(info, readme, languages)

	content, err := a.llm.Complete(ctx, repositorySystemPrompt, prompt, 0.3, 400)
	if err != nil {
		return nil, AnalysisError{Stage: "completion", Err: err}
	}

	var parsed RepositoryAssessment
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, AnalysisError{Stage: "parse", Err: err}
	}

	if err := validateRepositoryAssessment(&parsed, info); err != nil {
		return nil, AnalysisError{Stage: "validate", Err: err}
	}

	return &parsed, nil
}

func validateRepositoryAssessment(a *RepositoryAssessment, info *RepositoryInfo) error {
	if a.Complexity == 0 && a.ContributorFriendliness == 0 {
		return fmt.Errorf("response missing ratings")
	}

	a.Complexity = clampRating(a.Complexity)
	a.ContributorFriendliness = clampRating(a.ContributorFriendliness)

	if len(a.TechStack) == 0 {
		a.TechStack = []string{languageOrUnknown(info.Language)}
	}
	if a.MainLanguage == "" {
		a.MainLanguage = languageOrUnknown(info.Language)
	}

	return nil
}

func clampRating(rating int) int {
	if rating < 1 {
		return 1
	}
	if rating > 10 {
		return 10
	}
	return rating
}

func buildRepositoryPrompt(info *RepositoryInfo, readme string, languages map[string]int) string {
	description := info.Description
	if description == "" {
		description = "No description"
	}

	languageNames := make([]string, 0, len(languages))
	for name := range languages {
		languageNames = append(languageNames, name)
	}

	if len(readme) > 1000 {
		readme = readme[:1000]
	}

	var sb strings.Builder
	sb.WriteString("Analyze this repository for new contributor friendliness:\n\n")
	fmt.Fprintf(&sb, "Repository: %s\n", info.Name)
	fmt.Fprintf(&sb, "Description: %s\n", description)
	fmt.Fprintf(&sb, "Stars: %d\n", info.Stars)
	fmt.Fprintf(&sb, "Language: %s\n", info.Language)
	fmt.Fprintf(&sb, "Languages: %s\n", strings.Join(languageNames, ", "))
	fmt.Fprintf(&sb, "Has Issues: %t\n", info.HasIssues)
	fmt.Fprintf(&sb, "Open Issues: %d\n", info.OpenIssues)
	fmt.Fprintf(&sb, "Last Updated: %s\n\n", info.UpdatedAt)
	fmt.Fprintf(&sb, "README (first 1000 chars):\n%s\n\n", readme)

	sb.WriteString(`Provide analysis in this JSON format:
{
  "techStack": ["tech1", "tech2"],
  "complexity": number (1-10, where 1=very simple, 10=very complex),
  "contributorFriendliness": number (1-10, where 1=not friendly, 10=very friendly),
  "mainLanguage": "string",
  "hasGoodDocumentation": boolean,
  "hasTests": boolean,
  "activelyMaintained": boolean
}

Consider: documentation quality, contributing guidelines, issue templates, test coverage, code structure, and maintainer responsiveness.`)

	return sb.String()
}

// fallbackAssessment derives a neutral assessment from repository metadata
// only. There is no reliable signal for tests, and activity is judged by a
// 30-day update window.
func (a *RepositoryAnalyzer) fallbackAssessment(info *RepositoryInfo) RepositoryAssessment {
	active := false
	if updatedAt, err := time.Parse(time.RFC3339, info.UpdatedAt); err == nil {
		active = a.now().Sub(updatedAt) <= 30*24*time.Hour
	}

	return RepositoryAssessment{
		TechStack:               []string{languageOrUnknown(info.Language)},
		Complexity:              5,
		ContributorFriendliness: 5,
		MainLanguage:            languageOrUnknown(info.Language),
		HasGoodDocumentation:    info.HasWiki,
		HasTests:                false,
		ActivelyMaintained:      active,
	}
}

func languageOrUnknown(language string) string {
	if language == "" {
		return "Unknown"
	}
	return language
}
