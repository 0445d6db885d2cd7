package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// ComplexityAssessment is produced fresh per issue and never persisted.
// Score is always clamped to [0,100] and Difficulty always agrees with the
// score thresholds, whichever path produced it.
type ComplexityAssessment struct {
	Score                 int      `json:"complexityScore"`
	Difficulty            string   `json:"difficulty"`
	EstimatedHours        string   `json:"estimatedHours"`
	SkillsRequired        []string `json:"skillsRequired"`
	LearningOpportunities []string `json:"learningOpportunities"`
	Confidence            float64  `json:"confidence"`
}

type RepoContext struct {
	Name     string
	Language string
}

type ComplexityAnalyzer struct {
	llm    CompletionClient
	logger *Logger
}

func NewComplexityAnalyzer(llm CompletionClient, logger *Logger) *ComplexityAnalyzer {
	return &ComplexityAnalyzer{llm: llm, logger: logger}
}

const complexitySystemPrompt = "You are an expert software engineering mentor who analyzes GitHub issues to help new contributors find appropriate first contributions. Respond with JSON only."

// AnalyzeIssueComplexity tries the completion API first and substitutes the
// deterministic fallback on any analysis failure. A missing credential is a
// ConfigError and propagates; the caller never sees AnalysisError.
func (a *ComplexityAnalyzer) AnalyzeIssueComplexity(ctx context.Context, issue IssueRecord, repoCtx *RepoContext) (*ComplexityAssessment, error) {
	if !a.llm.IsConfigured() {
		return nil, ConfigError{Field: "OPENAI_API_KEY", Message: "not configured"}
	}

	assessment, err := a.analyzeWithLLM(ctx, issue, repoCtx)
	if err != nil {
		a.logger.WithField("issue", issue.HTMLURL).Warn("ai analysis failed, using fallback: %v", err)
		fallback := FallbackComplexity(issue)
		return &fallback, nil
	}

	return assessment, nil
}

func (a *ComplexityAnalyzer) analyzeWithLLM(ctx context.Context, issue IssueRecord, repoCtx *RepoContext) (*ComplexityAssessment, error) {
	prompt := buildComplexityPrompt(issue, repoCtx)

	content, err := a.llm.Complete(ctx, complexitySystemPrompt, prompt, 0.3, 500)
	if err != nil {
		return nil, AnalysisError{Stage: "completion", Err: err}
	}

	var parsed ComplexityAssessment
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, AnalysisError{Stage: "parse", Err: err}
	}

	if err := validateAssessment(&parsed); err != nil {
		return nil, AnalysisError{Stage: "validate", Err: err}
	}

	return &parsed, nil
}

// validateAssessment treats the parsed completion as untrusted: clamp the
// score, force difficulty to agree with it, and fill defaults for anything
// the model left out.
func validateAssessment(a *ComplexityAssessment) error {
	if a.Score == 0 && a.Difficulty == "" {
		return fmt.Errorf("response missing score and difficulty")
	}

	a.Score = clampScore(a.Score)
	a.Difficulty = difficultyForScore(a.Score)

	if a.EstimatedHours == "" {
		a.EstimatedHours = estimatedHoursForScore(a.Score)
	}
	if a.SkillsRequired == nil {
		a.SkillsRequired = []string{}
	}
	if a.LearningOpportunities == nil {
		a.LearningOpportunities = []string{}
	}
	if a.Confidence <= 0 || a.Confidence > 1 {
		a.Confidence = 0.7
	}

	return nil
}

func buildComplexityPrompt(issue IssueRecord, repoCtx *RepoContext) string {
	var sb strings.Builder

	sb.WriteString("Analyze this GitHub issue for a new contributor:\n\n")
	if repoCtx != nil {
		fmt.Fprintf(&sb, "Repository: %s (%s)\n\n", repoCtx.Name, repoCtx.Language)
	}

	body := issue.Body
	if body == "" {
		body = "No description"
	}
	labels := strings.Join(issue.LabelNames(), ", ")
	if labels == "" {
		labels = "None"
	}

	fmt.Fprintf(&sb, "Issue Title: %s\n", issue.Title)
	fmt.Fprintf(&sb, "Issue Body: %s\n", body)
	fmt.Fprintf(&sb, "Labels: %s\n", labels)
	fmt.Fprintf(&sb, "Comments: %d\n\n", issue.Comments)

	sb.WriteString(`Provide analysis in this JSON format:
{
  "complexityScore": number (0-100, where 0=very easy, 100=very hard),
  "difficulty": "Easy" | "Medium" | "Hard",
  "estimatedHours": "1-2h" | "2-4h" | "4-8h" | "8+ hours",
  "skillsRequired": ["skill1", "skill2"],
  "learningOpportunities": ["opportunity1", "opportunity2"],
  "confidence": number (0.0-1.0)
}

Consider: code complexity, domain knowledge required, debugging difficulty, testing needs, and documentation requirements.`)

	return sb.String()
}

// FallbackComplexity is the deterministic heuristic scorer. Both paths
// satisfy the same shape and clamping invariants, so callers never need to
// know which one ran.
func FallbackComplexity(issue IssueRecord) ComplexityAssessment {
	score := BasicComplexityScore(issue)

	return ComplexityAssessment{
		Score:                 score,
		Difficulty:            difficultyForScore(score),
		EstimatedHours:        estimatedHoursForScore(score),
		SkillsRequired:        skillsFromLabels(issue.Labels),
		LearningOpportunities: []string{"General development", "Open source contribution"},
		Confidence:            0.6,
	}
}

// BasicComplexityScore applies the heuristic weights: baseline 50, adjusted
// by label signals, body length, fenced code blocks and comment count,
// clamped to [0,100].
func BasicComplexityScore(issue IssueRecord) int {
	score := 50

	if hasAnyLabelSubstring(issue.Labels, "easy", "beginner", "good first issue", "starter") {
		score -= 20
	}
	if hasAnyLabelSubstring(issue.Labels, "hard", "complex", "advanced") {
		score += 30
	}

	if len(issue.Body) < 200 {
		score -= 10
	}
	if len(issue.Body) > 1000 {
		score += 15
	}

	if strings.Contains(issue.Body, "```") {
		score += 10
	}

	if issue.Comments > 10 {
		score += 10
	}
	if issue.Comments < 3 {
		score -= 5
	}

	return clampScore(score)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func difficultyForScore(score int) string {
	switch {
	case score < 30:
		return DifficultyEasy
	case score < 60:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

func estimatedHoursForScore(score int) string {
	switch {
	case score < 30:
		return "1-3h"
	case score < 60:
		return "3-8h"
	default:
		return "8+ hours"
	}
}

// skillsFromLabels defaults the required skills to the issue labels, minus
// the beginner-marker labels themselves.
func skillsFromLabels(labels []IssueLabel) []string {
	skills := []string{}
	for _, label := range labels {
		name := strings.ToLower(label.Name)
		if strings.Contains(name, "good") || strings.Contains(name, "first") {
			continue
		}
		skills = append(skills, name)
	}
	return skills
}

func hasAnyLabelSubstring(labels []IssueLabel, substrings ...string) bool {
	for _, label := range labels {
		name := strings.ToLower(label.Name)
		for _, sub := range substrings {
			if strings.Contains(name, sub) {
				return true
			}
		}
	}
	return false
}
