package main

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeCompletionClient struct {
	configured bool
	response   string
	err        error
	lastPrompt string
}

func (f *fakeCompletionClient) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	f.lastPrompt = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeCompletionClient) IsConfigured() bool {
	return f.configured
}

func testLogger() *Logger {
	return NewLogger("error", "text")
}

func labels(names ...string) []IssueLabel {
	out := make([]IssueLabel, len(names))
	for i, name := range names {
		out[i] = IssueLabel{Name: name}
	}
	return out
}

func TestBasicComplexityScore(t *testing.T) {
	tests := []struct {
		name  string
		issue IssueRecord
		want  int
	}{
		{
			name: "good first issue with short body",
			issue: IssueRecord{
				Labels:   labels("good first issue"),
				Body:     strings.Repeat("x", 50),
				Comments: 1,
			},
			// 50 - 20 (beginner label) - 10 (short body) - 5 (few comments)
			want: 15,
		},
		{
			name: "hard issue clamps at 100",
			issue: IssueRecord{
				Labels:   labels("complex", "hard"),
				Body:     strings.Repeat("x", 1100) + "```code```",
				Comments: 12,
			},
			want: 100,
		},
		{
			name: "neutral medium body",
			issue: IssueRecord{
				Body:     strings.Repeat("x", 500),
				Comments: 5,
			},
			want: 50,
		},
		{
			name:  "empty issue",
			issue: IssueRecord{},
			// 50 - 10 (short body) - 5 (few comments)
			want: 35,
		},
		{
			name: "code block raises score",
			issue: IssueRecord{
				Body:     strings.Repeat("x", 500) + "```js```",
				Comments: 5,
			},
			want: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BasicComplexityScore(tt.issue)
			if got != tt.want {
				t.Errorf("BasicComplexityScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDifficultyForScore(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, DifficultyEasy},
		{29, DifficultyEasy},
		{30, DifficultyMedium},
		{59, DifficultyMedium},
		{60, DifficultyHard},
		{100, DifficultyHard},
	}

	for _, tt := range tests {
		if got := difficultyForScore(tt.score); got != tt.want {
			t.Errorf("difficultyForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestFallbackComplexity(t *testing.T) {
	issue := IssueRecord{
		Labels:   labels("good first issue", "bug", "frontend"),
		Body:     "Fix the button color",
		Comments: 1,
	}

	got := FallbackComplexity(issue)

	if got.Score != 15 {
		t.Errorf("Score = %d, want 15", got.Score)
	}
	if got.Difficulty != DifficultyEasy {
		t.Errorf("Difficulty = %s, want %s", got.Difficulty, DifficultyEasy)
	}
	if got.EstimatedHours != "1-3h" {
		t.Errorf("EstimatedHours = %s, want 1-3h", got.EstimatedHours)
	}
	if got.Confidence != 0.6 {
		t.Errorf("Confidence = %v, want 0.6", got.Confidence)
	}
	// beginner-marker labels are filtered out of the skill list
	wantSkills := []string{"bug", "frontend"}
	if len(got.SkillsRequired) != len(wantSkills) {
		t.Fatalf("SkillsRequired = %v, want %v", got.SkillsRequired, wantSkills)
	}
	for i, skill := range wantSkills {
		if got.SkillsRequired[i] != skill {
			t.Errorf("SkillsRequired[%d] = %s, want %s", i, got.SkillsRequired[i], skill)
		}
	}
	if len(got.LearningOpportunities) != 2 {
		t.Errorf("LearningOpportunities = %v, want two defaults", got.LearningOpportunities)
	}
}

func TestAnalyzeIssueComplexityNotConfigured(t *testing.T) {
	analyzer := NewComplexityAnalyzer(&fakeCompletionClient{configured: false}, testLogger())

	_, err := analyzer.AnalyzeIssueComplexity(context.Background(), IssueRecord{Title: "t"}, nil)
	if err == nil {
		t.Fatal("expected error for unconfigured client")
	}
	var cfgErr ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError, got %T", err)
	}
}

func TestAnalyzeIssueComplexityLLMSuccess(t *testing.T) {
	llm := &fakeCompletionClient{
		configured: true,
		response:   `{"complexityScore": 45, "difficulty": "Hard", "estimatedHours": "2-4h", "skillsRequired": ["Go"], "learningOpportunities": ["API design"], "confidence": 0.9}`,
	}
	analyzer := NewComplexityAnalyzer(llm, testLogger())

	got, err := analyzer.AnalyzeIssueComplexity(context.Background(), IssueRecord{Title: "t"}, &RepoContext{Name: "o/r", Language: "Go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Score != 45 {
		t.Errorf("Score = %d, want 45", got.Score)
	}
	// difficulty is forced to agree with the score even when the model says otherwise
	if got.Difficulty != DifficultyMedium {
		t.Errorf("Difficulty = %s, want %s", got.Difficulty, DifficultyMedium)
	}
	if got.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", got.Confidence)
	}
	if !strings.Contains(llm.lastPrompt, "o/r") {
		t.Error("prompt should include the repository context")
	}
}

func TestAnalyzeIssueComplexityFallsBack(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeCompletionClient
	}{
		{
			name: "completion error",
			llm:  &fakeCompletionClient{configured: true, err: errors.New("rate limited")},
		},
		{
			name: "invalid JSON",
			llm:  &fakeCompletionClient{configured: true, response: "sorry, I cannot help"},
		},
		{
			name: "empty payload",
			llm:  &fakeCompletionClient{configured: true, response: "{}"},
		},
	}

	issue := IssueRecord{
		Labels:   labels("good first issue"),
		Body:     "short",
		Comments: 0,
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := NewComplexityAnalyzer(tt.llm, testLogger())

			got, err := analyzer.AnalyzeIssueComplexity(context.Background(), issue, nil)
			if err != nil {
				t.Fatalf("fallback should swallow the analysis error, got %v", err)
			}
			if got.Confidence != 0.6 {
				t.Errorf("Confidence = %v, want fallback 0.6", got.Confidence)
			}
			if got.Score != 15 {
				t.Errorf("Score = %d, want heuristic 15", got.Score)
			}
		})
	}
}

func TestValidateAssessmentClamps(t *testing.T) {
	a := &ComplexityAssessment{Score: 250, Difficulty: "Easy"}
	if err := validateAssessment(a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Score != 100 {
		t.Errorf("Score = %d, want clamped 100", a.Score)
	}
	if a.Difficulty != DifficultyHard {
		t.Errorf("Difficulty = %s, want %s", a.Difficulty, DifficultyHard)
	}
	if a.EstimatedHours != "8+ hours" {
		t.Errorf("EstimatedHours = %s, want default for hard", a.EstimatedHours)
	}
	if a.Confidence != 0.7 {
		t.Errorf("Confidence = %v, want default 0.7", a.Confidence)
	}
}
