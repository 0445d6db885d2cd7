package main

import (
	"testing"
	"time"
)

func TestFallbackAssessment(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	analyzer := NewRepositoryAnalyzer(nil, &fakeCompletionClient{}, testLogger())
	analyzer.now = func() time.Time { return now }

	tests := []struct {
		name       string
		info       RepositoryInfo
		wantLang   string
		wantDocs   bool
		wantActive bool
	}{
		{
			name: "recently updated with wiki",
			info: RepositoryInfo{
				Language:  "Go",
				HasWiki:   true,
				UpdatedAt: now.Add(-10 * 24 * time.Hour).Format(time.RFC3339),
			},
			wantLang:   "Go",
			wantDocs:   true,
			wantActive: true,
		},
		{
			name: "stale repository",
			info: RepositoryInfo{
				Language:  "Rust",
				UpdatedAt: now.Add(-45 * 24 * time.Hour).Format(time.RFC3339),
			},
			wantLang:   "Rust",
			wantActive: false,
		},
		{
			name:     "missing metadata",
			info:     RepositoryInfo{},
			wantLang: "Unknown",
			// unparseable timestamp counts as inactive
			wantActive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzer.fallbackAssessment(&tt.info)

			if got.MainLanguage != tt.wantLang {
				t.Errorf("MainLanguage = %s, want %s", got.MainLanguage, tt.wantLang)
			}
			if got.HasGoodDocumentation != tt.wantDocs {
				t.Errorf("HasGoodDocumentation = %v, want %v", got.HasGoodDocumentation, tt.wantDocs)
			}
			if got.ActivelyMaintained != tt.wantActive {
				t.Errorf("ActivelyMaintained = %v, want %v", got.ActivelyMaintained, tt.wantActive)
			}
			if got.Complexity != 5 || got.ContributorFriendliness != 5 {
				t.Errorf("ratings = %d/%d, want neutral 5/5", got.Complexity, got.ContributorFriendliness)
			}
			if got.HasTests {
				t.Error("HasTests = true, metadata carries no test signal")
			}
			if len(got.TechStack) != 1 || got.TechStack[0] != tt.wantLang {
				t.Errorf("TechStack = %v, want [%s]", got.TechStack, tt.wantLang)
			}
		})
	}
}

func TestValidateRepositoryAssessment(t *testing.T) {
	info := &RepositoryInfo{Language: "Go"}

	t.Run("missing ratings rejected", func(t *testing.T) {
		a := &RepositoryAssessment{}
		if err := validateRepositoryAssessment(a, info); err == nil {
			t.Error("expected error for empty ratings")
		}
	})

	t.Run("ratings clamped and defaults filled", func(t *testing.T) {
		a := &RepositoryAssessment{Complexity: 99, ContributorFriendliness: -3}
		if err := validateRepositoryAssessment(a, info); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Complexity != 10 {
			t.Errorf("Complexity = %d, want clamped 10", a.Complexity)
		}
		if a.ContributorFriendliness != 1 {
			t.Errorf("ContributorFriendliness = %d, want clamped 1", a.ContributorFriendliness)
		}
		if a.MainLanguage != "Go" {
			t.Errorf("MainLanguage = %s, want filled from metadata", a.MainLanguage)
		}
		if len(a.TechStack) != 1 || a.TechStack[0] != "Go" {
			t.Errorf("TechStack = %v, want defaulted [Go]", a.TechStack)
		}
	})
}
