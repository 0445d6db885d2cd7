package main

import (
	"context"
	"testing"
	"time"
)

type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *memStore) Set(ctx context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func newTestProfileService(now time.Time) *ProfileService {
	svc := NewProfileService(newMemStore(), testLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func TestGetProfileDefaults(t *testing.T) {
	svc := newTestProfileService(time.Now())

	profile, err := svc.GetProfile(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if profile.Preferences.DifficultyPreference != DifficultyEasy {
		t.Errorf("DifficultyPreference = %s, want %s", profile.Preferences.DifficultyPreference, DifficultyEasy)
	}
	if profile.Preferences.TimeAvailability != "2-4h" {
		t.Errorf("TimeAvailability = %s, want 2-4h", profile.Preferences.TimeAvailability)
	}
	if profile.TotalContributions != 0 {
		t.Errorf("TotalContributions = %d, want 0", profile.TotalContributions)
	}
	if len(profile.History) != 0 {
		t.Errorf("History = %v, want empty", profile.History)
	}
}

func TestUpdatePreferencesPartial(t *testing.T) {
	svc := newTestProfileService(time.Now())
	ctx := context.Background()

	langs := []string{"Go", "Python"}
	if _, err := svc.UpdatePreferences(ctx, PreferencesUpdate{PreferredLanguages: &langs}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	difficulty := "Mixed"
	profile, err := svc.UpdatePreferences(ctx, PreferencesUpdate{DifficultyPreference: &difficulty})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(profile.Preferences.PreferredLanguages) != 2 {
		t.Errorf("PreferredLanguages = %v, untouched fields must survive later updates", profile.Preferences.PreferredLanguages)
	}
	if profile.Preferences.DifficultyPreference != "Mixed" {
		t.Errorf("DifficultyPreference = %s, want Mixed", profile.Preferences.DifficultyPreference)
	}
	// unset field keeps the default
	if profile.Preferences.TimeAvailability != "2-4h" {
		t.Errorf("TimeAvailability = %s, want default 2-4h", profile.Preferences.TimeAvailability)
	}
}

func TestUpdateSkillKeepsLevelOnExperienceGain(t *testing.T) {
	svc := newTestProfileService(time.Now())
	ctx := context.Background()

	if _, err := svc.UpdateSkill(ctx, "Go", 4, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile, err := svc.UpdateSkill(ctx, "Go", 0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(profile.Skills) != 1 {
		t.Fatalf("Skills = %v, want a single entry", profile.Skills)
	}
	if profile.Skills[0].Level != 4 {
		t.Errorf("Level = %d, experience-only update must not reset the level", profile.Skills[0].Level)
	}
	if profile.Skills[0].Experience != 15 {
		t.Errorf("Experience = %v, want accumulated 15", profile.Skills[0].Experience)
	}
}

func TestAddContribution(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestProfileService(now)
	ctx := context.Background()

	profile, err := svc.AddContribution(ctx, ContributionRecord{
		IssueURL:   "https://github.com/o/r/issues/1",
		Difficulty: DifficultyEasy,
		TimeSpent:  60,
		Completed:  true,
		SkillsUsed: []string{"Go"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if profile.TotalContributions != 1 {
		t.Errorf("TotalContributions = %d, want 1", profile.TotalContributions)
	}
	if profile.CompletionRate != 1 {
		t.Errorf("CompletionRate = %v, want 1", profile.CompletionRate)
	}
	if !profile.History[0].Date.Equal(now) {
		t.Errorf("Date = %v, want stamped %v", profile.History[0].Date, now)
	}
	if profile.Skills[0].Experience != 60 {
		t.Errorf("Experience = %v, completed work credits full time", profile.Skills[0].Experience)
	}

	profile, err = svc.AddContribution(ctx, ContributionRecord{
		IssueURL:   "https://github.com/o/r/issues/2",
		Difficulty: DifficultyEasy,
		TimeSpent:  60,
		Completed:  false,
		SkillsUsed: []string{"Go"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if profile.TotalContributions != 2 {
		t.Errorf("TotalContributions = %d, history must be append-only", profile.TotalContributions)
	}
	if profile.CompletionRate != 0.5 {
		t.Errorf("CompletionRate = %v, want 0.5", profile.CompletionRate)
	}
	if profile.Skills[0].Experience != 90 {
		t.Errorf("Experience = %v, abandoned work credits half time", profile.Skills[0].Experience)
	}
}

func TestPersonalizedScore(t *testing.T) {
	baseProfile := func() *UserProfile {
		p := defaultProfile(time.Now())
		p.Preferences.PreferredLanguages = nil
		p.Preferences.DifficultyPreference = DifficultyMedium
		return p
	}

	tests := []struct {
		name   string
		issue  IssueRecord
		mutate func(*UserProfile)
		want   float64
	}{
		{
			name:   "neutral issue scores baseline plus difficulty match",
			issue:  IssueRecord{Title: "t"},
			mutate: func(p *UserProfile) {},
			// inferred difficulty Medium matches preference
			want: 65,
		},
		{
			name:  "language match adds 20",
			issue: IssueRecord{Title: "t", Language: "Go"},
			mutate: func(p *UserProfile) {
				p.Preferences.PreferredLanguages = []string{"go"}
			},
			want: 85,
		},
		{
			name:  "easy preference matches beginner-labeled issue",
			issue: IssueRecord{Title: "t", Labels: labels("good first issue")},
			mutate: func(p *UserProfile) {
				p.Preferences.DifficultyPreference = DifficultyEasy
			},
			want: 65,
		},
		{
			name:  "mixed preference matches any difficulty",
			issue: IssueRecord{Title: "t", Labels: labels("hard")},
			mutate: func(p *UserProfile) {
				p.Preferences.DifficultyPreference = "Mixed"
			},
			want: 65,
		},
		{
			name:  "strong skill adds 10, weak adds 5",
			issue: IssueRecord{Title: "t", Labels: labels("frontend", "bug")},
			mutate: func(p *UserProfile) {
				p.Skills = []SkillLevel{
					{Skill: "Frontend Development", Level: 4},
					{Skill: "Debugging", Level: 2},
				}
			},
			want: 80,
		},
		{
			name:  "learning goal substring match adds 15",
			issue: IssueRecord{Title: "Improve accessibility of forms", Body: ""},
			mutate: func(p *UserProfile) {
				p.Preferences.LearningGoals = []string{"Accessibility"}
			},
			want: 80,
		},
		{
			name:  "history success rate adds up to 10",
			issue: IssueRecord{Title: "t"},
			mutate: func(p *UserProfile) {
				p.History = []ContributionRecord{
					{Difficulty: DifficultyMedium, Completed: true},
					{Difficulty: DifficultyMedium, Completed: false},
				}
			},
			// 50 + 15 difficulty + 0.5*10 history
			want: 70,
		},
		{
			name:  "score clamps at 100",
			issue: IssueRecord{Title: "Add accessibility and testing docs", Language: "Go", Labels: labels("frontend", "backend", "test", "doc", "bug")},
			mutate: func(p *UserProfile) {
				p.Preferences.PreferredLanguages = []string{"Go"}
				p.Preferences.DifficultyPreference = "Mixed"
				p.Preferences.LearningGoals = []string{"accessibility", "testing", "docs"}
				p.Skills = []SkillLevel{
					{Skill: "Frontend Development", Level: 5},
					{Skill: "Backend Development", Level: 5},
					{Skill: "Testing", Level: 5},
					{Skill: "Documentation", Level: 5},
					{Skill: "Debugging", Level: 5},
				}
			},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := baseProfile()
			tt.mutate(profile)

			got := PersonalizedScore(tt.issue, profile)
			if got != tt.want {
				t.Errorf("PersonalizedScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetPersonalizedRecommendationsStableOrder(t *testing.T) {
	svc := newTestProfileService(time.Now())

	issues := []IssueRecord{
		{Title: "first", Number: 1},
		{Title: "second", Number: 2},
		{Title: "third", Number: 3, Labels: labels("hard")},
	}

	ranked, err := svc.GetPersonalizedRecommendations(context.Background(), issues)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ranked) != 3 {
		t.Fatalf("len = %d, want 3", len(ranked))
	}
	// equal-score issues keep their fetch order
	if ranked[0].Number != 1 || ranked[1].Number != 2 {
		t.Errorf("order = %d,%d, ties must preserve input order", ranked[0].Number, ranked[1].Number)
	}
	if ranked[2].Number != 3 {
		t.Errorf("hard issue should sort last for an Easy-preference profile, got %d", ranked[2].Number)
	}
	// input slice is not mutated
	if issues[0].PersonalizedScore != 0 {
		t.Error("input slice must not be annotated in place")
	}
}

func TestInferIssueDifficulty(t *testing.T) {
	tests := []struct {
		name   string
		labels []IssueLabel
		want   string
	}{
		{"beginner label", labels("good first issue"), DifficultyEasy},
		{"no labels", nil, DifficultyMedium},
		{"hard label", labels("advanced"), DifficultyHard},
		{"both signals net out hard", labels("beginner", "complex"), DifficultyHard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inferIssueDifficulty(IssueRecord{Labels: tt.labels})
			if got != tt.want {
				t.Errorf("inferIssueDifficulty() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGetLearningPath(t *testing.T) {
	svc := newTestProfileService(time.Now())
	ctx := context.Background()

	if _, err := svc.UpdateSkill(ctx, "Testing", 3, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := svc.GetLearningPath(ctx, []string{"Testing", "Documentation"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}

	if entries[0].Gap != 2 {
		t.Errorf("Gap = %d, want 2 for level 3", entries[0].Gap)
	}
	if entries[0].EstimatedTime != "20-40 hours" {
		t.Errorf("EstimatedTime = %s, want 20-40 hours", entries[0].EstimatedTime)
	}
	if entries[1].CurrentLevel != 0 || entries[1].Gap != 5 {
		t.Errorf("unknown skill should start from level 0, got %+v", entries[1])
	}
	if len(entries[0].SuggestedIssueTypes) == 0 {
		t.Error("expected issue type suggestions")
	}
}
