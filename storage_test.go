package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	_, found, err := store.Get(ctx, StorageKeyProfile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("empty store should report not found")
	}

	want := []byte(`{"hello":"world"}`)
	if err := store.Set(ctx, StorageKeyProfile, want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, found, err := store.Get(ctx, StorageKeyProfile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected value after Set")
	}
	if string(got) != string(want) {
		t.Errorf("got %s, want %s", got, want)
	}

	// overwrite wins
	next := []byte(`{"hello":"again"}`)
	if err := store.Set(ctx, StorageKeyProfile, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _, _ = store.Get(ctx, StorageKeyProfile)
	if string(got) != string(next) {
		t.Errorf("got %s, want overwritten %s", got, next)
	}
}

func TestFileStoreRejectsBadKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	badKeys := []string{"", "../escape", "a/b", "key with spaces"}
	for _, key := range badKeys {
		if err := store.Set(ctx, key, []byte("x")); err == nil {
			t.Errorf("Set(%q) expected error", key)
		}
		if _, _, err := store.Get(ctx, key); err == nil {
			t.Errorf("Get(%q) expected error", key)
		}
	}
}

func TestProfileSerializationRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 123000000, time.UTC)
	profile := UserProfile{
		Skills: []SkillLevel{
			{Skill: "Go", Level: 3, Experience: 12.5, LastUpdated: now},
		},
		Preferences: Preferences{
			PreferredLanguages:   []string{"Go"},
			DifficultyPreference: DifficultyEasy,
			TimeAvailability:     "2-4h",
			LearningGoals:        []string{"testing"},
		},
		History: []ContributionRecord{
			{IssueURL: "https://github.com/o/r/issues/1", Difficulty: DifficultyEasy, TimeSpent: 30, Completed: true, Date: now},
		},
		CreatedAt:          now,
		LastUpdated:        now,
		TotalContributions: 1,
		CompletionRate:     1,
	}

	data, err := json.Marshal(profile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded UserProfile
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !decoded.CreatedAt.Equal(profile.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", decoded.CreatedAt, profile.CreatedAt)
	}
	if !decoded.History[0].Date.Equal(now) {
		t.Errorf("Date = %v, timestamps must survive to the millisecond", decoded.History[0].Date)
	}
	if decoded.Skills[0].Experience != 12.5 {
		t.Errorf("Experience = %v, want 12.5", decoded.Skills[0].Experience)
	}
	if decoded.CompletionRate != 1 {
		t.Errorf("CompletionRate = %v, want 1", decoded.CompletionRate)
	}
}

func TestSessionSerializationRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	session := ContributionSession{
		IssueURL:       "https://github.com/o/r/issues/1",
		RepositoryName: "o/r",
		RepositoryURL:  "https://github.com/o/r",
		StartTime:      now,
		CurrentStep:    2,
		Steps:          FallbackSteps(),
		Progress:       100.0 / 3,
		MentorNotes:    []string{`Completed "Fork and Clone Repository" in 10 minutes`},
	}

	data, err := json.Marshal([]ContributionSession{session})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded []ContributionSession
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(decoded) != 1 {
		t.Fatalf("len = %d, want 1", len(decoded))
	}
	got := decoded[0]
	if !got.StartTime.Equal(now) {
		t.Errorf("StartTime = %v, want %v", got.StartTime, now)
	}
	if got.Progress != session.Progress {
		t.Errorf("Progress = %v, want %v", got.Progress, session.Progress)
	}
	if len(got.Steps) != 6 {
		t.Errorf("Steps = %d, want 6", len(got.Steps))
	}
	if got.Steps[0].Resources[0].URL == "" {
		t.Error("step resources must survive the round trip")
	}
}
