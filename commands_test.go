package main

import (
	"context"
	"strings"
	"testing"
	"time"
)

func newTestApp() *App {
	return &App{
		logger:   testLogger(),
		profiles: newTestProfileService(time.Now()),
	}
}

func TestRunPrefsCommandUpdatesLanguages(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()

	err := runPrefsCommand(ctx, app, []string{"-languages", "Go,Rust", "-difficulty", DifficultyHard})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile, err := app.profiles.GetProfile(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profile.Preferences.PreferredLanguages) != 2 || profile.Preferences.PreferredLanguages[0] != "Go" {
		t.Errorf("PreferredLanguages = %v, want [Go Rust]", profile.Preferences.PreferredLanguages)
	}
	if profile.Preferences.DifficultyPreference != DifficultyHard {
		t.Errorf("DifficultyPreference = %s, want %s", profile.Preferences.DifficultyPreference, DifficultyHard)
	}
}

func TestRunContributionCommandFeedbackBounds(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"valid rating", []string{"-url", "https://github.com/o/r/issues/1", "-feedback", "4"}, ""},
		{"zero skips rating", []string{"-url", "https://github.com/o/r/issues/2"}, ""},
		{"too high", []string{"-url", "https://github.com/o/r/issues/3", "-feedback", "6"}, "-feedback"},
		{"negative", []string{"-url", "https://github.com/o/r/issues/4", "-feedback", "-1"}, "-feedback"},
		{"missing url", []string{"-feedback", "3"}, "-url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp()
			err := runContributionCommand(context.Background(), app, tt.args)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestRunContributionCommandRecordsFeedback(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()

	args := []string{"-url", "https://github.com/o/r/issues/9", "-repo", "o/r", "-feedback", "5", "-time", "30"}
	if err := runContributionCommand(ctx, app, args); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile, err := app.profiles.GetProfile(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profile.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(profile.History))
	}
	if profile.History[0].Feedback != 5 {
		t.Errorf("Feedback = %d, want 5", profile.History[0].Feedback)
	}
}
