package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type SkillLevel struct {
	Skill       string    `json:"skill"`
	Level       int       `json:"level"`
	Experience  float64   `json:"experience"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type Preferences struct {
	PreferredLanguages    []string `json:"preferredLanguages"`
	PreferredProjectTypes []string `json:"preferredProjectTypes"`
	DifficultyPreference  string   `json:"difficultyPreference"`
	TimeAvailability      string   `json:"timeAvailability"`
	LearningGoals         []string `json:"learningGoals"`
}

// PreferencesUpdate is a partial preferences edit; nil fields are left
// untouched.
type PreferencesUpdate struct {
	PreferredLanguages    *[]string `json:"preferredLanguages,omitempty"`
	PreferredProjectTypes *[]string `json:"preferredProjectTypes,omitempty"`
	DifficultyPreference  *string   `json:"difficultyPreference,omitempty"`
	TimeAvailability      *string   `json:"timeAvailability,omitempty"`
	LearningGoals         *[]string `json:"learningGoals,omitempty"`
}

type ContributionRecord struct {
	IssueURL       string    `json:"issueUrl"`
	RepositoryName string    `json:"repositoryName"`
	Difficulty     string    `json:"difficulty"`
	TimeSpent      int       `json:"timeSpent"`
	Completed      bool      `json:"completed"`
	Date           time.Time `json:"date"`
	SkillsUsed     []string  `json:"skillsUsed"`
	Feedback       int       `json:"feedback"`
}

// UserProfile is the persistent singleton per installation.
// TotalContributions and CompletionRate are derived from History and
// recomputed on every mutation, never independently set.
type UserProfile struct {
	Skills             []SkillLevel         `json:"skills"`
	Preferences        Preferences          `json:"preferences"`
	History            []ContributionRecord `json:"history"`
	CreatedAt          time.Time            `json:"createdAt"`
	LastUpdated        time.Time            `json:"lastUpdated"`
	TotalContributions int                  `json:"totalContributions"`
	CompletionRate     float64              `json:"completionRate"`
}

func (p *UserProfile) recomputeDerived() {
	p.TotalContributions = len(p.History)
	if len(p.History) == 0 {
		p.CompletionRate = 0
		return
	}
	completed := 0
	for _, record := range p.History {
		if record.Completed {
			completed++
		}
	}
	p.CompletionRate = float64(completed) / float64(len(p.History))
}

func (p *UserProfile) skillLevels() map[string]int {
	levels := make(map[string]int, len(p.Skills))
	for _, skill := range p.Skills {
		levels[skill.Skill] = skill.Level
	}
	return levels
}

// ProfileService owns the persistent user profile. All mutations go through
// a single mutex so concurrent read-modify-write cycles cannot drop updates.
type ProfileService struct {
	store  Store
	logger *Logger
	mu     sync.Mutex
	now    func() time.Time
}

func NewProfileService(store Store, logger *Logger) *ProfileService {
	return &ProfileService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func defaultProfile(now time.Time) *UserProfile {
	return &UserProfile{
		Skills: []SkillLevel{},
		Preferences: Preferences{
			PreferredLanguages:    []string{},
			PreferredProjectTypes: []string{},
			DifficultyPreference:  DifficultyEasy,
			TimeAvailability:      "2-4h",
			LearningGoals:         []string{},
		},
		History:     []ContributionRecord{},
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// GetProfile returns the stored profile, or a default profile on first
// access. The default is not persisted until the first mutation.
func (s *ProfileService) GetProfile(ctx context.Context) (*UserProfile, error) {
	data, found, err := s.store.Get(ctx, StorageKeyProfile)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if !found {
		return defaultProfile(s.now()), nil
	}

	var profile UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}

func (s *ProfileService) saveProfile(ctx context.Context, profile *UserProfile) error {
	profile.LastUpdated = s.now()

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.store.Set(ctx, StorageKeyProfile, data); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *ProfileService) UpdatePreferences(ctx context.Context, update PreferencesUpdate) (*UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.GetProfile(ctx)
	if err != nil {
		return nil, err
	}

	if update.PreferredLanguages != nil {
		profile.Preferences.PreferredLanguages = *update.PreferredLanguages
	}
	if update.PreferredProjectTypes != nil {
		profile.Preferences.PreferredProjectTypes = *update.PreferredProjectTypes
	}
	if update.DifficultyPreference != nil {
		profile.Preferences.DifficultyPreference = *update.DifficultyPreference
	}
	if update.TimeAvailability != nil {
		profile.Preferences.TimeAvailability = *update.TimeAvailability
	}
	if update.LearningGoals != nil {
		profile.Preferences.LearningGoals = *update.LearningGoals
	}

	if err := s.saveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) UpdateSkill(ctx context.Context, skill string, level int, experienceHours float64) (*UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.GetProfile(ctx)
	if err != nil {
		return nil, err
	}

	applySkillUpdate(profile, skill, level, experienceHours, s.now())

	if err := s.saveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// applySkillUpdate mutates the skill entry in place. Level 0 means
// "leave the level alone", so experience-only gains never reset progress.
func applySkillUpdate(profile *UserProfile, skill string, level int, experienceHours float64, now time.Time) {
	for i := range profile.Skills {
		if profile.Skills[i].Skill == skill {
			if level > 0 {
				profile.Skills[i].Level = level
			}
			profile.Skills[i].Experience += experienceHours
			profile.Skills[i].LastUpdated = now
			return
		}
	}
	profile.Skills = append(profile.Skills, SkillLevel{
		Skill:       skill,
		Level:       level,
		Experience:  experienceHours,
		LastUpdated: now,
	})
}

// AddContribution appends to history, recomputes the derived counters and
// credits experience to the skills used: full time when completed, half
// otherwise.
func (s *ProfileService) AddContribution(ctx context.Context, record ContributionRecord) (*UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.GetProfile(ctx)
	if err != nil {
		return nil, err
	}

	record.Date = s.now()
	profile.History = append(profile.History, record)
	profile.recomputeDerived()

	experienceGain := float64(record.TimeSpent)
	if !record.Completed {
		experienceGain = float64(record.TimeSpent) * 0.5
	}
	for _, skill := range record.SkillsUsed {
		applySkillUpdate(profile, skill, 0, experienceGain, s.now())
	}

	if err := s.saveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetPersonalizedRecommendations annotates each issue with its personalized
// score and returns them sorted by score descending. Ties keep the
// original fetch order.
func (s *ProfileService) GetPersonalizedRecommendations(ctx context.Context, issues []IssueRecord) ([]IssueRecord, error) {
	profile, err := s.GetProfile(ctx)
	if err != nil {
		return nil, err
	}

	scored := make([]IssueRecord, len(issues))
	copy(scored, issues)
	for i := range scored {
		scored[i].PersonalizedScore = PersonalizedScore(scored[i], profile)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].PersonalizedScore > scored[j].PersonalizedScore
	})

	return scored, nil
}

// PersonalizedScore combines profile signals with issue attributes:
// baseline 50, additive adjustments, clamped to [0,100].
func PersonalizedScore(issue IssueRecord, profile *UserProfile) float64 {
	score := 50.0

	language := inferIssueLanguage(issue)
	for _, preferred := range profile.Preferences.PreferredLanguages {
		if strings.EqualFold(preferred, language) {
			score += 20
			break
		}
	}

	difficulty := inferIssueDifficulty(issue)
	if profile.Preferences.DifficultyPreference == "Mixed" ||
		profile.Preferences.DifficultyPreference == difficulty {
		score += 15
	}

	requiredSkills := inferIssueSkills(issue)
	levels := profile.skillLevels()
	for _, skill := range requiredSkills {
		level := levels[skill]
		if level > 3 {
			score += 10
		} else if level > 0 {
			score += 5
		}
	}

	titleLower := strings.ToLower(issue.Title)
	bodyLower := strings.ToLower(issue.Body)
	for _, goal := range profile.Preferences.LearningGoals {
		goalLower := strings.ToLower(goal)
		if goalLower == "" {
			continue
		}
		if strings.Contains(titleLower, goalLower) || strings.Contains(bodyLower, goalLower) {
			score += 15
		}
	}

	matched := 0
	completed := 0
	for _, record := range profile.History {
		if record.Difficulty == difficulty || sharesSkill(record.SkillsUsed, requiredSkills) {
			matched++
			if record.Completed {
				completed++
			}
		}
	}
	if matched > 0 {
		score += float64(completed) / float64(matched) * 10
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func sharesSkill(used, required []string) bool {
	for _, u := range used {
		for _, r := range required {
			if u == r {
				return true
			}
		}
	}
	return false
}

// inferIssueDifficulty classifies from labels only. Hard signals win over
// easy ones; without either kind of label the issue reads as Medium.
func inferIssueDifficulty(issue IssueRecord) string {
	if hasAnyLabelSubstring(issue.Labels, "hard", "complex", "advanced") {
		return DifficultyHard
	}
	if hasAnyLabelSubstring(issue.Labels, "easy", "beginner", "good first issue", "starter") {
		return DifficultyEasy
	}
	return DifficultyMedium
}

func inferIssueLanguage(issue IssueRecord) string {
	if issue.Language != "" {
		return issue.Language
	}
	if issue.RepositoryURL != "" {
		return "JavaScript"
	}
	return "Unknown"
}

// inferIssueSkills maps label families to broad skill names.
func inferIssueSkills(issue IssueRecord) []string {
	var skills []string

	if hasAnyLabelSubstring(issue.Labels, "frontend", "ui") {
		skills = append(skills, "Frontend Development")
	}
	if hasAnyLabelSubstring(issue.Labels, "backend", "api") {
		skills = append(skills, "Backend Development")
	}
	if hasAnyLabelSubstring(issue.Labels, "test", "qa") {
		skills = append(skills, "Testing")
	}
	if hasAnyLabelSubstring(issue.Labels, "doc", "readme") {
		skills = append(skills, "Documentation")
	}
	if hasAnyLabelSubstring(issue.Labels, "bug") {
		skills = append(skills, "Debugging")
	}

	return skills
}

type LearningPathEntry struct {
	Skill               string   `json:"skill"`
	CurrentLevel        int      `json:"currentLevel"`
	TargetLevel         int      `json:"targetLevel"`
	Gap                 int      `json:"gap"`
	SuggestedIssueTypes []string `json:"suggestedIssueTypes"`
	EstimatedTime       string   `json:"estimatedTimeToTarget"`
}

// GetLearningPath reports, per target skill, the gap to a basic-competency
// level of 5 and suggested issue types for the current level.
func (s *ProfileService) GetLearningPath(ctx context.Context, targetSkills []string) ([]LearningPathEntry, error) {
	profile, err := s.GetProfile(ctx)
	if err != nil {
		return nil, err
	}

	levels := profile.skillLevels()

	entries := make([]LearningPathEntry, 0, len(targetSkills))
	for _, skill := range targetSkills {
		currentLevel := levels[skill]
		gap := 5 - currentLevel
		if gap < 0 {
			gap = 0
		}

		entries = append(entries, LearningPathEntry{
			Skill:               skill,
			CurrentLevel:        currentLevel,
			TargetLevel:         5,
			Gap:                 gap,
			SuggestedIssueTypes: suggestedIssueTypes(skill, currentLevel),
			EstimatedTime:       fmt.Sprintf("%d-%d hours", gap*10, gap*20),
		})
	}

	return entries, nil
}

var issueTypeSuggestions = map[string][][]string{
	"Frontend Development": {
		{"documentation", "typo fixes", "simple UI tweaks"},
		{"CSS styling", "basic HTML structure"},
		{"component styling", "responsive design"},
		{"interactive features", "form handling"},
		{"complex components", "state management"},
		{"performance optimization", "accessibility features"},
	},
	"Backend Development": {
		{"documentation", "configuration files"},
		{"simple API endpoints", "data validation"},
		{"database queries", "middleware functions"},
		{"authentication features", "file handling"},
		{"complex business logic", "integration testing"},
		{"performance optimization", "architecture improvements"},
	},
}

func suggestedIssueTypes(skill string, currentLevel int) []string {
	byLevel, ok := issueTypeSuggestions[skill]
	if !ok {
		return []string{"general development", "documentation"}
	}
	if currentLevel >= len(byLevel) {
		currentLevel = len(byLevel) - 1
	}
	if currentLevel < 0 {
		currentLevel = 0
	}
	return byLevel[currentLevel]
}
