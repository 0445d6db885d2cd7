package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

type StepResource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

type MentorStep struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Type          string         `json:"type"`
	IsCompleted   bool           `json:"isCompleted"`
	Resources     []StepResource `json:"resources"`
	EstimatedTime string         `json:"estimatedTime"`
	Difficulty    string         `json:"difficulty"`
}

// ContributionSession is keyed by issue URL: one active session per issue,
// restarting overwrites. Progress is derived from completed steps and never
// decreases across step completions.
type ContributionSession struct {
	IssueURL           string       `json:"issueUrl"`
	RepositoryName     string       `json:"repositoryName"`
	RepositoryURL      string       `json:"repositoryUrl"`
	StartTime          time.Time    `json:"startTime"`
	CurrentStep        int          `json:"currentStep"`
	Steps              []MentorStep `json:"steps"`
	Progress           float64      `json:"progress"`
	SkillsBeingLearned []string     `json:"skillsBeingLearned"`
	MentorNotes        []string     `json:"mentorNotes"`
}

func (s *ContributionSession) IsComplete() bool {
	return s.Progress >= 100
}

var validStepTypes = map[string]bool{
	"setup": true, "code": true, "test": true, "documentation": true, "submission": true,
}

type MentoringService struct {
	store  Store
	llm    CompletionClient
	logger *Logger
	mu     sync.Mutex
	now    func() time.Time
}

func NewMentoringService(store Store, llm CompletionClient, logger *Logger) *MentoringService {
	return &MentoringService{
		store:  store,
		llm:    llm,
		logger: logger,
		now:    time.Now,
	}
}

const mentorSystemPrompt = "You are an expert software engineering mentor who provides step-by-step guidance for GitHub contributions. Respond with JSON only."

const helpSystemPrompt = "You are a helpful coding mentor providing contextual guidance for open-source contributions."

// StartContributionSession creates and persists a session for the issue,
// with LLM-generated steps or the fixed fallback checklist. The credential
// check happens before any network call.
func (s *MentoringService) StartContributionSession(ctx context.Context, issueURL string, issue IssueRecord, repo *RepositoryInfo) (*ContributionSession, error) {
	if !s.llm.IsConfigured() {
		return nil, ConfigError{Field: "OPENAI_API_KEY", Message: "not configured"}
	}

	steps, err := s.generateGuidanceSteps(ctx, issue, repo)
	if err != nil {
		s.logger.WithField("issue", issueURL).Warn("guidance generation failed, using fallback steps: %v", err)
		steps = FallbackSteps()
	}

	session := &ContributionSession{
		IssueURL:           issueURL,
		RepositoryName:     repo.FullName,
		RepositoryURL:      repo.HTMLURL,
		StartTime:          s.now(),
		CurrentStep:        0,
		Steps:              steps,
		Progress:           0,
		SkillsBeingLearned: skillsForGuidance(issue),
		MentorNotes:        []string{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *MentoringService) generateGuidanceSteps(ctx context.Context, issue IssueRecord, repo *RepositoryInfo) ([]MentorStep, error) {
	prompt := buildGuidancePrompt(issue, repo)

	content, err := s.llm.Complete(ctx, mentorSystemPrompt, prompt, 0.4, 1000)
	if err != nil {
		return nil, AnalysisError{Stage: "completion", Err: err}
	}

	var parsed struct {
		Steps []struct {
			Title         string         `json:"title"`
			Description   string         `json:"description"`
			Type          string         `json:"type"`
			EstimatedTime string         `json:"estimatedTime"`
			Difficulty    string         `json:"difficulty"`
			Resources     []StepResource `json:"resources"`
		} `json:"steps"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, AnalysisError{Stage: "parse", Err: err}
	}
	if len(parsed.Steps) == 0 {
		return nil, AnalysisError{Stage: "validate", Err: fmt.Errorf("response contains no steps")}
	}

	steps := make([]MentorStep, 0, len(parsed.Steps))
	for i, raw := range parsed.Steps {
		if raw.Title == "" {
			return nil, AnalysisError{Stage: "validate", Err: fmt.Errorf("step %d has no title", i+1)}
		}

		stepType := raw.Type
		if !validStepTypes[stepType] {
			stepType = "code"
		}
		estimatedTime := raw.EstimatedTime
		if estimatedTime == "" {
			estimatedTime = "15-30 minutes"
		}
		difficulty := raw.Difficulty
		if difficulty != DifficultyEasy && difficulty != DifficultyMedium && difficulty != DifficultyHard {
			difficulty = DifficultyMedium
		}
		resources := raw.Resources
		if resources == nil {
			resources = []StepResource{}
		}

		steps = append(steps, MentorStep{
			ID:            fmt.Sprintf("step-%d", i+1),
			Title:         raw.Title,
			Description:   raw.Description,
			Type:          stepType,
			IsCompleted:   false,
			Resources:     resources,
			EstimatedTime: estimatedTime,
			Difficulty:    difficulty,
		})
	}

	return steps, nil
}

// CompleteStep marks the step done, advances the cursor, recomputes the
// derived progress and appends a mentor note.
func (s *MentoringService) CompleteStep(ctx context.Context, sessionID, stepID string, timeSpent int) (*ContributionSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}

	var step *MentorStep
	for i := range session.Steps {
		if session.Steps[i].ID == stepID {
			step = &session.Steps[i]
			break
		}
	}
	if step == nil {
		return nil, fmt.Errorf("step not found: %s", stepID)
	}

	step.IsCompleted = true

	if session.CurrentStep < len(session.Steps) {
		session.CurrentStep++
	}

	completed := 0
	for _, st := range session.Steps {
		if st.IsCompleted {
			completed++
		}
	}
	session.Progress = float64(completed) / float64(len(session.Steps)) * 100

	session.MentorNotes = append(session.MentorNotes,
		fmt.Sprintf("Completed %q in %d minutes", step.Title, timeSpent))

	if err := s.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetContextualHelp answers a free-text question using the current step and
// session context. It never returns an error to the caller: every failure
// degrades to a plain-text message.
func (s *MentoringService) GetContextualHelp(ctx context.Context, sessionID, query string) string {
	if !s.llm.IsConfigured() {
		return "Please configure your OpenAI API key to get contextual help."
	}

	session, err := s.getSession(ctx, sessionID)
	if err != nil || session == nil {
		return "Session not found."
	}

	currentStep := "Starting"
	if session.CurrentStep < len(session.Steps) {
		currentStep = session.Steps[session.CurrentStep].Title
	}

	prompt := fmt.Sprintf(`Current contribution context:
- Repository: %s
- Issue: %s
- Current step: %s
- Skills being learned: %s

User question: %s

Provide a helpful, specific answer as a mentor would, focusing on the current context and step.
Keep it concise and actionable.`,
		session.RepositoryName,
		session.IssueURL,
		currentStep,
		strings.Join(session.SkillsBeingLearned, ", "),
		query)

	answer, err := s.llm.Complete(ctx, helpSystemPrompt, prompt, 0.5, 200)
	if err != nil {
		s.logger.WithField("session", sessionID).Warn("contextual help failed: %v", err)
		return "I'm having trouble accessing the AI assistant right now. Please check the documentation or community resources for help."
	}

	return answer
}

func (s *MentoringService) GetAllSessions(ctx context.Context) ([]ContributionSession, error) {
	data, found, err := s.store.Get(ctx, StorageKeySessions)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	if !found {
		return []ContributionSession{}, nil
	}

	var sessions []ContributionSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

// GetActiveSession returns the first session still in progress, or nil.
func (s *MentoringService) GetActiveSession(ctx context.Context) (*ContributionSession, error) {
	sessions, err := s.GetAllSessions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if !sessions[i].IsComplete() {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

func (s *MentoringService) getSession(ctx context.Context, sessionID string) (*ContributionSession, error) {
	sessions, err := s.GetAllSessions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].IssueURL == sessionID {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

func (s *MentoringService) saveSession(ctx context.Context, session *ContributionSession) error {
	sessions, err := s.GetAllSessions(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range sessions {
		if sessions[i].IssueURL == session.IssueURL {
			sessions[i] = *session
			replaced = true
			break
		}
	}
	if !replaced {
		sessions = append(sessions, *session)
	}

	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}
	if err := s.store.Set(ctx, StorageKeySessions, data); err != nil {
		return fmt.Errorf("failed to save sessions: %w", err)
	}
	return nil
}

func buildGuidancePrompt(issue IssueRecord, repo *RepositoryInfo) string {
	description := repo.Description
	if description == "" {
		description = "No description"
	}
	body := issue.Body
	if body == "" {
		body = "No description"
	}
	labels := strings.Join(issue.LabelNames(), ", ")
	if labels == "" {
		labels = "None"
	}

	return fmt.Sprintf(`Create step-by-step guidance for contributing to this GitHub issue:

Repository: %s (%s)
Repository Description: %s
Issue Title: %s
Issue Body: %s
Issue Labels: %s

Provide guidance in this JSON format:
{
  "steps": [
    {
      "title": "Step title",
      "description": "Detailed description of what to do",
      "type": "setup|code|test|documentation|submission",
      "estimatedTime": "15-30 minutes",
      "difficulty": "Easy|Medium|Hard",
      "resources": [
        {
          "title": "Resource title",
          "url": "https://example.com",
          "type": "documentation|tutorial|example|tool"
        }
      ]
    }
  ]
}

Create 5-8 logical steps that guide a new contributor through:
1. Repository setup and understanding
2. Issue analysis and planning
3. Implementation steps
4. Testing and validation
5. Creating a pull request

Make steps specific to the issue type and repository context.`,
		repo.Name, repo.Language, description, issue.Title, body, labels)
}

// skillsForGuidance widens the label-based skill inference with signals from
// the issue text.
func skillsForGuidance(issue IssueRecord) []string {
	skills := inferIssueSkills(issue)

	if hasAnyLabelSubstring(issue.Labels, "feature") {
		skills = append(skills, "Feature Development")
	}

	text := strings.ToLower(issue.Title + " " + issue.Body)
	textSkills := []struct {
		keyword string
		skill   string
	}{
		{"css", "CSS"},
		{"style", "CSS"},
		{"javascript", "JavaScript"},
		{"js", "JavaScript"},
		{"python", "Python"},
		{"react", "React"},
		{"node", "Node.js"},
	}
	for _, ts := range textSkills {
		if strings.Contains(text, ts.keyword) {
			skills = append(skills, ts.skill)
		}
	}

	seen := make(map[string]bool, len(skills))
	unique := skills[:0]
	for _, skill := range skills {
		if !seen[skill] {
			seen[skill] = true
			unique = append(unique, skill)
		}
	}
	return unique
}

// FallbackSteps is the fixed 6-step checklist used when guidance generation
// is unavailable.
func FallbackSteps() []MentorStep {
	return []MentorStep{
		{
			ID:          "step-1",
			Title:       "Fork and Clone Repository",
			Description: "Fork the repository to your GitHub account and clone it locally to start working.",
			Type:        "setup",
			Resources: []StepResource{
				{
					Title: "GitHub Forking Guide",
					URL:   "https://docs.github.com/en/get-started/quickstart/fork-a-repo",
					Type:  "documentation",
				},
			},
			EstimatedTime: "10-15 minutes",
			Difficulty:    DifficultyEasy,
		},
		{
			ID:            "step-2",
			Title:         "Understand the Issue",
			Description:   "Read through the issue description, comments, and related code to understand what needs to be done.",
			Type:          "setup",
			Resources:     []StepResource{},
			EstimatedTime: "15-20 minutes",
			Difficulty:    DifficultyEasy,
		},
		{
			ID:            "step-3",
			Title:         "Create a Feature Branch",
			Description:   "Create a new branch for your changes to keep your work organized.",
			Type:          "setup",
			Resources:     []StepResource{},
			EstimatedTime: "5 minutes",
			Difficulty:    DifficultyEasy,
		},
		{
			ID:            "step-4",
			Title:         "Implement the Solution",
			Description:   "Write the code changes needed to address the issue. Start small and test frequently.",
			Type:          "code",
			Resources:     []StepResource{},
			EstimatedTime: "30-60 minutes",
			Difficulty:    DifficultyMedium,
		},
		{
			ID:            "step-5",
			Title:         "Test Your Changes",
			Description:   "Run existing tests and add new ones if needed to ensure your changes work correctly.",
			Type:          "test",
			Resources:     []StepResource{},
			EstimatedTime: "15-30 minutes",
			Difficulty:    DifficultyMedium,
		},
		{
			ID:          "step-6",
			Title:       "Create Pull Request",
			Description: "Push your changes and create a pull request with a clear description of your changes.",
			Type:        "submission",
			Resources: []StepResource{
				{
					Title: "Creating a Pull Request",
					URL:   "https://docs.github.com/en/pull-requests/collaborating-with-pull-requests/proposing-changes-to-your-work-with-pull-requests/creating-a-pull-request",
					Type:  "documentation",
				},
			},
			EstimatedTime: "10-15 minutes",
			Difficulty:    DifficultyEasy,
		},
	}
}
