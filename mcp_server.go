package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPServer exposes the recommendation and mentoring engine over the Model
// Context Protocol. All services are injected; the server owns no state.
type MCPServer struct {
	github    *GitHubService
	analyzer  *ComplexityAnalyzer
	repos     *RepositoryAnalyzer
	profiles  *ProfileService
	mentoring *MentoringService
	logger    *Logger
}

func NewMCPServer(github *GitHubService, analyzer *ComplexityAnalyzer, repos *RepositoryAnalyzer, profiles *ProfileService, mentoring *MentoringService, logger *Logger) *MCPServer {
	return &MCPServer{
		github:    github,
		analyzer:  analyzer,
		repos:     repos,
		profiles:  profiles,
		mentoring: mentoring,
		logger:    logger,
	}
}

func (s *MCPServer) CreateServer() *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "first-issue-mentor",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "find_good_first_issues",
		Description: "Find open good first issues in a specific repository",
	}, s.handleFindGoodFirstIssues)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "find_popular_repos",
		Description: "Find popular repositories that currently have open good first issues",
	}, s.handleFindPopularRepos)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "analyze_issue",
		Description: "Analyze the complexity of a GitHub issue by URL",
	}, s.handleAnalyzeIssue)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "analyze_repository",
		Description: "Assess how welcoming a repository is to new contributors",
	}, s.handleAnalyzeRepository)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_recommendations",
		Description: "Rank a repository's good first issues by fit with the user profile",
	}, s.handleGetRecommendations)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_profile",
		Description: "Get the stored user profile, skills and contribution history",
	}, s.handleGetProfile)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_skill",
		Description: "Update a skill's level or add experience points",
	}, s.handleUpdateSkill)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_preferences",
		Description: "Update user preferences such as languages, difficulty or learning goals",
	}, s.handleUpdatePreferences)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "add_contribution",
		Description: "Record a completed contribution and update derived skills",
	}, s.handleAddContribution)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_learning_path",
		Description: "Suggest next skills to practice based on the user profile",
	}, s.handleGetLearningPath)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "start_session",
		Description: "Start a guided mentoring session for a GitHub issue",
	}, s.handleStartSession)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "complete_step",
		Description: "Mark a mentoring session step as completed",
	}, s.handleCompleteStep)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "contextual_help",
		Description: "Ask a question about the current mentoring session",
	}, s.handleContextualHelp)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_sessions",
		Description: "List all mentoring sessions and their progress",
	}, s.handleListSessions)

	return srv
}

func toolResultJSON(v any) (*mcp.CallToolResult, any, error) {
	jsonResult, _ := json.MarshalIndent(v, "", "  ")
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(jsonResult)}},
	}, nil, nil
}

func toolResultText(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

type FindGoodFirstIssuesInput struct {
	Owner string  `json:"owner"`
	Repo  string  `json:"repo"`
	Limit float64 `json:"limit"`
}

func (s *MCPServer) handleFindGoodFirstIssues(ctx context.Context, req *mcp.CallToolRequest, args FindGoodFirstIssuesInput) (*mcp.CallToolResult, any, error) {
	if args.Owner == "" || args.Repo == "" {
		return nil, nil, fmt.Errorf("owner and repo are required")
	}

	limit := int(args.Limit)
	if limit <= 0 {
		limit = 10
	}

	result, err := s.github.FetchGoodFirstIssues(ctx, args.Owner, args.Repo, 1, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch issues: %w", err)
	}

	return toolResultJSON(result)
}

type FindPopularReposInput struct {
	Language string  `json:"language"`
	Limit    float64 `json:"limit"`
}

func (s *MCPServer) handleFindPopularRepos(ctx context.Context, req *mcp.CallToolRequest, args FindPopularReposInput) (*mcp.CallToolResult, any, error) {
	limit := int(args.Limit)
	if limit <= 0 {
		limit = 10
	}

	groups, err := s.github.FetchPopularReposWithGoodFirstIssues(ctx, args.Language, 1, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch popular repositories: %w", err)
	}

	return toolResultJSON(groups)
}

type AnalyzeIssueInput struct {
	IssueURL string `json:"issue_url"`
}

func (s *MCPServer) handleAnalyzeIssue(ctx context.Context, req *mcp.CallToolRequest, args AnalyzeIssueInput) (*mcp.CallToolResult, any, error) {
	owner, repo, number, err := ParseIssueURL(args.IssueURL)
	if err != nil {
		return nil, nil, err
	}

	issue, err := s.github.GetIssue(ctx, owner, repo, number)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch issue: %w", err)
	}

	repoCtx := &RepoContext{Name: fmt.Sprintf("%s/%s", owner, repo)}
	if info, err := s.github.GetRepository(ctx, owner, repo); err == nil {
		repoCtx.Language = info.Language
		issue.Language = info.Language
	}

	assessment, err := s.analyzer.AnalyzeIssueComplexity(ctx, *issue, repoCtx)
	if err != nil {
		return nil, nil, err
	}

	return toolResultJSON(map[string]any{
		"issue":      issue.Title,
		"url":        issue.HTMLURL,
		"assessment": assessment,
	})
}

type AnalyzeRepositoryInput struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

func (s *MCPServer) handleAnalyzeRepository(ctx context.Context, req *mcp.CallToolRequest, args AnalyzeRepositoryInput) (*mcp.CallToolResult, any, error) {
	if args.Owner == "" || args.Repo == "" {
		return nil, nil, fmt.Errorf("owner and repo are required")
	}

	assessment, err := s.repos.AnalyzeRepository(ctx, args.Owner, args.Repo)
	if err != nil {
		return nil, nil, err
	}

	return toolResultJSON(assessment)
}

type GetRecommendationsInput struct {
	Owner string  `json:"owner"`
	Repo  string  `json:"repo"`
	Limit float64 `json:"limit"`
}

func (s *MCPServer) handleGetRecommendations(ctx context.Context, req *mcp.CallToolRequest, args GetRecommendationsInput) (*mcp.CallToolResult, any, error) {
	if args.Owner == "" || args.Repo == "" {
		return nil, nil, fmt.Errorf("owner and repo are required")
	}

	limit := int(args.Limit)
	if limit <= 0 {
		limit = 10
	}

	result, err := s.github.FetchGoodFirstIssues(ctx, args.Owner, args.Repo, 1, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch issues: %w", err)
	}

	ranked, err := s.profiles.GetPersonalizedRecommendations(ctx, result.Issues)
	if err != nil {
		return nil, nil, err
	}

	return toolResultJSON(ranked)
}

type EmptyInput struct{}

func (s *MCPServer) handleGetProfile(ctx context.Context, req *mcp.CallToolRequest, args EmptyInput) (*mcp.CallToolResult, any, error) {
	profile, err := s.profiles.GetProfile(ctx)
	if err != nil {
		return nil, nil, err
	}
	return toolResultJSON(profile)
}

type UpdateSkillInput struct {
	Skill      string  `json:"skill"`
	Level      float64 `json:"level"`
	Experience float64 `json:"experience"`
}

func (s *MCPServer) handleUpdateSkill(ctx context.Context, req *mcp.CallToolRequest, args UpdateSkillInput) (*mcp.CallToolResult, any, error) {
	if args.Skill == "" {
		return nil, nil, fmt.Errorf("skill is required")
	}

	profile, err := s.profiles.UpdateSkill(ctx, args.Skill, int(args.Level), args.Experience)
	if err != nil {
		return nil, nil, err
	}
	return toolResultJSON(profile)
}

type UpdatePreferencesInput struct {
	Languages            []string `json:"languages"`
	DifficultyPreference string   `json:"difficulty_preference"`
	TimeAvailability     string   `json:"time_availability"`
	LearningGoals        []string `json:"learning_goals"`
}

func (s *MCPServer) handleUpdatePreferences(ctx context.Context, req *mcp.CallToolRequest, args UpdatePreferencesInput) (*mcp.CallToolResult, any, error) {
	update := PreferencesUpdate{}
	if args.Languages != nil {
		update.PreferredLanguages = &args.Languages
	}
	if args.DifficultyPreference != "" {
		update.DifficultyPreference = &args.DifficultyPreference
	}
	if args.TimeAvailability != "" {
		update.TimeAvailability = &args.TimeAvailability
	}
	if args.LearningGoals != nil {
		update.LearningGoals = &args.LearningGoals
	}

	profile, err := s.profiles.UpdatePreferences(ctx, update)
	if err != nil {
		return nil, nil, err
	}
	return toolResultJSON(profile)
}

type AddContributionInput struct {
	IssueURL     string   `json:"issue_url"`
	Repository   string   `json:"repository"`
	Difficulty   string   `json:"difficulty"`
	SkillsUsed   []string `json:"skills_used"`
	TimeSpent    float64  `json:"time_spent"`
	WasCompleted bool     `json:"was_completed"`
	Feedback     float64  `json:"feedback,omitempty"`
}

func (s *MCPServer) handleAddContribution(ctx context.Context, req *mcp.CallToolRequest, args AddContributionInput) (*mcp.CallToolResult, any, error) {
	if args.IssueURL == "" {
		return nil, nil, fmt.Errorf("issue_url is required")
	}

	record := ContributionRecord{
		IssueURL:       args.IssueURL,
		RepositoryName: args.Repository,
		Difficulty:     args.Difficulty,
		SkillsUsed:     args.SkillsUsed,
		TimeSpent:      int(args.TimeSpent),
		Completed:      args.WasCompleted,
		Feedback:       int(args.Feedback),
	}

	profile, err := s.profiles.AddContribution(ctx, record)
	if err != nil {
		return nil, nil, err
	}
	return toolResultJSON(profile)
}

type GetLearningPathInput struct {
	Skills []string `json:"skills"`
}

func (s *MCPServer) handleGetLearningPath(ctx context.Context, req *mcp.CallToolRequest, args GetLearningPathInput) (*mcp.CallToolResult, any, error) {
	skills := args.Skills
	if len(skills) == 0 {
		profile, err := s.profiles.GetProfile(ctx)
		if err != nil {
			return nil, nil, err
		}
		skills = profile.Preferences.LearningGoals
	}

	path, err := s.profiles.GetLearningPath(ctx, skills)
	if err != nil {
		return nil, nil, err
	}
	return toolResultJSON(path)
}

type StartSessionInput struct {
	IssueURL string `json:"issue_url"`
}

func (s *MCPServer) handleStartSession(ctx context.Context, req *mcp.CallToolRequest, args StartSessionInput) (*mcp.CallToolResult, any, error) {
	owner, repo, number, err := ParseIssueURL(args.IssueURL)
	if err != nil {
		return nil, nil, err
	}

	issue, err := s.github.GetIssue(ctx, owner, repo, number)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch issue: %w", err)
	}
	repoInfo, err := s.github.GetRepository(ctx, owner, repo)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch repository: %w", err)
	}

	session, err := s.mentoring.StartContributionSession(ctx, args.IssueURL, *issue, repoInfo)
	if err != nil {
		return nil, nil, err
	}
	return toolResultJSON(session)
}

type CompleteStepInput struct {
	IssueURL  string  `json:"issue_url"`
	StepID    string  `json:"step_id"`
	TimeSpent float64 `json:"time_spent"`
}

func (s *MCPServer) handleCompleteStep(ctx context.Context, req *mcp.CallToolRequest, args CompleteStepInput) (*mcp.CallToolResult, any, error) {
	if args.IssueURL == "" || args.StepID == "" {
		return nil, nil, fmt.Errorf("issue_url and step_id are required")
	}

	session, err := s.mentoring.CompleteStep(ctx, args.IssueURL, args.StepID, int(args.TimeSpent))
	if err != nil {
		return nil, nil, err
	}
	return toolResultJSON(session)
}

type ContextualHelpInput struct {
	IssueURL string `json:"issue_url"`
	Query    string `json:"query"`
}

func (s *MCPServer) handleContextualHelp(ctx context.Context, req *mcp.CallToolRequest, args ContextualHelpInput) (*mcp.CallToolResult, any, error) {
	if args.Query == "" {
		return nil, nil, fmt.Errorf("query is required")
	}

	answer := s.mentoring.GetContextualHelp(ctx, args.IssueURL, args.Query)
	return toolResultText(answer)
}

func (s *MCPServer) handleListSessions(ctx context.Context, req *mcp.CallToolRequest, args EmptyInput) (*mcp.CallToolResult, any, error) {
	sessions, err := s.mentoring.GetAllSessions(ctx)
	if err != nil {
		return nil, nil, err
	}
	return toolResultJSON(sessions)
}

// RunMCPHTTPServer serves the MCP endpoint over streamable HTTP until ctx is
// cancelled, then drains in-flight requests.
func (s *MCPServer) RunMCPHTTPServer(ctx context.Context, port int) error {
	srv := s.CreateServer()

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return srv
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `First Issue Mentor MCP Server

Endpoints:
  /mcp     - MCP protocol endpoint (POST requests)
  /health  - Health check endpoint

Available MCP Tools:
  - find_good_first_issues: Find good first issues in a repository
  - find_popular_repos: Find popular repositories with good first issues
  - analyze_issue: Analyze issue complexity
  - analyze_repository: Assess beginner-friendliness of a repository
  - get_recommendations: Personalized issue ranking
  - get_profile: Read the user profile
  - update_skill: Update a skill
  - update_preferences: Update preferences
  - add_contribution: Record a contribution
  - get_learning_path: Suggest skills to practice next
  - start_session: Start a mentoring session
  - complete_step: Complete a session step
  - contextual_help: Ask about the current session
  - list_sessions: List mentoring sessions
`)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info("MCP HTTP server starting on port %d", port)
	s.logger.Info("MCP endpoint: http://localhost:%d/mcp", port)

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}
