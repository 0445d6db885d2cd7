package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
)

type CLICommand string

const (
	CmdFind         CLICommand = "find"
	CmdPopular      CLICommand = "popular"
	CmdAnalyzeIssue CLICommand = "analyze-issue"
	CmdAnalyzeRepo  CLICommand = "analyze-repo"
	CmdProfile      CLICommand = "profile"
	CmdPrefs        CLICommand = "prefs"
	CmdSkill        CLICommand = "skill"
	CmdContribution CLICommand = "contribution"
	CmdRecommend    CLICommand = "recommend"
	CmdPath         CLICommand = "path"
	CmdSessionStart CLICommand = "session-start"
	CmdSessionStep  CLICommand = "session-step"
	CmdSessionHelp  CLICommand = "session-help"
	CmdSessions     CLICommand = "sessions"
	CmdNotify       CLICommand = "notify"
	CmdConfig       CLICommand = "config"
	CmdMCPHTTP      CLICommand = "mcp-http"
)

func ParseCLIArgs() (CLICommand, []string) {
	if len(os.Args) < 2 {
		return CmdFind, nil
	}

	cmd := CLICommand(os.Args[1])
	args := os.Args[2:]

	return cmd, args
}

func RunCLICommand(ctx context.Context, app *App, cmd CLICommand, args []string) error {
	switch cmd {
	case CmdFind:
		return runFindCommand(ctx, app, args)
	case CmdPopular:
		return runPopularCommand(ctx, app, args)
	case CmdAnalyzeIssue:
		return runAnalyzeIssueCommand(ctx, app, args)
	case CmdAnalyzeRepo:
		return runAnalyzeRepoCommand(ctx, app, args)
	case CmdProfile:
		return runProfileCommand(ctx, app)
	case CmdPrefs:
		return runPrefsCommand(ctx, app, args)
	case CmdSkill:
		return runSkillCommand(ctx, app, args)
	case CmdContribution:
		return runContributionCommand(ctx, app, args)
	case CmdRecommend:
		return runRecommendCommand(ctx, app, args)
	case CmdPath:
		return runPathCommand(ctx, app, args)
	case CmdSessionStart:
		return runSessionStartCommand(ctx, app, args)
	case CmdSessionStep:
		return runSessionStepCommand(ctx, app, args)
	case CmdSessionHelp:
		return runSessionHelpCommand(ctx, app, args)
	case CmdSessions:
		return runSessionsCommand(ctx, app)
	case CmdNotify:
		return runNotifyCommand(ctx, app, args)
	case CmdConfig:
		return runConfigCommand(ctx, app, args)
	case CmdMCPHTTP:
		return app.mcpServer.RunMCPHTTPServer(ctx, app.config.MCPHTTPPort)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// runFindCommand looks for good first issues in the given repository, then
// falls back to popular repositories when the repo lookup fails or comes back
// empty.
func runFindCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	repo := fs.String("repo", "", "Repository as owner/name or GitHub URL")
	language := fs.String("lang", "", "Language filter for the popular fallback")
	limit := fs.Int("limit", 10, "Maximum number of issues")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *repo != "" {
		owner, name, err := SplitRepositoryURL(*repo)
		if err != nil {
			return err
		}

		result, err := app.github.FetchGoodFirstIssues(ctx, owner, name, 1, *limit)
		if err == nil && len(result.Issues) > 0 {
			DisplayIssues(result.Issues, fmt.Sprintf("GOOD FIRST ISSUES IN %s/%s", owner, name))
			return nil
		}
		if err != nil {
			app.logger.Warn("repository lookup failed, falling back to popular repositories: %v", err)
		} else {
			fmt.Printf("No open good first issues in %s/%s, looking at popular repositories instead.\n", owner, name)
		}
	}

	groups, err := app.github.FetchPopularReposWithGoodFirstIssues(ctx, *language, 1, *limit)
	if err != nil {
		return err
	}

	DisplayRepositoryGroups(groups)
	return nil
}

func runPopularCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("popular", flag.ExitOnError)
	language := fs.String("lang", "", "Primary language filter")
	limit := fs.Int("limit", 10, "Maximum number of repositories")
	if err := fs.Parse(args); err != nil {
		return err
	}

	groups, err := app.github.FetchPopularReposWithGoodFirstIssues(ctx, *language, 1, *limit)
	if err != nil {
		return err
	}

	DisplayRepositoryGroups(groups)
	return nil
}

func runAnalyzeIssueCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("analyze-issue", flag.ExitOnError)
	url := fs.String("url", "", "GitHub issue URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *url == "" {
		return fmt.Errorf("-url is required")
	}

	owner, repo, number, err := ParseIssueURL(*url)
	if err != nil {
		return err
	}

	issue, err := app.github.GetIssue(ctx, owner, repo, number)
	if err != nil {
		return err
	}

	repoCtx := &RepoContext{Name: fmt.Sprintf("%s/%s", owner, repo)}
	if info, err := app.github.GetRepository(ctx, owner, repo); err == nil {
		repoCtx.Language = info.Language
		issue.Language = info.Language
	}

	assessment, err := app.analyzer.AnalyzeIssueComplexity(ctx, *issue, repoCtx)
	if err != nil {
		return err
	}

	DisplayComplexity(issue.Title, assessment)
	return nil
}

func runAnalyzeRepoCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("analyze-repo", flag.ExitOnError)
	repo := fs.String("repo", "", "Repository as owner/name or GitHub URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *repo == "" {
		return fmt.Errorf("-repo is required")
	}

	owner, name, err := SplitRepositoryURL(*repo)
	if err != nil {
		return err
	}

	assessment, err := app.repoAnalyzer.AnalyzeRepository(ctx, owner, name)
	if err != nil {
		return err
	}

	DisplayRepositoryAssessment(assessment)
	return nil
}

func runProfileCommand(ctx context.Context, app *App) error {
	profile, err := app.profiles.GetProfile(ctx)
	if err != nil {
		return err
	}

	DisplayProfile(profile)
	return nil
}

func runPrefsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("prefs", flag.ExitOnError)
	languages := fs.String("languages", "", "Comma-separated preferred languages")
	difficulty := fs.String("difficulty", "", "Preferred difficulty: Easy, Medium, Hard or Mixed")
	timeAvail := fs.String("time", "", "Time availability, e.g. 2-4h")
	goals := fs.String("goals", "", "Comma-separated learning goals")
	if err := fs.Parse(args); err != nil {
		return err
	}

	update := PreferencesUpdate{}
	if *languages != "" {
		langs := splitCSV(*languages)
		update.PreferredLanguages = &langs
	}
	if *difficulty != "" {
		update.DifficultyPreference = difficulty
	}
	if *timeAvail != "" {
		update.TimeAvailability = timeAvail
	}
	if *goals != "" {
		goalList := splitCSV(*goals)
		update.LearningGoals = &goalList
	}

	profile, err := app.profiles.UpdatePreferences(ctx, update)
	if err != nil {
		return err
	}

	fmt.Println("Preferences updated.")
	DisplayProfile(profile)
	return nil
}

func runSkillCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("skill", flag.ExitOnError)
	name := fs.String("name", "", "Skill name")
	level := fs.Int("level", 0, "Skill level 1-5 (0 keeps the current level)")
	experience := fs.Float64("exp", 0, "Experience hours to add")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("-name is required")
	}

	profile, err := app.profiles.UpdateSkill(ctx, *name, *level, *experience)
	if err != nil {
		return err
	}

	fmt.Printf("Skill %q updated.\n", *name)
	DisplayProfile(profile)
	return nil
}

func runContributionCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("contribution", flag.ExitOnError)
	url := fs.String("url", "", "Issue URL")
	repo := fs.String("repo", "", "Repository name")
	difficulty := fs.String("difficulty", DifficultyEasy, "Difficulty of the issue")
	skills := fs.String("skills", "", "Comma-separated skills used")
	timeSpent := fs.Int("time", 0, "Time spent in minutes")
	completed := fs.Bool("completed", true, "Whether the contribution was completed")
	feedback := fs.Int("feedback", 0, "Experience rating from 1 to 5, 0 to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *url == "" {
		return fmt.Errorf("-url is required")
	}
	if *feedback < 0 || *feedback > 5 {
		return fmt.Errorf("-feedback must be between 1 and 5, or 0 to skip")
	}

	record := ContributionRecord{
		IssueURL:       *url,
		RepositoryName: *repo,
		Difficulty:     *difficulty,
		SkillsUsed:     splitCSV(*skills),
		TimeSpent:      *timeSpent,
		Completed:      *completed,
		Feedback:       *feedback,
	}

	profile, err := app.profiles.AddContribution(ctx, record)
	if err != nil {
		return err
	}

	fmt.Println("Contribution recorded.")
	DisplayProfile(profile)
	return nil
}

func runRecommendCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	repo := fs.String("repo", "", "Repository as owner/name or GitHub URL")
	limit := fs.Int("limit", 10, "Maximum number of issues")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *repo == "" {
		return fmt.Errorf("-repo is required")
	}

	owner, name, err := SplitRepositoryURL(*repo)
	if err != nil {
		return err
	}

	result, err := app.github.FetchGoodFirstIssues(ctx, owner, name, 1, *limit)
	if err != nil {
		return err
	}

	ranked, err := app.profiles.GetPersonalizedRecommendations(ctx, result.Issues)
	if err != nil {
		return err
	}

	DisplayRecommendations(ranked)
	return nil
}

func runPathCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("path", flag.ExitOnError)
	skills := fs.String("skills", "", "Comma-separated target skills (defaults to learning goals)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	targets := splitCSV(*skills)
	if len(targets) == 0 {
		profile, err := app.profiles.GetProfile(ctx)
		if err != nil {
			return err
		}
		targets = profile.Preferences.LearningGoals
	}
	if len(targets) == 0 {
		fmt.Println("No target skills. Set learning goals with: prefs -goals <goal,...> or pass -skills.")
		return nil
	}

	path, err := app.profiles.GetLearningPath(ctx, targets)
	if err != nil {
		return err
	}

	DisplayLearningPath(path)
	return nil
}

func runSessionStartCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("session-start", flag.ExitOnError)
	url := fs.String("url", "", "GitHub issue URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *url == "" {
		return fmt.Errorf("-url is required")
	}

	owner, repo, number, err := ParseIssueURL(*url)
	if err != nil {
		return err
	}

	issue, err := app.github.GetIssue(ctx, owner, repo, number)
	if err != nil {
		return err
	}
	repoInfo, err := app.github.GetRepository(ctx, owner, repo)
	if err != nil {
		return err
	}

	session, err := app.mentoring.StartContributionSession(ctx, *url, *issue, repoInfo)
	if err != nil {
		return err
	}

	DisplaySession(session)
	return nil
}

func runSessionStepCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("session-step", flag.ExitOnError)
	url := fs.String("url", "", "GitHub issue URL of the session")
	step := fs.String("step", "", "Step ID, e.g. step-1")
	timeSpent := fs.Int("time", 0, "Time spent in minutes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *url == "" || *step == "" {
		return fmt.Errorf("-url and -step are required")
	}

	session, err := app.mentoring.CompleteStep(ctx, *url, *step, *timeSpent)
	if err != nil {
		return err
	}

	DisplaySession(session)
	return nil
}

func runSessionHelpCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("session-help", flag.ExitOnError)
	url := fs.String("url", "", "GitHub issue URL of the session")
	if err := fs.Parse(args); err != nil {
		return err
	}

	query := strings.Join(fs.Args(), " ")
	if query == "" {
		return fmt.Errorf("a question is required, e.g. session-help -url <issue> how do I run the tests")
	}

	sessionURL := *url
	if sessionURL == "" {
		active, err := app.mentoring.GetActiveSession(ctx)
		if err != nil {
			return err
		}
		if active != nil {
			sessionURL = active.IssueURL
		}
	}

	answer := app.mentoring.GetContextualHelp(ctx, sessionURL, query)
	fmt.Println(answer)
	return nil
}

func runSessionsCommand(ctx context.Context, app *App) error {
	sessions, err := app.mentoring.GetAllSessions(ctx)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("No mentoring sessions yet. Start one with: session-start -url <issue-url>")
		return nil
	}

	for i := range sessions {
		DisplaySessionSummary(&sessions[i], i+1)
	}
	return nil
}

func runNotifyCommand(ctx context.Context, app *App, args []string) error {
	if app.notifier == nil {
		return fmt.Errorf("telegram is not configured, set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
	}

	fs := flag.NewFlagSet("notify", flag.ExitOnError)
	repo := fs.String("repo", "", "Repository as owner/name or GitHub URL")
	limit := fs.Int("limit", 10, "Maximum number of issues")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *repo == "" {
		return fmt.Errorf("-repo is required")
	}

	owner, name, err := SplitRepositoryURL(*repo)
	if err != nil {
		return err
	}

	result, err := app.github.FetchGoodFirstIssues(ctx, owner, name, 1, *limit)
	if err != nil {
		return err
	}

	ranked, err := app.profiles.GetPersonalizedRecommendations(ctx, result.Issues)
	if err != nil {
		return err
	}

	if err := app.notifier.SendRecommendationDigest(ranked); err != nil {
		return err
	}

	fmt.Printf("Sent %d recommendations to Telegram.\n", len(ranked))
	return nil
}

// runConfigCommand stores or inspects the OpenAI credential. The stored value
// is JSON-encoded so it round-trips through any backing store.
func runConfigCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	apiKey := fs.String("openai-key", "", "OpenAI API key to store")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *apiKey == "" {
		_, found, err := app.store.Get(ctx, StorageKeyCredential)
		if err != nil {
			return err
		}
		if found {
			fmt.Println("An OpenAI API key is stored.")
		} else {
			fmt.Println("No OpenAI API key stored. Set one with: config -openai-key <key>")
		}
		return nil
	}

	data, err := json.Marshal(*apiKey)
	if err != nil {
		return err
	}
	if err := app.store.Set(ctx, StorageKeyCredential, data); err != nil {
		return err
	}

	fmt.Println("OpenAI API key stored.")
	return nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
