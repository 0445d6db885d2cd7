package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// App bundles the wired services handed to CLI commands and the MCP server.
type App struct {
	config       *Config
	logger       *Logger
	store        Store
	github       *GitHubService
	analyzer     *ComplexityAnalyzer
	repoAnalyzer *RepositoryAnalyzer
	profiles     *ProfileService
	mentoring    *MentoringService
	notifier     *TelegramNotifier
	mcpServer    *MCPServer
}

func NewApp(ctx context.Context, config *Config) (*App, func(), error) {
	logger := NewLogger(config.LogLevel, config.LogFormat)

	var store Store
	cleanup := func() {}
	if config.IsPostgresEnabled() {
		sqlStore, err := NewSQLStore(config.DBConnectionString)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database store: %w", err)
		}
		store = sqlStore
		cleanup = func() { sqlStore.Close() }
		logger.Info("using Postgres storage")
	} else {
		fileStore, err := NewFileStore(config.StoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file store: %w", err)
		}
		store = fileStore
		logger.Debug("using file storage at %s", fileStore.BasePath())
	}

	// The environment wins; the stored credential is the fallback so the
	// key survives restarts once set via the config command.
	apiKey := config.OpenAIAPIKey
	if apiKey == "" {
		if data, found, err := store.Get(ctx, StorageKeyCredential); err == nil && found {
			var stored string
			if err := json.Unmarshal(data, &stored); err == nil {
				apiKey = stored
			}
		}
	}

	llm := NewOpenAIClient(apiKey, config.OpenAIBaseURL, config.OpenAIModel, config.RequestTimeout)
	github := NewGitHubService(ctx, config.GitHubToken, logger)
	analyzer := NewComplexityAnalyzer(llm, logger)
	repoAnalyzer := NewRepositoryAnalyzer(github, llm, logger)
	profiles := NewProfileService(store, logger)
	mentoring := NewMentoringService(store, llm, logger)

	var notifier *TelegramNotifier
	if config.IsTelegramEnabled() {
		var err error
		notifier, err = NewTelegramNotifier(config.TelegramBotToken, config.TelegramChatID, logger)
		if err != nil {
			logger.Warn("telegram disabled: %v", err)
		}
	}

	app := &App{
		config:       config,
		logger:       logger,
		store:        store,
		github:       github,
		analyzer:     analyzer,
		repoAnalyzer: repoAnalyzer,
		profiles:     profiles,
		mentoring:    mentoring,
		notifier:     notifier,
	}
	app.mcpServer = NewMCPServer(github, analyzer, repoAnalyzer, profiles, mentoring, logger)

	return app, cleanup, nil
}

func main() {
	config, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	app, cleanup, err := NewApp(ctx, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	cmd, args := ParseCLIArgs()
	if err := RunCLICommand(ctx, app, cmd, args); err != nil {
		app.logger.Error("command %s failed: %v", cmd, err)
		os.Exit(1)
	}
}
