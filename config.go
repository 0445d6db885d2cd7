package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	GitHubToken        string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	RequestTimeout     time.Duration
	StoragePath        string
	DBConnectionString string
	TelegramBotToken   string
	TelegramChatID     int64
	MCPHTTPPort        int
	LogLevel           string
	LogFormat          string
}

type ConfigValidationError struct {
	Field   string
	Message string
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s - %s", e.Field, e.Message)
}

func LoadConfig() (*Config, error) {
	config := &Config{
		GitHubToken:        strings.TrimSpace(os.Getenv("GITHUB_TOKEN")),
		OpenAIAPIKey:       strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:      "https://api.openai.com/v1",
		OpenAIModel:        "gpt-4o-mini",
		RequestTimeout:     30 * time.Second,
		TelegramBotToken:   strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		DBConnectionString: strings.TrimSpace(os.Getenv("DB_CONNECTION_STRING")),
		MCPHTTPPort:        8080,
		LogLevel:           "info",
		LogFormat:          "text",
	}

	if baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); baseURL != "" {
		config.OpenAIBaseURL = strings.TrimRight(baseURL, "/")
	}

	if model := strings.TrimSpace(os.Getenv("OPENAI_MODEL")); model != "" {
		config.OpenAIModel = model
	}

	if timeoutEnv := os.Getenv("REQUEST_TIMEOUT"); timeoutEnv != "" {
		parsed, err := time.ParseDuration(timeoutEnv)
		if err != nil {
			return nil, ConfigValidationError{Field: "REQUEST_TIMEOUT", Message: fmt.Sprintf("invalid value %q: %v", timeoutEnv, err)}
		}
		config.RequestTimeout = parsed
	}

	if storagePath := strings.TrimSpace(os.Getenv("STORAGE_PATH")); storagePath != "" {
		config.StoragePath = storagePath
	}

	if chatEnv := os.Getenv("TELEGRAM_CHAT_ID"); chatEnv != "" {
		parsed, err := strconv.ParseInt(chatEnv, 10, 64)
		if err != nil {
			return nil, ConfigValidationError{Field: "TELEGRAM_CHAT_ID", Message: fmt.Sprintf("invalid value %q: %v", chatEnv, err)}
		}
		config.TelegramChatID = parsed
	}

	if portEnv := os.Getenv("MCP_HTTP_PORT"); portEnv != "" {
		parsed, err := strconv.Atoi(portEnv)
		if err != nil {
			return nil, ConfigValidationError{Field: "MCP_HTTP_PORT", Message: fmt.Sprintf("invalid value %q: %v", portEnv, err)}
		}
		config.MCPHTTPPort = parsed
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[strings.ToLower(level)] {
			return nil, ConfigValidationError{Field: "LOG_LEVEL", Message: fmt.Sprintf("invalid level %q, must be one of: debug, info, warn, error", level)}
		}
		config.LogLevel = strings.ToLower(level)
	}

	if format := os.Getenv("LOG_FORMAT"); format != "" {
		validFormats := map[string]bool{"text": true, "json": true}
		if !validFormats[strings.ToLower(format)] {
			return nil, ConfigValidationError{Field: "LOG_FORMAT", Message: fmt.Sprintf("invalid format %q, must be one of: text, json", format)}
		}
		config.LogFormat = strings.ToLower(format)
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.RequestTimeout < time.Second {
		return ConfigValidationError{Field: "REQUEST_TIMEOUT", Message: "must be at least 1s"}
	}

	if c.MCPHTTPPort <= 0 || c.MCPHTTPPort > 65535 {
		return ConfigValidationError{Field: "MCP_HTTP_PORT", Message: "must be between 1 and 65535"}
	}

	if c.TelegramBotToken != "" && c.TelegramChatID == 0 {
		return ConfigValidationError{Field: "TELEGRAM_CHAT_ID", Message: "is required when TELEGRAM_BOT_TOKEN is set"}
	}

	if c.OpenAIAPIKey != "" && len(c.OpenAIAPIKey) < 10 {
		return ConfigValidationError{Field: "OPENAI_API_KEY", Message: "appears to be invalid (too short)"}
	}

	return nil
}

func (c *Config) IsTelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

func (c *Config) IsPostgresEnabled() bool {
	return c.DBConnectionString != ""
}
