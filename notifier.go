package main

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier sends recommendation digests to a Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *Logger
}

func NewTelegramNotifier(botToken string, chatID int64, logger *Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger,
	}, nil
}

// SendRecommendationDigest posts the ranked issues, best first, one message
// per issue with a short pause to stay under Telegram rate limits.
func (n *TelegramNotifier) SendRecommendationDigest(issues []IssueRecord) error {
	if len(issues) == 0 {
		return nil
	}

	var messages []string

	header := "🎯 *Good First Issues Picked For You*\n\n"
	messages = append(messages, header)

	for i, issue := range issues {
		if i >= 20 {
			break
		}

		scoreEmoji := ""
		if issue.PersonalizedScore >= 80 {
			scoreEmoji = "🔥"
		} else if issue.PersonalizedScore >= 60 {
			scoreEmoji = "⭐"
		} else {
			scoreEmoji = "✨"
		}

		difficultyText := ""
		if issue.Complexity != nil {
			difficultyText = fmt.Sprintf("\nDifficulty: %s (%s)", issue.Complexity.Difficulty, issue.Complexity.EstimatedHours)
		}

		labelsText := ""
		if labels := issue.LabelNames(); len(labels) > 0 {
			labelsText = fmt.Sprintf("\nLabels: %s", strings.Join(labels, ", "))
		}

		msg := fmt.Sprintf(
			"%s *%s* (%.0f)\n%s\n%s%s%s\n\n",
			scoreEmoji,
			truncateString(issue.Title, 80),
			issue.PersonalizedScore,
			issue.HTMLURL,
			issue.RepositoryName(),
			difficultyText,
			labelsText,
		)

		messages = append(messages, msg)
	}

	for _, msg := range messages {
		tgMsg := tgbotapi.NewMessage(n.chatID, msg)
		tgMsg.ParseMode = "Markdown"

		if _, err := n.bot.Send(tgMsg); err != nil {
			n.logger.Error("failed to send Telegram message: %v", err)
			return err
		}

		time.Sleep(1 * time.Second)
	}

	return nil
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
