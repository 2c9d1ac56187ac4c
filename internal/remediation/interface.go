package remediation

import (
	"context"

	"autoremedy/internal/model"
)

// UseCase runs a parsed webhook event through classify, plan, patch and publish.
type UseCase interface {
	// Process always returns a terminal outcome. It never observes the
	// caller's cancellation, only the configured timeout.
	Process(ctx context.Context, event model.WebhookEvent) Outcome
}

// LogFetcher returns the text of a failed run's logs.
type LogFetcher interface {
	FetchFailedLogs(ctx context.Context, repository string, runID int64) (string, error)
}

// MessageSender delivers a notification text to a chat.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
