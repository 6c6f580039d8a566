package processor

import (
	"context"
	"time"

	"github.com/NextMind-AI/rigbot/redis"
	"github.com/NextMind-AI/rigbot/scheduling"
)

// CalendarGateway returns the busy intervals of the practice calendar.
type CalendarGateway interface {
	ListBusyIntervals(ctx context.Context, start, end time.Time) ([]scheduling.Interval, error)
}

// CompletionGateway answers a message that is not about availability.
type CompletionGateway interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// TranscriptStore keeps the conversation of a widget session.
type TranscriptStore interface {
	AddUserMessage(ctx context.Context, sessionID, message string) error
	AddBotMessage(ctx context.Context, sessionID, message string) error
	GetRecentHistory(ctx context.Context, sessionID string, limit int) ([]redis.ChatMessage, error)
	ClearChatHistory(ctx context.Context, sessionID string) error
}
