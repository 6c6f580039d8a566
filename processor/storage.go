package processor

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/rigbot/redis"
)

// Transcript writes are best-effort: a failing store never fails a reply.

func (mp *MessageProcessor) storeUserMessage(ctx context.Context, sessionID, message string) {
	if mp.transcripts == nil || sessionID == "" {
		return
	}
	if err := mp.transcripts.AddUserMessage(ctx, sessionID, message); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Error storing user message")
	}
}

func (mp *MessageProcessor) storeBotMessage(ctx context.Context, sessionID, message string) {
	if mp.transcripts == nil || sessionID == "" {
		return
	}
	if err := mp.transcripts.AddBotMessage(ctx, sessionID, message); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Error storing bot message")
	}
}

// History returns the latest messages of a session, oldest first. Without a
// transcript store it is always empty.
func (mp *MessageProcessor) History(ctx context.Context, sessionID string, limit int) ([]redis.ChatMessage, error) {
	if mp.transcripts == nil || sessionID == "" {
		return []redis.ChatMessage{}, nil
	}
	return mp.transcripts.GetRecentHistory(ctx, sessionID, limit)
}

// ClearHistory forgets a session's transcript.
func (mp *MessageProcessor) ClearHistory(ctx context.Context, sessionID string) error {
	if mp.transcripts == nil || sessionID == "" {
		return nil
	}
	return mp.transcripts.ClearChatHistory(ctx, sessionID)
}
