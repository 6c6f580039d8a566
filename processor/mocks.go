package processor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/rigbot/redis"
	"github.com/NextMind-AI/rigbot/scheduling"
)

// MockCalendarGateway implements CalendarGateway for offline runs. It returns
// the configured busy intervals that overlap the requested window.
type MockCalendarGateway struct {
	Busy []scheduling.Interval
}

func (m *MockCalendarGateway) ListBusyIntervals(ctx context.Context, start, end time.Time) ([]scheduling.Interval, error) {
	log.Debug().Time("start", start).Time("end", end).Msg("MOCK: listing busy intervals")
	var busy []scheduling.Interval
	for _, interval := range m.Busy {
		if interval.Overlaps(start, end) {
			busy = append(busy, interval)
		}
	}
	return busy, nil
}

// MockCompletionGateway implements CompletionGateway with a canned reply.
type MockCompletionGateway struct {
	Reply string
}

func (m *MockCompletionGateway) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	log.Debug().Str("message", userMessage).Msg("MOCK: completing message")
	if m.Reply == "" {
		return "¡Hola! Soy Rigbot. ¿En qué te puedo ayudar?", nil
	}
	return m.Reply, nil
}

// MemoryTranscriptStore implements TranscriptStore in process memory.
type MemoryTranscriptStore struct {
	mu            sync.Mutex
	conversations map[string][]redis.ChatMessage
}

func NewMemoryTranscriptStore() *MemoryTranscriptStore {
	return &MemoryTranscriptStore{
		conversations: make(map[string][]redis.ChatMessage),
	}
}

func (m *MemoryTranscriptStore) AddUserMessage(ctx context.Context, sessionID, message string) error {
	m.add(sessionID, "user", message)
	return nil
}

func (m *MemoryTranscriptStore) AddBotMessage(ctx context.Context, sessionID, message string) error {
	m.add(sessionID, "assistant", message)
	return nil
}

func (m *MemoryTranscriptStore) add(sessionID, role, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[sessionID] = append(m.conversations[sessionID], redis.ChatMessage{
		Role:      role,
		Content:   message,
		Timestamp: time.Now(),
	})
}

func (m *MemoryTranscriptStore) GetRecentHistory(ctx context.Context, sessionID string, limit int) ([]redis.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.conversations[sessionID]
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return append([]redis.ChatMessage{}, history...), nil
}

func (m *MemoryTranscriptStore) ClearChatHistory(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conversations, sessionID)
	return nil
}
