package server

import "github.com/NextMind-AI/rigbot/redis"

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// HistoryResponse is returned by GET /api/chat/history.
type HistoryResponse struct {
	SessionID string              `json:"session_id"`
	Messages  []redis.ChatMessage `json:"messages"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
