package server

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// historyHandler handles GET /api/chat/history?session_id=...&limit=...
func (s *Server) historyHandler(c fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "session_id es obligatorio"})
	}

	limit := defaultHistoryLimit
	if limitParam := c.Query("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 && l <= maxHistoryLimit {
			limit = l
		}
	}

	messages, err := s.messageProcessor.History(c.Context(), sessionID, limit)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Error getting chat history")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: internalErrorMessage})
	}

	return c.JSON(HistoryResponse{
		SessionID: sessionID,
		Messages:  messages,
	})
}

// clearHistoryHandler handles DELETE /api/chat/history?session_id=...
func (s *Server) clearHistoryHandler(c fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "session_id es obligatorio"})
	}

	if err := s.messageProcessor.ClearHistory(c.Context(), sessionID); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Error clearing chat history")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: internalErrorMessage})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
