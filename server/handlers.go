package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/rigbot/processor"
)

const (
	methodNotAllowedMessage = "Método no permitido"
	invalidBodyMessage      = "Cuerpo de la solicitud inválido"
	missingMessageMessage   = "Falta el mensaje del usuario"
)

// chatHandler answers POST /api/chat. OPTIONS is the CORS preflight; any
// other method is rejected.
func (s *Server) chatHandler(c fiber.Ctx) error {
	setChatCORS(c)

	switch c.Method() {
	case fiber.MethodOptions:
		c.Status(fiber.StatusOK)
		return nil
	case fiber.MethodPost:
	default:
		return c.Status(fiber.StatusMethodNotAllowed).JSON(ErrorResponse{Error: methodNotAllowedMessage})
	}

	var req ChatRequest
	if err := c.Bind().JSON(&req); err != nil {
		log.Warn().Err(err).Msg("Error parsing chat request")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: invalidBodyMessage})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: missingMessageMessage})
	}

	reply, err := s.messageProcessor.ProcessChat(c.Context(), processor.ChatRequest{
		Message:   req.Message,
		SessionID: req.SessionID,
	})
	if err != nil {
		if errors.Is(err, processor.ErrEmptyMessage) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: missingMessageMessage})
		}
		log.Error().
			Err(err).
			Str("session_id", req.SessionID).
			Bool("calendar", errors.Is(err, processor.ErrCalendarUnavailable)).
			Bool("completion", errors.Is(err, processor.ErrCompletionUnavailable)).
			Msg("Error processing chat message")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: internalErrorMessage})
	}

	return c.JSON(ChatResponse{Response: reply.Text})
}

func (s *Server) healthCheckHandler(c fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "ok"})
}
