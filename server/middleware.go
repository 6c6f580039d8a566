package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const internalErrorMessage = "Ocurrió un error en Rigbot. Por favor intenta nuevamente."

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.app.Use(s.requestLogger)

	// Panics below this point become 500 responses
	s.app.Use(recover.New())
}

// historyCORS opens the transcript routes to the configured widget origins
// only. The session id is their sole credential, so with no origins
// configured they stay same-origin.
func (s *Server) historyCORS() []fiber.Handler {
	if len(s.historyOrigins) == 0 {
		return nil
	}
	return []fiber.Handler{cors.New(cors.Config{
		AllowOrigins: s.historyOrigins,
		AllowMethods: []string{fiber.MethodGet, fiber.MethodDelete},
		AllowHeaders: []string{fiber.HeaderContentType},
	})}
}

// requestLogger tags each request with an id, then logs and counts it once
// the error handler has settled the status code.
func (s *Server) requestLogger(c fiber.Ctx) error {
	started := time.Now()

	requestID := c.Get(fiber.HeaderXRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, requestID)

	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			log.Error().Err(herr).Str("request_id", requestID).Msg("Error handler failed")
			c.Status(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	route := c.Route().Path
	s.metrics.ObserveRequest(route, c.Method(), status)

	event := log.Info()
	if status >= fiber.StatusInternalServerError {
		event = log.Warn()
	}
	event.
		Str("request_id", requestID).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("latency", time.Since(started)).
		Msg("Handled request")

	return nil
}

// errorHandler renders every error as {"error": ...}. Unexpected errors keep
// their detail in the log only.
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := internalErrorMessage

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		if code < fiber.StatusInternalServerError {
			message = fiberErr.Message
		}
	}

	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	}

	return c.Status(code).JSON(ErrorResponse{Error: message})
}

// setChatCORS sets the exact headers the embeddable widget relies on.
func setChatCORS(c fiber.Ctx) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowMethods, "POST, OPTIONS")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type")
}
