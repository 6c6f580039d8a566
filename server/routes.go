package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

func (s *Server) setupRoutes() {
	s.app.All("/api/chat", s.chatHandler)

	history := s.app.Group("/api/chat/history", s.historyCORS()...)
	history.Get("", s.historyHandler)
	history.Delete("", s.clearHistoryHandler)

	s.app.Get("/widget.js", s.widgetHandler)
	s.app.Get("/healthz", s.healthCheckHandler)
	s.app.Get("/metrics", adaptor.HTTPHandler(s.metricsHandler))
}
