package server

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/rigbot/metrics"
	"github.com/NextMind-AI/rigbot/processor"
)

type Config struct {
	// PublicBaseURL is where browsers reach this server; empty means the
	// origin the widget script was loaded from.
	PublicBaseURL string
	WhatsAppPhone string
	// HistoryOrigins may call the transcript API cross-origin, e.g.
	// "https://clinica.example". Empty keeps it same-origin.
	HistoryOrigins []string
	// MetricsHandler serves /metrics; nil uses the default prometheus registry.
	MetricsHandler http.Handler
}

type Server struct {
	app              *fiber.App
	messageProcessor *processor.MessageProcessor
	metrics          *metrics.ChatMetrics
	metricsHandler   http.Handler
	widget           []byte
	historyOrigins   []string
}

func New(messageProcessor *processor.MessageProcessor, chatMetrics *metrics.ChatMetrics, cfg Config) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      "rigbot",
		ErrorHandler: errorHandler,
	})

	widget, err := renderWidget(cfg.PublicBaseURL, cfg.WhatsAppPhone)
	if err != nil {
		return nil, err
	}

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	server := &Server{
		app:              app,
		messageProcessor: messageProcessor,
		metrics:          chatMetrics,
		metricsHandler:   metricsHandler,
		widget:           widget,
		historyOrigins:   cfg.HistoryOrigins,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server, nil
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start blocks serving HTTP until the server is shut down.
func (s *Server) Start(port string) error {
	log.Info().Str("port", port).Msg("Starting rigbot server")

	return s.app.Listen(":"+port, fiber.ListenConfig{
		DisableStartupMessage: true,
	})
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down rigbot server")
	return s.app.ShutdownWithContext(ctx)
}
