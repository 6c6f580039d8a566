// Package rigbot wires the chat processor to its gateways and HTTP server.
package rigbot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/rigbot/config"
	"github.com/NextMind-AI/rigbot/gemini"
	"github.com/NextMind-AI/rigbot/googlecalendar"
	"github.com/NextMind-AI/rigbot/metrics"
	"github.com/NextMind-AI/rigbot/openai"
	"github.com/NextMind-AI/rigbot/processor"
	"github.com/NextMind-AI/rigbot/redis"
	"github.com/NextMind-AI/rigbot/server"
)

const shutdownTimeout = 10 * time.Second

// Chatbot represents the main chatbot instance
type Chatbot struct {
	config           *config.Config
	messageProcessor *processor.MessageProcessor
	server           *server.Server
	closers          []func() error
}

// New connects to Google Calendar, the configured completion provider and,
// when REDIS_ADDR is set, the transcript store.
func New(ctx context.Context, cfg *config.Config) (*Chatbot, error) {
	businessCalendar, err := cfg.BusinessCalendar()
	if err != nil {
		return nil, err
	}

	c := &Chatbot{config: cfg}

	calendarClient, err := googlecalendar.NewClient(ctx, googlecalendar.Config{
		CalendarID:      cfg.GoogleCalendarID,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
		CredentialsFile: cfg.GoogleCredentialsFile,
		Location:        businessCalendar.Location,
	})
	if err != nil {
		return nil, err
	}

	completion, err := c.newCompletionGateway(ctx)
	if err != nil {
		return nil, err
	}

	var transcripts processor.TranscriptStore
	if cfg.TranscriptsEnabled() {
		redisClient := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.TranscriptTTL)
		c.closers = append(c.closers, redisClient.Close)
		transcripts = redisClient
	}

	if err := c.build(calendarClient, completion, transcripts, prometheus.DefaultRegisterer); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// NewOffline uses in-memory gateways, so no credentials are needed. Busy
// intervals are empty and completions return a canned greeting.
func NewOffline(cfg *config.Config, reg prometheus.Registerer) (*Chatbot, error) {
	c := &Chatbot{config: cfg}
	if err := c.build(
		&processor.MockCalendarGateway{},
		&processor.MockCompletionGateway{},
		processor.NewMemoryTranscriptStore(),
		reg,
	); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Chatbot) newCompletionGateway(ctx context.Context) (processor.CompletionGateway, error) {
	switch c.config.CompletionProvider {
	case config.ProviderGemini:
		geminiClient, err := gemini.NewClient(ctx, c.config.GeminiKey, c.config.GeminiModel)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, geminiClient.Close)
		log.Info().Str("model", c.config.GeminiModel).Msg("Using Gemini completions")
		return geminiClient, nil
	case config.ProviderOpenAI:
		openAIClient := openai.NewClient(openai.Config{
			APIKey:  c.config.OpenAIKey,
			Model:   c.config.OpenAIModel,
			BaseURL: c.config.OpenAIBaseURL,
		}, http.Client{})
		log.Info().Str("model", openAIClient.Model()).Msg("Using OpenAI completions")
		return &openAIClient, nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", c.config.CompletionProvider)
	}
}

func (c *Chatbot) build(
	calendarGateway processor.CalendarGateway,
	completionGateway processor.CompletionGateway,
	transcripts processor.TranscriptStore,
	reg prometheus.Registerer,
) error {
	businessCalendar, err := c.config.BusinessCalendar()
	if err != nil {
		return err
	}

	systemPrompt := c.config.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = openai.SystemPrompt
	}

	chatMetrics := metrics.NewChatMetrics(reg)

	c.messageProcessor = processor.NewMessageProcessor(calendarGateway, completionGateway, processor.Options{
		BusinessCalendar: businessCalendar,
		MaxSuggestions:   c.config.MaxSuggestions,
		SystemPrompt:     systemPrompt,
		GatewayTimeout:   c.config.GatewayTimeout,
		Transcripts:      transcripts,
		Metrics:          chatMetrics,
	})

	serverConfig := server.Config{
		PublicBaseURL:  c.config.PublicBaseURL,
		WhatsAppPhone:  c.config.WhatsAppPhone,
		HistoryOrigins: c.config.WidgetOrigins,
	}
	if gatherer, ok := reg.(prometheus.Gatherer); ok && reg != prometheus.DefaultRegisterer {
		serverConfig.MetricsHandler = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}

	c.server, err = server.New(c.messageProcessor, chatMetrics, serverConfig)
	return err
}

// Ask runs one message through the processor, as the HTTP endpoint would.
func (c *Chatbot) Ask(ctx context.Context, sessionID, message string) (processor.ChatReply, error) {
	return c.messageProcessor.ProcessChat(ctx, processor.ChatRequest{
		Message:   message,
		SessionID: sessionID,
	})
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (c *Chatbot) Run(ctx context.Context) error {
	port := c.config.Port
	if port == "" {
		port = "8080"
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.server.Start(port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := c.server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
		return err
	}
	return nil
}

// Close releases the gateway connections.
func (c *Chatbot) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
