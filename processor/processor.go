package processor

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/rigbot/metrics"
	"github.com/NextMind-AI/rigbot/scheduling"
)

const defaultGatewayTimeout = 12 * time.Second

type Options struct {
	BusinessCalendar scheduling.BusinessCalendar
	MaxSuggestions   int
	// SystemPrompt is passed to the completion gateway; empty uses the gateway default.
	SystemPrompt   string
	GatewayTimeout time.Duration
	// Transcripts is optional.
	Transcripts TranscriptStore
	Metrics     *metrics.ChatMetrics
	// Now overrides the clock, for tests.
	Now func() time.Time
}

type MessageProcessor struct {
	calendarGateway   CalendarGateway
	completionGateway CompletionGateway
	transcripts       TranscriptStore
	metrics           *metrics.ChatMetrics

	calendar       scheduling.BusinessCalendar
	resolver       scheduling.Resolver
	formatter      scheduling.Formatter
	systemPrompt   string
	gatewayTimeout time.Duration
	now            func() time.Time
}

func NewMessageProcessor(calendarGateway CalendarGateway, completionGateway CompletionGateway, opts Options) *MessageProcessor {
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = defaultGatewayTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &MessageProcessor{
		calendarGateway:   calendarGateway,
		completionGateway: completionGateway,
		transcripts:       opts.Transcripts,
		metrics:           opts.Metrics,
		calendar:          opts.BusinessCalendar,
		resolver:          scheduling.NewResolver(opts.BusinessCalendar),
		formatter:         scheduling.NewFormatter(opts.BusinessCalendar, opts.MaxSuggestions),
		systemPrompt:      opts.SystemPrompt,
		gatewayTimeout:    opts.GatewayTimeout,
		now:               opts.Now,
	}
}

// ProcessChat answers one chat message. Availability questions are answered
// from the calendar; everything else goes to the completion gateway. At most
// one gateway is called.
func (mp *MessageProcessor) ProcessChat(ctx context.Context, req ChatRequest) (ChatReply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return ChatReply{}, ErrEmptyMessage
	}

	log.Info().
		Str("session_id", req.SessionID).
		Int("length", len(message)).
		Msg("Processing chat message")

	mp.storeUserMessage(ctx, req.SessionID, message)

	var (
		reply ChatReply
		err   error
	)
	if scheduling.IsSchedulingQuery(message) {
		reply, err = mp.answerAvailability(ctx, message)
	} else {
		reply, err = mp.answerWithCompletion(ctx, message)
	}
	if err != nil {
		return ChatReply{}, err
	}

	mp.metrics.ObserveMessage(reply.Kind)
	mp.storeBotMessage(ctx, req.SessionID, reply.Text)

	log.Info().
		Str("session_id", req.SessionID).
		Str("kind", reply.Kind).
		Msg("Completed chat message")

	return reply, nil
}
