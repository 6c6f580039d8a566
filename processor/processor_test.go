package processor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextMind-AI/rigbot/metrics"
	"github.com/NextMind-AI/rigbot/redis"
	"github.com/NextMind-AI/rigbot/scheduling"
)

type fakeCalendar struct {
	mu    sync.Mutex
	busy  []scheduling.Interval
	err   error
	block chan struct{}
	calls []time.Time
}

func (f *fakeCalendar) ListBusyIntervals(ctx context.Context, start, end time.Time) ([]scheduling.Interval, error) {
	f.mu.Lock()
	f.calls = append(f.calls, start, end)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.busy, f.err
}

func (f *fakeCalendar) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls) / 2
}

type fakeCompletion struct {
	mu           sync.Mutex
	reply        string
	err          error
	calls        int
	systemPrompt string
	message      string
}

func (f *fakeCompletion) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.systemPrompt = systemPrompt
	f.message = userMessage
	return f.reply, f.err
}

type failingTranscripts struct{ MemoryTranscriptStore }

func (*failingTranscripts) AddUserMessage(ctx context.Context, sessionID, message string) error {
	return errors.New("redis down")
}

func (*failingTranscripts) AddBotMessage(ctx context.Context, sessionID, message string) error {
	return errors.New("redis down")
}

func (*failingTranscripts) GetRecentHistory(ctx context.Context, sessionID string, limit int) ([]redis.ChatMessage, error) {
	return nil, errors.New("redis down")
}

func santiago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)
	return loc
}

// mondayNine is Monday 13 October 2025, 09:00 in Santiago.
func mondayNine(loc *time.Location) time.Time {
	return time.Date(2025, time.October, 13, 9, 0, 0, 0, loc)
}

func newProcessor(t *testing.T, cal CalendarGateway, comp CompletionGateway, opts Options) *MessageProcessor {
	t.Helper()
	loc := santiago(t)
	if opts.BusinessCalendar.Location == nil {
		opts.BusinessCalendar = scheduling.DefaultBusinessCalendar(loc)
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return mondayNine(loc) }
	}
	return NewMessageProcessor(cal, comp, opts)
}

func TestProcessChat_ListsAvailability(t *testing.T) {
	cal := &fakeCalendar{}
	comp := &fakeCompletion{}
	mp := newProcessor(t, cal, comp, Options{})

	reply, err := mp.ProcessChat(context.Background(), ChatRequest{Message: "¿Qué horas tienen hoy?"})
	require.NoError(t, err)

	assert.Equal(t, metrics.KindAvailability, reply.Kind)
	assert.True(t, strings.HasPrefix(reply.Text, "📅 Estas son algunas horas disponibles para el lunes 13 de octubre:"), reply.Text)
	assert.Contains(t, reply.Text, "\n- lunes 13 de octubre, 10:00")
	assert.Contains(t, reply.Text, "(Y 15 más...)")
	assert.Equal(t, 1, cal.callCount())
	assert.Zero(t, comp.calls)

	loc := santiago(t)
	assert.Equal(t, time.Date(2025, time.October, 13, 0, 0, 0, 0, loc), cal.calls[0])
	assert.Equal(t, time.Date(2025, time.October, 14, 0, 0, 0, 0, loc), cal.calls[1])
}

func TestProcessChat_BusyTargetHour(t *testing.T) {
	loc := santiago(t)
	cal := &fakeCalendar{busy: []scheduling.Interval{{
		Start: time.Date(2025, time.October, 13, 10, 0, 0, 0, loc),
		End:   time.Date(2025, time.October, 13, 10, 30, 0, 0, loc),
	}}}
	mp := newProcessor(t, cal, &fakeCompletion{}, Options{})

	reply, err := mp.ProcessChat(context.Background(), ChatRequest{Message: "¿Tienen hora hoy a las 10?"})
	require.NoError(t, err)
	assert.Equal(t, "Lo siento, el lunes 13 de octubre a las 10:00 no se encuentra disponible. ¿Te gustaría buscar otro horario?", reply.Text)
}

func TestProcessChat_FreeTargetHour(t *testing.T) {
	mp := newProcessor(t, &fakeCalendar{}, &fakeCompletion{}, Options{})

	reply, err := mp.ProcessChat(context.Background(), ChatRequest{Message: "¿Tienen hora hoy a las 10?"})
	require.NoError(t, err)
	assert.Equal(t, "¡Sí! El lunes 13 de octubre, 10:00 está disponible.", reply.Text)
}

func TestProcessChat_OutOfHoursSkipsCalendar(t *testing.T) {
	cal := &fakeCalendar{}
	comp := &fakeCompletion{}
	mp := newProcessor(t, cal, comp, Options{})

	reply, err := mp.ProcessChat(context.Background(), ChatRequest{Message: "¿Tienen hora a las 5am?"})
	require.NoError(t, err)

	assert.Equal(t, metrics.KindOutOfHours, reply.Kind)
	assert.Contains(t, reply.Text, "05:00")
	assert.Contains(t, reply.Text, "10:00 a 19:30")
	assert.Zero(t, cal.callCount())
	assert.Zero(t, comp.calls)
}

func TestProcessChat_OtherMessagesUseCompletion(t *testing.T) {
	cal := &fakeCalendar{}
	comp := &fakeCompletion{reply: "La sesión cuesta $25.000."}
	mp := newProcessor(t, cal, comp, Options{SystemPrompt: "Eres Rigbot."})

	reply, err := mp.ProcessChat(context.Background(), ChatRequest{Message: "  ¿Cuánto cuesta la sesión?  "})
	require.NoError(t, err)

	assert.Equal(t, metrics.KindCompletion, reply.Kind)
	assert.Equal(t, "La sesión cuesta $25.000.", reply.Text)
	assert.Equal(t, 1, comp.calls)
	assert.Equal(t, "¿Cuánto cuesta la sesión?", comp.message)
	assert.Equal(t, "Eres Rigbot.", comp.systemPrompt)
	assert.Zero(t, cal.callCount())
}

func TestProcessChat_EmptyMessage(t *testing.T) {
	cal := &fakeCalendar{}
	comp := &fakeCompletion{}
	mp := newProcessor(t, cal, comp, Options{})

	_, err := mp.ProcessChat(context.Background(), ChatRequest{Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, cal.callCount())
	assert.Zero(t, comp.calls)
}

func TestProcessChat_GatewayFailures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("calendar", func(t *testing.T) {
		mp := newProcessor(t, &fakeCalendar{err: boom}, &fakeCompletion{}, Options{})
		_, err := mp.ProcessChat(context.Background(), ChatRequest{Message: "¿hay hora mañana?"})
		assert.ErrorIs(t, err, ErrCalendarUnavailable)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("completion", func(t *testing.T) {
		mp := newProcessor(t, &fakeCalendar{}, &fakeCompletion{err: boom}, Options{})
		_, err := mp.ProcessChat(context.Background(), ChatRequest{Message: "hola"})
		assert.ErrorIs(t, err, ErrCompletionUnavailable)
		assert.ErrorIs(t, err, boom)
	})
}

func TestProcessChat_GatewayTimeout(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	cal := &fakeCalendar{block: block}
	mp := newProcessor(t, cal, &fakeCompletion{}, Options{GatewayTimeout: 20 * time.Millisecond})

	started := time.Now()
	_, err := mp.ProcessChat(context.Background(), ChatRequest{Message: "¿hay hora mañana?"})
	assert.ErrorIs(t, err, ErrCalendarUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(started), 2*time.Second)
}

func TestProcessChat_RecordsTranscript(t *testing.T) {
	store := NewMemoryTranscriptStore()
	mp := newProcessor(t, &fakeCalendar{}, &fakeCompletion{reply: "¡Hola!"}, Options{Transcripts: store})

	_, err := mp.ProcessChat(context.Background(), ChatRequest{Message: "hola", SessionID: "s1"})
	require.NoError(t, err)
	_, err = mp.ProcessChat(context.Background(), ChatRequest{Message: "sin sesión"})
	require.NoError(t, err)

	history, err := mp.History(context.Background(), "s1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "hola", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, "¡Hola!", history[1].Content)

	require.NoError(t, mp.ClearHistory(context.Background(), "s1"))
	history, err = mp.History(context.Background(), "s1", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestProcessChat_TranscriptFailureDoesNotFailReply(t *testing.T) {
	mp := newProcessor(t, &fakeCalendar{}, &fakeCompletion{reply: "¡Hola!"}, Options{Transcripts: &failingTranscripts{}})

	reply, err := mp.ProcessChat(context.Background(), ChatRequest{Message: "hola", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "¡Hola!", reply.Text)

	_, err = mp.History(context.Background(), "s1", 10)
	assert.Error(t, err)
	assert.NoError(t, mp.ClearHistory(context.Background(), "s1"))
}

func TestHistoryWithoutStore(t *testing.T) {
	mp := newProcessor(t, &fakeCalendar{}, &fakeCompletion{}, Options{})

	history, err := mp.History(context.Background(), "s1", 10)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
	assert.NoError(t, mp.ClearHistory(context.Background(), "s1"))
}

func TestMockCalendarGatewayFiltersWindow(t *testing.T) {
	loc := santiago(t)
	day := func(d int) time.Time { return time.Date(2025, time.October, d, 10, 0, 0, 0, loc) }
	m := &MockCalendarGateway{Busy: []scheduling.Interval{
		{Start: day(13), End: day(13).Add(time.Hour)},
		{Start: day(20), End: day(20).Add(time.Hour)},
	}}

	busy, err := m.ListBusyIntervals(context.Background(), day(13).Add(-10*time.Hour), day(14))
	require.NoError(t, err)
	require.Len(t, busy, 1)
	assert.Equal(t, day(13), busy[0].Start)
}
