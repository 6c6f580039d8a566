package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/NextMind-AI/rigbot/metrics"
	"github.com/NextMind-AI/rigbot/scheduling"
)

func (mp *MessageProcessor) fetchBusyIntervals(ctx context.Context, start, end time.Time) ([]scheduling.Interval, error) {
	started := time.Now()
	busy, err := callWithTimeout(ctx, mp.gatewayTimeout, func(ctx context.Context) ([]scheduling.Interval, error) {
		return mp.calendarGateway.ListBusyIntervals(ctx, start, end)
	})
	mp.metrics.ObserveGateway("calendar", time.Since(started).Seconds(), err)
	return busy, err
}

func (mp *MessageProcessor) answerWithCompletion(ctx context.Context, message string) (ChatReply, error) {
	started := time.Now()
	text, err := callWithTimeout(ctx, mp.gatewayTimeout, func(ctx context.Context) (string, error) {
		return mp.completionGateway.Complete(ctx, mp.systemPrompt, message)
	})
	mp.metrics.ObserveGateway("completion", time.Since(started).Seconds(), err)
	if err != nil {
		return ChatReply{}, fmt.Errorf("%w: %w", ErrCompletionUnavailable, err)
	}
	return ChatReply{Text: text, Kind: metrics.KindCompletion}, nil
}

// callWithTimeout bounds call by timeout even when the callee ignores its
// context. The callee's late result is discarded.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, call func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		value, err := call(ctx)
		done <- result{value: value, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
