package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/rigbot/metrics"
	"github.com/NextMind-AI/rigbot/scheduling"
)

func (mp *MessageProcessor) answerAvailability(ctx context.Context, message string) (ChatReply, error) {
	now := mp.now()

	query, err := mp.resolver.Resolve(message, now)
	var outOfHours *scheduling.OutOfHoursError
	if errors.As(err, &outOfHours) {
		log.Info().Str("requested", outOfHours.Requested.String()).Msg("Requested hour outside business hours")
		return ChatReply{Text: mp.formatter.OutOfHours(outOfHours.Requested), Kind: metrics.KindOutOfHours}, nil
	}
	if err != nil {
		return ChatReply{}, err
	}

	start, end := mp.calendar.Window(query, now)
	busy, err := mp.fetchBusyIntervals(ctx, start, end)
	if err != nil {
		return ChatReply{}, fmt.Errorf("%w: %w", ErrCalendarUnavailable, err)
	}

	slots := mp.calendar.AvailableSlots(query, busy, now)
	mp.metrics.ObserveSlots(len(slots))

	log.Info().
		Bool("has_date", query.Date != nil).
		Bool("has_hour", query.Hour != nil).
		Str("time_of_day", query.TimeOfDay.String()).
		Int("busy", len(busy)).
		Int("slots", len(slots)).
		Msg("Computed availability")

	return ChatReply{Text: mp.formatter.Format(query, slots), Kind: metrics.KindAvailability}, nil
}
