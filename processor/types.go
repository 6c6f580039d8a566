package processor

import "errors"

var (
	// ErrEmptyMessage is returned for a blank chat message.
	ErrEmptyMessage = errors.New("message is required")
	// ErrCalendarUnavailable wraps any failure or timeout of the calendar lookup.
	ErrCalendarUnavailable = errors.New("calendar unavailable")
	// ErrCompletionUnavailable wraps any failure or timeout of the completion call.
	ErrCompletionUnavailable = errors.New("completion unavailable")
)

type ChatRequest struct {
	Message string
	// SessionID identifies the widget conversation. Empty disables the transcript.
	SessionID string
}

type ChatReply struct {
	Text string
	// Kind is one of the metrics.Kind* values.
	Kind string
}
