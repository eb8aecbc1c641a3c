package usercheck

import (
	"context"
	"log/slog"
)

type EventKind string

const (
	EventTransportError EventKind = "transport_error"
	EventDecodeError    EventKind = "decode_error"
)

// Event describes a lookup that ended without an opinion on the domain.
type Event struct {
	Kind       EventKind
	Domain     string
	StatusCode int
	Err        error
}

// Sink receives diagnostic events from the checker. Recording is a side
// channel and must not block for long.
type Sink interface {
	Record(ctx context.Context, e Event)
}

// SlogSink records events as warnings on a slog logger.
type SlogSink struct {
	Logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{Logger: logger}
}

func (s *SlogSink) Record(ctx context.Context, e Event) {
	attrs := []any{
		"kind", string(e.Kind),
		"domain", e.Domain,
	}
	if e.StatusCode != 0 {
		attrs = append(attrs, "status", e.StatusCode)
	}
	if e.Err != nil {
		attrs = append(attrs, "error", e.Err)
	}
	s.Logger.WarnContext(ctx, "usercheck api error", attrs...)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Record(context.Context, Event) {}
