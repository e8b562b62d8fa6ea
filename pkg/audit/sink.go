package audit

import (
	"context"
	"log/slog"
	"sync"
)

// Sink receives audit events. GenerateEvent hands out the event to
// fill in so sinks can pre-stamp defaults if they need to.
type Sink interface {
	GenerateEvent() *Event
	Publish(ctx context.Context, event *Event) error
}

// SlogSink writes audit events to a structured logger. This is the
// default sink when no dedicated audit backend is wired.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink writing to the given logger. A nil logger
// falls back to slog.Default().
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{
		logger: logger,
	}
}

func (s *SlogSink) GenerateEvent() *Event {
	return NewEvent()
}

func (s *SlogSink) Publish(ctx context.Context, event *Event) error {
	attrs := []any{
		"app", event.App,
		"type", event.Type,
		"author", event.Author,
		"affectedUser", event.AffectedUser,
		"subject", event.Subject,
	}
	for k, v := range event.SubjectParams {
		attrs = append(attrs, "param."+k, v)
	}
	s.logger.InfoContext(ctx, "Audit event", attrs...)
	return nil
}

// MemorySink keeps published events in memory. Intended for tests and
// for the in-memory demo wiring.
type MemorySink struct {
	mutex  sync.Mutex
	events []*Event
}

// NewMemorySink creates an empty in-memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) GenerateEvent() *Event {
	return NewEvent()
}

func (s *MemorySink) Publish(ctx context.Context, event *Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of all published events in publish order
func (s *MemorySink) Events() []*Event {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]*Event, len(s.events))
	copy(out, s.events)
	return out
}

// Reset drops all recorded events
func (s *MemorySink) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.events = nil
}
