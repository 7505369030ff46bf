package audit

import (
	"context"
	"log/slog"
	"sync"

	"frontera/pkg/requestcontext"
)

// Publisher hands audit events to the background worker over a bounded
// channel. Emitting never blocks a request: when the buffer is full the
// event is dropped and logged, the request proceeds.
type Publisher struct {
	events chan Event
	logger *slog.Logger
	once   sync.Once
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{events: make(chan Event, buffer), logger: logger}
}

// Events is the worker's inbox.
func (p *Publisher) Events() <-chan Event {
	return p.events
}

// Emit stamps request-scoped metadata and enqueues the event.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Device == "" {
		event.Device = requestcontext.Device(ctx)
	}
	if event.UserID == "" {
		event.UserID = requestcontext.UserID(ctx)
	}

	select {
	case p.events <- event:
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit buffer full, event dropped",
				"action", event.Action,
				"collection", event.Collection,
			)
		}
	}
}

// EmitAuth records an authentication action.
func (p *Publisher) EmitAuth(ctx context.Context, userID, action, detail string) {
	p.Emit(ctx, Event{UserID: userID, Action: action, Detail: detail})
}

// EmitRecord records a record mutation.
func (p *Publisher) EmitRecord(ctx context.Context, collection, recordID, action, detail string) {
	p.Emit(ctx, Event{Action: action, Collection: collection, RecordID: recordID, Detail: detail})
}

// Close signals the worker to drain and stop. Emitting after Close is a
// programming error.
func (p *Publisher) Close() {
	p.once.Do(func() { close(p.events) })
}
