package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"gemreg/pkg/requestcontext"
)

// Publisher captures structured audit events. Synchronous by default; an
// async buffer can be enabled for sinks with real latency (Kafka). Audit is
// fail-open for the registry's operations: a sink failure is logged and
// counted, never propagated to the caller.
type Publisher struct {
	store  Store
	logger *slog.Logger

	buffer chan Event
	done   chan struct{}
	once   sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given buffer size.
// When the buffer is full, Emit falls back to a synchronous append rather
// than dropping the event.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.buffer = make(chan Event, size)
	}
}

// WithLogger sets the logger used to report sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher constructs a publisher over the given sink.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		go p.drain()
	}
	return p
}

// Emit records an audit event, filling in ID, timestamp, and request ID from
// the context when unset.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if p.buffer != nil {
		select {
		case p.buffer <- event:
			return nil
		default:
			// Buffer full; append inline so the event is not lost.
		}
	}
	p.append(event)
	return nil
}

// List returns events from the underlying sink, where the sink supports it.
func (p *Publisher) List(ctx context.Context) ([]Event, error) {
	return p.store.List(ctx)
}

// Close stops the async drainer after flushing buffered events. Safe to call
// on a synchronous publisher.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			<-p.done
		}
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.buffer {
		p.append(event)
	}
}

func (p *Publisher) append(event Event) {
	// Sink writes get their own timeout so a stuck sink cannot hold a caller
	// (or the drainer) indefinitely.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.store.Append(ctx, event); err != nil && p.logger != nil {
		p.logger.Error("audit append failed",
			"action", event.Action,
			"actor", event.Actor,
			"error", err,
		)
	}
}
