// Package events provides EventPublisher implementations.
// Delivery to the notification collaborator is fire-and-forget: Publish
// never blocks, and a full buffer drops the event with a warning rather
// than stalling a purchase commit.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/openlearn/coursegate/ports"
	"github.com/rs/zerolog"
)

// Handler processes one event. Handlers run on the publisher's worker
// goroutine and should not block for long.
type Handler func(ctx context.Context, event ports.Event)

// Publisher queues events and delivers them asynchronously to handlers.
type Publisher struct {
	handlers []Handler
	logger   zerolog.Logger
	ch       chan ports.Event
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates a publisher with the given buffer size and starts
// its worker goroutine.
func NewPublisher(logger zerolog.Logger, buffer int, handlers ...Handler) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	p := &Publisher{
		handlers: handlers,
		logger:   logger.With().Str("component", "events").Logger(),
		ch:       make(chan ports.Event, buffer),
	}

	p.wg.Add(1)
	go p.run()

	return p
}

// Publish queues an event without blocking. Events are dropped with a
// warning when the buffer is full.
func (p *Publisher) Publish(event ports.Event) {
	// The read lock is held across the send so Close cannot close the
	// channel between the closed check and the send.
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}

	select {
	case p.ch <- event:
	default:
		p.logger.Warn().
			Str("type", event.Type).
			Str("user_id", event.UserID).
			Msg("event buffer full, dropping event")
	}
}

// Close stops the publisher after flushing queued events.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.ch)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

func (p *Publisher) run() {
	defer p.wg.Done()

	for event := range p.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		for _, h := range p.handlers {
			h(ctx, event)
		}
		cancel()
	}
}

// LogHandler returns a handler that records events in the log. It stands in
// for the external notification collaborator in local runs.
func LogHandler(logger zerolog.Logger) Handler {
	l := logger.With().Str("component", "notifications").Logger()
	return func(ctx context.Context, event ports.Event) {
		l.Info().
			Str("type", event.Type).
			Str("user_id", event.UserID).
			Str("course_id", event.CourseID).
			Str("purchase_id", event.PurchaseID).
			Int64("amount", event.Amount).
			Time("at", event.At).
			Msg("event")
	}
}

// Noop discards all events.
type Noop struct{}

// Publish discards the event.
func (Noop) Publish(ports.Event) {}

// Close does nothing.
func (Noop) Close() error { return nil }

// Ensure interface compliance.
var (
	_ ports.EventPublisher = (*Publisher)(nil)
	_ ports.EventPublisher = Noop{}
)
