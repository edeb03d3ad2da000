package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/openlearn/coursegate/ports"
)

func TestPublisher_DeliversToHandlers(t *testing.T) {
	var mu sync.Mutex
	var got []ports.Event
	handler := func(ctx context.Context, event ports.Event) {
		mu.Lock()
		got = append(got, event)
		mu.Unlock()
	}

	p := NewPublisher(zerolog.Nop(), 8, handler)

	p.Publish(ports.Event{Type: "purchase.completed", UserID: "user-1"})
	p.Publish(ports.Event{Type: "grant.revoked", UserID: "user-2"})

	// Close flushes the queue before returning.
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Type != "purchase.completed" || got[1].Type != "grant.revoked" {
		t.Errorf("events delivered out of order: %s,%s", got[0].Type, got[1].Type)
	}
}

func TestPublisher_PublishAfterCloseIsSafe(t *testing.T) {
	p := NewPublisher(zerolog.Nop(), 8)
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Must not panic on the closed channel.
	p.Publish(ports.Event{Type: "purchase.completed"})
}

func TestPublisher_PublishRacingCloseDoesNotPanic(t *testing.T) {
	p := NewPublisher(zerolog.Nop(), 4)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.Publish(ports.Event{Type: "purchase.completed"})
			}
		}()
	}

	// Close while the publishers are still running.
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	wg.Wait()
}

func TestPublisher_CloseTwice(t *testing.T) {
	p := NewPublisher(zerolog.Nop(), 8)
	if err := p.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestPublisher_FullBufferDropsWithoutBlocking(t *testing.T) {
	release := make(chan struct{})
	handler := func(ctx context.Context, event ports.Event) {
		<-release
	}

	p := NewPublisher(zerolog.Nop(), 1, handler)
	defer func() {
		close(release)
		p.Close()
	}()

	done := make(chan struct{})
	go func() {
		// Well past buffer capacity while the handler is stuck.
		for i := 0; i < 10; i++ {
			p.Publish(ports.Event{Type: "purchase.completed"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}
}

func TestNoop(t *testing.T) {
	var p Noop
	p.Publish(ports.Event{Type: "purchase.completed"})
	if err := p.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}
