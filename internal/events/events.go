// Package events fans table changes out to subscribers.
package events

import (
	"context"
	"sync"

	"github.com/mcoot/blackjack-go/internal/model"
)

// Publisher receives an event after every applied intent
type Publisher interface {
	Publish(ctx context.Context, event model.TableEvent)
}

// Nop discards events
type Nop struct{}

// Publish does nothing
func (Nop) Publish(context.Context, model.TableEvent) {}

// Multi publishes to each publisher in turn
type Multi []Publisher

// Publish forwards the event to every publisher
func (m Multi) Publish(ctx context.Context, event model.TableEvent) {
	for _, p := range m {
		p.Publish(ctx, event)
	}
}

// Recorder keeps published events in memory, for tests
type Recorder struct {
	mu     sync.Mutex
	events []model.TableEvent
}

// Publish records the event
func (r *Recorder) Publish(_ context.Context, event model.TableEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything recorded so far
func (r *Recorder) Events() []model.TableEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.TableEvent(nil), r.events...)
}
