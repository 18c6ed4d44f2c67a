package factory

import (
	"context"

	"github.com/mcoot/blackjack-go/internal/events"
	"github.com/mcoot/blackjack-go/internal/model"
)

// fanout delivers events to this instance's hubs and, once a bus is attached,
// to every other instance. Targets are only added during start-up.
type fanout struct {
	local   events.Publisher
	targets events.Multi
}

func newFanout(local events.Publisher) *fanout {
	return &fanout{local: local, targets: events.Multi{local}}
}

func (f *fanout) attach(p events.Publisher) {
	f.targets = append(f.targets, p)
}

func (f *fanout) Publish(ctx context.Context, event model.TableEvent) {
	f.targets.Publish(ctx, event)
}
