// Package natsbus shares table events between server instances over NATS.
// Each instance publishes the events it produces on bj.table.<id> and relays
// events produced elsewhere into its own local publisher.
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/mcoot/blackjack-go/internal/events"
	"github.com/mcoot/blackjack-go/internal/model"
)

const subjectPrefix = "bj.table."

// Conn is the part of *nats.Conn the bus uses
type Conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

var _ Conn = (*nats.Conn)(nil)

// Connect dials the NATS server at url
func Connect(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url, nats.Name(name), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return conn, nil
}

// Subject returns the subject events for a table are published on
func Subject(id model.TableID) string {
	return subjectPrefix + string(id)
}

type envelope struct {
	Origin string           `json:"origin"`
	Event  model.TableEvent `json:"event"`
}

// Bus publishes local events to NATS and relays remote ones locally
type Bus struct {
	conn     Conn
	instance string
	local    events.Publisher
	logger   *slog.Logger
	sub      *nats.Subscription
}

var _ events.Publisher = (*Bus)(nil)

// New creates a Bus. instance identifies this server so its own events are
// not relayed back to it; local receives events from other instances.
func New(conn Conn, instance string, local events.Publisher, logger *slog.Logger) *Bus {
	return &Bus{
		conn:     conn,
		instance: instance,
		local:    local,
		logger:   logger.With(slog.String("component", "natsbus")),
	}
}

// Publish sends the event to every other instance
func (b *Bus) Publish(_ context.Context, event model.TableEvent) {
	data, err := json.Marshal(envelope{Origin: b.instance, Event: event})
	if err != nil {
		b.logger.Error("failed to encode event", slog.String("error", err.Error()))
		return
	}
	if err := b.conn.Publish(Subject(event.TableID), data); err != nil {
		b.logger.Warn("failed to publish event",
			slog.String("table_id", string(event.TableID)),
			slog.String("error", err.Error()))
	}
}

// Start subscribes to events for every table
func (b *Bus) Start() error {
	sub, err := b.conn.Subscribe(subjectPrefix+"*", b.handle)
	if err != nil {
		return fmt.Errorf("subscribe to table events: %w", err)
	}
	b.sub = sub
	b.logger.Info("relaying table events", slog.String("instance", b.instance))
	return nil
}

// Stop ends the subscription
func (b *Bus) Stop() error {
	if b.sub == nil {
		return nil
	}
	return b.sub.Unsubscribe()
}

func (b *Bus) handle(msg *nats.Msg) {
	var env envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		b.logger.Warn("dropping malformed event",
			slog.String("subject", msg.Subject),
			slog.String("error", err.Error()))
		return
	}
	if env.Origin == b.instance {
		return
	}
	if id := strings.TrimPrefix(msg.Subject, subjectPrefix); id != string(env.Event.TableID) {
		b.logger.Warn("dropping event for mismatched subject", slog.String("subject", msg.Subject))
		return
	}
	b.local.Publish(context.Background(), env.Event)
}
