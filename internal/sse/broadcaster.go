package sse

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/blackjack-go/internal/events"
	"github.com/mcoot/blackjack-go/internal/model"
)

// SSE event names
const (
	EventConnected     = "connected"
	EventTableSnapshot = "table-snapshot"
	EventTableUpdate   = "table-update"
)

// Broadcaster forwards table events to the local hubs. Clients refetch the
// table on each update so the hole card is never broadcast.
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

var _ events.Publisher = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish pushes the event to everyone watching its table on this instance
func (b *Broadcaster) Publish(_ context.Context, event model.TableEvent) {
	hub := b.hubManager.GetHub(event.TableID)
	if hub == nil {
		return
	}

	data, err := json.Marshal(Payload(event))
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("table_id", string(event.TableID)),
			slog.String("error", err.Error()))
		return
	}
	hub.BroadcastEvent(EventTableUpdate, string(data))
}

// EventPayload is the JSON body of a table-update event
type EventPayload struct {
	Type      model.EventType `json:"type"`
	TableID   model.TableID   `json:"table_id"`
	PlayerID  model.PlayerID  `json:"player_id,omitempty"`
	Action    model.Action    `json:"action,omitempty"`
	Round     int             `json:"round"`
	Phase     model.Phase     `json:"phase"`
	Timestamp string          `json:"timestamp"`
}

// Payload converts a table event to its wire form
func Payload(event model.TableEvent) EventPayload {
	return EventPayload{
		Type:      event.Type,
		TableID:   event.TableID,
		PlayerID:  event.PlayerID,
		Action:    event.Action,
		Round:     event.Round,
		Phase:     event.Phase,
		Timestamp: event.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
