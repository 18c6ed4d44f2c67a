package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventPlayerJoined EventType = "player_joined"
	EventBetPlaced    EventType = "bet_placed"
	EventRoundDealt   EventType = "round_dealt"
	EventHandAction   EventType = "hand_action"
	EventRoundSettled EventType = "round_settled"
	EventRoundStarted EventType = "round_started"
)

// TableEvent is published after every applied intent. Subscribers re-project
// the table for their own viewer, so the event carries no hidden state.
type TableEvent struct {
	Type      EventType
	Timestamp time.Time
	TableID   TableID
	PlayerID  PlayerID // who triggered the event
	Action    Action
	Round     int
	Phase     Phase
}
