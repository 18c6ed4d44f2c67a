package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is an identity that can take a seat at a table
type Player struct {
	ID          PlayerID
	DisplayName string
	IsGuest     bool // true for unregistered players
	IsBot       bool
	BotStrategy string // advisor used when IsBot
	CreatedAt   time.Time
}

// RegisteredPlayer extends Player with authentication data
// Stored separately for security (password never in memory with session)
type RegisteredPlayer struct {
	PlayerID     PlayerID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is a bearer token issued to a player
type Session struct {
	Token     string
	PlayerID  PlayerID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Bot strategy names
const (
	BotStrategyBasic  = "basic"
	BotStrategyRandom = "random"
)

// ValidBotStrategies returns all valid bot strategy names
func ValidBotStrategies() []string {
	return []string{BotStrategyBasic, BotStrategyRandom}
}

// BotStrategyDisplayName returns a human-readable label for a strategy
func BotStrategyDisplayName(strategy string) string {
	switch strategy {
	case BotStrategyBasic:
		return "Basic strategy"
	case BotStrategyRandom:
		return "Random"
	default:
		return strategy
	}
}
