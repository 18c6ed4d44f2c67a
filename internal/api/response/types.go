package response

import (
	"time"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/auth"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
		IsBot:       p.IsBot,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromResult creates an AuthResponse from a freshly issued session
func AuthResponseFromResult(r *auth.Result) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&r.Player),
		SessionToken: r.Session.Token,
		ExpiresAt:    r.Session.ExpiresAt,
	}
}

// Health is the response for the health endpoint
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
