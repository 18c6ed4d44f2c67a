// Package auth resolves bearer tokens to players. Sessions live in storage so
// any server instance can validate a token issued by another.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/blackjack-go/internal/dependencies/clock"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidDisplayName = errors.New("display name must be 1-24 characters")
	ErrInvalidUsername    = errors.New("username must be 3-32 letters, digits or underscores")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

const (
	maxDisplayName    = 24
	minUsername       = 3
	maxUsername       = 32
	minPasswordLength = 8
)

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
	BcryptCost      int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
		BcryptCost:      bcrypt.DefaultCost,
	}
}

// Result is a freshly issued session together with its player
type Result struct {
	Session model.Session
	Player  model.Player
}

// Service issues and validates player sessions
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = defaults.SessionDuration
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	return &Service{
		storage: storage,
		clock:   clock,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "auth")),
	}
}

// CreateGuestPlayer creates an anonymous player and session
func (s *Service) CreateGuestPlayer(ctx context.Context, displayName string) (*Result, error) {
	displayName, err := cleanDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	player := &model.Player{
		ID:          model.PlayerID(generateID("p_")),
		DisplayName: displayName,
		IsGuest:     true,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("guest player created", slog.String("player_id", string(player.ID)))
	return s.issue(ctx, player)
}

// RegisterPlayer creates a registered player account and session
func (s *Service) RegisterPlayer(ctx context.Context, username, password, displayName string) (*Result, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !validUsername(username) {
		return nil, ErrInvalidUsername
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = username
	}
	displayName, err := cleanDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	_, err = s.storage.GetRegisteredPlayerByUsername(ctx, username)
	if err == nil {
		return nil, ErrUsernameExists
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	player := &model.Player{
		ID:          model.PlayerID(generateID("p_")),
		DisplayName: displayName,
		CreatedAt:   now,
	}
	registered := &model.RegisteredPlayer{
		PlayerID:     player.ID,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	if err := s.storage.SaveRegisteredPlayer(ctx, registered); err != nil {
		return nil, err
	}

	s.logger.Info("player registered",
		slog.String("player_id", string(player.ID)),
		slog.String("username", username))
	return s.issue(ctx, player)
}

// Login authenticates a registered player and creates a session
func (s *Service) Login(ctx context.Context, username, password string) (*Result, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	rp, err := s.storage.GetRegisteredPlayerByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rp.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("failed login", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}

	player, err := s.storage.GetPlayer(ctx, rp.PlayerID)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, player)
}

// Resolve returns the player a session token belongs to
func (s *Service) Resolve(ctx context.Context, token string) (*model.Player, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	session, err := s.storage.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	if !s.clock.Now().Before(session.ExpiresAt) {
		_ = s.storage.DeleteSession(ctx, token)
		return nil, ErrInvalidSession
	}

	player, err := s.storage.GetPlayer(ctx, session.PlayerID)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	return player, nil
}

// Logout invalidates a session token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.storage.DeleteSession(ctx, token)
}

func (s *Service) issue(ctx context.Context, player *model.Player) (*Result, error) {
	now := s.clock.Now()
	session := model.Session{
		Token:     generateID("sess_"),
		PlayerID:  player.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionDuration),
	}
	if err := s.storage.SaveSession(ctx, &session); err != nil {
		return nil, err
	}
	return &Result{Session: session, Player: *player}, nil
}

func cleanDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxDisplayName {
		return "", ErrInvalidDisplayName
	}
	return name, nil
}

func validUsername(username string) bool {
	if len(username) < minUsername || len(username) > maxUsername {
		return false
	}
	for _, r := range username {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '_' {
			return false
		}
	}
	return true
}

// generateID generates a random ID with a prefix
func generateID(prefix string) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}

// ServiceInterface is the identity surface used by the API
type ServiceInterface interface {
	CreateGuestPlayer(ctx context.Context, displayName string) (*Result, error)
	RegisterPlayer(ctx context.Context, username, password, displayName string) (*Result, error)
	Login(ctx context.Context, username, password string) (*Result, error)
	Resolve(ctx context.Context, token string) (*model.Player, error)
	Logout(ctx context.Context, token string) error
}

var _ ServiceInterface = (*Service)(nil)
