package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mcoot/blackjack-go/internal/dependencies/clock"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/storage"
)

// DefaultTableTTL matches the redis store's session expiry
const DefaultTableTTL = 6 * time.Hour

// Storage is an in-memory implementation of the storage interface.
// Tables are held as encoded snapshots so a caller mutating a loaded table
// never changes what is stored until it saves.
type Storage struct {
	mu    sync.RWMutex
	clock clock.Clock
	ttl   time.Duration

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	usernameIndex     map[string]model.PlayerID
	sessions          map[string]model.Session
	tables            map[model.TableID]entry
	codes             map[model.TableCode]codeEntry
	locks             map[string]lockEntry
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

type codeEntry struct {
	tableID   model.TableID
	expiresAt time.Time
}

type lockEntry struct {
	token     string
	expiresAt time.Time
}

// New creates a new in-memory storage instance
func New() *Storage {
	return NewWithClock(clock.New(), DefaultTableTTL)
}

// NewWithClock creates an in-memory storage whose expiries follow clk
func NewWithClock(clk clock.Clock, tableTTL time.Duration) *Storage {
	return &Storage{
		clock:             clk,
		ttl:               tableTTL,
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		usernameIndex:     make(map[string]model.PlayerID),
		sessions:          make(map[string]model.Session),
		tables:            make(map[model.TableID]entry),
		codes:             make(map[model.TableCode]codeEntry),
		locks:             make(map[string]lockEntry),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *player
	s.players[player.ID] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registeredPlayers[rp.PlayerID] = rp
	s.usernameIndex[rp.Username] = rp.PlayerID
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return rp, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *session
	return nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok || !s.clock.Now().Before(session.ExpiresAt) {
		return nil, model.ErrSessionNotFound
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Table operations

func (s *Storage) SaveTable(ctx context.Context, table *model.Table) error {
	data, err := json.Marshal(table)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt := s.clock.Now().Add(s.ttl)
	s.tables[table.ID] = entry{data: data, expiresAt: expiresAt}
	if table.Code != "" {
		if c, ok := s.codes[table.Code]; ok && c.tableID == table.ID {
			s.codes[table.Code] = codeEntry{tableID: table.ID, expiresAt: expiresAt}
		}
	}
	return nil
}

func (s *Storage) GetTable(ctx context.Context, id model.TableID) (*model.Table, error) {
	s.mu.RLock()
	e, ok := s.tables[id]
	s.mu.RUnlock()
	if !ok || !s.clock.Now().Before(e.expiresAt) {
		return nil, model.ErrTableNotFound
	}
	var table model.Table
	if err := json.Unmarshal(e.data, &table); err != nil {
		return nil, err
	}
	return &table, nil
}

func (s *Storage) DeleteTable(ctx context.Context, id model.TableID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, id)
	for code, c := range s.codes {
		if c.tableID == id {
			delete(s.codes, code)
		}
	}
	return nil
}

// Code index operations

func (s *Storage) ReserveCode(ctx context.Context, code model.TableCode, id model.TableID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	if c, ok := s.codes[code]; ok && now.Before(c.expiresAt) {
		return false, nil
	}
	s.codes[code] = codeEntry{tableID: id, expiresAt: now.Add(s.ttl)}
	return true, nil
}

func (s *Storage) ReleaseCode(ctx context.Context, code model.TableCode, id model.TableID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.codes[code]; ok && c.tableID == id {
		delete(s.codes, code)
	}
	return nil
}

func (s *Storage) GetTableIDByCode(ctx context.Context, code model.TableCode) (model.TableID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.codes[code]
	if !ok || !s.clock.Now().Before(c.expiresAt) {
		return "", model.ErrCodeNotFound
	}
	return c.tableID, nil
}

// Lock operations

func (s *Storage) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	if l, ok := s.locks[key]; ok && now.Before(l.expiresAt) {
		return false, nil
	}
	s.locks[key] = lockEntry{token: token, expiresAt: now.Add(ttl)}
	return true, nil
}

func (s *Storage) ReleaseLock(ctx context.Context, key, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok || l.token != token {
		return false, nil
	}
	delete(s.locks, key)
	return true, nil
}
