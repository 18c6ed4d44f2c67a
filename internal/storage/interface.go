package storage

import (
	"context"
	"time"

	"github.com/mcoot/blackjack-go/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// Session operations. Sessions expire at their ExpiresAt.
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error

	// Table operations. Every save stores a full snapshot and refreshes its TTL.
	SaveTable(ctx context.Context, table *model.Table) error
	GetTable(ctx context.Context, id model.TableID) (*model.Table, error)
	DeleteTable(ctx context.Context, id model.TableID) error

	// Join code index. ReserveCode only succeeds if the code is unused;
	// ReleaseCode only frees it while it still points at id.
	ReserveCode(ctx context.Context, code model.TableCode, id model.TableID) (bool, error)
	ReleaseCode(ctx context.Context, code model.TableCode, id model.TableID) error
	GetTableIDByCode(ctx context.Context, code model.TableCode) (model.TableID, error)

	LockStore
}

// LockStore is the lock primitive of the key-value store. Locks expire after
// their TTL so a crashed holder cannot wedge a table.
type LockStore interface {
	// AcquireLock sets key to token only if key is not already held
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	// ReleaseLock deletes key only if it still holds token
	ReleaseLock(ctx context.Context, key, token string) (bool, error)
}
