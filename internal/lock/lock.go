// Package lock provides the per-table exclusive lock every mutation runs under.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mcoot/blackjack-go/internal/dependencies/random"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/storage"
)

const (
	tokenLength   = 24
	tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var errHeld = errors.New("lock held by another owner")

// Config controls lock expiry and how long Acquire keeps trying
type Config struct {
	TTL             time.Duration // how long a held lock survives without release
	Timeout         time.Duration // give up acquiring after this long
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultConfig returns the lock settings used in production
func DefaultConfig() Config {
	return Config{
		TTL:             5 * time.Second,
		Timeout:         3 * time.Second,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     250 * time.Millisecond,
	}
}

// Locker hands out owner-token locks backed by the store's lock primitive
type Locker struct {
	store  storage.LockStore
	random random.Random
	cfg    Config
	logger *slog.Logger
}

// New creates a Locker
func New(store storage.LockStore, rnd random.Random, cfg Config, logger *slog.Logger) *Locker {
	return &Locker{
		store:  store,
		random: rnd,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "lock")),
	}
}

// Lock is a held lock. Release it exactly once.
type Lock struct {
	locker *Locker
	key    string
	token  string
}

// Acquire polls the store with exponential backoff until the lock is taken or
// the configured timeout passes, in which case it returns model.ErrLockTimeout.
func (l *Locker) Acquire(ctx context.Context, key string) (*Lock, error) {
	token := l.random.String(tokenLength, tokenAlphabet)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.cfg.InitialInterval
	b.MaxInterval = l.cfg.MaxInterval
	b.MaxElapsedTime = l.cfg.Timeout

	attempts := 0
	op := func() error {
		attempts++
		ok, err := l.store.AcquireLock(ctx, key, token, l.cfg.TTL)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return errHeld
		}
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(b, ctx))
	switch {
	case err == nil:
		return &Lock{locker: l, key: key, token: token}, nil
	case errors.Is(err, errHeld):
		l.logger.Warn("lock acquisition timed out",
			slog.String("key", key),
			slog.Int("attempts", attempts),
		)
		return nil, model.ErrLockTimeout
	default:
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
}

// Release gives the lock up if this owner still holds it. A lock that already
// expired and was taken by someone else is left alone.
func (k *Lock) Release(ctx context.Context) error {
	released, err := k.locker.store.ReleaseLock(ctx, k.key, k.token)
	if err != nil {
		return fmt.Errorf("release lock %s: %w", k.key, err)
	}
	if !released {
		k.locker.logger.Warn("lock expired before release", slog.String("key", k.key))
	}
	return nil
}

// WithLock runs fn while holding key. Release uses a fresh context so a
// cancelled request still frees the lock.
func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	held, err := l.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := held.Release(releaseCtx); err != nil {
			l.logger.Error("failed to release lock", slog.String("key", key), slog.String("error", err.Error()))
		}
	}()
	return fn(ctx)
}

// TableKey is the lock name for a table
func TableKey(id model.TableID) string {
	return "table:" + string(id)
}
