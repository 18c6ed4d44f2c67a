package factory

import (
	"time"

	"github.com/mcoot/blackjack-go/internal/dependencies/mocks"
	"github.com/mcoot/blackjack-go/internal/lock"
	"github.com/mcoot/blackjack-go/internal/services/auth"
	"github.com/mcoot/blackjack-go/internal/storage/memory"
	"github.com/mcoot/blackjack-go/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	store := memory.NewWithClock(mockClock, memory.DefaultTableTTL)

	authCfg := auth.DefaultConfig()
	authCfg.BcryptCost = bcrypt.MinCost
	lockCfg := lock.Config{
		TTL:             time.Minute,
		Timeout:         2 * time.Second,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}

	app := newWithDependencies(store, mockClock, mockRandom, authCfg, lockCfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
