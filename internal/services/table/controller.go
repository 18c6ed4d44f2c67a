package table

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/mcoot/blackjack-go/internal/dependencies/clock"
	"github.com/mcoot/blackjack-go/internal/dependencies/random"
	"github.com/mcoot/blackjack-go/internal/events"
	"github.com/mcoot/blackjack-go/internal/lock"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/view"
	"github.com/mcoot/blackjack-go/internal/storage"
)

const (
	// CodeLength is the length of generated join codes
	CodeLength = 4
	// CodeAlphabet is the characters used in join codes (avoid confusing chars)
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// MaxDecks is the largest shoe a table may be created with
	MaxDecks = 8
	// MaxBots is how many bots can join the host at a solo table
	MaxBots = model.MaxSeats - 1

	maxCodeAttempts = 32
	botIDAlphabet   = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// CreateOptions overrides the house defaults for a new table. Zero values
// keep the default.
type CreateOptions struct {
	Mode        model.TableMode
	Decks       int
	HitSoft17   *bool
	MinBet      int
	Code        model.TableCode // pvp only; generated when empty
	Bots        int             // solo only
	BotStrategy string
}

// Controller runs every table mutation through the lock, load, apply, save,
// release cycle. It holds no table state between calls.
type Controller struct {
	storage   storage.Storage
	locker    *lock.Locker
	engine    *Engine
	publisher events.Publisher
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
}

// NewController creates a new table Controller
func NewController(
	storage storage.Storage,
	locker *lock.Locker,
	engine *Engine,
	publisher events.Publisher,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Controller{
		storage:   storage,
		locker:    locker,
		engine:    engine,
		publisher: publisher,
		clock:     clock,
		random:    random,
		logger:    logger.With(slog.String("component", "table_controller")),
	}
}

// Create opens a new table with host in seat 0
func (c *Controller) Create(ctx context.Context, host model.Player, opts CreateOptions) (*view.TableView, error) {
	rules, err := rulesFromOptions(opts)
	if err != nil {
		return nil, err
	}
	if opts.Mode == "" {
		opts.Mode = model.TableModeSolo
	}

	now := c.clock.Now()
	table := &model.Table{
		ID:        model.TableID(uuid.NewString()),
		Mode:      opts.Mode,
		Rules:     rules,
		Shoe:      c.engine.NewShoe(rules, c.shoeSeed(opts.Mode, host.ID)),
		Seats:     []model.Seat{},
		Phase:     model.PhaseBetting,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.engine.SeatPlayer(table, &host); err != nil {
		return nil, err
	}
	for i := 1; i <= opts.Bots; i++ {
		bot := model.Player{
			ID:          model.PlayerID("bot_" + c.random.String(12, botIDAlphabet)),
			DisplayName: fmt.Sprintf("Bot %d", i),
			IsBot:       true,
			BotStrategy: opts.BotStrategy,
			CreatedAt:   now,
		}
		if err := c.engine.SeatPlayer(table, &bot); err != nil {
			return nil, err
		}
	}

	if err := c.storage.SaveTable(ctx, table); err != nil {
		c.logger.Error("failed to save table",
			slog.String("table_id", string(table.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if opts.Mode == model.TableModePvP {
		coded, err := c.assignCode(ctx, table.ID, opts.Code)
		if err != nil {
			if delErr := c.storage.DeleteTable(ctx, table.ID); delErr != nil {
				c.logger.Warn("failed to discard table without code",
					slog.String("table_id", string(table.ID)),
					slog.String("error", delErr.Error()),
				)
			}
			return nil, err
		}
		table = coded
	}

	c.logger.Info("table created",
		slog.String("table_id", string(table.ID)),
		slog.String("mode", string(table.Mode)),
		slog.String("code", string(table.Code)),
		slog.String("host_id", string(host.ID)),
		slog.Int("decks", rules.Decks),
		slog.Int("bots", opts.Bots),
	)

	v := view.Project(table, host.ID)
	return &v, nil
}

// Join seats player at the pvp table with the given code
func (c *Controller) Join(ctx context.Context, code model.TableCode, player model.Player) (*view.TableView, error) {
	code = model.TableCode(strings.ToUpper(strings.TrimSpace(string(code))))
	id, err := c.storage.GetTableIDByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	seatedBefore := false
	table, err := c.mutate(ctx, id, func(t *model.Table) error {
		seatedBefore = t.Seat(player.ID) != nil
		return c.engine.SeatPlayer(t, &player)
	})
	if err != nil {
		return nil, err
	}

	if !seatedBefore {
		c.logger.Info("player joined table",
			slog.String("table_id", string(id)),
			slog.String("player_id", string(player.ID)),
			slog.Int("seat", table.Seat(player.ID).Seat),
		)
		c.publish(ctx, table, model.EventPlayerJoined, player.ID, "")
	}

	v := view.Project(table, player.ID)
	return &v, nil
}

// Get returns the table as seen by viewer. Reads take no lock.
func (c *Controller) Get(ctx context.Context, id model.TableID, viewer model.PlayerID) (*view.TableView, error) {
	table, err := c.storage.GetTable(ctx, id)
	if err != nil {
		return nil, err
	}
	v := view.Project(table, viewer)
	return &v, nil
}

// Act applies one intent from playerID under the table lock
func (c *Controller) Act(ctx context.Context, id model.TableID, playerID model.PlayerID, intent model.Intent) (*view.TableView, error) {
	var before model.Phase
	table, err := c.mutate(ctx, id, func(t *model.Table) error {
		before = t.Phase
		return c.engine.Apply(t, playerID, intent)
	})
	if err != nil {
		if model.IsValidation(err) {
			c.logger.Debug("intent rejected",
				slog.String("table_id", string(id)),
				slog.String("player_id", string(playerID)),
				slog.String("action", string(intent.Action)),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	c.logger.Debug("intent applied",
		slog.String("table_id", string(id)),
		slog.String("player_id", string(playerID)),
		slog.String("action", string(intent.Action)),
		slog.Int("round", table.Round),
		slog.String("phase", string(table.Phase)),
	)
	c.publish(ctx, table, eventFor(intent.Action, before, table.Phase), playerID, intent.Action)

	v := view.Project(table, playerID)
	return &v, nil
}

// mutate loads the table under its lock, applies fn and saves the result.
// Nothing is saved if fn fails.
func (c *Controller) mutate(ctx context.Context, id model.TableID, fn func(t *model.Table) error) (*model.Table, error) {
	var table *model.Table
	err := c.locker.WithLock(ctx, lock.TableKey(id), func(ctx context.Context) error {
		t, err := c.storage.GetTable(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		if err := c.storage.SaveTable(ctx, t); err != nil {
			return err
		}
		table = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

func (c *Controller) publish(ctx context.Context, t *model.Table, typ model.EventType, playerID model.PlayerID, action model.Action) {
	c.publisher.Publish(ctx, model.TableEvent{
		Type:      typ,
		Timestamp: c.clock.Now(),
		TableID:   t.ID,
		PlayerID:  playerID,
		Action:    action,
		Round:     t.Round,
		Phase:     t.Phase,
	})
}

// assignCode reserves a join code for a saved table and records it under the
// table lock, so anyone resolving the code finds the table already carrying
// it. The reservation is given back if the table cannot be updated.
func (c *Controller) assignCode(ctx context.Context, id model.TableID, requested model.TableCode) (*model.Table, error) {
	var reserved model.TableCode
	table, err := c.mutate(ctx, id, func(t *model.Table) error {
		code, err := c.reserveCode(ctx, id, requested)
		if err != nil {
			return err
		}
		reserved = code
		t.Code = code
		return nil
	})
	if err != nil && reserved != "" {
		if relErr := c.storage.ReleaseCode(ctx, reserved, id); relErr != nil {
			c.logger.Warn("failed to release join code",
				slog.String("table_id", string(id)),
				slog.String("code", string(reserved)),
				slog.String("error", relErr.Error()),
			)
		}
	}
	return table, err
}

func (c *Controller) reserveCode(ctx context.Context, id model.TableID, requested model.TableCode) (model.TableCode, error) {
	if requested != "" {
		code := model.TableCode(strings.ToUpper(string(requested)))
		if !validCode(code) {
			return "", model.ErrInvalidOptions
		}
		ok, err := c.storage.ReserveCode(ctx, code, id)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", model.ErrCodeTaken
		}
		return code, nil
	}

	for range maxCodeAttempts {
		code := model.TableCode(c.random.String(CodeLength, CodeAlphabet))
		ok, err := c.storage.ReserveCode(ctx, code, id)
		if err != nil {
			return "", err
		}
		if ok {
			return code, nil
		}
	}
	return "", model.ErrCodeTaken
}

// shoeSeed mixes the clock with the host for solo tables, and with the random
// source for shared ones
func (c *Controller) shoeSeed(mode model.TableMode, host model.PlayerID) int64 {
	now := c.clock.Now().UnixNano()
	if mode == model.TableModeSolo {
		h := fnv.New64a()
		_, _ = h.Write([]byte(host))
		return now ^ int64(h.Sum64())
	}
	return now ^ int64(c.random.Intn(math.MaxInt32))
}

func rulesFromOptions(opts CreateOptions) (model.Rules, error) {
	rules := model.DefaultRules()

	switch opts.Mode {
	case "", model.TableModeSolo, model.TableModePvP:
	default:
		return rules, model.ErrInvalidOptions
	}
	if opts.Decks != 0 {
		if opts.Decks < 1 || opts.Decks > MaxDecks {
			return rules, model.ErrInvalidOptions
		}
		rules.Decks = opts.Decks
	}
	if opts.HitSoft17 != nil {
		rules.HitSoft17 = *opts.HitSoft17
	}
	if opts.MinBet != 0 {
		if opts.MinBet < 1 || opts.MinBet > model.StartingChips {
			return rules, model.ErrInvalidOptions
		}
		rules.MinBet = opts.MinBet
	}
	if opts.Bots < 0 || opts.Bots > MaxBots {
		return rules, model.ErrInvalidOptions
	}
	if opts.Bots > 0 {
		if opts.Mode == model.TableModePvP {
			return rules, model.ErrInvalidOptions
		}
		if !validStrategy(opts.BotStrategy) {
			return rules, model.ErrInvalidOptions
		}
	}
	return rules, nil
}

func validStrategy(name string) bool {
	for _, s := range model.ValidBotStrategies() {
		if s == name {
			return true
		}
	}
	return false
}

func validCode(code model.TableCode) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(CodeAlphabet, r) {
			return false
		}
	}
	return true
}

func eventFor(action model.Action, before, after model.Phase) model.EventType {
	switch {
	case action == model.ActionNext:
		return model.EventRoundStarted
	case after == model.PhaseSettling && before != model.PhaseSettling:
		return model.EventRoundSettled
	case before == model.PhaseBetting && after == model.PhaseActing:
		return model.EventRoundDealt
	case action == model.ActionBet:
		return model.EventBetPlaced
	default:
		return model.EventHandAction
	}
}

// ControllerInterface is the table surface used by the API and bots
type ControllerInterface interface {
	Create(ctx context.Context, host model.Player, opts CreateOptions) (*view.TableView, error)
	Join(ctx context.Context, code model.TableCode, player model.Player) (*view.TableView, error)
	Get(ctx context.Context, id model.TableID, viewer model.PlayerID) (*view.TableView, error)
	Act(ctx context.Context, id model.TableID, playerID model.PlayerID, intent model.Intent) (*view.TableView, error)
}

var _ ControllerInterface = (*Controller)(nil)
