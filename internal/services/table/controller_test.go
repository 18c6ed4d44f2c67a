package table

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/blackjack-go/internal/dependencies/mocks"
	"github.com/mcoot/blackjack-go/internal/dependencies/random"
	"github.com/mcoot/blackjack-go/internal/events"
	"github.com/mcoot/blackjack-go/internal/lock"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/storage"
	"github.com/mcoot/blackjack-go/internal/storage/memory"
	"github.com/mcoot/blackjack-go/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	locker     *lock.Locker
	recorder   *events.Recorder
	controller *Controller
	ctx        context.Context

	alice model.Player
	bob   model.Player
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.storage = memory.NewWithClock(s.clock, memory.DefaultTableTTL)
	s.locker = lock.New(s.storage, random.New(), lock.Config{
		TTL:             time.Minute,
		Timeout:         2 * time.Second,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}, testutil.NopLogger())
	s.recorder = &events.Recorder{}
	engine := NewEngine(s.clock, s.random, testutil.NopLogger())
	s.controller = NewController(s.storage, s.locker, engine, s.recorder, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()

	s.alice = model.Player{ID: "p_alice", DisplayName: "Alice"}
	s.bob = model.Player{ID: "p_bob", DisplayName: "Bob"}
}

// stack replaces the stored shoe so the next cards dealt are order
func (s *ControllerSuite) stack(id model.TableID, order string) {
	t, err := s.storage.GetTable(s.ctx, id)
	s.Require().NoError(err)
	t.Shoe = stackShoe(order)
	s.Require().NoError(s.storage.SaveTable(s.ctx, t))
}

func (s *ControllerSuite) createPvP() model.TableID {
	s.random.QueueString("AB7Q")
	v, err := s.controller.Create(s.ctx, s.alice, CreateOptions{Mode: model.TableModePvP})
	s.Require().NoError(err)
	_, err = s.controller.Join(s.ctx, "AB7Q", s.bob)
	s.Require().NoError(err)
	return v.TableID
}

func (s *ControllerSuite) act(id model.TableID, playerID model.PlayerID, intent model.Intent) {
	_, err := s.controller.Act(s.ctx, id, playerID, intent)
	s.Require().NoError(err)
}

// Create tests

func (s *ControllerSuite) TestCreateSolo() {
	v, err := s.controller.Create(s.ctx, s.alice, CreateOptions{})
	s.Require().NoError(err)

	s.NotEmpty(v.TableID)
	s.Equal(model.TableModeSolo, v.Mode)
	s.Empty(v.Code)
	s.Equal(model.PhaseBetting, v.Phase)
	s.Equal(0, v.Round)
	s.Equal(6*52, v.ShoeSize)
	s.Require().NotNil(v.You)
	s.Equal(0, v.You.Seat)
	s.Equal(model.StartingChips, v.You.Chips)
	s.Equal("Alice", v.You.Name)

	stored, err := s.storage.GetTable(s.ctx, v.TableID)
	s.Require().NoError(err)
	s.True(s.clock.Now().Equal(stored.CreatedAt))
}

func (s *ControllerSuite) TestCreateSoloShoeIsSeededFromHostAndClock() {
	a, err := s.controller.Create(s.ctx, s.alice, CreateOptions{})
	s.Require().NoError(err)
	b, err := s.controller.Create(s.ctx, s.alice, CreateOptions{})
	s.Require().NoError(err)
	c, err := s.controller.Create(s.ctx, s.bob, CreateOptions{})
	s.Require().NoError(err)

	ta, _ := s.storage.GetTable(s.ctx, a.TableID)
	tb, _ := s.storage.GetTable(s.ctx, b.TableID)
	tc, _ := s.storage.GetTable(s.ctx, c.TableID)
	s.Equal(ta.Shoe.Cards, tb.Shoe.Cards)
	s.NotEqual(ta.Shoe.Cards, tc.Shoe.Cards)
}

func (s *ControllerSuite) TestCreateAppliesOptions() {
	stand := false
	v, err := s.controller.Create(s.ctx, s.alice, CreateOptions{Decks: 2, HitSoft17: &stand, MinBet: 25})
	s.Require().NoError(err)

	s.Equal(2, v.Rules.Decks)
	s.False(v.Rules.HitSoft17)
	s.Equal(25, v.Rules.MinBet)
	s.Equal(104, v.ShoeSize)
}

func (s *ControllerSuite) TestCreateRejectsInvalidOptions() {
	cases := []CreateOptions{
		{Mode: "tournament"},
		{Decks: 9},
		{MinBet: -5},
		{Bots: 5, BotStrategy: model.BotStrategyBasic},
		{Bots: 1, BotStrategy: "psychic"},
		{Mode: model.TableModePvP, Bots: 1, BotStrategy: model.BotStrategyBasic},
		{Mode: model.TableModePvP, Code: "ab"},
	}
	for _, opts := range cases {
		_, err := s.controller.Create(s.ctx, s.alice, opts)
		s.ErrorIs(err, model.ErrInvalidOptions, "%+v", opts)
	}
}

func (s *ControllerSuite) TestCreateWithBots() {
	s.random.QueueString("aaaaaaaaaaaa", "bbbbbbbbbbbb")

	v, err := s.controller.Create(s.ctx, s.alice, CreateOptions{Bots: 2, BotStrategy: model.BotStrategyBasic})
	s.Require().NoError(err)

	s.Require().Len(v.Players, 3)
	s.False(v.Players[0].IsBot)
	s.Equal(model.PlayerID("bot_aaaaaaaaaaaa"), v.Players[1].ID)
	s.Equal("Bot 1", v.Players[1].Name)
	s.True(v.Players[1].IsBot)
	s.Equal(model.BotStrategyBasic, v.Players[1].BotStrategy)
	s.Equal(2, v.Players[2].Seat)
}

func (s *ControllerSuite) TestCreatePvPGeneratesCode() {
	s.random.QueueString("AB7Q")

	v, err := s.controller.Create(s.ctx, s.alice, CreateOptions{Mode: model.TableModePvP})
	s.Require().NoError(err)

	s.Equal(model.TableCode("AB7Q"), v.Code)
	id, err := s.storage.GetTableIDByCode(s.ctx, "AB7Q")
	s.Require().NoError(err)
	s.Equal(v.TableID, id)
}

func (s *ControllerSuite) TestCreatePvPRetriesTakenCode() {
	s.random.QueueString("AB7Q", "AB7Q", "CDEF")

	_, err := s.controller.Create(s.ctx, s.alice, CreateOptions{Mode: model.TableModePvP})
	s.Require().NoError(err)
	v, err := s.controller.Create(s.ctx, s.bob, CreateOptions{Mode: model.TableModePvP})
	s.Require().NoError(err)

	s.Equal(model.TableCode("CDEF"), v.Code)
}

func (s *ControllerSuite) TestCreatePvPRequestedCode() {
	v, err := s.controller.Create(s.ctx, s.alice, CreateOptions{Mode: model.TableModePvP, Code: "wxyz"})
	s.Require().NoError(err)
	s.Equal(model.TableCode("WXYZ"), v.Code)

	_, err = s.controller.Create(s.ctx, s.bob, CreateOptions{Mode: model.TableModePvP, Code: "WXYZ"})
	s.ErrorIs(err, model.ErrCodeTaken)
}

// failingSaveStorage fails every SaveTable call after the first failAfter
type failingSaveStorage struct {
	storage.Storage
	saves     int
	failAfter int
}

func (f *failingSaveStorage) SaveTable(ctx context.Context, t *model.Table) error {
	f.saves++
	if f.saves > f.failAfter {
		return errors.New("save failed")
	}
	return f.Storage.SaveTable(ctx, t)
}

func (s *ControllerSuite) TestCreatePvPReleasesCodeWhenSaveFails() {
	failing := &failingSaveStorage{Storage: s.storage, failAfter: 1}
	engine := NewEngine(s.clock, s.random, testutil.NopLogger())
	controller := NewController(failing, s.locker, engine, s.recorder, s.clock, s.random, testutil.NopLogger())

	_, err := controller.Create(s.ctx, s.alice, CreateOptions{Mode: model.TableModePvP, Code: "AB7Q"})
	s.Require().Error(err)

	_, err = s.storage.GetTableIDByCode(s.ctx, "AB7Q")
	s.ErrorIs(err, model.ErrCodeNotFound)

	v, err := s.controller.Create(s.ctx, s.bob, CreateOptions{Mode: model.TableModePvP, Code: "AB7Q"})
	s.Require().NoError(err)
	s.Equal(model.TableCode("AB7Q"), v.Code)
}

func (s *ControllerSuite) TestCreatePvPCodeResolvesToTableCarryingIt() {
	v, err := s.controller.Create(s.ctx, s.alice, CreateOptions{Mode: model.TableModePvP, Code: "AB7Q"})
	s.Require().NoError(err)

	id, err := s.storage.GetTableIDByCode(s.ctx, "AB7Q")
	s.Require().NoError(err)
	stored, err := s.storage.GetTable(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(v.TableID, stored.ID)
	s.Equal(model.TableCode("AB7Q"), stored.Code)
}

// Join tests

func (s *ControllerSuite) TestJoin() {
	id := s.createPvP()

	v, err := s.controller.Get(s.ctx, id, s.bob.ID)
	s.Require().NoError(err)
	s.Require().NotNil(v.You)
	s.Equal(1, v.You.Seat)
	s.Len(v.Players, 2)

	evs := s.recorder.Events()
	s.Require().Len(evs, 1)
	s.Equal(model.EventPlayerJoined, evs[0].Type)
	s.Equal(s.bob.ID, evs[0].PlayerID)
}

func (s *ControllerSuite) TestJoinIsCaseInsensitive() {
	s.random.QueueString("AB7Q")
	_, err := s.controller.Create(s.ctx, s.alice, CreateOptions{Mode: model.TableModePvP})
	s.Require().NoError(err)

	v, err := s.controller.Join(s.ctx, " ab7q ", s.bob)
	s.Require().NoError(err)
	s.Equal(s.bob.ID, v.You.ID)
}

func (s *ControllerSuite) TestJoinTwiceIsIdempotent() {
	id := s.createPvP()

	_, err := s.controller.Join(s.ctx, "AB7Q", s.bob)
	s.Require().NoError(err)

	v, err := s.controller.Get(s.ctx, id, s.bob.ID)
	s.Require().NoError(err)
	s.Len(v.Players, 2)
	s.Len(s.recorder.Events(), 1)
}

func (s *ControllerSuite) TestJoinUnknownCode() {
	_, err := s.controller.Join(s.ctx, "ZZZZ", s.bob)
	s.ErrorIs(err, model.ErrCodeNotFound)
}

func (s *ControllerSuite) TestJoinFullTable() {
	s.createPvP()
	for _, id := range []model.PlayerID{"p3", "p4", "p5"} {
		_, err := s.controller.Join(s.ctx, "AB7Q", model.Player{ID: id})
		s.Require().NoError(err)
	}

	_, err := s.controller.Join(s.ctx, "AB7Q", model.Player{ID: "p6"})
	s.ErrorIs(err, model.ErrTableFull)
}

// Get tests

func (s *ControllerSuite) TestGetNotFound() {
	_, err := s.controller.Get(s.ctx, "missing", s.alice.ID)
	s.ErrorIs(err, model.ErrTableNotFound)
}

func (s *ControllerSuite) TestGetHidesHoleCard() {
	v, err := s.controller.Create(s.ctx, s.alice, CreateOptions{})
	s.Require().NoError(err)
	s.stack(v.TableID, "TH 9S 6C 8D")
	s.act(v.TableID, s.alice.ID, model.Intent{Action: model.ActionBet, Amount: 50})

	got, err := s.controller.Get(s.ctx, v.TableID, s.alice.ID)
	s.Require().NoError(err)

	s.Equal(cards("9S"), got.Dealer.Cards)
	s.Nil(got.Dealer.Total)
}

// Act tests

func (s *ControllerSuite) TestActBlackjackScenario() {
	v, err := s.controller.Create(s.ctx, s.alice, CreateOptions{})
	s.Require().NoError(err)
	s.stack(v.TableID, "TH TS AS 5D 2C")

	got, err := s.controller.Act(s.ctx, v.TableID, s.alice.ID, model.Intent{Action: model.ActionBet, Amount: 50})
	s.Require().NoError(err)

	s.Equal(model.PhaseSettling, got.Phase)
	s.Equal(1075, got.You.Chips)
	s.True(got.Dealer.HoleRevealed)
	s.True(got.Hands[string(s.alice.ID)][0].IsBlackjack)

	evs := s.recorder.Events()
	s.Require().Len(evs, 1)
	s.Equal(model.EventRoundSettled, evs[0].Type)
	s.Equal(1, evs[0].Round)
}

func (s *ControllerSuite) TestActTableNotFound() {
	_, err := s.controller.Act(s.ctx, "missing", s.alice.ID, model.Intent{Action: model.ActionHit})
	s.ErrorIs(err, model.ErrTableNotFound)
}

func (s *ControllerSuite) TestActRejectedIntentLeavesStoredTableUnchanged() {
	v, err := s.controller.Create(s.ctx, s.alice, CreateOptions{})
	s.Require().NoError(err)
	s.stack(v.TableID, "7S TC 8H 9C")
	s.act(v.TableID, s.alice.ID, model.Intent{Action: model.ActionBet, Amount: 50})
	before, err := s.storage.GetTable(s.ctx, v.TableID)
	s.Require().NoError(err)

	_, err = s.controller.Act(s.ctx, v.TableID, s.alice.ID, model.Intent{Action: model.ActionSplit})
	s.ErrorIs(err, model.ErrIllegalSplit)

	after, err := s.storage.GetTable(s.ctx, v.TableID)
	s.Require().NoError(err)
	s.Equal(before, after)
	s.Equal(950, after.Seat(s.alice.ID).Chips)
	s.Len(after.Seat(s.alice.ID).Hands, 1)
}

func (s *ControllerSuite) TestActLockTimeout() {
	v, err := s.controller.Create(s.ctx, s.alice, CreateOptions{})
	s.Require().NoError(err)
	held, err := s.storage.AcquireLock(s.ctx, lock.TableKey(v.TableID), "someone-else", time.Minute)
	s.Require().NoError(err)
	s.Require().True(held)

	short := lock.New(s.storage, random.New(), lock.Config{
		TTL:             time.Second,
		Timeout:         30 * time.Millisecond,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}, testutil.NopLogger())
	controller := NewController(s.storage, short, s.controller.engine, nil, s.clock, s.random, testutil.NopLogger())

	_, err = controller.Act(s.ctx, v.TableID, s.alice.ID, model.Intent{Action: model.ActionBet, Amount: 50})
	s.ErrorIs(err, model.ErrLockTimeout)
}

func (s *ControllerSuite) TestActFullRoundEvents() {
	id := s.createPvP()
	s.stack(id, "TH 9C 9S 6H 8C 8D")

	s.act(id, s.alice.ID, model.Intent{Action: model.ActionBet, Amount: 50})
	s.act(id, s.bob.ID, model.Intent{Action: model.ActionBet, Amount: 50})
	s.act(id, s.alice.ID, model.Intent{Action: model.ActionStand})
	s.act(id, s.bob.ID, model.Intent{Action: model.ActionStand})
	s.act(id, s.bob.ID, model.Intent{Action: model.ActionNext})

	var types []model.EventType
	for _, e := range s.recorder.Events() {
		types = append(types, e.Type)
	}
	s.Equal([]model.EventType{
		model.EventPlayerJoined,
		model.EventBetPlaced,
		model.EventRoundDealt,
		model.EventHandAction,
		model.EventRoundSettled,
		model.EventRoundStarted,
	}, types)
}

// Concurrency tests

func (s *ControllerSuite) TestConcurrentHitsOnSameHandApplyOnce() {
	// alice holds 20, any hit busts her and passes the turn to bob
	id := s.createPvP()
	s.stack(id, "TH 9C 9S KD 8C 8D 5C 6C 7C")
	s.act(id, s.alice.ID, model.Intent{Action: model.ActionBet, Amount: 50})
	s.act(id, s.bob.ID, model.Intent{Action: model.ActionBet, Amount: 50})

	table, err := s.storage.GetTable(s.ctx, id)
	s.Require().NoError(err)
	handID := table.Seat(s.alice.ID).Hands[0].ID

	var applied, rejected int32
	g := new(errgroup.Group)
	for range 2 {
		g.Go(func() error {
			_, err := s.controller.Act(s.ctx, id, s.alice.ID, model.Intent{Action: model.ActionHit, HandID: handID})
			switch {
			case err == nil:
				atomic.AddInt32(&applied, 1)
			case errors.Is(err, model.ErrNotYourTurn), errors.Is(err, model.ErrHandSettled):
				atomic.AddInt32(&rejected, 1)
			default:
				return err
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	s.Equal(int32(1), applied)
	s.Equal(int32(1), rejected)

	after, err := s.storage.GetTable(s.ctx, id)
	s.Require().NoError(err)
	s.Len(after.Seat(s.alice.ID).Hands[0].Cards, 3)
	s.Equal(s.bob.ID, after.Turn.PlayerID)
}

func (s *ControllerSuite) TestConcurrentHitsNeverLoseUpdates() {
	v, err := s.controller.Create(s.ctx, s.alice, CreateOptions{})
	s.Require().NoError(err)
	// alice 2C 2D, then a run of small cards she can keep hitting
	s.stack(v.TableID, "2C TS 2D 9S AC AD AH AS 2H 2S")
	s.act(v.TableID, s.alice.ID, model.Intent{Action: model.ActionBet, Amount: 50})

	var applied int32
	g := new(errgroup.Group)
	for range 6 {
		g.Go(func() error {
			_, err := s.controller.Act(s.ctx, v.TableID, s.alice.ID, model.Intent{Action: model.ActionHit})
			if err == nil {
				atomic.AddInt32(&applied, 1)
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	after, err := s.storage.GetTable(s.ctx, v.TableID)
	s.Require().NoError(err)
	hand := after.Seat(s.alice.ID).Hands[0]
	s.Equal(2+int(applied), len(hand.Cards))
	s.Equal(after.Shoe.Total, after.Shoe.Remaining()+len(hand.Cards)+len(after.Dealer))

	seen := map[model.Card]bool{}
	for _, c := range hand.Cards {
		s.False(seen[c], "card %s dealt twice", c)
		seen[c] = true
	}
}

func (s *ControllerSuite) TestTablesDoNotContend() {
	ids := make([]model.TableID, 4)
	for i := range ids {
		v, err := s.controller.Create(s.ctx, model.Player{ID: model.PlayerID("p" + string(rune('a'+i)))}, CreateOptions{})
		s.Require().NoError(err)
		ids[i] = v.TableID
	}

	g := new(errgroup.Group)
	for i, id := range ids {
		g.Go(func() error {
			_, err := s.controller.Act(s.ctx, id, model.PlayerID("p"+string(rune('a'+i))), model.Intent{Action: model.ActionBet, Amount: 20})
			return err
		})
	}
	s.Require().NoError(g.Wait())

	for i, id := range ids {
		player := model.PlayerID("p" + string(rune('a'+i)))
		got, err := s.controller.Get(s.ctx, id, player)
		s.Require().NoError(err)
		s.Equal(1, got.Round)
		s.Require().Len(got.Hands[string(player)], 1)
		s.Equal(20, got.Hands[string(player)][0].Bet)
	}
}
