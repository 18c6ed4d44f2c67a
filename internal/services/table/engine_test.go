package table

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/blackjack-go/internal/dependencies/mocks"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/scoring"
	"github.com/mcoot/blackjack-go/internal/testutil"
)

type EngineSuite struct {
	suite.Suite
	clock  *mocks.MockClock
	random *mocks.MockRandom
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.engine = NewEngine(s.clock, s.random, testutil.NopLogger())
}

// stackShoe returns a shoe that deals the given cards in order
func stackShoe(order string) model.Shoe {
	fields := strings.Fields(order)
	cards := make([]model.Card, len(fields))
	for i, f := range fields {
		cards[len(fields)-1-i] = model.MustParseCard(f)
	}
	return model.Shoe{Cards: cards, CutIndex: 10000, Total: len(cards)}
}

func cards(s string) []model.Card {
	var out []model.Card
	for _, f := range strings.Fields(s) {
		out = append(out, model.MustParseCard(f))
	}
	return out
}

// Helper to create a betting table with a stacked shoe
func (s *EngineSuite) newTable(order string, players ...model.PlayerID) *model.Table {
	t := &model.Table{
		ID:    "table-1",
		Mode:  model.TableModeSolo,
		Rules: model.DefaultRules(),
		Shoe:  stackShoe(order),
		Seats: []model.Seat{},
		Phase: model.PhaseBetting,
	}
	for _, id := range players {
		s.Require().NoError(s.engine.SeatPlayer(t, &model.Player{ID: id, DisplayName: string(id)}))
	}
	return t
}

func (s *EngineSuite) apply(t *model.Table, playerID model.PlayerID, action model.Action) {
	s.Require().NoError(s.engine.Apply(t, playerID, model.Intent{Action: action}))
}

func (s *EngineSuite) bet(t *model.Table, playerID model.PlayerID, amount int) {
	s.Require().NoError(s.engine.Apply(t, playerID, model.Intent{Action: model.ActionBet, Amount: amount}))
}

// snapshot captures the full table state for unchanged-state assertions
func (s *EngineSuite) snapshot(t *model.Table) string {
	data, err := json.Marshal(t)
	s.Require().NoError(err)
	return string(data)
}

func (s *EngineSuite) requireRejected(t *model.Table, playerID model.PlayerID, intent model.Intent, target error) {
	before := s.snapshot(t)
	err := s.engine.Apply(t, playerID, intent)
	s.Require().ErrorIs(err, target)
	s.True(model.IsValidation(err))
	s.Equal(before, s.snapshot(t), "rejected intent mutated the table")
}

// Seating

func (s *EngineSuite) TestSeatPlayer_LowestFreeSeat() {
	t := s.newTable("", "a", "b", "c")
	t.Seats = append(t.Seats[:1], t.Seats[2:]...) // b leaves seat 1

	s.Require().NoError(s.engine.SeatPlayer(t, &model.Player{ID: "d"}))

	s.Equal(1, t.Seat("d").Seat)
	s.Equal(model.StartingChips, t.Seat("d").Chips)
}

func (s *EngineSuite) TestSeatPlayer_Idempotent() {
	t := s.newTable("", "a")
	t.Seat("a").Chips = 10

	s.Require().NoError(s.engine.SeatPlayer(t, &model.Player{ID: "a"}))

	s.Len(t.Seats, 1)
	s.Equal(10, t.Seat("a").Chips)
}

func (s *EngineSuite) TestSeatPlayer_TableFull() {
	t := s.newTable("", "a", "b", "c", "d", "e")

	err := s.engine.SeatPlayer(t, &model.Player{ID: "f"})

	s.ErrorIs(err, model.ErrTableFull)
	s.Len(t.Seats, model.MaxSeats)
}

// Betting

func (s *EngineSuite) TestBet_DebitsAndCreatesHand() {
	t := s.newTable("", "a", "b")

	s.bet(t, "a", 50)

	seat := t.Seat("a")
	s.Equal(950, seat.Chips)
	s.Require().Len(seat.Hands, 1)
	s.Equal(50, seat.Hands[0].Bet)
	s.NotEmpty(seat.Hands[0].ID)
	s.Equal(model.PhaseBetting, t.Phase)
}

func (s *EngineSuite) TestBet_ClampsToMinimum() {
	t := s.newTable("", "a", "b")

	s.bet(t, "a", 3)

	s.Equal(10, t.Seat("a").Hands[0].Bet)
	s.Equal(990, t.Seat("a").Chips)
}

func (s *EngineSuite) TestBet_ClampsToChips() {
	t := s.newTable("", "a", "b")
	t.Seat("a").Chips = 120

	s.bet(t, "a", 500)

	s.Equal(120, t.Seat("a").Hands[0].Bet)
	s.Equal(0, t.Seat("a").Chips)
}

func (s *EngineSuite) TestBet_InsufficientChips() {
	t := s.newTable("", "a", "b")
	t.Seat("a").Chips = 5

	s.requireRejected(t, "a", model.Intent{Action: model.ActionBet, Amount: 5}, model.ErrInsufficientChips)
}

func (s *EngineSuite) TestBet_AlreadyBet() {
	t := s.newTable("", "a", "b")
	s.bet(t, "a", 50)

	s.requireRejected(t, "a", model.Intent{Action: model.ActionBet, Amount: 50}, model.ErrAlreadyBet)
}

func (s *EngineSuite) TestBet_WrongPhase() {
	t := s.newTable("TH 9S 6C 8D", "a")
	s.bet(t, "a", 50)
	s.Require().Equal(model.PhaseActing, t.Phase)

	s.requireRejected(t, "a", model.Intent{Action: model.ActionBet, Amount: 50}, model.ErrWrongPhase)
}

func (s *EngineSuite) TestBet_NotSeated() {
	t := s.newTable("", "a")

	s.requireRejected(t, "ghost", model.Intent{Action: model.ActionBet, Amount: 50}, model.ErrNotSeated)
}

func (s *EngineSuite) TestUnknownAction() {
	t := s.newTable("", "a")

	s.requireRejected(t, "a", model.Intent{Action: "insurance"}, model.ErrUnknownAction)
}

// Dealing

func (s *EngineSuite) TestDeal_WaitsForEveryBet() {
	t := s.newTable("2C 3C 4C 5C 6C 7C", "a", "b")

	s.bet(t, "a", 50)
	s.Equal(model.PhaseBetting, t.Phase)
	s.Empty(t.Dealer)

	s.bet(t, "b", 50)
	s.Equal(model.PhaseActing, t.Phase)
}

func (s *EngineSuite) TestDeal_AlternatesPlayersAndDealer() {
	t := s.newTable("2C 3C 4C 5C 6C 7C", "a", "b")

	s.bet(t, "a", 50)
	s.bet(t, "b", 50)

	s.Equal(cards("2C 5C"), t.Seat("a").Hands[0].Cards)
	s.Equal(cards("3C 6C"), t.Seat("b").Hands[0].Cards)
	s.Equal(cards("4C 7C"), t.Dealer)
	s.Equal(1, t.Round)
	s.Equal([]model.PlayerID{"a", "b"}, t.Order)
	s.Equal(&model.Turn{PlayerID: "a", HandID: t.Seat("a").Hands[0].ID}, t.Turn)
	s.False(t.HoleRevealed)
}

func (s *EngineSuite) TestDeal_OrderFollowsSeats() {
	t := s.newTable("2C 3C 4C 5C 6C 7C", "a", "b")
	t.Seat("a").Seat, t.Seat("b").Seat = 3, 1

	s.bet(t, "a", 50)
	s.bet(t, "b", 50)

	s.Equal([]model.PlayerID{"b", "a"}, t.Order)
	s.Equal(cards("2C 5C"), t.Seat("b").Hands[0].Cards)
}

func (s *EngineSuite) TestDeal_BrokeSeatSitsOut() {
	t := s.newTable("TH 9S 6C 8D", "a", "b")
	t.Seat("b").Chips = 5

	s.bet(t, "a", 50)

	s.Equal(model.PhaseActing, t.Phase)
	s.Equal([]model.PlayerID{"a"}, t.Order)
	s.Empty(t.Seat("b").Hands)
	s.Equal(5, t.Seat("b").Chips)
}

func (s *EngineSuite) TestDeal_ReshufflesPastCutCard() {
	t := s.newTable("", "a")
	t.Shoe = model.Shoe{Cards: cards("2C 3C 4C 5C"), CutIndex: 39, Drawn: 48, Total: 52}

	s.bet(t, "a", 50)

	s.Equal(6*52, t.Shoe.Total)
	s.Equal(4, t.Shoe.Drawn)
	s.Len(t.Shoe.Cards, 6*52-4)
}

func (s *EngineSuite) TestDraw_RebuildsEmptyShoe() {
	t := s.newTable("TH 9S 6C 8D", "a")
	s.bet(t, "a", 50)
	s.Require().Equal(0, t.Shoe.Remaining())

	s.apply(t, "a", model.ActionHit)

	s.Len(t.Seat("a").Hands[0].Cards, 3)
	s.Equal(6*52, t.Shoe.Total)
}

// Scenarios

func (s *EngineSuite) TestScenario_NaturalBlackjackPaysThreeToTwo() {
	t := s.newTable("TH TS AS 5D 2C", "a")

	s.bet(t, "a", 50)

	seat := t.Seat("a")
	s.Equal(model.PhaseSettling, t.Phase)
	s.Nil(t.Turn)
	s.Equal(1075, seat.Chips)
	s.Equal(model.OutcomeBlackjack, seat.Hands[0].Outcome)
	s.Equal(75, seat.Hands[0].Payout)
	s.Equal(cards("TS 5D 2C"), t.Dealer, "dealer plays out against a natural")
}

func (s *EngineSuite) TestScenario_BustLosesBet() {
	t := s.newTable("TH 9S 6C 8D KD", "a")
	s.bet(t, "a", 50)

	s.apply(t, "a", model.ActionHit)

	seat := t.Seat("a")
	s.True(seat.Hands[0].Settled)
	s.Equal(model.OutcomeBust, seat.Hands[0].Outcome)
	s.Equal(model.PhaseSettling, t.Phase)
	s.Equal(950, seat.Chips)
	s.Len(t.Dealer, 2)
}

func (s *EngineSuite) TestScenario_DealerPlaysOutAfterPlayerBusts() {
	// player TH 6C hits KD; dealer 9S 3D = 12 draws 5H
	t := s.newTable("TH 9S 6C 3D KD 5H", "a")
	s.bet(t, "a", 50)

	s.apply(t, "a", model.ActionHit)

	s.Equal(model.PhaseSettling, t.Phase)
	s.Equal(cards("9S 3D 5H"), t.Dealer)
	s.Equal(17, scoring.Score(t.Dealer).Total)
	s.Equal(model.OutcomeBust, t.Seat("a").Hands[0].Outcome)
	s.Equal(950, t.Seat("a").Chips)
	s.Equal(0, t.Shoe.Remaining())
}

func (s *EngineSuite) TestScenario_DealerPeekBlackjack() {
	t := s.newTable("TH AS 6C KD", "a")

	s.bet(t, "a", 50)

	s.Equal(model.PhaseSettling, t.Phase)
	s.True(t.HoleRevealed)
	s.Equal(950, t.Seat("a").Chips)
	s.Equal(model.OutcomeLose, t.Seat("a").Hands[0].Outcome)
}

func (s *EngineSuite) TestScenario_DealerPeekBothBlackjackPush() {
	t := s.newTable("TH AS AC KD", "a")

	s.bet(t, "a", 50)

	s.Equal(model.PhaseSettling, t.Phase)
	s.Equal(1000, t.Seat("a").Chips)
	s.Equal(model.OutcomePush, t.Seat("a").Hands[0].Outcome)
}

func (s *EngineSuite) TestScenario_NoPeekPlaysOn() {
	t := s.newTable("TH AS 6C KD", "a")
	t.Rules.DealerPeeks = false

	s.bet(t, "a", 50)
	s.Equal(model.PhaseActing, t.Phase)

	s.apply(t, "a", model.ActionStand)

	s.Equal(model.PhaseSettling, t.Phase)
	s.Equal(950, t.Seat("a").Chips)
}

func (s *EngineSuite) TestScenario_DealerDrawsAndBusts() {
	// a: TH 8C = 18; dealer 6S TD = 16, draws KC
	t := s.newTable("TH 6S 8C TD KC", "a")
	s.bet(t, "a", 100)

	s.apply(t, "a", model.ActionStand)

	s.Equal(cards("6S TD KC"), t.Dealer)
	s.Equal(model.OutcomeWin, t.Seat("a").Hands[0].Outcome)
	s.Equal(1100, t.Seat("a").Chips)
}

func (s *EngineSuite) TestScenario_CardsAreConserved() {
	t := s.newTable("TH 6S 8C TD KC", "a")
	t.Shoe.CutIndex = 4
	s.bet(t, "a", 100)
	s.apply(t, "a", model.ActionStand)

	dealt := len(t.Dealer) + len(t.Seat("a").Hands[0].Cards)
	s.Equal(t.Shoe.Total, t.Shoe.Remaining()+dealt)
	s.Equal(dealt, t.Shoe.Drawn)
}

// Turn handling

func (s *EngineSuite) TestHit_NotYourTurn() {
	t := s.newTable("2C 3C 4C 5C 6C 7C", "a", "b")
	s.bet(t, "a", 50)
	s.bet(t, "b", 50)

	s.requireRejected(t, "b", model.Intent{Action: model.ActionHit}, model.ErrNotYourTurn)
}

func (s *EngineSuite) TestHit_WrongHandID() {
	t := s.newTable("2C 3C 4C 5C 6C 7C", "a", "b")
	s.bet(t, "a", 50)
	s.bet(t, "b", 50)

	other := t.Seat("b").Hands[0].ID
	s.requireRejected(t, "a", model.Intent{Action: model.ActionHit, HandID: other}, model.ErrNotYourTurn)
}

func (s *EngineSuite) TestHit_WrongPhase() {
	t := s.newTable("", "a", "b")

	s.requireRejected(t, "a", model.Intent{Action: model.ActionHit}, model.ErrWrongPhase)
}

func (s *EngineSuite) TestHit_KeepsTurnUnlessBust() {
	t := s.newTable("2C 3C 4C 5C 6C 7C 2D", "a", "b")
	s.bet(t, "a", 50)
	s.bet(t, "b", 50)
	handID := t.Seat("a").Hands[0].ID

	s.Require().NoError(s.engine.Apply(t, "a", model.Intent{Action: model.ActionHit, HandID: handID}))

	s.Equal(cards("2C 5C 2D"), t.Seat("a").Hands[0].Cards)
	s.Equal(&model.Turn{PlayerID: "a", HandID: handID}, t.Turn)
}

func (s *EngineSuite) TestStand_AdvancesToNextPlayer() {
	t := s.newTable("2C 3C 4C 5C 6C 7C", "a", "b")
	s.bet(t, "a", 50)
	s.bet(t, "b", 50)

	s.apply(t, "a", model.ActionStand)

	s.True(t.Seat("a").Hands[0].Settled)
	s.Equal(model.PlayerID("b"), t.Turn.PlayerID)
}

func (s *EngineSuite) TestStand_NaturalSkippedInTurnOrder() {
	// a: AS KS natural, b: 9C 9H; dealer TD 7D
	t := s.newTable("AS 9C TD KS 9H 7D", "a", "b")
	s.bet(t, "a", 50)
	s.bet(t, "b", 50)

	s.Equal(model.PlayerID("b"), t.Turn.PlayerID)
	s.True(t.Seat("a").Hands[0].Settled)

	s.apply(t, "b", model.ActionStand)

	s.Equal(model.PhaseSettling, t.Phase)
	s.Equal(1075, t.Seat("a").Chips)
	s.Equal(1050, t.Seat("b").Chips)
}

// Double

func (s *EngineSuite) TestDouble_DrawsOneAndSettles() {
	t := s.newTable("5C TS 6D 7H TC", "a")
	s.bet(t, "a", 100)

	s.apply(t, "a", model.ActionDouble)

	h := t.Seat("a").Hands[0]
	s.Equal(cards("5C 6D TC"), h.Cards)
	s.Equal(200, h.Bet)
	s.True(h.Doubled)
	s.Equal(model.PhaseSettling, t.Phase)
	s.Equal(model.OutcomeWin, h.Outcome)
	s.Equal(1200, t.Seat("a").Chips)
}

func (s *EngineSuite) TestDouble_RequiresTwoCards() {
	t := s.newTable("5C TS 2D 7H 2H", "a")
	s.bet(t, "a", 100)
	s.apply(t, "a", model.ActionHit)

	s.requireRejected(t, "a", model.Intent{Action: model.ActionDouble}, model.ErrIllegalDouble)
}

func (s *EngineSuite) TestDouble_RequiresChips() {
	t := s.newTable("5C TS 6D 7H TC", "a")
	t.Seat("a").Chips = 150
	s.bet(t, "a", 100)

	s.requireRejected(t, "a", model.Intent{Action: model.ActionDouble}, model.ErrInsufficientChips)
}

// Split

func (s *EngineSuite) TestSplit_BothHandsResolveBeforeNextPlayer() {
	t := s.newTable("8S TC TS 8H 9C 7H 3D 2D", "a", "b")
	s.bet(t, "a", 50)
	s.bet(t, "b", 50)

	s.apply(t, "a", model.ActionSplit)

	seat := t.Seat("a")
	s.Require().Len(seat.Hands, 2)
	s.Equal(900, seat.Chips)
	s.Equal(cards("8S"), seat.Hands[0].Cards)
	s.Equal(cards("8H"), seat.Hands[1].Cards)
	s.Equal(50, seat.Hands[1].Bet)
	s.True(seat.Hands[0].FromSplit)
	s.True(seat.Hands[1].FromSplit)
	s.Equal(seat.Hands[0].ID, t.Turn.HandID)

	s.apply(t, "a", model.ActionHit)
	s.apply(t, "a", model.ActionStand)
	s.Equal(&model.Turn{PlayerID: "a", HandID: seat.Hands[1].ID}, t.Turn)

	s.apply(t, "a", model.ActionHit)
	s.apply(t, "a", model.ActionStand)
	s.Equal(model.PlayerID("b"), t.Turn.PlayerID)

	s.apply(t, "b", model.ActionStand)

	s.Equal(model.PhaseSettling, t.Phase)
	s.Equal(cards("8S 3D"), seat.Hands[0].Cards)
	s.Equal(cards("8H 2D"), seat.Hands[1].Cards)
	s.Equal(900, t.Seat("a").Chips)
	s.Equal(1050, t.Seat("b").Chips)
}

func (s *EngineSuite) TestSplit_ResplitKeepsEveryHand() {
	t := s.newTable("8S TC 8H 9C 8D", "a")
	s.bet(t, "a", 50)
	seat := t.Seat("a")
	s.Require().Equal(1, cap(seat.Hands))
	first := seat.Hands[0].ID

	s.apply(t, "a", model.ActionSplit)
	s.apply(t, "a", model.ActionHit)
	s.Require().Equal(cards("8S 8D"), seat.Hand(first).Cards)
	s.Require().Equal(len(seat.Hands), cap(seat.Hands))

	s.apply(t, "a", model.ActionSplit)

	s.Require().Len(seat.Hands, 3)
	s.Equal(850, seat.Chips)
	s.Equal(cards("8S"), seat.Hand(first).Cards)
	s.Equal(cards("8H"), seat.Hands[1].Cards)
	s.Equal(cards("8D"), seat.Hands[2].Cards)
	for _, h := range seat.Hands {
		s.True(h.FromSplit)
		s.Equal(50, h.Bet)
	}
	s.Equal(first, t.Turn.HandID)
}

func (s *EngineSuite) TestSplit_IllegalRanksRejectedWithoutDebit() {
	t := s.newTable("KS TC QD 9C", "a")
	s.bet(t, "a", 50)

	s.requireRejected(t, "a", model.Intent{Action: model.ActionSplit}, model.ErrIllegalSplit)
	s.Equal(950, t.Seat("a").Chips)
	s.Len(t.Seat("a").Hands, 1)
}

func (s *EngineSuite) TestSplit_RequiresChips() {
	t := s.newTable("8S TC 8H 9C", "a")
	t.Seat("a").Chips = 60
	s.bet(t, "a", 50)

	s.requireRejected(t, "a", model.Intent{Action: model.ActionSplit}, model.ErrInsufficientChips)
}

func (s *EngineSuite) TestSplit_ResplitLimit() {
	t := s.newTable("8S TC 8H 9C 8D", "a")
	t.Rules.ResplitLimit = 1
	s.bet(t, "a", 50)
	s.apply(t, "a", model.ActionSplit)
	s.apply(t, "a", model.ActionHit)
	s.Require().Equal(cards("8S 8D"), t.Seat("a").Hands[0].Cards)

	s.requireRejected(t, "a", model.Intent{Action: model.ActionSplit}, model.ErrIllegalSplit)
}

func (s *EngineSuite) TestSplit_TwentyOneAfterSplitIsNotBlackjack() {
	t := s.newTable("AS TC AH 9C KD", "a")
	s.bet(t, "a", 50)
	s.apply(t, "a", model.ActionSplit)
	s.apply(t, "a", model.ActionHit) // AS KD
	s.Require().True(scoring.Score(t.Seat("a").Hands[0].Cards).IsBlackjack)

	s.apply(t, "a", model.ActionStand)
	s.apply(t, "a", model.ActionStand) // AH alone, soft 11

	h := t.Seat("a").Hands[0]
	s.Equal(model.OutcomeWin, h.Outcome)
	s.Equal(50, h.Payout)
}

// Surrender

func (s *EngineSuite) TestSurrender_RefundsHalfImmediately() {
	t := s.newTable("TS 9C 6H 8D", "a")
	s.bet(t, "a", 50)

	s.apply(t, "a", model.ActionSurrender)

	h := t.Seat("a").Hands[0]
	s.True(h.Surrendered)
	s.Equal(model.OutcomeSurrender, h.Outcome)
	s.Equal(-25, h.Payout)
	s.Equal(model.PhaseSettling, t.Phase)
	s.Equal(975, t.Seat("a").Chips)
	s.Len(t.Dealer, 2)
}

func (s *EngineSuite) TestSurrender_NotAllowed() {
	t := s.newTable("TS 9C 6H 8D", "a")
	t.Rules.AllowSurrender = false
	s.bet(t, "a", 50)

	s.requireRejected(t, "a", model.Intent{Action: model.ActionSurrender}, model.ErrSurrenderNotAllowed)
}

// Next round

func (s *EngineSuite) TestNext_OnlyInSettling() {
	t := s.newTable("TS 9C 6H 8D", "a")
	s.requireRejected(t, "a", model.Intent{Action: model.ActionNext}, model.ErrWrongPhase)

	s.bet(t, "a", 50)
	s.requireRejected(t, "a", model.Intent{Action: model.ActionNext}, model.ErrWrongPhase)
}

func (s *EngineSuite) TestNext_ResetsRoundKeepsChips() {
	t := s.newTable("TH TS AS 5D 2C", "a")
	s.bet(t, "a", 50)
	s.Require().Equal(model.PhaseSettling, t.Phase)

	s.apply(t, "a", model.ActionNext)

	s.Equal(model.PhaseBetting, t.Phase)
	s.Empty(t.Seat("a").Hands)
	s.Empty(t.Dealer)
	s.Nil(t.Turn)
	s.False(t.HoleRevealed)
	s.Equal(1075, t.Seat("a").Chips)
	s.Equal(1, t.Round)
}

func (s *EngineSuite) TestApply_UpdatesTimestamp() {
	t := s.newTable("", "a", "b")
	s.clock.Advance(time.Minute)

	s.bet(t, "a", 50)

	s.Equal(s.clock.Now(), t.UpdatedAt)
}
