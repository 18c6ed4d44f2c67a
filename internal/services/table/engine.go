package table

import (
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/mcoot/blackjack-go/internal/dependencies/clock"
	"github.com/mcoot/blackjack-go/internal/dependencies/random"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/legality"
	"github.com/mcoot/blackjack-go/internal/services/scoring"
	"github.com/mcoot/blackjack-go/internal/services/settlement"
	"github.com/mcoot/blackjack-go/internal/services/shoe"
	"github.com/mcoot/blackjack-go/internal/services/turn"
)

// Engine applies intents to a table. It only touches the table it is given;
// loading, locking and saving belong to the Controller. Every intent is
// validated in full before the first mutation, so a rejected intent leaves
// the table exactly as it was.
type Engine struct {
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
}

// NewEngine creates an Engine. random seeds each reshuffled shoe.
func NewEngine(clock clock.Clock, random random.Random, logger *slog.Logger) *Engine {
	return &Engine{
		clock:  clock,
		random: random,
		logger: logger.With(slog.String("component", "table_engine")),
	}
}

// NewShoe builds a shoe for rules from a fresh seeded source
func (e *Engine) NewShoe(rules model.Rules, seed int64) model.Shoe {
	return shoe.Build(rules.Decks, random.NewSeeded(seed))
}

// SeatPlayer puts a player in the lowest free seat. Seating an already
// seated player is a no-op.
func (e *Engine) SeatPlayer(t *model.Table, p *model.Player) error {
	if t.Seat(p.ID) != nil {
		return nil
	}
	idx := t.NextFreeSeat()
	if idx < 0 {
		return model.ErrTableFull
	}
	t.Seats = append(t.Seats, model.Seat{
		PlayerID:    p.ID,
		Name:        p.DisplayName,
		Seat:        idx,
		Chips:       model.StartingChips,
		IsBot:       p.IsBot,
		BotStrategy: p.BotStrategy,
	})
	t.UpdatedAt = e.clock.Now()
	return nil
}

// Apply validates and applies one intent from playerID
func (e *Engine) Apply(t *model.Table, playerID model.PlayerID, intent model.Intent) error {
	seat := t.Seat(playerID)
	if seat == nil {
		return model.ErrNotSeated
	}

	var err error
	switch intent.Action {
	case model.ActionBet:
		err = e.bet(t, seat, intent.Amount)
	case model.ActionHit, model.ActionStand, model.ActionDouble, model.ActionSplit, model.ActionSurrender:
		err = e.act(t, seat, intent)
	case model.ActionNext:
		err = e.nextRound(t)
	default:
		err = model.ErrUnknownAction
	}
	if err != nil {
		return err
	}

	t.UpdatedAt = e.clock.Now()
	return nil
}

func (e *Engine) bet(t *model.Table, seat *model.Seat, amount int) error {
	if t.Phase != model.PhaseBetting {
		return model.ErrWrongPhase
	}
	if seat.HasBet() {
		return model.ErrAlreadyBet
	}
	if seat.Chips < t.Rules.MinBet {
		return model.ErrInsufficientChips
	}

	amount = max(amount, t.Rules.MinBet)
	amount = min(amount, seat.Chips)
	seat.Chips -= amount
	seat.Hands = []model.Hand{{ID: newHandID(), Bet: amount}}

	if allBetsIn(t) {
		return e.deal(t)
	}
	return nil
}

// allBetsIn is true once every seat that can cover the minimum has bet
func allBetsIn(t *model.Table) bool {
	for _, s := range t.Seats {
		if !s.HasBet() && s.Chips >= t.Rules.MinBet {
			return false
		}
	}
	return true
}

func (e *Engine) deal(t *model.Table) error {
	if shoe.NeedsReshuffle(t.Shoe) {
		e.reshuffle(t)
	}

	t.Phase = model.PhaseDealing
	t.Round++
	t.Dealer = nil
	t.HoleRevealed = false
	t.Turn = nil
	t.Order = t.Order[:0]
	for _, s := range t.SeatsInSeatOrder() {
		if s.HasBet() {
			t.Order = append(t.Order, s.PlayerID)
		}
	}

	// player, player, ..., dealer, twice
	for range 2 {
		for _, id := range t.Order {
			card, err := e.draw(t)
			if err != nil {
				return err
			}
			h := &t.Seat(id).Hands[0]
			h.Cards = append(h.Cards, card)
		}
		card, err := e.draw(t)
		if err != nil {
			return err
		}
		t.Dealer = append(t.Dealer, card)
	}
	t.Phase = model.PhaseActing

	for _, id := range t.Order {
		h := &t.Seat(id).Hands[0]
		if scoring.Score(h.Cards).IsBlackjack {
			h.Settled = true
		}
	}

	if t.Rules.DealerPeeks && scoring.Score(t.Dealer).IsBlackjack {
		e.logger.Info("dealer blackjack on peek",
			slog.String("table_id", string(t.ID)),
			slog.Int("round", t.Round),
		)
		t.HoleRevealed = true
		settlement.Settle(t)
		return nil
	}

	t.Turn = turn.First(t)
	if t.Turn == nil {
		return e.finishRound(t)
	}
	return nil
}

func (e *Engine) act(t *model.Table, seat *model.Seat, intent model.Intent) error {
	if t.Phase != model.PhaseActing || t.Turn == nil {
		return model.ErrWrongPhase
	}
	if t.Turn.PlayerID != seat.PlayerID {
		return model.ErrNotYourTurn
	}
	if intent.HandID != "" && intent.HandID != t.Turn.HandID {
		return model.ErrNotYourTurn
	}
	hand := seat.Hand(t.Turn.HandID)
	if hand == nil {
		return model.ErrNotYourTurn
	}
	if hand.Settled {
		return model.ErrHandSettled
	}

	switch intent.Action {
	case model.ActionHit:
		return e.hit(t, hand)
	case model.ActionStand:
		hand.Settled = true
		return e.advance(t)
	case model.ActionDouble:
		return e.double(t, seat, hand)
	case model.ActionSplit:
		return e.split(t, seat, hand)
	default:
		return e.surrender(t, seat, hand)
	}
}

func (e *Engine) hit(t *model.Table, hand *model.Hand) error {
	card, err := e.draw(t)
	if err != nil {
		return err
	}
	hand.Cards = append(hand.Cards, card)
	if scoring.Score(hand.Cards).IsBust {
		bust(hand)
		return e.advance(t)
	}
	return nil
}

func (e *Engine) double(t *model.Table, seat *model.Seat, hand *model.Hand) error {
	if err := legality.Double(t.Rules, seat, hand); err != nil {
		return err
	}
	card, err := e.draw(t)
	if err != nil {
		return err
	}
	seat.Chips -= hand.Bet
	hand.Bet *= 2
	hand.Doubled = true
	hand.Cards = append(hand.Cards, card)
	hand.Settled = true
	if scoring.Score(hand.Cards).IsBust {
		bust(hand)
	}
	return e.advance(t)
}

func (e *Engine) split(t *model.Table, seat *model.Seat, hand *model.Hand) error {
	if err := legality.Split(t.Rules, seat, hand); err != nil {
		return err
	}
	seat.Chips -= hand.Bet
	id := hand.ID
	seat.Hands = append(seat.Hands, model.Hand{
		ID:        newHandID(),
		Cards:     []model.Card{hand.Cards[1]},
		Bet:       hand.Bet,
		FromSplit: true,
	})
	kept := seat.Hand(id)
	kept.Cards = kept.Cards[:1:1]
	kept.FromSplit = true
	return nil
}

func (e *Engine) surrender(t *model.Table, seat *model.Seat, hand *model.Hand) error {
	if err := legality.Surrender(t.Rules, hand); err != nil {
		return err
	}
	refund := hand.Bet / 2
	seat.Chips += refund
	hand.Surrendered = true
	hand.Settled = true
	hand.Outcome = model.OutcomeSurrender
	hand.Payout = refund - hand.Bet
	return e.advance(t)
}

func (e *Engine) nextRound(t *model.Table) error {
	if t.Phase != model.PhaseSettling {
		return model.ErrWrongPhase
	}
	for i := range t.Seats {
		t.Seats[i].Hands = nil
	}
	t.Dealer = nil
	t.HoleRevealed = false
	t.Order = nil
	t.Turn = nil
	t.Phase = model.PhaseBetting
	return nil
}

// advance moves the turn on, and plays out the round when no hand is left
func (e *Engine) advance(t *model.Table) error {
	t.Turn = turn.Next(t)
	if t.Turn == nil {
		return e.finishRound(t)
	}
	return nil
}

func (e *Engine) finishRound(t *model.Table) error {
	t.Turn = nil
	if err := settlement.PlayDealer(t, func() (model.Card, error) { return e.draw(t) }); err != nil {
		return err
	}
	settlement.Settle(t)
	e.logger.Info("round settled",
		slog.String("table_id", string(t.ID)),
		slog.Int("round", t.Round),
		slog.Int("dealer_total", scoring.Score(t.Dealer).Total),
	)
	return nil
}

// draw takes the next card, rebuilding the shoe only if it has run dry mid-round
func (e *Engine) draw(t *model.Table) (model.Card, error) {
	if t.Shoe.Remaining() == 0 {
		e.reshuffle(t)
	}
	return shoe.Draw(&t.Shoe)
}

func (e *Engine) reshuffle(t *model.Table) {
	seed := e.clock.Now().UnixNano() ^ int64(e.random.Intn(math.MaxInt32))
	t.Shoe = e.NewShoe(t.Rules, seed)
	e.logger.Info("shoe reshuffled",
		slog.String("table_id", string(t.ID)),
		slog.Int("round", t.Round),
		slog.Int("cards", t.Shoe.Total),
	)
}

func bust(hand *model.Hand) {
	hand.Settled = true
	hand.Outcome = model.OutcomeBust
	hand.Payout = -hand.Bet
}

func newHandID() model.HandID {
	return model.HandID(uuid.NewString())
}
