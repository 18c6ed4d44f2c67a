// Package settlement plays out the dealer hand and pays every hand exactly once.
package settlement

import (
	"math"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/scoring"
)

// DrawFunc supplies the next card from the shoe
type DrawFunc func() (model.Card, error)

// PlayDealer reveals the hole card and draws while the house rule says hit.
// The dealer plays out even when every player hand is already decided.
func PlayDealer(t *model.Table, draw DrawFunc) error {
	t.HoleRevealed = true
	for scoring.DealerShouldHit(t.Dealer, t.Rules) {
		card, err := draw()
		if err != nil {
			return err
		}
		t.Dealer = append(t.Dealer, card)
	}
	return nil
}

// Settle scores every unsettled hand against the dealer, credits chips and
// moves the table to the settling phase. Hands that already carry an outcome
// (surrender, bust) were paid when that outcome was recorded.
func Settle(t *model.Table) {
	dealer := scoring.Score(t.Dealer)
	for _, seat := range participants(t) {
		for i := range seat.Hands {
			h := &seat.Hands[i]
			if h.Outcome == model.OutcomeNone {
				h.Outcome, h.Payout = resolve(h, dealer, t.Rules)
				seat.Chips += Credit(h.Outcome, h.Bet, h.Payout)
			}
			h.Settled = true
		}
	}
	t.HoleRevealed = true
	t.Phase = model.PhaseSettling
	t.Turn = nil
}

// Credit is the amount returned to the player's stack for a settled hand
func Credit(outcome model.Outcome, bet, payout int) int {
	switch outcome {
	case model.OutcomeBlackjack, model.OutcomeWin:
		return bet + payout
	case model.OutcomePush:
		return bet
	default:
		return 0
	}
}

// BlackjackPayout is the winnings on a natural, rounded down to whole chips
func BlackjackPayout(bet int, rules model.Rules) int {
	return int(math.Floor(float64(bet) * rules.BlackjackPayout))
}

func resolve(h *model.Hand, dealer scoring.Result, rules model.Rules) (model.Outcome, int) {
	r := scoring.Score(h.Cards)
	natural := r.IsBlackjack && !h.FromSplit
	switch {
	case natural && !dealer.IsBlackjack:
		return model.OutcomeBlackjack, BlackjackPayout(h.Bet, rules)
	case r.IsBust:
		return model.OutcomeBust, -h.Bet
	case dealer.IsBust:
		return model.OutcomeWin, h.Bet
	case r.Total > dealer.Total:
		return model.OutcomeWin, h.Bet
	case r.Total < dealer.Total:
		return model.OutcomeLose, -h.Bet
	default:
		return model.OutcomePush, 0
	}
}

func participants(t *model.Table) []*model.Seat {
	seats := make([]*model.Seat, 0, len(t.Order))
	for _, id := range t.Order {
		if seat := t.Seat(id); seat != nil {
			seats = append(seats, seat)
		}
	}
	return seats
}
