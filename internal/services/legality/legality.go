// Package legality checks whether a hand may take an optional action. The
// table engine enforces these checks and the view projects them as flags.
package legality

import (
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/scoring"
)

// Double returns nil if the hand may double down: exactly two cards, chips to
// match the bet, and double-after-split allowed for split hands.
func Double(rules model.Rules, seat *model.Seat, hand *model.Hand) error {
	if hand.Settled {
		return model.ErrHandSettled
	}
	if len(hand.Cards) != 2 {
		return model.ErrIllegalDouble
	}
	if hand.FromSplit && !rules.DoubleAfterSplit {
		return model.ErrIllegalDouble
	}
	if seat.Chips < hand.Bet {
		return model.ErrInsufficientChips
	}
	return nil
}

// Split returns nil if the hand is a pair, the seat has not reached the
// resplit limit, and the seat can match the bet.
func Split(rules model.Rules, seat *model.Seat, hand *model.Hand) error {
	if hand.Settled {
		return model.ErrHandSettled
	}
	if len(seat.Hands) > rules.ResplitLimit {
		return model.ErrIllegalSplit
	}
	if !scoring.CanSplit(hand.Cards) {
		return model.ErrIllegalSplit
	}
	if seat.Chips < hand.Bet {
		return model.ErrInsufficientChips
	}
	return nil
}

// Surrender returns nil if the table allows late surrender and the hand is an
// untouched two-card starting hand.
func Surrender(rules model.Rules, hand *model.Hand) error {
	if hand.Settled {
		return model.ErrHandSettled
	}
	if !rules.AllowSurrender || len(hand.Cards) != 2 || hand.FromSplit {
		return model.ErrSurrenderNotAllowed
	}
	return nil
}
