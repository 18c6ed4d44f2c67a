// Package turn decides which hand acts next.
package turn

import (
	"slices"

	"github.com/mcoot/blackjack-go/internal/model"
)

// First returns the first unsettled hand from the start of the round order,
// or nil if every hand is already settled.
func First(t *model.Table) *model.Turn {
	for _, id := range t.Order {
		if next := firstUnsettled(t, id); next != nil {
			return next
		}
	}
	return nil
}

// Next returns the hand that acts after the current turn. The current
// player's remaining hands come first, in creation order, then each following
// player in round order, wrapping around once. Nil means the dealer plays.
func Next(t *model.Table) *model.Turn {
	if t.Turn == nil {
		return First(t)
	}
	if next := firstUnsettled(t, t.Turn.PlayerID); next != nil {
		return next
	}

	idx := slices.Index(t.Order, t.Turn.PlayerID)
	n := len(t.Order)
	for k := 1; k < n; k++ {
		id := t.Order[(idx+k+n)%n]
		if next := firstUnsettled(t, id); next != nil {
			return next
		}
	}
	return nil
}

func firstUnsettled(t *model.Table, playerID model.PlayerID) *model.Turn {
	seat := t.Seat(playerID)
	if seat == nil {
		return nil
	}
	for _, h := range seat.Hands {
		if !h.Settled {
			return &model.Turn{PlayerID: playerID, HandID: h.ID}
		}
	}
	return nil
}
