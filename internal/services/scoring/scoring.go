// Package scoring evaluates blackjack hands. Everything here is pure.
package scoring

import "github.com/mcoot/blackjack-go/internal/model"

const (
	blackjackTotal = 21
	aceBonus       = 10
	dealerStand    = 17
)

// Result is the evaluation of a set of cards
type Result struct {
	Total       int
	Soft        bool // at least one ace is still counted as 11
	IsBlackjack bool // exactly two cards totalling 21
	IsBust      bool
}

// Value returns the hard value of a card, counting aces as 11
func Value(c model.Card) int {
	switch {
	case c.Rank == 'A':
		return 11
	case c.Rank.IsTenValue():
		return 10
	default:
		return int(c.Rank - '0')
	}
}

// Score totals cards, demoting aces from 11 to 1 one at a time while the
// total exceeds 21.
func Score(cards []model.Card) Result {
	total := 0
	softAces := 0
	for _, c := range cards {
		total += Value(c)
		if c.Rank == 'A' {
			softAces++
		}
	}
	for total > blackjackTotal && softAces > 0 {
		total -= aceBonus
		softAces--
	}
	return Result{
		Total:       total,
		Soft:        softAces > 0,
		IsBlackjack: len(cards) == 2 && total == blackjackTotal,
		IsBust:      total > blackjackTotal,
	}
}

// CanSplit reports whether cards are a pair by rank. Ten-value cards of
// different ranks do not pair.
func CanSplit(cards []model.Card) bool {
	return len(cards) == 2 && cards[0].Rank == cards[1].Rank
}

// DealerShouldHit applies the house drawing rule: hit below 17, and hit soft
// 17 when the table plays H17.
func DealerShouldHit(cards []model.Card, rules model.Rules) bool {
	r := Score(cards)
	if r.Total < dealerStand {
		return true
	}
	return r.Total == dealerStand && r.Soft && rules.HitSoft17
}
