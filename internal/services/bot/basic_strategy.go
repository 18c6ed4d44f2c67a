package bot

import (
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/scoring"
	"github.com/mcoot/blackjack-go/internal/services/view"
)

// BasicStrategy flat-bets the minimum and plays multi-deck basic strategy,
// adjusted for whether the dealer hits soft 17
type BasicStrategy struct{}

// NewBasicStrategy creates a new BasicStrategy
func NewBasicStrategy() *BasicStrategy {
	return &BasicStrategy{}
}

// ChooseBet always bets the table minimum
func (s *BasicStrategy) ChooseBet(rules model.Rules, chips int) int {
	return min(rules.MinBet, chips)
}

// ChooseAction returns the basic strategy play. Doubles, splits and
// surrenders are only advised when the hand flags them as legal.
func (s *BasicStrategy) ChooseAction(hand view.HandView, upcard model.Card, rules model.Rules, chips int) model.Action {
	return Advise(hand, upcard, rules)
}

// Advise looks up the basic strategy play for a hand against the dealer upcard
func Advise(hand view.HandView, upcard model.Card, rules model.Rules) model.Action {
	up := scoring.Value(upcard) // 2..11, ace high
	pair := hand.CanSplit && len(hand.Cards) == 2

	if hand.CanSurrender && !pair && !hand.Soft && surrenders(hand.Total, up, rules) {
		return model.ActionSurrender
	}
	if pair && splits(hand.Cards[0].Rank, up) {
		return model.ActionSplit
	}
	if hand.Soft {
		return softPlay(hand.Total, up, rules, hand.CanDouble)
	}
	return hardPlay(hand.Total, up, rules, hand.CanDouble)
}

func surrenders(total, up int, rules model.Rules) bool {
	switch total {
	case 16:
		return up >= 9
	case 15:
		return up == 10 || (up == 11 && rules.HitSoft17)
	}
	return false
}

func splits(rank model.Rank, up int) bool {
	switch {
	case rank == 'A', rank == '8':
		return true
	case rank.IsTenValue(), rank == '5':
		return false
	case rank == '9':
		return (up >= 2 && up <= 6) || up == 8 || up == 9
	case rank == '7':
		return up <= 7
	case rank == '6':
		return up <= 6
	case rank == '4':
		return up == 5 || up == 6
	default: // 2s and 3s
		return up <= 7
	}
}

func hardPlay(total, up int, rules model.Rules, canDouble bool) model.Action {
	switch {
	case total <= 8:
		return model.ActionHit
	case total == 9:
		return doubleOr(canDouble && up >= 3 && up <= 6, model.ActionHit)
	case total == 10:
		return doubleOr(canDouble && up <= 9, model.ActionHit)
	case total == 11:
		return doubleOr(canDouble && (up <= 10 || rules.HitSoft17), model.ActionHit)
	case total == 12:
		return standIf(up >= 4 && up <= 6)
	case total <= 16:
		return standIf(up <= 6)
	default:
		return model.ActionStand
	}
}

func softPlay(total, up int, rules model.Rules, canDouble bool) model.Action {
	switch {
	case total <= 12:
		return model.ActionHit
	case total <= 14:
		return doubleOr(canDouble && up >= 5 && up <= 6, model.ActionHit)
	case total <= 16:
		return doubleOr(canDouble && up >= 4 && up <= 6, model.ActionHit)
	case total == 17:
		return doubleOr(canDouble && up >= 3 && up <= 6, model.ActionHit)
	case total == 18:
		if canDouble && ((up >= 3 && up <= 6) || (up == 2 && rules.HitSoft17)) {
			return model.ActionDouble
		}
		return standIf(up <= 8)
	case total == 19:
		return doubleOr(canDouble && up == 6 && rules.HitSoft17, model.ActionStand)
	default:
		return model.ActionStand
	}
}

func doubleOr(double bool, otherwise model.Action) model.Action {
	if double {
		return model.ActionDouble
	}
	return otherwise
}

func standIf(stand bool) model.Action {
	if stand {
		return model.ActionStand
	}
	return model.ActionHit
}
