package bot

import (
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/view"
)

// RandomStrategy bets a random multiple of the minimum and picks a random
// legal action
type RandomStrategy struct {
	random random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChooseBet returns one to three times the minimum bet
func (s *RandomStrategy) ChooseBet(rules model.Rules, chips int) int {
	return min(rules.MinBet*(1+s.random.Intn(3)), chips)
}

// ChooseAction picks uniformly among the actions legal for the hand
func (s *RandomStrategy) ChooseAction(hand view.HandView, upcard model.Card, rules model.Rules, chips int) model.Action {
	options := []model.Action{model.ActionHit, model.ActionStand}
	if hand.CanDouble {
		options = append(options, model.ActionDouble)
	}
	if hand.CanSplit {
		options = append(options, model.ActionSplit)
	}
	if hand.CanSurrender {
		options = append(options, model.ActionSurrender)
	}
	return options[s.random.Intn(len(options))]
}
