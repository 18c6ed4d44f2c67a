package bot

import (
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/view"
)

// Strategy defines how a bot bets and plays its hands
type Strategy interface {
	// ChooseBet selects a wager for the coming round
	ChooseBet(rules model.Rules, chips int) int
	// ChooseAction selects an action for the active hand
	ChooseAction(hand view.HandView, upcard model.Card, rules model.Rules, chips int) model.Action
}

// Strategies returns every built-in strategy keyed by name
func Strategies(rnd random) map[string]Strategy {
	return map[string]Strategy{
		model.BotStrategyBasic:  NewBasicStrategy(),
		model.BotStrategyRandom: NewRandomStrategy(rnd),
	}
}

// random is the subset of random.Random the strategies need
type random interface {
	Intn(n int) int
}
