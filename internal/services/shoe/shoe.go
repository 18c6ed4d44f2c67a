// Package shoe builds and draws from multi-deck shoes.
package shoe

import (
	"errors"

	"github.com/mcoot/blackjack-go/internal/dependencies/random"
	"github.com/mcoot/blackjack-go/internal/model"
)

// ErrShoeEmpty is returned when drawing from a shoe with no cards left
var ErrShoeEmpty = errors.New("shoe is empty")

// cutFraction is how deep into the shoe the cut card sits
const cutFraction = 0.75

// Build returns a freshly shuffled shoe of the given number of 52-card decks.
// The shuffle is Fisher-Yates driven entirely by rnd.
func Build(decks int, rnd random.Random) model.Shoe {
	if decks < 1 {
		decks = 1
	}
	cards := make([]model.Card, 0, decks*52)
	for d := 0; d < decks; d++ {
		for _, suit := range model.Suits {
			for _, rank := range model.Ranks {
				cards = append(cards, model.NewCard(rank, suit))
			}
		}
	}

	for i := len(cards) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}

	return model.Shoe{
		Cards:    cards,
		CutIndex: int(float64(len(cards)) * cutFraction),
		Drawn:    0,
		Total:    len(cards),
	}
}

// Draw removes and returns the top card. It never rebuilds the shoe; callers
// decide when to reshuffle.
func Draw(s *model.Shoe) (model.Card, error) {
	n := len(s.Cards)
	if n == 0 {
		return model.Card{}, ErrShoeEmpty
	}
	card := s.Cards[n-1]
	s.Cards = s.Cards[:n-1]
	s.Drawn++
	return card, nil
}

// NeedsReshuffle reports whether the cut card has been reached
func NeedsReshuffle(s model.Shoe) bool {
	return s.Drawn >= s.CutIndex
}

// Penetration is a display-only measure of how far the shoe is dealt
func Penetration(s model.Shoe) float64 {
	denom := len(s.Cards) + s.CutIndex
	if denom == 0 {
		return 0
	}
	return float64(s.CutIndex) / float64(denom)
}
