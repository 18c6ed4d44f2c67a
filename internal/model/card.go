package model

import (
	"fmt"
	"strings"
)

// Rank is a card rank: A, 2-9, T, J, Q, K
type Rank byte

// Suit is a card suit: S, H, D, C
type Suit byte

// Ranks lists every rank in deck-construction order
var Ranks = []Rank{'A', '2', '3', '4', '5', '6', '7', '8', '9', 'T', 'J', 'Q', 'K'}

// Suits lists every suit in deck-construction order
var Suits = []Suit{'S', 'H', 'D', 'C'}

// Card is a single playing card. Cards are values and never change once drawn.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a card from its rank and suit
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// ParseCard parses the two-character form used on the wire, e.g. "TH" or "AS"
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	c := Card{Rank: Rank(strings.ToUpper(s[:1])[0]), Suit: Suit(strings.ToUpper(s[1:])[0])}
	if !c.Rank.Valid() || !c.Suit.Valid() {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	return c, nil
}

// MustParseCard parses a card and panics on malformed input
func MustParseCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the two-character form of the card
func (c Card) String() string {
	return string([]byte{byte(c.Rank), byte(c.Suit)})
}

// IsZero reports whether the card is the zero value
func (c Card) IsZero() bool {
	return c.Rank == 0 && c.Suit == 0
}

// MarshalText encodes the card as its two-character form
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes the two-character form
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Valid reports whether r is a known rank
func (r Rank) Valid() bool {
	for _, known := range Ranks {
		if r == known {
			return true
		}
	}
	return false
}

// IsTenValue reports whether the rank counts as ten
func (r Rank) IsTenValue() bool {
	return r == 'T' || r == 'J' || r == 'Q' || r == 'K'
}

// Valid reports whether s is a known suit
func (s Suit) Valid() bool {
	for _, known := range Suits {
		if s == known {
			return true
		}
	}
	return false
}
