package model

// Rules is the per-table casino configuration. It is fixed when the table is
// created and never mutated afterwards.
type Rules struct {
	Decks            int
	HitSoft17        bool // dealer draws on soft 17 ("s17" on the wire)
	DoubleAfterSplit bool
	ResplitLimit     int     // extra hands a seat may split into
	BlackjackPayout  float64 // 1.5 for 3:2
	AllowSurrender   bool
	DealerPeeks      bool
	MinBet           int
}

// DefaultRules returns the house defaults: six decks, H17, DAS, resplit to four
// hands, 3:2 blackjack, late surrender, dealer peek, minimum bet 10.
func DefaultRules() Rules {
	return Rules{
		Decks:            6,
		HitSoft17:        true,
		DoubleAfterSplit: true,
		ResplitLimit:     3,
		BlackjackPayout:  1.5,
		AllowSurrender:   true,
		DealerPeeks:      true,
		MinBet:           10,
	}
}

// MaxHands is the most hands a single seat may hold in one round
func (r Rules) MaxHands() int {
	return r.ResplitLimit + 1
}
