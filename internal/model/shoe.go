package model

// Shoe is the stack of cards dealt from. Draws pop from the end of Cards.
type Shoe struct {
	Cards    []Card
	CutIndex int // reshuffle once Drawn reaches this
	Drawn    int
	Total    int
}

// Remaining returns the number of undealt cards
func (s *Shoe) Remaining() int {
	return len(s.Cards)
}
