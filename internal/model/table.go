package model

import (
	"slices"
	"time"
)

// TableID uniquely identifies a table session
type TableID string

// TableCode is a short human-readable code for joining pvp tables
type TableCode string

// HandID identifies a hand within its owning seat for the current round
type HandID string

// TableMode distinguishes solo tables from shared pvp tables
type TableMode string

const (
	TableModeSolo TableMode = "solo"
	TableModePvP  TableMode = "pvp"
)

// Phase is the table's current stage in its round cycle
type Phase string

const (
	PhaseBetting  Phase = "betting"  // Waiting for every seat to bet
	PhaseDealing  Phase = "dealing"  // Initial cards going out (transient)
	PhaseActing   Phase = "acting"   // Players acting on their hands
	PhaseSettling Phase = "settling" // Round settled, waiting for next
)

const (
	// MaxSeats is the number of seats at a table (indices 0..4)
	MaxSeats = 5
	// StartingChips is the chip balance a player sits down with
	StartingChips = 1000
)

// Outcome records how a hand was settled
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeBlackjack Outcome = "blackjack"
	OutcomeWin       Outcome = "win"
	OutcomePush      Outcome = "push"
	OutcomeLose      Outcome = "lose"
	OutcomeBust      Outcome = "bust"
	OutcomeSurrender Outcome = "surrender"
)

// Hand is one betting position held by a seat for the current round
type Hand struct {
	ID          HandID
	Cards       []Card
	Bet         int
	Settled     bool // no further actions; never reverts within a round
	FromSplit   bool
	Doubled     bool
	Surrendered bool
	Outcome     Outcome
	Payout      int // net result against the bet, set at settlement
}

// Seat is a player sitting at the table
type Seat struct {
	PlayerID    PlayerID
	Name        string
	Seat        int
	Chips       int
	Hands       []Hand // empty outside a round
	IsBot       bool
	BotStrategy string
}

// Hand returns the seat's hand with the given ID, or nil
func (s *Seat) Hand(id HandID) *Hand {
	for i := range s.Hands {
		if s.Hands[i].ID == id {
			return &s.Hands[i]
		}
	}
	return nil
}

// HasBet reports whether the seat has placed a bet this round
func (s *Seat) HasBet() bool {
	return len(s.Hands) > 0
}

// Turn points at the hand whose action is awaited
type Turn struct {
	PlayerID PlayerID
	HandID   HandID
}

// Table is the root aggregate for one table session. It is loaded, mutated and
// persisted as a single unit under the table lock.
type Table struct {
	ID           TableID
	Code         TableCode // empty for solo tables
	Mode         TableMode
	Rules        Rules
	Shoe         Shoe
	Dealer       []Card
	HoleRevealed bool
	Round        int
	Seats        []Seat
	Order        []PlayerID // participants for the current round, fixed at deal
	Turn         *Turn      // non-nil iff Phase is acting
	Phase        Phase
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Seat returns the seat held by the given player, or nil
func (t *Table) Seat(playerID PlayerID) *Seat {
	for i := range t.Seats {
		if t.Seats[i].PlayerID == playerID {
			return &t.Seats[i]
		}
	}
	return nil
}

// IsFull returns true when every seat is taken
func (t *Table) IsFull() bool {
	return len(t.Seats) >= MaxSeats
}

// NextFreeSeat returns the lowest unoccupied seat index, or -1 if the table is full
func (t *Table) NextFreeSeat() int {
	taken := make(map[int]bool, len(t.Seats))
	for _, s := range t.Seats {
		taken[s.Seat] = true
	}
	for i := 0; i < MaxSeats; i++ {
		if !taken[i] {
			return i
		}
	}
	return -1
}

// SeatsInSeatOrder returns pointers to all seats sorted by seat index
func (t *Table) SeatsInSeatOrder() []*Seat {
	seats := make([]*Seat, len(t.Seats))
	for i := range t.Seats {
		seats[i] = &t.Seats[i]
	}
	slices.SortFunc(seats, func(a, b *Seat) int { return a.Seat - b.Seat })
	return seats
}

// CurrentHand returns the seat and hand the turn points at
func (t *Table) CurrentHand() (*Seat, *Hand) {
	if t.Turn == nil {
		return nil, nil
	}
	seat := t.Seat(t.Turn.PlayerID)
	if seat == nil {
		return nil, nil
	}
	return seat, seat.Hand(t.Turn.HandID)
}

// DealerUpcard returns the dealer's face-up card, if dealt
func (t *Table) DealerUpcard() (Card, bool) {
	if len(t.Dealer) == 0 {
		return Card{}, false
	}
	return t.Dealer[0], true
}
