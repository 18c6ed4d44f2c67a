// Package view projects a table into the snapshot shown to one player. The
// dealer's hole card never leaves the server before it is revealed.
package view

import (
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/legality"
	"github.com/mcoot/blackjack-go/internal/services/scoring"
	"github.com/mcoot/blackjack-go/internal/services/shoe"
)

// TableView is the externally safe snapshot of a table
type TableView struct {
	TableID            model.TableID         `json:"table_id"`
	Code               model.TableCode       `json:"code,omitempty"`
	Mode               model.TableMode       `json:"mode"`
	Rules              RulesView             `json:"rules"`
	ShoeSize           int                   `json:"shoe_size"`
	CutCardPenetration float64               `json:"cut_card_penetration"`
	Round              int                   `json:"round"`
	Dealer             DealerView            `json:"dealer"`
	Players            []PlayerView          `json:"players"`
	Hands              map[string][]HandView `json:"hands"`
	Turn               *TurnView             `json:"turn"`
	Phase              model.Phase           `json:"phase"`
	You                *PlayerView           `json:"you,omitempty"`
}

// RulesView exposes the table rules
type RulesView struct {
	Decks            int     `json:"decks"`
	HitSoft17        bool    `json:"s17"`
	DoubleAfterSplit bool    `json:"double_after_split"`
	ResplitLimit     int     `json:"resplit_limit"`
	BlackjackPayout  float64 `json:"blackjack_payout"`
	AllowSurrender   bool    `json:"allow_surrender"`
	DealerPeeks      bool    `json:"dealer_peeks"`
	MinBet           int     `json:"min_bet"`
}

// DealerView shows the upcard, and the full hand once revealed
type DealerView struct {
	Upcard       *model.Card  `json:"upcard"`
	HoleRevealed bool         `json:"hole_revealed"`
	Cards        []model.Card `json:"cards"`
	Total        *int         `json:"total"`
}

// PlayerView is a seated player
type PlayerView struct {
	ID          model.PlayerID `json:"id"`
	Name        string         `json:"name"`
	Seat        int            `json:"seat"`
	Chips       int            `json:"chips"`
	IsBot       bool           `json:"is_bot,omitempty"`
	BotStrategy string         `json:"bot_strategy,omitempty"`
	HasBet      bool           `json:"has_bet"`
	IsYou       bool           `json:"is_you"`
}

// HandView is one hand with its derived flags
type HandView struct {
	ID           model.HandID  `json:"id"`
	Cards        []model.Card  `json:"cards"`
	Total        int           `json:"total"`
	Soft         bool          `json:"soft"`
	Bet          int           `json:"bet"`
	CanSplit     bool          `json:"can_split"`
	CanDouble    bool          `json:"can_double"`
	CanSurrender bool          `json:"can_surrender"`
	IsBust       bool          `json:"is_bust"`
	IsBlackjack  bool          `json:"is_blackjack"`
	IsActive     bool          `json:"is_active"`
	Settled      bool          `json:"settled"`
	Outcome      model.Outcome `json:"outcome,omitempty"`
	Payout       int           `json:"payout"`
}

// TurnView points at the active hand
type TurnView struct {
	PlayerID model.PlayerID `json:"player_id"`
	HandID   model.HandID   `json:"hand_id"`
}

// Project builds the snapshot of t as seen by viewer. The viewer need not be
// seated; spectators get the same view without a "you" entry.
func Project(t *model.Table, viewer model.PlayerID) TableView {
	v := TableView{
		TableID:            t.ID,
		Code:               t.Code,
		Mode:               t.Mode,
		Rules:              rulesView(t.Rules),
		ShoeSize:           t.Shoe.Remaining(),
		CutCardPenetration: shoe.Penetration(t.Shoe),
		Round:              t.Round,
		Dealer:             dealerView(t),
		Players:            []PlayerView{},
		Hands:              map[string][]HandView{},
		Phase:              t.Phase,
	}
	if t.Turn != nil {
		v.Turn = &TurnView{PlayerID: t.Turn.PlayerID, HandID: t.Turn.HandID}
	}

	for _, seat := range t.SeatsInSeatOrder() {
		pv := PlayerView{
			ID:          seat.PlayerID,
			Name:        seat.Name,
			Seat:        seat.Seat,
			Chips:       seat.Chips,
			IsBot:       seat.IsBot,
			BotStrategy: seat.BotStrategy,
			HasBet:      seat.HasBet(),
			IsYou:       seat.PlayerID == viewer,
		}
		v.Players = append(v.Players, pv)
		if pv.IsYou {
			you := pv
			v.You = &you
		}

		hands := make([]HandView, 0, len(seat.Hands))
		for i := range seat.Hands {
			hands = append(hands, handView(t, seat, &seat.Hands[i]))
		}
		v.Hands[string(seat.PlayerID)] = hands
	}
	return v
}

// Revealed reports whether the full dealer hand may be shown
func Revealed(t *model.Table) bool {
	return t.Phase == model.PhaseSettling || t.HoleRevealed
}

func dealerView(t *model.Table) DealerView {
	d := DealerView{Cards: []model.Card{}}
	if up, ok := t.DealerUpcard(); ok {
		d.Upcard = &up
		d.Cards = append(d.Cards, up)
	}
	if Revealed(t) && len(t.Dealer) > 0 {
		d.HoleRevealed = true
		d.Cards = append([]model.Card{}, t.Dealer...)
		total := scoring.Score(t.Dealer).Total
		d.Total = &total
	}
	return d
}

func handView(t *model.Table, seat *model.Seat, h *model.Hand) HandView {
	r := scoring.Score(h.Cards)
	active := t.Phase == model.PhaseActing && t.Turn != nil &&
		t.Turn.PlayerID == seat.PlayerID && t.Turn.HandID == h.ID
	return HandView{
		ID:           h.ID,
		Cards:        append([]model.Card{}, h.Cards...),
		Total:        r.Total,
		Soft:         r.Soft,
		Bet:          h.Bet,
		CanSplit:     active && legality.Split(t.Rules, seat, h) == nil,
		CanDouble:    active && legality.Double(t.Rules, seat, h) == nil,
		CanSurrender: active && legality.Surrender(t.Rules, h) == nil,
		IsBust:       r.IsBust,
		IsBlackjack:  r.IsBlackjack && !h.FromSplit,
		IsActive:     active,
		Settled:      h.Settled,
		Outcome:      h.Outcome,
		Payout:       h.Payout,
	}
}

func rulesView(r model.Rules) RulesView {
	return RulesView{
		Decks:            r.Decks,
		HitSoft17:        r.HitSoft17,
		DoubleAfterSplit: r.DoubleAfterSplit,
		ResplitLimit:     r.ResplitLimit,
		BlackjackPayout:  r.BlackjackPayout,
		AllowSurrender:   r.AllowSurrender,
		DealerPeeks:      r.DealerPeeks,
		MinBet:           r.MinBet,
	}
}

// Rules converts the view back into the table rules it was projected from
func (r RulesView) Rules() model.Rules {
	return model.Rules{
		Decks:            r.Decks,
		HitSoft17:        r.HitSoft17,
		DoubleAfterSplit: r.DoubleAfterSplit,
		ResplitLimit:     r.ResplitLimit,
		BlackjackPayout:  r.BlackjackPayout,
		AllowSurrender:   r.AllowSurrender,
		DealerPeeks:      r.DealerPeeks,
		MinBet:           r.MinBet,
	}
}
