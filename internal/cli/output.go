package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcoot/blackjack-go/internal/api/response"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/view"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Player:
		o.printPlayer(v)
	case response.AuthResponse:
		o.printPlayer(v.Player)
		fmt.Fprintf(o.w, "Token: %s\n", v.SessionToken)
	case view.TableView:
		o.printTable(v)
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\nStorage: %s\n", v.Status, v.Storage)
	default:
		o.printJSON(data)
	}
}

func (o *Output) printPlayer(p response.Player) {
	guest := "no"
	if p.IsGuest {
		guest = "yes"
	}
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Fprintf(o.w, "Guest: %s\n", guest)
}

func (o *Output) printTable(t view.TableView) {
	fmt.Fprintf(o.w, "Table: %s (%s)\n", t.TableID, t.Mode)
	if t.Code != "" {
		fmt.Fprintf(o.w, "Code: %s\n", t.Code)
	}
	soft17 := "stands"
	if t.Rules.HitSoft17 {
		soft17 = "hits"
	}
	fmt.Fprintf(o.w, "Rules: %d decks, dealer %s soft 17, min bet %d\n", t.Rules.Decks, soft17, t.Rules.MinBet)
	fmt.Fprintf(o.w, "Round %d, %s (shoe %d cards, %.0f%% dealt)\n",
		t.Round, t.Phase, t.ShoeSize, t.CutCardPenetration*100)

	fmt.Fprintf(o.w, "\nDealer: %s", formatCards(t.Dealer.Cards))
	switch {
	case t.Dealer.Total != nil:
		fmt.Fprintf(o.w, " (%d)", *t.Dealer.Total)
	case t.Dealer.Upcard != nil:
		fmt.Fprint(o.w, " ??")
	}
	fmt.Fprintln(o.w)

	for _, p := range t.Players {
		marker := ""
		if p.IsYou {
			marker = " [you]"
		}
		if p.IsBot {
			marker += " [bot]"
		}
		fmt.Fprintf(o.w, "\nSeat %d: %s%s - %d chips\n", p.Seat, p.Name, marker, p.Chips)
		for _, h := range t.Hands[string(p.ID)] {
			o.printHand(h)
		}
	}

	if t.Turn != nil {
		fmt.Fprintf(o.w, "\nTurn: %s (hand %s)\n", t.Turn.PlayerID, t.Turn.HandID)
	}
}

func (o *Output) printHand(h view.HandView) {
	total := fmt.Sprintf("%d", h.Total)
	if h.Soft {
		total = "soft " + total
	}
	fmt.Fprintf(o.w, "  %s (%s) bet %d", formatCards(h.Cards), total, h.Bet)

	var flags []string
	if h.IsActive {
		flags = append(flags, "active")
		options := []string{string(model.ActionHit), string(model.ActionStand)}
		if h.CanDouble {
			options = append(options, string(model.ActionDouble))
		}
		if h.CanSplit {
			options = append(options, string(model.ActionSplit))
		}
		if h.CanSurrender {
			options = append(options, string(model.ActionSurrender))
		}
		flags = append(flags, "can "+strings.Join(options, "/"))
	}
	if h.Outcome != model.OutcomeNone {
		flags = append(flags, fmt.Sprintf("%s %+d", h.Outcome, h.Payout))
	}
	if len(flags) > 0 {
		fmt.Fprintf(o.w, " [%s]", strings.Join(flags, ", "))
	}
	fmt.Fprintln(o.w)
}

func formatCards(cards []model.Card) string {
	if len(cards) == 0 {
		return "-"
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
