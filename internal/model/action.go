package model

// Action is a player intent applied to a table
type Action string

const (
	ActionBet       Action = "bet"
	ActionHit       Action = "hit"
	ActionStand     Action = "stand"
	ActionDouble    Action = "double"
	ActionSplit     Action = "split"
	ActionSurrender Action = "surrender"
	ActionNext      Action = "next" // advance to the next round
)

// Intent is a single submitted action. HandID is optional and defaults to the
// hand the turn points at; Amount only applies to bets.
type Intent struct {
	Action Action
	HandID HandID
	Amount int
}

// ParseAction validates an action name
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionBet, ActionHit, ActionStand, ActionDouble, ActionSplit, ActionSurrender, ActionNext:
		return a, nil
	default:
		return "", ErrUnknownAction
	}
}
