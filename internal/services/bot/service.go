package bot

import (
	"context"
	"log/slog"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/table"
	"github.com/mcoot/blackjack-go/internal/services/view"
)

// MaxBotIterations is a safety limit for the ProcessBotActions loop
const MaxBotIterations = 200

// BotAction represents a single action taken by a bot during ProcessBotActions
type BotAction struct {
	PlayerID model.PlayerID
	Action   model.Action
	HandID   model.HandID
	Amount   int
	Round    int
}

// Service plays the bot seats at a table
type Service struct {
	tables     table.ControllerInterface
	strategies map[string]Strategy
	logger     *slog.Logger
}

// NewService creates a new bot Service
func NewService(tables table.ControllerInterface, strategies map[string]Strategy, logger *slog.Logger) *Service {
	return &Service{
		tables:     tables,
		strategies: strategies,
		logger:     logger.With(slog.String("component", "bot-service")),
	}
}

// ProcessBotActions applies bot intents until a human must act or the round
// settles. Each intent goes through the table controller as its own locked
// cycle. It returns all actions taken so handlers can publish updates.
func (s *Service) ProcessBotActions(ctx context.Context, tableID model.TableID) ([]BotAction, error) {
	var actions []BotAction

	for range MaxBotIterations {
		v, err := s.tables.Get(ctx, tableID, "")
		if err != nil {
			return actions, err
		}

		var acted []BotAction
		switch v.Phase {
		case model.PhaseBetting:
			acted, err = s.placeBets(ctx, v)
		case model.PhaseActing:
			acted, err = s.playTurn(ctx, v)
		}
		if err != nil {
			return actions, err
		}
		if len(acted) == 0 {
			break
		}
		actions = append(actions, acted...)
	}

	return actions, nil
}

func (s *Service) placeBets(ctx context.Context, v *view.TableView) ([]BotAction, error) {
	rules := v.Rules.Rules()
	var acted []BotAction
	for _, p := range v.Players {
		if !p.IsBot || p.HasBet || p.Chips < rules.MinBet {
			continue
		}
		amount := s.strategyFor(p.BotStrategy).ChooseBet(rules, p.Chips)
		intent := model.Intent{Action: model.ActionBet, Amount: amount}
		after, err := s.tables.Act(ctx, v.TableID, p.ID, intent)
		if model.IsValidation(err) {
			// table moved on since it was read
			return acted, nil
		}
		if err != nil {
			return acted, err
		}
		acted = append(acted, BotAction{PlayerID: p.ID, Action: model.ActionBet, Amount: amount, Round: after.Round})
		if after.Phase != model.PhaseBetting {
			break
		}
	}
	return acted, nil
}

func (s *Service) playTurn(ctx context.Context, v *view.TableView) ([]BotAction, error) {
	if v.Turn == nil || v.Dealer.Upcard == nil {
		return nil, nil
	}
	player := findPlayer(v, v.Turn.PlayerID)
	if player == nil || !player.IsBot {
		return nil, nil // human's turn
	}
	hand := findHand(v, v.Turn.PlayerID, v.Turn.HandID)
	if hand == nil {
		return nil, nil
	}

	rules := v.Rules.Rules()
	action := s.strategyFor(player.BotStrategy).ChooseAction(*hand, *v.Dealer.Upcard, rules, player.Chips)
	intent := model.Intent{Action: action, HandID: hand.ID}

	after, err := s.tables.Act(ctx, v.TableID, player.ID, intent)
	if model.IsValidation(err) && action != model.ActionHit && action != model.ActionStand {
		s.logger.Warn("advised action rejected, falling back",
			slog.String("table_id", string(v.TableID)),
			slog.String("player_id", string(player.ID)),
			slog.String("action", string(action)),
			slog.String("error", err.Error()),
		)
		intent.Action = fallback(*hand)
		after, err = s.tables.Act(ctx, v.TableID, player.ID, intent)
	}
	if model.IsValidation(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug("bot acted",
		slog.String("table_id", string(v.TableID)),
		slog.String("player_id", string(player.ID)),
		slog.String("action", string(intent.Action)),
		slog.Int("round", after.Round),
	)
	return []BotAction{{PlayerID: player.ID, Action: intent.Action, HandID: hand.ID, Round: after.Round}}, nil
}

// fallback is the play used when the advised action is not allowed
func fallback(hand view.HandView) model.Action {
	if hand.Soft {
		return standIf(hand.Total >= 18)
	}
	return standIf(hand.Total >= 17)
}

// strategyFor returns the named strategy, falling back to basic strategy
func (s *Service) strategyFor(name string) Strategy {
	if st, ok := s.strategies[name]; ok {
		return st
	}
	if st, ok := s.strategies[model.BotStrategyBasic]; ok {
		return st
	}
	return NewBasicStrategy()
}

func findPlayer(v *view.TableView, id model.PlayerID) *view.PlayerView {
	for i := range v.Players {
		if v.Players[i].ID == id {
			return &v.Players[i]
		}
	}
	return nil
}

func findHand(v *view.TableView, playerID model.PlayerID, handID model.HandID) *view.HandView {
	hands := v.Hands[string(playerID)]
	for i := range hands {
		if hands[i].ID == handID {
			return &hands[i]
		}
	}
	return nil
}
