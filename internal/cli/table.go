package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/view"
)

func newTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Table commands",
	}

	cmd.AddCommand(newTableCreateCmd())
	cmd.AddCommand(newTableJoinCmd())
	cmd.AddCommand(newTableGetCmd())
	cmd.AddCommand(newTableBetCmd())
	for _, action := range []model.Action{
		model.ActionHit,
		model.ActionStand,
		model.ActionDouble,
		model.ActionSplit,
		model.ActionSurrender,
	} {
		cmd.AddCommand(newHandActionCmd(action))
	}
	cmd.AddCommand(newTableNextCmd())

	return cmd
}

func newTableCreateCmd() *cobra.Command {
	var (
		mode, code, strategy string
		decks, minBet, bots  int
		s17                  bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new table and sit down at it",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"mode": mode}
			if decks > 0 {
				req["decks"] = decks
			}
			if minBet > 0 {
				req["min_bet"] = minBet
			}
			if cmd.Flags().Changed("s17") {
				req["s17"] = s17
			}
			if code != "" {
				req["code"] = code
			}
			if bots > 0 {
				req["bots"] = bots
				req["bot_strategy"] = strategy
			}

			var result view.TableView
			if err := client.Post("/api/v1/tables", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(model.TableModeSolo), "Table mode: solo, pvp")
	cmd.Flags().IntVar(&decks, "decks", 0, "Number of decks (default: server default)")
	cmd.Flags().IntVar(&minBet, "min-bet", 0, "Minimum bet (default: server default)")
	cmd.Flags().BoolVar(&s17, "s17", true, "Dealer hits soft 17")
	cmd.Flags().StringVar(&code, "code", "", "Join code to request (pvp only)")
	cmd.Flags().IntVar(&bots, "bots", 0, "Bot players to seat (solo only)")
	cmd.Flags().StringVar(&strategy, "bot-strategy", model.BotStrategyBasic,
		"Bot strategy: "+strings.Join(model.ValidBotStrategies(), ", "))

	return cmd
}

func newTableJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code>",
		Short: "Join a pvp table by its code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result view.TableView
			if err := client.Post("/api/v1/tables/join", map[string]string{"code": args[0]}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newTableGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <table-id>",
		Short: "Show the table as you see it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result view.TableView
			if err := client.Get(fmt.Sprintf("/api/v1/tables/%s", args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newTableBetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bet <table-id> <amount>",
		Short: "Place your bet for the round",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var amount int
			if _, err := fmt.Sscanf(args[1], "%d", &amount); err != nil || amount <= 0 {
				return fmt.Errorf("amount must be a positive number")
			}
			return submit(args[0], map[string]any{"action": model.ActionBet, "amount": amount})
		},
	}
}

func newHandActionCmd(action model.Action) *cobra.Command {
	var handID string

	cmd := &cobra.Command{
		Use:   string(action) + " <table-id>",
		Short: strings.ToUpper(string(action[:1])) + string(action[1:]) + " on your active hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"action": action}
			if handID != "" {
				req["hand_id"] = handID
			}
			return submit(args[0], req)
		},
	}

	cmd.Flags().StringVar(&handID, "hand", "", "Hand id the action is meant for (rejected if the turn has moved on)")

	return cmd
}

func newTableNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next <table-id>",
		Short: "Start the next round once the current one is settled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(args[0], map[string]any{"action": model.ActionNext})
		},
	}
}

func submit(tableID string, req map[string]any) error {
	var result view.TableView
	if err := client.Post(fmt.Sprintf("/api/v1/tables/%s/actions", tableID), req, &result); err != nil {
		return err
	}

	NewOutput(cfg.Output).Print(result)
	return nil
}
