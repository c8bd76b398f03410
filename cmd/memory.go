package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	profileadapter "github.com/bnema/neruai/internal/adapters/render/profile"
	"github.com/bnema/neruai/internal/domain"
	"github.com/spf13/cobra"
)

const (
	defaultShownTurns = 10
	shownTurnWidth    = 120
)

func newMemoryCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect and edit what the persona remembers about a user",
	}

	cmd.AddCommand(
		newMemoryShowCmd(app),
		newMemoryForgetCmd(app),
		newMemoryClearCmd(app),
	)
	return cmd
}

func newMemoryShowCmd(app *app) *cobra.Command {
	var jsonOutput bool
	var turns int

	cmd := &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show facts, history and model settings for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := app.service.Profile(cmd.Context(), domain.UserID(args[0]))
			if err != nil {
				return err
			}

			if jsonOutput {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(profile)
			}

			rendered, err := app.profileRenderer(profile, profileadapter.RenderOptions{
				HistoryTurns: turns,
				TurnWidth:    shownTurnWidth,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().IntVar(&turns, "turns", defaultShownTurns, "Number of recent history turns to show")
	return cmd
}

func newMemoryForgetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <user-id> <fact...>",
		Short: "Remove a remembered fact (case-insensitive match)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := app.service.ForgetFact(cmd.Context(), domain.UserID(args[0]), strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			message := "fact forgotten"
			if !removed {
				message = "no matching fact"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), message)
			return err
		},
	}
}

func newMemoryClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <user-id>",
		Short: "Clear the conversation history of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.service.ClearHistory(cmd.Context(), domain.UserID(args[0])); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "history cleared for %s\n", args[0])
			return err
		},
	}
}
