package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type noteCommands struct {
	use   string
	short string
	kind  string
	add   func(context.Context, string) (bool, error)
	list  func(context.Context) ([]string, error)
}

func newContextCmd(app *app) *cobra.Command {
	return newNotesCmd(noteCommands{
		use:   "context",
		short: "Manage shared context every exchange sees",
		kind:  "context",
		add:   app.service.AddSharedContext,
		list:  app.service.SharedContext,
	})
}

func newLearningCmd(app *app) *cobra.Command {
	return newNotesCmd(noteCommands{
		use:   "learning",
		short: "Manage learning examples every exchange sees",
		kind:  "learning example",
		add:   app.service.AddLearningExample,
		list:  app.service.LearningExamples,
	})
}

func newNotesCmd(nc noteCommands) *cobra.Command {
	cmd := &cobra.Command{
		Use:   nc.use,
		Short: nc.short,
	}

	addCmd := &cobra.Command{
		Use:   "add <text...>",
		Short: fmt.Sprintf("Add a %s entry", nc.kind),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			added, err := nc.add(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			message := fmt.Sprintf("%s added", nc.kind)
			if !added {
				message = fmt.Sprintf("%s already present", nc.kind)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), message)
			return err
		},
	}

	var jsonOutput bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s entries", nc.kind),
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := nc.list(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				if entries == nil {
					entries = []string{}
				}
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(entries)
			}

			if len(entries) == 0 {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "no %s entries\n", nc.kind)
				return err
			}
			for i, entry := range entries {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, entry); err != nil {
					return err
				}
			}
			return nil
		},
	}
	listCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	cmd.AddCommand(addCmd, listCmd)
	return cmd
}
