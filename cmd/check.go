package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/neruai/internal/domain"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <command...>",
		Short: "Report whether the shell tool would accept a command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := strings.Join(args, " ")
			verdict := domain.CheckCommand(command)
			if verdict.Safe {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "allowed: %s\n", command)
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "rejected: %s\n", verdict.Reason)
			return err
		},
	}
}
