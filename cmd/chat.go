package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/neruai/internal/application"
	"github.com/bnema/neruai/internal/domain"
	"github.com/spf13/cobra"
)

const (
	defaultCLIUser = "cli"
	defaultCLIName = "Operator"
)

func newChatCmd(app *app) *cobra.Command {
	var userID string
	var name string

	cmd := &cobra.Command{
		Use:   "chat [prompt...]",
		Short: "Talk to the persona once, or interactively when no prompt is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			user := domain.UserID(strings.TrimSpace(userID))
			if user == "" {
				return fmt.Errorf("%w: --user must not be empty", domain.ErrInvalidConfig)
			}

			if len(args) > 0 {
				return chatOnce(cmd, app, user, name, strings.Join(args, " "))
			}
			return chatLoop(cmd, app, user, name)
		},
	}

	cmd.Flags().StringVar(&userID, "user", defaultCLIUser, "User id the conversation is stored under")
	cmd.Flags().StringVar(&name, "name", defaultCLIName, "Display name shown to the model")

	return cmd
}

func chatOnce(cmd *cobra.Command, app *app, user domain.UserID, name string, prompt string) error {
	text, err := exchange(cmd.Context(), cmd.ErrOrStderr(), app, user, name, prompt)
	if _, writeErr := fmt.Fprintln(cmd.OutOrStdout(), text); writeErr != nil {
		return writeErr
	}
	return err
}

func chatLoop(cmd *cobra.Command, app *app, user domain.UserID, name string) error {
	persona := app.orchestrator.Persona()
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	for {
		if _, err := fmt.Fprint(out, "> "); err != nil {
			return err
		}
		if !scanner.Scan() {
			if _, err := fmt.Fprintln(out); err != nil {
				return err
			}
			return scanner.Err()
		}

		prompt := strings.TrimSpace(scanner.Text())
		switch prompt {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		text, err := exchange(cmd.Context(), cmd.ErrOrStderr(), app, user, name, prompt)
		if err != nil {
			app.logger.Debug().Err(err).Msg("exchange failed")
		}
		if _, err := fmt.Fprintf(out, "%s: %s\n", persona.Name, text); err != nil {
			return err
		}
	}
}

// exchange returns the text to show the user; on failure that is the
// persona's error message and err is also returned.
func exchange(ctx context.Context, spinnerOut io.Writer, app *app, user domain.UserID, name string, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, app.cfg.Chat.ExchangeTimeout)
	defer cancel()

	var reply application.Reply
	err := runWithSpinner(ctx, spinnerOut, "Thinking...", func(ctx context.Context) error {
		var err error
		reply, err = app.orchestrator.Respond(ctx, application.ExchangeRequest{
			UserID:      user,
			DisplayName: name,
			Prompt:      prompt,
		})
		return err
	})
	if err != nil {
		return app.orchestrator.UserMessage(err), err
	}
	return reply.Text, nil
}
