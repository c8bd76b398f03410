package cmd

import (
	"fmt"

	"github.com/bnema/neruai/internal/domain"
	"github.com/spf13/cobra"
)

var secretKeys = map[string]string{
	"ai-api-key":    domain.SecretAIAPIKey,
	"discord-token": domain.SecretDiscordToken,
	"serp-api-key":  domain.SecretSerpAPIKey,
}

func newSecretCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Store credentials in the secret backends",
	}

	cmd.AddCommand(newSecretSetCmd(app), newSecretDeleteCmd(app))
	return cmd
}

func newSecretSetCmd(app *app) *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:       "set <ai-api-key|discord-token|serp-api-key>",
		Short:     "Store a credential",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"ai-api-key", "discord-token", "serp-api-key"},
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := secretKey(args[0])
			if err != nil {
				return err
			}
			if err := app.secretStore.Put(cmd.Context(), key, value); err != nil {
				return fmt.Errorf("store %s: %w", args[0], err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s stored\n", args[0])
			return err
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "Secret value")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func newSecretDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:       "delete <ai-api-key|discord-token|serp-api-key>",
		Short:     "Remove a stored credential",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"ai-api-key", "discord-token", "serp-api-key"},
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := secretKey(args[0])
			if err != nil {
				return err
			}
			if err := app.secretStore.Delete(cmd.Context(), key); err != nil {
				return fmt.Errorf("delete %s: %w", args[0], err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s deleted\n", args[0])
			return err
		},
	}
}

func secretKey(name string) (string, error) {
	key, ok := secretKeys[name]
	if !ok {
		return "", fmt.Errorf("unknown secret %q, want ai-api-key, discord-token or serp-api-key", name)
	}
	return key, nil
}
