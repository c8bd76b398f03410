package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bnema/neruai/internal/application"
	"github.com/bnema/neruai/internal/domain"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change per-user model settings",
	}

	cmd.AddCommand(
		newConfigShowCmd(app),
		newConfigSetCmd(app),
		newConfigResetCmd(app),
	)
	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show the effective model settings of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.service.EffectiveConfig(cmd.Context(), domain.UserID(args[0]))
			if err != nil {
				return err
			}
			if jsonOutput {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(cfg)
			}
			return printModelConfig(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newConfigSetCmd(app *app) *cobra.Command {
	var model string
	var temperature, topP, frequencyPenalty, presencePenalty float64
	var maxTokens int

	cmd := &cobra.Command{
		Use:   "set <user-id>",
		Short: "Override model settings for a user; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			var patch domain.ModelConfigOverride
			if flags.Changed("model") {
				patch.Model = &model
			}
			if flags.Changed("temperature") {
				patch.Temperature = &temperature
			}
			if flags.Changed("max-tokens") {
				patch.MaxTokens = &maxTokens
			}
			if flags.Changed("top-p") {
				patch.TopP = &topP
			}
			if flags.Changed("frequency-penalty") {
				patch.FrequencyPenalty = &frequencyPenalty
			}
			if flags.Changed("presence-penalty") {
				patch.PresencePenalty = &presencePenalty
			}

			cfg, err := app.service.SetUserConfig(cmd.Context(), application.SetUserConfigCommand{
				UserID: domain.UserID(args[0]),
				Patch:  patch,
			})
			if err != nil {
				return err
			}
			return printModelConfig(cmd.OutOrStdout(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&model, "model", "", "Model identifier, e.g. google/gemini-2.0-flash-001")
	flags.Float64Var(&temperature, "temperature", 0, "Sampling temperature (0-2)")
	flags.IntVar(&maxTokens, "max-tokens", 0, "Maximum completion tokens (1-16384)")
	flags.Float64Var(&topP, "top-p", 0, "Nucleus sampling (0-1)")
	flags.Float64Var(&frequencyPenalty, "frequency-penalty", 0, "Frequency penalty (-2 to 2)")
	flags.Float64Var(&presencePenalty, "presence-penalty", 0, "Presence penalty (-2 to 2)")
	return cmd
}

func newConfigResetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <user-id>",
		Short: "Drop every model override of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.service.ResetUserConfig(cmd.Context(), domain.UserID(args[0])); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "model settings reset for %s\n", args[0])
			return err
		},
	}
}

func printModelConfig(w io.Writer, cfg domain.ModelConfig) error {
	_, err := fmt.Fprintf(w,
		"model: %s\ntemperature: %.2f\nmax_tokens: %d\ntop_p: %.2f\nfrequency_penalty: %.2f\npresence_penalty: %.2f\n",
		cfg.Model, cfg.Temperature, cfg.MaxTokens, cfg.TopP, cfg.FrequencyPenalty, cfg.PresencePenalty,
	)
	return err
}
