package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnema/neruai/internal/adapters/discord"
	"github.com/bnema/neruai/internal/domain"
	"github.com/spf13/cobra"
)

const metricsShutdownTimeout = 5 * time.Second

func newServeCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and answer messages until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token := app.cfg.Discord.Token
			if token == "" {
				value, err := app.secretStore.Get(cmd.Context(), domain.SecretDiscordToken)
				if err != nil {
					return fmt.Errorf("discord token: %w", err)
				}
				token = value
			}

			bot, err := discord.New(discord.Options{
				Token:           token,
				GuildID:         app.cfg.Discord.GuildID,
				ExchangeTimeout: app.cfg.Chat.ExchangeTimeout,
				ReactionChance:  app.cfg.Discord.ReactionChance,
			}, app.orchestrator, app.service, app.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if app.cfg.Metrics.Addr != "" {
				shutdown := serveMetrics(ctx, app)
				defer shutdown()
			}

			return bot.Run(ctx)
		},
	}
}

// serveMetrics exposes the exchange metrics until the returned func is called.
func serveMetrics(ctx context.Context, app *app) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.observer.Handler())

	server := &http.Server{
		Addr:              app.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		app.logger.Info().Str("addr", server.Addr).Msg("metrics listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error().Err(err).Msg("metrics server")
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			app.logger.Warn().Err(err).Msg("shutdown metrics server")
		}
	}
}
