package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	openaichat "github.com/bnema/neruai/internal/adapters/llm/openaichat"
	"github.com/bnema/neruai/internal/adapters/metrics"
	personaloader "github.com/bnema/neruai/internal/adapters/persona"
	profileadapter "github.com/bnema/neruai/internal/adapters/render/profile"
	tomlrepo "github.com/bnema/neruai/internal/adapters/repo/toml"
	"github.com/bnema/neruai/internal/adapters/search/serpapi"
	chainstore "github.com/bnema/neruai/internal/adapters/secrets/chain"
	"github.com/bnema/neruai/internal/adapters/shell"
	"github.com/bnema/neruai/internal/application"
	"github.com/bnema/neruai/internal/config"
	"github.com/bnema/neruai/internal/domain"
	"github.com/bnema/neruai/internal/logging"
	"github.com/bnema/neruai/internal/ports"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type app struct {
	cfg             config.Config
	logger          zerolog.Logger
	service         *application.Service
	orchestrator    *application.Orchestrator
	observer        *metrics.Observer
	secretStore     ports.SecretStore
	profileRenderer func(application.Profile, profileadapter.RenderOptions) (string, error)
}

func wireApp() (*app, error) {
	v, err := config.New(os.Getenv("NERU_CONFIG"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	stores, err := wireStores(v, logger)
	if err != nil {
		return nil, err
	}

	secretStore, err := chainstore.NewDefault(filepath.Join(cfg.DataDir, "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	persona, err := personaloader.Load(cfg.Persona.Path)
	if err != nil {
		return nil, fmt.Errorf("wire persona: %w", err)
	}
	if missing := personaloader.MissingPlaceholders(persona.Template); len(missing) > 0 {
		logger.Warn().Strs("placeholders", missing).Msg("persona template ignores some context")
	}

	observer := metrics.NewObserver()
	runner := shell.NewRunner(shell.Options{
		Timeout:     cfg.Tools.CommandTimeout,
		OutputLimit: cfg.Tools.OutputLimit,
	}, logger.With().Str("component", "shell").Logger())
	dispatcher := application.NewDispatcher(runner, stores.Facts, observer, logger.With().Str("component", "dispatcher").Logger())

	model, err := wireChatModel(cfg, secretStore, logger)
	if err != nil {
		return nil, err
	}
	searcher, err := wireSearcher(cfg, secretStore, logger)
	if err != nil {
		return nil, err
	}

	orchestrator := application.NewOrchestrator(model, dispatcher, stores, application.OrchestratorOptions{
		Persona:         persona,
		Defaults:        cfg.Defaults,
		MaxAnswerLength: cfg.Chat.MaxAnswerLength,
		RateLimitPause:  cfg.AI.RateLimitPause,
		Searcher:        searcher,
	}, observer, logger.With().Str("component", "orchestrator").Logger())

	return &app{
		cfg:             cfg,
		logger:          logger,
		service:         application.NewService(stores, cfg.Defaults, logger.With().Str("component", "service").Logger()),
		orchestrator:    orchestrator,
		observer:        observer,
		secretStore:     secretStore,
		profileRenderer: profileadapter.Render,
	}, nil
}

func wireStores(v *viper.Viper, logger zerolog.Logger) (application.Stores, error) {
	facts, err := tomlrepo.NewFactRepository(v, logger)
	if err != nil {
		return application.Stores{}, fmt.Errorf("wire fact repository: %w", err)
	}
	history, err := tomlrepo.NewHistoryRepository(v, logger)
	if err != nil {
		return application.Stores{}, fmt.Errorf("wire history repository: %w", err)
	}
	sharedContext, err := tomlrepo.NewContextRepository(v, logger)
	if err != nil {
		return application.Stores{}, fmt.Errorf("wire context repository: %w", err)
	}
	learning, err := tomlrepo.NewLearningRepository(v, logger)
	if err != nil {
		return application.Stores{}, fmt.Errorf("wire learning repository: %w", err)
	}
	configs, err := tomlrepo.NewConfigRepository(v, logger)
	if err != nil {
		return application.Stores{}, fmt.Errorf("wire config repository: %w", err)
	}

	return application.Stores{
		Facts:    facts,
		History:  history,
		Context:  sharedContext,
		Learning: learning,
		Configs:  configs,
	}, nil
}

// wireChatModel returns a nil ChatModel when no API key is configured; the
// orchestrator then answers every exchange with the missing-credentials text.
func wireChatModel(cfg config.Config, secrets ports.SecretStore, logger zerolog.Logger) (ports.ChatModel, error) {
	apiKey := cfg.AI.APIKey
	if apiKey == "" {
		value, err := secrets.Get(context.Background(), domain.SecretAIAPIKey)
		if err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
			logger.Warn().Err(err).Msg("look up ai api key")
		}
		apiKey = value
	}
	if apiKey == "" {
		logger.Warn().Msg("ai api key not configured; replies will use the missing-credentials text")
		return nil, nil
	}

	client, err := openaichat.New(openaichat.Config{
		APIKey:  apiKey,
		BaseURL: cfg.AI.BaseURL,
		Referer: cfg.AI.Referer,
		Title:   cfg.AI.Title,
		Timeout: cfg.AI.Timeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("wire chat model: %w", err)
	}
	return client, nil
}

// wireSearcher returns nil when no SerpApi key is available; search requests
// then answer with the disabled text.
func wireSearcher(cfg config.Config, secrets ports.SecretStore, logger zerolog.Logger) (ports.WebSearcher, error) {
	apiKey := cfg.Search.APIKey
	if apiKey == "" {
		value, err := secrets.Get(context.Background(), domain.SecretSerpAPIKey)
		if err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
			logger.Warn().Err(err).Msg("look up serp api key")
		}
		apiKey = value
	}
	if apiKey == "" {
		logger.Info().Msg("serp api key not configured; web search disabled")
		return nil, nil
	}

	client, err := serpapi.New(serpapi.Config{
		APIKey:  apiKey,
		BaseURL: cfg.Search.BaseURL,
		Timeout: cfg.Search.Timeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("wire searcher: %w", err)
	}
	return client, nil
}
