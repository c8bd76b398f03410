package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/neruai/internal/domain"
	"github.com/spf13/viper"
)

const (
	DataDirName = ".neruai"
	FileName    = "config.toml"
	EnvPrefix   = "NERU"

	DefaultBaseURL         = "https://openrouter.ai/api/v1"
	DefaultModelTimeout    = 60 * time.Second
	DefaultRateLimitPause  = 2 * time.Second
	DefaultCommandTimeout  = 10 * time.Second
	DefaultOutputLimit     = 1500
	DefaultExchangeTimeout = 2 * time.Minute
	DefaultSearchBaseURL   = "https://serpapi.com"
	DefaultSearchTimeout   = 15 * time.Second
	DefaultReactionChance  = 0.05
)

type Config struct {
	DataDir  string
	AI       AIConfig
	Defaults domain.ModelConfig
	Tools    ToolsConfig
	Chat     ChatConfig
	Persona  PersonaConfig
	Discord  DiscordConfig
	Search   SearchConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

type AIConfig struct {
	APIKey         string
	BaseURL        string
	Referer        string
	Title          string
	Timeout        time.Duration
	RateLimitPause time.Duration
}

type ToolsConfig struct {
	CommandTimeout time.Duration
	OutputLimit    int
}

type ChatConfig struct {
	MaxAnswerLength int
	ExchangeTimeout time.Duration
}

type PersonaConfig struct {
	Path string
}

type DiscordConfig struct {
	Token   string
	GuildID string
	// ReactionChance is the probability of reacting to an untriggered message.
	ReactionChance float64
}

type SearchConfig struct {
	// APIKey is the SerpApi key; empty disables web search.
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type MetricsConfig struct {
	// Addr is the listen address of the metrics endpoint; empty disables it.
	Addr string
}

type LogConfig struct {
	Level  string
	Format string
}

// Store path keys shared with the TOML repositories.
var storeFiles = map[string]string{
	"facts.path":    "facts.toml",
	"history.path":  "history.toml",
	"context.path":  "context.toml",
	"learning.path": "learning.toml",
	"configs.path":  "configs.toml",
}

// legacyEnv lists the older environment names still honored after NERU_*.
var legacyEnv = map[string]string{
	"ai.api_key":     "AI_API_KEY",
	"discord.token":  "DISCORD_TOKEN",
	"search.api_key": "SERP_API_KEY",
	"facts.path":     "BOT_MEMORY_PATH",
	"history.path":   "BOT_HISTORY_PATH",
	"context.path":   "BOT_MANUAL_CONTEXT_PATH",
	"learning.path":  "BOT_DYNAMIC_LEARNING_PATH",
}

// New builds the viper instance: defaults, then the TOML config file, then
// NERU_* and legacy environment variables. An empty configFile means
// <data dir>/config.toml; a missing file is not an error.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+envKey(key), legacy); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	if err := v.BindEnv("data_dir"); err != nil {
		return nil, fmt.Errorf("bind data_dir: %w", err)
	}

	setDefaults(v)

	dataDir, err := resolveDataDir(v.GetString("data_dir"))
	if err != nil {
		return nil, err
	}
	v.SetDefault("data_dir", dataDir)

	if configFile == "" {
		configFile = filepath.Join(dataDir, FileName)
	}
	v.SetConfigFile(configFile)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidConfig, configFile, err)
	}

	dataDir, err = resolveDataDir(v.GetString("data_dir"))
	if err != nil {
		return nil, err
	}
	for key, file := range storeFiles {
		v.SetDefault(key, filepath.Join(dataDir, file))
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	defaults := domain.DefaultModelConfig()

	v.SetDefault("ai.base_url", DefaultBaseURL)
	v.SetDefault("ai.timeout", DefaultModelTimeout)
	v.SetDefault("ai.rate_limit_pause", DefaultRateLimitPause)
	v.SetDefault("ai.title", "Neru")
	v.SetDefault("defaults.model", defaults.Model)
	v.SetDefault("defaults.temperature", defaults.Temperature)
	v.SetDefault("defaults.max_tokens", defaults.MaxTokens)
	v.SetDefault("defaults.top_p", defaults.TopP)
	v.SetDefault("defaults.frequency_penalty", defaults.FrequencyPenalty)
	v.SetDefault("defaults.presence_penalty", defaults.PresencePenalty)
	v.SetDefault("tools.command_timeout", DefaultCommandTimeout)
	v.SetDefault("tools.output_limit", DefaultOutputLimit)
	v.SetDefault("chat.max_answer_length", domain.MaxMessageLength)
	v.SetDefault("chat.exchange_timeout", DefaultExchangeTimeout)
	v.SetDefault("discord.reaction_chance", DefaultReactionChance)
	v.SetDefault("search.base_url", DefaultSearchBaseURL)
	v.SetDefault("search.timeout", DefaultSearchTimeout)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads a typed Config out of v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		DataDir: v.GetString("data_dir"),
		AI: AIConfig{
			APIKey:         strings.TrimSpace(v.GetString("ai.api_key")),
			BaseURL:        v.GetString("ai.base_url"),
			Referer:        v.GetString("ai.referer"),
			Title:          v.GetString("ai.title"),
			Timeout:        v.GetDuration("ai.timeout"),
			RateLimitPause: v.GetDuration("ai.rate_limit_pause"),
		},
		Defaults: domain.ModelConfig{
			Model:            v.GetString("defaults.model"),
			Temperature:      v.GetFloat64("defaults.temperature"),
			MaxTokens:        v.GetInt("defaults.max_tokens"),
			TopP:             v.GetFloat64("defaults.top_p"),
			FrequencyPenalty: v.GetFloat64("defaults.frequency_penalty"),
			PresencePenalty:  v.GetFloat64("defaults.presence_penalty"),
		},
		Tools: ToolsConfig{
			CommandTimeout: v.GetDuration("tools.command_timeout"),
			OutputLimit:    v.GetInt("tools.output_limit"),
		},
		Chat: ChatConfig{
			MaxAnswerLength: v.GetInt("chat.max_answer_length"),
			ExchangeTimeout: v.GetDuration("chat.exchange_timeout"),
		},
		Persona: PersonaConfig{Path: v.GetString("persona.path")},
		Discord: DiscordConfig{
			Token:          strings.TrimSpace(v.GetString("discord.token")),
			GuildID:        v.GetString("discord.guild_id"),
			ReactionChance: v.GetFloat64("discord.reaction_chance"),
		},
		Search: SearchConfig{
			APIKey:  strings.TrimSpace(v.GetString("search.api_key")),
			BaseURL: v.GetString("search.base_url"),
			Timeout: v.GetDuration("search.timeout"),
		},
		Metrics: MetricsConfig{Addr: v.GetString("metrics.addr")},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	d := c.Defaults
	defaults := domain.ModelConfigOverride{
		Model:            &d.Model,
		Temperature:      &d.Temperature,
		MaxTokens:        &d.MaxTokens,
		TopP:             &d.TopP,
		FrequencyPenalty: &d.FrequencyPenalty,
		PresencePenalty:  &d.PresencePenalty,
	}
	if err := defaults.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("defaults: %w", err))
	}
	if c.AI.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: ai.timeout must be positive", domain.ErrInvalidConfig))
	}
	if c.Tools.CommandTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: tools.command_timeout must be positive", domain.ErrInvalidConfig))
	}
	if c.Tools.OutputLimit <= len(domain.OutputTruncatedMarker) {
		errs = append(errs, fmt.Errorf("%w: tools.output_limit must exceed %d", domain.ErrInvalidConfig, len(domain.OutputTruncatedMarker)))
	}
	if c.Chat.MaxAnswerLength <= 0 || c.Chat.MaxAnswerLength > domain.MaxMessageLength {
		errs = append(errs, fmt.Errorf("%w: chat.max_answer_length must be within 1..%d", domain.ErrInvalidConfig, domain.MaxMessageLength))
	}
	if c.Discord.ReactionChance < 0 || c.Discord.ReactionChance > 1 {
		errs = append(errs, fmt.Errorf("%w: discord.reaction_chance must be within 0..1", domain.ErrInvalidConfig))
	}
	if c.Search.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: search.timeout must be positive", domain.ErrInvalidConfig))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: log.format must be console or json", domain.ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

func resolveDataDir(dir string) (string, error) {
	if dir != "" {
		return filepath.Abs(dir)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DataDirName), nil
}

func envKey(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
