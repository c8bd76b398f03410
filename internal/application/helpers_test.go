package application

import (
	"path/filepath"
	"testing"

	tomlrepo "github.com/bnema/neruai/internal/adapters/repo/toml"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestStores(t *testing.T) Stores {
	t.Helper()

	dir := t.TempDir()
	cfg := viper.New()
	cfg.Set(tomlrepo.FactsPathKey, filepath.Join(dir, "facts.toml"))
	cfg.Set(tomlrepo.HistoryPathKey, filepath.Join(dir, "history.toml"))
	cfg.Set(tomlrepo.ContextPathKey, filepath.Join(dir, "context.toml"))
	cfg.Set(tomlrepo.LearningPathKey, filepath.Join(dir, "learning.toml"))
	cfg.Set(tomlrepo.ConfigsPathKey, filepath.Join(dir, "configs.toml"))

	logger := zerolog.Nop()
	facts, err := tomlrepo.NewFactRepository(cfg, logger)
	require.NoError(t, err)
	history, err := tomlrepo.NewHistoryRepository(cfg, logger)
	require.NoError(t, err)
	sharedContext, err := tomlrepo.NewContextRepository(cfg, logger)
	require.NoError(t, err)
	learning, err := tomlrepo.NewLearningRepository(cfg, logger)
	require.NoError(t, err)
	configs, err := tomlrepo.NewConfigRepository(cfg, logger)
	require.NoError(t, err)

	return Stores{Facts: facts, History: history, Context: sharedContext, Learning: learning, Configs: configs}
}

func mockAnyContext() interface{} {
	return mock.Anything
}
