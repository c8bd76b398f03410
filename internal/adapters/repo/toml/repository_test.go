package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bnema/neruai/internal/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFactRepo(t *testing.T, path string) *FactRepository {
	t.Helper()

	cfg := viper.New()
	cfg.Set(FactsPathKey, path)
	repo, err := NewFactRepository(cfg, zerolog.Nop())
	require.NoError(t, err)
	return repo
}

func TestFactRepositoryDeduplicatesPerUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "facts.toml")
	repo := newFactRepo(t, path)

	added, err := repo.AddFact(ctx, "u1", "Likes pizza")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddFact(ctx, "u1", "LIKES PIZZA")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = repo.AddFact(ctx, "u2", "Has a cat")
	require.NoError(t, err)

	facts, err := repo.Facts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Likes pizza"}, facts)

	facts, err = repo.Facts(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"Has a cat"}, facts)

	reloaded := newFactRepo(t, path)
	users, err := reloaded.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.UserID{"u1", "u2"}, users)

	removed, err := reloaded.ForgetFact(ctx, "u1", "likes pizza")
	require.NoError(t, err)
	assert.True(t, removed)

	facts, err = newFactRepo(t, path).Facts(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestFactRepositoryReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newFactRepo(t, filepath.Join(t.TempDir(), "facts.toml"))
	_, err := repo.AddFact(ctx, "u1", "original")
	require.NoError(t, err)

	facts, err := repo.Facts(ctx, "u1")
	require.NoError(t, err)
	facts[0] = "mutated"

	facts, err = repo.Facts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"original"}, facts)
}

func TestRepositoryCreatesMissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "facts.toml")
	newFactRepo(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(documentFileMode), info.Mode().Perm())
}

func TestRepositoryTreatsCorruptFileAsEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "facts.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is = = not toml ["), 0o600))

	repo := newFactRepo(t, path)
	facts, err := repo.Facts(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, facts)

	_, err = repo.AddFact(ctx, "u1", "recovered")
	require.NoError(t, err)

	facts, err = newFactRepo(t, path).Facts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"recovered"}, facts)
}

func TestRepositoryIgnoresFutureSchemaVersion(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "facts.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 9\n\n[[users]]\nid = \"u1\"\nfacts = [\"x\"]\n"), 0o600))

	facts, err := newFactRepo(t, path).Facts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestRepositoryPersistFailureKeepsInMemoryValue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file, not a directory"), 0o600))

	repo := newFactRepo(t, filepath.Join(blocker, "facts.toml"))

	added, err := repo.AddFact(ctx, "u1", "survives in memory")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotPersisted))
	assert.True(t, added)

	facts, err := repo.Facts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"survives in memory"}, facts)

	require.NoError(t, os.Remove(blocker))
	require.NoError(t, os.Mkdir(blocker, 0o700))

	_, err = repo.AddFact(ctx, "u1", "second")
	require.NoError(t, err)

	facts, err = newFactRepo(t, filepath.Join(blocker, "facts.toml")).Facts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"survives in memory", "second"}, facts)
}

func TestFactRepositoryConcurrentWritesAreNotLost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "facts.toml")
	repo := newFactRepo(t, path)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.AddFact(ctx, "u1", fmt.Sprintf("fact %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	facts, err := newFactRepo(t, path).Facts(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, facts, 40)
}

func TestHistoryRepositoryKeepsMostRecentTurns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := viper.New()
	cfg.Set(HistoryPathKey, filepath.Join(t.TempDir(), "history.toml"))

	repo, err := NewHistoryRepository(cfg, zerolog.Nop())
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		require.NoError(t, repo.Append(ctx, "u1", domain.Turn{Role: role, Text: fmt.Sprintf("turn %d", i)}))
	}
	require.NoError(t, repo.Append(ctx, "u2", domain.Turn{Role: domain.RoleUser, Text: "other user"}))

	reloaded, err := NewHistoryRepository(cfg, zerolog.Nop())
	require.NoError(t, err)

	turns, err := reloaded.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, turns, domain.MaxHistoryTurns)
	assert.Equal(t, "turn 10", turns[0].Text)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, "turn 29", turns[len(turns)-1].Text)

	other, err := reloaded.History(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, other, 1)

	require.NoError(t, reloaded.Clear(ctx, "u1"))
	turns, err = reloaded.History(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestNoteRepositoriesAreIndependentAndDeduplicated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	cfg := viper.New()
	cfg.Set(ContextPathKey, filepath.Join(dir, "context.toml"))
	cfg.Set(LearningPathKey, filepath.Join(dir, "learning.toml"))

	contextRepo, err := NewContextRepository(cfg, zerolog.Nop())
	require.NoError(t, err)
	learningRepo, err := NewLearningRepository(cfg, zerolog.Nop())
	require.NoError(t, err)

	added, err := contextRepo.Add(ctx, "The server runs on a Raspberry Pi.")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = contextRepo.Add(ctx, "the server runs on a raspberry pi.")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = learningRepo.Add(ctx, "User: hi\nNeru: hey hey!")
	require.NoError(t, err)

	reloaded, err := NewContextRepository(cfg, zerolog.Nop())
	require.NoError(t, err)
	notes, err := reloaded.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"The server runs on a Raspberry Pi."}, notes)

	reloadedLearning, err := NewLearningRepository(cfg, zerolog.Nop())
	require.NoError(t, err)
	examples, err := reloadedLearning.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"User: hi\nNeru: hey hey!"}, examples)
}

func TestConfigRepositoryRoundTripKeepsOnlySetFields(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "configs.toml")
	cfg := viper.New()
	cfg.Set(ConfigsPathKey, path)

	repo, err := NewConfigRepository(cfg, zerolog.Nop())
	require.NoError(t, err)

	model := "openai/gpt-4o-mini"
	tokens := 700
	require.NoError(t, repo.SaveOverride(ctx, "u1", domain.ModelConfigOverride{Model: &model, MaxTokens: &tokens}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "temperature")

	reloaded, err := NewConfigRepository(cfg, zerolog.Nop())
	require.NoError(t, err)
	override, err := reloaded.Override(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, override.Model)
	require.NotNil(t, override.MaxTokens)
	assert.Equal(t, model, *override.Model)
	assert.Equal(t, 700, *override.MaxTokens)
	assert.Nil(t, override.Temperature)

	require.NoError(t, reloaded.ResetOverride(ctx, "u1"))
	override, err = reloaded.Override(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, override.IsEmpty())
}

func TestConfigRepositoryConcurrentMergesKeepEveryField(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "configs.toml")
	cfg := viper.New()
	cfg.Set(ConfigsPathKey, path)

	repo, err := NewConfigRepository(cfg, zerolog.Nop())
	require.NoError(t, err)

	model := "openai/gpt-4o-mini"
	temperature := 1.5
	tokens := 900
	topP := 0.5
	patches := []domain.ModelConfigOverride{
		{Model: &model},
		{Temperature: &temperature},
		{MaxTokens: &tokens},
		{TopP: &topP},
	}

	var wg sync.WaitGroup
	for _, patch := range patches {
		wg.Add(1)
		go func(patch domain.ModelConfigOverride) {
			defer wg.Done()
			_, err := repo.MergeOverride(ctx, "42", patch)
			assert.NoError(t, err)
		}(patch)
	}
	wg.Wait()

	reloaded, err := NewConfigRepository(cfg, zerolog.Nop())
	require.NoError(t, err)
	override, err := reloaded.Override(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, override.Model)
	require.NotNil(t, override.Temperature)
	require.NotNil(t, override.MaxTokens)
	require.NotNil(t, override.TopP)
	assert.Nil(t, override.PresencePenalty)

	merged, err := repo.MergeOverride(ctx, "42", domain.ModelConfigOverride{})
	require.NoError(t, err)
	assert.Equal(t, 900, *merged.MaxTokens)
}

func TestRepositoryHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	repo := newFactRepo(t, filepath.Join(t.TempDir(), "facts.toml"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.AddFact(ctx, "u1", "never stored")
	assert.ErrorIs(t, err, context.Canceled)
}
