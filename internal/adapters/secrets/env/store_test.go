package env

import (
	"context"
	"testing"

	"github.com/bnema/neruai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(values map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		value, ok := values[name]
		return value, ok
	}
}

func TestStoreGetPrefersFirstVariable(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)
	store.lookup = fakeEnv(map[string]string{"NERU_AI_API_KEY": "new", "AI_API_KEY": "legacy"})

	value, err := store.Get(context.Background(), domain.SecretAIAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "new", value)
}

func TestStoreGetFallsBackToLegacyVariable(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)
	store.lookup = fakeEnv(map[string]string{"NERU_DISCORD_TOKEN": "  ", "DISCORD_TOKEN": " tok \n"})

	value, err := store.Get(context.Background(), domain.SecretDiscordToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", value)
}

func TestStoreGetMissing(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)
	store.lookup = fakeEnv(nil)

	_, err := store.Get(context.Background(), domain.SecretAIAPIKey)
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)

	_, err = store.Get(context.Background(), "neruai/unknown")
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreIsReadOnly(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)
	assert.ErrorIs(t, store.Put(context.Background(), domain.SecretAIAPIKey, "x"), domain.ErrSecretReadOnly)
	assert.ErrorIs(t, store.Delete(context.Background(), domain.SecretAIAPIKey), domain.ErrSecretReadOnly)
}
