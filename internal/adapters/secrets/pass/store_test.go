package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/neruai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetReturnsFirstLine(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(_ context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"show", domain.SecretAIAPIKey}, args)
			assert.Empty(t, input)
			return "sk-or-123\r\nurl: openrouter.ai\n", "", nil
		},
	}

	value, err := store.Get(context.Background(), domain.SecretAIAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-or-123", value)
}

func TestStorePutUsesMultilineInsert(t *testing.T) {
	t.Parallel()

	called := false
	store := &Store{
		run: func(_ context.Context, input string, args ...string) (string, string, error) {
			called = true
			assert.Equal(t, []string{"insert", "--multiline", "--force", domain.SecretDiscordToken}, args)
			assert.Equal(t, "tok\n", input)
			return "", "", nil
		},
	}

	require.NoError(t, store.Put(context.Background(), domain.SecretDiscordToken, "tok"))
	assert.True(t, called)
}

func TestStoreMapsMissingEntry(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(context.Context, string, ...string) (string, string, error) {
			return "", "Error: neruai/ai_api_key is not in the password store.", errors.New("exit status 1")
		},
	}

	_, err := store.Get(context.Background(), domain.SecretAIAPIKey)
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)

	assert.NoError(t, store.Delete(context.Background(), domain.SecretAIAPIKey))
}

func TestStoreGetKeepsStderrInError(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(context.Context, string, ...string) (string, string, error) {
			return "", "gpg: decryption failed: No secret key", errors.New("exit status 2")
		},
	}

	_, err := store.Get(context.Background(), domain.SecretAIAPIKey)
	require.Error(t, err)
	assert.ErrorContains(t, err, "pass get")
	assert.ErrorContains(t, err, "decryption failed")
	assert.NotErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(context.Context, string, ...string) (string, string, error) {
			t.Fatal("pass must not run with a canceled context")
			return "", "", nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, domain.SecretAIAPIKey)
	assert.ErrorIs(t, err, context.Canceled)
}
