package cmd

import (
	"bytes"
	"testing"

	"github.com/bnema/neruai/internal/config"
	"github.com/bnema/neruai/internal/domain"
	portmocks "github.com/bnema/neruai/internal/ports/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWireChatModelWarnsWhenAPIKeyMissing(t *testing.T) {
	t.Parallel()

	secrets := portmocks.NewMockSecretStore(t)
	secrets.EXPECT().Get(mock.Anything, domain.SecretAIAPIKey).Return("", domain.ErrSecretNotFound).Once()

	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.InfoLevel)

	model, err := wireChatModel(config.Config{}, secrets, logger)
	require.NoError(t, err)
	assert.Nil(t, model)
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), "ai api key not configured")
	assert.Equal(t, 1, bytes.Count(logs.Bytes(), []byte("\n")))
}

func TestWireChatModelUsesSecretStoreKey(t *testing.T) {
	t.Parallel()

	secrets := portmocks.NewMockSecretStore(t)
	secrets.EXPECT().Get(mock.Anything, domain.SecretAIAPIKey).Return("sk-from-store", nil).Once()

	var logs bytes.Buffer
	model, err := wireChatModel(config.Config{}, secrets, zerolog.New(&logs).Level(zerolog.InfoLevel))
	require.NoError(t, err)
	assert.NotNil(t, model)
	assert.NotContains(t, logs.String(), "not configured")
}

func TestWireChatModelPrefersConfiguredKey(t *testing.T) {
	t.Parallel()

	secrets := portmocks.NewMockSecretStore(t)

	model, err := wireChatModel(config.Config{AI: config.AIConfig{APIKey: "sk-config"}}, secrets, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, model)
	secrets.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestWireSearcherDisabledWithoutKey(t *testing.T) {
	t.Parallel()

	secrets := portmocks.NewMockSecretStore(t)
	secrets.EXPECT().Get(mock.Anything, domain.SecretSerpAPIKey).Return("", domain.ErrSecretNotFound).Once()

	var logs bytes.Buffer
	searcher, err := wireSearcher(config.Config{}, secrets, zerolog.New(&logs).Level(zerolog.InfoLevel))
	require.NoError(t, err)
	assert.Nil(t, searcher)
	assert.Contains(t, logs.String(), "web search disabled")
}

func TestWireSearcherUsesSecretStoreKey(t *testing.T) {
	t.Parallel()

	secrets := portmocks.NewMockSecretStore(t)
	secrets.EXPECT().Get(mock.Anything, domain.SecretSerpAPIKey).Return("serp-from-store", nil).Once()

	searcher, err := wireSearcher(config.Config{}, secrets, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, searcher)
}
