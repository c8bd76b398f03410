package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bnema/neruai/internal/domain"
	"github.com/bnema/neruai/internal/ports"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceSetUserConfigMergesPatches(t *testing.T) {
	stores := newTestStores(t)
	service := NewService(stores, domain.DefaultModelConfig(), zerolog.Nop())
	ctx := context.Background()

	model := "openai/gpt-4o-mini"
	_, err := service.SetUserConfig(ctx, SetUserConfigCommand{UserID: "u1", Patch: domain.ModelConfigOverride{Model: &model}})
	require.NoError(t, err)

	temperature := 0.3
	resolved, err := service.SetUserConfig(ctx, SetUserConfigCommand{UserID: "u1", Patch: domain.ModelConfigOverride{Temperature: &temperature}})
	require.NoError(t, err)
	assert.Equal(t, model, resolved.Model)
	assert.Equal(t, 0.3, resolved.Temperature)
	assert.Equal(t, domain.DefaultModelConfig().TopP, resolved.TopP)

	profile, err := service.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, resolved, profile.Config)
	require.NotNil(t, profile.Overrides.Model)
	assert.Nil(t, profile.Overrides.MaxTokens)

	require.NoError(t, service.ResetUserConfig(ctx, "u1"))
	effective, err := service.EffectiveConfig(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultModelConfig(), effective)
}

func TestServiceSetUserConfigRejectsInvalidValues(t *testing.T) {
	service := NewService(newTestStores(t), domain.ModelConfig{}, zerolog.Nop())
	ctx := context.Background()

	bad := "no-slash"
	_, err := service.SetUserConfig(ctx, SetUserConfigCommand{UserID: "u1", Patch: domain.ModelConfigOverride{Model: &bad}})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = service.SetUserConfig(ctx, SetUserConfigCommand{UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	effective, err := service.EffectiveConfig(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultModelConfig(), effective)
}

func TestServiceNotesAndFacts(t *testing.T) {
	stores := newTestStores(t)
	service := NewService(stores, domain.DefaultModelConfig(), zerolog.Nop())
	ctx := context.Background()

	_, err := service.AddSharedContext(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyNote)

	added, err := service.AddSharedContext(ctx, "Server rules: be nice")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = service.AddLearningExample(ctx, "User: sup\nNeru: not much!")
	require.NoError(t, err)
	assert.True(t, added)

	notes, err := service.SharedContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Server rules: be nice"}, notes)

	examples, err := service.LearningExamples(ctx)
	require.NoError(t, err)
	assert.Len(t, examples, 1)

	_, err = stores.Facts.AddFact(ctx, "u1", "likes cats")
	require.NoError(t, err)
	removed, err := service.ForgetFact(ctx, "u1", "LIKES CATS")
	require.NoError(t, err)
	assert.True(t, removed)

	require.NoError(t, stores.History.Append(ctx, "u1", domain.Turn{Role: domain.RoleUser, Text: "hi"}))
	require.NoError(t, service.ClearHistory(ctx, "u1"))
	profile, err := service.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, profile.History)
	assert.Empty(t, profile.Facts)
}

// slowConfigStore widens the window between reading and writing an override.
type slowConfigStore struct {
	ports.ConfigStore
	delay time.Duration
}

func (s slowConfigStore) Override(ctx context.Context, user domain.UserID) (domain.ModelConfigOverride, error) {
	override, err := s.ConfigStore.Override(ctx, user)
	time.Sleep(s.delay)
	return override, err
}

func (s slowConfigStore) MergeOverride(ctx context.Context, user domain.UserID, patch domain.ModelConfigOverride) (domain.ModelConfigOverride, error) {
	time.Sleep(s.delay)
	return s.ConfigStore.MergeOverride(ctx, user, patch)
}

func TestServiceConcurrentConfigPatchesAreBothKept(t *testing.T) {
	stores := newTestStores(t)
	stores.Configs = slowConfigStore{ConfigStore: stores.Configs, delay: 20 * time.Millisecond}
	service := NewService(stores, domain.DefaultModelConfig(), zerolog.Nop())
	ctx := context.Background()

	temperature := 1.5
	topP := 0.5
	patches := []domain.ModelConfigOverride{{Temperature: &temperature}, {TopP: &topP}}

	var wg sync.WaitGroup
	errs := make(chan error, len(patches))
	for _, patch := range patches {
		wg.Add(1)
		go func(patch domain.ModelConfigOverride) {
			defer wg.Done()
			_, err := service.SetUserConfig(ctx, SetUserConfigCommand{UserID: "42", Patch: patch})
			errs <- err
		}(patch)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	profile, err := service.Profile(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, profile.Overrides.Temperature)
	require.NotNil(t, profile.Overrides.TopP)
	assert.Equal(t, 1.5, profile.Config.Temperature)
	assert.Equal(t, 0.5, profile.Config.TopP)
}
