package toml

import (
	"context"
	"sync"

	"github.com/bnema/neruai/internal/domain"
	"github.com/bnema/neruai/internal/ports"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	ConfigsPathKey = "configs.path"
	configsFile    = "configs.toml"
)

type ConfigRepository struct {
	doc       document
	mu        sync.RWMutex
	overrides map[domain.UserID]domain.ModelConfigOverride
}

var _ ports.ConfigStore = (*ConfigRepository)(nil)

func NewConfigRepository(cfg *viper.Viper, logger zerolog.Logger) (*ConfigRepository, error) {
	doc, err := newDocument(cfg, ConfigsPathKey, configsFile, "configs", logger)
	if err != nil {
		return nil, err
	}

	file := loadDocument[configsSchema](doc)
	overrides := make(map[domain.UserID]domain.ModelConfigOverride, len(file.Users))
	for _, entry := range file.Users {
		override := fromConfigSchema(entry)
		if !override.IsEmpty() {
			overrides[domain.UserID(entry.ID)] = override
		}
	}

	return &ConfigRepository{doc: doc, overrides: overrides}, nil
}

func (r *ConfigRepository) Override(ctx context.Context, user domain.UserID) (domain.ModelConfigOverride, error) {
	if err := ctx.Err(); err != nil {
		return domain.ModelConfigOverride{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneOverride(r.overrides[user]), nil
}

func (r *ConfigRepository) SaveOverride(ctx context.Context, user domain.UserID, override domain.ModelConfigOverride) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if override.IsEmpty() {
		delete(r.overrides, user)
	} else {
		r.overrides[user] = cloneOverride(override)
	}

	return r.doc.persist(r.schemaLocked())
}

func (r *ConfigRepository) MergeOverride(ctx context.Context, user domain.UserID, patch domain.ModelConfigOverride) (domain.ModelConfigOverride, error) {
	if err := ctx.Err(); err != nil {
		return domain.ModelConfigOverride{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	merged := r.overrides[user].Merge(patch)
	if merged.IsEmpty() {
		delete(r.overrides, user)
	} else {
		r.overrides[user] = cloneOverride(merged)
	}

	return cloneOverride(merged), r.doc.persist(r.schemaLocked())
}

func (r *ConfigRepository) ResetOverride(ctx context.Context, user domain.UserID) error {
	return r.SaveOverride(ctx, user, domain.ModelConfigOverride{})
}

func (r *ConfigRepository) schemaLocked() *configsSchema {
	file := &configsSchema{Version: currentSchemaVersion, Users: make([]userConfigSchema, 0, len(r.overrides))}
	for _, user := range sortedKeys(r.overrides) {
		file.Users = append(file.Users, toConfigSchema(user, r.overrides[user]))
	}
	return file
}

func toConfigSchema(user domain.UserID, override domain.ModelConfigOverride) userConfigSchema {
	return userConfigSchema{
		ID:               string(user),
		Model:            clonePtr(override.Model),
		Temperature:      clonePtr(override.Temperature),
		MaxTokens:        clonePtr(override.MaxTokens),
		TopP:             clonePtr(override.TopP),
		FrequencyPenalty: clonePtr(override.FrequencyPenalty),
		PresencePenalty:  clonePtr(override.PresencePenalty),
	}
}

func fromConfigSchema(entry userConfigSchema) domain.ModelConfigOverride {
	return domain.ModelConfigOverride{
		Model:            clonePtr(entry.Model),
		Temperature:      clonePtr(entry.Temperature),
		MaxTokens:        clonePtr(entry.MaxTokens),
		TopP:             clonePtr(entry.TopP),
		FrequencyPenalty: clonePtr(entry.FrequencyPenalty),
		PresencePenalty:  clonePtr(entry.PresencePenalty),
	}
}

func cloneOverride(override domain.ModelConfigOverride) domain.ModelConfigOverride {
	return fromConfigSchema(toConfigSchema("", override))
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
