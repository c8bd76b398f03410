package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/neruai/internal/domain"
	"github.com/rs/zerolog"
)

var ErrEmptyNote = errors.New("note text is empty")

// Service holds the operator-facing operations on the stores.
type Service struct {
	stores   Stores
	defaults domain.ModelConfig
	logger   zerolog.Logger
}

func NewService(stores Stores, defaults domain.ModelConfig, logger zerolog.Logger) *Service {
	if defaults.Model == "" {
		defaults = domain.DefaultModelConfig()
	}

	return &Service{stores: stores, defaults: defaults, logger: logger}
}

func (s *Service) AddSharedContext(ctx context.Context, text string) (bool, error) {
	return s.addNote(ctx, "shared context", text, s.stores.Context.Add)
}

func (s *Service) SharedContext(ctx context.Context) ([]string, error) {
	return s.stores.Context.List(ctx)
}

func (s *Service) AddLearningExample(ctx context.Context, text string) (bool, error) {
	return s.addNote(ctx, "learning example", text, s.stores.Learning.Add)
}

func (s *Service) LearningExamples(ctx context.Context) ([]string, error) {
	return s.stores.Learning.List(ctx)
}

func (s *Service) addNote(ctx context.Context, kind string, text string, add func(context.Context, string) (bool, error)) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, ErrEmptyNote
	}

	added, err := add(ctx, text)
	if err != nil {
		if errors.Is(err, domain.ErrNotPersisted) {
			s.logger.Warn().Err(err).Msgf("%s kept in memory only", kind)
			return added, nil
		}
		return false, fmt.Errorf("add %s: %w", kind, err)
	}
	return added, nil
}

func (s *Service) Profile(ctx context.Context, user domain.UserID) (Profile, error) {
	facts, err := s.stores.Facts.Facts(ctx, user)
	if err != nil {
		return Profile{}, fmt.Errorf("load facts: %w", err)
	}
	history, err := s.stores.History.History(ctx, user)
	if err != nil {
		return Profile{}, fmt.Errorf("load history: %w", err)
	}
	override, err := s.stores.Configs.Override(ctx, user)
	if err != nil {
		return Profile{}, fmt.Errorf("load user config: %w", err)
	}

	return Profile{
		UserID:    user,
		Facts:     facts,
		History:   history,
		Config:    override.Resolve(s.defaults),
		Overrides: override,
	}, nil
}

func (s *Service) ForgetFact(ctx context.Context, user domain.UserID, fact string) (bool, error) {
	removed, err := s.stores.Facts.ForgetFact(ctx, user, fact)
	if err != nil {
		if !errors.Is(err, domain.ErrNotPersisted) {
			return false, fmt.Errorf("forget fact: %w", err)
		}
		s.logger.Warn().Err(err).Str("user_id", string(user)).Msg("fact removal kept in memory only")
	}
	return removed, nil
}

func (s *Service) ClearHistory(ctx context.Context, user domain.UserID) error {
	return s.tolerateUnpersisted("clear history", user, s.stores.History.Clear(ctx, user))
}

func (s *Service) EffectiveConfig(ctx context.Context, user domain.UserID) (domain.ModelConfig, error) {
	override, err := s.stores.Configs.Override(ctx, user)
	if err != nil {
		return domain.ModelConfig{}, fmt.Errorf("load user config: %w", err)
	}
	return override.Resolve(s.defaults), nil
}

func (s *Service) SetUserConfig(ctx context.Context, cmd SetUserConfigCommand) (domain.ModelConfig, error) {
	if cmd.Patch.IsEmpty() {
		return domain.ModelConfig{}, fmt.Errorf("%w: no settings given", domain.ErrInvalidConfig)
	}
	if err := cmd.Patch.Validate(); err != nil {
		return domain.ModelConfig{}, err
	}

	merged, err := s.stores.Configs.MergeOverride(ctx, cmd.UserID, cmd.Patch)
	if err != nil {
		if !errors.Is(err, domain.ErrNotPersisted) {
			return domain.ModelConfig{}, fmt.Errorf("save user config: %w", err)
		}
		s.logger.Warn().Err(err).Str("user_id", string(cmd.UserID)).Msg("user config kept in memory only")
	}

	return merged.Resolve(s.defaults), nil
}

func (s *Service) ResetUserConfig(ctx context.Context, user domain.UserID) error {
	return s.tolerateUnpersisted("reset user config", user, s.stores.Configs.ResetOverride(ctx, user))
}

func (s *Service) tolerateUnpersisted(op string, user domain.UserID, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotPersisted) {
		s.logger.Warn().Err(err).Str("user_id", string(user)).Msgf("%s kept in memory only", op)
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
