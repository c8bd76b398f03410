package env

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bnema/neruai/internal/domain"
	"github.com/bnema/neruai/internal/ports"
)

// DefaultVariables maps secret keys to the environment variables that may hold
// them, in lookup order.
var DefaultVariables = map[string][]string{
	domain.SecretAIAPIKey:     {"NERU_AI_API_KEY", "AI_API_KEY"},
	domain.SecretDiscordToken: {"NERU_DISCORD_TOKEN", "DISCORD_TOKEN"},
	domain.SecretSerpAPIKey:   {"NERU_SEARCH_API_KEY", "SERP_API_KEY"},
}

// Store is a read-only secret backend over environment variables.
type Store struct {
	variables map[string][]string
	lookup    func(string) (string, bool)
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(variables map[string][]string) *Store {
	if variables == nil {
		variables = DefaultVariables
	}
	return &Store{variables: variables, lookup: os.LookupEnv}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	for _, name := range s.variables[key] {
		if value, ok := s.lookup(name); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), nil
		}
	}

	return "", fmt.Errorf("env secret %q: %w", key, domain.ErrSecretNotFound)
}

func (s *Store) Put(context.Context, string, string) error {
	return domain.ErrSecretReadOnly
}

func (s *Store) Delete(context.Context, string) error {
	return domain.ErrSecretReadOnly
}
