package chain

import (
	"context"
	"errors"
	"fmt"

	envstore "github.com/bnema/neruai/internal/adapters/secrets/env"
	filestore "github.com/bnema/neruai/internal/adapters/secrets/file"
	passstore "github.com/bnema/neruai/internal/adapters/secrets/pass"
	"github.com/bnema/neruai/internal/domain"
	"github.com/bnema/neruai/internal/ports"
)

// Store consults its backends in order. Reads return the first hit; writes
// land in the first backend that accepts them.
type Store struct {
	backends []ports.SecretStore
}

var _ ports.SecretStore = (*Store)(nil)

var errNoBackends = errors.New("secret chain has no backends")

func New(backends ...ports.SecretStore) (*Store, error) {
	if len(backends) == 0 {
		return nil, errNoBackends
	}
	for i, backend := range backends {
		if backend == nil {
			return nil, fmt.Errorf("secret backend %d is nil", i)
		}
	}

	return &Store{backends: backends}, nil
}

// NewDefault reads the environment first, then pass, then files under fileRoot.
func NewDefault(fileRoot string) (*Store, error) {
	return New(envstore.NewStore(nil), passstore.NewStore(), filestore.NewStore(fileRoot))
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	for _, backend := range s.backends {
		value, err := backend.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if shouldStop(err) {
			return "", err
		}
		errs = append(errs, err)
	}

	return "", fmt.Errorf("%w: %q: %w", domain.ErrSecretNotFound, key, errors.Join(errs...))
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	return s.each(ctx, "put", func(backend ports.SecretStore) error {
		return backend.Put(ctx, key, value)
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.each(ctx, "delete", func(backend ports.SecretStore) error {
		return backend.Delete(ctx, key)
	})
}

func (s *Store) each(ctx context.Context, op string, fn func(ports.SecretStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var errs []error
	for _, backend := range s.backends {
		err := fn(backend)
		if err == nil {
			return nil
		}
		if shouldStop(err) {
			return err
		}
		if !errors.Is(err, domain.ErrSecretReadOnly) {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return fmt.Errorf("secret %s: %w", op, domain.ErrSecretReadOnly)
	}
	return fmt.Errorf("secret %s failed on every backend: %w", op, errors.Join(errs...))
}

func shouldStop(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
