package toml

import (
	"context"
	"slices"
	"sync"

	"github.com/bnema/neruai/internal/domain"
	"github.com/bnema/neruai/internal/ports"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	FactsPathKey = "facts.path"
	factsFile    = "facts.toml"
)

type FactRepository struct {
	doc   document
	mu    sync.RWMutex
	facts map[domain.UserID][]string
}

var _ ports.FactStore = (*FactRepository)(nil)

func NewFactRepository(cfg *viper.Viper, logger zerolog.Logger) (*FactRepository, error) {
	doc, err := newDocument(cfg, FactsPathKey, factsFile, "facts", logger)
	if err != nil {
		return nil, err
	}

	file := loadDocument[factsSchema](doc)
	facts := make(map[domain.UserID][]string, len(file.Users))
	for _, entry := range file.Users {
		var list []string
		for _, fact := range entry.Facts {
			list, _ = domain.AppendUnique(list, fact)
		}
		if len(list) > 0 {
			facts[domain.UserID(entry.ID)] = list
		}
	}

	return &FactRepository{doc: doc, facts: facts}, nil
}

func (r *FactRepository) Facts(ctx context.Context, user domain.UserID) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.facts[user]), nil
}

func (r *FactRepository) Users(ctx context.Context) ([]domain.UserID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.UserID, 0, len(r.facts))
	for user := range r.facts {
		users = append(users, user)
	}
	slices.Sort(users)
	return users, nil
}

func (r *FactRepository) AddFact(ctx context.Context, user domain.UserID, fact string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	updated, added := domain.AppendUnique(r.facts[user], fact)
	if !added {
		return false, nil
	}
	r.facts[user] = updated

	return true, r.doc.persist(r.schemaLocked())
}

func (r *FactRepository) ForgetFact(ctx context.Context, user domain.UserID, fact string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	updated, removed := domain.RemoveEntry(r.facts[user], fact)
	if !removed {
		return false, nil
	}
	if len(updated) == 0 {
		delete(r.facts, user)
	} else {
		r.facts[user] = updated
	}

	return true, r.doc.persist(r.schemaLocked())
}

func (r *FactRepository) schemaLocked() *factsSchema {
	file := &factsSchema{Version: currentSchemaVersion, Users: make([]userFactsSchema, 0, len(r.facts))}
	for _, user := range sortedKeys(r.facts) {
		file.Users = append(file.Users, userFactsSchema{ID: string(user), Facts: slices.Clone(r.facts[user])})
	}
	return file
}

func sortedKeys[V any](m map[domain.UserID]V) []domain.UserID {
	keys := make([]domain.UserID, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
