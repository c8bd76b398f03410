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
	ContextPathKey  = "context.path"
	LearningPathKey = "learning.path"
	contextFile     = "context.toml"
	learningFile    = "learning.toml"
)

// NoteRepository backs both the shared context and the learning examples;
// each gets its own file.
type NoteRepository struct {
	doc     document
	mu      sync.RWMutex
	entries []string
}

var _ ports.NoteStore = (*NoteRepository)(nil)

func NewContextRepository(cfg *viper.Viper, logger zerolog.Logger) (*NoteRepository, error) {
	return newNoteRepository(cfg, ContextPathKey, contextFile, "context", logger)
}

func NewLearningRepository(cfg *viper.Viper, logger zerolog.Logger) (*NoteRepository, error) {
	return newNoteRepository(cfg, LearningPathKey, learningFile, "learning", logger)
}

func newNoteRepository(cfg *viper.Viper, key, fileName, name string, logger zerolog.Logger) (*NoteRepository, error) {
	doc, err := newDocument(cfg, key, fileName, name, logger)
	if err != nil {
		return nil, err
	}

	file := loadDocument[notesSchema](doc)
	var entries []string
	for _, entry := range file.Entries {
		entries, _ = domain.AppendUnique(entries, entry)
	}

	return &NoteRepository{doc: doc, entries: entries}, nil
}

func (r *NoteRepository) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.entries), nil
}

func (r *NoteRepository) Add(ctx context.Context, note string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	updated, added := domain.AppendUnique(r.entries, note)
	if !added {
		return false, nil
	}
	r.entries = updated

	return true, r.doc.persist(&notesSchema{Version: currentSchemaVersion, Entries: slices.Clone(r.entries)})
}
