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
	HistoryPathKey = "history.path"
	historyFile    = "history.toml"
)

type HistoryRepository struct {
	doc           document
	mu            sync.RWMutex
	conversations map[domain.UserID][]domain.Turn
}

var _ ports.HistoryStore = (*HistoryRepository)(nil)

func NewHistoryRepository(cfg *viper.Viper, logger zerolog.Logger) (*HistoryRepository, error) {
	doc, err := newDocument(cfg, HistoryPathKey, historyFile, "history", logger)
	if err != nil {
		return nil, err
	}

	file := loadDocument[historySchema](doc)
	conversations := make(map[domain.UserID][]domain.Turn, len(file.Conversations))
	for _, entry := range file.Conversations {
		turns := make([]domain.Turn, 0, len(entry.Turns))
		for _, turn := range entry.Turns {
			role := domain.Role(turn.Role)
			if !role.IsTurnRole() {
				continue
			}
			turns = append(turns, domain.Turn{Role: role, Text: turn.Text})
		}
		turns = domain.TrimHistory(turns, domain.MaxHistoryTurns)
		if len(turns) > 0 {
			conversations[domain.UserID(entry.UserID)] = turns
		}
	}

	return &HistoryRepository{doc: doc, conversations: conversations}, nil
}

func (r *HistoryRepository) History(ctx context.Context, user domain.UserID) ([]domain.Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.conversations[user]), nil
}

func (r *HistoryRepository) Append(ctx context.Context, user domain.UserID, turns ...domain.Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(turns) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	combined := append(slices.Clone(r.conversations[user]), turns...)
	r.conversations[user] = slices.Clip(domain.TrimHistory(combined, domain.MaxHistoryTurns))

	return r.doc.persist(r.schemaLocked())
}

func (r *HistoryRepository) Clear(ctx context.Context, user domain.UserID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conversations[user]; !ok {
		return nil
	}
	delete(r.conversations, user)

	return r.doc.persist(r.schemaLocked())
}

func (r *HistoryRepository) schemaLocked() *historySchema {
	file := &historySchema{Version: currentSchemaVersion, Conversations: make([]conversationSchema, 0, len(r.conversations))}
	for _, user := range sortedKeys(r.conversations) {
		turns := r.conversations[user]
		entry := conversationSchema{UserID: string(user), Turns: make([]turnSchema, 0, len(turns))}
		for _, turn := range turns {
			entry.Turns = append(entry.Turns, turnSchema{Role: string(turn.Role), Text: turn.Text})
		}
		file.Conversations = append(file.Conversations, entry)
	}
	return file
}
