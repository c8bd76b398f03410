package ports

import (
	"context"

	"github.com/bnema/neruai/internal/domain"
)

// Mutating store methods apply the change in memory first. When the
// persist step fails they return an error wrapping domain.ErrNotPersisted
// and the new value stays visible to readers.

type FactStore interface {
	Facts(ctx context.Context, user domain.UserID) ([]string, error)
	AddFact(ctx context.Context, user domain.UserID, fact string) (bool, error)
	ForgetFact(ctx context.Context, user domain.UserID, fact string) (bool, error)
	Users(ctx context.Context) ([]domain.UserID, error)
}

type HistoryStore interface {
	History(ctx context.Context, user domain.UserID) ([]domain.Turn, error)
	Append(ctx context.Context, user domain.UserID, turns ...domain.Turn) error
	Clear(ctx context.Context, user domain.UserID) error
}

type NoteStore interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, note string) (bool, error)
}

type ConfigStore interface {
	Override(ctx context.Context, user domain.UserID) (domain.ModelConfigOverride, error)
	SaveOverride(ctx context.Context, user domain.UserID, override domain.ModelConfigOverride) error
	// MergeOverride applies patch on top of the stored override as one
	// read-modify-write step and returns the merged result.
	MergeOverride(ctx context.Context, user domain.UserID, patch domain.ModelConfigOverride) (domain.ModelConfigOverride, error)
	ResetOverride(ctx context.Context, user domain.UserID) error
}
