package ports

import (
	"context"
	"time"

	"github.com/bnema/neruai/internal/domain"
)

type ChatModel interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResponse, error)
}

type CommandRunner interface {
	Run(ctx context.Context, command string) domain.CommandResult
}

type WebSearcher interface {
	Search(ctx context.Context, query string) (domain.SearchDigest, error)
}

type ExchangeObserver interface {
	ObserveExchange(outcome string, rounds int, elapsed time.Duration)
	ObserveToolCall(tool string, outcome string)
}

type NopObserver struct{}

func (NopObserver) ObserveExchange(string, int, time.Duration) {}

func (NopObserver) ObserveToolCall(string, string) {}
