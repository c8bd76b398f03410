package application

import "github.com/bnema/neruai/internal/domain"

type Reply struct {
	Text      string
	RequestID string
	Rounds    int
	ToolCalls int
}

type Profile struct {
	UserID    domain.UserID
	Facts     []string
	History   []domain.Turn
	Config    domain.ModelConfig
	Overrides domain.ModelConfigOverride
}
