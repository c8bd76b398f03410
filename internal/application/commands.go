package application

import "github.com/bnema/neruai/internal/domain"

type ExchangeRequest struct {
	UserID      domain.UserID
	DisplayName string
	Prompt      string
	ChannelID   string
	GuildID     string
}

type SetUserConfigCommand struct {
	UserID domain.UserID
	Patch  domain.ModelConfigOverride
}
