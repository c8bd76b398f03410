package domain

import "errors"

// Secret keys are slash separated so they map onto pass entries and file paths.
const (
	SecretAIAPIKey     = "neruai/ai_api_key"
	SecretDiscordToken = "neruai/discord_token"
	SecretSerpAPIKey   = "neruai/serp_api_key"
)

var ErrSecretReadOnly = errors.New("secret backend is read-only")
