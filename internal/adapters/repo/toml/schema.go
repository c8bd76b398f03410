package toml

import "fmt"

const currentSchemaVersion = 1

func checkVersion(kind string, version int) error {
	if version > currentSchemaVersion {
		return fmt.Errorf("unsupported %s schema version %d (current %d)", kind, version, currentSchemaVersion)
	}
	return nil
}

type factsSchema struct {
	Version int               `toml:"version"`
	Users   []userFactsSchema `toml:"users"`
}

type userFactsSchema struct {
	ID    string   `toml:"id"`
	Facts []string `toml:"facts"`
}

func (s *factsSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s *factsSchema) validateVersion() error {
	return checkVersion("facts", s.Version)
}

type historySchema struct {
	Version       int                  `toml:"version"`
	Conversations []conversationSchema `toml:"conversations"`
}

type conversationSchema struct {
	UserID string       `toml:"user_id"`
	Turns  []turnSchema `toml:"turns"`
}

type turnSchema struct {
	Role string `toml:"role"`
	Text string `toml:"text"`
}

func (s *historySchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s *historySchema) validateVersion() error {
	return checkVersion("history", s.Version)
}

type notesSchema struct {
	Version int      `toml:"version"`
	Entries []string `toml:"entries"`
}

func (s *notesSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s *notesSchema) validateVersion() error {
	return checkVersion("notes", s.Version)
}

type configsSchema struct {
	Version int                `toml:"version"`
	Users   []userConfigSchema `toml:"users"`
}

type userConfigSchema struct {
	ID               string   `toml:"id"`
	Model            *string  `toml:"model,omitempty"`
	Temperature      *float64 `toml:"temperature,omitempty"`
	MaxTokens        *int     `toml:"max_tokens,omitempty"`
	TopP             *float64 `toml:"top_p,omitempty"`
	FrequencyPenalty *float64 `toml:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `toml:"presence_penalty,omitempty"`
}

func (s *configsSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s *configsSchema) validateVersion() error {
	return checkVersion("configs", s.Version)
}
