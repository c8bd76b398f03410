package domain

import (
	"encoding/json"
	"fmt"
)

const (
	MaxHistoryTurns = 20
	MaxToolRounds   = 5
)

type UserID string

// UnmarshalJSON accepts both string and numeric ids since models emit either.
func (id *UserID) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*id = UserID(text)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("decode user id: %w", err)
	}
	*id = UserID(number.String())
	return nil
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

func (r Role) IsTurnRole() bool {
	return r == RoleUser || r == RoleAssistant
}

type Turn struct {
	Role Role
	Text string
}

// TrimHistory keeps the most recent limit turns in their original order.
func TrimHistory(turns []Turn, limit int) []Turn {
	if limit <= 0 {
		return nil
	}
	if len(turns) <= limit {
		return turns
	}

	return turns[len(turns)-limit:]
}

type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCallRequest
	ToolCallID string
}

func (t Turn) Message() Message {
	return Message{Role: t.Role, Content: t.Text}
}

func FormatUserPrompt(displayName string, prompt string) string {
	return fmt.Sprintf("%s: %s", displayName, prompt)
}
