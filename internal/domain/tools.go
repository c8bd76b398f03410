package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ToolName string

const (
	ToolRunSafeShellCommand   ToolName = "run_safe_shell_command"
	ToolRememberFactAboutUser ToolName = "remember_fact_about_user"
)

type ToolDefinition struct {
	Name        ToolName
	Description string
	Parameters  json.RawMessage
}

// ToolCallRequest is a tool call exactly as the remote model emitted it.
type ToolCallRequest struct {
	ID        string
	Name      string
	Arguments string
}

const shellCommandParameters = `{
  "type": "object",
  "properties": {
    "command": {
      "type": "string",
      "description": "The shell command to execute. Only read-only informational commands are permitted, for example 'date', 'uptime', 'ls -la', 'ping -c 3 example.com'."
    }
  },
  "required": ["command"]
}`

const rememberFactParameters = `{
  "type": "object",
  "properties": {
    "user_id": {
      "type": "string",
      "description": "The ID of the user the fact is about. Must be the ID of the user you are currently talking to."
    },
    "fact": {
      "type": "string",
      "description": "A short, specific fact about the user, for example 'likes pineapple on pizza' or 'has a cat named Mochi'."
    }
  },
  "required": ["user_id", "fact"]
}`

func ToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        ToolRunSafeShellCommand,
			Description: "Executes a safe, non-destructive shell command on the host system and returns its output. Use it to check the date, uptime, network reachability or similar system information.",
			Parameters:  json.RawMessage(shellCommandParameters),
		},
		{
			Name:        ToolRememberFactAboutUser,
			Description: "Stores a short fact about the user you are talking to so it can be recalled in future conversations. Use it when the user shares a preference, a personal detail or asks you to remember something.",
			Parameters:  json.RawMessage(rememberFactParameters),
		},
	}
}

// ToolInvocation is the closed set of decoded tool calls.
type ToolInvocation interface {
	Tool() ToolName
	isToolInvocation()
}

type ShellCommand struct {
	Command string `json:"command"`
}

func (ShellCommand) Tool() ToolName   { return ToolRunSafeShellCommand }
func (ShellCommand) isToolInvocation() {}

type RememberFact struct {
	UserID UserID `json:"user_id"`
	Fact   string `json:"fact"`
}

func (RememberFact) Tool() ToolName   { return ToolRememberFactAboutUser }
func (RememberFact) isToolInvocation() {}

func ParseToolCall(call ToolCallRequest) (ToolInvocation, error) {
	switch ToolName(call.Name) {
	case ToolRunSafeShellCommand:
		var args ShellCommand
		if err := decodeArguments(call.Arguments, &args); err != nil {
			return nil, err
		}
		args.Command = strings.TrimSpace(args.Command)
		return args, nil
	case ToolRememberFactAboutUser:
		var args RememberFact
		if err := decodeArguments(call.Arguments, &args); err != nil {
			return nil, err
		}
		args.UserID = UserID(strings.TrimSpace(string(args.UserID)))
		args.Fact = strings.TrimSpace(args.Fact)
		return args, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, call.Name)
	}
}

func decodeArguments(raw string, target any) error {
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToolArguments, err)
	}

	return nil
}
