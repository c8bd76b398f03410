package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/neruai/internal/domain"
	"github.com/bnema/neruai/internal/ports"
	"github.com/rs/zerolog"
)

const (
	toolOutcomeOK       = "ok"
	toolOutcomeRejected = "rejected"
	toolOutcomeFailed   = "failed"
)

type Dispatcher struct {
	runner   ports.CommandRunner
	facts    ports.FactStore
	observer ports.ExchangeObserver
	logger   zerolog.Logger
}

func NewDispatcher(runner ports.CommandRunner, facts ports.FactStore, observer ports.ExchangeObserver, logger zerolog.Logger) *Dispatcher {
	if observer == nil {
		observer = ports.NopObserver{}
	}

	return &Dispatcher{runner: runner, facts: facts, observer: observer, logger: logger}
}

// Dispatch runs one tool call and always returns a tool message; failures are
// reported in its content for the model to read.
func (d *Dispatcher) Dispatch(ctx context.Context, actingUser domain.UserID, call domain.ToolCallRequest) domain.Message {
	logger := d.logger.With().Str("tool", call.Name).Str("tool_call_id", call.ID).Str("user_id", string(actingUser)).Logger()

	content, outcome := d.dispatch(ctx, actingUser, call, logger)
	d.observer.ObserveToolCall(toolLabel(call.Name), outcome)
	logger.Debug().Str("outcome", outcome).Msg("tool call dispatched")

	return domain.Message{Role: domain.RoleTool, ToolCallID: call.ID, Content: content}
}

func (d *Dispatcher) dispatch(ctx context.Context, actingUser domain.UserID, call domain.ToolCallRequest, logger zerolog.Logger) (string, string) {
	invocation, err := domain.ParseToolCall(call)
	if err != nil {
		logger.Warn().Err(err).Msg("reject tool call")
		if errors.Is(err, domain.ErrUnknownTool) {
			return fmt.Sprintf("Error: Unknown tool function '%s'.", call.Name), toolOutcomeRejected
		}
		return "Error: Invalid arguments format for tool call.", toolOutcomeRejected
	}

	switch inv := invocation.(type) {
	case domain.ShellCommand:
		return d.runShellCommand(ctx, inv, logger)
	case domain.RememberFact:
		return d.rememberFact(ctx, actingUser, inv, logger)
	default:
		return fmt.Sprintf("Error: Unknown tool function '%s'.", call.Name), toolOutcomeRejected
	}
}

func (d *Dispatcher) runShellCommand(ctx context.Context, inv domain.ShellCommand, logger zerolog.Logger) (string, string) {
	if inv.Command == "" {
		return "Error: No command provided.", toolOutcomeRejected
	}

	verdict := domain.CheckCommand(inv.Command)
	if !verdict.Safe {
		logger.Warn().Str("command", inv.Command).Str("reason", verdict.Reason).Msg("command rejected")
		return fmt.Sprintf("Error: Command '%s' is not allowed for safety reasons (%s).", inv.Command, verdict.Reason), toolOutcomeRejected
	}

	result := d.runner.Run(ctx, inv.Command)
	if result.TimedOut || result.Error != "" || result.ExitCode != 0 {
		return result.Summary(), toolOutcomeFailed
	}
	return result.Summary(), toolOutcomeOK
}

func (d *Dispatcher) rememberFact(ctx context.Context, actingUser domain.UserID, inv domain.RememberFact, logger zerolog.Logger) (string, string) {
	if inv.UserID == "" || inv.Fact == "" {
		return "Error: Missing user_id or fact to remember.", toolOutcomeRejected
	}
	if inv.UserID != actingUser {
		logger.Warn().Str("requested_user_id", string(inv.UserID)).Msg("cross-user fact write rejected")
		return fmt.Sprintf("Error: Cannot remember fact for a different user (requested: %s) in this context.", inv.UserID), toolOutcomeRejected
	}

	added, err := d.facts.AddFact(ctx, actingUser, inv.Fact)
	if err != nil {
		if !errors.Is(err, domain.ErrNotPersisted) {
			logger.Error().Err(err).Msg("remember fact")
			return fmt.Sprintf("Error: Could not remember fact about user %s.", actingUser), toolOutcomeFailed
		}
		logger.Warn().Err(err).Msg("fact kept in memory only")
	}

	if !added {
		return fmt.Sprintf("Already knew that about user %s: '%s'", actingUser, inv.Fact), toolOutcomeOK
	}
	return fmt.Sprintf("Successfully remembered fact about user %s: '%s'", actingUser, inv.Fact), toolOutcomeOK
}

func toolLabel(name string) string {
	switch domain.ToolName(name) {
	case domain.ToolRunSafeShellCommand, domain.ToolRememberFactAboutUser:
		return name
	default:
		return "unknown"
	}
}
