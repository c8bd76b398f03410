package application

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bnema/neruai/internal/domain"
	"github.com/bnema/neruai/internal/ports/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orchestratorFixture struct {
	model        *mocks.MockChatModel
	runner       *mocks.MockCommandRunner
	stores       Stores
	orchestrator *Orchestrator
	slept        []time.Duration
}

func newOrchestratorFixture(t *testing.T, opts OrchestratorOptions) *orchestratorFixture {
	t.Helper()

	f := &orchestratorFixture{
		model:  mocks.NewMockChatModel(t),
		runner: mocks.NewMockCommandRunner(t),
		stores: newTestStores(t),
	}
	dispatcher := NewDispatcher(f.runner, f.stores.Facts, nil, zerolog.Nop())
	f.orchestrator = NewOrchestrator(f.model, dispatcher, f.stores, opts, nil, zerolog.Nop())
	f.orchestrator.sleep = func(_ context.Context, d time.Duration) {
		f.slept = append(f.slept, d)
	}
	return f
}

func toolCallReply(id, name, args string) domain.CompletionResponse {
	return domain.CompletionResponse{
		Message: domain.Message{
			Role:      domain.RoleAssistant,
			ToolCalls: []domain.ToolCallRequest{{ID: id, Name: name, Arguments: args}},
		},
		FinishReason: "tool_calls",
	}
}

func textReply(text string) domain.CompletionResponse {
	return domain.CompletionResponse{
		Message:      domain.Message{Role: domain.RoleAssistant, Content: text},
		FinishReason: "stop",
	}
}

var aliceRequest = ExchangeRequest{UserID: "alice", DisplayName: "Alice", Prompt: "what day is it?"}

func TestOrchestratorRunsToolRoundThenAnswers(t *testing.T) {
	f := newOrchestratorFixture(t, OrchestratorOptions{})
	ctx := context.Background()

	var second domain.CompletionRequest
	f.model.EXPECT().Complete(mockAnyContext(), mock.Anything).
		Return(toolCallReply("call_1", "run_safe_shell_command", `{"command":"date"}`), nil).Once()
	f.model.EXPECT().Complete(mockAnyContext(), mock.Anything).
		Run(func(_ context.Context, req domain.CompletionRequest) { second = req }).
		Return(textReply("It's Wednesday!"), nil).Once()
	f.runner.EXPECT().Run(mockAnyContext(), "date").Return(domain.CommandResult{Stdout: "Wed Oct 14\n"}).Once()

	reply, err := f.orchestrator.Respond(ctx, aliceRequest)
	require.NoError(t, err)
	assert.Equal(t, "It's Wednesday!", reply.Text)
	assert.Equal(t, 1, reply.Rounds)
	assert.Equal(t, 1, reply.ToolCalls)
	assert.NotEmpty(t, reply.RequestID)

	var toolMessages []domain.Message
	for _, msg := range second.Messages {
		if msg.Role == domain.RoleTool {
			toolMessages = append(toolMessages, msg)
		}
	}
	require.Len(t, toolMessages, 1)
	assert.Equal(t, "call_1", toolMessages[0].ToolCallID)
	assert.Equal(t, "Wed Oct 14", toolMessages[0].Content)

	require.Len(t, second.Messages, 4)
	assert.Equal(t, domain.RoleSystem, second.Messages[0].Role)
	assert.Equal(t, "Alice: what day is it?", second.Messages[1].Content)
	assert.Len(t, second.Messages[2].ToolCalls, 1)
	assert.Len(t, second.Tools, 2)

	history, err := f.stores.History.History(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []domain.Turn{
		{Role: domain.RoleUser, Text: "Alice: what day is it?"},
		{Role: domain.RoleAssistant, Text: "It's Wednesday!"},
	}, history)
}

func TestOrchestratorStopsAfterMaxToolRounds(t *testing.T) {
	f := newOrchestratorFixture(t, OrchestratorOptions{})
	ctx := context.Background()

	f.model.EXPECT().Complete(mockAnyContext(), mock.Anything).
		Return(toolCallReply("", "run_safe_shell_command", `{"command":"uptime"}`), nil).Times(domain.MaxToolRounds)
	f.runner.EXPECT().Run(mockAnyContext(), "uptime").Return(domain.CommandResult{Stdout: "up 1 day"}).Times(domain.MaxToolRounds)

	reply, err := f.orchestrator.Respond(ctx, aliceRequest)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTooManyToolRounds)
	assert.Equal(t, domain.MaxToolRounds, reply.Rounds)
	assert.Equal(t, domain.DefaultPersona().Messages.TooManyToolRounds, f.orchestrator.UserMessage(err))

	history, err := f.stores.History.History(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestOrchestratorMapsTransportErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		want  string
		pause bool
	}{
		{name: "unavailable", err: fmt.Errorf("dial: %w", domain.ErrRemoteUnavailable), want: domain.DefaultPersona().Messages.Unavailable},
		{name: "timeout", err: domain.ErrRemoteTimeout, want: domain.DefaultPersona().Messages.Timeout},
		{name: "status", err: &domain.StatusError{StatusCode: 502, Err: domain.ErrRemoteStatus}, want: domain.DefaultPersona().Messages.RemoteError},
		{name: "rate limited", err: &domain.StatusError{StatusCode: 429, Err: domain.ErrRateLimited}, want: domain.DefaultPersona().Messages.RateLimited, pause: true},
		{name: "malformed", err: domain.ErrMalformedReply, want: domain.DefaultPersona().Messages.Malformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrchestratorFixture(t, OrchestratorOptions{RateLimitPause: 3 * time.Second})
			f.model.EXPECT().Complete(mockAnyContext(), mock.Anything).Return(domain.CompletionResponse{}, tt.err).Once()

			_, err := f.orchestrator.Respond(context.Background(), aliceRequest)
			require.Error(t, err)

			message := f.orchestrator.UserMessage(err)
			assert.Equal(t, tt.want, message)
			assert.NotContains(t, message, "status")
			if tt.pause {
				assert.Equal(t, []time.Duration{3 * time.Second}, f.slept)
			} else {
				assert.Empty(t, f.slept)
			}

			history, err := f.stores.History.History(context.Background(), "alice")
			require.NoError(t, err)
			assert.Empty(t, history)
		})
	}
}

func TestOrchestratorWithoutModelReportsMissingCredentials(t *testing.T) {
	stores := newTestStores(t)
	dispatcher := NewDispatcher(mocks.NewMockCommandRunner(t), stores.Facts, nil, zerolog.Nop())
	orchestrator := NewOrchestrator(nil, dispatcher, stores, OrchestratorOptions{}, nil, zerolog.Nop())

	_, err := orchestrator.Respond(context.Background(), aliceRequest)
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)
	assert.Equal(t, domain.DefaultPersona().Messages.MissingCredentials, orchestrator.UserMessage(err))
}

func TestOrchestratorTreatsBlankReplyAsError(t *testing.T) {
	f := newOrchestratorFixture(t, OrchestratorOptions{})
	f.model.EXPECT().Complete(mockAnyContext(), mock.Anything).Return(textReply("   "), nil).Once()

	_, err := f.orchestrator.Respond(context.Background(), aliceRequest)
	assert.ErrorIs(t, err, domain.ErrEmptyReply)
}

func TestOrchestratorTruncatesLongAnswers(t *testing.T) {
	f := newOrchestratorFixture(t, OrchestratorOptions{MaxAnswerLength: 50})
	f.model.EXPECT().Complete(mockAnyContext(), mock.Anything).Return(textReply(strings.Repeat("la ", 100)), nil).Once()

	reply, err := f.orchestrator.Respond(context.Background(), aliceRequest)
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(reply.Text)), 50)
	assert.True(t, strings.HasSuffix(reply.Text, "…"))
}

func TestOrchestratorAppliesUserConfigAndMemory(t *testing.T) {
	f := newOrchestratorFixture(t, OrchestratorOptions{})
	ctx := context.Background()

	model := "anthropic/claude-3.5-haiku"
	require.NoError(t, f.stores.Configs.SaveOverride(ctx, "alice", domain.ModelConfigOverride{Model: &model}))
	_, err := f.stores.Facts.AddFact(ctx, "alice", "prefers short answers")
	require.NoError(t, err)

	f.model.EXPECT().Complete(mockAnyContext(), mock.MatchedBy(func(req domain.CompletionRequest) bool {
		return req.Config.Model == model &&
			req.Config.MaxTokens == domain.DefaultModelConfig().MaxTokens &&
			strings.Contains(req.Messages[0].Content, "- prefers short answers")
	})).Return(textReply("ok!"), nil).Once()

	reply, err := f.orchestrator.Respond(ctx, aliceRequest)
	require.NoError(t, err)
	assert.Equal(t, "ok!", reply.Text)
}

func TestOrchestratorSynthesizesMissingToolCallIDs(t *testing.T) {
	f := newOrchestratorFixture(t, OrchestratorOptions{})

	var second domain.CompletionRequest
	f.model.EXPECT().Complete(mockAnyContext(), mock.Anything).
		Return(toolCallReply("", "remember_fact_about_user", `{"user_id":"alice","fact":"owns a synth"}`), nil).Once()
	f.model.EXPECT().Complete(mockAnyContext(), mock.Anything).
		Run(func(_ context.Context, req domain.CompletionRequest) { second = req }).
		Return(textReply("Noted!"), nil).Once()

	_, err := f.orchestrator.Respond(context.Background(), aliceRequest)
	require.NoError(t, err)

	require.Len(t, second.Messages, 4)
	callID := second.Messages[2].ToolCalls[0].ID
	assert.True(t, strings.HasPrefix(callID, "call_"))
	assert.Equal(t, callID, second.Messages[3].ToolCallID)
}

func TestUserLocksReleaseEntries(t *testing.T) {
	var locks userLocks

	unlock := locks.lock("alice")
	assert.Len(t, locks.locks, 1)
	unlock()
	assert.Empty(t, locks.locks)
}
