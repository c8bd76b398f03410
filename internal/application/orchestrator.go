package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bnema/neruai/internal/domain"
	"github.com/bnema/neruai/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultRateLimitPause = 2 * time.Second
	outcomeAnswered       = "answered"
)

type Stores struct {
	Facts    ports.FactStore
	History  ports.HistoryStore
	Context  ports.NoteStore
	Learning ports.NoteStore
	Configs  ports.ConfigStore
}

type OrchestratorOptions struct {
	Persona         domain.Persona
	Defaults        domain.ModelConfig
	MaxAnswerLength int
	RateLimitPause  time.Duration
	// Searcher backs "search for X" prompts; nil answers them with
	// domain.SearchDisabledText.
	Searcher ports.WebSearcher
}

type Orchestrator struct {
	model      ports.ChatModel
	dispatcher *Dispatcher
	stores     Stores
	opts       OrchestratorOptions
	observer   ports.ExchangeObserver
	logger     zerolog.Logger
	locks      userLocks
	sleep      func(ctx context.Context, d time.Duration)
}

// NewOrchestrator accepts a nil model; every exchange then fails with
// domain.ErrMissingCredentials.
func NewOrchestrator(model ports.ChatModel, dispatcher *Dispatcher, stores Stores, opts OrchestratorOptions, observer ports.ExchangeObserver, logger zerolog.Logger) *Orchestrator {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	opts.Persona = opts.Persona.WithDefaults()
	if opts.Defaults.Model == "" {
		opts.Defaults = domain.DefaultModelConfig()
	}
	if opts.MaxAnswerLength <= 0 {
		opts.MaxAnswerLength = domain.MaxMessageLength
	}
	if opts.RateLimitPause < 0 {
		opts.RateLimitPause = 0
	}

	return &Orchestrator{
		model:      model,
		dispatcher: dispatcher,
		stores:     stores,
		opts:       opts,
		observer:   observer,
		logger:     logger,
		sleep:      sleepContext,
	}
}

func (o *Orchestrator) Persona() domain.Persona {
	return o.opts.Persona
}

type exchangeState int

const (
	stateAssemble exchangeState = iota
	stateCallRemote
	stateToolRound
	stateFinal
	stateError
	stateDone
)

func (s exchangeState) String() string {
	switch s {
	case stateAssemble:
		return "assemble"
	case stateCallRemote:
		return "call_remote"
	case stateToolRound:
		return "tool_round"
	case stateFinal:
		return "final"
	case stateError:
		return "error"
	default:
		return "done"
	}
}

type exchange struct {
	req       ExchangeRequest
	id        string
	config    domain.ModelConfig
	messages  []domain.Message
	reply     domain.Message
	round     int
	toolCalls int
	answer    string
	err       error
	logger    zerolog.Logger
}

// Respond runs one exchange to completion. On failure the returned error
// wraps a domain sentinel; UserMessage turns it into a reply for the user.
func (o *Orchestrator) Respond(ctx context.Context, req ExchangeRequest) (Reply, error) {
	started := time.Now()
	ex := &exchange{req: req, id: uuid.NewString()}
	ex.logger = o.logger.With().
		Str("request_id", ex.id).
		Str("user_id", string(req.UserID)).
		Logger()

	if o.model == nil {
		o.observer.ObserveExchange(errorKind(domain.ErrMissingCredentials), 0, time.Since(started))
		return Reply{RequestID: ex.id}, domain.ErrMissingCredentials
	}

	unlock := o.locks.lock(req.UserID)
	defer unlock()

	state := stateAssemble
	for state != stateDone {
		next := o.step(ctx, state, ex)
		ex.logger.Trace().Stringer("from", state).Stringer("to", next).Int("round", ex.round).Msg("exchange transition")
		state = next
	}

	reply := Reply{RequestID: ex.id, Rounds: ex.round, ToolCalls: ex.toolCalls}
	if ex.err != nil {
		o.observer.ObserveExchange(errorKind(ex.err), ex.round, time.Since(started))
		ex.logger.Warn().Err(ex.err).Int("round", ex.round).Msg("exchange failed")
		return reply, fmt.Errorf("exchange %s: %w", ex.id, ex.err)
	}

	o.observer.ObserveExchange(outcomeAnswered, ex.round, time.Since(started))
	ex.logger.Info().Int("rounds", ex.round).Int("tool_calls", ex.toolCalls).Dur("elapsed", time.Since(started)).Msg("exchange answered")
	reply.Text = ex.answer
	return reply, nil
}

func (o *Orchestrator) step(ctx context.Context, state exchangeState, ex *exchange) exchangeState {
	switch state {
	case stateAssemble:
		return o.assemble(ctx, ex)
	case stateCallRemote:
		return o.callRemote(ctx, ex)
	case stateToolRound:
		return o.toolRound(ctx, ex)
	case stateFinal:
		return o.final(ctx, ex)
	case stateError:
		if errors.Is(ex.err, domain.ErrRateLimited) && o.opts.RateLimitPause > 0 {
			o.sleep(ctx, o.opts.RateLimitPause)
		}
		return stateDone
	default:
		return stateDone
	}
}

func (o *Orchestrator) assemble(ctx context.Context, ex *exchange) exchangeState {
	user := ex.req.UserID

	facts, err := o.stores.Facts.Facts(ctx, user)
	if err != nil {
		return ex.fail(fmt.Errorf("load facts: %w", err))
	}
	sharedContext, err := o.stores.Context.List(ctx)
	if err != nil {
		return ex.fail(fmt.Errorf("load shared context: %w", err))
	}
	learning, err := o.stores.Learning.List(ctx)
	if err != nil {
		return ex.fail(fmt.Errorf("load learning examples: %w", err))
	}
	history, err := o.stores.History.History(ctx, user)
	if err != nil {
		return ex.fail(fmt.Errorf("load history: %w", err))
	}
	override, err := o.stores.Configs.Override(ctx, user)
	if err != nil {
		return ex.fail(fmt.Errorf("load user config: %w", err))
	}

	ex.config = override.Resolve(o.opts.Defaults)
	ex.messages = AssemblePrompt(PromptInput{
		Template:      o.opts.Persona.Template,
		UserID:        user,
		DisplayName:   ex.req.DisplayName,
		Prompt:        o.augmentPrompt(ctx, ex),
		Facts:         facts,
		SharedContext: sharedContext,
		Learning:      learning,
		History:       history,
	})
	ex.round = 0

	return stateCallRemote
}

// augmentPrompt appends web search results when the prompt asks for a
// search. History keeps the prompt as the user wrote it.
func (o *Orchestrator) augmentPrompt(ctx context.Context, ex *exchange) string {
	prompt := ex.req.Prompt
	query, ok := domain.ParseSearchQuery(prompt)
	if !ok {
		return prompt
	}

	return prompt + domain.SearchNote(o.opts.Persona.Name, query, o.searchResults(ctx, ex, query))
}

func (o *Orchestrator) searchResults(ctx context.Context, ex *exchange, query string) string {
	if o.opts.Searcher == nil {
		return domain.SearchDisabledText
	}

	digest, err := o.opts.Searcher.Search(ctx, query)
	if err != nil {
		ex.logger.Warn().Err(err).Str("query", query).Msg("web search failed")
		var statusErr *domain.StatusError
		if errors.As(err, &statusErr) {
			return fmt.Sprintf("Search error (%d).", statusErr.StatusCode)
		}
		return domain.SearchFailedText
	}
	return digest.Text()
}

func (o *Orchestrator) callRemote(ctx context.Context, ex *exchange) exchangeState {
	resp, err := o.model.Complete(ctx, domain.CompletionRequest{
		Config:   ex.config,
		Messages: ex.messages,
		Tools:    domain.ToolDefinitions(),
	})
	if err != nil {
		return ex.fail(err)
	}

	reply := resp.Message
	reply.Role = domain.RoleAssistant
	reply.ToolCalls = slices.Clone(reply.ToolCalls)
	for i := range reply.ToolCalls {
		if reply.ToolCalls[i].ID == "" {
			reply.ToolCalls[i].ID = "call_" + uuid.NewString()
		}
	}
	ex.messages = append(ex.messages, reply)
	ex.reply = reply

	switch {
	case len(reply.ToolCalls) > 0:
		return stateToolRound
	case strings.TrimSpace(reply.Content) != "":
		return stateFinal
	default:
		return ex.fail(fmt.Errorf("%w: finish reason %q", domain.ErrEmptyReply, resp.FinishReason))
	}
}

func (o *Orchestrator) toolRound(ctx context.Context, ex *exchange) exchangeState {
	for _, call := range ex.reply.ToolCalls {
		ex.messages = append(ex.messages, o.dispatcher.Dispatch(ctx, ex.req.UserID, call))
		ex.toolCalls++
	}
	ex.round++

	if ex.round >= domain.MaxToolRounds {
		return ex.fail(fmt.Errorf("%w: gave up after %d rounds", domain.ErrTooManyToolRounds, ex.round))
	}
	return stateCallRemote
}

func (o *Orchestrator) final(ctx context.Context, ex *exchange) exchangeState {
	ex.answer = domain.TruncateAnswer(strings.TrimSpace(ex.reply.Content), o.opts.MaxAnswerLength)

	err := o.stores.History.Append(ctx, ex.req.UserID,
		domain.Turn{Role: domain.RoleUser, Text: domain.FormatUserPrompt(ex.req.DisplayName, ex.req.Prompt)},
		domain.Turn{Role: domain.RoleAssistant, Text: ex.answer},
	)
	if err != nil {
		ex.logger.Warn().Err(err).Msg("append history")
	}

	return stateDone
}

func (ex *exchange) fail(err error) exchangeState {
	ex.err = err
	return stateError
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

type userLocks struct {
	mu    sync.Mutex
	locks map[domain.UserID]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func (l *userLocks) lock(user domain.UserID) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[domain.UserID]*userLock)
	}
	entry, ok := l.locks[user]
	if !ok {
		entry = &userLock{}
		l.locks[user] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, user)
		}
		l.mu.Unlock()
	}
}
