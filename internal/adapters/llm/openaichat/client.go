package openaichat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/neruai/internal/domain"
	"github.com/bnema/neruai/internal/ports"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultTimeout = 60 * time.Second
)

type Config struct {
	APIKey  string
	BaseURL string
	// Referer and Title are sent as OpenRouter attribution headers when set.
	Referer    string
	Title      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to any OpenAI-compatible chat completions endpoint.
type Client struct {
	api    *openai.Client
	logger zerolog.Logger
}

var _ ports.ChatModel = (*Client)(nil)

func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ErrMissingCredentials
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	wrapped := *httpClient
	if wrapped.Timeout == 0 {
		wrapped.Timeout = cfg.Timeout
	}
	wrapped.Transport = headerTransport{base: httpClient.Transport, headers: attributionHeaders(cfg)}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	apiCfg.HTTPClient = &wrapped

	return &Client{
		api:    openai.NewClientWithConfig(apiCfg),
		logger: logger.With().Str("component", "chat_model").Logger(),
	}, nil
}

func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResponse, error) {
	started := time.Now()

	resp, err := c.api.CreateChatCompletion(ctx, toChatRequest(req))
	if err != nil {
		mapped := classifyError(ctx, err)
		c.logger.Debug().Err(err).Str("model", req.Config.Model).Dur("elapsed", time.Since(started)).Msg("chat completion failed")
		return domain.CompletionResponse{}, mapped
	}
	if len(resp.Choices) == 0 {
		return domain.CompletionResponse{}, fmt.Errorf("%w: no choices in response", domain.ErrMalformedReply)
	}

	choice := resp.Choices[0]
	c.logger.Debug().
		Str("model", req.Config.Model).
		Str("finish_reason", string(choice.FinishReason)).
		Int("tool_calls", len(choice.Message.ToolCalls)).
		Int("total_tokens", resp.Usage.TotalTokens).
		Dur("elapsed", time.Since(started)).
		Msg("chat completion")

	return domain.CompletionResponse{
		Message:      fromChatMessage(choice.Message),
		FinishReason: string(choice.FinishReason),
	}, nil
}

func toChatRequest(req domain.CompletionRequest) openai.ChatCompletionRequest {
	out := openai.ChatCompletionRequest{
		Model:            req.Config.Model,
		Messages:         make([]openai.ChatCompletionMessage, 0, len(req.Messages)),
		MaxTokens:        req.Config.MaxTokens,
		Temperature:      float32(req.Config.Temperature),
		TopP:             float32(req.Config.TopP),
		FrequencyPenalty: float32(req.Config.FrequencyPenalty),
		PresencePenalty:  float32(req.Config.PresencePenalty),
	}

	for _, msg := range req.Messages {
		out.Messages = append(out.Messages, toChatMessage(msg))
	}

	if len(req.Tools) > 0 {
		out.Tools = make([]openai.Tool, 0, len(req.Tools))
		for _, tool := range req.Tools {
			out.Tools = append(out.Tools, openai.Tool{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        string(tool.Name),
					Description: tool.Description,
					Parameters:  tool.Parameters,
				},
			})
		}
		out.ToolChoice = "auto"
	}

	return out
}

func toChatMessage(msg domain.Message) openai.ChatCompletionMessage {
	out := openai.ChatCompletionMessage{
		Role:       string(msg.Role),
		Content:    msg.Content,
		ToolCallID: msg.ToolCallID,
	}
	for _, call := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, openai.ToolCall{
			ID:   call.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		})
	}
	return out
}

func fromChatMessage(msg openai.ChatCompletionMessage) domain.Message {
	out := domain.Message{
		Role:    domain.RoleAssistant,
		Content: msg.Content,
	}
	for _, call := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, domain.ToolCallRequest{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return out
}

func classifyError(ctx context.Context, err error) error {
	if status := statusCode(err); status != 0 {
		if status == http.StatusTooManyRequests {
			return &domain.StatusError{StatusCode: status, Err: domain.ErrRateLimited}
		}
		return &domain.StatusError{StatusCode: status, Err: domain.ErrRemoteStatus}
	}

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", domain.ErrRemoteTimeout, err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", domain.ErrMalformedReply, err)
	}

	return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func attributionHeaders(cfg Config) map[string]string {
	headers := map[string]string{}
	if cfg.Referer != "" {
		headers["HTTP-Referer"] = cfg.Referer
	}
	if cfg.Title != "" {
		headers["X-Title"] = cfg.Title
	}
	return headers
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if len(t.headers) == 0 {
		return base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}
	return base.RoundTrip(clone)
}
