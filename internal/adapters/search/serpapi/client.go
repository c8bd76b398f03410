package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/neruai/internal/domain"
	"github.com/bnema/neruai/internal/ports"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://serpapi.com"
	DefaultEngine  = "google"
	DefaultTimeout = 15 * time.Second

	errorBodyLimit = 512
)

type Config struct {
	APIKey     string
	BaseURL    string
	Engine     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client queries the SerpApi search.json endpoint.
type Client struct {
	apiKey     string
	endpoint   string
	engine     string
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ ports.WebSearcher = (*Client)(nil)

func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ErrMissingCredentials
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Engine == "" {
		cfg.Engine = DefaultEngine
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + "/search.json",
		engine:     cfg.Engine,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "web_search").Logger(),
	}, nil
}

type searchResponse struct {
	AnswerBox *struct {
		Answer  string `json:"answer"`
		Snippet string `json:"snippet"`
	} `json:"answer_box"`
	KnowledgeGraph *struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Source      struct {
			Link string `json:"link"`
		} `json:"source"`
	} `json:"knowledge_graph"`
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

func (c *Client) Search(ctx context.Context, query string) (domain.SearchDigest, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("engine", c.engine)
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return domain.SearchDigest{}, fmt.Errorf("%w: build request: %w", domain.ErrSearchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.SearchDigest{}, fmt.Errorf("%w: %w", domain.ErrSearchFailed, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		c.logger.Warn().Int("status", resp.StatusCode).Str("body", strings.TrimSpace(string(body))).Msg("search request rejected")
		return domain.SearchDigest{}, &domain.StatusError{StatusCode: resp.StatusCode, Err: domain.ErrSearchFailed}
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.SearchDigest{}, fmt.Errorf("%w: decode response: %w", domain.ErrSearchFailed, err)
	}

	digest := toDigest(decoded)
	c.logger.Debug().Int("hits", len(digest.Results)).Dur("elapsed", time.Since(started)).Msg("search answered")
	return digest, nil
}

func toDigest(resp searchResponse) domain.SearchDigest {
	var digest domain.SearchDigest
	if ab := resp.AnswerBox; ab != nil {
		digest.Summary = ab.Answer
		if digest.Summary == "" {
			digest.Summary = ab.Snippet
		}
	}
	if kg := resp.KnowledgeGraph; kg != nil && kg.Title != "" && kg.Description != "" {
		digest.Info = kg.Title + ": " + kg.Description
		digest.InfoSource = kg.Source.Link
	}
	for _, r := range resp.OrganicResults {
		digest.Results = append(digest.Results, domain.SearchHit{Title: r.Title, Snippet: r.Snippet, Link: r.Link})
	}
	return digest
}

// redact keeps the api key out of url errors, which quote the request URL.
func redact(err error, apiKey string) error {
	return errors.New(strings.ReplaceAll(err.Error(), url.QueryEscape(apiKey), "REDACTED"))
}
