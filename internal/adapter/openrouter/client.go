// Package openrouter implements the model provider port against the
// OpenRouter chat completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/synod-io/synod/internal/domain"
	"github.com/synod-io/synod/internal/domain/catalog"
	"github.com/synod-io/synod/internal/port/provider"
	"github.com/synod-io/synod/internal/resilience"
	"github.com/synod-io/synod/internal/sessions"
)

const (
	providerName   = "openrouter"
	defaultBaseURL = "https://openrouter.ai/api/v1"

	// Model replies can take minutes for reasoning-heavy prompts.
	defaultTimeout = 120 * time.Second
)

// Client talks to the OpenRouter API.
type Client struct {
	baseURL    string
	mu         sync.RWMutex // guards apiKey, which can rotate at runtime
	apiKey     string
	referer    string
	appTitle   string
	httpClient *http.Client
	breaker    *resilience.Breaker
	pool       *sessions.Pool
}

// NewClient creates a new OpenRouter client. An empty baseURL selects
// the public endpoint.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// SetPool attaches a concurrency pool to all outgoing HTTP calls.
func (c *Client) SetPool(p *sessions.Pool) {
	c.pool = p
}

// SetAttribution sets the optional HTTP-Referer and X-Title headers
// OpenRouter uses for app attribution.
func (c *Client) SetAttribution(referer, appTitle string) {
	c.referer = referer
	c.appTitle = appTitle
}

// SetTimeout overrides the per-request HTTP timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.httpClient.Timeout = d
	}
}

// SetAPIKey replaces the bearer token used for subsequent requests, e.g.
// after a SIGHUP secret reload. In-flight requests keep the key they
// started with.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
}

// BreakerState reports the circuit state, or "disabled" when no breaker
// is attached. The health endpoint surfaces this.
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State()
}

// Name returns "openrouter".
func (c *Client) Name() string { return providerName }

// chatRequest is the chat completions request body.
type chatRequest struct {
	Model    string             `json:"model"`
	Messages []provider.Message `json:"messages"`
}

// chatResponse is the subset of the chat completions reply we consume.
// OpenRouter can return an error object with a 200 status (e.g. for
// moderation blocks), so Error is checked even on success.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Query sends the messages to the identified model and returns its reply
// text. Empty completions are reported as errors so callers never mistake
// them for answers.
func (c *Client) Query(ctx context.Context, modelID string, messages []provider.Message) (string, error) {
	body, err := json.Marshal(chatRequest{Model: modelID, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		return "", fmt.Errorf("query %s: %w", modelID, err)
	}

	var result chatResponse
	if err := json.Unmarshal(resp, &result); err != nil {
		return "", fmt.Errorf("unmarshal chat response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("openrouter error %d: %s", result.Error.Code, result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("openrouter: no choices in response")
	}
	text := result.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", errors.New("openrouter: empty completion")
	}
	return text, nil
}

// modelEntry is one entry of the /models listing.
type modelEntry struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	ContextLength       int      `json:"context_length"`
	SupportedParameters []string `json:"supported_parameters"`
}

// ListModels returns the provider's model catalog, unordered.
func (c *Client) ListModels(ctx context.Context) ([]catalog.ModelInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	var result struct {
		Data []modelEntry `json:"data"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("unmarshal models: %w", err)
	}

	models := make([]catalog.ModelInfo, 0, len(result.Data))
	for _, m := range result.Data {
		models = append(models, catalog.ModelInfo{
			ID:            m.ID,
			Name:          m.Name,
			ContextLength: m.ContextLength,
			Reasoning: slices.Contains(m.SupportedParameters, "reasoning") ||
				slices.Contains(m.SupportedParameters, "include_reasoning"),
		})
	}
	return models, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var result []byte
	call := func() error {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		c.mu.RLock()
		apiKey := c.apiKey
		c.mu.RUnlock()

		req.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+apiKey)
		}
		if c.referer != "" {
			req.Header.Set("HTTP-Referer", c.referer)
		}
		if c.appTitle != "" {
			req.Header.Set("X-Title", c.appTitle)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("openrouter API error %d: %w", resp.StatusCode, domain.ErrUnavailable)
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("openrouter API error %d: %s", resp.StatusCode, string(data))
		}

		result = data
		return nil
	}

	guarded := call
	if c.breaker != nil {
		guarded = func() error { return c.breaker.Execute(call) }
	}

	if err := c.pool.Run(ctx, guarded); err != nil {
		return nil, err
	}
	return result, nil
}
