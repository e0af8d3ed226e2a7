package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/skilltree-backend/internal/platform/httpx"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

const DefaultBaseURL = "https://api.openai.com"

// TextRequest carries everything needed for one Responses API call. Per-call
// credentials let callers read configuration from storage on every request.
type TextRequest struct {
	BaseURL         string
	APIKey          string
	Model           string
	System          string
	User            string
	MaxOutputTokens int
	Temperature     *float64
}

type TextResult struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Client is the OpenAI API client used by the AI providers.
type Client interface {
	GenerateText(ctx context.Context, req TextRequest) (TextResult, error)
}

type Options struct {
	Timeout    time.Duration
	MaxRetries int
	// Models matching these ids or "prefix*" patterns never get a temperature.
	NoTempModels []string
	NoTempTTL    time.Duration
}

type client struct {
	log        *logger.Logger
	httpClient *http.Client
	maxRetries int

	noTempModels   map[string]bool
	noTempPrefixes []string

	// Runtime learning: if a model rejects temperature, remember for TTL and omit thereafter.
	noTempMu   sync.RWMutex
	noTempSeen map[string]time.Time
	noTempTTL  time.Duration
}

func NewClient(log *logger.Logger, opts Options) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 180 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.NoTempTTL <= 0 {
		opts.NoTempTTL = 24 * time.Hour
	}
	models, prefixes := parseNoTempModelRules(opts.NoTempModels)
	return &client{
		log:            log.With("service", "OpenAIClient"),
		httpClient:     httpx.NewClient(opts.Timeout),
		maxRetries:     opts.MaxRetries,
		noTempModels:   models,
		noTempPrefixes: prefixes,
		noTempSeen:     map[string]time.Time{},
		noTempTTL:      opts.NoTempTTL,
	}, nil
}

func parseNoTempModelRules(rules []string) (map[string]bool, []string) {
	models := map[string]bool{}
	var prefixes []string
	for _, r := range rules {
		r = normalizeModelKey(r)
		if r == "" {
			continue
		}
		if strings.HasSuffix(r, "*") {
			prefixes = append(prefixes, strings.TrimSuffix(r, "*"))
			continue
		}
		models[r] = true
	}
	return models, prefixes
}

func normalizeModelKey(model string) string {
	return strings.ToLower(strings.TrimSpace(model))
}

func (c *client) modelIsNoTemp(model string) bool {
	m := normalizeModelKey(model)
	if m == "" {
		return false
	}
	if c.noTempModels[m] {
		return true
	}
	for _, p := range c.noTempPrefixes {
		if strings.HasPrefix(m, p) {
			return true
		}
	}
	c.noTempMu.RLock()
	ts, ok := c.noTempSeen[m]
	ttl := c.noTempTTL
	c.noTempMu.RUnlock()
	if !ok {
		return false
	}
	return time.Since(ts) < ttl
}

func (c *client) noteNoTempModel(model string) {
	m := normalizeModelKey(model)
	if m == "" {
		return
	}
	c.noTempMu.Lock()
	c.noTempSeen[m] = time.Now().UTC()
	c.noTempMu.Unlock()
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func isUnsupportedTemperatureParam(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "temperature") {
		return false
	}
	for _, marker := range []string{
		"unsupported parameter",
		"unknown parameter",
		"unrecognized parameter",
		"not supported",
		"does not support",
		"only the default",
		"unsupported_value",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// -------------------- Responses API --------------------

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model           string         `json:"model"`
	Input           []inputMessage `json:"input"`
	MaxOutputTokens int            `json:"max_output_tokens,omitempty"`
	Temperature     *float64       `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Model  string `json:"model"`
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage,omitempty"`
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					out.WriteString(c.Text)
				}
			}
		}
	}
	return out.String()
}

func (c *client) GenerateText(ctx context.Context, in TextRequest) (TextResult, error) {
	if strings.TrimSpace(in.APIKey) == "" {
		return TextResult{}, errors.New("openai api key required")
	}
	if strings.TrimSpace(in.Model) == "" {
		return TextResult{}, errors.New("openai model required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(in.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	req := responsesRequest{
		Model:           in.Model,
		MaxOutputTokens: in.MaxOutputTokens,
	}
	if s := strings.TrimSpace(in.System); s != "" {
		req.Input = append(req.Input, inputMessage{Role: "system", Content: s})
	}
	req.Input = append(req.Input, inputMessage{Role: "user", Content: in.User})
	if in.Temperature != nil && !c.modelIsNoTemp(in.Model) {
		req.Temperature = in.Temperature
	}

	var resp responsesResponse
	err := c.do(ctx, baseURL, in.APIKey, "/v1/responses", &req, &resp)
	if err != nil && req.Temperature != nil && isUnsupportedTemperatureParam(err) {
		// Learn + retry once without temperature.
		c.noteNoTempModel(req.Model)
		req.Temperature = nil
		err = c.do(ctx, baseURL, in.APIKey, "/v1/responses", &req, &resp)
	}
	if err != nil {
		return TextResult{}, err
	}
	if resp.Refusal != "" {
		return TextResult{}, fmt.Errorf("model refused: %s", resp.Refusal)
	}
	text := extractOutputText(resp)
	if strings.TrimSpace(text) == "" {
		return TextResult{}, fmt.Errorf("no output_text found in response")
	}
	return TextResult{
		Text:         text,
		Model:        resp.Model,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}

func (c *client) do(ctx context.Context, baseURL, apiKey, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	var raw []byte
	err = httpx.Do(ctx, c.log, "openai "+path, c.maxRetries, func(ctx context.Context) (*http.Response, error) {
		resp, b, err := c.doOnce(ctx, baseURL+path, apiKey, payload)
		raw = b
		return resp, err
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if uErr := json.Unmarshal(raw, out); uErr != nil {
		return fmt.Errorf("openai decode error: %w", uErr)
	}
	return nil
}

func (c *client) doOnce(ctx context.Context, url, apiKey string, payload []byte) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}
