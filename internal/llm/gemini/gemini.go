// Package gemini is an llm.Provider backed by the Google Generative Language
// REST API.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/llm"
	"github.com/HerbHall/sentinel/internal/version"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-3-flash-preview"
)

// Config holds the adapter settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls generateContent. It never retries.
type Client struct {
	http   *resty.Client
	apiKey string
	model  string
	logger *zap.Logger
}

var _ llm.Provider = (*Client)(nil)

// New builds a Client. Empty fields take their defaults.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", version.UserAgent())

	return &Client{
		http:   client,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		logger: logger,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Model returns the default model name.
func (c *Client) Model() string { return c.model }

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends prompt as a single user turn and returns the concatenated
// text of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Response, error) {
	if !c.Configured() {
		return nil, llm.NewProviderError(llm.ErrCodeAuthentication, "no API key configured", nil)
	}

	o := llm.Apply(opts...)
	model := c.model
	if o.Model != "" {
		model = o.Model
	}

	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	if o.Temperature != nil || o.MaxTokens > 0 {
		req.GenerationConfig = &generationConfig{Temperature: o.Temperature, MaxOutputTokens: o.MaxTokens}
	}

	var out generateResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", c.apiKey).
		SetPathParam("model", model).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		c.logger.Warn("gemini request failed", zap.String("model", model), zap.Error(err))
		return nil, mapError(err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		c.logger.Warn("gemini returned error",
			zap.String("model", model),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", msg),
		)
		return nil, mapError(&statusError{StatusCode: resp.StatusCode(), Message: msg})
	}

	text := firstCandidateText(out)
	if text == "" {
		return nil, llm.NewProviderError(llm.ErrCodeEmptyResponse, "response contained no text", nil)
	}
	if out.ModelVersion != "" {
		model = out.ModelVersion
	}
	return &llm.Response{Content: text, Model: model}, nil
}

func firstCandidateText(r generateResponse) string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}

// statusError is a non-2xx response from the API.
type statusError struct {
	StatusCode int
	Message    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gemini: %d %s", e.StatusCode, e.Message)
}
