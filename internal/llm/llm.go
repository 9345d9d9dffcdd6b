// Package llm defines the provider contract used to ask a language model for
// free-text analysis, plus typed errors shared by provider adapters.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Provider generates a completion for a single prompt.
type Provider interface {
	Generate(ctx context.Context, prompt string, opts ...Option) (*Response, error)
}

// Response is a completed generation.
type Response struct {
	Content string
	Model   string
}

// Options control a single generation request.
type Options struct {
	Temperature *float64
	MaxTokens   int
	Model       string
}

// Option mutates Options.
type Option func(*Options)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Options) { o.Temperature = &t }
}

// WithMaxTokens caps the number of generated tokens.
func WithMaxTokens(n int) Option {
	return func(o *Options) { o.MaxTokens = n }
}

// WithModel overrides the provider's default model for one request.
func WithModel(m string) Option {
	return func(o *Options) { o.Model = m }
}

// Apply folds opts into a fresh Options value.
func Apply(opts ...Option) Options {
	var o Options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// ErrorCode classifies provider failures.
type ErrorCode string

const (
	ErrCodeAuthentication ErrorCode = "authentication"
	ErrCodeTimeout        ErrorCode = "timeout"
	ErrCodeServerError    ErrorCode = "server_error"
	ErrCodeInvalidRequest ErrorCode = "invalid_request"
	ErrCodeModelNotFound  ErrorCode = "model_not_found"
	ErrCodeEmptyResponse  ErrorCode = "empty_response"
)

// ProviderError is returned by adapters for every failed generation.
type ProviderError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// NewProviderError builds a ProviderError wrapping err.
func NewProviderError(code ErrorCode, msg string, err error) *ProviderError {
	return &ProviderError{Code: code, Message: msg, Err: err}
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("llm %s: %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Code extracts the ErrorCode of err, or "" if err is not a ProviderError.
func Code(err error) ErrorCode {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
