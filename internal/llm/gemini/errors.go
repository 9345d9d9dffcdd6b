package gemini

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/HerbHall/sentinel/internal/llm"
)

// mapError translates API and network errors into typed llm.ProviderError values.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	// Context errors and client timeouts.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return llm.NewProviderError(llm.ErrCodeTimeout, "request timed out or cancelled", err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return llm.NewProviderError(llm.ErrCodeTimeout, "request timed out", err)
	}

	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == 401 || se.StatusCode == 403:
			return llm.NewProviderError(llm.ErrCodeAuthentication, se.Message, err)
		case se.StatusCode == 404:
			return llm.NewProviderError(llm.ErrCodeModelNotFound, se.Message, err)
		case se.StatusCode == 429 || se.StatusCode >= 500:
			return llm.NewProviderError(llm.ErrCodeServerError, se.Message, err)
		case se.StatusCode >= 400:
			return llm.NewProviderError(llm.ErrCodeInvalidRequest, se.Message, err)
		}
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "dial tcp") {
		return llm.NewProviderError(llm.ErrCodeServerError, "gemini endpoint unreachable", err)
	}

	return llm.NewProviderError(llm.ErrCodeServerError, "gemini error", err)
}
