package llm

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/openai/openai-go"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Kind categorizes an LLM failure.
type Kind int

const (
	// KindUnknown is any failure not matched below.
	KindUnknown Kind = iota
	// KindAPIKey indicates a missing, malformed, or revoked API key.
	KindAPIKey
	// KindQuota indicates the quota was exhausted or the caller was rate limited.
	KindQuota
	// KindNetwork indicates a connectivity problem or a provider-side 5xx.
	KindNetwork
	// KindTimeout indicates the call exceeded its deadline.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindAPIKey:
		return "api_key"
	case KindQuota:
		return "quota"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is a classified LLM failure.
type Error struct {
	Kind     Kind
	Provider string
	// Code is the HTTP status when the provider returned one.
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	prefix := e.Provider
	if prefix == "" {
		prefix = "llm"
	}
	if e.Err != nil {
		return prefix + ": " + e.Message + ": " + e.Err.Error()
	}
	return prefix + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, classifying it if it is not already an *Error.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Classify("", err).Kind
}

// Classify analyzes an error from a provider SDK and returns an *Error with
// the appropriate Kind. Provider status codes take precedence over message
// matching.
func Classify(provider string, err error) *Error {
	if err == nil {
		return nil
	}
	var already *Error
	if errors.As(err, &already) {
		return already
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Provider: provider, Message: "request timed out", Err: err}
	}

	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return classifyStatus(provider, gErr.Code, gErr.Message, err)
	}
	var gErrPtr *genai.APIError
	if errors.As(err, &gErrPtr) {
		return classifyStatus(provider, gErrPtr.Code, gErrPtr.Message, err)
	}
	var oErr *openai.Error
	if errors.As(err, &oErr) {
		return classifyStatus(provider, oErr.StatusCode, oErr.Message, err)
	}

	if isTimeout(err) {
		return &Error{Kind: KindTimeout, Provider: provider, Message: "request timed out", Err: err}
	}

	errLower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errLower, "api key not valid") ||
		strings.Contains(errLower, "invalid api key") ||
		strings.Contains(errLower, "incorrect api key") ||
		strings.Contains(errLower, "api_key_invalid") ||
		strings.Contains(errLower, "api key") ||
		strings.Contains(errLower, "permission denied"):
		return &Error{Kind: KindAPIKey, Provider: provider, Message: "API key is invalid or has been revoked", Err: err}

	case strings.Contains(errLower, "quota") ||
		strings.Contains(errLower, "resource exhausted") ||
		strings.Contains(errLower, "rate limit") ||
		strings.Contains(errLower, "too many requests"):
		return &Error{Kind: KindQuota, Provider: provider, Message: "API quota exceeded or rate limited", Err: err}

	case strings.Contains(errLower, "connection") ||
		strings.Contains(errLower, "network") ||
		strings.Contains(errLower, "fetch") ||
		strings.Contains(errLower, "dial") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "unreachable"):
		return &Error{Kind: KindNetwork, Provider: provider, Message: "network error", Err: err}

	default:
		return &Error{Kind: KindUnknown, Provider: provider, Message: "generation failed", Err: err}
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "deadline exceeded")
}

// classifyStatus categorizes a provider HTTP status code.
func classifyStatus(provider string, code int, message string, err error) *Error {
	e := &Error{Provider: provider, Code: code, Err: err}
	switch {
	case code == 400:
		// Gemini answers a malformed key with 400 API_KEY_INVALID.
		if strings.Contains(strings.ToLower(message), "api key") {
			e.Kind, e.Message = KindAPIKey, "bad request - API key may be malformed"
		} else {
			e.Kind, e.Message = KindUnknown, "bad request"
		}
	case code == 401 || code == 403:
		e.Kind, e.Message = KindAPIKey, "API key is invalid, expired, or lacks permissions"
	case code == 408 || code == 504:
		e.Kind, e.Message = KindTimeout, "provider timed out"
	case code == 429:
		e.Kind, e.Message = KindQuota, "API rate limit exceeded - try again later"
	case code >= 500:
		e.Kind, e.Message = KindNetwork, "provider server error - try again later"
	default:
		e.Kind, e.Message = KindUnknown, message
	}
	log.Debug().
		Str("provider", provider).
		Int("code", code).
		Str("kind", e.Kind.String()).
		Msg("Classified LLM API error")
	return e
}
