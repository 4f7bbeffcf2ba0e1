package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Sentinel errors for completion failures.
var (
	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates a server-side or network failure.
	ErrUnavailable = errors.New("completion service unavailable")

	// ErrContextTooLong indicates the prompt exceeds the context window.
	ErrContextTooLong = errors.New("context exceeds maximum length")

	// ErrAuth indicates missing or rejected credentials.
	ErrAuth = errors.New("authentication failed")

	// ErrEmptyResponse indicates the provider returned no text.
	ErrEmptyResponse = errors.New("empty response")

	// ErrTimeout indicates the request timed out.
	ErrTimeout = errors.New("request timed out")
)

// Error wraps completion failures with context.
type Error struct {
	Provider  string // Provider name ("openai", "anthropic", ...)
	Op        string // Operation that failed ("complete")
	Err       error  // Underlying error
	Retryable bool   // Whether the error is likely transient
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new completion error.
func NewError(provider, op string, err error, retryable bool) *Error {
	return &Error{
		Provider:  provider,
		Op:        op,
		Err:       err,
		Retryable: retryable,
	}
}

// IsRetryable checks if an error is likely transient and worth retrying.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}

	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrTimeout)
}

// Classify maps a raw provider error to an *Error wrapping the matching
// sentinel. Providers surface HTTP failures only through their messages,
// so classification is by message content.
func Classify(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewError(provider, op, err, false)
	}

	msg := strings.ToLower(err.Error())
	var (
		sentinel  error
		retryable bool
	)
	switch {
	case authPattern.MatchString(msg):
		sentinel = ErrAuth
	case rateLimitPattern.MatchString(msg):
		sentinel, retryable = ErrRateLimited, true
	case contextPattern.MatchString(msg):
		sentinel = ErrContextTooLong
	case timeoutPattern.MatchString(msg):
		sentinel, retryable = ErrTimeout, true
	case unavailablePattern.MatchString(msg), exhaustedPattern.MatchString(msg):
		sentinel, retryable = ErrUnavailable, true
	default:
		return NewError(provider, op, err, false)
	}
	return NewError(provider, op, fmt.Errorf("%w: %w", sentinel, err), retryable)
}

// Patterns over lowercased messages. Status codes must stand alone so
// numbers such as "max_tokens 1500" do not match.
var (
	authPattern        = regexp.MustCompile(`\b(401|403)\b|unauthorized|forbidden|invalid api key|invalid key|api key not`)
	rateLimitPattern   = regexp.MustCompile(`\b429\b|rate limit|too many requests`)
	contextPattern     = regexp.MustCompile(`context length|too many tokens|maximum context`)
	timeoutPattern     = regexp.MustCompile(`\btimeout\b|timed out`)
	unavailablePattern = regexp.MustCompile(`\b(500|502|503|504)\b|internal server|bad gateway|unavailable|connection refused|connection reset|\beof\b`)

	// gollm drops the provider error once its own attempts are spent and
	// reports only this summary.
	exhaustedPattern = regexp.MustCompile(`failed to generate after \d+ attempts?`)
)
