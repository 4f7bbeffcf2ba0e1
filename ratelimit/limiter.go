package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	// Window is the span over which token usage is summed.
	Window = 60 * time.Second

	// SafetyMargin is added to quota waits so the oldest entry has
	// certainly left the window when the caller resumes.
	SafetyMargin = 100 * time.Millisecond
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid rate limit config")

// Config holds the limiter's budget.
type Config struct {
	// MaxTokensPerMinute is the quota over the trailing Window.
	MaxTokensPerMinute int `json:"max_tokens_per_minute" yaml:"max_tokens_per_minute"`

	// MinInterval is the minimum spacing between admitted requests.
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`
}

// DefaultConfig mirrors the defaults of the interactive CLI.
func DefaultConfig() Config {
	return Config{
		MaxTokensPerMinute: 20000,
		MinInterval:        time.Second,
	}
}

// Validate checks the budget.
func (c Config) Validate() error {
	if c.MaxTokensPerMinute <= 0 {
		return fmt.Errorf("%w: max tokens per minute must be positive, got %d", ErrInvalidConfig, c.MaxTokensPerMinute)
	}
	if c.MinInterval < 0 {
		return fmt.Errorf("%w: min interval must not be negative, got %s", ErrInvalidConfig, c.MinInterval)
	}
	return nil
}

// sample is one recorded request.
type sample struct {
	at     time.Time
	tokens int
}

// Stats is a snapshot of limiter accounting.
type Stats struct {
	MaxTokensPerMinute int           `json:"max_tokens_per_minute"`
	MinInterval        time.Duration `json:"min_interval"`
	CurrentUsage       int           `json:"current_usage"`
	LifetimeUsage      uint64        `json:"lifetime_usage"`
	Requests           int           `json:"requests_in_window"`
	LastRequest        time.Time     `json:"last_request"`
}

// Limiter is a sliding-window token budget with minimum request spacing.
type Limiter struct {
	mu          sync.Mutex
	maxTPM      int
	minInterval time.Duration
	window      []sample
	lastRequest time.Time
	hasLast     bool
	lifetime    uint64

	clock  Clock
	logger *slog.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock sets the clock used by Wait.
func WithClock(c Clock) Option {
	return func(l *Limiter) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithLogger sets the logger for wait events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a limiter. Invalid budgets fall back to DefaultConfig values
// field by field.
func New(cfg Config, opts ...Option) *Limiter {
	def := DefaultConfig()
	if cfg.MaxTokensPerMinute <= 0 {
		cfg.MaxTokensPerMinute = def.MaxTokensPerMinute
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}

	l := &Limiter{
		maxTPM:      cfg.MaxTokensPerMinute,
		minInterval: cfg.MinInterval,
		clock:       SystemClock(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends a usage sample taken at now and prunes expired samples.
// Negative counts are recorded as zero.
func (l *Limiter) Record(tokens int, now time.Time) {
	if tokens < 0 {
		tokens = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.window = append(l.window, sample{at: now, tokens: tokens})
	l.lifetime += uint64(tokens)
	l.prune(now)
}

// RefineLast replaces the token count of the most recent sample, keeping its
// timestamp. The lifetime counter is adjusted upward only, so it never
// decreases. It reports whether there was a sample to refine.
func (l *Limiter) RefineLast(tokens int) bool {
	if tokens < 0 {
		tokens = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.window) == 0 {
		return false
	}
	last := &l.window[len(l.window)-1]
	if tokens > last.tokens {
		l.lifetime += uint64(tokens - last.tokens)
	}
	last.tokens = tokens
	return true
}

// Admit computes how long a request arriving at now must wait and marks
// now as the last request time. It does not sleep.
func (l *Limiter) Admit(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	var intervalWait time.Duration
	if l.hasLast {
		if elapsed := now.Sub(l.lastRequest); elapsed < l.minInterval {
			intervalWait = l.minInterval - elapsed
		}
	}

	wait := intervalWait
	if quotaWait := l.quotaWait(now, now.Add(intervalWait)); quotaWait > wait {
		wait = quotaWait
	}

	l.lastRequest = now
	l.hasLast = true
	return wait
}

// quotaWait returns the wait, measured from now, until the window as seen at
// resume drops its oldest sample. It is zero while under budget. The window
// itself is pruned only up to now.
func (l *Limiter) quotaWait(now, resume time.Time) time.Duration {
	l.prune(now)
	live := l.window[l.firstLive(resume):]
	if len(live) == 0 {
		return 0
	}
	total := 0
	for _, s := range live {
		total += s.tokens
	}
	if total < l.maxTPM {
		return 0
	}
	until := live[0].at.Add(Window + SafetyMargin)
	if d := until.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Wait admits a request at the clock's current time and blocks for the
// required duration. It returns the time waited, or the context error if ctx
// ends first.
func (l *Limiter) Wait(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	d := l.Admit(l.clock.Now())
	if d <= 0 {
		l.logger.Debug("rate limiter admitted request", "wait", d)
		return 0, nil
	}

	l.logger.Info("rate limiter delaying request", "wait", d, "usage", l.CurrentUsage(l.clock.Now()))
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-l.clock.After(d):
		return d, nil
	}
}

// CurrentUsage returns the sum of samples inside the window ending at now.
func (l *Limiter) CurrentUsage(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)
	return l.sum()
}

// LifetimeUsage returns every token ever recorded.
func (l *Limiter) LifetimeUsage() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lifetime
}

// SetLimits changes the budget in place. The window is kept. Non-positive
// tpm and negative intervals are ignored.
func (l *Limiter) SetLimits(tpm int, minInterval time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tpm > 0 {
		l.maxTPM = tpm
	}
	if minInterval >= 0 {
		l.minInterval = minInterval
	}
}

// Stats returns a snapshot of the accounting at now.
func (l *Limiter) Stats(now time.Time) Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)
	s := Stats{
		MaxTokensPerMinute: l.maxTPM,
		MinInterval:        l.minInterval,
		CurrentUsage:       l.sum(),
		LifetimeUsage:      l.lifetime,
		Requests:           len(l.window),
	}
	if l.hasLast {
		s.LastRequest = l.lastRequest
	}
	return s
}

// prune drops samples older than Window relative to now. A sample exactly
// Window old is kept. Must be called with mu held.
func (l *Limiter) prune(now time.Time) {
	if i := l.firstLive(now); i > 0 {
		l.window = append(l.window[:0], l.window[i:]...)
	}
}

// firstLive returns the index of the first sample inside the window ending
// at now. Samples are appended in time order.
func (l *Limiter) firstLive(now time.Time) int {
	cutoff := now.Add(-Window)
	i := 0
	for i < len(l.window) && l.window[i].at.Before(cutoff) {
		i++
	}
	return i
}

// sum must be called with mu held.
func (l *Limiter) sum() int {
	total := 0
	for _, s := range l.window {
		total += s.tokens
	}
	return total
}
