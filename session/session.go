package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/GeneralBots/botcoder/config"
	"github.com/GeneralBots/botcoder/llm"
	"github.com/GeneralBots/botcoder/parser"
	"github.com/GeneralBots/botcoder/ratelimit"
	"github.com/GeneralBots/botcoder/tokens"
	"github.com/GeneralBots/botcoder/tools"
	"github.com/GeneralBots/botcoder/truncate"
)

// ErrEmptyInput is returned by Turn for blank input.
var ErrEmptyInput = errors.New("empty input")

// TurnResult describes one completed turn.
type TurnResult struct {
	// Reply is the cleaned model reply.
	Reply string `json:"reply"`

	// Results holds one entry per executed tool call, in execution order.
	Results []tools.Result `json:"results,omitempty"`

	// Waited is the time spent in the rate limiter.
	Waited time.Duration `json:"waited"`

	// Usage is the token usage recorded for the turn.
	Usage llm.Usage `json:"usage"`
}

// Calls returns the tool calls of the turn.
func (r *TurnResult) Calls() []parser.ToolCall {
	calls := make([]parser.ToolCall, len(r.Results))
	for i, res := range r.Results {
		calls[i] = res.Call
	}
	return calls
}

// Session owns one conversation with the completion service.
type Session struct {
	id       string
	project  string
	system   string
	client   llm.Client
	limiter  *ratelimit.Limiter
	parser   *parser.Parser
	executor *tools.Executor
	counter  tokens.Counter
	clock    ratelimit.Clock
	logger   *slog.Logger

	turnMu sync.Mutex // one turn at a time

	mu               sync.Mutex
	history          []llm.Message
	maxHistory       int
	maxTokens        int
	toolOutputTokens int
}

type options struct {
	logger  *slog.Logger
	runner  tools.Runner
	fs      afero.Fs
	clock   ratelimit.Clock
	limiter *ratelimit.Limiter
	counter tokens.Counter
}

// Option configures a Session.
type Option func(*options)

// WithLogger sets the logger used by the session and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRunner sets the command runner of the tool executor.
func WithRunner(r tools.Runner) Option {
	return func(o *options) { o.runner = r }
}

// WithFs sets the filesystem of the tool executor.
func WithFs(fsys afero.Fs) Option {
	return func(o *options) { o.fs = fsys }
}

// WithClock sets the rate limiter clock.
func WithClock(c ratelimit.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLimiter shares an existing limiter instead of creating one.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(o *options) { o.limiter = l }
}

// WithCounter overrides the configured token counter.
func WithCounter(c tokens.Counter) Option {
	return func(o *options) { o.counter = c }
}

// New creates a session from a validated config.
func New(cfg *config.Config, client llm.Client, opts ...Option) (*Session, error) {
	if client == nil {
		return nil, errors.New("session: nil client")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{clock: ratelimit.SystemClock()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.counter == nil {
		counter, err := cfg.Counter()
		if err != nil {
			return nil, err
		}
		o.counter = counter
	}

	executor := tools.New(cfg.ProjectPath,
		tools.WithLogger(o.logger),
		tools.WithRunner(o.runner),
		tools.WithFs(o.fs),
	)

	system, err := tools.RenderPrompt(cfg.SystemPrompt, executor.Root())
	if err != nil {
		return nil, err
	}

	limiter := o.limiter
	if limiter == nil {
		limiter = ratelimit.New(cfg.RateLimit(), ratelimit.WithClock(o.clock), ratelimit.WithLogger(o.logger))
	}

	var parserOpts []parser.Option
	if cfg.LenientParsing {
		parserOpts = append(parserOpts, parser.WithUnion())
	}

	id := uuid.New().String()
	return &Session{
		id:               id,
		project:          executor.Root(),
		system:           system,
		client:           client,
		limiter:          limiter,
		parser:           parser.New(parserOpts...),
		executor:         executor,
		counter:          o.counter,
		clock:            o.clock,
		logger:           o.logger.With("session", id),
		maxHistory:       cfg.MaxHistory,
		maxTokens:        cfg.MaxTokens,
		toolOutputTokens: cfg.ToolOutputTokens,
	}, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Project returns the absolute project root.
func (s *Session) Project() string {
	return s.project
}

// SystemPrompt returns the rendered system prompt.
func (s *Session) SystemPrompt() string {
	return s.system
}

// Turn sends input as a user message and processes the reply.
func (s *Session) Turn(ctx context.Context, input string) (*TurnResult, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}
	return s.turn(ctx, &llm.Message{Role: llm.RoleUser, Content: input})
}

// Continue runs a turn without new user input, letting the model react to
// the tool results of the previous turn.
func (s *Session) Continue(ctx context.Context) (*TurnResult, error) {
	return s.turn(ctx, nil)
}

func (s *Session) turn(ctx context.Context, user *llm.Message) (*TurnResult, error) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	s.mu.Lock()
	history := append([]llm.Message(nil), s.history...)
	maxTokens := s.maxTokens
	s.mu.Unlock()
	if user != nil {
		history = append(history, *user)
	}

	prompt := renderConversation(s.project, history)
	inputTokens := s.counter.Count(BuildContext(s.system, s.project, history))

	waited, err := s.limiter.Wait(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Log(ctx, config.LevelTrace, "sending prompt", "prompt", prompt)
	resp, err := s.client.Complete(ctx, llm.Request{
		System:    s.system,
		Prompt:    prompt,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	reply := parser.CleanResponse(resp.Text)
	usage := llm.Usage{InputTokens: inputTokens, OutputTokens: s.counter.Count(reply)}
	s.limiter.Record(usage.Total(), s.clock.Now())
	if resp.Usage.Reported && resp.Usage.Total() > 0 {
		s.limiter.RefineLast(resp.Usage.Total())
		usage = resp.Usage
	}

	calls := s.parser.Parse(reply)
	s.logger.Debug("reply parsed", "tool_calls", len(calls), "output_tokens", usage.OutputTokens)

	results := s.executor.ExecuteAll(ctx, calls)
	for i := range results {
		results[i].Output = s.clip(results[i].Call.Name, results[i].Output)
	}

	history = append(history, llm.Message{Role: llm.RoleAssistant, Content: reply})
	if len(results) > 0 {
		history = append(history, ToolResultsMessage(results))
	}

	s.mu.Lock()
	s.history = trimHistory(history, s.maxHistory)
	s.mu.Unlock()

	return &TurnResult{
		Reply:   reply,
		Results: results,
		Waited:  waited,
		Usage:   usage,
	}, nil
}

func (s *Session) clip(tool, output string) string {
	s.mu.Lock()
	limit := s.toolOutputTokens
	s.mu.Unlock()
	return truncate.ToolOutput(s.counter, tool, output, limit)
}

// History returns a copy of the conversation history.
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.Message(nil), s.history...)
}

// Clear empties the conversation history. Rate limiter accounting is kept.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// Usage returns the rate limiter accounting.
func (s *Session) Usage() ratelimit.Stats {
	return s.limiter.Stats(s.clock.Now())
}

// ApplyConfig adopts the tunable settings of a reloaded config: rate
// limits, history size, response cap and tool output cap. The project,
// provider and prompt are fixed for the session's lifetime.
func (s *Session) ApplyConfig(cfg *config.Config) {
	s.limiter.SetLimits(cfg.MaxTokensPerMinute, cfg.MinInterval.Std())

	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.MaxHistory >= 2 {
		s.maxHistory = cfg.MaxHistory
	}
	if cfg.MaxTokens > 0 {
		s.maxTokens = cfg.MaxTokens
	}
	if cfg.ToolOutputTokens >= 0 {
		s.toolOutputTokens = cfg.ToolOutputTokens
	}
	s.logger.Info("session settings updated",
		"max_tokens_per_minute", cfg.MaxTokensPerMinute,
		"min_interval", cfg.MinInterval.Std(),
		"max_history", s.maxHistory)
}
