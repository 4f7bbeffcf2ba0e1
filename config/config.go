package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GeneralBots/botcoder/llm"
	"github.com/GeneralBots/botcoder/ratelimit"
	"github.com/GeneralBots/botcoder/tokens"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// RetryConfig controls completion retries.
type RetryConfig struct {
	MaxRetries int      `json:"max_retries" yaml:"max_retries" toml:"max_retries" jsonschema:"minimum=0"`
	BaseDelay  Duration `json:"base_delay" yaml:"base_delay" toml:"base_delay"`
	MaxDelay   Duration `json:"max_delay" yaml:"max_delay" toml:"max_delay"`
}

// Config holds every botcoder setting.
type Config struct {
	// --- Project ---

	// ProjectPath is the root all tools are confined to.
	ProjectPath string `json:"project_path" yaml:"project_path" toml:"project_path" jsonschema:"default=."`

	// --- Completion service ---

	// Provider is a gollm provider name ("openai", "anthropic", "ollama", ...).
	Provider string `json:"provider" yaml:"provider" toml:"provider" jsonschema:"default=openai"`

	// Model is the provider's model name. Empty picks a provider default.
	Model string `json:"model,omitempty" yaml:"model,omitempty" toml:"model,omitempty"`

	// APIKey authenticates with the provider. Empty lets gollm read the
	// provider's own environment variable.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" toml:"api_key,omitempty"`

	// BaseURL is the Ollama server address or the Azure OpenAI deployment
	// URL. Other providers reject it.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" toml:"base_url,omitempty"`

	// APIVersion is the Azure OpenAI api-version.
	APIVersion string `json:"api_version,omitempty" yaml:"api_version,omitempty" toml:"api_version,omitempty"`

	// MaxTokens caps each response.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens" jsonschema:"minimum=1,default=6000"`

	// Temperature is the sampling temperature.
	Temperature float64 `json:"temperature" yaml:"temperature" toml:"temperature" jsonschema:"minimum=0,maximum=2,default=0.7"`

	Retry RetryConfig `json:"retry" yaml:"retry" toml:"retry"`

	// --- Rate limiting ---

	// MaxTokensPerMinute is the provider quota.
	MaxTokensPerMinute int `json:"max_tokens_per_minute" yaml:"max_tokens_per_minute" toml:"max_tokens_per_minute" jsonschema:"minimum=1,default=20000"`

	// MinInterval is the minimum spacing between requests.
	MinInterval Duration `json:"min_interval" yaml:"min_interval" toml:"min_interval"`

	// --- Conversation ---

	// MaxHistory is the number of messages kept before the oldest are
	// dropped.
	MaxHistory int `json:"max_history" yaml:"max_history" toml:"max_history" jsonschema:"minimum=2,default=40"`

	// ToolOutputTokens caps each tool result fed back to the model.
	// 0 disables clipping.
	ToolOutputTokens int `json:"tool_output_tokens" yaml:"tool_output_tokens" toml:"tool_output_tokens" jsonschema:"minimum=0,default=4000"`

	// TokenCounter selects how tokens are estimated.
	TokenCounter string `json:"token_counter" yaml:"token_counter" toml:"token_counter" jsonschema:"enum=estimate,enum=tiktoken,default=estimate"`

	// SystemPrompt overrides the built-in prompt. It is a text/template
	// receiving {{.Project}}.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty" toml:"system_prompt,omitempty"`

	// LenientParsing accepts simple tool calls alongside patch blocks.
	LenientParsing bool `json:"lenient_parsing,omitempty" yaml:"lenient_parsing,omitempty" toml:"lenient_parsing,omitempty"`

	// --- Logging ---

	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error,default=info"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format" jsonschema:"enum=text,enum=json,default=text"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ProjectPath:        ".",
		Provider:           "openai",
		MaxTokens:          6000,
		Temperature:        0.7,
		Retry:              RetryConfig{MaxRetries: 2, BaseDelay: Duration(time.Second), MaxDelay: Duration(time.Minute)},
		MaxTokensPerMinute: 20000,
		MinInterval:        Duration(time.Second),
		MaxHistory:         40,
		ToolOutputTokens:   4000,
		TokenCounter:       "estimate",
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Validate checks the settings.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.ProjectPath) == "" {
		problems = append(problems, "project_path is required")
	}
	if c.Provider == "" {
		problems = append(problems, "provider is required")
	} else if err := llm.ValidateEndpoint(c.Provider, c.BaseURL); err != nil {
		problems = append(problems, err.Error())
	}
	if c.MaxTokensPerMinute <= 0 {
		problems = append(problems, fmt.Sprintf("max_tokens_per_minute must be > 0, got %d", c.MaxTokensPerMinute))
	}
	if c.MinInterval < 0 {
		problems = append(problems, fmt.Sprintf("min_interval must be >= 0, got %s", c.MinInterval))
	}
	if c.MaxTokens <= 0 {
		problems = append(problems, fmt.Sprintf("max_tokens must be > 0, got %d", c.MaxTokens))
	}
	if c.MaxHistory < 2 {
		problems = append(problems, fmt.Sprintf("max_history must be >= 2, got %d", c.MaxHistory))
	}
	if c.ToolOutputTokens < 0 {
		problems = append(problems, fmt.Sprintf("tool_output_tokens must be >= 0, got %d", c.ToolOutputTokens))
	}
	if c.Retry.MaxRetries < 0 {
		problems = append(problems, fmt.Sprintf("retry.max_retries must be >= 0, got %d", c.Retry.MaxRetries))
	}
	if _, err := tokens.ForName(c.TokenCounter); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("unknown log format %q (valid: text, json)", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// RateLimit returns the limiter budget.
func (c *Config) RateLimit() ratelimit.Config {
	return ratelimit.Config{
		MaxTokensPerMinute: c.MaxTokensPerMinute,
		MinInterval:        c.MinInterval.Std(),
	}
}

// RetryPolicy returns the completion retry policy.
func (c *Config) RetryPolicy() llm.RetryPolicy {
	p := llm.DefaultRetryPolicy()
	p.MaxRetries = c.Retry.MaxRetries
	if c.Retry.BaseDelay > 0 {
		p.BaseDelay = c.Retry.BaseDelay.Std()
	}
	if c.Retry.MaxDelay > 0 {
		p.MaxDelay = c.Retry.MaxDelay.Std()
	}
	return p
}

// Counter returns the configured token counter.
func (c *Config) Counter() (tokens.Counter, error) {
	return tokens.ForName(c.TokenCounter)
}

// Gollm returns the completion client settings.
func (c *Config) Gollm(counter tokens.Counter) llm.GollmConfig {
	return llm.GollmConfig{
		Provider:    c.Provider,
		Model:       c.Model,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		APIVersion:  c.APIVersion,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		Counter:     counter,
	}
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.APIKey != "" {
		cp.APIKey = "REDACTED"
	}
	return &cp
}
