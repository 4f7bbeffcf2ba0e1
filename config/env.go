package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GeneralBots/botcoder/llm"
)

// EnvPrefix prefixes botcoder environment variables.
const EnvPrefix = "BOTCODER_"

// LoadFromEnv applies environment variables over the current values.
// Legacy LLM_* names are applied first so BOTCODER_* names win. Values that
// do not parse are ignored.
//
// Supported variables:
//   - BOTCODER_PROJECT_PATH (PROJECT_PATH)
//   - BOTCODER_PROVIDER
//   - BOTCODER_MODEL (LLM_MODEL)
//   - BOTCODER_API_KEY (LLM_KEY)
//   - BOTCODER_BASE_URL (LLM_URL, which also selects azure-openai while the
//     provider is still the default)
//   - BOTCODER_API_VERSION (LLM_VERSION)
//   - BOTCODER_MAX_TOKENS
//   - BOTCODER_TEMPERATURE
//   - BOTCODER_TPM (LLM_TPM)
//   - BOTCODER_MIN_INTERVAL, a duration or seconds (LLM_MIN_INTERVAL, seconds)
//   - BOTCODER_MAX_HISTORY
//   - BOTCODER_TOOL_OUTPUT_TOKENS
//   - BOTCODER_TOKEN_COUNTER
//   - BOTCODER_SYSTEM_PROMPT
//   - BOTCODER_LENIENT_PARSING
//   - BOTCODER_LOG_LEVEL
//   - BOTCODER_LOG_FORMAT
func (c *Config) LoadFromEnv() {
	c.loadLegacyEnv()

	setString(&c.ProjectPath, EnvPrefix+"PROJECT_PATH")
	setString(&c.Provider, EnvPrefix+"PROVIDER")
	setString(&c.Model, EnvPrefix+"MODEL")
	setString(&c.APIKey, EnvPrefix+"API_KEY")
	setString(&c.BaseURL, EnvPrefix+"BASE_URL")
	setString(&c.APIVersion, EnvPrefix+"API_VERSION")
	setInt(&c.MaxTokens, EnvPrefix+"MAX_TOKENS")
	if v := os.Getenv(EnvPrefix + "TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Temperature = f
		}
	}
	setInt(&c.MaxTokensPerMinute, EnvPrefix+"TPM")
	if v := os.Getenv(EnvPrefix + "MIN_INTERVAL"); v != "" {
		if d, err := ParseDuration(v); err == nil {
			c.MinInterval = d
		}
	}
	setInt(&c.MaxHistory, EnvPrefix+"MAX_HISTORY")
	setInt(&c.ToolOutputTokens, EnvPrefix+"TOOL_OUTPUT_TOKENS")
	setString(&c.TokenCounter, EnvPrefix+"TOKEN_COUNTER")
	setString(&c.SystemPrompt, EnvPrefix+"SYSTEM_PROMPT")
	if v := os.Getenv(EnvPrefix + "LENIENT_PARSING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.LenientParsing = b
		}
	}
	setString(&c.LogLevel, EnvPrefix+"LOG_LEVEL")
	setString(&c.LogFormat, EnvPrefix+"LOG_FORMAT")
}

func (c *Config) loadLegacyEnv() {
	setString(&c.ProjectPath, "PROJECT_PATH")
	if v := os.Getenv("LLM_URL"); v != "" {
		c.BaseURL = v
		if c.Provider == Default().Provider {
			c.Provider = llm.ProviderAzureOpenAI
		}
	}
	setString(&c.APIVersion, "LLM_VERSION")
	setString(&c.APIKey, "LLM_KEY")
	setString(&c.Model, "LLM_MODEL")
	setInt(&c.MaxTokensPerMinute, "LLM_TPM")
	if v := os.Getenv("LLM_MIN_INTERVAL"); v != "" {
		if secs, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32); err == nil {
			c.MinInterval = Duration(time.Duration(secs) * time.Second)
		}
	}
}

// FromEnv returns the defaults overlaid with the environment.
func FromEnv() *Config {
	cfg := Default()
	cfg.LoadFromEnv()
	return cfg
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}
