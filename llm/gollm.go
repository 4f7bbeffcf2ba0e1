package llm

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/teilomillet/gollm"

	"github.com/GeneralBots/botcoder/tokens"
)

// GollmConfig configures a GollmClient.
type GollmConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string // see SupportsBaseURL
	APIVersion  string // azure-openai api-version; empty uses DefaultAzureAPIVersion
	MaxTokens   int
	Temperature float64

	// Counter estimates usage, which gollm does not report.
	Counter tokens.Counter
}

// GollmClient implements Client with gollm.
type GollmClient struct {
	provider string
	model    string
	llm      gollm.LLM
	counter  tokens.Counter
}

// Providers that accept a base URL.
const (
	ProviderOllama      = "ollama"
	ProviderAzureOpenAI = "azure-openai"
)

// DefaultAzureAPIVersion is the api-version sent to Azure OpenAI endpoints.
const DefaultAzureAPIVersion = "2024-05-01-preview"

// defaultModels is used when no model is configured.
var defaultModels = map[string]string{
	"openai":            "gpt-4o-mini",
	"anthropic":         "claude-3-5-sonnet-latest",
	"groq":              "llama-3.1-70b-versatile",
	ProviderOllama:      "llama3.1",
	ProviderAzureOpenAI: "gpt-4o-mini",
}

// NewGollmClient creates a client for cfg.Provider. gollm reads the API key
// from the provider's usual environment variable when cfg.APIKey is empty.
func NewGollmClient(cfg GollmConfig) (*GollmClient, error) {
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}
	if cfg.Model == "" {
		cfg.Model = defaultModels[cfg.Provider]
		if cfg.Model == "" {
			cfg.Model = defaultModels["openai"]
		}
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 6000
	}
	if cfg.Counter == nil {
		cfg.Counter = tokens.NewEstimatingCounter()
	}

	opts := []gollm.ConfigOption{
		gollm.SetProvider(cfg.Provider),
		gollm.SetModel(cfg.Model),
		gollm.SetMaxTokens(cfg.MaxTokens),
		gollm.SetTemperature(cfg.Temperature),
		gollm.SetMaxRetries(0), // retries are handled by NewRetryingClient
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if cfg.APIKey != "" {
		opts = append(opts, gollm.SetAPIKey(cfg.APIKey))
	}
	endpointOpt, err := baseURLOption(cfg)
	if err != nil {
		return nil, NewError(cfg.Provider, "init", err, false)
	}
	if endpointOpt != nil {
		opts = append(opts, endpointOpt)
	}

	llm, err := gollm.NewLLM(opts...)
	if err != nil {
		return nil, NewError(cfg.Provider, "init", fmt.Errorf("%w: %w", ErrAuth, err), false)
	}

	return &GollmClient{
		provider: cfg.Provider,
		model:    cfg.Model,
		llm:      llm,
		counter:  cfg.Counter,
	}, nil
}

// SupportsBaseURL reports whether provider can be pointed at a custom
// endpoint: ollama (server address) and azure-openai (resource or
// deployment URL).
func SupportsBaseURL(provider string) bool {
	return provider == ProviderOllama || provider == ProviderAzureOpenAI
}

// ValidateEndpoint checks that a base URL is only set for providers that
// use it, and that providers requiring one have it.
func ValidateEndpoint(provider, baseURL string) error {
	switch {
	case baseURL != "" && !SupportsBaseURL(provider):
		return fmt.Errorf("base_url is not supported by provider %q (use %s or %s)", provider, ProviderOllama, ProviderAzureOpenAI)
	case baseURL == "" && provider == ProviderAzureOpenAI:
		return fmt.Errorf("provider %s requires base_url", ProviderAzureOpenAI)
	}
	return nil
}

func baseURLOption(cfg GollmConfig) (gollm.ConfigOption, error) {
	if err := ValidateEndpoint(cfg.Provider, cfg.BaseURL); err != nil {
		return nil, err
	}
	switch {
	case cfg.BaseURL == "":
		return nil, nil
	case cfg.Provider == ProviderOllama:
		return gollm.SetOllamaEndpoint(cfg.BaseURL), nil
	default:
		return gollm.SetExtraHeaders(map[string]string{
			"azure_endpoint": AzureEndpoint(cfg.BaseURL, cfg.APIVersion),
		}), nil
	}
}

// AzureEndpoint returns the chat completions URL for an Azure OpenAI
// deployment. base is either the deployment URL, to which
// "/chat/completions" is appended, or a full completions URL. An
// api-version query parameter is added when missing.
func AzureEndpoint(base, version string) string {
	if version == "" {
		version = DefaultAzureAPIVersion
	}
	endpoint := strings.TrimRight(base, "/")
	if !strings.Contains(endpoint, "/chat/completions") {
		endpoint += "/chat/completions"
	}
	if strings.Contains(endpoint, "api-version=") {
		return endpoint
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + "api-version=" + url.QueryEscape(version)
}

// Provider returns the provider name.
func (c *GollmClient) Provider() string {
	return c.provider
}

// Model returns the model name.
func (c *GollmClient) Model() string {
	return c.model
}

// Complete implements Client.
func (c *GollmClient) Complete(ctx context.Context, req Request) (*Response, error) {
	if req.MaxTokens > 0 {
		c.llm.SetOption("max_tokens", req.MaxTokens)
	}
	if req.Temperature != nil {
		c.llm.SetOption("temperature", *req.Temperature)
	}

	text, err := c.llm.Generate(ctx, buildPrompt(req))
	if err != nil {
		return nil, Classify(c.provider, "complete", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, NewError(c.provider, "complete", ErrEmptyResponse, true)
	}

	return &Response{
		ID:    "resp_" + uuid.New().String()[:8],
		Model: c.model,
		Text:  text,
		Usage: Usage{
			InputTokens:  c.counter.Count(req.System) + c.counter.Count(req.Prompt),
			OutputTokens: c.counter.Count(text),
		},
	}, nil
}

func buildPrompt(req Request) *gollm.Prompt {
	var opts []gollm.PromptOption
	if system := strings.TrimSpace(req.System); system != "" {
		opts = append(opts, gollm.WithSystemPrompt(system, gollm.CacheTypeEphemeral))
	}
	return gollm.NewPrompt(req.Prompt, opts...)
}
