package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type BuildOptions struct {
	Kind         string
	Model        string
	BaseURL      string
	APIKey       string
	GeminiAPIKey string
	HTTPClient   *http.Client
	Timeout      time.Duration
	MaxRetries   int
	BackoffBase  time.Duration
}

// Build constructs the provider named by Kind. Providers that hold network
// resources implement io.Closer.
func Build(ctx context.Context, opts BuildOptions) (Provider, error) {
	switch opts.Kind {
	case "openai_compat", "openai-compatible", "openai":
		httpClient := opts.HTTPClient
		if httpClient == nil && opts.Timeout > 0 {
			httpClient = &http.Client{Timeout: opts.Timeout}
		}
		return NewOpenAICompat(OpenAICompatConfig{
			BaseURL:     opts.BaseURL,
			APIKey:      opts.APIKey,
			HTTPClient:  httpClient,
			MaxRetries:  opts.MaxRetries,
			BackoffBase: opts.BackoffBase,
		}), nil
	case "gemini":
		return NewGemini(ctx, opts.GeminiAPIKey, opts.Model)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", opts.Kind)
	}
}
