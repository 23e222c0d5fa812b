package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelscout/modelscout/internal/models"
)

// Client issues one structured-output completion against a generative
// backend. Implementations must honor ctx cancellation and deadlines.
type Client interface {
	// CompleteJSON sends the system and user prompts to the given model and
	// returns the raw text of the response, which callers parse as JSON.
	CompleteJSON(ctx context.Context, model, system, user string) (string, error)
}

// NewClient builds a client for the named provider. The extraction and
// ranking stages each construct their own client so the two can point at
// different backends.
func NewClient(provider string, providerConfig models.ProviderConfig) (Client, error) {
	if providerConfig.APIKey == "" {
		return nil, models.NewValidationError(fmt.Sprintf("API key not configured for provider %s", provider), nil)
	}

	switch strings.ToLower(provider) {
	case "gemini", "google":
		return NewGeminiClient(providerConfig), nil
	case "openai":
		return NewOpenAIClient(providerConfig), nil
	case "anthropic":
		return NewAnthropicClient(providerConfig), nil
	default:
		return nil, models.NewValidationError(fmt.Sprintf("unsupported generative provider: %s", provider), nil)
	}
}
