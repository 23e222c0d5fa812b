package llm

import (
	"context"
	"strings"
	"time"

	"github.com/modelscout/modelscout/internal/models"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

const anthropicMaxTokens = 2048

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
}

// NewAnthropicClient creates an Anthropic-backed client.
func NewAnthropicClient(providerConfig models.ProviderConfig) *AnthropicClient {
	clientOpts := []option.RequestOption{
		option.WithAPIKey(providerConfig.APIKey),
	}

	if providerConfig.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(providerConfig.BaseURL))
	}

	client := anthropic.NewClient(clientOpts...)
	return &AnthropicClient{client: &client}
}

// CompleteJSON implements Client.
func (ac *AnthropicClient) CompleteJSON(ctx context.Context, model, system, user string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	startTime := time.Now()
	message, err := ac.client.Messages.New(ctx, params)
	duration := time.Since(startTime)

	if err != nil {
		fiberlog.Errorf("Anthropic API request failed after %v - model: %s: %v", duration, model, err)
		return "", models.NewUpstreamError("anthropic", "message request failed", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	if sb.Len() == 0 {
		return "", models.NewSchemaError("anthropic", "response contained no text blocks", nil)
	}

	fiberlog.Debugf("Anthropic API request completed in %v - model: %s", duration, model)
	return sb.String(), nil
}
