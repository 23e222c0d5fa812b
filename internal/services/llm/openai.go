package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/modelscout/modelscout/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/openai/openai-go/v2"
	openaiOption "github.com/openai/openai-go/v2/option"
)

// OpenAIClient calls an OpenAI-compatible chat completions backend.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates an OpenAI-backed client.
func NewOpenAIClient(providerConfig models.ProviderConfig) *OpenAIClient {
	opts := []openaiOption.RequestOption{
		openaiOption.WithAPIKey(providerConfig.APIKey),
	}

	if providerConfig.BaseURL != "" {
		opts = append(opts, openaiOption.WithBaseURL(providerConfig.BaseURL))
	}

	if providerConfig.TimeoutMs > 0 {
		httpClient := &http.Client{Timeout: time.Duration(providerConfig.TimeoutMs) * time.Millisecond}
		opts = append(opts, openaiOption.WithHTTPClient(httpClient))
	}

	client := openai.NewClient(opts...)
	return &OpenAIClient{client: &client}
}

// CompleteJSON implements Client.
func (oc *OpenAIClient) CompleteJSON(ctx context.Context, model, system, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	}

	startTime := time.Now()
	resp, err := oc.client.Chat.Completions.New(ctx, params)
	duration := time.Since(startTime)

	if err != nil {
		fiberlog.Errorf("OpenAI API request failed after %v - model: %s: %v", duration, model, err)
		return "", models.NewUpstreamError("openai", "completion request failed", err)
	}

	if len(resp.Choices) == 0 {
		return "", models.NewSchemaError("openai", "response contained no choices", nil)
	}

	fiberlog.Debugf("OpenAI API request completed in %v - model: %s", duration, model)
	return resp.Choices[0].Message.Content, nil
}
