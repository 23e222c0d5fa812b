package llm

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/modelscout/modelscout/internal/models"
	"github.com/modelscout/modelscout/internal/utils/clientcache"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through the official SDK. SDK handles
// are cached per credential so concurrent requests share one client.
type GeminiClient struct {
	providerConfig models.ProviderConfig
	clientCache    *clientcache.Cache[*genai.Client]
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(providerConfig models.ProviderConfig) *GeminiClient {
	return &GeminiClient{
		providerConfig: providerConfig,
		clientCache:    clientcache.NewCache[*genai.Client](),
	}
}

// CompleteJSON implements Client. Responses are requested as JSON via the
// SDK's response MIME type so the model does not wrap output in prose.
func (gc *GeminiClient) CompleteJSON(ctx context.Context, model, system, user string) (string, error) {
	client, err := gc.getClient(ctx)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.2),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	startTime := time.Now()
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(user), config)
	duration := time.Since(startTime)

	if err != nil {
		fiberlog.Errorf("Gemini API request failed after %v - model: %s: %v", duration, model, err)
		return "", models.NewUpstreamError("gemini", "generate request failed", err)
	}

	text := resp.Text()
	if text == "" {
		return "", models.NewSchemaError("gemini", "empty response text", nil)
	}

	fiberlog.Debugf("Gemini API request completed in %v - model: %s, response_length: %d", duration, model, len(text))
	return text, nil
}

func (gc *GeminiClient) getClient(ctx context.Context) (*genai.Client, error) {
	keyHash := sha256.Sum256([]byte(gc.providerConfig.APIKey + "|" + gc.providerConfig.BaseURL))
	cacheKey := fmt.Sprintf("%x", keyHash[:16])

	return gc.clientCache.GetOrCreate(cacheKey, func() (*genai.Client, error) {
		fiberlog.Debugf("Creating new Gemini client (config hash: %s)", cacheKey[:8])
		cfg := &genai.ClientConfig{
			APIKey:  gc.providerConfig.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
		if gc.providerConfig.BaseURL != "" {
			cfg.HTTPOptions.BaseURL = gc.providerConfig.BaseURL
		}

		client, err := genai.NewClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, nil
	})
}
