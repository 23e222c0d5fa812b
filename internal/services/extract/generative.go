package extract

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelscout/modelscout/internal/models"
	"github.com/modelscout/modelscout/internal/services/llm"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

const extractSystemPrompt = `You translate a user's model use case into a strict JSON constraint object.

Respond with ONLY a JSON object of this exact shape (omit fields that do not apply):
{
  "input_modalities": ["text", "image", "audio", "video", "file"],
  "output_modalities": ["text", "image", "embeddings"],
  "min_context_length": 0,
  "max_price_per_million": "1.50",
  "preferred_providers": ["openai"],
  "excluded_providers": [],
  "capability_keywords": [],
  "exclude_keywords": ["embedding", "base"],
  "speed_preference": "fast"
}

Rules:
- input_modalities and output_modalities default to ["text"] when unstated.
- min_context_length is in tokens; only set it when the use case implies long documents (articles/reports: 32000, books/whole codebases: 128000).
- max_price_per_million is a decimal string in USD per million prompt tokens; only set it when cost sensitivity is stated ("cheap", "budget": "1").
- speed_preference is one of "fast", "balanced", "powerful", "any".
- Keep exclude_keywords ["embedding", "base"] unless the user explicitly wants an embedding model.

Examples:
Use case: "Analyze images of receipts and extract amounts"
{"input_modalities":["text","image"],"output_modalities":["text"],"exclude_keywords":["embedding","base"],"speed_preference":"any"}

Use case: "cheap chatbot for customer support"
{"input_modalities":["text"],"output_modalities":["text"],"max_price_per_million":"1","exclude_keywords":["embedding","base"],"speed_preference":"fast"}

Use case: "summarize entire novels"
{"input_modalities":["text"],"output_modalities":["text"],"min_context_length":128000,"exclude_keywords":["embedding","base"],"speed_preference":"any"}`

// GenerativeExtractor asks a small generative model for the constraint set.
// Any failure along the way (transport, timeout, malformed output) degrades
// silently into the default constraints.
type GenerativeExtractor struct {
	client llm.Client
	stage  models.StageConfig
}

func NewGenerativeExtractor(client llm.Client, stage models.StageConfig) *GenerativeExtractor {
	return &GenerativeExtractor{
		client: client,
		stage:  stage,
	}
}

// Extract implements Extractor.
func (g *GenerativeExtractor) Extract(ctx context.Context, useCase string, requestID string) models.ExtractedConstraints {
	if g.stage.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(g.stage.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	raw, err := g.client.CompleteJSON(ctx, g.stage.Model, extractSystemPrompt, "Use case: "+useCase)
	if err != nil {
		fiberlog.Warnf("[%s] constraint extraction failed, using defaults: %v", requestID, err)
		return models.DefaultConstraints()
	}

	doc, err := llm.ExtractJSON(raw)
	if err != nil {
		fiberlog.Warnf("[%s] constraint extraction returned no JSON, using defaults: %v", requestID, err)
		return models.DefaultConstraints()
	}

	var constraints models.ExtractedConstraints
	if err := json.Unmarshal([]byte(doc), &constraints); err != nil {
		fiberlog.Warnf("[%s] constraint extraction returned malformed JSON, using defaults: %v", requestID, err)
		return models.DefaultConstraints()
	}

	sanitize(&constraints)

	fiberlog.Debugf("[%s] generative extraction: inputs=%v outputs=%v min_context=%d max_price=%s",
		requestID, constraints.InputModalities, constraints.OutputModalities,
		constraints.MinContextLength, constraints.MaxPricePerMillion)

	return constraints
}

// sanitize fills gaps the model left and drops values outside the schema.
func sanitize(c *models.ExtractedConstraints) {
	if len(c.InputModalities) == 0 {
		c.InputModalities = []string{"text"}
	}
	if len(c.OutputModalities) == 0 {
		c.OutputModalities = []string{"text"}
	}
	if !c.SpeedPreference.Valid() {
		c.SpeedPreference = models.SpeedAny
	}
	if c.MinContextLength < 0 {
		c.MinContextLength = 0
	}
}
