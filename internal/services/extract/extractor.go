package extract

import (
	"context"
	"fmt"

	"github.com/modelscout/modelscout/internal/models"
	"github.com/modelscout/modelscout/internal/services/llm"
)

// Extractor derives a structured constraint set from a free-form use case.
// Implementations never fail: when a strategy cannot produce constraints it
// returns the conservative defaults instead.
type Extractor interface {
	Extract(ctx context.Context, useCase string, requestID string) models.ExtractedConstraints
}

// NewExtractor builds the configured extraction strategy. The provider
// config is only consulted for the generative strategy.
func NewExtractor(config models.ExtractorConfig, providerConfig models.ProviderConfig) (Extractor, error) {
	switch config.Strategy {
	case models.ExtractorHeuristic:
		return NewHeuristicExtractor(), nil
	case models.ExtractorGenerative:
		client, err := llm.NewClient(config.Stage.Provider, providerConfig)
		if err != nil {
			return nil, err
		}
		return NewGenerativeExtractor(client, config.Stage), nil
	default:
		return nil, models.NewValidationError(fmt.Sprintf("unknown extractor strategy: %s", config.Strategy), nil)
	}
}
