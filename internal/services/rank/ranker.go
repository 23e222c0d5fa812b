package rank

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelscout/modelscout/internal/models"
	"github.com/modelscout/modelscout/internal/services/circuitbreaker"
	"github.com/modelscout/modelscout/internal/services/llm"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// DefaultMaxCandidates bounds how many candidates are embedded in the
// ranking prompt.
const DefaultMaxCandidates = 50

// Ranker asks a generative model to pick the best candidates for a use
// case. Unlike extraction there is no fallback: a failed ranking call is a
// failed request, because the ranking is the deliverable.
type Ranker struct {
	client        llm.Client
	stage         models.StageConfig
	maxCandidates int
	breaker       *circuitbreaker.CircuitBreaker
}

type rankResponse struct {
	Recommendations []models.Recommendation `json:"recommendations"`
}

// NewRanker builds a ranker over the given backend. breaker may be nil.
func NewRanker(client llm.Client, config models.RankerConfig, breaker *circuitbreaker.CircuitBreaker) *Ranker {
	maxCandidates := config.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}

	return &Ranker{
		client:        client,
		stage:         config.Stage,
		maxCandidates: maxCandidates,
		breaker:       breaker,
	}
}

// Rank selects up to count recommendations from candidates. The second
// return value is how many candidates were actually sent to the backend
// after priority sorting and truncation.
func (r *Ranker) Rank(ctx context.Context, useCase string, candidates []models.Model, count int, requestID string) ([]models.Recommendation, int, error) {
	if len(candidates) == 0 {
		return nil, 0, models.NewInternalError("ranking called with no candidates", nil)
	}

	if r.breaker != nil && !r.breaker.CanExecute() {
		return nil, 0, models.NewCircuitBreakerError("ranking backend")
	}

	ranked := append([]models.Model(nil), candidates...)
	sortByProviderPriority(ranked)
	if len(ranked) > r.maxCandidates {
		ranked = ranked[:r.maxCandidates]
	}

	userPrompt, err := renderUserPrompt(useCase, ranked, count)
	if err != nil {
		return nil, 0, models.NewInternalError("failed to build ranking prompt", err)
	}

	if r.stage.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.stage.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	startTime := time.Now()
	raw, err := r.client.CompleteJSON(ctx, r.stage.Model, rankSystemPrompt, userPrompt)
	if err != nil {
		r.recordFailure()
		return nil, 0, err
	}

	recommendations, err := r.parseResponse(raw, ranked, count)
	if err != nil {
		r.recordFailure()
		return nil, 0, err
	}

	r.recordSuccess()
	fiberlog.Debugf("[%s] ranked %d candidates into %d recommendations in %v",
		requestID, len(ranked), len(recommendations), time.Since(startTime))

	return recommendations, len(ranked), nil
}

// parseResponse validates the backend's output against the contract: JSON
// of the documented shape, ids drawn from the candidate set, no duplicates.
func (r *Ranker) parseResponse(raw string, candidates []models.Model, count int) ([]models.Recommendation, error) {
	doc, err := llm.ExtractJSON(raw)
	if err != nil {
		return nil, models.NewSchemaError("ranker", "response contained no JSON", err)
	}

	var resp rankResponse
	if err := json.Unmarshal([]byte(doc), &resp); err != nil {
		return nil, models.NewSchemaError("ranker", "response did not match the ranking schema", err)
	}
	if len(resp.Recommendations) == 0 {
		return nil, models.NewSchemaError("ranker", "response contained no recommendations", nil)
	}

	known := make(map[string]bool, len(candidates))
	for i := range candidates {
		known[candidates[i].ID] = true
	}

	seen := make(map[string]bool, len(resp.Recommendations))
	recommendations := make([]models.Recommendation, 0, count)
	for _, rec := range resp.Recommendations {
		if !known[rec.ModelID] {
			fiberlog.Warnf("[ranker] dropped recommendation for unknown model %q", rec.ModelID)
			continue
		}
		if seen[rec.ModelID] {
			continue
		}
		seen[rec.ModelID] = true

		recommendations = append(recommendations, rec)
		if len(recommendations) == count {
			break
		}
	}

	if len(recommendations) == 0 {
		return nil, models.NewSchemaError("ranker", "no recommendation referenced a known candidate", nil)
	}
	return recommendations, nil
}

func (r *Ranker) recordSuccess() {
	if r.breaker != nil {
		r.breaker.RecordSuccess()
	}
}

func (r *Ranker) recordFailure() {
	if r.breaker != nil {
		r.breaker.RecordFailure()
	}
}
