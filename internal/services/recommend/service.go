package recommend

import (
	"context"
	"strings"
	"time"

	"github.com/modelscout/modelscout/internal/models"
	"github.com/modelscout/modelscout/internal/services/catalog"
	"github.com/modelscout/modelscout/internal/services/extract"
	"github.com/modelscout/modelscout/internal/services/filter"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Ranker is the ranking stage as the orchestrator sees it. Satisfied by
// rank.Ranker; an interface so tests can stub the generative backend.
type Ranker interface {
	Rank(ctx context.Context, useCase string, candidates []models.Model, count int, requestID string) ([]models.Recommendation, int, error)
}

// Service runs the three-stage recommendation pipeline: constraint
// extraction, deterministic filtering with progressive relaxation, and
// generative ranking. Stages run sequentially since each consumes the
// previous stage's output.
type Service struct {
	catalog       *catalog.Cache
	extractor     extract.Extractor
	ranker        Ranker
	minCandidates int
	responseCache *ResponseCache
}

// NewService wires the pipeline. responseCache may be nil.
func NewService(catalogCache *catalog.Cache, extractor extract.Extractor, ranker Ranker, minCandidates int, responseCache *ResponseCache) *Service {
	if minCandidates <= 0 {
		minCandidates = filter.DefaultMinCandidates
	}
	return &Service{
		catalog:       catalogCache,
		extractor:     extractor,
		ranker:        ranker,
		minCandidates: minCandidates,
		responseCache: responseCache,
	}
}

// Recommend processes one recommendation request end to end.
func (s *Service) Recommend(ctx context.Context, req models.RecommendRequest, requestID string) (*models.RecommendResponse, error) {
	useCase := strings.TrimSpace(req.UseCase)
	if useCase == "" {
		return nil, models.NewValidationError("useCase is required", nil)
	}

	count := req.Count
	if count <= 0 {
		count = models.DefaultRecommendationCount
	}

	if s.responseCache != nil {
		if cached, tier, hit := s.responseCache.Lookup(ctx, useCase, requestID); hit {
			resp := *cached
			resp.Metadata.CacheTier = tier
			return &resp, nil
		}
	}

	totalStart := time.Now()

	cachedCatalog, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, err
	}

	// Stage 1: constraint extraction. Never fails; worst case it returns
	// the conservative defaults.
	extractStart := time.Now()
	constraints := s.extractor.Extract(ctx, useCase, requestID)
	extractMs := time.Since(extractStart).Milliseconds()

	// Stage 2: deterministic filter with progressive relaxation.
	filterStart := time.Now()
	result := filter.Apply(cachedCatalog.Models, constraints, s.minCandidates)
	filterMs := time.Since(filterStart).Milliseconds()

	fiberlog.Infof("[%s] filtered %d models to %d candidates (relax level %d)",
		requestID, len(cachedCatalog.Models), result.AfterFiltering, result.RelaxLevel)

	// Stage 3: generative ranking. Failures surface to the caller; there
	// is no meaningful default recommendation.
	rankStart := time.Now()
	recommendations, candidatesRanked, err := s.ranker.Rank(ctx, useCase, result.Candidates, count, requestID)
	rankMs := time.Since(rankStart).Milliseconds()
	if err != nil {
		return nil, err
	}

	enrich(recommendations, result.Candidates)

	resp := &models.RecommendResponse{
		Recommendations: recommendations,
		Metadata: models.RecommendMetadata{
			TotalModels:      len(cachedCatalog.Models),
			Constraints:      constraints,
			AfterFiltering:   result.AfterFiltering,
			RelaxLevel:       result.RelaxLevel,
			CandidatesRanked: candidatesRanked,
			Timing: models.StageTiming{
				ExtractMs: extractMs,
				FilterMs:  filterMs,
				RankMs:    rankMs,
				TotalMs:   time.Since(totalStart).Milliseconds(),
			},
		},
	}

	if s.responseCache != nil {
		s.responseCache.Store(ctx, useCase, *resp, requestID)
	}

	return resp, nil
}

// Models serves the catalog list, refreshing transparently on expiry.
func (s *Service) Models(ctx context.Context) (*models.ModelsResponse, error) {
	cachedCatalog, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &models.ModelsResponse{Data: cachedCatalog.Models}, nil
}

// Close releases the response cache backend, if any.
func (s *Service) Close() error {
	if s.responseCache != nil {
		return s.responseCache.Close()
	}
	return nil
}

// enrich attaches the full catalog record to each recommendation so the
// response is self-contained for display.
func enrich(recommendations []models.Recommendation, candidates []models.Model) {
	byID := make(map[string]*models.Model, len(candidates))
	for i := range candidates {
		byID[candidates[i].ID] = &candidates[i]
	}
	for i := range recommendations {
		if m, ok := byID[recommendations[i].ModelID]; ok {
			enriched := *m
			recommendations[i].Model = &enriched
		}
	}
}
