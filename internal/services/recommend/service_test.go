package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/modelscout/modelscout/internal/models"
	"github.com/modelscout/modelscout/internal/services/catalog"
	"github.com/modelscout/modelscout/internal/services/extract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	models []models.Model
	err    error
}

func (s *stubSource) Fetch(_ context.Context) ([]models.Model, error) {
	return s.models, s.err
}

type stubRanker struct {
	recommendations []models.Recommendation
	err             error

	gotUseCase    string
	gotCandidates []models.Model
	gotCount      int
}

func (s *stubRanker) Rank(_ context.Context, useCase string, candidates []models.Model, count int, _ string) ([]models.Recommendation, int, error) {
	s.gotUseCase = useCase
	s.gotCandidates = candidates
	s.gotCount = count
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.recommendations, len(candidates), nil
}

func testCatalog() []models.Model {
	vision := models.Model{
		ID:            "google/vision-pro",
		ContextLength: 128000,
		Pricing:       models.Pricing{Prompt: "0.000001"},
		Architecture:  models.Architecture{Modality: "text+image->text"},
	}
	text := models.Model{
		ID:            "acme/chat",
		ContextLength: 32000,
		Pricing:       models.Pricing{Prompt: "0.0000005"},
		Architecture:  models.Architecture{Modality: "text->text"},
	}
	vision.Normalize()
	text.Normalize()
	return []models.Model{vision, text}
}

func newTestService(source catalog.Source, ranker Ranker) *Service {
	cache := catalog.NewCache(source, time.Hour, nil)
	return NewService(cache, extract.NewHeuristicExtractor(), ranker, 1, nil)
}

func TestRecommendRequiresUseCase(t *testing.T) {
	svc := newTestService(&stubSource{models: testCatalog()}, &stubRanker{})

	for _, useCase := range []string{"", "   "} {
		_, err := svc.Recommend(context.Background(), models.RecommendRequest{UseCase: useCase}, "test")
		require.Error(t, err)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.ErrorTypeValidation, appErr.Type)
	}
}

func TestRecommendEndToEnd(t *testing.T) {
	ranker := &stubRanker{
		recommendations: []models.Recommendation{
			{ModelID: "google/vision-pro", Reason: "supports image input"},
		},
	}
	svc := newTestService(&stubSource{models: testCatalog()}, ranker)

	resp, err := svc.Recommend(context.Background(), models.RecommendRequest{
		UseCase: "Analyze images of receipts and extract amounts",
		Count:   1,
	}, "test")
	require.NoError(t, err)

	// The image requirement filters out the text-only model at level 0.
	require.Len(t, ranker.gotCandidates, 1)
	assert.Equal(t, "google/vision-pro", ranker.gotCandidates[0].ID)

	require.Len(t, resp.Recommendations, 1)
	require.NotNil(t, resp.Recommendations[0].Model)
	assert.Equal(t, "google/vision-pro", resp.Recommendations[0].Model.ID)

	metadata := resp.Metadata
	assert.Equal(t, 2, metadata.TotalModels)
	assert.Equal(t, 0, metadata.RelaxLevel)
	assert.Equal(t, 1, metadata.AfterFiltering)
	assert.Equal(t, 1, metadata.CandidatesRanked)
	assert.Contains(t, metadata.Constraints.InputModalities, "image")
	assert.GreaterOrEqual(t, metadata.Timing.TotalMs, int64(0))
}

func TestRecommendDefaultsCount(t *testing.T) {
	ranker := &stubRanker{
		recommendations: []models.Recommendation{{ModelID: "acme/chat", Reason: "fits"}},
	}
	svc := newTestService(&stubSource{models: testCatalog()}, ranker)

	_, err := svc.Recommend(context.Background(), models.RecommendRequest{UseCase: "chatbot"}, "test")
	require.NoError(t, err)

	assert.Equal(t, models.DefaultRecommendationCount, ranker.gotCount)
}

func TestRecommendRankingFailureSurfaces(t *testing.T) {
	ranker := &stubRanker{err: models.NewSchemaError("ranker", "malformed output", nil)}
	svc := newTestService(&stubSource{models: testCatalog()}, ranker)

	_, err := svc.Recommend(context.Background(), models.RecommendRequest{UseCase: "chatbot"}, "test")
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.ErrorTypeSchema, appErr.Type)
}

func TestRecommendCatalogFailureSurfaces(t *testing.T) {
	source := &stubSource{err: models.NewUpstreamError("openrouter", "catalog fetch failed", nil)}
	svc := newTestService(source, &stubRanker{})

	_, err := svc.Recommend(context.Background(), models.RecommendRequest{UseCase: "chatbot"}, "test")
	require.Error(t, err)
}

func TestRecommendImpossibleModalityStillRanks(t *testing.T) {
	ranker := &stubRanker{
		recommendations: []models.Recommendation{{ModelID: "acme/chat", Reason: "fallback"}},
	}
	svc := newTestService(&stubSource{models: testCatalog()}, ranker)

	// No catalog model accepts video input; relaxation must still hand
	// the ranker a non-empty candidate list.
	resp, err := svc.Recommend(context.Background(), models.RecommendRequest{
		UseCase: "Analyze video footage of traffic",
	}, "test")
	require.NoError(t, err)

	assert.NotEmpty(t, ranker.gotCandidates)
	assert.GreaterOrEqual(t, resp.Metadata.RelaxLevel, 2)
}

func TestModelsServedFromCache(t *testing.T) {
	svc := newTestService(&stubSource{models: testCatalog()}, &stubRanker{})

	resp, err := svc.Models(context.Background())
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
}
