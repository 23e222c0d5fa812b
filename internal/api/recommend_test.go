package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelscout/modelscout/internal/models"
	"github.com/modelscout/modelscout/internal/services/catalog"
	"github.com/modelscout/modelscout/internal/services/extract"
	"github.com/modelscout/modelscout/internal/services/recommend"
	"github.com/modelscout/modelscout/internal/services/request"
	"github.com/modelscout/modelscout/internal/services/response"

	"github.com/gofiber/fiber/v2"
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
}

func (s *stubRanker) Rank(_ context.Context, _ string, candidates []models.Model, _ int, _ string) ([]models.Recommendation, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.recommendations, len(candidates), nil
}

func testCatalogModels() []models.Model {
	m := models.Model{
		ID:           "acme/chat",
		Pricing:      models.Pricing{Prompt: "0.000001"},
		Architecture: models.Architecture{Modality: "text->text"},
	}
	m.Normalize()
	return []models.Model{m}
}

func newTestApp(source catalog.Source, ranker recommend.Ranker) *fiber.App {
	cache := catalog.NewCache(source, time.Hour, nil)
	svc := recommend.NewService(cache, extract.NewHeuristicExtractor(), ranker, 1, nil)

	reqSvc := request.NewBaseService()
	respSvc := response.NewBaseService()

	app := fiber.New()
	app.Post("/recommend", NewRecommendHandler(reqSvc, svc, respSvc).Recommend)
	app.Get("/models", NewModelsHandler(reqSvc, svc, respSvc).List)
	app.Get("/health", NewHealthHandler().HealthCheck)
	return app
}

func postRecommend(t *testing.T, app *fiber.App, body string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/recommend", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, payload
}

func TestRecommendMissingUseCaseReturns400(t *testing.T) {
	app := newTestApp(&stubSource{models: testCatalogModels()}, &stubRanker{})

	resp, payload := postRecommend(t, app, `{"count": 3}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp response.ErrorResponse
	require.NoError(t, json.Unmarshal(payload, &errResp))
	assert.Equal(t, "useCase is required", errResp.Error)
}

func TestRecommendSuccessShape(t *testing.T) {
	ranker := &stubRanker{
		recommendations: []models.Recommendation{{ModelID: "acme/chat", Reason: "fits the use case"}},
	}
	app := newTestApp(&stubSource{models: testCatalogModels()}, ranker)

	resp, payload := postRecommend(t, app, `{"useCase": "simple chatbot"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.RecommendResponse
	require.NoError(t, json.Unmarshal(payload, &body))
	require.Len(t, body.Recommendations, 1)
	assert.Equal(t, "acme/chat", body.Recommendations[0].ModelID)
	assert.Equal(t, 1, body.Metadata.TotalModels)
}

func TestRecommendDownstreamFailureReturns500(t *testing.T) {
	ranker := &stubRanker{err: models.NewSchemaError("ranker", "malformed output", nil)}
	app := newTestApp(&stubSource{models: testCatalogModels()}, ranker)

	resp, payload := postRecommend(t, app, `{"useCase": "simple chatbot"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var errResp response.ErrorResponse
	require.NoError(t, json.Unmarshal(payload, &errResp))
	assert.NotEmpty(t, errResp.Error)
}

func TestModelsEndpoint(t *testing.T) {
	app := newTestApp(&stubSource{models: testCatalogModels()}, &stubRanker{})

	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body models.ModelsResponse
	require.NoError(t, json.Unmarshal(payload, &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "acme/chat", body.Data[0].ID)
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(&stubSource{models: testCatalogModels()}, &stubRanker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
