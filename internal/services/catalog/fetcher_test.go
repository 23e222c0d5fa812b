package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelscout/modelscout/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(handler http.HandlerFunc) (*Fetcher, *httptest.Server) {
	server := httptest.NewServer(handler)
	fetcher := NewFetcher(models.CatalogConfig{
		BaseURL:   server.URL,
		TimeoutMs: 2000,
	})
	return fetcher, server
}

func TestFetchNormalizesModels(t *testing.T) {
	fetcher, server := newTestFetcher(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":"openai/gpt-4o","name":"GPT-4o","context_length":128000,
			 "pricing":{"prompt":"0.0000025","completion":"0.00001"},
			 "architecture":{"modality":"text+image->text"}},
			{"id":"acme/bare"}
		]}`))
	})
	defer server.Close()
	defer fetcher.Close()

	catalogModels, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, catalogModels, 2)

	assert.Equal(t, []string{"text", "image"}, catalogModels[0].Architecture.InputModalities)
	assert.Equal(t, "openai", catalogModels[0].Provider)

	bare := catalogModels[1]
	assert.Equal(t, "0", bare.Pricing.Prompt)
	assert.Equal(t, "text->text", bare.Architecture.Modality)
	assert.Equal(t, "acme/bare", bare.Name)
}

func TestFetchUpstreamFailure(t *testing.T) {
	fetcher, server := newTestFetcher(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer server.Close()
	defer fetcher.Close()

	_, err := fetcher.Fetch(context.Background())
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.ErrorTypeUpstream, appErr.Type)
}

func TestFetchMalformedBody(t *testing.T) {
	fetcher, server := newTestFetcher(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})
	defer server.Close()
	defer fetcher.Close()

	_, err := fetcher.Fetch(context.Background())
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.ErrorTypeSchema, appErr.Type)
}

func TestFetchEmptyCatalog(t *testing.T) {
	fetcher, server := newTestFetcher(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	defer server.Close()
	defer fetcher.Close()

	_, err := fetcher.Fetch(context.Background())
	require.Error(t, err)
}
