package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/modelscout/modelscout/internal/models"
	"github.com/modelscout/modelscout/internal/services"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Fetcher retrieves the full model catalog from the OpenRouter API.
type Fetcher struct {
	client  *services.Client
	timeout time.Duration
}

type catalogResponse struct {
	Data []models.Model `json:"data"`
}

// NewFetcher creates a catalog fetcher against the configured base URL.
func NewFetcher(config models.CatalogConfig) *Fetcher {
	timeout := time.Duration(config.TimeoutMs) * time.Millisecond

	clientConfig := services.DefaultClientConfig(config.BaseURL)
	clientConfig.Timeout = timeout

	return &Fetcher{
		client:  services.NewClientWithConfig(clientConfig),
		timeout: timeout,
	}
}

// Fetch downloads and normalizes the catalog. Every returned model carries
// defaulted pricing and modality fields, so downstream filtering never has
// to guard against missing metadata.
func (f *Fetcher) Fetch(ctx context.Context) ([]models.Model, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	startTime := time.Now()
	var resp catalogResponse
	// One quick retry at most; real retrying happens at cache-refresh
	// granularity, not mid-request.
	err := f.client.Get("/models", &resp, &services.RequestOptions{
		Context:    ctx,
		Retries:    1,
		RetryDelay: 250 * time.Millisecond,
	})
	duration := time.Since(startTime)

	if err != nil {
		var decodeErr *services.DecodeError
		if errors.As(err, &decodeErr) {
			fiberlog.Errorf("[catalog] response did not match the expected shape after %v: %v", duration, err)
			return nil, models.NewSchemaError("openrouter", "unexpected catalog response shape", err)
		}
		fiberlog.Errorf("[catalog] fetch failed after %v: %v", duration, err)
		return nil, models.NewUpstreamError("openrouter", "catalog fetch failed", err)
	}

	if len(resp.Data) == 0 {
		return nil, models.NewSchemaError("openrouter", "catalog response contained no models", nil)
	}

	for i := range resp.Data {
		resp.Data[i].Normalize()
	}

	fiberlog.Infof("[catalog] fetched %d models in %v", len(resp.Data), duration)
	return resp.Data, nil
}

// Close releases idle upstream connections.
func (f *Fetcher) Close() {
	f.client.Close()
}
