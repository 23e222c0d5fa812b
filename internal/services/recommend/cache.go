package recommend

import (
	"context"
	"fmt"

	"github.com/modelscout/modelscout/internal/models"

	"github.com/botirk38/semanticcache"
	"github.com/botirk38/semanticcache/options"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

const defaultSemanticThreshold = 0.92

// ResponseCache caches full recommendation responses keyed by the use-case
// text, with a semantic-similarity fallback so a rephrased use case can
// still hit. Optional; the pipeline runs fine without it.
type ResponseCache struct {
	cache             *semanticcache.SemanticCache[string, models.RecommendResponse]
	semanticThreshold float32
}

// NewResponseCache creates the semantic response cache from configuration.
func NewResponseCache(cacheConfig models.RecommendCacheConfig) (*ResponseCache, error) {
	threshold := cacheConfig.SemanticThreshold
	if threshold == 0 {
		threshold = defaultSemanticThreshold
	}
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("invalid semantic threshold %.2f; must be in (0.0, 1.0]", threshold)
	}

	apiKey := cacheConfig.OpenAIAPIKey
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not set for the response cache embedding provider")
	}

	embedModel := cacheConfig.EmbeddingModel
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}

	var cache *semanticcache.SemanticCache[string, models.RecommendResponse]
	var err error

	switch cacheConfig.Backend {
	case models.CacheBackendMemory:
		capacity := cacheConfig.Capacity
		if capacity <= 0 {
			capacity = 1000
		}
		cache, err = semanticcache.New(
			options.WithOpenAIProvider[string, models.RecommendResponse](apiKey, embedModel),
			options.WithLRUBackend[string, models.RecommendResponse](capacity),
		)
	case models.CacheBackendRedis, "":
		if cacheConfig.RedisURL == "" {
			return nil, fmt.Errorf("redis URL not set for the response cache")
		}
		cache, err = semanticcache.New(
			options.WithOpenAIProvider[string, models.RecommendResponse](apiKey, embedModel),
			options.WithRedisBackend[string, models.RecommendResponse](cacheConfig.RedisURL, 0),
		)
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s (supported: redis, memory)", cacheConfig.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create semantic cache: %w", err)
	}

	return &ResponseCache{
		cache:             cache,
		semanticThreshold: float32(threshold),
	}, nil
}

// Lookup tries an exact key match first, then a semantic similarity search.
// Returns the cached response, the cache tier that hit, and a hit flag.
func (rc *ResponseCache) Lookup(ctx context.Context, useCase, requestID string) (*models.RecommendResponse, string, bool) {
	if hit, found, err := rc.cache.Get(ctx, useCase); found && err == nil {
		fiberlog.Infof("[%s] response cache: exact hit", requestID)
		return &hit, models.CacheTierSemanticExact, true
	} else if err != nil {
		fiberlog.Errorf("[%s] response cache: exact lookup error: %v", requestID, err)
	}

	if match, err := rc.cache.Lookup(ctx, useCase, rc.semanticThreshold); err == nil && match != nil {
		fiberlog.Infof("[%s] response cache: semantic hit (score: %.2f)", requestID, match.Score)
		return &match.Value, models.CacheTierSemanticSimilar, true
	} else if err != nil {
		fiberlog.Errorf("[%s] response cache: semantic lookup error: %v", requestID, err)
	}

	return nil, "", false
}

// Store writes a response asynchronously; a failed store only costs a
// future cache miss.
func (rc *ResponseCache) Store(ctx context.Context, useCase string, resp models.RecommendResponse, requestID string) {
	fiberlog.Debugf("[%s] response cache: storing entry", requestID)
	rc.cache.SetAsync(ctx, useCase, useCase, resp)
}

// Close releases the cache backend.
func (rc *ResponseCache) Close() error {
	if rc.cache != nil {
		return rc.cache.Close()
	}
	return nil
}
