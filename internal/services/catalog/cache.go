package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/modelscout/modelscout/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/singleflight"
)

// Source produces a normalized catalog. It is an interface so tests can
// substitute a canned catalog for the live fetcher.
type Source interface {
	Fetch(ctx context.Context) ([]models.Model, error)
}

// Cache holds the most recently fetched catalog and refreshes it on TTL
// expiry. Concurrent stale reads coalesce into a single upstream fetch, so
// a burst of recommendation requests after expiry costs one catalog call.
type Cache struct {
	source    Source
	ttl       time.Duration
	snapshots *SnapshotStore

	mu      sync.RWMutex
	current *models.CachedCatalog

	group singleflight.Group
}

// Status describes the cache for the admin surface.
type Status struct {
	Fresh      bool       `json:"fresh"`
	ModelCount int        `json:"model_count"`
	FetchedAt  *time.Time `json:"fetched_at,omitempty"`
	TTLSeconds int        `json:"ttl_seconds"`
}

// NewCache creates a catalog cache over the given source. snapshots may be
// nil when persistence is not configured.
func NewCache(source Source, ttl time.Duration, snapshots *SnapshotStore) *Cache {
	return &Cache{
		source:    source,
		ttl:       ttl,
		snapshots: snapshots,
	}
}

// WarmStart seeds the cache from the persisted snapshot, if one exists and
// is still usable. Failures are logged and ignored since the next Get will
// fetch from upstream anyway.
func (c *Cache) WarmStart() {
	if c.snapshots == nil {
		return
	}

	catalog, err := c.snapshots.Load()
	if err != nil {
		fiberlog.Warnf("[catalog] warm start skipped: %v", err)
		return
	}
	if catalog == nil {
		return
	}

	c.mu.Lock()
	c.current = catalog
	c.mu.Unlock()

	fiberlog.Infof("[catalog] warm started with %d models from snapshot (fetched %s)",
		len(catalog.Models), catalog.FetchedAt.Format(time.RFC3339))
}

// Get returns the cached catalog, refreshing it first when stale or empty.
// On refresh failure the cache stays stale and the error is returned, so
// callers retry on their next request.
func (c *Cache) Get(ctx context.Context) (*models.CachedCatalog, error) {
	if catalog := c.cached(); catalog != nil && catalog.Fresh(c.ttl) {
		return catalog, nil
	}

	v, err, shared := c.group.Do("catalog", func() (any, error) {
		// A concurrent caller may have refreshed while we waited.
		if catalog := c.cached(); catalog != nil && catalog.Fresh(c.ttl) {
			return catalog, nil
		}

		fetched, err := c.source.Fetch(ctx)
		if err != nil {
			return nil, err
		}

		catalog := &models.CachedCatalog{
			Models:    fetched,
			FetchedAt: time.Now(),
		}

		c.mu.Lock()
		c.current = catalog
		c.mu.Unlock()

		c.persist(catalog)
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		fiberlog.Debugf("[catalog] refresh coalesced with an in-flight fetch")
	}
	return v.(*models.CachedCatalog), nil
}

// Invalidate drops the cached catalog so the next Get fetches from upstream.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()

	fiberlog.Infof("[catalog] cache invalidated")
}

// Status reports the current cache state without triggering a refresh.
func (c *Cache) Status() Status {
	status := Status{TTLSeconds: int(c.ttl.Seconds())}

	catalog := c.cached()
	if catalog == nil {
		return status
	}

	fetchedAt := catalog.FetchedAt
	status.Fresh = catalog.Fresh(c.ttl)
	status.ModelCount = len(catalog.Models)
	status.FetchedAt = &fetchedAt
	return status
}

func (c *Cache) cached() *models.CachedCatalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *Cache) persist(catalog *models.CachedCatalog) {
	if c.snapshots == nil {
		return
	}
	if err := c.snapshots.Save(catalog); err != nil {
		fiberlog.Warnf("[catalog] snapshot persist failed: %v", err)
	}
}
