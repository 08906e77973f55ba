// Package securelink resolves and caches the short-lived CDN endpoint
// descriptors the content system issues per product and protocol generation.
package securelink

import (
	"fmt"
	"sync"
	"time"

	"GalaxyClientv2/internal/config"
	"GalaxyClientv2/internal/logging"
	"GalaxyClientv2/internal/models"
	"GalaxyClientv2/pkg/gogapi"
	"GalaxyClientv2/pkg/gogerrors"
)

type cacheKey struct {
	ProductID  string
	Generation int
}

type cacheEntry struct {
	once      sync.Once
	endpoints []models.EndpointDescriptor
	err       error
}

// Resolver caches endpoint descriptors for the duration of one download
// session. Population is single-writer per key, reads after population are
// lock-free on the entry. Descriptors expire, so the cache is never
// persisted across sessions.
type Resolver struct {
	API *gogapi.Client

	MaxAttempts int
	Backoff     time.Duration

	mu    sync.Mutex
	cache map[cacheKey]*cacheEntry
}

func NewResolver(api *gogapi.Client) *Resolver {
	return &Resolver{
		API:         api,
		MaxAttempts: config.Config.MaxSecureLinkAttempts,
		Backoff:     time.Duration(config.Config.SecureLinkBackoffMs) * time.Millisecond,
		cache:       make(map[cacheKey]*cacheEntry),
	}
}

// Resolve returns the ordered candidate endpoints for (productID,
// generation). Order is the fallback priority and is preserved verbatim
// from the issuance response.
func (r *Resolver) Resolve(productID string, generation int) ([]models.EndpointDescriptor, error) {
	key := cacheKey{ProductID: productID, Generation: generation}

	r.mu.Lock()
	entry, ok := r.cache[key]
	if !ok {
		entry = &cacheEntry{}
		r.cache[key] = entry
	}
	r.mu.Unlock()

	entry.once.Do(func() {
		entry.endpoints, entry.err = r.fetch(productID, generation)
	})
	return entry.endpoints, entry.err
}

// fetch issues the link request with a bounded retry loop. The upstream
// behavior retried forever, here exhaustion surfaces ErrSecureLinkUnavailable.
func (r *Resolver) fetch(productID string, generation int) ([]models.EndpointDescriptor, error) {
	var lastErr error

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		endpoints, err := r.API.GetSecureLink(productID, "/", generation, "")
		if err == nil {
			logging.GlobalLogger.Info(fmt.Sprintf("Got %d generation-%d secure links for product %s", len(endpoints), generation, productID))
			return endpoints, nil
		}

		lastErr = err
		if attempt < r.MaxAttempts {
			backoff := r.Backoff * time.Duration(1<<(attempt-1))
			logging.GlobalLogger.Warn(fmt.Sprintf("Secure link request failed for product %s (generation %d), retrying in %s (attempt %d/%d): %v",
				productID, generation, backoff, attempt, r.MaxAttempts, err))
			time.Sleep(backoff)
		}
	}

	logging.GlobalLogger.Error(fmt.Sprintf("Secure link resolution exhausted for product %s (generation %d): %v", productID, generation, lastErr))
	return nil, gogerrors.Wrapf(gogerrors.ErrSecureLinkUnavailable, "product %s generation %d: %v", productID, generation, lastErr)
}
