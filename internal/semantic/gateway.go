// Semantic classifier gateway: cache lookup, external call with bounded
// retry, deterministic offline fallback.
package semantic

import (
	"context"
	"log"
	"time"

	"remotejobs-engine/internal/domain"
	"remotejobs-engine/internal/fingerprint"
)

// Classifier is the external semantic-classification service.
type Classifier interface {
	Classify(ctx context.Context, title, description, location, price string) (domain.Classification, error)
}

type Gateway struct {
	cache      *fingerprint.Cache
	external   Classifier
	fallback   *Fallback
	maxRetries int
	baseDelay  time.Duration

	// test seam; production sleeps for real
	sleep func(time.Duration)
}

func NewGateway(cache *fingerprint.Cache, external Classifier, fallback *Fallback, maxRetries int, baseDelay time.Duration) *Gateway {
	return &Gateway{
		cache:      cache,
		external:   external,
		fallback:   fallback,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		sleep:      time.Sleep,
	}
}

// Classify resolves one record: cache hit, else external call (retried
// with exponential backoff on rate limits only), else fallback. Only
// external successes are cached; a fallback verdict is a degraded
// substitute, and persisting it would mask a recovered service.
func (g *Gateway) Classify(ctx context.Context, title, description, location, price string) domain.Classification {
	fp := fingerprint.New(title, description, location)

	if cached, ok := g.cache.Get(fp); ok {
		cached.Stage = domain.StageSemanticCache
		return cached
	}

	if g.external != nil {
		res, err := g.callWithRetry(ctx, title, description, location, price)
		if err == nil {
			g.cache.Put(fp, res)
			return res
		}
		log.Printf("[semantic] external classification failed, using fallback: %v", err)
	}

	return g.fallback.Classify(title, description, location)
}

func (g *Gateway) callWithRetry(ctx context.Context, title, description, location, price string) (domain.Classification, error) {
	var lastErr error

	for attempt := 0; attempt < g.maxRetries; attempt++ {
		res, err := g.external.Classify(ctx, title, description, location, price)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if !retryable(err) || attempt == g.maxRetries-1 {
			break
		}

		delay := g.baseDelay * (1 << attempt)
		log.Printf("[semantic] rate limited, retrying in %s (attempt %d/%d)", delay, attempt+1, g.maxRetries)
		g.sleep(delay)

		if ctx.Err() != nil {
			return domain.Classification{}, ctx.Err()
		}
	}
	return domain.Classification{}, lastErr
}

// CacheStats exposes the gateway's cache counters for the run report.
func (g *Gateway) CacheStats() fingerprint.Stats {
	return g.cache.Stats()
}
