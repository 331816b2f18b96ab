package reference

import (
	"context"
	"fmt"
	"time"

	"wellness-engine/internal/common/errors"
	"wellness-engine/internal/common/logger"
)

// Provider loads Tables from a Source, consulting an optional Cache first.
type Provider struct {
	source Source
	cache  *Cache
	logger logger.Logger
}

// NewProvider builds a provider. cache may be nil.
func NewProvider(source Source, cache *Cache, log logger.Logger) *Provider {
	return &Provider{
		source: source,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "reference", "source": source.Name()}),
	}
}

// Load returns validated tables. Cache failures are logged and fall through
// to the source; a cached snapshot that fails validation is discarded.
func (p *Provider) Load(ctx context.Context) (*Tables, error) {
	if p.cache != nil {
		if tables, ok := p.fromCache(ctx); ok {
			return tables, nil
		}
	}

	snap, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, errors.NewReferenceDataLoadFailedError(p.source.Name(), err)
	}

	tables, err := NewTablesFromSnapshot(snap)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, tables.Snapshot()); err != nil {
			p.logger.Warn("failed to cache reference tables", map[string]interface{}{
				"error": errors.NewReferenceCacheFailedError(err),
			})
		}
	}

	p.logger.Info("reference tables loaded", map[string]interface{}{
		"rows": tables.RowCounts(),
	})
	return tables, nil
}

// LoadWithRetry retries Load with exponential backoff while the failure is
// retryable. Invalid reference data is returned at once.
func (p *Provider) LoadWithRetry(ctx context.Context, maxAttempts int, initialDelay time.Duration) (*Tables, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	delay := initialDelay

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var tables *Tables
		if tables, err = p.Load(ctx); err == nil {
			return tables, nil
		}
		if !errors.AsStandardError(err).Retryable || attempt == maxAttempts {
			break
		}

		p.logger.Warn("reference load failed, retrying", map[string]interface{}{
			"error":       err,
			"attempt":     attempt,
			"maxAttempts": maxAttempts,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("reference load cancelled after %d attempts: %w", attempt, ctx.Err())
		}
		delay *= 2
	}
	return nil, err
}

func (p *Provider) fromCache(ctx context.Context) (*Tables, bool) {
	snap, found, err := p.cache.Get(ctx)
	if err != nil {
		p.logger.Warn("reference cache read failed", map[string]interface{}{
			"error": errors.NewReferenceCacheFailedError(err),
		})
		return nil, false
	}
	if !found {
		return nil, false
	}

	tables, err := NewTablesFromSnapshot(snap)
	if err != nil {
		p.logger.Warn("discarding invalid cached reference tables", map[string]interface{}{
			"error": err,
		})
		return nil, false
	}

	p.logger.Debug("reference tables served from cache", map[string]interface{}{
		"rows": tables.RowCounts(),
	})
	return tables, true
}
