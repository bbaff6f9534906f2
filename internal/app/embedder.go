package app

import (
	"context"

	"go.uber.org/zap"

	"assignment-helper/internal/metrics"
)

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingCache is satisfied by cache.EmbeddingCache.
type EmbeddingCache interface {
	Get(ctx context.Context, model, text string) ([]float32, bool, error)
	Set(ctx context.Context, model, text string, vec []float32) error
}

// CachedEmbedder consults the cache before calling the embedding API. Cache
// errors are logged and the call falls through to the wrapped embedder.
type CachedEmbedder struct {
	inner   Embedder
	cache   EmbeddingCache
	model   string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewCachedEmbedder(inner Embedder, cache EmbeddingCache, model string, logger *zap.Logger, m *metrics.Metrics) *CachedEmbedder {
	return &CachedEmbedder{
		inner:   inner,
		cache:   cache,
		model:   model,
		logger:  logger,
		metrics: m,
	}
}

func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, ok, err := e.cache.Get(ctx, e.model, text)
	if err != nil {
		e.logger.Warn("embedding cache get failed", zap.Error(err))
	}
	if ok {
		e.metrics.RecordEmbeddingCache(true)
		return vec, nil
	}
	e.metrics.RecordEmbeddingCache(false)

	vec, err = e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := e.cache.Set(ctx, e.model, text, vec); err != nil {
		e.logger.Warn("embedding cache set failed", zap.Error(err))
	}
	return vec, nil
}
