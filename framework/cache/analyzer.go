// Package cache memoizes analysis results in a pluggable Store, keyed by the
// scan sources and the definition providers.
package cache

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/km-arc/go-annotated-container/framework/analysis"
	"github.com/km-arc/go-annotated-container/framework/apperrors"
	"github.com/km-arc/go-annotated-container/framework/definition"
	"github.com/km-arc/go-annotated-container/framework/serializer"
)

// CachingAnalyzer wraps another Analyzer. On a hit the stored definition is
// returned without calling the inner analyzer.
type CachingAnalyzer struct {
	inner   analysis.Analyzer
	store   Store
	logger  *zap.Logger
	metrics *Metrics
}

var _ analysis.Analyzer = (*CachingAnalyzer)(nil)

// Option configures a CachingAnalyzer.
type Option func(*CachingAnalyzer)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *CachingAnalyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics records hits, misses and writes.
func WithMetrics(m *Metrics) Option {
	return func(a *CachingAnalyzer) { a.metrics = m }
}

// NewCachingAnalyzer returns an Analyzer backed by store.
func NewCachingAnalyzer(inner analysis.Analyzer, store Store, opts ...Option) *CachingAnalyzer {
	a := &CachingAnalyzer{
		inner:  inner,
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze serves the definition for opts from the store, analyzing and
// storing it on a miss. A stored entry that no longer decodes is replaced.
func (a *CachingAnalyzer) Analyze(ctx context.Context, opts analysis.Options) (definition.ContainerDefinition, error) {
	if err := analysis.ValidateScanSources(opts.ScanSources); err != nil {
		return definition.ContainerDefinition{}, err
	}

	key, err := Key(opts)
	if err != nil {
		return definition.ContainerDefinition{}, err
	}
	log := a.logger.With(zap.String("cache_key", key.String()))

	data, err := a.store.Get(ctx, key.String())
	switch {
	case err == nil:
		def, decodeErr := serializer.Deserialize(data)
		if decodeErr == nil {
			a.count(func(m *Metrics) { m.Hits.Inc() })
			log.Debug("container definition served from cache")
			return def, nil
		}
		log.Warn("cached container definition is unreadable, analyzing again", zap.Error(decodeErr))
	case errors.Is(err, ErrCacheMiss):
	default:
		return definition.ContainerDefinition{}, apperrors.New(apperrors.ErrCacheRead, "read cached container definition", err)
	}

	a.count(func(m *Metrics) { m.Misses.Inc() })

	def, err := a.inner.Analyze(ctx, opts)
	if err != nil {
		return definition.ContainerDefinition{}, err
	}

	encoded, err := serializer.Serialize(def)
	if err != nil {
		a.count(func(m *Metrics) { m.WriteFailures.Inc() })
		return definition.ContainerDefinition{}, apperrors.New(apperrors.ErrCacheWrite, "encode container definition for cache", err)
	}
	if err := a.store.Set(ctx, key.String(), encoded); err != nil {
		a.count(func(m *Metrics) { m.WriteFailures.Inc() })
		return definition.ContainerDefinition{}, apperrors.New(apperrors.ErrCacheWrite, "write container definition to cache", err)
	}

	a.count(func(m *Metrics) { m.Writes.Inc() })
	log.Info("container definition cached", zap.Int("bytes", len(encoded)))
	return def, nil
}

// Clear drops the entry for opts.
func (a *CachingAnalyzer) Clear(ctx context.Context, opts analysis.Options) error {
	key, err := Key(opts)
	if err != nil {
		return err
	}
	if err := a.store.Delete(ctx, key.String()); err != nil {
		return apperrors.New(apperrors.ErrCacheWrite, "delete cached container definition", err)
	}
	return nil
}

func (a *CachingAnalyzer) count(fn func(*Metrics)) {
	if a.metrics != nil {
		fn(a.metrics)
	}
}
