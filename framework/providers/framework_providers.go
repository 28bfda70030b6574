package providers

import (
	"context"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/km-arc/go-annotated-container/framework/analysis"
	"github.com/km-arc/go-annotated-container/framework/apperrors"
	"github.com/km-arc/go-annotated-container/framework/cache"
	"github.com/km-arc/go-annotated-container/framework/config"
	"github.com/km-arc/go-annotated-container/framework/container"
	"github.com/km-arc/go-annotated-container/framework/http/explorer"
	"github.com/km-arc/go-annotated-container/framework/logging"
	"github.com/km-arc/go-annotated-container/framework/routing"
	"github.com/km-arc/go-annotated-container/framework/scanner"
)

// Abstracts bound by the framework providers.
const (
	ConfigKey           = "config"
	LoggerKey           = "logger"
	MetricsRegistryKey  = "metrics.registry"
	CacheStoreKey       = "cache.store"
	CacheMetricsKey     = "cache.metrics"
	ScannerKey          = "scanner"
	AnalyzerKey         = "analyzer"
	DefinitionProviders = "definition.providers"
	DefinitionSourceKey = "definition.source"
	RouterKey           = "router"
)

const redisPingTimeout = 3 * time.Second

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads and validates the configuration.
//
// Bound abstracts:
//   - "config"         → *config.Config
//   - "configuration"  → alias of "config"
//
// ConfigFile, when set, is read instead of the environment; environment
// variables still override it.
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles   []string
	ConfigFile string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	envFiles, file := p.EnvFiles, p.ConfigFile
	app.Singleton(ConfigKey, func(*container.Container) (any, error) {
		var (
			cfg *config.Config
			err error
		)
		if file != "" {
			cfg, err = config.LoadFile(file)
		} else {
			cfg, err = config.Load(envFiles...)
		}
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	})
	_ = app.Alias(ConfigKey, "configuration")
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider builds the zap logger from the "log" section.
//
// Bound abstracts:
//   - "logger"  → *zap.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
	Output io.Writer // default: stderr
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	out := p.Output
	app.Singleton(LoggerKey, func(c *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, ConfigKey)
		if err != nil {
			return nil, err
		}
		if out != nil {
			return logging.NewWithWriter(cfg.Log, out), nil
		}
		return logging.New(cfg.Log), nil
	})
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider owns the Prometheus registry every other provider
// registers its collectors with.
//
// Bound abstracts:
//   - "metrics.registry"  → *prometheus.Registry
type MetricsServiceProvider struct {
	container.BaseProvider
}

func (p *MetricsServiceProvider) Register(app *container.Container) {
	app.Singleton(MetricsRegistryKey, func(*container.Container) (any, error) {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		return reg, nil
	})
}

// ── CacheServiceProvider ──────────────────────────────────────────────────────

// CacheServiceProvider builds the definition cache store for the configured
// driver. It is deferred: nothing connects to Redis or touches the disk
// until the store is first needed.
//
// Bound abstracts:
//   - "cache.store"    → cache.Store (file, redis or memory)
//   - "cache.metrics"  → *cache.Metrics
type CacheServiceProvider struct {
	container.BaseProvider
}

func (p *CacheServiceProvider) Register(app *container.Container) {
	app.Singleton(CacheStoreKey, func(c *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, ConfigKey)
		if err != nil {
			return nil, err
		}
		return newStore(cfg.Cache)
	})
	app.Singleton(CacheMetricsKey, func(c *container.Container) (any, error) {
		reg, err := container.Resolve[*prometheus.Registry](c, MetricsRegistryKey)
		if err != nil {
			return nil, err
		}
		return cache.NewMetrics(reg), nil
	})
}

// Boot pings Redis so a bad address fails at startup, not on the first
// analysis.
func (p *CacheServiceProvider) Boot(app *container.Container) error {
	cfg, err := container.Resolve[*config.Config](app, ConfigKey)
	if err != nil {
		return err
	}
	if cfg.Cache.Driver != "redis" {
		return nil
	}
	store, err := container.Resolve[*cache.RedisStore](app, CacheStoreKey)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		return apperrors.New(apperrors.ErrCacheRead, "redis at "+cfg.Cache.RedisAddr+" is unreachable", err)
	}
	return nil
}

func (p *CacheServiceProvider) IsDeferred() bool { return true }
func (p *CacheServiceProvider) Provides() []string {
	return []string{CacheStoreKey, CacheMetricsKey}
}

func newStore(cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Driver {
	case "file":
		return cache.NewFileStore(cfg.Dir)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return cache.NewRedisStore(client, cfg.Prefix, cfg.TTL), nil
	case "memory":
		return cache.NewMemoryStore(cfg.Size, cfg.TTL), nil
	default:
		return nil, apperrors.Newf(apperrors.ErrConfigValidate, "cache driver %q has no store", cfg.Driver)
	}
}

// ── AnalysisServiceProvider ───────────────────────────────────────────────────

// AnalysisServiceProvider wires the manifest scanner into the analysis
// pipeline and, unless the cache driver is "none", wraps it in a
// CachingAnalyzer.
//
// Bound abstracts:
//   - "scanner"               → analysis.DeclarationScanner
//   - "definition.providers"  → *analysis.ProviderRegistry
//   - "analyzer"              → analysis.Analyzer
type AnalysisServiceProvider struct {
	container.BaseProvider
}

func (p *AnalysisServiceProvider) Register(app *container.Container) {
	app.Singleton(ScannerKey, func(*container.Container) (any, error) {
		return analysis.DeclarationScanner(scanner.ManifestScanner{}), nil
	})
	app.Singleton(DefinitionProviders, func(*container.Container) (any, error) {
		return analysis.NewProviderRegistry(), nil
	})
	app.Singleton(AnalyzerKey, func(c *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, ConfigKey)
		if err != nil {
			return nil, err
		}
		logger, err := container.Resolve[*zap.Logger](c, LoggerKey)
		if err != nil {
			return nil, err
		}
		sc, err := container.Resolve[analysis.DeclarationScanner](c, ScannerKey)
		if err != nil {
			return nil, err
		}

		pipeline := analysis.NewPipeline(sc, analysis.WithLogger(logger))
		if cfg.Cache.Driver == "none" {
			return analysis.Analyzer(pipeline), nil
		}

		store, err := container.Resolve[cache.Store](c, CacheStoreKey)
		if err != nil {
			return nil, err
		}
		metrics, err := container.Resolve[*cache.Metrics](c, CacheMetricsKey)
		if err != nil {
			return nil, err
		}
		return analysis.Analyzer(cache.NewCachingAnalyzer(pipeline, store,
			cache.WithLogger(logger),
			cache.WithMetrics(metrics),
		)), nil
	})
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider builds the router and, on Boot, mounts the
// definition explorer and /metrics. The explorer reads from whatever is
// bound as "definition.source".
//
// Bound abstracts:
//   - "router"  → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton(RouterKey, func(c *container.Container) (any, error) {
		logger, err := container.Resolve[*zap.Logger](c, LoggerKey)
		if err != nil {
			return nil, err
		}
		return routing.New(logger), nil
	})
}

func (p *RoutingServiceProvider) Boot(app *container.Container) error {
	router, err := container.Resolve[*routing.Router](app, RouterKey)
	if err != nil {
		return err
	}
	logger, err := container.Resolve[*zap.Logger](app, LoggerKey)
	if err != nil {
		return err
	}
	source, err := container.Resolve[explorer.DefinitionSource](app, DefinitionSourceKey)
	if err != nil {
		return err
	}
	reg, err := container.Resolve[*prometheus.Registry](app, MetricsRegistryKey)
	if err != nil {
		return err
	}

	explorer.New(source, logger).Routes(router)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return nil
}
