package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-annotated-container/framework/analysis"
	"github.com/km-arc/go-annotated-container/framework/cache"
	"github.com/km-arc/go-annotated-container/framework/config"
	"github.com/km-arc/go-annotated-container/framework/container"
	"github.com/km-arc/go-annotated-container/framework/definition"
	"github.com/km-arc/go-annotated-container/framework/http/explorer"
	"github.com/km-arc/go-annotated-container/framework/logging"
	"github.com/km-arc/go-annotated-container/framework/profiles"
	"github.com/km-arc/go-annotated-container/framework/providers"
	"github.com/km-arc/go-annotated-container/framework/resolution"
	"github.com/km-arc/go-annotated-container/framework/routing"
)

const shutdownTimeout = 10 * time.Second

// Options configures New.
type Options struct {
	EnvFiles   []string  // .env files, default ".env"
	ConfigFile string    // YAML file read instead of the environment
	LogOutput  io.Writer // default: stderr
}

// Application is the top-level application container.
// It embeds the bootstrap Container and ProviderRegistry so callers can
// bind their own services next to the framework ones.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

var _ explorer.DefinitionSource = (*Application)(nil)

// New registers the framework providers. Nothing is loaded until a
// binding is resolved or Boot runs.
//
//	application := app.New(app.Options{})
//	def, err := application.Analyze(ctx)
func New(opts Options) *Application {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	a := &Application{
		Container: c,
		Providers: registry,
	}
	c.Instance(providers.DefinitionSourceKey, explorer.DefinitionSource(a))

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{EnvFiles: opts.EnvFiles, ConfigFile: opts.ConfigFile},
		&providers.LoggingServiceProvider{Output: opts.LogOutput},
		&providers.MetricsServiceProvider{},
		&providers.CacheServiceProvider{},
		&providers.AnalysisServiceProvider{},
		&providers.RoutingServiceProvider{},
	} {
		// Registration of a fresh provider on an unbooted registry cannot fail.
		_ = registry.Register(p)
	}
	return a
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// ── Accessors ─────────────────────────────────────────────────────────────────

// Config resolves *config.Config from the container.
func (a *Application) Config() (*config.Config, error) {
	return container.Resolve[*config.Config](a.Container, providers.ConfigKey)
}

// Logger resolves the logger; a configuration error yields a nop logger.
func (a *Application) Logger() *zap.Logger {
	logger, err := container.Resolve[*zap.Logger](a.Container, providers.LoggerKey)
	if err != nil {
		return logging.Nop()
	}
	return logger
}

// Analyzer resolves the (possibly caching) analyzer.
func (a *Application) Analyzer() (analysis.Analyzer, error) {
	return container.Resolve[analysis.Analyzer](a.Container, providers.AnalyzerKey)
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() (*routing.Router, error) {
	return container.Resolve[*routing.Router](a.Container, providers.RouterKey)
}

// RegisterDefinitionProvider adds providers run before scanned
// declarations on every analysis. It reports whether all of them were new.
func (a *Application) RegisterDefinitionProvider(p ...analysis.DefinitionProvider) (bool, error) {
	reg, err := container.Resolve[*analysis.ProviderRegistry](a.Container, providers.DefinitionProviders)
	if err != nil {
		return false, err
	}
	return reg.Register(p...), nil
}

// ── Analysis ──────────────────────────────────────────────────────────────────

// AnalysisOptions assembles the configured sources and the registered
// definition providers.
func (a *Application) AnalysisOptions() (analysis.Options, error) {
	cfg, err := a.Config()
	if err != nil {
		return analysis.Options{}, err
	}
	reg, err := container.Resolve[*analysis.ProviderRegistry](a.Container, providers.DefinitionProviders)
	if err != nil {
		return analysis.Options{}, err
	}
	return analysis.Options{
		ScanSources:         cfg.Analysis.Sources,
		DefinitionProviders: reg.Providers(),
	}, nil
}

// Analyze runs the configured analyzer over the configured sources.
func (a *Application) Analyze(ctx context.Context) (definition.ContainerDefinition, error) {
	opts, err := a.AnalysisOptions()
	if err != nil {
		return definition.ContainerDefinition{}, err
	}
	analyzer, err := a.Analyzer()
	if err != nil {
		return definition.ContainerDefinition{}, err
	}
	return analyzer.Analyze(ctx, opts)
}

// Definition is Analyze; it lets the explorer read from the application.
func (a *Application) Definition(ctx context.Context) (definition.ContainerDefinition, error) {
	return a.Analyze(ctx)
}

// View analyzes and filters the result by active. Empty active falls back
// to the configured profiles.
func (a *Application) View(ctx context.Context, active []string) (*profiles.View, error) {
	active, err := a.activeProfiles(active)
	if err != nil {
		return nil, err
	}
	def, err := a.Analyze(ctx)
	if err != nil {
		return nil, err
	}
	return profiles.NewView(def, active)
}

// ResolveAlias analyzes and resolves abstract under active, or the
// configured profiles when active is empty.
func (a *Application) ResolveAlias(ctx context.Context, abstract string, active []string) (resolution.Resolution, error) {
	active, err := a.activeProfiles(active)
	if err != nil {
		return resolution.Resolution{}, err
	}
	def, err := a.Analyze(ctx)
	if err != nil {
		return resolution.Resolution{}, err
	}
	return resolution.ResolveAlias(def, abstract, active), nil
}

// ClearCache drops the cached definition for the configured sources. It
// reports false when no cache is configured.
func (a *Application) ClearCache(ctx context.Context) (bool, error) {
	analyzer, err := a.Analyzer()
	if err != nil {
		return false, err
	}
	caching, ok := analyzer.(*cache.CachingAnalyzer)
	if !ok {
		return false, nil
	}
	opts, err := a.AnalysisOptions()
	if err != nil {
		return false, err
	}
	return true, caching.Clear(ctx, opts)
}

func (a *Application) activeProfiles(active []string) ([]string, error) {
	if len(active) > 0 {
		return active, nil
	}
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	return cfg.Analysis.Profiles, nil
}

// ── Server ────────────────────────────────────────────────────────────────────

// Run boots the application (if needed) and serves the explorer until ctx
// is done, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}
	cfg, err := a.Config()
	if err != nil {
		return err
	}
	router, err := a.Router()
	if err != nil {
		return err
	}
	logger := a.Logger()
	defer func() { _ = logger.Sync() }()
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing cache store", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("explorer listening",
			zap.String("app", cfg.App.Name),
			zap.String("env", cfg.App.Env),
			zap.String("addr", srv.Addr),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// Close releases the cache store's connections. A store that was never
// resolved is left alone, so closing does not dial Redis.
func (a *Application) Close() error {
	if !a.Resolved(providers.CacheStoreKey) {
		return nil
	}
	store, err := container.Resolve[cache.Store](a.Container, providers.CacheStoreKey)
	if err != nil {
		return err
	}
	if closer, ok := store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Environment returns APP_ENV, or "" when the configuration is invalid.
func (a *Application) Environment() string {
	cfg, err := a.Config()
	if err != nil {
		return ""
	}
	return cfg.App.Env
}

func (a *Application) IsLocal() bool      { return a.Environment() == "local" }
func (a *Application) IsProduction() bool { return a.Environment() == "production" }
func (a *Application) IsTesting() bool    { return a.Environment() == "testing" }
func (a *Application) Version() string    { return "0.1.0" }
