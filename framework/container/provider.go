package container

import (
	"errors"
	"fmt"
	"sync"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the bindings of one concern.
//
// Register only binds. Boot runs after every eager provider is registered,
// so it may resolve bindings of other providers.
//
//	type CacheServiceProvider struct{ container.BaseProvider }
//
//	func (p *CacheServiceProvider) Register(app *container.Container) {
//	    app.Singleton("cache.store", func(c *container.Container) (any, error) { ... })
//	}
type ServiceProvider interface {
	Register(app *Container)

	// Boot may fail, e.g. when a backing service is unreachable.
	Boot(app *Container) error

	// Provides lists the abstracts a deferred provider binds.
	Provides() []string

	// IsDeferred reports whether Register waits until one of Provides() is
	// first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with no-op Boot, Provides and
// IsDeferred.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []string      { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers and boots ServiceProviders, including deferred
// ones.
type ProviderRegistry struct {
	app        *Container
	mu         sync.Mutex
	eager      []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider. An eager provider registers at once and, when
// the registry already booted, boots at once too.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return nil
	}
	r.registered[provider] = true
	booted := r.booted
	if !provider.IsDeferred() {
		r.eager = append(r.eager, provider)
	}
	r.mu.Unlock()

	if provider.IsDeferred() {
		r.deferProvider(provider)
		return nil
	}

	provider.Register(r.app)
	if booted {
		return r.boot(provider)
	}
	return nil
}

// deferProvider installs one loader per provided abstract; the first one
// to fire registers the provider for all of them.
func (r *ProviderRegistry) deferProvider(provider ServiceProvider) {
	var (
		once sync.Once
		err  error
	)
	load := func() error {
		once.Do(func() {
			provider.Register(r.app)
			r.mu.Lock()
			booted := r.booted
			r.mu.Unlock()
			if booted {
				err = r.boot(provider)
			}
		})
		return err
	}
	for _, abstract := range provider.Provides() {
		r.app.Defer(abstract, load)
	}
}

// Boot calls Boot on every eager provider and joins their errors.
func (r *ProviderRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	eager := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	var errs []error
	for _, provider := range eager {
		errs = append(errs, r.boot(provider))
	}
	return errors.Join(errs...)
}

func (r *ProviderRegistry) boot(provider ServiceProvider) error {
	if err := provider.Boot(r.app); err != nil {
		return fmt.Errorf("boot %T: %w", provider, err)
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}
