package container

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory builds a value from the container.
type Factory func(c *Container) (any, error)

// binding holds a registered factory and whether its result is shared.
type binding struct {
	factory Factory
	shared  bool
}

// ErrNotBound is returned by Make for an abstract nothing was registered for.
var ErrNotBound = errors.New("container: no binding")

// ── Container ─────────────────────────────────────────────────────────────────

// Container wires the application's own services at bootstrap: config,
// logger, cache store, analyzer, router.
//
// It supports:
//   - Bind / Singleton / Instance / Alias
//   - Make / Resolve (generic)
//   - deferred loaders, run the first time a missing abstract is asked for
type Container struct {
	mu sync.RWMutex

	// abstract → binding
	bindings map[string]*binding

	// abstract → resolved shared instance
	instances map[string]any

	// alias → abstract (canonical key)
	aliases map[string]string

	// abstract → loader that registers it on first use
	deferred map[string]func() error
}

// New creates an empty container.
func New() *Container {
	c := &Container{
		bindings:  make(map[string]*binding),
		instances: make(map[string]any),
		aliases:   make(map[string]string),
		deferred:  make(map[string]func() error),
	}
	c.instances["container"] = c
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a factory run on every Make.
func (c *Container) Bind(abstract string, factory Factory) {
	c.bind(abstract, factory, false)
}

// Singleton registers a factory whose result is cached after first resolution.
//
//	c.Singleton("cache.store", func(c *container.Container) (any, error) {
//	    cfg, err := container.Resolve[*config.Config](c, "config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return cache.NewFileStore(cfg.Cache.Dir)
//	})
func (c *Container) Singleton(abstract string, factory Factory) {
	c.bind(abstract, factory, true)
}

func (c *Container) bind(abstract string, factory Factory, shared bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.instances, key)
	delete(c.deferred, key)
	c.bindings[key] = &binding{factory: factory, shared: shared}
}

// Instance registers a pre-built value.
func (c *Container) Instance(abstract string, instance any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	delete(c.deferred, key)
	c.instances[key] = instance
}

// Alias registers an alternative name for an abstract.
func (c *Container) Alias(abstract, alias string) error {
	if abstract == alias {
		return fmt.Errorf("container: [%s] is aliased to itself", abstract)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aliases[alias] = c.canonical(abstract)
	return nil
}

// Defer registers load to run the first time abstract is resolved while
// nothing is bound for it. load is expected to bind abstract.
func (c *Container) Defer(abstract string, load func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	if _, bound := c.bindings[key]; bound {
		return
	}
	c.deferred[key] = load
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves an abstract from the container.
func (c *Container) Make(abstract string) (any, error) {
	c.mu.RLock()
	key := c.canonical(abstract)
	inst, hasInstance := c.instances[key]
	b, hasBinding := c.bindings[key]
	load, hasLoader := c.deferred[key]
	c.mu.RUnlock()

	switch {
	case hasInstance:
		return inst, nil
	case hasBinding:
		return c.build(key, b)
	case hasLoader:
		c.mu.Lock()
		delete(c.deferred, key)
		c.mu.Unlock()
		if err := load(); err != nil {
			return nil, fmt.Errorf("container: load [%s]: %w", abstract, err)
		}
		return c.Make(abstract)
	default:
		return nil, fmt.Errorf("%w registered for [%s]", ErrNotBound, abstract)
	}
}

// build runs the factory outside the lock; when two goroutines race on a
// shared binding the first stored instance wins.
func (c *Container) build(key string, b *binding) (any, error) {
	instance, err := b.factory(c)
	if err != nil {
		return nil, fmt.Errorf("container: build [%s]: %w", key, err)
	}
	if !b.shared {
		return instance, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.instances[key]; ok {
		return existing, nil
	}
	c.instances[key] = instance
	return instance, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if an abstract has been registered or deferred.
func (c *Container) Bound(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(abstract)
	_, hasBinding := c.bindings[key]
	_, hasInstance := c.instances[key]
	_, hasLoader := c.deferred[key]
	return hasBinding || hasInstance || hasLoader
}

// Resolved returns true if a shared abstract has been built.
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.canonical(abstract)]
	return ok
}

// Keys returns every registered abstract, sorted.
func (c *Container) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool)
	for k := range c.bindings {
		seen[k] = true
	}
	for k := range c.instances {
		seen[k] = true
	}
	for k := range c.deferred {
		seen[k] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// canonical resolves an alias to its canonical key.
func (c *Container) canonical(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve calls Make and type-asserts the result.
//
//	logger, err := container.Resolve[*zap.Logger](c, "logger")
func Resolve[T any](c *Container, abstract string) (T, error) {
	var zero T
	instance, err := c.Make(abstract)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: Resolve[%T]: [%s] resolved to %T", zero, abstract, instance)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error. Use it where a missing
// binding is a wiring bug.
func MustResolve[T any](c *Container, abstract string) T {
	typed, err := Resolve[T](c, abstract)
	if err != nil {
		panic(err)
	}
	return typed
}
