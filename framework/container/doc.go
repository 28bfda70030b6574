// Package container is the application's bootstrap service container and
// service provider registry.
//
// It wires the tool itself (configuration, logger, cache store, analyzer,
// router). It is not the container whose definitions the analysis package
// produces: those are data, handed to a construction stage elsewhere.
//
// # Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        safe to resolve everything after this
//  4. Run commands or serve requests
//
// # Bindings
//
//	// new value every Make()
//	c.Bind("clock", func(c *container.Container) (any, error) { return time.Now, nil })
//
//	// created once, reused
//	c.Singleton("cache.store", func(c *container.Container) (any, error) {
//	    return cache.NewFileStore(".cache")
//	})
//
//	// pre-built value
//	c.Instance("config", cfg)
//
//	// alternative name
//	_ = c.Alias("config", "configuration")
//
// # Resolving
//
//	cfg, err := container.Resolve[*config.Config](c, "config")
//	logger := container.MustResolve[*zap.Logger](c, "logger")
//
// Factory errors are wrapped with the abstract they were building; an
// abstract nobody bound yields ErrNotBound.
//
// # Deferred providers
//
// A provider whose IsDeferred returns true is registered the first time one
// of its Provides() abstracts is resolved. Booting follows if the registry
// has already booted.
package container
