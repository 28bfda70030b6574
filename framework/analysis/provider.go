package analysis

import (
	"fmt"

	"github.com/km-arc/go-annotated-container/framework/definition"
)

// ── DefinitionProvider ────────────────────────────────────────────────────────

// DefinitionProviderContext is the write access a third-party provider gets
// to the definition under construction.
type DefinitionProviderContext interface {
	AddServiceDefinition(s definition.ServiceDefinition)
	AddServicePrepareDefinition(p definition.ServicePrepareDefinition)
	AddServiceDelegateDefinition(d definition.ServiceDelegateDefinition)
	AddInjectDefinition(i definition.InjectDefinition)
	AddAliasDefinition(a definition.AliasDefinition)
	AddConfigurationDefinition(c definition.ConfigurationDefinition)
}

// DefinitionProvider contributes definitions for code the scanner never
// sees, typically third-party libraries.
//
// Providers run before any scanned declaration is merged, in the order they
// were passed, so delegates and prepares declared in scanned code can target
// the services they add.
//
//	type LoggerProvider struct{}
//
//	func (LoggerProvider) Provide(ctx analysis.DefinitionProviderContext) {
//	    ctx.AddServiceDefinition(definition.ForAbstract("LoggerInterface"))
//	    ctx.AddServiceDefinition(definition.ForConcrete("StreamLogger"))
//	    ctx.AddAliasDefinition(definition.AliasDefinition{AbstractService: "LoggerInterface", ConcreteService: "StreamLogger"})
//	}
type DefinitionProvider interface {
	Provide(ctx DefinitionProviderContext)
}

// Identifier is implemented by providers that want a stable identity other
// than their Go type name. The identity is part of the cache key.
type Identifier interface {
	Identity() string
}

// ProviderFunc adapts a function to DefinitionProvider under a fixed identity.
type ProviderFunc struct {
	Name string
	Fn   func(ctx DefinitionProviderContext)
}

// Provide calls Fn.
func (p ProviderFunc) Provide(ctx DefinitionProviderContext) { p.Fn(ctx) }

// Identity returns Name.
func (p ProviderFunc) Identity() string { return p.Name }

// NewProviderFunc is shorthand for ProviderFunc{Name: name, Fn: fn}.
func NewProviderFunc(name string, fn func(ctx DefinitionProviderContext)) ProviderFunc {
	return ProviderFunc{Name: name, Fn: fn}
}

// ProviderIdentity returns p's Identity, or its Go type name.
func ProviderIdentity(p DefinitionProvider) string {
	if id, ok := p.(Identifier); ok {
		return id.Identity()
	}
	return fmt.Sprintf("%T", p)
}

// ProviderIdentities maps ProviderIdentity over providers, keeping their
// order. It is nil when there are no providers.
func ProviderIdentities(providers []DefinitionProvider) []string {
	if len(providers) == 0 {
		return nil
	}
	ids := make([]string, len(providers))
	for i, p := range providers {
		ids[i] = ProviderIdentity(p)
	}
	return ids
}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry collects providers, typically from plugin discovery, and
// drops a provider whose identity was already registered.
//
//	reg := analysis.NewProviderRegistry()
//	reg.Register(LoggerProvider{})
//	opts := analysis.Options{ScanSources: srcs, DefinitionProviders: reg.Providers()}
type ProviderRegistry struct {
	providers  []DefinitionProvider
	registered map[string]bool
}

// NewProviderRegistry returns an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{registered: make(map[string]bool)}
}

// Register appends providers, skipping identities already present. It
// reports whether every provider was new.
func (r *ProviderRegistry) Register(providers ...DefinitionProvider) bool {
	allNew := true
	for _, p := range providers {
		id := ProviderIdentity(p)
		if r.registered[id] {
			allNew = false
			continue
		}
		r.registered[id] = true
		r.providers = append(r.providers, p)
	}
	return allNew
}

// Providers returns the registered providers in registration order.
func (r *ProviderRegistry) Providers() []DefinitionProvider {
	out := make([]DefinitionProvider, len(r.providers))
	copy(out, r.providers)
	return out
}

// ── builder-backed context ────────────────────────────────────────────────────

// builderContext threads a copy-on-write builder through provider calls.
type builderContext struct {
	builder definition.Builder
}

func (c *builderContext) AddServiceDefinition(s definition.ServiceDefinition) {
	s.Profiles = definition.NormalizeProfiles(s.Profiles)
	c.builder = c.builder.WithServiceDefinition(s)
}

func (c *builderContext) AddServicePrepareDefinition(p definition.ServicePrepareDefinition) {
	c.builder = c.builder.WithServicePrepareDefinition(p)
}

func (c *builderContext) AddServiceDelegateDefinition(d definition.ServiceDelegateDefinition) {
	c.builder = c.builder.WithServiceDelegateDefinition(d)
}

func (c *builderContext) AddInjectDefinition(i definition.InjectDefinition) {
	i.Profiles = definition.NormalizeProfiles(i.Profiles)
	c.builder = c.builder.WithInjectDefinition(i)
}

func (c *builderContext) AddAliasDefinition(a definition.AliasDefinition) {
	c.builder = c.builder.WithAliasDefinition(a)
}

func (c *builderContext) AddConfigurationDefinition(cfg definition.ConfigurationDefinition) {
	c.builder = c.builder.WithConfigurationDefinition(cfg)
}
