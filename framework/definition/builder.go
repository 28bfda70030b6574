package definition

import "slices"

// ── Builder ───────────────────────────────────────────────────────────────────

// Builder accumulates definitions without mutation: every With* method
// returns a new Builder and leaves the receiver untouched, so a builder
// value can be kept as a snapshot and branched freely.
//
//	b := definition.NewBuilder().
//	    WithServiceDefinition(definition.ForAbstract("Foo")).
//	    WithServiceDefinition(definition.ForConcrete("Bar"))
//	def := b.Build()
type Builder struct {
	services       []ServiceDefinition
	aliases        []AliasDefinition
	prepares       []ServicePrepareDefinition
	delegates      []ServiceDelegateDefinition
	injects        []InjectDefinition
	configurations []ConfigurationDefinition
}

// NewBuilder returns an empty builder.
func NewBuilder() Builder {
	return Builder{}
}

// appendCopy never writes into the backing array of s; Clip forces append to
// reallocate, so earlier snapshots sharing the array stay intact.
func appendCopy[T any](s []T, v T) []T {
	return append(slices.Clip(s), v)
}

// WithServiceDefinition returns a builder that also holds s.
func (b Builder) WithServiceDefinition(s ServiceDefinition) Builder {
	b.services = appendCopy(b.services, s)
	return b
}

// WithAliasDefinition returns a builder that also holds a.
func (b Builder) WithAliasDefinition(a AliasDefinition) Builder {
	b.aliases = appendCopy(b.aliases, a)
	return b
}

// WithServicePrepareDefinition returns a builder that also holds p.
func (b Builder) WithServicePrepareDefinition(p ServicePrepareDefinition) Builder {
	b.prepares = appendCopy(b.prepares, p)
	return b
}

// WithServiceDelegateDefinition returns a builder that also holds d.
func (b Builder) WithServiceDelegateDefinition(d ServiceDelegateDefinition) Builder {
	b.delegates = appendCopy(b.delegates, d)
	return b
}

// WithInjectDefinition returns a builder that also holds i.
func (b Builder) WithInjectDefinition(i InjectDefinition) Builder {
	b.injects = appendCopy(b.injects, i)
	return b
}

// WithConfigurationDefinition returns a builder that also holds c.
func (b Builder) WithConfigurationDefinition(c ConfigurationDefinition) Builder {
	b.configurations = appendCopy(b.configurations, c)
	return b
}

// HasService reports whether a service for typ has been added.
func (b Builder) HasService(typ string) bool {
	return slices.ContainsFunc(b.services, func(s ServiceDefinition) bool { return s.Type == typ })
}

// Build freezes the accumulated definitions.
func (b Builder) Build() ContainerDefinition {
	return ContainerDefinition{
		services:       cloneProfiles(b.services),
		aliases:        slices.Clone(b.aliases),
		prepares:       slices.Clone(b.prepares),
		delegates:      slices.Clone(b.delegates),
		injects:        cloneInjects(b.injects),
		configurations: slices.Clone(b.configurations),
	}
}

func cloneProfiles(in []ServiceDefinition) []ServiceDefinition {
	out := make([]ServiceDefinition, len(in))
	for i, s := range in {
		s.Profiles = slices.Clone(s.Profiles)
		out[i] = s
	}
	return out
}

func cloneInjects(in []InjectDefinition) []InjectDefinition {
	out := make([]InjectDefinition, len(in))
	for i, inj := range in {
		inj.Profiles = slices.Clone(inj.Profiles)
		inj.Type.Names = slices.Clone(inj.Type.Names)
		out[i] = inj
	}
	return out
}
