package definition

import "slices"

// ContainerDefinition is the frozen result of an analysis. Accessors hand
// out copies, so a definition can be shared between goroutines without
// locking.
type ContainerDefinition struct {
	services       []ServiceDefinition
	aliases        []AliasDefinition
	prepares       []ServicePrepareDefinition
	delegates      []ServiceDelegateDefinition
	injects        []InjectDefinition
	configurations []ConfigurationDefinition
}

// ServiceDefinitions returns every service in registration order.
func (d ContainerDefinition) ServiceDefinitions() []ServiceDefinition {
	return cloneProfiles(d.services)
}

// AliasDefinitions returns every alias candidate.
func (d ContainerDefinition) AliasDefinitions() []AliasDefinition {
	return slices.Clone(d.aliases)
}

// ServicePrepareDefinitions returns every prepare hook.
func (d ContainerDefinition) ServicePrepareDefinitions() []ServicePrepareDefinition {
	return slices.Clone(d.prepares)
}

// ServiceDelegateDefinitions returns every factory delegate.
func (d ContainerDefinition) ServiceDelegateDefinitions() []ServiceDelegateDefinition {
	return slices.Clone(d.delegates)
}

// InjectDefinitions returns every inject.
func (d ContainerDefinition) InjectDefinitions() []InjectDefinition {
	return cloneInjects(d.injects)
}

// ConfigurationDefinitions returns every configuration type.
func (d ContainerDefinition) ConfigurationDefinitions() []ConfigurationDefinition {
	return slices.Clone(d.configurations)
}

// ServiceDefinition looks up the service registered for typ.
func (d ContainerDefinition) ServiceDefinition(typ string) (ServiceDefinition, bool) {
	for _, s := range d.services {
		if s.Type == typ {
			s.Profiles = slices.Clone(s.Profiles)
			return s, true
		}
	}
	return ServiceDefinition{}, false
}

// IsDelegated reports whether typ is produced by any delegate.
func (d ContainerDefinition) IsDelegated(typ string) bool {
	return slices.ContainsFunc(d.delegates, func(del ServiceDelegateDefinition) bool {
		return del.ServiceType == typ
	})
}

// AliasesFor returns the alias candidates whose abstract endpoint is typ.
func (d ContainerDefinition) AliasesFor(typ string) []AliasDefinition {
	var out []AliasDefinition
	for _, a := range d.aliases {
		if a.AbstractService == typ {
			out = append(out, a)
		}
	}
	return out
}

// Equal compares two definitions list by list.
func (d ContainerDefinition) Equal(other ContainerDefinition) bool {
	return slices.EqualFunc(d.services, other.services, ServiceDefinition.Equal) &&
		slices.Equal(d.aliases, other.aliases) &&
		slices.Equal(d.prepares, other.prepares) &&
		slices.Equal(d.delegates, other.delegates) &&
		slices.EqualFunc(d.injects, other.injects, InjectDefinition.Equal) &&
		slices.Equal(d.configurations, other.configurations)
}

// ToBuilder returns a builder seeded with every definition, for callers that
// derive a new definition from an existing one.
func (d ContainerDefinition) ToBuilder() Builder {
	return Builder{
		services:       cloneProfiles(d.services),
		aliases:        slices.Clone(d.aliases),
		prepares:       slices.Clone(d.prepares),
		delegates:      slices.Clone(d.delegates),
		injects:        cloneInjects(d.injects),
		configurations: slices.Clone(d.configurations),
	}
}
