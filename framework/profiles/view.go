// Package profiles projects a ContainerDefinition onto a set of active
// profiles.
package profiles

import (
	"slices"

	"github.com/km-arc/go-annotated-container/framework/apperrors"
	"github.com/km-arc/go-annotated-container/framework/definition"
)

// View is a read-only projection of a definition under active profiles.
//
//   - services and injects survive when a declared profile is active
//   - aliases survive when both endpoints survive
//   - prepares and delegates survive when their service survives
//   - configurations are never filtered
type View struct {
	active         []string
	services       []definition.ServiceDefinition
	aliases        []definition.AliasDefinition
	prepares       []definition.ServicePrepareDefinition
	delegates      []definition.ServiceDelegateDefinition
	injects        []definition.InjectDefinition
	configurations []definition.ConfigurationDefinition
}

// NewView filters def for active. An empty active set means the default
// profile. An alias whose endpoint is not a service of def is rejected with
// DEFINITION.INVALID_ALIAS.
func NewView(def definition.ContainerDefinition, active []string) (*View, error) {
	v := &View{
		active:         definition.NormalizeProfiles(active),
		configurations: def.ConfigurationDefinitions(),
	}

	all := make(map[string]bool)
	kept := make(map[string]bool)
	for _, svc := range def.ServiceDefinitions() {
		all[svc.Type] = true
		if svc.VisibleIn(v.active) {
			kept[svc.Type] = true
			v.services = append(v.services, svc)
		}
	}

	for _, a := range def.AliasDefinitions() {
		for _, endpoint := range []string{a.AbstractService, a.ConcreteService} {
			if !all[endpoint] {
				return nil, apperrors.Newf(apperrors.ErrInvalidAlias,
					"alias %s -> %s references %s, which is not a service", a.AbstractService, a.ConcreteService, endpoint)
			}
		}
		if kept[a.AbstractService] && kept[a.ConcreteService] {
			v.aliases = append(v.aliases, a)
		}
	}

	for _, p := range def.ServicePrepareDefinitions() {
		if kept[p.Service] {
			v.prepares = append(v.prepares, p)
		}
	}
	for _, d := range def.ServiceDelegateDefinitions() {
		if kept[d.ServiceType] {
			v.delegates = append(v.delegates, d)
		}
	}
	for _, i := range def.InjectDefinitions() {
		if i.VisibleIn(v.active) {
			v.injects = append(v.injects, i)
		}
	}

	return v, nil
}

// ActiveProfiles returns the normalized active profiles.
func (v *View) ActiveProfiles() []string { return slices.Clone(v.active) }

func (v *View) ServiceDefinitions() []definition.ServiceDefinition { return slices.Clone(v.services) }
func (v *View) AliasDefinitions() []definition.AliasDefinition     { return slices.Clone(v.aliases) }

func (v *View) ServicePrepareDefinitions() []definition.ServicePrepareDefinition {
	return slices.Clone(v.prepares)
}

func (v *View) ServiceDelegateDefinitions() []definition.ServiceDelegateDefinition {
	return slices.Clone(v.delegates)
}

func (v *View) InjectDefinitions() []definition.InjectDefinition { return slices.Clone(v.injects) }

func (v *View) ConfigurationDefinitions() []definition.ConfigurationDefinition {
	return slices.Clone(v.configurations)
}

// ContainerDefinition rebuilds the filtered view as a definition, e.g. to
// hand to the alias resolver or the serializer.
func (v *View) ContainerDefinition() definition.ContainerDefinition {
	b := definition.NewBuilder()
	for _, s := range v.services {
		b = b.WithServiceDefinition(s)
	}
	for _, a := range v.aliases {
		b = b.WithAliasDefinition(a)
	}
	for _, p := range v.prepares {
		b = b.WithServicePrepareDefinition(p)
	}
	for _, d := range v.delegates {
		b = b.WithServiceDelegateDefinition(d)
	}
	for _, i := range v.injects {
		b = b.WithInjectDefinition(i)
	}
	for _, c := range v.configurations {
		b = b.WithConfigurationDefinition(c)
	}
	return b.Build()
}
