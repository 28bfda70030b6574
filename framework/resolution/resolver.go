// Package resolution picks the concrete implementation that satisfies an
// abstract service under a set of active profiles.
//
// The engine never fails: it returns a Resolution whose Reason says why an
// alias was or was not chosen. Turning NoConcreteService or
// MultiplePrimaryService into an error is left to whoever actually needs an
// instance, through Resolution.Require.
package resolution

import (
	"github.com/km-arc/go-annotated-container/framework/apperrors"
	"github.com/km-arc/go-annotated-container/framework/definition"
)

// Reason explains a Resolution.
type Reason int

const (
	// NoConcreteService: no visible concrete implementation.
	NoConcreteService Reason = iota + 1
	// SingleConcreteService: exactly one visible implementation.
	SingleConcreteService
	// MultiplePrimaryService: several visible implementations and not
	// exactly one of them primary.
	MultiplePrimaryService
	// ConcreteServiceIsPrimary: several visible implementations, one primary.
	ConcreteServiceIsPrimary
	// ServiceIsDelegated: a factory produces the type, aliases are ignored.
	ServiceIsDelegated
)

var reasonNames = map[Reason]string{
	NoConcreteService:        "NoConcreteService",
	SingleConcreteService:    "SingleConcreteService",
	MultiplePrimaryService:   "MultiplePrimaryService",
	ConcreteServiceIsPrimary: "ConcreteServiceIsPrimary",
	ServiceIsDelegated:       "ServiceIsDelegated",
}

// String returns the reason's name.
func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "Unknown"
}

// MarshalText renders the reason by name.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Resolution is the outcome for one abstract type. Alias is nil unless
// Reason is SingleConcreteService or ConcreteServiceIsPrimary.
type Resolution struct {
	Alias  *definition.AliasDefinition `json:"alias"`
	Reason Reason                      `json:"reason"`
}

// Require returns the chosen alias, or an error when the outcome leaves
// nothing to construct. A delegated service yields (zero alias, nil): the
// caller must use the delegate.
func (r Resolution) Require(abstract string) (definition.AliasDefinition, error) {
	switch r.Reason {
	case SingleConcreteService, ConcreteServiceIsPrimary:
		return *r.Alias, nil
	case NoConcreteService:
		return definition.AliasDefinition{}, apperrors.Newf(apperrors.ErrNoConcreteService,
			"no concrete service is available for abstract service %s", abstract)
	case MultiplePrimaryService:
		return definition.AliasDefinition{}, apperrors.Newf(apperrors.ErrMultiplePrimaryService,
			"abstract service %s has several concrete services and no single primary one", abstract)
	default:
		return definition.AliasDefinition{}, nil
	}
}

// AliasResolver resolves abstract services to aliases.
type AliasResolver interface {
	ResolveAlias(def definition.ContainerDefinition, abstract string, activeProfiles []string) Resolution
}

// StandardAliasResolver implements the default rules; see ResolveAlias.
type StandardAliasResolver struct{}

var _ AliasResolver = StandardAliasResolver{}

// ResolveAlias calls the package-level ResolveAlias.
func (StandardAliasResolver) ResolveAlias(def definition.ContainerDefinition, abstract string, activeProfiles []string) Resolution {
	return ResolveAlias(def, abstract, activeProfiles)
}

// ResolveAlias decides which alias, if any, satisfies abstract.
//
// Rules, first match wins:
//
//  1. abstract is produced by a delegate → ServiceIsDelegated
//  2. candidates are aliases of abstract whose concrete endpoint is a
//     registered concrete service visible under activeProfiles
//  3. none → NoConcreteService
//  4. one → SingleConcreteService
//  5. several, exactly one primary → ConcreteServiceIsPrimary
//  6. otherwise → MultiplePrimaryService
//
// Empty activeProfiles means the default profile only.
func ResolveAlias(def definition.ContainerDefinition, abstract string, activeProfiles []string) Resolution {
	if def.IsDelegated(abstract) {
		return Resolution{Reason: ServiceIsDelegated}
	}

	active := definition.NormalizeProfiles(activeProfiles)

	var (
		candidates []definition.AliasDefinition
		primaries  []definition.AliasDefinition
	)
	for _, alias := range def.AliasesFor(abstract) {
		svc, ok := def.ServiceDefinition(alias.ConcreteService)
		if !ok || !svc.IsConcrete() || !svc.VisibleIn(active) {
			continue
		}
		candidates = append(candidates, alias)
		if svc.IsPrimary() {
			primaries = append(primaries, alias)
		}
	}

	switch {
	case len(candidates) == 0:
		return Resolution{Reason: NoConcreteService}
	case len(candidates) == 1:
		return Resolution{Alias: &candidates[0], Reason: SingleConcreteService}
	case len(primaries) == 1:
		return Resolution{Alias: &primaries[0], Reason: ConcreteServiceIsPrimary}
	default:
		return Resolution{Reason: MultiplePrimaryService}
	}
}

// ResolveAll resolves every abstract service of def, keyed by abstract type.
// Concrete services get no entry. Callers that need an order sort the keys.
func ResolveAll(def definition.ContainerDefinition, activeProfiles []string) map[string]Resolution {
	out := make(map[string]Resolution)
	for _, svc := range def.ServiceDefinitions() {
		if svc.IsAbstract() {
			out[svc.Type] = ResolveAlias(def, svc.Type, activeProfiles)
		}
	}
	return out
}
