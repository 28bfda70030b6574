package definition

import (
	"reflect"
	"slices"
)

// ── AliasDefinition ───────────────────────────────────────────────────────────

// AliasDefinition is a candidate edge from an abstract service to one
// concrete implementation. Several aliases may share AbstractService.
type AliasDefinition struct {
	AbstractService string `json:"abstract"`
	ConcreteService string `json:"concrete"`
}

// ── ServicePrepareDefinition ──────────────────────────────────────────────────

// ServicePrepareDefinition is a method invoked once on every instance of
// Service right after construction.
type ServicePrepareDefinition struct {
	Service string `json:"service"`
	Method  string `json:"method"`
}

// ── ServiceDelegateDefinition ─────────────────────────────────────────────────

// ServiceDelegateDefinition names a factory method producing ServiceType.
// A delegated service is never resolved through aliases.
type ServiceDelegateDefinition struct {
	DelegateType   string `json:"delegateType"`
	DelegateMethod string `json:"delegateMethod"`
	ServiceType    string `json:"serviceType"`
}

// ── InjectDefinition ──────────────────────────────────────────────────────────

// InjectDefinition places a declared value into a method parameter or, when
// Method is empty, a property of Class.
//
// With Store empty, Value is the literal to inject. Otherwise Value is the
// key resolved from the named external store at construction time.
type InjectDefinition struct {
	Class    string   `json:"class"`
	Method   string   `json:"method,omitempty"`
	Name     string   `json:"name"`
	Type     Type     `json:"type"`
	Value    any      `json:"value"`
	Profiles []string `json:"profiles"`
	Store    string   `json:"store,omitempty"`
}

// NewInject returns an inject definition with normalized profiles.
func NewInject(class, method, name string, typ Type, value any, store string, profiles ...string) InjectDefinition {
	return InjectDefinition{
		Class:    class,
		Method:   method,
		Name:     name,
		Type:     typ,
		Value:    value,
		Profiles: NormalizeProfiles(profiles),
		Store:    store,
	}
}

// IsProperty reports whether the target is a property rather than a
// method parameter.
func (i InjectDefinition) IsProperty() bool { return i.Method == "" }

// IsStoreReference reports whether Value is a key into an external store.
func (i InjectDefinition) IsStoreReference() bool { return i.Store != "" }

// VisibleIn reports whether any declared profile is active.
func (i InjectDefinition) VisibleIn(active []string) bool {
	return ProfilesIntersect(i.Profiles, active)
}

// Equal compares every field; Value is compared deeply.
func (i InjectDefinition) Equal(other InjectDefinition) bool {
	return i.Class == other.Class &&
		i.Method == other.Method &&
		i.Name == other.Name &&
		i.Store == other.Store &&
		i.Type.Equal(other.Type) &&
		slices.Equal(i.Profiles, other.Profiles) &&
		reflect.DeepEqual(i.Value, other.Value)
}

// ── ConfigurationDefinition ───────────────────────────────────────────────────

// ConfigurationDefinition is a value-object type populated entirely through
// InjectDefinitions.
type ConfigurationDefinition struct {
	Class string `json:"class"`
	Name  string `json:"name,omitempty"`
}
