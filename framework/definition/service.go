package definition

import "slices"

// ── ServiceDefinition ─────────────────────────────────────────────────────────

// ServiceDefinition declares that a type participates in the container.
//
// Profiles is never empty once the definition comes out of ForConcrete or
// ForAbstract; an undeclared profile set becomes [DefaultProfile].
type ServiceDefinition struct {
	Type     string   `json:"type"`
	Name     string   `json:"name,omitempty"`
	Profiles []string `json:"profiles"`
	Primary  bool     `json:"primary"`
	Abstract bool     `json:"abstract"`
}

// ServiceOption customizes a ServiceDefinition under construction.
type ServiceOption func(*ServiceDefinition)

// WithName sets the service name.
func WithName(name string) ServiceOption {
	return func(s *ServiceDefinition) { s.Name = name }
}

// WithProfiles sets the profiles the service is visible in.
func WithProfiles(profiles ...string) ServiceOption {
	return func(s *ServiceDefinition) { s.Profiles = slices.Clone(profiles) }
}

// AsPrimary marks the service as the preferred implementation among
// ambiguous alias candidates.
func AsPrimary() ServiceOption {
	return func(s *ServiceDefinition) { s.Primary = true }
}

// ForConcrete defines an instantiable service type.
//
//	svc := definition.ForConcrete("SmtpMailer", definition.WithProfiles("prod"), definition.AsPrimary())
func ForConcrete(typ string, opts ...ServiceOption) ServiceDefinition {
	return newService(typ, false, opts)
}

// ForAbstract defines an interface or abstract service type.
func ForAbstract(typ string, opts ...ServiceOption) ServiceDefinition {
	return newService(typ, true, opts)
}

func newService(typ string, abstract bool, opts []ServiceOption) ServiceDefinition {
	if typ == "" {
		panic("definition: service type must not be empty")
	}
	s := ServiceDefinition{Type: typ, Abstract: abstract}
	for _, opt := range opts {
		opt(&s)
	}
	s.Profiles = NormalizeProfiles(s.Profiles)
	return s
}

// IsAbstract reports whether the service is an interface or abstract type.
func (s ServiceDefinition) IsAbstract() bool { return s.Abstract }

// IsConcrete reports whether the service can be instantiated directly.
func (s ServiceDefinition) IsConcrete() bool { return !s.Abstract }

// IsPrimary reports whether the service is flagged primary.
func (s ServiceDefinition) IsPrimary() bool { return s.Primary }

// VisibleIn reports whether any declared profile is active.
func (s ServiceDefinition) VisibleIn(active []string) bool {
	return ProfilesIntersect(s.Profiles, active)
}

// Equal compares every field.
func (s ServiceDefinition) Equal(other ServiceDefinition) bool {
	return s.Type == other.Type &&
		s.Name == other.Name &&
		s.Primary == other.Primary &&
		s.Abstract == other.Abstract &&
		slices.Equal(s.Profiles, other.Profiles)
}
