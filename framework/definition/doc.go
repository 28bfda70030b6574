// Package definition holds the immutable metadata a container is built from.
//
// # Overview
//
// A ContainerDefinition aggregates six kinds of records, one plain struct per
// kind:
//
//   - ServiceDefinition: a type that participates in the container
//   - AliasDefinition: a candidate edge abstract → concrete
//   - ServicePrepareDefinition: a post-construction hook
//   - ServiceDelegateDefinition: a factory method producing a service
//   - InjectDefinition: a literal or store-backed value for a parameter or property
//   - ConfigurationDefinition: a value object populated only through injects
//
// # Building
//
// Definitions are accumulated through a copy-on-write Builder and frozen
// with Build:
//
//	b := definition.NewBuilder()
//	b = b.WithServiceDefinition(definition.ForAbstract("Foo"))
//	b = b.WithServiceDefinition(definition.ForConcrete("Bar", definition.AsPrimary()))
//	b = b.WithAliasDefinition(definition.AliasDefinition{AbstractService: "Foo", ConcreteService: "Bar"})
//	def := b.Build()
//
// The builder does no cross-definition validation. Analysis does that.
//
// # Profiles
//
// Every service and inject carries at least one profile. Nothing declared
// means DefaultProfile. A record is visible when one of its profiles is active.
//
// # Types
//
// Declared value types are simple ("Foo"), union ("A|B") or intersection
// ("A&B"); ParseType turns the expression into a Type.
package definition
