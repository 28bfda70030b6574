package definition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-annotated-container/framework/definition"
)

// ── Builder ───────────────────────────────────────────────────────────────────

func TestBuilder_EmptyBuildsEmptyDefinition(t *testing.T) {
	def := definition.NewBuilder().Build()

	assert.Empty(t, def.ServiceDefinitions())
	assert.Empty(t, def.AliasDefinitions())
	assert.Empty(t, def.ServicePrepareDefinitions())
	assert.Empty(t, def.ServiceDelegateDefinitions())
	assert.Empty(t, def.InjectDefinitions())
	assert.Empty(t, def.ConfigurationDefinitions())
}

func TestBuilder_WithMethodsDoNotMutateReceiver(t *testing.T) {
	base := definition.NewBuilder().WithServiceDefinition(definition.ForAbstract("Foo"))

	left := base.WithServiceDefinition(definition.ForConcrete("Bar"))
	right := base.WithServiceDefinition(definition.ForConcrete("Baz"))

	require.Len(t, base.Build().ServiceDefinitions(), 1)

	leftSvcs := left.Build().ServiceDefinitions()
	rightSvcs := right.Build().ServiceDefinitions()
	require.Len(t, leftSvcs, 2)
	require.Len(t, rightSvcs, 2)
	assert.Equal(t, "Bar", leftSvcs[1].Type)
	assert.Equal(t, "Baz", rightSvcs[1].Type)
}

func TestBuilder_BuildSnapshotsEveryKind(t *testing.T) {
	def := definition.NewBuilder().
		WithServiceDefinition(definition.ForAbstract("Foo")).
		WithServiceDefinition(definition.ForConcrete("Bar")).
		WithAliasDefinition(definition.AliasDefinition{AbstractService: "Foo", ConcreteService: "Bar"}).
		WithServicePrepareDefinition(definition.ServicePrepareDefinition{Service: "Foo", Method: "init"}).
		WithServiceDelegateDefinition(definition.ServiceDelegateDefinition{DelegateType: "Factory", DelegateMethod: "make", ServiceType: "Qux"}).
		WithInjectDefinition(definition.NewInject("Bar", "__construct", "dsn", definition.SimpleType("string"), "sqlite::memory:", "")).
		WithConfigurationDefinition(definition.ConfigurationDefinition{Class: "AppConfig"}).
		Build()

	assert.Len(t, def.ServiceDefinitions(), 2)
	assert.Len(t, def.AliasDefinitions(), 1)
	assert.Len(t, def.ServicePrepareDefinitions(), 1)
	assert.Len(t, def.ServiceDelegateDefinitions(), 1)
	assert.Len(t, def.InjectDefinitions(), 1)
	assert.Len(t, def.ConfigurationDefinitions(), 1)
	assert.True(t, def.IsDelegated("Qux"))
	assert.False(t, def.IsDelegated("Foo"))
}

func TestContainerDefinition_AccessorsReturnCopies(t *testing.T) {
	def := definition.NewBuilder().
		WithServiceDefinition(definition.ForConcrete("Bar", definition.WithProfiles("dev"))).
		Build()

	svcs := def.ServiceDefinitions()
	svcs[0].Type = "Mutated"
	svcs[0].Profiles[0] = "prod"

	again := def.ServiceDefinitions()
	assert.Equal(t, "Bar", again[0].Type)
	assert.Equal(t, []string{"dev"}, again[0].Profiles)
}

func TestContainerDefinition_AliasesForAndLookup(t *testing.T) {
	def := definition.NewBuilder().
		WithServiceDefinition(definition.ForAbstract("Foo")).
		WithAliasDefinition(definition.AliasDefinition{AbstractService: "Foo", ConcreteService: "Bar"}).
		WithAliasDefinition(definition.AliasDefinition{AbstractService: "Foo", ConcreteService: "Baz"}).
		WithAliasDefinition(definition.AliasDefinition{AbstractService: "Other", ConcreteService: "Baz"}).
		Build()

	assert.Len(t, def.AliasesFor("Foo"), 2)
	assert.Empty(t, def.AliasesFor("Missing"))

	svc, ok := def.ServiceDefinition("Foo")
	require.True(t, ok)
	assert.True(t, svc.IsAbstract())

	_, ok = def.ServiceDefinition("Nope")
	assert.False(t, ok)
}

func TestContainerDefinition_EqualAndToBuilder(t *testing.T) {
	def := definition.NewBuilder().
		WithServiceDefinition(definition.ForConcrete("Bar")).
		WithInjectDefinition(definition.NewInject("Bar", "", "port", definition.SimpleType("int"), 8080, "")).
		Build()

	same := def.ToBuilder().Build()
	assert.True(t, def.Equal(same))

	more := def.ToBuilder().WithServiceDefinition(definition.ForConcrete("Baz")).Build()
	assert.False(t, def.Equal(more))
}

// ── ServiceDefinition ─────────────────────────────────────────────────────────

func TestServiceDefinition_Defaults(t *testing.T) {
	svc := definition.ForConcrete("Bar")

	assert.Equal(t, []string{definition.DefaultProfile}, svc.Profiles)
	assert.True(t, svc.IsConcrete())
	assert.False(t, svc.IsAbstract())
	assert.False(t, svc.IsPrimary())
	assert.Empty(t, svc.Name)
}

func TestServiceDefinition_Options(t *testing.T) {
	svc := definition.ForAbstract("Foo",
		definition.WithName("foo"),
		definition.WithProfiles("dev", "dev", "test"),
		definition.AsPrimary(),
	)

	assert.True(t, svc.IsAbstract())
	assert.Equal(t, "foo", svc.Name)
	assert.Equal(t, []string{"dev", "test"}, svc.Profiles)
	assert.True(t, svc.IsPrimary())
	assert.True(t, svc.VisibleIn([]string{"test"}))
	assert.False(t, svc.VisibleIn([]string{"prod"}))
}

func TestServiceDefinition_EmptyTypePanics(t *testing.T) {
	assert.Panics(t, func() { definition.ForConcrete("") })
}

// ── InjectDefinition ──────────────────────────────────────────────────────────

func TestInjectDefinition_Targets(t *testing.T) {
	prop := definition.NewInject("Cfg", "", "host", definition.SimpleType("string"), "localhost", "")
	param := definition.NewInject("Cfg", "__construct", "key", definition.SimpleType("string"), "API_KEY", "env", "prod")

	assert.True(t, prop.IsProperty())
	assert.False(t, prop.IsStoreReference())
	assert.Equal(t, []string{definition.DefaultProfile}, prop.Profiles)

	assert.False(t, param.IsProperty())
	assert.True(t, param.IsStoreReference())
	assert.True(t, param.VisibleIn([]string{"prod"}))
	assert.False(t, param.VisibleIn([]string{definition.DefaultProfile}))
}

// ── Profiles ──────────────────────────────────────────────────────────────────

func TestNormalizeProfiles(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil becomes default", nil, []string{"default"}},
		{"empty names dropped", []string{"", ""}, []string{"default"}},
		{"duplicates dropped in order", []string{"b", "a", "b"}, []string{"b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, definition.NormalizeProfiles(tt.in))
		})
	}
}
