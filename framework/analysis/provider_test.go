package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-annotated-container/framework/analysis"
	"github.com/km-arc/go-annotated-container/framework/apperrors"
	"github.com/km-arc/go-annotated-container/framework/definition"
)

// ── stub providers ────────────────────────────────────────────────────────────

// loggerProvider stands in for a library the scanner never sees.
type loggerProvider struct {
	called int
}

func (p *loggerProvider) Provide(ctx analysis.DefinitionProviderContext) {
	p.called++
	ctx.AddServiceDefinition(definition.ForAbstract("LoggerInterface"))
	ctx.AddServiceDefinition(definition.ForConcrete("StreamLogger"))
	ctx.AddAliasDefinition(definition.AliasDefinition{AbstractService: "LoggerInterface", ConcreteService: "StreamLogger"})
}

// namedProvider carries an explicit identity.
type namedProvider struct{ id string }

func (p namedProvider) Provide(analysis.DefinitionProviderContext) {}
func (p namedProvider) Identity() string                          { return p.id }

// ── providers in the pipeline ─────────────────────────────────────────────────

func TestAnalyze_ProviderCalledOnce(t *testing.T) {
	p := &loggerProvider{}

	mustAnalyze(t, &analysis.ScanResult{}, p)

	assert.Equal(t, 1, p.called)
}

func TestAnalyze_ProviderServicesPrecedeScannedOnes(t *testing.T) {
	def := mustAnalyze(t, &analysis.ScanResult{
		Types:        []analysis.TypeInfo{class("App")},
		Declarations: []analysis.Declaration{service("App")},
	}, &loggerProvider{})

	svcs := def.ServiceDefinitions()
	require.Len(t, svcs, 3)
	assert.Equal(t, "LoggerInterface", svcs[0].Type)
	assert.Equal(t, "StreamLogger", svcs[1].Type)
	assert.Equal(t, "App", svcs[2].Type)
	assert.Equal(t, []definition.AliasDefinition{
		{AbstractService: "LoggerInterface", ConcreteService: "StreamLogger"},
	}, def.AliasDefinitions())
}

func TestAnalyze_ScannedPrepareAndDelegateTargetProviderServices(t *testing.T) {
	def := mustAnalyze(t, &analysis.ScanResult{
		Types: []analysis.TypeInfo{class("LoggerFactory")},
		Declarations: []analysis.Declaration{
			{Kind: analysis.KindPrepare, Type: "StreamLogger", Method: "open"},
			{Kind: analysis.KindDelegate, Type: "LoggerFactory", Method: "create", ValueType: "LoggerInterface"},
		},
	}, &loggerProvider{})

	assert.Equal(t, []definition.ServicePrepareDefinition{{Service: "StreamLogger", Method: "open"}}, def.ServicePrepareDefinitions())
	// The provider already registered LoggerInterface; nothing is synthesized.
	assert.Len(t, def.ServiceDefinitions(), 2)
}

func TestAnalyze_ProvidersRunInCallerOrder(t *testing.T) {
	var order []string
	first := analysis.NewProviderFunc("first", func(ctx analysis.DefinitionProviderContext) {
		order = append(order, "first")
		ctx.AddServiceDefinition(definition.ForConcrete("A"))
	})
	second := analysis.NewProviderFunc("second", func(ctx analysis.DefinitionProviderContext) {
		order = append(order, "second")
		ctx.AddServiceDefinition(definition.ForConcrete("B"))
	})

	def := mustAnalyze(t, &analysis.ScanResult{}, second, first)

	assert.Equal(t, []string{"second", "first"}, order)
	assert.Equal(t, "B", def.ServiceDefinitions()[0].Type)
}

func TestAnalyze_ProviderNormalizesProfiles(t *testing.T) {
	raw := analysis.NewProviderFunc("raw", func(ctx analysis.DefinitionProviderContext) {
		ctx.AddServiceDefinition(definition.ServiceDefinition{Type: "Raw"})
		ctx.AddInjectDefinition(definition.InjectDefinition{Class: "Raw", Name: "x", Type: definition.SimpleType("int"), Value: 1})
		ctx.AddConfigurationDefinition(definition.ConfigurationDefinition{Class: "RawConfig"})
		ctx.AddServiceDelegateDefinition(definition.ServiceDelegateDefinition{DelegateType: "F", DelegateMethod: "m", ServiceType: "Made"})
	})

	def := mustAnalyze(t, &analysis.ScanResult{}, raw)

	svc, _ := def.ServiceDefinition("Raw")
	assert.Equal(t, []string{definition.DefaultProfile}, svc.Profiles)
	assert.Equal(t, []string{definition.DefaultProfile}, def.InjectDefinitions()[0].Profiles)
	assert.Len(t, def.ConfigurationDefinitions(), 1)

	made, ok := def.ServiceDefinition("Made")
	require.True(t, ok, "provider delegate should synthesize its service")
	assert.True(t, made.IsConcrete())
}

func TestAnalyze_ProviderPrepareOnMissingService(t *testing.T) {
	bad := analysis.NewProviderFunc("bad", func(ctx analysis.DefinitionProviderContext) {
		ctx.AddServicePrepareDefinition(definition.ServicePrepareDefinition{Service: "Nope", Method: "init"})
	})

	_, err := analyze(t, &analysis.ScanResult{}, bad)

	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidPrepare))
}

// ── identity ──────────────────────────────────────────────────────────────────

func TestProviderIdentity(t *testing.T) {
	assert.Equal(t, "*analysis_test.loggerProvider", analysis.ProviderIdentity(&loggerProvider{}))
	assert.Equal(t, "acme/logging", analysis.ProviderIdentity(namedProvider{id: "acme/logging"}))
	assert.Equal(t, "fn", analysis.ProviderIdentity(analysis.NewProviderFunc("fn", nil)))
}

func TestOptions_ProviderIdentities(t *testing.T) {
	assert.Nil(t, analysis.Options{}.ProviderIdentities())

	opts := analysis.Options{DefinitionProviders: []analysis.DefinitionProvider{
		namedProvider{id: "b"}, namedProvider{id: "a,c"},
	}}
	assert.Equal(t, []string{"b", "a,c"}, opts.ProviderIdentities())
}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

func TestRegistry_RegisterKeepsOrder(t *testing.T) {
	reg := analysis.NewProviderRegistry()

	assert.True(t, reg.Register(namedProvider{id: "b"}, namedProvider{id: "a"}))

	providers := reg.Providers()
	require.Len(t, providers, 2)
	assert.Equal(t, "b", analysis.ProviderIdentity(providers[0]))
	assert.Equal(t, "a", analysis.ProviderIdentity(providers[1]))
}

func TestRegistry_DuplicateIdentityIgnored(t *testing.T) {
	reg := analysis.NewProviderRegistry()
	reg.Register(namedProvider{id: "a"})

	assert.False(t, reg.Register(namedProvider{id: "a"}))
	assert.Len(t, reg.Providers(), 1)
}

func TestRegistry_ProvidersReturnsCopy(t *testing.T) {
	reg := analysis.NewProviderRegistry()
	reg.Register(namedProvider{id: "a"})

	providers := reg.Providers()
	providers[0] = namedProvider{id: "mutated"}

	assert.Equal(t, "a", analysis.ProviderIdentity(reg.Providers()[0]))
}
