package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km-arc/go-annotated-container/framework/apperrors"
	"github.com/km-arc/go-annotated-container/framework/definition"
)

// Pipeline is the Analyzer that actually does the work: providers first,
// then the scanned declaration stream, then synthesis and validation.
type Pipeline struct {
	scanner DeclarationScanner
	logger  *zap.Logger
}

var _ Analyzer = (*Pipeline)(nil)

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline returns a pipeline reading declarations from scanner.
func NewPipeline(scanner DeclarationScanner, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{scanner: scanner, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze runs one full analysis pass.
func (p *Pipeline) Analyze(ctx context.Context, opts Options) (definition.ContainerDefinition, error) {
	started := time.Now()
	logger := p.logger.With(zap.String("run_id", uuid.NewString()))

	if err := ValidateScanSources(opts.ScanSources); err != nil {
		return definition.ContainerDefinition{}, err
	}

	// Providers go first so scanned delegates and prepares can target the
	// services they register.
	providerCtx := &builderContext{builder: definition.NewBuilder()}
	for _, provider := range opts.DefinitionProviders {
		provider.Provide(providerCtx)
		logger.Debug("definition provider applied", zap.String("provider", ProviderIdentity(provider)))
	}
	provided := providerCtx.builder.Build()

	result, err := p.scanner.Scan(ctx, opts.ScanSources)
	if err != nil {
		return definition.ContainerDefinition{}, apperrors.New(apperrors.ErrScanFailed,
			"scanning declarations failed", err)
	}
	if result == nil {
		result = &ScanResult{}
	}

	m := newMerger(provided, NewTypeHierarchy(result.Types), logger)
	for _, decl := range result.Declarations {
		if err := m.add(decl); err != nil {
			return definition.ContainerDefinition{}, err
		}
	}

	m.synthesizeDelegatedServices()
	prepares, err := m.partitionPrepares()
	if err != nil {
		return definition.ContainerDefinition{}, err
	}
	aliases := m.synthesizeAliases()

	def := m.build(prepares, aliases)
	logger.Info("container definition analyzed",
		zap.Strings("sources", opts.ScanSources),
		zap.Int("services", len(m.services)),
		zap.Int("aliases", len(aliases)),
		zap.Int("prepares", len(prepares)),
		zap.Int("delegates", len(m.delegates)),
		zap.Int("injects", len(m.injects)),
		zap.Duration("took", time.Since(started)),
	)
	return def, nil
}
