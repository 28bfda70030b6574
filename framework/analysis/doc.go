// Package analysis converts scanned declarations and third-party definition
// providers into a definition.ContainerDefinition.
//
// # Pipeline
//
//  1. Scan sources are validated: at least one, none repeated.
//  2. DefinitionProviders run in the order given, writing straight into the
//     definition under construction.
//  3. The DeclarationScanner yields a type catalog and a declaration stream;
//     each declaration becomes a service, prepare, delegate, inject or
//     configuration definition.
//  4. Delegated types with no service of their own get one synthesized.
//  5. A prepare on a concrete type is dropped when an abstract ancestor
//     declares a prepare with the same method.
//  6. Every (abstract service, concrete subtype) pair becomes a candidate
//     alias. Picking one is left to package resolution.
//
// Every failure is an *apperrors.AppError in the ANALYSIS category and stops
// the run.
//
// # Usage
//
//	p := analysis.NewPipeline(scanner.NewManifestScanner(), analysis.WithLogger(logger))
//	def, err := p.Analyze(ctx, analysis.Options{
//	    ScanSources:         []string{"./manifests"},
//	    DefinitionProviders: []analysis.DefinitionProvider{ThirdPartyProvider{}},
//	})
package analysis
