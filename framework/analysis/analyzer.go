package analysis

import (
	"context"
	"slices"
	"strings"

	"github.com/km-arc/go-annotated-container/framework/apperrors"
	"github.com/km-arc/go-annotated-container/framework/definition"
)

// Options is the input of one analysis.
type Options struct {
	// ScanSources are the directories or files handed to the scanner.
	// At least one is required and none may repeat.
	ScanSources []string

	// DefinitionProviders run before scanned declarations are merged, in
	// this order. Optional.
	DefinitionProviders []DefinitionProvider
}

// ProviderIdentities lists the identity of each definition provider in
// order, or nil when there are none.
func (o Options) ProviderIdentities() []string {
	return ProviderIdentities(o.DefinitionProviders)
}

// Analyzer turns scan sources and providers into a ContainerDefinition.
type Analyzer interface {
	Analyze(ctx context.Context, opts Options) (definition.ContainerDefinition, error)
}

// ValidateScanSources rejects an empty source list and repeated sources.
// Duplicates are reported sorted, so the error does not depend on the order
// of the input.
func ValidateScanSources(sources []string) error {
	if len(sources) == 0 {
		return apperrors.Newf(apperrors.ErrEmptyScanSources,
			"at least one scan source must be provided")
	}

	seen := make(map[string]int, len(sources))
	for _, s := range sources {
		seen[s]++
	}

	var dups []string
	for s, n := range seen {
		if n > 1 {
			dups = append(dups, s)
		}
	}
	if len(dups) > 0 {
		slices.Sort(dups)
		return apperrors.Newf(apperrors.ErrDuplicateScanSources,
			"scan sources must be unique, repeated: %s", strings.Join(dups, ", "))
	}
	return nil
}
