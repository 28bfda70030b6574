package cache_test

import (
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-annotated-container/framework/analysis"
	"github.com/km-arc/go-annotated-container/framework/cache"
)

func mustKey(t *testing.T, opts analysis.Options) digest.Digest {
	t.Helper()
	k, err := cache.Key(opts)
	require.NoError(t, err)
	return k
}

func TestKey_IsSha256OfCanonicalDocument(t *testing.T) {
	k := mustKey(t, analysis.Options{ScanSources: []string{"src/b", "src/a"}})

	assert.Equal(t, digest.SHA256, k.Algorithm())
	assert.NoError(t, k.Validate())
	assert.Equal(t, digest.FromString(`{"sources":["src/a","src/b"]}`), k)
}

func TestKey_IncludesProviderIdentity(t *testing.T) {
	k := mustKey(t, analysis.Options{
		ScanSources:         []string{"src"},
		DefinitionProviders: []analysis.DefinitionProvider{analysis.NewProviderFunc("acme/logging", nil)},
	})

	assert.Equal(t, digest.FromString(`{"providers":["acme/logging"],"sources":["src"]}`), k)
}

func TestKey_SourceOrderDoesNotMatter(t *testing.T) {
	a := mustKey(t, analysis.Options{ScanSources: []string{"x", "y", "z"}})
	b := mustKey(t, analysis.Options{ScanSources: []string{"z", "x", "y"}})

	assert.Equal(t, a, b)
}

func TestKey_ChangesWithSourcesOrProviders(t *testing.T) {
	base := mustKey(t, analysis.Options{ScanSources: []string{"src"}})

	assert.NotEqual(t, base, mustKey(t, analysis.Options{ScanSources: []string{"src", "lib"}}))
	assert.NotEqual(t, base, mustKey(t, analysis.Options{
		ScanSources:         []string{"src"},
		DefinitionProviders: []analysis.DefinitionProvider{analysis.NewProviderFunc("p", nil)},
	}))
}

func TestKey_ProviderIdentitiesAreNotJoined(t *testing.T) {
	joined := mustKey(t, analysis.Options{
		ScanSources:         []string{"src"},
		DefinitionProviders: []analysis.DefinitionProvider{analysis.NewProviderFunc("a,b", nil)},
	})
	split := mustKey(t, analysis.Options{
		ScanSources: []string{"src"},
		DefinitionProviders: []analysis.DefinitionProvider{
			analysis.NewProviderFunc("a", nil),
			analysis.NewProviderFunc("b", nil),
		},
	})

	assert.NotEqual(t, joined, split)
}

func TestKey_ProviderOrderMatters(t *testing.T) {
	ab := mustKey(t, analysis.Options{
		ScanSources: []string{"src"},
		DefinitionProviders: []analysis.DefinitionProvider{
			analysis.NewProviderFunc("a", nil), analysis.NewProviderFunc("b", nil),
		},
	})
	ba := mustKey(t, analysis.Options{
		ScanSources: []string{"src"},
		DefinitionProviders: []analysis.DefinitionProvider{
			analysis.NewProviderFunc("b", nil), analysis.NewProviderFunc("a", nil),
		},
	})

	assert.NotEqual(t, ab, ba)
}
