package cache

import (
	"slices"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	jsoniter "github.com/json-iterator/go"
	"github.com/opencontainers/go-digest"

	"github.com/km-arc/go-annotated-container/framework/analysis"
	"github.com/km-arc/go-annotated-container/framework/apperrors"
)

type keyDocument struct {
	Sources   []string `json:"sources"`
	Providers []string `json:"providers,omitempty"`
}

// Key derives the cache key for opts: the sha256 digest of the canonical
// JSON {"sources": sorted sources, "providers": provider identities in
// registration order}.
//
// Only source paths and provider identities are hashed. Editing a file in
// place keeps the key, so a stale entry is served until it is cleared.
func Key(opts analysis.Options) (digest.Digest, error) {
	sources := slices.Clone(opts.ScanSources)
	slices.Sort(sources)

	raw, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(keyDocument{
		Sources:   sources,
		Providers: opts.ProviderIdentities(),
	})
	if err != nil {
		return "", apperrors.New(apperrors.ErrCacheKey, "encode cache key", err)
	}
	canonical, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return "", apperrors.New(apperrors.ErrCacheKey, "canonicalize cache key", err)
	}
	return digest.FromBytes(canonical), nil
}
