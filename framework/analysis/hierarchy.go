package analysis

import "slices"

// TypeHierarchy indexes the type catalog once per analysis so subtype
// queries are map lookups instead of a scan over every pair of services.
type TypeHierarchy struct {
	types     map[string]TypeInfo
	ancestors map[string][]string
}

// NewTypeHierarchy indexes types. A later entry for the same name replaces
// an earlier one.
func NewTypeHierarchy(types []TypeInfo) *TypeHierarchy {
	h := &TypeHierarchy{
		types:     make(map[string]TypeInfo, len(types)),
		ancestors: make(map[string][]string, len(types)),
	}
	for _, t := range types {
		h.types[t.Name] = t
	}
	return h
}

// Known reports whether typ is in the catalog.
func (h *TypeHierarchy) Known(typ string) bool {
	_, ok := h.types[typ]
	return ok
}

// IsAbstract reports whether typ is cataloged as an interface or abstract
// type. Unknown types count as concrete.
func (h *TypeHierarchy) IsAbstract(typ string) bool {
	return h.types[typ].IsAbstract()
}

// Ancestors returns every transitive supertype of typ, nearest first, each
// once. The result is memoized and must not be modified.
func (h *TypeHierarchy) Ancestors(typ string) []string {
	if cached, ok := h.ancestors[typ]; ok {
		return cached
	}

	var out []string
	seen := map[string]bool{typ: true}
	queue := slices.Clone(h.types[typ].Extends)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
		queue = append(queue, h.types[next].Extends...)
	}

	h.ancestors[typ] = out
	return out
}

// IsSubtypeOf reports whether concrete extends or implements abstract,
// directly or through any chain of supertypes.
func (h *TypeHierarchy) IsSubtypeOf(concrete, abstract string) bool {
	if concrete == abstract {
		return false
	}
	return slices.Contains(h.Ancestors(concrete), abstract)
}
