package definition

import (
	"slices"
	"strings"

	"github.com/km-arc/go-annotated-container/framework/apperrors"
)

// ── Type expressions ──────────────────────────────────────────────────────────

// TypeKind distinguishes the three shapes a declared value type can take.
type TypeKind string

const (
	TypeKindSimple       TypeKind = "simple"
	TypeKindUnion        TypeKind = "union"
	TypeKindIntersection TypeKind = "intersection"
)

// Type is the canonical representation of a declared type expression.
//
//	definition.SimpleType("LoggerInterface")         // LoggerInterface
//	definition.UnionType("string", "int")            // string|int
//	definition.IntersectionType("Countable", "Iter") // Countable&Iter
type Type struct {
	Kind  TypeKind `json:"kind"`
	Names []string `json:"types"`
}

// SimpleType returns a single-name type.
func SimpleType(name string) Type {
	return Type{Kind: TypeKindSimple, Names: []string{name}}
}

// UnionType returns name1|name2|... Duplicate names are dropped.
func UnionType(names ...string) Type {
	return compound(TypeKindUnion, names)
}

// IntersectionType returns name1&name2&... Duplicate names are dropped.
func IntersectionType(names ...string) Type {
	return compound(TypeKindIntersection, names)
}

func compound(kind TypeKind, names []string) Type {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	if len(out) == 1 {
		return SimpleType(out[0])
	}
	return Type{Kind: kind, Names: out}
}

// ParseType converts a declared type expression into a Type.
// "A" is simple, "A|B" a union and "A&B" an intersection. Mixing both
// operators, or leaving an empty member, is rejected.
func ParseType(expr string) (Type, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Type{}, apperrors.Newf(apperrors.ErrInvalidType, "empty type expression")
	}

	hasUnion := strings.Contains(expr, "|")
	hasIntersection := strings.Contains(expr, "&")
	if hasUnion && hasIntersection {
		return Type{}, apperrors.Newf(apperrors.ErrInvalidType,
			"type expression %q mixes union and intersection", expr)
	}

	sep, kind := "", TypeKindSimple
	switch {
	case hasUnion:
		sep, kind = "|", TypeKindUnion
	case hasIntersection:
		sep, kind = "&", TypeKindIntersection
	default:
		return SimpleType(expr), nil
	}

	parts := strings.Split(expr, sep)
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return Type{}, apperrors.Newf(apperrors.ErrInvalidType,
				"type expression %q has an empty member", expr)
		}
		names = append(names, p)
	}
	return compound(kind, names), nil
}

// MustParseType is ParseType for literals known to be valid.
func MustParseType(expr string) Type {
	t, err := ParseType(expr)
	if err != nil {
		panic(err)
	}
	return t
}

// IsSimple reports whether t names exactly one type.
func (t Type) IsSimple() bool {
	return t.Kind == TypeKindSimple && len(t.Names) == 1
}

// Name returns the single name of a simple type, or "" for compound types.
func (t Type) Name() string {
	if !t.IsSimple() {
		return ""
	}
	return t.Names[0]
}

// IsZero reports whether t was never set.
func (t Type) IsZero() bool {
	return t.Kind == "" && len(t.Names) == 0
}

// String renders the type back to its expression form.
func (t Type) String() string {
	switch t.Kind {
	case TypeKindUnion:
		return strings.Join(t.Names, "|")
	case TypeKindIntersection:
		return strings.Join(t.Names, "&")
	default:
		return strings.Join(t.Names, "")
	}
}

// Equal compares kind and members in order.
func (t Type) Equal(other Type) bool {
	return t.Kind == other.Kind && slices.Equal(t.Names, other.Names)
}

// scalars are the builtin value types a scanner may report. None of them can
// be produced as a service.
var scalars = map[string]struct{}{
	"bool": {}, "int": {}, "float": {}, "string": {}, "array": {},
	"mixed": {}, "null": {}, "void": {}, "never": {}, "callable": {},
	"iterable": {}, "object": {}, "false": {}, "true": {}, "self": {}, "static": {},
}

// IsScalar reports whether name is a builtin, non-class type.
func IsScalar(name string) bool {
	_, ok := scalars[strings.ToLower(strings.TrimPrefix(name, "?"))]
	return ok
}
