package analysis

import (
	"context"
	"fmt"
)

// ── Declarations ──────────────────────────────────────────────────────────────

// DeclarationKind tags a Declaration.
type DeclarationKind string

const (
	KindService       DeclarationKind = "service"
	KindPrepare       DeclarationKind = "prepare"
	KindDelegate      DeclarationKind = "delegate"
	KindInject        DeclarationKind = "inject"
	KindConfiguration DeclarationKind = "configuration"
)

// Declaration is one annotated record found by a scanner.
//
// Which fields matter depends on Kind:
//
//	service        Type, Name, Profiles, Primary
//	prepare        Type, Method
//	delegate       Type (the factory), Method, ValueType (the produced type)
//	inject         Type, Method (empty for a property), Target, ValueType, Value, Profiles, Store
//	configuration  Type, Name
type Declaration struct {
	Kind      DeclarationKind `yaml:"kind" json:"kind"`
	Type      string          `yaml:"type" json:"type"`
	Method    string          `yaml:"method,omitempty" json:"method,omitempty"`
	Target    string          `yaml:"target,omitempty" json:"target,omitempty"`
	ValueType string          `yaml:"valueType,omitempty" json:"valueType,omitempty"`
	Name      string          `yaml:"name,omitempty" json:"name,omitempty"`
	Profiles  []string        `yaml:"profiles,omitempty" json:"profiles,omitempty"`
	Primary   bool            `yaml:"primary,omitempty" json:"primary,omitempty"`
	Value     any             `yaml:"value,omitempty" json:"value,omitempty"`
	Store     string          `yaml:"store,omitempty" json:"store,omitempty"`

	// Source locates the declaration for error messages, e.g. "app.yaml#3".
	Source string `yaml:"-" json:"source,omitempty"`
}

// describe renders the declaration for error messages.
func (d Declaration) describe() string {
	target := d.Type
	if d.Method != "" {
		target += "::" + d.Method
	}
	if d.Target != "" {
		target += "($" + d.Target + ")"
	}
	if d.Source != "" {
		return fmt.Sprintf("%s declaration on %s at %s", d.Kind, target, d.Source)
	}
	return fmt.Sprintf("%s declaration on %s", d.Kind, target)
}

// ── Type catalog ──────────────────────────────────────────────────────────────

// TypeKind classifies a declared type.
type TypeKind string

const (
	TypeInterface TypeKind = "interface"
	TypeAbstract  TypeKind = "abstract"
	TypeConcrete  TypeKind = "concrete"
)

// TypeInfo describes one type the scanner saw and its direct supertypes
// (parent class and implemented interfaces alike).
type TypeInfo struct {
	Name    string   `yaml:"name" json:"name"`
	Kind    TypeKind `yaml:"kind" json:"kind"`
	Extends []string `yaml:"extends,omitempty" json:"extends,omitempty"`
}

// IsAbstract reports whether the type cannot be instantiated.
func (t TypeInfo) IsAbstract() bool {
	return t.Kind == TypeInterface || t.Kind == TypeAbstract
}

// ── Scanner boundary ──────────────────────────────────────────────────────────

// ScanResult is the type catalog plus the ordered declaration stream.
type ScanResult struct {
	Types        []TypeInfo
	Declarations []Declaration
}

// DeclarationScanner discovers declarations in scan sources. How a source
// is parsed is the scanner's business.
type DeclarationScanner interface {
	Scan(ctx context.Context, sources []string) (*ScanResult, error)
}

// ScannerFunc adapts a function to DeclarationScanner.
type ScannerFunc func(ctx context.Context, sources []string) (*ScanResult, error)

// Scan calls f.
func (f ScannerFunc) Scan(ctx context.Context, sources []string) (*ScanResult, error) {
	return f(ctx, sources)
}

// StaticScanner returns the same result for any sources.
func StaticScanner(result *ScanResult) DeclarationScanner {
	return ScannerFunc(func(context.Context, []string) (*ScanResult, error) {
		return result, nil
	})
}
