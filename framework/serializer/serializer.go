// Package serializer turns a ContainerDefinition into a stable JSON document
// and back. Output is canonical (RFC 8785), so equal definitions always
// serialize to the same bytes and a serialized definition can be hashed,
// diffed, or cached as-is.
//
// Deserialize(Serialize(def)) is Equal to def: inject values travel as a
// typed Value rather than as JSON numbers, which canonicalization would
// round to float64.
package serializer

import (
	"bytes"
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	jsoniter "github.com/json-iterator/go"

	"github.com/km-arc/go-annotated-container/framework/apperrors"
	"github.com/km-arc/go-annotated-container/framework/definition"
)

// Version is written into every document; Deserialize rejects others.
const Version = 2

var json = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// Document is the wire shape of a ContainerDefinition.
type Document struct {
	Version        int                                    `json:"version"`
	Services       []definition.ServiceDefinition         `json:"services"`
	Aliases        []definition.AliasDefinition           `json:"aliases"`
	Prepares       []definition.ServicePrepareDefinition  `json:"prepares"`
	Delegates      []definition.ServiceDelegateDefinition `json:"delegates"`
	Injects        []Inject                               `json:"injects"`
	Configurations []definition.ConfigurationDefinition   `json:"configurations"`
}

// ToDocument copies def into its wire shape. Empty collections are
// rendered as [] rather than null. An inject value of a type EncodeValue
// does not support is DEFINITION.ENCODE_FAILED.
func ToDocument(def definition.ContainerDefinition) (Document, error) {
	injects := make([]Inject, 0, len(def.InjectDefinitions()))
	for _, i := range def.InjectDefinitions() {
		in, err := toInject(i)
		if err != nil {
			return Document{}, err
		}
		injects = append(injects, in)
	}
	return Document{
		Version:        Version,
		Services:       orEmpty(def.ServiceDefinitions()),
		Aliases:        orEmpty(def.AliasDefinitions()),
		Prepares:       orEmpty(def.ServicePrepareDefinitions()),
		Delegates:      orEmpty(def.ServiceDelegateDefinitions()),
		Injects:        injects,
		Configurations: orEmpty(def.ConfigurationDefinitions()),
	}, nil
}

// ContainerDefinition rebuilds a definition from the document, keeping
// every collection's order.
func (d Document) ContainerDefinition() (definition.ContainerDefinition, error) {
	b := definition.NewBuilder()
	for _, s := range d.Services {
		b = b.WithServiceDefinition(s)
	}
	for _, a := range d.Aliases {
		b = b.WithAliasDefinition(a)
	}
	for _, p := range d.Prepares {
		b = b.WithServicePrepareDefinition(p)
	}
	for _, del := range d.Delegates {
		b = b.WithServiceDelegateDefinition(del)
	}
	for _, in := range d.Injects {
		i, err := in.definition()
		if err != nil {
			return definition.ContainerDefinition{}, err
		}
		b = b.WithInjectDefinition(i)
	}
	for _, c := range d.Configurations {
		b = b.WithConfigurationDefinition(c)
	}
	return b.Build(), nil
}

// Serialize encodes def as canonical JSON.
func Serialize(def definition.ContainerDefinition) ([]byte, error) {
	doc, err := ToDocument(def)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrEncode, "encode container definition", err)
	}
	canonical, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrEncode, "canonicalize container definition", err)
	}
	return canonical, nil
}

// Deserialize decodes a document produced by Serialize.
func Deserialize(data []byte) (definition.ContainerDefinition, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return definition.ContainerDefinition{}, apperrors.New(apperrors.ErrDecode, "empty container definition document", nil)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return definition.ContainerDefinition{}, apperrors.New(apperrors.ErrDecode, "decode container definition", err)
	}
	if doc.Version != Version {
		return definition.ContainerDefinition{}, apperrors.New(apperrors.ErrDecode,
			fmt.Sprintf("unsupported container definition version %d, want %d", doc.Version, Version), nil)
	}
	return doc.ContainerDefinition()
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
