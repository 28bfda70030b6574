// Package scanner reads declarations from YAML manifests.
//
// A manifest lists the types it knows about and the declarations made on
// them:
//
//	types:
//	  - { name: Mailer, kind: interface }
//	  - { name: SmtpMailer, kind: concrete, extends: [Mailer] }
//	declarations:
//	  - { kind: service, type: Mailer }
//	  - { kind: service, type: SmtpMailer, profiles: [prod] }
//	  - { kind: inject, type: SmtpMailer, method: __construct, target: host, valueType: string, value: smtp.local }
package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-annotated-container/framework/analysis"
)

// Manifest is the on-disk document.
type Manifest struct {
	Types        []analysis.TypeInfo    `yaml:"types"`
	Declarations []analysis.Declaration `yaml:"declarations"`
}

// ManifestScanner implements analysis.DeclarationScanner over manifest files.
// A source is either a manifest file or a directory whose *.yaml and *.yml
// files are read in lexical order; sub-directories are not descended into.
type ManifestScanner struct{}

var _ analysis.DeclarationScanner = ManifestScanner{}

// Scan reads every source in the order given.
func (ManifestScanner) Scan(ctx context.Context, sources []string) (*analysis.ScanResult, error) {
	result := &analysis.ScanResult{}
	for _, source := range sources {
		files, err := manifestFiles(source)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			m, err := readManifest(file)
			if err != nil {
				return nil, err
			}
			result.Types = append(result.Types, m.Types...)
			for i, decl := range m.Declarations {
				decl.Source = fmt.Sprintf("%s#%d", file, i)
				result.Declarations = append(result.Declarations, decl)
			}
		}
	}
	return result, nil
}

func manifestFiles(source string) ([]string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("scan source %s: %w", source, err)
	}
	if !info.IsDir() {
		return []string{source}, nil
	}

	entries, err := os.ReadDir(source)
	if err != nil {
		return nil, fmt.Errorf("scan source %s: %w", source, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(source, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

func readManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return ParseManifest(bytes.NewReader(data), path)
}

// ParseManifest decodes one manifest. Unknown fields are rejected; name is
// used in error messages only. An empty document is an empty manifest.
func ParseManifest(r io.Reader, name string) (Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", name, err)
	}
	return m, nil
}
