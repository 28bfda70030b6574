package scanner_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-annotated-container/framework/analysis"
	"github.com/km-arc/go-annotated-container/framework/apperrors"
	"github.com/km-arc/go-annotated-container/framework/cache"
	"github.com/km-arc/go-annotated-container/framework/resolution"
	"github.com/km-arc/go-annotated-container/framework/scanner"
)

const mailerManifest = `
types:
  - { name: Mailer, kind: interface }
  - { name: SmtpMailer, kind: concrete, extends: [Mailer] }
declarations:
  - { kind: service, type: Mailer }
  - { kind: service, type: SmtpMailer }
  - kind: inject
    type: SmtpMailer
    method: __construct
    target: port
    valueType: int
    value: 587
`

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestManifestScanner_File(t *testing.T) {
	path := write(t, t.TempDir(), "app.yaml", mailerManifest)

	res, err := scanner.ManifestScanner{}.Scan(context.Background(), []string{path})
	require.NoError(t, err)

	require.Len(t, res.Types, 2)
	assert.Equal(t, []string{"Mailer"}, res.Types[1].Extends)
	require.Len(t, res.Declarations, 3)
	assert.Equal(t, analysis.KindInject, res.Declarations[2].Kind)
	assert.Equal(t, 587, res.Declarations[2].Value)
	assert.Equal(t, path+"#2", res.Declarations[2].Source)
}

func TestManifestScanner_DirectoryInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b.yml", "declarations:\n  - { kind: service, type: B }\n")
	write(t, dir, "a.yaml", "declarations:\n  - { kind: service, type: A }\n")
	write(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	write(t, filepath.Join(dir, "nested"), "c.yaml", "declarations:\n  - { kind: service, type: C }\n")

	res, err := scanner.ManifestScanner{}.Scan(context.Background(), []string{dir})
	require.NoError(t, err)

	require.Len(t, res.Declarations, 2)
	assert.Equal(t, "A", res.Declarations[0].Type)
	assert.Equal(t, "B", res.Declarations[1].Type)
}

func TestManifestScanner_EmptyFile(t *testing.T) {
	path := write(t, t.TempDir(), "empty.yaml", "")

	res, err := scanner.ManifestScanner{}.Scan(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Empty(t, res.Declarations)
}

func TestManifestScanner_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := write(t, dir, "bad.yaml", "declarations: [ {kind: service, tpye: X} ]")

	_, err := scanner.ManifestScanner{}.Scan(context.Background(), []string{bad})
	assert.ErrorContains(t, err, "bad.yaml")

	_, err = scanner.ManifestScanner{}.Scan(context.Background(), []string{filepath.Join(dir, "missing")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseManifest(t *testing.T) {
	m, err := scanner.ParseManifest(strings.NewReader(mailerManifest), "inline")
	require.NoError(t, err)

	assert.Len(t, m.Types, 2)
	assert.Len(t, m.Declarations, 3)
}

func TestManifestScanner_ThroughPipeline(t *testing.T) {
	path := write(t, t.TempDir(), "app.yaml", mailerManifest)

	def, err := analysis.NewPipeline(scanner.ManifestScanner{}).
		Analyze(context.Background(), analysis.Options{ScanSources: []string{path}})
	require.NoError(t, err)

	res := resolution.ResolveAlias(def, "Mailer", nil)
	assert.Equal(t, resolution.SingleConcreteService, res.Reason)

	_, err = analysis.NewPipeline(scanner.ManifestScanner{}).
		Analyze(context.Background(), analysis.Options{ScanSources: []string{path + ".missing"}})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrScanFailed))
}

func TestManifestScanner_CachedInjectValuesKeepTheirKinds(t *testing.T) {
	path := write(t, t.TempDir(), "app.yaml", `
types:
  - { name: SmtpMailer, kind: concrete }
declarations:
  - { kind: service, type: SmtpMailer }
  - { kind: inject, type: SmtpMailer, method: __construct, target: port, valueType: int, value: 587 }
  - { kind: inject, type: SmtpMailer, method: __construct, target: ratio, valueType: float, value: 0.5 }
  - { kind: inject, type: SmtpMailer, method: __construct, target: tls, valueType: bool, value: true }
  - { kind: inject, type: SmtpMailer, method: __construct, target: hosts, valueType: array, value: [a, 2] }
  - { kind: inject, type: SmtpMailer, method: __construct, target: options, valueType: array, value: { retries: 3 } }
  - { kind: inject, type: SmtpMailer, method: __construct, target: password, valueType: string, value: MAIL_PASSWORD, store: env }
`)
	opts := analysis.Options{ScanSources: []string{path}}
	a := cache.NewCachingAnalyzer(analysis.NewPipeline(scanner.ManifestScanner{}), cache.NewMemoryStore(0, 0))

	miss, err := a.Analyze(context.Background(), opts)
	require.NoError(t, err)
	hit, err := a.Analyze(context.Background(), opts)
	require.NoError(t, err)

	assert.True(t, miss.Equal(hit))
	values := map[string]any{}
	for _, i := range hit.InjectDefinitions() {
		values[i.Name] = i.Value
	}
	assert.Equal(t, map[string]any{
		"port":     587,
		"ratio":    0.5,
		"tls":      true,
		"hosts":    []any{"a", 2},
		"options":  map[string]any{"retries": 3},
		"password": "MAIL_PASSWORD",
	}, values)
}
