// Package explorer serves a read-only JSON view of the analyzed container
// definition.
//
//	GET /definition?profiles=dev,prod      the definition, filtered when profiles are given
//	GET /aliases/{abstract}?profiles=dev   how one abstract service resolves
//	GET /resolutions?profiles=dev          how every abstract service resolves
//	GET /healthz
package explorer

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/km-arc/go-annotated-container/framework/definition"
	gohttp "github.com/km-arc/go-annotated-container/framework/http"
	"github.com/km-arc/go-annotated-container/framework/profiles"
	"github.com/km-arc/go-annotated-container/framework/resolution"
	"github.com/km-arc/go-annotated-container/framework/routing"
	"github.com/km-arc/go-annotated-container/framework/serializer"
	"github.com/km-arc/go-annotated-container/framework/validation"
)

// DefinitionSource hands out the current definition, typically by running
// a (cached) analysis.
type DefinitionSource interface {
	Definition(ctx context.Context) (definition.ContainerDefinition, error)
}

// SourceFunc adapts a function to DefinitionSource.
type SourceFunc func(ctx context.Context) (definition.ContainerDefinition, error)

// Definition calls f.
func (f SourceFunc) Definition(ctx context.Context) (definition.ContainerDefinition, error) {
	return f(ctx)
}

// Explorer holds the handlers.
type Explorer struct {
	source   DefinitionSource
	resolver resolution.AliasResolver
	logger   *zap.Logger
}

// New returns an Explorer resolving aliases with the standard rules.
func New(source DefinitionSource, logger *zap.Logger) *Explorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Explorer{source: source, resolver: resolution.StandardAliasResolver{}, logger: logger}
}

// Routes registers the handlers on r.
func (e *Explorer) Routes(r *routing.Router) {
	r.Get("/healthz", e.health)
	r.Get("/definition", e.showDefinition)
	r.Get("/aliases/{abstract}", e.showAlias)
	r.Get("/resolutions", e.listResolutions)
}

// ── Payloads ──────────────────────────────────────────────────────────────────

// ResolutionPayload is one abstract service's outcome.
type ResolutionPayload struct {
	Abstract string                      `json:"abstract"`
	Reason   string                      `json:"reason"`
	Alias    *definition.AliasDefinition `json:"alias"`
	Profiles []string                    `json:"profiles"`
}

// DefinitionPayload is the definition document plus the profiles used.
type DefinitionPayload struct {
	Profiles   []string            `json:"profiles,omitempty"`
	Definition serializer.Document `json:"definition"`
}

// ── Handlers ──────────────────────────────────────────────────────────────────

func (e *Explorer) health(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success(map[string]string{"status": "ok"})
}

func (e *Explorer) showDefinition(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)

	active, ok := e.profiles(req, res)
	if !ok {
		return
	}
	def, ok := e.definition(req, res)
	if !ok {
		return
	}

	out := DefinitionPayload{}
	if active != nil {
		view, err := profiles.NewView(def, active)
		if err != nil {
			res.AppError(err)
			return
		}
		out.Profiles = view.ActiveProfiles()
		def = view.ContainerDefinition()
	}
	doc, err := serializer.ToDocument(def)
	if err != nil {
		res.AppError(err)
		return
	}
	out.Definition = doc
	res.Success(out)
}

func (e *Explorer) showAlias(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)

	active, ok := e.profiles(req, res)
	if !ok {
		return
	}
	def, ok := e.definition(req, res)
	if !ok {
		return
	}

	abstract := req.RouteParam("abstract")
	svc, found := def.ServiceDefinition(abstract)
	if !found || !svc.IsAbstract() {
		res.NotFound("No abstract service " + abstract + ".")
		return
	}

	active = definition.NormalizeProfiles(active)
	res.Success(payload(abstract, e.resolver.ResolveAlias(def, abstract, active), active))
}

func (e *Explorer) listResolutions(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)

	active, ok := e.profiles(req, res)
	if !ok {
		return
	}
	def, ok := e.definition(req, res)
	if !ok {
		return
	}

	active = definition.NormalizeProfiles(active)
	out := []ResolutionPayload{}
	for _, svc := range def.ServiceDefinitions() {
		if svc.IsAbstract() {
			out = append(out, payload(svc.Type, e.resolver.ResolveAlias(def, svc.Type, active), active))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Abstract < out[j].Abstract })
	res.Success(out)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// profiles reads ?profiles=; nil means the parameter was absent.
func (e *Explorer) profiles(req *gohttp.Request, res *gohttp.Response) ([]string, bool) {
	list := req.QueryList("profiles")
	if list == nil {
		return nil, true
	}
	v := validation.Make(
		map[string]string{"profiles": strings.Join(list, ",")},
		validation.Rules{"profiles": "required|names|distinct"},
	)
	if v.Fails() {
		res.ValidationError(v.Errors())
		return nil, false
	}
	return list, true
}

func (e *Explorer) definition(req *gohttp.Request, res *gohttp.Response) (definition.ContainerDefinition, bool) {
	def, err := e.source.Definition(req.Raw().Context())
	if err != nil {
		e.logger.Error("analysis failed",
			zap.String("method", req.Method()),
			zap.String("path", req.Path()),
			zap.Error(err),
		)
		res.AppError(err)
		return definition.ContainerDefinition{}, false
	}
	return def, true
}

func payload(abstract string, r resolution.Resolution, active []string) ResolutionPayload {
	return ResolutionPayload{
		Abstract: abstract,
		Reason:   r.Reason.String(),
		Alias:    r.Alias,
		Profiles: active,
	}
}
