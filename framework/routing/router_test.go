package routing_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-annotated-container/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func do(t *testing.T, router http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// ── HTTP verbs ────────────────────────────────────────────────────────────────

func TestRouter_Verbs(t *testing.T) {
	r := routing.New(nil)
	r.Get("/definition", okHandler)
	r.Post("/cache/clear", okHandler)
	r.Delete("/cache", okHandler)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/definition").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/cache/clear").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, "/cache").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, r, http.MethodPost, "/definition").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/nope").Code)
}

func TestRouter_Handle(t *testing.T) {
	r := routing.New(nil)
	r.Handle("/metrics", http.HandlerFunc(okHandler))

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/metrics").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodHead, "/metrics").Code)
}

// ── Params ────────────────────────────────────────────────────────────────────

func TestRouter_Param(t *testing.T) {
	r := routing.New(nil)
	var got string
	r.Get("/aliases/{abstract}", func(w http.ResponseWriter, req *http.Request) {
		got = routing.Param(req, "abstract")
	})

	do(t, r, http.MethodGet, "/aliases/LoggerInterface")

	assert.Equal(t, "LoggerInterface", got)
}

// ── Groups & Prefixes ─────────────────────────────────────────────────────────

func TestRouter_Prefix(t *testing.T) {
	r := routing.New(nil)
	r.Prefix("/api", func(api *routing.Router) {
		api.Get("/definition", okHandler)
	})

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/definition").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/definition").Code)
}

func TestRouter_GroupMiddlewareIsScoped(t *testing.T) {
	r := routing.New(nil)
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
	}
	r.Group(func(g *routing.Router) {
		g.Middleware(deny)
		g.Get("/private", okHandler)
	})
	r.Get("/public", okHandler)

	assert.Equal(t, http.StatusForbidden, do(t, r, http.MethodGet, "/private").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/public").Code)
}

// ── Middleware ────────────────────────────────────────────────────────────────

func TestRouter_RecoversPanics(t *testing.T) {
	r := routing.New(nil)
	r.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })

	assert.Equal(t, http.StatusInternalServerError, do(t, r, http.MethodGet, "/panic").Code)
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := routing.New(zap.New(core))
	r.Get("/definition", okHandler)

	do(t, r, http.MethodGet, "/definition")

	entries := logs.FilterMessage("http request").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "/definition", fields["path"])
		assert.EqualValues(t, http.StatusOK, fields["status"])
		assert.EqualValues(t, 2, fields["bytes"])
	}
}
