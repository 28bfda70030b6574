package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-annotated-container/framework/apperrors"
	gohttp "github.com/km-arc/go-annotated-container/framework/http"
	"github.com/km-arc/go-annotated-container/framework/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newResponse(t *testing.T) (*gohttp.Response, *httptest.ResponseRecorder) {
	t.Helper()
	rr := httptest.NewRecorder()
	return gohttp.NewResponse(rr), rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&m))
	return m
}

// ── JSON ──────────────────────────────────────────────────────────────────────

func TestResponse_JSON(t *testing.T) {
	res, rr := newResponse(t)
	res.JSON(http.StatusOK, map[string]any{"key": "val"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "val", decodeJSON(t, rr)["key"])
}

func TestResponse_Success(t *testing.T) {
	res, rr := newResponse(t)
	res.Success(map[string]any{"id": 1})

	data, ok := decodeJSON(t, rr)["data"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, data["id"])
}

func TestResponse_RawJSON(t *testing.T) {
	res, rr := newResponse(t)
	res.RawJSON(http.StatusOK, []byte(`{"version":1}`))

	assert.Equal(t, `{"version":1}`, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

// ── Errors ────────────────────────────────────────────────────────────────────

func TestResponse_NotFoundAndServerError(t *testing.T) {
	res, rr := newResponse(t)
	res.NotFound()
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Not found.", decodeJSON(t, rr)["message"])

	res, rr = newResponse(t)
	res.ServerError("disk on fire")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "disk on fire", decodeJSON(t, rr)["message"])
}

func TestResponse_ValidationError(t *testing.T) {
	v := validation.Make(map[string]string{"profiles": "a b"}, validation.Rules{"profiles": "names"})
	require.True(t, v.Fails())

	res, rr := newResponse(t)
	res.ValidationError(v.Errors())

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	errs, ok := decodeJSON(t, rr)["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "profiles")
}

func TestResponse_AppError(t *testing.T) {
	res, rr := newResponse(t)
	res.AppError(apperrors.New(apperrors.ErrInvalidDelegate, "bad delegate", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := decodeJSON(t, rr)
	assert.Equal(t, apperrors.ErrInvalidDelegate, body["code"])
	assert.Contains(t, body["message"], "bad delegate")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.New(apperrors.ErrEmptyScanSources, "x", nil), http.StatusUnprocessableEntity},
		{apperrors.New(apperrors.ErrInvalidAlias, "x", nil), http.StatusUnprocessableEntity},
		{apperrors.New(apperrors.ErrNoConcreteService, "x", nil), http.StatusConflict},
		{apperrors.New(apperrors.ErrCacheRead, "x", nil), http.StatusServiceUnavailable},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, gohttp.StatusFor(tt.err), "%v", tt.err)
	}
}
