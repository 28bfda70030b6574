package http

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/km-arc/go-annotated-container/framework/apperrors"
	"github.com/km-arc/go-annotated-container/framework/validation"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ── Response ─────────────────────────────────────────────────────────────────

// Response wraps http.ResponseWriter with JSON helpers.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Raw returns the underlying ResponseWriter.
func (res *Response) Raw() http.ResponseWriter { return res.w }

// ── JSON responses ────────────────────────────────────────────────────────────

// JSON sends a JSON response.
//
//	res.JSON(http.StatusOK, map[string]any{"message": "ok"})
func (res *Response) JSON(status int, data any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(data)
}

// RawJSON sends bytes that already hold a JSON document.
func (res *Response) RawJSON(status int, body []byte) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_, _ = res.w.Write(body)
}

// Success sends 200 JSON: {"data": v}
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, envelope{"data": v})
}

// Error sends a JSON error response.
//
//	res.Error(http.StatusNotFound, "Resource not found")
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"message": message})
}

// NotFound sends 404.
func (res *Response) NotFound(message ...string) {
	res.Error(http.StatusNotFound, first(message, "Not found."))
}

// ServerError sends 500.
func (res *Response) ServerError(message ...string) {
	res.Error(http.StatusInternalServerError, first(message, "Server Error."))
}

// ValidationError sends 422 with the error bag.
//
//	res.ValidationError(validator.Errors())
func (res *Response) ValidationError(errors *validation.Errors) {
	res.JSON(http.StatusUnprocessableEntity, errors)
}

// AppError sends err with its code: {"code": "ANALYSIS.INVALID_DELEGATE", "message": "..."}.
// Errors without a code are a 500.
func (res *Response) AppError(err error) {
	code := apperrors.Code(err)
	res.JSON(StatusFor(err), envelope{"code": code, "message": err.Error()})
}

// StatusFor maps an error category to an HTTP status.
func StatusFor(err error) int {
	switch {
	case apperrors.HasCategory(err, apperrors.CategoryAnalysis),
		apperrors.HasCategory(err, apperrors.CategoryDefinition):
		return http.StatusUnprocessableEntity
	case apperrors.HasCategory(err, apperrors.CategoryResolution):
		return http.StatusConflict
	case apperrors.HasCategory(err, apperrors.CategoryCache):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
