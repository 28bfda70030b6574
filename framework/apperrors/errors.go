// Package apperrors provides the structured, coded errors shared by every
// package of the module.
//
// Codes are hierarchical, CATEGORY.SPECIFIC, so a whole category can be
// matched with HasCategory:
//
//	if apperrors.HasCategory(err, apperrors.CategoryAnalysis) { ... }
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Categories.
const (
	CategoryAnalysis   = "ANALYSIS"
	CategoryDefinition = "DEFINITION"
	CategoryResolution = "RESOLUTION"
	CategoryCache      = "CACHE"
	CategoryConfig     = "CONFIG"
)

// ANALYSIS: malformed declarations and scan input. Always fatal.
const (
	ErrEmptyScanSources     = "ANALYSIS.EMPTY_SCAN_SOURCES"
	ErrDuplicateScanSources = "ANALYSIS.DUPLICATE_SCAN_SOURCES"
	ErrInvalidDelegate      = "ANALYSIS.INVALID_DELEGATE"
	ErrInvalidPrepare       = "ANALYSIS.INVALID_PREPARE"
	ErrInvalidInject        = "ANALYSIS.INVALID_INJECT"
	ErrInvalidDeclaration   = "ANALYSIS.INVALID_DECLARATION"
	ErrScanFailed           = "ANALYSIS.SCAN_FAILED"
)

// DEFINITION: violations of the definition model's own invariants.
const (
	ErrInvalidType  = "DEFINITION.INVALID_TYPE"
	ErrInvalidAlias = "DEFINITION.INVALID_ALIAS"
	ErrDecode       = "DEFINITION.DECODE_FAILED"
	ErrEncode       = "DEFINITION.ENCODE_FAILED"
)

// RESOLUTION: ambiguity surfaced by a consumer that needs exactly one alias.
const (
	ErrNoConcreteService      = "RESOLUTION.NO_CONCRETE_SERVICE"
	ErrMultiplePrimaryService = "RESOLUTION.MULTIPLE_PRIMARY_SERVICE"
)

// CACHE: persisting or reading cached definitions.
const (
	ErrCacheRead  = "CACHE.READ_FAILED"
	ErrCacheWrite = "CACHE.WRITE_FAILED"
	ErrCacheKey   = "CACHE.KEY_FAILED"
)

// CONFIG: loading and validating configuration.
const (
	ErrConfigLoad     = "CONFIG.LOAD_FAILED"
	ErrConfigValidate = "CONFIG.VALIDATION_FAILED"
)

// AppError is a coded error. It wraps an optional cause so errors.Is and
// errors.As keep working through it.
//
//	return apperrors.New(apperrors.ErrInvalidDelegate,
//	    fmt.Sprintf("delegate %s::%s has no return type", typ, method), nil)
type AppError struct {
	// Code is CATEGORY.SPECIFIC.
	Code string `json:"code"`

	// Message describes the offending declaration: types, methods, source.
	Message string `json:"message"`

	Cause error `json:"-"`
}

// Error implements error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another *AppError carrying the same code, so a bare
// &AppError{Code: ...} works as a sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Category returns the CATEGORY part of the code.
func (e *AppError) Category() string {
	category, _, _ := strings.Cut(e.Code, ".")
	return category
}

// New creates an AppError.
func New(code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// Newf creates an AppError without a cause and a formatted message.
func Newf(code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Code returns the code of the first AppError in err's chain, or "".
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether err's chain holds an AppError with code.
func HasCode(err error, code string) bool {
	return errors.Is(err, &AppError{Code: code})
}

// HasCategory reports whether err's chain holds an AppError in category.
func HasCategory(err error, category string) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Category() == category
}
