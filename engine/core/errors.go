package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error codes shared by every pipeline stage.
const (
	CodeAcquireFailed      = "ACQUIRE_FAILED"
	CodeInvalidManifest    = "INVALID_MANIFEST"
	CodeInvalidIconSet     = "INVALID_ICON_SET"
	CodeRenderFailed       = "RENDER_FAILED"
	CodeCleanupFailed      = "CLEANUP_FAILED"
	CodeColorRewriteFailed = "COLOR_REWRITE_FAILED"
	CodeOptimizeFailed     = "OPTIMIZE_FAILED"
	CodeExportFailed       = "EXPORT_FAILED"
	CodeNoProviders        = "NO_PROVIDERS"
	CodeNoVectorFiles      = "NO_VECTOR_FILES"
	CodeRasterFailed       = "RASTER_FAILED"
	CodeInvalidSelection   = "INVALID_SELECTION"
	CodePathEscape         = "PATH_ESCAPE_ATTEMPT"
)

// Error is a coded pipeline error carrying optional details and a cause.
type Error struct {
	Code    string
	Details map[string]any
	Cause   error
}

// NewError builds a coded error around cause.
func NewError(cause error, code string, details map[string]any) *Error {
	return &Error{Code: code, Details: details, Cause: cause}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Details[k])
		}
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same code.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code string) bool {
	return errors.Is(err, &Error{Code: code})
}
