package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
	ErrExternal      = errors.New("external service error")
	ErrCorrupt       = errors.New("corrupt data")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err must abort the whole run. Node-level problems are
// never surfaced as errors, so anything reaching the run boundary with one of
// these markers means there is no tree to build.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound), errors.Is(err, ErrCorrupt), errors.Is(err, ErrValidation):
		return true
	default:
		return false
	}
}

// Hint returns a short operator-facing next step for a classified error.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "check kachef config (kachef config validate)"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrCorrupt):
		return "regenerate the missing artifact and retry"
	case errors.Is(err, ErrTransient), errors.Is(err, ErrExternal):
		return "retry later; upstream may be unavailable"
	default:
		return "check logs for details"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
