package shared

import (
	"errors"
	"fmt"
)

// DiagnosticKind classifies a non-fatal problem found in the field spec.
type DiagnosticKind string

const (
	DiagMalformedField        DiagnosticKind = "malformed-field"
	DiagMalformedParam        DiagnosticKind = "malformed-param"
	DiagUnrecognizedFieldKind DiagnosticKind = "unrecognized-field-kind"
	DiagUnrecognizedParam     DiagnosticKind = "unrecognized-param"
	DiagMissingParam          DiagnosticKind = "missing-param"
)

// Diagnostic is reported at the end of a run; it never aborts generation.
type Diagnostic struct {
	Kind   DiagnosticKind
	Field  string // field name, or the raw token when it could not be parsed
	Detail string
}

func (d Diagnostic) String() string {
	if d.Field == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Detail)
	}
	return fmt.Sprintf("%s (%s): %s", d.Kind, d.Field, d.Detail)
}

// UsageError marks bad command-line arguments. The binary exits with status 2 on it.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// IsUsageError reports whether err is or wraps a *UsageError.
func IsUsageError(err error) bool {
	var usage *UsageError
	return errors.As(err, &usage)
}
