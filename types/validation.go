package types

import (
	"fmt"
	"strings"
)

// Severity classifies a validation finding. Errors block an apply; warnings
// never do.
type Severity string

// Severity constants
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError is a single validation finding against a property path.
type ValidationError struct {
	Path     string   `json:"path"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// String renders the finding for logs and operator output.
func (ve ValidationError) String() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Path, ve.Message)
}

// ValidationResult accumulates findings from a validation pass. A result is
// valid iff it carries no Error-severity finding; warnings are advisory.
type ValidationResult struct {
	Findings []ValidationError `json:"findings,omitempty"`
}

// NewValidationResult returns an empty result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{}
}

// AddError records an Error-severity finding.
func (r *ValidationResult) AddError(path, message string) {
	r.Findings = append(r.Findings, ValidationError{Path: path, Message: message, Severity: SeverityError})
}

// AddWarning records a Warning-severity finding.
func (r *ValidationResult) AddWarning(path, message string) {
	r.Findings = append(r.Findings, ValidationError{Path: path, Message: message, Severity: SeverityWarning})
}

// Merge appends all findings from other.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.Findings = append(r.Findings, other.Findings...)
}

// IsValid reports whether the result carries no Error-severity finding.
func (r *ValidationResult) IsValid() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Errors returns only the Error-severity findings.
func (r *ValidationResult) Errors() []ValidationError {
	var out []ValidationError
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Warnings returns only the Warning-severity findings.
func (r *ValidationResult) Warnings() []ValidationError {
	var out []ValidationError
	for _, f := range r.Findings {
		if f.Severity == SeverityWarning {
			out = append(out, f)
		}
	}
	return out
}

// Summary joins all Error-severity findings into one message for the uniform
// failure result.
func (r *ValidationResult) Summary() string {
	errs := r.Errors()
	if len(errs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Path, e.Message))
	}
	return strings.Join(parts, "; ")
}
