package diagnostic

import (
	"fmt"
	"strings"
)

// Well-known diagnostic codes.
const (
	CodeCyclicBehavior      = "cyclic_behavior"
	CodeUnresolvedReference = "unresolved_reference"
	CodeInvalidLayerIndex   = "invalid_layer_index"
	CodeMissingSection      = "missing_section"
	CodeMalformedBehavior   = "malformed_behavior"
	CodeMalformedCombo      = "malformed_combo"
	CodeRebaseMismatch      = "rebase_mismatch"
	CodeLayerNameMismatch   = "layer_name_mismatch"
	CodePreprocessError     = "preprocess_error"
	CodeStructuralError     = "structural_parse_error"
)

// Diagnostics holds all diagnostic information collected during a parse.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Layer names the layer this relates to (if any).
	Layer string
	// Binding is the raw binding text this relates to (if any).
	Binding string
}

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, layer, binding string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  message,
		Layer:    layer,
		Binding:  binding,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, layer, binding string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Layer:    layer,
		Binding:  binding,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// All returns every collected diagnostic, most severe first.
func (d *Diagnostics) All() []Diagnostic {
	out := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings))
	out = append(out, d.Errors...)
	out = append(out, d.Warnings...)

	return out
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Layer != "" {
		prefix = append(prefix, "["+d.Layer+"]")
	}

	if d.Binding != "" {
		prefix = append(prefix, fmt.Sprintf("%q", d.Binding))
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
