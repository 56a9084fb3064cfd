// Package protocol contains the position, range and diagnostic types shared
// between the document store, the analysis engine and its consumers. The
// shapes follow LSP 3.18 so results can be forwarded to an editor unchanged.
package protocol

import "fmt"

// Position in a text document expressed as zero-based line and character offset.
// Character counts UTF-16 code units.
type Position struct {
	Line      uint32 `json:"line" yaml:"line"`
	Character uint32 `json:"character" yaml:"character"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

// Range in a text document.
type Range struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// TextDocumentContentChangeEvent describes a content change in a text document.
// A nil Range replaces the whole document.
type TextDocumentContentChangeEvent struct {
	Range       *Range `json:"range,omitempty"`
	RangeLength uint32 `json:"rangeLength,omitempty"`
	Text        string `json:"text"`
}

// --- Diagnostics ---

type DiagnosticSeverity int

const (
	SeverityError       DiagnosticSeverity = 1
	SeverityWarning     DiagnosticSeverity = 2
	SeverityInformation DiagnosticSeverity = 3
	SeverityHint        DiagnosticSeverity = 4
)

func (s DiagnosticSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

type Diagnostic struct {
	Range    Range              `json:"range"`
	Severity DiagnosticSeverity `json:"severity,omitempty"`
	Code     interface{}        `json:"code,omitempty"`
	Source   string             `json:"source,omitempty"`
	Message  string             `json:"message"`
}

// PublishDiagnosticsParams carries the full diagnostic set for one document
// at the version it was computed for.
type PublishDiagnosticsParams struct {
	Path        string       `json:"path"`
	Version     int          `json:"version"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}
