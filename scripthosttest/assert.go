package scripthosttest

import (
	"testing"

	"github.com/gossip-lsp/scripthost/document"
	"github.com/gossip-lsp/scripthost/protocol"
)

// AssertDiagnosticCount asserts the number of diagnostics.
func AssertDiagnosticCount(t testing.TB, diags []protocol.Diagnostic, count int) {
	t.Helper()
	if len(diags) != count {
		t.Errorf("expected %d diagnostics, got %d: %v", count, len(diags), diags)
	}
}

// AssertDiagnosticAt asserts that a diagnostic from source starts at pos.
func AssertDiagnosticAt(t testing.TB, diags []protocol.Diagnostic, source string, pos protocol.Position) {
	t.Helper()
	for _, d := range diags {
		if d.Source == source && d.Range.Start == pos {
			return
		}
	}
	t.Errorf("no %s diagnostic at %s, got: %v", source, pos, diags)
}

// AssertNoDiagnosticsFrom asserts that no diagnostic came from source.
func AssertNoDiagnosticsFrom(t testing.TB, diags []protocol.Diagnostic, source string) {
	t.Helper()
	for _, d := range diags {
		if d.Source == source {
			t.Errorf("unexpected %s diagnostic at %s: %s", source, d.Range, d.Message)
		}
	}
}

// AssertChangeRange asserts a composed change range.
func AssertChangeRange(t testing.TB, got document.ChangeRange, start, end, newLength int) {
	t.Helper()
	want := document.ChangeRange{Start: start, End: end, NewLength: newLength}
	if got != want {
		t.Errorf("change range = %v, want %v", got, want)
	}
}
