package treesitter

import (
	"context"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gossip-lsp/scripthost/host"
	"github.com/gossip-lsp/scripthost/protocol"
)

// Check is a declarative, pattern-based diagnostic rule. The engine runs the
// Pattern as a tree-sitter query, scoped to changed ranges, and converts
// matches into diagnostics.
type Check struct {
	// Pattern is a tree-sitter query pattern (e.g., "(ERROR) @error").
	Pattern string

	// Severity is the diagnostic severity for matches.
	Severity protocol.DiagnosticSeverity

	// Source is the diagnostic source string. If empty, the check name is used.
	Source string

	// Filter, if non-nil, is called for each capture. Return true to keep it.
	Filter func(Capture) bool

	// Message converts a capture into a diagnostic message string.
	Message func(Capture) string
}

// AnalysisScope controls when an Analyzer re-runs.
type AnalysisScope int

const (
	// ScopeChanged restricts the analyzer to only the changed ranges.
	ScopeChanged AnalysisScope = iota
	// ScopeFile re-runs the analyzer on the entire file, but only when
	// InterestKinds (if set) intersect with the diff's affected kinds.
	ScopeFile
)

// Analyzer is an imperative diagnostic rule with full control over the
// analysis logic.
type Analyzer struct {
	// Scope controls when the analyzer re-runs.
	Scope AnalysisScope

	// InterestKinds, if non-empty, causes the analyzer to be skipped when none
	// of these node kinds appear in the diff's AffectedKinds. An empty slice
	// means the analyzer runs on every re-parse.
	InterestKinds []string

	// Run performs the analysis and returns diagnostics.
	Run func(*AnalysisContext) []protocol.Diagnostic
}

// AnalysisContext is passed to Analyzer.Run with everything the analyzer needs.
type AnalysisContext struct {
	context.Context

	// Tree is the current parse tree.
	Tree *Tree

	// Diff describes what changed from the previous tree.
	Diff *TreeDiff

	// Snapshot is the document view the tree was parsed from.
	Snapshot host.Snapshot

	// Host gives access to sibling files and the log.
	Host host.Host

	// Language is the tree-sitter language for this document.
	Language *tree_sitter.Language

	// Previous holds the cached diagnostics from the last run of this analyzer
	// for this file. On first run this is nil.
	Previous []protocol.Diagnostic
}

// MergePrevious drops every previous diagnostic that overlaps a changed range
// and appends fresh. ScopeFile analyzers that only re-check the affected
// portion of the file use it to produce a complete set.
func (ctx *AnalysisContext) MergePrevious(fresh []protocol.Diagnostic) []protocol.Diagnostic {
	if ctx.Diff == nil || len(ctx.Diff.ChangedRanges) == 0 {
		return fresh
	}
	return append(keepOutside(ctx.Previous, ctx.Diff.ChangedRanges), fresh...)
}

func keepOutside(diags []protocol.Diagnostic, changed []protocol.Range) []protocol.Diagnostic {
	var kept []protocol.Diagnostic
	for _, d := range diags {
		if !rangesOverlapAny(d.Range, changed) {
			kept = append(kept, d)
		}
	}
	return kept
}

func rangesOverlapAny(r protocol.Range, rs []protocol.Range) bool {
	for _, cr := range rs {
		if rangesOverlap(r, cr) {
			return true
		}
	}
	return false
}

func rangesOverlap(a, b protocol.Range) bool {
	return !positionBefore(a.End, b.Start) && !positionBefore(b.End, a.Start)
}

// positionBefore reports whether a is strictly before b.
func positionBefore(a, b protocol.Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}
