package treesitter

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gossip-lsp/scripthost/document"
	"github.com/gossip-lsp/scripthost/host"
	"github.com/gossip-lsp/scripthost/protocol"
)

// PublishFunc receives the full diagnostic set for a path after every run.
type PublishFunc func(ctx context.Context, params *protocol.PublishDiagnosticsParams) error

// DiagnosticEngine orchestrates declarative Checks and imperative Analyzers.
// It keeps per-path, per-rule diagnostic caches and publishes merged results
// after every tree update.
type DiagnosticEngine struct {
	mu        sync.Mutex
	checks    []namedCheck
	analyzers []namedAnalyzer
	disabled  map[string]bool

	// path -> rule name -> diagnostics
	cache    map[string]map[string][]protocol.Diagnostic
	versions map[string]int

	host    host.Host
	manager *Manager
	publish PublishFunc
}

type namedCheck struct {
	name  string
	check Check
}

type namedAnalyzer struct {
	name     string
	analyzer Analyzer
}

// NewDiagnosticEngine creates an engine and registers it as the manager's
// tree update callback.
func NewDiagnosticEngine(manager *Manager, h host.Host) *DiagnosticEngine {
	e := &DiagnosticEngine{
		disabled: make(map[string]bool),
		cache:    make(map[string]map[string][]protocol.Diagnostic),
		versions: make(map[string]int),
		host:     h,
		manager:  manager,
	}
	manager.OnTreeUpdate(e.onTreeUpdate)
	return e
}

// SetPublish sets the function results are published through.
func (e *DiagnosticEngine) SetPublish(fn PublishFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.publish = fn
}

// RegisterCheck adds a declarative check to the engine.
func (e *DiagnosticEngine) RegisterCheck(name string, c Check) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checks = append(e.checks, namedCheck{name: name, check: c})
}

// RegisterAnalyzer adds an imperative analyzer to the engine.
func (e *DiagnosticEngine) RegisterAnalyzer(name string, a Analyzer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.analyzers = append(e.analyzers, namedAnalyzer{name: name, analyzer: a})
}

// SetDisabled replaces the set of rule names that are skipped. Cached results
// of newly disabled rules are dropped; re-enabled rules run over the whole
// file on their next run.
func (e *DiagnosticEngine) SetDisabled(names []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disabled = make(map[string]bool, len(names))
	for _, n := range names {
		e.disabled[n] = true
	}
	for _, fileCache := range e.cache {
		for n := range e.disabled {
			delete(fileCache, n)
		}
	}
}

// Diagnostics returns the merged diagnostics for path and the document version
// they were computed at. ok is false if path was never analysed.
func (e *DiagnosticEngine) Diagnostics(path string) (diags []protocol.Diagnostic, version int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fileCache, ok := e.cache[path]
	if !ok {
		return nil, 0, false
	}
	return e.merged(fileCache), e.versions[path], true
}

// ClearCache removes cached diagnostics for a path.
func (e *DiagnosticEngine) ClearCache(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.cache, path)
	delete(e.versions, path)
}

// Recheck re-runs every enabled rule over the whole of every analysed tree and
// publishes the results. Paths in skip are left alone. Use it after the rule
// set or settings change. It must not run concurrently with Manager.Analyze,
// which closes replaced trees.
func (e *DiagnosticEngine) Recheck(ctx context.Context, skip ...string) error {
	for _, p := range e.manager.Paths() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if slices.Contains(skip, p) {
			continue
		}
		if tree := e.manager.GetTree(p); tree != nil {
			e.run(ctx, p, tree, true)
		}
	}
	return nil
}

func (e *DiagnosticEngine) onTreeUpdate(path string, tree *Tree) {
	e.run(context.Background(), path, tree, false)
}

func (e *DiagnosticEngine) run(ctx context.Context, path string, tree *Tree, full bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.checks) == 0 && len(e.analyzers) == 0 {
		return
	}

	lang, err := e.manager.Registry().LanguageFor(path)
	if err != nil {
		return
	}
	snap, err := e.host.Snapshot(path)
	if err != nil {
		e.host.Log(host.SeverityWarning, fmt.Sprintf("%s: no snapshot for analysis: %v", path, err))
		return
	}

	diff := tree.Diff
	if diff == nil || full {
		diff = &TreeDiff{
			IsFullReparse: true,
			AffectedKinds: make(map[string]bool),
			ChangedBytes:  []ByteRange{{Start: 0, End: len(tree.src)}},
			ChangedRanges: []protocol.Range{tree.byteRange(0, len(tree.src))},
		}
		collectSubtreeKinds(tree.RootNode(), diff.AffectedKinds)
	}

	fileCache := e.cache[path]
	if fileCache == nil {
		fileCache = make(map[string][]protocol.Diagnostic)
		e.cache[path] = fileCache
	}
	e.versions[path] = tree.version

	e.runChecks(tree, diff, lang, fileCache)
	e.runAnalyzers(ctx, tree, diff, snap, lang, fileCache)

	if e.publish == nil {
		return
	}
	params := &protocol.PublishDiagnosticsParams{
		Path:        path,
		Version:     tree.version,
		Diagnostics: e.merged(fileCache),
	}
	if err := e.publish(ctx, params); err != nil {
		e.host.Log(host.SeverityWarning, fmt.Sprintf("%s: publishing diagnostics: %v", path, err))
	}
}

// merged flattens a path's cache in position order.
func (e *DiagnosticEngine) merged(fileCache map[string][]protocol.Diagnostic) []protocol.Diagnostic {
	all := []protocol.Diagnostic{}
	for _, diags := range fileCache {
		all = append(all, diags...)
	}
	slices.SortStableFunc(all, func(a, b protocol.Diagnostic) int {
		if c := cmp.Compare(a.Range.Start.Line, b.Range.Start.Line); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Range.Start.Character, b.Range.Start.Character); c != 0 {
			return c
		}
		return cmp.Compare(a.Source, b.Source)
	})
	return all
}

func (e *DiagnosticEngine) runChecks(
	tree *Tree,
	diff *TreeDiff,
	lang *tree_sitter.Language,
	fileCache map[string][]protocol.Diagnostic,
) {
	for _, nc := range e.checks {
		if e.disabled[nc.name] {
			continue
		}
		prev, cached := fileCache[nc.name]
		if diff.IsFullReparse || !cached {
			fileCache[nc.name] = e.executeCheck(tree, lang, nc, []ByteRange{{Start: 0, End: len(tree.src)}})
			continue
		}

		dirty := dirtyBytes(tree, diff)
		dirtyRanges := make([]protocol.Range, len(dirty))
		for i, r := range dirty {
			dirtyRanges[i] = tree.byteRange(r.Start, r.End)
		}
		kept := keepOutside(shiftDiagnostics(prev, tree, diff), dirtyRanges)
		if len(dirty) == 0 {
			fileCache[nc.name] = kept
			continue
		}
		fresh := e.executeCheck(tree, lang, nc, dirty)
		fileCache[nc.name] = dedupe(append(kept, fresh...))
	}
}

// dirtyBytes returns the byte ranges of tree a check must re-scan: the
// structural changes plus the edited span, each widened by one byte so nodes
// ending or starting at a boundary are seen again.
func dirtyBytes(tree *Tree, diff *TreeDiff) []ByteRange {
	ranges := slices.Clone(diff.ChangedBytes)
	if !diff.Change.IsUnchanged() {
		ranges = append(ranges, ByteRange{Start: diff.Change.Start, End: diff.Change.NewEnd()})
	}
	for i := range ranges {
		ranges[i].Start = max(ranges[i].Start-1, 0)
		ranges[i].End = min(ranges[i].End+1, len(tree.src))
	}
	return ranges
}

func dedupe(diags []protocol.Diagnostic) []protocol.Diagnostic {
	type key struct {
		rng    protocol.Range
		source string
		msg    string
	}
	seen := make(map[key]bool, len(diags))
	out := diags[:0]
	for _, d := range diags {
		k := key{d.Range, d.Source, d.Message}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	return out
}

func (e *DiagnosticEngine) executeCheck(tree *Tree, lang *tree_sitter.Language, nc namedCheck, ranges []ByteRange) []protocol.Diagnostic {
	captures, err := tree.QueryCapturesInBytes(lang, nc.check.Pattern, ranges)
	if err != nil {
		e.host.Log(host.SeverityWarning, fmt.Sprintf("check %s: query failed: %v", nc.name, err))
		return nil
	}
	return capturesToDiagnostics(tree, captures, nc)
}

func capturesToDiagnostics(tree *Tree, captures []Capture, nc namedCheck) []protocol.Diagnostic {
	diags := []protocol.Diagnostic{}
	seen := make(map[protocol.Range]bool)
	for _, c := range captures {
		if nc.check.Filter != nil && !nc.check.Filter(c) {
			continue
		}
		rng := tree.NodeRange(c.Node)
		if seen[rng] {
			continue
		}
		seen[rng] = true

		msg := c.Text
		if nc.check.Message != nil {
			msg = nc.check.Message(c)
		}
		source := nc.check.Source
		if source == "" {
			source = nc.name
		}
		diags = append(diags, protocol.Diagnostic{
			Range:    rng,
			Severity: nc.check.Severity,
			Source:   source,
			Message:  msg,
		})
	}
	return diags
}

func (e *DiagnosticEngine) runAnalyzers(
	ctx context.Context,
	tree *Tree,
	diff *TreeDiff,
	snap host.Snapshot,
	lang *tree_sitter.Language,
	fileCache map[string][]protocol.Diagnostic,
) {
	for _, na := range e.analyzers {
		if e.disabled[na.name] {
			continue
		}
		previous, cached := fileCache[na.name]
		if !diff.IsFullReparse {
			previous = shiftDiagnostics(previous, tree, diff)
		}
		if cached && !diff.IsFullReparse && !analyzerShouldRun(na.analyzer, diff) {
			fileCache[na.name] = previous
			continue
		}

		actx := &AnalysisContext{
			Context:  ctx,
			Tree:     tree,
			Diff:     diff,
			Snapshot: snap,
			Host:     e.host,
			Language: lang,
			Previous: previous,
		}
		result := na.analyzer.Run(actx)
		if result == nil {
			result = []protocol.Diagnostic{}
		}
		fileCache[na.name] = result
	}
}

func analyzerShouldRun(a Analyzer, diff *TreeDiff) bool {
	if len(a.InterestKinds) == 0 {
		return true
	}
	for _, kind := range a.InterestKinds {
		if diff.AffectsKind(kind) {
			return true
		}
	}
	return false
}

// shiftDiagnostics moves diagnostics computed against the previous source into
// the coordinates of tree. Those lying wholly before the edited span keep their
// offsets, those wholly after it move by the change delta, and those touching
// it are dropped.
func shiftDiagnostics(diags []protocol.Diagnostic, tree *Tree, diff *TreeDiff) []protocol.Diagnostic {
	if len(diags) == 0 || diff.oldSrc == nil || diff.Change.IsUnchanged() {
		return diags
	}
	c := diff.Change
	oldText := string(diff.oldSrc)

	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		start := document.OffsetAt(oldText, d.Range.Start)
		end := document.OffsetAt(oldText, d.Range.End)
		switch {
		case end <= c.Start:
		case start >= c.End:
			start += c.Delta()
			end += c.Delta()
		default:
			continue
		}
		d.Range = tree.byteRange(start, end)
		out = append(out, d)
	}
	return out
}
