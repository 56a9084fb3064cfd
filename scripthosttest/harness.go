// Package scripthosttest provides testing utilities for code built on a
// scripthost Workspace. A Harness drives documents through edits and analysis
// passes and fails the test on any unexpected error; assertion helpers cover
// diagnostics, change ranges and incremental trees.
package scripthosttest

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/gossip-lsp/scripthost"
	"github.com/gossip-lsp/scripthost/document"
	"github.com/gossip-lsp/scripthost/protocol"
	"github.com/gossip-lsp/scripthost/treesitter"
)

// Harness wraps a Workspace for tests. It records every published diagnostic
// set and closes the workspace when the test completes.
type Harness struct {
	t  testing.TB
	ws *scripthost.Workspace

	mu        sync.Mutex
	published []protocol.PublishDiagnosticsParams
}

// New creates a harness around a fresh workspace. Logging is discarded unless
// opts set a logger.
func New(t testing.TB, opts ...scripthost.Option) *Harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]scripthost.Option{scripthost.WithLogger(logger)}, opts...)

	ws, err := scripthost.New(opts...)
	if err != nil {
		t.Fatalf("creating workspace: %v", err)
	}
	h := &Harness{t: t, ws: ws}
	ws.OnDiagnostics(func(p protocol.PublishDiagnosticsParams) {
		h.mu.Lock()
		h.published = append(h.published, p)
		h.mu.Unlock()
	})
	t.Cleanup(func() { ws.Close() })
	return h
}

// Workspace returns the underlying workspace.
func (h *Harness) Workspace() *scripthost.Workspace { return h.ws }

// Open creates a document at version 1.
func (h *Harness) Open(path, text string) {
	h.t.Helper()
	if err := h.ws.Create(path, text); err != nil {
		h.t.Fatalf("create %s: %v", path, err)
	}
}

// Replace replaces [start, end) of path with text.
func (h *Harness) Replace(path string, start, end int, text string) {
	h.t.Helper()
	if err := h.ws.Replace(path, start, end, text); err != nil {
		h.t.Fatalf("replace %s [%d,%d): %v", path, start, end, err)
	}
}

// Insert inserts text at offset.
func (h *Harness) Insert(path string, offset int, text string) {
	h.t.Helper()
	h.Replace(path, offset, offset, text)
}

// Delete removes [start, end) of path.
func (h *Harness) Delete(path string, start, end int) {
	h.t.Helper()
	h.Replace(path, start, end, "")
}

// Text returns the current content of path.
func (h *Harness) Text(path string) string {
	h.t.Helper()
	text, ok := h.ws.Contents()[path]
	if !ok {
		h.t.Fatalf("no document %s", path)
	}
	return text
}

// Analyze runs one analysis pass over every document.
func (h *Harness) Analyze() {
	h.t.Helper()
	if err := h.ws.Analyze(context.Background()); err != nil {
		h.t.Fatalf("analyze: %v", err)
	}
}

// Tree analyses path and returns its tree. The tree is valid until the next
// analysis of path.
func (h *Harness) Tree(path string) *treesitter.Tree {
	h.t.Helper()
	tree, err := h.ws.AnalyzeFile(context.Background(), path)
	if err != nil {
		h.t.Fatalf("analyze %s: %v", path, err)
	}
	return tree
}

// ChangeSince returns the composed change of path from base to its current
// version.
func (h *Harness) ChangeSince(path string, base int) document.ChangeRange {
	h.t.Helper()
	snap, err := h.ws.Snapshot(path)
	if err != nil {
		h.t.Fatalf("snapshot %s: %v", path, err)
	}
	cr, err := snap.ChangeRangeSince(base)
	if err != nil {
		h.t.Fatalf("change range of %s since %d: %v", path, base, err)
	}
	return cr
}

// Diagnostics returns the latest diagnostics for path. It fails the test if
// path has not been analysed.
func (h *Harness) Diagnostics(path string) []protocol.Diagnostic {
	h.t.Helper()
	diags, _, ok := h.ws.Diagnostics(path)
	if !ok {
		h.t.Fatalf("no diagnostics computed for %s", path)
	}
	return diags
}

// Published returns every diagnostic set published so far.
func (h *Harness) Published() []protocol.PublishDiagnosticsParams {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]protocol.PublishDiagnosticsParams(nil), h.published...)
}

// LatestPublished returns the most recent diagnostic set published for path,
// or nil if none has been.
func (h *Harness) LatestPublished(path string) *protocol.PublishDiagnosticsParams {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.published) - 1; i >= 0; i-- {
		if h.published[i].Path == path {
			p := h.published[i]
			return &p
		}
	}
	return nil
}
