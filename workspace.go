package scripthost

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gossip-lsp/scripthost/document"
	"github.com/gossip-lsp/scripthost/host"
	"github.com/gossip-lsp/scripthost/middleware"
	"github.com/gossip-lsp/scripthost/protocol"
	"github.com/gossip-lsp/scripthost/treesitter"
)

// SyntaxErrorsCheck is the name of the built-in check that reports ERROR
// nodes.
const SyntaxErrorsCheck = "syntax-errors"

// Workspace is the central type of the package. It owns the document store,
// the host the engine reads through, and the engine itself.
type Workspace struct {
	logger *slog.Logger

	docStore *document.Store
	host     *host.StoreHost

	tsConfig   treesitter.Config
	tsManager  *treesitter.Manager
	diagEngine *treesitter.DiagnosticEngine

	settings *settingsHolder

	defaultChecks bool
	maxLogEntries int
	analyzerMW    middleware.Middleware

	// analyzeMu serializes engine passes; replaced trees are closed during one.
	analyzeMu sync.Mutex
	recheck   atomic.Bool

	mu         sync.RWMutex
	publishers []func(protocol.PublishDiagnosticsParams)
}

// New creates a workspace. It fails only if a configured settings file exists
// but cannot be loaded.
func New(opts ...Option) (*Workspace, error) {
	w := &Workspace{
		logger:        slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})),
		docStore:      document.NewStore(),
		tsConfig:      treesitter.DefaultConfig(),
		settings:      newSettingsHolder(DefaultSettings()),
		defaultChecks: true,
		maxLogEntries: host.DefaultMaxEntries,
	}
	for _, o := range opts {
		o(w)
	}

	if err := w.settings.load(); err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	current := w.settings.store.Get()

	w.host = host.New(w.docStore,
		host.WithLogger(w.logger),
		host.WithLevels(current.Log),
		host.WithMaxEntries(w.maxLogEntries),
	)
	w.tsManager = treesitter.NewManager(w.tsConfig, w.host)
	w.diagEngine = treesitter.NewDiagnosticEngine(w.tsManager, w.host)
	w.diagEngine.SetPublish(w.publish)
	w.diagEngine.SetDisabled(current.Analysis.DisabledChecks)

	if w.defaultChecks {
		w.diagEngine.RegisterCheck(SyntaxErrorsCheck, treesitter.Check{
			Pattern:  "(ERROR) @error",
			Severity: protocol.SeverityError,
			Message:  func(treesitter.Capture) string { return "syntax error" },
		})
	}

	mws := []middleware.Middleware{middleware.Recovery(w.logger)}
	if w.analyzerMW != nil {
		mws = append(mws, w.analyzerMW)
	}
	w.analyzerMW = middleware.Chain(mws...)
	w.settings.store.OnChange(w.applySettings)
	w.settings.startWatcher(w.logger)

	return w, nil
}

func (w *Workspace) applySettings(_, next *Settings) {
	w.host.SetLevels(next.Log)
	w.diagEngine.SetDisabled(next.Analysis.DisabledChecks)
	w.recheck.Store(true)
	w.logger.Debug("settings applied", "disabled_checks", next.Analysis.DisabledChecks)
}

// --- Documents ---

// Create adds a document with the given initial content at version 1.
func (w *Workspace) Create(path, content string) error {
	_, err := w.docStore.Create(path, content)
	return err
}

// Attach adds a document backed by a caller-managed buffer. Record changes to
// it with Edit.
func (w *Workspace) Attach(path string, buf document.Buffer) error {
	_, err := w.docStore.Attach(path, buf)
	return err
}

// Load creates one document per entry. It is all-or-nothing with respect to
// path validation and duplicates.
func (w *Workspace) Load(files map[string]string) error {
	return w.docStore.Load(files)
}

// Contents returns the current text of every document keyed by path.
func (w *Workspace) Contents() map[string]string {
	return w.docStore.Contents()
}

// Edit records that [start, end) of an attached buffer was replaced by
// newLength characters.
func (w *Workspace) Edit(path string, start, end, newLength int) error {
	return w.docStore.Edit(path, start, end, newLength)
}

// Replace replaces [start, end) of a document with text and records the edit.
func (w *Workspace) Replace(path string, start, end int, text string) error {
	return w.docStore.Replace(path, start, end, text)
}

// Snapshot returns the engine-facing view of a document.
func (w *Workspace) Snapshot(path string) (host.Snapshot, error) {
	return w.host.Snapshot(path)
}

// OnChange registers a callback invoked after every recorded edit, such as an
// external autosave.
func (w *Workspace) OnChange(fn func(path string, version int, change document.ChangeRange)) {
	w.docStore.OnChange(func(doc *document.Document, change document.ChangeRange) {
		fn(doc.Path(), doc.Version(), change)
	})
}

// --- Analysis ---

// AddCheck registers a declarative check. It applies to every file on the
// next Analyze.
func (w *Workspace) AddCheck(name string, c treesitter.Check) {
	w.diagEngine.RegisterCheck(name, c)
	w.recheck.Store(true)
}

// AddAnalyzer registers an imperative analyzer wrapped in the workspace's
// analyzer middleware. A panicking analyzer keeps its previous diagnostics.
// It applies to every file on the next Analyze.
func (w *Workspace) AddAnalyzer(name string, a treesitter.Analyzer) {
	w.diagEngine.RegisterAnalyzer(name, middleware.Wrap(name, a, w.analyzerMW))
	w.recheck.Store(true)
}

// OnDiagnostics registers a callback that receives every published
// diagnostic set.
func (w *Workspace) OnDiagnostics(fn func(protocol.PublishDiagnosticsParams)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.publishers = append(w.publishers, fn)
}

func (w *Workspace) publish(_ context.Context, params *protocol.PublishDiagnosticsParams) error {
	w.mu.RLock()
	fns := w.publishers
	w.mu.RUnlock()
	for _, fn := range fns {
		fn(*params)
	}
	return nil
}

// Analyze brings every document with a known language up to date. Rules or
// settings changed since the last pass are re-run over whole files; files
// re-parsed in this pass already ran every rule and are not run again.
func (w *Workspace) Analyze(ctx context.Context) error {
	w.analyzeMu.Lock()
	defer w.analyzeMu.Unlock()

	recheck := w.recheck.Swap(false)
	changed, err := w.tsManager.SyncChanged(ctx)
	if recheck {
		if rerr := w.diagEngine.Recheck(ctx, changed...); rerr != nil {
			w.recheck.Store(true)
			return rerr
		}
	}
	return err
}

// AnalyzeFile brings a single document up to date and returns its tree. The
// tree is valid until the next analysis of the same path.
func (w *Workspace) AnalyzeFile(ctx context.Context, path string) (*treesitter.Tree, error) {
	w.analyzeMu.Lock()
	defer w.analyzeMu.Unlock()
	return w.tsManager.Analyze(ctx, path)
}

// TreeFor returns the tree from the last analysis of path without parsing,
// or nil if path has not been analysed. Its version may lag the document's;
// the tree is valid until the next analysis of path.
func (w *Workspace) TreeFor(path string) *treesitter.Tree {
	return w.tsManager.GetTree(path)
}

// Diagnostics returns the latest diagnostics for path and the version they
// were computed at. ok is false until path has been analysed.
func (w *Workspace) Diagnostics(path string) (diags []protocol.Diagnostic, version int, ok bool) {
	return w.diagEngine.Diagnostics(path)
}

// ReloadSettings re-reads the settings file immediately.
func (w *Workspace) ReloadSettings() error {
	if w.settings.bridge == nil {
		return nil
	}
	return w.settings.bridge.HandleChange()
}

// --- Accessors ---

// Settings returns the current settings.
func (w *Workspace) Settings() *Settings { return w.settings.store.Get() }

// Documents returns the document store.
func (w *Workspace) Documents() *document.Store { return w.docStore }

// Host returns the host the engine reads through.
func (w *Workspace) Host() *host.StoreHost { return w.host }

// TreeSitter returns the tree-sitter Manager.
func (w *Workspace) TreeSitter() *treesitter.Manager { return w.tsManager }

// DiagnosticEngine returns the diagnostic engine.
func (w *Workspace) DiagnosticEngine() *treesitter.DiagnosticEngine { return w.diagEngine }

// Logger returns the workspace's logger.
func (w *Workspace) Logger() *slog.Logger { return w.logger }

// Close stops the settings watcher and releases parsers and trees.
func (w *Workspace) Close() error {
	err := w.settings.close()
	w.analyzeMu.Lock()
	w.tsManager.Close()
	w.analyzeMu.Unlock()
	return err
}
