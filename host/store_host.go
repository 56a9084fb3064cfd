package host

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gossip-lsp/scripthost/document"
)

// DefaultMaxEntries bounds the buffered log when no limit is configured.
const DefaultMaxEntries = 1000

// Option configures a StoreHost.
type Option func(*StoreHost)

// WithLogger sets the slog logger buffered entries are forwarded to.
func WithLogger(l *slog.Logger) Option {
	return func(h *StoreHost) { h.logger = l }
}

// WithLevels sets the initial severity gates.
func WithLevels(l Levels) Option {
	return func(h *StoreHost) { h.levels.Store(&l) }
}

// WithMaxEntries bounds the buffered log. Older entries are dropped first.
func WithMaxEntries(n int) Option {
	return func(h *StoreHost) {
		if n > 0 {
			h.maxEntries = n
		}
	}
}

// StoreHost adapts a document.Store to the Host interface and buffers the
// engine's log output.
type StoreHost struct {
	store  *document.Store
	logger *slog.Logger
	levels atomic.Pointer[Levels]

	mu         sync.Mutex
	entries    []Entry
	maxEntries int
}

// New creates a host over store. All gates are enabled unless WithLevels says
// otherwise.
func New(store *document.Store, opts ...Option) *StoreHost {
	h := &StoreHost{
		store:      store,
		logger:     slog.Default(),
		maxEntries: DefaultMaxEntries,
	}
	all := AllLevels()
	h.levels.Store(&all)
	for _, o := range opts {
		o(h)
	}
	return h
}

// Store returns the underlying document store.
func (h *StoreHost) Store() *document.Store { return h.store }

func (h *StoreHost) Files() []string {
	return h.store.Paths()
}

func (h *StoreHost) Version(path string) (int, error) {
	doc, err := h.store.Get(path)
	if err != nil {
		return 0, err
	}
	return doc.Version(), nil
}

func (h *StoreHost) Snapshot(path string) (Snapshot, error) {
	doc, err := h.store.Get(path)
	if err != nil {
		return nil, err
	}
	return doc.Snapshot(), nil
}

func (h *StoreHost) FileExists(path string) bool {
	return h.store.Has(path)
}

func (h *StoreHost) DirectoryExists(path string) bool {
	return underDirectory(h.store.Paths(), path)
}

func (h *StoreHost) ParentOf(path string) string { return ParentOf(path) }

func (h *StoreHost) ResolveRelative(base, rel string) string { return ResolveRelative(base, rel) }

// --- Logging ---

// Levels returns the current severity gates.
func (h *StoreHost) Levels() Levels {
	return *h.levels.Load()
}

// SetLevels replaces the severity gates. Safe to call while the engine runs.
func (h *StoreHost) SetLevels(l Levels) {
	h.levels.Store(&l)
}

func (h *StoreHost) InformationEnabled() bool { return h.Levels().Information }
func (h *StoreHost) DebugEnabled() bool       { return h.Levels().Debug }
func (h *StoreHost) WarningEnabled() bool     { return h.Levels().Warning }
func (h *StoreHost) ErrorEnabled() bool       { return h.Levels().Error }
func (h *StoreHost) FatalEnabled() bool       { return h.Levels().Fatal }

// Log buffers message under sev and forwards it to the slog logger. Entries
// whose gate is disabled are dropped.
func (h *StoreHost) Log(sev Severity, message string) {
	if !h.Levels().Enabled(sev) {
		return
	}

	entry := Entry{Time: time.Now(), Severity: sev, Message: message}
	h.mu.Lock()
	h.entries = append(h.entries, entry)
	if over := len(h.entries) - h.maxEntries; over > 0 {
		h.entries = append(h.entries[:0], h.entries[over:]...)
	}
	h.mu.Unlock()

	attrs := []slog.Attr{slog.String("severity", sev.String())}
	if sev == SeverityFatal {
		attrs = append(attrs, slog.Bool("fatal", true))
	}
	h.logger.LogAttrs(context.Background(), sev.slogLevel(), message, attrs...)
}

// Diagnostics writes to the engine's diagnostics channel.
func (h *StoreHost) Diagnostics(message string) {
	h.Log(SeverityDiagnostics, message)
}

// Entries returns a copy of the buffered log, oldest first.
func (h *StoreHost) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// ClearEntries empties the buffered log.
func (h *StoreHost) ClearEntries() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}
