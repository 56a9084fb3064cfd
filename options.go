package scripthost

import (
	"log/slog"

	"github.com/gossip-lsp/scripthost/middleware"
	"github.com/gossip-lsp/scripthost/treesitter"
)

// Option configures a Workspace during construction.
type Option func(*Workspace)

// WithLogger sets a custom slog logger on the workspace. Engine log entries
// that pass the severity gates are forwarded to it.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = l
	}
}

// WithSettings replaces the default settings.
func WithSettings(s Settings) Option {
	return func(w *Workspace) {
		path := w.settings.path
		w.settings = newSettingsHolder(s)
		w.settings.path = path
	}
}

// WithSettingsFile loads settings from a TOML file on top of the current
// defaults and reloads them whenever the file changes. A missing file leaves
// the defaults in place.
func WithSettingsFile(path string) Option {
	return func(w *Workspace) {
		w.settings.path = path
	}
}

// WithTreeSitter replaces the bundled grammar set.
func WithTreeSitter(cfg treesitter.Config) Option {
	return func(w *Workspace) {
		w.tsConfig = cfg
	}
}

// WithoutDefaultChecks skips registering the built-in syntax-errors check.
func WithoutDefaultChecks() Option {
	return func(w *Workspace) {
		w.defaultChecks = false
	}
}

// WithMaxLogEntries bounds the host's buffered engine log.
func WithMaxLogEntries(n int) Option {
	return func(w *Workspace) {
		w.maxLogEntries = n
	}
}

// WithAnalyzerMiddleware wraps every analyzer added with AddAnalyzer. Panic
// recovery is always installed as the outermost layer.
func WithAnalyzerMiddleware(mws ...middleware.Middleware) Option {
	return func(w *Workspace) {
		w.analyzerMW = middleware.Chain(mws...)
	}
}
