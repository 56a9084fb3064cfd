package scripthost

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gossip-lsp/scripthost/config"
	"github.com/gossip-lsp/scripthost/host"
)

// SettingsFile is the conventional settings file name.
const SettingsFile = ".scripthost.toml"

// Settings is the TOML-backed workspace configuration.
//
//	[log]
//	information = true
//	debug = false
//
//	[analysis]
//	disabled_checks = ["syntax-errors"]
type Settings struct {
	Log      host.Levels      `toml:"log"`
	Analysis AnalysisSettings `toml:"analysis"`
}

// AnalysisSettings controls which rules the engine runs.
type AnalysisSettings struct {
	DisabledChecks []string `toml:"disabled_checks"`
}

// DefaultSettings enables every log gate except debug and every rule.
func DefaultSettings() Settings {
	return Settings{
		Log: host.Levels{Information: true, Warning: true, Error: true, Fatal: true},
	}
}

// Validate rejects blank rule names.
func (s *Settings) Validate() error {
	for i, name := range s.Analysis.DisabledChecks {
		if name == "" {
			return fmt.Errorf("analysis.disabled_checks[%d]: %w", i, errors.New("empty rule name"))
		}
	}
	return nil
}

// settingsHolder keeps the live Settings and, when a file is configured,
// reloads them from disk as the file changes.
type settingsHolder struct {
	store   *config.Store[Settings]
	bridge  *config.FileBridge[Settings]
	watcher *config.Watcher

	path     string
	defaults *Settings
}

func newSettingsHolder(defaults Settings) *settingsHolder {
	initial := defaults
	return &settingsHolder{
		store:    config.NewStore(&initial),
		defaults: &defaults,
	}
}

// load reads the settings file once, if one is configured.
func (h *settingsHolder) load() error {
	if h.path == "" {
		return nil
	}
	h.bridge = config.NewFileBridge(h.store, h.path, h.defaults)
	return h.bridge.HandleChange()
}

// startWatcher begins hot reload. Watching is best-effort: failures are
// logged and the workspace keeps its current settings.
func (h *settingsHolder) startWatcher(logger *slog.Logger) {
	if h.bridge == nil {
		return
	}
	watcher, err := config.NewWatcher(h.path, func() {
		if err := h.bridge.HandleChange(); err != nil {
			logger.Warn("failed to reload settings", "path", h.path, "error", err)
			return
		}
		logger.Info("settings reloaded", "path", h.path)
	}, config.WithWatcherLogger(logger))
	if err != nil {
		logger.Warn("failed to start settings watcher", "path", h.path, "error", err)
		return
	}
	h.watcher = watcher
}

func (h *settingsHolder) close() error {
	if h.watcher != nil {
		return h.watcher.Close()
	}
	return nil
}
