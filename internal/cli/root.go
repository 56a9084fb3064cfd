// Package cli provides the Cobra command structure for scripthost.
package cli

import (
	"errors"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gossip-lsp/scripthost"
)

// ErrDiagnosticsFound signals that analysis reported error diagnostics.
var ErrDiagnosticsFound = errors.New("error diagnostics found")

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type globalFlags struct {
	debug      bool
	configPath string
	color      string
}

// NewRootCommand creates the root scripthost command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "scripthost",
		Short: "Incremental tree-sitter analysis over versioned documents",
		Long: `scripthost loads documents into a versioned store, records every edit as a
change range, and re-parses incrementally with tree-sitter from the composed
change between the last analysed version and the current one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "",
		"path to settings file (default: <dir>/"+scripthost.SettingsFile+" for check)")
	rootCmd.PersistentFlags().StringVar(&flags.color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newCheckCommand(flags))
	rootCmd.AddCommand(newReplayCommand(flags))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

// NewLogger returns a slog logger that renders through charmbracelet/log.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	handler.SetLevel(log.InfoLevel)
	if debug {
		handler.SetLevel(log.DebugLevel)
	}
	return slog.New(handler)
}

// newWorkspace builds a workspace from the global flags. settingsPath is used
// when --config is not given; empty means no settings file.
func newWorkspace(cmd *cobra.Command, flags *globalFlags, settingsPath string) (*scripthost.Workspace, error) {
	logger := NewLogger(cmd.ErrOrStderr(), flags.debug)

	defaults := scripthost.DefaultSettings()
	defaults.Log.Debug = flags.debug
	opts := []scripthost.Option{
		scripthost.WithLogger(logger),
		scripthost.WithSettings(defaults),
	}

	if flags.configPath != "" {
		settingsPath = flags.configPath
	}
	if settingsPath != "" {
		opts = append(opts, scripthost.WithSettingsFile(settingsPath))
	}
	return scripthost.New(opts...)
}
