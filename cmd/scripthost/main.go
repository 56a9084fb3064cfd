// Package main is the entry point for the scripthost CLI.
package main

import (
	"errors"
	"os"

	"github.com/gossip-lsp/scripthost/internal/cli"
)

// Build-time variables set through ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)
	if err := rootCmd.Execute(); err != nil {
		// ErrDiagnosticsFound only selects the exit code.
		if !errors.Is(err, cli.ErrDiagnosticsFound) {
			cli.NewLogger(os.Stderr, false).Error("command failed", "error", err)
		}
		return 1
	}
	return 0
}
