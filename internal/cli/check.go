package cli

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gossip-lsp/scripthost"
	"github.com/gossip-lsp/scripthost/protocol"
)

// maxFileSize bounds the files check loads; larger files are skipped.
const maxFileSize = 4 << 20

type checkFlags struct {
	all bool
}

func newCheckCommand(flags *globalFlags) *cobra.Command {
	cf := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Analyse every file under a directory",
		Long: `Load every regular file under dir (default ".") as a document named by its
slash-separated path relative to dir, run one analysis pass and print the
resulting diagnostics. Hidden directories are skipped.

Settings are read from <dir>/` + scripthost.SettingsFile + ` unless --config is given.
Exits non-zero when any error diagnostic is reported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runCheck(cmd, flags, cf, dir)
		},
	}

	cmd.Flags().BoolVar(&cf.all, "all", false, "also load files that have no grammar")

	return cmd
}

func runCheck(cmd *cobra.Command, flags *globalFlags, cf *checkFlags, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("check: %s is not a directory", dir)
	}

	ws, err := newWorkspace(cmd, flags, filepath.Join(dir, scripthost.SettingsFile))
	if err != nil {
		return err
	}
	defer ws.Close()

	files, err := collectFiles(dir, func(p string) bool {
		return cf.all || ws.TreeSitter().Registry().HasLanguage(p)
	})
	if err != nil {
		return err
	}
	if err := ws.Load(files); err != nil {
		return fmt.Errorf("check: %w", err)
	}
	ws.Logger().Debug("documents loaded", "dir", dir, "count", len(files))

	if err := ws.Analyze(cmd.Context()); err != nil {
		return fmt.Errorf("check: %w", err)
	}

	styles := NewStyles(IsColorEnabled(flags.color, cmd.OutOrStdout()))
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	if writeDiagnostics(cmd.OutOrStdout(), styles, ws, paths) > 0 {
		return ErrDiagnosticsFound
	}
	return nil
}

// collectFiles reads every regular file under dir accepted by keep, keyed by
// its absolute store path ("/" + slash-separated relative path).
func collectFiles(dir string, keep func(string) bool) (map[string]string, error) {
	files := make(map[string]string)
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		storePath := "/" + filepath.ToSlash(rel)
		if !keep(storePath) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > maxFileSize {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files[storePath] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	return files, nil
}

// writeDiagnostics prints diagnostics for paths followed by a summary and
// returns the number of error diagnostics.
func writeDiagnostics(w io.Writer, styles *Styles, ws *scripthost.Workspace, paths []string) int {
	var problems, errs int
	contents := ws.Contents()
	for _, p := range paths {
		diags, _, ok := ws.Diagnostics(p)
		if !ok {
			continue
		}
		for _, d := range diags {
			fmt.Fprint(w, styles.FormatDiagnostic(p, d))
			fmt.Fprint(w, styles.FormatSource(contents[p], d))
			problems++
			if d.Severity == protocol.SeverityError {
				errs++
			}
		}
	}
	fmt.Fprint(w, styles.FormatSummary(len(paths), problems, errs))
	return errs
}
