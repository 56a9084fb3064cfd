package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gossip-lsp/scripthost/document"
)

// Script is a replayable edit session.
//
//	files:
//	  /a.json: '{"a": 1}'
//	analyze_each: true
//	edits:
//	  - path: /a.json
//	    start: 6
//	    end: 7
//	    text: "2"
type Script struct {
	Files map[string]string `yaml:"files"`
	Edits []ScriptEdit      `yaml:"edits"`

	// AnalyzeEach runs an analysis pass after every edit instead of once at
	// the end, exercising the incremental path edit by edit.
	AnalyzeEach bool `yaml:"analyze_each"`
}

// ScriptEdit replaces [Start, End) of Path with Text.
type ScriptEdit struct {
	Path  string `yaml:"path"`
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
	Text  string `yaml:"text"`
}

// ParseScript decodes a replay script and checks that every edit names a
// loaded file.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	if len(s.Files) == 0 {
		return nil, errors.New("script has no files")
	}
	for i, e := range s.Edits {
		if _, ok := s.Files[e.Path]; !ok {
			return nil, fmt.Errorf("edits[%d]: unknown file %q", i, e.Path)
		}
	}
	return &s, nil
}

type replayFlags struct {
	showText bool
}

func newReplayCommand(flags *globalFlags) *cobra.Command {
	rf := &replayFlags{}

	cmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Apply a scripted edit session and report the result",
		Long: `Load the files of a YAML script at version 1, apply its edits in order and
print, per file, the final version, the composed change range since version 1
and the diagnostics of the final analysis.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("replay: %w", err)
			}
			script, err := ParseScript(data)
			if err != nil {
				return fmt.Errorf("replay %s: %w", args[0], err)
			}
			return runReplay(cmd, flags, rf, script)
		},
	}

	cmd.Flags().BoolVar(&rf.showText, "show-text", false, "print the final text of each file")

	return cmd
}

func runReplay(cmd *cobra.Command, flags *globalFlags, rf *replayFlags, script *Script) error {
	ws, err := newWorkspace(cmd, flags, "")
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := ws.Load(script.Files); err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	if script.AnalyzeEach {
		if err := ws.Analyze(cmd.Context()); err != nil {
			return fmt.Errorf("replay: %w", err)
		}
	}

	for i, e := range script.Edits {
		if err := ws.Replace(e.Path, e.Start, e.End, e.Text); err != nil {
			return fmt.Errorf("replay: edits[%d]: %w", i, err)
		}
		if script.AnalyzeEach {
			if err := ws.Analyze(cmd.Context()); err != nil {
				return fmt.Errorf("replay: edits[%d]: %w", i, err)
			}
		}
	}
	if err := ws.Analyze(cmd.Context()); err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	out := cmd.OutOrStdout()
	styles := NewStyles(IsColorEnabled(flags.color, out))
	paths := make([]string, 0, len(script.Files))
	for p := range script.Files {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	for _, p := range paths {
		snap, err := ws.Snapshot(p)
		if err != nil {
			return fmt.Errorf("replay: %w", err)
		}
		change, err := snap.ChangeRangeSince(1)
		if err != nil {
			return fmt.Errorf("replay: %w", err)
		}
		fmt.Fprintf(out, "%s  %s  %s\n",
			styles.Path.Render(p),
			styles.Dim.Render(fmt.Sprintf("v%d", snap.Version())),
			formatChange(change))
		if rf.showText {
			text, err := snap.Text(0, snap.Len())
			if err != nil {
				return fmt.Errorf("replay: %w", err)
			}
			fmt.Fprintf(out, "%s\n", text)
		}
	}

	if writeDiagnostics(out, styles, ws, paths) > 0 {
		return ErrDiagnosticsFound
	}
	return nil
}

func formatChange(c document.ChangeRange) string {
	if c.IsUnchanged() {
		return "unchanged"
	}
	return fmt.Sprintf("change %s (delta %+d)", c, c.Delta())
}
