package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/gossip-lsp/scripthost/document"
	"github.com/gossip-lsp/scripthost/protocol"
)

// Styles contains the styled renderers for CLI output.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Path    lipgloss.Style
	Source  lipgloss.Style
	Message lipgloss.Style
	Dim     lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
}

// NewStyles creates Styles with or without color.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &Styles{
			Error: plain, Warning: plain, Info: plain,
			Path: plain, Source: plain, Message: plain, Dim: plain,
			Success: plain, Failure: plain,
		}
	}
	return &Styles{
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		Path:    lipgloss.NewStyle().Bold(true),
		Source:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Message: lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// IsColorEnabled reports whether to colorize output for mode ("auto",
// "always" or "never"). Auto enables color only on a terminal without
// NO_COLOR set.
func IsColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := w.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}

// FormatSeverity returns a styled severity label.
func (s *Styles) FormatSeverity(sev protocol.DiagnosticSeverity) string {
	switch sev {
	case protocol.SeverityError:
		return s.Error.Render(sev.String())
	case protocol.SeverityWarning:
		return s.Warning.Render(sev.String())
	default:
		return s.Info.Render(sev.String())
	}
}

// FormatDiagnostic renders one diagnostic as "path:line:col  severity  message  (source)".
func (s *Styles) FormatDiagnostic(path string, d protocol.Diagnostic) string {
	location := fmt.Sprintf("%s:%s", s.Path.Render(path), d.Range.Start)
	line := fmt.Sprintf("  %s  %s  %s", location, s.FormatSeverity(d.Severity), s.Message.Render(oneLine(d.Message)))
	if d.Source != "" {
		line += "  " + s.Source.Render("("+d.Source+")")
	}
	return line + "\n"
}

// FormatSource renders the source line a diagnostic starts on with a caret
// under its first character. It returns "" for an empty line.
func (s *Styles) FormatSource(text string, d protocol.Diagnostic) string {
	line := document.LineAt(text, d.Range.Start.Line)
	if strings.TrimSpace(line) == "" {
		return ""
	}
	lineStart := document.OffsetAt(text, protocol.Position{Line: d.Range.Start.Line})
	col := min(max(document.OffsetAt(text, d.Range.Start)-lineStart, 0), len(line))

	var indent strings.Builder
	for _, r := range line[:col] {
		if r == '\t' {
			indent.WriteByte('\t')
		} else {
			indent.WriteByte(' ')
		}
	}
	return fmt.Sprintf("    %s %s\n    %s %s%s\n",
		s.Dim.Render("|"), line,
		s.Dim.Render("|"), indent.String(), s.FormatCaret(d.Severity))
}

// FormatCaret returns a caret styled by severity.
func (s *Styles) FormatCaret(sev protocol.DiagnosticSeverity) string {
	switch sev {
	case protocol.SeverityError:
		return s.Error.Render("^")
	case protocol.SeverityWarning:
		return s.Warning.Render("^")
	default:
		return s.Info.Render("^")
	}
}

// FormatSummary renders the closing "N files, M problems" line.
func (s *Styles) FormatSummary(files, problems, errors int) string {
	text := fmt.Sprintf("%d %s, %d %s", files, plural(files, "file"), problems, plural(problems, "problem"))
	if errors > 0 {
		return s.Failure.Render(text) + "\n"
	}
	return s.Success.Render(text) + "\n"
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func oneLine(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", " ")
	return strings.ReplaceAll(msg, "\n", " ")
}
