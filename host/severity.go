package host

import (
	"log/slog"
	"time"
)

// Severity tags a log entry.
type Severity uint8

const (
	SeverityInformation Severity = iota
	SeverityDebug
	SeverityWarning
	SeverityError
	SeverityFatal

	// SeverityDiagnostics marks output of the engine's diagnostics channel.
	// It has no gate and is always recorded.
	SeverityDiagnostics
)

func (s Severity) String() string {
	switch s {
	case SeverityInformation:
		return "information"
	case SeverityDebug:
		return "debug"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	case SeverityDiagnostics:
		return "diagnostics"
	default:
		return "unknown"
	}
}

// slogLevel maps a severity onto the slog level entries are forwarded at.
func (s Severity) slogLevel() slog.Level {
	switch s {
	case SeverityDebug, SeverityDiagnostics:
		return slog.LevelDebug
	case SeverityWarning:
		return slog.LevelWarn
	case SeverityError, SeverityFatal:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Levels holds the five store-wide severity gates.
type Levels struct {
	Information bool `toml:"information"`
	Debug       bool `toml:"debug"`
	Warning     bool `toml:"warning"`
	Error       bool `toml:"error"`
	Fatal       bool `toml:"fatal"`
}

// AllLevels enables every gate.
func AllLevels() Levels {
	return Levels{Information: true, Debug: true, Warning: true, Error: true, Fatal: true}
}

// Enabled reports whether entries of severity s pass the gates.
func (l Levels) Enabled(s Severity) bool {
	switch s {
	case SeverityInformation:
		return l.Information
	case SeverityDebug:
		return l.Debug
	case SeverityWarning:
		return l.Warning
	case SeverityError:
		return l.Error
	case SeverityFatal:
		return l.Fatal
	case SeverityDiagnostics:
		return true
	default:
		return false
	}
}

// Entry is one buffered log record.
type Entry struct {
	Time     time.Time
	Severity Severity
	Message  string
}
