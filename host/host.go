// Package host presents a document store to an analysis engine. The engine
// depends only on the Host and Snapshot interfaces; StoreHost is the
// implementation backed by a document.Store.
package host

import (
	"github.com/gossip-lsp/scripthost/document"
)

// Snapshot is a version-tagged read view of one document. *document.Snapshot
// implements it.
type Snapshot interface {
	Path() string
	Version() int
	Len() int
	Text(start, end int) (string, error)
	LineStarts() []int
	ChangeRangeSince(base int) (document.ChangeRange, error)
}

// Logger is the severity-gated log sink an engine writes to. Each gate reports
// whether entries of that severity are wanted; Log takes the severity
// explicitly. Log drops entries whose gate is off rather than buffering
// them, so a caller may skip building a message when its gate is closed.
type Logger interface {
	InformationEnabled() bool
	DebugEnabled() bool
	WarningEnabled() bool
	ErrorEnabled() bool
	FatalEnabled() bool
	Log(sev Severity, message string)
}

// Host is everything an analysis engine may ask of the document collection.
// Calls are pull-only: the engine decides when to query.
type Host interface {
	// Files returns every managed path.
	Files() []string

	// Version returns the current version of the document at path.
	Version(path string) (int, error)

	// Snapshot returns a fresh snapshot of the document at path.
	Snapshot(path string) (Snapshot, error)

	FileExists(path string) bool

	// DirectoryExists reports whether any managed path lies under the
	// directory prefix. Directories are not stored; this is a prefix test.
	DirectoryExists(path string) bool

	ParentOf(path string) string
	ResolveRelative(base, rel string) string

	Logger
}

var (
	_ Host     = (*StoreHost)(nil)
	_ Snapshot = (*document.Snapshot)(nil)
)
