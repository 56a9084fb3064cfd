// Package treesitter is the incremental analysis engine. It pulls snapshots
// from a host.Host, keeps one parser and tree per path, and re-parses
// incrementally from the composed change range between the last analysed
// version and the current one.
package treesitter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gossip-lsp/scripthost/document"
	"github.com/gossip-lsp/scripthost/protocol"
)

// Config configures the tree-sitter integration.
type Config struct {
	// Languages maps file extensions (e.g., ".go", ".ts") to tree-sitter languages.
	Languages map[string]*tree_sitter.Language

	// Matchers provides file-to-language matching beyond extensions.
	// Matchers are evaluated in order; the first match wins.
	Matchers []LanguageMatcher
}

// LanguageMatcher associates a tree-sitter language with one or more matching
// strategies. At least one of Extensions, Filenames or Pattern must be set.
type LanguageMatcher struct {
	Language   *tree_sitter.Language
	Extensions []string // e.g., [".yml", ".yaml"]
	Filenames  []string // exact base names, e.g., ["go.mod"]
	Pattern    string   // glob pattern, e.g., "/scripts/*.ts"
}

// Tree is the parse of one document at one version. A Tree is owned by the
// Manager and stays valid until the next Analyze of the same path.
type Tree struct {
	raw     *tree_sitter.Tree
	src     []byte
	path    string
	version int
	Diff    *TreeDiff
}

// TreeDiff describes the structural difference between the previous and current
// parse trees.
type TreeDiff struct {
	// Change is the composed text change the re-parse was fed. It is
	// document.Unchanged on a full parse.
	Change document.ChangeRange

	// ChangedRanges are the ranges where the syntax tree structurally changed,
	// in UTF-16 positions of the new source.
	ChangedRanges []protocol.Range

	// ChangedBytes are the same ranges as byte offsets into the new source.
	ChangedBytes []ByteRange

	// AffectedKinds is the set of node kinds that appear in the changed subtrees.
	AffectedKinds map[string]bool

	// AffectedNodes are the top-level named nodes whose subtrees contain changes.
	AffectedNodes []*tree_sitter.Node

	// IsFullReparse is true on first sight of a path or when no usable change
	// range was available.
	IsFullReparse bool

	oldSrc []byte
}

// ByteRange is a half-open byte interval [Start, End).
type ByteRange struct {
	Start, End int
}

// AffectsKind reports whether the diff touches any node of the given kind.
func (d *TreeDiff) AffectsKind(kind string) bool {
	if d == nil {
		return false
	}
	return d.AffectedKinds[kind]
}

// Raw returns the underlying tree-sitter Tree.
func (t *Tree) Raw() *tree_sitter.Tree {
	if t == nil {
		return nil
	}
	return t.raw
}

// RootNode returns the root node of the parse tree.
func (t *Tree) RootNode() *tree_sitter.Node {
	if t == nil || t.raw == nil {
		return nil
	}
	return t.raw.RootNode()
}

// Path returns the document path the tree was parsed from.
func (t *Tree) Path() string {
	if t == nil {
		return ""
	}
	return t.path
}

// Version returns the document version the tree was parsed at.
func (t *Tree) Version() int {
	if t == nil {
		return 0
	}
	return t.version
}

// Source returns the text the tree was parsed from.
func (t *Tree) Source() string {
	if t == nil {
		return ""
	}
	return string(t.src)
}

// Close releases the tree-sitter tree resources.
func (t *Tree) Close() {
	if t != nil && t.raw != nil {
		t.raw.Close()
	}
}
