package scripthosttest

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gossip-lsp/scripthost/treesitter"
)

// ParseString parses src from scratch with the bundled grammar registered for
// path and returns the parse tree.
func ParseString(t testing.TB, path, src string) *tree_sitter.Tree {
	t.Helper()
	lang, err := treesitter.NewRegistry(treesitter.DefaultConfig()).LanguageFor(path)
	if err != nil {
		t.Fatalf("language for %s: %v", path, err)
	}

	parser := tree_sitter.NewParser()
	t.Cleanup(func() { parser.Close() })
	if err := parser.SetLanguage(lang); err != nil {
		t.Fatalf("setting tree-sitter language: %v", err)
	}

	tree := parser.Parse([]byte(src), nil)
	if tree == nil {
		t.Fatalf("parsing %s returned no tree", path)
	}
	t.Cleanup(func() { tree.Close() })
	return tree
}

// AssertNodeKind asserts that a tree-sitter node has the expected kind.
func AssertNodeKind(t testing.TB, node *tree_sitter.Node, kind string) {
	t.Helper()
	if node == nil {
		t.Fatalf("node is nil, expected kind %q", kind)
	}
	if node.Kind() != kind {
		t.Errorf("node kind = %q, want %q", node.Kind(), kind)
	}
}

// AssertNoErrors asserts that the tree contains no ERROR or MISSING nodes.
func AssertNoErrors(t testing.TB, tree *treesitter.Tree) {
	t.Helper()
	if tree == nil {
		t.Fatal("tree is nil")
	}
	if tree.RootNode().HasError() {
		t.Errorf("tree for %s@%d contains errors", tree.Path(), tree.Version())
	}
}

// AssertMatchesFreshParse analyses path incrementally and asserts that the
// resulting tree is identical to a from-scratch parse of the current text.
func AssertMatchesFreshParse(t testing.TB, h *Harness, path string) {
	t.Helper()
	got := h.Tree(path).RootNode().ToSexp()
	want := ParseString(t, path, h.Text(path)).RootNode().ToSexp()
	if got != want {
		t.Errorf("incremental tree for %s differs from a fresh parse:\n got: %s\nwant: %s", path, got, want)
	}
}
