package scripthosttest_test

import (
	"testing"

	"github.com/gossip-lsp/scripthost"
	"github.com/gossip-lsp/scripthost/protocol"
	"github.com/gossip-lsp/scripthost/scripthosttest"
	"github.com/gossip-lsp/scripthost/treesitter"
)

func TestCursors(t *testing.T) {
	text, at := scripthosttest.Cursors(`{"a": ‸1‸}`)
	if text != `{"a": 1}` {
		t.Errorf("text = %q", text)
	}
	if len(at) != 2 || at[0] != 6 || at[1] != 7 {
		t.Errorf("offsets = %v, want [6 7]", at)
	}

	text, at = scripthosttest.Cursors("plain")
	if text != "plain" || len(at) != 0 {
		t.Errorf("Cursors(plain) = %q, %v", text, at)
	}
}

func TestHarness_EditAndAnalyze(t *testing.T) {
	h := scripthosttest.New(t)
	text, at := scripthosttest.Cursors(`{"a": ‸1‸, "b": 2}`)
	h.Open("/a.json", text)
	h.Analyze()
	scripthosttest.AssertDiagnosticCount(t, h.Diagnostics("/a.json"), 0)

	h.Replace("/a.json", at[0], at[1], "bad")
	h.Analyze()
	diags := h.Diagnostics("/a.json")
	if len(diags) == 0 {
		t.Fatal("expected a syntax error")
	}
	if diags[0].Source != scripthost.SyntaxErrorsCheck || diags[0].Range.Start.Line != 0 {
		t.Errorf("diagnostic = %+v", diags[0])
	}

	latest := h.LatestPublished("/a.json")
	if latest == nil || latest.Version != 2 {
		t.Errorf("LatestPublished = %+v, want version 2", latest)
	}
	if len(h.Published()) != 2 {
		t.Errorf("Published() has %d sets, want 2", len(h.Published()))
	}

	h.Replace("/a.json", at[0], at[0]+3, "1")
	h.Analyze()
	scripthosttest.AssertNoDiagnosticsFrom(t, h.Diagnostics("/a.json"), scripthost.SyntaxErrorsCheck)
	scripthosttest.AssertChangeRange(t, h.ChangeSince("/a.json", 1), 6, 7, 1)
	scripthosttest.AssertChangeRange(t, h.ChangeSince("/a.json", 3), 0, 0, 0)
}

func TestHarness_IncrementalTreeMatchesFreshParse(t *testing.T) {
	h := scripthosttest.New(t)
	h.Open("/main.ts", "function f(a: number) {\n  return a;\n}\n")
	scripthosttest.AssertNoErrors(t, h.Tree("/main.ts"))

	h.Insert("/main.ts", 34, " + 1")
	h.Insert("/main.ts", 0, "export ")
	h.Delete("/main.ts", 18, 19)
	h.Insert("/main.ts", 18, "x")
	h.Replace("/main.ts", 40, 41, "x")

	if got, want := h.Text("/main.ts"), "export function f(x: number) {\n  return x + 1;\n}\n"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	scripthosttest.AssertMatchesFreshParse(t, h, "/main.ts")
	scripthosttest.AssertNodeKind(t, h.Tree("/main.ts").RootNode(), "program")
}

func TestParseString(t *testing.T) {
	tree := scripthosttest.ParseString(t, "/config.yaml", "key: value\n")
	scripthosttest.AssertNodeKind(t, tree.RootNode(), "stream")
}

func TestHarness_CustomCheck(t *testing.T) {
	h := scripthosttest.New(t, scripthost.WithoutDefaultChecks())
	h.Workspace().AddCheck("keys", treesitter.Check{
		Pattern:  "(pair key: (string) @key)",
		Severity: protocol.SeverityInformation,
	})
	h.Open("/a.json", "{\n  \"first\": 1,\n  \"second\": 2\n}")
	h.Analyze()

	diags := h.Diagnostics("/a.json")
	scripthosttest.AssertDiagnosticCount(t, diags, 2)
	scripthosttest.AssertDiagnosticAt(t, diags, "keys", scripthosttest.Pos(1, 2))
	scripthosttest.AssertDiagnosticAt(t, diags, "keys", scripthosttest.Pos(2, 2))
	scripthosttest.AssertNoDiagnosticsFrom(t, diags, scripthost.SyntaxErrorsCheck)
}
