package document

import (
	"errors"
	"testing"

	"github.com/gossip-lsp/scripthost/protocol"
)

func newTestDocument(t *testing.T, content string) *Document {
	t.Helper()
	doc, err := NewStore().Create("/test.ts", content)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return doc
}

func TestDocument_EndToEnd(t *testing.T) {
	store := NewStore()
	doc, err := store.Create("/x.ts", "let x=1;")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.Version() != 1 || doc.Len() != 8 {
		t.Fatalf("new document: version=%d len=%d, want 1, 8", doc.Version(), doc.Len())
	}

	if err := store.Edit("/x.ts", 4, 5, 1); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if doc.Version() != 2 || doc.Len() != 8 {
		t.Errorf("after edit: version=%d len=%d, want 2, 8", doc.Version(), doc.Len())
	}

	got, err := doc.ChangeRangeBetween(1, 2)
	if err != nil {
		t.Fatalf("ChangeRangeBetween: %v", err)
	}
	want := ChangeRange{Start: 4, End: 5, NewLength: 1}
	if got != want {
		t.Errorf("ChangeRangeBetween(1, 2) = %v, want %v", got, want)
	}
}

func TestDocument_VersionCountsEdits(t *testing.T) {
	doc := newTestDocument(t, "")
	for n := 1; n <= 10; n++ {
		if err := doc.Replace(doc.Len(), doc.Len(), "ab"); err != nil {
			t.Fatalf("Replace: %v", err)
		}
		if doc.Version() != n+1 {
			t.Errorf("after %d edits: Version() = %d, want %d", n, doc.Version(), n+1)
		}
		if doc.EditCount() != n {
			t.Errorf("after %d edits: EditCount() = %d, want %d", n, doc.EditCount(), n)
		}
	}
	if doc.Len() != 20 || len(doc.Text()) != 20 {
		t.Errorf("Len() = %d, len(Text()) = %d, want 20", doc.Len(), len(doc.Text()))
	}
}

func TestDocument_LengthTracksEdits(t *testing.T) {
	doc := newTestDocument(t, "hello world")

	steps := []struct {
		start, end, newLength int
		wantLen               int
	}{
		{5, 11, 0, 5},
		{0, 0, 3, 8},
		{2, 6, 1, 5},
		{5, 5, 10, 15},
	}
	for _, s := range steps {
		if err := doc.RecordEdit(s.start, s.end, s.newLength); err != nil {
			t.Fatalf("RecordEdit(%d, %d, %d): %v", s.start, s.end, s.newLength, err)
		}
		if doc.Len() != s.wantLen {
			t.Errorf("RecordEdit(%d, %d, %d): Len() = %d, want %d", s.start, s.end, s.newLength, doc.Len(), s.wantLen)
		}
	}
}

func TestDocument_RecordEditRejectsBadOffsets(t *testing.T) {
	doc := newTestDocument(t, "abcdef")
	tests := []struct {
		start, end, newLength int
	}{
		{-1, 2, 0},
		{3, 2, 0},
		{0, 7, 0},
		{0, 0, -1},
	}
	for _, tt := range tests {
		err := doc.RecordEdit(tt.start, tt.end, tt.newLength)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("RecordEdit(%d, %d, %d) error = %v, want ErrInvalidArgument", tt.start, tt.end, tt.newLength, err)
		}
	}
	if doc.Version() != 1 {
		t.Errorf("rejected edits bumped version to %d", doc.Version())
	}
}

func TestDocument_ChangeRangeBetweenBounds(t *testing.T) {
	doc := newTestDocument(t, "abc")
	_ = doc.Replace(0, 0, "x")
	_ = doc.Replace(1, 1, "y")

	for v := 1; v <= doc.Version(); v++ {
		got, err := doc.ChangeRangeBetween(v, v)
		if err != nil {
			t.Fatalf("ChangeRangeBetween(%d, %d): %v", v, v, err)
		}
		if got != Unchanged {
			t.Errorf("ChangeRangeBetween(%d, %d) = %v, want unchanged", v, v, got)
		}
	}

	bad := [][2]int{{0, 1}, {2, 1}, {1, 4}, {4, 4}, {-1, 2}}
	for _, b := range bad {
		if _, err := doc.ChangeRangeBetween(b[0], b[1]); !errors.Is(err, ErrRange) {
			t.Errorf("ChangeRangeBetween(%d, %d) error = %v, want ErrRange", b[0], b[1], err)
		}
	}
}

func TestDocument_ChangeRangeBetweenComposes(t *testing.T) {
	doc := newTestDocument(t, "function f() {}\n")
	texts := []string{doc.Text()}
	edits := []struct {
		start, end int
		text       string
	}{
		{9, 10, "greet"},
		{15, 15, "name"},
		{0, 0, "export "},
		{len("export function greet(name) {"), len("export function greet(name) {"), " return 1; "},
		{7, 15, ""},
	}
	for _, e := range edits {
		if err := doc.Replace(e.start, e.end, e.text); err != nil {
			t.Fatalf("Replace(%d, %d, %q): %v", e.start, e.end, e.text, err)
		}
		texts = append(texts, doc.Text())
	}

	for from := 1; from <= doc.Version(); from++ {
		for to := from; to <= doc.Version(); to++ {
			c, err := doc.ChangeRangeBetween(from, to)
			if err != nil {
				t.Fatalf("ChangeRangeBetween(%d, %d): %v", from, to, err)
			}
			before, after := texts[from-1], texts[to-1]
			got, err := c.Apply(before, after[c.Start:c.NewEnd()])
			if err != nil {
				t.Fatalf("ChangeRangeBetween(%d, %d) = %v: %v", from, to, c, err)
			}
			if got != after {
				t.Errorf("ChangeRangeBetween(%d, %d) = %v rebuilds %q, want %q", from, to, c, got, after)
			}
		}
	}
}

func TestDocument_CompositionIsAssociative(t *testing.T) {
	doc := newTestDocument(t, "let a = 1;\nlet b = 2;\n")
	_ = doc.Replace(4, 5, "alpha")
	_ = doc.Replace(20, 21, "")
	_ = doc.Replace(0, 0, "// header\n")

	direct, err := doc.ChangeRangeBetween(1, doc.Version())
	if err != nil {
		t.Fatalf("ChangeRangeBetween: %v", err)
	}
	for mid := 2; mid < doc.Version(); mid++ {
		first, _ := doc.ChangeRangeBetween(1, mid)
		second, _ := doc.ChangeRangeBetween(mid, doc.Version())
		if folded := Compose(first, second); folded != direct {
			t.Errorf("split at %d: Compose(%v, %v) = %v, want %v", mid, first, second, folded, direct)
		}
	}

	a, _ := doc.ChangeRangeBetween(1, 2)
	b, _ := doc.ChangeRangeBetween(2, 3)
	ab, _ := doc.ChangeRangeBetween(1, 3)
	if got := Compose(a, b); got != ab {
		t.Errorf("Compose(%v, %v) = %v, want %v", a, b, got, ab)
	}
}

func TestDocument_ApplyChanges(t *testing.T) {
	doc := newTestDocument(t, "hello\nworld")
	applied, err := doc.ApplyChanges([]protocol.TextDocumentContentChangeEvent{
		{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 1, Character: 0},
				End:   protocol.Position{Line: 1, Character: 5},
			},
			Text: "gossip",
		},
		{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 0, Character: 5},
				End:   protocol.Position{Line: 0, Character: 5},
			},
			Text: ",",
		},
	})
	if err != nil {
		t.Fatalf("ApplyChanges: %v", err)
	}
	if got, want := doc.Text(), "hello,\ngossip"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	want := []ChangeRange{{6, 11, 6}, {5, 5, 1}}
	if len(applied) != len(want) || applied[0] != want[0] || applied[1] != want[1] {
		t.Errorf("ApplyChanges() = %v, want %v", applied, want)
	}
	if doc.Version() != 3 {
		t.Errorf("Version() = %d, want 3", doc.Version())
	}

	applied, err = doc.ApplyChanges([]protocol.TextDocumentContentChangeEvent{{Text: "new"}})
	if err != nil {
		t.Fatalf("ApplyChanges(full): %v", err)
	}
	if applied[0] != (ChangeRange{0, 13, 3}) || doc.Text() != "new" {
		t.Errorf("full replace recorded %v with text %q", applied[0], doc.Text())
	}
}

func TestDocument_ReplaceNeedsEditableBuffer(t *testing.T) {
	store := NewStore()
	doc, err := store.Attach("/ro.ts", readOnlyBuffer("const a = 1;"))
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := doc.Replace(0, 5, "let"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Replace on read-only buffer error = %v, want ErrInvalidArgument", err)
	}
	if err := doc.RecordEdit(0, 5, 3); err != nil {
		t.Errorf("RecordEdit: %v", err)
	}
	if doc.Len() != 10 {
		t.Errorf("Len() = %d, want 10", doc.Len())
	}
}

type readOnlyBuffer string

func (b readOnlyBuffer) Len() int                    { return len(b) }
func (b readOnlyBuffer) String() string              { return string(b) }
func (b readOnlyBuffer) Slice(start, end int) string { return string(b[start:end]) }
