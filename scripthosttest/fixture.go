package scripthosttest

import (
	"strings"

	"github.com/gossip-lsp/scripthost/protocol"
)

// CursorMarker marks offsets in fixture text. It is chosen so it cannot
// collide with the syntax of any bundled grammar.
const CursorMarker = "‸"

// Pos creates a protocol.Position from line and character (0-indexed).
func Pos(line, char uint32) protocol.Position {
	return protocol.Position{Line: line, Character: char}
}

// Rng creates a protocol.Range from start and end positions.
func Rng(startLine, startChar, endLine, endChar uint32) protocol.Range {
	return protocol.Range{
		Start: Pos(startLine, startChar),
		End:   Pos(endLine, endChar),
	}
}

// Cursors strips every CursorMarker from src and returns the clean text with
// the byte offset of each marker in it.
//
//	text, at := Cursors(`{"a": ‸1‸}`) // `{"a": 1}`, [6 7]
func Cursors(src string) (string, []int) {
	var (
		b       strings.Builder
		offsets []int
	)
	for {
		i := strings.Index(src, CursorMarker)
		if i < 0 {
			b.WriteString(src)
			return b.String(), offsets
		}
		b.WriteString(src[:i])
		offsets = append(offsets, b.Len())
		src = src[i+len(CursorMarker):]
	}
}
