package document

import "github.com/gossip-lsp/scripthost/protocol"

// ResolveChange converts a content change event into byte offsets [start, end)
// within text. Out-of-range positions are clamped; a nil range covers the
// whole text.
func ResolveChange(text string, change protocol.TextDocumentContentChangeEvent) (start, end int) {
	if change.Range == nil {
		return 0, len(text)
	}
	start = OffsetAt(text, change.Range.Start)
	end = OffsetAt(text, change.Range.End)
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start > end {
		start = end
	}
	return start, end
}
