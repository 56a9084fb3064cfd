package document

import "fmt"

// Buffer provides the current content of a document. The editing surface owns
// it; documents and snapshots only read from it.
type Buffer interface {
	Len() int
	Slice(start, end int) string
	String() string
}

// EditableBuffer is a Buffer that can apply replacements itself. Documents
// created by Store.Create own one, so Document.Replace can both edit the text
// and record the change.
type EditableBuffer interface {
	Buffer
	Replace(start, end int, text string) error
}

// TextBuffer is a string-backed EditableBuffer. It is not safe for concurrent
// use on its own; the owning Document serialises access.
type TextBuffer struct {
	text string
}

// NewTextBuffer creates a buffer holding text.
func NewTextBuffer(text string) *TextBuffer {
	return &TextBuffer{text: text}
}

func (b *TextBuffer) Len() int { return len(b.text) }

func (b *TextBuffer) String() string { return b.text }

// Slice returns the text in [start, end). Bounds are clamped to the buffer.
func (b *TextBuffer) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(b.text) {
		end = len(b.text)
	}
	if start > end {
		return ""
	}
	return b.text[start:end]
}

// Replace substitutes text for the span [start, end).
func (b *TextBuffer) Replace(start, end int, text string) error {
	if start < 0 || end < start || end > len(b.text) {
		return fmt.Errorf("replace [%d,%d) in %d bytes: %w", start, end, len(b.text), ErrInvalidArgument)
	}
	b.text = b.text[:start] + text + b.text[end:]
	return nil
}
