package document

import (
	"fmt"
	"sync"

	"github.com/gossip-lsp/scripthost/protocol"
)

// editEntry records one edit and the content length it produced.
type editEntry struct {
	length int
	change ChangeRange
}

// Document tracks the edit history of one buffer. Every recorded edit bumps
// the version by exactly one, starting from 1, and the edit log keeps one
// entry per version step so change ranges can be composed across any span.
type Document struct {
	mu            sync.RWMutex
	path          string
	buf           Buffer
	version       int
	length        int
	initialLength int
	edits         []editEntry

	// onEdit is set by the owning Store to fan edits out to its listeners.
	onEdit func(doc *Document, change ChangeRange)
}

// New creates a document at version 1 reading its content from buf.
func New(path string, buf Buffer) *Document {
	n := buf.Len()
	return &Document{
		path:          path,
		buf:           buf,
		version:       1,
		length:        n,
		initialLength: n,
	}
}

// Path returns the document's absolute path.
func (d *Document) Path() string {
	return d.path
}

// Version returns the document's current version number.
func (d *Document) Version() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Len returns the content length as maintained by the recorded edits.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.length
}

// EditCount returns the number of edits in the log.
func (d *Document) EditCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.edits)
}

// Text returns the full current content of the document.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.String()
}

// Buffer returns the content provider backing the document.
func (d *Document) Buffer() Buffer {
	return d.buf
}

// Snapshot returns a snapshot tagged with the current version.
func (d *Document) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return &Snapshot{doc: d, version: d.version}
}

// RecordEdit records that the span [start, end) of the pre-edit content was
// replaced by newLength bytes. The caller is responsible for having applied
// the edit to the buffer.
func (d *Document) RecordEdit(start, end, newLength int) error {
	d.mu.Lock()
	change, err := d.recordLocked(start, end, newLength)
	cb := d.onEdit
	d.mu.Unlock()
	if err != nil {
		return err
	}

	if cb != nil {
		cb(d, change)
	}
	return nil
}

// Replace edits the document's own buffer and records the edit. It fails with
// ErrInvalidArgument when the buffer is not editable.
func (d *Document) Replace(start, end int, text string) error {
	d.mu.Lock()
	change, err := d.replaceLocked(start, end, text)
	cb := d.onEdit
	d.mu.Unlock()
	if err != nil {
		return err
	}

	if cb != nil {
		cb(d, change)
	}
	return nil
}

// ApplyChanges applies LSP-style content changes in order. Ranges are resolved
// against the content as it is when each change is applied, and clamped to it.
// A change without a range replaces the whole content.
func (d *Document) ApplyChanges(changes []protocol.TextDocumentContentChangeEvent) ([]ChangeRange, error) {
	d.mu.Lock()
	var applied []ChangeRange
	var err error
	for _, ev := range changes {
		start, end := ResolveChange(d.buf.String(), ev)

		var change ChangeRange
		change, err = d.replaceLocked(start, end, ev.Text)
		if err != nil {
			break
		}
		applied = append(applied, change)
	}
	cb := d.onEdit
	d.mu.Unlock()

	// Call outside the lock; listeners may read the document.
	if cb != nil {
		for _, change := range applied {
			cb(d, change)
		}
	}
	return applied, err
}

// ChangeRangeBetween composes the edits that took the document from version
// from to version to into one change range against the content at from.
func (d *Document) ChangeRangeBetween(from, to int) (ChangeRange, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if from < 1 || to > d.version || from > to {
		return ChangeRange{}, fmt.Errorf("%s: versions %d..%d outside 1..%d: %w", d.path, from, to, d.version, ErrRange)
	}
	if from == to {
		return Unchanged, nil
	}

	entries := d.edits[from-1 : to-1]
	changes := make([]ChangeRange, len(entries))
	for i, e := range entries {
		changes[i] = e.change
	}
	composed := Compose(changes...)

	// Everything outside [Start, End) is untouched, so the replacement spans
	// the final length minus the unaffected prefix and suffix.
	suffix := d.lengthAtLocked(from) - composed.End
	composed.NewLength = d.lengthAtLocked(to) - composed.Start - suffix
	return composed, nil
}

// lengthAtLocked returns the content length at version v (must hold lock).
func (d *Document) lengthAtLocked(v int) int {
	if v <= 1 {
		return d.initialLength
	}
	return d.edits[v-2].length
}

func (d *Document) recordLocked(start, end, newLength int) (ChangeRange, error) {
	if start < 0 || start > end || end > d.length || newLength < 0 {
		return ChangeRange{}, fmt.Errorf("%s: edit [%d,%d)+%d with length %d: %w",
			d.path, start, end, newLength, d.length, ErrInvalidArgument)
	}

	change := ChangeRange{Start: start, End: end, NewLength: newLength}
	d.length = d.length - change.OldLength() + newLength
	d.edits = append(d.edits, editEntry{length: d.length, change: change})
	d.version++
	return change, nil
}

func (d *Document) replaceLocked(start, end int, text string) (ChangeRange, error) {
	eb, ok := d.buf.(EditableBuffer)
	if !ok {
		return ChangeRange{}, fmt.Errorf("%s: buffer is not editable: %w", d.path, ErrInvalidArgument)
	}
	if start < 0 || start > end || end > d.length {
		return ChangeRange{}, fmt.Errorf("%s: replace [%d,%d) with length %d: %w",
			d.path, start, end, d.length, ErrInvalidArgument)
	}
	if err := eb.Replace(start, end, text); err != nil {
		return ChangeRange{}, fmt.Errorf("%s: %w", d.path, err)
	}
	return d.recordLocked(start, end, len(text))
}
