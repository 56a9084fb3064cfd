package document

import "fmt"

// Snapshot is a version-tagged view of a document handed to the analysis
// engine for one pass.
//
// Text queries always read the document's current buffer; the version tag only
// anchors change-range bookkeeping. An engine must derive what changed from
// ChangeRangeSince rather than from re-reading old text, since old text is not
// retained.
type Snapshot struct {
	doc     *Document
	version int
}

// Path returns the path of the snapshotted document.
func (s *Snapshot) Path() string {
	return s.doc.path
}

// Version returns the document version the snapshot was taken at.
func (s *Snapshot) Version() int {
	return s.version
}

// Len returns the current buffer length.
func (s *Snapshot) Len() int {
	s.doc.mu.RLock()
	defer s.doc.mu.RUnlock()
	return s.doc.buf.Len()
}

// Text returns the current buffer content in [start, end).
func (s *Snapshot) Text(start, end int) (string, error) {
	s.doc.mu.RLock()
	defer s.doc.mu.RUnlock()

	n := s.doc.buf.Len()
	if start < 0 || start > end || end > n {
		return "", fmt.Errorf("%s: text [%d,%d) of %d bytes: %w", s.doc.path, start, end, n, ErrRange)
	}
	return s.doc.buf.Slice(start, end), nil
}

// LineStarts returns the offset at which each line of the current buffer
// starts. The first entry is always 0.
func (s *Snapshot) LineStarts() []int {
	s.doc.mu.RLock()
	defer s.doc.mu.RUnlock()
	return LineStarts(s.doc.buf.String())
}

// ChangeRangeSince returns the composed change from base to the snapshot's
// version.
func (s *Snapshot) ChangeRangeSince(base int) (ChangeRange, error) {
	return s.doc.ChangeRangeBetween(base, s.version)
}
