package document

import "fmt"

// ChangeRange describes one edit: the half-open span [Start, End) replaced in
// the buffer as it existed immediately before the edit, and the length of the
// text that replaced it.
type ChangeRange struct {
	Start     int
	End       int
	NewLength int
}

// Unchanged is the change range reported when no edit occurred.
var Unchanged = ChangeRange{}

// NewChangeRange creates a change range, validating its bounds.
func NewChangeRange(start, end, newLength int) (ChangeRange, error) {
	if start < 0 || end < start || newLength < 0 {
		return ChangeRange{}, fmt.Errorf("change range [%d,%d)+%d: %w", start, end, newLength, ErrInvalidArgument)
	}
	return ChangeRange{Start: start, End: end, NewLength: newLength}, nil
}

// IsUnchanged reports whether the range describes no edit at all.
func (c ChangeRange) IsUnchanged() bool {
	return c.Start == c.End && c.NewLength == 0
}

// OldLength returns the length of the replaced span.
func (c ChangeRange) OldLength() int {
	return c.End - c.Start
}

// NewEnd returns the end offset of the replacement in the post-edit buffer.
func (c ChangeRange) NewEnd() int {
	return c.Start + c.NewLength
}

// Delta returns the change in buffer length caused by the edit.
func (c ChangeRange) Delta() int {
	return c.NewLength - c.OldLength()
}

func (c ChangeRange) String() string {
	if c.IsUnchanged() {
		return "unchanged"
	}
	return fmt.Sprintf("[%d,%d)->%d", c.Start, c.End, c.NewLength)
}

// Compose folds a sequence of consecutive edits into one equivalent edit
// expressed against the buffer preceding the first of them.
//
// Each step widens the running region to cover the next edit. The next edit is
// expressed in post-composite coordinates, so its bounds are shifted back by
// the composite's delta wherever they fall past the composite's new end.
func Compose(changes ...ChangeRange) ChangeRange {
	if len(changes) == 0 {
		return Unchanged
	}

	first := changes[0]
	oldStart := first.Start
	oldEnd := first.End
	newEnd := first.NewEnd()

	for _, next := range changes[1:] {
		nextNewEnd := next.NewEnd()

		// next.End lies in the composite's output; map it back to the input.
		// Inside the composite's output region it maps to oldEnd.
		mergedOldEnd := max(oldEnd, oldEnd+(next.End-newEnd))
		mergedNewEnd := max(nextNewEnd, nextNewEnd+(newEnd-next.End))

		oldStart = min(oldStart, next.Start)
		oldEnd = mergedOldEnd
		newEnd = mergedNewEnd
	}

	return ChangeRange{Start: oldStart, End: oldEnd, NewLength: newEnd - oldStart}
}

// Apply applies the change to text, replacing the span with replacement.
// It is used to verify compositions in tests and by the text buffer.
func (c ChangeRange) Apply(text, replacement string) (string, error) {
	if c.Start < 0 || c.End < c.Start || c.End > len(text) {
		return "", fmt.Errorf("apply %s to %d bytes: %w", c, len(text), ErrRange)
	}
	if len(replacement) != c.NewLength {
		return "", fmt.Errorf("apply %s: replacement has %d bytes: %w", c, len(replacement), ErrInvalidArgument)
	}
	return text[:c.Start] + replacement + text[c.End:], nil
}
