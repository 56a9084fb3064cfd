package document

import "errors"

// Sentinel errors for document operations. They are returned wrapped with
// context; use errors.Is to test for them.
var (
	// ErrNotFound indicates that no document is managed under the given path.
	ErrNotFound = errors.New("document not found")

	// ErrAlreadyExists indicates that a document with the path already exists.
	ErrAlreadyExists = errors.New("document already exists")

	// ErrInvalidArgument indicates a malformed path or malformed edit offsets.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRange indicates that a version or offset is outside the valid bounds.
	ErrRange = errors.New("out of range")
)
