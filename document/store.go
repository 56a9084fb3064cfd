// Package document tracks live edits to in-memory text buffers. A Store holds
// one versioned Document per absolute path; every edit is recorded as a
// ChangeRange so an incremental analysis engine can ask what changed between
// any two versions instead of re-scanning the whole text.
package document

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Store is a flat namespace of documents keyed by absolute path. Documents are
// only ever added, through Create, Attach or Load.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document

	onCreateCallbacks []func(doc *Document)
	onChangeCallbacks []func(doc *Document, change ChangeRange)
}

// NewStore creates a new empty document store.
func NewStore() *Store {
	return &Store{
		docs: make(map[string]*Document),
	}
}

// ValidatePath reports whether path can key a document: it must be non-empty
// and start with '/'.
func ValidatePath(path string) error {
	if path == "" || !strings.HasPrefix(path, "/") {
		return fmt.Errorf("path %q must be absolute: %w", path, ErrInvalidArgument)
	}
	return nil
}

// OnCreate registers a callback called after a document is added. Multiple
// callbacks can be registered; they fire in registration order.
func (s *Store) OnCreate(fn func(doc *Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCreateCallbacks = append(s.onCreateCallbacks, fn)
}

// OnChange registers a callback called after every recorded edit on any
// document in the store.
func (s *Store) OnChange(fn func(doc *Document, change ChangeRange)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChangeCallbacks = append(s.onChangeCallbacks, fn)
}

// Create adds a new document at version 1 backed by a TextBuffer holding
// content.
func (s *Store) Create(path, content string) (*Document, error) {
	return s.Attach(path, NewTextBuffer(content))
}

// Attach adds a new document reading from a buffer owned by the caller. Edits
// to such a buffer must be reported through Document.RecordEdit.
func (s *Store) Attach(path string, buf Buffer) (*Document, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	doc := New(path, buf)
	doc.onEdit = s.notifyChange

	s.mu.Lock()
	if _, ok := s.docs[path]; ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("create %s: %w", path, ErrAlreadyExists)
	}
	s.docs[path] = doc
	callbacks := make([]func(doc *Document), len(s.onCreateCallbacks))
	copy(callbacks, s.onCreateCallbacks)
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb(doc)
	}
	return doc, nil
}

// Load creates one document per entry of contents, in path order. All paths
// are validated before any document is created.
func (s *Store) Load(contents map[string]string) error {
	paths := make([]string, 0, len(contents))
	for path := range contents {
		if err := ValidatePath(path); err != nil {
			return err
		}
		if s.Has(path) {
			return fmt.Errorf("load %s: %w", path, ErrAlreadyExists)
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if _, err := s.Create(path, contents[path]); err != nil {
			return err
		}
	}
	return nil
}

// Contents returns the current content of every document. Edit history is
// not included.
func (s *Store) Contents() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.docs))
	for path, doc := range s.docs {
		out[path] = doc.Text()
	}
	return out
}

// Get returns the document for the given path.
func (s *Store) Get(path string) (*Document, error) {
	s.mu.RLock()
	doc, ok := s.docs[path]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return doc, nil
}

// Has reports whether a document exists at path.
func (s *Store) Has(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[path]
	return ok
}

// Len returns the number of documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Paths returns all document paths in lexical order.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.docs))
	for path := range s.docs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Edit records an edit reported by the editing surface for the document at
// path.
func (s *Store) Edit(path string, start, end, newLength int) error {
	doc, err := s.Get(path)
	if err != nil {
		return err
	}
	return doc.RecordEdit(start, end, newLength)
}

// Replace edits the content of the document at path and records the edit.
func (s *Store) Replace(path string, start, end int, text string) error {
	doc, err := s.Get(path)
	if err != nil {
		return err
	}
	return doc.Replace(start, end, text)
}

func (s *Store) notifyChange(doc *Document, change ChangeRange) {
	s.mu.RLock()
	callbacks := make([]func(doc *Document, change ChangeRange), len(s.onChangeCallbacks))
	copy(callbacks, s.onChangeCallbacks)
	s.mu.RUnlock()

	for _, cb := range callbacks {
		cb(doc, change)
	}
}
