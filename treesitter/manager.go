package treesitter

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gossip-lsp/scripthost/document"
	"github.com/gossip-lsp/scripthost/host"
	"github.com/gossip-lsp/scripthost/protocol"
)

var (
	// ErrParse is returned when the parser produces no tree.
	ErrParse = errors.New("parse failed")

	// ErrUnstable is returned when a document is edited on every attempt to
	// read a consistent snapshot of it.
	ErrUnstable = errors.New("document kept changing while reading")
)

// maxSnapshotRetries bounds how often Analyze re-reads a document that keeps
// changing under it.
const maxSnapshotRetries = 3

// TreeUpdateFunc is called after a tree is parsed or re-parsed.
type TreeUpdateFunc func(path string, tree *Tree)

// Manager owns one parser and tree per analysed path. It never subscribes to
// the store; callers pull work through Sync or Analyze.
type Manager struct {
	registry *Registry
	host     host.Host

	mu    sync.Mutex
	files map[string]*fileState

	onTreeUpdate TreeUpdateFunc
}

type fileState struct {
	parser *tree_sitter.Parser
	tree   *Tree
}

// NewManager creates a manager that reads documents through h.
func NewManager(cfg Config, h host.Host) *Manager {
	return &Manager{
		registry: NewRegistry(cfg),
		host:     h,
		files:    make(map[string]*fileState),
	}
}

// OnTreeUpdate registers a callback that fires after every parse or re-parse.
func (m *Manager) OnTreeUpdate(fn TreeUpdateFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTreeUpdate = fn
}

// Registry returns the language registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// GetTree returns the last tree for path, or nil if it was never analysed.
func (m *Manager) GetTree(path string) *Tree {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.files[path]; ok {
		return st.tree
	}
	return nil
}

// Paths returns the analysed paths in sorted order.
func (m *Manager) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Sync analyses every host file that has a registered language. Per-file
// failures are joined; cancellation stops the walk.
func (m *Manager) Sync(ctx context.Context) error {
	_, err := m.SyncChanged(ctx)
	return err
}

// SyncChanged is Sync that also reports the paths whose tree was replaced,
// meaning the update callback already ran for them.
func (m *Manager) SyncChanged(ctx context.Context) ([]string, error) {
	var (
		changed []string
		errs    []error
	)
	for _, p := range m.host.Files() {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		if !m.registry.HasLanguage(p) {
			continue
		}
		before := m.GetTree(p)
		tree, err := m.Analyze(ctx, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if tree != before {
			changed = append(changed, p)
		}
	}
	return changed, errors.Join(errs...)
}

// Analyze brings the tree for path up to the document's current version.
// The first analysis parses the whole text. Later ones edit the previous tree
// with the composed change since the last analysed version and re-parse
// incrementally. An up-to-date path returns its existing tree without firing
// the update callback.
func (m *Manager) Analyze(ctx context.Context, path string) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lang, err := m.registry.LanguageFor(path)
	if err != nil {
		return nil, err
	}

	snap, src, err := m.readSnapshot(path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	st := m.files[path]
	if st != nil && st.tree.version == snap.Version() {
		tree := st.tree
		m.mu.Unlock()
		return tree, nil
	}

	var tree *Tree
	if st == nil {
		st, err = m.newFileState(lang)
		if err == nil {
			if tree, err = m.parseFull(st, path, snap.Version(), src); err != nil {
				st.close()
			} else {
				m.files[path] = st
			}
		}
	} else if tree, err = m.reparse(st, snap, src); err != nil {
		// The stored tree may already carry the edit; start over next time.
		st.close()
		delete(m.files, path)
	}
	cb := m.onTreeUpdate
	m.mu.Unlock()

	if err != nil {
		m.log(host.SeverityError, fmt.Sprintf("%s: %v", path, err))
		return nil, err
	}
	if cb != nil {
		cb(path, tree)
	}
	return tree, nil
}

// readSnapshot returns a snapshot and its text, retrying if the document is
// edited between taking the snapshot and reading the buffer.
func (m *Manager) readSnapshot(path string) (host.Snapshot, []byte, error) {
	for range maxSnapshotRetries {
		snap, err := m.host.Snapshot(path)
		if err != nil {
			return nil, nil, err
		}
		text, err := snap.Text(0, snap.Len())
		if err != nil {
			continue
		}
		if v, err := m.host.Version(path); err == nil && v == snap.Version() {
			return snap, []byte(text), nil
		}
	}
	return nil, nil, fmt.Errorf("%s: %w", path, ErrUnstable)
}

func (m *Manager) newFileState(lang *tree_sitter.Language) (*fileState, error) {
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(lang); err != nil {
		parser.Close()
		return nil, fmt.Errorf("setting language: %w", err)
	}
	return &fileState{parser: parser}, nil
}

func (m *Manager) parseFull(st *fileState, path string, version int, src []byte) (*Tree, error) {
	raw := st.parser.Parse(src, nil)
	if raw == nil {
		return nil, ErrParse
	}

	diff := &TreeDiff{
		IsFullReparse: true,
		AffectedKinds: make(map[string]bool),
		ChangedBytes:  []ByteRange{{Start: 0, End: len(src)}},
	}
	collectSubtreeKinds(raw.RootNode(), diff.AffectedKinds)

	tree := &Tree{raw: raw, src: src, path: path, version: version, Diff: diff}
	diff.ChangedRanges = []protocol.Range{tree.byteRange(0, len(src))}
	st.tree.Close()
	st.tree = tree

	if m.host.DebugEnabled() {
		m.log(host.SeverityDebug, fmt.Sprintf("parsed %s at version %d", path, version))
	}
	return tree, nil
}

func (m *Manager) reparse(st *fileState, snap host.Snapshot, src []byte) (*Tree, error) {
	old := st.tree
	change, err := snap.ChangeRangeSince(old.version)
	if err != nil {
		m.log(host.SeverityWarning, fmt.Sprintf("%s: no change range from version %d, parsing in full: %v", old.path, old.version, err))
		return m.parseFull(st, old.path, snap.Version(), src)
	}

	edit, ok := inputEdit(change, old.src, src)
	if !ok {
		m.log(host.SeverityWarning, fmt.Sprintf("%s: change %v does not fit the source, parsing in full", old.path, change))
		return m.parseFull(st, old.path, snap.Version(), src)
	}
	if !change.IsUnchanged() {
		old.raw.Edit(edit)
	}

	raw := st.parser.Parse(src, old.raw)
	if raw == nil {
		return nil, ErrParse
	}

	tree := &Tree{raw: raw, src: src, path: old.path, version: snap.Version()}
	tree.Diff = computeTreeDiff(old.raw, tree)
	tree.Diff.Change = change
	tree.Diff.oldSrc = old.src
	old.Close()
	st.tree = tree

	if m.host.DebugEnabled() {
		m.log(host.SeverityDebug, fmt.Sprintf("re-parsed %s from version %d to %d with change %v",
			old.path, old.version, tree.version, change))
	}
	return tree, nil
}

func (m *Manager) log(sev host.Severity, msg string) {
	m.host.Log(sev, msg)
}

// inputEdit converts a composed change range into a tree-sitter edit. Points
// for the start and old end come from the old source, the new end from the
// new source. It reports false when the range does not fit either text.
func inputEdit(c document.ChangeRange, oldSrc, newSrc []byte) (*tree_sitter.InputEdit, bool) {
	newEnd := c.NewEnd()
	if c.End > len(oldSrc) || newEnd > len(newSrc) {
		return nil, false
	}
	if len(oldSrc)-c.OldLength()+c.NewLength != len(newSrc) {
		return nil, false
	}
	return &tree_sitter.InputEdit{
		StartByte:      uint(c.Start),
		OldEndByte:     uint(c.End),
		NewEndByte:     uint(newEnd),
		StartPosition:  pointAt(oldSrc, c.Start),
		OldEndPosition: pointAt(oldSrc, c.End),
		NewEndPosition: pointAt(newSrc, newEnd),
	}, true
}

// pointAt returns the row and byte column of offset in src.
func pointAt(src []byte, offset int) tree_sitter.Point {
	var row, lineStart int
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			row++
			lineStart = i + 1
		}
	}
	return tree_sitter.Point{Row: uint(row), Column: uint(offset - lineStart)}
}

// computeTreeDiff builds a TreeDiff from the old (edited) tree and the new one.
func computeTreeDiff(oldRaw *tree_sitter.Tree, tree *Tree) *TreeDiff {
	tsRanges := oldRaw.ChangedRanges(tree.raw)

	diff := &TreeDiff{AffectedKinds: make(map[string]bool)}
	for _, r := range tsRanges {
		br := ByteRange{Start: int(r.StartByte), End: int(r.EndByte)}
		diff.ChangedBytes = append(diff.ChangedBytes, br)
		diff.ChangedRanges = append(diff.ChangedRanges, tree.byteRange(br.Start, br.End))
	}

	root := tree.raw.RootNode()
	if root == nil {
		return diff
	}

	seen := make(map[uintptr]bool)
	for _, r := range tsRanges {
		node := root.NamedDescendantForByteRange(r.StartByte, r.EndByte)
		if node == nil {
			continue
		}

		collectSubtreeKinds(node, diff.AffectedKinds)

		ancestor := findScopeAncestor(node)
		if id := ancestor.Id(); !seen[id] {
			seen[id] = true
			diff.AffectedNodes = append(diff.AffectedNodes, ancestor)
		}
	}

	return diff
}

// findScopeAncestor walks up to the highest named parent below the root.
func findScopeAncestor(node *tree_sitter.Node) *tree_sitter.Node {
	best := node
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Parent() == nil {
			break
		}
		if p.IsNamed() {
			best = p
		}
	}
	return best
}

func collectSubtreeKinds(node *tree_sitter.Node, kinds map[string]bool) {
	if node == nil {
		return
	}
	kinds[node.Kind()] = true
	for i := uint(0); i < node.ChildCount(); i++ {
		collectSubtreeKinds(node.Child(i), kinds)
	}
}

// Forget drops the parser and tree for path. The next Analyze parses it in
// full.
func (m *Manager) Forget(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.files[path]; ok {
		st.close()
		delete(m.files, path)
	}
}

func (st *fileState) close() {
	st.parser.Close()
	st.tree.Close()
}

// Close releases all parsers and trees.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for p, st := range m.files {
		st.close()
		delete(m.files, p)
	}
}
