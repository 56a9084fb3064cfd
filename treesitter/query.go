package treesitter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gossip-lsp/scripthost/document"
	"github.com/gossip-lsp/scripthost/protocol"
)

// Capture represents a single tree-sitter query capture.
type Capture struct {
	Name string
	Node *tree_sitter.Node
	Text string
}

// NodeAt returns the most specific (deepest) node at the given position.
func (t *Tree) NodeAt(pos protocol.Position) *tree_sitter.Node {
	if t == nil || t.raw == nil {
		return nil
	}
	off := uint(document.OffsetAt(string(t.src), pos))
	return t.raw.RootNode().DescendantForByteRange(off, off)
}

// NamedNodeAt returns the most specific named node at the given position.
func (t *Tree) NamedNodeAt(pos protocol.Position) *tree_sitter.Node {
	if t == nil || t.raw == nil {
		return nil
	}
	off := uint(document.OffsetAt(string(t.src), pos))
	return t.raw.RootNode().NamedDescendantForByteRange(off, off)
}

// NodeText returns the text content of a node using the stored source.
func (t *Tree) NodeText(node *tree_sitter.Node) string {
	if t == nil || node == nil || t.src == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || int(end) > len(t.src) {
		return ""
	}
	return string(t.src[start:end])
}

// NodeRange converts a node's byte span to a UTF-16 range over the tree's
// source.
func (t *Tree) NodeRange(node *tree_sitter.Node) protocol.Range {
	if t == nil || node == nil {
		return protocol.Range{}
	}
	return t.byteRange(int(node.StartByte()), int(node.EndByte()))
}

func (t *Tree) byteRange(start, end int) protocol.Range {
	text := string(t.src)
	return protocol.Range{
		Start: document.PositionAt(text, start),
		End:   document.PositionAt(text, end),
	}
}

// QueryCaptures runs a tree-sitter query pattern against the tree and returns
// all captures.
func (t *Tree) QueryCaptures(lang *tree_sitter.Language, pattern string) ([]Capture, error) {
	if t == nil || t.raw == nil {
		return nil, nil
	}
	return t.QueryCapturesInBytes(lang, pattern, []ByteRange{{Start: 0, End: len(t.src)}})
}

// QueryCapturesInBytes runs a tree-sitter query pattern restricted to the
// given byte ranges. Each range is queried independently and the results are
// concatenated; a node spanning two ranges is reported once per range. Pass
// tree.Diff.ChangedBytes to only scan the structurally changed regions.
func (t *Tree) QueryCapturesInBytes(lang *tree_sitter.Language, pattern string, ranges []ByteRange) ([]Capture, error) {
	if t == nil || t.raw == nil || len(ranges) == 0 {
		return nil, nil
	}

	query, qerr := tree_sitter.NewQuery(lang, pattern)
	if qerr != nil {
		return nil, qerr
	}
	defer query.Close()

	captureNames := query.CaptureNames()
	var captures []Capture

	for _, r := range ranges {
		cursor := tree_sitter.NewQueryCursor()
		cursor.SetByteRange(uint(r.Start), uint(r.End))
		matches := cursor.Matches(query, t.raw.RootNode(), t.src)
		for {
			match := matches.Next()
			if match == nil {
				break
			}
			for _, cap := range match.Captures {
				name := ""
				if int(cap.Index) < len(captureNames) {
					name = captureNames[cap.Index]
				}
				node := cap.Node
				captures = append(captures, Capture{
					Name: name,
					Node: &node,
					Text: t.NodeText(&node),
				})
			}
		}
		cursor.Close()
	}

	return captures, nil
}

// ErrorsInBytes returns all ERROR nodes within the given byte ranges.
func (t *Tree) ErrorsInBytes(lang *tree_sitter.Language, ranges []ByteRange) ([]Capture, error) {
	return t.QueryCapturesInBytes(lang, "(ERROR) @error", ranges)
}
