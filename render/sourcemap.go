package render

// SourceMap resolves between preview nodes and source offsets. The preview
// page reports clicks as the {start, end} range of the nearest tagged
// node; the map validates those ranges and answers offset lookups for
// editor-side features.
type SourceMap struct {
	root   *Node
	docLen int
}

// Map builds the source map for a render pass.
func (res *Result) Map() *SourceMap {
	return &SourceMap{root: res.Root, docLen: res.Root.End}
}

// SyncTarget is a validated editor range for a preview click.
type SyncTarget struct {
	Start int
	End   int
}

// Resolve validates a clicked range against the current document. Ranges
// outside the document are a no-op and return false.
func (m *SourceMap) Resolve(start, end int) (SyncTarget, bool) {
	if start < 0 || start >= m.docLen || end < start {
		return SyncTarget{}, false
	}

	if end > m.docLen {
		end = m.docLen
	}

	return SyncTarget{Start: start, End: end}, true
}

// NodeAt returns the deepest tagged node covering offset, or nil when the
// offset falls outside every tagged node.
func (m *SourceMap) NodeAt(offset int) *Node {
	return deepestAt(m.root, offset)
}

func deepestAt(n *Node, offset int) *Node {
	var found *Node

	if n.Contains(offset) {
		found = n
	}

	for _, child := range n.Children {
		if deeper := deepestAt(child, offset); deeper != nil {
			found = deeper
		}
	}

	return found
}
