package tree

import "github.com/glif-dev/glif/internal/design"

// IndexEntry is one row of the flattened bounds index: everything the
// comment matcher needs about a node without holding the tree itself.
type IndexEntry struct {
	ID     string          `json:"id"`
	Name   string          `json:"name,omitempty"`
	Type   design.NodeType `json:"type"`
	Bounds *design.Bounds  `json:"bounds,omitempty"`
	Path   string          `json:"path"`
	Parent int             `json:"-"` // index into Entries; -1 for the root
	Depth  int             `json:"-"`
}

// BoundsIndex is an arena-style flattened view of an enhanced tree:
// entries in pre-order with parent references by index, plus an id lookup.
type BoundsIndex struct {
	Entries []IndexEntry
	byID    map[string]int
}

// Flatten walks the enhanced tree depth-first, pre-order, building the
// bounds index. Compressed representatives are indexed once, like any
// other node.
func Flatten(root *Node) *BoundsIndex {
	index := &BoundsIndex{byID: make(map[string]int)}
	if root != nil {
		index.add(root, -1, 0, "")
	}
	return index
}

func (ix *BoundsIndex) add(node *Node, parent, depth int, parentPath string) {
	path := node.Name
	if path == "" {
		path = string(node.Type)
	}
	if parentPath != "" {
		path = parentPath + "/" + path
	}

	position := len(ix.Entries)
	ix.Entries = append(ix.Entries, IndexEntry{
		ID:     node.ID,
		Name:   node.Name,
		Type:   node.Type,
		Bounds: node.Bounds,
		Path:   path,
		Parent: parent,
		Depth:  depth,
	})
	if _, taken := ix.byID[node.ID]; !taken {
		ix.byID[node.ID] = position
	}

	for _, child := range node.Children {
		ix.add(child, position, depth+1, path)
	}
}

// Lookup returns the entry for a node id, if indexed.
func (ix *BoundsIndex) Lookup(id string) (IndexEntry, bool) {
	position, ok := ix.byID[id]
	if !ok {
		return IndexEntry{}, false
	}
	return ix.Entries[position], true
}

// Len reports the number of indexed nodes.
func (ix *BoundsIndex) Len() int {
	return len(ix.Entries)
}
