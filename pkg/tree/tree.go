package tree

import (
	"fmt"
	"slices"

	"github.com/chazu/arborhull/pkg/pointset"
)

// DefaultUnit is the spatial unit assumed for SWC coordinates.
const DefaultUnit = "um"

// Path is an unbranched run of nodes. A child path attaches to its parent
// at ParentNode, an index into the parent's Nodes; the attachment node is
// not repeated in the child.
type Path struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Nodes      []Node `json:"nodes"`
	Parent     int    `json:"parent"`      // parent path ID, -1 for primary paths
	ParentNode int    `json:"parent_node"` // index into the parent's nodes, -1 for primary paths
}

// Type is the compartment type of the path's first node.
func (p *Path) Type() SWCType {
	if len(p.Nodes) == 0 {
		return TypeUndefined
	}
	return p.Nodes[0].Type
}

// IsPrimary reports whether p has no parent path.
func (p *Path) IsPrimary() bool { return p.Parent < 0 }

// Tree is a labelled collection of paths. Paths are kept in insertion order.
type Tree struct {
	Label string  `json:"label"`
	Unit  string  `json:"unit"`
	Paths []*Path `json:"paths"`

	index map[int]*Path
}

// New creates an empty tree.
func New(label string) *Tree {
	return &Tree{
		Label: label,
		Unit:  DefaultUnit,
		index: make(map[int]*Path),
	}
}

// AddPath appends a path. It does not check for duplicate IDs.
func (t *Tree) AddPath(p *Path) {
	if t.index == nil {
		t.index = make(map[int]*Path)
	}
	t.Paths = append(t.Paths, p)
	t.index[p.ID] = p
}

// Get returns the path with the given ID, or nil.
func (t *Tree) Get(id int) *Path {
	if len(t.index) != len(t.Paths) {
		t.reindex()
	}
	return t.index[id]
}

// MustGet returns the path with the given ID, or panics.
func (t *Tree) MustGet(id int) *Path {
	p := t.Get(id)
	if p == nil {
		panic(fmt.Sprintf("tree: no path with id %d", id))
	}
	return p
}

func (t *Tree) reindex() {
	t.index = make(map[int]*Path, len(t.Paths))
	for _, p := range t.Paths {
		t.index[p.ID] = p
	}
}

// Children returns the paths attached to p.
func (t *Tree) Children(p *Path) []*Path {
	var out []*Path
	for _, c := range t.Paths {
		if c.Parent == p.ID && c != p {
			out = append(out, c)
		}
	}
	return out
}

// IsEmpty reports whether the tree holds no nodes.
func (t *Tree) IsEmpty() bool { return t.NodeCount() == 0 }

// NodeCount returns the number of nodes across all paths.
func (t *Tree) NodeCount() int {
	n := 0
	for _, p := range t.Paths {
		n += len(p.Nodes)
	}
	return n
}

// Nodes returns every node position, path by path.
func (t *Tree) Nodes() pointset.Points {
	out := make(pointset.Points, 0, t.NodeCount())
	for _, p := range t.Paths {
		out = append(out, pointset.Collect(p.Nodes)...)
	}
	return out
}

// Is3D reports whether any node's z differs from that of the first node.
// An empty tree is not 3D.
func (t *Tree) Is3D() bool {
	first := true
	var zRef float64
	for _, p := range t.Paths {
		for _, n := range p.Nodes {
			if first {
				zRef, first = n.Z, false
				continue
			}
			if n.Z != zRef {
				return true
			}
		}
	}
	return false
}

// BoundingBox encloses every node.
func (t *Tree) BoundingBox() pointset.BoundingBox {
	return t.Nodes().BoundingBox()
}

// attachments counts, per path, how many child paths attach at each node
// index.
func (t *Tree) attachments() map[int]map[int]int {
	out := make(map[int]map[int]int)
	for _, c := range t.Paths {
		if c.IsPrimary() || t.Get(c.Parent) == nil {
			continue
		}
		if out[c.Parent] == nil {
			out[c.Parent] = make(map[int]int)
		}
		out[c.Parent][c.ParentNode]++
	}
	return out
}

// Tips returns the terminal nodes: path ends with nothing attached.
func (t *Tree) Tips() pointset.Points {
	att := t.attachments()
	var out pointset.Points
	for _, p := range t.Paths {
		last := len(p.Nodes) - 1
		if last < 0 || att[p.ID][last] > 0 {
			continue
		}
		out = append(out, p.Nodes[last].Point)
	}
	return out
}

// BranchPoints returns nodes with two or more children, counting both the
// next node along the path and the first nodes of attached paths.
func (t *Tree) BranchPoints() pointset.Points {
	att := t.attachments()
	var out pointset.Points
	for _, p := range t.Paths {
		idx := make([]int, 0, len(att[p.ID]))
		for i := range att[p.ID] {
			idx = append(idx, i)
		}
		slices.Sort(idx)
		for _, i := range idx {
			if i < 0 || i >= len(p.Nodes) {
				continue
			}
			children := att[p.ID][i]
			if i < len(p.Nodes)-1 {
				children++
			}
			if children >= 2 {
				out = append(out, p.Nodes[i].Point)
			}
		}
	}
	return out
}

// HullPoints returns the point cloud selected by kind.
func (t *Tree) HullPoints(kind PointKind) pointset.Points {
	switch kind {
	case Tips:
		return t.Tips()
	case BranchPoints:
		return t.BranchPoints()
	default:
		return t.Nodes()
	}
}

// Types returns the distinct compartment types present, in ascending order.
func (t *Tree) Types() []SWCType {
	var out []SWCType
	for _, p := range t.Paths {
		for _, n := range p.Nodes {
			if !slices.Contains(out, n.Type) {
				out = append(out, n.Type)
			}
		}
	}
	slices.Sort(out)
	return out
}

// SubTree returns a tree holding only paths whose type is in types. Paths
// whose parent is dropped become primary paths.
func (t *Tree) SubTree(types ...SWCType) *Tree {
	sub := New(t.Label)
	sub.Unit = t.Unit
	for _, p := range t.Paths {
		if !slices.Contains(types, p.Type()) {
			continue
		}
		cp := *p
		cp.Nodes = slices.Clone(p.Nodes)
		if parent := t.Get(p.Parent); parent == nil || !slices.Contains(types, parent.Type()) {
			cp.Parent, cp.ParentNode = -1, -1
		}
		sub.AddPath(&cp)
	}
	return sub
}

// DisplayLabel is the label used in reports, "Tree" when unset.
func (t *Tree) DisplayLabel() string {
	if t.Label == "" {
		return "Tree"
	}
	return t.Label
}

// SplitCompartments separates axonal from dendritic (basal and apical)
// paths. ok is false unless both compartments are present, in which case
// callers should analyse the whole tree.
func (t *Tree) SplitCompartments() (axon, dendrites *Tree, ok bool) {
	if len(t.Types()) < 2 {
		return nil, nil, false
	}
	axon = t.SubTree(TypeAxon)
	dendrites = t.SubTree(TypeDendrite, TypeApicalDendrite)
	if axon.IsEmpty() || dendrites.IsEmpty() {
		return nil, nil, false
	}
	axon.Label = t.DisplayLabel() + " Axon"
	dendrites.Label = t.DisplayLabel() + " Dendrites"
	return axon, dendrites, true
}
