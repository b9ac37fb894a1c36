package tree

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/chazu/arborhull/pkg/pointset"
)

// swcRecord is one data line of an SWC file: id type x y z radius parent.
type swcRecord struct {
	id, parent int
	node       Node
	line       int
}

// ReadSWC parses an SWC reconstruction. Unbranched runs of same-type
// nodes become paths; a path ends at every fork and every compartment
// change.
func ReadSWC(r io.Reader, label string) (*Tree, error) {
	recs := make(map[int]*swcRecord)
	var order []int

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := parseSWCLine(line)
		if err != nil {
			return nil, fmt.Errorf("swc line %d: %w", lineNo, err)
		}
		rec.line = lineNo
		if _, dup := recs[rec.id]; dup {
			return nil, fmt.Errorf("swc line %d: duplicate node id %d", lineNo, rec.id)
		}
		recs[rec.id] = rec
		order = append(order, rec.id)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read swc: %w", err)
	}

	children := make(map[int][]int)
	var roots []int
	for _, id := range order {
		rec := recs[id]
		if rec.parent < 0 {
			roots = append(roots, id)
			continue
		}
		if _, ok := recs[rec.parent]; !ok {
			return nil, fmt.Errorf("swc line %d: node %d references unknown parent %d", rec.line, id, rec.parent)
		}
		children[rec.parent] = append(children[rec.parent], id)
	}

	t := New(label)
	type start struct{ id, parent, parentNode int }
	var stack []start
	for _, id := range slices.Backward(roots) {
		stack = append(stack, start{id: id, parent: -1, parentNode: -1})
	}

	visited := 0
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		p := &Path{ID: len(t.Paths), Parent: s.parent, ParentNode: s.parentNode}
		p.Name = fmt.Sprintf("Path (%d)", p.ID)
		id := s.id
		for {
			rec := recs[id]
			p.Nodes = append(p.Nodes, rec.node)
			visited++
			kids := children[id]
			if len(kids) == 1 && recs[kids[0]].node.Type == rec.node.Type {
				id = kids[0]
				continue
			}
			for _, k := range slices.Backward(kids) {
				stack = append(stack, start{id: k, parent: p.ID, parentNode: len(p.Nodes) - 1})
			}
			break
		}
		t.AddPath(p)
	}

	if visited != len(recs) {
		return nil, fmt.Errorf("swc: %d nodes are not reachable from a root (cycle in parent links)", len(recs)-visited)
	}
	return t, nil
}

func parseSWCLine(line string) (*swcRecord, error) {
	f := strings.Fields(line)
	if len(f) < 7 {
		return nil, fmt.Errorf("expected 7 fields, got %d", len(f))
	}
	ints := [3]int{}
	for i, idx := range [...]int{0, 1, 6} {
		v, err := strconv.ParseFloat(f[idx], 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", idx+1, err)
		}
		ints[i] = int(v)
	}
	var vals [4]float64
	for i := range vals {
		v, err := strconv.ParseFloat(f[2+i], 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i+3, err)
		}
		vals[i] = v
	}
	return &swcRecord{
		id:     ints[0],
		parent: ints[2],
		node: Node{
			Point:  pointset.Point{X: vals[0], Y: vals[1], Z: vals[2]},
			Radius: vals[3],
			Type:   SWCType(ints[1]),
		},
	}, nil
}

// LoadSWC reads an SWC file, labelling the tree with the file's base name.
func LoadSWC(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open swc: %w", err)
	}
	defer f.Close()

	label := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	t, err := ReadSWC(f, label)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ListFromDir loads every .swc file in dir, sorted by file name.
func ListFromDir(dir string) ([]*Tree, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list reconstructions: %w", err)
	}
	var trees []*Tree
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".swc") {
			continue
		}
		t, err := LoadSWC(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)
	}
	return trees, nil
}
