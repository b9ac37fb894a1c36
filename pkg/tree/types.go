// Package tree models traced neuronal reconstructions: a set of paths of
// nodes joined at branch points, typically loaded from SWC files.
package tree

import (
	"fmt"
	"strings"

	"github.com/chazu/arborhull/pkg/pointset"
)

// SWCType is the compartment code of a traced node.
type SWCType int

const (
	TypeUndefined SWCType = iota
	TypeSoma
	TypeAxon
	TypeDendrite
	TypeApicalDendrite
	TypeFork
	TypeEnd
	TypeCustom
)

var swcTypeNames = map[SWCType]string{
	TypeUndefined:      "undefined",
	TypeSoma:           "soma",
	TypeAxon:           "axon",
	TypeDendrite:       "dendrite",
	TypeApicalDendrite: "apical dendrite",
	TypeFork:           "fork point",
	TypeEnd:            "end point",
	TypeCustom:         "custom",
}

func (t SWCType) String() string {
	if s, ok := swcTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("SWCType(%d)", int(t))
}

// ParseSWCType accepts a compartment name ("axon", "apical-dendrite") or its
// numeric code.
func ParseSWCType(s string) (SWCType, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", " ")
	key = strings.ReplaceAll(key, "_", " ")
	for t, name := range swcTypeNames {
		if name == key {
			return t, nil
		}
	}
	var code int
	if _, err := fmt.Sscanf(key, "%d", &code); err == nil && code >= 0 {
		return SWCType(code), nil
	}
	return TypeUndefined, fmt.Errorf("unknown compartment type %q", s)
}

// Node is a single traced point.
type Node struct {
	pointset.Point
	Radius float64
	Type   SWCType
}

// Position implements pointset.Positioner.
func (n Node) Position() pointset.Point { return n.Point }

// PointKind selects which nodes of a tree feed a hull.
type PointKind int

const (
	AllPoints PointKind = iota
	Tips
	BranchPoints
)

func (k PointKind) String() string {
	switch k {
	case AllPoints:
		return "all"
	case Tips:
		return "tips"
	case BranchPoints:
		return "branch points"
	default:
		return fmt.Sprintf("PointKind(%d)", int(k))
	}
}

// ParsePointKind maps the accepted point selections, and their synonyms,
// to a PointKind.
func ParsePointKind(s string) (PointKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "all points", "nodes":
		return AllPoints, nil
	case "tips", "endings", "end points", "end-points", "terminals":
		return Tips, nil
	case "bps", "forks", "junctions", "fork points", "junction points", "branch points":
		return BranchPoints, nil
	}
	return AllPoints, fmt.Errorf("unknown point selection %q", s)
}
