package tree

import "fmt"

// ValidationSeverity indicates whether a validation finding blocks analysis
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks analysis
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	PathID   int                // which path has the problem (-1 if tree-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.PathID < 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] path %d: %s", e.Severity, e.PathID, e.Message)
}

// Validate runs the structural checks on t. An empty slice means the tree
// is valid. It never mutates the tree.
func Validate(t *Tree) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateNotEmpty(t)...)
	errs = append(errs, validateIDs(t)...)
	errs = append(errs, validateParents(t)...)
	errs = append(errs, validateAcyclic(t)...)
	errs = append(errs, validateCoordinates(t)...)
	return errs
}

// HasErrors reports whether any finding is blocking.
func HasErrors(findings []ValidationError) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

func validateNotEmpty(t *Tree) []ValidationError {
	var errs []ValidationError
	if t.IsEmpty() {
		errs = append(errs, ValidationError{
			PathID:   -1,
			Message:  "tree has no nodes",
			Severity: SeverityError,
		})
	}
	for _, p := range t.Paths {
		if len(p.Nodes) == 0 {
			errs = append(errs, ValidationError{
				PathID:   p.ID,
				Message:  "path has no nodes",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

func validateIDs(t *Tree) []ValidationError {
	var errs []ValidationError
	seen := make(map[int]bool, len(t.Paths))
	for _, p := range t.Paths {
		if seen[p.ID] {
			errs = append(errs, ValidationError{
				PathID:   p.ID,
				Message:  "duplicate path id",
				Severity: SeverityError,
			})
		}
		seen[p.ID] = true
	}
	return errs
}

// validateParents checks that every parent reference points at an existing
// path and at a node inside it.
func validateParents(t *Tree) []ValidationError {
	var errs []ValidationError
	for _, p := range t.Paths {
		if p.IsPrimary() {
			continue
		}
		parent := t.Get(p.Parent)
		if parent == nil {
			errs = append(errs, ValidationError{
				PathID:   p.ID,
				Message:  fmt.Sprintf("parent path %d does not exist", p.Parent),
				Severity: SeverityError,
			})
			continue
		}
		if p.ParentNode < 0 || p.ParentNode >= len(parent.Nodes) {
			errs = append(errs, ValidationError{
				PathID:   p.ID,
				Message:  fmt.Sprintf("attachment node %d is outside parent path %d (%d nodes)", p.ParentNode, p.Parent, len(parent.Nodes)),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateAcyclic checks parent links for cycles using DFS with 3-color
// marking. White (0) = unvisited, gray (1) = on the current chain, black
// (2) = known to reach a primary path.
func validateAcyclic(t *Tree) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[int]int)
	var errs []ValidationError

	var visit func(p *Path) bool // returns true if cycle found
	visit = func(p *Path) bool {
		switch color[p.ID] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				PathID:   p.ID,
				Message:  fmt.Sprintf("cycle detected: path %d is its own ancestor", p.ID),
				Severity: SeverityError,
			})
			return true
		}

		color[p.ID] = gray
		if !p.IsPrimary() {
			// Dangling parents are reported by validateParents.
			if parent := t.Get(p.Parent); parent != nil && visit(parent) {
				return true
			}
		}
		color[p.ID] = black
		return false
	}

	for _, p := range t.Paths {
		if color[p.ID] == white && visit(p) {
			// One cycle error is sufficient; stop early.
			break
		}
	}
	return errs
}

func validateCoordinates(t *Tree) []ValidationError {
	var errs []ValidationError
	for _, p := range t.Paths {
		for i, n := range p.Nodes {
			if !n.IsFinite() {
				errs = append(errs, ValidationError{
					PathID:   p.ID,
					Message:  fmt.Sprintf("node %d has non-finite coordinates %s", i, n.Point),
					Severity: SeverityError,
				})
			}
			if n.Radius < 0 {
				errs = append(errs, ValidationError{
					PathID:   p.ID,
					Message:  fmt.Sprintf("node %d has negative radius %g", i, n.Radius),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}
