package render

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/chazu/arborhull/pkg/geom"
	"github.com/chazu/arborhull/pkg/pointset"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SnapshotSize is the edge length of saved snapshots.
const SnapshotSize = 6 * vg.Inch

// Layer is one tree in a snapshot: its points and, optionally, the
// outline of its planar hull.
type Layer struct {
	Label     string
	Points    pointset.Points
	Hull      *geom.Polygon
	Color     color.Color
	HullColor color.Color // defaults to Color
}

// Snapshot plots every layer in the xy plane.
func Snapshot(title, unit string, layers ...Layer) (*plot.Plot, error) {
	if len(layers) == 0 {
		return nil, errors.New("snapshot: no layers")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = fmt.Sprintf("X (%s)", unit)
	p.Y.Label.Text = fmt.Sprintf("Y (%s)", unit)

	for _, l := range layers {
		if len(l.Points) > 0 {
			pts := make(plotter.XYs, len(l.Points))
			for i, pt := range l.Points {
				pts[i] = plotter.XY{X: pt.X, Y: pt.Y}
			}
			scatter, err := plotter.NewScatter(pts)
			if err != nil {
				return nil, fmt.Errorf("snapshot %s: points: %w", l.Label, err)
			}
			scatter.GlyphStyle.Color = l.Color
			scatter.GlyphStyle.Radius = vg.Points(1.5)
			p.Add(scatter)
		}

		if l.Hull == nil || l.Hull.IsEmpty() {
			continue
		}
		outline := make(plotter.XYs, len(l.Hull.Vertices))
		for i, v := range l.Hull.Vertices {
			outline[i] = plotter.XY{X: v.X, Y: v.Y}
		}
		poly, err := plotter.NewPolygon(outline)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: hull: %w", l.Label, err)
		}
		poly.Color = nil
		poly.LineStyle.Color = l.HullColor
		if poly.LineStyle.Color == nil {
			poly.LineStyle.Color = l.Color
		}
		poly.LineStyle.Width = vg.Points(1.5)
		p.Add(poly)
		if l.Label != "" {
			p.Legend.Add(l.Label, poly)
		}
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// SavePNG plots layers and writes the image to path. The format follows
// the file extension.
func SavePNG(path, title, unit string, layers ...Layer) error {
	p, err := Snapshot(title, unit, layers...)
	if err != nil {
		return err
	}
	if err := p.Save(SnapshotSize, SnapshotSize, path); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
