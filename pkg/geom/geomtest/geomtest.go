// Package geomtest provides geometry engines for tests.
package geomtest

import (
	"sync"
	"time"

	"github.com/chazu/arborhull/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// CountingEngine wraps an engine and counts calls per method name. Delay,
// when set, is slept before every call.
type CountingEngine struct {
	Inner geom.Engine
	Delay time.Duration

	mu    sync.Mutex
	calls map[string]int
}

var _ geom.Engine = (*CountingEngine)(nil)

// NewCounting wraps inner.
func NewCounting(inner geom.Engine) *CountingEngine {
	return &CountingEngine{Inner: inner, calls: make(map[string]int)}
}

// Calls returns how often method has been invoked.
func (c *CountingEngine) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// Total returns the number of calls across all methods.
func (c *CountingEngine) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func (c *CountingEngine) hit(method string) {
	c.mu.Lock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[method]++
	c.mu.Unlock()
	if c.Delay > 0 {
		time.Sleep(c.Delay)
	}
}

func (c *CountingEngine) ConvexHull2D(points []v2.Vec) (*geom.Polygon, error) {
	c.hit("ConvexHull2D")
	return c.Inner.ConvexHull2D(points)
}

func (c *CountingEngine) ConvexHull3D(input *geom.Mesh) ([]*geom.Mesh, error) {
	c.hit("ConvexHull3D")
	return c.Inner.ConvexHull3D(input)
}

func (c *CountingEngine) Size(s geom.Shape) (float64, error) {
	c.hit("Size")
	return c.Inner.Size(s)
}

func (c *CountingEngine) BoundarySize(s geom.Shape) (float64, error) {
	c.hit("BoundarySize")
	return c.Inner.BoundarySize(s)
}

func (c *CountingEngine) Centroid(s geom.Shape) (v3.Vec, error) {
	c.hit("Centroid")
	return c.Inner.Centroid(s)
}

func (c *CountingEngine) Boxivity(s geom.Shape) (float64, error) {
	c.hit("Boxivity")
	return c.Inner.Boxivity(s)
}

func (c *CountingEngine) MainElongation(s geom.Shape) (float64, error) {
	c.hit("MainElongation")
	return c.Inner.MainElongation(s)
}

func (c *CountingEngine) Circularity(p *geom.Polygon) (float64, error) {
	c.hit("Circularity")
	return c.Inner.Circularity(p)
}

func (c *CountingEngine) Eccentricity(p *geom.Polygon) (float64, error) {
	c.hit("Eccentricity")
	return c.Inner.Eccentricity(p)
}

func (c *CountingEngine) Sphericity(m *geom.Mesh) (float64, error) {
	c.hit("Sphericity")
	return c.Inner.Sphericity(m)
}

func (c *CountingEngine) Compactness(m *geom.Mesh) (float64, error) {
	c.hit("Compactness")
	return c.Inner.Compactness(m)
}
