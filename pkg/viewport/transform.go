// Package viewport maintains the pan/zoom state of the graph view and the
// screen↔world coordinate mapping that keeps rendering and interaction
// consistent.
//
// The defining correctness property is zoom-to-cursor: zooming at a screen
// point leaves the world point under that cursor invariant, within floating
// tolerance, for any zoom factor. The transform is independent of the graph
// and persists across graph replacement unless explicitly reset.
package viewport

import "math"

// Scale bounds applied to every zoom operation.
const (
	DefaultMinScale = 0.2
	DefaultMaxScale = 3.0
)

// Point is a 2D coordinate in either world or screen space.
type Point struct {
	X float64
	Y float64
}

// View is an immutable copy of the transform state, suitable for embedding
// in render snapshots.
type View struct {
	PanX float64 `json:"pan_x"`
	PanY float64 `json:"pan_y"`
	K    float64 `json:"k"`
}

// Transform holds mutable pan/zoom state.
// worldToScreen(p) = p*k + pan; screenToWorld(p) = (p - pan)/k.
// Not safe for concurrent use; the view runs on one cooperative thread.
type Transform struct {
	panX, panY float64
	k          float64
	minK, maxK float64
}

// New creates an identity transform with the default scale bounds.
func New() *Transform {
	return NewWithLimits(DefaultMinScale, DefaultMaxScale)
}

// NewWithLimits creates an identity transform with custom scale bounds.
// Degenerate bounds (maxK <= minK or minK <= 0) fall back to the defaults.
func NewWithLimits(minK, maxK float64) *Transform {
	if minK <= 0 || maxK <= minK {
		minK, maxK = DefaultMinScale, DefaultMaxScale
	}
	return &Transform{k: 1, minK: minK, maxK: maxK}
}

// View returns a copy of the current state.
func (t *Transform) View() View {
	return View{PanX: t.panX, PanY: t.panY, K: t.k}
}

// Scale returns the current zoom factor k.
func (t *Transform) Scale() float64 { return t.k }

// Pan returns the current pan offset in screen space.
func (t *Transform) Pan() Point { return Point{X: t.panX, Y: t.panY} }

// WorldToScreen maps a world coordinate to screen space.
func (t *Transform) WorldToScreen(p Point) Point {
	return Point{X: p.X*t.k + t.panX, Y: p.Y*t.k + t.panY}
}

// ScreenToWorld maps a screen coordinate to world space.
func (t *Transform) ScreenToWorld(p Point) Point {
	return Point{X: (p.X - t.panX) / t.k, Y: (p.Y - t.panY) / t.k}
}

// ZoomAt applies a multiplicative zoom factor anchored at the screen-space
// cursor point c. The new scale is clamped to the configured bounds and the
// pan is adjusted so the world point under the cursor stays fixed:
//
//	k' = clamp(kMin, kMax, k*factor)
//	pan' = c - (c - pan) * (k'/k)
func (t *Transform) ZoomAt(c Point, factor float64) {
	k := math.Min(t.maxK, math.Max(t.minK, t.k*factor))
	ratio := k / t.k
	t.panX = c.X - (c.X-t.panX)*ratio
	t.panY = c.Y - (c.Y-t.panY)*ratio
	t.k = k
}

// PanBy shifts the view by a screen-space pointer delta. Scale is unchanged.
func (t *Transform) PanBy(dx, dy float64) {
	t.panX += dx
	t.panY += dy
}

// Reset restores the identity transform (pan 0,0 and scale 1).
func (t *Transform) Reset() {
	t.panX, t.panY, t.k = 0, 0, 1
}
