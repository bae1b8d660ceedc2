// Package interact translates pointer and wheel input into pin/drag/pan/zoom
// operations on the force simulation and the viewport transform.
//
// The controller is event-driven and polymorphic over input sources: a mouse,
// a terminal mouse protocol, or a test harness all feed the same PointerDown/
// PointerMove/PointerUp/Wheel/Hover methods with screen-space coordinates.
//
// Handlers and the tick loop share node and transform state on one
// cooperative thread, so no locking is involved. Ordering matters: a pin
// written by a drag-move handler is read by the next tick and is
// authoritative over any force-computed displacement for that node.
package interact

import (
	"fmt"
	"strconv"

	"github.com/spendwatch/paygraph/pkg/force"
	"github.com/spendwatch/paygraph/pkg/paygraph"
	"github.com/spendwatch/paygraph/pkg/viewport"
)

// Tooltip describes the hovered node for the render binding. Emitting and
// retracting tooltips is purely observational; no simulation state changes.
type Tooltip struct {
	ScreenX        float64       `json:"screen_x"`
	ScreenY        float64       `json:"screen_y"`
	NodeID         string        `json:"node_id"`
	Kind           paygraph.Kind `json:"kind"`
	FormattedTotal string        `json:"formatted_total"`
}

// Controller owns the drag/pan state machine for one scene.
type Controller struct {
	graph *paygraph.Graph
	sim   *force.Simulation
	view  *viewport.Transform

	dragID       string // node being dragged, empty when none
	panning      bool
	lastX, lastY float64

	tooltip *Tooltip
}

// New creates a controller over the given graph, simulation, and transform.
func New(g *paygraph.Graph, sim *force.Simulation, view *viewport.Transform) *Controller {
	return &Controller{graph: g, sim: sim, view: view}
}

// Dragging returns the ID of the node currently being dragged, or "".
func (c *Controller) Dragging() string { return c.dragID }

// Panning reports whether a background pan is active.
func (c *Controller) Panning() bool { return c.panning }

// Tooltip returns the active tooltip descriptor, or nil.
func (c *Controller) Tooltip() *Tooltip { return c.tooltip }

// PointerDown starts a drag if a node is under the cursor, otherwise a
// background pan. Coordinates are screen space.
func (c *Controller) PointerDown(x, y float64) {
	c.lastX, c.lastY = x, y

	if n := c.NodeAt(x, y); n != nil {
		// Pin at the current simulated position so the node doesn't jump
		// to the cursor on the first event.
		c.dragID = n.ID
		c.sim.Pin(n.ID, n.X, n.Y)
		return
	}
	c.panning = true
}

// PointerMove updates an active drag or pan. During a drag the node's pin is
// recomputed from the cursor's world position and the simulation is reheated
// so the rest of the layout keeps responding.
func (c *Controller) PointerMove(x, y float64) {
	switch {
	case c.dragID != "":
		w := c.view.ScreenToWorld(viewport.Point{X: x, Y: y})
		c.sim.Pin(c.dragID, w.X, w.Y)
		c.sim.Reheat(force.DragAlpha)
	case c.panning:
		c.view.PanBy(x-c.lastX, y-c.lastY)
	}
	c.lastX, c.lastY = x, y
}

// PointerUp ends the active drag or pan. A released node resumes free motion
// with a mild reheat so the layout relaxes around its new position.
func (c *Controller) PointerUp(x, y float64) {
	if c.dragID != "" {
		c.sim.Unpin(c.dragID)
		c.sim.Reheat(force.ReleaseAlpha)
		c.dragID = ""
	}
	c.panning = false
	c.lastX, c.lastY = x, y
}

// Wheel applies zoom-to-cursor at the given screen point.
func (c *Controller) Wheel(x, y, factor float64) {
	c.view.ZoomAt(viewport.Point{X: x, Y: y}, factor)
}

// Hover updates the tooltip for the node under the cursor, or retracts it
// when the cursor is over empty canvas.
func (c *Controller) Hover(x, y float64) {
	n := c.NodeAt(x, y)
	if n == nil {
		c.tooltip = nil
		return
	}
	c.tooltip = &Tooltip{
		ScreenX:        x,
		ScreenY:        y,
		NodeID:         n.ID,
		Kind:           n.Kind,
		FormattedTotal: FormatAmount(n.Total),
	}
}

// NodeAt hit-tests the screen point against node radii in world space.
// Nodes later in the slice are treated as topmost and win ties.
func (c *Controller) NodeAt(x, y float64) *paygraph.Node {
	w := c.view.ScreenToWorld(viewport.Point{X: x, Y: y})
	for i := len(c.graph.Nodes) - 1; i >= 0; i-- {
		n := c.graph.Nodes[i]
		r := c.graph.NodeRadius(n)
		dx, dy := w.X-n.X, w.Y-n.Y
		if dx*dx+dy*dy <= r*r {
			return n
		}
	}
	return nil
}

// FormatAmount renders a euro amount with thousands separators, e.g.
// "€1,234,567". Fractions are truncated; payment totals are whole euros.
func FormatAmount(v float64) string {
	if v < 0 {
		v = 0
	}
	s := strconv.FormatInt(int64(v), 10)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return fmt.Sprintf("€%s", out)
}
