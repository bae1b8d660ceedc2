package interact

import (
	"testing"

	"github.com/spendwatch/paygraph/pkg/force"
	"github.com/spendwatch/paygraph/pkg/paygraph"
	"github.com/spendwatch/paygraph/pkg/viewport"
)

// fixture returns a controller over a two-node graph with known positions:
// org A at world (100, 100), contractor B at world (300, 300).
func fixture(t *testing.T) (*Controller, *paygraph.Graph, *force.Simulation, *viewport.Transform) {
	t.Helper()
	g := paygraph.Build(
		[]paygraph.PayloadNode{
			{ID: "A", Type: paygraph.KindOrg, Total: 100000},
			{ID: "B", Type: paygraph.KindContractor, Total: 5000},
		},
		[]paygraph.PayloadEdge{
			{Source: "A", Target: "B", Amount: 50000, Contracts: 3},
		},
	)
	sim := force.New(g, force.DefaultConfig())
	sim.Seed(force.Bounds{Width: 800, Height: 600})

	a, _ := g.Node("A")
	b, _ := g.Node("B")
	a.X, a.Y = 100, 100
	b.X, b.Y = 300, 300

	view := viewport.New()
	return New(g, sim, view), g, sim, view
}

func TestDragPinsAtCurrentPositionThenFollowsCursor(t *testing.T) {
	c, g, sim, _ := fixture(t)

	// Identity transform: screen == world.
	c.PointerDown(100, 100)
	if c.Dragging() != "A" {
		t.Fatalf("dragging = %q, want A", c.Dragging())
	}

	a, _ := g.Node("A")
	if !a.Pinned || a.FX != 100 || a.FY != 100 {
		t.Fatalf("pin = (%v, %v, pinned=%v), want current position (100, 100)", a.FX, a.FY, a.Pinned)
	}

	c.PointerMove(150, 120)
	if a.FX != 150 || a.FY != 120 {
		t.Errorf("pin after move = (%v, %v), want cursor world position (150, 120)", a.FX, a.FY)
	}
	if sim.Alpha() < force.DragAlpha {
		t.Errorf("alpha = %v, want reheated to at least %v", sim.Alpha(), force.DragAlpha)
	}

	// The pin is authoritative over the next tick.
	sim.Tick()
	if a.X != 150 || a.Y != 120 {
		t.Errorf("post-tick position = (%v, %v), want pinned (150, 120)", a.X, a.Y)
	}

	c.PointerUp(150, 120)
	if c.Dragging() != "" {
		t.Error("drag did not end on pointer up")
	}
	if a.Pinned {
		t.Error("node still pinned after release")
	}
}

func TestDragUsesWorldCoordinatesUnderTransform(t *testing.T) {
	c, g, _, view := fixture(t)

	view.ZoomAt(viewport.Point{X: 0, Y: 0}, 2) // k=2, pan stays (0,0)
	a, _ := g.Node("A")

	// A sits at world (100,100) which is screen (200,200) at k=2.
	c.PointerDown(200, 200)
	if c.Dragging() != "A" {
		t.Fatalf("dragging = %q, want A (hit test must be in world space)", c.Dragging())
	}

	c.PointerMove(400, 400)
	if a.FX != 200 || a.FY != 200 {
		t.Errorf("pin = (%v, %v), want screenToWorld(400,400) = (200, 200)", a.FX, a.FY)
	}
}

func TestBackgroundPanUpdatesTransformOnly(t *testing.T) {
	c, g, _, view := fixture(t)

	c.PointerDown(500, 50) // empty canvas
	if !c.Panning() {
		t.Fatal("expected background pan to start")
	}

	c.PointerMove(520, 45)
	c.PointerUp(520, 45)

	v := view.View()
	if v.PanX != 20 || v.PanY != -5 {
		t.Errorf("pan = (%v, %v), want (20, -5)", v.PanX, v.PanY)
	}
	for _, n := range g.Nodes {
		if n.Pinned {
			t.Errorf("pan pinned node %s", n.ID)
		}
	}
}

func TestWheelZoomsAtCursor(t *testing.T) {
	c, _, _, view := fixture(t)

	cursor := viewport.Point{X: 300, Y: 300}
	before := view.ScreenToWorld(cursor)
	c.Wheel(cursor.X, cursor.Y, 1.5)
	after := view.ScreenToWorld(cursor)

	if dx, dy := after.X-before.X, after.Y-before.Y; dx*dx+dy*dy > 1e-18 {
		t.Errorf("cursor world point moved by (%v, %v) during wheel zoom", dx, dy)
	}
	if view.Scale() != 1.5 {
		t.Errorf("scale = %v, want 1.5", view.Scale())
	}
}

func TestHoverEmitsAndRetractsTooltip(t *testing.T) {
	c, _, _, _ := fixture(t)

	c.Hover(100, 100)
	tip := c.Tooltip()
	if tip == nil {
		t.Fatal("expected tooltip over node A")
	}
	if tip.NodeID != "A" || tip.Kind != paygraph.KindOrg {
		t.Errorf("tooltip = %+v, want node A / org", tip)
	}
	if tip.FormattedTotal != "€100,000" {
		t.Errorf("formatted total = %q, want €100,000", tip.FormattedTotal)
	}

	c.Hover(700, 10)
	if c.Tooltip() != nil {
		t.Error("tooltip not retracted over empty canvas")
	}
}

func TestNodeAtPrefersTopmost(t *testing.T) {
	c, g, _, _ := fixture(t)

	// Stack B exactly on A; B is later in the slice and should win.
	b, _ := g.Node("B")
	b.X, b.Y = 100, 100

	if n := c.NodeAt(100, 100); n == nil || n.ID != "B" {
		t.Errorf("NodeAt = %v, want topmost node B", n)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "€0"},
		{999, "€999"},
		{1000, "€1,000"},
		{1234567, "€1,234,567"},
		{50000.75, "€50,000"},
		{-5, "€0"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
