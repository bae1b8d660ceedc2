// Package scene composes the payment-graph data model, force simulation,
// viewport transform, and interaction controller into one renderable unit.
//
// A Scene exposes command/query separation to render targets: Frame advances
// the simulation one tick, and Snapshot returns a read-only copy of node
// positions, edge endpoint pairs, the current transform, and any active
// tooltip. The render target owns how to paint; the scene never draws.
//
// Frame is a plain method so the host decides the schedule: a TUI drives it
// from per-frame messages, an exporter calls it in a loop until settled, and
// tests call it synchronously a fixed number of times. When Frame reports
// false the host must stop scheduling frames until an interaction or a graph
// replacement reheats the simulation; continuing to schedule is a leak.
package scene

import (
	"github.com/charmbracelet/log"

	"github.com/spendwatch/paygraph/pkg/force"
	"github.com/spendwatch/paygraph/pkg/interact"
	"github.com/spendwatch/paygraph/pkg/paygraph"
	"github.com/spendwatch/paygraph/pkg/viewport"
)

// NodeSprite is a drawable node in world coordinates.
type NodeSprite struct {
	ID     string        `json:"id"`
	Kind   paygraph.Kind `json:"kind"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Radius float64       `json:"radius"`
	Pinned bool          `json:"pinned,omitempty"`
}

// EdgeLine is a drawable edge in world coordinates.
type EdgeLine struct {
	SourceID  string  `json:"source_id"`
	TargetID  string  `json:"target_id"`
	X1        float64 `json:"x1"`
	Y1        float64 `json:"y1"`
	X2        float64 `json:"x2"`
	Y2        float64 `json:"y2"`
	Width     float64 `json:"width"`
	Amount    float64 `json:"amount"`
	Contracts int     `json:"contracts"`
}

// Snapshot is the read-only state handed to render bindings after each tick
// or transform change. Node and edge geometry is in world coordinates; the
// transform is applied once, at the scene-wrapping level, by the target.
type Snapshot struct {
	Nodes     []NodeSprite      `json:"nodes"`
	Edges     []EdgeLine        `json:"edges"`
	Transform viewport.View     `json:"transform"`
	Tooltip   *interact.Tooltip `json:"tooltip,omitempty"`
	Settled   bool              `json:"settled"`
	Stats     paygraph.Stats    `json:"stats"`
}

// Scene owns one graph's simulation and interaction state. The transform is
// independent of the graph and survives graph replacement; everything else
// is rebuilt wholesale by Replace.
//
// Scene is single-threaded by design: interaction handlers and Frame run
// cooperatively between frames with no locking.
type Scene struct {
	cfg    force.Config
	bounds force.Bounds
	logger *log.Logger

	graph *paygraph.Graph
	sim   *force.Simulation
	view  *viewport.Transform
	ctrl  *interact.Controller
	stats paygraph.Stats
}

// New creates an empty scene viewed through the given transform, so hosts
// control the zoom limits; nil gets a fresh transform with the default
// limits. Replace must be called with a payload before Frame produces
// anything drawable.
func New(bounds force.Bounds, cfg force.Config, view *viewport.Transform, logger *log.Logger) *Scene {
	if view == nil {
		view = viewport.New()
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Scene{
		cfg:    cfg,
		bounds: bounds,
		view:   view,
		logger: logger,
	}
	s.install(paygraph.Build(nil, nil), paygraph.Stats{})
	return s
}

// install wires a new graph, discarding the running simulation.
func (s *Scene) install(g *paygraph.Graph, stats paygraph.Stats) {
	s.graph = g
	s.stats = stats
	s.sim = force.New(g, s.cfg)
	s.sim.Seed(s.bounds)
	s.ctrl = interact.New(g, s.sim, s.view)
}

// Replace swaps in a new graph wholesale: the running simulation is
// discarded, positions are reseeded randomly within the viewport bounds, and
// any drag state is dropped. The pan/zoom transform persists; call ResetView
// to clear it explicitly.
func (s *Scene) Replace(p paygraph.Payload) {
	g := paygraph.Build(p.Nodes, p.Edges)
	if g.DroppedEdges > 0 || g.DroppedNodes > 0 {
		s.logger.Warn("payload had unresolvable records",
			"dropped_edges", g.DroppedEdges, "dropped_nodes", g.DroppedNodes)
	}
	s.logger.Debug("graph replaced", "nodes", len(g.Nodes), "edges", len(g.Edges))
	s.install(g, p.Stats)
}

// Frame advances the simulation one tick and reports whether further frames
// should be scheduled. Ticks never overlap; each call runs to completion.
func (s *Scene) Frame() bool {
	return s.sim.Tick()
}

// Settled reports whether the simulation has settled.
func (s *Scene) Settled() bool {
	return s.sim.State() == force.StateSettled
}

// Controller returns the interaction controller for input sources.
func (s *Scene) Controller() *interact.Controller { return s.ctrl }

// View returns the viewport transform.
func (s *Scene) View() *viewport.Transform { return s.view }

// Graph returns the live graph.
func (s *Scene) Graph() *paygraph.Graph { return s.graph }

// ResetView restores the identity transform.
func (s *Scene) ResetView() { s.view.Reset() }

// Snapshot copies the current drawable state. The result shares nothing with
// the live simulation, so a render target may keep it across frames.
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{
		Nodes:     make([]NodeSprite, len(s.graph.Nodes)),
		Edges:     make([]EdgeLine, len(s.graph.Edges)),
		Transform: s.view.View(),
		Settled:   s.Settled(),
		Stats:     s.stats,
	}

	for i, n := range s.graph.Nodes {
		snap.Nodes[i] = NodeSprite{
			ID:     n.ID,
			Kind:   n.Kind,
			X:      n.X,
			Y:      n.Y,
			Radius: s.graph.NodeRadius(n),
			Pinned: n.Pinned,
		}
	}

	for i, e := range s.graph.Edges {
		src := s.graph.Nodes[e.Source]
		dst := s.graph.Nodes[e.Target]
		snap.Edges[i] = EdgeLine{
			SourceID:  src.ID,
			TargetID:  dst.ID,
			X1:        src.X,
			Y1:        src.Y,
			X2:        dst.X,
			Y2:        dst.Y,
			Width:     s.graph.EdgeWidth(e.Amount),
			Amount:    e.Amount,
			Contracts: e.Contracts,
		}
	}

	if tip := s.ctrl.Tooltip(); tip != nil {
		copied := *tip
		snap.Tooltip = &copied
	}
	return snap
}
