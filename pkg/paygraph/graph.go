package paygraph

import "math"

// =============================================================================
// Sizing Constants - Single Source of Truth for All Render Targets
// =============================================================================

// Node radius parameters by kind. Organizations are rendered larger than
// contractors: radius = base + sqrt(total/maxTotal) * scale.
const (
	OrgRadiusBase         = 8.0
	OrgRadiusScale        = 20.0
	ContractorRadiusBase  = 5.0
	ContractorRadiusScale = 15.0
)

// Edge width bounds. Width grows linearly with amount relative to the
// heaviest edge and is clamped to [MinEdgeWidth, MaxEdgeWidth].
const (
	MinEdgeWidth = 1.0
	MaxEdgeWidth = 6.0
)

// =============================================================================
// Simulation-Ready Types
// =============================================================================

// Node is a live graph node with simulation state. Position and velocity are
// owned by the force simulation; FX/FY hold the pin coordinate while Pinned
// is set, in which case position is authoritative and velocity is zeroed on
// every tick.
type Node struct {
	ID    string
	Kind  Kind
	Total float64

	X, Y   float64 // world position
	VX, VY float64 // velocity
	FX, FY float64 // pin coordinate, valid while Pinned
	Pinned bool
}

// Edge is a live payment relationship. Endpoints are stored as indexes into
// the owning graph's node slice rather than pointers, so edges stay valid
// copies and never alias mutable node state.
type Edge struct {
	Source    int
	Target    int
	Amount    float64
	Contracts int
}

// Graph is a validated, simulation-ready payment graph snapshot.
// A graph is replaced wholesale on every data refresh; there is no
// incremental diffing.
type Graph struct {
	Nodes []*Node
	Edges []Edge

	// MaxEdgeAmount and MaxNodeTotal are scale denominators floored at 1,
	// so sizing math never divides by zero on empty or all-zero graphs.
	MaxEdgeAmount float64
	MaxNodeTotal  float64

	// DroppedEdges counts edges excluded because an endpoint did not
	// resolve to a live node. Dropped edges are not errors.
	DroppedEdges int

	// DroppedNodes counts records excluded because their ID duplicated an
	// earlier node. The first occurrence wins.
	DroppedNodes int

	index map[string]int
}

// Build validates raw records into a Graph.
//
// Edges whose source or target does not resolve to a node are silently
// excluded and counted in DroppedEdges. Duplicate node IDs keep the first
// occurrence. Negative amounts and totals are treated as zero so no negative
// geometry can propagate downstream.
func Build(rawNodes []PayloadNode, rawEdges []PayloadEdge) *Graph {
	g := &Graph{
		MaxEdgeAmount: 1,
		MaxNodeTotal:  1,
		index:         make(map[string]int, len(rawNodes)),
	}

	for _, rn := range rawNodes {
		if _, dup := g.index[rn.ID]; dup {
			g.DroppedNodes++
			continue
		}
		n := &Node{ID: rn.ID, Kind: rn.Type, Total: math.Max(rn.Total, 0)}
		g.index[n.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, n)
		if n.Total > g.MaxNodeTotal {
			g.MaxNodeTotal = n.Total
		}
	}

	for _, re := range rawEdges {
		src, okS := g.index[re.Source]
		dst, okT := g.index[re.Target]
		if !okS || !okT {
			g.DroppedEdges++
			continue
		}
		e := Edge{
			Source:    src,
			Target:    dst,
			Amount:    math.Max(re.Amount, 0),
			Contracts: re.Contracts,
		}
		if e.Contracts < 0 {
			e.Contracts = 0
		}
		g.Edges = append(g.Edges, e)
		if e.Amount > g.MaxEdgeAmount {
			g.MaxEdgeAmount = e.Amount
		}
	}

	return g
}

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.Nodes[i], true
}

// NodeIndex returns the slice index of the node with the given ID.
// Returns -1 if the ID is unknown.
func (g *Graph) NodeIndex(id string) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	return -1
}

// EdgeWidth maps a payment amount to a stroke width in world units,
// clamped to [MinEdgeWidth, MaxEdgeWidth].
func (g *Graph) EdgeWidth(amount float64) float64 {
	if amount < 0 {
		amount = 0
	}
	w := amount / g.MaxEdgeAmount * MaxEdgeWidth
	return math.Min(MaxEdgeWidth, math.Max(MinEdgeWidth, w))
}

// NodeRadius maps a node's total to a radius in world units.
// The result is always finite and positive: totals are non-negative and the
// denominator is floored at 1 by Build.
func (g *Graph) NodeRadius(n *Node) float64 {
	base, scale := ContractorRadiusBase, ContractorRadiusScale
	if n.Kind == KindOrg {
		base, scale = OrgRadiusBase, OrgRadiusScale
	}
	return base + math.Sqrt(n.Total/g.MaxNodeTotal)*scale
}
