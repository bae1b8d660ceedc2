package paygraph

import (
	"math"
	"strings"
	"testing"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name        string
		nodes       []PayloadNode
		edges       []PayloadEdge
		wantNodes   int
		wantEdges   int
		wantDropped int
		check       func(t *testing.T, g *Graph)
	}{
		{
			name:      "Empty",
			wantNodes: 0,
			wantEdges: 0,
			check: func(t *testing.T, g *Graph) {
				if g.MaxEdgeAmount != 1 || g.MaxNodeTotal != 1 {
					t.Errorf("scale floors = (%v, %v), want (1, 1)", g.MaxEdgeAmount, g.MaxNodeTotal)
				}
			},
		},
		{
			name: "Simple",
			nodes: []PayloadNode{
				{ID: "A", Type: KindOrg, Total: 100000},
				{ID: "B", Type: KindContractor, Total: 5000},
			},
			edges: []PayloadEdge{
				{Source: "A", Target: "B", Amount: 50000, Contracts: 3},
			},
			wantNodes: 2,
			wantEdges: 1,
			check: func(t *testing.T, g *Graph) {
				if g.MaxEdgeAmount != 50000 {
					t.Errorf("MaxEdgeAmount = %v, want 50000", g.MaxEdgeAmount)
				}
				if g.MaxNodeTotal != 100000 {
					t.Errorf("MaxNodeTotal = %v, want 100000", g.MaxNodeTotal)
				}
			},
		},
		{
			name: "DropsUnresolvedEdges",
			nodes: []PayloadNode{
				{ID: "A", Type: KindOrg, Total: 10},
			},
			edges: []PayloadEdge{
				{Source: "A", Target: "missing", Amount: 5},
				{Source: "ghost", Target: "A", Amount: 5},
				{Source: "A", Target: "A", Amount: 5},
			},
			wantNodes:   1,
			wantEdges:   1,
			wantDropped: 2,
		},
		{
			name: "DuplicateIDKeepsFirst",
			nodes: []PayloadNode{
				{ID: "A", Type: KindOrg, Total: 10},
				{ID: "A", Type: KindContractor, Total: 99},
			},
			wantNodes: 1,
			check: func(t *testing.T, g *Graph) {
				if g.DroppedNodes != 1 {
					t.Errorf("DroppedNodes = %d, want 1", g.DroppedNodes)
				}
				n, _ := g.Node("A")
				if n.Kind != KindOrg {
					t.Errorf("kind = %q, want org (first occurrence)", n.Kind)
				}
			},
		},
		{
			name: "NegativeAmountsClampedToZero",
			nodes: []PayloadNode{
				{ID: "A", Type: KindOrg, Total: -500},
				{ID: "B", Type: KindContractor, Total: 10},
			},
			edges: []PayloadEdge{
				{Source: "A", Target: "B", Amount: -42, Contracts: -1},
			},
			wantNodes: 2,
			wantEdges: 1,
			check: func(t *testing.T, g *Graph) {
				a, _ := g.Node("A")
				if a.Total != 0 {
					t.Errorf("total = %v, want 0", a.Total)
				}
				if g.Edges[0].Amount != 0 || g.Edges[0].Contracts != 0 {
					t.Errorf("edge = %+v, want zeroed amount/contracts", g.Edges[0])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(tt.nodes, tt.edges)

			if got := len(g.Nodes); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := len(g.Edges); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
			if g.DroppedEdges != tt.wantDropped {
				t.Errorf("dropped = %d, want %d", g.DroppedEdges, tt.wantDropped)
			}

			if tt.check != nil {
				tt.check(t, g)
			}
		})
	}
}

func TestEdgeWidth(t *testing.T) {
	g := Build(
		[]PayloadNode{
			{ID: "A", Type: KindOrg, Total: 100000},
			{ID: "B", Type: KindContractor, Total: 5000},
		},
		[]PayloadEdge{
			{Source: "A", Target: "B", Amount: 50000, Contracts: 3},
		},
	)

	tests := []struct {
		name   string
		amount float64
		want   float64
	}{
		{"MaxAmount", 50000, 6},
		{"HalfAmount", 25000, 3},
		{"TinyAmountClampedToMin", 1, 1},
		{"ZeroClampedToMin", 0, 1},
		{"NegativeClampedToMin", -10, 1},
		{"OverMaxClampedToMax", 80000, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.EdgeWidth(tt.amount); got != tt.want {
				t.Errorf("EdgeWidth(%v) = %v, want %v", tt.amount, got, tt.want)
			}
		})
	}
}

func TestNodeRadius(t *testing.T) {
	g := Build(
		[]PayloadNode{
			{ID: "A", Type: KindOrg, Total: 100000},
			{ID: "B", Type: KindContractor, Total: 5000},
		},
		[]PayloadEdge{
			{Source: "A", Target: "B", Amount: 50000, Contracts: 3},
		},
	)

	a, _ := g.Node("A")
	b, _ := g.Node("B")

	ra, rb := g.NodeRadius(a), g.NodeRadius(b)
	if ra <= rb {
		t.Errorf("radius(A) = %v should exceed radius(B) = %v", ra, rb)
	}

	// Every radius must be finite and positive, including on degenerate
	// all-zero graphs.
	zero := Build([]PayloadNode{{ID: "z", Type: KindContractor, Total: 0}}, nil)
	for _, n := range zero.Nodes {
		r := zero.NodeRadius(n)
		if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
			t.Errorf("radius(%s) = %v, want finite > 0", n.ID, r)
		}
	}
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, p Payload)
	}{
		{
			name: "Valid",
			input: `{
				"nodes": [{"id": "Ministry", "type": "org", "total": 1200}],
				"edges": [{"source": "Ministry", "target": "Contractor", "amount": 300, "contracts": 2}],
				"stats": {"org_count": 1, "contractor_count": 1, "edge_count": 1}
			}`,
			check: func(t *testing.T, p Payload) {
				if len(p.Nodes) != 1 || len(p.Edges) != 1 {
					t.Fatalf("payload = %d nodes, %d edges, want 1, 1", len(p.Nodes), len(p.Edges))
				}
				if p.Nodes[0].Type != KindOrg {
					t.Errorf("type = %q, want org", p.Nodes[0].Type)
				}
				if p.Stats.EdgeCount != 1 {
					t.Errorf("edge_count = %d, want 1", p.Stats.EdgeCount)
				}
			},
		},
		{
			name:    "Invalid",
			input:   `{nope}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodePayload(strings.NewReader(tt.input))

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodePayload: %v", err)
			}
			if tt.check != nil {
				tt.check(t, p)
			}
		})
	}
}
