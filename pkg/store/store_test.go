package store

import (
	"context"
	"testing"

	"github.com/spendwatch/paygraph/pkg/paygraph"
)

func seedPayments(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	err := s.Insert(context.Background(),
		Payment{Org: "Ministry of Health", Contractor: "MedSupply", Amount: 60000, ADA: "A1"},
		Payment{Org: "Ministry of Health", Contractor: "MedSupply", Amount: 40000, ADA: "A2"},
		Payment{Org: "Ministry of Health", Contractor: "MedSupply", Amount: 25000, ADA: "A2"}, // same decision
		Payment{Org: "Ministry of Health", Contractor: "CleanCo", Amount: 30000, ADA: "B1"},
		Payment{Org: "City of Athens", Contractor: "CleanCo", Amount: 15000, ADA: "C1"},
		Payment{Org: "City of Athens", Contractor: "TinyVendor", Amount: 500, ADA: "D1"},
		// Rows with a missing party or a non-positive amount are excluded
		// from aggregation but still count toward the raw stats.
		Payment{Org: "", Contractor: "Ghost", Amount: 99999, ADA: "E1"},
		Payment{Org: "City of Athens", Contractor: "Refund", Amount: -100, ADA: "F1"},
	)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return s
}

func TestNetworkAggregation(t *testing.T) {
	s := seedPayments(t)
	p, err := s.Network(context.Background(), 10000, 80)
	if err != nil {
		t.Fatalf("Network: %v", err)
	}

	// TinyVendor (500), the missing-org row, and the refund are filtered out.
	if len(p.Edges) != 3 {
		t.Fatalf("edges = %d, want 3", len(p.Edges))
	}

	// Heaviest relationship first.
	top := p.Edges[0]
	if top.Source != "Ministry of Health" || top.Target != "MedSupply" {
		t.Errorf("top edge = %s -> %s", top.Source, top.Target)
	}
	if top.Amount != 125000 {
		t.Errorf("top amount = %v, want 125000", top.Amount)
	}
	if top.Contracts != 2 {
		t.Errorf("top contracts = %d, want 2 (distinct decisions)", top.Contracts)
	}

	if p.Stats.OrgCount != 2 || p.Stats.ContractorCount != 2 || p.Stats.EdgeCount != 3 {
		t.Errorf("stats = %+v", p.Stats)
	}
}

func TestNetworkNodeTotalsSpanEdges(t *testing.T) {
	s := seedPayments(t)
	p, err := s.Network(context.Background(), 10000, 80)
	if err != nil {
		t.Fatalf("Network: %v", err)
	}

	totals := make(map[string]float64)
	kinds := make(map[string]paygraph.Kind)
	for _, n := range p.Nodes {
		totals[n.ID] = n.Total
		kinds[n.ID] = n.Type
	}

	// CleanCo serves two organizations; its total spans both edges.
	if totals["CleanCo"] != 45000 {
		t.Errorf("CleanCo total = %v, want 45000", totals["CleanCo"])
	}
	if totals["Ministry of Health"] != 155000 {
		t.Errorf("Ministry total = %v, want 155000", totals["Ministry of Health"])
	}
	if kinds["Ministry of Health"] != paygraph.KindOrg || kinds["CleanCo"] != paygraph.KindContractor {
		t.Errorf("kinds = %v", kinds)
	}
}

func TestNetworkMaxEdgesKeepsHeaviest(t *testing.T) {
	s := seedPayments(t)
	p, err := s.Network(context.Background(), 0, 1)
	if err != nil {
		t.Fatalf("Network: %v", err)
	}
	if len(p.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(p.Edges))
	}
	if p.Edges[0].Amount != 125000 {
		t.Errorf("kept edge amount = %v, want the heaviest (125000)", p.Edges[0].Amount)
	}
	if p.Stats.EdgeCount != 1 {
		t.Errorf("stats edge count = %d, want 1", p.Stats.EdgeCount)
	}
}

func TestNetworkEmptyStore(t *testing.T) {
	s := NewMemoryStore()
	p, err := s.Network(context.Background(), 10000, 80)
	if err != nil {
		t.Fatalf("Network: %v", err)
	}
	if len(p.Nodes) != 0 || len(p.Edges) != 0 {
		t.Errorf("payload = %d nodes, %d edges, want empty", len(p.Nodes), len(p.Edges))
	}
	if p.Nodes == nil || p.Edges == nil {
		t.Error("payload slices must be non-nil so JSON encodes [] not null")
	}
}

func TestNetworkIsDeterministic(t *testing.T) {
	s := seedPayments(t)
	ctx := context.Background()

	a, err := s.Network(ctx, 0, 80)
	if err != nil {
		t.Fatalf("Network: %v", err)
	}
	b, err := s.Network(ctx, 0, 80)
	if err != nil {
		t.Fatalf("Network: %v", err)
	}

	for i := range a.Nodes {
		if a.Nodes[i] != b.Nodes[i] {
			t.Fatalf("node order differs at %d: %+v vs %+v", i, a.Nodes[i], b.Nodes[i])
		}
	}
	for i := range a.Edges {
		if a.Edges[i] != b.Edges[i] {
			t.Fatalf("edge order differs at %d: %+v vs %+v", i, a.Edges[i], b.Edges[i])
		}
	}
}

func TestStats(t *testing.T) {
	s := seedPayments(t)
	sum, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if sum.Payments != 8 {
		t.Errorf("payments = %d, want 8", sum.Payments)
	}
	if sum.Orgs != 2 {
		t.Errorf("orgs = %d, want 2", sum.Orgs)
	}
	if sum.Contractors != 5 {
		t.Errorf("contractors = %d, want 5", sum.Contractors)
	}
}
