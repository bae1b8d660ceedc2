// Package store persists payment records and aggregates them into the
// network payloads consumed by the graph view.
//
// A payment row is one expense item from a published spending decision:
// which organization paid which contractor, how much, and under which
// decision reference (ADA). The Network aggregation groups rows by
// (organization, contractor), sums amounts, counts distinct decisions,
// filters by a minimum total, and caps the edge count, so the heaviest
// relationships win.
//
// Two implementations are provided: MemoryStore for tests and demo serving,
// and MongoStore for real deployments.
package store

import (
	"context"
	"sort"
	"time"

	"github.com/spendwatch/paygraph/pkg/paygraph"
)

// Payment is a single org → contractor expense item.
type Payment struct {
	Org        string    `bson:"org" json:"org"`
	Contractor string    `bson:"contractor" json:"contractor"`
	Amount     float64   `bson:"amount" json:"amount"`
	ADA        string    `bson:"ada" json:"ada"` // decision reference
	IssueDate  time.Time `bson:"issue_date" json:"issue_date"`
}

// Summary is the store-wide overview served by /api/stats.
type Summary struct {
	Payments    int64   `bson:"payments" json:"payments"`
	TotalAmount float64 `bson:"total_amount" json:"total_amount"`
	Orgs        int64   `bson:"orgs" json:"orgs"`
	Contractors int64   `bson:"contractors" json:"contractors"`
}

// Store is the persistence interface behind the HTTP API.
type Store interface {
	// Insert adds payment rows.
	Insert(ctx context.Context, payments ...Payment) error

	// Network aggregates payments into a graph payload. Relationships whose
	// summed amount is below minAmount are excluded, and at most maxEdges
	// relationships are returned, heaviest first.
	Network(ctx context.Context, minAmount float64, maxEdges int) (paygraph.Payload, error)

	// Stats returns the store-wide summary.
	Stats(ctx context.Context) (Summary, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// edgeRow is one aggregated (org, contractor) relationship.
type edgeRow struct {
	Org        string  `bson:"org"`
	Contractor string  `bson:"contractor"`
	Total      float64 `bson:"total"`
	Contracts  int     `bson:"contracts"`
}

// buildPayload converts aggregated rows into the wire payload: unique org
// and contractor nodes sized by their summed edge amounts, plus stats.
// Organizations come first, each group sorted by ID, so output is
// deterministic regardless of backend iteration order.
func buildPayload(rows []edgeRow) paygraph.Payload {
	orgTotals := make(map[string]float64)
	conTotals := make(map[string]float64)

	p := paygraph.Payload{
		Nodes: []paygraph.PayloadNode{},
		Edges: make([]paygraph.PayloadEdge, 0, len(rows)),
	}
	for _, r := range rows {
		orgTotals[r.Org] += r.Total
		conTotals[r.Contractor] += r.Total
		p.Edges = append(p.Edges, paygraph.PayloadEdge{
			Source:    r.Org,
			Target:    r.Contractor,
			Amount:    r.Total,
			Contracts: r.Contracts,
		})
	}

	for _, id := range sortedKeys(orgTotals) {
		p.Nodes = append(p.Nodes, paygraph.PayloadNode{ID: id, Type: paygraph.KindOrg, Total: orgTotals[id]})
	}
	for _, id := range sortedKeys(conTotals) {
		p.Nodes = append(p.Nodes, paygraph.PayloadNode{ID: id, Type: paygraph.KindContractor, Total: conTotals[id]})
	}

	p.Stats = paygraph.Stats{
		OrgCount:        len(orgTotals),
		ContractorCount: len(conTotals),
		EdgeCount:       len(p.Edges),
	}
	return p
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
