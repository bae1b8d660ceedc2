package store

import (
	"context"
	"sort"
	"sync"

	"github.com/spendwatch/paygraph/pkg/paygraph"
)

// MemoryStore keeps payments in memory. It backs tests and the demo
// serving mode; all methods are safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	payments []Payment
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert adds payment rows.
func (s *MemoryStore) Insert(_ context.Context, payments ...Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, payments...)
	return nil
}

// Network aggregates payments into a graph payload.
func (s *MemoryStore) Network(_ context.Context, minAmount float64, maxEdges int) (paygraph.Payload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type group struct {
		total     float64
		decisions map[string]struct{}
	}
	type pair struct{ org, contractor string }

	groups := make(map[pair]*group)
	for _, p := range s.payments {
		if p.Org == "" || p.Contractor == "" || p.Amount <= 0 {
			continue
		}
		k := pair{p.Org, p.Contractor}
		g := groups[k]
		if g == nil {
			g = &group{decisions: make(map[string]struct{})}
			groups[k] = g
		}
		g.total += p.Amount
		g.decisions[p.ADA] = struct{}{}
	}

	rows := make([]edgeRow, 0, len(groups))
	for k, g := range groups {
		if g.total < minAmount {
			continue
		}
		rows = append(rows, edgeRow{
			Org:        k.org,
			Contractor: k.contractor,
			Total:      g.total,
			Contracts:  len(g.decisions),
		})
	}

	// Heaviest first; ties break on IDs so output is stable.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		if rows[i].Org != rows[j].Org {
			return rows[i].Org < rows[j].Org
		}
		return rows[i].Contractor < rows[j].Contractor
	})
	if maxEdges > 0 && len(rows) > maxEdges {
		rows = rows[:maxEdges]
	}

	return buildPayload(rows), nil
}

// Stats returns the store-wide summary.
func (s *MemoryStore) Stats(_ context.Context) (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orgs := make(map[string]struct{})
	cons := make(map[string]struct{})
	var sum Summary
	for _, p := range s.payments {
		sum.Payments++
		sum.TotalAmount += p.Amount
		if p.Org != "" {
			orgs[p.Org] = struct{}{}
		}
		if p.Contractor != "" {
			cons[p.Contractor] = struct{}{}
		}
	}
	sum.Orgs = int64(len(orgs))
	sum.Contractors = int64(len(cons))
	return sum, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(context.Context) error { return nil }
