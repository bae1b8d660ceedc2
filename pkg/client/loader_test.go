package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spendwatch/paygraph/pkg/cache"
	"github.com/spendwatch/paygraph/pkg/errors"
	"github.com/spendwatch/paygraph/pkg/paygraph"
)

const samplePayload = `{
	"nodes": [
		{"id": "Ministry", "type": "org", "total": 100000},
		{"id": "Contractor", "type": "contractor", "total": 100000}
	],
	"edges": [
		{"source": "Ministry", "target": "Contractor", "amount": 100000, "contracts": 4}
	],
	"stats": {"org_count": 1, "contractor_count": 1, "edge_count": 1}
}`

func newTestServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.URL.Path != "/api/network" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("min_amount") == "" || r.URL.Query().Get("max_edges") == "" {
			http.Error(w, "missing query", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePayload))
	}))
}

func TestFetchDecodesPayload(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	l := New(srv.URL)
	res, err := l.Fetch(context.Background(), DefaultQuery())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(res.Payload.Nodes) != 2 || len(res.Payload.Edges) != 1 {
		t.Errorf("payload = %d nodes, %d edges, want 2, 1", len(res.Payload.Nodes), len(res.Payload.Edges))
	}
	if res.Seq != 1 {
		t.Errorf("seq = %d, want 1", res.Seq)
	}
}

func TestFetchErrorsAreStructured(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode errors.Code
	}{
		{
			name:     "ServerError",
			handler:  func(w http.ResponseWriter, r *http.Request) { http.Error(w, "boom", 500) },
			wantCode: errors.ErrCodeNetwork,
		},
		{
			name:     "MalformedBody",
			handler:  func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("{nope")) },
			wantCode: errors.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := New(srv.URL).Fetch(context.Background(), DefaultQuery())
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestApplyRejectsStaleResponse(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()
	l := New(srv.URL)
	ctx := context.Background()

	// Two fetches race: the older one completes after the newer one.
	older, err := l.Fetch(ctx, Query{MinAmount: 10000, MaxEdges: 80})
	if err != nil {
		t.Fatalf("Fetch older: %v", err)
	}
	newer, err := l.Fetch(ctx, Query{MinAmount: 25000, MaxEdges: 80})
	if err != nil {
		t.Fatalf("Fetch newer: %v", err)
	}

	applied := 0
	record := func(paygraph.Payload) { applied++ }

	if !l.Apply(newer, record) {
		t.Fatal("newest result must apply")
	}
	if l.Apply(older, record) {
		t.Fatal("stale result must be discarded")
	}
	if applied != 1 {
		t.Errorf("applied %d payloads, want 1", applied)
	}
	if l.StaleCount() != 1 {
		t.Errorf("stale count = %d, want 1", l.StaleCount())
	}
}

func TestApplyRejectsResultOlderThanNewestIssued(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()
	l := New(srv.URL)
	ctx := context.Background()

	first, err := l.Fetch(ctx, DefaultQuery())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// A newer fetch has been issued but not yet applied; the old result is
	// already superseded.
	if _, err := l.Fetch(ctx, Query{MinAmount: 50000, MaxEdges: 40}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if l.Apply(first, func(paygraph.Payload) {}) {
		t.Error("result older than the newest issued fetch must not apply")
	}
}

func TestApplySameResultTwiceIsIdempotent(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()
	l := New(srv.URL)

	res, err := l.Fetch(context.Background(), DefaultQuery())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	count := 0
	apply := func(paygraph.Payload) { count++ }
	if !l.Apply(res, apply) {
		t.Fatal("first apply should succeed")
	}
	if l.Apply(res, apply) {
		t.Error("second apply of the same sequence must be rejected")
	}
	if count != 1 {
		t.Errorf("apply ran %d times, want 1", count)
	}
}

func TestFetchUsesCache(t *testing.T) {
	var hits atomic.Int64
	srv := newTestServer(t, &hits)
	defer srv.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	l := New(srv.URL, WithCache(fc, time.Minute))
	ctx := context.Background()

	if _, err := l.Fetch(ctx, DefaultQuery()); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if _, err := l.Fetch(ctx, DefaultQuery()); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1 (second fetch cached)", hits.Load())
	}

	// A different filter is a different cache entry.
	if _, err := l.Fetch(ctx, Query{MinAmount: 99999, MaxEdges: 80}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
}
