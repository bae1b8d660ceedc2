// Package client fetches network payloads from the spending API for the
// graph view.
//
// Changing the minimum-amount filter triggers an asynchronous re-fetch, and
// a slow response for an old filter can arrive after a fast response for the
// current one. Every fetch therefore carries a monotonically increasing
// sequence token, and Apply refuses any result whose token is below the
// newest issued one. Last-response-wins is not assumed safe.
//
// Fetch failures are non-fatal by contract: the caller keeps its previous
// graph and no automatic retry is attempted.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/spendwatch/paygraph/pkg/cache"
	"github.com/spendwatch/paygraph/pkg/errors"
	"github.com/spendwatch/paygraph/pkg/paygraph"
)

// Defaults mirror the spending API's own query defaults.
const (
	DefaultMinAmount = 10000.0
	DefaultMaxEdges  = 80
	DefaultTimeout   = 15 * time.Second
	DefaultCacheTTL  = 5 * time.Minute
)

// Query selects which slice of the payment graph to fetch.
type Query struct {
	MinAmount float64
	MaxEdges  int
}

// DefaultQuery returns the standard filter.
func DefaultQuery() Query {
	return Query{MinAmount: DefaultMinAmount, MaxEdges: DefaultMaxEdges}
}

// Result pairs a fetched payload with its request sequence token.
type Result struct {
	Payload paygraph.Payload
	Query   Query
	Seq     uint64
}

// Loader fetches network payloads with request sequencing and caching.
// Fetch may run on any goroutine; Apply is expected on the owner's thread.
type Loader struct {
	base  string
	hc    *http.Client
	cache cache.Cache
	ttl   time.Duration

	seq     atomic.Uint64 // newest issued sequence token
	applied atomic.Uint64 // newest applied sequence token
	stale   atomic.Uint64 // count of discarded stale responses
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(l *Loader) { l.hc = hc }
}

// WithCache caches raw payload bytes per (base URL, query).
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(l *Loader) { l.cache = c; l.ttl = ttl }
}

// New creates a loader for the API at base, e.g. "http://localhost:8000".
func New(base string, opts ...Option) *Loader {
	l := &Loader{
		base:  base,
		hc:    &http.Client{Timeout: DefaultTimeout},
		cache: cache.NewNullCache(),
		ttl:   DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// StaleCount returns how many responses were discarded as stale.
func (l *Loader) StaleCount() uint64 { return l.stale.Load() }

// Fetch retrieves the network payload for q and stamps it with a fresh
// sequence token. The token is issued before the request goes out, so a
// fetch that starts earlier can never outrank one that starts later.
func (l *Loader) Fetch(ctx context.Context, q Query) (*Result, error) {
	seq := l.seq.Add(1)

	data, err := l.fetchBytes(ctx, q)
	if err != nil {
		return nil, err
	}

	payload, err := paygraph.UnmarshalPayload(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "malformed network payload")
	}
	return &Result{Payload: payload, Query: q, Seq: seq}, nil
}

// Apply hands the result to apply unless a newer fetch has been issued or
// applied since; stale results are counted and dropped. It returns whether
// the result was applied.
func (l *Loader) Apply(r *Result, apply func(paygraph.Payload)) bool {
	if r == nil {
		return false
	}
	if r.Seq < l.seq.Load() || r.Seq <= l.applied.Load() {
		l.stale.Add(1)
		return false
	}
	l.applied.Store(r.Seq)
	apply(r.Payload)
	return true
}

func (l *Loader) fetchBytes(ctx context.Context, q Query) ([]byte, error) {
	key := cache.Key("network", l.base, q.MinAmount, q.MaxEdges)
	if data, ok, err := l.cache.Get(ctx, key); err == nil && ok {
		return data, nil
	}

	u, err := url.Parse(l.base + "/api/network")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid base URL %q", l.base)
	}
	qs := u.Query()
	qs.Set("min_amount", strconv.FormatFloat(q.MinAmount, 'f', -1, 64))
	qs.Set("max_edges", strconv.Itoa(q.MaxEdges))
	u.RawQuery = qs.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}

	resp, err := l.hc.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", u.String())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrCodeNetwork, "fetch %s: %s", u.String(), resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read response")
	}

	// Cache failures degrade to uncached fetches; they never fail a load.
	_ = l.cache.Set(ctx, key, data, l.ttl)
	return data, nil
}

// String implements fmt.Stringer for logging.
func (q Query) String() string {
	return fmt.Sprintf("min_amount=%g max_edges=%d", q.MinAmount, q.MaxEdges)
}
