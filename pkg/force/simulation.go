// Package force implements the self-contained force-directed layout engine
// for payment graphs. No external layout library is involved: node positions
// are produced by an iterative physics integrator running discrete ticks.
//
// # Model
//
// Each tick applies three forces, all scaled by the current alpha
// (temperature), then integrates velocities and decays alpha:
//
//  1. Centering: every unpinned node is pulled toward the configured center
//     proportional to its displacement.
//  2. Springs: each edge pulls its endpoints toward a rest length derived
//     from the edge's payment amount; heavier edges sit closer together.
//  3. Charge: every unordered node pair repels with an inverse-square force.
//     This is O(n²) per tick and is the scalability ceiling of the engine:
//     practical for low hundreds of nodes, not designed for larger graphs.
//
// Alpha decays toward an alpha target each tick; once it drops below the
// settle epsilon the simulation is settled and every further Tick is a
// no-op until it is reheated by interaction.
//
// # Determinism
//
// Forces accumulate over nodes and edges in slice index order, so
// floating-point summation is reproducible across runs. Seeding uses a
// deterministic RNG seeded from Config.Seed.
package force

import (
	"math"
	"math/rand/v2"

	"github.com/spendwatch/paygraph/pkg/paygraph"
)

// =============================================================================
// Defaults - Single Source of Truth for CLI, TUI, and Export
// =============================================================================

const (
	// DefaultCenterStrength weights the pull toward the viewport center.
	DefaultCenterStrength = 0.001

	// DefaultSpringStrength is the spring constant of the link force.
	// The computed pull (d - rest)/d * strength * alpha is split evenly
	// across the edge's two endpoints, following the d3-force bias
	// convention, so each endpoint receives half of it per tick.
	DefaultSpringStrength = 0.1

	// DefaultChargeStrength is the pairwise repulsion magnitude.
	// Negative values repel, matching the charge-force convention.
	DefaultChargeStrength = -300.0

	// DefaultDamping is the per-tick velocity decay factor.
	DefaultDamping = 0.6

	// DefaultAlphaDecay controls how fast alpha approaches the target.
	DefaultAlphaDecay = 0.1

	// DefaultSettleEpsilon is the alpha threshold below which the
	// simulation transitions to settled.
	DefaultSettleEpsilon = 1e-3

	// DefaultSeed makes initial placement reproducible.
	DefaultSeed = uint64(42)

	// Rest-length parameters: restLength = RestBase + (1 - amount/max) * RestSpan,
	// so the heaviest edge rests at RestBase and a zero-amount edge at
	// RestBase + RestSpan.
	DefaultRestBase = 120.0
	DefaultRestSpan = 80.0
)

// Reheat targets used by the interaction layer.
const (
	// DragAlpha keeps the layout responding while a node is dragged.
	DragAlpha = 0.3
	// ReleaseAlpha lets the layout relax after a drag ends.
	ReleaseAlpha = 0.1
)

// State is the lifecycle state of a simulation.
type State int

const (
	// StateIdle means the simulation has not been seeded yet.
	StateIdle State = iota
	// StateRunning means alpha is above the settle epsilon.
	StateRunning
	// StateSettled means alpha dropped below the settle epsilon. Settled is
	// terminal until Reheat raises alpha again.
	StateSettled
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Bounds is the world-space rectangle nodes are seeded into. Its center is
// also the attractor of the centering force.
type Bounds struct {
	Width  float64
	Height float64
}

// Center returns the midpoint of the bounds.
func (b Bounds) Center() (x, y float64) {
	return b.Width / 2, b.Height / 2
}

// Config holds the physics constants. The zero value is not usable; start
// from DefaultConfig and override fields as needed.
type Config struct {
	CenterStrength float64
	SpringStrength float64
	ChargeStrength float64
	Damping        float64
	AlphaDecay     float64
	SettleEpsilon  float64
	RestBase       float64
	RestSpan       float64
	Seed           uint64
}

// DefaultConfig returns the standard physics constants.
func DefaultConfig() Config {
	return Config{
		CenterStrength: DefaultCenterStrength,
		SpringStrength: DefaultSpringStrength,
		ChargeStrength: DefaultChargeStrength,
		Damping:        DefaultDamping,
		AlphaDecay:     DefaultAlphaDecay,
		SettleEpsilon:  DefaultSettleEpsilon,
		RestBase:       DefaultRestBase,
		RestSpan:       DefaultRestSpan,
		Seed:           DefaultSeed,
	}
}

// Simulation integrates forces over a payment graph. It owns node positions
// and velocities; pins set through Pin are authoritative over any
// force-computed displacement for as long as they are held.
//
// Simulation is not safe for concurrent use. Interaction handlers and the
// tick loop are expected to share one cooperative thread, so a pin written
// by a drag handler is always observed by the next tick.
type Simulation struct {
	graph  *paygraph.Graph
	cfg    Config
	bounds Bounds
	rng    *rand.Rand

	alpha       float64
	alphaTarget float64
	state       State
}

// New creates a simulation over g. The graph's node positions are left
// untouched until Seed is called.
func New(g *paygraph.Graph, cfg Config) *Simulation {
	if cfg.SettleEpsilon <= 0 {
		cfg.SettleEpsilon = DefaultSettleEpsilon
	}
	return &Simulation{
		graph: g,
		cfg:   cfg,
		rng:   rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0xdeadbeef)),
	}
}

// Graph returns the simulated graph.
func (s *Simulation) Graph() *paygraph.Graph { return s.graph }

// Alpha returns the current temperature in [0, 1].
func (s *Simulation) Alpha() float64 { return s.alpha }

// State returns the current lifecycle state.
func (s *Simulation) State() State { return s.state }

// Seed randomizes initial node positions uniformly inside bounds, clears
// velocities and pins, and starts the simulation at full temperature.
func (s *Simulation) Seed(bounds Bounds) {
	s.bounds = bounds
	for _, n := range s.graph.Nodes {
		n.X = s.rng.Float64() * bounds.Width
		n.Y = s.rng.Float64() * bounds.Height
		n.VX, n.VY = 0, 0
		n.Pinned = false
	}
	s.alpha = 1
	s.alphaTarget = 0
	s.state = StateRunning
}

// Pin fixes the node at (x, y). While pinned, the node's position equals its
// pin exactly after every tick and its velocity is forced to zero. Unknown
// IDs are ignored.
func (s *Simulation) Pin(id string, x, y float64) {
	n, ok := s.graph.Node(id)
	if !ok {
		return
	}
	n.Pinned = true
	n.FX, n.FY = x, y
}

// Unpin releases the node back to free motion. Unknown IDs are ignored.
func (s *Simulation) Unpin(id string) {
	if n, ok := s.graph.Node(id); ok {
		n.Pinned = false
	}
}

// Reheat raises alpha to at least amount and resumes ticking if the
// simulation had settled. Amounts are clamped to [0, 1].
func (s *Simulation) Reheat(amount float64) {
	amount = math.Min(1, math.Max(0, amount))
	if amount > s.alpha {
		s.alpha = amount
	}
	if s.alpha >= s.cfg.SettleEpsilon && s.state == StateSettled {
		s.state = StateRunning
	}
}

// SetAlphaTarget sets the value alpha decays toward. A non-zero target keeps
// the simulation simmering indefinitely; zero (the default) lets it settle.
func (s *Simulation) SetAlphaTarget(target float64) {
	s.alphaTarget = math.Min(1, math.Max(0, target))
}

// Tick advances the simulation by one step and reports whether further
// ticks should be scheduled.
//
// An empty node set makes every tick a no-op that immediately reports
// settled. Once settled, Tick keeps returning false until Reheat.
func (s *Simulation) Tick() bool {
	if len(s.graph.Nodes) == 0 {
		s.state = StateSettled
		return false
	}
	if s.state != StateRunning {
		return false
	}

	s.applyCentering()
	s.applySprings()
	s.applyCharge()
	s.integrate()

	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay
	if s.alpha < s.cfg.SettleEpsilon {
		s.state = StateSettled
		return false
	}
	return true
}

// =============================================================================
// Forces
// =============================================================================

func (s *Simulation) applyCentering() {
	cx, cy := s.bounds.Center()
	k := s.cfg.CenterStrength * s.alpha
	for _, n := range s.graph.Nodes {
		if n.Pinned {
			continue
		}
		n.VX += (cx - n.X) * k
		n.VY += (cy - n.Y) * k
	}
}

// applySprings pulls edge endpoints toward their rest length. The rest
// length is inversely related to the payment amount, so heavier edges sit
// closer. The force is split evenly between both endpoints with opposite
// signs.
func (s *Simulation) applySprings() {
	for _, e := range s.graph.Edges {
		src := s.graph.Nodes[e.Source]
		dst := s.graph.Nodes[e.Target]

		dx := dst.X - src.X
		dy := dst.Y - src.Y
		d := math.Hypot(dx, dy)
		if d < 1e-6 {
			// Coincident endpoints have no defined direction; nudge apart
			// deterministically instead of dividing by zero.
			dx, dy, d = 1e-6, 0, 1e-6
		}

		rest := s.cfg.RestBase + (1-e.Amount/s.graph.MaxEdgeAmount)*s.cfg.RestSpan
		f := (d - rest) / d * s.cfg.SpringStrength * s.alpha * 0.5

		src.VX += dx * f
		src.VY += dy * f
		dst.VX -= dx * f
		dst.VY -= dy * f
	}
}

// applyCharge repels every unordered node pair with an inverse-square force.
// O(n²); see the package comment for the scalability ceiling.
func (s *Simulation) applyCharge() {
	nodes := s.graph.Nodes
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]

			dx := b.X - a.X
			dy := b.Y - a.Y
			d2 := dx*dx + dy*dy
			if d2 < 1e-6 {
				d2 = 1e-6
				dx = 1e-3
			}

			f := s.cfg.ChargeStrength * s.alpha / d2
			d := math.Sqrt(d2)
			ux, uy := dx/d, dy/d

			// ChargeStrength is negative, so a moves away from b and vice versa.
			a.VX += ux * f
			a.VY += uy * f
			b.VX -= ux * f
			b.VY -= uy * f
		}
	}
}

func (s *Simulation) integrate() {
	for _, n := range s.graph.Nodes {
		if n.Pinned {
			n.VX, n.VY = 0, 0
			n.X, n.Y = n.FX, n.FY
			continue
		}
		n.VX *= s.cfg.Damping
		n.VY *= s.cfg.Damping
		n.X += n.VX
		n.Y += n.VY
	}
}
