// Package pkg provides the core libraries for paygraph payment-network visualization.
//
// # Overview
//
// Paygraph turns public spending records into an interactive force-directed
// graph: organizations pay contractors, and the weight of each relationship
// drives both geometry and styling. The pkg directory is organized into
// three main areas:
//
//  1. Engine - the layout and interaction core ([paygraph], [force],
//     [viewport], [interact], [scene])
//  2. Data plane - fetching, caching, and persistence ([client], [cache],
//     [store])
//  3. Sinks - static render bindings ([render])
//
// # Architecture
//
// The typical data flow:
//
//	Payment Store (MongoDB / memory)
//	         ↓  aggregation
//	HTTP API (/api/network)
//	         ↓  sequenced fetch ([client])
//	Graph model ([paygraph])
//	         ↓  ticks ([force]) + input ([interact] over [viewport])
//	Scene snapshots ([scene])
//	         ↓
//	TUI frames or SVG/DOT/JSON artifacts ([render])
//
// The engine packages are deliberately free of transport concerns: a scene
// only ever sees a decoded payload, and render targets only ever see
// detached snapshots.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/force/...    # Specific package
//
// [paygraph]: https://pkg.go.dev/github.com/spendwatch/paygraph/pkg/paygraph
// [force]: https://pkg.go.dev/github.com/spendwatch/paygraph/pkg/force
// [viewport]: https://pkg.go.dev/github.com/spendwatch/paygraph/pkg/viewport
// [interact]: https://pkg.go.dev/github.com/spendwatch/paygraph/pkg/interact
// [scene]: https://pkg.go.dev/github.com/spendwatch/paygraph/pkg/scene
// [client]: https://pkg.go.dev/github.com/spendwatch/paygraph/pkg/client
// [cache]: https://pkg.go.dev/github.com/spendwatch/paygraph/pkg/cache
// [store]: https://pkg.go.dev/github.com/spendwatch/paygraph/pkg/store
// [render]: https://pkg.go.dev/github.com/spendwatch/paygraph/pkg/render
package pkg
