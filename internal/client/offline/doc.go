// Package offline is the offline-first synchronization engine.
//
// An Engine serves cached data and images immediately, refreshes them from
// the network with per-URL coalescing, queues posts that could not be
// delivered and replays that queue in order when Synchronize is called.
// All state lives in the repositories it is built with; an Engine holds no
// globals and several can run side by side.
package offline
