// Package stores implements the client-side domain stores: each holds a
// local cache of a server collection and the operations that mutate it.
//
// Stores are UI-agnostic; the terminal panel wraps their methods in
// bubbletea commands and the CLI calls them directly. Mutating operations
// follow a read-after-write policy: after a successful server call the whole
// collection is refetched, and on failure the local cache is left untouched
// with the server message propagated verbatim.
//
// Fetches are protected by a latest-wins guard: every request takes a
// monotonic token and a response is only applied when no newer response has
// landed first, so overlapping refreshes can never clobber fresher state
// with stale data.
package stores

import "sync"

// guard serializes cache access and drops stale fetch responses.
type guard struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

// next reserves a request token. Tokens are ordered by issue time.
func (g *guard) next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return g.issued
}

// apply runs fn under the lock iff no response with a newer token has been
// applied yet. Returns false when the response was stale and dropped.
func (g *guard) apply(token uint64, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if token <= g.applied {
		return false
	}
	g.applied = token
	fn()
	return true
}

// read runs fn under the lock. For accessors.
func (g *guard) read(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
}
