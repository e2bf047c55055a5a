// Package revision tracks the last revision number reported by the backend.
package revision

import "sync"

// Tracker holds the last-seen server revision. The zero value is ready to
// use and starts at 0.
type Tracker struct {
	mu  sync.Mutex
	rev int64
}

// Get returns the current revision.
func (t *Tracker) Get() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rev
}

// Set stores v. The last write wins; values are not compared.
func (t *Tracker) Set(v int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rev = v
}
