package viewer

import (
	"sync"
	"sync/atomic"
)

// Token identifies one image-data request
type Token struct {
	Path string
	seq  uint64
}

// Requests implements last-request-wins for asynchronous image loads.
// A load result is shown only if its path is still the one most recently
// requested; earlier results are dropped, never queued.
type Requests struct {
	mu   sync.Mutex
	path string
	seq  uint64
}

// Begin records path as the current request
func (r *Requests) Begin(path string) Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.path = path
	return Token{Path: path, seq: r.seq}
}

// Valid reports whether a result for t may still be shown
func (r *Requests) Valid(t Token) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path != "" && r.path == t.Path
}

// Latest reports whether t is the newest request, not merely one for the
// same path
func (r *Requests) Latest(t Token) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path != "" && t.seq == r.seq
}

// Cancel invalidates every outstanding request
func (r *Requests) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = ""
}

// Current returns the path most recently requested
func (r *Requests) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Guard rejects overlapping runs of an operation
type Guard struct {
	busy atomic.Bool
}

// TryAcquire marks the operation in flight; false means one already is
func (g *Guard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Release ends the in-flight run
func (g *Guard) Release() {
	g.busy.Store(false)
}

// Busy reports whether a run is in flight
func (g *Guard) Busy() bool {
	return g.busy.Load()
}
