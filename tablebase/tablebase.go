// Package tablebase defines the oracle interface the evaluator consults
// to classify endgame positions, plus a no-op placeholder and a
// hash-keyed caching wrapper.
package tablebase

import (
	"sync"

	"github.com/kestrelchess/puctcore/position"
)

// WDL is a tablebase win/draw/loss verdict from the side-to-move's
// perspective.
type WDL int

const (
	Loss WDL = -1
	Draw WDL = 0
	Win  WDL = 1
)

// Prober looks up tablebase results for a position. A probe failure
// (position not covered, tables not loaded, I/O error) is reported by the
// second return value being false and must be treated by callers as
// "no result" — never as an error.
type Prober interface {
	Probe(st *position.State) (WDL, bool)
}

// NoopProber always reports "not found"; it is the default when no
// tablebase files are configured.
type NoopProber struct{}

func (NoopProber) Probe(*position.State) (WDL, bool) { return Draw, false }

// CachedProber wraps another Prober with a hash-keyed cache, avoiding
// repeated disk probes for positions visited by multiple playouts. Safe
// for concurrent use by multiple search workers.
type CachedProber struct {
	inner Prober
	mu    sync.RWMutex
	cache map[[16]byte]cacheEntry
}

type cacheEntry struct {
	wdl   WDL
	found bool
}

// NewCachedProber wraps inner with an unbounded position-hash cache.
func NewCachedProber(inner Prober) *CachedProber {
	return &CachedProber{inner: inner, cache: make(map[[16]byte]cacheEntry)}
}

func (c *CachedProber) Probe(st *position.State) (WDL, bool) {
	h := st.Hash()

	c.mu.RLock()
	e, ok := c.cache[h]
	c.mu.RUnlock()
	if ok {
		return e.wdl, e.found
	}

	wdl, found := c.inner.Probe(st)

	c.mu.Lock()
	c.cache[h] = cacheEntry{wdl: wdl, found: found}
	c.mu.Unlock()
	return wdl, found
}
