package testutil

import (
	"fmt"
	"sync"
)

// SequentialGenerator produces deterministic, canonical UUID-shaped ids:
// 00000000-0000-7000-8000-000000000001, ...000002, and so on.
//
// The ids sort in generation order, so golden snapshots and id tiebreaks
// are stable across runs. Unlike ids.FixedGenerator it never runs out.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequentialGenerator creates a generator whose first id ends in 1.
func NewSequentialGenerator() *SequentialGenerator {
	return NewPrefixedGenerator(0)
}

// NewPrefixedGenerator creates a generator whose ids carry ns in their
// first group, so several generators in one test never collide.
func NewPrefixedGenerator(ns uint32) *SequentialGenerator {
	return &SequentialGenerator{prefix: fmt.Sprintf("%08x-0000-7000-8000-", ns)}
}

// Generate returns the next id.
func (g *SequentialGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s%012x", g.prefix, g.seq)
}

// Current returns how many ids have been generated.
func (g *SequentialGenerator) Current() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. After Reset(), the next id ends in 1.
func (g *SequentialGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
