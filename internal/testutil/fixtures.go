// Package testutil provides deterministic fixtures shared by tests: ids,
// clocks, in-memory stores and tenants.
package testutil

import (
	"testing"
	"time"

	"github.com/roach88/mise/internal/clock"
	"github.com/roach88/mise/internal/model"
	"github.com/roach88/mise/internal/store"
)

// Epoch is the start time of every fixture clock.
var Epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// NewClock returns a clock starting at Epoch that advances one second per
// reading.
func NewClock() *clock.Fixed {
	return clock.NewFixed(Epoch, time.Second)
}

// NewStore opens a fresh in-memory store that is closed when the test ends.
func NewStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Tenant returns a tenant that can see the given collections.
func Tenant(collectionIDs ...string) model.TenantContext {
	return model.TenantContext{UserID: "test-user", CollectionIDs: collectionIDs}
}
