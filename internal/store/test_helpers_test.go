package store

import (
	"context"
	"testing"
	"time"

	"github.com/roach88/mise/internal/model"
)

const (
	testCollectionID  = "0190f5a4-0000-7000-8000-00000000c001"
	otherCollectionID = "0190f5a4-0000-7000-8000-00000000c002"
	testRecipeID      = "0190f5a4-0000-7000-8000-00000000a001"
)

var testEpoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func testTenant() model.TenantContext {
	return model.TenantContext{UserID: "user-1", CollectionIDs: []string{testCollectionID}}
}

// createTestStore creates a new in-memory store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedRecipe creates the test collections and one recipe in the first.
func seedRecipe(t *testing.T, s *Store) model.Recipe {
	t.Helper()
	ctx := context.Background()

	r := createTestRecipe(testRecipeID, testCollectionID, "Hot Chocolate", testEpoch)
	err := s.WithTx(ctx, func(tx *Tx) error {
		for _, id := range []string{testCollectionID, otherCollectionID} {
			if err := tx.CreateCollection(ctx, model.Collection{ID: id, Name: "c-" + id[len(id)-4:], CreatedAt: testEpoch}); err != nil {
				return err
			}
		}
		return tx.InsertRecipe(ctx, r)
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return r
}

// createTestRecipe creates a recipe with minimal required fields.
func createTestRecipe(id, collectionID, title string, at time.Time) model.Recipe {
	return model.Recipe{
		ID:           id,
		CollectionID: collectionID,
		CreatedBy:    "user-1",
		Title:        title,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
}
