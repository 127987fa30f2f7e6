package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mise/internal/ids"
	"github.com/roach88/mise/internal/model"
)

const (
	id1    = "00000000-0000-7000-8000-000000000001"
	id2    = "00000000-0000-7000-8000-000000000002"
	id3    = "00000000-0000-7000-8000-000000000003"
	fresh  = "00000000-0000-7000-8000-0000000000f1"
	fresh2 = "00000000-0000-7000-8000-0000000000f2"
)

func items(texts ...string) []model.Item {
	idsByIndex := []string{id1, id2, id3}
	out := make([]model.Item, len(texts))
	for i, text := range texts {
		out[i] = model.Item{ID: idsByIndex[i], Text: text, Position: i}
	}
	return out
}

// apply simulates the store: it returns the texts of the resulting list in
// position order.
func apply(t *testing.T, current []model.Item, plan Plan) []string {
	t.Helper()
	byID := map[string]model.Item{}
	for _, it := range current {
		byID[it.ID] = it
	}
	for _, id := range plan.Deletes {
		delete(byID, id)
	}
	for _, op := range plan.Updates {
		require.Contains(t, byID, op.ID)
		byID[op.ID] = model.Item{ID: op.ID, Text: op.Text, Position: op.Position}
	}
	for _, op := range plan.Inserts {
		require.NotContains(t, byID, op.ID)
		byID[op.ID] = model.Item{ID: op.ID, Text: op.Text, Position: op.Position}
	}

	out := make([]string, len(byID))
	seen := map[int]bool{}
	for _, it := range byID {
		require.GreaterOrEqual(t, it.Position, 0)
		require.Less(t, it.Position, len(byID), "positions must be contiguous")
		require.False(t, seen[it.Position], "duplicate position %d", it.Position)
		seen[it.Position] = true
		out[it.Position] = it.Text
	}
	return out
}

func TestReconcile_MixedUpdateInsertDelete(t *testing.T) {
	current := items("A", "B")
	desired := []model.ItemUpdate{
		{ID: id2, Text: "B2"},
		{Text: "C"},
	}

	plan, err := Reconcile(model.KindIngredient, current, desired, ids.NewFixedGenerator(fresh))
	require.NoError(t, err)

	assert.Equal(t, model.KindIngredient, plan.Kind)
	assert.Equal(t, []Op{{ID: id2, Text: "B2", Position: 0}}, plan.Updates)
	assert.Equal(t, []Op{{ID: fresh, Text: "C", Position: 1}}, plan.Inserts)
	assert.Equal(t, []string{id1}, plan.Deletes)
	assert.Equal(t, 3, plan.Size())

	assert.Equal(t, []string{"B2", "C"}, apply(t, current, plan))
}

func TestReconcile_Idempotent(t *testing.T) {
	current := items("A", "B", "C")
	desired := []model.ItemUpdate{
		{ID: id1, Text: "A"},
		{ID: id2, Text: "B"},
		{ID: id3, Text: "C"},
	}

	plan, err := Reconcile(model.KindInstruction, current, desired, ids.NewFixedGenerator())
	require.NoError(t, err)

	assert.Empty(t, plan.Inserts)
	assert.Empty(t, plan.Deletes)
	require.Len(t, plan.Updates, 3)
	for i, op := range plan.Updates {
		assert.Equal(t, current[i].ID, op.ID)
		assert.Equal(t, current[i].Text, op.Text)
		assert.Equal(t, current[i].Position, op.Position)
	}
	assert.False(t, plan.Empty())
}

func TestReconcile_InsertsAroundSurvivors(t *testing.T) {
	current := items("Milk", "Butter", "Chocolate")
	desired := []model.ItemUpdate{
		{Text: "New"},
		{ID: id2, Text: "Butter"},
		{Text: "New2"},
		{ID: id3, Text: "Chocolate"},
	}

	plan, err := Reconcile(model.KindIngredient, current, desired, ids.NewFixedGenerator(fresh, fresh2))
	require.NoError(t, err)

	assert.Equal(t, []Op{
		{ID: fresh, Text: "New", Position: 0},
		{ID: fresh2, Text: "New2", Position: 2},
	}, plan.Inserts)
	assert.Equal(t, []Op{
		{ID: id2, Text: "Butter", Position: 1},
		{ID: id3, Text: "Chocolate", Position: 3},
	}, plan.Updates)
	assert.Equal(t, []string{id1}, plan.Deletes)

	assert.Equal(t, []string{"New", "Butter", "New2", "Chocolate"}, apply(t, current, plan))
}

func TestReconcile_Reorder(t *testing.T) {
	current := items("A", "B", "C")
	desired := []model.ItemUpdate{
		{ID: id3, Text: "C"},
		{ID: id1, Text: "A"},
		{ID: id2, Text: "B"},
	}

	plan, err := Reconcile(model.KindInstruction, current, desired, ids.NewFixedGenerator())
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, apply(t, current, plan))
}

func TestReconcile_EmptyDesiredDeletesAll(t *testing.T) {
	current := []model.Item{
		{ID: id3, Text: "C", Position: 2},
		{ID: id1, Text: "A", Position: 0},
		{ID: id2, Text: "B", Position: 1},
	}

	plan, err := Reconcile(model.KindInstruction, current, nil, ids.NewFixedGenerator())
	require.NoError(t, err)
	assert.Equal(t, []string{id1, id2, id3}, plan.Deletes, "deletes follow current position order")
	assert.Empty(t, plan.Updates)
	assert.Empty(t, plan.Inserts)
	assert.Equal(t, []string{}, apply(t, current, plan))
}

func TestReconcile_EmptyCurrentInsertsAll(t *testing.T) {
	desired := []model.ItemUpdate{{Text: "one"}, {Text: "two"}}

	plan, err := Reconcile(model.KindInstruction, nil, desired, ids.NewFixedGenerator(fresh, fresh2))
	require.NoError(t, err)
	assert.Equal(t, []Op{{ID: fresh, Text: "one", Position: 0}, {ID: fresh2, Text: "two", Position: 1}}, plan.Inserts)
	assert.NotNil(t, plan.Updates)
	assert.NotNil(t, plan.Deletes)
}

func TestReconcile_BothEmpty(t *testing.T) {
	plan, err := Reconcile(model.KindIngredient, nil, nil, ids.NewFixedGenerator())
	require.NoError(t, err)
	assert.True(t, plan.Empty())
}

func TestReconcile_StaleIDIsNotFound(t *testing.T) {
	current := items("A")
	desired := []model.ItemUpdate{
		{ID: id1, Text: "A"},
		{ID: id3, Text: "ghost"},
	}

	_, err := Reconcile(model.KindInstruction, current, desired, ids.NewFixedGenerator())
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))

	var e *model.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "instruction", e.Resource)
	assert.Equal(t, id3, e.ID)
}

func TestReconcile_DuplicateIDIsValidation(t *testing.T) {
	current := items("A", "B")
	desired := []model.ItemUpdate{
		{ID: id1, Text: "A"},
		{ID: id1, Text: "A again"},
	}

	_, err := Reconcile(model.KindIngredient, current, desired, ids.NewFixedGenerator())
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestReconcile_UnknownKind(t *testing.T) {
	_, err := Reconcile("garnish", nil, nil, ids.NewFixedGenerator())
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestReconcile_DoesNotGenerateOnError(t *testing.T) {
	gen := ids.NewFixedGenerator()
	_, err := Reconcile(model.KindIngredient, nil, []model.ItemUpdate{{Text: "x"}, {ID: id1, Text: "y"}}, gen)
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
}
