package store

import (
	"context"
	"fmt"

	"github.com/roach88/mise/internal/model"
	"github.com/roach88/mise/internal/reconcile"
)

// itemTables maps each child kind to its table.
var itemTables = map[model.ItemKind]string{
	model.KindInstruction: "instructions",
	model.KindIngredient:  "ingredients",
}

func itemTable(kind model.ItemKind) (string, error) {
	table, ok := itemTables[kind]
	if !ok {
		return "", model.NewValidationError(fmt.Sprintf("unknown item kind %q", kind))
	}
	return table, nil
}

// ListItems returns a recipe's items of one kind in position order.
// The recipe must already have been loaded through a tenant-scoped call.
func (t *Tx) ListItems(ctx context.Context, kind model.ItemKind, recipeID string) ([]model.Item, error) {
	table, err := itemTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := t.query(ctx, `
		SELECT id, recipe_id, text, position
		FROM `+table+`
		WHERE recipe_id = ?
		ORDER BY position ASC, id ASC
	`, recipeID)
	if err != nil {
		return nil, model.WrapStorageError("list "+table, err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.RecipeID, &it.Text, &it.Position); err != nil {
			return nil, model.WrapStorageError("scan "+table, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, model.WrapStorageError("iterate "+table, err)
	}
	return items, nil
}

// InsertItems stores new items for a recipe.
func (t *Tx) InsertItems(ctx context.Context, kind model.ItemKind, recipeID string, ops []reconcile.Op) error {
	table, err := itemTable(kind)
	if err != nil {
		return err
	}

	for _, op := range ops {
		_, err := t.exec(ctx, `INSERT INTO `+table+` (id, recipe_id, text, position) VALUES (?, ?, ?, ?)`,
			op.ID, recipeID, op.Text, op.Position)
		if err != nil {
			return model.WrapStorageError("insert "+string(kind), err)
		}
	}
	return nil
}

// ApplyPlan executes a reconciliation plan against a recipe's items.
//
// Order: deletes, park survivors at negative positions, updates, inserts.
// Every update and delete must hit exactly one row of this recipe; a miss is
// NOT_FOUND. After the plan no item may remain parked.
func (t *Tx) ApplyPlan(ctx context.Context, recipeID string, plan reconcile.Plan) error {
	table, err := itemTable(plan.Kind)
	if err != nil {
		return err
	}
	resource := string(plan.Kind)

	for _, id := range plan.Deletes {
		err := t.execOne(ctx, "delete "+resource, resource, id,
			`DELETE FROM `+table+` WHERE id = ? AND recipe_id = ?`, id, recipeID)
		if err != nil {
			return err
		}
	}

	// -1 - p maps 0, 1, 2, ... to -1, -2, -3, ...: distinct, and disjoint
	// from every final position.
	if _, err := t.exec(ctx, `UPDATE `+table+` SET position = -1 - position WHERE recipe_id = ? AND position >= 0`, recipeID); err != nil {
		return model.WrapStorageError("park "+table, err)
	}

	for _, op := range plan.Updates {
		err := t.execOne(ctx, "update "+resource, resource, op.ID,
			`UPDATE `+table+` SET text = ?, position = ? WHERE id = ? AND recipe_id = ?`,
			op.Text, op.Position, op.ID, recipeID)
		if err != nil {
			return err
		}
	}

	if err := t.InsertItems(ctx, plan.Kind, recipeID, plan.Inserts); err != nil {
		return err
	}

	var parked int
	if err := t.queryRow(ctx, `SELECT COUNT(*) FROM `+table+` WHERE recipe_id = ? AND position < 0`, recipeID).Scan(&parked); err != nil {
		return model.WrapStorageError("verify "+table, err)
	}
	if parked != 0 {
		return model.NewInvariantError(fmt.Sprintf("%d %s(s) of recipe %s left without a position", parked, resource, recipeID))
	}
	return nil
}
