package recipes

import (
	"context"
	"time"

	"github.com/roach88/mise/internal/model"
	"github.com/roach88/mise/internal/reconcile"
	"github.com/roach88/mise/internal/store"
)

// UpdateRecipe replaces a recipe's scalar fields and both child lists in
// one transaction, then returns the freshly reloaded recipe.
//
// The payload has full-replace semantics: an omitted optional field resets
// to its default. Each desired item that carries an id must already belong
// to the recipe; items absent from the payload are deleted and items
// without an id are inserted. Any failure rolls back everything.
//
// The reload runs after the commit in its own transaction. If the recipe
// is deleted in between, the update has still happened and the reload
// error is returned.
func (s *Service) UpdateRecipe(ctx context.Context, tenant model.TenantContext, id string, payload model.RecipeUpdate) (model.RecipeFull, error) {
	defer s.metrics.ObserveDuration("update_recipe", time.Now())

	if err := model.ValidateUpdate(&payload); err != nil {
		s.metrics.UpdateFinished(err)
		return model.RecipeFull{}, err
	}

	var plans []reconcile.Plan
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		current, err := tx.LoadRecipeFull(ctx, tenant, id)
		if err != nil {
			return err
		}

		r := current.Recipe
		applyFields(&r, payload.RecipeFields)
		r.UpdatedAt = s.clock.Now()
		if err := tx.UpdateRecipe(ctx, tenant, r); err != nil {
			return err
		}

		plans = plans[:0]
		for _, kind := range model.ItemKinds {
			plan, err := reconcile.Reconcile(kind, current.Items(kind), payload.Items(kind), s.ids)
			if err != nil {
				return err
			}
			s.logger.Debug("reconciled items",
				"recipe_id", id,
				"kind", kind,
				"inserts", len(plan.Inserts),
				"updates", len(plan.Updates),
				"deletes", len(plan.Deletes),
			)
			if err := tx.ApplyPlan(ctx, id, plan); err != nil {
				return err
			}
			plans = append(plans, plan)
		}
		return nil
	})
	s.metrics.UpdateFinished(err)
	if err != nil {
		return model.RecipeFull{}, err
	}

	var inserts, updates, deletes int
	for _, plan := range plans {
		s.metrics.PlanApplied(plan)
		inserts += len(plan.Inserts)
		updates += len(plan.Updates)
		deletes += len(plan.Deletes)
	}
	s.logger.Info("recipe updated",
		"recipe_id", id,
		"inserts", inserts,
		"updates", updates,
		"deletes", deletes,
	)

	return s.load(ctx, tenant, id)
}

// applyFields overwrites every caller-controlled scalar field.
func applyFields(r *model.Recipe, f model.RecipeFields) {
	r.Title = f.Title
	r.Note = f.Note
	r.CookTime = f.CookTime
	r.PrepTime = f.PrepTime
	r.Yield = f.Yield
	r.Liked = f.Liked
	r.OriginalURL = f.OriginalURL
}

// load reads a recipe in its own transaction.
func (s *Service) load(ctx context.Context, tenant model.TenantContext, id string) (model.RecipeFull, error) {
	var full model.RecipeFull
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		full, err = tx.LoadRecipeFull(ctx, tenant, id)
		return err
	})
	if err != nil {
		return model.RecipeFull{}, err
	}
	return full, nil
}
