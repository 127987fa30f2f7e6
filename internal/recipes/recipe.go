package recipes

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/mise/internal/model"
	"github.com/roach88/mise/internal/reconcile"
	"github.com/roach88/mise/internal/store"
)

// CreateRecipe stores a new recipe in one of the tenant's collections.
// Instructions and ingredients get positions in list order.
func (s *Service) CreateRecipe(ctx context.Context, tenant model.TenantContext, collectionID string, payload model.RecipeCreate) (model.RecipeFull, error) {
	defer s.metrics.ObserveDuration("create_recipe", time.Now())

	if err := model.ValidateCreate(&payload); err != nil {
		return model.RecipeFull{}, err
	}
	if !tenant.CanSee(collectionID) {
		return model.RecipeFull{}, model.NewNotFoundError("collection", collectionID)
	}

	now := s.clock.Now()
	r := model.Recipe{
		ID:           s.ids.Generate(),
		CollectionID: collectionID,
		CreatedBy:    tenant.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyFields(&r, payload.RecipeFields)

	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		if _, err := tx.GetCollection(ctx, collectionID); err != nil {
			return err
		}
		if err := tx.InsertRecipe(ctx, r); err != nil {
			return err
		}
		if err := tx.InsertItems(ctx, model.KindInstruction, r.ID, s.newItems(payload.Instructions)); err != nil {
			return err
		}
		return tx.InsertItems(ctx, model.KindIngredient, r.ID, s.newItems(payload.Ingredients))
	})
	if err != nil {
		return model.RecipeFull{}, err
	}

	s.logger.Info("recipe created",
		"recipe_id", r.ID,
		"collection_id", collectionID,
		"instructions", len(payload.Instructions),
		"ingredients", len(payload.Ingredients),
	)
	return s.load(ctx, tenant, r.ID)
}

func (s *Service) newItems(texts []string) []reconcile.Op {
	ops := make([]reconcile.Op, len(texts))
	for i, text := range texts {
		ops[i] = reconcile.Op{ID: s.ids.Generate(), Text: text, Position: i}
	}
	return ops
}

// GetRecipe returns a recipe with its instructions and ingredients.
func (s *Service) GetRecipe(ctx context.Context, tenant model.TenantContext, id string) (model.RecipeFull, error) {
	defer s.metrics.ObserveDuration("get_recipe", time.Now())
	return s.load(ctx, tenant, id)
}

// SetLiked sets or clears the liked flag.
func (s *Service) SetLiked(ctx context.Context, tenant model.TenantContext, id string, liked bool) (model.RecipeFull, error) {
	defer s.metrics.ObserveDuration("set_liked", time.Now())

	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		return tx.SetLiked(ctx, tenant, id, liked, s.clock.Now())
	})
	if err != nil {
		return model.RecipeFull{}, err
	}
	s.logger.Debug("recipe liked", "recipe_id", id, "liked", liked)
	return s.load(ctx, tenant, id)
}

// SetCoverImage records the cover image and thumbnail references of a
// recipe. The references are opaque asset ids; nil clears them. Both must
// be set or both cleared.
func (s *Service) SetCoverImage(ctx context.Context, tenant model.TenantContext, id string, image, thumbnail *string) (model.RecipeFull, error) {
	defer s.metrics.ObserveDuration("set_cover_image", time.Now())

	if (image == nil) != (thumbnail == nil) {
		return model.RecipeFull{}, model.NewValidationError("cover image and thumbnail must be set together")
	}
	if image != nil && (*image == "" || *thumbnail == "") {
		return model.RecipeFull{}, model.NewValidationError(fmt.Sprintf("cover references of recipe %s must not be empty", id))
	}

	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		return tx.SetCover(ctx, tenant, id, image, thumbnail, s.clock.Now())
	})
	if err != nil {
		return model.RecipeFull{}, err
	}
	return s.load(ctx, tenant, id)
}

// DeleteRecipe removes a recipe together with its child items.
func (s *Service) DeleteRecipe(ctx context.Context, tenant model.TenantContext, id string) error {
	defer s.metrics.ObserveDuration("delete_recipe", time.Now())

	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		return tx.DeleteRecipe(ctx, tenant, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("recipe deleted", "recipe_id", id)
	return nil
}

// CreateCollection stores a collection. Collection management belongs to
// the surrounding system; this exists so recipes have an owner.
func (s *Service) CreateCollection(ctx context.Context, name string) (model.Collection, error) {
	name = model.NormalizeText(name)
	if name == "" {
		return model.Collection{}, model.NewValidationError("collection name is required")
	}

	c := model.Collection{ID: s.ids.Generate(), Name: name, CreatedAt: s.clock.Now()}
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		return tx.CreateCollection(ctx, c)
	})
	if err != nil {
		return model.Collection{}, err
	}
	return c, nil
}
