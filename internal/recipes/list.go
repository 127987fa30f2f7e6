package recipes

import (
	"context"
	"time"

	"github.com/roach88/mise/internal/cursor"
	"github.com/roach88/mise/internal/model"
	"github.com/roach88/mise/internal/paging"
	"github.com/roach88/mise/internal/store"
)

// ListRequest selects one page of a recipe listing.
type ListRequest struct {
	Limit     int
	SortField model.SortField
	SortOrder model.SortOrder
	Cursor    string // empty for the first page
	Search    string // optional title substring, matched ignoring case
}

// ListRecipes returns one page of the recipes visible to tenant.
//
// Successive calls that feed each NextCursor back return every recipe
// exactly once as long as the data does not change in between. Concurrent
// writes between calls may shift rows across page boundaries; no snapshot
// is held across pages.
func (s *Service) ListRecipes(ctx context.Context, tenant model.TenantContext, req ListRequest) (paging.Page[model.RecipeLight], error) {
	defer s.metrics.ObserveDuration("list_recipes", time.Now())

	search := model.NormalizeText(req.Search)

	var page paging.Page[model.RecipeLight]
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		fetch := func(ctx context.Context, w paging.Window) ([]model.RecipeLight, error) {
			return tx.ListRecipes(ctx, tenant, search, w)
		}

		var err error
		page, err = paging.GetPage(ctx, paging.Request{
			Limit:     req.Limit,
			SortField: req.SortField,
			SortOrder: req.SortOrder,
			Cursor:    req.Cursor,
		}, s.limits, fetch, recipeKey)
		return err
	})
	if err != nil {
		return paging.Page[model.RecipeLight]{}, err
	}

	s.metrics.PageServed(req.SortField)
	s.logger.Debug("listed recipes",
		"sort_field", req.SortField,
		"sort_order", req.SortOrder,
		"count", len(page.Items),
		"has_more", page.HasMore(),
	)
	return page, nil
}

// recipeKey extracts the cursor boundary of a listing row.
func recipeKey(r model.RecipeLight, field model.SortField) (cursor.Value, string) {
	switch field {
	case model.SortTitle:
		return cursor.StringValue(r.Title), r.ID
	case model.SortCreatedAt:
		return cursor.TimeValue(r.CreatedAt), r.ID
	case model.SortUpdatedAt:
		return cursor.TimeValue(r.UpdatedAt), r.ID
	default:
		return cursor.Value{}, r.ID
	}
}
