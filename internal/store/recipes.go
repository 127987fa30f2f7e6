package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/roach88/mise/internal/keyset"
	"github.com/roach88/mise/internal/model"
	"github.com/roach88/mise/internal/paging"
)

var recipeColumns = []string{
	"id", "collection_id", "created_by", "title", "note",
	"cook_time", "prep_time", "total_time", "yield", "liked",
	"original_url", "last_made", "cover_image", "cover_thumbnail",
	"created_at", "updated_at",
}

var recipeLightColumns = []string{
	"id", "collection_id", "title", "liked", "cover_thumbnail", "created_at", "updated_at",
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row scanner) (model.Recipe, error) {
	var (
		r                          model.Recipe
		cookTime, prepTime         sql.NullInt64
		yield, originalURL         sql.NullString
		coverImage, coverThumbnail sql.NullString
		lastMade                   sql.NullInt64
		createdAt, updatedAt       int64
	)
	err := row.Scan(
		&r.ID, &r.CollectionID, &r.CreatedBy, &r.Title, &r.Note,
		&cookTime, &prepTime, &r.TotalTime, &yield, &r.Liked,
		&originalURL, &lastMade, &coverImage, &coverThumbnail,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return model.Recipe{}, err
	}

	r.CookTime = intPtr(cookTime)
	r.PrepTime = intPtr(prepTime)
	r.Yield = stringPtr(yield)
	r.OriginalURL = stringPtr(originalURL)
	r.LastMade = timePtr(lastMade)
	r.CoverImage = stringPtr(coverImage)
	r.CoverThumbnail = stringPtr(coverThumbnail)
	r.CreatedAt = fromMicros(createdAt)
	r.UpdatedAt = fromMicros(updatedAt)
	return r, nil
}

// scanRecipeLight tolerates NULL sort columns so the pagination layer can
// report them as an invariant violation instead of a scan failure.
func scanRecipeLight(row scanner) (model.RecipeLight, error) {
	var (
		r                    model.RecipeLight
		title                sql.NullString
		coverThumbnail       sql.NullString
		createdAt, updatedAt sql.NullInt64
	)
	if err := row.Scan(&r.ID, &r.CollectionID, &title, &r.Liked, &coverThumbnail, &createdAt, &updatedAt); err != nil {
		return model.RecipeLight{}, err
	}

	r.Title = title.String
	r.CoverThumbnail = stringPtr(coverThumbnail)
	if createdAt.Valid {
		r.CreatedAt = fromMicros(createdAt.Int64)
	}
	if updatedAt.Valid {
		r.UpdatedAt = fromMicros(updatedAt.Int64)
	}
	return r, nil
}

// LoadRecipe returns a recipe visible to the tenant.
func (t *Tx) LoadRecipe(ctx context.Context, tenant model.TenantContext, id string) (model.Recipe, error) {
	query, args, err := t.compiler.Compile(keyset.Select{
		From:    "recipes",
		Columns: recipeColumns,
		Filters: []keyset.Predicate{keyset.Equals{Column: "id", Value: id}, scope(tenant)},
		Limit:   1,
	})
	if err != nil {
		return model.Recipe{}, fmt.Errorf("load recipe: %w", err)
	}

	r, err := scanRecipe(t.tx.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Recipe{}, model.NewNotFoundError("recipe", id)
	}
	if err != nil {
		return model.Recipe{}, model.WrapStorageError("load recipe", err)
	}
	return r, nil
}

// InsertRecipe stores a new recipe. Its collection must exist.
func (t *Tx) InsertRecipe(ctx context.Context, r model.Recipe) error {
	_, err := t.exec(ctx, `
		INSERT INTO recipes
		(id, collection_id, created_by, title, title_folded, note, cook_time, prep_time, yield, liked,
		 original_url, last_made, cover_image, cover_thumbnail, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.CollectionID,
		r.CreatedBy,
		r.Title,
		model.FoldText(r.Title),
		r.Note,
		nullInt(r.CookTime),
		nullInt(r.PrepTime),
		nullString(r.Yield),
		r.Liked,
		nullString(r.OriginalURL),
		nullMicros(r.LastMade),
		nullString(r.CoverImage),
		nullString(r.CoverThumbnail),
		toMicros(r.CreatedAt),
		toMicros(r.UpdatedAt),
	)
	return model.WrapStorageError("insert recipe", err)
}

// UpdateRecipe overwrites the caller-controlled scalar fields and
// updated_at. created_at, created_by and cover references are untouched.
func (t *Tx) UpdateRecipe(ctx context.Context, tenant model.TenantContext, r model.Recipe) error {
	return t.updateScoped(ctx, "update recipe", tenant, r.ID, map[string]any{
		"title":        r.Title,
		"title_folded": model.FoldText(r.Title),
		"note":         r.Note,
		"cook_time":    nullInt(r.CookTime),
		"prep_time":    nullInt(r.PrepTime),
		"yield":        nullString(r.Yield),
		"liked":        r.Liked,
		"original_url": nullString(r.OriginalURL),
		"updated_at":   toMicros(r.UpdatedAt),
	})
}

// SetLiked sets the liked flag.
func (t *Tx) SetLiked(ctx context.Context, tenant model.TenantContext, id string, liked bool, now time.Time) error {
	return t.updateScoped(ctx, "set liked", tenant, id, map[string]any{
		"liked":      liked,
		"updated_at": toMicros(now),
	})
}

// SetCover sets or clears the cover image references.
func (t *Tx) SetCover(ctx context.Context, tenant model.TenantContext, id string, image, thumbnail *string, now time.Time) error {
	return t.updateScoped(ctx, "set cover", tenant, id, map[string]any{
		"cover_image":     nullString(image),
		"cover_thumbnail": nullString(thumbnail),
		"updated_at":      toMicros(now),
	})
}

// DeleteRecipe removes a recipe; its instructions and ingredients cascade.
func (t *Tx) DeleteRecipe(ctx context.Context, tenant model.TenantContext, id string) error {
	where, args, err := t.compiler.Where(keyset.Equals{Column: "id", Value: id}, scope(tenant))
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return t.execOne(ctx, "delete recipe", "recipe", id, "DELETE FROM recipes WHERE "+where, args...)
}

// ListRecipes returns one keyset window of recipes visible to the tenant,
// optionally restricted to titles containing search, ignoring case.
func (t *Tx) ListRecipes(ctx context.Context, tenant model.TenantContext, search string, w paging.Window) ([]model.RecipeLight, error) {
	filters := []keyset.Predicate{scope(tenant)}
	if search != "" {
		filters = append(filters, keyset.Contains{Column: "title_folded", Substring: model.FoldText(search)})
	}

	query, args, err := t.compiler.Compile(keyset.Select{
		From:    "recipes",
		Columns: recipeLightColumns,
		Filters: filters,
		Sort:    w.Sort,
		Seek:    w.Seek,
		Limit:   w.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, model.WrapStorageError("list recipes", err)
	}
	defer rows.Close()

	recipes := []model.RecipeLight{}
	for rows.Next() {
		r, err := scanRecipeLight(rows)
		if err != nil {
			return nil, model.WrapStorageError("scan recipe", err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, model.WrapStorageError("iterate recipes", err)
	}
	return recipes, nil
}

// updateScoped sets columns on one tenant-visible recipe. Column names are
// constants from this package, emitted in sorted order.
func (t *Tx) updateScoped(ctx context.Context, op string, tenant model.TenantContext, id string, set map[string]any) error {
	cols := make([]string, 0, len(set))
	for col := range set {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	assignments := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1+len(tenant.CollectionIDs))
	for i, col := range cols {
		assignments[i] = col + " = ?"
		args = append(args, set[col])
	}

	where, whereArgs, err := t.compiler.Where(keyset.Equals{Column: "id", Value: id}, scope(tenant))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	args = append(args, whereArgs...)

	query := "UPDATE recipes SET " + strings.Join(assignments, ", ") + " WHERE " + where
	return t.execOne(ctx, op, "recipe", id, query, args...)
}

// LoadRecipeFull returns a visible recipe together with both child lists.
func (t *Tx) LoadRecipeFull(ctx context.Context, tenant model.TenantContext, id string) (model.RecipeFull, error) {
	r, err := t.LoadRecipe(ctx, tenant, id)
	if err != nil {
		return model.RecipeFull{}, err
	}
	full := model.RecipeFull{Recipe: r}
	if full.Instructions, err = t.ListItems(ctx, model.KindInstruction, id); err != nil {
		return model.RecipeFull{}, err
	}
	if full.Ingredients, err = t.ListItems(ctx, model.KindIngredient, id); err != nil {
		return model.RecipeFull{}, err
	}
	return full, nil
}
