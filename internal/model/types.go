package model

import "time"

// Recipe holds the scalar fields of a stored recipe.
type Recipe struct {
	ID             string     `json:"id"`
	CollectionID   string     `json:"collection_id"`
	CreatedBy      string     `json:"created_by"`
	Title          string     `json:"title"`
	Note           string     `json:"note"`
	CookTime       *int       `json:"cook_time,omitempty"` // minutes
	PrepTime       *int       `json:"prep_time,omitempty"` // minutes
	TotalTime      int        `json:"total_time"`          // derived: cook + prep
	Yield          *string    `json:"yield,omitempty"`
	Liked          bool       `json:"liked"`
	OriginalURL    *string    `json:"original_url,omitempty"`
	LastMade       *time.Time `json:"last_made,omitempty"`
	CoverImage     *string    `json:"cover_image,omitempty"`
	CoverThumbnail *string    `json:"cover_thumbnail,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// RecipeFull is a recipe together with its ordered child lists.
type RecipeFull struct {
	Recipe
	Instructions []Item `json:"instructions"`
	Ingredients  []Item `json:"ingredients"`
}

// Items returns the child list of the given kind.
func (r RecipeFull) Items(kind ItemKind) []Item {
	if kind == KindIngredient {
		return r.Ingredients
	}
	return r.Instructions
}

// RecipeLight is the listing projection of a recipe.
type RecipeLight struct {
	ID             string    `json:"id"`
	CollectionID   string    `json:"collection_id"`
	Title          string    `json:"title"`
	Liked          bool      `json:"liked"`
	CoverThumbnail *string   `json:"cover_thumbnail,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ItemKind distinguishes the two positioned child lists of a recipe.
type ItemKind string

const (
	KindInstruction ItemKind = "instruction"
	KindIngredient  ItemKind = "ingredient"
)

// ItemKinds lists every kind in reconciliation order.
var ItemKinds = []ItemKind{KindInstruction, KindIngredient}

// Valid reports whether k is a known kind.
func (k ItemKind) Valid() bool {
	return k == KindInstruction || k == KindIngredient
}

// Item is a positioned child of a recipe (an instruction or an ingredient).
type Item struct {
	ID       string `json:"id"`
	RecipeID string `json:"recipe_id"`
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// ItemUpdate is one entry of a client-submitted replacement list.
// An empty ID means "new item"; list order is the desired position order.
type ItemUpdate struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty" validate:"omitempty,uuid"`
	Text string `json:"text" yaml:"text" validate:"required"`
}

// RecipeFields are the caller-controlled scalar fields shared by create and
// update payloads. Omitted optional fields mean "reset to default".
type RecipeFields struct {
	Title       string  `json:"title" yaml:"title" validate:"required,max=255"`
	Note        string  `json:"note" yaml:"note"`
	CookTime    *int    `json:"cook_time,omitempty" yaml:"cook_time,omitempty" validate:"omitempty,min=0"`
	PrepTime    *int    `json:"prep_time,omitempty" yaml:"prep_time,omitempty" validate:"omitempty,min=0"`
	Yield       *string `json:"yield,omitempty" yaml:"yield,omitempty"`
	Liked       bool    `json:"liked" yaml:"liked"`
	OriginalURL *string `json:"original_url,omitempty" yaml:"original_url,omitempty" validate:"omitempty,url"`
}

// RecipeCreate is the payload for creating a recipe.
type RecipeCreate struct {
	RecipeFields `yaml:",inline"`
	Instructions []string `json:"instructions" yaml:"instructions" validate:"dive,required"`
	Ingredients  []string `json:"ingredients" yaml:"ingredients" validate:"dive,required"`
}

// RecipeUpdate is the full-replace payload for updating a recipe.
type RecipeUpdate struct {
	RecipeFields `yaml:",inline"`
	Instructions []ItemUpdate `json:"instructions" yaml:"instructions" validate:"dive"`
	Ingredients  []ItemUpdate `json:"ingredients" yaml:"ingredients" validate:"dive"`
}

// Items returns the desired child list of the given kind.
func (u RecipeUpdate) Items(kind ItemKind) []ItemUpdate {
	if kind == KindIngredient {
		return u.Ingredients
	}
	return u.Instructions
}

// TenantContext identifies the caller and the collections it may see.
// It is resolved outside this module and passed into every storage call.
type TenantContext struct {
	UserID        string
	CollectionIDs []string
}

// CanSee reports whether the tenant may access the given collection.
func (t TenantContext) CanSee(collectionID string) bool {
	for _, id := range t.CollectionIDs {
		if id == collectionID {
			return true
		}
	}
	return false
}

// Collection is the unit of tenant isolation.
type Collection struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
