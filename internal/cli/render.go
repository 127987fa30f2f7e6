package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/roach88/mise/internal/model"
)

// recipeResult is a single recipe as printed by get, create and update.
type recipeResult struct {
	model.RecipeFull
}

func (r recipeResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "%s\n", r.Title)
	fmt.Fprintf(w, "  id:         %s\n", r.ID)
	fmt.Fprintf(w, "  collection: %s\n", r.CollectionID)
	if r.Liked {
		fmt.Fprintf(w, "  liked:      yes\n")
	}
	if r.TotalTime > 0 {
		fmt.Fprintf(w, "  total time: %d min\n", r.TotalTime)
	}
	if r.Yield != nil {
		fmt.Fprintf(w, "  yield:      %s\n", *r.Yield)
	}
	if r.OriginalURL != nil {
		fmt.Fprintf(w, "  source:     %s\n", *r.OriginalURL)
	}
	if r.CoverImage != nil {
		fmt.Fprintf(w, "  cover:      %s\n", *r.CoverImage)
	}
	fmt.Fprintf(w, "  updated:    %s\n", r.UpdatedAt.Format(time.RFC3339))
	if r.Note != "" {
		fmt.Fprintf(w, "\n%s\n", r.Note)
	}

	if len(r.Ingredients) > 0 {
		fmt.Fprintln(w, "\nIngredients:")
		for _, it := range r.Ingredients {
			fmt.Fprintf(w, "  - %s  [%s]\n", it.Text, it.ID)
		}
	}
	if len(r.Instructions) > 0 {
		fmt.Fprintln(w, "\nInstructions:")
		for _, it := range r.Instructions {
			fmt.Fprintf(w, "  %d. %s  [%s]\n", it.Position+1, it.Text, it.ID)
		}
	}
}

// pageResult is one page of a listing.
type pageResult struct {
	Items      []model.RecipeLight `json:"items"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

func (p pageResult) renderText(w io.Writer) {
	if len(p.Items) == 0 {
		fmt.Fprintln(w, "No recipes.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tLIKED\tUPDATED")
	for _, r := range p.Items {
		liked := ""
		if r.Liked {
			liked = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Title, liked, r.UpdatedAt.Format(time.RFC3339))
	}
	tw.Flush()

	if p.NextCursor != "" {
		fmt.Fprintf(w, "\nnext: --cursor %s\n", p.NextCursor)
	}
}

// collectionResult is a created collection.
type collectionResult struct {
	model.Collection
}

func (c collectionResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "Created collection %q: %s\n", c.Name, c.ID)
}

// deletedResult confirms a deletion.
type deletedResult struct {
	Deleted string `json:"deleted"`
}

func (d deletedResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "Deleted recipe %s\n", d.Deleted)
}

// seedResult summarizes a seed run.
type seedResult struct {
	CollectionID string   `json:"collection_id"`
	Created      int      `json:"created"`
	IDs          []string `json:"ids"`
}

func (s seedResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "Seeded %d recipes into %s\n", s.Created, s.CollectionID)
}
