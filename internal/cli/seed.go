package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mise/internal/model"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Count int
	Into  string
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a collection with sample recipes",
		Long: `Fill a collection with sample recipes, for trying out paging.

Example:
  mise seed --collection $COL --count 50
  mise list --collection $COL --sort title --order ASC --limit 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEnv(opts.RootOptions, cmd, "failed to seed recipes", func(e *env) (any, error) {
				return seed(cmd.Context(), e, opts)
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 20, "number of recipes to create")
	cmd.Flags().StringVar(&opts.Into, "into", "", "target collection id")

	return cmd
}

var sampleDishes = []struct {
	name        string
	ingredients []string
	steps       []string
}{
	{"Pancakes", []string{"Flour", "Milk", "Egg", "Butter"}, []string{"Whisk everything", "Rest 10 minutes", "Fry in butter"}},
	{"Tomato Soup", []string{"Tomatoes", "Onion", "Stock", "Cream"}, []string{"Sweat the onion", "Add tomatoes and stock", "Blend", "Stir in cream"}},
	{"Hot Chocolate", []string{"Milk", "Butter", "Chocolate"}, []string{"Warm the milk", "Melt in chocolate and butter"}},
	{"Guacamole", []string{"Avocado", "Lime", "Onion", "Salt"}, []string{"Mash avocado", "Fold in the rest"}},
	{"Omelette", []string{"Egg", "Butter", "Chives"}, []string{"Beat eggs", "Cook gently", "Fold"}},
}

func seed(ctx context.Context, e *env, opts *SeedOptions) (seedResult, error) {
	if opts.Count < 1 {
		return seedResult{}, model.NewValidationError(fmt.Sprintf("count must be at least 1, got %d", opts.Count))
	}
	into, err := targetCollection(opts.RootOptions, opts.Into)
	if err != nil {
		return seedResult{}, err
	}

	res := seedResult{CollectionID: into, IDs: make([]string, 0, opts.Count)}
	for i := 0; i < opts.Count; i++ {
		dish := sampleDishes[i%len(sampleDishes)]
		cook := 5 + (i%6)*5
		r, err := e.svc.CreateRecipe(ctx, e.tenant, into, model.RecipeCreate{
			RecipeFields: model.RecipeFields{
				Title:    fmt.Sprintf("%s #%d", dish.name, i+1),
				CookTime: &cook,
				Liked:    i%4 == 0,
			},
			Ingredients:  dish.ingredients,
			Instructions: dish.steps,
		})
		if err != nil {
			return seedResult{}, err
		}
		res.IDs = append(res.IDs, r.ID)
		e.out.VerboseLog("created %s %q", r.ID, r.Title)
	}
	res.Created = len(res.IDs)
	return res, nil
}
