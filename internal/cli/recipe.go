package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/mise/internal/model"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <recipe-id>",
		Short:         "Show a recipe with its ingredients and instructions",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEnv(rootOpts, cmd, "failed to get recipe", func(e *env) (any, error) {
				r, err := e.svc.GetRecipe(cmd.Context(), e.tenant, args[0])
				return recipeResult{r}, err
			})
		},
	}
}

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	File string
	Into string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a recipe from a YAML file",
		Long: `Create a recipe from a YAML file.

The recipe goes into --into, or the first --collection when --into is not
given. The target must be one of the visible collections.

Example file:
  title: Pancakes
  cook_time: 10
  ingredients: [Flour, Milk, Egg]
  instructions: [Mix, Fry]`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEnv(opts.RootOptions, cmd, "failed to create recipe", func(e *env) (any, error) {
				var payload model.RecipeCreate
				if err := readPayload(opts.File, cmd.InOrStdin(), &payload); err != nil {
					return nil, err
				}
				into, err := targetCollection(opts.RootOptions, opts.Into)
				if err != nil {
					return nil, err
				}
				r, err := e.svc.CreateRecipe(cmd.Context(), e.tenant, into, payload)
				return recipeResult{r}, err
			})
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "YAML payload file, - for stdin (required)")
	cmd.Flags().StringVar(&opts.Into, "into", "", "target collection id")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// targetCollection picks the collection new recipes go into.
func targetCollection(opts *RootOptions, into string) (string, error) {
	if into != "" {
		return into, nil
	}
	if len(opts.Collections) == 0 {
		return "", model.NewValidationError("no target collection: pass --into or --collection")
	}
	return opts.Collections[0], nil
}

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	File string
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <recipe-id>",
		Short: "Replace a recipe from a YAML file",
		Long: `Replace a recipe from a YAML file.

The file is the complete new state: omitted optional fields are cleared.
Items that keep their id are updated in place, items without an id are
added, and existing items missing from the file are removed.

Example file:
  title: Hot Chocolate
  ingredients:
    - text: Cream
    - id: 0190f5a2-...
      text: Butter`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEnv(opts.RootOptions, cmd, "failed to update recipe", func(e *env) (any, error) {
				var payload model.RecipeUpdate
				if err := readPayload(opts.File, cmd.InOrStdin(), &payload); err != nil {
					return nil, err
				}
				r, err := e.svc.UpdateRecipe(cmd.Context(), e.tenant, args[0], payload)
				return recipeResult{r}, err
			})
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "YAML payload file, - for stdin (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// NewLikeCommand creates the like command.
func NewLikeCommand(rootOpts *RootOptions) *cobra.Command {
	var unlike bool

	cmd := &cobra.Command{
		Use:           "like <recipe-id>",
		Short:         "Mark a recipe as liked",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEnv(rootOpts, cmd, "failed to like recipe", func(e *env) (any, error) {
				r, err := e.svc.SetLiked(cmd.Context(), e.tenant, args[0], !unlike)
				return recipeResult{r}, err
			})
		},
	}

	cmd.Flags().BoolVar(&unlike, "unlike", false, "clear the liked flag instead")

	return cmd
}

// CoverOptions holds flags for the cover command.
type CoverOptions struct {
	*RootOptions
	Image     string
	Thumbnail string
	Clear     bool
}

// NewCoverCommand creates the cover command.
func NewCoverCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CoverOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cover <recipe-id>",
		Short: "Set or clear a recipe's cover image references",
		Long: `Set or clear a recipe's cover image references.

The references are asset ids from the asset store; the images themselves are
not handled here.

Example:
  mise cover $ID --image assets/123.jpg --thumbnail assets/123_t.jpg
  mise cover $ID --clear`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEnv(opts.RootOptions, cmd, "failed to set cover", func(e *env) (any, error) {
				var image, thumbnail *string
				if !opts.Clear {
					image, thumbnail = &opts.Image, &opts.Thumbnail
				}
				r, err := e.svc.SetCoverImage(cmd.Context(), e.tenant, args[0], image, thumbnail)
				return recipeResult{r}, err
			})
		},
	}

	cmd.Flags().StringVar(&opts.Image, "image", "", "cover image asset id")
	cmd.Flags().StringVar(&opts.Thumbnail, "thumbnail", "", "thumbnail asset id")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "remove the cover")
	cmd.MarkFlagsMutuallyExclusive("clear", "image")
	cmd.MarkFlagsMutuallyExclusive("clear", "thumbnail")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <recipe-id>",
		Short:         "Delete a recipe and its items",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEnv(rootOpts, cmd, "failed to delete recipe", func(e *env) (any, error) {
				if err := e.svc.DeleteRecipe(cmd.Context(), e.tenant, args[0]); err != nil {
					return nil, err
				}
				return deletedResult{Deleted: args[0]}, nil
			})
		},
	}
}
