package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/mise/internal/model"
	"github.com/roach88/mise/internal/recipes"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Limit  int
	Sort   string
	Order  string
	Cursor string
	Search string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipes one page at a time",
		Long: `List the recipes of the visible collections one page at a time.

Pass the printed cursor back with the same --sort and --order to fetch the
next page. A cursor from a different sort is rejected.

Example:
  mise list --collection $COL --sort title --order ASC --limit 10
  mise list --collection $COL --sort title --order ASC --limit 10 --cursor eyJ2Ijo...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEnv(opts.RootOptions, cmd, "failed to list recipes", func(e *env) (any, error) {
				return listRecipes(cmd.Context(), e, opts)
			})
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size (0 uses the configured default)")
	cmd.Flags().StringVar(&opts.Sort, "sort", string(model.SortUpdatedAt), "sort field: title|updatedAt|createdAt")
	cmd.Flags().StringVar(&opts.Order, "order", string(model.Desc), "sort order: ASC|DESC")
	cmd.Flags().StringVar(&opts.Cursor, "cursor", "", "cursor from the previous page")
	cmd.Flags().StringVar(&opts.Search, "search", "", "only titles containing this text")

	return cmd
}

func listRecipes(ctx context.Context, e *env, opts *ListOptions) (pageResult, error) {
	field, err := model.ParseSortField(opts.Sort)
	if err != nil {
		return pageResult{}, err
	}
	order, err := model.ParseSortOrder(opts.Order)
	if err != nil {
		return pageResult{}, err
	}

	page, err := e.svc.ListRecipes(ctx, e.tenant, recipes.ListRequest{
		Limit:     opts.Limit,
		SortField: field,
		SortOrder: order,
		Cursor:    opts.Cursor,
		Search:    opts.Search,
	})
	if err != nil {
		return pageResult{}, err
	}
	return pageResult{Items: page.Items, NextCursor: page.NextCursor}, nil
}
