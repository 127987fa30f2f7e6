package cli

import (
	"github.com/spf13/cobra"
)

// NewCollectionCommand creates the collection command group.
func NewCollectionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Manage collections",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a collection",
		Long: `Create a collection and print its id.

Pass the id with --collection to see and edit the collection's recipes.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEnv(rootOpts, cmd, "failed to create collection", func(e *env) (any, error) {
				c, err := e.svc.CreateCollection(cmd.Context(), args[0])
				return collectionResult{c}, err
			})
		},
	})

	return cmd
}
