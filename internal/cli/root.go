// Package cli implements the mise command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mise/internal/clock"
	"github.com/roach88/mise/internal/ids"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	ConfigPath  string
	Database    string
	Driver      string
	User        string
	Collections []string

	// IDs and Clock override the id generator and clock (for testing).
	// If nil, UUIDv7 ids and the system clock are used.
	IDs   ids.Generator
	Clock clock.Clock
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the mise CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mise",
		Short: "mise - recipe collection manager",
		Long: `Manage the recipes of shared collections.

Recipes are listed in keyset-paginated pages and edited with full-replace
updates that keep instruction and ingredient ids stable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigPath, "config", "", "path to a CUE config file")
	flags.StringVar(&opts.Database, "db", "", "database DSN (overrides config)")
	flags.StringVar(&opts.Driver, "driver", "", "database driver: sqlite3|pgx (overrides config)")
	flags.StringVar(&opts.User, "user", "cli", "acting user id")
	flags.StringArrayVar(&opts.Collections, "collection", nil, "visible collection id (repeatable)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewLikeCommand(opts))
	cmd.AddCommand(NewCoverCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewCollectionCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
