package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the school tables",
		Long: `Run the bootstrap script against the configured database.

The embedded script for the active driver creates the groups, students,
courses and enrollment tables if they do not exist. Use --schema to run
a different script instead.`,
		Example: `  # Create the tables in ./school.db
  schooldb init

  # Run a custom script
  schooldb init --schema ./sql/school.sql`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cc.InitSchema(cmd); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Schema initialized (%s)\n", cc.Store.Dialect().Name)
			return nil
		},
	}

	cmd.Flags().String("schema", "", "Path to a schema script (default: embedded script)")
	return cmd
}
