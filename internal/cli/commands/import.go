package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/schooldb/internal/export"
)

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load an exported xlsx workbook",
		Long: `Read a workbook written by the export command and load it into the
database. Rows keep their IDs, so the target tables should be empty.

Loading follows the same steps as seed and honours --atomic.`,
		Example: `  schooldb import --in school.xlsx --atomic`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			f, err := os.Open(in)
			if err != nil {
				return fmt.Errorf("failed to open workbook: %w", err)
			}
			defer func() { _ = f.Close() }()

			ds, err := export.ReadDataset(f)
			if err != nil {
				return err
			}
			if err := cc.Loader().Load(cmd.Context(), ds, cc.Cfg.Seed.Atomic); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d groups, %d courses, %d students, %d enrollments\n",
				len(ds.Groups), len(ds.Courses), len(ds.Students), ds.Enrollments.Pairs())
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Path of the xlsx file to read")
	cmd.Flags().Bool("atomic", false, "Load everything in one transaction")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
