package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/schooldb/internal/export"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the database to an xlsx workbook",
		Long: `Write groups, students, courses and enrollments to an xlsx workbook,
one sheet each. The workbook can be loaded again with the import command.`,
		Example: `  schooldb export --out school.xlsx`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			exp := export.NewExporter(cc.Groups, cc.Courses, cc.Students)
			if err := exp.WriteFile(cmd.Context(), out); err != nil {
				return err
			}
			cc.Logger.Info().Str("file", out).Msg("workbook written")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Path of the xlsx file to write")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
