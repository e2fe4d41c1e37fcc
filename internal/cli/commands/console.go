package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/schooldb/internal/console"
)

// ConsoleOptions selects the setup steps run before the menu opens.
type ConsoleOptions struct {
	Init bool
	Seed bool
}

// NewConsoleCommand creates the console command.
func NewConsoleCommand() *cobra.Command {
	var opts ConsoleOptions

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Open the interactive menu",
		Long: `Open the interactive school menu.

The menu finds groups by student count, lists the students of a course,
adds and deletes students and moves students in and out of courses.
Interactive terminals get line editing and history; piped input is read
line by line.`,
		Example: `  # Open the menu on ./school.db
  schooldb console

  # Start from a fresh in-memory database with generated data
  schooldb console --database :memory: --init --seed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunConsole(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Init, "init", false, "Run the schema script before opening the menu")
	cmd.Flags().BoolVar(&opts.Seed, "seed", false, "Load generated data before opening the menu")
	cmd.Flags().String("schema", "", "Schema script used with --init (default: embedded script)")

	return cmd
}

// RunConsole opens the database and runs the menu on the command's input
// and output streams.
func RunConsole(cmd *cobra.Command, opts ConsoleOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.Init {
		if err := cc.InitSchema(cmd); err != nil {
			return err
		}
	}
	if opts.Seed {
		if _, err := cc.SeedDatabase(cmd); err != nil {
			return err
		}
	}

	in, err := console.NewLineReader(cmd.InOrStdin(), cmd.OutOrStdout(), cc.Cfg.HistoryFile)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	c := console.New(cc.Groups, cc.Courses, cc.Students, in, cmd.OutOrStdout(), cc.Logger)
	return c.Run(cmd.Context())
}
