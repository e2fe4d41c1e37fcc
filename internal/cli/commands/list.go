package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/schooldb/internal/model"
	"github.com/leapstack-labs/schooldb/internal/render"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List groups, students or courses",
		Long: `List groups, students or courses.

Output format follows --output (or the output setting); --format on a
subcommand overrides it. Supported formats: table, json, csv, markdown.`,
		Example: `  # Groups with at most 15 students
  schooldb list groups --max-students 15

  # Students of a course as JSON
  schooldb list students --course Biology --format json

  # Courses of one student as markdown
  schooldb list courses --student 7 -o markdown`,
	}

	cmd.AddCommand(newListGroupsCommand())
	cmd.AddCommand(newListStudentsCommand())
	cmd.AddCommand(newListCoursesCommand())
	return cmd
}

func newListGroupsCommand() *cobra.Command {
	var maxStudents int

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, func(cc *CommandContext, format render.Format) error {
				var groups []model.Group
				var err error
				if cmd.Flags().Changed("max-students") {
					groups, err = cc.Groups.FindByMaxStudentCount(cmd.Context(), maxStudents)
				} else {
					groups, err = cc.Groups.FindAll(cmd.Context())
				}
				if err != nil {
					return err
				}
				return render.Groups(cmd.OutOrStdout(), groups, format)
			})
		},
	}

	cmd.Flags().IntVar(&maxStudents, "max-students", 0, "Only groups with at most this many students")
	addFormatFlag(cmd)
	return cmd
}

func newListStudentsCommand() *cobra.Command {
	var course string

	cmd := &cobra.Command{
		Use:   "students",
		Short: "List students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, func(cc *CommandContext, format render.Format) error {
				var students []model.Student
				var err error
				if cmd.Flags().Changed("course") {
					students, err = cc.Students.FindByCourseName(cmd.Context(), course)
				} else {
					students, err = cc.Students.FindAll(cmd.Context())
				}
				if err != nil {
					return err
				}
				return render.Students(cmd.OutOrStdout(), students, format)
			})
		},
	}

	cmd.Flags().StringVar(&course, "course", "", "Only students enrolled in this course")
	addFormatFlag(cmd)
	return cmd
}

func newListCoursesCommand() *cobra.Command {
	var studentID int64

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, func(cc *CommandContext, format render.Format) error {
				var courses []model.Course
				var err error
				if cmd.Flags().Changed("student") {
					courses, err = cc.Courses.FindByStudentID(cmd.Context(), studentID)
				} else {
					courses, err = cc.Courses.FindAll(cmd.Context())
				}
				if err != nil {
					return err
				}
				return render.Courses(cmd.OutOrStdout(), courses, format)
			})
		},
	}

	cmd.Flags().Int64Var(&studentID, "student", 0, "Only courses of this student")
	addFormatFlag(cmd)
	return cmd
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String("format", "", "Output format (table|json|csv|markdown)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv", "markdown"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runList(cmd *cobra.Command, fn func(cc *CommandContext, format render.Format) error) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	flagValue, _ := cmd.Flags().GetString("format")
	format, err := cc.Format(flagValue)
	if err != nil {
		return err
	}
	return fn(cc, format)
}
