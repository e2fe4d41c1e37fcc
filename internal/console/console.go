// Package console implements the interactive school menu.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/schooldb/internal/dao"
	"github.com/leapstack-labs/schooldb/internal/model"
	"github.com/leapstack-labs/schooldb/internal/render"
)

// GroupFinder queries groups.
type GroupFinder interface {
	FindByMaxStudentCount(ctx context.Context, n int) ([]model.Group, error)
}

// CourseFinder queries courses.
type CourseFinder interface {
	FindAll(ctx context.Context) ([]model.Course, error)
	FindByName(ctx context.Context, name string) (*model.Course, error)
	FindByStudentID(ctx context.Context, studentID int64) ([]model.Course, error)
}

// StudentRepository queries and changes students.
type StudentRepository interface {
	Save(ctx context.Context, student *model.Student) error
	DeleteByID(ctx context.Context, studentID int64) error
	Enroll(ctx context.Context, studentID, courseID int64) error
	Unenroll(ctx context.Context, studentID, courseID int64) error
	FindAll(ctx context.Context) ([]model.Student, error)
	FindByCourseName(ctx context.Context, name string) ([]model.Student, error)
}

const menuPrompt = "Enter menu-letter >>> "

// Console runs the menu loop.
type Console struct {
	groups   GroupFinder
	courses  CourseFinder
	students StudentRepository
	in       LineReader
	out      io.Writer
	styles   Styles
	logger   zerolog.Logger
	title    cases.Caser
}

// New creates a console reading from in and writing to out.
func New(groups GroupFinder, courses CourseFinder, students StudentRepository, in LineReader, out io.Writer, logger zerolog.Logger) *Console {
	return &Console{
		groups:   groups,
		courses:  courses,
		students: students,
		in:       in,
		out:      out,
		styles:   NewStyles(out),
		logger:   logger.With().Str("session", uuid.NewString()).Logger(),
		title:    cases.Title(language.English),
	}
}

type action struct {
	key   string
	label string
	run   func(ctx context.Context) error
}

func (c *Console) actions() []action {
	return []action{
		{"1", "Find all groups with less or equals student count", c.findGroupsByMaxStudentCount},
		{"2", "Find all students related to course with given name", c.findStudentsByCourseName},
		{"3", "Add new student", c.addStudent},
		{"4", "Delete student by ID", c.deleteStudent},
		{"5", "Add a student to the course (from a list)", c.enrollStudent},
		{"6", "Remove the student from one of their courses", c.unenrollStudent},
	}
}

// Run shows the menu until the user quits or input ends. Failed actions are
// reported and the menu is shown again.
func (c *Console) Run(ctx context.Context) error {
	actions := c.actions()
	c.logger.Debug().Msg("console started")

	for {
		c.printMenu(actions)

		choice, err := c.read(menuPrompt)
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			c.println("Exiting...")
			return nil
		}
		if err != nil {
			return err
		}
		c.println("")

		if strings.EqualFold(choice, "q") {
			c.println("Exiting...")
			return nil
		}

		var selected *action
		for i := range actions {
			if actions[i].key == choice {
				selected = &actions[i]
				break
			}
		}
		if selected == nil {
			c.println(c.styles.Muted.Render(fmt.Sprintf("Unknown menu item %q", choice)))
			continue
		}

		if err := selected.run(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				c.println("Exiting...")
				return nil
			}
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, context.Canceled) {
				continue
			}
			c.logger.Warn().Err(err).Str("action", selected.key).Msg("console action failed")
			c.println(c.styles.Error.Render("Error: " + err.Error()))
		}
	}
}

func (c *Console) printMenu(actions []action) {
	c.println("")
	c.println(c.styles.Header.Render("*** MAIN MENU ***"))
	for _, a := range actions {
		c.println(fmt.Sprintf("%s. %s", a.key, a.label))
	}
	c.println("q. Exit program")
}

func (c *Console) println(s string) {
	_, _ = fmt.Fprintln(c.out, s)
}

func (c *Console) read(prompt string) (string, error) {
	c.in.SetPrompt(c.styles.Prompt.Render(prompt))
	line, err := c.in.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readText re-asks until a non-empty line is entered.
func (c *Console) readText(prompt string) (string, error) {
	for {
		text, err := c.read(prompt)
		if err != nil {
			return "", err
		}
		if text != "" {
			return text, nil
		}
	}
}

// readNumber re-asks until an integer is entered.
func (c *Console) readNumber(prompt string) (int64, error) {
	for {
		text, err := c.read(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			c.println(c.styles.Muted.Render(fmt.Sprintf("Number entered: %d", n)))
			return n, nil
		}
		prompt = "Error! Please enter number >>> "
	}
}

func (c *Console) findGroupsByMaxStudentCount(ctx context.Context) error {
	c.println("Find groups by max. students count:")
	n, err := c.readNumber("Enter students count >>> ")
	if err != nil {
		return err
	}
	if n < 0 {
		c.println("Students count can not be negative")
		return nil
	}

	groups, err := c.groups.FindByMaxStudentCount(ctx, int(n))
	if err != nil {
		return err
	}
	c.println("List of groups:")
	c.printGroups(groups)
	return nil
}

func (c *Console) findStudentsByCourseName(ctx context.Context) error {
	c.println("Find students by course name:")
	name, err := c.readText("Enter course name >>> ")
	if err != nil {
		return err
	}

	course, err := c.findCourse(ctx, name)
	if err != nil {
		return err
	}
	if course == nil {
		c.println("Course with given name doesn't exist. Check course name and try again")
		return nil
	}

	students, err := c.students.FindByCourseName(ctx, course.Name)
	if err != nil {
		return err
	}
	c.println(fmt.Sprintf("Students from course %q:", course.Name))
	c.printStudents(students)
	return nil
}

// findCourse looks a course up by the name as typed, then title-cased.
func (c *Console) findCourse(ctx context.Context, name string) (*model.Course, error) {
	course, err := c.courses.FindByName(ctx, name)
	if err != nil || course != nil {
		return course, err
	}
	if titled := c.title.String(name); titled != name {
		return c.courses.FindByName(ctx, titled)
	}
	return nil, nil
}

func (c *Console) addStudent(ctx context.Context) error {
	c.println("Add new student:")
	first, err := c.readText("Enter first name >>> ")
	if err != nil {
		return err
	}
	last, err := c.readText("Enter last name >>> ")
	if err != nil {
		return err
	}

	student := model.Student{FirstName: first, LastName: last}
	if err := c.students.Save(ctx, &student); err != nil {
		if errors.Is(err, dao.ErrContract) {
			c.println("Student was not saved. Please, try again")
		}
		return err
	}
	c.println(c.styles.Success.Render("Successfully added a new student:"))
	c.printStudent(student)
	return nil
}

func (c *Console) deleteStudent(ctx context.Context) error {
	c.println("Delete student by ID:")
	if err := c.listStudents(ctx); err != nil {
		return err
	}
	id, err := c.readNumber("Enter student ID >>> ")
	if err != nil {
		return err
	}

	if err := c.students.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			c.println("Student was not deleted. Check student ID and try again")
		}
		return err
	}
	c.println(c.styles.Success.Render("Student was successfully deleted"))
	return nil
}

func (c *Console) enrollStudent(ctx context.Context) error {
	c.println("Add student to course:")
	if err := c.listStudents(ctx); err != nil {
		return err
	}
	studentID, err := c.readNumber("Enter student ID >>> ")
	if err != nil {
		return err
	}

	courses, err := c.courses.FindAll(ctx)
	if err != nil {
		return err
	}
	c.printCourses(courses)
	courseID, err := c.readNumber("Enter course ID >>> ")
	if err != nil {
		return err
	}

	if err := c.students.Enroll(ctx, studentID, courseID); err != nil {
		if errors.Is(err, dao.ErrConstraint) {
			c.println("Student was not added to course. Check IDs and try again")
		}
		return err
	}
	c.println(c.styles.Success.Render("Student added to course successfully"))
	return nil
}

func (c *Console) unenrollStudent(ctx context.Context) error {
	c.println("Remove student course:")
	if err := c.listStudents(ctx); err != nil {
		return err
	}
	studentID, err := c.readNumber("Enter student ID >>> ")
	if err != nil {
		return err
	}

	courses, err := c.courses.FindByStudentID(ctx, studentID)
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		c.println("Student has no courses")
		return nil
	}
	c.printCourses(courses)
	courseID, err := c.readNumber("Enter course ID >>> ")
	if err != nil {
		return err
	}

	if err := c.students.Unenroll(ctx, studentID, courseID); err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			c.println("Student was not deleted from course. Check IDs and try again")
		}
		return err
	}
	c.println(c.styles.Success.Render("Student successfully deleted from course"))
	return nil
}

func (c *Console) listStudents(ctx context.Context) error {
	students, err := c.students.FindAll(ctx)
	if err != nil {
		return err
	}
	c.printStudents(students)
	return nil
}

func (c *Console) printGroups(groups []model.Group) {
	for _, g := range groups {
		c.println(fmt.Sprintf("Group ID: %d | Group name: %s", g.ID, g.Name))
	}
}

func (c *Console) printStudents(students []model.Student) {
	for _, s := range students {
		c.printStudent(s)
	}
}

func (c *Console) printStudent(s model.Student) {
	c.println(fmt.Sprintf("ID: %d | Group ID: %s | First name: %s | Last name: %s",
		s.ID, render.GroupLabel(s), s.FirstName, s.LastName))
}

func (c *Console) printCourses(courses []model.Course) {
	for _, course := range courses {
		c.println(fmt.Sprintf("Course ID: %d | Course name: %s | Course description: %s",
			course.ID, course.Name, course.Description))
	}
}
