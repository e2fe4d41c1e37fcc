package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/schooldb/internal/console"
	"github.com/leapstack-labs/schooldb/internal/dao"
	"github.com/leapstack-labs/schooldb/internal/model"
	"github.com/leapstack-labs/schooldb/internal/seed"
	"github.com/leapstack-labs/schooldb/internal/store"
	"github.com/leapstack-labs/schooldb/internal/testutil"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	s := testutil.NewStore(t)
	ds := &seed.Dataset{
		Groups:  []model.Group{{ID: 1, Name: "AB-01"}, {ID: 2, Name: "CD-02"}},
		Courses: []model.Course{{ID: 1, Name: "Art", Description: "Drawing"}, {ID: 2, Name: "Computer Science", Description: "Code"}},
		Students: []model.Student{
			model.Student{ID: 1, FirstName: "Ann", LastName: "Lee"}.InGroup(1),
			model.Student{ID: 2, FirstName: "Bob", LastName: "Ray"}.InGroup(1),
			{ID: 3, FirstName: "Cy", LastName: "Ode"},
		},
		Enrollments: model.Enrollments{1: {1}, 3: {1, 2}},
	}
	loader := seed.NewLoader(dao.NewGroupDAO(s), dao.NewCourseDAO(s), dao.NewStudentDAO(s), s, testutil.NewTestLogger(t))
	require.NoError(t, loader.Load(context.Background(), ds, true))
	return s
}

func runConsole(t *testing.T, s *store.Store, input string) string {
	t.Helper()
	var out bytes.Buffer
	c := console.New(
		dao.NewGroupDAO(s), dao.NewCourseDAO(s), dao.NewStudentDAO(s),
		console.NewScanReader(strings.NewReader(input), &out),
		&out, testutil.NewTestLogger(t),
	)
	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

func TestConsole_Actions(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		contains    []string
		notContains []string
		verify      func(t *testing.T, s *store.Store)
	}{
		{
			name:  "groups by max student count",
			input: "1\nabc\n0\nq\n",
			contains: []string{
				"*** MAIN MENU ***",
				"Error! Please enter number >>> ",
				"Number entered: 0",
				"Group ID: 2 | Group name: CD-02",
				"Exiting...",
			},
			notContains: []string{"Group ID: 1 |"},
		},
		{
			name:  "students by course name",
			input: "2\ncomputer science\nq\n",
			contains: []string{
				`Students from course "Computer Science":`,
				"ID: 3 | Group ID: W/O | First name: Cy | Last name: Ode",
			},
			notContains: []string{"First name: Ann"},
		},
		{
			name:     "unknown course",
			input:    "2\nAlchemy\nq\n",
			contains: []string{"Course with given name doesn't exist"},
		},
		{
			name:     "add student",
			input:    "3\nAnna-Lena\nvan der Berg\nq\n",
			contains: []string{"Successfully added a new student:", "First name: Anna-Lena | Last name: van der Berg"},
			verify: func(t *testing.T, s *store.Store) {
				students, err := dao.NewStudentDAO(s).FindAll(context.Background())
				require.NoError(t, err)
				require.Len(t, students, 4)
				assert.False(t, students[3].HasGroup())
				assert.Equal(t, "Anna-Lena", students[3].FirstName)
				assert.Equal(t, "van der Berg", students[3].LastName)
			},
		},
		{
			name:     "add student keeps mixed case",
			input:    "3\nRonan\nMcDonald\nq\n",
			contains: []string{"First name: Ronan | Last name: McDonald"},
		},
		{
			name:     "delete student",
			input:    "4\n3\nq\n",
			contains: []string{"Student was successfully deleted"},
			verify: func(t *testing.T, s *store.Store) {
				students, err := dao.NewStudentDAO(s).FindByCourseName(context.Background(), "Art")
				require.NoError(t, err)
				assert.Len(t, students, 1)
			},
		},
		{
			name:     "delete missing student",
			input:    "4\n99\nq\n",
			contains: []string{"Student was not deleted. Check student ID and try again", "Error: deleting student (ids 99): not found", "*** MAIN MENU ***"},
		},
		{
			name:  "enroll student",
			input: "5\n2\n2\nq\n",
			contains: []string{
				"Course ID: 2 | Course name: Computer Science | Course description: Code",
				"Student added to course successfully",
			},
			verify: func(t *testing.T, s *store.Store) {
				courses, err := dao.NewCourseDAO(s).FindByStudentID(context.Background(), 2)
				require.NoError(t, err)
				require.Len(t, courses, 1)
				assert.Equal(t, int64(2), courses[0].ID)
			},
		},
		{
			name:     "enroll twice",
			input:    "5\n1\n1\nq\n",
			contains: []string{"Student was not added to course. Check IDs and try again", "Error: enrolling student (ids 1, 1)"},
		},
		{
			name:     "unenroll student",
			input:    "6\n3\n2\nq\n",
			contains: []string{"Student successfully deleted from course"},
			verify: func(t *testing.T, s *store.Store) {
				courses, err := dao.NewCourseDAO(s).FindByStudentID(context.Background(), 3)
				require.NoError(t, err)
				assert.Equal(t, []model.Course{{ID: 1, Name: "Art", Description: "Drawing"}}, courses)
			},
		},
		{
			name:     "unenroll from course not taken",
			input:    "6\n1\n2\nq\n",
			contains: []string{"Student was not deleted from course. Check IDs and try again"},
		},
		{
			name:     "student without courses",
			input:    "6\n2\nq\n",
			contains: []string{"Student has no courses"},
		},
		{
			name:     "unknown menu item",
			input:    "9\nQ\n",
			contains: []string{`Unknown menu item "9"`, "Exiting..."},
		},
		{
			name:     "input ends mid action",
			input:    "3\nAnn\n",
			contains: []string{"Enter last name >>> ", "Exiting..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seededStore(t)
			out := runConsole(t, s, tt.input)

			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, out, unwanted)
			}
			if tt.verify != nil {
				tt.verify(t, s)
			}
		})
	}
}

func TestScanReader(t *testing.T) {
	var out bytes.Buffer
	r := console.NewScanReader(strings.NewReader("first\n"), &out)
	r.SetPrompt("> ")

	line, err := r.Readline()
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	_, err = r.Readline()
	assert.ErrorContains(t, err, "EOF")
	assert.Equal(t, "> > ", out.String())
	assert.NoError(t, r.Close())
}

func TestNewLineReader_Pipe(t *testing.T) {
	r, err := console.NewLineReader(strings.NewReader(""), &bytes.Buffer{}, "")
	require.NoError(t, err)
	assert.IsType(t, &console.ScanReader{}, r)
}
