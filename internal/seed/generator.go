// Package seed generates a reproducible school dataset and loads it through
// the DAOs.
package seed

import (
	"fmt"
	"math/rand/v2"

	"github.com/go-playground/validator/v10"

	"github.com/leapstack-labs/schooldb/internal/model"
)

var courseCatalog = []model.Course{
	{Name: "Mathematics", Description: "Algebra, geometry and calculus"},
	{Name: "Biology", Description: "The study of living organisms"},
	{Name: "Chemistry", Description: "Substances and their reactions"},
	{Name: "Physics", Description: "Matter, energy and motion"},
	{Name: "History", Description: "Events of the past and their causes"},
	{Name: "Geography", Description: "Places, landscapes and people"},
	{Name: "Literature", Description: "Reading and analysing written works"},
	{Name: "Art", Description: "Drawing, painting and art history"},
	{Name: "Music", Description: "Theory, listening and performance"},
	{Name: "Computer Science", Description: "Algorithms, data and programming"},
}

var firstNames = []string{
	"Liam", "Olivia", "Noah", "Emma", "Oliver", "Charlotte", "Elijah", "Amelia", "James", "Ava",
	"William", "Sophia", "Benjamin", "Isabella", "Lucas", "Mia", "Henry", "Evelyn", "Theodore", "Harper",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez",
	"Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
}

// Options controls the size and shape of a generated dataset.
type Options struct {
	Groups       int    `validate:"gte=0"`
	Courses      int    `validate:"gte=0,lte=10"`
	Students     int    `validate:"gte=0"`
	MinGroupSize int    `validate:"gte=0"`
	MaxGroupSize int    `validate:"gtefield=MinGroupSize"`
	MinCourses   int    `validate:"gte=0"`
	MaxCourses   int    `validate:"gtefield=MinCourses"`
	Seed         uint64 `validate:"-"`
}

// DefaultOptions returns the standard dataset shape.
func DefaultOptions() Options {
	return Options{
		Groups:       10,
		Courses:      len(courseCatalog),
		Students:     200,
		MinGroupSize: 10,
		MaxGroupSize: 30,
		MinCourses:   1,
		MaxCourses:   3,
		Seed:         1,
	}
}

// Dataset is a consistent set of rows ready to be inserted in order.
type Dataset struct {
	Groups      []model.Group
	Courses     []model.Course
	Students    []model.Student
	Enrollments model.Enrollments
}

var validate = validator.New()

// Generate builds a dataset. The same options always yield the same data.
func Generate(opts Options) (*Dataset, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid seed options: %w", err)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x5eed))
	ds := &Dataset{Enrollments: model.Enrollments{}}

	for i := range opts.Groups {
		ds.Groups = append(ds.Groups, model.Group{ID: int64(i + 1), Name: groupName(rng)})
	}

	for i := range opts.Courses {
		c := courseCatalog[i]
		c.ID = int64(i + 1)
		ds.Courses = append(ds.Courses, c)
	}

	for i := range opts.Students {
		ds.Students = append(ds.Students, model.Student{
			ID:        int64(i + 1),
			FirstName: firstNames[rng.IntN(len(firstNames))],
			LastName:  lastNames[rng.IntN(len(lastNames))],
		})
	}

	assignGroups(rng, ds, opts)
	assignCourses(rng, ds, opts)
	return ds, nil
}

func groupName(rng *rand.Rand) string {
	return fmt.Sprintf("%c%c-%02d", 'A'+rng.IntN(26), 'A'+rng.IntN(26), rng.IntN(100))
}

// assignGroups fills groups in turn with a random number of randomly chosen
// students while students remain. Leftover students stay ungrouped.
func assignGroups(rng *rand.Rand, ds *Dataset, opts Options) {
	order := rng.Perm(len(ds.Students))
	next := 0
	for _, g := range ds.Groups {
		if next >= len(order) {
			break
		}
		size := opts.MinGroupSize + rng.IntN(opts.MaxGroupSize-opts.MinGroupSize+1)
		for ; size > 0 && next < len(order); size-- {
			ds.Students[order[next]] = ds.Students[order[next]].InGroup(g.ID)
			next++
		}
	}
}

func assignCourses(rng *rand.Rand, ds *Dataset, opts Options) {
	if len(ds.Courses) == 0 {
		return
	}
	maxCourses := min(opts.MaxCourses, len(ds.Courses))
	minCourses := min(opts.MinCourses, maxCourses)

	for _, s := range ds.Students {
		n := minCourses + rng.IntN(maxCourses-minCourses+1)
		for _, idx := range rng.Perm(len(ds.Courses))[:n] {
			ds.Enrollments.Add(s.ID, ds.Courses[idx].ID)
		}
	}
}
