package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/leapstack-labs/schooldb/internal/model"
)

// Steps of the load, in execution order.
const (
	StepGroups      = "groups"
	StepCourses     = "courses"
	StepStudents    = "students"
	StepEnrollments = "enrollments"
)

// GroupWriter inserts groups with fixed IDs.
type GroupWriter interface {
	InsertMany(ctx context.Context, groups []model.Group) error
}

// CourseWriter inserts courses with fixed IDs.
type CourseWriter interface {
	InsertMany(ctx context.Context, courses []model.Course) error
}

// StudentWriter inserts students with fixed IDs and their enrollments.
type StudentWriter interface {
	InsertMany(ctx context.Context, students []model.Student) error
	EnrollMany(ctx context.Context, enrollments model.Enrollments) error
}

// TxRunner runs fn inside a transaction carried by ctx.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// StepError reports which step of a load failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("seeding %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Loader writes a dataset groups first, then courses, students and
// enrollments.
type Loader struct {
	groups   GroupWriter
	courses  CourseWriter
	students StudentWriter
	tx       TxRunner
	logger   zerolog.Logger
}

// NewLoader creates a loader. tx may be nil when atomic loads are not needed.
func NewLoader(groups GroupWriter, courses CourseWriter, students StudentWriter, tx TxRunner, logger zerolog.Logger) *Loader {
	return &Loader{groups: groups, courses: courses, students: students, tx: tx, logger: logger}
}

// Load writes ds and stops at the first failing step. Steps already done
// stay written unless atomic is set, in which case the whole load runs in
// one transaction.
func (l *Loader) Load(ctx context.Context, ds *Dataset, atomic bool) error {
	if ds == nil {
		return fmt.Errorf("nil dataset")
	}
	if !atomic {
		return l.load(ctx, ds)
	}
	if l.tx == nil {
		return fmt.Errorf("atomic load requires a transaction runner")
	}
	return l.tx.InTx(ctx, func(ctx context.Context) error {
		return l.load(ctx, ds)
	})
}

func (l *Loader) load(ctx context.Context, ds *Dataset) error {
	steps := []struct {
		name  string
		count int
		run   func() error
	}{
		{StepGroups, len(ds.Groups), func() error { return l.groups.InsertMany(ctx, nonNil(ds.Groups)) }},
		{StepCourses, len(ds.Courses), func() error { return l.courses.InsertMany(ctx, nonNil(ds.Courses)) }},
		{StepStudents, len(ds.Students), func() error { return l.students.InsertMany(ctx, nonNil(ds.Students)) }},
		{StepEnrollments, ds.Enrollments.Pairs(), func() error {
			if ds.Enrollments == nil {
				return l.students.EnrollMany(ctx, model.Enrollments{})
			}
			return l.students.EnrollMany(ctx, ds.Enrollments)
		}},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			l.logger.Error().Err(err).Str("step", step.name).Msg("seed step failed")
			return &StepError{Step: step.name, Err: err}
		}
		l.logger.Info().Str("step", step.name).Int("rows", step.count).Msg("seed step done")
	}
	return nil
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
