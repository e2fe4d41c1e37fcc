package dao

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/leapstack-labs/schooldb/internal/model"
	"github.com/leapstack-labs/schooldb/internal/store"
)

const (
	insertCourseSQL     = `INSERT INTO courses (id, name, description) VALUES (?, ?, ?)`
	saveCourseSQL       = `INSERT INTO courses (name, description) VALUES (?, ?) RETURNING id`
	findCoursesSQL      = `SELECT id, name, description FROM courses ORDER BY id`
	findCourseByNameSQL = `SELECT id, name, description FROM courses WHERE name = ?`

	findCoursesByStudentSQL = `
		SELECT courses.id, courses.name, courses.description
		FROM courses
		JOIN students_courses ON courses.id = students_courses.course_id
		WHERE students_courses.student_id = ?
		ORDER BY courses.id`
)

// CourseDAO reads and writes courses.
type CourseDAO struct {
	store *store.Store
}

// NewCourseDAO creates a CourseDAO on the given store.
func NewCourseDAO(s *store.Store) *CourseDAO {
	return &CourseDAO{store: s}
}

// InsertMany inserts courses with caller-supplied IDs.
func (d *CourseDAO) InsertMany(ctx context.Context, courses []model.Course) error {
	return insertBatch(ctx, d.store, "saving courses", "courses", insertCourseSQL, courses,
		func(c model.Course) int64 { return c.ID },
		func(c model.Course) []any { return []any{c.ID, c.Name, c.Description} },
	)
}

// Save inserts a course and sets its generated ID.
func (d *CourseDAO) Save(ctx context.Context, course *model.Course) error {
	const op = "saving course"
	if course == nil {
		return contractError(op, "nil course")
	}
	if err := validateEntity(op, course); err != nil {
		return err
	}

	id, err := insertReturningID(ctx, d.store, op, saveCourseSQL, course.Name, course.Description)
	if err != nil {
		return err
	}
	course.ID = id
	return nil
}

// FindAll returns every course ordered by ID.
func (d *CourseDAO) FindAll(ctx context.Context) ([]model.Course, error) {
	courses := []model.Course{}
	err := d.store.Do(ctx, func(q store.Querier) error {
		return sqlx.SelectContext(ctx, q, &courses, findCoursesSQL)
	})
	if err != nil {
		return nil, storeError("finding courses", err)
	}
	return courses, nil
}

// FindByStudentID returns the courses a student is enrolled in. An unknown
// student has no courses.
func (d *CourseDAO) FindByStudentID(ctx context.Context, studentID int64) ([]model.Course, error) {
	courses := []model.Course{}
	err := d.store.Do(ctx, func(q store.Querier) error {
		return sqlx.SelectContext(ctx, q, &courses, q.Rebind(findCoursesByStudentSQL), studentID)
	})
	if err != nil {
		return nil, storeError("finding courses by student id", err, studentID)
	}
	return courses, nil
}

// FindByName returns the course with the given name, or nil if there is none.
func (d *CourseDAO) FindByName(ctx context.Context, name string) (*model.Course, error) {
	const op = "finding course by name"
	if name == "" {
		return nil, contractError(op, "empty course name")
	}

	var course model.Course
	err := d.store.Do(ctx, func(q store.Querier) error {
		return sqlx.GetContext(ctx, q, &course, q.Rebind(findCourseByNameSQL), name)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(op, err)
	}
	return &course, nil
}
