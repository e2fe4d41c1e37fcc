package dao

import (
	"context"
	"maps"
	"slices"

	"github.com/jmoiron/sqlx"

	"github.com/leapstack-labs/schooldb/internal/model"
	"github.com/leapstack-labs/schooldb/internal/store"
)

const (
	insertStudentSQL = `INSERT INTO students (id, group_id, first_name, last_name) VALUES (?, ?, ?, ?)`
	saveStudentSQL   = `INSERT INTO students (group_id, first_name, last_name) VALUES (?, ?, ?) RETURNING id`
	findStudentsSQL  = `SELECT id, group_id, first_name, last_name FROM students ORDER BY id`
	enrollSQL        = `INSERT INTO students_courses (student_id, course_id) VALUES (?, ?)`
	unenrollSQL      = `DELETE FROM students_courses WHERE student_id = ? AND course_id = ?`

	deleteStudentEnrollmentsSQL = `DELETE FROM students_courses WHERE student_id = ?`
	deleteStudentSQL            = `DELETE FROM students WHERE id = ?`

	findStudentsByCourseNameSQL = `
		SELECT students.id, students.group_id, students.first_name, students.last_name
		FROM students
		JOIN students_courses ON students.id = students_courses.student_id
		JOIN courses ON courses.id = students_courses.course_id
		WHERE courses.name = ?
		ORDER BY students.id`
)

// StudentDAO reads and writes students and their course enrollments.
type StudentDAO struct {
	store *store.Store
}

// NewStudentDAO creates a StudentDAO on the given store.
func NewStudentDAO(s *store.Store) *StudentDAO {
	return &StudentDAO{store: s}
}

// InsertMany inserts students with caller-supplied IDs and group IDs.
func (d *StudentDAO) InsertMany(ctx context.Context, students []model.Student) error {
	return insertBatch(ctx, d.store, "saving students", "students", insertStudentSQL, students,
		func(s model.Student) int64 { return s.ID },
		func(s model.Student) []any { return []any{s.ID, s.GroupID, s.FirstName, s.LastName} },
	)
}

// Save inserts a student and sets its generated ID. The group is optional.
func (d *StudentDAO) Save(ctx context.Context, student *model.Student) error {
	const op = "saving student"
	if student == nil {
		return contractError(op, "nil student")
	}
	if err := validateEntity(op, student); err != nil {
		return err
	}

	id, err := insertReturningID(ctx, d.store, op, saveStudentSQL,
		student.GroupID, student.FirstName, student.LastName)
	if err != nil {
		return err
	}
	student.ID = id
	return nil
}

// EnrollMany inserts one enrollment row per (student, course) pair. Students
// are processed in ascending ID order, courses in the order given. It stops
// at the first failing pair; earlier pairs stay written.
func (d *StudentDAO) EnrollMany(ctx context.Context, enrollments model.Enrollments) error {
	const op = "saving enrollments"
	if enrollments == nil {
		return contractError(op, "nil enrollments")
	}
	if enrollments.Pairs() == 0 {
		return nil
	}

	var failed []int64
	err := d.store.Do(ctx, func(q store.Querier) error {
		stmt, err := q.PreparexContext(ctx, q.Rebind(enrollSQL))
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, studentID := range slices.Sorted(maps.Keys(enrollments)) {
			for _, courseID := range enrollments[studentID] {
				if _, err := stmt.ExecContext(ctx, studentID, courseID); err != nil {
					failed = []int64{studentID, courseID}
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return storeError(op, err, failed...)
	}

	logger := d.store.Logger()
	logger.Debug().Int("pairs", enrollments.Pairs()).Msg("enrollments inserted")
	return nil
}

// Enroll adds a student to a course.
func (d *StudentDAO) Enroll(ctx context.Context, studentID, courseID int64) error {
	err := d.store.Do(ctx, func(q store.Querier) error {
		_, err := q.ExecContext(ctx, q.Rebind(enrollSQL), studentID, courseID)
		return err
	})
	if err != nil {
		return storeError("enrolling student", err, studentID, courseID)
	}
	return nil
}

// Unenroll removes a student from a course. It fails with ErrNotFound when
// the student was not enrolled.
func (d *StudentDAO) Unenroll(ctx context.Context, studentID, courseID int64) error {
	const op = "unenrolling student"
	var affected int64
	err := d.store.Do(ctx, func(q store.Querier) error {
		result, err := q.ExecContext(ctx, q.Rebind(unenrollSQL), studentID, courseID)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return storeError(op, err, studentID, courseID)
	}
	if affected == 0 {
		return notFoundError(op, studentID, courseID)
	}
	return nil
}

// DeleteByID deletes a student together with the student's enrollments. It
// fails with ErrNotFound when no such student exists.
func (d *StudentDAO) DeleteByID(ctx context.Context, studentID int64) error {
	const op = "deleting student"
	var affected int64
	err := d.store.Do(ctx, func(q store.Querier) error {
		if _, err := q.ExecContext(ctx, q.Rebind(deleteStudentEnrollmentsSQL), studentID); err != nil {
			return err
		}
		result, err := q.ExecContext(ctx, q.Rebind(deleteStudentSQL), studentID)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return storeError(op, err, studentID)
	}
	if affected == 0 {
		return notFoundError(op, studentID)
	}
	return nil
}

// FindAll returns every student ordered by ID.
func (d *StudentDAO) FindAll(ctx context.Context) ([]model.Student, error) {
	students := []model.Student{}
	err := d.store.Do(ctx, func(q store.Querier) error {
		return sqlx.SelectContext(ctx, q, &students, findStudentsSQL)
	})
	if err != nil {
		return nil, storeError("finding students", err)
	}
	return students, nil
}

// FindByCourseName returns the students enrolled in the named course. An
// unknown course has no students.
func (d *StudentDAO) FindByCourseName(ctx context.Context, name string) ([]model.Student, error) {
	const op = "finding students by course name"
	if name == "" {
		return nil, contractError(op, "empty course name")
	}

	students := []model.Student{}
	err := d.store.Do(ctx, func(q store.Querier) error {
		return sqlx.SelectContext(ctx, q, &students, q.Rebind(findStudentsByCourseNameSQL), name)
	})
	if err != nil {
		return nil, storeError(op+": "+name, err)
	}
	return students, nil
}
