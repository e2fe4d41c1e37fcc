package dao_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/schooldb/internal/dao"
	"github.com/leapstack-labs/schooldb/internal/model"
)

func enrollmentCount(t *testing.T, f *fixture) int {
	t.Helper()
	var n int
	require.NoError(t, f.store.DB().Get(&n, "SELECT COUNT(*) FROM students_courses"))
	return n
}

func seedSmall(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.groups.InsertMany(ctx, []model.Group{{ID: 1, Name: "G1"}}))
	require.NoError(t, f.courses.InsertMany(ctx, testCourses))
	require.NoError(t, f.students.InsertMany(ctx, []model.Student{
		{ID: 1, GroupID: ptr(1), FirstName: "Ann", LastName: "Lee"},
		{ID: 2, FirstName: "Bob", LastName: "Ray"},
	}))
}

func TestStudentDAO_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.groups.InsertMany(ctx, []model.Group{{ID: 1, Name: "G1"}}))
	require.NoError(t, f.students.InsertMany(ctx, []model.Student{{ID: 1, GroupID: ptr(1), FirstName: "A", LastName: "B"}}))
	require.NoError(t, f.courses.InsertMany(ctx, []model.Course{{ID: 1, Name: "C1", Description: "D"}}))
	require.NoError(t, f.students.Enroll(ctx, 1, 1))

	students, err := f.students.FindByCourseName(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, []model.Student{{ID: 1, GroupID: ptr(1), FirstName: "A", LastName: "B"}}, students)

	courses, err := f.courses.FindByStudentID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []model.Course{{ID: 1, Name: "C1", Description: "D"}}, courses)
}

func TestStudentDAO_InsertMany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedSmall(t, f)

	got, err := f.students.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].HasGroup())
	assert.Equal(t, int64(1), *got[0].GroupID)
	assert.False(t, got[1].HasGroup())

	err = f.students.InsertMany(ctx, []model.Student{{ID: 3, GroupID: ptr(42), FirstName: "Cy", LastName: "Ode"}})
	assert.ErrorIs(t, err, dao.ErrConstraint, "dangling group")

	assert.ErrorIs(t, f.students.InsertMany(ctx, nil), dao.ErrContract)
	assert.NoError(t, f.students.InsertMany(ctx, []model.Student{}))
}

func TestStudentDAO_Save(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedSmall(t, f)

	tests := []struct {
		name    string
		student *model.Student
		wantErr error
	}{
		{name: "with group", student: &model.Student{GroupID: ptr(1), FirstName: "Cy", LastName: "Ode"}},
		{name: "without group", student: &model.Student{FirstName: "Di", LastName: "Fox"}},
		{name: "unknown group", student: &model.Student{GroupID: ptr(9), FirstName: "Ed", LastName: "Gum"}, wantErr: dao.ErrConstraint},
		{name: "missing last name", student: &model.Student{FirstName: "Ed"}, wantErr: dao.ErrContract},
		{name: "nil", student: nil, wantErr: dao.ErrContract},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.students.Save(ctx, tt.student)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Greater(t, tt.student.ID, int64(2))
		})
	}
}

func TestStudentDAO_EnrollTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedSmall(t, f)

	require.NoError(t, f.students.Enroll(ctx, 1, 2))
	before := enrollmentCount(t, f)

	err := f.students.Enroll(ctx, 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, dao.ErrConstraint)
	assert.Equal(t, before, enrollmentCount(t, f))

	var daoErr *dao.Error
	require.ErrorAs(t, err, &daoErr)
	assert.Equal(t, []int64{1, 2}, daoErr.IDs)
}

func TestStudentDAO_EnrollDangling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedSmall(t, f)

	assert.ErrorIs(t, f.students.Enroll(ctx, 99, 1), dao.ErrConstraint)
	assert.ErrorIs(t, f.students.Enroll(ctx, 1, 99), dao.ErrConstraint)
	assert.Zero(t, enrollmentCount(t, f))
}

func TestStudentDAO_EnrollUnenroll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedSmall(t, f)

	require.NoError(t, f.students.Enroll(ctx, 1, 1))
	require.NoError(t, f.students.Enroll(ctx, 1, 2))
	require.NoError(t, f.students.Unenroll(ctx, 1, 1))

	courses, err := f.courses.FindByStudentID(ctx, 1)
	require.NoError(t, err)
	for _, c := range courses {
		assert.NotEqual(t, int64(1), c.ID)
	}
	assert.Len(t, courses, 1)

	err = f.students.Unenroll(ctx, 1, 1)
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestStudentDAO_EnrollMany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedSmall(t, f)

	require.NoError(t, f.students.EnrollMany(ctx, model.Enrollments{2: {1}, 1: {3, 2}}))
	assert.Equal(t, 3, enrollmentCount(t, f))

	assert.ErrorIs(t, f.students.EnrollMany(ctx, nil), dao.ErrContract)
	assert.NoError(t, f.students.EnrollMany(ctx, model.Enrollments{}))

	// Student 1 sorts first, so its pair is written before student 2 fails.
	err := f.students.EnrollMany(ctx, model.Enrollments{2: {1}, 1: {1}})
	assert.ErrorIs(t, err, dao.ErrConstraint)
	var daoErr *dao.Error
	require.ErrorAs(t, err, &daoErr)
	assert.Equal(t, []int64{2, 1}, daoErr.IDs)
	assert.Equal(t, 4, enrollmentCount(t, f))
}

func TestStudentDAO_DeleteByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedSmall(t, f)
	require.NoError(t, f.students.EnrollMany(ctx, model.Enrollments{1: {1, 2}, 2: {1}}))

	require.NoError(t, f.students.DeleteByID(ctx, 1))

	students, err := f.students.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, int64(2), students[0].ID)
	assert.Equal(t, 1, enrollmentCount(t, f), "enrollments of the deleted student are gone")

	err = f.students.DeleteByID(ctx, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.Equal(t, 1, enrollmentCount(t, f))

	err = f.students.DeleteByID(ctx, 404)
	assert.ErrorIs(t, err, dao.ErrNotFound)
	students, err = f.students.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestStudentDAO_FindByCourseName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedSmall(t, f)
	require.NoError(t, f.students.EnrollMany(ctx, model.Enrollments{2: {1}, 1: {1, 2}}))

	tests := []struct {
		name    string
		course  string
		wantIDs []int64
		wantErr error
	}{
		{name: "two students", course: "Mathematics", wantIDs: []int64{1, 2}},
		{name: "one student", course: "Biology", wantIDs: []int64{1}},
		{name: "no students", course: "Art", wantIDs: []int64{}},
		{name: "unknown course", course: "Alchemy", wantIDs: []int64{}},
		{name: "empty name", course: "", wantErr: dao.ErrContract},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.students.FindByCourseName(ctx, tt.course)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			ids := []int64{}
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
