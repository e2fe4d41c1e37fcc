// Package model defines the school entities persisted by the DAOs.
//
// Entities are plain records. Identity is the primary key: two values with
// the same ID describe the same row even if other fields differ.
package model

import (
	"github.com/go-playground/validator/v10"
)

// Group is a study group students may belong to.
type Group struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name" validate:"required,max=64"`
}

// Equal reports whether g and other identify the same group.
func (g Group) Equal(other Group) bool {
	return g.ID == other.ID
}

// Course is a subject students enroll in. Name is unique.
type Course struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name" validate:"required,max=64"`
	Description string `db:"description" json:"description" validate:"max=255"`
}

// Equal reports whether c and other identify the same course.
func (c Course) Equal(other Course) bool {
	return c.ID == other.ID
}

// Student is a person on the school roll.
// A nil GroupID means the student is not assigned to any group.
type Student struct {
	ID        int64  `db:"id" json:"id"`
	GroupID   *int64 `db:"group_id" json:"group_id,omitempty"`
	FirstName string `db:"first_name" json:"first_name" validate:"required,max=64"`
	LastName  string `db:"last_name" json:"last_name" validate:"required,max=64"`
}

// Equal reports whether s and other identify the same student.
func (s Student) Equal(other Student) bool {
	return s.ID == other.ID
}

// HasGroup reports whether the student is assigned to a group.
func (s Student) HasGroup() bool {
	return s.GroupID != nil
}

// InGroup returns a copy of s assigned to the given group.
func (s Student) InGroup(groupID int64) Student {
	s.GroupID = &groupID
	return s
}

// Enrollments maps a student ID to the IDs of the courses the student attends.
type Enrollments map[int64][]int64

// Add records that studentID attends courseID.
func (e Enrollments) Add(studentID, courseID int64) {
	e[studentID] = append(e[studentID], courseID)
}

// Pairs returns the total number of (student, course) pairs.
func (e Enrollments) Pairs() int {
	n := 0
	for _, courses := range e {
		n += len(courses)
	}
	return n
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the field constraints declared on an entity.
func Validate(entity any) error {
	return validate.Struct(entity)
}
