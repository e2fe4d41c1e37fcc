// Package export writes the school roster to an xlsx workbook and reads it
// back as a seed dataset.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/schooldb/internal/model"
	"github.com/leapstack-labs/schooldb/internal/render"
)

// Sheet names, in workbook order.
const (
	SheetGroups      = "Groups"
	SheetStudents    = "Students"
	SheetCourses     = "Courses"
	SheetEnrollments = "Enrollments"
)

// GroupLister lists all groups.
type GroupLister interface {
	FindAll(ctx context.Context) ([]model.Group, error)
}

// CourseLister lists all courses and the courses of one student.
type CourseLister interface {
	FindAll(ctx context.Context) ([]model.Course, error)
	FindByStudentID(ctx context.Context, studentID int64) ([]model.Course, error)
}

// StudentLister lists all students.
type StudentLister interface {
	FindAll(ctx context.Context) ([]model.Student, error)
}

// Exporter reads the roster through the DAOs.
type Exporter struct {
	groups   GroupLister
	courses  CourseLister
	students StudentLister
}

// NewExporter creates an Exporter.
func NewExporter(groups GroupLister, courses CourseLister, students StudentLister) *Exporter {
	return &Exporter{groups: groups, courses: courses, students: students}
}

// Write builds the workbook and writes it to w.
func (e *Exporter) Write(ctx context.Context, w io.Writer) error {
	f, err := e.build(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile builds the workbook and saves it at path.
func (e *Exporter) WriteFile(ctx context.Context, path string) error {
	f, err := e.build(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func (e *Exporter) build(ctx context.Context) (*excelize.File, error) {
	groups, err := e.groups.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := e.courses.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	students, err := e.students.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheets := []struct {
		name   string
		header []any
		rows   [][]any
	}{
		{name: SheetGroups, header: []any{"ID", "Name"}},
		{name: SheetStudents, header: []any{"ID", "Group", "First name", "Last name"}},
		{name: SheetCourses, header: []any{"ID", "Name", "Description"}},
		{name: SheetEnrollments, header: []any{"Student ID", "Course ID"}},
	}

	for _, g := range groups {
		sheets[0].rows = append(sheets[0].rows, []any{g.ID, g.Name})
	}
	for _, s := range students {
		sheets[1].rows = append(sheets[1].rows, []any{s.ID, render.GroupLabel(s), s.FirstName, s.LastName})

		enrolled, err := e.courses.FindByStudentID(ctx, s.ID)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		for _, c := range enrolled {
			sheets[3].rows = append(sheets[3].rows, []any{s.ID, c.ID})
		}
	}
	for _, c := range courses {
		sheets[2].rows = append(sheets[2].rows, []any{c.ID, c.Name, c.Description})
	}

	for _, sheet := range sheets {
		if err := writeSheet(f, sheet.name, sheet.header, sheet.rows); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, name string, header []any, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", name, i+2, err)
		}
	}
	return nil
}
