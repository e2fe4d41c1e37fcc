package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/schooldb/internal/model"
	"github.com/leapstack-labs/schooldb/internal/render"
	"github.com/leapstack-labs/schooldb/internal/seed"
)

// ReadDataset parses a workbook written by Exporter. Blank rows are skipped.
func ReadDataset(r io.Reader) (*seed.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	ds := &seed.Dataset{
		Groups:      []model.Group{},
		Courses:     []model.Course{},
		Students:    []model.Student{},
		Enrollments: model.Enrollments{},
	}

	err = eachRow(f, SheetGroups, 2, func(cells []string) error {
		id, err := parseID(cells[0])
		if err != nil {
			return err
		}
		ds.Groups = append(ds.Groups, model.Group{ID: id, Name: cells[1]})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachRow(f, SheetCourses, 3, func(cells []string) error {
		id, err := parseID(cells[0])
		if err != nil {
			return err
		}
		ds.Courses = append(ds.Courses, model.Course{ID: id, Name: cells[1], Description: cells[2]})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachRow(f, SheetStudents, 4, func(cells []string) error {
		id, err := parseID(cells[0])
		if err != nil {
			return err
		}
		s := model.Student{ID: id, FirstName: cells[2], LastName: cells[3]}
		if group := strings.TrimSpace(cells[1]); group != "" && group != render.NoGroup {
			groupID, err := parseID(group)
			if err != nil {
				return err
			}
			s = s.InGroup(groupID)
		}
		ds.Students = append(ds.Students, s)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachRow(f, SheetEnrollments, 2, func(cells []string) error {
		studentID, err := parseID(cells[0])
		if err != nil {
			return err
		}
		courseID, err := parseID(cells[1])
		if err != nil {
			return err
		}
		ds.Enrollments.Add(studentID, courseID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ds, nil
}

// eachRow calls fn for every data row of a sheet, padded to width cells.
func eachRow(f *excelize.File, sheet string, width int, fn func(cells []string) error) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}
		cells := make([]string, width)
		copy(cells, row)
		if err := fn(cells); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
