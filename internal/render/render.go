// Package render prints entity lists as tables, JSON, CSV or Markdown.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/schooldb/internal/model"
)

// Format selects the output encoding.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// NoGroup is printed in place of the group of an ungrouped student.
const NoGroup = "W/O"

// ParseFormat accepts a format name; "md" is an alias for markdown and the
// empty string means table.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, json, csv or markdown)", s)
}

// Groups renders a group list.
func Groups(w io.Writer, groups []model.Group, format Format) error {
	rows := make([]table.Row, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, table.Row{g.ID, g.Name})
	}
	return render(w, format, groups, table.Row{"ID", "Name"}, rows)
}

// Students renders a student list.
func Students(w io.Writer, students []model.Student, format Format) error {
	rows := make([]table.Row, 0, len(students))
	for _, s := range students {
		rows = append(rows, table.Row{s.ID, GroupLabel(s), s.FirstName, s.LastName})
	}
	return render(w, format, students, table.Row{"ID", "Group", "First name", "Last name"}, rows)
}

// Courses renders a course list.
func Courses(w io.Writer, courses []model.Course, format Format) error {
	rows := make([]table.Row, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, table.Row{c.ID, c.Name, c.Description})
	}
	return render(w, format, courses, table.Row{"ID", "Name", "Description"}, rows)
}

// GroupLabel returns the student's group ID, or NoGroup.
func GroupLabel(s model.Student) string {
	if !s.HasGroup() {
		return NoGroup
	}
	return strconv.FormatInt(*s.GroupID, 10)
}

func render(w io.Writer, format Format, entities any, header table.Row, rows []table.Row) error {
	switch format {
	case FormatTable, FormatJSON, FormatCSV, FormatMarkdown:
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entities)
	}

	if format == FormatCSV {
		return renderCSV(w, header, rows)
	}

	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(header)
	t.AppendRows(rows)

	if format == FormatMarkdown {
		t.RenderMarkdown()
		return nil
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

// renderCSV writes RFC 4180 records; the header is written even when rows is empty.
func renderCSV(w io.Writer, header table.Row, rows []table.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvRecord(header)); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(csvRecord(row)); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func csvRecord(row table.Row) []string {
	record := make([]string, len(row))
	for i, v := range row {
		record[i] = fmt.Sprint(v)
	}
	return record
}
