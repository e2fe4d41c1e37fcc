package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/schooldb/internal/cli/config"
	"github.com/leapstack-labs/schooldb/internal/model"
)

// execute runs the root command with args and returns everything written
// to stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func dbArgs(path string) []string {
	return []string{"--database", path, "--log-level", "disabled"}
}

func run(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := execute(t, "", append(args, dbArgs(db)...)...)
	require.NoError(t, err, out)
	return out
}

func TestRootCommand_Metadata(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "schooldb", cmd.Use)
	assert.Equal(t, Version, cmd.Version)

	for _, flag := range []string{"config", "driver", "database", "db-host", "db-port", "db-user", "db-name", "log-level", "log-format", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"console", "init", "migrate", "seed", "list", "export", "import", "version", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestSeedAndList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "school.db")

	out := run(t, db, "init")
	assert.Contains(t, out, "Schema initialized (sqlite)")

	out = run(t, db, "seed", "--students", "100", "--groups", "2", "--courses", "3", "--atomic")
	assert.Contains(t, out, "Seeded 2 groups, 3 courses, 100 students")

	var courses []model.Course
	require.NoError(t, json.Unmarshal([]byte(run(t, db, "list", "courses", "--format", "json")), &courses))
	require.Len(t, courses, 3)
	assert.Equal(t, "Mathematics", courses[0].Name)

	var groups []model.Group
	require.NoError(t, json.Unmarshal([]byte(run(t, db, "list", "groups", "-o", "json")), &groups))
	assert.Len(t, groups, 2)

	out = run(t, db, "list", "groups", "--max-students", "0", "-o", "json")
	assert.JSONEq(t, "[]", out)

	var students []model.Student
	require.NoError(t, json.Unmarshal([]byte(run(t, db, "list", "students", "--course", "Biology", "-o", "json")), &students))
	for _, s := range students {
		var theirs []model.Course
		require.NoError(t, json.Unmarshal([]byte(run(t, db, "list", "courses", "--student", strconv.FormatInt(s.ID, 10), "-o", "json")), &theirs))
		assert.Contains(t, names(theirs), "Biology")
	}

	out = run(t, db, "list", "students", "-o", "csv")
	assert.Contains(t, out, "First name")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 101)
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.db")
	dst := filepath.Join(dir, "dst.db")
	xlsx := filepath.Join(dir, "school.xlsx")

	run(t, src, "init")
	run(t, src, "seed", "--students", "25", "--groups", "2", "--rand-seed", "7")

	out := run(t, src, "export", "--out", xlsx)
	assert.Contains(t, out, "Exported to "+xlsx)

	run(t, dst, "init")
	out = run(t, dst, "import", "--in", xlsx, "--atomic")
	assert.Contains(t, out, "Imported 2 groups, 10 courses, 25 students")

	for _, list := range []string{"groups", "students", "courses"} {
		assert.JSONEq(t,
			run(t, src, "list", list, "-o", "json"),
			run(t, dst, "list", list, "-o", "json"),
			list)
	}
}

func TestMigrate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "school.db")

	out := run(t, db, "migrate")
	assert.Contains(t, out, "Database at version 1")

	out = run(t, db, "migrate", "version")
	assert.Equal(t, "1\n", out)
}

func TestConsoleCommand(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  []string
	}{
		{
			name:  "root runs the console",
			args:  []string{"--database", ":memory:", "--log-level", "disabled"},
			stdin: "q\n",
			want:  []string{"*** MAIN MENU ***", "Exiting..."},
		},
		{
			name:  "console with init and seed",
			args:  []string{"console", "--init", "--seed", "--database", ":memory:", "--log-level", "disabled"},
			stdin: "2\nArt\nq\n",
			want:  []string{`Students from course "Art":`, "Exiting..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.stdin, tt.args...)
			require.NoError(t, err, out)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "school.db")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "unknown driver",
			args:    []string{"list", "groups", "--driver", "mysql"},
			wantErr: "invalid configuration: database.driver",
		},
		{
			name:    "unknown list format",
			args:    []string{"list", "groups", "--format", "xml"},
			wantErr: `unknown output format "xml"`,
		},
		{
			name:    "export without out",
			args:    []string{"export"},
			wantErr: `required flag(s) "out" not set`,
		},
		{
			name:    "missing schema file",
			args:    []string{"init", "--schema", filepath.Join(t.TempDir(), "missing.sql")},
			wantErr: "failed to read schema file",
		},
		{
			name:    "seed before init",
			args:    []string{"seed", "--students", "5"},
			wantErr: "seeding groups failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", append(tt.args, dbArgs(db)...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, "schooldb "+Version+"\n", out)
}

func names(courses []model.Course) []string {
	out := make([]string, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.Name)
	}
	return out
}

func TestDriverCompletion(t *testing.T) {
	out, err := execute(t, "", "__complete", "list", "groups", "--driver", "")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 3, out)
	assert.Equal(t, []string{"postgres", "sqlite"}, lines[:2])
	assert.Equal(t, ":4", lines[2])
}
