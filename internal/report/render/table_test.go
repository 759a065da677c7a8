package render_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/temirov/multigit/internal/repos/discovery"
	"github.com/temirov/multigit/internal/report/collector"
	"github.com/temirov/multigit/internal/report/fields"
	"github.com/temirov/multigit/internal/report/render"
)

func newRecord(entry discovery.RepositoryEntry, values map[fields.Field]string, detailLines ...string) collector.Record {
	recordValues := map[fields.Field]string{fields.Path: entry.Path}
	for field, value := range values {
		recordValues[field] = value
	}
	return collector.Record{Entry: entry, Values: recordValues, DetailLines: detailLines}
}

func renderToBuffers(testInstance *testing.T, records []collector.Record, columns []fields.Field, options render.Options) (string, string, string) {
	testInstance.Helper()
	headerBuffer := &bytes.Buffer{}
	rowBuffer := &bytes.Buffer{}
	detailBuffer := &bytes.Buffer{}
	require.NoError(testInstance, render.NewTable(headerBuffer, rowBuffer, detailBuffer).Render(records, columns, options))
	return headerBuffer.String(), rowBuffer.String(), detailBuffer.String()
}

func TestTableRendersHeaderRuleAndRows(testInstance *testing.T) {
	records := []collector.Record{
		newRecord(discovery.RepositoryEntry{Path: "clean"}, map[fields.Field]string{fields.Status: ""}),
		newRecord(discovery.RepositoryEntry{Path: "dirty-repository"}, map[fields.Field]string{fields.Status: "M1 ?2"}),
	}

	header, rows, details := renderToBuffers(testInstance, records, []fields.Field{fields.Path, fields.Status}, render.Options{ShowHeader: true})

	require.Equal(testInstance, "path              status\n------------------------\n", header)
	require.Equal(testInstance, "clean\ndirty-repository  M1 ?2\n", rows)
	require.Empty(testInstance, details)
}

func TestTableHeaderWidthWinsOverShortValues(testInstance *testing.T) {
	records := []collector.Record{
		newRecord(discovery.RepositoryEntry{Path: "a"}, map[fields.Field]string{fields.Branch: "x", fields.Status: "M1"}),
	}

	header, rows, _ := renderToBuffers(testInstance, records, []fields.Field{fields.Path, fields.Branch, fields.Status}, render.Options{ShowHeader: true})

	require.Equal(testInstance, "path  branch  status\n--------------------\n", header)
	require.Equal(testInstance, "a     x       M1\n", rows)
}

func TestTableColorDoesNotShiftAlignment(testInstance *testing.T) {
	branchRules, parseError := render.ParseBranchColorRules([]string{"main=green", "*=red"})
	require.NoError(testInstance, parseError)

	records := []collector.Record{
		newRecord(discovery.RepositoryEntry{Path: "alpha", IsSymlink: true}, map[fields.Field]string{fields.Branch: "main", fields.Status: "M1"}),
		newRecord(discovery.RepositoryEntry{Path: "beta-long"}, map[fields.Field]string{fields.Branch: "feature/x", fields.Status: ""}),
	}
	columns := []fields.Field{fields.Path, fields.Branch, fields.Status}

	plainOptions := render.Options{SymlinkColor: "cyan", BranchColors: branchRules}
	_, plainRows, _ := renderToBuffers(testInstance, records, columns, plainOptions)

	coloredOptions := plainOptions
	coloredOptions.ColorEnabled = true
	_, coloredRows, _ := renderToBuffers(testInstance, records, columns, coloredOptions)

	require.Equal(testInstance, "alpha@     main       M1\nbeta-long  feature/x\n", plainRows)
	require.NotEqual(testInstance, plainRows, coloredRows)
	require.Contains(testInstance, coloredRows, "\x1b[36malpha@\x1b[0m")
	require.Contains(testInstance, coloredRows, "\x1b[32mmain\x1b[0m")
	require.Contains(testInstance, coloredRows, "\x1b[31mfeature/x\x1b[0m")
	require.Equal(testInstance, plainRows, ansi.Strip(coloredRows))
}

func TestComputeColumnWidthsIgnoresEscapeSequences(testInstance *testing.T) {
	columns := []fields.Field{fields.Path, fields.Branch}
	plainRows := []map[fields.Field]string{
		{fields.Path: "repo", fields.Branch: "main"},
		{fields.Path: "another-repo", fields.Branch: "develop"},
	}
	coloredRows := []map[fields.Field]string{
		{fields.Path: render.Color("cyan").Wrap("repo"), fields.Branch: render.Color("green").Wrap("main")},
		{fields.Path: "another-repo", fields.Branch: render.Color("bold").Wrap("develop")},
	}

	expectedWidths := render.ColumnWidths{fields.Path: 12, fields.Branch: 7}
	require.Equal(testInstance, expectedWidths, render.ComputeColumnWidths(columns, plainRows))
	require.Equal(testInstance, expectedWidths, render.ComputeColumnWidths(columns, coloredRows))
}

func TestTableRemovingFieldRemovesExactlyItsColumn(testInstance *testing.T) {
	records := []collector.Record{
		newRecord(discovery.RepositoryEntry{Path: "alpha"}, map[fields.Field]string{fields.Description: "v1.0", fields.Branch: "main", fields.Status: "D1"}),
	}
	fullColumns := []fields.Field{fields.Path, fields.Description, fields.Branch, fields.Status}

	fullHeader, _, _ := renderToBuffers(testInstance, records, fullColumns, render.Options{ShowHeader: true})
	reducedHeader, reducedRows, _ := renderToBuffers(testInstance, records, fields.Remove(fullColumns, fields.Branch), render.Options{ShowHeader: true})

	require.Equal(testInstance, []string{"path", "desc", "branch", "status"}, strings.Fields(strings.SplitN(fullHeader, "\n", 2)[0]))
	require.Equal(testInstance, []string{"path", "desc", "status"}, strings.Fields(strings.SplitN(reducedHeader, "\n", 2)[0]))
	require.Equal(testInstance, "alpha  v1.0  D1\n", reducedRows)
}

func TestTableWithoutHeaderWritesOnlyRows(testInstance *testing.T) {
	records := []collector.Record{newRecord(discovery.RepositoryEntry{Path: "alpha"}, nil)}

	header, rows, _ := renderToBuffers(testInstance, records, []fields.Field{fields.Path}, render.Options{ShowHeader: false})

	require.Empty(testInstance, header)
	require.Equal(testInstance, "alpha\n", rows)
}

func TestTableDetailLines(testInstance *testing.T) {
	records := []collector.Record{
		newRecord(discovery.RepositoryEntry{Path: "alpha"}, map[fields.Field]string{fields.Status: "M1 D1"}, "M  a.txt", " D c.txt"),
		newRecord(discovery.RepositoryEntry{Path: "beta"}, map[fields.Field]string{fields.Status: ""}),
	}
	columns := []fields.Field{fields.Path, fields.Status}

	_, _, hiddenDetails := renderToBuffers(testInstance, records, columns, render.Options{})
	require.Empty(testInstance, hiddenDetails)

	_, _, shownDetails := renderToBuffers(testInstance, records, columns, render.Options{ShowDetails: true})
	require.Equal(testInstance, "    M  a.txt\n     D c.txt\n", shownDetails)
}

func TestTableAppliesPathCut(testInstance *testing.T) {
	targetDirectory := filepath.FromSlash("/repos/foo")
	records := []collector.Record{
		newRecord(discovery.RepositoryEntry{Path: filepath.FromSlash("/repos/foo/team/proj")}, nil),
		newRecord(discovery.RepositoryEntry{Path: filepath.FromSlash("/repos/foo/team/group/svc")}, nil),
	}

	_, rows, _ := renderToBuffers(testInstance, records, []fields.Field{fields.Path}, render.Options{TargetDirectory: targetDirectory, PathCutCount: 2})

	require.Equal(testInstance, "proj\n"+filepath.FromSlash("svc")+"\n", rows)
}

func TestCutPath(testInstance *testing.T) {
	testCases := []struct {
		name            string
		repositoryPath  string
		targetDirectory string
		cutCount        int
		expected        string
	}{
		{name: "zero_keeps_path", repositoryPath: "/repos/foo/team/proj", targetDirectory: "/repos/foo", cutCount: 0, expected: "/repos/foo/team/proj"},
		{name: "cut_all_falls_back_to_base", repositoryPath: "/repos/foo/team/proj", targetDirectory: "/repos/foo", cutCount: 2, expected: "proj"},
		{name: "cut_beyond_depth_falls_back_to_base", repositoryPath: "/repos/foo/team/proj", targetDirectory: "/repos/foo", cutCount: 9, expected: "proj"},
		{name: "cut_one", repositoryPath: "/repos/foo/team/group/proj", targetDirectory: "/repos/foo", cutCount: 1, expected: "group/proj"},
		{name: "cut_one_below_relative_target", repositoryPath: "foo/team/proj", targetDirectory: "foo", cutCount: 1, expected: "proj"},
		{name: "relative_target", repositoryPath: "src/app/api", targetDirectory: "src", cutCount: 1, expected: "api"},
		{name: "target_itself", repositoryPath: "/repos/foo", targetDirectory: "/repos/foo", cutCount: 1, expected: "foo"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			actual := render.CutPath(filepath.FromSlash(testCase.repositoryPath), filepath.FromSlash(testCase.targetDirectory), testCase.cutCount)
			require.Equal(testInstance, filepath.FromSlash(testCase.expected), actual)
		})
	}
}
