package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/temirov/multigit/internal/report/collector"
	"github.com/temirov/multigit/internal/report/fields"
	"github.com/temirov/multigit/internal/ui"
)

// ColumnSeparatorConstant joins adjacent cells.
const ColumnSeparatorConstant = "  "

// SymlinkMarkerConstant follows the path of a symlinked repository.
const SymlinkMarkerConstant = "@"

const (
	detailIndentConstant           = "    "
	headerRuleCharacterConstant    = "-"
	lineTerminatorConstant         = "\n"
	trailingWhitespaceConstant     = " \t"
	pathComponentSeparatorConstant = "/"
)

// ColumnWidths maps each column to its widest visible cell.
type ColumnWidths map[fields.Field]int

// Options controls one table.
type Options struct {
	TargetDirectory string
	PathCutCount    int
	ShowHeader      bool
	ShowDetails     bool
	ColorEnabled    bool
	SymlinkColor    Color
	BranchColors    BranchColorRules
}

// Table writes the header and rule, the rows, and the detail lines to separate sinks.
type Table struct {
	headerWriter io.Writer
	rowWriter    io.Writer
	detailWriter io.Writer
}

// NewTable constructs a Table. A nil detailWriter falls back to rowWriter.
func NewTable(headerWriter io.Writer, rowWriter io.Writer, detailWriter io.Writer) *Table {
	if detailWriter == nil {
		detailWriter = rowWriter
	}
	return &Table{headerWriter: headerWriter, rowWriter: rowWriter, detailWriter: detailWriter}
}

// Render prints records under the ordered columns. Widths are measured on uncolored text,
// so escape sequences added afterwards never shift alignment.
func (table *Table) Render(records []collector.Record, columns []fields.Field, options Options) error {
	displayRows := make([]map[fields.Field]string, 0, len(records))
	for _, record := range records {
		displayRows = append(displayRows, displayValues(record, columns, options))
	}
	columnWidths := ComputeColumnWidths(columns, displayRows)

	if options.ShowHeader {
		headerCells := make([]string, 0, len(columns))
		for _, column := range columns {
			headerCells = append(headerCells, padVisible(string(column), columnWidths[column]))
		}
		headerLine := strings.Join(headerCells, ColumnSeparatorConstant)
		headerRule := strings.Repeat(headerRuleCharacterConstant, ansi.StringWidth(headerLine))
		if writeError := writeLine(table.headerWriter, headerLine); writeError != nil {
			return writeError
		}
		if writeError := writeLine(table.headerWriter, headerRule); writeError != nil {
			return writeError
		}
	}

	detailStyles := ui.NewConsoleStyles(table.detailWriter, options.ColorEnabled)
	for recordIndex, record := range records {
		rowCells := make([]string, 0, len(columns))
		for _, column := range columns {
			cell := colorizeCell(column, record, displayRows[recordIndex][column], options)
			rowCells = append(rowCells, padVisible(cell, columnWidths[column]))
		}
		if writeError := writeLine(table.rowWriter, strings.Join(rowCells, ColumnSeparatorConstant)); writeError != nil {
			return writeError
		}

		if !options.ShowDetails {
			continue
		}
		for _, detailLine := range record.DetailLines {
			if writeError := writeLine(table.detailWriter, detailStyles.Dim(detailIndentConstant+detailLine)); writeError != nil {
				return writeError
			}
		}
	}
	return nil
}

// ComputeColumnWidths returns, per column, the larger of the header label width and the widest cell.
// Widths count visible characters only.
func ComputeColumnWidths(columns []fields.Field, rows []map[fields.Field]string) ColumnWidths {
	columnWidths := make(ColumnWidths, len(columns))
	for _, column := range columns {
		columnWidth := ansi.StringWidth(string(column))
		for _, row := range rows {
			if cellWidth := ansi.StringWidth(row[column]); cellWidth > columnWidth {
				columnWidth = cellWidth
			}
		}
		columnWidths[column] = columnWidth
	}
	return columnWidths
}

// CutPath strips cutCount leading components of repositoryPath relative to targetDirectory.
// Components are counted below the target, so foo:1 shows foo/team/proj as proj.
// When nothing would remain the base name is returned; a non-positive cutCount returns the path unchanged.
func CutPath(repositoryPath string, targetDirectory string, cutCount int) string {
	if cutCount <= 0 {
		return repositoryPath
	}

	relativePath, relativeError := filepath.Rel(filepath.Clean(targetDirectory), filepath.Clean(repositoryPath))
	if relativeError != nil || relativePath == "." || relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
		return filepath.Base(repositoryPath)
	}

	pathComponents := strings.Split(filepath.ToSlash(relativePath), pathComponentSeparatorConstant)
	if cutCount >= len(pathComponents) {
		return filepath.Base(repositoryPath)
	}
	return filepath.FromSlash(strings.Join(pathComponents[cutCount:], pathComponentSeparatorConstant))
}

// DisplayPath returns the cut path of entry with the symlink marker appended when applicable.
func DisplayPath(record collector.Record, targetDirectory string, cutCount int) string {
	displayPath := CutPath(record.Entry.Path, targetDirectory, cutCount)
	if record.Entry.IsSymlink {
		displayPath += SymlinkMarkerConstant
	}
	return displayPath
}

func displayValues(record collector.Record, columns []fields.Field, options Options) map[fields.Field]string {
	values := make(map[fields.Field]string, len(columns))
	for _, column := range columns {
		if column == fields.Path {
			values[column] = DisplayPath(record, options.TargetDirectory, options.PathCutCount)
			continue
		}
		values[column] = record.Value(column)
	}
	return values
}

func colorizeCell(column fields.Field, record collector.Record, cell string, options Options) string {
	if !options.ColorEnabled {
		return cell
	}
	switch column {
	case fields.Path:
		if record.Entry.IsSymlink {
			return options.SymlinkColor.Wrap(cell)
		}
	case fields.Branch:
		if branchColor, matched := options.BranchColors.ColorFor(cell); matched {
			return branchColor.Wrap(cell)
		}
	}
	return cell
}

func padVisible(cell string, width int) string {
	padding := width - ansi.StringWidth(cell)
	if padding <= 0 {
		return cell
	}
	return cell + strings.Repeat(" ", padding)
}

func writeLine(writer io.Writer, line string) error {
	_, writeError := fmt.Fprint(writer, strings.TrimRight(line, trailingWhitespaceConstant)+lineTerminatorConstant)
	return writeError
}
