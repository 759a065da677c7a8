// Package status condenses `git status --porcelain` output into category counts.
//
// Each line is classified by its first two characters: position 0 is checked
// before position 1 and the first of M, D, R or ? found wins. Anything else is
// counted as unrecognized. Copies, conflicts and some renames are therefore
// approximated rather than parsed exactly.
package status

import (
	"fmt"
	"strings"
)

// Category is one porcelain status bucket.
type Category string

// Categories in display order.
const (
	Modified     Category = "M"
	Deleted      Category = "D"
	Renamed      Category = "R"
	Untracked    Category = "?"
	Unrecognized Category = "X"
)

const (
	untrackedLinePrefixConstant    = "??"
	shortEntryTemplateConstant     = "%s%d"
	shortEntrySeparatorConstant    = " "
	porcelainLineSeparatorConstant = "\n"
	statusCodeWidthConstant        = 2
)

var orderedCategories = []Category{Modified, Deleted, Renamed, Untracked, Unrecognized}

var recognizedCodes = map[byte]Category{
	'M': Modified,
	'D': Deleted,
	'R': Renamed,
	'?': Untracked,
}

// Summary holds per-category counts and the porcelain lines without untracked entries.
type Summary struct {
	Counts      map[Category]int
	DetailLines []string
}

// Summarize classifies porcelainLines. Empty input yields an empty summary.
func Summarize(porcelainLines []string) Summary {
	summary := Summary{Counts: make(map[Category]int)}
	for _, porcelainLine := range porcelainLines {
		summary.Counts[classify(porcelainLine)]++
		if !strings.HasPrefix(porcelainLine, untrackedLinePrefixConstant) {
			summary.DetailLines = append(summary.DetailLines, porcelainLine)
		}
	}
	return summary
}

// Short renders non-zero counts as space-separated <code><count> pairs in category order.
func (summary Summary) Short() string {
	shortEntries := make([]string, 0, len(orderedCategories))
	for _, category := range orderedCategories {
		count := summary.Counts[category]
		if count == 0 {
			continue
		}
		shortEntries = append(shortEntries, fmt.Sprintf(shortEntryTemplateConstant, category, count))
	}
	return strings.Join(shortEntries, shortEntrySeparatorConstant)
}

// SplitPorcelainOutput splits raw porcelain output into lines, keeping leading status spaces.
func SplitPorcelainOutput(rawOutput string) []string {
	trimmedOutput := strings.TrimRight(rawOutput, "\r\n")
	if len(trimmedOutput) == 0 {
		return nil
	}
	porcelainLines := strings.Split(trimmedOutput, porcelainLineSeparatorConstant)
	for lineIndex, porcelainLine := range porcelainLines {
		porcelainLines[lineIndex] = strings.TrimRight(porcelainLine, "\r")
	}
	return porcelainLines
}

func classify(porcelainLine string) Category {
	for position := 0; position < statusCodeWidthConstant && position < len(porcelainLine); position++ {
		if category, recognized := recognizedCodes[porcelainLine[position]]; recognized {
			return category
		}
	}
	return Unrecognized
}
