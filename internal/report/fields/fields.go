// Package fields enumerates report columns, time formats, and the git queries each column requires.
package fields

import (
	"errors"
	"fmt"
	"strings"
)

// Field names one report column or collected value.
type Field string

// Supported fields.
const (
	Path        Field = "path"
	Description Field = "desc"
	LastTag     Field = "lasttag"
	Branch      Field = "branch"
	Status      Field = "status"
	StatusLines Field = "statusLines"
	URL         Field = "url"
	Name        Field = "name"
	Time        Field = "time"
	Message     Field = "msg"
	Submodule   Field = "sub"
)

// DefaultListConstant is the column list used when none is requested.
const DefaultListConstant = "path,desc,sub,branch,time,status"

// AllListConstant is the column list selected by the show-all shortcut.
const AllListConstant = "path,url,name,desc,lasttag,sub,branch,time,msg,status"

const (
	fieldListSeparatorConstant    = ","
	unknownFieldTemplateConstant  = "unknown field %q"
	emptyFieldListMessageConstant = "field list is empty"
)

var columnFields = []Field{Path, Description, LastTag, Branch, Status, URL, Name, Time, Message, Submodule}

// UnknownFieldError reports a column name outside the supported set.
type UnknownFieldError struct {
	Name string
}

// Error describes the rejected name.
func (unknownFieldError UnknownFieldError) Error() string {
	return fmt.Sprintf(unknownFieldTemplateConstant, unknownFieldError.Name)
}

// ErrEmptyFieldList indicates a field list contained no names.
var ErrEmptyFieldList = errors.New(emptyFieldListMessageConstant)

// ParseList converts a comma-separated column list into ordered fields, dropping duplicates.
func ParseList(rawList string) ([]Field, error) {
	parsedFields := make([]Field, 0)
	seenFields := make(map[Field]struct{})
	for _, rawName := range strings.Split(rawList, fieldListSeparatorConstant) {
		trimmedName := strings.TrimSpace(rawName)
		if len(trimmedName) == 0 {
			continue
		}
		candidateField := Field(trimmedName)
		if !isColumn(candidateField) {
			return nil, UnknownFieldError{Name: trimmedName}
		}
		if _, seen := seenFields[candidateField]; seen {
			continue
		}
		seenFields[candidateField] = struct{}{}
		parsedFields = append(parsedFields, candidateField)
	}
	if len(parsedFields) == 0 {
		return nil, ErrEmptyFieldList
	}
	return parsedFields, nil
}

// Remove returns orderedFields without target; the order of the others is preserved.
func Remove(orderedFields []Field, target Field) []Field {
	remainingFields := make([]Field, 0, len(orderedFields))
	for _, candidateField := range orderedFields {
		if candidateField != target {
			remainingFields = append(remainingFields, candidateField)
		}
	}
	return remainingFields
}

// Contains reports whether target appears in orderedFields.
func Contains(orderedFields []Field, target Field) bool {
	for _, candidateField := range orderedFields {
		if candidateField == target {
			return true
		}
	}
	return false
}

// Set is an unordered collection of requested fields.
type Set map[Field]struct{}

// NewSet builds a Set from the provided fields.
func NewSet(requestedFields ...Field) Set {
	fieldSet := make(Set, len(requestedFields))
	for _, requestedField := range requestedFields {
		fieldSet[requestedField] = struct{}{}
	}
	return fieldSet
}

// Has reports whether field was requested.
func (fieldSet Set) Has(field Field) bool {
	_, present := fieldSet[field]
	return present
}

func isColumn(candidateField Field) bool {
	return Contains(columnFields, candidateField)
}
