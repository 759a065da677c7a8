package report

import (
	"fmt"
	"strconv"
	"strings"

	pathutils "github.com/temirov/multigit/internal/utils/path"
)

const (
	defaultTargetDirectoryConstant    = "."
	pathCutSeparatorConstant          = ":"
	invalidTargetTemplateConstant     = "invalid target %q: %s"
	missingPathCutReasonConstant      = "missing path-cut count after ':'"
	negativePathCutReasonConstant     = "path-cut count must not be negative"
	missingDirectoryReasonConstant    = "missing directory before ':'"
	pathCutNegativeSignPrefixConstant = "-"
)

// Target is one directory to report on together with its display path-cut count.
type Target struct {
	Directory    string
	PathCutCount int
}

// InvalidTargetError reports a positional argument whose path-cut suffix cannot be used.
type InvalidTargetError struct {
	Value  string
	Reason string
}

func (targetError InvalidTargetError) Error() string {
	return fmt.Sprintf(invalidTargetTemplateConstant, targetError.Value, targetError.Reason)
}

// ParseTarget splits a DIR[:N] argument. A suffix that is not a number belongs to the directory name.
func ParseTarget(rawTarget string, expander *pathutils.HomeExpander) (Target, error) {
	directory := rawTarget
	pathCutCount := 0

	if separatorIndex := strings.LastIndex(rawTarget, pathCutSeparatorConstant); separatorIndex >= 0 {
		suffix := rawTarget[separatorIndex+1:]
		switch parsedCount, parseError := strconv.Atoi(suffix); {
		case len(suffix) == 0:
			return Target{}, InvalidTargetError{Value: rawTarget, Reason: missingPathCutReasonConstant}
		case parseError != nil:
			if strings.HasPrefix(suffix, pathCutNegativeSignPrefixConstant) {
				return Target{}, InvalidTargetError{Value: rawTarget, Reason: negativePathCutReasonConstant}
			}
		case parsedCount < 0:
			return Target{}, InvalidTargetError{Value: rawTarget, Reason: negativePathCutReasonConstant}
		default:
			directory = rawTarget[:separatorIndex]
			pathCutCount = parsedCount
		}
	}

	if len(strings.TrimSpace(directory)) == 0 {
		return Target{}, InvalidTargetError{Value: rawTarget, Reason: missingDirectoryReasonConstant}
	}

	if expander != nil {
		directory = expander.Resolve(directory)
	}

	return Target{Directory: directory, PathCutCount: pathCutCount}, nil
}

// ParseTargets parses every positional argument; no arguments selects the current directory.
func ParseTargets(arguments []string, expander *pathutils.HomeExpander) ([]Target, error) {
	if len(arguments) == 0 {
		arguments = []string{defaultTargetDirectoryConstant}
	}

	targets := make([]Target, 0, len(arguments))
	for _, argument := range arguments {
		target, parseError := ParseTarget(argument, expander)
		if parseError != nil {
			return nil, parseError
		}
		targets = append(targets, target)
	}
	return targets, nil
}
