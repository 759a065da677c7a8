package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/multigit/internal/execshell"
)

// DefaultDiffToolConstant is the viewer launched on the two listings.
const DefaultDiffToolConstant = "meld"

// DefaultDiffFilePrefixConstant names the listing files written in diff mode.
const DefaultDiffFilePrefixConstant = "multigit"

const (
	diffListingFileTemplateConstant = "%s%d.lst"
	diffToolMissingMessageConstant  = "diff tool not configured"
	diffLaunchErrorTemplateConstant = "unable to launch diff tool %q: %w"
)

// ErrDiffToolNotConfigured indicates an empty diff tool command.
var ErrDiffToolNotConfigured = errors.New(diffToolMissingMessageConstant)

// DiffLauncher opens an external viewer on two listings without waiting for it.
type DiffLauncher interface {
	Launch(leftListingPath string, rightListingPath string) error
}

// DetachedRunner starts a process and returns immediately.
type DetachedRunner interface {
	StartDetached(command execshell.ShellCommand) error
}

// ExternalDiffLauncher runs a configured tool command line with the two listings appended.
type ExternalDiffLauncher struct {
	toolFields []string
	runner     DetachedRunner
}

// NewExternalDiffLauncher splits toolCommand on whitespace. The first word is the executable.
func NewExternalDiffLauncher(toolCommand string, runner DetachedRunner) (*ExternalDiffLauncher, error) {
	toolFields := strings.Fields(toolCommand)
	if len(toolFields) == 0 {
		return nil, ErrDiffToolNotConfigured
	}
	if runner == nil {
		runner = execshell.NewOSCommandRunner()
	}
	return &ExternalDiffLauncher{toolFields: toolFields, runner: runner}, nil
}

// Launch starts the viewer on both listings.
func (launcher *ExternalDiffLauncher) Launch(leftListingPath string, rightListingPath string) error {
	arguments := append(append([]string{}, launcher.toolFields[1:]...), leftListingPath, rightListingPath)
	command := execshell.ShellCommand{
		Name:    execshell.CommandName(launcher.toolFields[0]),
		Details: execshell.CommandDetails{Arguments: arguments},
	}
	if startError := launcher.runner.StartDetached(command); startError != nil {
		return fmt.Errorf(diffLaunchErrorTemplateConstant, launcher.toolFields[0], startError)
	}
	return nil
}

// DiffListingPath returns the listing file for the target at targetIndex.
func DiffListingPath(directory string, prefix string, targetIndex int) string {
	return filepath.Join(directory, fmt.Sprintf(diffListingFileTemplateConstant, prefix, targetIndex))
}
