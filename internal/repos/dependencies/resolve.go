package dependencies

import (
	"time"

	"go.uber.org/zap"

	"github.com/temirov/multigit/internal/execshell"
	"github.com/temirov/multigit/internal/repos/discovery"
	"github.com/temirov/multigit/internal/repos/filesystem"
	"github.com/temirov/multigit/internal/repos/shared"
)

// RepositoryScanner locates repositories below a root directory.
type RepositoryScanner interface {
	Scan(root string, options discovery.Options) ([]discovery.RepositoryEntry, error)
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveRepositoryScanner returns the provided scanner or a filesystem-backed default.
func ResolveRepositoryScanner(existing RepositoryScanner, fileSystem shared.FileSystem, options ...discovery.ScannerOption) RepositoryScanner {
	if existing != nil {
		return existing
	}
	return discovery.NewScanner(ResolveFileSystem(fileSystem), options...)
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
// A positive commandTimeout bounds every git invocation; a nil observer leaves command events unreported.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, commandTimeout time.Duration, observer execshell.CommandEventObserver) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	executorOptions := []execshell.ShellExecutorOption{execshell.WithCommandTimeout(commandTimeout)}
	if observer != nil {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(observer))
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, executorOptions...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveClock returns the provided clock or the system clock.
func ResolveClock(existing shared.Clock) shared.Clock {
	if existing != nil {
		return existing
	}
	return shared.SystemClock{}
}
