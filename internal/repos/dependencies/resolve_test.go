package dependencies_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/multigit/internal/execshell"
	"github.com/temirov/multigit/internal/repos/dependencies"
	"github.com/temirov/multigit/internal/repos/discovery"
	"github.com/temirov/multigit/internal/repos/filesystem"
	"github.com/temirov/multigit/internal/repos/shared"
)

type stubGitExecutor struct{}

func (stubGitExecutor) ExecuteGit(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return execshell.ExecutionResult{}, nil
}

type fixedClock struct{ instant time.Time }

func (clock fixedClock) Now() time.Time { return clock.instant }

func TestResolversPreferExistingCollaborators(testInstance *testing.T) {
	existingExecutor := stubGitExecutor{}
	resolvedExecutor, resolveError := dependencies.ResolveGitExecutor(existingExecutor, nil, time.Second, nil)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, shared.GitExecutor(existingExecutor), resolvedExecutor)

	existingClock := fixedClock{instant: time.Unix(42, 0)}
	require.Equal(testInstance, shared.Clock(existingClock), dependencies.ResolveClock(existingClock))

	existingScanner := discovery.NewScanner(filesystem.OSFileSystem{})
	require.Same(testInstance, existingScanner, dependencies.ResolveRepositoryScanner(existingScanner, nil))
}

func TestResolversBuildDefaults(testInstance *testing.T) {
	resolvedExecutor, resolveError := dependencies.ResolveGitExecutor(nil, zap.NewNop(), 0, nil)
	require.NoError(testInstance, resolveError)
	require.IsType(testInstance, &execshell.ShellExecutor{}, resolvedExecutor)

	_, missingLoggerError := dependencies.ResolveGitExecutor(nil, nil, 0, nil)
	require.ErrorIs(testInstance, missingLoggerError, execshell.ErrLoggerNotConfigured)

	require.Equal(testInstance, shared.FileSystem(filesystem.OSFileSystem{}), dependencies.ResolveFileSystem(nil))
	require.IsType(testInstance, shared.SystemClock{}, dependencies.ResolveClock(nil))
	require.IsType(testInstance, &discovery.Scanner{}, dependencies.ResolveRepositoryScanner(nil, nil))
}
