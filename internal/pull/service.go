package pull

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/multigit/internal/execshell"
	"github.com/temirov/multigit/internal/repos/discovery"
	"github.com/temirov/multigit/internal/repos/shared"
	"github.com/temirov/multigit/internal/report"
	"github.com/temirov/multigit/internal/report/render"
	"github.com/temirov/multigit/internal/ui"
)

const (
	gitPullSubcommandConstant       = "pull"
	gitRebaseFlagConstant           = "--rebase"
	notDirectoryTemplateConstant    = "Not a directory: %s\n"
	noRepositoriesTemplateConstant  = "No git repos found below %s\n"
	elapsedTemplateConstant         = "elapsed: dirwalk=%.1fs git=%.1fs"
	lineTemplateConstant            = "%s\n"
	scanErrorTemplateConstant       = "unable to scan %s: %w"
	outputLineTrimSetConstant       = "\r\n"
	scannerMissingMessageConstant   = "repository scanner not configured"
	executorMissingMessageConstant  = "git executor not configured"
	pullFailedMessageConstant       = "pull failed"
	pullCompletedMessageConstant    = "pull completed"
	logFieldRepositoryPathConstant  = "repository_path"
	logFieldRepositoryCountConstant = "repository_count"
	logFieldFailureCountConstant    = "failure_count"
)

var (
	errScannerNotConfigured  = errors.New(scannerMissingMessageConstant)
	errExecutorNotConfigured = errors.New(executorMissingMessageConstant)
)

// RepositoryScanner locates repositories below a target directory.
type RepositoryScanner interface {
	Scan(root string, options discovery.Options) ([]discovery.RepositoryEntry, error)
}

// Options configures one pull run.
type Options struct {
	Targets   []report.Target
	Scan      discovery.Options
	ColorMode ui.ColorMode
	Verbosity int
}

// Service pulls every discovered repository.
type Service struct {
	logger       *zap.Logger
	scanner      RepositoryScanner
	gitExecutor  shared.GitExecutor
	clock        shared.Clock
	outputWriter io.Writer
	errorWriter  io.Writer
}

// NewService constructs a Service.
func NewService(logger *zap.Logger, scanner RepositoryScanner, gitExecutor shared.GitExecutor, clock shared.Clock, outputWriter io.Writer, errorWriter io.Writer) (*Service, error) {
	if scanner == nil {
		return nil, errScannerNotConfigured
	}
	if gitExecutor == nil {
		return nil, errExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if outputWriter == nil {
		outputWriter = io.Discard
	}
	if errorWriter == nil {
		errorWriter = io.Discard
	}
	return &Service{
		logger:       logger,
		scanner:      scanner,
		gitExecutor:  gitExecutor,
		clock:        clock,
		outputWriter: outputWriter,
		errorWriter:  errorWriter,
	}, nil
}

// Pull runs git pull --rebase in each repository, printing the path in bold followed by git's output
// or the failure text. Only cancellation of executionContext stops the run early.
func (service *Service) Pull(executionContext context.Context, options Options) error {
	styles := ui.NewConsoleStyles(service.outputWriter, options.ColorMode.Enabled(service.outputWriter))

	var directoryWalkElapsed, gitElapsed time.Duration
	repositoryCount := 0
	failureCount := 0
	for _, target := range options.Targets {
		scanStarted := service.clock.Now()
		entries, scanError := service.scanner.Scan(target.Directory, options.Scan)
		directoryWalkElapsed += service.clock.Now().Sub(scanStarted)

		switch {
		case errors.Is(scanError, discovery.ErrRootNotDirectory):
			fmt.Fprintf(service.errorWriter, notDirectoryTemplateConstant, target.Directory)
			continue
		case scanError != nil:
			return fmt.Errorf(scanErrorTemplateConstant, target.Directory, scanError)
		case len(entries) == 0:
			fmt.Fprintf(service.errorWriter, noRepositoriesTemplateConstant, target.Directory)
			continue
		}

		pullStarted := service.clock.Now()
		for _, entry := range entries {
			if contextError := executionContext.Err(); contextError != nil {
				return contextError
			}
			repositoryCount++
			if !service.pullRepository(executionContext, entry, target, styles) {
				failureCount++
			}
		}
		gitElapsed += service.clock.Now().Sub(pullStarted)
	}

	service.logger.Info(pullCompletedMessageConstant, zap.Int(logFieldRepositoryCountConstant, repositoryCount), zap.Int(logFieldFailureCountConstant, failureCount))

	if options.Verbosity > 0 {
		elapsedStyles := ui.NewConsoleStyles(service.errorWriter, options.ColorMode.Enabled(service.errorWriter))
		fmt.Fprintf(service.errorWriter, lineTemplateConstant, elapsedStyles.Dim(fmt.Sprintf(elapsedTemplateConstant, directoryWalkElapsed.Seconds(), gitElapsed.Seconds())))
	}
	return nil
}

func (service *Service) pullRepository(executionContext context.Context, entry discovery.RepositoryEntry, target report.Target, styles ui.ConsoleStyles) bool {
	fmt.Fprintf(service.outputWriter, lineTemplateConstant, styles.Bold(render.CutPath(entry.Path, target.Directory, target.PathCutCount)))

	result, pullError := service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitPullSubcommandConstant, gitRebaseFlagConstant},
		WorkingDirectory: entry.Path,
	})
	if pullError != nil {
		fmt.Fprintf(service.outputWriter, lineTemplateConstant, pullError.Error())
		service.logger.Warn(pullFailedMessageConstant, zap.String(logFieldRepositoryPathConstant, entry.Path), zap.Error(pullError))
		return false
	}

	if pullOutput := strings.TrimRight(result.StandardOutput, outputLineTrimSetConstant); len(pullOutput) > 0 {
		fmt.Fprintf(service.outputWriter, lineTemplateConstant, pullOutput)
	}
	return true
}
