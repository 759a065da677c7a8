package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/multigit/internal/repos/discovery"
	"github.com/temirov/multigit/internal/repos/shared"
	"github.com/temirov/multigit/internal/report/collector"
	"github.com/temirov/multigit/internal/report/fields"
	"github.com/temirov/multigit/internal/report/render"
	"github.com/temirov/multigit/internal/ui"
)

const (
	notDirectoryTemplateConstant          = "Not a directory: %s\n"
	noRepositoriesTemplateConstant        = "No git repos found below %s\n"
	elapsedTemplateConstant               = "elapsed: dirwalk=%.1fs git=%.1fs"
	lineTemplateConstant                  = "%s\n"
	scanErrorTemplateConstant             = "unable to scan %s: %w"
	listingCreateErrorTemplateConstant    = "unable to create listing %s: %w"
	listingCloseErrorTemplateConstant     = "unable to close listing %s: %w"
	renderErrorTemplateConstant           = "unable to render %s: %w"
	diffRequiresTwoTargetsMessageConstant = "diff mode requires exactly two directories"
	diffListingsIncompleteMessageConstant = "diff mode needs a listing for both directories"
	scannerMissingMessageConstant         = "repository scanner not configured"
	collectorMissingMessageConstant       = "record collector not configured"
	diffLauncherMissingMessageConstant    = "diff launcher not configured"
	repositorySkippedMessageConstant      = "repository skipped"
	targetSkippedMessageConstant          = "target skipped"
	targetReportedMessageConstant         = "target reported"
	diffLaunchedMessageConstant           = "diff viewer launched"
	logFieldTargetConstant                = "target"
	logFieldRepositoryPathConstant        = "repository_path"
	logFieldReasonConstant                = "reason"
	logFieldRepositoryCountConstant       = "repository_count"
	logFieldFailureCountConstant          = "failure_count"
	logFieldListingsConstant              = "listings"
	skipReasonNotDirectoryConstant        = "not a directory"
	skipReasonNoRepositoriesConstant      = "no repositories"
	requiredDiffTargetCountConstant       = 2
)

// ErrDiffRequiresTwoTargets indicates diff mode was requested without exactly two targets.
var ErrDiffRequiresTwoTargets = errors.New(diffRequiresTwoTargetsMessageConstant)

// ErrDiffListingsIncomplete indicates a diff target was skipped, leaving nothing to compare.
var ErrDiffListingsIncomplete = errors.New(diffListingsIncompleteMessageConstant)

var (
	errScannerNotConfigured      = errors.New(scannerMissingMessageConstant)
	errCollectorNotConfigured    = errors.New(collectorMissingMessageConstant)
	errDiffLauncherNotConfigured = errors.New(diffLauncherMissingMessageConstant)
)

// RepositoryScanner locates repositories below a target directory.
type RepositoryScanner interface {
	Scan(root string, options discovery.Options) ([]discovery.RepositoryEntry, error)
}

// RecordCollector gathers report records for discovered repositories.
type RecordCollector interface {
	CollectAll(executionContext context.Context, entries []discovery.RepositoryEntry, options collector.Options) (collector.Outcome, error)
}

// Options configures one report run.
type Options struct {
	Targets        []Target
	Scan           discovery.Options
	Fields         []fields.Field
	PathsOnly      bool
	ShowDetails    bool
	TimeFormat     fields.TimeFormat
	BranchColors   render.BranchColorRules
	SymlinkColor   render.Color
	ColorMode      ui.ColorMode
	Concurrency    int
	Diff           bool
	DiffDirectory  string
	DiffFilePrefix string
	Verbosity      int
}

// Service prints repository reports for each target.
type Service struct {
	logger       *zap.Logger
	scanner      RepositoryScanner
	collector    RecordCollector
	diffLauncher DiffLauncher
	clock        shared.Clock
	outputWriter io.Writer
	errorWriter  io.Writer
}

type elapsedTimes struct {
	directoryWalk time.Duration
	gitCommands   time.Duration
}

// NewService constructs a Service. The diff launcher may be nil when diff mode is never requested.
func NewService(logger *zap.Logger, scanner RepositoryScanner, recordCollector RecordCollector, diffLauncher DiffLauncher, clock shared.Clock, outputWriter io.Writer, errorWriter io.Writer) (*Service, error) {
	if scanner == nil {
		return nil, errScannerNotConfigured
	}
	if recordCollector == nil {
		return nil, errCollectorNotConfigured
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
		collector:    recordCollector,
		diffLauncher: diffLauncher,
		clock:        clock,
		outputWriter: outputWriter,
		errorWriter:  errorWriter,
	}, nil
}

// Run reports every target in order. Targets that are not directories or hold no repositories
// are announced on the error writer and skipped.
func (service *Service) Run(executionContext context.Context, options Options) error {
	if options.Diff {
		if len(options.Targets) != requiredDiffTargetCountConstant {
			return ErrDiffRequiresTwoTargets
		}
		if service.diffLauncher == nil {
			return errDiffLauncherNotConfigured
		}
	}

	var elapsed elapsedTimes
	listingPaths := make([]string, 0, len(options.Targets))
	for targetIndex, target := range options.Targets {
		listingPath, targetError := service.reportTarget(executionContext, targetIndex, target, options, &elapsed)
		if targetError != nil {
			return targetError
		}
		if len(listingPath) > 0 {
			listingPaths = append(listingPaths, listingPath)
		}
	}

	if options.Diff {
		if len(listingPaths) != requiredDiffTargetCountConstant {
			return ErrDiffListingsIncomplete
		}
		if launchError := service.diffLauncher.Launch(listingPaths[0], listingPaths[1]); launchError != nil {
			return launchError
		}
		service.logger.Info(diffLaunchedMessageConstant, zap.Strings(logFieldListingsConstant, listingPaths))
	}

	if options.Verbosity > 0 {
		styles := ui.NewConsoleStyles(service.errorWriter, options.ColorMode.Enabled(service.errorWriter))
		elapsedLine := fmt.Sprintf(elapsedTemplateConstant, elapsed.directoryWalk.Seconds(), elapsed.gitCommands.Seconds())
		fmt.Fprintf(service.errorWriter, lineTemplateConstant, styles.Dim(elapsedLine))
	}

	return nil
}

func (service *Service) reportTarget(executionContext context.Context, targetIndex int, target Target, options Options, elapsed *elapsedTimes) (string, error) {
	scanStarted := service.clock.Now()
	entries, scanError := service.scanner.Scan(target.Directory, options.Scan)
	elapsed.directoryWalk += service.clock.Now().Sub(scanStarted)

	switch {
	case errors.Is(scanError, discovery.ErrRootNotDirectory):
		fmt.Fprintf(service.errorWriter, notDirectoryTemplateConstant, target.Directory)
		service.logger.Debug(targetSkippedMessageConstant, zap.String(logFieldTargetConstant, target.Directory), zap.String(logFieldReasonConstant, skipReasonNotDirectoryConstant))
		return "", nil
	case scanError != nil:
		return "", fmt.Errorf(scanErrorTemplateConstant, target.Directory, scanError)
	case len(entries) == 0:
		fmt.Fprintf(service.errorWriter, noRepositoriesTemplateConstant, target.Directory)
		service.logger.Debug(targetSkippedMessageConstant, zap.String(logFieldTargetConstant, target.Directory), zap.String(logFieldReasonConstant, skipReasonNoRepositoriesConstant))
		return "", nil
	}

	rowWriter := service.outputWriter
	listingPath := ""
	var listingFile *os.File
	if options.Diff {
		listingPath = DiffListingPath(options.DiffDirectory, options.DiffFilePrefix, targetIndex)
		createdFile, createError := os.Create(listingPath)
		if createError != nil {
			return "", fmt.Errorf(listingCreateErrorTemplateConstant, listingPath, createError)
		}
		listingFile = createdFile
		rowWriter = createdFile
	}

	writeError := service.writeTarget(executionContext, rowWriter, entries, target, options, elapsed)

	if listingFile != nil {
		if closeError := listingFile.Close(); closeError != nil && writeError == nil {
			writeError = fmt.Errorf(listingCloseErrorTemplateConstant, listingPath, closeError)
		}
	}
	if writeError != nil {
		return "", writeError
	}
	return listingPath, nil
}

func (service *Service) writeTarget(executionContext context.Context, rowWriter io.Writer, entries []discovery.RepositoryEntry, target Target, options Options, elapsed *elapsedTimes) error {
	if options.PathsOnly {
		for _, entry := range entries {
			if _, writeError := fmt.Fprintf(rowWriter, lineTemplateConstant, render.CutPath(entry.Path, target.Directory, target.PathCutCount)); writeError != nil {
				return writeError
			}
		}
		return nil
	}

	columns := append([]fields.Field{}, options.Fields...)
	if options.TimeFormat.Suppressed() {
		columns = fields.Remove(columns, fields.Time)
	}
	requestedFields := fields.NewSet(columns...)
	if options.ShowDetails {
		requestedFields[fields.StatusLines] = struct{}{}
	}

	progress := ui.NewCollectionProgress(service.errorWriter, len(entries), options.Verbosity > 0 && ui.IsTerminal(service.errorWriter))
	collectStarted := service.clock.Now()
	outcome, collectError := service.collector.CollectAll(executionContext, entries, collector.Options{
		Fields:        requestedFields,
		TimeFormat:    options.TimeFormat,
		ReferenceTime: collectStarted,
		Concurrency:   options.Concurrency,
		Progress: func(entry discovery.RepositoryEntry) {
			progress.Advance(entry.Path)
		},
	})
	progress.Finish()
	elapsed.gitCommands += service.clock.Now().Sub(collectStarted)
	if collectError != nil {
		return collectError
	}

	for _, failure := range outcome.Failures {
		fmt.Fprintf(service.errorWriter, lineTemplateConstant, failure.Error())
		service.logger.Warn(repositorySkippedMessageConstant, zap.String(logFieldRepositoryPathConstant, failure.RepositoryPath), zap.Error(failure.Cause))
	}

	if !collector.AnySubmodule(outcome.Records) {
		columns = fields.Remove(columns, fields.Submodule)
	}

	table := render.NewTable(service.errorWriter, rowWriter, service.outputWriter)
	renderError := table.Render(outcome.Records, columns, render.Options{
		TargetDirectory: target.Directory,
		PathCutCount:    target.PathCutCount,
		ShowHeader:      !options.Diff,
		ShowDetails:     options.ShowDetails,
		ColorEnabled:    !options.Diff && options.ColorMode.Enabled(rowWriter),
		SymlinkColor:    options.SymlinkColor,
		BranchColors:    options.BranchColors,
	})
	if renderError != nil {
		return fmt.Errorf(renderErrorTemplateConstant, target.Directory, renderError)
	}

	service.logger.Debug(
		targetReportedMessageConstant,
		zap.String(logFieldTargetConstant, target.Directory),
		zap.Int(logFieldRepositoryCountConstant, len(outcome.Records)),
		zap.Int(logFieldFailureCountConstant, len(outcome.Failures)),
	)
	return nil
}
