package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/multigit/internal/execshell"
	"github.com/temirov/multigit/internal/repos/dependencies"
	"github.com/temirov/multigit/internal/repos/discovery"
	"github.com/temirov/multigit/internal/repos/shared"
	"github.com/temirov/multigit/internal/report/collector"
	"github.com/temirov/multigit/internal/report/fields"
	"github.com/temirov/multigit/internal/report/render"
	"github.com/temirov/multigit/internal/ui"
	"github.com/temirov/multigit/internal/utils/flags"
	pathutils "github.com/temirov/multigit/internal/utils/path"
)

const (
	commandUseConstant                    = "multigit [DIR[:N]...]"
	commandShortDescriptionConstant       = "Summarize every git repository below one or more directories"
	commandLongDescriptionConstant        = "multigit finds git checkouts below each DIR (default: current directory) and prints an aligned report of their description, branch, status, and commit time. A :N suffix strips N leading components from displayed paths."
	commandExampleConstant                = "  multigit ~/src\n  multigit -x vendor -x build/cache ~/src:1\n  multigit -a -t date ~/work\n  multigit --diff old-tree new-tree\n  multigit --pull ~/src"
	flagFieldsNameConstant                = "fields"
	flagFieldsShorthandConstant           = "f"
	flagFieldsUsageConstant               = "Comma-separated columns: path,desc,lasttag,branch,status,url,name,time,msg,sub"
	flagAllNameConstant                   = "all"
	flagAllShorthandConstant              = "a"
	flagAllUsageConstant                  = "Show every column"
	flagPathsNameConstant                 = "paths"
	flagPathsShorthandConstant            = "p"
	flagPathsUsageConstant                = "Print only repository paths"
	flagMoreNameConstant                  = "more"
	flagMoreShorthandConstant             = "m"
	flagMoreUsageConstant                 = "Print the changed files of each repository below its row"
	flagTimeFormatNameConstant            = "time-format"
	flagTimeFormatShorthandConstant       = "t"
	flagTimeFormatUsageConstant           = "Format of the commit time column (%s); unknown names disable it"
	timeFormatChoiceSeparatorConstant     = ", "
	flagBranchColorsNameConstant          = "branch-colors"
	flagBranchColorsShorthandConstant     = "c"
	flagBranchColorsUsageConstant         = "Branch color rules pattern=color[,...]; * sets the default (repeatable)"
	flagDiffNameConstant                  = "diff"
	flagDiffUsageConstant                 = "Compare the reports of two directories in an external viewer"
	flagPullNameConstant                  = "pull"
	flagPullUsageConstant                 = "Run git pull --rebase in every repository instead of reporting"
	flagJobsNameConstant                  = "jobs"
	flagJobsShorthandConstant             = "j"
	flagJobsUsageConstant                 = "Number of repositories inspected in parallel"
	flagDiffToolNameConstant              = "diff-tool"
	flagDiffToolUsageConstant             = "Viewer command used by --diff"
	commandEchoVerbosityConstant          = 2
	unknownTimeFormatMessageConstant      = "unknown time format; commit time disabled"
	logFieldTimeFormatConstant            = "time_format"
	walkErrorTemplateConstant             = "unable to read %s: %v\n"
	walkErrorLogMessageConstant           = "directory skipped"
	logFieldDirectoryConstant             = "directory"
	symlinkColorErrorTemplateConstant     = "invalid symlink color: %w"
	pullHandlerMissingMessageConstant     = "pull handler not configured"
	commandExecutionErrorTemplateConstant = "report failed: %w"
)

var errPullHandlerNotConfigured = errors.New(pullHandlerMissingMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current report configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandHandler runs in place of the report for an alternate mode such as --pull.
type CommandHandler func(command *cobra.Command, arguments []string) error

// CommandBuilder assembles the report command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	PullHandler           CommandHandler
	Scanner               RepositoryScanner
	FileSystem            shared.FileSystem
	GitExecutor           shared.GitExecutor
	DiffLauncher          DiffLauncher
	Clock                 shared.Clock
	HomeExpander          *pathutils.HomeExpander
	DiffDirectory         string
}

type commandOptions struct {
	service        Options
	commandTimeout time.Duration
	diffTool       string
}

// Build constructs the report command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.ArbitraryArgs,
		RunE:    builder.run,
	}

	defaults := DefaultCommandConfiguration()
	flagSet := command.Flags()
	flags.AddScanFlags(flagSet, flags.ScanFlagDefaults{MaxDepth: defaults.MaxDepth, CommandTimeout: defaults.CommandTimeout})
	flagSet.StringP(flagFieldsNameConstant, flagFieldsShorthandConstant, defaults.Fields, flagFieldsUsageConstant)
	flagSet.BoolP(flagAllNameConstant, flagAllShorthandConstant, false, flagAllUsageConstant)
	flagSet.BoolP(flagPathsNameConstant, flagPathsShorthandConstant, false, flagPathsUsageConstant)
	flagSet.BoolP(flagMoreNameConstant, flagMoreShorthandConstant, false, flagMoreUsageConstant)
	flagSet.StringP(flagTimeFormatNameConstant, flagTimeFormatShorthandConstant, string(fields.DefaultTimeFormat), fmt.Sprintf(flagTimeFormatUsageConstant, strings.Join(fields.TimeFormatChoices(), timeFormatChoiceSeparatorConstant)))
	flagSet.StringArrayP(flagBranchColorsNameConstant, flagBranchColorsShorthandConstant, nil, flagBranchColorsUsageConstant)
	flags.AddColorFlag(flagSet, defaults.Color)
	flagSet.Bool(flagDiffNameConstant, false, flagDiffUsageConstant)
	flagSet.Bool(flagPullNameConstant, false, flagPullUsageConstant)
	flagSet.IntP(flagJobsNameConstant, flagJobsShorthandConstant, defaults.Jobs, flagJobsUsageConstant)
	flagSet.String(flagDiffToolNameConstant, defaults.DiffTool, flagDiffToolUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if pullRequested, _ := command.Flags().GetBool(flagPullNameConstant); pullRequested {
		if builder.PullHandler == nil {
			return errPullHandlerNotConfigured
		}
		return builder.PullHandler(command, arguments)
	}

	logger := builder.resolveLogger()
	options, optionsError := builder.parseOptions(command, arguments, logger)
	if optionsError != nil {
		return optionsError
	}

	var commandObserver execshell.CommandEventObserver
	if options.service.Verbosity >= commandEchoVerbosityConstant {
		commandObserver = ui.NewConsoleCommandEventLogger(ui.NewConsoleEchoLogger(command.ErrOrStderr()))
	}
	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, options.commandTimeout, commandObserver)
	if executorError != nil {
		return executorError
	}
	recordCollector, collectorError := collector.NewCollector(gitExecutor)
	if collectorError != nil {
		return collectorError
	}

	diffLauncher := builder.DiffLauncher
	if diffLauncher == nil && options.service.Diff {
		externalLauncher, launcherError := NewExternalDiffLauncher(options.diffTool, nil)
		if launcherError != nil {
			return launcherError
		}
		diffLauncher = externalLauncher
	}

	scanner := dependencies.ResolveRepositoryScanner(builder.Scanner, builder.FileSystem, discovery.WithWalkErrorHandler(NewWalkErrorReporter(command.ErrOrStderr(), logger)))
	service, serviceError := NewService(logger, scanner, recordCollector, diffLauncher, dependencies.ResolveClock(builder.Clock), command.OutOrStdout(), command.ErrOrStderr())
	if serviceError != nil {
		return serviceError
	}

	if runError := service.Run(command.Context(), options.service); runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string, logger *zap.Logger) (commandOptions, error) {
	configuration := builder.resolveConfiguration()
	flagSet := command.Flags()

	targets, targetsError := ParseTargets(arguments, builder.resolveHomeExpander())
	if targetsError != nil {
		return commandOptions{}, targetsError
	}

	fieldList := configuration.Fields
	if flagSet.Changed(flagFieldsNameConstant) {
		fieldList, _ = flagSet.GetString(flagFieldsNameConstant)
	}
	if showAll, _ := flagSet.GetBool(flagAllNameConstant); showAll {
		fieldList = fields.AllListConstant
	}
	requestedFields, fieldsError := fields.ParseList(fieldList)
	if fieldsError != nil {
		return commandOptions{}, fieldsError
	}

	timeFormatValue := configuration.TimeFormat
	if flagSet.Changed(flagTimeFormatNameConstant) {
		timeFormatValue, _ = flagSet.GetString(flagTimeFormatNameConstant)
	}
	timeFormat, knownTimeFormat := fields.ParseTimeFormat(timeFormatValue)
	if !knownTimeFormat {
		logger.Warn(unknownTimeFormatMessageConstant, zap.String(logFieldTimeFormatConstant, timeFormatValue))
	}

	colorModeValue := configuration.Color
	if flagColorMode, colorFlagSet := flags.ReadColorFlag(flagSet); colorFlagSet {
		colorModeValue = flagColorMode
	}
	colorMode, colorModeError := ui.ParseColorMode(colorModeValue)
	if colorModeError != nil {
		return commandOptions{}, colorModeError
	}

	flagBranchColors, _ := flagSet.GetStringArray(flagBranchColorsNameConstant)
	branchColors, branchColorsError := render.ParseBranchColorRules(append(append([]string{}, flagBranchColors...), configuration.BranchColors...))
	if branchColorsError != nil {
		return commandOptions{}, branchColorsError
	}

	symlinkColor, symlinkColorError := render.ParseColor(configuration.SymlinkColor)
	if symlinkColorError != nil {
		return commandOptions{}, fmt.Errorf(symlinkColorErrorTemplateConstant, symlinkColorError)
	}

	scanValues := flags.ReadScanFlags(flagSet)
	maxDepth := configuration.MaxDepth
	if scanValues.MaxDepthSet {
		maxDepth = scanValues.MaxDepth
	}
	commandTimeout := configuration.CommandTimeout
	if scanValues.CommandTimeoutSet {
		commandTimeout = scanValues.CommandTimeout
	}

	jobs := configuration.Jobs
	if flagSet.Changed(flagJobsNameConstant) {
		jobs, _ = flagSet.GetInt(flagJobsNameConstant)
	}

	diffTool := configuration.DiffTool
	if flagSet.Changed(flagDiffToolNameConstant) {
		diffTool, _ = flagSet.GetString(flagDiffToolNameConstant)
	}

	pathsOnly, _ := flagSet.GetBool(flagPathsNameConstant)
	showDetails, _ := flagSet.GetBool(flagMoreNameConstant)
	diffRequested, _ := flagSet.GetBool(flagDiffNameConstant)

	diffDirectory := builder.DiffDirectory
	if len(diffDirectory) == 0 {
		diffDirectory = os.TempDir()
	}

	return commandOptions{
		service: Options{
			Targets: targets,
			Scan: discovery.Options{
				Excludes: append(append([]string{}, configuration.Exclude...), scanValues.Excludes...),
				MaxDepth: maxDepth,
			},
			Fields:         requestedFields,
			PathsOnly:      pathsOnly,
			ShowDetails:    showDetails,
			TimeFormat:     timeFormat,
			BranchColors:   branchColors,
			SymlinkColor:   symlinkColor,
			ColorMode:      colorMode,
			Concurrency:    jobs,
			Diff:           diffRequested,
			DiffDirectory:  diffDirectory,
			DiffFilePrefix: configuration.DiffFilePrefix,
			Verbosity:      scanValues.Verbosity,
		},
		commandTimeout: commandTimeout,
		diffTool:       diffTool,
	}, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().sanitize()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveHomeExpander() *pathutils.HomeExpander {
	if builder.HomeExpander != nil {
		return builder.HomeExpander
	}
	return pathutils.NewHomeExpander()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

// NewWalkErrorReporter prints unreadable directories to errorWriter and logs them as warnings.
func NewWalkErrorReporter(errorWriter io.Writer, logger *zap.Logger) discovery.WalkErrorHandler {
	return func(directoryPath string, walkError error) {
		fmt.Fprintf(errorWriter, walkErrorTemplateConstant, directoryPath, walkError)
		logger.Warn(walkErrorLogMessageConstant, zap.String(logFieldDirectoryConstant, directoryPath), zap.Error(walkError))
	}
}
