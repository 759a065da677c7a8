package pull

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/multigit/internal/execshell"
	"github.com/temirov/multigit/internal/repos/dependencies"
	"github.com/temirov/multigit/internal/repos/discovery"
	"github.com/temirov/multigit/internal/repos/shared"
	"github.com/temirov/multigit/internal/report"
	"github.com/temirov/multigit/internal/ui"
	"github.com/temirov/multigit/internal/utils/flags"
	pathutils "github.com/temirov/multigit/internal/utils/path"
)

const (
	commandUseConstant              = "pull [DIR[:N]...]"
	commandShortDescriptionConstant = "Run git pull --rebase in every repository below the directories"
	commandLongDescriptionConstant  = "pull finds git checkouts below each DIR (default: current directory) and runs git pull --rebase in each one, printing the repository path followed by git's output. A failing repository is reported and the remaining ones are still pulled."
	commandEchoVerbosityConstant    = 2
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current pull configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the pull command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Scanner               RepositoryScanner
	FileSystem            shared.FileSystem
	GitExecutor           shared.GitExecutor
	Clock                 shared.Clock
	HomeExpander          *pathutils.HomeExpander
}

// Build constructs the pull command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.ArbitraryArgs,
		RunE:  builder.Run,
	}

	defaults := DefaultCommandConfiguration()
	flags.AddScanFlags(command.Flags(), flags.ScanFlagDefaults{MaxDepth: defaults.MaxDepth, CommandTimeout: defaults.CommandTimeout})
	flags.AddColorFlag(command.Flags(), string(ui.ColorModeAuto))

	return command, nil
}

// Run pulls the targets named by arguments using the scan flags registered on command.
// It also serves the report command's --pull mode, whose flag set carries the same scan flags.
func (builder *CommandBuilder) Run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()

	targets, targetsError := report.ParseTargets(arguments, builder.resolveHomeExpander())
	if targetsError != nil {
		return targetsError
	}

	scanValues := flags.ReadScanFlags(command.Flags())
	maxDepth := configuration.MaxDepth
	if scanValues.MaxDepthSet {
		maxDepth = scanValues.MaxDepth
	}
	commandTimeout := configuration.CommandTimeout
	if scanValues.CommandTimeoutSet {
		commandTimeout = scanValues.CommandTimeout
	}

	colorModeValue, _ := flags.ReadColorFlag(command.Flags())
	colorMode, colorModeError := ui.ParseColorMode(colorModeValue)
	if colorModeError != nil {
		return colorModeError
	}

	var commandObserver execshell.CommandEventObserver
	if scanValues.Verbosity >= commandEchoVerbosityConstant {
		commandObserver = ui.NewConsoleCommandEventLogger(ui.NewConsoleEchoLogger(command.ErrOrStderr()))
	}
	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, commandTimeout, commandObserver)
	if executorError != nil {
		return executorError
	}

	scanner := dependencies.ResolveRepositoryScanner(builder.Scanner, builder.FileSystem, discovery.WithWalkErrorHandler(report.NewWalkErrorReporter(command.ErrOrStderr(), logger)))
	service, serviceError := NewService(logger, scanner, gitExecutor, dependencies.ResolveClock(builder.Clock), command.OutOrStdout(), command.ErrOrStderr())
	if serviceError != nil {
		return serviceError
	}

	return service.Pull(command.Context(), Options{
		Targets: targets,
		Scan: discovery.Options{
			Excludes: append(append([]string{}, configuration.Exclude...), scanValues.Excludes...),
			MaxDepth: maxDepth,
		},
		ColorMode: colorMode,
		Verbosity: scanValues.Verbosity,
	})
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
