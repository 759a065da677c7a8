package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	subjectInDirectoryTemplateConstant      = "%s in %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	headRevisionLabelConstant               = "HEAD"
	flagPrefixConstant                      = "-"
)

const (
	gitDescribeSubcommandConstant   = "describe"
	gitBranchSubcommandConstant     = "branch"
	gitStatusSubcommandConstant     = "status"
	gitConfigSubcommandConstant     = "config"
	gitShowSubcommandConstant       = "show"
	gitRevListSubcommandConstant    = "rev-list"
	gitPullSubcommandConstant       = "pull"
	gitConfigGetFlagConstant        = "--get"
	gitShowFormatFlagPrefixConstant = "--format="
)

// gitMessageTemplates holds the four lifecycle templates of one git subcommand.
// start and success take the subject; failure takes subject, exit code and stderr suffix;
// executionFailure takes subject and failure text.
type gitMessageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
	subject          func(formatter CommandMessageFormatter, command ShellCommand) string
}

var gitMessageCatalog = map[string]gitMessageTemplates{
	gitDescribeSubcommandConstant: {
		start:            "Describing %s",
		success:          "Described %s",
		failure:          "Failed to describe %s (exit code %d%s)",
		executionFailure: "Unable to describe %s: %s",
		subject:          CommandMessageFormatter.describeRevisionSubject,
	},
	gitBranchSubcommandConstant: {
		start:            "Identifying current branch in %s",
		success:          "Identified current branch in %s",
		failure:          "Failed to identify current branch in %s (exit code %d%s)",
		executionFailure: "Unable to identify current branch in %s: %s",
		subject:          CommandMessageFormatter.describeDirectorySubject,
	},
	gitStatusSubcommandConstant: {
		start:            "Reviewing working tree status in %s",
		success:          "Collected working tree status for %s",
		failure:          "Failed to review working tree status in %s (exit code %d%s)",
		executionFailure: "Unable to review working tree status in %s: %s",
		subject:          CommandMessageFormatter.describeDirectorySubject,
	},
	gitConfigSubcommandConstant: {
		start:            "Reading %s",
		success:          "Read %s",
		failure:          "Failed to read %s (exit code %d%s)",
		executionFailure: "Unable to read %s: %s",
		subject:          CommandMessageFormatter.describeConfigurationSubject,
	},
	gitShowSubcommandConstant: {
		start:            "Inspecting %s",
		success:          "Inspected %s",
		failure:          "Failed to inspect %s (exit code %d%s)",
		executionFailure: "Unable to inspect %s: %s",
		subject:          CommandMessageFormatter.describeCommitSubject,
	},
	gitRevListSubcommandConstant: {
		start:            "Locating most recent tag in %s",
		success:          "Located most recent tag in %s",
		failure:          "Failed to locate most recent tag in %s (exit code %d%s)",
		executionFailure: "Unable to locate most recent tag in %s: %s",
		subject:          CommandMessageFormatter.describeDirectorySubject,
	},
	gitPullSubcommandConstant: {
		start:            "Pulling with rebase in %s",
		success:          "Pulled with rebase in %s",
		failure:          "Failed to pull with rebase in %s (exit code %d%s)",
		executionFailure: "Unable to pull with rebase in %s: %s",
		subject:          CommandMessageFormatter.describeDirectorySubject,
	},
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

// DescribeCommand renders the command line followed by its working directory.
func (formatter CommandMessageFormatter) DescribeCommand(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = commandLabel + commandArgumentsJoinSeparatorConstant + strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
	}
	return commandLabel + formatter.formatWorkingDirectorySuffix(command)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	templates, known := gitMessageCatalog[strings.TrimSpace(command.Details.Arguments[0])]
	if !known {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subject := templates.subject(formatter, command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subject)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subject)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, subject, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates.executionFailure, subject, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.DescribeCommand(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) describeDirectorySubject(command ShellCommand) string {
	return formatter.describeWorkingDirectory(command)
}

func (formatter CommandMessageFormatter) describeRevisionSubject(command ShellCommand) string {
	revision := formatter.lastNonFlagArgument(command.Details.Arguments[1:])
	if len(revision) == 0 {
		revision = headRevisionLabelConstant
	}
	return fmt.Sprintf(subjectInDirectoryTemplateConstant, revision, formatter.describeWorkingDirectory(command))
}

func (formatter CommandMessageFormatter) describeConfigurationSubject(command ShellCommand) string {
	key := formatter.lastNonFlagArgument(command.Details.Arguments[1:])
	if !containsArgument(command.Details.Arguments, gitConfigGetFlagConstant) || len(key) == 0 {
		key = gitConfigSubcommandConstant
	}
	return fmt.Sprintf(subjectInDirectoryTemplateConstant, key, formatter.describeWorkingDirectory(command))
}

func (formatter CommandMessageFormatter) describeCommitSubject(command ShellCommand) string {
	commitLabel := headRevisionLabelConstant
	for _, argument := range command.Details.Arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if strings.HasPrefix(trimmedArgument, gitShowFormatFlagPrefixConstant) {
			commitLabel = fmt.Sprintf("%s %s", headRevisionLabelConstant, strings.TrimPrefix(trimmedArgument, gitShowFormatFlagPrefixConstant))
		}
	}
	return fmt.Sprintf(subjectInDirectoryTemplateConstant, commitLabel, formatter.describeWorkingDirectory(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) lastNonFlagArgument(arguments []string) string {
	for argumentIndex := len(arguments) - 1; argumentIndex >= 0; argumentIndex-- {
		trimmedArgument := strings.TrimSpace(arguments[argumentIndex])
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		return trimmedArgument
	}
	return emptyStringConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
