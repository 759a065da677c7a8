package report

import (
	"strings"
	"time"

	"github.com/temirov/multigit/internal/repos/discovery"
	"github.com/temirov/multigit/internal/report/collector"
	"github.com/temirov/multigit/internal/report/fields"
	"github.com/temirov/multigit/internal/ui"
)

// DefaultCommandTimeout bounds each git invocation of a report.
const DefaultCommandTimeout = 30 * time.Second

const (
	defaultBranchColorsConstant       = "main=green,master=green"
	defaultSymlinkColorConstant       = "cyan"
	fieldsConfigKeyConstant           = "fields"
	timeFormatConfigKeyConstant       = "time_format"
	maxDepthConfigKeyConstant         = "max_depth"
	excludeConfigKeyConstant          = "exclude"
	branchColorsConfigKeyConstant     = "branch_colors"
	symlinkColorConfigKeyConstant     = "symlink_color"
	colorConfigKeyConstant            = "color"
	jobsConfigKeyConstant             = "jobs"
	commandTimeoutConfigKeyConstant   = "command_timeout"
	diffToolConfigKeyConstant         = "diff_tool"
	diffFilePrefixConfigKeyConstant   = "diff_file_prefix"
	configurationKeySeparatorConstant = "."
)

// CommandConfiguration captures configuration values for the report command.
type CommandConfiguration struct {
	Fields         string        `mapstructure:"fields" yaml:"fields"`
	TimeFormat     string        `mapstructure:"time_format" yaml:"time_format"`
	MaxDepth       int           `mapstructure:"max_depth" yaml:"max_depth"`
	Exclude        []string      `mapstructure:"exclude" yaml:"exclude"`
	BranchColors   []string      `mapstructure:"branch_colors" yaml:"branch_colors"`
	SymlinkColor   string        `mapstructure:"symlink_color" yaml:"symlink_color"`
	Color          string        `mapstructure:"color" yaml:"color"`
	Jobs           int           `mapstructure:"jobs" yaml:"jobs"`
	CommandTimeout time.Duration `mapstructure:"command_timeout" yaml:"command_timeout"`
	DiffTool       string        `mapstructure:"diff_tool" yaml:"diff_tool"`
	DiffFilePrefix string        `mapstructure:"diff_file_prefix" yaml:"diff_file_prefix"`
}

// DefaultCommandConfiguration provides baseline configuration values for reports.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Fields:         fields.DefaultListConstant,
		TimeFormat:     string(fields.DefaultTimeFormat),
		MaxDepth:       discovery.DefaultMaxDepth,
		Exclude:        nil,
		BranchColors:   []string{defaultBranchColorsConstant},
		SymlinkColor:   defaultSymlinkColorConstant,
		Color:          string(ui.ColorModeAuto),
		Jobs:           collector.DefaultConcurrency,
		CommandTimeout: DefaultCommandTimeout,
		DiffTool:       DefaultDiffToolConstant,
		DiffFilePrefix: DefaultDiffFilePrefixConstant,
	}
}

// DefaultConfigurationValues returns the report defaults keyed below rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + fieldsConfigKeyConstant:         defaults.Fields,
		prefix + timeFormatConfigKeyConstant:     defaults.TimeFormat,
		prefix + maxDepthConfigKeyConstant:       defaults.MaxDepth,
		prefix + excludeConfigKeyConstant:        []string{},
		prefix + branchColorsConfigKeyConstant:   defaults.BranchColors,
		prefix + symlinkColorConfigKeyConstant:   defaults.SymlinkColor,
		prefix + colorConfigKeyConstant:          defaults.Color,
		prefix + jobsConfigKeyConstant:           defaults.Jobs,
		prefix + commandTimeoutConfigKeyConstant: defaults.CommandTimeout.String(),
		prefix + diffToolConfigKeyConstant:       defaults.DiffTool,
		prefix + diffFilePrefixConfigKeyConstant: defaults.DiffFilePrefix,
	}
}

// sanitize trims values and restores defaults for settings that cannot be empty.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.Fields = strings.TrimSpace(configuration.Fields)
	if len(sanitized.Fields) == 0 {
		sanitized.Fields = defaults.Fields
	}
	sanitized.TimeFormat = strings.TrimSpace(configuration.TimeFormat)
	if configuration.MaxDepth < 0 {
		sanitized.MaxDepth = defaults.MaxDepth
	}
	sanitized.Exclude = sanitizeList(configuration.Exclude)
	sanitized.BranchColors = sanitizeList(configuration.BranchColors)
	sanitized.SymlinkColor = strings.TrimSpace(configuration.SymlinkColor)
	if len(sanitized.SymlinkColor) == 0 {
		sanitized.SymlinkColor = defaults.SymlinkColor
	}
	sanitized.Color = strings.TrimSpace(configuration.Color)
	if configuration.Jobs < 1 {
		sanitized.Jobs = defaults.Jobs
	}
	if configuration.CommandTimeout < 0 {
		sanitized.CommandTimeout = 0
	}
	sanitized.DiffTool = strings.TrimSpace(configuration.DiffTool)
	if len(sanitized.DiffTool) == 0 {
		sanitized.DiffTool = defaults.DiffTool
	}
	sanitized.DiffFilePrefix = strings.TrimSpace(configuration.DiffFilePrefix)
	if len(sanitized.DiffFilePrefix) == 0 {
		sanitized.DiffFilePrefix = defaults.DiffFilePrefix
	}

	return sanitized
}

func sanitizeList(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
