package pull

import (
	"strings"
	"time"

	"github.com/temirov/multigit/internal/repos/discovery"
)

// DefaultCommandTimeout bounds each git pull.
const DefaultCommandTimeout = 10 * time.Minute

const (
	maxDepthConfigKeyConstant         = "max_depth"
	excludeConfigKeyConstant          = "exclude"
	commandTimeoutConfigKeyConstant   = "command_timeout"
	configurationKeySeparatorConstant = "."
)

// CommandConfiguration captures configuration values for the pull command.
type CommandConfiguration struct {
	MaxDepth       int           `mapstructure:"max_depth" yaml:"max_depth"`
	Exclude        []string      `mapstructure:"exclude" yaml:"exclude"`
	CommandTimeout time.Duration `mapstructure:"command_timeout" yaml:"command_timeout"`
}

// DefaultCommandConfiguration provides baseline configuration values for pulls.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		MaxDepth:       discovery.DefaultMaxDepth,
		Exclude:        nil,
		CommandTimeout: DefaultCommandTimeout,
	}
}

// DefaultConfigurationValues returns the pull defaults keyed below rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + maxDepthConfigKeyConstant:       defaults.MaxDepth,
		prefix + excludeConfigKeyConstant:        []string{},
		prefix + commandTimeoutConfigKeyConstant: defaults.CommandTimeout.String(),
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	if configuration.MaxDepth < 0 {
		sanitized.MaxDepth = discovery.DefaultMaxDepth
	}
	if configuration.CommandTimeout < 0 {
		sanitized.CommandTimeout = 0
	}
	sanitized.Exclude = make([]string, 0, len(configuration.Exclude))
	for _, excludedDirectory := range configuration.Exclude {
		if trimmed := strings.TrimSpace(excludedDirectory); len(trimmed) > 0 {
			sanitized.Exclude = append(sanitized.Exclude, trimmed)
		}
	}
	return sanitized
}
