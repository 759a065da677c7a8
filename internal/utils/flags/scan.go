package flags

import (
	"time"

	"github.com/spf13/pflag"
)

// Flags shared by every command that scans target directories.
const (
	ExcludeFlagName                 = "exclude"
	ExcludeFlagShorthand            = "x"
	MaxDepthFlagName                = "max-depth"
	MaxDepthFlagShorthand           = "d"
	CommandTimeoutFlagName          = "timeout"
	VerboseFlagName                 = "verbose"
	VerboseFlagShorthand            = "v"
	excludeFlagUsageConstant        = "Exclude directory DIR: a bare name at any depth, or a path relative to the target (repeatable)"
	maxDepthFlagUsageConstant       = "Maximum directory depth to search"
	commandTimeoutFlagUsageConstant = "Timeout for each git command (0 disables)"
	verboseFlagUsageConstant        = "Increase verbosity: -v shows progress and timings, -vv echoes git commands"
)

// ScanFlagDefaults supplies the defaults displayed for the scan flags.
type ScanFlagDefaults struct {
	MaxDepth       int
	CommandTimeout time.Duration
}

// ScanFlagValues holds the scan flag values read from a flag set. The Set fields report explicit use.
type ScanFlagValues struct {
	Excludes          []string
	MaxDepth          int
	MaxDepthSet       bool
	CommandTimeout    time.Duration
	CommandTimeoutSet bool
	Verbosity         int
}

// AddScanFlags registers the exclude, max-depth, timeout, and verbose flags.
func AddScanFlags(flagSet *pflag.FlagSet, defaults ScanFlagDefaults) {
	if flagSet == nil {
		return
	}
	flagSet.StringArrayP(ExcludeFlagName, ExcludeFlagShorthand, nil, excludeFlagUsageConstant)
	flagSet.IntP(MaxDepthFlagName, MaxDepthFlagShorthand, defaults.MaxDepth, maxDepthFlagUsageConstant)
	flagSet.Duration(CommandTimeoutFlagName, defaults.CommandTimeout, commandTimeoutFlagUsageConstant)
	flagSet.CountP(VerboseFlagName, VerboseFlagShorthand, verboseFlagUsageConstant)
}

// ReadScanFlags collects the scan flag values. Flags missing from flagSet read as zero values.
func ReadScanFlags(flagSet *pflag.FlagSet) ScanFlagValues {
	var values ScanFlagValues
	if flagSet == nil {
		return values
	}
	if flagSet.Lookup(ExcludeFlagName) != nil {
		values.Excludes, _ = flagSet.GetStringArray(ExcludeFlagName)
	}
	if flagSet.Lookup(MaxDepthFlagName) != nil {
		values.MaxDepth, _ = flagSet.GetInt(MaxDepthFlagName)
		values.MaxDepthSet = flagSet.Changed(MaxDepthFlagName)
	}
	if flagSet.Lookup(CommandTimeoutFlagName) != nil {
		values.CommandTimeout, _ = flagSet.GetDuration(CommandTimeoutFlagName)
		values.CommandTimeoutSet = flagSet.Changed(CommandTimeoutFlagName)
	}
	if flagSet.Lookup(VerboseFlagName) != nil {
		values.Verbosity, _ = flagSet.GetCount(VerboseFlagName)
	}
	return values
}
