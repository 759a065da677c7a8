package flags

import (
	"github.com/spf13/pflag"

	"github.com/temirov/multigit/internal/ui"
)

// ColorFlagName selects the color mode.
const ColorFlagName = "color"

const colorFlagUsageConstant = "Colorize output."

// AddColorFlag registers the color mode choice flag.
func AddColorFlag(flagSet *pflag.FlagSet, defaultMode string) {
	var colorMode string
	AddChoiceFlag(flagSet, &colorMode, ColorFlagName, "", defaultMode, ui.ColorModeChoices, colorFlagUsageConstant)
}

// ReadColorFlag returns the color flag value and whether it was set explicitly.
func ReadColorFlag(flagSet *pflag.FlagSet) (string, bool) {
	if flagSet == nil {
		return "", false
	}
	colorFlag := flagSet.Lookup(ColorFlagName)
	if colorFlag == nil {
		return "", false
	}
	return colorFlag.Value.String(), colorFlag.Changed
}
