package flags

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/temirov/multigit/internal/ui"
)

func TestColorFlagAcceptsColorModes(t *testing.T) {
	for _, colorMode := range ui.ColorModeChoices {
		t.Run(colorMode, func(t *testing.T) {
			flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
			AddColorFlag(flagSet, string(ui.ColorModeAuto))

			require.NoError(t, flagSet.Parse([]string{"--color", colorMode}))
			parsedMode, changed := ReadColorFlag(flagSet)
			require.True(t, changed)
			require.Equal(t, colorMode, parsedMode)

			_, parseError := ui.ParseColorMode(parsedMode)
			require.NoError(t, parseError)
		})
	}
}

func TestColorFlagRejectsUnknownMode(t *testing.T) {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddColorFlag(flagSet, string(ui.ColorModeAuto))

	require.Error(t, flagSet.Parse([]string{"--color", "sometimes"}))
	parsedMode, changed := ReadColorFlag(flagSet)
	require.False(t, changed)
	require.Equal(t, string(ui.ColorModeAuto), parsedMode)
}
