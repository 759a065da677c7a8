package ui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/multigit/internal/ui"
)

func TestParseColorMode(testInstance *testing.T) {
	testCases := []struct {
		name          string
		value         string
		expectedMode  ui.ColorMode
		expectFailure bool
	}{
		{name: "empty_defaults_to_auto", value: "", expectedMode: ui.ColorModeAuto},
		{name: "auto", value: "auto", expectedMode: ui.ColorModeAuto},
		{name: "always_mixed_case", value: " Always ", expectedMode: ui.ColorModeAlways},
		{name: "never", value: "never", expectedMode: ui.ColorModeNever},
		{name: "unknown", value: "sometimes", expectFailure: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			mode, parseError := ui.ParseColorMode(testCase.value)
			if testCase.expectFailure {
				require.Error(testInstance, parseError)
				require.IsType(testInstance, ui.UnknownColorModeError{}, parseError)
				require.Contains(testInstance, parseError.Error(), testCase.value)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedMode, mode)
		})
	}
}

func TestColorModeEnabled(testInstance *testing.T) {
	nonTerminalWriter := &bytes.Buffer{}

	require.True(testInstance, ui.ColorModeAlways.Enabled(nonTerminalWriter))
	require.False(testInstance, ui.ColorModeNever.Enabled(nonTerminalWriter))
	require.False(testInstance, ui.ColorModeAuto.Enabled(nonTerminalWriter))
	require.False(testInstance, ui.IsTerminal(nonTerminalWriter))
}
