package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testConfigurationContentConstant  = "tools:\n  report:\n    fields: path,branch\n    exclude: vendor, build\n  pull:\n    command_timeout: 5m\n"
)

func writeTestConfiguration(testInstance *testing.T) string {
	testInstance.Helper()
	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o600))
	return configurationPath
}

func executeApplication(testInstance *testing.T, arguments ...string) (*Application, string, error) {
	testInstance.Helper()
	application, applicationError := NewApplication()
	require.NoError(testInstance, applicationError)

	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetErr(&bytes.Buffer{})
	application.rootCommand.SetArgs(arguments)

	executionError := application.rootCommand.Execute()
	return application, outputBuffer.String(), executionError
}

func TestApplicationLoadsConfigurationLayers(testInstance *testing.T) {
	configurationPath := writeTestConfiguration(testInstance)
	testInstance.Setenv("MULTIGIT_TOOLS_REPORT_JOBS", "9")

	application, _, executionError := executeApplication(testInstance, "--config", configurationPath, "config")
	require.NoError(testInstance, executionError)

	loadedConfiguration := application.configuration
	require.Equal(testInstance, "path,branch", loadedConfiguration.Tools.Report.Fields)
	require.Equal(testInstance, []string{"vendor", "build"}, loadedConfiguration.Tools.Report.Exclude)
	require.Equal(testInstance, 9, loadedConfiguration.Tools.Report.Jobs)
	require.Equal(testInstance, 30*time.Second, loadedConfiguration.Tools.Report.CommandTimeout)
	require.Equal(testInstance, 5*time.Minute, loadedConfiguration.Tools.Pull.CommandTimeout)
	require.Equal(testInstance, "error", loadedConfiguration.Common.LogLevel)
	require.Equal(testInstance, "console", loadedConfiguration.Common.LogFormat)
	require.Equal(testInstance, configurationPath, application.configurationMetadata.ConfigFileUsed)
}

func TestApplicationConfigCommandPrintsYAML(testInstance *testing.T) {
	configurationPath := writeTestConfiguration(testInstance)

	_, output, executionError := executeApplication(testInstance, "--config", configurationPath, "config")
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "# configuration file: "+configurationPath+"\n")
	require.Contains(testInstance, output, "fields: path,branch")
	require.Contains(testInstance, output, "diff_tool: meld")
	require.Contains(testInstance, output, "log_level: error")
}

func TestApplicationLogFlagsOverrideConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name              string
		arguments         []string
		expectedLogLevel  string
		expectedLogFormat string
		expectFailure     bool
	}{
		{
			name:              "defaults",
			arguments:         []string{"config"},
			expectedLogLevel:  "error",
			expectedLogFormat: "console",
		},
		{
			name:              "flag_overrides",
			arguments:         []string{"--log-level", "debug", "--log-format", "structured", "config"},
			expectedLogLevel:  "debug",
			expectedLogFormat: "structured",
		},
		{
			name:          "unsupported_level",
			arguments:     []string{"--log-level", "chatty", "config"},
			expectFailure: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			arguments := append([]string{"--config", writeTestConfiguration(subTest)}, testCase.arguments...)
			application, _, executionError := executeApplication(subTest, arguments...)
			if testCase.expectFailure {
				require.ErrorContains(subTest, executionError, "unable to create logger")
				return
			}
			require.NoError(subTest, executionError)
			require.Equal(subTest, testCase.expectedLogLevel, application.configuration.Common.LogLevel)
			require.Equal(subTest, testCase.expectedLogFormat, application.configuration.Common.LogFormat)
		})
	}
}

func TestApplicationRegistersSubcommands(testInstance *testing.T) {
	application, applicationError := NewApplication()
	require.NoError(testInstance, applicationError)

	for _, subcommandName := range []string{"pull", "config"} {
		subcommand, _, findError := application.rootCommand.Find([]string{subcommandName})
		require.NoError(testInstance, findError)
		require.Equal(testInstance, subcommandName, subcommand.Name())
	}

	reportCommand, remainingArguments, findError := application.rootCommand.Find([]string{"/srv/checkouts:1"})
	require.NoError(testInstance, findError)
	require.Same(testInstance, application.rootCommand, reportCommand)
	require.Equal(testInstance, []string{"/srv/checkouts:1"}, remainingArguments)
}

func TestSyncLoggerInstanceIgnoresNilLogger(testInstance *testing.T) {
	application := &Application{}
	require.NoError(testInstance, application.syncLoggerInstance(nil))
}
