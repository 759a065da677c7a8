package collector_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/multigit/internal/execshell"
	"github.com/temirov/multigit/internal/repos/discovery"
	"github.com/temirov/multigit/internal/report/collector"
	"github.com/temirov/multigit/internal/report/fields"
)

const (
	testRepositoryPathConstant = "/repos/alpha"
	testReferenceUnixConstant  = 1_700_000_000
)

type stubResponse struct {
	output   string
	exitCode int
}

type stubGitExecutor struct {
	mutex     sync.Mutex
	responses map[string]stubResponse
	calls     []string
}

func newStubGitExecutor(responses map[string]stubResponse) *stubGitExecutor {
	return &stubGitExecutor{responses: responses}
}

func stubKey(workingDirectory string, arguments ...string) string {
	return workingDirectory + "|" + strings.Join(arguments, " ")
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	key := stubKey(details.WorkingDirectory, details.Arguments...)
	executor.mutex.Lock()
	executor.calls = append(executor.calls, key)
	response, exists := executor.responses[key]
	executor.mutex.Unlock()

	if !exists {
		response = stubResponse{exitCode: 128}
	}
	result := execshell.ExecutionResult{StandardOutput: response.output, ExitCode: response.exitCode}
	if response.exitCode != 0 {
		command := execshell.ShellCommand{Name: execshell.CommandGit, Details: details}
		result.StandardError = "fatal: stubbed failure"
		return result, execshell.CommandFailedError{Command: command, Result: result}
	}
	return result, nil
}

func (executor *stubGitExecutor) recordedCalls() []string {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	return append([]string{}, executor.calls...)
}

func fullResponses(repositoryPath string) map[string]stubResponse {
	responses := map[string]stubResponse{
		stubKey(repositoryPath, "describe", "--tags", "--always"):       {output: "v1.2.0-3-gabc1234\n"},
		stubKey(repositoryPath, "branch", "--show-current"):             {output: "main\n"},
		stubKey(repositoryPath, "status", "--porcelain"):                {output: " M a.go\n?? scratch.txt\n"},
		stubKey(repositoryPath, "config", "--get", "remote.origin.url"): {output: "git@github.com:temirov/alpha.git\n"},
		stubKey(repositoryPath, "rev-list", "--tags", "--max-count=1"):  {output: "0123abcd\n"},
		stubKey(repositoryPath, "describe", "--tags", "0123abcd"):       {output: "v1.2.0\n"},
		stubKey(repositoryPath, "show", "-s", "--format=%s"):            {output: "Fix the widget\n"},
		stubKey(repositoryPath, "show", "-s", "--format=%ct"):           {output: "1699996400\n"},
		stubKey(repositoryPath, "show", "-s", "--format=%cs"):           {output: "2023-11-14\n"},
	}
	dateTimeKey := stubKey(repositoryPath, "show", "-s", "--format=%cd", "--date=format-local:%Y-%m-%d %H:%M:%S")
	responses[dateTimeKey] = stubResponse{output: "2023-11-14 21:13:20\n"}
	return responses
}

func TestCollectorCollect(testInstance *testing.T) {
	referenceTime := time.Unix(testReferenceUnixConstant, 0)
	testCases := []struct {
		name           string
		entry          discovery.RepositoryEntry
		requested      []fields.Field
		timeFormat     fields.TimeFormat
		expectedValues map[fields.Field]string
		expectedCalls  int
	}{
		{
			name:           "path_only_runs_no_git",
			entry:          discovery.RepositoryEntry{Path: testRepositoryPathConstant},
			requested:      []fields.Field{fields.Path},
			timeFormat:     fields.TimeFormatRelative,
			expectedValues: map[fields.Field]string{fields.Path: testRepositoryPathConstant},
			expectedCalls:  0,
		},
		{
			name:       "all_fields_relative_time",
			entry:      discovery.RepositoryEntry{Path: testRepositoryPathConstant, IsSubmodule: true},
			requested:  []fields.Field{fields.Path, fields.URL, fields.Name, fields.Description, fields.LastTag, fields.Submodule, fields.Branch, fields.Time, fields.Message, fields.Status},
			timeFormat: fields.TimeFormatRelative,
			expectedValues: map[fields.Field]string{
				fields.Path:        testRepositoryPathConstant,
				fields.URL:         "git@github.com:temirov/alpha.git",
				fields.Name:        "alpha",
				fields.Description: "v1.2.0-3-gabc1234",
				fields.LastTag:     "v1.2.0",
				fields.Submodule:   collector.SubmoduleMarkerConstant,
				fields.Branch:      "main",
				fields.Time:        "1h",
				fields.Message:     "Fix the widget",
				fields.Status:      "M1 ?1",
			},
			expectedCalls: 8,
		},
		{
			name:           "date_format",
			entry:          discovery.RepositoryEntry{Path: testRepositoryPathConstant},
			requested:      []fields.Field{fields.Time},
			timeFormat:     fields.TimeFormatDate,
			expectedValues: map[fields.Field]string{fields.Time: "2023-11-14"},
			expectedCalls:  1,
		},
		{
			name:           "datetime_format",
			entry:          discovery.RepositoryEntry{Path: testRepositoryPathConstant},
			requested:      []fields.Field{fields.Time},
			timeFormat:     fields.TimeFormatDateTime,
			expectedValues: map[fields.Field]string{fields.Time: "2023-11-14 21:13:20"},
			expectedCalls:  1,
		},
		{
			name:           "suppressed_time_runs_no_git",
			entry:          discovery.RepositoryEntry{Path: testRepositoryPathConstant},
			requested:      []fields.Field{fields.Time},
			timeFormat:     fields.TimeFormatNone,
			expectedValues: map[fields.Field]string{},
			expectedCalls:  0,
		},
		{
			name:           "name_without_url_still_queries_once",
			entry:          discovery.RepositoryEntry{Path: testRepositoryPathConstant},
			requested:      []fields.Field{fields.Name},
			timeFormat:     fields.TimeFormatRelative,
			expectedValues: map[fields.Field]string{fields.Name: "alpha"},
			expectedCalls:  1,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			gitExecutor := newStubGitExecutor(fullResponses(testRepositoryPathConstant))
			recordCollector, creationError := collector.NewCollector(gitExecutor)
			require.NoError(testInstance, creationError)

			record, collectError := recordCollector.Collect(context.Background(), testCase.entry, collector.Options{
				Fields:        fields.NewSet(testCase.requested...),
				TimeFormat:    testCase.timeFormat,
				ReferenceTime: referenceTime,
			})
			require.NoError(testInstance, collectError)
			require.Equal(testInstance, testCase.expectedValues, record.Values)
			require.Len(testInstance, gitExecutor.recordedCalls(), testCase.expectedCalls)
		})
	}
}

func TestCollectorCollectsStatusDetailLines(testInstance *testing.T) {
	gitExecutor := newStubGitExecutor(fullResponses(testRepositoryPathConstant))
	recordCollector, creationError := collector.NewCollector(gitExecutor)
	require.NoError(testInstance, creationError)

	record, collectError := recordCollector.Collect(context.Background(), discovery.RepositoryEntry{Path: testRepositoryPathConstant}, collector.Options{
		Fields: fields.NewSet(fields.Status, fields.StatusLines),
	})
	require.NoError(testInstance, collectError)
	require.Equal(testInstance, []string{" M a.go"}, record.DetailLines)
	require.Equal(testInstance, "M1 ?1", record.Value(fields.Status))
}

func TestCollectorLastTagWithoutTags(testInstance *testing.T) {
	gitExecutor := newStubGitExecutor(map[string]stubResponse{
		stubKey(testRepositoryPathConstant, "rev-list", "--tags", "--max-count=1"): {output: ""},
	})
	recordCollector, creationError := collector.NewCollector(gitExecutor)
	require.NoError(testInstance, creationError)

	record, collectError := recordCollector.Collect(context.Background(), discovery.RepositoryEntry{Path: testRepositoryPathConstant}, collector.Options{
		Fields: fields.NewSet(fields.LastTag),
	})
	require.NoError(testInstance, collectError)
	require.Empty(testInstance, record.Value(fields.LastTag))
	require.Len(testInstance, gitExecutor.recordedCalls(), 1)
}

func TestCollectorFailureDiscardsRecord(testInstance *testing.T) {
	responses := fullResponses(testRepositoryPathConstant)
	delete(responses, stubKey(testRepositoryPathConstant, "config", "--get", "remote.origin.url"))
	recordCollector, creationError := collector.NewCollector(newStubGitExecutor(responses))
	require.NoError(testInstance, creationError)

	record, collectError := recordCollector.Collect(context.Background(), discovery.RepositoryEntry{Path: testRepositoryPathConstant}, collector.Options{
		Fields: fields.NewSet(fields.Path, fields.URL),
	})
	require.Error(testInstance, collectError)
	require.Empty(testInstance, record.Values)

	var collectionError collector.RepositoryCollectionError
	require.True(testInstance, errors.As(collectError, &collectionError))
	require.Equal(testInstance, testRepositoryPathConstant, collectionError.RepositoryPath)
	require.Contains(testInstance, collectError.Error(), "fatal: stubbed failure")

	var commandFailure execshell.CommandFailedError
	require.True(testInstance, errors.As(collectError, &commandFailure))
}

func TestCollectorCollectAllKeepsScanOrderAndIsolatesFailures(testInstance *testing.T) {
	repositoryPaths := []string{"/repos/a", "/repos/b", "/repos/c", "/repos/d", "/repos/e"}
	responses := map[string]stubResponse{}
	entries := make([]discovery.RepositoryEntry, 0, len(repositoryPaths))
	for _, repositoryPath := range repositoryPaths {
		entries = append(entries, discovery.RepositoryEntry{Path: repositoryPath})
		if repositoryPath == "/repos/c" {
			continue
		}
		responses[stubKey(repositoryPath, "branch", "--show-current")] = stubResponse{output: "main\n"}
	}

	recordCollector, creationError := collector.NewCollector(newStubGitExecutor(responses))
	require.NoError(testInstance, creationError)

	progressed := []string{}
	outcome, collectError := recordCollector.CollectAll(context.Background(), entries, collector.Options{
		Fields:      fields.NewSet(fields.Path, fields.Branch),
		Concurrency: 2,
		Progress: func(entry discovery.RepositoryEntry) {
			progressed = append(progressed, entry.Path)
		},
	})
	require.NoError(testInstance, collectError)

	collectedPaths := []string{}
	for _, record := range outcome.Records {
		collectedPaths = append(collectedPaths, record.Value(fields.Path))
		require.Equal(testInstance, "main", record.Value(fields.Branch))
	}
	require.Equal(testInstance, []string{"/repos/a", "/repos/b", "/repos/d", "/repos/e"}, collectedPaths)
	require.Len(testInstance, outcome.Failures, 1)
	require.Equal(testInstance, "/repos/c", outcome.Failures[0].RepositoryPath)
	require.ElementsMatch(testInstance, repositoryPaths, progressed)
}

func TestCollectorCollectAllHonorsCancellation(testInstance *testing.T) {
	recordCollector, creationError := collector.NewCollector(newStubGitExecutor(nil))
	require.NoError(testInstance, creationError)

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	_, collectError := recordCollector.CollectAll(cancelledContext, []discovery.RepositoryEntry{{Path: "/repos/a"}}, collector.Options{
		Fields: fields.NewSet(fields.Path),
	})
	require.ErrorIs(testInstance, collectError, context.Canceled)
}

func TestCollectorRequiresExecutor(testInstance *testing.T) {
	_, creationError := collector.NewCollector(nil)
	require.ErrorIs(testInstance, creationError, collector.ErrGitExecutorNotConfigured)
}

func TestAnySubmodule(testInstance *testing.T) {
	plainRecord := collector.Record{Values: map[fields.Field]string{}}
	submoduleRecord := collector.Record{Values: map[fields.Field]string{fields.Submodule: collector.SubmoduleMarkerConstant}}
	require.False(testInstance, collector.AnySubmodule([]collector.Record{plainRecord}))
	require.True(testInstance, collector.AnySubmodule([]collector.Record{plainRecord, submoduleRecord}))
}

func TestRepositoryNameFromURL(testInstance *testing.T) {
	testCases := map[string]string{
		"git@github.com:temirov/multigit.git":     "multigit",
		"https://github.com/temirov/multigit.git": "multigit",
		"https://example.com/group/project/":      "project",
		"git@host:bare.git":                       "bare",
		"/srv/git/local":                          "local",
		"":                                        "",
	}
	for remoteURL, expectedName := range testCases {
		require.Equal(testInstance, expectedName, collector.RepositoryNameFromURL(remoteURL), remoteURL)
	}
}
