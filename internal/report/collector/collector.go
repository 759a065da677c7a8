// Package collector runs the git queries behind requested report fields for each repository.
package collector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/temirov/multigit/internal/execshell"
	"github.com/temirov/multigit/internal/repos/discovery"
	"github.com/temirov/multigit/internal/repos/shared"
	"github.com/temirov/multigit/internal/report/fields"
	"github.com/temirov/multigit/internal/report/status"
)

// SubmoduleMarkerConstant is the value of the submodule column for submodule checkouts.
const SubmoduleMarkerConstant = "mod"

// DefaultConcurrency is the worker count used when none is configured.
const DefaultConcurrency = 4

const (
	gitDescribeSubcommandConstant     = "describe"
	gitBranchSubcommandConstant       = "branch"
	gitStatusSubcommandConstant       = "status"
	gitConfigSubcommandConstant       = "config"
	gitRevListSubcommandConstant      = "rev-list"
	gitShowSubcommandConstant         = "show"
	gitTagsFlagConstant               = "--tags"
	gitAlwaysFlagConstant             = "--always"
	gitShowCurrentFlagConstant        = "--show-current"
	gitPorcelainFlagConstant          = "--porcelain"
	gitGetFlagConstant                = "--get"
	gitRemoteOriginURLKeyConstant     = "remote.origin.url"
	gitMaxCountOneFlagConstant        = "--max-count=1"
	gitSuppressDiffFlagConstant       = "-s"
	gitSubjectFormatFlagConstant      = "--format=%s"
	gitUnixTimeFormatFlagConstant     = "--format=%ct"
	gitShortDateFormatFlagConstant    = "--format=%cs"
	gitCommitDateFormatFlagConstant   = "--format=%cd"
	gitLocalDateTimeFlagConstant      = "--date=format-local:%Y-%m-%d %H:%M:%S"
	gitRepositorySuffixConstant       = ".git"
	repositoryNameSeparatorsConstant  = "/:"
	commitTimeParseErrorTemplate      = "unexpected commit time %q: %w"
	repositoryCollectionErrorTemplate = "%s: %v"
	gitExecutorNotConfiguredMessage   = "git executor not configured"
)

// ErrGitExecutorNotConfigured indicates a Collector was built without a git executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorNotConfiguredMessage)

// Record holds the collected values for one repository. Fields that were not requested stay empty.
type Record struct {
	Entry       discovery.RepositoryEntry
	Values      map[fields.Field]string
	DetailLines []string
}

// Value returns the collected value for field, or an empty string.
func (record Record) Value(field fields.Field) string {
	return record.Values[field]
}

// Options controls a collection pass.
type Options struct {
	Fields        fields.Set
	TimeFormat    fields.TimeFormat
	ReferenceTime time.Time
	Concurrency   int
	// Progress, when set, is called once per repository as it finishes. Calls are serialized.
	Progress func(entry discovery.RepositoryEntry)
}

// RepositoryCollectionError reports a repository whose record was discarded.
type RepositoryCollectionError struct {
	RepositoryPath string
	Cause          error
}

// Error prefixes the cause with the repository path.
func (collectionError RepositoryCollectionError) Error() string {
	return fmt.Sprintf(repositoryCollectionErrorTemplate, collectionError.RepositoryPath, collectionError.Cause)
}

// Unwrap exposes the underlying failure.
func (collectionError RepositoryCollectionError) Unwrap() error {
	return collectionError.Cause
}

// Outcome lists the successful records in input order together with the failed repositories.
type Outcome struct {
	Records  []Record
	Failures []RepositoryCollectionError
}

// Collector gathers report records through git.
type Collector struct {
	gitExecutor shared.GitExecutor
}

// NewCollector constructs a Collector.
func NewCollector(gitExecutor shared.GitExecutor) (*Collector, error) {
	if gitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &Collector{gitExecutor: gitExecutor}, nil
}

// Collect builds the record for one repository, running only the queries its requested fields need.
// Any failing query fails the whole record.
func (collector *Collector) Collect(executionContext context.Context, entry discovery.RepositoryEntry, options Options) (Record, error) {
	record := Record{Entry: entry, Values: make(map[fields.Field]string)}
	if options.Fields.Has(fields.Path) {
		record.Values[fields.Path] = entry.Path
	}
	if options.Fields.Has(fields.Submodule) && entry.IsSubmodule {
		record.Values[fields.Submodule] = SubmoduleMarkerConstant
	}

	for _, query := range fields.RequiredQueries(options.Fields) {
		if query == fields.QueryCommitTime && options.TimeFormat.Suppressed() {
			continue
		}
		queryError := collector.runQuery(executionContext, query, entry.Path, options, &record)
		if queryError != nil {
			return Record{}, RepositoryCollectionError{RepositoryPath: entry.Path, Cause: queryError}
		}
	}

	return record, nil
}

// CollectAll collects every entry on a bounded worker pool. Per-repository failures are
// returned in the outcome; only cancellation of executionContext produces an error.
func (collector *Collector) CollectAll(executionContext context.Context, entries []discovery.RepositoryEntry, options Options) (Outcome, error) {
	concurrency := options.Concurrency
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	records := make([]Record, len(entries))
	collectionErrors := make([]error, len(entries))
	var progressMutex sync.Mutex

	var workerGroup errgroup.Group
	workerGroup.SetLimit(concurrency)
	for entryIndex := range entries {
		entryIndex := entryIndex
		entry := entries[entryIndex]
		workerGroup.Go(func() error {
			records[entryIndex], collectionErrors[entryIndex] = collector.Collect(executionContext, entry, options)
			if options.Progress != nil {
				progressMutex.Lock()
				options.Progress(entry)
				progressMutex.Unlock()
			}
			return nil
		})
	}
	_ = workerGroup.Wait()

	if contextError := executionContext.Err(); contextError != nil {
		return Outcome{}, contextError
	}

	outcome := Outcome{Records: make([]Record, 0, len(entries))}
	for entryIndex := range entries {
		var collectionError RepositoryCollectionError
		if errors.As(collectionErrors[entryIndex], &collectionError) {
			outcome.Failures = append(outcome.Failures, collectionError)
			continue
		}
		outcome.Records = append(outcome.Records, records[entryIndex])
	}
	return outcome, nil
}

// AnySubmodule reports whether any record carries the submodule marker.
func AnySubmodule(records []Record) bool {
	for _, record := range records {
		if len(record.Value(fields.Submodule)) > 0 {
			return true
		}
	}
	return false
}

func (collector *Collector) runQuery(executionContext context.Context, query fields.Query, repositoryPath string, options Options, record *Record) error {
	switch query {
	case fields.QueryDescribe:
		description, describeError := collector.gitOutput(executionContext, repositoryPath, gitDescribeSubcommandConstant, gitTagsFlagConstant, gitAlwaysFlagConstant)
		record.Values[fields.Description] = description
		return describeError
	case fields.QueryBranch:
		branchName, branchError := collector.gitOutput(executionContext, repositoryPath, gitBranchSubcommandConstant, gitShowCurrentFlagConstant)
		record.Values[fields.Branch] = branchName
		return branchError
	case fields.QueryStatus:
		return collector.collectStatus(executionContext, repositoryPath, record)
	case fields.QueryRemoteURL:
		remoteURL, remoteError := collector.gitOutput(executionContext, repositoryPath, gitConfigSubcommandConstant, gitGetFlagConstant, gitRemoteOriginURLKeyConstant)
		if remoteError != nil {
			return remoteError
		}
		if options.Fields.Has(fields.URL) {
			record.Values[fields.URL] = remoteURL
		}
		if options.Fields.Has(fields.Name) {
			record.Values[fields.Name] = RepositoryNameFromURL(remoteURL)
		}
		return nil
	case fields.QueryLastTag:
		lastTag, lastTagError := collector.lastTag(executionContext, repositoryPath)
		record.Values[fields.LastTag] = lastTag
		return lastTagError
	case fields.QueryMessage:
		subject, subjectError := collector.gitOutput(executionContext, repositoryPath, gitShowSubcommandConstant, gitSuppressDiffFlagConstant, gitSubjectFormatFlagConstant)
		record.Values[fields.Message] = subject
		return subjectError
	case fields.QueryCommitTime:
		commitTime, commitTimeError := collector.commitTime(executionContext, repositoryPath, options)
		record.Values[fields.Time] = commitTime
		return commitTimeError
	default:
		return nil
	}
}

func (collector *Collector) collectStatus(executionContext context.Context, repositoryPath string, record *Record) error {
	result, statusError := collector.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitStatusSubcommandConstant, gitPorcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if statusError != nil {
		return statusError
	}
	summary := status.Summarize(status.SplitPorcelainOutput(result.StandardOutput))
	record.Values[fields.Status] = summary.Short()
	record.DetailLines = summary.DetailLines
	return nil
}

func (collector *Collector) lastTag(executionContext context.Context, repositoryPath string) (string, error) {
	latestTaggedRevision, revListError := collector.gitOutput(executionContext, repositoryPath, gitRevListSubcommandConstant, gitTagsFlagConstant, gitMaxCountOneFlagConstant)
	if revListError != nil || len(latestTaggedRevision) == 0 {
		return "", revListError
	}
	return collector.gitOutput(executionContext, repositoryPath, gitDescribeSubcommandConstant, gitTagsFlagConstant, latestTaggedRevision)
}

func (collector *Collector) commitTime(executionContext context.Context, repositoryPath string, options Options) (string, error) {
	switch {
	case options.TimeFormat.IsRelative():
		rawTimestamp, showError := collector.gitOutput(executionContext, repositoryPath, gitShowSubcommandConstant, gitSuppressDiffFlagConstant, gitUnixTimeFormatFlagConstant)
		if showError != nil {
			return "", showError
		}
		commitSeconds, parseError := strconv.ParseInt(rawTimestamp, 10, 64)
		if parseError != nil {
			return "", fmt.Errorf(commitTimeParseErrorTemplate, rawTimestamp, parseError)
		}
		return HumanizeDuration(options.ReferenceTime.Sub(time.Unix(commitSeconds, 0))), nil
	case options.TimeFormat == fields.TimeFormatDate:
		return collector.gitOutput(executionContext, repositoryPath, gitShowSubcommandConstant, gitSuppressDiffFlagConstant, gitShortDateFormatFlagConstant)
	case options.TimeFormat == fields.TimeFormatTime || options.TimeFormat == fields.TimeFormatDateTime:
		return collector.gitOutput(executionContext, repositoryPath, gitShowSubcommandConstant, gitSuppressDiffFlagConstant, gitCommitDateFormatFlagConstant, gitLocalDateTimeFlagConstant)
	default:
		return "", nil
	}
}

func (collector *Collector) gitOutput(executionContext context.Context, repositoryPath string, arguments ...string) (string, error) {
	result, executionError := collector.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

// RepositoryNameFromURL returns the last path segment of remoteURL without a trailing ".git".
func RepositoryNameFromURL(remoteURL string) string {
	trimmedURL := strings.TrimRight(strings.TrimSpace(remoteURL), repositoryNameSeparatorsConstant)
	lastSeparatorIndex := strings.LastIndexAny(trimmedURL, repositoryNameSeparatorsConstant)
	return strings.TrimSuffix(trimmedURL[lastSeparatorIndex+1:], gitRepositorySuffixConstant)
}
