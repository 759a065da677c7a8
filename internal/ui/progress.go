package ui

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

const (
	progressDescriptionConstant   = "collecting"
	progressBarWidthConstant      = 30
	progressThrottleDelayConstant = 65 * time.Millisecond
)

// CollectionProgress reports per-repository collection progress. A disabled progress is a no-op.
type CollectionProgress struct {
	progressBar *progressbar.ProgressBar
}

// NewCollectionProgress creates a progress bar sized for total repositories.
func NewCollectionProgress(writer io.Writer, total int, enabled bool) *CollectionProgress {
	if !enabled || writer == nil || total <= 0 {
		return &CollectionProgress{}
	}
	progressBar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionSetDescription(progressDescriptionConstant),
		progressbar.OptionSetWidth(progressBarWidthConstant),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(progressThrottleDelayConstant),
		progressbar.OptionClearOnFinish(),
	)
	return &CollectionProgress{progressBar: progressBar}
}

// Advance marks one more repository as processed.
func (progress *CollectionProgress) Advance(repositoryPath string) {
	if progress == nil || progress.progressBar == nil {
		return
	}
	progress.progressBar.Describe(repositoryPath)
	_ = progress.progressBar.Add(1)
}

// Finish completes and clears the progress bar.
func (progress *CollectionProgress) Finish() {
	if progress == nil || progress.progressBar == nil {
		return
	}
	_ = progress.progressBar.Finish()
}
