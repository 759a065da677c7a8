package ui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/multigit/internal/ui"
)

func TestCollectionProgressDisabledWritesNothing(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	progress := ui.NewCollectionProgress(outputBuffer, 3, false)

	progress.Advance("repos/alpha")
	progress.Finish()

	require.Empty(testInstance, outputBuffer.String())
}

func TestCollectionProgressEnabledRendersToWriter(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	progress := ui.NewCollectionProgress(outputBuffer, 2, true)

	progress.Advance("repos/alpha")
	progress.Advance("repos/beta")
	progress.Finish()

	require.NotEmpty(testInstance, outputBuffer.String())
}

func TestCollectionProgressNilReceiverIsNoop(testInstance *testing.T) {
	var progress *ui.CollectionProgress
	require.NotPanics(testInstance, func() {
		progress.Advance("repos/alpha")
		progress.Finish()
	})
}
