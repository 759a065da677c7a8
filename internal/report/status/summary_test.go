package status_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/multigit/internal/report/status"
)

func TestSummarize(testInstance *testing.T) {
	testCases := []struct {
		name                string
		porcelainLines      []string
		expectedShort       string
		expectedDetailLines []string
	}{
		{
			name:                "clean_tree",
			porcelainLines:      nil,
			expectedShort:       "",
			expectedDetailLines: nil,
		},
		{
			name:                "untracked_lines_filtered_from_details",
			porcelainLines:      []string{"M  a.txt", "?? b.txt", " D c.txt"},
			expectedShort:       "M1 D1 ?1",
			expectedDetailLines: []string{"M  a.txt", " D c.txt"},
		},
		{
			name:                "first_position_wins",
			porcelainLines:      []string{"MD both.txt", "RM moved.txt", " M tail.txt"},
			expectedShort:       "M2 R1",
			expectedDetailLines: []string{"MD both.txt", "RM moved.txt", " M tail.txt"},
		},
		{
			name:                "unrecognized_codes",
			porcelainLines:      []string{"A  added.txt", "UU conflict.txt", "C  copy.txt", "AM staged.txt"},
			expectedShort:       "M1 X3",
			expectedDetailLines: []string{"A  added.txt", "UU conflict.txt", "C  copy.txt", "AM staged.txt"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			summary := status.Summarize(testCase.porcelainLines)
			require.Equal(testInstance, testCase.expectedShort, summary.Short())
			require.Equal(testInstance, testCase.expectedDetailLines, summary.DetailLines)
		})
	}
}

func TestSummarizeEmptyInputHasNoDetails(testInstance *testing.T) {
	summary := status.Summarize([]string{})
	require.Empty(testInstance, summary.Short())
	require.Empty(testInstance, summary.DetailLines)
}

func TestSplitPorcelainOutput(testInstance *testing.T) {
	require.Nil(testInstance, status.SplitPorcelainOutput(""))
	require.Nil(testInstance, status.SplitPorcelainOutput("\n"))
	require.Equal(testInstance, []string{" M a.txt", "?? b.txt"}, status.SplitPorcelainOutput(" M a.txt\r\n?? b.txt\n"))
}
