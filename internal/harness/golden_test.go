package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	for _, name := range []string{"new_project_upload", "remove_synced_pano"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestTraceSnapshot_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/replace_pano_tombstone.yaml")
	require.NoError(t, err)

	first, err := Run(context.Background(), s)
	require.NoError(t, err)
	second, err := Run(context.Background(), s)
	require.NoError(t, err)

	a, err := TraceSnapshot(s, first)
	require.NoError(t, err)
	b, err := TraceSnapshot(s, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
