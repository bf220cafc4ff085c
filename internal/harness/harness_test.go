package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fieldsync/internal/remote"
	"github.com/roach88/fieldsync/internal/tracking"
)

func TestRun_TestdataScenariosPass(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			s, err := LoadScenario(f)
			require.NoError(t, err)

			result, err := Run(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_DraftsAreSavedExplicitly(t *testing.T) {
	s := &Scenario{
		Name:        "unsaved",
		Description: "edits without save never reach the repository",
		Steps: []Step{
			{Op: OpCreateProject, Project: "P1", Name: "House"},
			{Op: OpSave, Project: "P1"},
			{Op: OpRenameProject, Project: "P1", Name: "Home"},
			{Op: OpUpload, Project: "P1"},
		},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	p, ok := result.Project("P1")
	require.True(t, ok)
	assert.Equal(t, "House", p.Name())
	assert.Equal(t, []remote.Call{{Op: remote.OpCreateProject, ProjectID: "P1", EntityID: "P1"}}, result.Calls)
}

func TestRun_UnexpectedUploadErrorFails(t *testing.T) {
	s := &Scenario{
		Name:        "unexpected",
		Description: "x",
		Steps: []Step{
			{Op: OpCreateProject, Project: "P1", Name: "House"},
			{Op: OpSave, Project: "P1"},
			{Op: OpUpload, Project: "P1", FailAt: 1},
		},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected error")
	assert.Contains(t, result.Errors[0], defaultFailMessage)
}

func TestRun_MissingExpectedErrorFails(t *testing.T) {
	s := &Scenario{
		Name:        "expected",
		Description: "x",
		Steps: []Step{
			{Op: OpCreateProject, Project: "P1", Name: "House"},
			{Op: OpSave, Project: "P1"},
			{Op: OpUpload, Project: "P1", ExpectError: true},
		},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected an error")
}

func TestRun_FailingAssertionReported(t *testing.T) {
	s := &Scenario{
		Name:        "wrong_count",
		Description: "x",
		Steps: []Step{
			{Op: OpCreateProject, Project: "P1", Name: "House"},
			{Op: OpSave, Project: "P1"},
			{Op: OpUpload, Project: "P1"},
		},
		Assertions: []Assertion{{Type: AssertRemoteCount, Count: 5}},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Expected: 5 remote calls")
	assert.Contains(t, result.Errors[0], "Actual: 1 remote calls")
}

func TestRun_ExtraRecorderSeesEvents(t *testing.T) {
	extra := tracking.NewMemoryRecorder()
	s := &Scenario{
		Name:        "extra",
		Description: "x",
		Steps: []Step{
			{Op: OpCreateProject, Project: "P1", Name: "House"},
			{Op: OpSave, Project: "P1"},
		},
	}

	result, err := Run(context.Background(), s, WithRecorder(extra))
	require.NoError(t, err)
	assert.Equal(t, len(result.Events), len(extra.Events()))
	assert.Len(t, extra.Named(tracking.EventProjectCreated), 1)
}

func TestRun_CreationStateOverride(t *testing.T) {
	s := &Scenario{
		Name:        "override",
		Description: "x",
		Steps: []Step{
			{Op: OpCreateProject, Project: "P1", Name: "House"},
			{Op: OpAddRoom, Project: "P1", Room: "R1", Name: "Kitchen", State: "SYNCED"},
			{Op: OpSave, Project: "P1"},
		},
		Assertions: []Assertion{
			{Type: AssertFinalState, Project: "P1", Entity: "room", ID: "R1", Expect: "NEW"},
		},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}
