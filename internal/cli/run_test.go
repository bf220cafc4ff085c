package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fieldsync/internal/store"
	"github.com/roach88/fieldsync/internal/tracking"
)

func TestRunMissingArgs(t *testing.T) {
	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestRunNonExistentScenario(t *testing.T) {
	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenario file not found")
}

func TestRunInvalidScenario(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "bad.yaml", invalidScenario)

	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load scenario")
}

func TestRunPassingScenarioText(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "s.yaml", passingScenario)

	out, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "quick_upload")
	assert.Contains(t, out, "Remote calls (2):")
	assert.Contains(t, out, "[1] createProject(P1)")
	assert.Contains(t, out, "[2] createRoom(R1)")
	assert.Contains(t, out, `project P1 "House"`)
	assert.Contains(t, out, "SYNCED")
}

func TestRunPassingScenarioJSON(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "s.yaml", passingScenario)

	out, err := execute(NewRunCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Pass)
	assert.Equal(t, []string{"createProject(P1)", "createRoom(R1)"}, resp.Data.Calls)
	require.Len(t, resp.Data.Projects, 1)
	assert.Equal(t, ProjectReport{ID: "P1", Name: "House", State: "SYNCED", Pending: 0}, resp.Data.Projects[0])
}

func TestRunFailingScenario(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "s.yaml", failingScenario)

	out, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Errors:")
	assert.Contains(t, out, "7 remote calls")
}

func TestRunWritesJournal(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "s.yaml", passingScenario)
	dbPath := filepath.Join(dir, "events.db")

	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}), "--db", dbPath, path)
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	completed, err := st.Events(context.Background(), store.Filter{Name: tracking.EventUploadCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "P1", completed[0].ProjectID)
	assert.Equal(t, int64(2), completed[0].Properties[tracking.PropCount])
}

func TestRunJournalContinuesSequence(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "s.yaml", passingScenario)
	dbPath := filepath.Join(dir, "events.db")

	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}), "--db", dbPath, path)
	require.NoError(t, err)
	_, err = execute(NewRunCommand(&RootOptions{Format: "text"}), "--db", dbPath, path)
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	records, err := st.Events(context.Background(), store.Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, records)
	for i, r := range records {
		assert.Equal(t, int64(i+1), r.Seq)
	}
}

func TestRunVerboseLogsEvents(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "s.yaml", passingScenario)

	cmd := NewRunCommand(&RootOptions{Format: "text", Verbose: true})
	stderr := &bytes.Buffer{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())

	logs := stderr.String()
	assert.Contains(t, logs, "msg=track event=upload_started")
	assert.Contains(t, logs, "msg=track event=upload_completed")
	assert.Contains(t, logs, "project_id=P1")
}

func TestRunQuietLogsNoEvents(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "s.yaml", passingScenario)

	cmd := NewRunCommand(&RootOptions{Format: "text"})
	stderr := &bytes.Buffer{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())

	assert.NotContains(t, stderr.String(), "msg=track")
}

func TestRunHelpText(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	assert.Contains(t, cmd.Long, "--db")
	assert.Contains(t, cmd.Long, "Exit codes")
}
