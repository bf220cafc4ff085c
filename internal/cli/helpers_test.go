package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: quick_upload
description: "New project with one room uploads and syncs"
steps:
  - { op: create_project, project: P1, name: House }
  - { op: add_room, project: P1, room: R1, name: Kitchen }
  - { op: save, project: P1 }
  - { op: upload, project: P1 }
assertions:
  - { type: remote_calls, calls: ["createProject(P1)", "createRoom(R1)"] }
  - { type: final_state, project: P1, entity: room, id: R1, expect: SYNCED }
`

const failingScenario = `
name: wrong_expectation
description: "Asserts a call count that never happens"
steps:
  - { op: create_project, project: P1, name: House }
  - { op: save, project: P1 }
  - { op: upload, project: P1 }
assertions:
  - { type: remote_count, count: 7 }
`

const invalidScenario = `
name: invalid
description: "Unknown op"
steps:
  - { op: teleport, project: P1 }
`

// writeScenario writes body to dir/name and returns the path.
func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// execute runs cmd with args and returns everything written to stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
