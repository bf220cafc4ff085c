package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fieldsync/internal/model"
)

func TestLoadScenario_TestdataFiles(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			s, err := LoadScenario(f)
			require.NoError(t, err)
			assert.NotEmpty(t, s.Name)
			assert.NotEmpty(t, s.Steps)
		})
	}
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: disk
description: "loaded from disk"
steps:
  - { op: create_project, project: P1, name: House }
`), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "disk", s.Name)
	assert.Equal(t, OpCreateProject, s.Steps[0].Op)
}

func TestParseScenario_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "unknown field",
			yaml: `
name: typo
description: "x"
step:
  - { op: save, project: P1 }
`,
			wantErr: "failed to parse YAML",
		},
		{
			name: "unknown op",
			yaml: `
name: bad_op
description: "x"
steps:
  - { op: delete_room, project: P1 }
`,
			wantErr: "does not match schema",
		},
		{
			name: "missing room for add_room",
			yaml: `
name: no_room
description: "x"
steps:
  - { op: create_project, project: P1 }
  - { op: add_room, project: P1, name: Kitchen }
`,
			wantErr: "does not match schema",
		},
		{
			name: "bad state",
			yaml: `
name: bad_state
description: "x"
steps:
  - { op: create_project, project: P1 }
  - { op: add_room, project: P1, room: R1, state: GONE }
`,
			wantErr: "does not match schema",
		},
		{
			name: "bad name",
			yaml: `
name: "Has Spaces"
description: "x"
steps:
  - { op: create_project, project: P1 }
`,
			wantErr: "does not match schema",
		},
		{
			name: "no steps",
			yaml: `
name: empty
description: "x"
steps: []
`,
			wantErr: "does not match schema",
		},
		{
			name: "remote_count without count",
			yaml: `
name: no_count
description: "x"
steps:
  - { op: create_project, project: P1 }
assertions:
  - { type: remote_count }
`,
			wantErr: "does not match schema",
		},
		{
			name: "edit of unknown project",
			yaml: `
name: unknown_project
description: "x"
steps:
  - { op: rename_project, project: P9, name: x }
`,
			wantErr: "unknown project",
		},
		{
			name: "duplicate create",
			yaml: `
name: dup
description: "x"
steps:
  - { op: create_project, project: P1 }
  - { op: create_project, project: P1 }
`,
			wantErr: "already exists",
		},
		{
			name: "fail_at on save",
			yaml: `
name: fail_save
description: "x"
steps:
  - { op: create_project, project: P1 }
  - { op: save, project: P1, fail_at: 1 }
`,
			wantErr: "only apply to upload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_SchemaErrorType(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: bad_op
description: "x"
steps:
  - { op: explode, project: P1 }
`))

	var se *SchemaError
	require.ErrorAs(t, err, &se)
}

func TestProjectSnapshot_ToProject(t *testing.T) {
	ps := ProjectSnapshot{
		ID:   "P1",
		Name: "House",
		Rooms: []RoomSnapshot{{
			ID:       "R1",
			Name:     "Kitchen",
			State:    "MODIFIED",
			Pano:     &PanoSnapshot{ID: "X", Data: "img"},
			Comments: []CommentSnapshot{{ID: "C1", Text: "crack", State: "NEW"}},
		}},
		DeletedPanos:   []TombstoneSnapshot{{PanoID: "old", RoomID: "R1"}},
		DeletedPanoIDs: []string{"legacy"},
	}

	p, err := ps.toProject()
	require.NoError(t, err)

	assert.Equal(t, model.StateSynced, p.SyncState(), "default state")
	r, ok := p.Room("R1")
	require.True(t, ok)
	assert.Equal(t, model.StateModified, r.SyncState())
	pano, ok := r.Pano()
	require.True(t, ok)
	assert.Equal(t, []byte("img"), pano.ImageData())
	assert.Equal(t, model.StateSynced, pano.SyncState())
	c, _ := r.Comment("C1")
	assert.Equal(t, model.StateNew, c.SyncState())
	assert.Equal(t, []model.DeletedPano{{PanoID: "old", RoomID: "R1"}}, p.DeletedPanos())
	assert.Equal(t, []string{"legacy"}, p.DeletedPanoIDs())
}
