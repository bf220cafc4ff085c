package harness

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/fieldsync/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// Scenario is one executable sync scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Projects are server snapshots loaded before the first step, without
	// emitting events.
	Projects []ProjectSnapshot `yaml:"projects,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ProjectSnapshot describes a project as the server returned it.
// Omitted states default to SYNCED.
type ProjectSnapshot struct {
	ID             string              `yaml:"id"`
	Name           string              `yaml:"name,omitempty"`
	State          string              `yaml:"state,omitempty"`
	Rooms          []RoomSnapshot      `yaml:"rooms,omitempty"`
	DeletedPanos   []TombstoneSnapshot `yaml:"deleted_panos,omitempty"`
	DeletedPanoIDs []string            `yaml:"deleted_pano_ids,omitempty"`
}

// RoomSnapshot describes a room inside a ProjectSnapshot.
type RoomSnapshot struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name,omitempty"`
	State    string            `yaml:"state,omitempty"`
	Pano     *PanoSnapshot     `yaml:"pano,omitempty"`
	Comments []CommentSnapshot `yaml:"comments,omitempty"`
}

// PanoSnapshot describes a pano. Data is used verbatim as image bytes.
type PanoSnapshot struct {
	ID    string `yaml:"id"`
	Data  string `yaml:"data,omitempty"`
	State string `yaml:"state,omitempty"`
}

// CommentSnapshot describes a comment.
type CommentSnapshot struct {
	ID    string `yaml:"id"`
	Text  string `yaml:"text,omitempty"`
	State string `yaml:"state,omitempty"`
}

// TombstoneSnapshot is a pending remote pano deletion.
type TombstoneSnapshot struct {
	PanoID string `yaml:"pano_id"`
	RoomID string `yaml:"room_id"`
}

// Step is one operation. Which fields are used depends on Op.
type Step struct {
	Op      string `yaml:"op"`
	Project string `yaml:"project"`
	Room    string `yaml:"room,omitempty"`
	Pano    string `yaml:"pano,omitempty"`
	Comment string `yaml:"comment,omitempty"`
	Name    string `yaml:"name,omitempty"`
	Text    string `yaml:"text,omitempty"`
	Data    string `yaml:"data,omitempty"`

	// State is the flag given to entities created by add_room, add_comment
	// and set_pano before creation promotion. Default NEW.
	State string `yaml:"state,omitempty"`

	// FailAt makes the n-th remote call of this upload fail (1-based).
	FailAt int `yaml:"fail_at,omitempty"`

	// FailMessage is the error text of the injected failure.
	FailMessage string `yaml:"fail_message,omitempty"`

	// ExpectError marks an upload that must fail.
	ExpectError bool `yaml:"expect_error,omitempty"`
}

// Step operations.
const (
	OpCreateProject = "create_project"
	OpAddRoom       = "add_room"
	OpAddComment    = "add_comment"
	OpSetPano       = "set_pano"
	OpRemovePano    = "remove_pano"
	OpRenameRoom    = "rename_room"
	OpRenameProject = "rename_project"
	OpUpdateComment = "update_comment"
	OpSave          = "save"
	OpUpload        = "upload"
)

// Assertion validates the outcome of a scenario.
type Assertion struct {
	// Type selects the check (see package documentation).
	Type string `yaml:"type"`

	// Calls is the exact expected call sequence (remote_calls).
	Calls []string `yaml:"calls,omitempty"`

	// Count is the expected number of calls or events.
	Count int `yaml:"count,omitempty"`

	// Event is the event name (event_contains, event_count).
	Event string `yaml:"event,omitempty"`

	// Props is a subset of the expected event properties (event_contains).
	Props map[string]any `yaml:"props,omitempty"`

	// Project, Entity, Room and ID locate the entity checked by final_state.
	// Panos are located by their room.
	Project string `yaml:"project,omitempty"`
	Entity  string `yaml:"entity,omitempty"`
	Room    string `yaml:"room,omitempty"`
	ID      string `yaml:"id,omitempty"`

	// Expect is a sync state name or "absent" (final_state).
	Expect string `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertRemoteCalls     = "remote_calls"
	AssertRemoteCount     = "remote_count"
	AssertEventContains   = "event_contains"
	AssertEventCount      = "event_count"
	AssertFinalState      = "final_state"
	AssertTombstonesEmpty = "tombstones_empty"
)

// ExpectAbsent is the final_state expectation for an entity that must not
// exist.
const ExpectAbsent = "absent"

// LoadScenario reads, parses and validates a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenario parses and validates scenario YAML.
//
// Unknown fields are rejected by the YAML decoder; the document is then
// checked against the embedded CUE schema and finally by Go-level rules
// that need cross-field context.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// SchemaError reports a scenario document rejected by the CUE schema.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("scenario does not match schema: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// validateSchema unifies doc with #Scenario and requires a concrete result.
func validateSchema(doc map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}

	value := ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return &SchemaError{Err: err}
	}

	unified := schema.LookupPath(cue.ParsePath("#Scenario")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &SchemaError{Err: err}
	}
	return nil
}

// validateScenario checks rules the schema cannot express.
func validateScenario(s *Scenario) error {
	seen := make(map[string]bool)
	for i, p := range s.Projects {
		if seen[p.ID] {
			return fmt.Errorf("projects[%d]: duplicate project id %q", i, p.ID)
		}
		seen[p.ID] = true
	}

	for i, step := range s.Steps {
		if step.Op == OpCreateProject {
			if seen[step.Project] {
				return fmt.Errorf("steps[%d]: project %q already exists", i, step.Project)
			}
			seen[step.Project] = true
			continue
		}
		// Uploading an unknown id is allowed: it is a silent no-op.
		if !seen[step.Project] && step.Op != OpUpload {
			return fmt.Errorf("steps[%d]: %s references unknown project %q", i, step.Op, step.Project)
		}
		if (step.FailAt > 0 || step.ExpectError) && step.Op != OpUpload {
			return fmt.Errorf("steps[%d]: fail_at and expect_error only apply to upload", i)
		}
	}
	return nil
}

// toProject builds the model value of a snapshot.
func (p ProjectSnapshot) toProject() (model.Project, error) {
	state, err := snapshotState(p.State)
	if err != nil {
		return model.Project{}, fmt.Errorf("project %s: %w", p.ID, err)
	}

	rooms := make([]model.Room, 0, len(p.Rooms))
	for _, rs := range p.Rooms {
		r, err := rs.toRoom()
		if err != nil {
			return model.Project{}, fmt.Errorf("project %s: %w", p.ID, err)
		}
		rooms = append(rooms, r)
	}

	tombstones := make([]model.DeletedPano, 0, len(p.DeletedPanos))
	for _, d := range p.DeletedPanos {
		tombstones = append(tombstones, model.DeletedPano{PanoID: d.PanoID, RoomID: d.RoomID})
	}

	var opts []model.ProjectOption
	if len(rooms) > 0 {
		opts = append(opts, model.WithRooms(rooms...))
	}
	if len(tombstones) > 0 {
		opts = append(opts, model.WithTombstones(tombstones...))
	}
	if len(p.DeletedPanoIDs) > 0 {
		opts = append(opts, model.WithLegacyDeletedPanoIDs(p.DeletedPanoIDs...))
	}
	return model.RestoreProject(p.ID, p.Name, state, opts...), nil
}

func (r RoomSnapshot) toRoom() (model.Room, error) {
	state, err := snapshotState(r.State)
	if err != nil {
		return model.Room{}, fmt.Errorf("room %s: %w", r.ID, err)
	}

	var opts []model.RoomOption
	if r.Pano != nil {
		ps, err := snapshotState(r.Pano.State)
		if err != nil {
			return model.Room{}, fmt.Errorf("pano %s: %w", r.Pano.ID, err)
		}
		opts = append(opts, model.WithPano(model.NewPano(r.Pano.ID, []byte(r.Pano.Data), ps)))
	}
	if len(r.Comments) > 0 {
		comments := make([]model.Comment, 0, len(r.Comments))
		for _, c := range r.Comments {
			cs, err := snapshotState(c.State)
			if err != nil {
				return model.Room{}, fmt.Errorf("comment %s: %w", c.ID, err)
			}
			comments = append(comments, model.NewComment(c.ID, c.Text, cs))
		}
		opts = append(opts, model.WithComments(comments...))
	}
	return model.NewRoom(r.ID, r.Name, state, opts...), nil
}

func snapshotState(s string) (model.SyncState, error) {
	if s == "" {
		return model.StateSynced, nil
	}
	return model.ParseSyncState(s)
}
