package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/fieldsync/internal/model"
	"github.com/roach88/fieldsync/internal/remote"
	"github.com/roach88/fieldsync/internal/tracking"
)

func sampleResult() *Result {
	room := model.NewRoom("R1", "Kitchen", model.StateSynced,
		model.WithPano(model.NewPano("X", nil, model.StateNew)),
		model.WithComments(model.NewComment("C1", "leak", model.StateModified)))
	return &Result{
		Pass: true,
		Calls: []remote.Call{
			{Op: remote.OpCreateProject, ProjectID: "P1", EntityID: "P1"},
			{Op: remote.OpCreatePano, ProjectID: "P1", RoomID: "R1", EntityID: "X"},
		},
		Events: []tracking.Event{
			{Seq: 1, Name: tracking.EventUploadStarted, Props: map[string]any{"project_id": "P1"}},
			{Seq: 2, Name: tracking.EventUploadCompleted, Props: map[string]any{"project_id": "P1", "count": 2}},
		},
		Projects: []model.Project{
			model.RestoreProject("P1", "House", model.StateSynced,
				model.WithRooms(room),
				model.WithTombstones(model.DeletedPano{PanoID: "old", RoomID: "R1"})),
		},
	}
}

func TestEvaluateAssertions(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		pass      bool
	}{
		{"calls match", Assertion{Type: AssertRemoteCalls, Calls: []string{"createProject(P1)", "createPano(R1/X)"}}, true},
		{"calls differ", Assertion{Type: AssertRemoteCalls, Calls: []string{"createProject(P1)"}}, false},
		{"count", Assertion{Type: AssertRemoteCount, Count: 2}, true},
		{"event with props", Assertion{Type: AssertEventContains, Event: tracking.EventUploadCompleted, Props: map[string]any{"count": 2}}, true},
		{"event with wrong props", Assertion{Type: AssertEventContains, Event: tracking.EventUploadCompleted, Props: map[string]any{"count": 3}}, false},
		{"event count", Assertion{Type: AssertEventCount, Event: tracking.EventUploadStarted, Count: 1}, true},
		{"project state", Assertion{Type: AssertFinalState, Project: "P1", Entity: "project", Expect: "SYNCED"}, true},
		{"room by id", Assertion{Type: AssertFinalState, Project: "P1", Entity: "room", ID: "R1", Expect: "SYNCED"}, true},
		{"pano by room", Assertion{Type: AssertFinalState, Project: "P1", Entity: "pano", Room: "R1", Expect: "NEW"}, true},
		{"pano wrong id", Assertion{Type: AssertFinalState, Project: "P1", Entity: "pano", Room: "R1", ID: "Y", Expect: "absent"}, true},
		{"comment", Assertion{Type: AssertFinalState, Project: "P1", Entity: "comment", Room: "R1", ID: "C1", Expect: "MODIFIED"}, true},
		{"missing project", Assertion{Type: AssertFinalState, Project: "P9", Entity: "project", Expect: "absent"}, true},
		{"tombstones left", Assertion{Type: AssertTombstonesEmpty, Project: "P1"}, false},
		{"unknown type", Assertion{Type: "trace_order"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			if tt.pass {
				assert.Empty(t, errs)
			} else {
				assert.Len(t, errs, 1)
			}
		})
	}
}

func TestAssertionError_ListsCalls(t *testing.T) {
	err := &AssertionError{
		Type:     AssertRemoteCount,
		Expected: "1 remote calls",
		Actual:   "2 remote calls",
		Calls:    []string{"createProject(P1)", "createPano(R1/X)"},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: remote_count")
	assert.Contains(t, msg, "[2] createPano(R1/X)")
}
