package remote

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/fieldsync/internal/model"
)

// Call is one request received by a Recorder.
type Call struct {
	Op        string
	ProjectID string
	RoomID    string // empty for project calls
	EntityID  string
}

// String renders the call as op(entity), or op(room/entity) for calls about
// an entity inside a room.
func (c Call) String() string {
	if c.RoomID == "" || c.RoomID == c.EntityID {
		return fmt.Sprintf("%s(%s)", c.Op, c.EntityID)
	}
	return fmt.Sprintf("%s(%s/%s)", c.Op, c.RoomID, c.EntityID)
}

// Recorder is an in-memory Client that records every call in order and can
// be told to fail specific calls.
//
// A failed call is still recorded. Thread-safety: safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	calls  []Call
	failAt map[int]error
	failOn map[string]error
}

// NewRecorder creates a recorder that accepts every call.
func NewRecorder() *Recorder {
	return &Recorder{
		failAt: make(map[int]error),
		failOn: make(map[string]error),
	}
}

// FailAt makes the n-th call (1-based, counted over the recorder's
// lifetime) return err.
func (r *Recorder) FailAt(n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failAt[n] = err
}

// FailOn makes every call of operation op return err.
func (r *Recorder) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOn[op] = err
}

// ClearFailures removes every injected failure.
func (r *Recorder) ClearFailures() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.failAt)
	clear(r.failOn)
}

// Calls returns a copy of the calls received so far.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Ops returns the operation names of the calls received so far.
func (r *Recorder) Ops() []string {
	calls := r.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

// Reset drops recorded calls and failures.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	clear(r.failAt)
	clear(r.failOn)
}

func (r *Recorder) record(ctx context.Context, c Call) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	if err, ok := r.failAt[len(r.calls)]; ok {
		return err
	}
	if err, ok := r.failOn[c.Op]; ok {
		return err
	}
	return nil
}

func (r *Recorder) CreateProject(ctx context.Context, p model.Project) error {
	return r.record(ctx, Call{Op: OpCreateProject, ProjectID: p.ID(), EntityID: p.ID()})
}

func (r *Recorder) UpdateProject(ctx context.Context, p model.Project) error {
	return r.record(ctx, Call{Op: OpUpdateProject, ProjectID: p.ID(), EntityID: p.ID()})
}

func (r *Recorder) CreateRoom(ctx context.Context, projectID string, room model.Room) error {
	return r.record(ctx, Call{Op: OpCreateRoom, ProjectID: projectID, RoomID: room.ID(), EntityID: room.ID()})
}

func (r *Recorder) UpdateRoom(ctx context.Context, projectID string, room model.Room) error {
	return r.record(ctx, Call{Op: OpUpdateRoom, ProjectID: projectID, RoomID: room.ID(), EntityID: room.ID()})
}

func (r *Recorder) CreatePano(ctx context.Context, projectID, roomID string, pano model.Pano) error {
	return r.record(ctx, Call{Op: OpCreatePano, ProjectID: projectID, RoomID: roomID, EntityID: pano.ID()})
}

func (r *Recorder) DeletePano(ctx context.Context, projectID, roomID, panoID string) error {
	return r.record(ctx, Call{Op: OpDeletePano, ProjectID: projectID, RoomID: roomID, EntityID: panoID})
}

func (r *Recorder) CreateComment(ctx context.Context, projectID, roomID string, c model.Comment) error {
	return r.record(ctx, Call{Op: OpCreateComment, ProjectID: projectID, RoomID: roomID, EntityID: c.ID()})
}

func (r *Recorder) UpdateComment(ctx context.Context, projectID, roomID string, c model.Comment) error {
	return r.record(ctx, Call{Op: OpUpdateComment, ProjectID: projectID, RoomID: roomID, EntityID: c.ID()})
}

var _ Client = (*Recorder)(nil)
