package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fieldsync/internal/model"
)

func TestRecorder_RecordsInOrder(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()
	p := model.RestoreProject("p1", "House", model.StateNew)
	room := model.NewRoom("r1", "Kitchen", model.StateNew)

	require.NoError(t, r.CreateProject(ctx, p))
	require.NoError(t, r.CreateRoom(ctx, "p1", room))
	require.NoError(t, r.DeletePano(ctx, "p1", "r1", "x"))

	assert.Equal(t, []Call{
		{Op: OpCreateProject, ProjectID: "p1", EntityID: "p1"},
		{Op: OpCreateRoom, ProjectID: "p1", RoomID: "r1", EntityID: "r1"},
		{Op: OpDeletePano, ProjectID: "p1", RoomID: "r1", EntityID: "x"},
	}, r.Calls())
	assert.Equal(t, []string{OpCreateProject, OpCreateRoom, OpDeletePano}, r.Ops())
}

func TestRecorder_FailAt(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()
	boom := errors.New("network down")
	r.FailAt(2, boom)
	room := model.NewRoom("r1", "Kitchen", model.StateNew)

	assert.NoError(t, r.CreateRoom(ctx, "p1", room))
	assert.ErrorIs(t, r.UpdateRoom(ctx, "p1", room), boom)
	assert.NoError(t, r.UpdateRoom(ctx, "p1", room))
	assert.Len(t, r.Calls(), 3, "failed calls are recorded")
}

func TestRecorder_FailOn(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()
	boom := errors.New("rejected")
	r.FailOn(OpCreateComment, boom)
	c := model.NewComment("c1", "hi", model.StateNew)

	assert.ErrorIs(t, r.CreateComment(ctx, "p1", "r1", c), boom)
	assert.NoError(t, r.UpdateComment(ctx, "p1", "r1", c))

	r.ClearFailures()
	assert.NoError(t, r.CreateComment(ctx, "p1", "r1", c))
}

func TestRecorder_CancelledContext(t *testing.T) {
	r := NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.CreatePano(ctx, "p1", "r1", model.NewPano("x", nil, model.StateNew))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.Calls())
}

func TestCall_String(t *testing.T) {
	assert.Equal(t, "createProject(p1)", Call{Op: OpCreateProject, ProjectID: "p1", EntityID: "p1"}.String())
	assert.Equal(t, "createRoom(r1)", Call{Op: OpCreateRoom, RoomID: "r1", EntityID: "r1"}.String())
	assert.Equal(t, "deletePano(r1/x)", Call{Op: OpDeletePano, RoomID: "r1", EntityID: "x"}.String())
}
