// Package remote defines the contract of the remote inspection service and
// an in-memory implementation that records calls.
package remote

import (
	"context"

	"github.com/roach88/fieldsync/internal/model"
)

// Client is the remote service. Every method is a single request that either
// succeeds or fails with an error; retry policy belongs to implementations.
//
// The service has no UpdatePano, DeleteRoom or DeleteComment operation.
type Client interface {
	CreateProject(ctx context.Context, project model.Project) error
	UpdateProject(ctx context.Context, project model.Project) error
	CreateRoom(ctx context.Context, projectID string, room model.Room) error
	UpdateRoom(ctx context.Context, projectID string, room model.Room) error
	CreatePano(ctx context.Context, projectID, roomID string, pano model.Pano) error
	DeletePano(ctx context.Context, projectID, roomID, panoID string) error
	CreateComment(ctx context.Context, projectID, roomID string, comment model.Comment) error
	UpdateComment(ctx context.Context, projectID, roomID string, comment model.Comment) error
}

// Operation names, as recorded in Call.Op and reported in upload errors.
const (
	OpCreateProject = "createProject"
	OpUpdateProject = "updateProject"
	OpCreateRoom    = "createRoom"
	OpUpdateRoom    = "updateRoom"
	OpCreatePano    = "createPano"
	OpDeletePano    = "deletePano"
	OpCreateComment = "createComment"
	OpUpdateComment = "updateComment"
)
