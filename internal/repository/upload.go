package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/fieldsync/internal/model"
	"github.com/roach88/fieldsync/internal/remote"
	"github.com/roach88/fieldsync/internal/tracking"
)

// UploadProject reconciles the stored project id with the remote service.
//
// An unknown id is a silent no-op: no calls, no events, nil error.
//
// Otherwise the project is walked top-down: project, then each room in
// order followed by its pano and its comments, then the tombstone log. The
// first failing call aborts the walk; the failure is recorded and returned
// as an *UploadError, and nothing is written locally. On success the stored
// project is acknowledged (flags SYNCED, deleted panos purged, tombstones
// cleared) without emitting save events.
//
// Uploads of the same id are serialized. A caller waiting on another upload
// of the same id gives up when ctx ends.
func (r *Repository) UploadProject(ctx context.Context, id string) error {
	if _, ok := r.Project(id); !ok {
		return nil
	}

	r.recorder.TrackEvent(tracking.EventUploadStarted, map[string]any{
		tracking.PropProjectID: id,
	})

	unlock, err := r.uploads.Lock(ctx, id)
	if err != nil {
		return r.fail(&UploadError{ProjectID: id, Operation: opWait, Err: err})
	}
	defer unlock()

	// Re-read under the lock: a previous upload may have just acknowledged,
	// or a Load may have dropped the project while this call waited.
	project, ok := r.Project(id)
	if !ok {
		r.complete(id, 0)
		return nil
	}

	w := &walk{ctx: ctx, client: r.client, project: project, logger: r.logger}
	if err := w.run(); err != nil {
		return r.fail(err)
	}

	if needsUpload(project) {
		r.projects.Update(func(ps []model.Project) []model.Project {
			i := indexOf(ps, id)
			if i < 0 {
				return ps
			}
			next := make([]model.Project, len(ps))
			copy(next, ps)
			next[i] = ps[i].Acknowledge(project)
			return next
		})
	}

	r.complete(id, w.count)
	return nil
}

func (r *Repository) complete(id string, count int) {
	r.recorder.TrackEvent(tracking.EventUploadCompleted, map[string]any{
		tracking.PropProjectID: id,
		tracking.PropCount:     count,
	})
	r.logger.Info("upload completed", "project_id", id, "count", count)
}

func (r *Repository) fail(err *UploadError) error {
	r.recorder.TrackEvent(tracking.EventUploadFailed, map[string]any{
		tracking.PropProjectID: err.ProjectID,
		tracking.PropMessage:   err.Err.Error(),
		tracking.PropError:     fmt.Sprintf("%T: %v", err.Err, err.Err),
	})
	r.logger.Warn("upload failed",
		"project_id", err.ProjectID,
		"op", err.Operation,
		"entity_id", err.EntityID,
		"error", err.Err,
	)
	return err
}

// walk issues the remote calls for one upload and counts the successful
// ones.
type walk struct {
	ctx     context.Context
	client  remote.Client
	project model.Project
	logger  *slog.Logger
	count   int
}

func (w *walk) run() *UploadError {
	p := w.project
	pid := p.ID()

	switch p.SyncState() {
	case model.StateNew:
		if err := w.call(remote.OpCreateProject, pid, func(ctx context.Context) error {
			return w.client.CreateProject(ctx, p)
		}); err != nil {
			return err
		}
	case model.StateModified:
		if err := w.call(remote.OpUpdateProject, pid, func(ctx context.Context) error {
			return w.client.UpdateProject(ctx, p)
		}); err != nil {
			return err
		}
	}

	for _, room := range p.Rooms() {
		if err := w.room(room); err != nil {
			return err
		}
	}

	for _, d := range p.DeletedPanos() {
		if err := w.call(remote.OpDeletePano, d.PanoID, func(ctx context.Context) error {
			return w.client.DeletePano(ctx, pid, d.RoomID, d.PanoID)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (w *walk) room(room model.Room) *UploadError {
	pid, rid := w.project.ID(), room.ID()

	switch room.SyncState() {
	case model.StateNew:
		if err := w.call(remote.OpCreateRoom, rid, func(ctx context.Context) error {
			return w.client.CreateRoom(ctx, pid, room)
		}); err != nil {
			return err
		}
	case model.StateModified:
		if err := w.call(remote.OpUpdateRoom, rid, func(ctx context.Context) error {
			return w.client.UpdateRoom(ctx, pid, room)
		}); err != nil {
			return err
		}
	}

	// MODIFIED panos have no update call; they are acknowledged as is.
	if pano, ok := room.Pano(); ok {
		switch pano.SyncState() {
		case model.StateNew:
			if err := w.call(remote.OpCreatePano, pano.ID(), func(ctx context.Context) error {
				return w.client.CreatePano(ctx, pid, rid, pano)
			}); err != nil {
				return err
			}
		case model.StateDeleted:
			if err := w.call(remote.OpDeletePano, pano.ID(), func(ctx context.Context) error {
				return w.client.DeletePano(ctx, pid, rid, pano.ID())
			}); err != nil {
				return err
			}
		}
	}

	for _, c := range room.Comments() {
		switch c.SyncState() {
		case model.StateNew:
			if err := w.call(remote.OpCreateComment, c.ID(), func(ctx context.Context) error {
				return w.client.CreateComment(ctx, pid, rid, c)
			}); err != nil {
				return err
			}
		case model.StateModified:
			if err := w.call(remote.OpUpdateComment, c.ID(), func(ctx context.Context) error {
				return w.client.UpdateComment(ctx, pid, rid, c)
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// call runs one remote request, checking for cancellation first.
func (w *walk) call(op, entityID string, fn func(context.Context) error) *UploadError {
	if err := w.ctx.Err(); err != nil {
		return &UploadError{ProjectID: w.project.ID(), Operation: op, EntityID: entityID, Err: err}
	}
	if err := fn(w.ctx); err != nil {
		return &UploadError{ProjectID: w.project.ID(), Operation: op, EntityID: entityID, Err: err}
	}
	w.count++
	w.logger.Debug("remote call", "project_id", w.project.ID(), "op", op, "entity_id", entityID)
	return nil
}
