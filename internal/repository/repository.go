package repository

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/roach88/fieldsync/internal/model"
	"github.com/roach88/fieldsync/internal/observable"
	"github.com/roach88/fieldsync/internal/remote"
	"github.com/roach88/fieldsync/internal/tracking"
)

// Repository holds the collection of projects and drives uploads.
type Repository struct {
	client   remote.Client
	recorder tracking.Recorder
	logger   *slog.Logger
	projects *observable.Value[[]model.Project]
	uploads  *keyedMutex
}

// Option configures a Repository.
type Option func(*Repository)

// WithRecorder sets the tracking sink. Default: tracking.Discard.
func WithRecorder(rec tracking.Recorder) Option {
	return func(r *Repository) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProjects seeds the collection without emitting events.
func WithProjects(projects ...model.Project) Option {
	return func(r *Repository) {
		r.projects = observable.New(slices.Clone(projects))
	}
}

// New creates a Repository uploading through client.
func New(client remote.Client, opts ...Option) *Repository {
	r := &Repository{
		client:   client,
		recorder: tracking.Discard,
		logger:   slog.Default(),
		projects: observable.New[[]model.Project](nil),
		uploads:  newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Projects returns the latest snapshot of the collection.
func (r *Repository) Projects() []model.Project {
	return slices.Clone(r.projects.Load())
}

// Project returns the stored project with the given id.
func (r *Repository) Project(id string) (model.Project, bool) {
	return find(r.projects.Load(), id)
}

// Watch returns a watcher over whole-collection snapshots. Its first Next
// returns the current collection.
func (r *Repository) Watch() *observable.Watcher[[]model.Project] {
	return r.projects.Watch()
}

// Pending returns the ids of stored projects that an upload would change,
// in collection order.
func (r *Repository) Pending() []string {
	var ids []string
	for _, p := range r.projects.Load() {
		if needsUpload(p) {
			ids = append(ids, p.ID())
		}
	}
	return ids
}

// Load replaces the whole collection with the given snapshots. No events are
// emitted: the snapshots describe remote state, not local edits.
func (r *Repository) Load(projects ...model.Project) {
	r.projects.Store(slices.Clone(projects))
	r.logger.Debug("projects loaded", "count", len(projects))
}

// Save stores project, replacing the entry with the same id or appending a
// new one, then records one event per dirty entity.
func (r *Repository) Save(project model.Project) {
	r.projects.Update(func(ps []model.Project) []model.Project {
		next := slices.Clone(ps)
		if i := indexOf(next, project.ID()); i >= 0 {
			next[i] = project
			return next
		}
		return append(next, project)
	})

	changes := project.Changes()
	for _, c := range changes {
		r.recorder.TrackEvent(eventName(c), eventProps(c))
	}
	r.logger.Debug("project saved", "project_id", project.ID(), "changes", len(changes))
}

// UploadAll uploads every project with pending changes, one after another.
// Failures do not stop the remaining uploads; they are joined in the
// returned error.
func (r *Repository) UploadAll(ctx context.Context) error {
	var errs []error
	for _, id := range r.Pending() {
		if err := r.UploadProject(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func needsUpload(p model.Project) bool {
	return p.HasPendingChanges() || len(p.DeletedPanoIDs()) > 0
}

func indexOf(ps []model.Project, id string) int {
	return slices.IndexFunc(ps, func(p model.Project) bool { return p.ID() == id })
}

func find(ps []model.Project, id string) (model.Project, bool) {
	i := indexOf(ps, id)
	if i < 0 {
		return model.Project{}, false
	}
	return ps[i], true
}

func eventName(c model.Change) string {
	switch c.State {
	case model.StateNew:
		return string(c.Kind) + "_created"
	case model.StateDeleted:
		return string(c.Kind) + "_deleted"
	default:
		return string(c.Kind) + "_updated"
	}
}

func eventProps(c model.Change) map[string]any {
	props := map[string]any{tracking.PropProjectID: c.ProjectID}
	switch c.Kind {
	case model.KindRoom:
		props[tracking.PropRoomID] = c.RoomID
	case model.KindPano:
		props[tracking.PropRoomID] = c.RoomID
		props[tracking.PropPanoID] = c.EntityID
	case model.KindComment:
		props[tracking.PropRoomID] = c.RoomID
		props[tracking.PropCommentID] = c.EntityID
	}
	return props
}
