package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/fieldsync/internal/model"
	"github.com/roach88/fieldsync/internal/remote"
	"github.com/roach88/fieldsync/internal/repository"
	"github.com/roach88/fieldsync/internal/tracking"
)

// defaultFailMessage is the error text of injected failures without an
// explicit fail_message.
const defaultFailMessage = "remote failure"

// Harness executes one scenario against a fresh repository.
type Harness struct {
	repo   *repository.Repository
	client *remote.Recorder
	events *tracking.MemoryRecorder
	logger *slog.Logger

	// drafts holds unsaved edits per project id.
	drafts map[string]model.Project
}

// RunOption configures a scenario run.
type RunOption func(*runConfig)

type runConfig struct {
	recorder tracking.Recorder
	logger   *slog.Logger
}

// WithRecorder adds a sink that receives every event alongside the
// harness's own in-memory recorder (for example a store.Journal).
func WithRecorder(rec tracking.Recorder) RunOption {
	return func(c *runConfig) {
		c.recorder = rec
	}
}

// WithLogger sets the logger used by the harness and the repository.
// Default: discard.
func WithLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// Run executes a scenario and returns the result.
//
// Each run gets its own repository, recording client and event recorder.
// Step failures (an upload failing unexpectedly, or succeeding when
// expect_error is set) and assertion failures are reported in the result.
// The returned error is reserved for scenarios that cannot be executed at
// all.
func Run(ctx context.Context, scenario *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Harness{
		client: remote.NewRecorder(),
		events: tracking.NewMemoryRecorder(),
		logger: cfg.logger,
		drafts: make(map[string]model.Project),
	}
	h.repo = repository.New(h.client,
		repository.WithRecorder(tracking.Multi(h.events, cfg.recorder)),
		repository.WithLogger(cfg.logger),
	)

	if len(scenario.Projects) > 0 {
		projects := make([]model.Project, 0, len(scenario.Projects))
		for _, ps := range scenario.Projects {
			p, err := ps.toProject()
			if err != nil {
				return nil, fmt.Errorf("load projects: %w", err)
			}
			projects = append(projects, p)
		}
		h.repo.Load(projects...)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.execute(ctx, step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}

	result.Calls = h.client.Calls()
	result.Events = h.events.Events()
	result.Projects = h.repo.Projects()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// execute runs one step.
func (h *Harness) execute(ctx context.Context, step Step, result *Result) error {
	switch step.Op {
	case OpCreateProject:
		p := model.NewProject(model.NewFixedGenerator(step.Project), step.Name)
		h.drafts[step.Project] = p
		return nil
	case OpSave:
		p, err := h.current(step.Project)
		if err != nil {
			return err
		}
		h.repo.Save(p)
		delete(h.drafts, step.Project)
		h.logger.Info("step saved", "project_id", step.Project)
		return nil
	case OpUpload:
		return h.upload(ctx, step, result)
	}

	p, err := h.current(step.Project)
	if err != nil {
		return err
	}
	state := model.StateNew
	if step.State != "" {
		if state, err = model.ParseSyncState(step.State); err != nil {
			return err
		}
	}

	switch step.Op {
	case OpAddRoom:
		p = p.AddRoom(model.NewRoom(step.Room, step.Name, state))
	case OpAddComment:
		p = p.AddComment(step.Room, model.NewComment(step.Comment, step.Text, state))
	case OpSetPano:
		p = p.SetPano(step.Room, model.NewPano(step.Pano, []byte(step.Data), state))
	case OpRemovePano:
		p = p.RemovePano(step.Room)
	case OpRenameRoom:
		p = p.RenameRoom(step.Room, step.Name)
	case OpRenameProject:
		p = p.RenameProject(step.Name)
	case OpUpdateComment:
		p = p.UpdateComment(step.Room, step.Comment, step.Text)
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	h.drafts[step.Project] = p
	return nil
}

// current returns the draft of a project, or its stored value.
func (h *Harness) current(id string) (model.Project, error) {
	if p, ok := h.drafts[id]; ok {
		return p, nil
	}
	if p, ok := h.repo.Project(id); ok {
		return p, nil
	}
	return model.Project{}, fmt.Errorf("unknown project %q", id)
}

func (h *Harness) upload(ctx context.Context, step Step, result *Result) error {
	if step.FailAt > 0 {
		msg := step.FailMessage
		if msg == "" {
			msg = defaultFailMessage
		}
		h.client.FailAt(len(h.client.Calls())+step.FailAt, errors.New(msg))
		defer h.client.ClearFailures()
	}

	err := h.repo.UploadProject(ctx, step.Project)
	switch {
	case err != nil && !step.ExpectError:
		result.AddError(fmt.Sprintf("upload %s: unexpected error: %v", step.Project, err))
	case err == nil && step.ExpectError:
		result.AddError(fmt.Sprintf("upload %s: expected an error, got none", step.Project))
	}
	h.logger.Info("step uploaded", "project_id", step.Project, "error", err)
	return nil
}
