package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/fieldsync/internal/tracking"
)

// Journal is a tracking.Recorder that appends every event to the store.
//
// TrackEvent never fails from the caller's point of view: write errors are
// logged and the event is dropped. Thread-safety: safe for concurrent use
// (the store serializes writes on a single connection and the clock is
// atomic).
type Journal struct {
	store  *Store
	clock  *tracking.Clock
	logger *slog.Logger
}

// NewJournal creates a journal writing to s. Sequence numbers continue after
// the highest seq already stored. A nil logger means slog.Default().
func NewJournal(ctx context.Context, s *Store, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	last, err := s.LastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("new journal: %w", err)
	}
	return &Journal{store: s, clock: tracking.NewClockAt(last), logger: logger}, nil
}

// TrackEvent implements tracking.Recorder.
func (j *Journal) TrackEvent(name string, props map[string]any) {
	if err := j.store.Append(context.Background(), j.clock.Next(), name, props); err != nil {
		j.logger.Error("journal write failed", "event", name, "error", err)
	}
}

var _ tracking.Recorder = (*Journal)(nil)

// Append writes one event row. The project_id property, when present, is
// also stored in its own column for filtering.
func (s *Store) Append(ctx context.Context, seq int64, name string, props map[string]any) error {
	propsJSON, err := marshalProps(props)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	projectID, _ := props[tracking.PropProjectID].(string)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (seq, name, project_id, properties)
		VALUES (?, ?, ?, ?)
	`, seq, name, projectID, propsJSON)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}
