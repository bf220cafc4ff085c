package tracking

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Event names emitted by the repository.
const (
	EventProjectCreated = "project_created"
	EventProjectUpdated = "project_updated"
	EventRoomCreated    = "room_created"
	EventRoomUpdated    = "room_updated"
	EventPanoCreated    = "pano_created"
	EventPanoUpdated    = "pano_updated"
	EventPanoDeleted    = "pano_deleted"
	EventCommentCreated = "comment_created"
	EventCommentUpdated = "comment_updated"

	EventUploadStarted   = "upload_started"
	EventUploadFailed    = "upload_failed"
	EventUploadCompleted = "upload_completed"
)

// Property keys attached to events.
const (
	PropProjectID = "project_id"
	PropRoomID    = "room_id"
	PropPanoID    = "pano_id"
	PropCommentID = "comment_id"
	PropMessage   = "message"
	PropError     = "error"
	PropCount     = "count"
)

// Recorder receives named events with a flat property map.
//
// Implementations must be safe for concurrent use and must not retain props
// after returning unless they copy it.
type Recorder interface {
	TrackEvent(name string, props map[string]any)
}

// Discard drops every event.
var Discard Recorder = discard{}

type discard struct{}

func (discard) TrackEvent(string, map[string]any) {}

// LogRecorder writes one structured log line per event.
type LogRecorder struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogRecorder logs events on logger at Info level.
// A nil logger means slog.Default().
func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogRecorder{logger: logger, level: slog.LevelInfo}
}

// TrackEvent implements Recorder.
func (r *LogRecorder) TrackEvent(name string, props map[string]any) {
	attrs := make([]slog.Attr, 0, len(props)+1)
	attrs = append(attrs, slog.String("event", name))
	for _, k := range slices.Sorted(maps.Keys(props)) {
		attrs = append(attrs, slog.Any(k, props[k]))
	}
	r.logger.LogAttrs(context.Background(), r.level, "track", attrs...)
}

// Event is one captured TrackEvent call.
type Event struct {
	Seq   int64
	Name  string
	Props map[string]any
}

// ProjectID returns the event's project_id property, or "".
func (e Event) ProjectID() string {
	s, _ := e.Props[PropProjectID].(string)
	return s
}

// MemoryRecorder captures events in order.
//
// Thread-safety: safe for concurrent use. Sequence numbers come from a
// Clock, so they are strictly increasing across goroutines.
type MemoryRecorder struct {
	clock  *Clock
	mu     sync.Mutex
	events []Event
}

// NewMemoryRecorder creates an empty recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{clock: NewClock()}
}

// TrackEvent implements Recorder.
func (r *MemoryRecorder) TrackEvent(name string, props map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{
		Seq:   r.clock.Next(),
		Name:  name,
		Props: maps.Clone(props),
	})
}

// Events returns a copy of every captured event.
func (r *MemoryRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	for i, e := range r.events {
		e.Props = maps.Clone(e.Props)
		out[i] = e
	}
	return out
}

// Named returns the captured events with the given name.
func (r *MemoryRecorder) Named(name string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops all captured events. Sequence numbers keep increasing.
func (r *MemoryRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Multi fans each event out to every recorder in order. Nil entries are
// skipped.
func Multi(recorders ...Recorder) Recorder {
	var rs multi
	for _, r := range recorders {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return rs
}

type multi []Recorder

func (m multi) TrackEvent(name string, props map[string]any) {
	for _, r := range m {
		r.TrackEvent(name, props)
	}
}
