package model

import (
	"fmt"
	"strings"
)

// SyncState records whether an entity's local value has been reflected to
// the remote service.
type SyncState string

const (
	// StateNew marks an entity created locally and never uploaded.
	StateNew SyncState = "NEW"

	// StateModified marks an uploaded entity edited locally since.
	StateModified SyncState = "MODIFIED"

	// StateSynced marks an entity whose local value matches the remote one.
	StateSynced SyncState = "SYNCED"

	// StateDeleted marks a pano that must be deleted remotely and then purged.
	StateDeleted SyncState = "DELETED"
)

// ParseSyncState converts a case-insensitive name into a SyncState.
func ParseSyncState(s string) (SyncState, error) {
	state := SyncState(strings.ToUpper(strings.TrimSpace(s)))
	if !state.Valid() {
		return "", fmt.Errorf("unknown sync state %q", s)
	}
	return state, nil
}

// Valid reports whether s is one of the four known states.
func (s SyncState) Valid() bool {
	switch s {
	case StateNew, StateModified, StateSynced, StateDeleted:
		return true
	}
	return false
}

// IsDirty reports whether the entity still has something to upload.
func (s SyncState) IsDirty() bool {
	return s == StateNew || s == StateModified || s == StateDeleted
}

// OnCreate is the transition applied when an entity enters the aggregate.
func (s SyncState) OnCreate() SyncState {
	if s == StateSynced {
		return StateNew
	}
	return s
}

// OnEdit is the transition applied when an entity's content changes.
func (s SyncState) OnEdit() SyncState {
	if s == StateSynced {
		return StateModified
	}
	return s
}

func (s SyncState) String() string {
	return string(s)
}
