package model

import "slices"

// EntityKind names the kind of entity a Change refers to.
type EntityKind string

const (
	KindProject EntityKind = "project"
	KindRoom    EntityKind = "room"
	KindPano    EntityKind = "pano"
	KindComment EntityKind = "comment"
)

// Change describes one dirty entity of a project.
type Change struct {
	Kind      EntityKind
	State     SyncState
	ProjectID string
	RoomID    string // empty for KindProject
	EntityID  string
}

// Changes lists every dirty entity in upload walk order: the project, then
// each room followed by its pano and its comments. Tombstones are not listed.
func (p Project) Changes() []Change {
	var out []Change
	if p.state.IsDirty() {
		out = append(out, Change{Kind: KindProject, State: p.state, ProjectID: p.id, EntityID: p.id})
	}
	for _, r := range p.rooms {
		if r.state.IsDirty() {
			out = append(out, Change{Kind: KindRoom, State: r.state, ProjectID: p.id, RoomID: r.id, EntityID: r.id})
		}
		if r.pano != nil && r.pano.state.IsDirty() {
			out = append(out, Change{Kind: KindPano, State: r.pano.state, ProjectID: p.id, RoomID: r.id, EntityID: r.pano.id})
		}
		for _, c := range r.comments {
			if c.state.IsDirty() {
				out = append(out, Change{Kind: KindComment, State: c.state, ProjectID: p.id, RoomID: r.id, EntityID: c.id})
			}
		}
	}
	return out
}

// HasPendingChanges reports whether an upload would have anything to do.
func (p Project) HasPendingChanges() bool {
	return len(p.Changes()) > 0 || len(p.deletedPanos) > 0
}

// MarkSynced returns the project as it stands after a complete upload: every
// flag SYNCED, DELETED panos detached, both tombstone collections cleared.
func (p Project) MarkSynced() Project {
	return p.Acknowledge(p)
}

// Acknowledge applies a successful upload of uploaded to p, where p is the
// current value of the same project and may carry edits saved after the
// upload snapshot was taken.
//
// An entity becomes SYNCED only when its current content and flag equal the
// uploaded ones. An entity that was NEW in the snapshot and has been edited
// since becomes MODIFIED, because the remote now holds the older content.
// Anything absent from the snapshot keeps its flag. A pano created by the
// upload but replaced since is added to the tombstone log so that the next
// upload deletes it remotely.
func (p Project) Acknowledge(uploaded Project) Project {
	p.state = acknowledgeState(p.state, uploaded.state, p.name == uploaded.name)

	var orphans []DeletedPano
	if p.rooms != nil {
		rooms := make([]Room, len(p.rooms))
		for i, r := range p.rooms {
			rooms[i] = r
			if j := uploaded.roomIndex(r.id); j >= 0 {
				var orphan *DeletedPano
				rooms[i], orphan = r.acknowledge(uploaded.rooms[j])
				if orphan != nil {
					orphans = append(orphans, *orphan)
				}
			}
		}
		p.rooms = rooms
	}

	var tombstones []DeletedPano
	for _, d := range p.deletedPanos {
		if slices.Contains(uploaded.deletedPanos, d) || uploaded.deletedInRoom(d) {
			continue
		}
		tombstones = append(tombstones, d)
	}
	changed := len(tombstones) != len(p.deletedPanos)
	for _, d := range orphans {
		if !slices.Contains(tombstones, d) {
			tombstones = append(tombstones, d)
			changed = true
		}
	}
	if changed {
		p.deletedPanos = tombstones
	}

	var legacy []string
	for _, id := range p.deletedPanoIDs {
		if !slices.Contains(uploaded.deletedPanoIDs, id) {
			legacy = append(legacy, id)
		}
	}
	if len(legacy) != len(p.deletedPanoIDs) {
		p.deletedPanoIDs = legacy
	}
	return p
}

// deletedInRoom reports whether the upload of p issued a delete for the
// tombstoned pano through the room walk.
func (p Project) deletedInRoom(d DeletedPano) bool {
	r, ok := p.Room(d.RoomID)
	return ok && r.pano != nil && r.pano.id == d.PanoID && r.pano.state == StateDeleted
}

// acknowledge returns the acknowledged room and, when the upload created a
// pano that the room no longer holds, the tombstone for that pano.
func (r Room) acknowledge(uploaded Room) (Room, *DeletedPano) {
	r.state = acknowledgeState(r.state, uploaded.state, r.name == uploaded.name)

	var orphan *DeletedPano
	if up := uploaded.pano; up != nil && up.state == StateNew && (r.pano == nil || r.pano.id != up.id) {
		orphan = &DeletedPano{PanoID: up.id, RoomID: r.id}
	}

	if r.pano != nil && uploaded.pano != nil {
		cur, up := *r.pano, *uploaded.pano
		switch {
		case cur.state == StateDeleted && up.state == StateDeleted && cur.id == up.id:
			r.pano = nil
		case up.state.IsDirty() && cur.state == up.state && cur.sameContent(up):
			cur.state = StateSynced
			r.pano = &cur
		}
	}

	if r.comments != nil {
		comments := make([]Comment, len(r.comments))
		for i, c := range r.comments {
			comments[i] = c
			j := uploaded.commentIndex(c.id)
			if j < 0 {
				continue
			}
			u := uploaded.comments[j]
			comments[i].state = acknowledgeState(c.state, u.state, c.text == u.text)
		}
		r.comments = comments
	}
	return r, orphan
}

// acknowledgeState computes the flag of an entity present in both the
// current value and the uploaded snapshot.
func acknowledgeState(cur, uploaded SyncState, sameContent bool) SyncState {
	switch {
	case !uploaded.IsDirty():
		return cur
	case cur == uploaded && sameContent:
		return StateSynced
	case uploaded == StateNew && cur == StateNew:
		return StateModified
	default:
		return cur
	}
}
