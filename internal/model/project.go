package model

import (
	"slices"
)

// Project is the aggregate root of an inspection.
//
// A Project is an immutable value: every operation returns a new Project and
// leaves the receiver untouched. Unchanged rooms, panos and comments are
// shared between versions.
type Project struct {
	id    string
	name  string
	rooms []Room
	state SyncState

	// deletedPanoIDs is the legacy tombstone set. It is carried and cleared
	// on upload but never walked.
	deletedPanoIDs []string

	// deletedPanos is the tombstone log walked by the upload protocol.
	deletedPanos []DeletedPano
}

// ProjectOption configures a Project being restored from a snapshot.
type ProjectOption func(*Project)

// WithRooms sets the project's rooms, in order.
func WithRooms(rooms ...Room) ProjectOption {
	return func(p *Project) {
		p.rooms = slices.Clone(rooms)
	}
}

// WithTombstones sets the project's tombstone log.
func WithTombstones(deleted ...DeletedPano) ProjectOption {
	return func(p *Project) {
		p.deletedPanos = slices.Clone(deleted)
	}
}

// WithLegacyDeletedPanoIDs sets the legacy tombstone set. Duplicates are
// dropped and the ids are kept sorted.
func WithLegacyDeletedPanoIDs(ids ...string) ProjectOption {
	return func(p *Project) {
		if len(ids) == 0 {
			p.deletedPanoIDs = nil
			return
		}
		set := slices.Clone(ids)
		slices.Sort(set)
		p.deletedPanoIDs = slices.Compact(set)
	}
}

// NewProject creates an empty project with a fresh id and state NEW.
func NewProject(gen IDGenerator, name string) Project {
	return Project{id: gen.Generate(), name: name, state: StateNew}
}

// RestoreProject rehydrates a project snapshot verbatim. No flag is
// rewritten, so a server snapshot built with StateSynced stays SYNCED.
func RestoreProject(id, name string, state SyncState, opts ...ProjectOption) Project {
	p := Project{id: id, name: name, state: state}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// ID returns the project's identifier.
func (p Project) ID() string { return p.id }

// Name returns the project's display name.
func (p Project) Name() string { return p.name }

// SyncState returns the project's own sync flag.
func (p Project) SyncState() SyncState { return p.state }

// Rooms returns a copy of the project's rooms, in order.
func (p Project) Rooms() []Room { return slices.Clone(p.rooms) }

// Room returns the room with the given id.
func (p Project) Room(id string) (Room, bool) {
	i := p.roomIndex(id)
	if i < 0 {
		return Room{}, false
	}
	return p.rooms[i], true
}

// DeletedPanos returns a copy of the tombstone log, in insertion order.
func (p Project) DeletedPanos() []DeletedPano { return slices.Clone(p.deletedPanos) }

// DeletedPanoIDs returns a copy of the legacy tombstone set, sorted.
func (p Project) DeletedPanoIDs() []string { return slices.Clone(p.deletedPanoIDs) }

func (p Project) roomIndex(id string) int {
	return slices.IndexFunc(p.rooms, func(r Room) bool { return r.id == id })
}

// withRoom returns p with the room at index i replaced.
func (p Project) withRoom(i int, r Room) Project {
	rooms := slices.Clone(p.rooms)
	rooms[i] = r
	p.rooms = rooms
	return p
}

// AddRoom appends room. A SYNCED room is promoted to NEW.
func (p Project) AddRoom(room Room) Project {
	room.state = room.state.OnCreate()
	p.rooms = append(slices.Clip(p.rooms), room)
	return p
}

// AddComment appends c to the room's comments. A SYNCED comment is promoted
// to NEW. Unknown rooms leave the project unchanged.
func (p Project) AddComment(roomID string, c Comment) Project {
	i := p.roomIndex(roomID)
	if i < 0 {
		return p
	}
	r := p.rooms[i]
	c.state = c.state.OnCreate()
	r.comments = append(slices.Clip(r.comments), c)
	return p.withRoom(i, r)
}

// SetPano replaces the room's pano. A SYNCED pano is promoted to NEW.
//
// When the replaced pano already exists remotely and has a different id, a
// tombstone is appended so the next upload deletes it.
func (p Project) SetPano(roomID string, pano Pano) Project {
	i := p.roomIndex(roomID)
	if i < 0 {
		return p
	}
	r := p.rooms[i]
	if old := r.pano; old != nil && old.state != StateNew && old.id != pano.id {
		p.deletedPanos = append(slices.Clip(p.deletedPanos), DeletedPano{PanoID: old.id, RoomID: roomID})
	}
	pano.state = pano.state.OnCreate()
	r.pano = &pano
	return p.withRoom(i, r)
}

// RemovePano flags the room's pano DELETED. It stays attached until the next
// successful upload. Rooms without a pano are left unchanged.
func (p Project) RemovePano(roomID string) Project {
	i := p.roomIndex(roomID)
	if i < 0 || p.rooms[i].pano == nil {
		return p
	}
	r := p.rooms[i]
	deleted := *r.pano
	deleted.state = StateDeleted
	r.pano = &deleted
	return p.withRoom(i, r)
}

// RenameRoom sets the room's name and applies the edit transition.
func (p Project) RenameRoom(roomID, name string) Project {
	i := p.roomIndex(roomID)
	if i < 0 {
		return p
	}
	r := p.rooms[i]
	r.name = name
	r.state = r.state.OnEdit()
	return p.withRoom(i, r)
}

// RenameProject sets the project's name and applies the edit transition.
func (p Project) RenameProject(name string) Project {
	p.name = name
	p.state = p.state.OnEdit()
	return p
}

// UpdateComment sets a comment's text and applies the edit transition.
func (p Project) UpdateComment(roomID, commentID, text string) Project {
	i := p.roomIndex(roomID)
	if i < 0 {
		return p
	}
	r := p.rooms[i]
	j := r.commentIndex(commentID)
	if j < 0 {
		return p
	}
	comments := slices.Clone(r.comments)
	comments[j].text = text
	comments[j].state = comments[j].state.OnEdit()
	r.comments = comments
	return p.withRoom(i, r)
}
