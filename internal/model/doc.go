// Package model defines the inspection aggregate: a Project owning Rooms,
// each Room owning at most one Pano and an ordered list of Comments.
//
// Every entity carries a SyncState flag describing whether its current local
// value has reached the remote service. The package is pure: no I/O, no
// logging, no shared mutable state.
//
// # Aggregate-root discipline
//
// Project is the only entry point for structural change. Its operations
// (AddRoom, AddComment, SetPano, RemovePano, RenameRoom, RenameProject,
// UpdateComment) never mutate the receiver; each returns a new Project that
// shares untouched subtrees with the old one. Entity fields are unexported so
// that code outside this package cannot edit a Room, Pano or Comment in place.
//
// # Flag rules
//
//   - Creation (AddRoom, AddComment, SetPano): a SYNCED input is promoted to
//     NEW; any other state is kept. Server snapshots and local creations can
//     share constructors this way.
//   - Edit (RenameRoom, RenameProject, UpdateComment): NEW stays NEW, SYNCED
//     becomes MODIFIED, DELETED is terminal.
//   - RemovePano flags the pano DELETED and leaves it attached until the next
//     successful upload purges it.
//   - An operation naming a room or comment that does not exist returns the
//     aggregate unchanged.
package model
