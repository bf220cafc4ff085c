package model

import (
	"bytes"
	"slices"
)

// Comment is a free-text note attached to a room.
type Comment struct {
	id    string
	text  string
	state SyncState
}

// NewComment builds a comment value. The state is taken verbatim; creation
// promotion happens when the comment is added to a project.
func NewComment(id, text string, state SyncState) Comment {
	return Comment{id: id, text: text, state: state}
}

// ID returns the comment's identifier.
func (c Comment) ID() string { return c.id }

// Text returns the comment body.
func (c Comment) Text() string { return c.text }

// SyncState returns the comment's sync flag.
func (c Comment) SyncState() SyncState { return c.state }

// Pano is the panoramic image of a room.
type Pano struct {
	id        string
	imageData []byte
	state     SyncState
}

// NewPano builds a pano value. imageData is copied.
func NewPano(id string, imageData []byte, state SyncState) Pano {
	return Pano{id: id, imageData: bytes.Clone(imageData), state: state}
}

// ID returns the pano's identifier.
func (p Pano) ID() string { return p.id }

// ImageData returns a copy of the image bytes.
func (p Pano) ImageData() []byte { return bytes.Clone(p.imageData) }

// SyncState returns the pano's sync flag.
func (p Pano) SyncState() SyncState { return p.state }

func (p Pano) sameContent(o Pano) bool {
	return p.id == o.id && bytes.Equal(p.imageData, o.imageData)
}

// DeletedPano is a tombstone for a pano that must be deleted remotely.
type DeletedPano struct {
	PanoID string
	RoomID string
}

// Room is a named space inside a project.
type Room struct {
	id       string
	name     string
	pano     *Pano
	comments []Comment
	state    SyncState
}

// RoomOption configures a Room under construction.
type RoomOption func(*Room)

// WithPano attaches a pano to the room being built.
func WithPano(p Pano) RoomOption {
	return func(r *Room) {
		r.pano = &p
	}
}

// WithComments sets the room's comments, in order.
func WithComments(comments ...Comment) RoomOption {
	return func(r *Room) {
		r.comments = slices.Clone(comments)
	}
}

// NewRoom builds a room value. The room's own state is taken verbatim, as are
// the states of any pano and comments passed in.
func NewRoom(id, name string, state SyncState, opts ...RoomOption) Room {
	r := Room{id: id, name: name, state: state}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// ID returns the room's identifier.
func (r Room) ID() string { return r.id }

// Name returns the room's display name.
func (r Room) Name() string { return r.name }

// SyncState returns the room's own sync flag.
func (r Room) SyncState() SyncState { return r.state }

// Pano returns the room's pano, if any.
func (r Room) Pano() (Pano, bool) {
	if r.pano == nil {
		return Pano{}, false
	}
	return *r.pano, true
}

// Comments returns a copy of the room's comments, in order.
func (r Room) Comments() []Comment {
	return slices.Clone(r.comments)
}

// Comment returns the comment with the given id.
func (r Room) Comment(id string) (Comment, bool) {
	i := r.commentIndex(id)
	if i < 0 {
		return Comment{}, false
	}
	return r.comments[i], true
}

func (r Room) commentIndex(id string) int {
	return slices.IndexFunc(r.comments, func(c Comment) bool { return c.id == id })
}
