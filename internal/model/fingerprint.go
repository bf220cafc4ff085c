package model

import (
	"encoding/base64"

	"github.com/roach88/fieldsync/internal/canonical"
)

const fingerprintDomain = "fieldsync/project/v1"

// Fingerprint returns a content hash of the whole aggregate, flags and
// tombstones included. Strings are NFC-normalized before hashing, so two
// projects share a fingerprint iff they are equal once their text is
// normalized: a composed and a decomposed name hash alike.
func (p Project) Fingerprint() (string, error) {
	return canonical.Fingerprint(fingerprintDomain, p.Snapshot())
}

// Snapshot renders the aggregate as a tree of maps and slices suitable for
// canonical JSON. Image bytes are base64 encoded.
func (p Project) Snapshot() map[string]any {
	rooms := make([]any, 0, len(p.rooms))
	for _, r := range p.rooms {
		rooms = append(rooms, r.snapshot())
	}
	tombstones := make([]any, 0, len(p.deletedPanos))
	for _, d := range p.deletedPanos {
		tombstones = append(tombstones, map[string]any{
			"pano_id": d.PanoID,
			"room_id": d.RoomID,
		})
	}
	legacy := p.deletedPanoIDs
	if legacy == nil {
		legacy = []string{}
	}
	return map[string]any{
		"id":               p.id,
		"name":             p.name,
		"sync_state":       string(p.state),
		"rooms":            rooms,
		"deleted_panos":    tombstones,
		"deleted_pano_ids": legacy,
	}
}

func (r Room) snapshot() map[string]any {
	comments := make([]any, 0, len(r.comments))
	for _, c := range r.comments {
		comments = append(comments, map[string]any{
			"id":         c.id,
			"text":       c.text,
			"sync_state": string(c.state),
		})
	}
	out := map[string]any{
		"id":         r.id,
		"name":       r.name,
		"sync_state": string(r.state),
		"comments":   comments,
	}
	if r.pano != nil {
		out["pano"] = map[string]any{
			"id":         r.pano.id,
			"image":      base64.StdEncoding.EncodeToString(r.pano.imageData),
			"sync_state": string(r.pano.state),
		}
	}
	return out
}
