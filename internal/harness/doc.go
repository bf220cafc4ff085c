// Package harness runs YAML scenarios against a repository wired to a
// recording remote client and an in-memory event recorder.
//
// # Scenario Format
//
//	name: remove_pano
//	description: "Removing a synced pano deletes it remotely"
//	projects:                 # optional server snapshots, loaded silently
//	  - id: P1
//	    name: House
//	    state: SYNCED
//	    rooms:
//	      - id: R1
//	        name: Kitchen
//	        state: SYNCED
//	        pano: { id: X, data: "jpeg-bytes", state: SYNCED }
//	steps:
//	  - { op: remove_pano, project: P1, room: R1 }
//	  - { op: save, project: P1 }
//	  - { op: upload, project: P1 }
//	assertions:
//	  - { type: remote_calls, calls: ["deletePano(R1/X)"] }
//	  - { type: final_state, project: P1, entity: pano, room: R1, expect: absent }
//
// Edits are applied to a per-project draft. A save step stores the draft in
// the repository and drops it; the next edit starts again from the stored
// project. Upload steps always act on the stored project.
//
// # Assertion Types
//
//   - remote_calls: the exact sequence of remote calls, rendered op(entity)
//   - remote_count: the number of remote calls
//   - event_contains: an event with the given name and a subset of props
//   - event_count: the number of events with the given name
//   - final_state: the sync flag of one stored entity, or "absent"
//   - tombstones_empty: the stored project has no tombstones left
//
// Scenario files are decoded strictly (unknown YAML fields are errors) and
// validated against an embedded CUE schema before they run.
package harness
