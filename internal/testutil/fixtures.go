package testutil

import (
	"fmt"

	"github.com/roach88/fieldsync/internal/model"
	"github.com/roach88/fieldsync/internal/tracking"
)

// SyncedHouse returns project P1 "House", fully synced, with room R1
// "Kitchen" holding pano X and comment C1.
func SyncedHouse() model.Project {
	return model.RestoreProject("P1", "House", model.StateSynced, model.WithRooms(
		model.NewRoom("R1", "Kitchen", model.StateSynced,
			model.WithPano(model.NewPano("X", []byte{1, 2, 3}, model.StateSynced)),
			model.WithComments(model.NewComment("C1", "crack", model.StateSynced)),
		),
	))
}

// SequentialIDs returns a generator yielding prefix1, prefix2, ... prefixN.
//
// The same prefix and n always produce the same ids, so projects created
// through it are byte-identical between runs.
func SequentialIDs(prefix string, n int) *model.FixedGenerator {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return model.NewFixedGenerator(ids...)
}

// EventNames returns the names of events in order.
func EventNames(events []tracking.Event) []string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Name
	}
	return names
}
