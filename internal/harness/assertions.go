package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/fieldsync/internal/model"
	"github.com/roach88/fieldsync/internal/tracking"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Calls    []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Calls) > 0 {
		fmt.Fprintf(&buf, "\nRemote calls:\n")
		for i, c := range e.Calls {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, c)
		}
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns one message per
// failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertRemoteCalls:
		return assertRemoteCalls(result, a)
	case AssertRemoteCount:
		return assertRemoteCount(result, a)
	case AssertEventContains:
		return assertEventContains(result, a)
	case AssertEventCount:
		return assertEventCount(result, a)
	case AssertFinalState:
		return assertFinalState(result, a)
	case AssertTombstonesEmpty:
		return assertTombstonesEmpty(result, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func callStrings(result *Result) []string {
	out := make([]string, len(result.Calls))
	for i, c := range result.Calls {
		out[i] = c.String()
	}
	return out
}

func assertRemoteCalls(result *Result, a Assertion) error {
	got := callStrings(result)
	want := a.Calls
	if want == nil {
		want = []string{}
	}
	if slices.Equal(got, want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertRemoteCalls,
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", got),
		Calls:    got,
	}
}

func assertRemoteCount(result *Result, a Assertion) error {
	if len(result.Calls) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRemoteCount,
		Expected: fmt.Sprintf("%d remote calls", a.Count),
		Actual:   fmt.Sprintf("%d remote calls", len(result.Calls)),
		Calls:    callStrings(result),
	}
}

func assertEventContains(result *Result, a Assertion) error {
	for _, e := range result.Events {
		if e.Name == a.Event && matchProps(e.Props, a.Props) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertEventContains,
		Expected: fmt.Sprintf("event %s with props %v", a.Event, a.Props),
		Actual:   fmt.Sprintf("events %v", eventSummary(result.Events)),
	}
}

func assertEventCount(result *Result, a Assertion) error {
	count := 0
	for _, e := range result.Events {
		if e.Name == a.Event {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertEventCount,
		Expected: fmt.Sprintf("%s x%d", a.Event, a.Count),
		Actual:   fmt.Sprintf("%s x%d", a.Event, count),
	}
}

// matchProps reports whether want is a subset of got. Values are compared
// by their fmt rendering so that YAML ints match recorded ints.
func matchProps(got, want map[string]any) bool {
	for k, w := range want {
		g, ok := got[k]
		if !ok || fmt.Sprint(g) != fmt.Sprint(w) {
			return false
		}
	}
	return true
}

func eventSummary(events []tracking.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Name
	}
	return out
}

func assertFinalState(result *Result, a Assertion) error {
	actual := ExpectAbsent
	if p, ok := result.Project(a.Project); ok {
		actual = entityState(p, a)
	}
	if actual == a.Expect {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: fmt.Sprintf("%s %s in %s is %s", a.Entity, entityLabel(a), a.Project, a.Expect),
		Actual:   actual,
	}
}

// entityState returns the sync state of the entity an assertion points at,
// or ExpectAbsent.
func entityState(p model.Project, a Assertion) string {
	if a.Entity == string(model.KindProject) {
		return string(p.SyncState())
	}
	roomID := a.Room
	if a.Entity == string(model.KindRoom) && roomID == "" {
		roomID = a.ID
	}
	room, ok := p.Room(roomID)
	if !ok {
		return ExpectAbsent
	}
	switch a.Entity {
	case string(model.KindRoom):
		return string(room.SyncState())
	case string(model.KindPano):
		pano, ok := room.Pano()
		if !ok || (a.ID != "" && pano.ID() != a.ID) {
			return ExpectAbsent
		}
		return string(pano.SyncState())
	case string(model.KindComment):
		c, ok := room.Comment(a.ID)
		if !ok {
			return ExpectAbsent
		}
		return string(c.SyncState())
	}
	return ExpectAbsent
}

func entityLabel(a Assertion) string {
	switch {
	case a.Room != "" && a.ID != "":
		return a.Room + "/" + a.ID
	case a.Room != "":
		return a.Room
	default:
		return a.ID
	}
}

func assertTombstonesEmpty(result *Result, a Assertion) error {
	p, ok := result.Project(a.Project)
	if !ok {
		return &AssertionError{
			Type:     AssertTombstonesEmpty,
			Expected: fmt.Sprintf("project %s with no tombstones", a.Project),
			Actual:   "project not found",
		}
	}
	if len(p.DeletedPanos()) == 0 && len(p.DeletedPanoIDs()) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertTombstonesEmpty,
		Expected: "no tombstones",
		Actual:   fmt.Sprintf("deleted_panos=%v deleted_pano_ids=%v", p.DeletedPanos(), p.DeletedPanoIDs()),
	}
}
