package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/fieldsync/internal/canonical"
)

// GoldenDir is where RunWithGolden keeps golden files, relative to the test's
// package directory.
const GoldenDir = "testdata/golden"

// TraceSnapshot renders a scenario result as canonical JSON: the remote
// calls, the recorded events and the final projects. Identical runs produce
// identical bytes.
func TraceSnapshot(scenario *Scenario, result *Result) ([]byte, error) {
	calls := make([]any, len(result.Calls))
	for i, c := range result.Calls {
		calls[i] = c.String()
	}

	events := make([]any, len(result.Events))
	for i, e := range result.Events {
		props := e.Props
		if props == nil {
			props = map[string]any{}
		}
		events[i] = map[string]any{
			"seq":   e.Seq,
			"name":  e.Name,
			"props": props,
		}
	}

	projects := make([]any, len(result.Projects))
	for i, p := range result.Projects {
		projects[i] = p.Snapshot()
	}

	return canonical.Marshal(map[string]any{
		"scenario_name": scenario.Name,
		"calls":         calls,
		"events":        events,
		"projects":      projects,
	})
}

// RunWithGolden executes a scenario and compares its trace snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	data, err := TraceSnapshot(scenario, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return result, nil
}
