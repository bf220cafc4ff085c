package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/fieldsync/internal/harness"
	"github.com/roach88/fieldsync/internal/model"
	"github.com/roach88/fieldsync/internal/store"
	"github.com/roach88/fieldsync/internal/tracking"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
}

// RunReport is the outcome of one scenario run.
type RunReport struct {
	Name     string          `json:"name"`
	Pass     bool            `json:"pass"`
	Calls    []string        `json:"calls"`
	Events   int             `json:"events"`
	Journal  string          `json:"journal,omitempty"`
	Projects []ProjectReport `json:"projects"`
	Errors   []string        `json:"errors,omitempty"`
}

// ProjectReport summarizes the final state of one project.
type ProjectReport struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	State   string `json:"sync_state"`
	Pending int    `json:"pending"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run one scenario and print the outcome",
		Long: `Run a scenario file against a fresh repository and recording remote.

Prints the remote calls issued and the final sync state of every project.
With --db, every tracking event is also appended to a SQLite journal.
With --verbose, every tracking event is also logged to stderr.

Exit codes:
  0 - Scenario passed
  1 - A step or assertion failed
  2 - Command error (missing file, invalid scenario, unusable database)

Example:
  fieldsync run ./scenarios/new_project_upload.yaml
  fieldsync run --db ./events.db ./scenarios/new_project_upload.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runScenario(ctx, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "append events to this SQLite journal")

	return cmd
}

func runScenario(ctx context.Context, opts *RunOptions, path string, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	scenario, err := loadScenario(path)
	if err != nil {
		return err
	}

	var sinks []tracking.Recorder
	if opts.Verbose {
		sinks = append(sinks, tracking.NewLogRecorder(logger))
	}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer st.Close()

		journal, err := store.NewJournal(ctx, st, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		sinks = append(sinks, journal)
	}

	runOpts := []harness.RunOption{harness.WithLogger(logger)}
	if len(sinks) > 0 {
		runOpts = append(runOpts, harness.WithRecorder(tracking.Multi(sinks...)))
	}

	logger.Debug("running scenario", "scenario", scenario.Name, "steps", len(scenario.Steps))
	result, err := harness.Run(ctx, scenario, runOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario execution failed", err)
	}

	report := newRunReport(scenario, result)
	report.Journal = opts.Database

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		resp := okResponse(report)
		if !report.Pass {
			resp = errorResponse(ErrCodeScenario, "scenario failed", report)
		}
		if err := writeJSON(w, resp); err != nil {
			return err
		}
	} else {
		printRunText(w, report, result.Projects)
	}

	if !report.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

// loadScenario maps load failures to exit codes: a missing or unreadable
// file and an invalid scenario are both command errors.
func loadScenario(path string) (*harness.Scenario, error) {
	scenario, err := harness.LoadScenario(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("scenario file not found: %s", path))
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	return scenario, nil
}

func newRunReport(scenario *harness.Scenario, result *harness.Result) RunReport {
	report := RunReport{
		Name:     scenario.Name,
		Pass:     result.Pass,
		Calls:    make([]string, len(result.Calls)),
		Events:   len(result.Events),
		Projects: make([]ProjectReport, len(result.Projects)),
		Errors:   result.Errors,
	}
	for i, c := range result.Calls {
		report.Calls[i] = c.String()
	}
	for i, p := range result.Projects {
		report.Projects[i] = ProjectReport{
			ID:      p.ID(),
			Name:    p.Name(),
			State:   string(p.SyncState()),
			Pending: len(p.Changes()) + len(p.DeletedPanos()),
		}
	}
	return report
}

func printRunText(w io.Writer, report RunReport, projects []model.Project) {
	fmt.Fprintf(w, "%s %s\n", passMark(report.Pass), report.Name)

	fmt.Fprintf(w, "\nRemote calls (%d):\n", len(report.Calls))
	for i, c := range report.Calls {
		fmt.Fprintf(w, "  [%d] %s\n", i+1, c)
	}
	fmt.Fprintf(w, "\nEvents: %d\n", report.Events)
	if report.Journal != "" {
		fmt.Fprintf(w, "Journal: %s\n", report.Journal)
	}

	fmt.Fprintln(w, "\nProjects:")
	for _, p := range projects {
		printProject(w, p)
	}

	if len(report.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
}

// printProject writes the project tree with colored sync states.
func printProject(w io.Writer, p model.Project) {
	fmt.Fprintf(w, "  project %s %q %s\n", p.ID(), p.Name(), colorizeState(p.SyncState()))
	for _, r := range p.Rooms() {
		fmt.Fprintf(w, "    room %s %q %s\n", r.ID(), r.Name(), colorizeState(r.SyncState()))
		if pano, ok := r.Pano(); ok {
			fmt.Fprintf(w, "      pano %s %s\n", pano.ID(), colorizeState(pano.SyncState()))
		}
		for _, c := range r.Comments() {
			fmt.Fprintf(w, "      comment %s %s\n", c.ID(), colorizeState(c.SyncState()))
		}
	}
	for _, d := range p.DeletedPanos() {
		fmt.Fprintf(w, "    tombstone %s/%s\n", d.RoomID, d.PanoID)
	}
}
