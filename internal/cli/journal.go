package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/fieldsync/internal/canonical"
	"github.com/roach88/fieldsync/internal/store"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Database string
	Project  string
	Name     string
	Limit    int
}

// JournalEntry is one journal row in JSON output.
type JournalEntry struct {
	Seq        int64          `json:"seq"`
	Name       string         `json:"name"`
	ProjectID  string         `json:"project_id,omitempty"`
	Properties map[string]any `json:"properties"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List events recorded in a SQLite journal",
		Long: `List tracking events written by "fieldsync run --db", oldest first.

Example:
  fieldsync journal --db ./events.db
  fieldsync journal --db ./events.db --project P1 --name upload_failed
  fieldsync journal --db ./events.db --limit 20 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	cmd.Flags().StringVar(&opts.Project, "project", "", "only events of this project id")
	cmd.Flags().StringVar(&opts.Name, "name", "", "only events with this name")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of events (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runJournal(opts *JournalOptions, cmd *cobra.Command) error {
	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, "--limit must not be negative")
	}
	// store.Open creates missing files; a journal is only ever read here.
	if _, err := os.Stat(opts.Database); err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("journal not found: %s", opts.Database))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	records, err := st.Events(cmd.Context(), store.Filter{
		ProjectID: opts.Project,
		Name:      opts.Name,
		Limit:     opts.Limit,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		entries := make([]JournalEntry, len(records))
		for i, r := range records {
			entries[i] = JournalEntry(r)
		}
		return writeJSON(w, okResponse(entries))
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No events.")
		return nil
	}
	for _, r := range records {
		props, err := canonical.Marshal(r.Properties)
		if err != nil {
			props = []byte(fmt.Sprint(r.Properties))
		}
		fmt.Fprintf(w, "%6d  %-18s %s\n", r.Seq, r.Name, props)
	}
	return nil
}
