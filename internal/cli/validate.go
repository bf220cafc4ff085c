package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/fieldsync/internal/harness"
)

// ValidationResult is the outcome of validating one scenario file.
type ValidationResult struct {
	File  string `json:"file"`
	Name  string `json:"name,omitempty"`
	Valid bool   `json:"valid"`
	Steps int    `json:"steps,omitempty"`
	Error string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Validate scenario files against the scenario schema",
		Long: `Parse each scenario file strictly and check it against the CUE schema.

No scenario is executed.

Exit codes:
  0 - All files are valid
  1 - One or more files are invalid
  2 - A file does not exist

Example:
  fieldsync validate ./scenarios/*.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("cannot read %s", f), err)
		}
	}

	results := make([]ValidationResult, 0, len(files))
	invalid := 0
	for _, f := range files {
		res := ValidationResult{File: f}
		s, err := harness.LoadScenario(f)
		if err != nil {
			res.Error = err.Error()
			invalid++
		} else {
			res.Valid = true
			res.Name = s.Name
			res.Steps = len(s.Steps)
		}
		results = append(results, res)
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		resp := okResponse(results)
		if invalid > 0 {
			resp = errorResponse(ErrCodeInvalid, fmt.Sprintf("%d file(s) invalid", invalid), results)
		}
		if err := writeJSON(w, resp); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(w, "%s %s (%s, %d steps)\n", passMark(true), r.File, r.Name, r.Steps)
				continue
			}
			fmt.Fprintf(w, "%s %s\n  %s\n", passMark(false), r.File, r.Error)
		}
	}

	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) invalid", invalid))
	}
	return nil
}
