package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/roach88/fieldsync/internal/model"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Scenario, assertion or validation failure
	ExitCommandError = 2 // Command error (missing files, unreadable journal, etc.)
)

// Error codes reported in JSON responses.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeNotFound    = "E005"
	ErrCodeInvalid     = "E101"
	ErrCodeScenario    = "E201"
	ErrCodeJournal     = "E301"
	ErrCodeWriteFailed = "E007"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// writeJSON encodes a response with two-space indentation.
func writeJSON(w io.Writer, resp CLIResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// okResponse wraps data in a successful response.
func okResponse(data any) CLIResponse {
	return CLIResponse{Status: "ok", Data: data}
}

// errorResponse wraps data in a failed response.
func errorResponse(code, message string, data any) CLIResponse {
	return CLIResponse{
		Status: "error",
		Data:   data,
		Error:  &CLIError{Code: code, Message: message},
	}
}

// colorizeState renders a sync state with a semantic color.
func colorizeState(s model.SyncState) string {
	switch s {
	case model.StateSynced:
		return color.New(color.FgHiGreen).Sprint(s)
	case model.StateNew:
		return color.New(color.FgHiBlue).Sprint(s)
	case model.StateModified:
		return color.New(color.FgYellow).Sprint(s)
	case model.StateDeleted:
		return color.New(color.FgRed).Sprint(s)
	default:
		return string(s)
	}
}

// passMark renders the per-scenario status marker.
func passMark(pass bool) string {
	if pass {
		return color.New(color.FgHiGreen).Sprint("✓")
	}
	return color.New(color.FgRed).Sprint("✗")
}
