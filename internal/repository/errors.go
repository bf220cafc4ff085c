package repository

import (
	"errors"
	"fmt"
)

// UploadError reports the remote call that aborted an upload walk.
//
// Err is the cause returned by the remote client, or the context error if
// the upload was cancelled. Local state is untouched when an UploadError is
// returned.
type UploadError struct {
	// ProjectID identifies the project being uploaded.
	ProjectID string

	// Operation is the remote operation that failed (remote.Op* names).
	Operation string

	// EntityID identifies the entity the failed call was about.
	EntityID string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *UploadError) Error() string {
	if e.EntityID != "" {
		return fmt.Sprintf("upload %s: %s %s: %v", e.ProjectID, e.Operation, e.EntityID, e.Err)
	}
	return fmt.Sprintf("upload %s: %s: %v", e.ProjectID, e.Operation, e.Err)
}

// Unwrap returns the underlying cause.
func (e *UploadError) Unwrap() error {
	return e.Err
}

// IsUploadError returns true if err is or wraps an *UploadError.
func IsUploadError(err error) bool {
	var ue *UploadError
	return errors.As(err, &ue)
}

// opWait names the pseudo-operation of waiting for a concurrent upload of
// the same project to finish.
const opWait = "wait"
