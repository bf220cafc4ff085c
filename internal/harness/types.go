package harness

import (
	"github.com/roach88/fieldsync/internal/model"
	"github.com/roach88/fieldsync/internal/remote"
	"github.com/roach88/fieldsync/internal/tracking"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step behaved as expected and every assertion
	// held.
	Pass bool

	// Calls are the remote calls issued, in order. Failed calls included.
	Calls []remote.Call

	// Events are the tracking events recorded, in order.
	Events []tracking.Event

	// Projects is the repository's final collection.
	Projects []model.Project

	// Errors contains step and assertion failures. Empty if Pass is true.
	Errors []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Project returns the final stored project with the given id.
func (r *Result) Project(id string) (model.Project, bool) {
	for _, p := range r.Projects {
		if p.ID() == id {
			return p, true
		}
	}
	return model.Project{}, false
}
