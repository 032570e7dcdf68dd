package submit

import (
	"context"

	"github.com/pavelanni/submitter/internal/model"
)

// Dispatcher sends a built submission to the course service. It never retries.
type Dispatcher struct {
	source DataSource
}

func NewDispatcher(source DataSource) *Dispatcher {
	return &Dispatcher{source: source}
}

// Dispatch returns the tracking URL of the accepted submission.
func (d *Dispatcher) Dispatch(ctx context.Context, submission model.Submission, auth model.Authentication) (string, error) {
	url, err := d.source.Submit(ctx, submission, auth)
	if err != nil {
		return "", &NetworkError{Op: "submit", Err: err}
	}
	return url, nil
}
