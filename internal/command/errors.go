package command

import (
	"errors"
	"strings"

	"github.com/dharmasatrya/trainsearch/internal/aggregator"
)

// StageError reports that every provider failed during one step of a
// command. Its message is the user-facing reply.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return "All data providers failed while " + e.Stage + ":\n" + strings.Join(e.Notes(), "\n")
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Notes returns the per-provider failure notes, in attempt order.
func (e *StageError) Notes() []string {
	var failed *aggregator.AllProvidersFailedError
	if errors.As(e.Err, &failed) {
		return failed.Notes
	}
	return []string{e.Err.Error()}
}

func stageError(stage string, err error) error {
	var failed *aggregator.AllProvidersFailedError
	if errors.As(err, &failed) {
		return &StageError{Stage: stage, Err: err}
	}
	return err
}
