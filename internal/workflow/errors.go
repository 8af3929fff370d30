package workflow

import "fmt"

// The orchestrator distinguishes three error classes. InputError and
// UpstreamError are caught at the stage boundary and become per-stage failure
// results. SchedulerError is the only class that aborts a whole run.

type InputError struct {
	Field string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("missing required input: %s", e.Field)
}

type UpstreamError struct {
	Collaborator string
	Err          error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s collaborator failed: %v", e.Collaborator, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

type SchedulerError struct {
	Op  string
	Err error
}

func (e *SchedulerError) Error() string {
	return fmt.Sprintf("scheduler %s: %v", e.Op, e.Err)
}

func (e *SchedulerError) Unwrap() error {
	return e.Err
}
