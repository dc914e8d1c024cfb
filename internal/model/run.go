package model

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a collection run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunError is one per-record error captured during a run, with enough
// context (state/office/name) to trace the record it belongs to.
type RunError struct {
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

// Stats accumulates the outcome counters and error list for one run.
// Found counts every raw record seen from the provider; Added and Updated
// classify merge outcomes. Records that were found but neither added nor
// updated must have a corresponding entry in Errors.
type Stats struct {
	Found   int64
	Added   int64
	Updated int64
	Errors  []RunError
}

// RecordError appends a per-record error with identifying context and
// returns, letting traversal continue. Context is conventionally
// "state/office/name".
func (s *Stats) RecordError(err error, context string) {
	s.Errors = append(s.Errors, RunError{Message: err.Error(), Context: context})
}

// RecordErrorf appends a formatted per-record error.
func (s *Stats) RecordErrorf(context, format string, args ...any) {
	s.Errors = append(s.Errors, RunError{Message: fmt.Sprintf(format, args...), Context: context})
}

// Run is one row of the collection_runs audit table.
type Run struct {
	ID             int64
	Source         string
	Status         RunStatus
	StartedAt      time.Time
	CompletedAt    *time.Time
	RecordsFound   int64
	RecordsAdded   int64
	RecordsUpdated int64
	DurationMS     *int64
	Errors         []RunError
}
