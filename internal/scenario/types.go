package scenario

import (
	"fmt"

	"github.com/roach88/markord/internal/snapshot"
)

// TraceEvent is one registration applied during a scenario.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Marker  string `json:"marker"` // entity handle form
	Order   int    `json:"order"`
	Shifted int    `json:"shifted"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expectation held.
	Pass bool `json:"pass"`

	// Session is the session token the scenario ran under.
	Session string `json:"session"`

	// Trace lists registrations in the order they were applied.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	Errors []string `json:"errors,omitempty"`

	// Final is the ordering after the last step.
	Final snapshot.Snapshot `json:"final"`

	// Digest is the order digest of Final.
	Digest string `json:"digest"`
}

// NewResult creates a new passing result.
func NewResult(session string) *Result {
	return &Result{
		Pass:    true,
		Session: session,
		Trace:   []TraceEvent{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}
