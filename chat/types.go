package chat

import (
	"fmt"
	"time"
)

// Request is one user question. Zero values select the service defaults.
type Request struct {
	Message     string
	Model       string
	Temperature *float64
}

type FailureKind string

const (
	FailureInvalidRequest FailureKind = "invalid_request"
	FailureCompletion     FailureKind = "completion_failed"
)

// Failure describes why a question could not be answered.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Result is either an answer or a Failure; ProcessingTime is set for both.
type Result struct {
	Reply          string
	Thinking       string
	Language       string
	ProcessingTime time.Duration
	Failure        *Failure
}

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

func invalidRequest(format string, args ...any) *Failure {
	return &Failure{Kind: FailureInvalidRequest, Message: fmt.Sprintf(format, args...)}
}
