package queue

import (
	"context"
	"encoding/json"
)

// Job defines a queue job handler.
type Job interface {
	// Name returns the unique identifier of the job.
	Name() string

	// Type returns the type of message that the job handles.
	Type() string

	// Handle processes the job with the given payload.
	Handle(ctx context.Context, payload json.RawMessage) error
}

type registry map[string]Job

func (r registry) add(job Job) bool {
	if _, exists := r[job.Type()]; exists {
		return false
	}
	r[job.Type()] = job
	return true
}
