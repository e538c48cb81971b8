// Package transcribe drives asynchronous speech-to-text jobs: submit a job
// referencing uploaded audio, then poll until it reaches a terminal state.
package transcribe

import "context"

// State is the observed lifecycle state of a transcription job.
type State string

const (
	StateQueued     State = "queued"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transition can occur.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// rank orders states along the only legal direction of travel.
func (s State) rank() int {
	switch s {
	case StateQueued:
		return 0
	case StateInProgress:
		return 1
	case StateCompleted, StateFailed:
		return 2
	default:
		return -1
	}
}

// Snapshot is one observation of a remote job's status.
type Snapshot struct {
	State         State
	OutputURI     string
	FailureReason string
}

// JobOptions configure a transcription job at submission time.
type JobOptions struct {
	// Language is the BCP-47 language code of the audio.
	Language string
	// OutputPrefix is the key prefix, inside the audio object's bucket,
	// under which the service writes the transcript document.
	OutputPrefix string
}

// Service is the narrow capability distill needs from a transcription
// backend.
type Service interface {
	// StartJob submits a job for the audio at audioURI and returns an opaque
	// job identifier.
	StartJob(ctx context.Context, audioURI string, opts JobOptions) (string, error)
	// GetJobStatus reports the job's current state. Transport failures are
	// returned as errors; a remote job failure is a Snapshot with
	// StateFailed and a FailureReason.
	GetJobStatus(ctx context.Context, jobID string) (Snapshot, error)
}
