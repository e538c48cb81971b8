package transcribe

import "fmt"

// SubmitErrorKind classifies job submission failures.
type SubmitErrorKind int

const (
	SubmitTransport SubmitErrorKind = iota
	SubmitInvalidInput
)

func (k SubmitErrorKind) String() string {
	switch k {
	case SubmitTransport:
		return "transport"
	case SubmitInvalidInput:
		return "invalid-input"
	default:
		return "unknown"
	}
}

// SubmitError wraps a failure to submit a transcription job.
type SubmitError struct {
	Kind SubmitErrorKind
	Err  error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit transcription job (%s): %v", e.Kind, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// JobErrorKind classifies failures while waiting for a job to finish.
type JobErrorKind int

const (
	// JobTransport means polling kept failing even after bounded retries.
	JobTransport JobErrorKind = iota
	// JobRemoteFailure means the service reported the job as failed.
	JobRemoteFailure
	// JobTimeout means the wall-clock wait bound elapsed; the job is left
	// outstanding remotely.
	JobTimeout
)

func (k JobErrorKind) String() string {
	switch k {
	case JobTransport:
		return "transport"
	case JobRemoteFailure:
		return "remote-failure"
	case JobTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// JobError is the terminal error of AwaitCompletion.
type JobError struct {
	Kind   JobErrorKind
	JobID  string
	Reason string
	Err    error
}

func (e *JobError) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("transcription job %s (%s): %s", e.JobID, e.Kind, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("transcription job %s (%s): %v", e.JobID, e.Kind, e.Err)
	default:
		return fmt.Sprintf("transcription job %s (%s)", e.JobID, e.Kind)
	}
}

func (e *JobError) Unwrap() error {
	return e.Err
}
