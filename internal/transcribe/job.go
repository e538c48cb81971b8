package transcribe

import (
	"fmt"
	"time"
)

// Job tracks one submitted transcription job. It is mutated only through
// Advance, which enforces the legal state machine.
type Job struct {
	ID            string
	State         State
	SubmittedAt   time.Time
	LastPolledAt  time.Time
	OutputURI     string
	FailureReason string
}

// Advance applies one observed snapshot to the job.
//
// Transitions are monotonic: Queued -> InProgress -> {Completed|Failed}.
// A terminal observation is accepted from any non-terminal state, because
// a fast job may complete between polls (or before the first one). Backward
// observations and transitions out of a terminal state are rejected.
func (j *Job) Advance(obs Snapshot, polledAt time.Time) error {
	j.LastPolledAt = polledAt

	if obs.State.rank() < 0 {
		return fmt.Errorf("job %s: unknown state %q", j.ID, obs.State)
	}
	if j.State.Terminal() {
		return fmt.Errorf("job %s: already terminal in state %s", j.ID, j.State)
	}
	if obs.State.rank() < j.State.rank() {
		return fmt.Errorf("job %s: illegal transition %s -> %s", j.ID, j.State, obs.State)
	}

	switch obs.State {
	case StateCompleted:
		if obs.OutputURI == "" {
			return fmt.Errorf("job %s: completed without an output location", j.ID)
		}
		j.State = StateCompleted
		j.OutputURI = obs.OutputURI
	case StateFailed:
		j.State = StateFailed
		j.FailureReason = obs.FailureReason
		if j.FailureReason == "" {
			j.FailureReason = "no failure reason reported"
		}
	default:
		j.State = obs.State
	}

	return nil
}
