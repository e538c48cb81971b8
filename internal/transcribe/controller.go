package transcribe

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/distill-go/distill/internal/storage"
	"github.com/distill-go/distill/pkg/retry"
)

// PollPolicy bounds the waiting behaviour of AwaitCompletion.
//
// Polling runs at a fixed interval: transcription jobs take minutes, so the
// cost of a status call is negligible against the job duration and backoff
// would only add latency.
type PollPolicy struct {
	// Interval is the fixed pause between status polls.
	Interval time.Duration
	// Timeout is the wall-clock bound on total waiting. When it elapses the
	// remote job is left outstanding; it is not cancelled.
	Timeout time.Duration
	// TransportRetries bounds the total attempts a single failing status
	// poll gets before the wait is abandoned. A transient network blip must
	// not abort a multi-minute job wait.
	TransportRetries int
}

// DefaultPollPolicy suits typical meeting-length recordings.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		Interval:         5 * time.Second,
		Timeout:          time.Hour,
		TransportRetries: 3,
	}
}

// Controller submits transcription jobs and drives them to a terminal state.
type Controller struct {
	svc    Service
	logger *zap.Logger

	// Injected for tests; default to the real clock.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewController(svc Service, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		svc:    svc,
		logger: logger,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// Submit starts a transcription job for the uploaded object. The returned
// job starts in the Queued state.
func (c *Controller) Submit(ctx context.Context, obj storage.Object, opts JobOptions) (*Job, error) {
	jobID, err := c.svc.StartJob(ctx, obj.URI, opts)
	if err != nil {
		var submitErr *SubmitError
		if errors.As(err, &submitErr) {
			return nil, err
		}
		return nil, &SubmitError{Kind: classifySubmit(err), Err: err}
	}

	c.logger.Info("transcription job submitted",
		zap.String("job_id", jobID),
		zap.String("audio_uri", obj.URI),
		zap.String("language", opts.Language),
	)

	return &Job{
		ID:          jobID,
		State:       StateQueued,
		SubmittedAt: c.now(),
	}, nil
}

// AwaitCompletion polls the job until it reaches a terminal state and
// returns the transcript location. Each suspension point observes ctx, so a
// cancelled run stops without waiting out the timeout.
func (c *Controller) AwaitCompletion(ctx context.Context, job *Job, policy PollPolicy) (string, error) {
	deadline := c.now().Add(policy.Timeout)

	for {
		snap, err := c.pollOnce(ctx, job.ID, policy.TransportRetries)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", &JobError{Kind: JobTransport, JobID: job.ID, Err: err}
		}

		if err := job.Advance(snap, c.now()); err != nil {
			return "", &JobError{Kind: JobRemoteFailure, JobID: job.ID, Err: err}
		}

		switch job.State {
		case StateCompleted:
			c.logger.Info("transcription job completed",
				zap.String("job_id", job.ID),
				zap.String("output_uri", job.OutputURI),
				zap.Duration("elapsed", c.now().Sub(job.SubmittedAt)),
			)
			return job.OutputURI, nil
		case StateFailed:
			return "", &JobError{Kind: JobRemoteFailure, JobID: job.ID, Reason: job.FailureReason}
		}

		c.logger.Debug("transcription job still running",
			zap.String("job_id", job.ID),
			zap.String("state", string(job.State)),
		)

		if !c.now().Before(deadline) {
			return "", &JobError{Kind: JobTimeout, JobID: job.ID}
		}

		if err := c.sleep(ctx, policy.Interval); err != nil {
			return "", err
		}
	}
}

// pollOnce queries job status, retrying transport failures a bounded number
// of times. Every error from GetJobStatus is transport-class: a remote job
// failure arrives as a StateFailed snapshot, not as an error.
func (c *Controller) pollOnce(ctx context.Context, jobID string, transportRetries int) (Snapshot, error) {
	var snap Snapshot
	err := retry.Do(ctx, transportRetries, func(err error) bool {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}, func(ctx context.Context) error {
		s, err := c.svc.GetJobStatus(ctx, jobID)
		if err != nil {
			c.logger.Warn("status poll failed; will retry", zap.String("job_id", jobID), zap.Error(err))
			return err
		}
		snap = s
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func classifySubmit(err error) SubmitErrorKind {
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.InvalidArgument, codes.NotFound, codes.FailedPrecondition, codes.OutOfRange:
			return SubmitInvalidInput
		}
	}
	return SubmitTransport
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
