// Package pipeline chains upload, transcription, extraction, summarization,
// and rendering into one run.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/distill-go/distill/internal/audio"
	"github.com/distill-go/distill/internal/render"
	"github.com/distill-go/distill/internal/storage"
	"github.com/distill-go/distill/internal/summarize"
	"github.com/distill-go/distill/internal/transcribe"
	"github.com/distill-go/distill/internal/transcript"
)

// Uploader pushes a probed audio source into the blob store.
type Uploader interface {
	Upload(ctx context.Context, src audio.Source) (storage.Object, error)
}

// JobController submits a transcription job and waits it out.
type JobController interface {
	Submit(ctx context.Context, obj storage.Object, opts transcribe.JobOptions) (*transcribe.Job, error)
	AwaitCompletion(ctx context.Context, job *transcribe.Job, policy transcribe.PollPolicy) (string, error)
}

// Extractor turns the transcript artifact into the utterance model.
type Extractor interface {
	FetchAndParse(ctx context.Context, uri string) (transcript.Transcript, error)
}

// Summarizer produces summary text from a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, tr transcript.Transcript) (summarize.Result, error)
}

// Renderer persists the summary in the requested format.
type Renderer interface {
	Render(summary summarize.Result, tr *transcript.Transcript, opts render.Options) (render.Artifact, error)
}

// Cleaner removes uploaded objects after a run.
type Cleaner interface {
	Delete(ctx context.Context, uri string) error
}

// Runner wires the pipeline stages together. Each run executes the stages
// strictly in order and stops at the first failure, which is attributed to
// its stage.
type Runner struct {
	Uploader   Uploader
	Jobs       JobController
	Extractor  Extractor
	Summarizer Summarizer
	Renderer   Renderer

	// Cleaner is consulted only when DeleteAfterRun is set.
	Cleaner        Cleaner
	DeleteAfterRun bool

	JobOptions transcribe.JobOptions
	PollPolicy transcribe.PollPolicy
	Render     render.Options

	// OnStage, when set, is called as each stage begins.
	OnStage func(Stage)

	// Now is injected for tests; nil means the real clock.
	Now    func() time.Time
	Logger *zap.Logger
}

// Result carries the rendered artifact together with the summary it was
// rendered from.
type Result struct {
	Artifact render.Artifact
	Summary  summarize.Result
}

// Run takes an audio file through every stage and returns the rendered
// artifact.
func (r *Runner) Run(ctx context.Context, audioPath string) (Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r.enterStage(StageUpload)
	src, err := audio.Probe(audioPath)
	if err != nil {
		return Result{}, &Error{Stage: StageUpload, Err: err}
	}
	obj, err := r.Uploader.Upload(ctx, src)
	if err != nil {
		return Result{}, &Error{Stage: StageUpload, Err: err}
	}
	if r.DeleteAfterRun && r.Cleaner != nil {
		defer r.cleanup(ctx, logger, obj.URI)
	}

	r.enterStage(StageTranscribe)
	job, err := r.Jobs.Submit(ctx, obj, r.JobOptions)
	if err != nil {
		return Result{}, &Error{Stage: StageTranscribe, Err: err}
	}
	outputURI, err := r.Jobs.AwaitCompletion(ctx, job, r.PollPolicy)
	if err != nil {
		return Result{}, &Error{Stage: StageTranscribe, Err: err}
	}

	r.enterStage(StageExtract)
	tr, err := r.Extractor.FetchAndParse(ctx, outputURI)
	if err != nil {
		return Result{}, &Error{Stage: StageExtract, Err: err}
	}

	r.enterStage(StageSummarize)
	summary, err := r.Summarizer.Summarize(ctx, tr)
	if err != nil {
		return Result{}, &Error{Stage: StageSummarize, Err: err}
	}

	r.enterStage(StageRender)
	opts := r.Render
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = r.clock()
	}
	artifact, err := r.Renderer.Render(summary, &tr, opts)
	if err != nil {
		return Result{}, &Error{Stage: StageRender, Err: err}
	}

	logger.Info("pipeline run finished",
		zap.String("audio", audioPath),
		zap.String("format", string(artifact.Format)),
		zap.String("artifact", artifact.Path),
	)
	return Result{Artifact: artifact, Summary: summary}, nil
}

func (r *Runner) enterStage(s Stage) {
	if r.OnStage != nil {
		r.OnStage(s)
	}
}

func (r *Runner) clock() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// cleanup removes the uploaded object. Failures are logged, never fatal; the
// artifact is already produced by the time this runs.
func (r *Runner) cleanup(ctx context.Context, logger *zap.Logger, uri string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := r.Cleaner.Delete(cleanupCtx, uri); err != nil {
		logger.Warn("failed to delete uploaded object", zap.String("uri", uri), zap.Error(err))
		return
	}
	logger.Info("uploaded object deleted", zap.String("uri", uri))
}
