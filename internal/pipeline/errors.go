package pipeline

import (
	"errors"
	"fmt"

	"github.com/distill-go/distill/internal/storage"
	"github.com/distill-go/distill/internal/summarize"
	"github.com/distill-go/distill/internal/transcribe"
	"github.com/distill-go/distill/internal/transcript"
)

// Stage names the pipeline step a failure is attributed to.
type Stage string

const (
	StageUpload     Stage = "upload"
	StageTranscribe Stage = "transcribe"
	StageExtract    Stage = "extract"
	StageSummarize  Stage = "summarize"
	StageRender     Stage = "render"
)

// Error attributes a failure to the stage that raised it. The cause keeps
// its own classification and is reachable through Unwrap.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retriable reports whether rerunning the whole pipeline could plausibly
// succeed. Transport failures and timeouts are retriable; invalid input,
// schema violations, and content rejections are not.
func (e *Error) Retriable() bool {
	var upErr *storage.UploadError
	if errors.As(e.Err, &upErr) {
		return upErr.Kind == storage.KindTransport
	}
	var subErr *transcribe.SubmitError
	if errors.As(e.Err, &subErr) {
		return subErr.Kind == transcribe.SubmitTransport
	}
	var jobErr *transcribe.JobError
	if errors.As(e.Err, &jobErr) {
		return jobErr.Kind == transcribe.JobTransport || jobErr.Kind == transcribe.JobTimeout
	}
	var exErr *transcript.ExtractError
	if errors.As(e.Err, &exErr) {
		return exErr.Kind == transcript.KindTransport
	}
	var sumErr *summarize.Error
	if errors.As(e.Err, &sumErr) {
		return sumErr.Kind == summarize.KindTransport || sumErr.Kind == summarize.KindRateLimited
	}
	// Render IO failures and anything unclassified are not worth a rerun.
	return false
}
