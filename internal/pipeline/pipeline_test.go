package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/distill-go/distill/internal/audio"
	"github.com/distill-go/distill/internal/render"
	"github.com/distill-go/distill/internal/storage"
	"github.com/distill-go/distill/internal/summarize"
	"github.com/distill-go/distill/internal/transcribe"
	"github.com/distill-go/distill/internal/transcript"
)

type fakeUploader struct {
	obj storage.Object
	err error
}

func (f *fakeUploader) Upload(context.Context, audio.Source) (storage.Object, error) {
	return f.obj, f.err
}

type fakeJobs struct {
	submitErr error
	awaitErr  error
	outputURI string
}

func (f *fakeJobs) Submit(_ context.Context, _ storage.Object, _ transcribe.JobOptions) (*transcribe.Job, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &transcribe.Job{ID: "op-123", State: transcribe.StateQueued}, nil
}

func (f *fakeJobs) AwaitCompletion(_ context.Context, _ *transcribe.Job, _ transcribe.PollPolicy) (string, error) {
	if f.awaitErr != nil {
		return "", f.awaitErr
	}
	return f.outputURI, nil
}

type fakeExtractor struct {
	tr  transcript.Transcript
	err error
	uri string
}

func (f *fakeExtractor) FetchAndParse(_ context.Context, uri string) (transcript.Transcript, error) {
	f.uri = uri
	return f.tr, f.err
}

type fakeSummarizer struct {
	res summarize.Result
	err error
}

func (f *fakeSummarizer) Summarize(context.Context, transcript.Transcript) (summarize.Result, error) {
	return f.res, f.err
}

type fakeCleaner struct {
	deleted []string
	err     error
}

func (f *fakeCleaner) Delete(_ context.Context, uri string) error {
	f.deleted = append(f.deleted, uri)
	return f.err
}

func writeAudioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "standup.wav")
	data := append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 32)...)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func meetingTranscript() transcript.Transcript {
	return transcript.Transcript{Utterances: []transcript.Utterance{
		{Speaker: "spk_0", Text: "Roadmap first."},
		{Speaker: "spk_1", Text: "Q3 ships the importer."},
		{Speaker: "spk_0", Text: "Agreed, importer it is."},
	}}
}

func healthyRunner(t *testing.T, outDir string) (*Runner, *fakeExtractor, *fakeCleaner) {
	t.Helper()

	extractor := &fakeExtractor{tr: meetingTranscript()}
	cleaner := &fakeCleaner{}
	return &Runner{
		Uploader:   &fakeUploader{obj: storage.Object{URI: "gs://uploads/standup.wav", Bucket: "uploads", Key: "standup.wav"}},
		Jobs:       &fakeJobs{outputURI: "gs://transcripts/standup.json"},
		Extractor:  extractor,
		Summarizer: &fakeSummarizer{res: summarize.Result{Text: "Team discussed Q3 roadmap."}},
		Renderer:   render.NewRenderer(nil),
		Cleaner:    cleaner,
		Render: render.Options{
			Format:            render.FormatDocx,
			Path:              filepath.Join(outDir, "summary.docx"),
			IncludeTranscript: true,
		},
		Now: func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	}, extractor, cleaner
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	runner, extractor, cleaner := healthyRunner(t, outDir)

	var stages []Stage
	runner.OnStage = func(s Stage) { stages = append(stages, s) }

	res, err := runner.Run(context.Background(), writeAudioFixture(t))
	require.NoError(t, err)

	require.Equal(t, []Stage{StageUpload, StageTranscribe, StageExtract, StageSummarize, StageRender}, stages)
	require.Equal(t, "gs://transcripts/standup.json", extractor.uri)
	require.Equal(t, "Team discussed Q3 roadmap.", res.Summary.Text)
	require.Equal(t, render.FormatDocx, res.Artifact.Format)
	require.FileExists(t, res.Artifact.Path)
	require.Equal(t, []byte("PK"), res.Artifact.Content[:2])
	require.Empty(t, cleaner.deleted)
}

func TestRunDeleteAfterRun(t *testing.T) {
	t.Parallel()

	runner, _, cleaner := healthyRunner(t, t.TempDir())
	runner.DeleteAfterRun = true

	_, err := runner.Run(context.Background(), writeAudioFixture(t))
	require.NoError(t, err)
	require.Equal(t, []string{"gs://uploads/standup.wav"}, cleaner.deleted)
}

func TestRunDeleteFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	runner, _, cleaner := healthyRunner(t, t.TempDir())
	runner.DeleteAfterRun = true
	cleaner.err = errors.New("object vanished")

	_, err := runner.Run(context.Background(), writeAudioFixture(t))
	require.NoError(t, err)
	require.Len(t, cleaner.deleted, 1)
}

func TestRunMissingAudioIsUploadStage(t *testing.T) {
	t.Parallel()

	runner, _, _ := healthyRunner(t, t.TempDir())

	_, err := runner.Run(context.Background(), filepath.Join(t.TempDir(), "nope.wav"))
	var perr *Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, StageUpload, perr.Stage)
}

func TestRunStageAttribution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		mutate        func(*Runner)
		wantStage     Stage
		wantRetriable bool
	}{
		{
			name: "upload transport",
			mutate: func(r *Runner) {
				r.Uploader = &fakeUploader{err: &storage.UploadError{Kind: storage.KindTransport, Err: errors.New("conn reset")}}
			},
			wantStage:     StageUpload,
			wantRetriable: true,
		},
		{
			name: "submit invalid input",
			mutate: func(r *Runner) {
				r.Jobs = &fakeJobs{submitErr: &transcribe.SubmitError{Kind: transcribe.SubmitInvalidInput, Err: errors.New("bad encoding")}}
			},
			wantStage:     StageTranscribe,
			wantRetriable: false,
		},
		{
			name: "job timeout",
			mutate: func(r *Runner) {
				r.Jobs = &fakeJobs{awaitErr: &transcribe.JobError{Kind: transcribe.JobTimeout, JobID: "op-123"}}
			},
			wantStage:     StageTranscribe,
			wantRetriable: true,
		},
		{
			name: "remote job failure",
			mutate: func(r *Runner) {
				r.Jobs = &fakeJobs{awaitErr: &transcribe.JobError{Kind: transcribe.JobRemoteFailure, JobID: "op-123", Reason: "unsupported codec"}}
			},
			wantStage:     StageTranscribe,
			wantRetriable: false,
		},
		{
			name: "extract schema",
			mutate: func(r *Runner) {
				r.Extractor = &fakeExtractor{err: &transcript.ExtractError{Kind: transcript.KindSchema, Err: errors.New("not json")}}
			},
			wantStage:     StageExtract,
			wantRetriable: false,
		},
		{
			name: "summarize rate limited",
			mutate: func(r *Runner) {
				r.Summarizer = &fakeSummarizer{err: &summarize.Error{Kind: summarize.KindRateLimited, Err: errors.New("429")}}
			},
			wantStage:     StageSummarize,
			wantRetriable: true,
		},
		{
			name: "summarize content rejected",
			mutate: func(r *Runner) {
				r.Summarizer = &fakeSummarizer{err: &summarize.Error{Kind: summarize.KindContentRejected, Err: errors.New("blocked")}}
			},
			wantStage:     StageSummarize,
			wantRetriable: false,
		},
		{
			name: "render io",
			mutate: func(r *Runner) {
				r.Render.Path = filepath.Join(t.TempDir(), "missing", "out.docx")
			},
			wantStage:     StageRender,
			wantRetriable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner, _, _ := healthyRunner(t, t.TempDir())
			tt.mutate(runner)

			_, err := runner.Run(context.Background(), writeAudioFixture(t))
			var perr *Error
			require.ErrorAs(t, err, &perr)
			require.Equal(t, tt.wantStage, perr.Stage)
			require.Equal(t, tt.wantRetriable, perr.Retriable())
		})
	}
}
