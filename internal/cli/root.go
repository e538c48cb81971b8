// Package cli wires the distill command line around the pipeline.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/distill-go/distill/internal/config"
	"github.com/distill-go/distill/internal/logging"
	"github.com/distill-go/distill/internal/notify"
	"github.com/distill-go/distill/internal/pipeline"
	"github.com/distill-go/distill/internal/render"
	"github.com/distill-go/distill/internal/storage"
	"github.com/distill-go/distill/internal/summarize"
	"github.com/distill-go/distill/internal/transcribe"
	"github.com/distill-go/distill/internal/transcript"
	"github.com/distill-go/distill/internal/version"
)

type appState struct {
	verbose           bool
	jsonLogs          bool
	noProgress        bool
	configPath        string
	input             string
	outputType        string
	outputFilename    string
	language          string
	deleteObject      bool
	includeTranscript bool

	logger *zap.Logger
	out    io.Writer

	runFn    func(ctx context.Context, cfg *config.Config, target outputTarget) (pipeline.Result, error)
	notifyFn func(ctx context.Context, webhookURL, title, summary string) error
}

func newAppState() *appState {
	app := &appState{
		configPath: "distill.yaml",
		out:        os.Stdout,
	}
	app.runFn = app.runPipeline
	app.notifyFn = func(ctx context.Context, webhookURL, title, summary string) error {
		return notify.NewSlackNotifier(webhookURL, app.log()).Send(ctx, title, summary)
	}
	return app
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(newAppState())
}

func newRootCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "distill",
		Short:         "Summarize an audio recording into a written document",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd.Context())
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindInputFlags(cmd, app)
	bindOutputFlags(cmd, app)

	_ = cmd.MarkFlagRequired("input")

	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.Flags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
}

func bindProgressFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
}

func bindInputFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVarP(&app.input, "input", "i", app.input, "Audio file to summarize")
	cmd.Flags().StringVarP(&app.configPath, "config", "c", app.configPath, "Path to the configuration file")
	cmd.Flags().StringVarP(&app.language, "language", "l", app.language, "BCP-47 language code of the audio, e.g. en-US")
}

func bindOutputFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVarP(&app.outputType, "output-type", "o", app.outputType, "Output type: terminal|text|markdown|word|slack")
	cmd.Flags().StringVar(&app.outputFilename, "output-filename", app.outputFilename, "Output filename; the extension implies the output type")
	cmd.Flags().BoolVarP(&app.deleteObject, "delete-object", "d", app.deleteObject, "Delete the uploaded audio object after the run")
	cmd.Flags().BoolVar(&app.includeTranscript, "include-transcript", app.includeTranscript, "Append the full transcript to the output")
}

func (a *appState) run(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.applyOverrides(cfg)

	target, err := resolveOutput(cfg.Output.Type, cfg.Output.Filename, cfg.Slack.WebhookURL, a.log())
	if err != nil {
		return err
	}

	res, err := a.runFn(ctx, cfg, target)
	if err != nil {
		var perr *pipeline.Error
		if errors.As(err, &perr) && perr.Retriable() {
			a.log().Warn("run failed with a transient error; rerunning may succeed",
				zap.String("stage", string(perr.Stage)))
		}
		return err
	}

	if target.slack {
		if err := a.notifyFn(ctx, cfg.Slack.WebhookURL, filepath.Base(a.input), res.Summary.Text); err != nil {
			a.log().Warn("failed to post summary to Slack; printing it instead", zap.Error(err))
			fmt.Fprintln(a.outWriter(), res.Summary.Text)
			return nil
		}
		fmt.Fprintln(a.outWriter(), "Summary posted to Slack.")
		return nil
	}

	if target.format == render.FormatTerminal {
		fmt.Fprintln(a.outWriter(), string(res.Artifact.Content))
		return nil
	}

	fmt.Fprintf(a.outWriter(), "Summary written to %s\n", res.Artifact.Path)
	return nil
}

// applyOverrides lets command line flags win over the config file.
func (a *appState) applyOverrides(cfg *config.Config) {
	if a.outputType != "" {
		cfg.Output.Type = a.outputType
	}
	if a.outputFilename != "" {
		cfg.Output.Filename = a.outputFilename
	}
	if a.language != "" {
		cfg.Transcribe.Language = a.language
	}
	if a.deleteObject {
		cfg.Storage.DeleteAfterRun = true
	}
}

// runPipeline builds the real cloud-backed pipeline and runs it.
func (a *appState) runPipeline(ctx context.Context, cfg *config.Config, target outputTarget) (pipeline.Result, error) {
	if cfg.Credentials.GeminiAPIKey == "" {
		return pipeline.Result{}, errors.New("GEMINI_API_KEY is not set")
	}

	store, err := storage.NewGCSStore(ctx, cfg.Storage.Bucket)
	if err != nil {
		return pipeline.Result{}, err
	}
	svc, err := transcribe.NewCloudSpeechService(ctx, transcribe.CloudSpeechConfig{
		ProjectID: cfg.Transcribe.ProjectID,
		Location:  cfg.Transcribe.Location,
		Model:     cfg.Transcribe.Model,
	})
	if err != nil {
		return pipeline.Result{}, err
	}
	gen, err := summarize.NewGeminiGenerator(ctx, cfg.Credentials.GeminiAPIKey)
	if err != nil {
		return pipeline.Result{}, err
	}

	progress := newStageProgress(a.progressEnabled())
	defer progress.done()

	runner := &pipeline.Runner{
		Uploader: storage.NewUploader(store, cfg.Storage.Bucket, cfg.Storage.KeyPrefix, a.log()),
		Jobs:     transcribe.NewController(svc, a.log()),
		Extractor: transcript.NewExtractor(store, a.log()),
		Summarizer: summarize.NewSummarizer(
			gen,
			summarize.Params{
				Model:           cfg.Summarize.Model,
				Temperature:     cfg.Summarize.Temperature,
				MaxOutputTokens: cfg.Summarize.MaxOutputTokens,
			},
			cfg.Summarize.PromptTemplate,
			cfg.Summarize.MaxInputChars,
			a.log(),
		),
		Renderer:       render.NewRenderer(a.log()),
		Cleaner:        store,
		DeleteAfterRun: cfg.Storage.DeleteAfterRun,
		JobOptions: transcribe.JobOptions{
			Language:     cfg.Transcribe.Language,
			OutputPrefix: cfg.Transcribe.OutputPrefix,
		},
		PollPolicy: transcribe.PollPolicy{
			Interval:         cfg.PollInterval(),
			Timeout:          cfg.PollTimeout(),
			TransportRetries: cfg.Transcribe.TransportRetries,
		},
		Render: render.Options{
			Format:            target.format,
			Path:              target.path,
			IncludeTranscript: a.includeTranscript,
		},
		OnStage: func(s pipeline.Stage) { progress.enter(stageDescription(s)) },
		Logger:  a.log(),
	}

	res, err := runner.Run(ctx, a.input)
	progress.done()
	return res, err
}

func stageDescription(s pipeline.Stage) string {
	switch s {
	case pipeline.StageUpload:
		return "Uploading audio"
	case pipeline.StageTranscribe:
		return "Transcribing"
	case pipeline.StageExtract:
		return "Fetching transcript"
	case pipeline.StageSummarize:
		return "Summarizing"
	case pipeline.StageRender:
		return "Writing output"
	default:
		return "Working"
	}
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}
