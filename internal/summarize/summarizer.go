package summarize

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/distill-go/distill/internal/transcript"
)

// NoSpeechText is the fixed summary for recordings with no transcribed
// speech. The inference service is not invoked for these.
const NoSpeechText = "No speech detected."

// transcriptPlaceholder marks where the transcript goes in a prompt template.
const transcriptPlaceholder = "{{transcript}}"

// DefaultTemplate asks for the sections the rest of the toolchain expects
// (summary, key points, action items).
const DefaultTemplate = `The following is a transcript of a recorded meeting. Write a concise summary of the discussion. Then add a "Key Points" section with the main points as bullets, and an "Action Items" section listing agreed follow-ups with their owners where mentioned. Use plain text headings exactly as named above.

Transcript:
` + transcriptPlaceholder

// Result is the outcome of one summarization.
type Result struct {
	Text string
	// Truncated is set when the transcript exceeded the input budget and
	// was cut before prompting.
	Truncated bool
}

// Summarizer builds the prompt, invokes the generator once per run, and
// reassembles the incrementally delivered response.
type Summarizer struct {
	gen           Generator
	params        Params
	template      string
	maxInputChars int
	logger        *zap.Logger
}

func NewSummarizer(gen Generator, params Params, template string, maxInputChars int, logger *zap.Logger) *Summarizer {
	if template == "" {
		template = DefaultTemplate
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{
		gen:           gen,
		params:        params,
		template:      template,
		maxInputChars: maxInputChars,
		logger:        logger,
	}
}

// Summarize produces summary text for the transcript. Empty transcripts
// short-circuit to NoSpeechText without a remote call.
func (s *Summarizer) Summarize(ctx context.Context, tr transcript.Transcript) (Result, error) {
	if tr.Empty() {
		s.logger.Info("transcript is empty; skipping inference call")
		return Result{Text: NoSpeechText}, nil
	}

	prompt, truncated := s.BuildPrompt(tr)
	if truncated {
		s.logger.Warn("transcript exceeds input budget; tail truncated",
			zap.Int("max_input_chars", s.maxInputChars))
	}

	var b strings.Builder
	for chunk, err := range s.gen.Generate(ctx, prompt, s.params) {
		if err != nil {
			return Result{}, &Error{Kind: classify(err), Err: err}
		}
		b.WriteString(chunk)
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return Result{}, &Error{Kind: KindTransport, Err: errors.New("inference service returned an empty response")}
	}

	s.logger.Info("summary generated",
		zap.Int("summary_chars", len(text)),
		zap.Bool("truncated_input", truncated),
	)
	return Result{Text: text, Truncated: truncated}, nil
}

// BuildPrompt substitutes the transcript into the template, deterministically
// dropping the transcript's tail beyond the input budget. The head is kept
// because meetings normally open with the agenda and context that a summary
// needs most.
func (s *Summarizer) BuildPrompt(tr transcript.Transcript) (prompt string, truncated bool) {
	text := tr.PlainText()
	if s.maxInputChars > 0 {
		runes := []rune(text)
		if len(runes) > s.maxInputChars {
			text = string(runes[:s.maxInputChars])
			truncated = true
		}
	}
	return strings.ReplaceAll(s.template, transcriptPlaceholder, text), truncated
}
