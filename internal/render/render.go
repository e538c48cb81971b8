// Package render formats a summary (and optionally the transcript) into the
// requested output container.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/distill-go/distill/internal/summarize"
	"github.com/distill-go/distill/internal/transcript"
)

// Format is the output container for a pipeline run.
type Format string

const (
	FormatTerminal Format = "terminal"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatDocx     Format = "docx"
)

// ParseFormat resolves a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "terminal":
		return FormatTerminal, nil
	case "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "docx", "word":
		return FormatDocx, nil
	default:
		return "", fmt.Errorf("unknown output type %q (terminal|text|markdown|word)", s)
	}
}

// FormatFromFilename infers the output format from a filename extension.
func FormatFromFilename(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return FormatText, true
	case ".md":
		return FormatMarkdown, true
	case ".doc", ".docx":
		return FormatDocx, true
	default:
		return "", false
	}
}

// DefaultFilename is used when the caller picked a file format but no name.
func (f Format) DefaultFilename() string {
	switch f {
	case FormatText:
		return "summary.txt"
	case FormatMarkdown:
		return "summary.md"
	case FormatDocx:
		return "summary.docx"
	default:
		return ""
	}
}

// Options control one render call. GeneratedAt is injected so rendering
// stays deterministic for identical inputs.
type Options struct {
	Format            Format
	Path              string
	IncludeTranscript bool
	GeneratedAt       time.Time
}

// Artifact is the persisted output of a pipeline run. Terminal output has
// no path.
type Artifact struct {
	Format  Format
	Path    string
	Content []byte
}

// RenderErrorKind classifies render failures.
type RenderErrorKind int

const (
	KindIO RenderErrorKind = iota
)

func (k RenderErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// RenderError wraps a failure to produce or persist the artifact.
type RenderError struct {
	Kind RenderErrorKind
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render output (%s): %v", e.Kind, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

const truncationNote = "Note: the transcript was truncated before summarization."

// Renderer writes summary artifacts. Same inputs, including GeneratedAt,
// produce byte-identical content.
type Renderer struct {
	logger *zap.Logger
}

func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{logger: logger}
}

// Render produces the artifact for the requested format. A nil tr omits the
// transcript section regardless of Options.IncludeTranscript.
func (r *Renderer) Render(summary summarize.Result, tr *transcript.Transcript, opts Options) (Artifact, error) {
	if tr == nil {
		opts.IncludeTranscript = false
	}

	switch opts.Format {
	case FormatTerminal:
		return Artifact{Format: FormatTerminal, Content: []byte(renderText(summary, tr, opts))}, nil
	case FormatText, FormatMarkdown:
		var content string
		if opts.Format == FormatText {
			content = renderText(summary, tr, opts)
		} else {
			content = renderMarkdown(summary, tr, opts)
		}
		if err := os.WriteFile(opts.Path, []byte(content), 0o644); err != nil {
			return Artifact{}, &RenderError{Kind: KindIO, Err: err}
		}
		r.logger.Info("artifact written", zap.String("path", opts.Path), zap.String("format", string(opts.Format)))
		return Artifact{Format: opts.Format, Path: opts.Path, Content: []byte(content)}, nil
	case FormatDocx:
		content, err := renderDocx(summary, tr, opts)
		if err != nil {
			return Artifact{}, err
		}
		r.logger.Info("artifact written", zap.String("path", opts.Path), zap.String("format", string(opts.Format)))
		return Artifact{Format: FormatDocx, Path: opts.Path, Content: content}, nil
	default:
		return Artifact{}, &RenderError{Kind: KindIO, Err: fmt.Errorf("unsupported output format %q", opts.Format)}
	}
}

func renderText(summary summarize.Result, tr *transcript.Transcript, opts Options) string {
	var b strings.Builder
	b.WriteString("Summary\n\n")
	b.WriteString(strings.TrimSpace(summary.Text))
	b.WriteString("\n")
	if summary.Truncated {
		b.WriteString("\n" + truncationNote + "\n")
	}
	if opts.IncludeTranscript {
		b.WriteString("\nTranscript\n\n")
		b.WriteString(tr.PlainText())
		b.WriteString("\n")
	}
	b.WriteString("\nGenerated " + opts.GeneratedAt.UTC().Format("2006-01-02 15:04") + " UTC\n")
	return b.String()
}

func renderMarkdown(summary summarize.Result, tr *transcript.Transcript, opts Options) string {
	var b strings.Builder
	b.WriteString("# Summary\n\n")
	b.WriteString("_Generated " + opts.GeneratedAt.UTC().Format("2006-01-02 15:04") + " UTC_\n\n")
	b.WriteString(strings.TrimSpace(summary.Text))
	b.WriteString("\n")
	if summary.Truncated {
		b.WriteString("\n_" + truncationNote + "_\n")
	}
	if opts.IncludeTranscript {
		b.WriteString("\n# Transcript\n\n")
		for _, u := range tr.Utterances {
			if u.Speaker != "" {
				b.WriteString("**" + u.Speaker + "**: ")
			}
			b.WriteString(u.Text)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}
