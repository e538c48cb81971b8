// Package summarize turns a transcript into summary text via a generative
// inference service.
package summarize

import (
	"context"
	"iter"
)

// Params are the inference parameters for one generation call.
type Params struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// Generator is the narrow capability distill needs from an inference
// service. The returned sequence delivers the response incrementally; the
// summarizer reassembles it, so no caller above it ever observes partial
// chunks. A failed call yields exactly one non-nil error and then stops.
type Generator interface {
	Generate(ctx context.Context, prompt string, params Params) iter.Seq2[string, error]
}
