package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/distill-go/distill/internal/storage"
)

// ExtractErrorKind classifies transcript extraction failures.
type ExtractErrorKind int

const (
	KindTransport ExtractErrorKind = iota
	KindSchema
)

func (k ExtractErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindSchema:
		return "schema"
	default:
		return "unknown"
	}
}

// ExtractError wraps a failure to fetch or parse the transcript document.
type ExtractError struct {
	Kind ExtractErrorKind
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract transcript (%s): %v", e.Kind, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// resultDocument mirrors the JSON the transcription backend writes: a list
// of recognition results, each with ranked alternatives and optional
// word-level speaker labels. Timing and confidence metadata is dropped.
type resultDocument struct {
	Results []struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
			Words      []struct {
				Word         string `json:"word"`
				SpeakerLabel string `json:"speakerLabel"`
			} `json:"words"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Extractor fetches the transcript artifact and reduces it to the ordered
// utterance model.
type Extractor struct {
	store  storage.BlobStore
	logger *zap.Logger
}

func NewExtractor(store storage.BlobStore, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{store: store, logger: logger}
}

// FetchAndParse loads the transcript document at uri. Silent audio produces
// an empty but valid Transcript, not an error.
func (e *Extractor) FetchAndParse(ctx context.Context, uri string) (Transcript, error) {
	data, err := e.store.Get(ctx, uri)
	if err != nil {
		return Transcript{}, &ExtractError{Kind: KindTransport, Err: err}
	}

	t, err := Parse(data)
	if err != nil {
		return Transcript{}, err
	}

	e.logger.Info("transcript extracted",
		zap.String("uri", uri),
		zap.Int("utterances", len(t.Utterances)),
	)
	return t, nil
}

// Parse decodes a transcript result document.
func Parse(data []byte) (Transcript, error) {
	var doc resultDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Transcript{}, &ExtractError{Kind: KindSchema, Err: err}
	}

	var utterances []Utterance
	for _, result := range doc.Results {
		if len(result.Alternatives) == 0 {
			continue
		}

		// Alternatives are ranked; only the best one matters here.
		best := result.Alternatives[0]
		text := strings.TrimSpace(best.Transcript)
		if text == "" {
			continue
		}

		var speaker string
		if len(best.Words) > 0 && best.Words[0].SpeakerLabel != "" {
			speaker = "spk_" + best.Words[0].SpeakerLabel
		}

		utterances = append(utterances, Utterance{Speaker: speaker, Text: text})
	}

	return Transcript{Utterances: utterances}, nil
}
