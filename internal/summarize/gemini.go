package summarize

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"
)

// GeminiGenerator implements Generator on the Gemini API, streaming the
// response chunk by chunk.
type GeminiGenerator struct {
	client *genai.Client
}

func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create inference client: %w", err)
	}
	return &GeminiGenerator{client: client}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, params Params) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		cfg := &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(params.Temperature),
			MaxOutputTokens: params.MaxOutputTokens,
		}

		for resp, err := range g.client.Models.GenerateContentStream(ctx, params.Model, genai.Text(prompt), cfg) {
			if err != nil {
				yield("", err)
				return
			}
			if resp == nil {
				continue
			}
			if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
				yield("", fmt.Errorf("prompt blocked by safety filter: %s", fb.BlockReason))
				return
			}
			for _, cand := range resp.Candidates {
				if cand == nil || cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					if part == nil || part.Text == "" {
						continue
					}
					if !yield(part.Text, nil) {
						return
					}
				}
			}
		}
	}
}
