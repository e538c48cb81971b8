package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/distill-go/distill/internal/render"
)

func TestResolveOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		outputType string
		filename   string
		webhookURL string
		want       outputTarget
		wantErr    string
	}{
		{
			name: "defaults to terminal",
			want: outputTarget{format: render.FormatTerminal},
		},
		{
			name:       "explicit word type gets default filename",
			outputType: "word",
			want:       outputTarget{format: render.FormatDocx, path: "summary.docx"},
		},
		{
			name:     "type inferred from filename",
			filename: "notes.md",
			want:     outputTarget{format: render.FormatMarkdown, path: "notes.md"},
		},
		{
			name:       "explicit type wins over filename extension",
			outputType: "text",
			filename:   "notes.md",
			want:       outputTarget{format: render.FormatText, path: "notes.md"},
		},
		{
			name:       "slack with webhook",
			outputType: "slack",
			webhookURL: "https://hooks.slack.example/T000/B000",
			want:       outputTarget{format: render.FormatTerminal, slack: true},
		},
		{
			name:       "slack without webhook",
			outputType: "slack",
			wantErr:    "webhook_url",
		},
		{
			name:       "slack with filename",
			outputType: "slack",
			filename:   "notes.md",
			webhookURL: "https://hooks.slack.example/T000/B000",
			wantErr:    "not allowed",
		},
		{
			name:       "terminal with filename",
			outputType: "terminal",
			filename:   "notes.md",
			wantErr:    "not allowed",
		},
		{
			name:     "unknown extension",
			filename: "notes.pdf",
			wantErr:  "cannot infer output type",
		},
		{
			name:       "unknown type",
			outputType: "pdf",
			wantErr:    "unknown output type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveOutput(tt.outputType, tt.filename, tt.webhookURL, nil)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
