package cli

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/distill-go/distill/internal/render"
)

// outputTarget is the resolved destination of a run: a render format plus,
// for file formats, the path to write, plus the Slack flag.
type outputTarget struct {
	format render.Format
	path   string
	slack  bool
}

// resolveOutput merges the output type and filename into one target.
// Precedence: an explicit type wins, then the filename extension, then
// terminal output.
func resolveOutput(outputType, filename, webhookURL string, logger *zap.Logger) (outputTarget, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	outputType = strings.ToLower(strings.TrimSpace(outputType))
	filename = strings.TrimSpace(filename)

	if outputType == "slack" {
		if filename != "" {
			return outputTarget{}, fmt.Errorf("output filename is not allowed with output type slack")
		}
		if strings.TrimSpace(webhookURL) == "" {
			return outputTarget{}, fmt.Errorf("output type slack requires slack.webhook_url in the config")
		}
		return outputTarget{format: render.FormatTerminal, slack: true}, nil
	}

	if outputType == "" {
		if filename == "" {
			return outputTarget{format: render.FormatTerminal}, nil
		}
		format, ok := render.FormatFromFilename(filename)
		if !ok {
			return outputTarget{}, fmt.Errorf("cannot infer output type from filename %q; pass --output-type", filename)
		}
		return outputTarget{format: format, path: filename}, nil
	}

	format, err := render.ParseFormat(outputType)
	if err != nil {
		return outputTarget{}, err
	}

	if format == render.FormatTerminal {
		if filename != "" {
			return outputTarget{}, fmt.Errorf("output filename is not allowed with terminal output")
		}
		return outputTarget{format: render.FormatTerminal}, nil
	}

	if filename == "" {
		return outputTarget{format: format, path: format.DefaultFilename()}, nil
	}

	if inferred, ok := render.FormatFromFilename(filename); ok && inferred != format {
		logger.Warn("output filename extension does not match output type; keeping the requested type",
			zap.String("filename", filename),
			zap.String("output_type", string(format)),
		)
	}
	return outputTarget{format: format, path: filename}, nil
}
