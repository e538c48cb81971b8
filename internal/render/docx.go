package render

import (
	"fmt"
	"os"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/distill-go/distill/internal/summarize"
	"github.com/distill-go/distill/internal/transcript"
)

const (
	docFont        = "Calibri"
	docFontSize    = 11
	docHeadingSize = 16
)

// renderDocx builds the Word document and persists it at opts.Path,
// returning the written bytes.
func renderDocx(summary summarize.Result, tr *transcript.Transcript, opts Options) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, &RenderError{Kind: KindIO, Err: fmt.Errorf("create document: %w", err)}
	}

	addHeading(doc, "Summary")
	addBody(doc, "Generated "+opts.GeneratedAt.UTC().Format("2006-01-02 15:04")+" UTC")
	doc.AddParagraph("")
	for _, line := range splitLines(summary.Text) {
		addBody(doc, line)
	}
	if summary.Truncated {
		doc.AddParagraph("")
		addBody(doc, truncationNote)
	}

	if opts.IncludeTranscript {
		doc.AddParagraph("")
		addHeading(doc, "Transcript")
		for _, u := range tr.Utterances {
			line := u.Text
			if u.Speaker != "" {
				line = u.Speaker + ": " + u.Text
			}
			addBody(doc, line)
		}
	}

	if err := doc.SaveTo(opts.Path); err != nil {
		return nil, &RenderError{Kind: KindIO, Err: fmt.Errorf("write document: %w", err)}
	}

	content, err := os.ReadFile(opts.Path)
	if err != nil {
		return nil, &RenderError{Kind: KindIO, Err: err}
	}
	return content, nil
}

func addHeading(doc *docx.RootDoc, text string) {
	p := doc.AddParagraph("")
	p.AddText(text).Font(docFont).Size(docHeadingSize).Color("000000").Bold(true)
}

func addBody(doc *docx.RootDoc, text string) {
	p := doc.AddParagraph("")
	p.AddText(text).Font(docFont).Size(docFontSize).Color("000000")
}

func splitLines(text string) []string {
	var lines []string
	current := ""
	for _, r := range text {
		if r == '\n' {
			lines = append(lines, current)
			current = ""
			continue
		}
		if r == '\r' {
			continue
		}
		current += string(r)
	}
	lines = append(lines, current)
	return lines
}
