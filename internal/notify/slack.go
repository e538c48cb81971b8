// Package notify delivers finished summaries to external channels.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sections is a summary split along the headings the prompt asks for.
// Text that does not match a known heading stays in Summary.
type Sections struct {
	Summary     string
	KeyPoints   string
	ActionItems string
}

// SplitSections scans the summary line by line and assigns content to the
// section of the most recently seen heading.
func SplitSections(summary string) Sections {
	var s Sections
	current := &s.Summary

	for _, line := range strings.Split(summary, "\n") {
		switch normalizeHeading(line) {
		case "summary":
			current = &s.Summary
			continue
		case "key points":
			current = &s.KeyPoints
			continue
		case "action items":
			current = &s.ActionItems
			continue
		}
		if *current != "" {
			*current += "\n"
		}
		*current += line
	}

	s.Summary = strings.TrimSpace(s.Summary)
	s.KeyPoints = strings.TrimSpace(s.KeyPoints)
	s.ActionItems = strings.TrimSpace(s.ActionItems)
	return s
}

// normalizeHeading reduces a line to a comparable heading name, tolerating
// markdown markers the model sometimes adds despite the prompt.
func normalizeHeading(line string) string {
	h := strings.TrimSpace(line)
	h = strings.TrimLeft(h, "#")
	h = strings.Trim(h, "* ")
	h = strings.TrimSuffix(h, ":")
	return strings.ToLower(strings.TrimSpace(h))
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

// SlackNotifier posts summaries to an incoming webhook.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
	logger     *zap.Logger
}

func NewSlackNotifier(webhookURL string, logger *zap.Logger) *SlackNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Send splits the summary into sections and posts them as one message.
func (n *SlackNotifier) Send(ctx context.Context, title, summary string) error {
	payload := buildPayload(title, SplitSections(summary))
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook rejected message: %s", resp.Status)
	}

	n.logger.Info("summary posted to webhook")
	return nil
}

func buildPayload(title string, s Sections) slackPayload {
	p := slackPayload{
		Blocks: []slackBlock{
			{Type: "header", Text: &slackText{Type: "plain_text", Text: title}},
		},
	}

	add := func(heading, body string) {
		if body == "" {
			return
		}
		p.Blocks = append(p.Blocks,
			slackBlock{Type: "divider"},
			slackBlock{Type: "section", Text: &slackText{Type: "mrkdwn", Text: "*" + heading + "*\n" + body}},
		)
	}

	add("Summary", s.Summary)
	add("Key Points", s.KeyPoints)
	add("Action Items", s.ActionItems)
	return p
}
