// Package transcript models the spoken content extracted from a completed
// transcription job.
package transcript

import "strings"

// Utterance is one contiguous spoken segment, optionally attributed to a
// speaker.
type Utterance struct {
	Speaker string
	Text    string
}

// Transcript is the ordered utterance sequence of one recording. Immutable
// once built.
type Transcript struct {
	Utterances []Utterance
}

// Empty reports whether no speech was transcribed.
func (t Transcript) Empty() bool {
	return len(t.Utterances) == 0
}

// PlainText concatenates the utterances into a single document, prefixing
// speaker labels where present.
func (t Transcript) PlainText() string {
	var b strings.Builder
	for i, u := range t.Utterances {
		if i > 0 {
			b.WriteString("\n")
		}
		if u.Speaker != "" {
			b.WriteString(u.Speaker)
			b.WriteString(": ")
		}
		b.WriteString(u.Text)
	}
	return b.String()
}
