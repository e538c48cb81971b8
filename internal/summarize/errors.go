package summarize

import (
	"fmt"
	"strings"
)

// ErrorKind classifies summarization failures so the orchestrator can tell
// retriable conditions from definitive rejections.
type ErrorKind int

const (
	KindTransport ErrorKind = iota
	KindRateLimited
	KindContentRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRateLimited:
		return "rate-limited"
	case KindContentRejected:
		return "content-rejected"
	default:
		return "unknown"
	}
}

// Error wraps a failed inference call with its classification.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("summarize (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify maps a raw inference error onto the taxonomy. The service does
// not expose structured error codes through its streaming surface, so this
// matches the markers it is known to emit.
func classify(err error) ErrorKind {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "resource_exhausted"),
		strings.Contains(msg, "rate limit"):
		return KindRateLimited
	case strings.Contains(msg, "safety"),
		strings.Contains(msg, "blocked"),
		strings.Contains(msg, "prohibited_content"):
		return KindContentRejected
	default:
		return KindTransport
	}
}
