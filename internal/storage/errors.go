package storage

import "fmt"

// UploadErrorKind classifies upload failures for the orchestrator.
type UploadErrorKind int

const (
	// KindTransport covers network and service failures talking to the store.
	KindTransport UploadErrorKind = iota
	// KindLocalIO covers failures reading the local source file.
	KindLocalIO
)

func (k UploadErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindLocalIO:
		return "local-io"
	default:
		return "unknown"
	}
}

// UploadError wraps an upload failure with its classification.
type UploadError struct {
	Kind UploadErrorKind
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed (%s): %v", e.Kind, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
