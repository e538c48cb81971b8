// Package audio describes the local audio file a pipeline run starts from.
package audio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// Source is an immutable description of the input audio file.
type Source struct {
	Path        string
	ContentType string
	Size        int64
}

// Probe validates the audio file and sniffs its content type from the file
// bytes. Extension-based guessing is not enough: transcription backends
// reject objects whose declared type does not match their content.
func Probe(path string) (Source, error) {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return Source{}, fmt.Errorf("audio file not found: %w", err)
	}
	if info.IsDir() {
		return Source{}, fmt.Errorf("audio path %s is a directory", path)
	}
	if info.Size() == 0 {
		return Source{}, fmt.Errorf("audio file %s is empty", path)
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("detect content type: %w", err)
	}

	return Source{
		Path:        path,
		ContentType: mime.String(),
		Size:        info.Size(),
	}, nil
}
