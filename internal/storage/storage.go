// Package storage uploads audio to a blob store and fetches transcription
// results back out of it.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// BlobStore is the narrow capability distill needs from an object store.
type BlobStore interface {
	// Put writes the reader's bytes under key and returns the object URI.
	Put(ctx context.Context, key string, contentType string, r io.Reader) (string, error)
	// Get fetches the object addressed by uri.
	Get(ctx context.Context, uri string) ([]byte, error)
	// Delete removes the object addressed by uri.
	Delete(ctx context.Context, uri string) error
}

// Object is an uploaded audio file, addressable for the rest of the run.
type Object struct {
	URI    string
	Bucket string
	Key    string
}

// ParseURI splits a gs://bucket/key object URI.
func ParseURI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("unsupported object URI %q: expected gs:// scheme", uri)
	}

	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed object URI %q", uri)
	}
	return bucket, key, nil
}

// ObjectURI builds the gs:// URI for a bucket and key.
func ObjectURI(bucket, key string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, key)
}
