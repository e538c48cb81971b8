package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/distill-go/distill/internal/audio"
)

// Uploader pushes the local audio file into the blob store. It does not
// retry; retry policy belongs to the orchestrator.
type Uploader struct {
	store     BlobStore
	bucket    string
	keyPrefix string
	logger    *zap.Logger
}

func NewUploader(store BlobStore, bucket, keyPrefix string, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{store: store, bucket: bucket, keyPrefix: keyPrefix, logger: logger}
}

// Upload streams the audio source into the store under a collision-free key
// and returns the resulting object.
func (u *Uploader) Upload(ctx context.Context, src audio.Source) (Object, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return Object{}, &UploadError{Kind: KindLocalIO, Err: fmt.Errorf("open audio file: %w", err)}
	}
	defer f.Close()

	key := path.Join(u.keyPrefix, uuid.NewString()+"-"+filepath.Base(src.Path))

	u.logger.Info("uploading audio",
		zap.String("path", src.Path),
		zap.String("content_type", src.ContentType),
		zap.Int64("size_bytes", src.Size),
		zap.String("key", key),
	)

	uri, err := u.store.Put(ctx, key, src.ContentType, f)
	if err != nil {
		return Object{}, &UploadError{Kind: KindTransport, Err: err}
	}

	return Object{URI: uri, Bucket: u.bucket, Key: key}, nil
}
