package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/distill-go/distill/internal/audio"
)

type fakeStore struct {
	putErr   error
	lastKey  string
	lastType string
	lastData []byte
	deleted  []string
}

func (f *fakeStore) Put(_ context.Context, key string, contentType string, r io.Reader) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.lastKey = key
	f.lastType = contentType
	f.lastData = data
	return ObjectURI("bucket", key), nil
}

func (f *fakeStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStore) Delete(_ context.Context, uri string) error {
	f.deleted = append(f.deleted, uri)
	return nil
}

func TestUploadHappyPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "meeting.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFFdata"), 0o644))

	store := &fakeStore{}
	up := NewUploader(store, "bucket", "uploads", nil)

	obj, err := up.Upload(context.Background(), audio.Source{Path: path, ContentType: "audio/wav", Size: 8})
	require.NoError(t, err)

	require.Equal(t, "bucket", obj.Bucket)
	require.True(t, strings.HasPrefix(obj.Key, "uploads/"), "key %q missing prefix", obj.Key)
	require.True(t, strings.HasSuffix(obj.Key, "-meeting.wav"), "key %q missing basename", obj.Key)
	require.Equal(t, ObjectURI("bucket", obj.Key), obj.URI)
	require.Equal(t, "audio/wav", store.lastType)
	require.Equal(t, []byte("RIFFdata"), store.lastData)
}

func TestUploadLocalIOFailure(t *testing.T) {
	t.Parallel()

	up := NewUploader(&fakeStore{}, "bucket", "uploads", nil)
	_, err := up.Upload(context.Background(), audio.Source{Path: filepath.Join(t.TempDir(), "missing.wav")})

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	require.Equal(t, KindLocalIO, uploadErr.Kind)
}

func TestUploadTransportFailure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "meeting.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFFdata"), 0o644))

	store := &fakeStore{putErr: errors.New("connection reset")}
	up := NewUploader(store, "bucket", "uploads", nil)

	_, err := up.Upload(context.Background(), audio.Source{Path: path, ContentType: "audio/wav"})

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	require.Equal(t, KindTransport, uploadErr.Kind)
	require.Contains(t, err.Error(), "connection reset")
}

func TestParseURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{name: "valid", uri: "gs://bucket/uploads/a.wav", wantBucket: "bucket", wantKey: "uploads/a.wav"},
		{name: "wrong scheme", uri: "s3://bucket/a.wav", wantErr: true},
		{name: "no key", uri: "gs://bucket", wantErr: true},
		{name: "empty bucket", uri: "gs:///a.wav", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bucket, key, err := ParseURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantBucket, bucket)
			require.Equal(t, tt.wantKey, key)
		})
	}
}
