package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/starboard/internal/model"
)

// memoryBucket implements minioAPI over an in-memory object map.
type memoryBucket struct {
	buckets map[string]bool
	objects map[string][]byte

	bucketExistsErr error
	makeBucketErr   error
	putErr          error
	getErr          error
	statErr         error
}

func newMemoryBucket() *memoryBucket {
	return &memoryBucket{
		buckets: map[string]bool{},
		objects: map[string][]byte{},
	}
}

func (m *memoryBucket) BucketExists(_ context.Context, bucket string) (bool, error) {
	return m.buckets[bucket], m.bucketExistsErr
}

func (m *memoryBucket) MakeBucket(_ context.Context, bucket string, _ minioLib.MakeBucketOptions) error {
	if m.makeBucketErr != nil {
		return m.makeBucketErr
	}
	m.buckets[bucket] = true
	return nil
}

func (m *memoryBucket) PutObject(_ context.Context, _ string, key string, reader io.Reader, _ int64, _ minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	if m.putErr != nil {
		return minioLib.UploadInfo{}, m.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return minioLib.UploadInfo{}, err
	}
	m.objects[key] = data
	return minioLib.UploadInfo{Key: key, Size: int64(len(data))}, nil
}

func (m *memoryBucket) GetObject(_ context.Context, _ string, key string, _ minioLib.GetObjectOptions) (io.ReadCloser, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return io.NopCloser(bytes.NewReader(m.objects[key])), nil
}

func (m *memoryBucket) StatObject(_ context.Context, _ string, key string, _ minioLib.StatObjectOptions) (minioLib.ObjectInfo, error) {
	if m.statErr != nil {
		return minioLib.ObjectInfo{}, m.statErr
	}
	data, ok := m.objects[key]
	if !ok {
		return minioLib.ObjectInfo{}, minioLib.ErrorResponse{Code: "NoSuchKey"}
	}
	return minioLib.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func TestNewClientWithAPI(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*memoryBucket)
		wantErr    string
		wantBucket bool
	}{
		{
			name:       "bucket already exists",
			setup:      func(m *memoryBucket) { m.buckets["legacy"] = true },
			wantBucket: true,
		},
		{
			name:       "bucket created",
			setup:      func(*memoryBucket) {},
			wantBucket: true,
		},
		{
			name:    "existence check fails",
			setup:   func(m *memoryBucket) { m.bucketExistsErr = errors.New("boom") },
			wantErr: "failed to ensure bucket exists",
		},
		{
			name:    "create fails",
			setup:   func(m *memoryBucket) { m.makeBucketErr = errors.New("denied") },
			wantErr: "failed to create bucket",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newMemoryBucket()
			tt.setup(api)

			c, err := NewClientWithAPI(context.Background(), api, "legacy")
			if tt.wantErr != "" {
				assert.Nil(t, c)
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "legacy", c.bucket)
			assert.Equal(t, tt.wantBucket, api.buckets["legacy"])
		})
	}
}

func TestClient_UploadDownload(t *testing.T) {
	ctx := context.Background()
	api := newMemoryBucket()
	c := &Client{api: api, bucket: "legacy"}

	require.NoError(t, c.Upload(ctx, "doc.json", bytes.NewReader([]byte(`{"a":1}`))))

	rc, err := c.Download(ctx, "doc.json")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestClient_Upload_Error(t *testing.T) {
	api := newMemoryBucket()
	api.putErr = errors.New("put-fail")
	c := &Client{api: api, bucket: "legacy"}

	err := c.Upload(context.Background(), "doc.json", bytes.NewReader(nil))
	assert.ErrorContains(t, err, "failed to upload object")
}

func TestClient_Download_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing object", func(t *testing.T) {
		c := &Client{api: newMemoryBucket(), bucket: "legacy"}
		rc, err := c.Download(ctx, "doc.json")
		assert.Nil(t, rc)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("get fails", func(t *testing.T) {
		api := newMemoryBucket()
		api.objects["doc.json"] = []byte("{}")
		api.getErr = errors.New("get-fail")
		c := &Client{api: api, bucket: "legacy"}

		rc, err := c.Download(ctx, "doc.json")
		assert.Nil(t, rc)
		assert.ErrorContains(t, err, "failed to get object")
	})
}

func TestClient_Exists(t *testing.T) {
	ctx := context.Background()

	t.Run("exists", func(t *testing.T) {
		api := newMemoryBucket()
		api.objects["k"] = []byte("x")
		c := &Client{api: api, bucket: "b"}
		ok, err := c.Exists(ctx, "k")
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("not found", func(t *testing.T) {
		c := &Client{api: newMemoryBucket(), bucket: "b"}
		ok, err := c.Exists(ctx, "absent")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("other error", func(t *testing.T) {
		api := newMemoryBucket()
		api.statErr = errors.New("stat-fail")
		c := &Client{api: api, bucket: "b"}
		ok, err := c.Exists(ctx, "k")
		assert.False(t, ok)
		assert.ErrorContains(t, err, "failed to stat object")
	})
}
