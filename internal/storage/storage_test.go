package storage

import (
	"alcyxob/fittracker/internal/config"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "", endpointURL(config.S3Config{}))
	assert.Equal(t, "http://localhost:9000", endpointURL(config.S3Config{Endpoint: "localhost:9000"}))
	assert.Equal(t, "https://minio.local", endpointURL(config.S3Config{Endpoint: "minio.local", UseSSL: true}))
	assert.Equal(t, "http://x:1", endpointURL(config.S3Config{Endpoint: "http://x:1", UseSSL: true}))
}

func TestNewS3Storage_PresignsWithoutNetwork(t *testing.T) {
	ctx := context.Background()
	s, err := NewS3Storage(ctx, config.S3Config{
		Endpoint:        "localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "photos",
	})
	require.NoError(t, err)

	url, err := s.GeneratePresignedDownloadURL(ctx, "users/1/photo.jpg", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/photos/users/1/photo.jpg?"), url)
	assert.Contains(t, url, "X-Amz-Expires=60")
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage("http://photos.test")

	_, err := m.GeneratePresignedDownloadURL(ctx, "k", 0)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	require.NoError(t, m.PutObject(ctx, "k", "image/png", strings.NewReader("png"), 3))
	obj, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, []byte("png"), obj.Data)

	url, err := m.GeneratePresignedDownloadURL(ctx, "k", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://photos.test/k?expires=900", url)

	require.NoError(t, m.DeleteObject(ctx, "k"))
	assert.Zero(t, m.Len())
}
