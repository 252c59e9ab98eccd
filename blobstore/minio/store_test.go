package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/hupe1980/tpctrack/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStore_Integration requires a running MinIO instance at
// MINIO_ENDPOINT (default localhost:9000).
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	bucket := "test-tpctrack"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "runs/a/event.blk", data))

	blob, err := store.Open(ctx, "runs/a/event.blk")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	rc, err := blob.ReadRange(ctx, 6, 5)
	require.NoError(t, err)
	part, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "minio", string(part))
	require.NoError(t, blob.Close())

	got, err := blobstore.ReadAll(ctx, store, "runs/a/event.blk")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "runs/")
	require.NoError(t, err)
	assert.Contains(t, names, "runs/a/event.blk")

	require.NoError(t, store.Delete(ctx, "runs/a/event.blk"))
	require.NoError(t, store.Delete(ctx, "runs/a/event.blk"))
	_, err = store.Open(ctx, "runs/a/event.blk")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
