package s3

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/tpctrack/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDDBCommitStore(ddb *mockDDBClient, baseURI string) *DDBCommitStore {
	return NewDDBCommitStore(blobstore.NewMemoryStore(), ddb, "tpctrack-commits", baseURI)
}

func readCurrent(t *testing.T, s blobstore.BlobStore) string {
	t.Helper()
	data, err := blobstore.ReadAll(context.Background(), s, blobstore.CurrentName)
	require.NoError(t, err)
	return string(data)
}

func TestDDBCommitStore_MultipleCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test/")

	for i := 1; i <= 12; i++ {
		require.NoError(t, store.Put(ctx, blobstore.CurrentName, []byte(fmt.Sprintf("runs/%02d/manifest.json", i))))
	}
	assert.Equal(t, "runs/12/manifest.json", readCurrent(t, store))

	v, err := store.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), v)
}

func TestDDBCommitStore_OtherBlobsPassThrough(t *testing.T) {
	ctx := context.Background()
	inner := blobstore.NewMemoryStore()
	store := NewDDBCommitStore(inner, newMockDDBClient(), "t", "s3://b/")

	require.NoError(t, store.Put(ctx, "runs/a/event.blk", []byte("x")))
	names, err := inner.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/a/event.blk"}, names)

	require.NoError(t, store.Put(ctx, blobstore.CurrentName, []byte("m")))
	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/a/event.blk"}, names)
}

func TestDDBCommitStore_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	store := newTestDDBCommitStore(ddb, "s3://test-bucket/test/")
	require.NoError(t, store.Put(ctx, blobstore.CurrentName, []byte("runs/00/manifest.json")))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			err := store.Put(ctx, blobstore.CurrentName, []byte(fmt.Sprintf("runs/%02d/manifest.json", id+1)))
			if err != nil {
				assert.ErrorIs(t, err, blobstore.ErrConcurrentModification)
				return
			}
			mu.Lock()
			successes++
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Greater(t, successes, 0)
	v, err := store.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1+successes), v)
}

func TestDDBCommitStore_NotFoundBeforeCommit(t *testing.T) {
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test/")
	_, err := store.Open(context.Background(), blobstore.CurrentName)
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestDDBCommitStore_IsolatedNamespaces(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	a := newTestDDBCommitStore(ddb, "s3://bucket-a/path/")
	b := newTestDDBCommitStore(ddb, "s3://bucket-b/path/")

	require.NoError(t, a.Put(ctx, blobstore.CurrentName, []byte("A")))
	require.NoError(t, b.Put(ctx, blobstore.CurrentName, []byte("B")))

	assert.Equal(t, "A", readCurrent(t, a))
	assert.Equal(t, "B", readCurrent(t, b))
}
