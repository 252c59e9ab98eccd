package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s BlobStore) {
	ctx := context.Background()

	_, err := s.Open(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "runs/a/event-000001.blk", []byte("hello world")))
	require.NoError(t, s.Put(ctx, "runs/a/manifest.json", []byte("{}")))
	require.NoError(t, s.Put(ctx, "runs/b/manifest.json", []byte("{}")))
	require.NoError(t, s.Put(ctx, CurrentName, []byte("runs/a/manifest.json")))

	b, err := s.Open(ctx, "runs/a/event-000001.blk")
	require.NoError(t, err)
	assert.Equal(t, int64(11), b.Size())

	p := make([]byte, 5)
	n, err := b.ReadAt(ctx, p, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(p))

	n, err = b.ReadAt(ctx, p, 8)
	assert.Equal(t, 3, n)
	assert.ErrorIs(t, err, io.EOF)

	rc, err := b.ReadRange(ctx, 0, 5)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))
	require.NoError(t, b.Close())

	all, err := ReadAll(ctx, s, CurrentName)
	require.NoError(t, err)
	assert.Equal(t, "runs/a/manifest.json", string(all))

	names, err := s.List(ctx, "runs/a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/a/event-000001.blk", "runs/a/manifest.json"}, names)

	// Put replaces.
	require.NoError(t, s.Put(ctx, CurrentName, []byte("runs/b/manifest.json")))
	all, err = ReadAll(ctx, s, CurrentName)
	require.NoError(t, err)
	assert.Equal(t, "runs/b/manifest.json", string(all))

	require.NoError(t, s.Delete(ctx, "runs/b/manifest.json"))
	require.NoError(t, s.Delete(ctx, "runs/b/manifest.json"))
	names, err = s.List(ctx, "runs/")
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	testStore(t, NewLocalStore(t.TempDir()))
}

func TestLocalStore_EmptyBlob(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())
	require.NoError(t, s.Put(ctx, "empty", nil))

	data, err := ReadAll(ctx, s, "empty")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestMemoryStore_PutCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	data := []byte("abc")
	require.NoError(t, s.Put(ctx, "x", data))
	data[0] = 'z'

	got, err := ReadAll(ctx, s, "x")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}
