// Package azure stores replay archives in Azure Blob Storage.
package azure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/hupe1980/tpctrack/blobstore"
)

// Store implements blobstore.BlobStore on one container.
type Store struct {
	client    *azblob.Client
	container string
	prefix    string
}

// NewStore creates a store over container. rootPrefix is prepended to all
// blob names.
func NewStore(client *azblob.Client, container, rootPrefix string) *Store {
	return &Store{
		client:    client,
		container: container,
		prefix:    strings.TrimSuffix(rootPrefix, "/"),
	}
}

// NewStoreFromConnectionString creates the client from a storage account
// connection string, e.g. the one of a local Azurite emulator.
func NewStoreFromConnectionString(conn, container, rootPrefix string) (*Store, error) {
	client, err := azblob.NewClientFromConnectionString(conn, nil)
	if err != nil {
		return nil, err
	}
	return NewStore(client, container, rootPrefix), nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// mapError translates the service's missing blob and container codes to
// blobstore.ErrNotFound.
func mapError(err error) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound, bloberror.ResourceNotFound) {
		return blobstore.ErrNotFound
	}
	return err
}

// Open reads the blob properties and returns a handle serving ranged
// downloads.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	props, err := s.client.ServiceClient().
		NewContainerClient(s.container).
		NewBlobClient(key).
		GetProperties(ctx, nil)
	if err != nil {
		return nil, mapError(err)
	}
	var size int64
	if props.ContentLength != nil {
		size = *props.ContentLength
	}
	return &azureBlob{
		client:    s.client,
		container: s.container,
		key:       key,
		size:      size,
	}, nil
}

// Put uploads data as a block blob.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.UploadBuffer(ctx, s.container, s.key(name), data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr("application/octet-stream")},
	})
	return err
}

// Delete removes a blob.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteBlob(ctx, s.container, s.key(name), nil)
	if err != nil && !errors.Is(mapError(err), blobstore.ErrNotFound) {
		return err
	}
	return nil
}

// List returns the names below the root prefix that start with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	full := s.prefix
	if full != "" {
		full += "/"
	}
	full += prefix

	var names []string
	pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{
		Prefix: to.Ptr(full),
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			names = append(names, strings.TrimPrefix(strings.TrimPrefix(*item.Name, s.prefix), "/"))
		}
	}
	sort.Strings(names)
	return names, nil
}

type azureBlob struct {
	client    *azblob.Client
	container string
	key       string
	size      int64
}

func (b *azureBlob) Size() int64 { return b.size }

func (b *azureBlob) Close() error { return nil }

func (b *azureBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	rc, err := b.ReadRange(ctx, off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	n, err := io.ReadFull(rc, p)
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return n, io.EOF
	}
	return n, err
}

func (b *azureBlob) ReadRange(ctx context.Context, off, n int64) (io.ReadCloser, error) {
	size := b.size
	if off < 0 || off > size {
		return nil, io.EOF
	}
	if off == size || n <= 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	resp, err := b.client.DownloadStream(ctx, b.container, b.key, &azblob.DownloadStreamOptions{
		Range: blob.HTTPRange{Offset: off, Count: min(n, size-off)},
	})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Body, nil
}
