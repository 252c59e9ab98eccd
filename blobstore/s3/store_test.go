package s3

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/tpctrack/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStore_Open(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "test-bucket", "prefix")

	t.Run("NotFound", func(t *testing.T) {
		mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
			return *input.Bucket == "test-bucket" && *input.Key == "prefix/foo"
		})).Return(nil, &types.NotFound{}).Once()

		_, err := store.Open(context.Background(), "foo")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
			return *input.Bucket == "test-bucket" && *input.Key == "prefix/bar"
		})).Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(100)}, nil).Once()

		blob, err := store.Open(context.Background(), "bar")
		require.NoError(t, err)
		assert.Equal(t, int64(100), blob.Size())
	})
	mockClient.AssertExpectations(t)
}

func TestStore_PutSmallWithChecksum(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "test-bucket", "prefix/")

	data := []byte("123456789")
	mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		if rs, ok := input.Body.(io.Seeker); ok {
			_, _ = rs.Seek(0, io.SeekStart)
		}
		body, _ := io.ReadAll(input.Body)
		return *input.Key == "prefix/runs/x.blk" &&
			bytes.Equal(body, data) &&
			aws.ToInt64(input.ContentLength) == 9 &&
			aws.ToString(input.ChecksumCRC32C) == "4waSgw=="
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Put(context.Background(), "runs/x.blk", data))
	mockClient.AssertExpectations(t)
}

func TestStore_PutWithoutChecksum(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "b", "", func(c *UploadConfig) { c.EnableChecksum = false })

	mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return *input.Key == "k" && input.ChecksumCRC32C == nil
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Put(context.Background(), "k", []byte("v")))
	mockClient.AssertExpectations(t)
}

func TestStore_Delete(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "test-bucket", "prefix")

	mockClient.On("DeleteObject", mock.Anything, mock.MatchedBy(func(input *s3.DeleteObjectInput) bool {
		return *input.Bucket == "test-bucket" && *input.Key == "prefix/del"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	assert.NoError(t, store.Delete(context.Background(), "del"))
}

func TestStore_List_Pagination(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "test-bucket", "prefix/")

	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return input.ContinuationToken == nil && *input.Prefix == "prefix/runs/"
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("token"),
		Contents:              []types.Object{{Key: aws.String("prefix/runs/2")}},
	}, nil).Once()

	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return aws.ToString(input.ContinuationToken) == "token"
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated: aws.Bool(false),
		Contents:    []types.Object{{Key: aws.String("prefix/runs/1")}},
	}, nil).Once()

	keys, err := store.List(context.Background(), "runs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/1", "runs/2"}, keys)
}

func TestBlob_ReadAt(t *testing.T) {
	mockClient := new(MockS3Client)
	blob := &s3Blob{client: mockClient, bucket: "b", key: "k", size: 10}

	mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
		return *input.Range == "bytes=0-4"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("hello"))}, nil).Once()

	buf := make([]byte, 5)
	n, err := blob.ReadAt(context.Background(), buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))

	mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
		return *input.Range == "bytes=8-9"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("ld"))}, nil).Once()

	n, err = blob.ReadAt(context.Background(), buf, 8)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, n)
}

func TestReadAll(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "b", "p")

	mockClient.On("HeadObject", mock.Anything, mock.Anything).
		Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(11)}, nil).Once()
	mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
		return *input.Key == "p/manifest.json" && *input.Range == "bytes=0-10"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("hello world"))}, nil).Once()

	data, err := blobstore.ReadAll(context.Background(), store, "manifest.json")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}
