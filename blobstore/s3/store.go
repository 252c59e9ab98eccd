package s3

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/tpctrack/blobstore"
	"github.com/hupe1980/tpctrack/internal/hash"
)

// Client is the subset of the S3 API used by Store. *s3.Client satisfies it.
type Client interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// UploadConfig configures puts.
type UploadConfig struct {
	// PartSize is the multipart part size. Blobs up to PartSize are put in
	// a single request. Default: 8MB.
	PartSize int64
	// Concurrency is the number of concurrent part uploads. Default: 5.
	Concurrency int
	// EnableChecksum enables CRC32C integrity validation. Default: true.
	EnableChecksum bool
}

// DefaultUploadConfig returns the default upload settings.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:       8 * 1024 * 1024,
		Concurrency:    5,
		EnableChecksum: true,
	}
}

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	cfg      UploadConfig
	uploader *manager.Uploader
}

// NewStore creates a new S3 blob store.
// rootPrefix is prepended to all keys (e.g. "replays/").
func NewStore(client Client, bucket, rootPrefix string, optFns ...func(*UploadConfig)) *Store {
	cfg := DefaultUploadConfig()
	for _, fn := range optFns {
		fn(&cfg)
	}
	return &Store{
		client: client,
		bucket: bucket,
		prefix: strings.TrimSuffix(rootPrefix, "/"),
		cfg:    cfg,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = cfg.PartSize
			u.Concurrency = cfg.Concurrency
		}),
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open checks the blob exists and returns a handle serving ranged reads.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return &s3Blob{
		client: s.client,
		bucket: s.bucket,
		key:    key,
		size:   aws.ToInt64(head.ContentLength),
	}, nil
}

// Put writes a blob.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	key := s.key(name)
	if int64(len(data)) <= s.cfg.PartSize {
		input := &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
		}
		if s.cfg.EnableChecksum {
			input.ChecksumCRC32C = aws.String(computeCRC32C(data))
		}
		_, err := s.client.PutObject(ctx, input)
		return err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if s.cfg.EnableChecksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}
	_, err := s.uploader.Upload(ctx, input)
	return err
}

// Delete removes a blob.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

// List returns the names below the root prefix that start with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	full := s.prefix
	if full != "" {
		full += "/"
	}
	full += prefix

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(full),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			rel := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			keys = append(keys, strings.TrimPrefix(rel, "/"))
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}

// computeCRC32C returns the checksum in the base64 big-endian form S3 expects.
func computeCRC32C(data []byte) string {
	sum := hash.CRC32C(data)
	b := []byte{byte(sum >> 24), byte(sum >> 16), byte(sum >> 8), byte(sum)}
	return base64.StdEncoding.EncodeToString(b)
}

type s3Blob struct {
	client Client
	bucket string
	key    string
	size   int64
}

func (b *s3Blob) Close() error { return nil }

func (b *s3Blob) Size() int64 { return b.size }

func (b *s3Blob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	rc, err := b.ReadRange(ctx, off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()

	n, err := io.ReadFull(rc, p)
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return n, io.EOF
	}
	return n, err
}

func (b *s3Blob) ReadRange(ctx context.Context, off, n int64) (io.ReadCloser, error) {
	if off < 0 || off > b.size {
		return nil, io.EOF
	}
	if off == b.size || n <= 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	end := min(off+n, b.size) - 1
	resp, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
