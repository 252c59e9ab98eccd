// Package blobstore abstracts the storage behind replay archives.
//
// An archive is a set of immutable blobs (compressed settings, events and
// result buffers) plus a manifest. The manifest becomes visible when its
// name is written to the CURRENT blob; stores backed by a commit log make
// that write a compare-and-swap.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests
//   - LocalStore: local file system with mmap reads and rename-based puts
//   - s3.Store and s3.DDBCommitStore: Amazon S3, optionally with DynamoDB commits
//   - minio.Store: MinIO and other S3-compatible services
//   - azure.Store: Azure Blob Storage
package blobstore
