package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/tpctrack/blobstore"
	"github.com/hupe1980/tpctrack/blobstore/azure"
	miniostore "github.com/hupe1980/tpctrack/blobstore/minio"
	"github.com/hupe1980/tpctrack/blobstore/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// openStore resolves a store URI:
//
//	path or file://path            local directory
//	mem://                         in-memory store (dry runs)
//	s3://bucket/prefix             AWS S3, default credential chain
//	minio://host:port/bucket/pfx   MinIO, MINIO_ACCESS_KEY / MINIO_SECRET_KEY
//	azure://container/prefix       Azure Blob, AZURE_STORAGE_CONNECTION_STRING
//
// A non-empty ddbTable puts the CURRENT pointer of an S3 store under
// DynamoDB conditional commits.
func openStore(ctx context.Context, uri, ddbTable string) (blobstore.BlobStore, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		scheme, rest = "file", uri
	}
	if ddbTable != "" && scheme != "s3" {
		return nil, fmt.Errorf("ddb commits need an s3 store, got %q", uri)
	}

	switch scheme {
	case "file":
		if err := os.MkdirAll(rest, 0o755); err != nil {
			return nil, err
		}
		return blobstore.NewLocalStore(rest), nil

	case "mem":
		return blobstore.NewMemoryStore(), nil

	case "s3":
		bucket, prefix := splitBucket(rest)
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		var store blobstore.BlobStore = s3.NewStore(awss3.NewFromConfig(awsCfg), bucket, prefix)
		if ddbTable != "" {
			store = s3.NewDDBCommitStore(store, dynamodb.NewFromConfig(awsCfg), ddbTable, uri)
		}
		return store, nil

	case "minio":
		endpoint, path, _ := strings.Cut(rest, "/")
		bucket, prefix := splitBucket(path)
		client, err := minio.New(endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
			Secure: os.Getenv("MINIO_SECURE") == "true",
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return miniostore.NewStore(client, bucket, prefix), nil

	case "azure":
		container, prefix := splitBucket(rest)
		conn := os.Getenv("AZURE_STORAGE_CONNECTION_STRING")
		if conn == "" {
			return nil, fmt.Errorf("azure store needs AZURE_STORAGE_CONNECTION_STRING")
		}
		return azure.NewStoreFromConnectionString(conn, container, prefix)
	}
	return nil, fmt.Errorf("unknown store scheme %q", scheme)
}

func splitBucket(s string) (bucket, prefix string) {
	bucket, prefix, _ = strings.Cut(s, "/")
	return bucket, prefix
}
