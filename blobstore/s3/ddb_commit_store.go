package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/tpctrack/blobstore"
)

// DDBCommitStore wraps a blob store and keeps the CURRENT pointer in
// DynamoDB. Every commit inserts the next version with a conditional write,
// so of two writers racing from the same version exactly one wins and the
// other gets blobstore.ErrConcurrentModification.
//
// Table schema:
//   - Partition key: base_uri (string), the archive root
//   - Sort key: version (number), increasing per commit
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name tpctrack-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	inner     blobstore.BlobStore
	ddbClient DDBClient
	tableName string
	baseURI   string
}

// DDBClient is the subset of the DynamoDB API used by DDBCommitStore.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// NewDDBCommitStore creates a commit store over inner. baseURI, e.g.
// "s3://bucket/prefix", namespaces the commits in the table.
func NewDDBCommitStore(inner blobstore.BlobStore, ddbClient DDBClient, tableName, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{
		inner:     inner,
		ddbClient: ddbClient,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

// Open opens a blob. CURRENT is served from the latest commit.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if name != blobstore.CurrentName {
		return s.inner.Open(ctx, name)
	}
	version, manifest, err := s.latest(ctx)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, blobstore.ErrNotFound
	}
	return blobstore.NewBytesBlob([]byte(manifest)), nil
}

// Put writes a blob. Writing CURRENT commits a new version.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if name == blobstore.CurrentName {
		return s.commit(ctx, string(data))
	}
	return s.inner.Put(ctx, name, data)
}

// Delete deletes a blob.
func (s *DDBCommitStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

// List lists blobs with prefix.
func (s *DDBCommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Version returns the latest committed version, 0 before the first commit.
func (s *DDBCommitStore) Version(ctx context.Context) (uint64, error) {
	v, _, err := s.latest(ctx)
	return v, err
}

func (s *DDBCommitStore) latest(ctx context.Context) (uint64, string, error) {
	resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("failed to query DynamoDB: %w", err)
	}
	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("invalid version attribute in DynamoDB")
	}
	pathAttr, ok := item["manifest_path"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("invalid manifest_path attribute in DynamoDB")
	}
	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}
	return version, pathAttr.Value, nil
}

func (s *DDBCommitStore) commit(ctx context.Context, manifest string) error {
	current, _, err := s.latest(ctx)
	if err != nil {
		return err
	}

	_, err = s.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri":      &types.AttributeValueMemberS{Value: s.baseURI},
			"version":       &types.AttributeValueMemberN{Value: strconv.FormatUint(current+1, 10)},
			"manifest_path": &types.AttributeValueMemberS{Value: manifest},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return blobstore.ErrConcurrentModification
		}
		return fmt.Errorf("failed to commit version to DynamoDB: %w", err)
	}
	return nil
}
