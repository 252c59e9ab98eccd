package s3

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/mock"
)

type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.HeadObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.ListObjectsV2Output)
	return out, args.Error(1)
}

func (m *MockS3Client) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.CreateMultipartUploadOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) UploadPart(ctx context.Context, params *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.UploadPartOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.CompleteMultipartUploadOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, _ ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.AbortMultipartUploadOutput)
	return out, args.Error(1)
}

// mockDDBClient is an in-memory DynamoDB table keyed by (base_uri, version).
type mockDDBClient struct {
	mu    sync.Mutex
	items map[string]map[string]ddbtypes.AttributeValue
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{items: make(map[string]map[string]ddbtypes.AttributeValue)}
}

func (m *mockDDBClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	uri := params.Item["base_uri"].(*ddbtypes.AttributeValueMemberS).Value
	version := params.Item["version"].(*ddbtypes.AttributeValueMemberN).Value
	key := uri + ":" + version

	if aws.ToString(params.ConditionExpression) == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &ddbtypes.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}
	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	uri := params.ExpressionAttributeValues[":uri"].(*ddbtypes.AttributeValueMemberS).Value
	var items []map[string]ddbtypes.AttributeValue
	for _, item := range m.items {
		if item["base_uri"].(*ddbtypes.AttributeValueMemberS).Value == uri {
			items = append(items, item)
		}
	}
	version := func(item map[string]ddbtypes.AttributeValue) uint64 {
		v, _ := strconv.ParseUint(item["version"].(*ddbtypes.AttributeValueMemberN).Value, 10, 64)
		return v
	}
	sort.Slice(items, func(i, j int) bool { return version(items[i]) > version(items[j]) })

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}
