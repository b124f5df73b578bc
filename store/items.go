package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// API is the subset of the DynamoDB client used by Store.
// *dynamodb.Client satisfies it.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// PK represents a DynamoDB primary key.
type PK map[string]types.AttributeValue

// pkOf builds the primary key for a partition key value.
func pkOf(pk string) PK {
	return PK{"pk": &types.AttributeValueMemberS{Value: pk}}
}

// recordItem is a review as stored in the record table.
type recordItem struct {
	PK        string `dynamodbav:"pk"`
	Author    string `dynamodbav:"author"`
	Title     string `dynamodbav:"title"`
	Data      []byte `dynamodbav:"data"`
	Capacity  int64  `dynamodbav:"capacity"`
	Version   int64  `dynamodbav:"version"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// accountItem is an author's reservation summary.
type accountItem struct {
	PK       string `dynamodbav:"pk"`
	Reserved int64  `dynamodbav:"reserved"`
	Records  int64  `dynamodbav:"records"`
}
