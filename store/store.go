package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/moviereview/internal/keys"
	"github.com/jacentio/moviereview/review"
)

// Store implements review.Ledger on DynamoDB.
type Store struct {
	client API
	config Config
}

var _ review.Ledger = (*Store)(nil)

// New creates a new Store instance.
func New(client API, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
	}
}

// Config returns the validated configuration.
func (s *Store) Config() Config {
	return s.config
}

// Get retrieves the record at key, returning review.ErrNotFound if missing.
func (s *Store) Get(ctx context.Context, key review.Key) (*review.Entry, error) {
	rec, err := s.getRecord(ctx, key)
	if err != nil {
		return nil, err
	}

	owner, err := review.ParseAuthor(rec.Author)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", review.ErrInvalidRecord, err)
	}
	return &review.Entry{
		Owner:    owner,
		Title:    rec.Title,
		Data:     rec.Data,
		Capacity: rec.Capacity,
	}, nil
}

// Create puts a new record and charges its capacity to the owner's account.
func (s *Store) Create(ctx context.Context, key review.Key, entry review.Entry) error {
	now := time.Now().UTC().Format(time.RFC3339)

	item, err := attributevalue.MarshalMap(recordItem{
		PK:        string(key),
		Author:    entry.Owner.String(),
		Title:     entry.Title,
		Data:      entry.Data,
		Capacity:  entry.Capacity,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	// Record put must stay at index 0 for error mapping
	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(s.config.RecordTable),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			},
		},
		s.adjustAccount(entry.Owner, entry.Capacity, 1),
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	return mapTransactionError(err, 0, review.ErrAlreadyExists)
}

// Replace overwrites the record at key with optimistic locking and moves
// the capacity difference onto the owner's account.
func (s *Store) Replace(ctx context.Context, key review.Key, entry review.Entry) error {
	current, err := s.getRecord(ctx, key)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	delta := entry.Capacity - current.Capacity

	items := []types.TransactWriteItem{
		{
			Update: &types.Update{
				TableName:           aws.String(s.config.RecordTable),
				Key:                 pkOf(string(key)),
				UpdateExpression:    aws.String("SET #data = :data, #capacity = :capacity, #updated_at = :updated_at, #version = #version + :one"),
				ConditionExpression: aws.String("#version = :expected_version"),
				ExpressionAttributeNames: map[string]string{
					"#data":       "data",
					"#capacity":   "capacity",
					"#updated_at": "updated_at",
					"#version":    "version",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":data":             &types.AttributeValueMemberB{Value: entry.Data},
					":capacity":         numberAttr(entry.Capacity),
					":updated_at":       &types.AttributeValueMemberS{Value: now},
					":one":              numberAttr(1),
					":expected_version": numberAttr(current.Version),
				},
			},
		},
	}
	if delta != 0 {
		items = append(items, s.adjustAccount(entry.Owner, delta, 0))
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	return mapTransactionError(err, 0, review.ErrConcurrentModification)
}

// Delete removes the record at key and refunds its capacity to owner.
func (s *Store) Delete(ctx context.Context, key review.Key, owner review.Author) (int64, error) {
	current, err := s.getRecord(ctx, key)
	if err != nil {
		return 0, err
	}

	items := []types.TransactWriteItem{
		{
			Delete: &types.Delete{
				TableName:                aws.String(s.config.RecordTable),
				Key:                      pkOf(string(key)),
				ConditionExpression:      aws.String("#version = :expected_version"),
				ExpressionAttributeNames: map[string]string{"#version": "version"},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":expected_version": numberAttr(current.Version),
				},
			},
		},
		s.adjustAccount(owner, -current.Capacity, -1),
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err := mapTransactionError(err, 0, review.ErrConcurrentModification); err != nil {
		return 0, err
	}
	return current.Capacity, nil
}

// Reserved returns the bytes reserved by owner. A missing account means zero.
func (s *Store) Reserved(ctx context.Context, owner review.Author) (int64, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.config.AccountTable),
		Key:            pkOf(keys.AccountKey(owner[:])),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, err
	}
	if result.Item == nil {
		return 0, nil
	}

	var acct accountItem
	if err := attributevalue.UnmarshalMap(result.Item, &acct); err != nil {
		return 0, fmt.Errorf("unmarshal account: %w", err)
	}
	return acct.Reserved, nil
}

// getRecord reads the record at key with a consistent read.
func (s *Store) getRecord(ctx context.Context, key review.Key) (*recordItem, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.config.RecordTable),
		Key:            pkOf(string(key)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, review.ErrNotFound
	}

	var rec recordItem
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

// adjustAccount builds the account update adding bytes and records to owner.
// The account item is created on first use.
func (s *Store) adjustAccount(owner review.Author, bytes, records int64) types.TransactWriteItem {
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName:        aws.String(s.config.AccountTable),
			Key:              pkOf(keys.AccountKey(owner[:])),
			UpdateExpression: aws.String("ADD #reserved :bytes, #records :records"),
			ExpressionAttributeNames: map[string]string{
				"#reserved": "reserved",
				"#records":  "records",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":bytes":   numberAttr(bytes),
				":records": numberAttr(records),
			},
		},
	}
}

func numberAttr(n int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}
