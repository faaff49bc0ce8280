package store

import (
	"context"
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDB rejects items over 400 KB; leave room for the key and attribute names.
const dynamoMaxBody = 400*1024 - 1024

var ErrTooLarge = errors.New("record too large for backend")

type dynamoRecord struct {
	PK   string `dynamodbav:"pk"`
	Body []byte `dynamodbav:"body"`
}

// DynamoDB stores one item per collection key; a write is a full PutItem of the
// collection, the same whole-cart read-modify-write the shopping-cart table uses.
type DynamoDB struct {
	Client *dynamodb.Client
	Table  string
}

func (d *DynamoDB) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := d.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.Table),
		ConsistentRead: aws.Bool(true),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}
	var rec dynamoRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return rec.Body, nil
}

func (d *DynamoDB) Put(ctx context.Context, key string, value []byte) error {
	if len(value) > dynamoMaxBody {
		return fmt.Errorf("%s is %d bytes, dynamodb limit %d: %w", key, len(value), dynamoMaxBody, ErrTooLarge)
	}
	item, err := attributevalue.MarshalMap(dynamoRecord{PK: key, Body: value})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = d.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.Table),
		Item:      item,
	})
	return err
}

func (d *DynamoDB) Close() error { return nil }
