package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/dynamo"
)

const defaultIdempotencyTableName = "adoption_idempotency_keys"

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps idempotency keys in DynamoDB (PK: key).
type IdempotencyStore struct {
	ddb       dynamo.API
	tableName string
	now       func() time.Time
}

func NewIdempotencyStore(ddb dynamo.API) *IdempotencyStore {
	return &IdempotencyStore{
		ddb:       ddb,
		tableName: dynamo.TableName("ADOPTION_IDEMPOTENCY_TABLE", defaultIdempotencyTableName),
		now:       time.Now,
	}
}

type idempotencyItem struct {
	Key         string `dynamodbav:"key"`
	RequestHash string `dynamodbav:"request_hash"`
	RequestID   string `dynamodbav:"request_id"`
	CreatedAt   string `dynamodbav:"created_at"`
	UpdatedAt   string `dynamodbav:"updated_at"`
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            dynamo.Key("key", key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var item idempotencyItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, err
	}
	return item.toRecord(), nil
}

// Save writes the key once; a second writer reads back the stored record.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	now := s.now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	item := idempotencyItem{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		RequestID:   record.RequestID,
		CreatedAt:   dynamo.FormatTime(record.CreatedAt),
		UpdatedAt:   dynamo.FormatTime(record.UpdatedAt),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, err
	}
	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.tableName),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#key)"),
		ExpressionAttributeNames: map[string]string{"#key": "key"},
	})
	if err == nil {
		return item.toRecord(), nil
	}
	if !dynamo.IsConditionFailed(err) {
		return nil, err
	}
	existing, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New("idempotency key vanished after conflict")
	}
	if existing.RequestHash != record.RequestHash || existing.RequestID != record.RequestID {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}

func (it idempotencyItem) toRecord() *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:         it.Key,
		RequestHash: it.RequestHash,
		RequestID:   it.RequestID,
		CreatedAt:   dynamo.ParseTime(it.CreatedAt),
		UpdatedAt:   dynamo.ParseTime(it.UpdatedAt),
	}
}
