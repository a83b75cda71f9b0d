package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// DynamoDB key layout: one item per history key.
const (
	pkPrefix = "HISTORY#"
	skMeta   = "META"

	dynamoUpdateAttempts = 3
)

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

var _ DynamoAPI = (*dynamodb.Client)(nil)

// historyItem is the stored shape. Records is the zstd-compressed JSON
// record list, stored as a binary attribute so ten sessions of analysis
// context stay well under the 400 KB item limit.
type historyItem struct {
	PK        string `json:"PK"`
	SK        string `json:"SK"`
	Records   []byte `json:"records"`
	Version   int64  `json:"version"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
}

var (
	payloadEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	payloadDecoder, _ = zstd.NewReader(nil)
)

func compressRecords(records []Record) ([]byte, error) {
	data, err := marshalRecords(records)
	if err != nil {
		return nil, err
	}
	return payloadEncoder.EncodeAll(data, nil), nil
}

func decompressRecords(payload []byte) ([]Record, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	data, err := payloadDecoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress history: %w", err)
	}
	return decodeRecords(data)
}

// DynamoStore keeps each history key as a single item with a version
// attribute for optimistic concurrency and an expiresAt TTL attribute.
type DynamoStore struct {
	history
	client    DynamoAPI
	tableName string
	key       string
	ttl       time.Duration
}

var _ Store = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore for key in tableName. ttl of zero
// writes no expiry.
func NewDynamoStore(client DynamoAPI, tableName, key string, ttl time.Duration) *DynamoStore {
	if key == "" {
		key = DefaultKey
	}
	s := &DynamoStore{client: client, tableName: tableName, key: key, ttl: ttl}
	s.b = s
	return s
}

// Init checks that the table exists.
func (s *DynamoStore) Init(ctx context.Context) error {
	if _, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: &s.tableName}); err != nil {
		return fmt.Errorf("describe table %s: %w", s.tableName, err)
	}
	return nil
}

func (s *DynamoStore) Close() error {
	s.markClosed()
	return nil
}

func (s *DynamoStore) itemKey() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pkPrefix + s.key},
		"SK": &types.AttributeValueMemberS{Value: skMeta},
	}
}

func encodeJSONTags(o *attributevalue.EncoderOptions) { o.TagKey = "json" }
func decodeJSONTags(o *attributevalue.DecoderOptions) { o.TagKey = "json" }

// getItem returns the stored item, or nil when the key has no item.
func (s *DynamoStore) getItem(ctx context.Context) (*historyItem, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.tableName,
		Key:            s.itemKey(),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem PK=%s%s: %w", pkPrefix, s.key, err)
	}
	if result.Item == nil {
		return nil, nil
	}
	var item historyItem
	if err := attributevalue.UnmarshalMapWithOptions(result.Item, &item, decodeJSONTags); err != nil {
		return nil, fmt.Errorf("unmarshal PK=%s%s: %w", pkPrefix, s.key, err)
	}
	return &item, nil
}

func (s *DynamoStore) load(ctx context.Context) ([]Record, error) {
	item, err := s.getItem(ctx)
	if err != nil || item == nil {
		return nil, err
	}
	return decompressRecords(item.Records)
}

func (s *DynamoStore) update(ctx context.Context, fn func([]Record) []Record) error {
	var err error
	for range dynamoUpdateAttempts {
		err = s.tryUpdate(ctx, fn)
		var conflict *types.ConditionalCheckFailedException
		if !errors.As(err, &conflict) {
			break
		}
		log.Debug().Str("key", s.key).Msg("History item changed concurrently, retrying")
	}
	return err
}

func (s *DynamoStore) tryUpdate(ctx context.Context, fn func([]Record) []Record) error {
	current, err := s.getItem(ctx)
	if err != nil {
		return err
	}
	var records []Record
	var version int64
	if current != nil {
		if records, err = decompressRecords(current.Records); err != nil {
			return err
		}
		version = current.Version
	}

	next := fn(records)
	if next == nil {
		if current == nil {
			return nil
		}
		_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName:                 &s.tableName,
			Key:                       s.itemKey(),
			ConditionExpression:       aws.String("version = :v"),
			ExpressionAttributeValues: versionValue(version),
		})
		if err != nil {
			return fmt.Errorf("DeleteItem PK=%s%s: %w", pkPrefix, s.key, err)
		}
		log.Debug().Str("key", s.key).Msg("History cleared in DynamoDB")
		return nil
	}

	payload, err := compressRecords(next)
	if err != nil {
		return err
	}
	item := historyItem{
		PK:      pkPrefix + s.key,
		SK:      skMeta,
		Records: payload,
		Version: version + 1,
	}
	if s.ttl > 0 {
		item.ExpiresAt = time.Now().Add(s.ttl).Unix()
	}
	av, err := attributevalue.MarshalMapWithOptions(item, encodeJSONTags)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	condition := "attribute_not_exists(PK)"
	var values map[string]types.AttributeValue
	if current != nil {
		condition = "version = :v"
		values = versionValue(version)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 &s.tableName,
		Item:                      av,
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("PutItem PK=%s: %w", item.PK, err)
	}

	log.Debug().
		Str("key", s.key).
		Int("records", len(next)).
		Int("bytes", len(payload)).
		Int64("version", item.Version).
		Msg("History persisted to DynamoDB")
	return nil
}

func versionValue(v int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		":v": &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)},
	}
}
