package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoEventStore stores streams in DynamoDB. The table uses
// (stream_id, version) as its composite key; appends go through
// TransactWriteItems with a per-item attribute_not_exists condition so a
// multi-event save lands atomically and a version collision cancels the
// whole transaction.
type DynamoEventStore struct {
	client    *dynamodb.Client
	tableName string
	publisher EventPublisher
}

type dynamoEvent struct {
	StreamID  string `dynamodbav:"stream_id"`
	Version   int    `dynamodbav:"version"`
	ID        string `dynamodbav:"id"`
	EventType string `dynamodbav:"event_type"`
	Data      string `dynamodbav:"data"`
	Metadata  string `dynamodbav:"metadata"`
	CreatedAt string `dynamodbav:"created_at"`
	GSI1PK    string `dynamodbav:"gsi1pk"`
}

// allEventsPartition is the fixed GSI1 partition key that makes
// ReadAllEvents a single ordered query.
const allEventsPartition = "EVENTS"

func NewDynamoEventStore(client *dynamodb.Client, tableName string, publisher EventPublisher) *DynamoEventStore {
	return &DynamoEventStore{client: client, tableName: tableName, publisher: publisher}
}

func (es *DynamoEventStore) AppendToStream(ctx context.Context, streamID string, expectedVersion int, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	current, err := es.streamHead(ctx, streamID)
	if err != nil {
		return err
	}
	if current != expectedVersion {
		return ErrConcurrencyConflict
	}

	items := make([]types.TransactWriteItem, 0, len(events))
	for _, event := range events {
		meta, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal event metadata: %w", err)
		}

		av, err := attributevalue.MarshalMap(dynamoEvent{
			StreamID:  event.StreamID,
			Version:   event.Version,
			ID:        event.ID,
			EventType: event.EventType,
			Data:      string(event.Data),
			Metadata:  string(meta),
			CreatedAt: event.Timestamp.Format(time.RFC3339Nano),
			GSI1PK:    allEventsPartition,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}

		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(es.tableName),
				Item:                av,
				ConditionExpression: aws.String("attribute_not_exists(stream_id) AND attribute_not_exists(version)"),
			},
		})
	}

	_, err = es.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			for _, reason := range canceled.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return ErrConcurrencyConflict
				}
			}
		}
		return fmt.Errorf("failed to append to stream: %w", err)
	}

	if es.publisher != nil {
		for _, event := range events {
			if err := es.publisher.Publish(ctx, streamID, event); err != nil {
				return fmt.Errorf("failed to publish committed event: %w", err)
			}
		}
	}
	return nil
}

// streamHead returns the version of the last committed event, or
// VersionNoStream when the stream does not exist.
func (es *DynamoEventStore) streamHead(ctx context.Context, streamID string) (int, error) {
	result, err := es.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(es.tableName),
		KeyConditionExpression: aws.String("stream_id = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: streamID},
		},
		ScanIndexForward:     aws.Bool(false),
		Limit:                aws.Int32(1),
		ProjectionExpression: aws.String("version"),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read stream head: %w", err)
	}
	if len(result.Items) == 0 {
		return VersionNoStream, nil
	}

	var head struct {
		Version int `dynamodbav:"version"`
	}
	if err := attributevalue.UnmarshalMap(result.Items[0], &head); err != nil {
		return 0, fmt.Errorf("failed to unmarshal stream head: %w", err)
	}
	return head.Version, nil
}

func (es *DynamoEventStore) ReadStream(ctx context.Context, streamID string) ([]Event, error) {
	result, err := es.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(es.tableName),
		KeyConditionExpression: aws.String("stream_id = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: streamID},
		},
		ScanIndexForward: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query stream: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, ErrStreamNotFound
	}

	return unmarshalDynamoEvents(result.Items)
}

func (es *DynamoEventStore) ReadAllEvents(ctx context.Context) ([]Event, error) {
	var (
		events  []Event
		lastKey map[string]types.AttributeValue
	)
	for {
		result, err := es.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(es.tableName),
			IndexName:              aws.String("gsi1"),
			KeyConditionExpression: aws.String("gsi1pk = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: allEventsPartition},
			},
			ScanIndexForward:  aws.Bool(true),
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query events: %w", err)
		}

		page, err := unmarshalDynamoEvents(result.Items)
		if err != nil {
			return nil, err
		}
		events = append(events, page...)

		if result.LastEvaluatedKey == nil {
			return events, nil
		}
		lastKey = result.LastEvaluatedKey
	}
}

func unmarshalDynamoEvents(items []map[string]types.AttributeValue) ([]Event, error) {
	events := make([]Event, 0, len(items))
	for _, item := range items {
		var rec dynamoEvent
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event item: %w", err)
		}

		event := Event{
			ID:        rec.ID,
			StreamID:  rec.StreamID,
			EventType: rec.EventType,
			Data:      json.RawMessage(rec.Data),
			Version:   rec.Version,
		}
		if err := json.Unmarshal([]byte(rec.Metadata), &event.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event metadata: %w", err)
		}
		if rec.CreatedAt != "" {
			t, err := time.Parse(time.RFC3339Nano, rec.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("failed to parse created_at: %w", err)
			}
			event.Timestamp = t
		}
		events = append(events, event)
	}
	return events, nil
}
