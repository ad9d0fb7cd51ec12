package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/savaki/events-bot/pkg/models"
)

// OwnerIndex is the GSI keyed by owner (hash) and date (range), so listing a
// sender's events is a query sorted by date rather than a table scan.
const OwnerIndex = "OwnerIndex"

// EventRepository handles DynamoDB operations for events
type EventRepository struct {
	client    API
	tableName string
}

// NewEventRepository creates a new event repository
func NewEventRepository(client API, tableName string) *EventRepository {
	return &EventRepository{
		client:    client,
		tableName: tableName,
	}
}

// Put stores an event record in DynamoDB
func (r *EventRepository) Put(ctx context.Context, event *models.Event) error {
	item, err := attributevalue.MarshalMap(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &r.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}

	return nil
}

// GetByID retrieves an event by id. Returns (nil, nil) when no event exists,
// so callers can give missing and foreign events the same treatment.
func (r *EventRepository) GetByID(ctx context.Context, eventID string) (*models.Event, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.tableName,
		Key: map[string]types.AttributeValue{
			"event_id": &types.AttributeValueMemberS{Value: eventID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	var event models.Event
	if err := attributevalue.UnmarshalMap(result.Item, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}

	return &event, nil
}

// Delete removes an event by id. Deleting an id that does not exist is not
// an error; DynamoDB treats it as a no-op.
func (r *EventRepository) Delete(ctx context.Context, eventID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &r.tableName,
		Key: map[string]types.AttributeValue{
			"event_id": &types.AttributeValueMemberS{Value: eventID},
		},
	})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	return nil
}

// ListByOwner retrieves all events owned by a sender, ordered by date
// ascending via the OwnerIndex range key
func (r *EventRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Event, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &r.tableName,
		IndexName:              stringPtr(OwnerIndex),
		KeyConditionExpression: stringPtr("#owner = :owner"),
		ExpressionAttributeNames: map[string]string{
			"#owner": "owner",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: owner},
		},
		ScanIndexForward: boolPtr(true), // date ascending
	})
	if err != nil {
		return nil, fmt.Errorf("query by owner: %w", err)
	}

	var events []*models.Event
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &events); err != nil {
		return nil, fmt.Errorf("unmarshal events: %w", err)
	}

	return events, nil
}

// Helper functions
func stringPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}
