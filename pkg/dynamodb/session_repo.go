package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/savaki/events-bot/pkg/models"
)

// SessionRepository handles DynamoDB operations for conversational state.
// One record per sender, overwritten in place. The ttl attribute lets
// DynamoDB garbage-collect stale sessions; expiry is still re-checked on
// read since TTL deletion is lazy.
type SessionRepository struct {
	client    API
	tableName string
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(client API, tableName string) *SessionRepository {
	return &SessionRepository{
		client:    client,
		tableName: tableName,
	}
}

// Get retrieves the session for a sender. Returns (nil, nil) when the sender
// has no stored state.
func (r *SessionRepository) Get(ctx context.Context, sender string) (*models.Session, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.tableName,
		Key: map[string]types.AttributeValue{
			"sender": &types.AttributeValueMemberS{Value: sender},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	var sess models.Session
	if err := attributevalue.UnmarshalMap(result.Item, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if sess.Fields == nil {
		sess.Fields = map[string]string{}
	}

	return &sess, nil
}

// Put stores the session, replacing any previous state for the sender
func (r *SessionRepository) Put(ctx context.Context, sess *models.Session) error {
	item, err := attributevalue.MarshalMap(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &r.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}

	return nil
}

// Delete removes the session for a sender
func (r *SessionRepository) Delete(ctx context.Context, sender string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &r.tableName,
		Key: map[string]types.AttributeValue{
			"sender": &types.AttributeValueMemberS{Value: sender},
		},
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}
