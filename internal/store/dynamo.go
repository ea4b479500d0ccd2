// ABOUTME: DynamoDB-backed document metadata and chat history storage
// ABOUTME: Items keyed pk=USER#{userId}, sk=DOC#{docId}
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/documentgpt/docchat/internal/models"
	"github.com/documentgpt/docchat/internal/util"
)

// PreviewLimit bounds the last-message preview stored on a record.
const PreviewLimit = 280

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoStore persists document records in a single table.
type DynamoStore struct {
	client DynamoAPI
	table  string
}

// NewDynamoStore creates a DynamoStore for the given table.
func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

func itemKey(userID, documentID string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		"pk": &ddbtypes.AttributeValueMemberS{Value: "USER#" + userID},
		"sk": &ddbtypes.AttributeValueMemberS{Value: "DOC#" + documentID},
	}
}

// GetDocument loads one record. A missing item returns (nil, nil).
func (d *DynamoStore) GetDocument(ctx context.Context, userID, documentID string) (*models.DocumentRecord, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key:       itemKey(userID, documentID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", documentID, err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var record models.DocumentRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %s: %w", documentID, err)
	}
	return &record, nil
}

// PutDocument writes a record, last-write-wins.
func (d *DynamoStore) PutDocument(ctx context.Context, record *models.DocumentRecord) error {
	record.UpdatedAt = time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = record.UpdatedAt
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", record.DocumentID, err)
	}
	for k, v := range itemKey(record.UserID, record.DocumentID) {
		item[k] = v
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put document %s: %w", record.DocumentID, err)
	}
	return nil
}

// AppendTurns appends conversation turns to a record's history, trimming to
// the most recent window turns, and refreshes the last-message preview.
func (d *DynamoStore) AppendTurns(ctx context.Context, userID, documentID string, turns []models.ConversationTurn, window int) error {
	record, err := d.GetDocument(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if record == nil {
		record = &models.DocumentRecord{UserID: userID, DocumentID: documentID}
	}

	record.ChatHistory = models.TrimHistory(append(record.ChatHistory, turns...), window)
	if len(record.ChatHistory) > 0 {
		last := record.ChatHistory[len(record.ChatHistory)-1].Text
		record.LastMessagePreview = util.TruncateBytes(last, PreviewLimit)
	}

	return d.PutDocument(ctx, record)
}
