// Package dynamo is a VoteStore backed by an Amazon DynamoDB table keyed
// by voter email. Inserts are conditional puts, so a second vote for the
// same email is rejected by the table itself.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/google/uuid"

	"school-vote/logger"
	"school-vote/models"
	"school-vote/store"
)

var _ store.VoteStore = (*Store)(nil)

// batchLimit is the BatchWriteItem request cap.
const batchLimit = 25

// maxBatchRetries bounds re-sending of UnprocessedItems.
const maxBatchRetries = 5

// API is the subset of the DynamoDB client the store uses.
type API interface {
	PutItemWithContext(aws.Context, *dynamodb.PutItemInput, ...request.Option) (*dynamodb.PutItemOutput, error)
	GetItemWithContext(aws.Context, *dynamodb.GetItemInput, ...request.Option) (*dynamodb.GetItemOutput, error)
	ScanPagesWithContext(aws.Context, *dynamodb.ScanInput, func(*dynamodb.ScanOutput, bool) bool, ...request.Option) error
	BatchWriteItemWithContext(aws.Context, *dynamodb.BatchWriteItemInput, ...request.Option) (*dynamodb.BatchWriteItemOutput, error)
	DescribeTableWithContext(aws.Context, *dynamodb.DescribeTableInput, ...request.Option) (*dynamodb.DescribeTableOutput, error)
	CreateTableWithContext(aws.Context, *dynamodb.CreateTableInput, ...request.Option) (*dynamodb.CreateTableOutput, error)
}

// document is the stored shape of a vote.
type document struct {
	ID        string `dynamodbav:"id"`
	Email     string `dynamodbav:"email"`
	Name      string `dynamodbav:"name"`
	Vote      string `dynamodbav:"vote"`
	Timestamp string `dynamodbav:"timestamp"`
}

type Store struct {
	client API
	table  string
	// retryDelay is the pause before re-sending unprocessed deletes
	retryDelay time.Duration
}

// NewClient builds a DynamoDB client for region. A non-empty endpoint
// points it at DynamoDB Local or another compatible service.
func NewClient(region, endpoint string) (*dynamodb.DynamoDB, error) {
	cfg := aws.NewConfig().WithRegion(region)
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return dynamodb.New(sess), nil
}

func New(client API, table string) *Store {
	return &Store{client: client, table: table, retryDelay: 100 * time.Millisecond}
}

// EnsureTable creates the table (on-demand billing, hash key email) when it
// does not exist yet.
func (s *Store) EnsureTable(ctx context.Context) error {
	_, err := s.client.DescribeTableWithContext(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	})
	if err == nil {
		return nil
	}
	var aerr awserr.Error
	if !errors.As(err, &aerr) || aerr.Code() != dynamodb.ErrCodeResourceNotFoundException {
		return fmt.Errorf("describe table %s: %w", s.table, err)
	}

	logger.Info.Printf("dynamo: creating table %s", s.table)
	_, err = s.client.CreateTableWithContext(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(s.table),
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{AttributeName: aws.String("email"), AttributeType: aws.String(dynamodb.ScalarAttributeTypeS)},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{AttributeName: aws.String("email"), KeyType: aws.String(dynamodb.KeyTypeHash)},
		},
	})
	if err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func (s *Store) InsertVote(ctx context.Context, rec models.VoteRecord) (string, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	doc := document{
		ID:        uuid.NewString(),
		Email:     rec.Email,
		Name:      rec.Name,
		Vote:      rec.Vote,
		Timestamp: rec.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	item, err := dynamodbattribute.MarshalMap(doc)
	if err != nil {
		return "", fmt.Errorf("marshal vote: %w", err)
	}

	_, err = s.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(email)"),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException {
			return "", store.ErrDuplicateVote
		}
		return "", fmt.Errorf("put vote: %w", err)
	}
	return doc.ID, nil
}

func (s *Store) QueryByEmail(ctx context.Context, email string) ([]models.VoteRecord, error) {
	out, err := s.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		ConsistentRead: aws.Bool(true),
		Key: map[string]*dynamodb.AttributeValue{
			"email": {S: aws.String(email)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get vote: %w", err)
	}
	if len(out.Item) == 0 {
		return []models.VoteRecord{}, nil
	}
	rec, ok := decode(out.Item)
	if !ok {
		return []models.VoteRecord{}, nil
	}
	return []models.VoteRecord{rec}, nil
}

func (s *Store) ListAll(ctx context.Context) ([]models.VoteRecord, error) {
	recs := []models.VoteRecord{}
	err := s.client.ScanPagesWithContext(ctx, &dynamodb.ScanInput{
		TableName:      aws.String(s.table),
		ConsistentRead: aws.Bool(true),
	}, func(page *dynamodb.ScanOutput, _ bool) bool {
		for _, item := range page.Items {
			if rec, ok := decode(item); ok {
				recs = append(recs, rec)
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("scan votes: %w", err)
	}
	return recs, nil
}

// DeleteAll scans every key and deletes in batches of 25. DynamoDB offers
// no table-wide transaction, so votes written during the scan may survive.
func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	var keys []map[string]*dynamodb.AttributeValue
	err := s.client.ScanPagesWithContext(ctx, &dynamodb.ScanInput{
		TableName:            aws.String(s.table),
		ProjectionExpression: aws.String("email"),
		ConsistentRead:       aws.Bool(true),
	}, func(page *dynamodb.ScanOutput, _ bool) bool {
		for _, item := range page.Items {
			if v, ok := item["email"]; ok {
				keys = append(keys, map[string]*dynamodb.AttributeValue{"email": v})
			}
		}
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("scan keys: %w", err)
	}

	deleted := 0
	for start := 0; start < len(keys); start += batchLimit {
		end := min(start+batchLimit, len(keys))

		reqs := make([]*dynamodb.WriteRequest, 0, end-start)
		for _, k := range keys[start:end] {
			reqs = append(reqs, &dynamodb.WriteRequest{DeleteRequest: &dynamodb.DeleteRequest{Key: k}})
		}
		if err := s.writeBatch(ctx, reqs); err != nil {
			return deleted, err
		}
		deleted += len(reqs)
	}
	return deleted, nil
}

// writeBatch sends reqs and re-sends whatever DynamoDB reports as
// unprocessed, up to maxBatchRetries times.
func (s *Store) writeBatch(ctx context.Context, reqs []*dynamodb.WriteRequest) error {
	pending := map[string][]*dynamodb.WriteRequest{s.table: reqs}
	for attempt := 0; ; attempt++ {
		out, err := s.client.BatchWriteItemWithContext(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: pending,
		})
		if err != nil {
			return fmt.Errorf("batch delete: %w", err)
		}
		if len(out.UnprocessedItems[s.table]) == 0 {
			return nil
		}
		if attempt >= maxBatchRetries {
			return fmt.Errorf("batch delete: %d items left unprocessed", len(out.UnprocessedItems[s.table]))
		}
		logger.Warn.Printf("dynamo: re-sending %d unprocessed deletes (attempt %d)", len(out.UnprocessedItems[s.table]), attempt+1)
		pending = out.UnprocessedItems

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryDelay << attempt):
		}
	}
}

func (s *Store) Close() error { return nil }

// decode converts a stored item into a VoteRecord, quarantining items
// that cannot be read or lack email or vote.
func decode(item map[string]*dynamodb.AttributeValue) (models.VoteRecord, bool) {
	var doc document
	if err := dynamodbattribute.UnmarshalMap(item, &doc); err != nil {
		logger.Warn.Printf("dynamo: quarantined undecodable vote item: %v", err)
		return models.VoteRecord{}, false
	}
	rec := models.VoteRecord{
		ID:    doc.ID,
		Email: doc.Email,
		Name:  doc.Name,
		Vote:  doc.Vote,
	}
	if doc.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339Nano, doc.Timestamp)
		if err != nil {
			logger.Warn.Printf("dynamo: vote %s has unreadable timestamp %q", doc.ID, doc.Timestamp)
		}
		rec.Timestamp = ts
	}
	if !store.Valid(rec) {
		logger.Warn.Printf("dynamo: quarantined malformed vote item id=%s", doc.ID)
		return models.VoteRecord{}, false
	}
	return rec, true
}
