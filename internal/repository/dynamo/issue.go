// Package dynamo implements the issue repository against DynamoDB. It is the
// document-store alternative to the Postgres repository for single-table
// deployments.
package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/svsu-dev/samadhan/internal/domain"
)

// Single-table layout: all issues share one partition, sorted by a
// timestamp-prefixed key so a descending query yields newest-first.
const issuePartition = "ISSUE"

// timeLayout is fixed-width (nanoseconds always padded to nine digits) so
// lexical key order matches chronological order. RFC3339Nano trims trailing
// zeros and breaks that property.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type issueItem struct {
	PK            string `dynamodbav:"PK"`
	SK            string `dynamodbav:"SK"`
	ID            string `dynamodbav:"id"`
	ApplicantName string `dynamodbav:"applicant_name"`
	Email         string `dynamodbav:"email"`
	IssueText     string `dynamodbav:"issue_text"`
	Department    string `dynamodbav:"department"`
	Subject       string `dynamodbav:"subject"`
	Body          string `dynamodbav:"application_body"`
	CreatedAt     string `dynamodbav:"created_at"`
}

// IssueRepo implements issues.Repository against a DynamoDB table.
type IssueRepo struct {
	client    *dynamodb.Client
	tableName string
}

// NewIssueRepo creates a DynamoDB-backed issue repository.
func NewIssueRepo(ctx context.Context, tableName, region string) (*IssueRepo, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &IssueRepo{
		client:    dynamodb.NewFromConfig(cfg),
		tableName: tableName,
	}, nil
}

func (r *IssueRepo) Insert(ctx context.Context, rec domain.IssueRecord) error {
	item := issueItem{
		PK:            issuePartition,
		SK:            sortKey(rec.CreatedAt, rec.ID),
		ID:            rec.ID,
		ApplicantName: rec.ApplicantName,
		Email:         rec.Email,
		IssueText:     rec.IssueText,
		Department:    string(rec.Department),
		Subject:       rec.Subject,
		Body:          rec.Body,
		CreatedAt:     rec.CreatedAt.UTC().Format(timeLayout),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return &domain.PersistenceError{Op: "marshal issue", Err: err}
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return &domain.PersistenceError{Op: "insert issue", Err: err}
	}
	return nil
}

func (r *IssueRepo) ListRecent(ctx context.Context, limit int) ([]domain.IssueSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: issuePartition},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list recent issues", Err: err}
	}

	var items []issueItem
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
		return nil, &domain.PersistenceError{Op: "unmarshal issues", Err: err}
	}

	out := make([]domain.IssueSummary, 0, len(items))
	for _, it := range items {
		createdAt, err := time.Parse(timeLayout, it.CreatedAt)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "parse issue timestamp", Err: err}
		}
		out = append(out, domain.IssueSummary{
			Subject:    it.Subject,
			Department: domain.Department(it.Department),
			CreatedAt:  createdAt,
		})
	}
	return out, nil
}

// sortKey prefixes the sort key with the fixed-width timestamp so key order
// is chronological; the record ID breaks ties.
func sortKey(createdAt time.Time, id string) string {
	return createdAt.UTC().Format(timeLayout) + "#" + id
}
