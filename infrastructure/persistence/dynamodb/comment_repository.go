package dynamodb

import (
	"context"
	"sort"

	"ideaboard/domain/core/entities"
	pkgerrors "ideaboard/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// batchWriteMax is the DynamoDB BatchWriteItem request limit
const batchWriteMax = 25

// CommentRepository implements ports.CommentRepository using DynamoDB.
// Comments live under their idea's partition so cascade deletion is a
// single-partition query plus batched deletes.
type CommentRepository struct {
	client    *dynamodb.Client
	tableName string
	gsi1Name  string
	gsi2Name  string
	logger    *zap.Logger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(client *dynamodb.Client, tableName, gsi1Name, gsi2Name string, logger *zap.Logger) *CommentRepository {
	return &CommentRepository{
		client:    client,
		tableName: tableName,
		gsi1Name:  gsi1Name,
		gsi2Name:  gsi2Name,
		logger:    logger,
	}
}

type commentItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
	GSI2PK     string `dynamodbav:"GSI2PK"`
	GSI2SK     string `dynamodbav:"GSI2SK"`
	EntityType string `dynamodbav:"EntityType"`
	CommentID  string `dynamodbav:"CommentID"`
	IdeaID     string `dynamodbav:"IdeaID"`
	AuthorID   string `dynamodbav:"AuthorID"`
	Body       string `dynamodbav:"Body"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
}

func newCommentItem(comment *entities.Comment) commentItem {
	return commentItem{
		PK:         ideaPK(comment.IdeaID()),
		SK:         commentSK(comment.ID()),
		GSI1PK:     userCommentsKey(comment.AuthorID()),
		GSI1SK:     createdSortKey(comment.CreatedAt(), comment.ID()),
		GSI2PK:     commentKey(comment.ID()),
		GSI2SK:     skMetadata,
		EntityType: entityTypeComment,
		CommentID:  comment.ID(),
		IdeaID:     comment.IdeaID(),
		AuthorID:   comment.AuthorID(),
		Body:       comment.Body(),
		CreatedAt:  formatTime(comment.CreatedAt()),
	}
}

func (item commentItem) reconstruct() *entities.Comment {
	return entities.ReconstructComment(
		item.CommentID,
		item.IdeaID,
		item.AuthorID,
		item.Body,
		parseTime(item.CreatedAt),
	)
}

// reconstructCommentsByCreation rebuilds comments sorted oldest first,
// matching the insertion order the listing contract promises
func reconstructCommentsByCreation(items []commentItem) []*entities.Comment {
	sort.SliceStable(items, func(a, b int) bool {
		return parseTime(items[a].CreatedAt).Before(parseTime(items[b].CreatedAt))
	})

	comments := make([]*entities.Comment, 0, len(items))
	for _, item := range items {
		comments = append(comments, item.reconstruct())
	}
	return comments
}

// Save persists a comment. Comments are immutable, so no version check.
func (r *CommentRepository) Save(ctx context.Context, comment *entities.Comment) error {
	av, err := attributevalue.MarshalMap(newCommentItem(comment))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal comment", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("save comment", err)
	}

	return nil
}

// GetByID resolves a comment through the GSI2 comment-ID index
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*entities.Comment, error) {
	keyCond := expression.Key("GSI2PK").Equal(expression.Value(commentKey(id)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build comment lookup", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.gsi2Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get comment", err)
	}
	if len(out.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("comment")
	}

	var item commentItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal comment", err)
	}

	return item.reconstruct(), nil
}

// ListByIdea returns all comments on an idea, oldest first
func (r *CommentRepository) ListByIdea(ctx context.Context, ideaID string) ([]*entities.Comment, error) {
	items, err := r.queryIdeaComments(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	return reconstructCommentsByCreation(items), nil
}

// ListByUser returns all comments authored by a user via the GSI1
// user-comments index
func (r *CommentRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Comment, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(userCommentsKey(userID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build user comments query", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list user comments", err)
	}

	var items []commentItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal user comments", err)
	}

	return reconstructCommentsByCreation(items), nil
}

// Delete removes a single comment
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	comment, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: ideaPK(comment.IdeaID())},
			"SK": &types.AttributeValueMemberS{Value: commentSK(id)},
		},
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("delete comment", err)
	}

	return nil
}

// DeleteByIdea removes every comment under an idea's partition
func (r *CommentRepository) DeleteByIdea(ctx context.Context, ideaID string) error {
	items, err := r.queryIdeaComments(ctx, ideaID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	requests := make([]types.WriteRequest, 0, len(items))
	for _, item := range items {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: item.PK},
					"SK": &types.AttributeValueMemberS{Value: item.SK},
				},
			},
		})
	}

	for start := 0; start < len(requests); start += batchWriteMax {
		end := start + batchWriteMax
		if end > len(requests) {
			end = len(requests)
		}

		batch := requests[start:end]
		for len(batch) > 0 {
			out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{
					r.tableName: batch,
				},
			})
			if err != nil {
				return pkgerrors.NewDatabaseError("delete idea comments", err)
			}
			batch = out.UnprocessedItems[r.tableName]
		}
	}

	r.logger.Debug("cascade deleted comments",
		zap.String("ideaID", ideaID),
		zap.Int("count", len(items)),
	)
	return nil
}

func (r *CommentRepository) queryIdeaComments(ctx context.Context, ideaID string) ([]commentItem, error) {
	keyCond := expression.KeyAnd(
		expression.Key("PK").Equal(expression.Value(ideaPK(ideaID))),
		expression.Key("SK").BeginsWith("COMMENT#"),
	)
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build idea comments query", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list idea comments", err)
	}

	var items []commentItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal idea comments", err)
	}
	return items, nil
}
