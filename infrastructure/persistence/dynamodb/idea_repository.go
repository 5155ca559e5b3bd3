package dynamodb

import (
	"context"

	"ideaboard/application/ports"
	"ideaboard/domain/core/entities"
	pkgerrors "ideaboard/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// IdeaRepository implements ports.IdeaRepository using DynamoDB
type IdeaRepository struct {
	client    *dynamodb.Client
	tableName string
	gsi1Name  string
	gsi2Name  string
	logger    *zap.Logger
}

// NewIdeaRepository creates a new IdeaRepository
func NewIdeaRepository(client *dynamodb.Client, tableName, gsi1Name, gsi2Name string, logger *zap.Logger) *IdeaRepository {
	return &IdeaRepository{
		client:    client,
		tableName: tableName,
		gsi1Name:  gsi1Name,
		gsi2Name:  gsi2Name,
		logger:    logger,
	}
}

// ideaItem is the DynamoDB item structure for an idea aggregate. Votes
// are a single map keyed by voter ID; the attribute is never exposed on
// any read path outside the repository.
type ideaItem struct {
	PK          string            `dynamodbav:"PK"`
	SK          string            `dynamodbav:"SK"`
	GSI1PK      string            `dynamodbav:"GSI1PK"`
	GSI1SK      string            `dynamodbav:"GSI1SK"`
	GSI2PK      string            `dynamodbav:"GSI2PK"`
	GSI2SK      string            `dynamodbav:"GSI2SK"`
	EntityType  string            `dynamodbav:"EntityType"`
	IdeaID      string            `dynamodbav:"IdeaID"`
	AuthorID    string            `dynamodbav:"AuthorID"`
	Title       string            `dynamodbav:"Title"`
	Description string            `dynamodbav:"Description"`
	Votes       map[string]string `dynamodbav:"Votes"`
	CreatedAt   string            `dynamodbav:"CreatedAt"`
	UpdatedAt   string            `dynamodbav:"UpdatedAt"`
	Version     int               `dynamodbav:"Version"`
}

func newIdeaItem(idea *entities.Idea) ideaItem {
	votes := make(map[string]string)
	for voterID, direction := range idea.Votes() {
		votes[voterID] = string(direction)
	}

	return ideaItem{
		PK:          ideaPK(idea.ID()),
		SK:          skMetadata,
		GSI1PK:      entityTypeIdea,
		GSI1SK:      createdSortKey(idea.CreatedAt(), idea.ID()),
		GSI2PK:      authorKey(idea.AuthorID()),
		GSI2SK:      createdSortKey(idea.CreatedAt(), idea.ID()),
		EntityType:  entityTypeIdea,
		IdeaID:      idea.ID(),
		AuthorID:    idea.AuthorID(),
		Title:       idea.Title(),
		Description: idea.Description(),
		Votes:       votes,
		CreatedAt:   formatTime(idea.CreatedAt()),
		UpdatedAt:   formatTime(idea.UpdatedAt()),
		Version:     idea.Version(),
	}
}

func (item ideaItem) reconstruct() *entities.Idea {
	votes := make(map[string]entities.VoteDirection, len(item.Votes))
	for voterID, direction := range item.Votes {
		votes[voterID] = entities.VoteDirection(direction)
	}

	return entities.ReconstructIdea(
		item.IdeaID,
		item.AuthorID,
		item.Title,
		item.Description,
		votes,
		parseTime(item.CreatedAt),
		parseTime(item.UpdatedAt),
		item.Version,
	)
}

// Save persists an idea. The conditional write rejects any item whose
// stored version is not older than the one being written, which turns a
// lost read-modify-write race into a Conflict instead of silent overwrite.
func (r *IdeaRepository) Save(ctx context.Context, idea *entities.Idea) error {
	item := newIdeaItem(idea)

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal idea", err)
	}

	cond := expression.Or(
		expression.AttributeNotExists(expression.Name("PK")),
		expression.Name("Version").LessThan(expression.Value(item.Version)),
	)
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return pkgerrors.NewDatabaseError("build idea condition", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return pkgerrors.NewConflictError("idea was modified concurrently")
		}
		return pkgerrors.NewDatabaseError("save idea", err)
	}

	return nil
}

// GetByID retrieves an idea and, when requested, its author and comments
func (r *IdeaRepository) GetByID(ctx context.Context, id string, opts ports.IdeaLoadOptions) (*entities.Idea, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: ideaPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get idea", err)
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError("idea")
	}

	var item ideaItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal idea", err)
	}

	idea := item.reconstruct()

	if opts.WithAuthor {
		author, err := r.loadAuthor(ctx, item.AuthorID)
		if err != nil {
			return nil, err
		}
		idea.AttachAuthor(author)
	}

	if opts.WithComments {
		comments, err := r.loadComments(ctx, id)
		if err != nil {
			return nil, err
		}
		idea.AttachComments(comments)
	}

	return idea, nil
}

// List returns one page of ideas from the GSI1 listing index
func (r *IdeaRepository) List(ctx context.Context, page int, newestFirst bool) ([]*entities.Idea, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(entityTypeIdea))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build idea list query", err)
	}

	// GSI1SK sorts by creation time, so forward scan gives storage order
	// and reverse scan gives newest first.
	scanForward := !newestFirst

	skip := (page - 1) * ports.ListPageSize
	items := make([]ideaItem, 0, ports.ListPageSize)

	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.gsi1Name),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ScanIndexForward:          aws.Bool(scanForward),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("list ideas", err)
		}

		var pageItems []ideaItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &pageItems); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal ideas", err)
		}

		for _, item := range pageItems {
			if skip > 0 {
				skip--
				continue
			}
			if len(items) < ports.ListPageSize {
				items = append(items, item)
			}
		}

		if len(items) >= ports.ListPageSize || out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	ideas := make([]*entities.Idea, 0, len(items))
	authors := make(map[string]*entities.User)
	for _, item := range items {
		idea := item.reconstruct()

		author, ok := authors[item.AuthorID]
		if !ok {
			author, err = r.loadAuthor(ctx, item.AuthorID)
			if err != nil {
				return nil, err
			}
			authors[item.AuthorID] = author
		}
		idea.AttachAuthor(author)

		ideas = append(ideas, idea)
	}
	return ideas, nil
}

// Delete removes an idea aggregate
func (r *IdeaRepository) Delete(ctx context.Context, id string) error {
	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return pkgerrors.NewDatabaseError("build idea delete condition", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: ideaPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return pkgerrors.NewNotFoundError("idea")
		}
		return pkgerrors.NewDatabaseError("delete idea", err)
	}

	return nil
}

func (r *IdeaRepository) loadAuthor(ctx context.Context, authorID string) (*entities.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(authorID)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get idea author", err)
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError("user")
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal idea author", err)
	}
	return item.reconstruct(), nil
}

func (r *IdeaRepository) loadComments(ctx context.Context, ideaID string) ([]*entities.Comment, error) {
	keyCond := expression.KeyAnd(
		expression.Key("PK").Equal(expression.Value(ideaPK(ideaID))),
		expression.Key("SK").BeginsWith("COMMENT#"),
	)
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build comment query", err)
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

	return reconstructCommentsByCreation(items), nil
}
