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

// UserRepository implements ports.UserRepository using DynamoDB
type UserRepository struct {
	client    *dynamodb.Client
	tableName string
	gsi1Name  string
	gsi2Name  string
	logger    *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client *dynamodb.Client, tableName, gsi1Name, gsi2Name string, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
		gsi1Name:  gsi1Name,
		gsi2Name:  gsi2Name,
		logger:    logger,
	}
}

type userItem struct {
	PK           string   `dynamodbav:"PK"`
	SK           string   `dynamodbav:"SK"`
	GSI1PK       string   `dynamodbav:"GSI1PK"`
	GSI1SK       string   `dynamodbav:"GSI1SK"`
	EntityType   string   `dynamodbav:"EntityType"`
	UserID       string   `dynamodbav:"UserID"`
	Username     string   `dynamodbav:"Username"`
	PasswordHash string   `dynamodbav:"PasswordHash"`
	Bookmarks    []string `dynamodbav:"Bookmarks"`
	CreatedAt    string   `dynamodbav:"CreatedAt"`
	Version      int      `dynamodbav:"Version"`
}

func newUserItem(user *entities.User) userItem {
	return userItem{
		PK:           userPK(user.ID()),
		SK:           skMetadata,
		GSI1PK:       usernameKey(user.Username()),
		GSI1SK:       skMetadata,
		EntityType:   entityTypeUser,
		UserID:       user.ID(),
		Username:     user.Username(),
		PasswordHash: user.PasswordHash(),
		Bookmarks:    user.Bookmarks(),
		CreatedAt:    formatTime(user.CreatedAt()),
		Version:      user.Version(),
	}
}

// usernameClaimItem marks a username as taken. It is written in the same
// transaction as the user item on first save, so two concurrent
// registrations of one username cannot both succeed.
type usernameClaimItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	UserID     string `dynamodbav:"UserID"`
}

func newUsernameClaimItem(user *entities.User) usernameClaimItem {
	return usernameClaimItem{
		PK:         usernameKey(user.Username()),
		SK:         skMetadata,
		EntityType: entityTypeUsernameClaim,
		UserID:     user.ID(),
	}
}

func (item userItem) reconstruct() *entities.User {
	return entities.ReconstructUser(
		item.UserID,
		item.Username,
		item.PasswordHash,
		item.Bookmarks,
		parseTime(item.CreatedAt),
		item.Version,
	)
}

// Save persists a user with the same conditional version write the idea
// repository uses, so concurrent bookmark toggles on one account cannot
// overwrite each other. A first save goes through create instead, which
// also claims the username.
func (r *UserRepository) Save(ctx context.Context, user *entities.User) error {
	item := newUserItem(user)

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal user", err)
	}

	if user.Version() == 1 {
		return r.create(ctx, user, av)
	}

	cond := expression.Or(
		expression.AttributeNotExists(expression.Name("PK")),
		expression.Name("Version").LessThan(expression.Value(item.Version)),
	)
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return pkgerrors.NewDatabaseError("build user condition", err)
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
			return pkgerrors.NewConflictError("user was modified concurrently")
		}
		return pkgerrors.NewDatabaseError("save user", err)
	}

	return nil
}

// create writes the user item and a username claim item in one
// transaction. The claim's existence condition is what enforces username
// uniqueness under concurrent registration; the service-level lookup only
// catches the sequential case.
func (r *UserRepository) create(ctx context.Context, user *entities.User, av map[string]types.AttributeValue) error {
	claimAv, err := attributevalue.MarshalMap(newUsernameClaimItem(user))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal username claim", err)
	}

	cond := expression.AttributeNotExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return pkgerrors.NewDatabaseError("build create condition", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     av,
				ConditionExpression:      expr.Condition(),
				ExpressionAttributeNames: expr.Names(),
			}},
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     claimAv,
				ConditionExpression:      expr.Condition(),
				ExpressionAttributeNames: expr.Names(),
			}},
		},
	})
	if err != nil {
		if isTransactionCanceled(err) {
			return pkgerrors.NewConflictError("Username already taken")
		}
		return pkgerrors.NewDatabaseError("create user", err)
	}

	return nil
}

// GetByID retrieves a user and, when requested, their authored ideas
func (r *UserRepository) GetByID(ctx context.Context, id string, opts ports.UserLoadOptions) (*entities.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get user", err)
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError("user")
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal user", err)
	}

	user := item.reconstruct()

	if opts.WithIdeas {
		ideas, err := r.loadIdeas(ctx, id)
		if err != nil {
			return nil, err
		}
		user.AttachIdeas(ideas)
	}

	return user, nil
}

// GetByUsername resolves a user through the GSI1 username index
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(usernameKey(username)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build username query", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get user by username", err)
	}
	if len(out.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("user")
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal user", err)
	}

	return item.reconstruct(), nil
}

// List retrieves all users via a filtered scan. The user listing is an
// admin-ish full view, so the scan cost is accepted here.
func (r *UserRepository) List(ctx context.Context, opts ports.UserLoadOptions) ([]*entities.User, error) {
	filter := expression.Name("EntityType").Equal(expression.Value(entityTypeUser))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build user list filter", err)
	}

	var items []userItem
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("list users", err)
		}

		var pageItems []userItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &pageItems); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal users", err)
		}
		items = append(items, pageItems...)

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	users := make([]*entities.User, 0, len(items))
	for _, item := range items {
		user := item.reconstruct()
		if opts.WithIdeas {
			ideas, err := r.loadIdeas(ctx, item.UserID)
			if err != nil {
				return nil, err
			}
			user.AttachIdeas(ideas)
		}
		users = append(users, user)
	}
	return users, nil
}

// loadIdeas queries the GSI2 author index for all ideas a user authored
func (r *UserRepository) loadIdeas(ctx context.Context, userID string) ([]*entities.Idea, error) {
	keyCond := expression.Key("GSI2PK").Equal(expression.Value(authorKey(userID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build author query", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.gsi2Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list user ideas", err)
	}

	var items []ideaItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal user ideas", err)
	}

	ideas := make([]*entities.Idea, 0, len(items))
	for _, item := range items {
		ideas = append(ideas, item.reconstruct())
	}
	return ideas, nil
}
