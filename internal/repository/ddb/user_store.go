package ddb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/domain/user"
)

type userItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	GSI1PK       string `dynamodbav:"GSI1PK"`
	GSI1SK       string `dynamodbav:"GSI1SK"`
	EntityType   string `dynamodbav:"EntityType"`
	UserID       string `dynamodbav:"UserID"`
	Username     string `dynamodbav:"Username"`
	Email        string `dynamodbav:"Email"`
	PasswordHash string `dynamodbav:"PasswordHash"`
	Bio          string `dynamodbav:"Bio,omitempty"`
	IsAdmin      bool   `dynamodbav:"IsAdmin"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
	UpdatedAt    string `dynamodbav:"UpdatedAt"`
	Version      int    `dynamodbav:"Version"`
}

func toUserItem(u *user.User) userItem {
	return userItem{
		PK:           userPK(u.ID.String()),
		SK:           skProfile,
		GSI1PK:       emailPK(u.Email),
		GSI1SK:       skProfile,
		EntityType:   "USER",
		UserID:       u.ID.String(),
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Bio:          u.Bio,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    u.UpdatedAt.Format(time.RFC3339Nano),
		Version:      u.Version.Int(),
	}
}

func (item userItem) toDomain() (*user.User, error) {
	id, err := shared.ParseUserID(item.UserID)
	if err != nil {
		return nil, err
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	return &user.User{
		ID:           id,
		Username:     item.Username,
		Email:        item.Email,
		PasswordHash: item.PasswordHash,
		Bio:          item.Bio,
		IsAdmin:      item.IsAdmin,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		Version:      shared.ParseVersion(item.Version),
	}, nil
}

// emailClaimItem reserves an email address. Writing it transactionally with
// the profile makes email uniqueness a hard guarantee, not a racy check.
type emailClaimItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	UserID     string `dynamodbav:"UserID"`
}

// CreateUser inserts the profile and claims the email in one transaction.
func (r *Repository) CreateUser(ctx context.Context, u *user.User) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	profileAV, err := attributevalue.MarshalMap(toUserItem(u))
	if err != nil {
		return wrapStoreError(err, "CreateUser")
	}
	claimAV, err := attributevalue.MarshalMap(emailClaimItem{
		PK:         emailPK(u.Email),
		SK:         "CLAIM",
		EntityType: "EMAIL_CLAIM",
		UserID:     u.ID.String(),
	})
	if err != nil {
		return wrapStoreError(err, "CreateUser")
	}

	_, err = execute(r, func() (*dynamodb.TransactWriteItemsOutput, error) {
		return r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				{Put: &types.Put{
					TableName:           aws.String(r.tableName),
					Item:                profileAV,
					ConditionExpression: aws.String("attribute_not_exists(PK)"),
				}},
				{Put: &types.Put{
					TableName:           aws.String(r.tableName),
					Item:                claimAV,
					ConditionExpression: aws.String("attribute_not_exists(PK)"),
				}},
			},
		})
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return shared.ErrEmailTaken
		}
		return wrapStoreError(err, "CreateUser")
	}
	return nil
}

// UpdateUser saves the profile. Email changes are not supported, so the
// claim row never moves.
func (r *Repository) UpdateUser(ctx context.Context, u *user.User) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(toUserItem(u))
	if err != nil {
		return wrapStoreError(err, "UpdateUser")
	}

	_, err = execute(r, func() (*dynamodb.PutItemOutput, error) {
		return r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.tableName),
			Item:                av,
			ConditionExpression: aws.String("attribute_exists(PK)"),
		})
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return shared.ErrUserNotFound
		}
		return wrapStoreError(err, "UpdateUser")
	}
	return nil
}

// FindUserByID fetches one profile.
func (r *Repository) FindUserByID(ctx context.Context, id shared.UserID) (*user.User, error) {
	if err := ctxCheck(ctx); err != nil {
		return nil, err
	}

	out, err := execute(r, func() (*dynamodb.GetItemOutput, error) {
		return r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: userPK(id.String())},
				"SK": &types.AttributeValueMemberS{Value: skProfile},
			},
		})
	})
	if err != nil {
		return nil, wrapStoreError(err, "FindUserByID")
	}
	if out.Item == nil {
		return nil, shared.ErrUserNotFound
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, wrapStoreError(err, "FindUserByID")
	}
	return item.toDomain()
}

// FindUserByEmail resolves a login identifier through GSI1.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	if err := ctxCheck(ctx); err != nil {
		return nil, err
	}

	keyCond := expression.KeyAnd(
		expression.Key("GSI1PK").Equal(expression.Value(emailPK(email))),
		expression.Key("GSI1SK").Equal(expression.Value(skProfile)),
	)
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, wrapStoreError(err, "FindUserByEmail")
	}

	out, err := execute(r, func() (*dynamodb.QueryOutput, error) {
		return r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(gsi1),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			Limit:                     aws.Int32(1),
		})
	})
	if err != nil {
		return nil, wrapStoreError(err, "FindUserByEmail")
	}
	if len(out.Items) == 0 {
		return nil, shared.ErrUserNotFound
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, wrapStoreError(err, "FindUserByEmail")
	}
	return item.toDomain()
}

type followItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
	EntityType string `dynamodbav:"EntityType"`
	FollowerID string `dynamodbav:"FollowerID"`
	FolloweeID string `dynamodbav:"FolloweeID"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
}

// CreateFollow writes the edge. Re-following is a no-op overwrite.
func (r *Repository) CreateFollow(ctx context.Context, f *user.Follow) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	item := followItem{
		PK:         userPK(f.FollowerID.String()),
		SK:         followSK(f.FolloweeID.String()),
		GSI1PK:     userPK(f.FolloweeID.String()),
		GSI1SK:     "FOLLOWER#" + f.FollowerID.String(),
		EntityType: "FOLLOW",
		FollowerID: f.FollowerID.String(),
		FolloweeID: f.FolloweeID.String(),
		CreatedAt:  f.CreatedAt.Format(time.RFC3339Nano),
	}
	return r.putItem(ctx, item, "CreateFollow")
}

// DeleteFollow removes the edge, failing if it does not exist.
func (r *Repository) DeleteFollow(ctx context.Context, follower, followee shared.UserID) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	_, err := execute(r, func() (*dynamodb.DeleteItemOutput, error) {
		return r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: userPK(follower.String())},
				"SK": &types.AttributeValueMemberS{Value: followSK(followee.String())},
			},
			ConditionExpression: aws.String("attribute_exists(PK)"),
		})
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return shared.ErrUserNotFound
		}
		return wrapStoreError(err, "DeleteFollow")
	}
	return nil
}

// CountFollowers counts edges pointing at a user via GSI1.
func (r *Repository) CountFollowers(ctx context.Context, id shared.UserID) (int, error) {
	return r.countQuery(ctx, &countSpec{
		index:    gsi1,
		pkName:   "GSI1PK",
		pkValue:  userPK(id.String()),
		skName:   "GSI1SK",
		skPrefix: "FOLLOWER#",
	}, "CountFollowers")
}

// CountFollowing counts a user's outgoing edges.
func (r *Repository) CountFollowing(ctx context.Context, id shared.UserID) (int, error) {
	return r.countQuery(ctx, &countSpec{
		pkName:   "PK",
		pkValue:  userPK(id.String()),
		skName:   "SK",
		skPrefix: "FOLLOWS#",
	}, "CountFollowing")
}

// IsFollowing checks a single edge.
func (r *Repository) IsFollowing(ctx context.Context, follower, followee shared.UserID) (bool, error) {
	if err := ctxCheck(ctx); err != nil {
		return false, err
	}

	out, err := execute(r, func() (*dynamodb.GetItemOutput, error) {
		return r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: userPK(follower.String())},
				"SK": &types.AttributeValueMemberS{Value: followSK(followee.String())},
			},
		})
	})
	if err != nil {
		return false, wrapStoreError(err, "IsFollowing")
	}
	return out.Item != nil, nil
}

type countSpec struct {
	index    string
	pkName   string
	pkValue  string
	skName   string
	skPrefix string
}

// countQuery runs a Select=COUNT query over a key prefix.
func (r *Repository) countQuery(ctx context.Context, spec *countSpec, operation string) (int, error) {
	if err := ctxCheck(ctx); err != nil {
		return 0, err
	}

	keyCond := expression.KeyAnd(
		expression.Key(spec.pkName).Equal(expression.Value(spec.pkValue)),
		expression.Key(spec.skName).BeginsWith(spec.skPrefix),
	)
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return 0, wrapStoreError(err, operation)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Select:                    types.SelectCount,
	}
	if spec.index != "" {
		input.IndexName = aws.String(spec.index)
	}

	total := 0
	for {
		out, err := execute(r, func() (*dynamodb.QueryOutput, error) {
			return r.client.Query(ctx, input)
		})
		if err != nil {
			return 0, wrapStoreError(err, operation)
		}
		total += int(out.Count)
		if out.LastEvaluatedKey == nil {
			return total, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
