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
	"pcforge-backend/internal/domain/social"
)

type likeItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	UserID     string `dynamodbav:"UserID"`
	BuildID    string `dynamodbav:"BuildID"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
}

// CreateLike writes the like, rejecting duplicates.
func (r *Repository) CreateLike(ctx context.Context, l *social.Like) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(likeItem{
		PK:         buildGSI1PK(l.BuildID.String()),
		SK:         likeSK(l.UserID.String()),
		EntityType: "LIKE",
		UserID:     l.UserID.String(),
		BuildID:    l.BuildID.String(),
		CreatedAt:  l.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return wrapStoreError(err, "CreateLike")
	}

	_, err = execute(r, func() (*dynamodb.PutItemOutput, error) {
		return r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.tableName),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
		})
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return shared.ErrAlreadyLiked
		}
		return wrapStoreError(err, "CreateLike")
	}
	return nil
}

// DeleteLike removes the like, failing when it never existed.
func (r *Repository) DeleteLike(ctx context.Context, userID shared.UserID, buildID shared.BuildID) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	_, err := execute(r, func() (*dynamodb.DeleteItemOutput, error) {
		return r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: buildGSI1PK(buildID.String())},
				"SK": &types.AttributeValueMemberS{Value: likeSK(userID.String())},
			},
			ConditionExpression: aws.String("attribute_exists(PK)"),
		})
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return shared.ErrLikeNotFound
		}
		return wrapStoreError(err, "DeleteLike")
	}
	return nil
}

// CountLikes counts the like rows for a build.
func (r *Repository) CountLikes(ctx context.Context, buildID shared.BuildID) (int, error) {
	return r.countQuery(ctx, &countSpec{
		pkName:   "PK",
		pkValue:  buildGSI1PK(buildID.String()),
		skName:   "SK",
		skPrefix: "LIKE#",
	}, "CountLikes")
}

// HasLiked checks for one like row.
func (r *Repository) HasLiked(ctx context.Context, userID shared.UserID, buildID shared.BuildID) (bool, error) {
	if err := ctxCheck(ctx); err != nil {
		return false, err
	}

	out, err := execute(r, func() (*dynamodb.GetItemOutput, error) {
		return r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: buildGSI1PK(buildID.String())},
				"SK": &types.AttributeValueMemberS{Value: likeSK(userID.String())},
			},
		})
	})
	if err != nil {
		return false, wrapStoreError(err, "HasLiked")
	}
	return out.Item != nil, nil
}

type commentItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
	EntityType string `dynamodbav:"EntityType"`
	CommentID  string `dynamodbav:"CommentID"`
	UserID     string `dynamodbav:"UserID"`
	BuildID    string `dynamodbav:"BuildID"`
	Content    string `dynamodbav:"Content"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

func toCommentItem(c *social.Comment) commentItem {
	return commentItem{
		PK:         buildGSI1PK(c.BuildID.String()),
		SK:         tsID("COMMENT", c.CreatedAt, c.ID),
		GSI1PK:     "COMMENT#" + c.ID,
		GSI1SK:     skMetadata,
		EntityType: "COMMENT",
		CommentID:  c.ID,
		UserID:     c.UserID.String(),
		BuildID:    c.BuildID.String(),
		Content:    c.Content,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:  c.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (item commentItem) toDomain() (*social.Comment, error) {
	userID, err := shared.ParseUserID(item.UserID)
	if err != nil {
		return nil, err
	}
	buildID, err := shared.ParseBuildID(item.BuildID)
	if err != nil {
		return nil, err
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	return &social.Comment{
		ID:        item.CommentID,
		UserID:    userID,
		BuildID:   buildID,
		Content:   item.Content,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// CreateComment stores a new comment.
func (r *Repository) CreateComment(ctx context.Context, c *social.Comment) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}
	return r.putItem(ctx, toCommentItem(c), "CreateComment")
}

// UpdateComment saves an edited comment in place.
func (r *Repository) UpdateComment(ctx context.Context, c *social.Comment) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(toCommentItem(c))
	if err != nil {
		return wrapStoreError(err, "UpdateComment")
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
			return shared.ErrCommentNotFound
		}
		return wrapStoreError(err, "UpdateComment")
	}
	return nil
}

// DeleteComment removes a comment by ID.
func (r *Repository) DeleteComment(ctx context.Context, commentID string) error {
	c, err := r.FindCommentByID(ctx, commentID)
	if err != nil {
		return err
	}

	_, err = execute(r, func() (*dynamodb.DeleteItemOutput, error) {
		return r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: buildGSI1PK(c.BuildID.String())},
				"SK": &types.AttributeValueMemberS{Value: tsID("COMMENT", c.CreatedAt, c.ID)},
			},
		})
	})
	if err != nil {
		return wrapStoreError(err, "DeleteComment")
	}
	return nil
}

// FindCommentByID looks a comment up through GSI1.
func (r *Repository) FindCommentByID(ctx context.Context, commentID string) (*social.Comment, error) {
	if err := ctxCheck(ctx); err != nil {
		return nil, err
	}

	keyCond := expression.KeyAnd(
		expression.Key("GSI1PK").Equal(expression.Value("COMMENT#"+commentID)),
		expression.Key("GSI1SK").Equal(expression.Value(skMetadata)),
	)
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, wrapStoreError(err, "FindCommentByID")
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
		return nil, wrapStoreError(err, "FindCommentByID")
	}
	if len(out.Items) == 0 {
		return nil, shared.ErrCommentNotFound
	}

	var item commentItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, wrapStoreError(err, "FindCommentByID")
	}
	return item.toDomain()
}

// ListComments lists a build's comments, newest first.
func (r *Repository) ListComments(ctx context.Context, buildID shared.BuildID) ([]*social.Comment, error) {
	if err := ctxCheck(ctx); err != nil {
		return nil, err
	}

	keyCond := expression.KeyAnd(
		expression.Key("PK").Equal(expression.Value(buildGSI1PK(buildID.String()))),
		expression.Key("SK").BeginsWith("COMMENT#"),
	)
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, wrapStoreError(err, "ListComments")
	}

	raw, err := r.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	})
	if err != nil {
		return nil, wrapStoreError(err, "ListComments")
	}

	comments := make([]*social.Comment, 0, len(raw))
	for _, m := range raw {
		var item commentItem
		if err := attributevalue.UnmarshalMap(m, &item); err != nil {
			return nil, wrapStoreError(err, "ListComments")
		}
		c, err := item.toDomain()
		if err != nil {
			continue
		}
		comments = append(comments, c)
	}
	return comments, nil
}

type notificationItem struct {
	PK             string `dynamodbav:"PK"`
	SK             string `dynamodbav:"SK"`
	EntityType     string `dynamodbav:"EntityType"`
	NotificationID string `dynamodbav:"NotificationID"`
	RecipientID    string `dynamodbav:"RecipientID"`
	SenderID       string `dynamodbav:"SenderID"`
	Type           string `dynamodbav:"Type"`
	BuildID        string `dynamodbav:"BuildID,omitempty"`
	Content        string `dynamodbav:"Content"`
	IsRead         bool   `dynamodbav:"IsRead"`
	CreatedAt      string `dynamodbav:"CreatedAt"`
}

// CreateNotification appends an inbox row.
func (r *Repository) CreateNotification(ctx context.Context, n *social.Notification) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	item := notificationItem{
		PK:             userPK(n.Recipient.String()),
		SK:             tsID("NOTIF", n.CreatedAt, n.ID),
		EntityType:     "NOTIFICATION",
		NotificationID: n.ID,
		RecipientID:    n.Recipient.String(),
		SenderID:       n.Sender.String(),
		Type:           string(n.Type),
		Content:        n.Content,
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt.Format(time.RFC3339Nano),
	}
	if n.BuildID != nil {
		item.BuildID = n.BuildID.String()
	}
	return r.putItem(ctx, item, "CreateNotification")
}

// ListNotifications lists a recipient's inbox, newest first.
func (r *Repository) ListNotifications(ctx context.Context, recipient shared.UserID, unreadOnly bool) ([]*social.Notification, error) {
	if err := ctxCheck(ctx); err != nil {
		return nil, err
	}

	keyCond := expression.KeyAnd(
		expression.Key("PK").Equal(expression.Value(userPK(recipient.String()))),
		expression.Key("SK").BeginsWith("NOTIF#"),
	)
	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if unreadOnly {
		builder = builder.WithFilter(expression.Name("IsRead").Equal(expression.Value(false)))
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, wrapStoreError(err, "ListNotifications")
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}
	if unreadOnly {
		input.FilterExpression = expr.Filter()
	}

	raw, err := r.queryAll(ctx, input)
	if err != nil {
		return nil, wrapStoreError(err, "ListNotifications")
	}

	notifications := make([]*social.Notification, 0, len(raw))
	for _, m := range raw {
		var item notificationItem
		if err := attributevalue.UnmarshalMap(m, &item); err != nil {
			return nil, wrapStoreError(err, "ListNotifications")
		}
		n, err := item.toDomain()
		if err != nil {
			continue
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func (item notificationItem) toDomain() (*social.Notification, error) {
	recipient, err := shared.ParseUserID(item.RecipientID)
	if err != nil {
		return nil, err
	}
	sender, err := shared.ParseUserID(item.SenderID)
	if err != nil {
		return nil, err
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)

	n := &social.Notification{
		ID:        item.NotificationID,
		Recipient: recipient,
		Sender:    sender,
		Type:      social.NotificationType(item.Type),
		Content:   item.Content,
		IsRead:    item.IsRead,
		CreatedAt: createdAt,
	}
	if item.BuildID != "" {
		buildID, err := shared.ParseBuildID(item.BuildID)
		if err == nil {
			n.BuildID = &buildID
		}
	}
	return n, nil
}

// MarkNotificationRead flips the read flag on one inbox row. The row is
// located by scanning the recipient's partition for the notification ID.
func (r *Repository) MarkNotificationRead(ctx context.Context, recipient shared.UserID, notificationID string) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	keyCond := expression.KeyAnd(
		expression.Key("PK").Equal(expression.Value(userPK(recipient.String()))),
		expression.Key("SK").BeginsWith("NOTIF#"),
	)
	filter := expression.Name("NotificationID").Equal(expression.Value(notificationID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return wrapStoreError(err, "MarkNotificationRead")
	}

	raw, err := r.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return wrapStoreError(err, "MarkNotificationRead")
	}
	if len(raw) == 0 {
		return shared.ErrValidation
	}

	var item notificationItem
	if err := attributevalue.UnmarshalMap(raw[0], &item); err != nil {
		return wrapStoreError(err, "MarkNotificationRead")
	}

	update := expression.Set(expression.Name("IsRead"), expression.Value(true))
	updateExpr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return wrapStoreError(err, "MarkNotificationRead")
	}

	_, err = execute(r, func() (*dynamodb.UpdateItemOutput, error) {
		return r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: item.PK},
				"SK": &types.AttributeValueMemberS{Value: item.SK},
			},
			UpdateExpression:          updateExpr.Update(),
			ExpressionAttributeNames:  updateExpr.Names(),
			ExpressionAttributeValues: updateExpr.Values(),
		})
	})
	if err != nil {
		return wrapStoreError(err, "MarkNotificationRead")
	}
	return nil
}
