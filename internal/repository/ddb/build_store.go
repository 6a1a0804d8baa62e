package ddb

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"pcforge-backend/internal/domain/build"
	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/repository"
)

// selectionItem stores a component reference with its quantity and the price
// snapshot. The component itself is resolved from the catalog on read so a
// build never carries stale catalog data.
type selectionItem struct {
	ComponentID    string `dynamodbav:"ComponentID"`
	Quantity       int    `dynamodbav:"Quantity"`
	UnitPriceCents int64  `dynamodbav:"UnitPriceCents"`
}

type buildItem struct {
	PK          string          `dynamodbav:"PK"`
	SK          string          `dynamodbav:"SK"`
	GSI1PK      string          `dynamodbav:"GSI1PK"`
	GSI1SK      string          `dynamodbav:"GSI1SK"`
	GSI2PK      string          `dynamodbav:"GSI2PK,omitempty"`
	GSI2SK      string          `dynamodbav:"GSI2SK,omitempty"`
	EntityType  string          `dynamodbav:"EntityType"`
	BuildID     string          `dynamodbav:"BuildID"`
	UserID      string          `dynamodbav:"UserID"`
	Name        string          `dynamodbav:"Name"`
	Description string          `dynamodbav:"Description"`
	Selections  []selectionItem `dynamodbav:"Selections"`
	IsPublic    bool            `dynamodbav:"IsPublic"`
	ShareToken  string          `dynamodbav:"ShareToken,omitempty"`
	ViewCount   int             `dynamodbav:"ViewCount"`
	CreatedAt   string          `dynamodbav:"CreatedAt"`
	UpdatedAt   string          `dynamodbav:"UpdatedAt"`
	Version     int             `dynamodbav:"Version"`
}

func toBuildItem(b *build.Build) buildItem {
	selections := make([]selectionItem, 0, len(b.Selections))
	for _, s := range b.Selections {
		selections = append(selections, selectionItem{
			ComponentID:    s.Component.ID.String(),
			Quantity:       s.Quantity,
			UnitPriceCents: s.UnitPrice.Cents(),
		})
	}

	item := buildItem{
		PK:          userPK(b.UserID.String()),
		SK:          buildSK(b.ID.String()),
		GSI1PK:      buildGSI1PK(b.ID.String()),
		GSI1SK:      skMetadata,
		EntityType:  "BUILD",
		BuildID:     b.ID.String(),
		UserID:      b.UserID.String(),
		Name:        b.Name,
		Description: b.Description,
		Selections:  selections,
		IsPublic:    b.IsPublic,
		ShareToken:  b.ShareToken,
		ViewCount:   b.ViewCount,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   b.UpdatedAt.Format(time.RFC3339Nano),
		Version:     b.Version.Int(),
	}

	// GSI2 serves the public feed; the share token gets its own pointer
	// row (see shareTokenItem) so both lookups stay index-backed.
	if b.IsPublic {
		item.GSI2PK = gsi2Public
		item.GSI2SK = tsID("BUILD", b.CreatedAt, b.ID.String())
	}
	return item
}

// shareTokenItem is a pointer row from a share token to its build, written
// alongside the build the first time a token is issued.
type shareTokenItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	BuildID    string `dynamodbav:"BuildID"`
	UserID     string `dynamodbav:"UserID"`
}

// toDomain reconstructs a build, resolving each selection against the
// catalog. Selections whose component has been deleted from the catalog are
// dropped with a warning rather than failing the whole build.
func (r *Repository) buildFromItem(ctx context.Context, item buildItem) (*build.Build, error) {
	buildID, err := shared.ParseBuildID(item.BuildID)
	if err != nil {
		return nil, err
	}
	userID, err := shared.ParseUserID(item.UserID)
	if err != nil {
		return nil, err
	}

	selections := make([]build.Selection, 0, len(item.Selections))
	for _, s := range item.Selections {
		componentID, err := shared.ParseComponentID(s.ComponentID)
		if err != nil {
			return nil, err
		}
		c, err := r.FindComponentByID(ctx, componentID)
		if err != nil {
			if shared.IsNotFoundError(err) {
				r.logger.Warn("dropping selection with missing component",
					zap.String("buildId", item.BuildID),
					zap.String("componentId", s.ComponentID),
				)
				continue
			}
			return nil, err
		}
		unitPrice, err := shared.NewMoney(s.UnitPriceCents)
		if err != nil {
			return nil, err
		}
		selections = append(selections, build.Selection{
			Component: c,
			Quantity:  s.Quantity,
			UnitPrice: unitPrice,
		})
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)

	return &build.Build{
		ID:          buildID,
		UserID:      userID,
		Name:        item.Name,
		Description: item.Description,
		Selections:  selections,
		IsPublic:    item.IsPublic,
		ShareToken:  item.ShareToken,
		ViewCount:   item.ViewCount,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Version:     shared.ParseVersion(item.Version),
	}, nil
}

// CreateBuild inserts a new build.
func (r *Repository) CreateBuild(ctx context.Context, b *build.Build) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(toBuildItem(b))
	if err != nil {
		return wrapStoreError(err, "CreateBuild")
	}

	_, err = execute(r, func() (*dynamodb.PutItemOutput, error) {
		return r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.tableName),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
		})
	})
	if err != nil {
		return wrapStoreError(err, "CreateBuild")
	}
	return nil
}

// UpdateBuild saves a build guarded by optimistic locking: the write only
// lands when the stored version still equals expectedVersion. When a share
// token was just issued, its pointer row is written in the same transaction.
func (r *Repository) UpdateBuild(ctx context.Context, b *build.Build, expectedVersion int) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(toBuildItem(b))
	if err != nil {
		return wrapStoreError(err, "UpdateBuild")
	}

	cond := expression.And(
		expression.AttributeExists(expression.Name("PK")),
		expression.Name("Version").Equal(expression.Value(expectedVersion)),
	)
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return wrapStoreError(err, "UpdateBuild")
	}

	writeItems := []types.TransactWriteItem{{
		Put: &types.Put{
			TableName:                 aws.String(r.tableName),
			Item:                      av,
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		},
	}}

	if b.ShareToken != "" {
		tokenAV, err := attributevalue.MarshalMap(shareTokenItem{
			PK:         sharePK(b.ShareToken),
			SK:         skMetadata,
			EntityType: "SHARE_TOKEN",
			BuildID:    b.ID.String(),
			UserID:     b.UserID.String(),
		})
		if err != nil {
			return wrapStoreError(err, "UpdateBuild")
		}
		writeItems = append(writeItems, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(r.tableName),
				Item:      tokenAV,
			},
		})
	}

	_, err = execute(r, func() (*dynamodb.TransactWriteItemsOutput, error) {
		return r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: writeItems,
		})
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return shared.ErrVersionConflict
		}
		return wrapStoreError(err, "UpdateBuild")
	}
	return nil
}

// DeleteBuild removes a build and its share token pointer, if any.
func (r *Repository) DeleteBuild(ctx context.Context, id shared.BuildID) error {
	b, err := r.FindBuildByID(ctx, id)
	if err != nil {
		return err
	}

	writeItems := []types.TransactWriteItem{{
		Delete: &types.Delete{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: userPK(b.UserID.String())},
				"SK": &types.AttributeValueMemberS{Value: buildSK(id.String())},
			},
		},
	}}
	if b.ShareToken != "" {
		writeItems = append(writeItems, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: sharePK(b.ShareToken)},
					"SK": &types.AttributeValueMemberS{Value: skMetadata},
				},
			},
		})
	}

	_, err = execute(r, func() (*dynamodb.TransactWriteItemsOutput, error) {
		return r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: writeItems,
		})
	})
	if err != nil {
		return wrapStoreError(err, "DeleteBuild")
	}
	return nil
}

// FindBuildByID looks a build up through GSI1.
func (r *Repository) FindBuildByID(ctx context.Context, id shared.BuildID) (*build.Build, error) {
	if err := ctxCheck(ctx); err != nil {
		return nil, err
	}

	keyCond := expression.KeyAnd(
		expression.Key("GSI1PK").Equal(expression.Value(buildGSI1PK(id.String()))),
		expression.Key("GSI1SK").Equal(expression.Value(skMetadata)),
	)
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, wrapStoreError(err, "FindBuildByID")
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
		return nil, wrapStoreError(err, "FindBuildByID")
	}
	if len(out.Items) == 0 {
		return nil, shared.ErrBuildNotFound
	}

	var item buildItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, wrapStoreError(err, "FindBuildByID")
	}
	return r.buildFromItem(ctx, item)
}

// FindBuildByShareToken resolves the token pointer row, then loads the build.
func (r *Repository) FindBuildByShareToken(ctx context.Context, token string) (*build.Build, error) {
	if err := ctxCheck(ctx); err != nil {
		return nil, err
	}

	out, err := execute(r, func() (*dynamodb.GetItemOutput, error) {
		return r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: sharePK(token)},
				"SK": &types.AttributeValueMemberS{Value: skMetadata},
			},
		})
	})
	if err != nil {
		return nil, wrapStoreError(err, "FindBuildByShareToken")
	}
	if out.Item == nil {
		return nil, shared.ErrBuildNotFound
	}

	var pointer shareTokenItem
	if err := attributevalue.UnmarshalMap(out.Item, &pointer); err != nil {
		return nil, wrapStoreError(err, "FindBuildByShareToken")
	}
	buildID, err := shared.ParseBuildID(pointer.BuildID)
	if err != nil {
		return nil, err
	}
	return r.FindBuildByID(ctx, buildID)
}

// FindBuildsByUser lists a user's builds, newest first.
func (r *Repository) FindBuildsByUser(ctx context.Context, userID shared.UserID) ([]*build.Build, error) {
	raw, err := r.querySKPrefix(ctx, userPK(userID.String()), "BUILD#", "FindBuildsByUser")
	if err != nil {
		return nil, err
	}

	builds := make([]*build.Build, 0, len(raw))
	for _, m := range raw {
		var item buildItem
		if err := attributevalue.UnmarshalMap(m, &item); err != nil {
			return nil, wrapStoreError(err, "FindBuildsByUser")
		}
		b, err := r.buildFromItem(ctx, item)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}

	sort.Slice(builds, func(i, j int) bool { return builds[i].CreatedAt.After(builds[j].CreatedAt) })
	return builds, nil
}

// FindPublicBuilds pages through the public feed, newest first.
func (r *Repository) FindPublicBuilds(ctx context.Context, p repository.Pagination) ([]*build.Build, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ctxCheck(ctx); err != nil {
		return nil, err
	}

	keyCond := expression.Key("GSI2PK").Equal(expression.Value(gsi2Public))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, wrapStoreError(err, "FindPublicBuilds")
	}

	// Offset pagination over an index query: fetch offset+limit newest
	// entries, then trim. Public feeds are read shallow in practice.
	raw, err := r.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(gsi2),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	})
	if err != nil {
		return nil, wrapStoreError(err, "FindPublicBuilds")
	}

	if p.Offset >= len(raw) {
		return nil, nil
	}
	raw = raw[p.Offset:]
	if limit := p.EffectiveLimit(); len(raw) > limit {
		raw = raw[:limit]
	}

	builds := make([]*build.Build, 0, len(raw))
	for _, m := range raw {
		var item buildItem
		if err := attributevalue.UnmarshalMap(m, &item); err != nil {
			return nil, wrapStoreError(err, "FindPublicBuilds")
		}
		b, err := r.buildFromItem(ctx, item)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	return builds, nil
}

// ListAllBuilds scans every build row. Admin analytics only; builders never
// hit this path.
func (r *Repository) ListAllBuilds(ctx context.Context) ([]*build.Build, error) {
	if err := ctxCheck(ctx); err != nil {
		return nil, err
	}

	filter := expression.Name("EntityType").Equal(expression.Value("BUILD"))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, wrapStoreError(err, "ListAllBuilds")
	}

	raw, err := r.scanAll(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, wrapStoreError(err, "ListAllBuilds")
	}

	builds := make([]*build.Build, 0, len(raw))
	for _, m := range raw {
		var item buildItem
		if err := attributevalue.UnmarshalMap(m, &item); err != nil {
			return nil, wrapStoreError(err, "ListAllBuilds")
		}
		b, err := r.buildFromItem(ctx, item)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}

	sort.Slice(builds, func(i, j int) bool { return builds[i].CreatedAt.After(builds[j].CreatedAt) })
	return builds, nil
}
