package ddb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"pcforge-backend/internal/domain/component"
	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/repository"
)

// componentItem is the DynamoDB shape of a catalog entry. The specification
// is stored as a nested map under its own attribute.
type componentItem struct {
	PK           string                   `dynamodbav:"PK"`
	SK           string                   `dynamodbav:"SK"`
	GSI1PK       string                   `dynamodbav:"GSI1PK"`
	GSI1SK       string                   `dynamodbav:"GSI1SK"`
	EntityType   string                   `dynamodbav:"EntityType"`
	ComponentID  string                   `dynamodbav:"ComponentID"`
	Name         string                   `dynamodbav:"Name"`
	Slug         string                   `dynamodbav:"Slug"`
	Category     string                   `dynamodbav:"Category"`
	Description  string                   `dynamodbav:"Description"`
	PriceCents   int64                    `dynamodbav:"PriceCents"`
	Stock        int                      `dynamodbav:"Stock"`
	ReorderPoint int                      `dynamodbav:"ReorderPoint"`
	ReorderQty   int                      `dynamodbav:"ReorderQty"`
	Spec         component.Specification  `dynamodbav:"Spec"`
	CreatedAt    string                   `dynamodbav:"CreatedAt"`
	UpdatedAt    string                   `dynamodbav:"UpdatedAt"`
	Version      int                      `dynamodbav:"Version"`
}

func toComponentItem(c *component.Component) componentItem {
	return componentItem{
		PK:           componentPK(c.ID.String()),
		SK:           skMetadata,
		GSI1PK:       categoryPK(c.Category.String()),
		GSI1SK:       c.Name,
		EntityType:   "COMPONENT",
		ComponentID:  c.ID.String(),
		Name:         c.Name,
		Slug:         c.Slug,
		Category:     c.Category.String(),
		Description:  c.Description,
		PriceCents:   c.Price.Cents(),
		Stock:        c.Stock,
		ReorderPoint: c.ReorderPoint,
		ReorderQty:   c.ReorderQty,
		Spec:         c.Spec,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    c.UpdatedAt.Format(time.RFC3339Nano),
		Version:      c.Version.Int(),
	}
}

func (item componentItem) toDomain() (*component.Component, error) {
	id, err := shared.ParseComponentID(item.ComponentID)
	if err != nil {
		return nil, err
	}
	cat, err := component.ParseCategory(item.Category)
	if err != nil {
		return nil, err
	}
	price, err := shared.NewMoney(item.PriceCents)
	if err != nil {
		return nil, err
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)

	return &component.Component{
		ID:           id,
		Name:         item.Name,
		Slug:         item.Slug,
		Category:     cat,
		Description:  item.Description,
		Price:        price,
		Stock:        item.Stock,
		ReorderPoint: item.ReorderPoint,
		ReorderQty:   item.ReorderQty,
		Spec:         item.Spec,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		Version:      shared.ParseVersion(item.Version),
	}, nil
}

// CreateComponent inserts a catalog entry, failing if the ID already exists.
func (r *Repository) CreateComponent(ctx context.Context, c *component.Component) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(toComponentItem(c))
	if err != nil {
		return wrapStoreError(err, "CreateComponent")
	}

	_, err = execute(r, func() (*dynamodb.PutItemOutput, error) {
		return r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.tableName),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(PK)"),
		})
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return shared.ErrComponentExists
		}
		return wrapStoreError(err, "CreateComponent")
	}

	r.logger.Debug("component created",
		zap.String("componentId", c.ID.String()),
		zap.String("category", c.Category.String()),
	)
	return nil
}

// UpdateComponent saves the full entry, guarded by the previous version.
func (r *Repository) UpdateComponent(ctx context.Context, c *component.Component) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(toComponentItem(c))
	if err != nil {
		return wrapStoreError(err, "UpdateComponent")
	}

	cond := expression.And(
		expression.AttributeExists(expression.Name("PK")),
		expression.Name("Version").LessThan(expression.Value(c.Version.Int())),
	)
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return wrapStoreError(err, "UpdateComponent")
	}

	_, err = execute(r, func() (*dynamodb.PutItemOutput, error) {
		return r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                 aws.String(r.tableName),
			Item:                      av,
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return shared.ErrVersionConflict
		}
		return wrapStoreError(err, "UpdateComponent")
	}
	return nil
}

// DeleteComponent removes a catalog entry. Its movement and price history
// rows are left in place as audit records.
func (r *Repository) DeleteComponent(ctx context.Context, id shared.ComponentID) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	_, err := execute(r, func() (*dynamodb.DeleteItemOutput, error) {
		return r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: componentPK(id.String())},
				"SK": &types.AttributeValueMemberS{Value: skMetadata},
			},
			ConditionExpression: aws.String("attribute_exists(PK)"),
		})
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return shared.ErrComponentNotFound
		}
		return wrapStoreError(err, "DeleteComponent")
	}
	return nil
}

// FindComponentByID fetches one catalog entry.
func (r *Repository) FindComponentByID(ctx context.Context, id shared.ComponentID) (*component.Component, error) {
	if err := ctxCheck(ctx); err != nil {
		return nil, err
	}

	out, err := execute(r, func() (*dynamodb.GetItemOutput, error) {
		return r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: componentPK(id.String())},
				"SK": &types.AttributeValueMemberS{Value: skMetadata},
			},
		})
	})
	if err != nil {
		return nil, wrapStoreError(err, "FindComponentByID")
	}
	if out.Item == nil {
		return nil, shared.ErrComponentNotFound
	}

	var item componentItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, wrapStoreError(err, "FindComponentByID")
	}
	return item.toDomain()
}

// FindComponents lists catalog entries. With a category filter the GSI1
// partition is queried; otherwise a filtered scan runs, which is acceptable
// for a catalog-sized table.
func (r *Repository) FindComponents(ctx context.Context, q repository.ComponentQuery) ([]*component.Component, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := ctxCheck(ctx); err != nil {
		return nil, err
	}

	filter := expression.Name("EntityType").Equal(expression.Value("COMPONENT"))
	if q.Search != "" {
		filter = expression.And(filter, expression.Name("Name").Contains(q.Search))
	}
	if q.MinCents > 0 {
		filter = expression.And(filter, expression.Name("PriceCents").GreaterThanEqual(expression.Value(q.MinCents)))
	}
	if q.MaxCents > 0 {
		filter = expression.And(filter, expression.Name("PriceCents").LessThanEqual(expression.Value(q.MaxCents)))
	}
	if q.InStock {
		filter = expression.And(filter, expression.Name("Stock").GreaterThan(expression.Value(0)))
	}

	var raw []map[string]types.AttributeValue
	if q.HasCategory() {
		keyCond := expression.Key("GSI1PK").Equal(expression.Value(categoryPK(q.Category.String())))
		expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
		if err != nil {
			return nil, wrapStoreError(err, "FindComponents")
		}
		raw, err = r.queryAll(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(gsi1),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		if err != nil {
			return nil, wrapStoreError(err, "FindComponents")
		}
	} else {
		expr, err := expression.NewBuilder().WithFilter(filter).Build()
		if err != nil {
			return nil, wrapStoreError(err, "FindComponents")
		}
		raw, err = r.scanAll(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		if err != nil {
			return nil, wrapStoreError(err, "FindComponents")
		}
	}

	components := make([]*component.Component, 0, len(raw))
	for _, m := range raw {
		var item componentItem
		if err := attributevalue.UnmarshalMap(m, &item); err != nil {
			return nil, wrapStoreError(err, "FindComponents")
		}
		c, err := item.toDomain()
		if err != nil {
			r.logger.Warn("skipping malformed component item",
				zap.String("pk", item.PK),
				zap.Error(err),
			)
			continue
		}
		components = append(components, c)
	}

	return sortAndPage(components, q), nil
}

// sortAndPage applies sorting and offset pagination in memory. Catalog result
// sets are bounded, so this stays cheap.
func sortAndPage(cs []*component.Component, q repository.ComponentQuery) []*component.Component {
	less := func(i, j int) bool {
		return strings.ToLower(cs[i].Name) < strings.ToLower(cs[j].Name)
	}
	if q.SortBy == "price" {
		less = func(i, j int) bool { return cs[i].Price.Cents() < cs[j].Price.Cents() }
	}
	if q.SortOrder == "desc" {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(cs, less)

	if q.Offset > 0 {
		if q.Offset >= len(cs) {
			return cs[:0]
		}
		copy(cs, cs[q.Offset:])
		cs = cs[:len(cs)-q.Offset]
	}
	if q.Limit > 0 && len(cs) > q.Limit {
		cs = cs[:q.Limit]
	}
	return cs
}

func (r *Repository) queryAll(ctx context.Context, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		out, err := execute(r, func() (*dynamodb.QueryOutput, error) {
			return r.client.Query(ctx, input)
		})
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (r *Repository) scanAll(ctx context.Context, input *dynamodb.ScanInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		out, err := execute(r, func() (*dynamodb.ScanOutput, error) {
			return r.client.Scan(ctx, input)
		})
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// Inventory records

type movementItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	EntityType  string `dynamodbav:"EntityType"`
	MovementID  string `dynamodbav:"MovementID"`
	ComponentID string `dynamodbav:"ComponentID"`
	Type        string `dynamodbav:"Type"`
	Quantity    int    `dynamodbav:"Quantity"`
	Reference   string `dynamodbav:"Reference,omitempty"`
	Notes       string `dynamodbav:"Notes,omitempty"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
}

// RecordMovement appends a stock movement row.
func (r *Repository) RecordMovement(ctx context.Context, m component.Movement) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	item := movementItem{
		PK:          componentPK(m.ComponentID.String()),
		SK:          tsID("MOVEMENT", m.CreatedAt, m.ID),
		EntityType:  "MOVEMENT",
		MovementID:  m.ID,
		ComponentID: m.ComponentID.String(),
		Type:        string(m.Type),
		Quantity:    m.Quantity,
		Reference:   m.Reference,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339Nano),
	}
	return r.putItem(ctx, item, "RecordMovement")
}

// ListMovements returns a component's movements in chronological order.
func (r *Repository) ListMovements(ctx context.Context, id shared.ComponentID) ([]component.Movement, error) {
	raw, err := r.querySKPrefix(ctx, componentPK(id.String()), "MOVEMENT#", "ListMovements")
	if err != nil {
		return nil, err
	}

	movements := make([]component.Movement, 0, len(raw))
	for _, m := range raw {
		var item movementItem
		if err := attributevalue.UnmarshalMap(m, &item); err != nil {
			return nil, wrapStoreError(err, "ListMovements")
		}
		createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
		movements = append(movements, component.Movement{
			ID:          item.MovementID,
			ComponentID: id,
			Type:        component.MovementType(item.Type),
			Quantity:    item.Quantity,
			Reference:   item.Reference,
			Notes:       item.Notes,
			CreatedAt:   createdAt,
		})
	}
	return movements, nil
}

type alertItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	EntityType   string `dynamodbav:"EntityType"`
	AlertID      string `dynamodbav:"AlertID"`
	ComponentID  string `dynamodbav:"ComponentID"`
	CurrentStock int    `dynamodbav:"CurrentStock"`
	Status       string `dynamodbav:"Status"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
	ResolvedAt   string `dynamodbav:"ResolvedAt,omitempty"`
}

// CreateAlert stores a stock alert in the shared alert partition.
func (r *Repository) CreateAlert(ctx context.Context, a component.Alert) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	item := alertItem{
		PK:           pkAlerts,
		SK:           tsID("ALERT", a.CreatedAt, a.ID),
		EntityType:   "ALERT",
		AlertID:      a.ID,
		ComponentID:  a.ComponentID.String(),
		CurrentStock: a.CurrentStock,
		Status:       string(a.Status),
		CreatedAt:    a.CreatedAt.Format(time.RFC3339Nano),
	}
	return r.putItem(ctx, item, "CreateAlert")
}

// ListOpenAlerts returns unresolved alerts, oldest first.
func (r *Repository) ListOpenAlerts(ctx context.Context) ([]component.Alert, error) {
	if err := ctxCheck(ctx); err != nil {
		return nil, err
	}

	keyCond := expression.Key("PK").Equal(expression.Value(pkAlerts))
	filter := expression.AttributeNotExists(expression.Name("ResolvedAt"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return nil, wrapStoreError(err, "ListOpenAlerts")
	}

	raw, err := r.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, wrapStoreError(err, "ListOpenAlerts")
	}

	alerts := make([]component.Alert, 0, len(raw))
	for _, m := range raw {
		var item alertItem
		if err := attributevalue.UnmarshalMap(m, &item); err != nil {
			return nil, wrapStoreError(err, "ListOpenAlerts")
		}
		alert, err := item.toDomain()
		if err != nil {
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

func (item alertItem) toDomain() (component.Alert, error) {
	id, err := shared.ParseComponentID(item.ComponentID)
	if err != nil {
		return component.Alert{}, err
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	alert := component.Alert{
		ID:           item.AlertID,
		ComponentID:  id,
		CurrentStock: item.CurrentStock,
		Status:       component.StockStatus(item.Status),
		CreatedAt:    createdAt,
	}
	if item.ResolvedAt != "" {
		resolvedAt, _ := time.Parse(time.RFC3339Nano, item.ResolvedAt)
		alert.ResolvedAt = &resolvedAt
	}
	return alert, nil
}

// ResolveAlert stamps the alert's resolution time. The alert partition is
// small, so locating the row by ID via query is fine.
func (r *Repository) ResolveAlert(ctx context.Context, alertID string) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	keyCond := expression.Key("PK").Equal(expression.Value(pkAlerts))
	filter := expression.Name("AlertID").Equal(expression.Value(alertID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return wrapStoreError(err, "ResolveAlert")
	}

	raw, err := r.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return wrapStoreError(err, "ResolveAlert")
	}
	if len(raw) == 0 {
		return shared.ErrValidation
	}

	var item alertItem
	if err := attributevalue.UnmarshalMap(raw[0], &item); err != nil {
		return wrapStoreError(err, "ResolveAlert")
	}

	update := expression.Set(expression.Name("ResolvedAt"), expression.Value(time.Now().UTC().Format(time.RFC3339Nano)))
	updateExpr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return wrapStoreError(err, "ResolveAlert")
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
		return wrapStoreError(err, "ResolveAlert")
	}
	return nil
}

type reorderItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	GSI1PK      string `dynamodbav:"GSI1PK"`
	GSI1SK      string `dynamodbav:"GSI1SK"`
	EntityType  string `dynamodbav:"EntityType"`
	ReorderID   string `dynamodbav:"ReorderID"`
	ComponentID string `dynamodbav:"ComponentID"`
	Quantity    int    `dynamodbav:"Quantity"`
	Status      string `dynamodbav:"Status"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
}

func toReorderItem(re *component.Reorder) reorderItem {
	return reorderItem{
		PK:          "REORDER#" + re.ID,
		SK:          skMetadata,
		GSI1PK:      gsi1Reorders,
		GSI1SK:      tsID("REORDER", re.CreatedAt, re.ID),
		EntityType:  "REORDER",
		ReorderID:   re.ID,
		ComponentID: re.ComponentID.String(),
		Quantity:    re.Quantity,
		Status:      string(re.Status),
		CreatedAt:   re.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   re.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (item reorderItem) toDomain() (*component.Reorder, error) {
	id, err := shared.ParseComponentID(item.ComponentID)
	if err != nil {
		return nil, err
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	return &component.Reorder{
		ID:          item.ReorderID,
		ComponentID: id,
		Quantity:    item.Quantity,
		Status:      component.ReorderStatus(item.Status),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// CreateReorder stores a new restock order.
func (r *Repository) CreateReorder(ctx context.Context, re *component.Reorder) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}
	return r.putItem(ctx, toReorderItem(re), "CreateReorder")
}

// UpdateReorder saves a reorder after a status transition.
func (r *Repository) UpdateReorder(ctx context.Context, re *component.Reorder) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(toReorderItem(re))
	if err != nil {
		return wrapStoreError(err, "UpdateReorder")
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
			return shared.ErrValidation
		}
		return wrapStoreError(err, "UpdateReorder")
	}
	return nil
}

// FindReorderByID fetches one restock order.
func (r *Repository) FindReorderByID(ctx context.Context, id string) (*component.Reorder, error) {
	if err := ctxCheck(ctx); err != nil {
		return nil, err
	}

	out, err := execute(r, func() (*dynamodb.GetItemOutput, error) {
		return r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: "REORDER#" + id},
				"SK": &types.AttributeValueMemberS{Value: skMetadata},
			},
		})
	})
	if err != nil {
		return nil, wrapStoreError(err, "FindReorderByID")
	}
	if out.Item == nil {
		return nil, shared.ErrValidation
	}

	var item reorderItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, wrapStoreError(err, "FindReorderByID")
	}
	return item.toDomain()
}

// ListReorders lists restock orders, optionally by status, oldest first.
func (r *Repository) ListReorders(ctx context.Context, status component.ReorderStatus) ([]*component.Reorder, error) {
	if err := ctxCheck(ctx); err != nil {
		return nil, err
	}

	keyCond := expression.Key("GSI1PK").Equal(expression.Value(gsi1Reorders))
	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if status != "" {
		builder = builder.WithFilter(expression.Name("Status").Equal(expression.Value(string(status))))
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, wrapStoreError(err, "ListReorders")
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(gsi1),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if status != "" {
		input.FilterExpression = expr.Filter()
	}

	raw, err := r.queryAll(ctx, input)
	if err != nil {
		return nil, wrapStoreError(err, "ListReorders")
	}

	reorders := make([]*component.Reorder, 0, len(raw))
	for _, m := range raw {
		var item reorderItem
		if err := attributevalue.UnmarshalMap(m, &item); err != nil {
			return nil, wrapStoreError(err, "ListReorders")
		}
		re, err := item.toDomain()
		if err != nil {
			continue
		}
		reorders = append(reorders, re)
	}
	return reorders, nil
}

type pricePointItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	EntityType  string `dynamodbav:"EntityType"`
	PricePointID string `dynamodbav:"PricePointID"`
	ComponentID string `dynamodbav:"ComponentID"`
	PriceCents  int64  `dynamodbav:"PriceCents"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
}

// RecordPricePoint appends a price history row.
func (r *Repository) RecordPricePoint(ctx context.Context, p component.PricePoint) error {
	if err := ctxCheck(ctx); err != nil {
		return err
	}

	item := pricePointItem{
		PK:           componentPK(p.ComponentID.String()),
		SK:           tsID("PRICE", p.CreatedAt, p.ID),
		EntityType:   "PRICE_POINT",
		PricePointID: p.ID,
		ComponentID:  p.ComponentID.String(),
		PriceCents:   p.Price.Cents(),
		CreatedAt:    p.CreatedAt.Format(time.RFC3339Nano),
	}
	return r.putItem(ctx, item, "RecordPricePoint")
}

// ListPriceHistory returns a component's price history in chronological
// order.
func (r *Repository) ListPriceHistory(ctx context.Context, id shared.ComponentID) ([]component.PricePoint, error) {
	raw, err := r.querySKPrefix(ctx, componentPK(id.String()), "PRICE#", "ListPriceHistory")
	if err != nil {
		return nil, err
	}

	points := make([]component.PricePoint, 0, len(raw))
	for _, m := range raw {
		var item pricePointItem
		if err := attributevalue.UnmarshalMap(m, &item); err != nil {
			return nil, wrapStoreError(err, "ListPriceHistory")
		}
		price, err := shared.NewMoney(item.PriceCents)
		if err != nil {
			continue
		}
		createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
		points = append(points, component.PricePoint{
			ID:          item.PricePointID,
			ComponentID: id,
			Price:       price,
			CreatedAt:   createdAt,
		})
	}
	return points, nil
}

// putItem marshals and stores an item without conditions.
func (r *Repository) putItem(ctx context.Context, item interface{}, operation string) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return wrapStoreError(err, operation)
	}
	_, err = execute(r, func() (*dynamodb.PutItemOutput, error) {
		return r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(r.tableName),
			Item:      av,
		})
	})
	if err != nil {
		return wrapStoreError(err, operation)
	}
	return nil
}

// querySKPrefix queries one partition for items whose sort key begins with a
// prefix. RFC3339Nano timestamps in the sort key keep results chronological.
func (r *Repository) querySKPrefix(ctx context.Context, pk, skPrefix, operation string) ([]map[string]types.AttributeValue, error) {
	if err := ctxCheck(ctx); err != nil {
		return nil, err
	}

	keyCond := expression.KeyAnd(
		expression.Key("PK").Equal(expression.Value(pk)),
		expression.Key("SK").BeginsWith(skPrefix),
	)
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, wrapStoreError(err, operation)
	}

	raw, err := r.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, wrapStoreError(err, operation)
	}
	return raw, nil
}
