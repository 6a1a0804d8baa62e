// Package catalog implements component catalog and inventory operations.
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pcforge-backend/internal/domain/component"
	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/errors"
	"pcforge-backend/internal/repository"
)

// Service exposes catalog reads to builders and inventory administration to
// admins. Compatibility never blocks catalog operations; stock levels do.
type Service struct {
	repo     repository.ComponentRepository
	logger   *zap.Logger
	alertsOn bool
}

// NewService creates a catalog service. alertsOn controls whether stock
// movements emit alerts and automatic reorders.
func NewService(repo repository.ComponentRepository, logger *zap.Logger, alertsOn bool) *Service {
	return &Service{repo: repo, logger: logger, alertsOn: alertsOn}
}

// CreateComponentInput carries the fields for a new catalog entry.
type CreateComponentInput struct {
	Name        string
	Slug        string
	Category    component.Category
	Description string
	PriceCents  int64
	Spec        component.Specification
}

// CreateComponent adds a catalog entry and seeds its price history.
func (s *Service) CreateComponent(ctx context.Context, input CreateComponentInput) (*component.Component, error) {
	price, err := shared.NewMoney(input.PriceCents)
	if err != nil {
		return nil, err
	}

	c, err := component.NewComponent(input.Name, input.Slug, input.Category, input.Description, price, input.Spec)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateComponent(ctx, c); err != nil {
		return nil, err
	}
	if err := s.recordPrice(ctx, c); err != nil {
		s.logger.Warn("failed to seed price history",
			zap.String("componentId", c.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("component created",
		zap.String("componentId", c.ID.String()),
		zap.String("category", c.Category.String()),
		zap.String("name", c.Name),
	)
	return c, nil
}

// GetComponent fetches one catalog entry.
func (s *Service) GetComponent(ctx context.Context, id shared.ComponentID) (*component.Component, error) {
	return s.repo.FindComponentByID(ctx, id)
}

// ListComponents lists catalog entries with filtering and pagination.
func (s *Service) ListComponents(ctx context.Context, q repository.ComponentQuery) ([]*component.Component, error) {
	return s.repo.FindComponents(ctx, q)
}

// UpdateComponentInput carries mutable catalog fields. Nil pointers leave
// the current value untouched.
type UpdateComponentInput struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Spec        *component.Specification
}

// UpdateComponent applies a partial update. A price change appends to the
// price history.
func (s *Service) UpdateComponent(ctx context.Context, id shared.ComponentID, input UpdateComponentInput) (*component.Component, error) {
	c, err := s.repo.FindComponentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, shared.ErrValidation
		}
		c.Name = *input.Name
	}
	if input.Description != nil {
		c.Description = *input.Description
	}
	if input.Spec != nil {
		if err := input.Spec.Validate(c.Category); err != nil {
			return nil, err
		}
		c.Spec = *input.Spec
	}

	priceChanged := false
	if input.PriceCents != nil {
		price, err := shared.NewMoney(*input.PriceCents)
		if err != nil {
			return nil, err
		}
		if !price.Equals(c.Price) {
			c.ChangePrice(price)
			priceChanged = true
		}
	}
	if !priceChanged {
		c.UpdatedAt = time.Now()
		c.Version = c.Version.Next()
	}

	if err := s.repo.UpdateComponent(ctx, c); err != nil {
		return nil, err
	}
	if priceChanged {
		if err := s.recordPrice(ctx, c); err != nil {
			s.logger.Warn("failed to record price point",
				zap.String("componentId", c.ID.String()),
				zap.Error(err),
			)
		}
	}
	return c, nil
}

// DeleteComponent removes a catalog entry.
func (s *Service) DeleteComponent(ctx context.Context, id shared.ComponentID) error {
	if err := s.repo.DeleteComponent(ctx, id); err != nil {
		return err
	}
	s.logger.Info("component deleted", zap.String("componentId", id.String()))
	return nil
}

// MovementInput describes a stock change request.
type MovementInput struct {
	Type      component.MovementType
	Quantity  int
	Reference string
	Notes     string
}

// RecordMovement applies a stock change, persists the audit row, and when
// alerts are enabled reacts to the resulting stock level.
func (s *Service) RecordMovement(ctx context.Context, id shared.ComponentID, input MovementInput) (*component.Component, error) {
	c, err := s.repo.FindComponentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	m := component.Movement{
		ID:          uuid.New().String(),
		ComponentID: id,
		Type:        input.Type,
		Quantity:    input.Quantity,
		Reference:   input.Reference,
		Notes:       input.Notes,
		CreatedAt:   time.Now(),
	}
	if err := c.ApplyMovement(m); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateComponent(ctx, c); err != nil {
		return nil, err
	}
	if err := s.repo.RecordMovement(ctx, m); err != nil {
		s.logger.Error("stock updated but movement row failed",
			zap.String("componentId", id.String()),
			zap.Error(err),
		)
	}

	if s.alertsOn {
		s.reactToStockLevel(ctx, c)
	}

	s.logger.Info("stock movement recorded",
		zap.String("componentId", id.String()),
		zap.String("type", string(m.Type)),
		zap.Int("quantity", m.Quantity),
		zap.Int("stock", c.Stock),
	)
	return c, nil
}

// reactToStockLevel emits an alert for low or exhausted stock and opens a
// reorder when none is pending.
func (s *Service) reactToStockLevel(ctx context.Context, c *component.Component) {
	status := c.StockStatus()
	if status == component.StockOK {
		return
	}

	alert := component.Alert{
		ID:           uuid.New().String(),
		ComponentID:  c.ID,
		CurrentStock: c.Stock,
		Status:       status,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateAlert(ctx, alert); err != nil {
		s.logger.Warn("failed to create stock alert",
			zap.String("componentId", c.ID.String()),
			zap.Error(err),
		)
	}

	if c.NeedsReorder() && !s.hasOpenReorder(ctx, c.ID) {
		reorder := &component.Reorder{
			ID:          uuid.New().String(),
			ComponentID: c.ID,
			Quantity:    c.ReorderQty,
			Status:      component.ReorderPending,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if err := s.repo.CreateReorder(ctx, reorder); err != nil {
			s.logger.Warn("failed to open reorder",
				zap.String("componentId", c.ID.String()),
				zap.Error(err),
			)
			return
		}
		s.logger.Info("reorder opened",
			zap.String("componentId", c.ID.String()),
			zap.String("reorderId", reorder.ID),
			zap.Int("quantity", reorder.Quantity),
		)
	}
}

func (s *Service) hasOpenReorder(ctx context.Context, id shared.ComponentID) bool {
	for _, status := range []component.ReorderStatus{component.ReorderPending, component.ReorderOrdered} {
		reorders, err := s.repo.ListReorders(ctx, status)
		if err != nil {
			continue
		}
		for _, re := range reorders {
			if re.ComponentID.Equals(id) {
				return true
			}
		}
	}
	return false
}

// ListMovements returns a component's stock movement history.
func (s *Service) ListMovements(ctx context.Context, id shared.ComponentID) ([]component.Movement, error) {
	if _, err := s.repo.FindComponentByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListMovements(ctx, id)
}

// ListOpenAlerts returns unresolved stock alerts.
func (s *Service) ListOpenAlerts(ctx context.Context) ([]component.Alert, error) {
	return s.repo.ListOpenAlerts(ctx)
}

// ResolveAlert closes a stock alert.
func (s *Service) ResolveAlert(ctx context.Context, alertID string) error {
	return s.repo.ResolveAlert(ctx, alertID)
}

// ListReorders lists restock orders, optionally filtered by status.
func (s *Service) ListReorders(ctx context.Context, status component.ReorderStatus) ([]*component.Reorder, error) {
	return s.repo.ListReorders(ctx, status)
}

// TransitionReorder advances a reorder's lifecycle. Receiving a reorder
// books its quantity in as a stock movement referencing the order.
func (s *Service) TransitionReorder(ctx context.Context, reorderID string, to component.ReorderStatus) (*component.Reorder, error) {
	re, err := s.repo.FindReorderByID(ctx, reorderID)
	if err != nil {
		return nil, err
	}
	if err := re.Transition(to); err != nil {
		return nil, errors.Validation(errors.CodeValidationFailed.String(),
			"illegal reorder status transition").
			WithResource("reorder").
			Build()
	}
	if err := s.repo.UpdateReorder(ctx, re); err != nil {
		return nil, err
	}

	if to == component.ReorderReceived {
		if _, err := s.RecordMovement(ctx, re.ComponentID, MovementInput{
			Type:      component.MovementIn,
			Quantity:  re.Quantity,
			Reference: re.ID,
			Notes:     "reorder received",
		}); err != nil {
			s.logger.Error("reorder received but stock booking failed",
				zap.String("reorderId", re.ID),
				zap.Error(err),
			)
		}
	}
	return re, nil
}

// PriceHistory returns a component's recorded price points with the overall
// change percentage.
func (s *Service) PriceHistory(ctx context.Context, id shared.ComponentID) ([]component.PricePoint, float64, error) {
	if _, err := s.repo.FindComponentByID(ctx, id); err != nil {
		return nil, 0, err
	}
	history, err := s.repo.ListPriceHistory(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return history, component.PriceChangePercent(history), nil
}

func (s *Service) recordPrice(ctx context.Context, c *component.Component) error {
	return s.repo.RecordPricePoint(ctx, component.PricePoint{
		ID:          uuid.New().String(),
		ComponentID: c.ID,
		Price:       c.Price,
		CreatedAt:   time.Now(),
	})
}
