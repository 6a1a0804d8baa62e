// Package component models the purchasable parts catalog: the closed
// category set, per-category specifications, and inventory behavior.
package component

import (
	"time"

	"pcforge-backend/internal/domain/shared"
)

// Component is a catalog entry. Catalog data is read-only for builders;
// only inventory administration mutates stock and price.
type Component struct {
	ID            shared.ComponentID `json:"id"`
	Name          string             `json:"name"`
	Slug          string             `json:"slug"`
	Category      Category           `json:"category"`
	Description   string             `json:"description"`
	Price         shared.Money       `json:"price"`
	Stock         int                `json:"stock"`
	ReorderPoint  int                `json:"reorderPoint"`
	ReorderQty    int                `json:"reorderQty"`
	Spec          Specification      `json:"spec"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
	Version       shared.Version     `json:"version"`
}

// NewComponent creates a catalog entry with full validation.
func NewComponent(name, slug string, category Category, description string, price shared.Money, spec Specification) (*Component, error) {
	if name == "" {
		return nil, shared.ErrValidation
	}
	if _, err := ParseCategory(category.String()); err != nil {
		return nil, err
	}
	if err := spec.Validate(category); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Component{
		ID:           shared.NewComponentID(),
		Name:         name,
		Slug:         slug,
		Category:     category,
		Description:  description,
		Price:        price,
		Stock:        0,
		ReorderPoint: DefaultReorderPoint,
		ReorderQty:   DefaultReorderQuantity,
		Spec:         spec,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      shared.NewVersion(),
	}, nil
}

// Inventory policy defaults, overridable per component.
const (
	DefaultReorderPoint    = 10
	DefaultReorderQuantity = 20
)

// StockStatus classifies the current stock level.
type StockStatus string

const (
	StockOK         StockStatus = "ok"
	StockLow        StockStatus = "low_stock"
	StockOut        StockStatus = "out_of_stock"
)

// StockStatus returns the alert status for the current stock level.
func (c *Component) StockStatus() StockStatus {
	switch {
	case c.Stock <= 0:
		return StockOut
	case c.Stock <= c.ReorderPoint:
		return StockLow
	default:
		return StockOK
	}
}

// NeedsReorder reports whether stock has fallen to the reorder point.
func (c *Component) NeedsReorder() bool {
	return c.Stock <= c.ReorderPoint
}

// ApplyMovement mutates stock according to a movement. Stock never goes
// negative; an out movement larger than stock fails.
func (c *Component) ApplyMovement(m Movement) error {
	switch m.Type {
	case MovementIn:
		if m.Quantity < 0 {
			return shared.ErrValidation
		}
		c.Stock += m.Quantity
	case MovementOut:
		if m.Quantity < 0 {
			return shared.ErrValidation
		}
		if m.Quantity > c.Stock {
			return shared.ErrInsufficientStock
		}
		c.Stock -= m.Quantity
	case MovementAdjustment:
		if m.Quantity < 0 {
			return shared.ErrValidation
		}
		c.Stock = m.Quantity
	default:
		return shared.ErrValidation
	}
	c.UpdatedAt = time.Now()
	c.Version = c.Version.Next()
	return nil
}

// ChangePrice updates the price. The caller records the price history entry.
func (c *Component) ChangePrice(price shared.Money) {
	c.Price = price
	c.UpdatedAt = time.Now()
	c.Version = c.Version.Next()
}
