package component

import (
	"time"

	"pcforge-backend/internal/domain/shared"
)

// MovementType distinguishes the three kinds of stock change.
type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
)

// Movement is one recorded stock change for a component. Adjustments set the
// absolute level; in/out are deltas.
type Movement struct {
	ID          string             `json:"id"`
	ComponentID shared.ComponentID `json:"componentId"`
	Type        MovementType       `json:"type"`
	Quantity    int                `json:"quantity"`
	Reference   string             `json:"reference,omitempty"` // reorder ID when restocking
	Notes       string             `json:"notes,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// Alert records a low-stock or out-of-stock condition at the time it was
// observed. Alerts are informational rows, not live state.
type Alert struct {
	ID           string             `json:"id"`
	ComponentID  shared.ComponentID `json:"componentId"`
	CurrentStock int                `json:"currentStock"`
	Status       StockStatus        `json:"status"`
	CreatedAt    time.Time          `json:"createdAt"`
	ResolvedAt   *time.Time         `json:"resolvedAt,omitempty"`
}

// ReorderStatus is the lifecycle of a restock order.
type ReorderStatus string

const (
	ReorderPending   ReorderStatus = "pending"
	ReorderOrdered   ReorderStatus = "ordered"
	ReorderReceived  ReorderStatus = "received"
	ReorderCancelled ReorderStatus = "cancelled"
)

// Reorder is a restock order for a component. Receiving it adds its quantity
// to stock.
type Reorder struct {
	ID          string             `json:"id"`
	ComponentID shared.ComponentID `json:"componentId"`
	Quantity    int                `json:"quantity"`
	Status      ReorderStatus      `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// Transition moves the reorder to a new status. Only forward transitions
// from pending/ordered are legal; received and cancelled are terminal.
func (r *Reorder) Transition(to ReorderStatus) error {
	legal := map[ReorderStatus][]ReorderStatus{
		ReorderPending: {ReorderOrdered, ReorderCancelled},
		ReorderOrdered: {ReorderReceived, ReorderCancelled},
	}
	for _, next := range legal[r.Status] {
		if next == to {
			r.Status = to
			r.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrValidation
}

// PricePoint is one entry in a component's price history.
type PricePoint struct {
	ID          string             `json:"id"`
	ComponentID shared.ComponentID `json:"componentId"`
	Price       shared.Money       `json:"price"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// PriceChangePercent returns the percentage change from the first recorded
// price to the last. History must be in chronological order.
func PriceChangePercent(history []PricePoint) float64 {
	if len(history) < 2 {
		return 0
	}
	first := history[0].Price.Cents()
	last := history[len(history)-1].Price.Cents()
	if first == 0 {
		return 0
	}
	return float64(last-first) / float64(first) * 100
}
