package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pcforge-backend/internal/domain/component"
	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/repository"
	"pcforge-backend/internal/repository/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Repository) {
	t.Helper()
	repo := memory.New()
	return NewService(repo, zaptest.NewLogger(t), true), repo
}

func cpuInput() CreateComponentInput {
	return CreateComponentInput{
		Name:       "Ryzen 7 7700X",
		Slug:       "ryzen-7-7700x",
		Category:   component.CategoryCPU,
		PriceCents: 34900,
		Spec: component.Specification{
			CPU: &component.CPUSpec{Socket: "AM5", CoreCount: component.IntPtr(8), TDPWatts: component.IntPtr(105)},
		},
	}
}

func TestCreateComponentSeedsPriceHistory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateComponent(ctx, cpuInput())
	require.NoError(t, err)
	assert.Equal(t, component.CategoryCPU, c.Category)
	assert.Equal(t, int64(34900), c.Price.Cents())

	history, change, err := svc.PriceHistory(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Zero(t, change)
}

func TestCreateComponentRejectsSpecMismatch(t *testing.T) {
	svc, _ := newTestService(t)

	input := cpuInput()
	input.Spec = component.Specification{
		RAM: &component.RAMSpec{Type: "DDR5", SpeedMHz: component.IntPtr(6000), CapacityGB: component.IntPtr(32)},
	}
	_, err := svc.CreateComponent(context.Background(), input)
	assert.ErrorIs(t, err, shared.ErrSpecCategoryMismatch)
}

func TestUpdatePriceAppendsHistory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateComponent(ctx, cpuInput())
	require.NoError(t, err)

	newPrice := int64(29900)
	updated, err := svc.UpdateComponent(ctx, c.ID, UpdateComponentInput{PriceCents: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, newPrice, updated.Price.Cents())

	history, change, err := svc.PriceHistory(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.InDelta(t, -14.33, change, 0.01)
}

func TestUpdateSamePriceDoesNotAppendHistory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateComponent(ctx, cpuInput())
	require.NoError(t, err)

	samePrice := c.Price.Cents()
	_, err = svc.UpdateComponent(ctx, c.ID, UpdateComponentInput{PriceCents: &samePrice})
	require.NoError(t, err)

	history, _, err := svc.PriceHistory(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestMovementUpdatesStockAndAudit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateComponent(ctx, cpuInput())
	require.NoError(t, err)

	c, err = svc.RecordMovement(ctx, c.ID, MovementInput{Type: component.MovementIn, Quantity: 50})
	require.NoError(t, err)
	assert.Equal(t, 50, c.Stock)

	c, err = svc.RecordMovement(ctx, c.ID, MovementInput{Type: component.MovementOut, Quantity: 20})
	require.NoError(t, err)
	assert.Equal(t, 30, c.Stock)

	movements, err := svc.ListMovements(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 2)
}

func TestMovementOutCannotExceedStock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateComponent(ctx, cpuInput())
	require.NoError(t, err)

	_, err = svc.RecordMovement(ctx, c.ID, MovementInput{Type: component.MovementOut, Quantity: 1})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	// Stock stayed untouched.
	got, err := svc.GetComponent(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Stock)
}

func TestLowStockOpensAlertAndReorder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateComponent(ctx, cpuInput())
	require.NoError(t, err)

	_, err = svc.RecordMovement(ctx, c.ID, MovementInput{Type: component.MovementIn, Quantity: 50})
	require.NoError(t, err)

	// Draw down to the reorder point (default 10).
	_, err = svc.RecordMovement(ctx, c.ID, MovementInput{Type: component.MovementOut, Quantity: 42})
	require.NoError(t, err)

	alerts, err := svc.ListOpenAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, component.StockLow, alerts[0].Status)

	reorders, err := svc.ListReorders(ctx, component.ReorderPending)
	require.NoError(t, err)
	require.Len(t, reorders, 1)
	assert.Equal(t, c.ReorderQty, reorders[0].Quantity)

	// Another draw-down does not open a second reorder while one is open.
	_, err = svc.RecordMovement(ctx, c.ID, MovementInput{Type: component.MovementOut, Quantity: 2})
	require.NoError(t, err)
	reorders, err = svc.ListReorders(ctx, component.ReorderPending)
	require.NoError(t, err)
	assert.Len(t, reorders, 1)
}

func TestReceivingReorderBooksStockIn(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateComponent(ctx, cpuInput())
	require.NoError(t, err)

	_, err = svc.RecordMovement(ctx, c.ID, MovementInput{Type: component.MovementIn, Quantity: 12})
	require.NoError(t, err)
	_, err = svc.RecordMovement(ctx, c.ID, MovementInput{Type: component.MovementOut, Quantity: 8})
	require.NoError(t, err)

	reorders, err := svc.ListReorders(ctx, component.ReorderPending)
	require.NoError(t, err)
	require.Len(t, reorders, 1)

	re, err := svc.TransitionReorder(ctx, reorders[0].ID, component.ReorderOrdered)
	require.NoError(t, err)
	re, err = svc.TransitionReorder(ctx, re.ID, component.ReorderReceived)
	require.NoError(t, err)
	assert.Equal(t, component.ReorderReceived, re.Status)

	got, err := svc.GetComponent(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 4+re.Quantity, got.Stock)

	movements, err := svc.ListMovements(ctx, c.ID)
	require.NoError(t, err)
	last := movements[len(movements)-1]
	assert.Equal(t, re.ID, last.Reference)
}

func TestIllegalReorderTransition(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateComponent(ctx, cpuInput())
	require.NoError(t, err)
	_, err = svc.RecordMovement(ctx, c.ID, MovementInput{Type: component.MovementIn, Quantity: 12})
	require.NoError(t, err)
	_, err = svc.RecordMovement(ctx, c.ID, MovementInput{Type: component.MovementOut, Quantity: 8})
	require.NoError(t, err)

	reorders, err := svc.ListReorders(ctx, component.ReorderPending)
	require.NoError(t, err)
	require.Len(t, reorders, 1)

	// pending -> received skips the ordered step.
	_, err = svc.TransitionReorder(ctx, reorders[0].ID, component.ReorderReceived)
	assert.Error(t, err)
}

func TestListComponentsFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateComponent(ctx, cpuInput())
	require.NoError(t, err)

	ramInput := CreateComponentInput{
		Name:       "Vengeance 32GB DDR5",
		Slug:       "vengeance-32gb-ddr5",
		Category:   component.CategoryRAM,
		PriceCents: 11900,
		Spec: component.Specification{
			RAM: &component.RAMSpec{Type: "DDR5", SpeedMHz: component.IntPtr(6000), CapacityGB: component.IntPtr(32)},
		},
	}
	_, err = svc.CreateComponent(ctx, ramInput)
	require.NoError(t, err)

	cpus, err := svc.ListComponents(ctx, repository.ComponentQuery{Category: component.CategoryCPU})
	require.NoError(t, err)
	require.Len(t, cpus, 1)
	assert.Equal(t, "Ryzen 7 7700X", cpus[0].Name)

	cheap, err := svc.ListComponents(ctx, repository.ComponentQuery{MaxCents: 20000})
	require.NoError(t, err)
	require.Len(t, cheap, 1)
	assert.Equal(t, component.CategoryRAM, cheap[0].Category)
}
