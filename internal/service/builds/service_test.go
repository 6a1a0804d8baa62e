package builds

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pcforge-backend/internal/domain/compat"
	"pcforge-backend/internal/domain/component"
	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/repository"
	"pcforge-backend/internal/repository/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Repository) {
	t.Helper()
	repo := memory.New()
	return NewService(repo, compat.NewEvaluator(compat.DefaultPolicy()), zaptest.NewLogger(t)), repo
}

func mustUserID(t *testing.T, s string) shared.UserID {
	t.Helper()
	id, err := shared.NewUserID(s)
	require.NoError(t, err)
	return id
}

func seedComponent(t *testing.T, repo *memory.Repository, name string, category component.Category, cents int64, spec component.Specification) *component.Component {
	t.Helper()
	price, err := shared.NewMoney(cents)
	require.NoError(t, err)
	c, err := component.NewComponent(name, "", category, "", price, spec)
	require.NoError(t, err)
	require.NoError(t, repo.CreateComponent(context.Background(), c))
	return c
}

func seedCPU(t *testing.T, repo *memory.Repository) *component.Component {
	return seedComponent(t, repo, "Ryzen 7 7700X", component.CategoryCPU, 34900, component.Specification{
		CPU: &component.CPUSpec{Socket: "AM5", CoreCount: component.IntPtr(8), TDPWatts: component.IntPtr(105)},
	})
}

func seedBoardDDR4(t *testing.T, repo *memory.Repository) *component.Component {
	return seedComponent(t, repo, "B550 Tomahawk", component.CategoryMotherboard, 17900, component.Specification{
		Motherboard: &component.MotherboardSpec{
			Socket:     "AM4",
			MemoryType: "DDR4",
		},
	})
}

func seedRAMDDR5(t *testing.T, repo *memory.Repository) *component.Component {
	return seedComponent(t, repo, "Vengeance DDR5", component.CategoryRAM, 11900, component.Specification{
		RAM: &component.RAMSpec{Type: "DDR5", SpeedMHz: component.IntPtr(6000), CapacityGB: component.IntPtr(32)},
	})
}

func TestCreateAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := mustUserID(t, "user-1")

	created, err := svc.Create(ctx, owner, "First rig", "budget gaming")
	require.NoError(t, err)
	assert.Empty(t, created.Violations)
	assert.Zero(t, created.TotalCents)
	assert.Len(t, created.MissingRequired, 5)

	got, err := svc.Get(ctx, owner, created.Build.ID)
	require.NoError(t, err)
	assert.Equal(t, "First rig", got.Build.Name)
}

func TestForeignBuildReadsAsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, mustUserID(t, "user-1"), "Mine", "")
	require.NoError(t, err)

	_, err = svc.Get(ctx, mustUserID(t, "user-2"), created.Build.ID)
	assert.ErrorIs(t, err, shared.ErrBuildNotFound)
}

func TestAddComponentSnapshotsPriceAndPersists(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := mustUserID(t, "user-1")
	cpu := seedCPU(t, repo)

	created, err := svc.Create(ctx, owner, "Rig", "")
	require.NoError(t, err)

	added, err := svc.AddComponent(ctx, owner, created.Build.ID, cpu.ID, 1)
	require.NoError(t, err)
	assert.True(t, added.Decision.Accepted)
	assert.Equal(t, int64(34900), added.Report.TotalCents)

	// Catalog price changes do not reprice the stored build.
	cpu.ChangePrice(shared.MustMoney(39900))
	require.NoError(t, repo.UpdateComponent(ctx, cpu))

	got, err := svc.Get(ctx, owner, created.Build.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(34900), got.TotalCents)
}

func TestAddIncompatibleComponentSucceedsWithViolations(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := mustUserID(t, "user-1")
	board := seedBoardDDR4(t, repo)
	ram := seedRAMDDR5(t, repo)

	created, err := svc.Create(ctx, owner, "Rig", "")
	require.NoError(t, err)
	_, err = svc.AddComponent(ctx, owner, created.Build.ID, board.ID, 1)
	require.NoError(t, err)

	added, err := svc.AddComponent(ctx, owner, created.Build.ID, ram.ID, 1)
	require.NoError(t, err)
	assert.False(t, added.Decision.Accepted)
	require.NotEmpty(t, added.Decision.Violations)
	assert.NotEmpty(t, added.Report.Violations)

	// The part landed regardless; compatibility is advisory.
	assert.Len(t, added.Report.Build.Selections, 2)
}

func TestAddComponentRejectsBadQuantity(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := mustUserID(t, "user-1")
	cpu := seedCPU(t, repo)

	created, err := svc.Create(ctx, owner, "Rig", "")
	require.NoError(t, err)

	_, err = svc.AddComponent(ctx, owner, created.Build.ID, cpu.ID, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidQuantity)

	// One CPU per build; a doubled quantity never lands.
	_, err = svc.AddComponent(ctx, owner, created.Build.ID, cpu.ID, 2)
	assert.ErrorIs(t, err, shared.ErrInvalidQuantity)

	got, err := svc.Get(ctx, owner, created.Build.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Build.Selections)
}

func TestRemoveComponentClearsViolations(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := mustUserID(t, "user-1")
	board := seedBoardDDR4(t, repo)
	ram := seedRAMDDR5(t, repo)

	created, err := svc.Create(ctx, owner, "Rig", "")
	require.NoError(t, err)
	_, err = svc.AddComponent(ctx, owner, created.Build.ID, board.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddComponent(ctx, owner, created.Build.ID, ram.ID, 1)
	require.NoError(t, err)

	report, err := svc.RemoveComponent(ctx, owner, created.Build.ID, ram.ID)
	require.NoError(t, err)
	assert.Empty(t, report.Violations)
	assert.Equal(t, board.Price.Cents(), report.TotalCents)
}

func TestCategoryConflictOnSecondCPU(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := mustUserID(t, "user-1")
	cpu := seedCPU(t, repo)
	other := seedComponent(t, repo, "Core i5-14600K", component.CategoryCPU, 31900, component.Specification{
		CPU: &component.CPUSpec{Socket: "LGA1700", CoreCount: component.IntPtr(14)},
	})

	created, err := svc.Create(ctx, owner, "Rig", "")
	require.NoError(t, err)
	_, err = svc.AddComponent(ctx, owner, created.Build.ID, cpu.ID, 1)
	require.NoError(t, err)

	_, err = svc.AddComponent(ctx, owner, created.Build.ID, other.ID, 1)
	assert.ErrorIs(t, err, shared.ErrCategoryConflict)
}

func TestRemoveUnknownComponent(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := mustUserID(t, "user-1")
	cpu := seedCPU(t, repo)

	created, err := svc.Create(ctx, owner, "Rig", "")
	require.NoError(t, err)

	_, err = svc.RemoveComponent(ctx, owner, created.Build.ID, cpu.ID)
	assert.ErrorIs(t, err, shared.ErrSelectionNotFound)
}

func TestShareTokenIsStableAndResolvable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := mustUserID(t, "user-1")

	created, err := svc.Create(ctx, owner, "Rig", "")
	require.NoError(t, err)

	token, err := svc.Share(ctx, owner, created.Build.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	again, err := svc.Share(ctx, owner, created.Build.ID)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	shared1, err := svc.GetShared(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, created.Build.ID.String(), shared1.Build.ID.String())

	shared2, err := svc.GetShared(ctx, token)
	require.NoError(t, err)
	assert.Greater(t, shared2.Build.ViewCount, 0)
}

func TestPublicFeed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := mustUserID(t, "user-1")

	first, err := svc.Create(ctx, owner, "Public rig", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner, "Private rig", "")
	require.NoError(t, err)

	_, err = svc.SetPublic(ctx, owner, first.Build.ID, true)
	require.NoError(t, err)

	feed, err := svc.ListPublic(ctx, repository.Pagination{})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "Public rig", feed[0].Build.Name)

	got, err := svc.GetPublic(ctx, first.Build.ID)
	require.NoError(t, err)
	assert.True(t, got.Build.IsPublic)

	// Unpublish removes it from the feed and from public reads.
	_, err = svc.SetPublic(ctx, owner, first.Build.ID, false)
	require.NoError(t, err)

	feed, err = svc.ListPublic(ctx, repository.Pagination{})
	require.NoError(t, err)
	assert.Empty(t, feed)

	_, err = svc.GetPublic(ctx, first.Build.ID)
	assert.ErrorIs(t, err, shared.ErrBuildNotFound)
}

func TestCheckComponentsIsStateless(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := mustUserID(t, "user-1")
	board := seedBoardDDR4(t, repo)
	ram := seedRAMDDR5(t, repo)

	report, err := svc.CheckComponents(ctx, owner, []SelectionInput{
		{ComponentID: board.ID, Quantity: 1},
		{ComponentID: ram.ID, Quantity: 1},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, report.Violations)

	// Nothing was persisted.
	mine, err := svc.ListByUser(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestOptimisticLockConflictSurfaces(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := mustUserID(t, "user-1")
	cpu := seedCPU(t, repo)

	created, err := svc.Create(ctx, owner, "Rig", "")
	require.NoError(t, err)

	repo.SetError("UpdateBuild", shared.ErrVersionConflict)
	_, err = svc.AddComponent(ctx, owner, created.Build.ID, cpu.ID, 1)
	assert.ErrorIs(t, err, shared.ErrVersionConflict)
}
