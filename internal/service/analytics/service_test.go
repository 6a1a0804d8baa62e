package analytics

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pcforge-backend/internal/domain/build"
	"pcforge-backend/internal/domain/component"
	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/repository/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Repository) {
	t.Helper()
	repo := memory.New()
	return NewService(repo, zaptest.NewLogger(t)), repo
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

func seedBuild(t *testing.T, repo *memory.Repository, owner string, public bool, parts ...*component.Component) *build.Build {
	t.Helper()
	userID, err := shared.NewUserID(owner)
	require.NoError(t, err)
	b, err := build.New(userID, "rig", "")
	require.NoError(t, err)
	for _, p := range parts {
		require.NoError(t, b.Add(p, 1))
	}
	if public {
		b.Publish()
	}
	require.NoError(t, repo.CreateBuild(context.Background(), b))
	return b
}

func TestComponentPopularity(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	cpu := seedComponent(t, repo, "Ryzen 7 7700X", component.CategoryCPU, 34900, component.Specification{
		CPU: &component.CPUSpec{Socket: "AM5"},
	})
	gpu := seedComponent(t, repo, "RTX 4070", component.CategoryGPU, 59900, component.Specification{
		GPU: &component.GPUSpec{},
	})

	seedBuild(t, repo, "alice", true, cpu, gpu)
	seedBuild(t, repo, "bob", false, cpu)
	seedBuild(t, repo, "carol", false)

	ranking, err := svc.ComponentPopularity(ctx, 0)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, cpu.ID.String(), ranking[0].Component.ID.String())
	assert.Equal(t, 2, ranking[0].BuildCount)
	assert.Equal(t, 1, ranking[1].BuildCount)

	top, err := svc.ComponentPopularity(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestPriceTrendFor(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	cpu := seedComponent(t, repo, "Ryzen 7 7700X", component.CategoryCPU, 34900, component.Specification{
		CPU: &component.CPUSpec{Socket: "AM5"},
	})

	recordPrice := func(cents int64) {
		price, err := shared.NewMoney(cents)
		require.NoError(t, err)
		require.NoError(t, repo.RecordPricePoint(ctx, component.PricePoint{
			ID:          fmt.Sprintf("price-%d", cents),
			ComponentID: cpu.ID,
			Price:       price,
		}))
	}
	recordPrice(34900)
	recordPrice(29900)

	cpu.ChangePrice(shared.MustMoney(29900))
	require.NoError(t, repo.UpdateComponent(ctx, cpu))

	trend, err := svc.PriceTrendFor(ctx, cpu.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(34900), trend.FirstCents)
	assert.Equal(t, int64(29900), trend.CurrentCents)
	assert.InDelta(t, -14.33, trend.ChangePercent, 0.01)
	assert.Len(t, trend.Points, 2)
}

func TestPriceTrendUnknownComponent(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PriceTrendFor(context.Background(), shared.NewComponentID())
	assert.ErrorIs(t, err, shared.ErrComponentNotFound)
}

func TestBuildStatistics(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	stats, err := svc.BuildStatistics(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalBuilds)

	cpu := seedComponent(t, repo, "Ryzen 7 7700X", component.CategoryCPU, 30000, component.Specification{
		CPU: &component.CPUSpec{Socket: "AM5"},
	})
	seedBuild(t, repo, "alice", true, cpu)
	seedBuild(t, repo, "bob", false)

	stats, err = svc.BuildStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalBuilds)
	assert.Equal(t, 1, stats.PublicBuilds)
	assert.Equal(t, int64(15000), stats.AverageTotalCents)
	assert.InDelta(t, 0.5, stats.AverageSelections, 0.001)
}
