package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcforge-backend/internal/domain/component"
	"pcforge-backend/internal/domain/shared"
)

func testUser(t *testing.T) shared.UserID {
	t.Helper()
	id, err := shared.NewUserID("user-1")
	require.NoError(t, err)
	return id
}

func testComponent(t *testing.T, name string, cat component.Category, priceCents int64) *component.Component {
	t.Helper()
	spec := component.Specification{}
	switch cat {
	case component.CategoryCPU:
		spec.CPU = &component.CPUSpec{}
	case component.CategoryMotherboard:
		spec.Motherboard = &component.MotherboardSpec{}
	case component.CategoryRAM:
		spec.RAM = &component.RAMSpec{}
	case component.CategoryGPU:
		spec.GPU = &component.GPUSpec{}
	case component.CategoryStorage:
		spec.Storage = &component.StorageSpec{}
	case component.CategoryPSU:
		spec.PSU = &component.PSUSpec{}
	case component.CategoryCase:
		spec.Case = &component.CaseSpec{}
	case component.CategoryCooling:
		spec.Cooling = &component.CoolingSpec{}
	}
	c, err := component.NewComponent(name, name, cat, "", shared.MustMoney(priceCents), spec)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("EmptyBuild", func(t *testing.T) {
		b, err := New(testUser(t), "My first rig", "budget gaming")
		require.NoError(t, err)
		assert.Empty(t, b.Selections)
		assert.True(t, b.TotalPrice().IsZero())
		assert.False(t, b.ID.IsEmpty())
	})

	t.Run("NameRequired", func(t *testing.T) {
		_, err := New(testUser(t), "   ", "")
		assert.ErrorIs(t, err, shared.ErrBuildNameRequired)
	})
}

func TestAdd(t *testing.T) {
	t.Run("SingleInstanceConflict", func(t *testing.T) {
		b, _ := New(testUser(t), "rig", "")
		require.NoError(t, b.Add(testComponent(t, "board-a", component.CategoryMotherboard, 10000), 1))

		err := b.Add(testComponent(t, "board-b", component.CategoryMotherboard, 12000), 1)
		assert.ErrorIs(t, err, shared.ErrCategoryConflict)
		assert.Len(t, b.Selections, 1)
	})

	t.Run("RepeatableCategoryAllowsMultiple", func(t *testing.T) {
		b, _ := New(testUser(t), "rig", "")
		require.NoError(t, b.Add(testComponent(t, "ssd-1", component.CategoryStorage, 8000), 1))
		require.NoError(t, b.Add(testComponent(t, "ssd-2", component.CategoryStorage, 9000), 1))
		assert.Len(t, b.Selections, 2)
	})

	t.Run("ReaddingSamePartMergesQuantity", func(t *testing.T) {
		b, _ := New(testUser(t), "rig", "")
		fan := testComponent(t, "fan", component.CategoryCooling, 1500)
		require.NoError(t, b.Add(fan, 2))
		require.NoError(t, b.Add(fan, 1))

		require.Len(t, b.Selections, 1)
		assert.Equal(t, 3, b.Selections[0].Quantity)
	})

	t.Run("InvalidQuantity", func(t *testing.T) {
		b, _ := New(testUser(t), "rig", "")
		err := b.Add(testComponent(t, "cpu", component.CategoryCPU, 30000), 0)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})

	t.Run("QuantityAboveOneOnlyForStackableCategories", func(t *testing.T) {
		b, _ := New(testUser(t), "rig", "")
		err := b.Add(testComponent(t, "cpu", component.CategoryCPU, 30000), 2)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
		err = b.Add(testComponent(t, "gpu", component.CategoryGPU, 60000), 2)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)

		ram := testComponent(t, "ram-kit", component.CategoryRAM, 12000)
		require.NoError(t, b.Add(ram, 4))
		assert.Equal(t, 4, b.Selections[0].Quantity)
	})
}

func TestRemove(t *testing.T) {
	b, _ := New(testUser(t), "rig", "")
	cpu := testComponent(t, "cpu", component.CategoryCPU, 30000)
	require.NoError(t, b.Add(cpu, 1))

	t.Run("NotFound", func(t *testing.T) {
		err := b.Remove(shared.NewComponentID())
		assert.ErrorIs(t, err, shared.ErrSelectionNotFound)
	})

	t.Run("RemovesSelection", func(t *testing.T) {
		require.NoError(t, b.Remove(cpu.ID))
		assert.Empty(t, b.Selections)
		assert.True(t, b.TotalPrice().IsZero())
	})
}

// TestTotalPriceInvariant checks that the derived total always equals the
// sum of selection prices after every mutation.
func TestTotalPriceInvariant(t *testing.T) {
	b, _ := New(testUser(t), "rig", "")
	cpu := testComponent(t, "cpu", component.CategoryCPU, 29900)
	ram := testComponent(t, "ram", component.CategoryRAM, 8900)
	ssd := testComponent(t, "ssd", component.CategoryStorage, 7500)

	require.NoError(t, b.Add(cpu, 1))
	assert.Equal(t, int64(29900), b.TotalPrice().Cents())

	require.NoError(t, b.Add(ram, 1))
	assert.Equal(t, int64(38800), b.TotalPrice().Cents())

	require.NoError(t, b.Add(ssd, 2))
	assert.Equal(t, int64(53800), b.TotalPrice().Cents())

	require.NoError(t, b.Remove(ram.ID))
	assert.Equal(t, int64(44900), b.TotalPrice().Cents())
}

// TestPriceSnapshot checks that catalog price changes after selection do not
// reprice the build.
func TestPriceSnapshot(t *testing.T) {
	b, _ := New(testUser(t), "rig", "")
	gpu := testComponent(t, "gpu", component.CategoryGPU, 49900)
	require.NoError(t, b.Add(gpu, 1))

	gpu.ChangePrice(shared.MustMoney(59900))
	assert.Equal(t, int64(49900), b.TotalPrice().Cents())
}

func TestShareToken(t *testing.T) {
	b, _ := New(testUser(t), "rig", "")
	assert.Empty(t, b.ShareToken)

	token := b.EnsureShareToken()
	require.NotEmpty(t, token)
	assert.Equal(t, token, b.EnsureShareToken(), "token is generated once")
}

func TestSingleAndCategories(t *testing.T) {
	b, _ := New(testUser(t), "rig", "")
	cpu := testComponent(t, "cpu", component.CategoryCPU, 30000)
	require.NoError(t, b.Add(cpu, 1))

	assert.Equal(t, cpu, b.Single(component.CategoryCPU))
	assert.Nil(t, b.Single(component.CategoryGPU))
	assert.True(t, b.Categories()[component.CategoryCPU])
	assert.False(t, b.Categories()[component.CategoryPSU])
}

func TestPublish(t *testing.T) {
	b, _ := New(testUser(t), "rig", "")
	v := b.Version.Int()

	b.Publish()
	assert.True(t, b.IsPublic)
	assert.Greater(t, b.Version.Int(), v)

	b.Unpublish()
	assert.False(t, b.IsPublic)
}
