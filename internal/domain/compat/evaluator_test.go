package compat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcforge-backend/internal/domain/build"
	"pcforge-backend/internal/domain/component"
	"pcforge-backend/internal/domain/shared"
)

// Catalog fixtures. Prices are irrelevant to compatibility; a flat value
// keeps the fixtures short.

func fixture(t *testing.T, name string, cat component.Category, spec component.Specification) *component.Component {
	t.Helper()
	c, err := component.NewComponent(name, name, cat, "", shared.MustMoney(10000), spec)
	require.NoError(t, err)
	return c
}

func cpuAM5(t *testing.T, tdp int) *component.Component {
	return fixture(t, "ryzen-7600", component.CategoryCPU, component.Specification{
		CPU: &component.CPUSpec{Socket: "AM5", CoreCount: component.IntPtr(6), TDPWatts: component.IntPtr(tdp)},
	})
}

func boardAM5(t *testing.T) *component.Component {
	return fixture(t, "b650-board", component.CategoryMotherboard, component.Specification{
		Motherboard: &component.MotherboardSpec{
			Socket:            "AM5",
			FormFactor:        "ATX",
			MemoryType:        "DDR5",
			MemorySlots:       component.IntPtr(4),
			MaxMemoryGB:       component.IntPtr(128),
			MaxMemorySpeedMHz: component.IntPtr(6000),
			NVMeSlots:         component.IntPtr(2),
			SATAPorts:         component.IntPtr(4),
		},
	})
}

func ramDDR5(t *testing.T, capacityGB int) *component.Component {
	return fixture(t, "ddr5-kit", component.CategoryRAM, component.Specification{
		RAM: &component.RAMSpec{Type: "DDR5", SpeedMHz: component.IntPtr(5600), CapacityGB: component.IntPtr(capacityGB)},
	})
}

func gpuWithTDP(t *testing.T, tdp int) *component.Component {
	return fixture(t, "gpu", component.CategoryGPU, component.Specification{
		GPU: &component.GPUSpec{TDPWatts: component.IntPtr(tdp), LengthMM: component.IntPtr(285)},
	})
}

func psu(t *testing.T, wattage int) *component.Component {
	return fixture(t, "psu", component.CategoryPSU, component.Specification{
		PSU: &component.PSUSpec{Wattage: component.IntPtr(wattage), FormFactor: "ATX"},
	})
}

func emptyBuild(t *testing.T) *build.Build {
	t.Helper()
	uid, err := shared.NewUserID("user-1")
	require.NoError(t, err)
	b, err := build.New(uid, "test rig", "")
	require.NoError(t, err)
	return b
}

func hasRule(violations []Violation, code RuleCode) bool {
	for _, v := range violations {
		if v.Rule == code {
			return true
		}
	}
	return false
}

func TestValidateEmptyBuild(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())
	assert.Empty(t, e.Validate(emptyBuild(t)), "no data means no violations")
}

// TestPSUWattageExample walks the headroom arithmetic: a 105W CPU and 320W
// GPU draw 425W, which with 20% headroom needs 510W and fits a 550W supply;
// a 420W GPU pushes the requirement to 630W and fails.
func TestPSUWattageExample(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())

	b := emptyBuild(t)
	require.NoError(t, b.Add(cpuAM5(t, 105), 1))
	require.NoError(t, b.Add(boardAM5(t), 1))
	require.NoError(t, b.Add(psu(t, 550), 1))

	t.Run("WithinHeadroom", func(t *testing.T) {
		decision, err := e.CanAdd(b, gpuWithTDP(t, 320), 1)
		require.NoError(t, err)
		assert.True(t, decision.Accepted)
		assert.Empty(t, decision.Violations)
	})

	t.Run("ExceedsHeadroom", func(t *testing.T) {
		decision, err := e.CanAdd(b, gpuWithTDP(t, 420), 1)
		require.NoError(t, err)
		assert.False(t, decision.Accepted)
		assert.True(t, hasRule(decision.Violations, RulePSUWattage))
	})
}

func TestMemoryTypeMismatch(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())

	ddr4Board := fixture(t, "b550-board", component.CategoryMotherboard, component.Specification{
		Motherboard: &component.MotherboardSpec{Socket: "AM4", MemoryType: "DDR4"},
	})
	b := emptyBuild(t)
	require.NoError(t, b.Add(ddr4Board, 1))

	decision, err := e.CanAdd(b, ramDDR5(t, 16), 1)
	require.NoError(t, err)
	assert.False(t, decision.Accepted)
	assert.True(t, hasRule(decision.Violations, RuleMemoryType))
}

// TestRemoveClearsViolations: removing the motherboard makes every
// RAM-versus-board rule inapplicable, so the violation disappears on the
// next validation.
func TestRemoveClearsViolations(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())

	board := boardAM5(t)
	bigRAM := fixture(t, "oversized-kit", component.CategoryRAM, component.Specification{
		RAM: &component.RAMSpec{Type: "DDR5", CapacityGB: component.IntPtr(192)},
	})

	b := emptyBuild(t)
	require.NoError(t, b.Add(board, 1))
	require.NoError(t, b.Add(bigRAM, 1))
	require.True(t, hasRule(e.Validate(b), RuleMemoryCapacity))

	require.NoError(t, b.Remove(board.ID))
	assert.Empty(t, e.Validate(b))
}

// TestExhaustiveReporting: every broken rule is reported at once, never
// just the first.
func TestExhaustiveReporting(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())

	intelCPU := fixture(t, "i5-13600", component.CategoryCPU, component.Specification{
		CPU: &component.CPUSpec{Socket: "LGA1700", TDPWatts: component.IntPtr(181)},
	})
	ddr4 := fixture(t, "ddr4-kit", component.CategoryRAM, component.Specification{
		RAM: &component.RAMSpec{Type: "DDR4"},
	})
	weakPSU := psu(t, 200)

	b := emptyBuild(t)
	require.NoError(t, b.Add(intelCPU, 1))
	require.NoError(t, b.Add(boardAM5(t), 1)) // AM5 board: socket and memory type both wrong
	require.NoError(t, b.Add(ddr4, 1))
	require.NoError(t, b.Add(weakPSU, 1))

	violations := e.Validate(b)
	assert.True(t, hasRule(violations, RuleCPUSocket))
	assert.True(t, hasRule(violations, RuleMemoryType))
	assert.True(t, hasRule(violations, RulePSUWattage))
	assert.GreaterOrEqual(t, len(violations), 3)
}

// TestOrderIndependence: the same membership yields the same violations in
// the same order no matter how it was assembled.
func TestOrderIndependence(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())

	makeParts := func(t *testing.T) []*component.Component {
		return []*component.Component{
			fixture(t, "i5", component.CategoryCPU, component.Specification{
				CPU: &component.CPUSpec{Socket: "LGA1700", TDPWatts: component.IntPtr(181)},
			}),
			boardAM5(t),
			ramDDR5(t, 32),
			gpuWithTDP(t, 320),
			psu(t, 450),
		}
	}

	reference := emptyBuild(t)
	for _, c := range makeParts(t) {
		require.NoError(t, reference.Add(c, 1))
	}
	want := e.Validate(reference)
	require.NotEmpty(t, want)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		parts := makeParts(t)
		rng.Shuffle(len(parts), func(a, b int) { parts[a], parts[b] = parts[b], parts[a] })

		b := emptyBuild(t)
		for _, c := range parts {
			require.NoError(t, b.Add(c, 1))
		}

		got := e.Validate(b)
		require.Len(t, got, len(want))
		for j := range want {
			assert.Equal(t, want[j].Rule, got[j].Rule)
		}
	}
}

// TestValidateIdempotent: back-to-back validations without mutation return
// identical results.
func TestValidateIdempotent(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())

	b := emptyBuild(t)
	require.NoError(t, b.Add(cpuAM5(t, 105), 1))
	require.NoError(t, b.Add(boardAM5(t), 1))
	require.NoError(t, b.Add(gpuWithTDP(t, 420), 1))
	require.NoError(t, b.Add(psu(t, 450), 1))

	first := e.Validate(b)
	second := e.Validate(b)
	assert.Equal(t, first, second)
}

// TestCanAddDoesNotMutate: probing a candidate leaves the build untouched.
func TestCanAddDoesNotMutate(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())

	b := emptyBuild(t)
	require.NoError(t, b.Add(boardAM5(t), 1))
	before := len(b.Selections)
	version := b.Version.Int()

	_, err := e.CanAdd(b, ramDDR5(t, 32), 2)
	require.NoError(t, err)

	assert.Len(t, b.Selections, before)
	assert.Equal(t, version, b.Version.Int())
}

func TestMissingRequired(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())

	b := emptyBuild(t)
	missing := e.MissingRequired(b)
	assert.ElementsMatch(t, []component.Category{
		component.CategoryCPU,
		component.CategoryMotherboard,
		component.CategoryRAM,
		component.CategoryPSU,
		component.CategoryCase,
	}, missing)

	require.NoError(t, b.Add(cpuAM5(t, 105), 1))
	assert.NotContains(t, e.MissingRequired(b), component.CategoryCPU)
}

func TestPolicyMarginOverride(t *testing.T) {
	strict := NewEvaluator(Policy{PSUHeadroomMargin: 0.50})

	b := emptyBuild(t)
	require.NoError(t, b.Add(cpuAM5(t, 105), 1))
	require.NoError(t, b.Add(gpuWithTDP(t, 320), 1))

	// 425W * 1.5 = 638W: a 550W supply fails under the stricter margin.
	decision, err := strict.CanAdd(b, psu(t, 550), 1)
	require.NoError(t, err)
	assert.False(t, decision.Accepted)
	assert.True(t, hasRule(decision.Violations, RulePSUWattage))
}

// TestCanAddQuantityBounds: the probe rejects exactly what Add rejects, so
// an approved probe can always be applied.
func TestCanAddQuantityBounds(t *testing.T) {
	e := NewEvaluator(DefaultPolicy())
	b := emptyBuild(t)

	t.Run("ZeroQuantity", func(t *testing.T) {
		_, err := e.CanAdd(b, cpuAM5(t, 105), 0)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
		assert.ErrorIs(t, b.Add(cpuAM5(t, 105), 0), shared.ErrInvalidQuantity)
	})

	t.Run("MultipleCPUs", func(t *testing.T) {
		_, err := e.CanAdd(b, cpuAM5(t, 105), 2)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
		assert.ErrorIs(t, b.Add(cpuAM5(t, 105), 2), shared.ErrInvalidQuantity)
	})

	t.Run("MultipleRAMSticks", func(t *testing.T) {
		decision, err := e.CanAdd(b, ramDDR5(t, 16), 4)
		require.NoError(t, err)
		assert.True(t, decision.Accepted)
	})
}
