package compat

import (
	"fmt"
	"math"

	"pcforge-backend/internal/domain/component"
)

// part is one membership entry as the rules see it: a resolved component and
// its quantity. Order carries no meaning here.
type part struct {
	comp *component.Component
	qty  int
}

// rule evaluates one constraint over the full membership. Rules are pure:
// they return zero or more violations and never mutate anything. A rule is
// vacuously satisfied when a specification field or category member it needs
// is absent.
type rule func(parts []part, p Policy) []Violation

// allRules is the complete rule set. Every rule runs on every evaluation;
// nothing short-circuits, so callers always see the full picture.
var allRules = []rule{
	cpuSocketRule,
	memoryTypeRule,
	memorySpeedRule,
	memoryCapacityRule,
	memorySlotsRule,
	coolerSocketRule,
	coolerHeightRule,
	gpuLengthRule,
	psuWattageRule,
	psuFormFactorRule,
	boardFormFactorRule,
	nvmeSlotsRule,
	sataPortsRule,
}

func single(parts []part, cat component.Category) *component.Component {
	for _, pt := range parts {
		if pt.comp.Category == cat {
			return pt.comp
		}
	}
	return nil
}

func each(parts []part, cat component.Category, fn func(pt part)) {
	for _, pt := range parts {
		if pt.comp.Category == cat {
			fn(pt)
		}
	}
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// cpuSocketRule: the CPU socket must match the motherboard socket exactly.
func cpuSocketRule(parts []part, _ Policy) []Violation {
	cpu := single(parts, component.CategoryCPU)
	mb := single(parts, component.CategoryMotherboard)
	if cpu == nil || mb == nil || cpu.Spec.CPU == nil || mb.Spec.Motherboard == nil {
		return nil
	}
	cs, ms := cpu.Spec.CPU.Socket, mb.Spec.Motherboard.Socket
	if cs == "" || ms == "" || cs == ms {
		return nil
	}
	return []Violation{{
		Rule:       RuleCPUSocket,
		Message:    fmt.Sprintf("CPU socket %s does not match motherboard socket %s", cs, ms),
		Categories: []component.Category{component.CategoryCPU, component.CategoryMotherboard},
	}}
}

// memoryTypeRule: every RAM module's type must equal the motherboard's
// memory type.
func memoryTypeRule(parts []part, _ Policy) []Violation {
	mb := single(parts, component.CategoryMotherboard)
	if mb == nil || mb.Spec.Motherboard == nil || mb.Spec.Motherboard.MemoryType == "" {
		return nil
	}
	want := mb.Spec.Motherboard.MemoryType

	var out []Violation
	each(parts, component.CategoryRAM, func(pt part) {
		ram := pt.comp.Spec.RAM
		if ram == nil || ram.Type == "" || ram.Type == want {
			return
		}
		out = append(out, Violation{
			Rule:       RuleMemoryType,
			Message:    fmt.Sprintf("%s is %s but the motherboard takes %s", pt.comp.Name, ram.Type, want),
			Categories: []component.Category{component.CategoryRAM, component.CategoryMotherboard},
		})
	})
	return out
}

// memorySpeedRule: RAM speed must not exceed the motherboard's supported
// maximum.
func memorySpeedRule(parts []part, _ Policy) []Violation {
	mb := single(parts, component.CategoryMotherboard)
	if mb == nil || mb.Spec.Motherboard == nil || mb.Spec.Motherboard.MaxMemorySpeedMHz == nil {
		return nil
	}
	max := *mb.Spec.Motherboard.MaxMemorySpeedMHz

	var out []Violation
	each(parts, component.CategoryRAM, func(pt part) {
		ram := pt.comp.Spec.RAM
		if ram == nil || ram.SpeedMHz == nil || *ram.SpeedMHz <= max {
			return
		}
		out = append(out, Violation{
			Rule:       RuleMemorySpeed,
			Message:    fmt.Sprintf("%s runs at %dMHz but the motherboard supports at most %dMHz", pt.comp.Name, *ram.SpeedMHz, max),
			Categories: []component.Category{component.CategoryRAM, component.CategoryMotherboard},
		})
	})
	return out
}

// memoryCapacityRule: summed RAM capacity must fit the motherboard maximum.
func memoryCapacityRule(parts []part, _ Policy) []Violation {
	mb := single(parts, component.CategoryMotherboard)
	if mb == nil || mb.Spec.Motherboard == nil || mb.Spec.Motherboard.MaxMemoryGB == nil {
		return nil
	}
	max := *mb.Spec.Motherboard.MaxMemoryGB

	total := 0
	counted := false
	each(parts, component.CategoryRAM, func(pt part) {
		if pt.comp.Spec.RAM != nil && pt.comp.Spec.RAM.CapacityGB != nil {
			total += *pt.comp.Spec.RAM.CapacityGB * pt.qty
			counted = true
		}
	})
	if !counted || total <= max {
		return nil
	}
	return []Violation{{
		Rule:       RuleMemoryCapacity,
		Message:    fmt.Sprintf("total memory %dGB exceeds the motherboard maximum of %dGB", total, max),
		Categories: []component.Category{component.CategoryRAM, component.CategoryMotherboard},
	}}
}

// memorySlotsRule: module count must fit the motherboard's slot count.
func memorySlotsRule(parts []part, _ Policy) []Violation {
	mb := single(parts, component.CategoryMotherboard)
	if mb == nil || mb.Spec.Motherboard == nil || mb.Spec.Motherboard.MemorySlots == nil {
		return nil
	}
	slots := *mb.Spec.Motherboard.MemorySlots

	modules := 0
	each(parts, component.CategoryRAM, func(pt part) { modules += pt.qty })
	if modules == 0 || modules <= slots {
		return nil
	}
	return []Violation{{
		Rule:       RuleMemorySlots,
		Message:    fmt.Sprintf("%d memory modules selected but the motherboard has %d slots", modules, slots),
		Categories: []component.Category{component.CategoryRAM, component.CategoryMotherboard},
	}}
}

// coolerSocketRule: each cooler must list the CPU's socket among its
// supported sockets.
func coolerSocketRule(parts []part, _ Policy) []Violation {
	cpu := single(parts, component.CategoryCPU)
	if cpu == nil || cpu.Spec.CPU == nil || cpu.Spec.CPU.Socket == "" {
		return nil
	}
	socket := cpu.Spec.CPU.Socket

	var out []Violation
	each(parts, component.CategoryCooling, func(pt part) {
		cool := pt.comp.Spec.Cooling
		if cool == nil || len(cool.SocketSupport) == 0 || contains(cool.SocketSupport, socket) {
			return
		}
		out = append(out, Violation{
			Rule:       RuleCoolerSocket,
			Message:    fmt.Sprintf("%s does not support socket %s", pt.comp.Name, socket),
			Categories: []component.Category{component.CategoryCooling, component.CategoryCPU},
		})
	})
	return out
}

// coolerHeightRule: cooler height must clear the case limit.
func coolerHeightRule(parts []part, _ Policy) []Violation {
	cs := single(parts, component.CategoryCase)
	if cs == nil || cs.Spec.Case == nil || cs.Spec.Case.MaxCoolerHeightMM == nil {
		return nil
	}
	max := *cs.Spec.Case.MaxCoolerHeightMM

	var out []Violation
	each(parts, component.CategoryCooling, func(pt part) {
		cool := pt.comp.Spec.Cooling
		if cool == nil || cool.HeightMM == nil || *cool.HeightMM <= max {
			return
		}
		out = append(out, Violation{
			Rule:       RuleCoolerHeight,
			Message:    fmt.Sprintf("%s is %dmm tall but the case clears %dmm", pt.comp.Name, *cool.HeightMM, max),
			Categories: []component.Category{component.CategoryCooling, component.CategoryCase},
		})
	})
	return out
}

// gpuLengthRule: GPU length must clear the case limit.
func gpuLengthRule(parts []part, _ Policy) []Violation {
	gpu := single(parts, component.CategoryGPU)
	cs := single(parts, component.CategoryCase)
	if gpu == nil || cs == nil || gpu.Spec.GPU == nil || cs.Spec.Case == nil {
		return nil
	}
	if gpu.Spec.GPU.LengthMM == nil || cs.Spec.Case.MaxGPULengthMM == nil {
		return nil
	}
	length, max := *gpu.Spec.GPU.LengthMM, *cs.Spec.Case.MaxGPULengthMM
	if length <= max {
		return nil
	}
	return []Violation{{
		Rule:       RuleGPULength,
		Message:    fmt.Sprintf("GPU is %dmm long but the case fits %dmm", length, max),
		Categories: []component.Category{component.CategoryGPU, component.CategoryCase},
	}}
}

// psuWattageRule: the summed CPU and GPU draw, scaled by the headroom
// margin, must fit the PSU wattage.
func psuWattageRule(parts []part, p Policy) []Violation {
	psu := single(parts, component.CategoryPSU)
	if psu == nil || psu.Spec.PSU == nil || psu.Spec.PSU.Wattage == nil {
		return nil
	}
	wattage := *psu.Spec.PSU.Wattage

	load := 0
	counted := false
	each(parts, component.CategoryCPU, func(pt part) {
		if pt.comp.Spec.CPU != nil && pt.comp.Spec.CPU.TDPWatts != nil {
			load += *pt.comp.Spec.CPU.TDPWatts * pt.qty
			counted = true
		}
	})
	each(parts, component.CategoryGPU, func(pt part) {
		if pt.comp.Spec.GPU != nil && pt.comp.Spec.GPU.TDPWatts != nil {
			load += *pt.comp.Spec.GPU.TDPWatts * pt.qty
			counted = true
		}
	})
	if !counted {
		return nil
	}

	required := int(math.Ceil(float64(load) * (1 + p.PSUHeadroomMargin)))
	if required <= wattage {
		return nil
	}
	return []Violation{{
		Rule:       RulePSUWattage,
		Message:    fmt.Sprintf("estimated load %dW needs %dW with headroom but the PSU provides %dW", load, required, wattage),
		Categories: []component.Category{component.CategoryPSU, component.CategoryCPU, component.CategoryGPU},
	}}
}

// psuFormFactorRule: the PSU form factor must be one the case accepts.
func psuFormFactorRule(parts []part, _ Policy) []Violation {
	psu := single(parts, component.CategoryPSU)
	cs := single(parts, component.CategoryCase)
	if psu == nil || cs == nil || psu.Spec.PSU == nil || cs.Spec.Case == nil {
		return nil
	}
	ff := psu.Spec.PSU.FormFactor
	accepted := cs.Spec.Case.PSUFormFactors
	if ff == "" || len(accepted) == 0 || contains(accepted, ff) {
		return nil
	}
	return []Violation{{
		Rule:       RulePSUFormFactor,
		Message:    fmt.Sprintf("PSU form factor %s is not accepted by the case", ff),
		Categories: []component.Category{component.CategoryPSU, component.CategoryCase},
	}}
}

// boardFormFactorRule: the motherboard form factor must be one the case
// accepts.
func boardFormFactorRule(parts []part, _ Policy) []Violation {
	mb := single(parts, component.CategoryMotherboard)
	cs := single(parts, component.CategoryCase)
	if mb == nil || cs == nil || mb.Spec.Motherboard == nil || cs.Spec.Case == nil {
		return nil
	}
	ff := mb.Spec.Motherboard.FormFactor
	accepted := cs.Spec.Case.FormFactors
	if ff == "" || len(accepted) == 0 || contains(accepted, ff) {
		return nil
	}
	return []Violation{{
		Rule:       RuleBoardFormFactor,
		Message:    fmt.Sprintf("motherboard form factor %s does not fit the case", ff),
		Categories: []component.Category{component.CategoryMotherboard, component.CategoryCase},
	}}
}

// nvmeSlotsRule: NVMe drive count must fit the motherboard's M.2 slots.
func nvmeSlotsRule(parts []part, _ Policy) []Violation {
	return storagePortRule(parts, "NVMe", RuleNVMeSlots,
		func(mb *component.MotherboardSpec) *int { return mb.NVMeSlots },
		"%d NVMe drives selected but the motherboard has %d NVMe slots")
}

// sataPortsRule: SATA drive count must fit the motherboard's SATA ports.
func sataPortsRule(parts []part, _ Policy) []Violation {
	return storagePortRule(parts, "SATA", RuleSATAPorts,
		func(mb *component.MotherboardSpec) *int { return mb.SATAPorts },
		"%d SATA drives selected but the motherboard has %d SATA ports")
}

func storagePortRule(parts []part, iface string, code RuleCode, limit func(*component.MotherboardSpec) *int, format string) []Violation {
	mb := single(parts, component.CategoryMotherboard)
	if mb == nil || mb.Spec.Motherboard == nil {
		return nil
	}
	max := limit(mb.Spec.Motherboard)
	if max == nil {
		return nil
	}

	count := 0
	each(parts, component.CategoryStorage, func(pt part) {
		if pt.comp.Spec.Storage != nil && pt.comp.Spec.Storage.Interface == iface {
			count += pt.qty
		}
	})
	if count == 0 || count <= *max {
		return nil
	}
	return []Violation{{
		Rule:       code,
		Message:    fmt.Sprintf(format, count, *max),
		Categories: []component.Category{component.CategoryStorage, component.CategoryMotherboard},
	}}
}
