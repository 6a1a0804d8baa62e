package component

import "pcforge-backend/internal/domain/shared"

// Specification is a tagged union of per-category spec shapes: exactly one
// field is set, matching the component's category. Optional fields are
// pointers or empty strings; an absent field constrains nothing.
type Specification struct {
	CPU         *CPUSpec         `json:"cpu,omitempty"`
	Motherboard *MotherboardSpec `json:"motherboard,omitempty"`
	RAM         *RAMSpec         `json:"ram,omitempty"`
	GPU         *GPUSpec         `json:"gpu,omitempty"`
	Storage     *StorageSpec     `json:"storage,omitempty"`
	PSU         *PSUSpec         `json:"psu,omitempty"`
	Case        *CaseSpec        `json:"case,omitempty"`
	Cooling     *CoolingSpec     `json:"cooling,omitempty"`
}

// CPUSpec describes a processor.
type CPUSpec struct {
	Socket    string `json:"socket,omitempty"`
	CoreCount *int   `json:"coreCount,omitempty"`
	TDPWatts  *int   `json:"tdpWatts,omitempty"`
}

// MotherboardSpec describes a motherboard.
type MotherboardSpec struct {
	Socket            string `json:"socket,omitempty"`
	Chipset           string `json:"chipset,omitempty"`
	FormFactor        string `json:"formFactor,omitempty"`
	MemoryType        string `json:"memoryType,omitempty"`
	MemorySlots       *int   `json:"memorySlots,omitempty"`
	MaxMemoryGB       *int   `json:"maxMemoryGb,omitempty"`
	MaxMemorySpeedMHz *int   `json:"maxMemorySpeedMhz,omitempty"`
	NVMeSlots         *int   `json:"nvmeSlots,omitempty"`
	SATAPorts         *int   `json:"sataPorts,omitempty"`
}

// RAMSpec describes a single memory module.
type RAMSpec struct {
	Type       string `json:"type,omitempty"` // DDR4, DDR5, ...
	SpeedMHz   *int   `json:"speedMhz,omitempty"`
	CapacityGB *int   `json:"capacityGb,omitempty"`
}

// GPUSpec describes a graphics card.
type GPUSpec struct {
	TDPWatts *int `json:"tdpWatts,omitempty"`
	LengthMM *int `json:"lengthMm,omitempty"`
}

// StorageSpec describes a drive.
type StorageSpec struct {
	Interface  string `json:"interface,omitempty"` // NVMe or SATA
	CapacityGB *int   `json:"capacityGb,omitempty"`
}

// PSUSpec describes a power supply.
type PSUSpec struct {
	Wattage    *int   `json:"wattage,omitempty"`
	FormFactor string `json:"formFactor,omitempty"`
}

// CaseSpec describes a chassis. Clearance limits are millimetres.
type CaseSpec struct {
	MaxGPULengthMM    *int     `json:"maxGpuLengthMm,omitempty"`
	MaxCoolerHeightMM *int     `json:"maxCoolerHeightMm,omitempty"`
	FormFactors       []string `json:"formFactors,omitempty"`
	PSUFormFactors    []string `json:"psuFormFactors,omitempty"`
}

// CoolingSpec describes a CPU cooler.
type CoolingSpec struct {
	SocketSupport []string `json:"socketSupport,omitempty"`
	HeightMM      *int     `json:"heightMm,omitempty"`
}

// Validate checks that exactly the field matching the category is set.
func (s Specification) Validate(category Category) error {
	set := 0
	var matches bool
	check := func(present bool, c Category) {
		if present {
			set++
			if c == category {
				matches = true
			}
		}
	}
	check(s.CPU != nil, CategoryCPU)
	check(s.Motherboard != nil, CategoryMotherboard)
	check(s.RAM != nil, CategoryRAM)
	check(s.GPU != nil, CategoryGPU)
	check(s.Storage != nil, CategoryStorage)
	check(s.PSU != nil, CategoryPSU)
	check(s.Case != nil, CategoryCase)
	check(s.Cooling != nil, CategoryCooling)

	if set != 1 || !matches {
		return shared.ErrSpecCategoryMismatch
	}
	return nil
}

// IntPtr is a convenience for building optional spec fields.
func IntPtr(v int) *int { return &v }
