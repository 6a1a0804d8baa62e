package component

import "pcforge-backend/internal/domain/shared"

// Category is the closed classification of a catalog component. The set is
// fixed: rules and specification shapes are keyed on it.
type Category string

const (
	CategoryCPU         Category = "CPU"
	CategoryMotherboard Category = "Motherboard"
	CategoryRAM         Category = "RAM"
	CategoryGPU         Category = "GPU"
	CategoryStorage     Category = "Storage"
	CategoryPSU         Category = "PSU"
	CategoryCase        Category = "Case"
	CategoryCooling     Category = "Cooling"
)

// AllCategories lists every valid category in display order.
var AllCategories = []Category{
	CategoryCPU,
	CategoryMotherboard,
	CategoryRAM,
	CategoryGPU,
	CategoryStorage,
	CategoryPSU,
	CategoryCase,
	CategoryCooling,
}

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	for _, known := range AllCategories {
		if c == known {
			return c, nil
		}
	}
	return "", shared.ErrUnknownCategory
}

// String returns the category name.
func (c Category) String() string { return string(c) }

// IsSingleInstance reports whether a build may hold at most one component of
// this category. Storage devices and cooling parts may repeat.
func (c Category) IsSingleInstance() bool {
	switch c {
	case CategoryStorage, CategoryCooling:
		return false
	default:
		return true
	}
}

// AllowsQuantity reports whether a selection of this category may carry a
// quantity above one. RAM is a single entry whose quantity counts sticks;
// storage and cooling repeat freely. Everything else is one per build.
func (c Category) AllowsQuantity() bool {
	switch c {
	case CategoryRAM, CategoryStorage, CategoryCooling:
		return true
	default:
		return false
	}
}

// IsRequired reports whether a complete build must include this category.
// GPU, Storage, and Cooling are optional (integrated graphics, diskless and
// stock-cooled builds exist).
func (c Category) IsRequired() bool {
	switch c {
	case CategoryCPU, CategoryMotherboard, CategoryRAM, CategoryPSU, CategoryCase:
		return true
	default:
		return false
	}
}
