package compat

import "pcforge-backend/internal/domain/component"

// DefaultPSUHeadroomMargin is the safety factor applied to the combined CPU
// and GPU power draw before comparing against PSU wattage: a 425W load with
// the 20% margin requires a 510W supply.
const DefaultPSUHeadroomMargin = 0.20

// Policy holds the tunable constants of the rule set. Values are
// configuration, not literals, so deployments can tighten or relax them.
type Policy struct {
	// PSUHeadroomMargin scales the summed TDP before the wattage check.
	PSUHeadroomMargin float64

	// RequiredCategories must all be populated for a build to count as
	// complete. Completeness is advisory and reported separately from
	// violations.
	RequiredCategories []component.Category
}

// DefaultPolicy returns the shipped rule constants.
func DefaultPolicy() Policy {
	var required []component.Category
	for _, c := range component.AllCategories {
		if c.IsRequired() {
			required = append(required, c)
		}
	}
	return Policy{
		PSUHeadroomMargin:  DefaultPSUHeadroomMargin,
		RequiredCategories: required,
	}
}
