// Package compat is the build compatibility engine: a pure rule set over a
// build's membership and the evaluator the application calls before and
// after every selection change.
//
// The engine is advisory. Adding an incompatible part succeeds and the
// resulting violations are returned as state, so users can assemble in any
// order and resolve warnings as they go.
package compat

import (
	"sort"

	"pcforge-backend/internal/domain/build"
	"pcforge-backend/internal/domain/component"
	"pcforge-backend/internal/domain/shared"
)

// Evaluator answers "can this part join the build" and "what is wrong with
// the build". It is stateless apart from its policy and never mutates the
// build it inspects.
type Evaluator struct {
	policy Policy
}

// NewEvaluator creates an evaluator with the given policy constants.
func NewEvaluator(policy Policy) *Evaluator {
	if policy.PSUHeadroomMargin <= 0 {
		policy.PSUHeadroomMargin = DefaultPSUHeadroomMargin
	}
	return &Evaluator{policy: policy}
}

// Validate runs the full rule set against the build's current membership.
// The result is deterministic for a given membership regardless of the
// order parts were added.
func (e *Evaluator) Validate(b *build.Build) []Violation {
	return e.evaluate(snapshot(b))
}

// CanAdd evaluates the rule set as if the candidate were added, without
// mutating the build. All violations are collected, including ones that
// already exist, so the caller sees the complete post-add state. The
// quantity bounds mirror what the build aggregate accepts, so a probe
// never approves a request Add would refuse.
func (e *Evaluator) CanAdd(b *build.Build, candidate *component.Component, quantity int) (Decision, error) {
	if quantity < 1 || quantity > shared.MaxQuantityPerPart {
		return Decision{}, shared.ErrInvalidQuantity
	}
	if quantity > 1 && !candidate.Category.AllowsQuantity() {
		return Decision{}, shared.ErrInvalidQuantity
	}
	parts := append(snapshot(b), part{comp: candidate, qty: quantity})
	violations := e.evaluate(parts)
	return Decision{
		Accepted:   len(violations) == 0,
		Violations: violations,
	}, nil
}

// MissingRequired lists required categories not yet populated. An incomplete
// build is not in violation; completeness is a separate, advisory signal.
func (e *Evaluator) MissingRequired(b *build.Build) []component.Category {
	populated := b.Categories()
	var missing []component.Category
	for _, cat := range e.policy.RequiredCategories {
		if !populated[cat] {
			missing = append(missing, cat)
		}
	}
	return missing
}

// evaluate runs every rule and returns the combined violations in a stable
// order. No rule short-circuits another.
func (e *Evaluator) evaluate(parts []part) []Violation {
	var out []Violation
	for _, r := range allRules {
		out = append(out, r(parts, e.policy)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rule != out[j].Rule {
			return out[i].Rule < out[j].Rule
		}
		return out[i].Message < out[j].Message
	})
	return out
}

func snapshot(b *build.Build) []part {
	parts := make([]part, 0, len(b.Selections))
	for _, s := range b.Selections {
		parts = append(parts, part{comp: s.Component, qty: s.Quantity})
	}
	return parts
}
