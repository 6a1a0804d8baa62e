// Package build contains the PC build aggregate: the ordered component
// selection a user assembles, with derived totals.
package build

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"pcforge-backend/internal/domain/component"
	"pcforge-backend/internal/domain/shared"
)

// Selection is one chosen component with its quantity. The component is the
// resolved catalog entry; UnitPrice snapshots the price at selection time so
// later catalog price changes do not silently reprice saved builds.
type Selection struct {
	Component *component.Component `json:"component"`
	Quantity  int                  `json:"quantity"`
	UnitPrice shared.Money         `json:"unitPrice"`
}

// Build is the aggregate a single user session edits. Selection order is
// preserved for display only; totals and compatibility are derived from the
// unordered membership.
type Build struct {
	ID          shared.BuildID `json:"id"`
	UserID      shared.UserID  `json:"userId"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Selections  []Selection    `json:"selections"`
	IsPublic    bool           `json:"isPublic"`
	ShareToken  string         `json:"shareToken,omitempty"`
	ViewCount   int            `json:"viewCount"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	Version     shared.Version `json:"version"`
}

// New creates an empty build for a user.
func New(userID shared.UserID, name, description string) (*Build, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrBuildNameRequired
	}
	if len(name) > shared.MaxBuildNameLength || len(description) > shared.MaxDescriptionLength {
		return nil, shared.ErrValidation
	}

	now := time.Now()
	return &Build{
		ID:          shared.NewBuildID(),
		UserID:      userID,
		Name:        name,
		Description: description,
		Selections:  []Selection{},
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     shared.NewVersion(),
	}, nil
}

// Add appends a component to the selection.
//
// Rules enforced:
//   - quantity must be at least 1 and at most MaxQuantityPerPart
//   - quantity above 1 is limited to categories that stack (RAM, storage,
//     cooling); a build holds exactly one CPU, board, GPU, PSU, and case
//   - a single-instance category may hold only one component
//   - re-adding a component of a repeatable category merges quantities
func (b *Build) Add(c *component.Component, quantity int) error {
	if quantity < 1 || quantity > shared.MaxQuantityPerPart {
		return shared.ErrInvalidQuantity
	}
	if quantity > 1 && !c.Category.AllowsQuantity() {
		return shared.ErrInvalidQuantity
	}

	if c.Category.IsSingleInstance() {
		if existing := b.selectionIndexByCategory(c.Category); existing >= 0 {
			return shared.ErrCategoryConflict
		}
	} else {
		if i := b.selectionIndex(c.ID); i >= 0 {
			if b.Selections[i].Quantity+quantity > shared.MaxQuantityPerPart {
				return shared.ErrInvalidQuantity
			}
			b.Selections[i].Quantity += quantity
			b.touch()
			return nil
		}
	}

	b.Selections = append(b.Selections, Selection{
		Component: c,
		Quantity:  quantity,
		UnitPrice: c.Price,
	})
	b.touch()
	return nil
}

// Remove drops a component from the selection entirely.
func (b *Build) Remove(id shared.ComponentID) error {
	i := b.selectionIndex(id)
	if i < 0 {
		return shared.ErrSelectionNotFound
	}
	b.Selections = append(b.Selections[:i], b.Selections[i+1:]...)
	b.touch()
	return nil
}

// TotalPrice is derived from the current membership on every call; it is
// never stored, so it cannot drift from the selection.
func (b *Build) TotalPrice() shared.Money {
	total := shared.Zero()
	for _, s := range b.Selections {
		total = total.Add(s.UnitPrice.MultiplyBy(s.Quantity))
	}
	return total
}

// ByCategory returns the selections in a category, preserving order.
func (b *Build) ByCategory(cat component.Category) []Selection {
	var out []Selection
	for _, s := range b.Selections {
		if s.Component.Category == cat {
			out = append(out, s)
		}
	}
	return out
}

// Single returns the sole component in a single-instance category, or nil
// when the category is unpopulated.
func (b *Build) Single(cat component.Category) *component.Component {
	for _, s := range b.Selections {
		if s.Component.Category == cat {
			return s.Component
		}
	}
	return nil
}

// Categories returns the set of populated categories.
func (b *Build) Categories() map[component.Category]bool {
	set := make(map[component.Category]bool, len(b.Selections))
	for _, s := range b.Selections {
		set[s.Component.Category] = true
	}
	return set
}

// EnsureShareToken generates the share token once; later calls return the
// existing token.
func (b *Build) EnsureShareToken() string {
	if b.ShareToken == "" {
		b.ShareToken = uuid.New().String()
		b.touch()
	}
	return b.ShareToken
}

// Publish makes the build publicly listed.
func (b *Build) Publish() {
	if !b.IsPublic {
		b.IsPublic = true
		b.touch()
	}
}

// Unpublish removes the build from public listings.
func (b *Build) Unpublish() {
	if b.IsPublic {
		b.IsPublic = false
		b.touch()
	}
}

// RecordView bumps the view counter.
func (b *Build) RecordView() {
	b.ViewCount++
}

// Rename updates name and description under the same limits as New.
func (b *Build) Rename(name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.ErrBuildNameRequired
	}
	if len(name) > shared.MaxBuildNameLength || len(description) > shared.MaxDescriptionLength {
		return shared.ErrValidation
	}
	b.Name = name
	b.Description = description
	b.touch()
	return nil
}

func (b *Build) selectionIndex(id shared.ComponentID) int {
	for i, s := range b.Selections {
		if s.Component.ID.Equals(id) {
			return i
		}
	}
	return -1
}

func (b *Build) selectionIndexByCategory(cat component.Category) int {
	for i, s := range b.Selections {
		if s.Component.Category == cat {
			return i
		}
	}
	return -1
}

func (b *Build) touch() {
	b.UpdatedAt = time.Now()
	b.Version = b.Version.Next()
}
