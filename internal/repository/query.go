package repository

import (
	"fmt"

	"pcforge-backend/internal/domain/component"
)

// ComponentQuery represents filter parameters for catalog listings.
type ComponentQuery struct {
	Category  component.Category // Optional: restrict to one category
	Search    string             // Optional: substring match on name
	MinCents  int64              // Optional: minimum price, inclusive
	MaxCents  int64              // Optional: maximum price, inclusive (0 = no cap)
	InStock   bool               // Optional: only components with stock > 0
	Limit     int                // Optional: maximum results (0 = no limit)
	Offset    int                // Optional: results to skip
	SortBy    string             // Optional: "price" or "name"
	SortOrder string             // Optional: "asc" or "desc"
}

// Validate checks the query parameters.
func (q ComponentQuery) Validate() error {
	if q.Category != "" {
		if _, err := component.ParseCategory(q.Category.String()); err != nil {
			return err
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("invalid query: Limit cannot be negative")
	}
	if q.Offset < 0 {
		return fmt.Errorf("invalid query: Offset cannot be negative")
	}
	if q.MinCents < 0 {
		return fmt.Errorf("invalid query: MinCents cannot be negative")
	}
	if q.MaxCents > 0 && q.MaxCents < q.MinCents {
		return fmt.Errorf("invalid query: MaxCents below MinCents")
	}
	return nil
}

// HasCategory reports whether the query restricts the category.
func (q ComponentQuery) HasCategory() bool {
	return q.Category != ""
}
