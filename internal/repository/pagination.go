package repository

import "fmt"

// Pagination carries offset pagination parameters for list endpoints.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Validate checks the pagination parameters.
func (p Pagination) Validate() error {
	if p.Limit < 0 {
		return fmt.Errorf("invalid pagination: Limit cannot be negative")
	}
	if p.Offset < 0 {
		return fmt.Errorf("invalid pagination: Offset cannot be negative")
	}
	return nil
}

// EffectiveLimit returns the page size to use, clamped to the maximum and
// defaulted when unset.
func (p Pagination) EffectiveLimit() int {
	if p.Limit <= 0 {
		return defaultPageSize
	}
	if p.Limit > maxPageSize {
		return maxPageSize
	}
	return p.Limit
}
