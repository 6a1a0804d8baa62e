// Package analytics computes admin-facing usage and pricing summaries.
package analytics

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"pcforge-backend/internal/domain/component"
	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/repository"
)

// Service derives reports from builds and the catalog. Everything here is
// computed on read; nothing is cached or precomputed.
type Service struct {
	repo   repository.Repository
	logger *zap.Logger
}

// NewService creates an analytics service.
func NewService(repo repository.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// PopularityEntry says how often a component appears across builds.
type PopularityEntry struct {
	Component     *component.Component `json:"component"`
	BuildCount    int                  `json:"buildCount"`
	TotalQuantity int                  `json:"totalQuantity"`
}

// ComponentPopularity ranks components by the number of builds using them.
// Quantity breaks ties. limit <= 0 returns the full ranking.
func (s *Service) ComponentPopularity(ctx context.Context, limit int) ([]PopularityEntry, error) {
	builds, err := s.repo.ListAllBuilds(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*PopularityEntry)
	for _, b := range builds {
		for _, sel := range b.Selections {
			id := sel.Component.ID.String()
			entry, ok := byID[id]
			if !ok {
				entry = &PopularityEntry{Component: sel.Component}
				byID[id] = entry
			}
			entry.BuildCount++
			entry.TotalQuantity += sel.Quantity
		}
	}

	entries := make([]PopularityEntry, 0, len(byID))
	for _, e := range byID {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].BuildCount != entries[j].BuildCount {
			return entries[i].BuildCount > entries[j].BuildCount
		}
		if entries[i].TotalQuantity != entries[j].TotalQuantity {
			return entries[i].TotalQuantity > entries[j].TotalQuantity
		}
		return entries[i].Component.Name < entries[j].Component.Name
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// PriceTrend summarizes a component's recorded price history.
type PriceTrend struct {
	ComponentID   string                 `json:"componentId"`
	Points        []component.PricePoint `json:"points"`
	FirstCents    int64                  `json:"firstCents"`
	CurrentCents  int64                  `json:"currentCents"`
	ChangePercent float64                `json:"changePercent"`
}

// PriceTrendFor returns the price trend for one component.
func (s *Service) PriceTrendFor(ctx context.Context, id shared.ComponentID) (*PriceTrend, error) {
	c, err := s.repo.FindComponentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.ListPriceHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	trend := &PriceTrend{
		ComponentID:   id.String(),
		Points:        history,
		CurrentCents:  c.Price.Cents(),
		ChangePercent: component.PriceChangePercent(history),
	}
	if len(history) > 0 {
		trend.FirstCents = history[0].Price.Cents()
	}
	return trend, nil
}

// BuildStats aggregates the build corpus.
type BuildStats struct {
	TotalBuilds       int     `json:"totalBuilds"`
	PublicBuilds      int     `json:"publicBuilds"`
	TotalViews        int     `json:"totalViews"`
	AverageTotalCents int64   `json:"averageTotalCents"`
	AverageSelections float64 `json:"averageSelections"`
}

// BuildStatistics computes counts and averages across all builds.
func (s *Service) BuildStatistics(ctx context.Context) (*BuildStats, error) {
	builds, err := s.repo.ListAllBuilds(ctx)
	if err != nil {
		return nil, err
	}

	stats := &BuildStats{TotalBuilds: len(builds)}
	if len(builds) == 0 {
		return stats, nil
	}

	var totalCents int64
	var totalSelections int
	for _, b := range builds {
		if b.IsPublic {
			stats.PublicBuilds++
		}
		stats.TotalViews += b.ViewCount
		totalCents += b.TotalPrice().Cents()
		totalSelections += len(b.Selections)
	}
	stats.AverageTotalCents = totalCents / int64(len(builds))
	stats.AverageSelections = float64(totalSelections) / float64(len(builds))
	return stats, nil
}
