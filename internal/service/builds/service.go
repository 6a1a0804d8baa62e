// Package builds orchestrates build editing: selection changes, advisory
// compatibility checks, sharing, and the public feed.
package builds

import (
	"context"

	"go.uber.org/zap"

	"pcforge-backend/internal/domain/build"
	"pcforge-backend/internal/domain/compat"
	"pcforge-backend/internal/domain/component"
	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/repository"
)

// Service coordinates build aggregates with the catalog and the
// compatibility evaluator. Compatibility is advisory: selection changes
// succeed and violations ride along in the result.
type Service struct {
	repo      repository.Repository
	evaluator *compat.Evaluator
	logger    *zap.Logger
}

// NewService creates a builds service.
func NewService(repo repository.Repository, evaluator *compat.Evaluator, logger *zap.Logger) *Service {
	return &Service{repo: repo, evaluator: evaluator, logger: logger}
}

// Report is a build together with its derived compatibility state.
type Report struct {
	Build           *build.Build         `json:"build"`
	TotalCents      int64                `json:"totalCents"`
	Violations      []compat.Violation   `json:"violations"`
	MissingRequired []component.Category `json:"missingRequired"`
}

func (s *Service) report(b *build.Build) *Report {
	return &Report{
		Build:           b,
		TotalCents:      b.TotalPrice().Cents(),
		Violations:      s.evaluator.Validate(b),
		MissingRequired: s.evaluator.MissingRequired(b),
	}
}

// Create starts an empty build for a user.
func (s *Service) Create(ctx context.Context, userID shared.UserID, name, description string) (*Report, error) {
	b, err := build.New(userID, name, description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateBuild(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("build created",
		zap.String("buildId", b.ID.String()),
		zap.String("userId", userID.String()),
	)
	return s.report(b), nil
}

// Get fetches a build with its compatibility report. Only the owner may
// read a private build.
func (s *Service) Get(ctx context.Context, userID shared.UserID, id shared.BuildID) (*Report, error) {
	b, err := s.ownedBuild(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.report(b), nil
}

// ListByUser returns all builds owned by a user, newest first.
func (s *Service) ListByUser(ctx context.Context, userID shared.UserID) ([]*Report, error) {
	bs, err := s.repo.FindBuildsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	reports := make([]*Report, 0, len(bs))
	for _, b := range bs {
		reports = append(reports, s.report(b))
	}
	return reports, nil
}

// Rename updates a build's name and description.
func (s *Service) Rename(ctx context.Context, userID shared.UserID, id shared.BuildID, name, description string) (*Report, error) {
	b, err := s.ownedBuild(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	expected := b.Version.Int()
	if err := b.Rename(name, description); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBuild(ctx, b, expected); err != nil {
		return nil, err
	}
	return s.report(b), nil
}

// Delete removes a build.
func (s *Service) Delete(ctx context.Context, userID shared.UserID, id shared.BuildID) error {
	if _, err := s.ownedBuild(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteBuild(ctx, id); err != nil {
		return err
	}
	s.logger.Info("build deleted", zap.String("buildId", id.String()))
	return nil
}

// AddDecision carries the outcome of an AddComponent call: the updated
// report plus the advisory decision for the candidate at the moment it was
// added.
type AddDecision struct {
	Report   *Report         `json:"report"`
	Decision compat.Decision `json:"decision"`
}

// AddComponent adds a catalog component to a build. The add itself fails
// only on structural grounds (unknown component, occupied single-instance
// category, bad quantity); rule violations are advisory and returned in the
// decision.
func (s *Service) AddComponent(ctx context.Context, userID shared.UserID, id shared.BuildID, componentID shared.ComponentID, quantity int) (*AddDecision, error) {
	b, err := s.ownedBuild(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindComponentByID(ctx, componentID)
	if err != nil {
		return nil, err
	}

	decision, err := s.evaluator.CanAdd(b, c, quantity)
	if err != nil {
		return nil, err
	}

	expected := b.Version.Int()
	if err := b.Add(c, quantity); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBuild(ctx, b, expected); err != nil {
		return nil, err
	}

	s.logger.Info("component added to build",
		zap.String("buildId", id.String()),
		zap.String("componentId", componentID.String()),
		zap.Int("quantity", quantity),
		zap.Bool("compatible", decision.Accepted),
		zap.Int("violations", len(decision.Violations)),
	)
	return &AddDecision{Report: s.report(b), Decision: decision}, nil
}

// RemoveComponent drops a component from a build. Violations caused by the
// removed part disappear from the next report; no other state is touched.
func (s *Service) RemoveComponent(ctx context.Context, userID shared.UserID, id shared.BuildID, componentID shared.ComponentID) (*Report, error) {
	b, err := s.ownedBuild(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	expected := b.Version.Int()
	if err := b.Remove(componentID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBuild(ctx, b, expected); err != nil {
		return nil, err
	}
	return s.report(b), nil
}

// Check re-evaluates a build without modifying it.
func (s *Service) Check(ctx context.Context, userID shared.UserID, id shared.BuildID) (*Report, error) {
	return s.Get(ctx, userID, id)
}

// SelectionInput names a component and quantity for an ad hoc check.
type SelectionInput struct {
	ComponentID shared.ComponentID
	Quantity    int
}

// CheckComponents evaluates a component set without touching any stored
// build. The scratch build is discarded after evaluation.
func (s *Service) CheckComponents(ctx context.Context, userID shared.UserID, items []SelectionInput) (*Report, error) {
	b, err := build.New(userID, "scratch", "")
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		c, err := s.repo.FindComponentByID(ctx, item.ComponentID)
		if err != nil {
			return nil, err
		}
		if err := b.Add(c, item.Quantity); err != nil {
			return nil, err
		}
	}
	return s.report(b), nil
}

// Share issues (or returns the existing) share token for a build.
func (s *Service) Share(ctx context.Context, userID shared.UserID, id shared.BuildID) (string, error) {
	b, err := s.ownedBuild(ctx, userID, id)
	if err != nil {
		return "", err
	}
	expected := b.Version.Int()
	token := b.EnsureShareToken()
	if b.Version.Int() != expected {
		// Token was newly issued; persist it.
		if err := s.repo.UpdateBuild(ctx, b, expected); err != nil {
			return "", err
		}
	}
	return token, nil
}

// GetShared resolves a share token to its build and counts the view. Shared
// reads need no authentication.
func (s *Service) GetShared(ctx context.Context, token string) (*Report, error) {
	b, err := s.repo.FindBuildByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}

	expected := b.Version.Int()
	b.RecordView()
	if err := s.repo.UpdateBuild(ctx, b, expected); err != nil {
		// A lost view count is not worth failing the read.
		s.logger.Debug("view count update lost", zap.String("buildId", b.ID.String()), zap.Error(err))
	}
	return s.report(b), nil
}

// SetPublic publishes or unpublishes a build on the public feed.
func (s *Service) SetPublic(ctx context.Context, userID shared.UserID, id shared.BuildID, public bool) (*Report, error) {
	b, err := s.ownedBuild(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	expected := b.Version.Int()
	if public {
		b.Publish()
	} else {
		b.Unpublish()
	}
	if b.Version.Int() != expected {
		if err := s.repo.UpdateBuild(ctx, b, expected); err != nil {
			return nil, err
		}
	}
	return s.report(b), nil
}

// ListPublic pages through the public feed.
func (s *Service) ListPublic(ctx context.Context, p repository.Pagination) ([]*Report, error) {
	bs, err := s.repo.FindPublicBuilds(ctx, p)
	if err != nil {
		return nil, err
	}
	reports := make([]*Report, 0, len(bs))
	for _, b := range bs {
		reports = append(reports, s.report(b))
	}
	return reports, nil
}

// GetPublic fetches a single public build without ownership checks.
func (s *Service) GetPublic(ctx context.Context, id shared.BuildID) (*Report, error) {
	b, err := s.repo.FindBuildByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsPublic {
		return nil, shared.ErrBuildNotFound
	}

	expected := b.Version.Int()
	b.RecordView()
	if err := s.repo.UpdateBuild(ctx, b, expected); err != nil {
		s.logger.Debug("view count update lost", zap.String("buildId", b.ID.String()), zap.Error(err))
	}
	return s.report(b), nil
}

// ownedBuild loads a build and verifies ownership. Foreign builds read as
// not found so probing cannot distinguish them from absent ones.
func (s *Service) ownedBuild(ctx context.Context, userID shared.UserID, id shared.BuildID) (*build.Build, error) {
	b, err := s.repo.FindBuildByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.UserID.Equals(userID) {
		return nil, shared.ErrBuildNotFound
	}
	return b, nil
}
