// Package repository defines the persistence ports consumed by the service
// layer. Implementations live in the ddb and memory subpackages.
package repository

import (
	"context"

	"pcforge-backend/internal/domain/build"
	"pcforge-backend/internal/domain/component"
	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/domain/social"
	"pcforge-backend/internal/domain/user"
)

// ComponentRepository persists catalog entries and inventory records.
type ComponentRepository interface {
	CreateComponent(ctx context.Context, c *component.Component) error
	UpdateComponent(ctx context.Context, c *component.Component) error
	DeleteComponent(ctx context.Context, id shared.ComponentID) error
	FindComponentByID(ctx context.Context, id shared.ComponentID) (*component.Component, error)
	FindComponents(ctx context.Context, q ComponentQuery) ([]*component.Component, error)

	RecordMovement(ctx context.Context, m component.Movement) error
	ListMovements(ctx context.Context, id shared.ComponentID) ([]component.Movement, error)

	CreateAlert(ctx context.Context, a component.Alert) error
	ListOpenAlerts(ctx context.Context) ([]component.Alert, error)
	ResolveAlert(ctx context.Context, alertID string) error

	CreateReorder(ctx context.Context, r *component.Reorder) error
	UpdateReorder(ctx context.Context, r *component.Reorder) error
	FindReorderByID(ctx context.Context, id string) (*component.Reorder, error)
	ListReorders(ctx context.Context, status component.ReorderStatus) ([]*component.Reorder, error)

	RecordPricePoint(ctx context.Context, p component.PricePoint) error
	ListPriceHistory(ctx context.Context, id shared.ComponentID) ([]component.PricePoint, error)
}

// BuildRepository persists builds. Selections are stored as component
// references with quantities; callers resolve them against the catalog.
type BuildRepository interface {
	CreateBuild(ctx context.Context, b *build.Build) error
	// UpdateBuild saves the build if the stored version matches
	// expectedVersion, otherwise it fails with a version conflict.
	UpdateBuild(ctx context.Context, b *build.Build, expectedVersion int) error
	DeleteBuild(ctx context.Context, id shared.BuildID) error
	FindBuildByID(ctx context.Context, id shared.BuildID) (*build.Build, error)
	FindBuildByShareToken(ctx context.Context, token string) (*build.Build, error)
	FindBuildsByUser(ctx context.Context, userID shared.UserID) ([]*build.Build, error)
	FindPublicBuilds(ctx context.Context, p Pagination) ([]*build.Build, error)
	// ListAllBuilds scans every build; admin analytics only.
	ListAllBuilds(ctx context.Context) ([]*build.Build, error)
}

// UserRepository persists accounts and the follow graph.
type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	UpdateUser(ctx context.Context, u *user.User) error
	FindUserByID(ctx context.Context, id shared.UserID) (*user.User, error)
	FindUserByEmail(ctx context.Context, email string) (*user.User, error)

	CreateFollow(ctx context.Context, f *user.Follow) error
	DeleteFollow(ctx context.Context, follower, followee shared.UserID) error
	CountFollowers(ctx context.Context, id shared.UserID) (int, error)
	CountFollowing(ctx context.Context, id shared.UserID) (int, error)
	IsFollowing(ctx context.Context, follower, followee shared.UserID) (bool, error)
}

// SocialRepository persists likes, comments, and notifications.
type SocialRepository interface {
	CreateLike(ctx context.Context, l *social.Like) error
	DeleteLike(ctx context.Context, userID shared.UserID, buildID shared.BuildID) error
	CountLikes(ctx context.Context, buildID shared.BuildID) (int, error)
	HasLiked(ctx context.Context, userID shared.UserID, buildID shared.BuildID) (bool, error)

	CreateComment(ctx context.Context, c *social.Comment) error
	UpdateComment(ctx context.Context, c *social.Comment) error
	DeleteComment(ctx context.Context, commentID string) error
	FindCommentByID(ctx context.Context, commentID string) (*social.Comment, error)
	ListComments(ctx context.Context, buildID shared.BuildID) ([]*social.Comment, error)

	CreateNotification(ctx context.Context, n *social.Notification) error
	ListNotifications(ctx context.Context, recipient shared.UserID, unreadOnly bool) ([]*social.Notification, error)
	MarkNotificationRead(ctx context.Context, recipient shared.UserID, notificationID string) error
}

// Repository bundles all ports for wiring convenience.
type Repository interface {
	ComponentRepository
	BuildRepository
	UserRepository
	SocialRepository
}
